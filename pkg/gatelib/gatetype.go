package gatelib

import (
	"fmt"
	"sort"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/boolfunc"
)

// GateType is a cell template. A gate type must not be modified after it has
// been added to a Library.
type GateType struct {
	Name       string
	Properties PropertySet
	Pins       []Pin
	// Functions maps output pin names to their default function over the
	// input pin names.
	Functions map[string]boolfunc.Function
	Behavior  Behavior
}

// NewGateType returns a combinational gate type without pins.
func NewGateType(name string, props ...Property) *GateType {
	return &GateType{
		Name:       name,
		Properties: NewPropertySet(props...),
		Functions:  make(map[string]boolfunc.Function),
		Behavior:   CombinationalBehavior{},
	}
}

// AddPin appends a pin and returns gt for chaining.
func (gt *GateType) AddPin(name string, dir PinDirection, typ PinType) *GateType {
	gt.Pins = append(gt.Pins, Pin{Name: name, Direction: dir, Type: typ})
	return gt
}

// SetFunction parses expr and stores it as the function of output pin.
func (gt *GateType) SetFunction(pin, expr string) error {
	f, err := boolfunc.Parse(expr)
	if err != nil {
		return fmt.Errorf("gatelib: %w: gate type %s pin %s: %w", ErrInvalidArgument, gt.Name, pin, err)
	}
	gt.Functions[pin] = f
	return nil
}

// Pin returns the pin called name.
func (gt *GateType) Pin(name string) (Pin, bool) {
	for _, p := range gt.Pins {
		if p.Name == name {
			return p, true
		}
	}
	return Pin{}, false
}

// InputPins returns the pins accepting a signal, in declaration order.
func (gt *GateType) InputPins() []Pin {
	var out []Pin
	for _, p := range gt.Pins {
		if p.Direction.IsInput() {
			out = append(out, p)
		}
	}
	return out
}

// OutputPins returns the pins driving a signal, in declaration order.
func (gt *GateType) OutputPins() []Pin {
	var out []Pin
	for _, p := range gt.Pins {
		if p.Direction.IsOutput() {
			out = append(out, p)
		}
	}
	return out
}

// InputPinNames returns the names of InputPins.
func (gt *GateType) InputPinNames() []string {
	return pinNames(gt.InputPins())
}

// OutputPinNames returns the names of OutputPins.
func (gt *GateType) OutputPinNames() []string {
	return pinNames(gt.OutputPins())
}

// PinsOf returns pins with the given direction and type. DirectionNone and
// PinNone act as wildcards.
func (gt *GateType) PinsOf(dir PinDirection, typ PinType) []Pin {
	var out []Pin
	for _, p := range gt.Pins {
		if dir != DirectionNone && p.Direction != dir {
			continue
		}
		if typ != PinNone && p.Type != typ {
			continue
		}
		out = append(out, p)
	}
	return out
}

// PinGroups returns grouped pins ordered by index, keyed by group name.
func (gt *GateType) PinGroups() map[string][]Pin {
	groups := make(map[string][]Pin)
	for _, p := range gt.Pins {
		if p.Group != "" {
			groups[p.Group] = append(groups[p.Group], p)
		}
	}
	for _, pins := range groups {
		sort.SliceStable(pins, func(i, j int) bool { return pins[i].Index < pins[j].Index })
	}
	return groups
}

// HasProperty reports whether the gate type carries p.
func (gt *GateType) HasProperty(p Property) bool {
	return gt.Properties.Has(p)
}

// HasExactProperties reports whether the property set equals props.
func (gt *GateType) HasExactProperties(props ...Property) bool {
	return gt.Properties.Equal(NewPropertySet(props...))
}

// Function returns the default function of output pin, or the empty
// function when none is defined.
func (gt *GateType) Function(pin string) boolfunc.Function {
	return gt.Functions[pin]
}

func (gt *GateType) String() string {
	return gt.Name
}

// Validate checks pin uniqueness, function references and the shape of
// ground and power types.
func (gt *GateType) Validate() error {
	if gt.Name == "" {
		return fmt.Errorf("gatelib: %w: gate type without name", ErrInvalidArgument)
	}
	if gt.Behavior == nil {
		return fmt.Errorf("gatelib: %w: gate type %s has no behavior", ErrInvalidArgument, gt.Name)
	}
	seen := make(map[string]bool, len(gt.Pins))
	for _, p := range gt.Pins {
		if p.Name == "" {
			return fmt.Errorf("gatelib: %w: gate type %s has unnamed pin", ErrStructural, gt.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("gatelib: %w: gate type %s has duplicate pin %s", ErrStructural, gt.Name, p.Name)
		}
		seen[p.Name] = true
	}

	inputs := make(map[string]bool)
	for _, p := range gt.InputPins() {
		inputs[p.Name] = true
	}
	for pin, f := range gt.Functions {
		p, ok := gt.Pin(pin)
		if !ok || !p.Direction.IsOutput() {
			return fmt.Errorf("gatelib: %w: gate type %s: function for non-output pin %s", ErrStructural, gt.Name, pin)
		}
		if f.IsEmpty() {
			return fmt.Errorf("gatelib: %w: gate type %s: empty function for pin %s", ErrStructural, gt.Name, pin)
		}
		if _, isLUT := gt.Behavior.(LUT); isLUT {
			continue
		}
		for _, v := range f.VariableNames() {
			if !inputs[v] {
				return fmt.Errorf("gatelib: %w: gate type %s: function of %s uses unknown input %s",
					ErrStructural,
					gt.Name, pin, v)
			}
		}
	}

	for _, prop := range []Property{Ground, Power} {
		if !gt.HasProperty(prop) {
			continue
		}
		outs := gt.OutputPins()
		if len(gt.InputPins()) != 0 || len(outs) != 1 {
			return fmt.Errorf("gatelib: %w: %s type %s must have no inputs and one output",
				ErrStructural, prop, gt.Name)
		}
		if !gt.Function(outs[0].Name).IsConstantValue(prop == Power) {
			return fmt.Errorf("gatelib: %w: %s type %s must drive a constant", ErrStructural, prop, gt.Name)
		}
	}
	return nil
}

func pinNames(pins []Pin) []string {
	out := make([]string, len(pins))
	for i, p := range pins {
		out[i] = p.Name
	}
	return out
}
