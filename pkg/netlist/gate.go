package netlist

import (
	"fmt"
	"sort"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/boolfunc"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/gatelib"
)

// Gate is an instance of a gate type.
type Gate struct {
	DataContainer

	id       int
	name     string
	typ      *gatelib.GateType
	netlist  *Netlist
	module   *Module
	grouping *Grouping
	x, y     int

	functions map[string]boolfunc.Function
	inputs    map[string]*Endpoint
	outputs   map[string]*Endpoint
}

// ID returns the gate ID, unique within its netlist.
func (g *Gate) ID() int { return g.id }

// Name returns the instance name.
func (g *Gate) Name() string { return g.name }

// Type returns the gate type.
func (g *Gate) Type() *gatelib.GateType { return g.typ }

// Netlist returns the owning netlist.
func (g *Gate) Netlist() *Netlist { return g.netlist }

// Module returns the module the gate belongs to.
func (g *Gate) Module() *Module { return g.module }

// Grouping returns the grouping of the gate, or nil.
func (g *Gate) Grouping() *Grouping { return g.grouping }

func (g *Gate) String() string {
	return fmt.Sprintf("Gate(%d, %q, %s)", g.id, g.name, g.typ.Name)
}

// SetName renames the gate. Names are unique within a netlist.
func (g *Gate) SetName(name string) error {
	if name == g.name {
		return nil
	}
	if name == "" {
		return fmt.Errorf("netlist: %w: empty gate name", ErrInvalidArgument)
	}
	if other, ok := g.netlist.gateNames[name]; ok && other != g {
		return fmt.Errorf("netlist: %w: gate name %q already in use", ErrStructural, name)
	}
	delete(g.netlist.gateNames, g.name)
	g.name = name
	g.netlist.gateNames[name] = g
	return nil
}

// Location returns the placement coordinates. Negative values mean unset.
func (g *Gate) Location() (x, y int) { return g.x, g.y }

// SetLocation sets the placement coordinates.
func (g *Gate) SetLocation(x, y int) { g.x, g.y = x, y }

// HasLocation reports whether both coordinates are set.
func (g *Gate) HasLocation() bool { return g.x >= 0 && g.y >= 0 }

// IsGndGate reports whether the gate is a global ground gate.
func (g *Gate) IsGndGate() bool { return g.netlist.IsGndGate(g) }

// IsVccGate reports whether the gate is a global power gate.
func (g *Gate) IsVccGate() bool { return g.netlist.IsVccGate(g) }

// FaninNet returns the net read by input pin, or nil.
func (g *Gate) FaninNet(pin string) *Net {
	if ep, ok := g.inputs[pin]; ok {
		return ep.net
	}
	return nil
}

// FanoutNet returns the net driven by output pin, or nil.
func (g *Gate) FanoutNet(pin string) *Net {
	if ep, ok := g.outputs[pin]; ok {
		return ep.net
	}
	return nil
}

// FaninEndpoint returns the destination endpoint of input pin, or nil.
func (g *Gate) FaninEndpoint(pin string) *Endpoint { return g.inputs[pin] }

// FanoutEndpoint returns the source endpoint of output pin, or nil.
func (g *Gate) FanoutEndpoint(pin string) *Endpoint { return g.outputs[pin] }

// FaninEndpoints returns the connected input endpoints in pin order.
func (g *Gate) FaninEndpoints() []*Endpoint {
	return g.orderedEndpoints(g.inputs, g.typ.InputPins())
}

// FanoutEndpoints returns the connected output endpoints in pin order.
func (g *Gate) FanoutEndpoints() []*Endpoint {
	return g.orderedEndpoints(g.outputs, g.typ.OutputPins())
}

func (g *Gate) orderedEndpoints(m map[string]*Endpoint, pins []gatelib.Pin) []*Endpoint {
	out := make([]*Endpoint, 0, len(m))
	for _, p := range pins {
		if ep, ok := m[p.Name]; ok {
			out = append(out, ep)
		}
	}
	return out
}

// FaninNets returns the distinct nets read by the gate in pin order.
func (g *Gate) FaninNets() []*Net {
	return distinctNets(g.FaninEndpoints())
}

// FanoutNets returns the distinct nets driven by the gate in pin order.
func (g *Gate) FanoutNets() []*Net {
	return distinctNets(g.FanoutEndpoints())
}

// Predecessors returns the distinct gates driving the inputs of g.
func (g *Gate) Predecessors() []*Gate {
	seen := make(map[*Gate]bool)
	var out []*Gate
	for _, n := range g.FaninNets() {
		for _, src := range n.SourceGates() {
			if !seen[src] {
				seen[src] = true
				out = append(out, src)
			}
		}
	}
	return out
}

// Successors returns the distinct gates reading the outputs of g.
func (g *Gate) Successors() []*Gate {
	seen := make(map[*Gate]bool)
	var out []*Gate
	for _, n := range g.FanoutNets() {
		for _, dst := range n.DestinationGates() {
			if !seen[dst] {
				seen[dst] = true
				out = append(out, dst)
			}
		}
	}
	return out
}

// AddBooleanFunction overrides the function of output pin for this gate only.
func (g *Gate) AddBooleanFunction(pin string, f boolfunc.Function) error {
	if f.IsEmpty() {
		return fmt.Errorf("netlist: %w: empty function for %s.%s", ErrInvalidArgument, g.name, pin)
	}
	if g.functions == nil {
		g.functions = make(map[string]boolfunc.Function)
	}
	g.functions[pin] = f
	return nil
}

// CustomFunctions returns the per-gate overrides.
func (g *Gate) CustomFunctions() map[string]boolfunc.Function {
	out := make(map[string]boolfunc.Function, len(g.functions))
	for k, v := range g.functions {
		out[k] = v
	}
	return out
}

// BooleanFunction resolves the function of output pin over the input pin
// names of the gate type. An empty pin selects the first output pin.
// Resolution order: gate override, LUT configuration, gate type default.
func (g *Gate) BooleanFunction(pin string) (boolfunc.Function, error) {
	if pin == "" {
		outs := g.typ.OutputPins()
		if len(outs) == 0 {
			return boolfunc.Function{}, fmt.Errorf("netlist: %w: %s has no output pins",
				ErrStructural, g)
		}
		pin = outs[0].Name
	}
	if f, ok := g.functions[pin]; ok {
		return f, nil
	}

	if lut, ok := g.typ.Behavior.(gatelib.LUT); ok {
		if p, _ := g.typ.Pin(pin); p.Type == gatelib.PinLUT {
			v, ok := g.Data(lut.Category, lut.Key)
			if !ok {
				return boolfunc.Function{}, fmt.Errorf("netlist: %w: %s has no LUT configuration %s/%s",
					ErrLookup, g, lut.Category, lut.Key)
			}
			f, err := boolfunc.FromLUT(v.Value, g.typ.InputPinNames(), lut.Ascending)
			if err != nil {
				return boolfunc.Function{}, fmt.Errorf("netlist: %w: %s: %w", ErrStructural, g, err)
			}
			return f, nil
		}
	}

	if f := g.typ.Function(pin); !f.IsEmpty() {
		return f, nil
	}
	return boolfunc.Function{}, fmt.Errorf("netlist: %w: no function for pin %s of %s",
		ErrLookup, pin, g)
}

// BooleanFunctions resolves every output pin that has a function.
func (g *Gate) BooleanFunctions() map[string]boolfunc.Function {
	out := make(map[string]boolfunc.Function)
	for _, p := range g.typ.OutputPins() {
		if f, err := g.BooleanFunction(p.Name); err == nil {
			out[p.Name] = f
		}
	}
	return out
}

func distinctNets(eps []*Endpoint) []*Net {
	seen := make(map[*Net]bool, len(eps))
	var out []*Net
	for _, ep := range eps {
		if !seen[ep.net] {
			seen[ep.net] = true
			out = append(out, ep.net)
		}
	}
	return out
}

func sortGates(gates []*Gate) {
	sort.Slice(gates, func(i, j int) bool { return gates[i].id < gates[j].id })
}
