package gatelib

import (
	"fmt"
	"sort"
)

// Library is a catalog of gate types keyed by name.
type Library struct {
	Name  string
	types map[string]*GateType
	order []string
}

// NewLibrary returns an empty library.
func NewLibrary(name string) *Library {
	return &Library{Name: name, types: make(map[string]*GateType)}
}

// AddGateType validates gt and adds it. Names must be unique.
func (l *Library) AddGateType(gt *GateType) error {
	if gt == nil {
		return fmt.Errorf("gatelib: %w: nil gate type", ErrInvalidArgument)
	}
	if err := gt.Validate(); err != nil {
		return err
	}
	if _, dup := l.types[gt.Name]; dup {
		return fmt.Errorf("gatelib: %w: library %s already contains gate type %s", ErrStructural, l.Name, gt.Name)
	}
	l.types[gt.Name] = gt
	l.order = append(l.order, gt.Name)
	return nil
}

// GateTypeByName returns the gate type called name, or nil.
func (l *Library) GateTypeByName(name string) *GateType {
	return l.types[name]
}

// GateTypes returns the gate types accepted by filter, keyed by name. A nil
// filter accepts all.
func (l *Library) GateTypes(filter func(*GateType) bool) map[string]*GateType {
	out := make(map[string]*GateType)
	for name, gt := range l.types {
		if filter == nil || filter(gt) {
			out[name] = gt
		}
	}
	return out
}

// All returns every gate type in insertion order.
func (l *Library) All() []*GateType {
	out := make([]*GateType, len(l.order))
	for i, name := range l.order {
		out[i] = l.types[name]
	}
	return out
}

// Len returns the number of gate types.
func (l *Library) Len() int {
	return len(l.types)
}

// FindExact returns the gate type whose property set equals props and which
// has nIn inputs and nOut outputs. Ties are broken by name.
func (l *Library) FindExact(props []Property, nIn, nOut int) (*GateType, error) {
	want := NewPropertySet(props...)
	matches := l.GateTypes(func(gt *GateType) bool {
		return gt.Properties.Equal(want) &&
			len(gt.InputPins()) == nIn && len(gt.OutputPins()) == nOut
	})
	if len(matches) == 0 {
		return nil, fmt.Errorf("gatelib: %w: library %s has no gate type with properties %s and %d/%d pins",
			ErrLookup, l.Name, want, nIn, nOut)
	}
	names := make([]string, 0, len(matches))
	for name := range matches {
		names = append(names, name)
	}
	sort.Strings(names)
	return matches[names[0]], nil
}

// GndTypes returns the gate types with the ground property.
func (l *Library) GndTypes() map[string]*GateType {
	return l.GateTypes(func(gt *GateType) bool { return gt.HasProperty(Ground) })
}

// VccTypes returns the gate types with the power property.
func (l *Library) VccTypes() map[string]*GateType {
	return l.GateTypes(func(gt *GateType) bool { return gt.HasProperty(Power) })
}
