package gatelib

import (
	"sort"
	"strings"
)

// Property tags a gate type with a capability or a canonical function.
type Property string

const (
	Combinational Property = "combinational"
	Sequential    Property = "sequential"
	Power         Property = "power"
	Ground        Property = "ground"
	LUTProperty   Property = "lut"
	FlipFlop      Property = "ff"
	Latch         Property = "latch"
	RAM           Property = "ram"
	IO            Property = "io"
	DSP           Property = "dsp"
	Mux           Property = "mux"
	Buffer        Property = "buffer"
	CBuffer       Property = "c_buffer"
	CInverter     Property = "c_inverter"
	CAnd          Property = "c_and"
	COr           Property = "c_or"
	CXor          Property = "c_xor"
	CNand         Property = "c_nand"
	CNor          Property = "c_nor"
	CXnor         Property = "c_xnor"
	CMux          Property = "c_mux"
	CLUT          Property = "c_lut"
	CAndOrInvert  Property = "c_and_or_inverter"
	COrAndInvert  Property = "c_or_and_inverter"
	CCarry        Property = "c_carry"
	CHalfAdder    Property = "c_half_adder"
	CFullAdder    Property = "c_full_adder"
)

// PropertySet is an unordered set of properties.
type PropertySet map[Property]struct{}

// NewPropertySet returns a set holding props.
func NewPropertySet(props ...Property) PropertySet {
	s := make(PropertySet, len(props))
	for _, p := range props {
		s[p] = struct{}{}
	}
	return s
}

// Has reports whether p is in the set.
func (s PropertySet) Has(p Property) bool {
	_, ok := s[p]
	return ok
}

// Equal reports whether both sets hold exactly the same properties.
func (s PropertySet) Equal(o PropertySet) bool {
	if len(s) != len(o) {
		return false
	}
	for p := range s {
		if !o.Has(p) {
			return false
		}
	}
	return true
}

// Sorted returns the properties in lexical order.
func (s PropertySet) Sorted() []Property {
	out := make([]Property, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s PropertySet) String() string {
	parts := make([]string, 0, len(s))
	for _, p := range s.Sorted() {
		parts = append(parts, string(p))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
