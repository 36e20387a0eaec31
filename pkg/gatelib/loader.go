package gatelib

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/gatelib/sexp"
)

// Load reads a gate library file.
//
// The file holds a single (library NAME ...) expression:
//
//	(library demo
//	  (gate_type AND2
//	    (properties combinational c_and)
//	    (pin A input data)
//	    (pin B input data)
//	    (pin O output data)
//	    (function O "A & B"))
//	  (gate_type LUT2
//	    (properties combinational lut c_lut)
//	    (pin I0 input data (group I 0))
//	    (pin I1 input data (group I 1))
//	    (pin O output lut)
//	    (lut generic INIT ascending))
//	  (gate_type DFF
//	    (properties sequential ff)
//	    (pin C input clock)
//	    (pin D input data)
//	    (pin Q output state)
//	    (sequential (clock C) (next_state D))))
func Load(path string) (*Library, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gatelib: %w: failed to open library: %w", ErrIO, err)
	}
	defer f.Close()

	lib, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("gatelib: %s: %w", path, err)
	}
	return lib, nil
}

// Parse reads a gate library from r. See Load for the format.
func Parse(r io.Reader) (*Library, error) {
	nodes, err := sexp.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("gatelib: %w", malformed(err))
	}
	if len(nodes) != 1 {
		return nil, fmt.Errorf("gatelib: %w: expected one library expression, found %d", ErrStructural, len(nodes))
	}
	root, ok := nodes[0].(*sexp.List)
	if !ok || root.Head() != "library" {
		return nil, fmt.Errorf("gatelib: %w: top-level expression is not (library ...)", ErrStructural)
	}
	name, err := root.Atom(1)
	if err != nil {
		return nil, fmt.Errorf("gatelib: library name: %w", malformed(err))
	}

	lib := NewLibrary(name)
	for _, node := range root.FindAll("gate_type") {
		gt, err := parseGateType(node)
		if err != nil {
			return nil, err
		}
		if err := lib.AddGateType(gt); err != nil {
			return nil, fmt.Errorf("gatelib: line %d: %w", node.Line(), err)
		}
	}
	return lib, nil
}

func parseGateType(node *sexp.List) (*GateType, error) {
	name, err := node.Atom(1)
	if err != nil {
		return nil, fmt.Errorf("gatelib: line %d: %w", node.Line(), malformed(err))
	}
	gt := NewGateType(name)
	wrap := func(l sexp.Node, err error) error {
		return fmt.Errorf("gatelib: line %d: gate type %s: %w", l.Line(), name, malformed(err))
	}

	if props, ok := node.Find("properties"); ok {
		values, err := props.AtomArgs()
		if err != nil {
			return nil, wrap(props, err)
		}
		for _, v := range values {
			gt.Properties[Property(v)] = struct{}{}
		}
	}

	for _, pn := range node.FindAll("pin") {
		pin, err := parsePin(pn)
		if err != nil {
			return nil, wrap(pn, err)
		}
		gt.Pins = append(gt.Pins, pin)
	}

	for _, fn := range node.FindAll("function") {
		args, err := fn.AtomArgs()
		if err != nil {
			return nil, wrap(fn, err)
		}
		if len(args) != 2 {
			return nil, wrap(fn, fmt.Errorf("function needs a pin and an expression"))
		}
		if err := gt.SetFunction(args[0], args[1]); err != nil {
			return nil, wrap(fn, err)
		}
	}

	lut, hasLUT := node.Find("lut")
	seq, hasSeq := node.Find("sequential")
	switch {
	case hasLUT && hasSeq:
		return nil, wrap(node, fmt.Errorf("both lut and sequential behavior given"))
	case hasLUT:
		args, err := lut.AtomArgs()
		if err != nil {
			return nil, wrap(lut, err)
		}
		if len(args) != 3 || (args[2] != "ascending" && args[2] != "descending") {
			return nil, wrap(lut, fmt.Errorf("expected (lut CATEGORY KEY ascending|descending)"))
		}
		gt.Behavior = LUT{Category: args[0], Key: args[1], Ascending: args[2] == "ascending"}
	case hasSeq:
		b := SequentialBehavior{}
		fields := map[string]*string{
			"clock":      &b.Clock,
			"next_state": &b.NextState,
			"set":        &b.Set,
			"reset":      &b.Reset,
		}
		for key, dst := range fields {
			if l, ok := seq.Find(key); ok {
				v, err := l.Atom(1)
				if err != nil {
					return nil, wrap(l, err)
				}
				*dst = v
			}
		}
		gt.Behavior = b
	}
	return gt, nil
}

func parsePin(node *sexp.List) (Pin, error) {
	var pin Pin
	var err error
	if pin.Name, err = node.Atom(1); err != nil {
		return pin, err
	}
	dir, err := node.Atom(2)
	if err != nil {
		return pin, err
	}
	if pin.Direction, err = ParsePinDirection(dir); err != nil {
		return pin, err
	}
	pin.Type = PinNone
	if typ, err := node.Atom(3); err == nil {
		if pin.Type, err = ParsePinType(typ); err != nil {
			return pin, err
		}
	}
	if group, ok := node.Find("group"); ok {
		if pin.Group, err = group.Atom(1); err != nil {
			return pin, err
		}
		idx, err := group.Atom(2)
		if err != nil {
			return pin, err
		}
		if pin.Index, err = strconv.Atoi(idx); err != nil {
			return pin, fmt.Errorf("invalid group index %q", idx)
		}
	}
	return pin, nil
}
