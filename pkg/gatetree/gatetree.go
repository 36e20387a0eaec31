// Package gatetree realizes Boolean functions as trees of primitive
// inverter, AND, OR and XOR gates.
//
// The compiler walks the expression tree of each function. Constants map to
// the ground and power nets of the netlist, variables to caller supplied
// nets, and every operator node to one new gate (n-ary operators are folded
// into a left-leaning chain of two-input gates). Gate types are found in the
// netlist's library by exact property match:
//
//	not  {combinational, c_inverter}  1 input
//	and  {combinational, c_and}       2 inputs
//	or   {combinational, c_or}        2 inputs
//	xor  {combinational, c_xor}       2 inputs
//
// Only single-bit functions built from these operators are accepted. Index
// nodes, multi-bit functions and empty functions are rejected.
package gatetree

import (
	"fmt"
	"sort"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/boolfunc"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/gatelib"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/netlist"
)

var primitiveProps = map[boolfunc.NodeType][]gatelib.Property{
	boolfunc.NodeNot: {gatelib.Combinational, gatelib.CInverter},
	boolfunc.NodeAnd: {gatelib.Combinational, gatelib.CAnd},
	boolfunc.NodeOr:  {gatelib.Combinational, gatelib.COr},
	boolfunc.NodeXor: {gatelib.Combinational, gatelib.CXor},
}

// compiler holds the state of one compile session.
type compiler struct {
	nl     *netlist.Netlist
	inputs map[string]*netlist.Net

	// createConstants allows the session to add ground and power gates
	// when the netlist has none.
	createConstants bool

	types    map[boolfunc.NodeType]*gatelib.GateType
	gnd, vcc *netlist.Net
	created  map[*netlist.Net]bool
}

func newCompiler(nl *netlist.Netlist, inputs map[string]*netlist.Net) *compiler {
	return &compiler{
		nl:      nl,
		inputs:  inputs,
		types:   make(map[boolfunc.NodeType]*gatelib.GateType),
		created: make(map[*netlist.Net]bool),
	}
}

// Build compiles functions into nl. inputs binds every variable of the
// functions to an existing net of nl. Constants use the netlist's ground and
// power nets, which must exist. The returned map holds the net realizing each
// function. Output nets created by the compiler are renamed after their
// function; bare variables and constants return the bound net unchanged.
//
// Build is not transactional: gates and nets created before a failure stay
// in nl.
func Build(nl *netlist.Netlist, functions map[string]boolfunc.Function, inputs map[string]*netlist.Net) (map[string]*netlist.Net, error) {
	if nl == nil {
		return nil, fmt.Errorf("gatetree: %w: nil netlist", netlist.ErrInvalidArgument)
	}
	for name, n := range inputs {
		if n == nil || n.Netlist() != nl {
			return nil, fmt.Errorf("gatetree: %w: input %s is not a net of the netlist",
				netlist.ErrInvalidArgument, name)
		}
	}
	return newCompiler(nl, inputs).compileAll(functions)
}

// Synthesize builds a fresh netlist over lib realizing functions. Every
// variable becomes a global input net named after it and every function a
// global output net. Port data (see netlist.PortCategory) records which
// variable or function each global net stands for, including when an output
// is a bare variable or a constant and shares its net with an input or a
// constant driver.
func Synthesize(functions map[string]boolfunc.Function, lib *gatelib.Library) (*netlist.Netlist, error) {
	if lib == nil {
		return nil, fmt.Errorf("gatetree: %w: nil library", netlist.ErrInvalidArgument)
	}
	if len(functions) == 0 {
		return nil, fmt.Errorf("gatetree: %w: no functions", netlist.ErrInvalidArgument)
	}

	nl := netlist.New(lib)
	nl.SetName("gate_tree")
	inputs := make(map[string]*netlist.Net)
	for _, name := range variableNames(functions) {
		n, err := nl.CreateNet(name)
		if err != nil {
			return nil, fmt.Errorf("gatetree: failed to create input %s: %w", name, err)
		}
		if err := nl.MarkGlobalInputNet(n); err != nil {
			return nil, err
		}
		n.AddInputPort(name)
		inputs[name] = n
	}

	c := newCompiler(nl, inputs)
	c.createConstants = true
	outs, err := c.compileAll(functions)
	if err != nil {
		return nil, err
	}
	for name, n := range outs {
		if err := nl.MarkGlobalOutputNet(n); err != nil {
			return nil, err
		}
		n.AddOutputPort(name)
	}
	return nl, nil
}

func (c *compiler) compileAll(functions map[string]boolfunc.Function) (map[string]*netlist.Net, error) {
	names := make([]string, 0, len(functions))
	for name := range functions {
		names = append(names, name)
	}
	sort.Strings(names)

	outs := make(map[string]*netlist.Net, len(functions))
	for _, name := range names {
		n, err := c.compile(functions[name])
		if err != nil {
			return nil, fmt.Errorf("gatetree: failed to build %s: %w", name, err)
		}
		if c.created[n] {
			if err := n.SetName(c.nl.UniqueNetName(name)); err != nil {
				return nil, err
			}
			delete(c.created, n)
		}
		outs[name] = n
	}
	return outs, nil
}

func (c *compiler) compile(f boolfunc.Function) (*netlist.Net, error) {
	if f.IsEmpty() {
		return nil, fmt.Errorf("%w: empty function", netlist.ErrInvalidArgument)
	}
	if f.Size() != 1 {
		return nil, fmt.Errorf("%w: %d-bit function %s", netlist.ErrStructural, f.Size(), f)
	}

	node := f.TopLevelNode()
	switch node.Type {
	case boolfunc.NodeConstant:
		return c.constant(node.Value)
	case boolfunc.NodeVariable:
		n, ok := c.inputs[node.Name]
		if !ok || n == nil {
			return nil, fmt.Errorf("%w: variable %s is not bound to a net", netlist.ErrLookup, node.Name)
		}
		return n, nil
	case boolfunc.NodeNot, boolfunc.NodeAnd, boolfunc.NodeOr, boolfunc.NodeXor:
	default:
		return nil, fmt.Errorf("%w: unsupported %s node in %s", netlist.ErrStructural, node.Type, f)
	}

	params := f.Parameters()
	operands := make([]*netlist.Net, len(params))
	for i, p := range params {
		n, err := c.compile(p)
		if err != nil {
			return nil, err
		}
		operands[i] = n
	}

	if node.Type == boolfunc.NodeNot {
		if len(operands) != 1 {
			return nil, fmt.Errorf("%w: negation with %d operands", netlist.ErrStructural, len(operands))
		}
		return c.gate(node.Type, operands)
	}
	if len(operands) < 2 {
		return nil, fmt.Errorf("%w: %s with %d operands", netlist.ErrStructural, node.Type, len(operands))
	}
	acc := operands[0]
	for _, n := range operands[1:] {
		out, err := c.gate(node.Type, []*netlist.Net{acc, n})
		if err != nil {
			return nil, err
		}
		acc = out
	}
	return acc, nil
}

// gate instantiates the primitive for op, wires operands to its inputs in
// order and returns its new output net.
func (c *compiler) gate(op boolfunc.NodeType, operands []*netlist.Net) (*netlist.Net, error) {
	typ, err := c.primitive(op, len(operands))
	if err != nil {
		return nil, err
	}
	g, err := c.nl.CreateGate(typ, "")
	if err != nil {
		return nil, err
	}
	for i, p := range typ.InputPins() {
		if _, err := operands[i].AddDestination(g, p.Name); err != nil {
			return nil, err
		}
	}
	out, err := c.nl.CreateNet("")
	if err != nil {
		return nil, err
	}
	if _, err := out.AddSource(g, typ.OutputPins()[0].Name); err != nil {
		return nil, err
	}
	c.created[out] = true
	return out, nil
}

func (c *compiler) primitive(op boolfunc.NodeType, nIn int) (*gatelib.GateType, error) {
	if typ, ok := c.types[op]; ok {
		return typ, nil
	}
	typ, err := c.nl.Library().FindExact(primitiveProps[op], nIn, 1)
	if err != nil {
		return nil, err
	}
	c.types[op] = typ
	return typ, nil
}

func (c *compiler) constant(value bool) (*netlist.Net, error) {
	slot := &c.gnd
	if value {
		slot = &c.vcc
	}
	if *slot != nil {
		return *slot, nil
	}
	n := c.nl.ConstantNet(value)
	if n == nil {
		if !c.createConstants {
			return nil, fmt.Errorf("%w: netlist has no constant %v net", netlist.ErrLookup, value)
		}
		var err error
		if n, err = c.nl.CreateConstantDriver(value, ""); err != nil {
			return nil, err
		}
	}
	*slot = n
	return n, nil
}

func variableNames(functions map[string]boolfunc.Function) []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range functions {
		if f.IsEmpty() {
			continue
		}
		for _, v := range f.VariableNames() {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	sort.Strings(out)
	return out
}
