package replace

import (
	"fmt"
	"sort"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/boolfunc"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/gatelib"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/gatetree"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/netlist"
)

// DecomposeGate replaces g by a tree of inverter, AND, OR and XOR gates
// from its own netlist's library realizing the functions of its connected
// outputs.
func DecomposeGate(g *netlist.Gate, opts Options) (*Result, error) {
	if g == nil {
		return nil, fmt.Errorf("replace: %w: nil gate", netlist.ErrInvalidArgument)
	}
	functions, err := gateFunctions(g)
	if err != nil {
		return nil, err
	}
	r, err := gatetree.Synthesize(functions, g.Netlist().Library())
	if err != nil {
		return nil, fmt.Errorf("replace: failed to decompose %s: %w", g, err)
	}
	return replaceGate(g, r, opts)
}

// DecomposeGates decomposes every gate accepted by filter and returns the
// number of decomposed gates. A nil filter selects DecomposableGate. The
// first failure stops the pass; gates decomposed before it stay decomposed.
func DecomposeGates(nl *netlist.Netlist, filter func(*netlist.Gate) bool, opts Options) (int, error) {
	if nl == nil {
		return 0, fmt.Errorf("replace: %w: nil netlist", netlist.ErrInvalidArgument)
	}
	if filter == nil {
		filter = DecomposableGate
	}
	log := opts.logger()
	count := 0
	for _, g := range nl.Gates(filter) {
		name := g.Name()
		if _, err := DecomposeGate(g, opts); err != nil {
			return count, fmt.Errorf("replace: decomposed %d gates, failed at %s: %w", count, name, err)
		}
		count++
	}
	log.Info("decomposed gates", "netlist", nl.Name(), "count", count)
	return count, nil
}

// DecomposeGatesOfType decomposes every gate of the given type.
func DecomposeGatesOfType(nl *netlist.Netlist, typ *gatelib.GateType, opts Options) (int, error) {
	if typ == nil {
		return 0, fmt.Errorf("replace: %w: nil gate type", netlist.ErrInvalidArgument)
	}
	return DecomposeGates(nl, func(g *netlist.Gate) bool { return g.Type() == typ }, opts)
}

// DecomposableGate reports whether g is a combinational gate with at least
// one connected output that is not a constant driver and not already an
// inverter or a two-input AND, OR or XOR gate.
func DecomposableGate(g *netlist.Gate) bool {
	t := g.Type()
	if !t.HasProperty(gatelib.Combinational) || t.HasProperty(gatelib.Sequential) {
		return false
	}
	if g.IsGndGate() || g.IsVccGate() || t.HasProperty(gatelib.Ground) || t.HasProperty(gatelib.Power) {
		return false
	}
	if len(g.FanoutNets()) == 0 {
		return false
	}
	return !isTreePrimitive(t)
}

func isTreePrimitive(t *gatelib.GateType) bool {
	nIn := len(t.InputPins())
	switch {
	case t.HasExactProperties(gatelib.Combinational, gatelib.CInverter):
		return nIn == 1
	case t.HasExactProperties(gatelib.Combinational, gatelib.CAnd),
		t.HasExactProperties(gatelib.Combinational, gatelib.COr),
		t.HasExactProperties(gatelib.Combinational, gatelib.CXor):
		return nIn == 2
	}
	return false
}

// gateFunctions resolves the functions of the connected outputs of g over
// its input pin names.
func gateFunctions(g *netlist.Gate) (map[string]boolfunc.Function, error) {
	functions := make(map[string]boolfunc.Function)
	for _, p := range g.Type().OutputPins() {
		if g.FanoutNet(p.Name) == nil {
			continue
		}
		f, err := g.BooleanFunction(p.Name)
		if err != nil {
			return nil, fmt.Errorf("replace: %w", err)
		}
		functions[p.Name] = f
	}
	if len(functions) == 0 {
		return nil, fmt.Errorf("replace: %w: %s has no connected outputs", netlist.ErrInvalidArgument, g)
	}
	return functions, nil
}

// replaceGate swaps g for r, whose ports are named after the pins of g.
func replaceGate(g *netlist.Gate, r *netlist.Netlist, opts Options) (*Result, error) {
	mapping, err := portMapping(r, func(port string, input bool) (*netlist.Net, error) {
		if input {
			if n := g.FaninNet(port); n != nil {
				return n, nil
			}
			return nil, fmt.Errorf("replace: %w: input %s of %s is unconnected", netlist.ErrLookup, port, g)
		}
		if n := g.FanoutNet(port); n != nil {
			return n, nil
		}
		return nil, fmt.Errorf("replace: %w: %s has no output %s", netlist.ErrLookup, g, port)
	})
	if err != nil {
		return nil, err
	}
	res, err := ReplaceSubgraph(g.Netlist(), []*netlist.Gate{g}, r, mapping, true, opts)
	if err != nil {
		return res, fmt.Errorf("replace: failed to replace %s: %w", g, err)
	}
	return res, nil
}

// portMapping builds the mapping of r's global nets from the port data the
// synthesizers record on them. resolve returns the destination net of one
// port. Input ports come first in each list.
func portMapping(r *netlist.Netlist, resolve func(port string, input bool) (*netlist.Net, error)) (Mapping, error) {
	mapping := make(Mapping)
	nets := append(r.GlobalInputNets(), r.GlobalOutputNets()...)
	for _, n := range r.Nets(nil) {
		if n.IsGndNet() || n.IsVccNet() {
			nets = append(nets, n)
		}
	}
	sort.Slice(nets, func(i, j int) bool { return nets[i].ID() < nets[j].ID() })

	for _, n := range nets {
		if _, done := mapping[n]; done {
			continue
		}
		ins, outs := n.Ports()
		var targets []*netlist.Net
		for _, p := range ins {
			t, err := resolve(p, true)
			if err != nil {
				return nil, err
			}
			targets = append(targets, t)
		}
		for _, p := range outs {
			t, err := resolve(p, false)
			if err != nil {
				return nil, err
			}
			targets = append(targets, t)
		}
		if len(targets) == 0 && (n.IsGlobalInput() || n.IsGlobalOutput()) {
			return nil, fmt.Errorf("replace: %w: global net %s carries no port", netlist.ErrLookup, n)
		}
		mapping[n] = targets
	}
	return mapping, nil
}
