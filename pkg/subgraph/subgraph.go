// Package subgraph derives standalone netlists and Boolean functions from
// sets of gates. Nothing in this package modifies its input netlist.
package subgraph

import (
	"fmt"
	"sort"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/boolfunc"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/netlist"
)

// CopySubgraphNetlist copies gates, and every net touching them, into a new
// netlist over the same library. Copies get new IDs and keep names, types,
// custom functions and data. Endpoints on gates outside the set are dropped.
// With keepBoundaryAsGlobal set, a net driven from outside the set becomes a
// global input of the copy and a net read outside the set becomes a global
// output. Global flags of the original nets are kept.
//
// Ground and power nets are not copied: the copy gets its own flagged ground
// and power gates whose output nets take their place. Ground and power gates
// inside the set are dropped for the same reason.
func CopySubgraphNetlist(gates []*netlist.Gate, keepBoundaryAsGlobal bool) (*netlist.Netlist, error) {
	src, set, err := gateSet(gates)
	if err != nil {
		return nil, err
	}

	c := netlist.New(src.Library())
	c.SetName(src.Name())
	c.SetDesignName(src.DesignName())

	copies := make(map[*netlist.Gate]*netlist.Gate, len(set))
	for _, g := range sortedGates(set) {
		if g.IsGndGate() || g.IsVccGate() {
			continue
		}
		cg, err := c.CreateGate(g.Type(), g.Name())
		if err != nil {
			return nil, fmt.Errorf("subgraph: failed to copy %s: %w", g, err)
		}
		cg.SetLocation(g.Location())
		cg.CopyDataFrom(&g.DataContainer)
		for pin, f := range g.CustomFunctions() {
			if err := cg.AddBooleanFunction(pin, f); err != nil {
				return nil, fmt.Errorf("subgraph: failed to copy %s: %w", g, err)
			}
		}
		copies[g] = cg
	}

	consts := &constants{nl: c}
	for _, n := range touchedNets(set) {
		var cn *netlist.Net
		switch {
		case n.IsGndNet():
			cn, err = consts.net(false, n.Name())
		case n.IsVccNet():
			cn, err = consts.net(true, n.Name())
		default:
			cn, err = c.CreateNet(n.Name())
		}
		if err != nil {
			return nil, fmt.Errorf("subgraph: failed to copy %s: %w", n, err)
		}

		outsideSrc, outsideDst := false, false
		for _, ep := range n.Sources() {
			cg, ok := copies[ep.Gate()]
			if !ok {
				outsideSrc = outsideSrc || !set[ep.Gate()]
				continue
			}
			if _, err := cn.AddSource(cg, ep.Pin()); err != nil {
				return nil, fmt.Errorf("subgraph: failed to copy %s: %w", n, err)
			}
		}
		for _, ep := range n.Destinations() {
			cg, ok := copies[ep.Gate()]
			if !ok {
				outsideDst = outsideDst || !set[ep.Gate()]
				continue
			}
			if _, err := cn.AddDestination(cg, ep.Pin()); err != nil {
				return nil, fmt.Errorf("subgraph: failed to copy %s: %w", n, err)
			}
		}
		if cn.IsGndNet() || cn.IsVccNet() {
			continue
		}

		if n.IsGlobalInput() || (keepBoundaryAsGlobal && outsideSrc) {
			if err := c.MarkGlobalInputNet(cn); err != nil {
				return nil, err
			}
		}
		if n.IsGlobalOutput() || (keepBoundaryAsGlobal && outsideDst) {
			if err := c.MarkGlobalOutputNet(cn); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

// constants lazily creates the ground and power drivers of a copy.
type constants struct {
	nl       *netlist.Netlist
	gnd, vcc *netlist.Net
}

func (k *constants) net(value bool, name string) (*netlist.Net, error) {
	slot := &k.gnd
	if value {
		slot = &k.vcc
	}
	if *slot == nil {
		n, err := k.nl.CreateConstantDriver(value, name)
		if err != nil {
			return nil, fmt.Errorf("subgraph: %w", err)
		}
		*slot = n
	}
	return *slot, nil
}

// GetSubgraphFunction returns the function computed at output by the gates
// of the subgraph. Nets not driven from inside the subgraph become variables
// named by netlist.NetVariableName; ground and power nets become constants.
//
// It fails when output does not have exactly one driver, when the expansion
// meets a combinational cycle inside the subgraph, or when a gate function
// cannot be resolved.
func GetSubgraphFunction(gates []*netlist.Gate, output *netlist.Net) (boolfunc.Function, error) {
	if output == nil {
		return boolfunc.Function{}, fmt.Errorf("subgraph: %w: nil output net", netlist.ErrInvalidArgument)
	}
	_, set, err := gateSet(gates)
	if err != nil {
		return boolfunc.Function{}, err
	}
	if output.NumSources() != 1 {
		return boolfunc.Function{}, fmt.Errorf("subgraph: %w: %s has %d drivers",
			netlist.ErrStructural, output, output.NumSources())
	}
	e := &expander{
		set:      set,
		cache:    make(map[*netlist.Net]boolfunc.Function),
		visiting: make(map[*netlist.Net]bool),
	}
	return e.expand(output)
}

type expander struct {
	set      map[*netlist.Gate]bool
	cache    map[*netlist.Net]boolfunc.Function
	visiting map[*netlist.Net]bool
}

func (e *expander) expand(n *netlist.Net) (boolfunc.Function, error) {
	if f, ok := e.cache[n]; ok {
		return f, nil
	}
	if e.visiting[n] {
		return boolfunc.Function{}, fmt.Errorf("subgraph: %w: combinational cycle through %s",
			netlist.ErrStructural, n)
	}

	switch {
	case n.IsGndNet():
		return boolfunc.Const(false), nil
	case n.IsVccNet():
		return boolfunc.Const(true), nil
	}
	srcs := n.Sources()
	if len(srcs) != 1 || !e.set[srcs[0].Gate()] {
		return boolfunc.Var(netlist.NetVariableName(n)), nil
	}

	e.visiting[n] = true
	defer delete(e.visiting, n)

	g, pin := srcs[0].Gate(), srcs[0].Pin()
	f, err := g.BooleanFunction(pin)
	if err != nil {
		return boolfunc.Function{}, fmt.Errorf("subgraph: %w", err)
	}
	repl := make(map[string]boolfunc.Function)
	for _, v := range f.VariableNames() {
		in := g.FaninNet(v)
		if in == nil {
			return boolfunc.Function{}, fmt.Errorf("subgraph: %w: input %s of %s is unconnected",
				netlist.ErrStructural, v, g)
		}
		sub, err := e.expand(in)
		if err != nil {
			return boolfunc.Function{}, err
		}
		repl[v] = sub
	}
	if len(repl) > 0 {
		if f, err = f.SubstituteAll(repl); err != nil {
			return boolfunc.Function{}, fmt.Errorf("subgraph: %w: %w", netlist.ErrStructural, err)
		}
	}
	e.cache[n] = f
	return f, nil
}

func gateSet(gates []*netlist.Gate) (*netlist.Netlist, map[*netlist.Gate]bool, error) {
	if len(gates) == 0 {
		return nil, nil, fmt.Errorf("subgraph: %w: empty gate set", netlist.ErrInvalidArgument)
	}
	var nl *netlist.Netlist
	set := make(map[*netlist.Gate]bool, len(gates))
	for _, g := range gates {
		if g == nil {
			return nil, nil, fmt.Errorf("subgraph: %w: nil gate", netlist.ErrInvalidArgument)
		}
		if nl == nil {
			nl = g.Netlist()
		} else if g.Netlist() != nl {
			return nil, nil, fmt.Errorf("subgraph: %w: gates from different netlists",
				netlist.ErrInvalidArgument)
		}
		set[g] = true
	}
	return nl, set, nil
}

func sortedGates(set map[*netlist.Gate]bool) []*netlist.Gate {
	out := make([]*netlist.Gate, 0, len(set))
	for g := range set {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func touchedNets(set map[*netlist.Gate]bool) []*netlist.Net {
	seen := make(map[*netlist.Net]bool)
	var out []*netlist.Net
	for g := range set {
		for _, n := range append(g.FaninNets(), g.FanoutNets()...) {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}
