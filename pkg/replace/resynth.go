package replace

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/boolfunc"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/gatelib"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/netlist"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/subgraph"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/synth"
)

// ResynthesizeGate replaces g by the circuit s synthesizes over target for
// the functions of g's connected outputs. Every gate type of the result
// must also exist in the library of g's netlist.
func ResynthesizeGate(ctx context.Context, g *netlist.Gate, s synth.Synthesizer, target *gatelib.Library, opts Options) (*Result, error) {
	if g == nil || s == nil || target == nil {
		return nil, fmt.Errorf("replace: %w: gate, synthesizer and target library are required", netlist.ErrInvalidArgument)
	}
	functions, err := gateFunctions(g)
	if err != nil {
		return nil, err
	}
	r, err := s.Synthesize(ctx, functions, target)
	if err != nil {
		return nil, fmt.Errorf("replace: failed to resynthesize %s: %w", g, err)
	}
	return replaceGate(g, r, opts)
}

// ResynthesizeGates resynthesizes every gate accepted by filter and returns
// the number of replaced gates. A nil filter selects ResynthesizableGate.
// Gates computing the same functions share one synthesis run for the
// duration of the call.
func ResynthesizeGates(ctx context.Context, nl *netlist.Netlist, filter func(*netlist.Gate) bool, s synth.Synthesizer, target *gatelib.Library, opts Options) (int, error) {
	if nl == nil || s == nil || target == nil {
		return 0, fmt.Errorf("replace: %w: netlist, synthesizer and target library are required", netlist.ErrInvalidArgument)
	}
	if filter == nil {
		filter = ResynthesizableGate
	}
	log := opts.logger()
	cache := make(map[string]*netlist.Netlist)
	count := 0
	for _, g := range nl.Gates(filter) {
		name := g.Name()
		fail := func(err error) (int, error) {
			return count, fmt.Errorf("replace: resynthesized %d gates, failed at %s: %w", count, name, err)
		}
		functions, err := gateFunctions(g)
		if err != nil {
			return fail(err)
		}
		key := gateKey(g.Type(), functions)
		r, ok := cache[key]
		if !ok {
			if r, err = s.Synthesize(ctx, functions, target); err != nil {
				return fail(err)
			}
			cache[key] = r
		}
		if _, err := replaceGate(g, r, opts); err != nil {
			return fail(err)
		}
		count++
	}
	log.Info("resynthesized gates", "netlist", nl.Name(), "target", target.Name,
		"count", count, "synthesized", len(cache))
	return count, nil
}

// ResynthesizeGatesOfType resynthesizes every gate of the given type.
func ResynthesizeGatesOfType(ctx context.Context, nl *netlist.Netlist, typ *gatelib.GateType, s synth.Synthesizer, target *gatelib.Library, opts Options) (int, error) {
	if typ == nil {
		return 0, fmt.Errorf("replace: %w: nil gate type", netlist.ErrInvalidArgument)
	}
	return ResynthesizeGates(ctx, nl, func(g *netlist.Gate) bool { return g.Type() == typ }, s, target, opts)
}

// ResynthesizableGate reports whether g is a combinational gate with at
// least one connected output that is not a constant driver.
func ResynthesizableGate(g *netlist.Gate) bool {
	t := g.Type()
	if !t.HasProperty(gatelib.Combinational) || t.HasProperty(gatelib.Sequential) {
		return false
	}
	if g.IsGndGate() || g.IsVccGate() || t.HasProperty(gatelib.Ground) || t.HasProperty(gatelib.Power) {
		return false
	}
	return len(g.FanoutNets()) > 0
}

// ResynthesizeSubgraph replaces gates by one circuit synthesized over
// target. The outputs are the nets driven by the gates that are global
// outputs or read by a gate outside the set; the inputs are the nets the
// set reads without driving them.
func ResynthesizeSubgraph(ctx context.Context, dst *netlist.Netlist, gates []*netlist.Gate, s synth.Synthesizer, target *gatelib.Library, opts Options) (*Result, error) {
	if dst == nil || s == nil || target == nil || len(gates) == 0 {
		return nil, fmt.Errorf("replace: %w: netlist, gates, synthesizer and target library are required",
			netlist.ErrInvalidArgument)
	}
	set := make(map[*netlist.Gate]bool, len(gates))
	for _, g := range gates {
		if g == nil || !dst.ContainsGate(g) {
			return nil, fmt.Errorf("replace: %w: subgraph gate is not part of %s", netlist.ErrInvalidArgument, dst.Name())
		}
		set[g] = true
	}

	byVar := make(map[string]*netlist.Net)
	functions := make(map[string]boolfunc.Function)
	for _, g := range gates {
		for _, n := range g.FaninNets() {
			byVar[netlist.NetVariableName(n)] = n
		}
		for _, n := range g.FanoutNets() {
			name := netlist.NetVariableName(n)
			byVar[name] = n
			if _, done := functions[name]; done || !leavesSet(n, set) {
				continue
			}
			f, err := subgraph.GetSubgraphFunction(gates, n)
			if err != nil {
				return nil, fmt.Errorf("replace: %w", err)
			}
			functions[name] = f.Simplify()
		}
	}
	if len(functions) == 0 {
		return nil, fmt.Errorf("replace: %w: subgraph drives no external net", netlist.ErrInvalidArgument)
	}

	r, err := s.Synthesize(ctx, functions, target)
	if err != nil {
		return nil, fmt.Errorf("replace: failed to resynthesize subgraph: %w", err)
	}
	mapping, err := portMapping(r, func(port string, _ bool) (*netlist.Net, error) {
		if n, ok := byVar[port]; ok {
			return n, nil
		}
		return nil, fmt.Errorf("replace: %w: synthesis result has unknown port %s", netlist.ErrLookup, port)
	})
	if err != nil {
		return nil, err
	}
	res, err := ReplaceSubgraph(dst, gates, r, mapping, true, opts)
	if err != nil {
		return res, fmt.Errorf("replace: failed to replace subgraph: %w", err)
	}
	return res, nil
}

// leavesSet reports whether n is observed outside set.
func leavesSet(n *netlist.Net, set map[*netlist.Gate]bool) bool {
	if n.IsGlobalOutput() {
		return true
	}
	for _, ep := range n.Destinations() {
		if !set[ep.Gate()] {
			return true
		}
	}
	return false
}

// gateKey identifies gates of one type computing the same functions, which
// covers LUT configurations and per-gate function overrides.
func gateKey(t *gatelib.GateType, functions map[string]boolfunc.Function) string {
	pins := make([]string, 0, len(functions))
	for pin := range functions {
		pins = append(pins, pin)
	}
	sort.Strings(pins)
	var sb strings.Builder
	sb.WriteString(t.Name)
	for _, pin := range pins {
		fmt.Fprintf(&sb, "|%s=%s", pin, functions[pin])
	}
	return sb.String()
}
