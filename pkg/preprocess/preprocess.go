// Package preprocess implements netlist clean-up passes that run before
// decomposition or resynthesis: dropping buffers and identity gates,
// collapsing inverter pairs, and removing gates and nets nothing observes.
//
// Every pass returns the number of objects it removed. Passes are not
// transactional; wrap them in modify.Atomic when a failure must leave the
// netlist untouched.
package preprocess

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/boolfunc"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/gatelib"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/logging"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/modify"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/netlist"
)

// Options tune the passes.
type Options struct {
	// Logger receives one record per pass. Nil discards them.
	Logger *slog.Logger
}

// DefaultOptions returns the default options.
func DefaultOptions() Options {
	return Options{}
}

func (o Options) logger() *slog.Logger {
	return logging.OrDiscard(o.Logger)
}

// Stats counts what Clean removed.
type Stats struct {
	Buffers   int
	Inverters int
	Gates     int
	Nets      int
	Rounds    int
}

// Total returns the number of removed objects.
func (s Stats) Total() int {
	return s.Buffers + s.Inverters + s.Gates + s.Nets
}

// Clean runs every pass until none of them changes the netlist.
func Clean(nl *netlist.Netlist, opts Options) (Stats, error) {
	var st Stats
	if nl == nil {
		return st, fmt.Errorf("preprocess: %w: nil netlist", netlist.ErrInvalidArgument)
	}
	for {
		st.Rounds++
		before := st.Total()

		n, err := RemoveBuffers(nl, opts)
		st.Buffers += n
		if err != nil {
			return st, err
		}
		n, err = RemoveRedundantInverters(nl, opts)
		st.Inverters += n
		if err != nil {
			return st, err
		}
		n, err = RemoveUnconnectedGates(nl, opts)
		st.Gates += n
		if err != nil {
			return st, err
		}
		n, err = RemoveUnconnectedNets(nl, opts)
		st.Nets += n
		if err != nil {
			return st, err
		}

		if st.Total() == before {
			break
		}
	}
	opts.logger().Info("cleaned netlist",
		"netlist", nl.Name(),
		"buffers", st.Buffers,
		"inverters", st.Inverters,
		"gates", st.Gates,
		"nets", st.Nets,
		"rounds", st.Rounds)
	return st, nil
}

// RemoveBuffers removes every combinational single-output gate whose output
// function, with inputs tied to ground or power folded in, is one of its
// inputs or a constant. The output net is merged into that input net or
// into the matching constant net.
func RemoveBuffers(nl *netlist.Netlist, opts Options) (int, error) {
	if nl == nil {
		return 0, fmt.Errorf("preprocess: %w: nil netlist", netlist.ErrInvalidArgument)
	}
	count := 0
	for _, g := range nl.Gates(candidate) {
		if !nl.ContainsGate(g) {
			continue
		}
		out := g.FanoutNets()[0]
		if out.IsGlobalInput() || out.NumSources() != 1 {
			continue
		}
		f, err := effectiveFunction(g)
		if errors.Is(err, netlist.ErrLookup) {
			continue
		}
		if err != nil {
			return count, err
		}

		var keep *netlist.Net
		switch {
		case f.IsVariable():
			keep = g.FaninNet(f.TopLevelNode().Name)
		case f.IsConstant():
			v, _ := f.ConstantValue()
			keep = nl.ConstantNet(v)
		}
		if keep == nil || keep == out {
			continue
		}

		name := g.Name()
		if err := nl.DeleteGate(g); err != nil {
			return count, fmt.Errorf("preprocess: failed to delete buffer %s: %w", name, err)
		}
		if _, err := modify.ConnectNets(keep, out); err != nil {
			return count, fmt.Errorf("preprocess: failed to bypass buffer %s: %w", name, err)
		}
		count++
	}
	opts.logger().Debug("removed buffers", "netlist", nl.Name(), "count", count)
	return count, nil
}

// candidate accepts combinational gates with exactly one output pin, which
// is connected. Gates without a resolvable function are skipped later.
func candidate(g *netlist.Gate) bool {
	t := g.Type()
	if !t.HasProperty(gatelib.Combinational) || t.HasProperty(gatelib.Sequential) {
		return false
	}
	if g.IsGndGate() || g.IsVccGate() {
		return false
	}
	return len(t.OutputPins()) == 1 && len(g.FanoutNets()) == 1
}

// effectiveFunction returns the simplified output function of g with the
// pins read from constant nets replaced by their values.
func effectiveFunction(g *netlist.Gate) (boolfunc.Function, error) {
	f, err := g.BooleanFunction("")
	if err != nil {
		return boolfunc.Function{}, fmt.Errorf("preprocess: %w", err)
	}
	consts := make(map[string]boolfunc.Function)
	for _, ep := range g.FaninEndpoints() {
		switch n := ep.Net(); {
		case n.IsGndNet():
			consts[ep.Pin()] = boolfunc.Const(false)
		case n.IsVccNet():
			consts[ep.Pin()] = boolfunc.Const(true)
		}
	}
	if len(consts) > 0 {
		if f, err = f.SubstituteAll(consts); err != nil {
			return boolfunc.Function{}, fmt.Errorf("preprocess: %w: %s: %w", netlist.ErrStructural, g, err)
		}
	}
	return f.Simplify(), nil
}

// RemoveRedundantInverters bypasses every inverter fed by another inverter:
// the readers of the second inverter read the input of the first one. The
// first inverter is removed too when nothing else reads it.
func RemoveRedundantInverters(nl *netlist.Netlist, opts Options) (int, error) {
	if nl == nil {
		return 0, fmt.Errorf("preprocess: %w: nil netlist", netlist.ErrInvalidArgument)
	}
	count := 0
	for _, second := range nl.Gates(candidate) {
		if !nl.ContainsGate(second) {
			continue
		}
		mid, ok := inverterInput(second)
		if !ok || mid.NumSources() != 1 || mid.IsGlobalInput() {
			continue
		}
		first := mid.SourceGates()[0]
		if first == second || !candidate(first) {
			continue
		}
		in, ok := inverterInput(first)
		if !ok {
			continue
		}
		out := second.FanoutNets()[0]
		if out.IsGlobalInput() || out.NumSources() != 1 || in == out {
			continue
		}

		name := second.Name()
		if err := nl.DeleteGate(second); err != nil {
			return count, fmt.Errorf("preprocess: failed to delete inverter %s: %w", name, err)
		}
		if _, err := modify.ConnectNets(in, out); err != nil {
			return count, fmt.Errorf("preprocess: failed to bypass inverter pair at %s: %w", name, err)
		}
		count++

		if mid.NumDestinations() == 0 && !mid.IsGlobalOutput() {
			name = first.Name()
			if err := nl.DeleteGate(first); err != nil {
				return count, fmt.Errorf("preprocess: failed to delete inverter %s: %w", name, err)
			}
			if err := nl.DeleteNet(mid); err != nil {
				return count, fmt.Errorf("preprocess: %w", err)
			}
			count++
		}
	}
	opts.logger().Debug("removed inverters", "netlist", nl.Name(), "count", count)
	return count, nil
}

// inverterInput returns the net g inverts when g computes the negation of
// one of its inputs.
func inverterInput(g *netlist.Gate) (*netlist.Net, bool) {
	f, err := effectiveFunction(g)
	if err != nil || f.IsEmpty() || f.IsConstant() || f.TopLevelNode().Type != boolfunc.NodeNot {
		return nil, false
	}
	arg := f.Parameters()[0]
	if !arg.IsVariable() {
		return nil, false
	}
	n := g.FaninNet(arg.TopLevelNode().Name)
	return n, n != nil
}

// RemoveUnconnectedGates deletes gates none of whose outputs is read or is
// a global output, repeating until no such gate is left. Ground and power
// gates stay.
func RemoveUnconnectedGates(nl *netlist.Netlist, opts Options) (int, error) {
	if nl == nil {
		return 0, fmt.Errorf("preprocess: %w: nil netlist", netlist.ErrInvalidArgument)
	}
	count := 0
	for {
		dead := nl.Gates(unobserved)
		if len(dead) == 0 {
			break
		}
		for _, g := range dead {
			name := g.Name()
			if err := nl.DeleteGate(g); err != nil {
				return count, fmt.Errorf("preprocess: failed to delete %s: %w", name, err)
			}
			count++
		}
	}
	opts.logger().Debug("removed unconnected gates", "netlist", nl.Name(), "count", count)
	return count, nil
}

func unobserved(g *netlist.Gate) bool {
	if g.IsGndGate() || g.IsVccGate() {
		return false
	}
	for _, n := range g.FanoutNets() {
		if n.NumDestinations() > 0 || n.IsGlobalOutput() {
			return false
		}
	}
	return true
}

// RemoveUnconnectedNets deletes nets without sources and destinations that
// are neither global inputs nor global outputs.
func RemoveUnconnectedNets(nl *netlist.Netlist, opts Options) (int, error) {
	if nl == nil {
		return 0, fmt.Errorf("preprocess: %w: nil netlist", netlist.ErrInvalidArgument)
	}
	count := 0
	for _, n := range nl.Nets(unconnected) {
		name := n.Name()
		if err := nl.DeleteNet(n); err != nil {
			return count, fmt.Errorf("preprocess: failed to delete net %s: %w", name, err)
		}
		count++
	}
	opts.logger().Debug("removed unconnected nets", "netlist", nl.Name(), "count", count)
	return count, nil
}

func unconnected(n *netlist.Net) bool {
	return n.NumSources() == 0 && n.NumDestinations() == 0 && !n.IsGlobalInput() && !n.IsGlobalOutput()
}
