package replace

import (
	"fmt"
	"log/slog"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/logging"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/modify"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/netlist"
)

// Options tune the replacement passes. The zero value merges output nets
// and logs nothing.
type Options struct {
	// StrictOutputMerge rejects a global output of the replacement that
	// maps to more than one destination net instead of merging them.
	StrictOutputMerge bool

	// Logger receives progress records. Nil discards them.
	Logger *slog.Logger
}

// DefaultOptions returns the default options.
func DefaultOptions() Options {
	return Options{}
}

func (o Options) logger() *slog.Logger {
	return logging.OrDiscard(o.Logger)
}

// Mapping binds each global net of a replacement netlist to the
// destination nets it stands for. A global input maps to exactly one net. A
// global output maps to one or more nets, which are merged into the first.
// A net that is both maps to its input counterpart first, followed by the
// output nets merged into it.
type Mapping map[*netlist.Net][]*netlist.Net

// Result describes what a replacement changed in the destination netlist.
type Result struct {
	Gates   []*netlist.Gate // gates created for the replacement
	Nets    []*netlist.Net  // nets created for the replacement
	Merged  int             // destination nets merged away
	Deleted int             // original gates deleted
	Removed int             // original nets left unconnected and deleted
}

// ReplaceSubgraph instantiates r inside dst and, when deleteOriginal is
// set, deletes the gates of subgraph. It runs in four phases:
//
//  1. every non-constant gate of r is created in dst, using the gate type
//     of the same name from dst's library, named <name>_<id>_NEW_GATE
//  2. every net of r is bound to a dst net: global nets through mapping,
//     ground and power nets to dst's constant nets, other nets to a new
//     net named <name>_<id>_NEW_NET; the endpoints of the r net are then
//     recreated on it
//  3. the subgraph gates are deleted, followed by the original nets this
//     left without any endpoint
//  4. the result is returned
//
// Arguments, gate types, mappings and constants are checked before dst is
// touched. A failure after that returns a *netlist.PartialError and leaves
// the work done so far in place.
func ReplaceSubgraph(dst *netlist.Netlist, subgraph []*netlist.Gate, r *netlist.Netlist, mapping Mapping, deleteOriginal bool, opts Options) (*Result, error) {
	if err := checkReplacement(dst, subgraph, r, mapping, opts); err != nil {
		return nil, err
	}
	log := opts.logger()
	res := &Result{}
	partial := func(stage string, err error) error {
		return &netlist.PartialError{Op: "replace: subgraph", Stage: stage, Err: err}
	}

	module := commonModule(subgraph)
	gates := make(map[*netlist.Gate]*netlist.Gate)
	for _, rg := range r.Gates(nil) {
		if rg.IsGndGate() || rg.IsVccGate() {
			continue
		}
		typ := dst.Library().GateTypeByName(rg.Type().Name)
		name := dst.UniqueGateName(fmt.Sprintf("%s_%d_NEW_GATE", rg.Name(), dst.UniqueGateID()))
		g, err := dst.CreateGate(typ, name)
		if err != nil {
			return res, partial("gates", err)
		}
		res.Gates = append(res.Gates, g)
		g.CopyDataFrom(&rg.DataContainer)
		for pin, f := range rg.CustomFunctions() {
			if err := g.AddBooleanFunction(pin, f); err != nil {
				return res, partial("gates", err)
			}
		}
		if module != nil {
			if err := module.AssignGate(g); err != nil {
				return res, partial("gates", err)
			}
		}
		gates[rg] = g
	}

	for _, rn := range r.Nets(nil) {
		dn, err := bindNet(dst, rn, mapping, res)
		if err != nil {
			return res, partial("nets", err)
		}
		for _, ep := range rn.Sources() {
			g, ok := gates[ep.Gate()]
			if !ok {
				continue
			}
			if _, err := dn.AddSource(g, ep.Pin()); err != nil {
				return res, partial("wiring", err)
			}
		}
		for _, ep := range rn.Destinations() {
			if _, err := dn.AddDestination(gates[ep.Gate()], ep.Pin()); err != nil {
				return res, partial("wiring", err)
			}
		}
	}

	if deleteOriginal {
		var touched []*netlist.Net
		for _, g := range subgraph {
			touched = append(touched, g.FaninNets()...)
			touched = append(touched, g.FanoutNets()...)
		}
		for _, g := range subgraph {
			if err := dst.DeleteGate(g); err != nil {
				return res, partial("delete", err)
			}
			res.Deleted++
		}
		for _, n := range touched {
			if !dst.ContainsNet(n) || n.NumSources() > 0 || n.NumDestinations() > 0 ||
				n.IsGlobalInput() || n.IsGlobalOutput() {
				continue
			}
			if err := dst.DeleteNet(n); err != nil {
				return res, partial("delete", err)
			}
			res.Removed++
		}
	}

	log.Debug("replaced subgraph",
		"netlist", dst.Name(),
		"replaced", len(subgraph),
		"gates", len(res.Gates),
		"nets", len(res.Nets),
		"merged", res.Merged,
		"deleted", res.Deleted)
	return res, nil
}

// bindNet returns the dst net standing for rn, creating or merging nets as
// needed.
func bindNet(dst *netlist.Netlist, rn *netlist.Net, mapping Mapping, res *Result) (*netlist.Net, error) {
	targets := distinct(mapping[rn])

	var master *netlist.Net
	switch {
	case rn.IsGndNet():
		master = dst.ConstantNet(false)
	case rn.IsVccNet():
		master = dst.ConstantNet(true)
	case rn.IsGlobalInput() || rn.IsGlobalOutput():
		master, targets = targets[0], targets[1:]
	default:
		name := dst.UniqueNetName(fmt.Sprintf("%s_%d_NEW_NET", rn.Name(), dst.UniqueNetID()))
		n, err := dst.CreateNet(name)
		if err != nil {
			return nil, err
		}
		n.CopyDataFrom(&rn.DataContainer)
		res.Nets = append(res.Nets, n)
		return n, nil
	}

	for _, t := range targets {
		if t == master {
			continue
		}
		if _, err := modify.ConnectNets(master, t); err != nil {
			return nil, err
		}
		res.Merged++
	}
	return master, nil
}

// checkReplacement validates everything ReplaceSubgraph can check without
// changing dst.
func checkReplacement(dst *netlist.Netlist, subgraph []*netlist.Gate, r *netlist.Netlist, mapping Mapping, opts Options) error {
	if dst == nil || r == nil {
		return fmt.Errorf("replace: %w: nil netlist", netlist.ErrInvalidArgument)
	}
	if dst == r {
		return fmt.Errorf("replace: %w: replacement is the destination netlist", netlist.ErrInvalidArgument)
	}
	seen := make(map[*netlist.Gate]bool, len(subgraph))
	for _, g := range subgraph {
		if g == nil || !dst.ContainsGate(g) {
			return fmt.Errorf("replace: %w: subgraph gate is not part of %s",
				netlist.ErrInvalidArgument, dst.Name())
		}
		if seen[g] {
			return fmt.Errorf("replace: %w: %s listed twice", netlist.ErrInvalidArgument, g)
		}
		seen[g] = true
	}
	for rn, targets := range mapping {
		if rn == nil || !r.ContainsNet(rn) {
			return fmt.Errorf("replace: %w: mapping key is not a net of the replacement",
				netlist.ErrInvalidArgument)
		}
		for _, t := range targets {
			if t == nil || !dst.ContainsNet(t) {
				return fmt.Errorf("replace: %w: %s maps to a net outside %s",
					netlist.ErrInvalidArgument, rn, dst.Name())
			}
		}
	}

	lib := dst.Library()
	for _, rg := range r.Gates(nil) {
		if rg.IsGndGate() || rg.IsVccGate() {
			continue
		}
		if lib == nil || lib.GateTypeByName(rg.Type().Name) == nil {
			return fmt.Errorf("replace: %w: gate type %s of %s is not in the destination library",
				netlist.ErrLookup, rg.Type().Name, rg)
		}
	}

	for _, rn := range r.Nets(nil) {
		targets := distinct(mapping[rn])
		in, out := rn.IsGlobalInput(), rn.IsGlobalOutput()
		switch {
		case rn.IsGndNet() || rn.IsVccNet():
			if dst.ConstantNet(rn.IsVccNet()) == nil {
				return fmt.Errorf("replace: %w: destination has no constant net for %s",
					netlist.ErrLookup, rn)
			}
			if len(targets) > 0 && !out {
				return fmt.Errorf("replace: %w: constant net %s is mapped but not a global output",
					netlist.ErrStructural, rn)
			}
			continue
		case !in && !out:
			if len(targets) > 0 {
				return fmt.Errorf("replace: %w: internal net %s is mapped", netlist.ErrStructural, rn)
			}
			continue
		}
		if len(targets) == 0 {
			return fmt.Errorf("replace: %w: no destination net for global net %s", netlist.ErrLookup, rn)
		}
		if in && !out && len(targets) != 1 {
			return fmt.Errorf("replace: %w: global input %s maps to %d nets",
				netlist.ErrStructural, rn, len(targets))
		}
		if in && rn.NumSources() > 0 {
			return fmt.Errorf("replace: %w: global input %s is driven inside the replacement",
				netlist.ErrStructural, rn)
		}
		if out && !in && len(targets) > 1 && opts.StrictOutputMerge {
			return fmt.Errorf("replace: %w: global output %s maps to %d nets",
				netlist.ErrStructural, rn, len(targets))
		}
	}
	return checkMerges(dst, r, mapping)
}

// checkMerges rejects a destination net that one net of r merges away while
// another net of r is bound to it.
func checkMerges(dst *netlist.Netlist, r *netlist.Netlist, mapping Mapping) error {
	users := make(map[*netlist.Net][]*netlist.Net)
	merged := make(map[*netlist.Net]*netlist.Net)
	for _, rn := range r.Nets(nil) {
		targets := distinct(mapping[rn])
		var master *netlist.Net
		switch {
		case rn.IsGndNet():
			master = dst.ConstantNet(false)
		case rn.IsVccNet():
			master = dst.ConstantNet(true)
		case rn.IsGlobalInput() || rn.IsGlobalOutput():
			master = targets[0]
		default:
			continue
		}
		users[master] = append(users[master], rn)
		for _, t := range targets {
			if t == master {
				continue
			}
			users[t] = append(users[t], rn)
			merged[t] = rn
		}
	}
	for t, by := range merged {
		for _, other := range users[t] {
			if other != by {
				return fmt.Errorf("replace: %w: %s merges %s away but %s is bound to it",
					netlist.ErrStructural, by, t, other)
			}
		}
	}
	return nil
}

// commonModule returns the module shared by all gates when it is not the
// top module.
func commonModule(gates []*netlist.Gate) *netlist.Module {
	if len(gates) == 0 {
		return nil
	}
	m := gates[0].Module()
	for _, g := range gates[1:] {
		if g.Module() != m {
			return nil
		}
	}
	if m.IsTopModule() {
		return nil
	}
	return m
}

func distinct(nets []*netlist.Net) []*netlist.Net {
	var out []*netlist.Net
	seen := make(map[*netlist.Net]bool, len(nets))
	for _, n := range nets {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
