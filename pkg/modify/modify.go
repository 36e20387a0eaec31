// Package modify provides the basic editing operations used by the
// higher-level rewriting passes: deleting modules, swapping the type of a
// gate, connecting gates and merging nets.
//
// ReplaceGate and ConnectNets are not transactional. When they fail after
// changing the netlist they return a *netlist.PartialError and the netlist
// is left as it was at the failing step. Wrap calls in Atomic to get
// all-or-nothing behaviour.
package modify

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/gatelib"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/netlist"
)

// DeleteModules deletes every non-top module accepted by filter (nil
// accepts all). The top module is skipped. The first failure stops the loop;
// modules deleted before it stay deleted.
func DeleteModules(nl *netlist.Netlist, filter func(*netlist.Module) bool) error {
	if nl == nil {
		return fmt.Errorf("modify: %w: nil netlist", netlist.ErrInvalidArgument)
	}
	for _, m := range nl.Modules(filter) {
		if m.IsTopModule() {
			continue
		}
		if err := nl.DeleteModule(m); err != nil {
			return fmt.Errorf("modify: failed to delete %s: %w", m, err)
		}
	}
	return nil
}

// ReplaceGate replaces g by a new gate of type target. pinMap maps pins of
// g to pins of the new gate; connections of unmapped pins are dropped. The
// new gate keeps the name, location, module, grouping and data of g.
//
// A failure while wiring the new gate returns a *netlist.PartialError and
// leaves both gates in the netlist.
func ReplaceGate(g *netlist.Gate, target *gatelib.GateType, pinMap map[string]string) (*netlist.Gate, error) {
	if g == nil {
		return nil, fmt.Errorf("modify: %w: nil gate", netlist.ErrInvalidArgument)
	}
	if target == nil {
		return nil, fmt.Errorf("modify: %w: nil gate type", netlist.ErrInvalidArgument)
	}
	nl := g.Netlist()
	if lib := nl.Library(); lib != nil && lib.GateTypeByName(target.Name) != target {
		return nil, fmt.Errorf("modify: %w: gate type %s is not part of library %s",
			netlist.ErrLookup, target.Name, lib.Name)
	}
	for from, to := range pinMap {
		if _, ok := g.Type().Pin(from); !ok {
			return nil, fmt.Errorf("modify: %w: %s has no pin %s", netlist.ErrLookup, g, from)
		}
		if _, ok := target.Pin(to); !ok {
			return nil, fmt.Errorf("modify: %w: gate type %s has no pin %s",
				netlist.ErrLookup, target.Name, to)
		}
	}

	name := g.Name()
	inputs := g.FaninEndpoints()
	outputs := g.FanoutEndpoints()

	repl, err := nl.CreateGate(target, nl.UniqueGateName(name+"_replacement"))
	if err != nil {
		return nil, fmt.Errorf("modify: failed to create replacement for %s: %w", g, err)
	}
	partial := func(stage string, err error) error {
		return &netlist.PartialError{Op: "modify: replace gate " + name, Stage: stage, Err: err}
	}

	repl.SetLocation(g.Location())
	repl.CopyDataFrom(&g.DataContainer)
	if m := g.Module(); !m.IsTopModule() {
		if err := m.AssignGate(repl); err != nil {
			return repl, partial("module", err)
		}
	}
	if gr := g.Grouping(); gr != nil {
		if err := gr.AssignGate(repl); err != nil {
			return repl, partial("grouping", err)
		}
	}

	for _, ep := range inputs {
		to, ok := pinMap[ep.Pin()]
		if !ok {
			continue
		}
		if _, err := ep.Net().AddDestination(repl, to); err != nil {
			return repl, partial("wiring", err)
		}
	}
	for _, ep := range outputs {
		to, ok := pinMap[ep.Pin()]
		if !ok {
			continue
		}
		if _, err := ep.Net().AddSource(repl, to); err != nil {
			return repl, partial("wiring", err)
		}
	}

	if err := nl.DeleteGate(g); err != nil {
		return repl, partial("delete", err)
	}
	if err := repl.SetName(name); err != nil {
		return repl, partial("rename", err)
	}
	return repl, nil
}

// ConnectGates connects output srcPin of src to input dstPin of dst. When
// neither pin is connected a new net is created. When one is, the other pin
// joins that net. When both are connected to different nets the call fails;
// merge the nets with ConnectNets first.
func ConnectGates(src *netlist.Gate, srcPin string, dst *netlist.Gate, dstPin string) (*netlist.Net, error) {
	if src == nil || dst == nil {
		return nil, fmt.Errorf("modify: %w: nil gate", netlist.ErrInvalidArgument)
	}
	if srcPin == "" || dstPin == "" {
		return nil, fmt.Errorf("modify: %w: empty pin name", netlist.ErrInvalidArgument)
	}
	nl := src.Netlist()
	if dst.Netlist() != nl {
		return nil, fmt.Errorf("modify: %w: gates belong to different netlists",
			netlist.ErrInvalidArgument)
	}
	if p, ok := src.Type().Pin(srcPin); !ok || !p.Direction.IsOutput() {
		return nil, fmt.Errorf("modify: %w: %s has no output pin %s", netlist.ErrLookup, src, srcPin)
	}
	if p, ok := dst.Type().Pin(dstPin); !ok || !p.Direction.IsInput() {
		return nil, fmt.Errorf("modify: %w: %s has no input pin %s", netlist.ErrLookup, dst, dstPin)
	}

	srcNet := src.FanoutNet(srcPin)
	dstNet := dst.FaninNet(dstPin)
	switch {
	case srcNet != nil && dstNet != nil:
		if srcNet == dstNet {
			return srcNet, nil
		}
		return nil, fmt.Errorf("modify: %w: %s.%s and %s.%s are already connected to %s and %s",
			netlist.ErrStructural, src.Name(), srcPin, dst.Name(), dstPin, srcNet, dstNet)

	case srcNet != nil:
		if _, err := srcNet.AddDestination(dst, dstPin); err != nil {
			return nil, fmt.Errorf("modify: failed to connect gates: %w", err)
		}
		return srcNet, nil

	case dstNet != nil:
		if _, err := dstNet.AddSource(src, srcPin); err != nil {
			return nil, fmt.Errorf("modify: failed to connect gates: %w", err)
		}
		return dstNet, nil
	}

	n, err := nl.CreateNet("")
	if err != nil {
		return nil, fmt.Errorf("modify: failed to create net: %w", err)
	}
	if _, err := n.AddSource(src, srcPin); err == nil {
		if _, err = n.AddDestination(dst, dstPin); err == nil {
			return n, nil
		}
	}
	_ = nl.DeleteNet(n)
	return nil, fmt.Errorf("modify: %w: could not wire %s.%s to %s.%s",
		netlist.ErrStructural, src.Name(), srcPin, dst.Name(), dstPin)
}

// ConnectNets merges slave into master: all endpoints of slave move to
// master, master inherits the global input and output flags of slave and
// its data entries (slave wins on collision), and slave is deleted.
//
// A failure while moving endpoints returns a *netlist.PartialError; the
// endpoints moved before it stay on master.
func ConnectNets(master, slave *netlist.Net) (*netlist.Net, error) {
	if master == nil || slave == nil {
		return nil, fmt.Errorf("modify: %w: nil net", netlist.ErrInvalidArgument)
	}
	if master == slave {
		return nil, fmt.Errorf("modify: %w: cannot merge %s into itself",
			netlist.ErrInvalidArgument, master)
	}
	nl := master.Netlist()
	if slave.Netlist() != nl {
		return nil, fmt.Errorf("modify: %w: nets belong to different netlists",
			netlist.ErrInvalidArgument)
	}
	partial := func(stage string, err error) error {
		return &netlist.PartialError{
			Op:    fmt.Sprintf("modify: merge %s into %s", slave.Name(), master.Name()),
			Stage: stage,
			Err:   err,
		}
	}

	for _, ep := range slave.Sources() {
		g, pin := ep.Gate(), ep.Pin()
		if err := slave.RemoveEndpoint(ep); err != nil {
			return nil, partial("transfer", err)
		}
		if _, err := master.AddSource(g, pin); err != nil {
			return nil, partial("transfer", err)
		}
	}
	for _, ep := range slave.Destinations() {
		g, pin := ep.Gate(), ep.Pin()
		if err := slave.RemoveEndpoint(ep); err != nil {
			return nil, partial("transfer", err)
		}
		if _, err := master.AddDestination(g, pin); err != nil {
			return nil, partial("transfer", err)
		}
	}

	if slave.IsGlobalInput() {
		if err := nl.MarkGlobalInputNet(master); err != nil {
			return nil, partial("flags", err)
		}
	}
	if slave.IsGlobalOutput() {
		if err := nl.MarkGlobalOutputNet(master); err != nil {
			return nil, partial("flags", err)
		}
	}
	master.CopyDataFrom(&slave.DataContainer)

	if err := nl.DeleteNet(slave); err != nil {
		return nil, partial("delete", err)
	}
	return master, nil
}

// Atomic runs fn and restores nl to its prior state when fn fails. After a
// restore, gates and nets obtained before the call are stale and must be
// looked up again by ID or name.
func Atomic(nl *netlist.Netlist, fn func() error) error {
	if nl == nil || fn == nil {
		return fmt.Errorf("modify: %w: nil netlist or function", netlist.ErrInvalidArgument)
	}
	snapshot := nl.Clone()
	if err := fn(); err != nil {
		nl.Restore(snapshot)
		return err
	}
	return nil
}
