package netlist

import (
	"fmt"
	"sort"
)

// Grouping is a flat, user-defined set of gates and nets. A gate or net is
// in at most one grouping.
type Grouping struct {
	id      int
	name    string
	netlist *Netlist
	gates   map[int]*Gate
	nets    map[int]*Net
}

// ID returns the grouping ID.
func (gr *Grouping) ID() int { return gr.id }

// Name returns the grouping name.
func (gr *Grouping) Name() string { return gr.name }

// SetName renames the grouping.
func (gr *Grouping) SetName(name string) { gr.name = name }

// AssignGate adds g, removing it from any other grouping.
func (gr *Grouping) AssignGate(g *Gate) error {
	if g == nil || g.netlist != gr.netlist {
		return fmt.Errorf("netlist: %w: gate must belong to the netlist of grouping %q",
			ErrInvalidArgument, gr.name)
	}
	if g.grouping != nil {
		delete(g.grouping.gates, g.id)
	}
	gr.gates[g.id] = g
	g.grouping = gr
	return nil
}

// RemoveGate takes g out of the grouping.
func (gr *Grouping) RemoveGate(g *Gate) error {
	if g == nil || g.grouping != gr {
		return fmt.Errorf("netlist: %w: gate is not in grouping %q", ErrLookup, gr.name)
	}
	delete(gr.gates, g.id)
	g.grouping = nil
	return nil
}

// AssignNet adds n, removing it from any other grouping.
func (gr *Grouping) AssignNet(n *Net) error {
	if n == nil || n.netlist != gr.netlist {
		return fmt.Errorf("netlist: %w: net must belong to the netlist of grouping %q",
			ErrInvalidArgument, gr.name)
	}
	for _, other := range gr.netlist.groupings {
		delete(other.nets, n.id)
	}
	gr.nets[n.id] = n
	return nil
}

// ContainsNet reports whether n is in the grouping.
func (gr *Grouping) ContainsNet(n *Net) bool {
	return n != nil && gr.nets[n.id] == n
}

// Gates returns the gates ordered by ID.
func (gr *Grouping) Gates() []*Gate {
	out := make([]*Gate, 0, len(gr.gates))
	for _, g := range gr.gates {
		out = append(out, g)
	}
	sortGates(out)
	return out
}

// Nets returns the nets ordered by ID.
func (gr *Grouping) Nets() []*Net {
	out := make([]*Net, 0, len(gr.nets))
	for _, n := range gr.nets {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}
