package netlist

import (
	"fmt"
	"sort"
)

// Module groups gates hierarchically. Modules form a tree rooted at the top
// module; every gate belongs to exactly one module.
type Module struct {
	DataContainer

	id       int
	name     string
	typeName string
	netlist  *Netlist
	parent   *Module
	children []*Module
	gates    map[int]*Gate
}

// ID returns the module ID, unique within its netlist.
func (m *Module) ID() int { return m.id }

// Name returns the module name.
func (m *Module) Name() string { return m.name }

// SetName renames the module. Module names need not be unique.
func (m *Module) SetName(name string) { m.name = name }

// TypeName returns the module type, such as the HDL module it came from.
func (m *Module) TypeName() string { return m.typeName }

// SetTypeName sets the module type.
func (m *Module) SetTypeName(t string) { m.typeName = t }

// Netlist returns the owning netlist.
func (m *Module) Netlist() *Netlist { return m.netlist }

// Parent returns the parent module, nil for the top module.
func (m *Module) Parent() *Module { return m.parent }

// IsTopModule reports whether m is the root of the module tree.
func (m *Module) IsTopModule() bool { return m.netlist.top == m }

func (m *Module) String() string {
	return fmt.Sprintf("Module(%d, %q)", m.id, m.name)
}

// Submodules returns the direct children, or all descendants when recursive
// is set, in depth-first order.
func (m *Module) Submodules(recursive bool) []*Module {
	var out []*Module
	for _, c := range m.children {
		out = append(out, c)
		if recursive {
			out = append(out, c.Submodules(true)...)
		}
	}
	return out
}

// IsAncestorOf reports whether other lies strictly below m.
func (m *Module) IsAncestorOf(other *Module) bool {
	for p := other.parent; p != nil; p = p.parent {
		if p == m {
			return true
		}
	}
	return false
}

// SetParent moves m below p.
func (m *Module) SetParent(p *Module) error {
	if m.IsTopModule() {
		return fmt.Errorf("netlist: %w: cannot reparent the top module", ErrStructural)
	}
	if p == nil || p.netlist != m.netlist {
		return fmt.Errorf("netlist: %w: parent of %s must be a module of the same netlist",
			ErrInvalidArgument, m)
	}
	if p == m || m.IsAncestorOf(p) {
		return fmt.Errorf("netlist: %w: moving %s below %s creates a cycle", ErrStructural, m, p)
	}
	if m.parent != nil {
		m.parent.children = removeModule(m.parent.children, m)
	}
	m.parent = p
	p.children = append(p.children, m)
	return nil
}

// Gates returns the gates of m, including those of all submodules when
// recursive is set, ordered by ID.
func (m *Module) Gates(recursive bool) []*Gate {
	out := make([]*Gate, 0, len(m.gates))
	for _, g := range m.gates {
		out = append(out, g)
	}
	if recursive {
		for _, c := range m.Submodules(true) {
			for _, g := range c.gates {
				out = append(out, g)
			}
		}
	}
	sortGates(out)
	return out
}

// ContainsGate reports whether g belongs to m, or to a descendant when
// recursive is set.
func (m *Module) ContainsGate(g *Gate, recursive bool) bool {
	if g == nil || g.module == nil {
		return false
	}
	if g.module == m {
		return true
	}
	return recursive && m.IsAncestorOf(g.module)
}

// AssignGate moves g into m.
func (m *Module) AssignGate(g *Gate) error {
	if g == nil || g.netlist != m.netlist {
		return fmt.Errorf("netlist: %w: gate must belong to the netlist of %s", ErrInvalidArgument, m)
	}
	if g.module == m {
		return nil
	}
	if g.module != nil {
		delete(g.module.gates, g.id)
	}
	m.gates[g.id] = g
	g.module = m
	return nil
}

// InputNets returns nets read inside m (recursively) that are global inputs
// or have a driver outside m.
func (m *Module) InputNets() []*Net {
	return m.classifyNets(func(n *Net, srcIn, srcOut, dstIn, dstOut bool) bool {
		return dstIn && (srcOut || n.IsGlobalInput())
	})
}

// OutputNets returns nets driven inside m (recursively) that are global
// outputs or have a reader outside m.
func (m *Module) OutputNets() []*Net {
	return m.classifyNets(func(n *Net, srcIn, srcOut, dstIn, dstOut bool) bool {
		return srcIn && (dstOut || n.IsGlobalOutput())
	})
}

// InternalNets returns nets whose every endpoint is inside m and which are
// neither global inputs nor global outputs.
func (m *Module) InternalNets() []*Net {
	return m.classifyNets(func(n *Net, srcIn, srcOut, dstIn, dstOut bool) bool {
		return (srcIn || dstIn) && !srcOut && !dstOut &&
			!n.IsGlobalInput() && !n.IsGlobalOutput()
	})
}

func (m *Module) classifyNets(keep func(n *Net, srcIn, srcOut, dstIn, dstOut bool) bool) []*Net {
	seen := make(map[*Net]bool)
	var out []*Net
	for _, g := range m.Gates(true) {
		for _, n := range append(g.FaninNets(), g.FanoutNets()...) {
			if seen[n] {
				continue
			}
			seen[n] = true
			srcIn, srcOut := m.sides(n.sources)
			dstIn, dstOut := m.sides(n.destinations)
			if keep(n, srcIn, srcOut, dstIn, dstOut) {
				out = append(out, n)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func (m *Module) sides(eps []*Endpoint) (inside, outside bool) {
	for _, ep := range eps {
		if m.ContainsGate(ep.gate, true) {
			inside = true
		} else {
			outside = true
		}
	}
	return inside, outside
}

func removeModule(list []*Module, m *Module) []*Module {
	for i, c := range list {
		if c == m {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
