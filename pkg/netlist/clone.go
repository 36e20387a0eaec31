package netlist

// Clone returns a deep copy with identical IDs, names, connections, modules,
// groupings, flags and data. Gate types are shared with the original.
func (nl *Netlist) Clone() *Netlist {
	c := &Netlist{
		DataContainer:  nl.cloneData(),
		name:           nl.name,
		designName:     nl.designName,
		lib:            nl.lib,
		gates:          make(map[int]*Gate, len(nl.gates)),
		nets:           make(map[int]*Net, len(nl.nets)),
		modules:        make(map[int]*Module, len(nl.modules)),
		groupings:      make(map[int]*Grouping, len(nl.groupings)),
		gateNames:      make(map[string]*Gate, len(nl.gateNames)),
		netNames:       make(map[string]*Net, len(nl.netNames)),
		nextGateID:     nl.nextGateID,
		nextNetID:      nl.nextNetID,
		nextModuleID:   nl.nextModuleID,
		nextGroupingID: nl.nextGroupingID,
	}

	for _, m := range nl.Modules(nil) {
		c.modules[m.id] = &Module{
			DataContainer: m.cloneData(),
			id:            m.id,
			name:          m.name,
			typeName:      m.typeName,
			netlist:       c,
			gates:         make(map[int]*Gate, len(m.gates)),
		}
	}
	for id, m := range nl.modules {
		cm := c.modules[id]
		if m.parent != nil {
			cm.parent = c.modules[m.parent.id]
		}
		for _, child := range m.children {
			cm.children = append(cm.children, c.modules[child.id])
		}
	}
	c.top = c.modules[nl.top.id]

	for id, gr := range nl.groupings {
		c.groupings[id] = &Grouping{
			id:      gr.id,
			name:    gr.name,
			netlist: c,
			gates:   make(map[int]*Gate, len(gr.gates)),
			nets:    make(map[int]*Net, len(gr.nets)),
		}
	}

	for id, g := range nl.gates {
		cg := &Gate{
			DataContainer: g.cloneData(),
			id:            g.id,
			name:          g.name,
			typ:           g.typ,
			netlist:       c,
			x:             g.x,
			y:             g.y,
			functions:     g.CustomFunctions(),
			inputs:        make(map[string]*Endpoint, len(g.inputs)),
			outputs:       make(map[string]*Endpoint, len(g.outputs)),
		}
		cg.module = c.modules[g.module.id]
		cg.module.gates[id] = cg
		if g.grouping != nil {
			cg.grouping = c.groupings[g.grouping.id]
			cg.grouping.gates[id] = cg
		}
		c.gates[id] = cg
		c.gateNames[cg.name] = cg
	}

	for id, n := range nl.nets {
		cn := &Net{
			DataContainer: n.cloneData(),
			id:            n.id,
			name:          n.name,
			netlist:       c,
		}
		for _, ep := range n.sources {
			cg := c.gates[ep.gate.id]
			cep := &Endpoint{net: cn, gate: cg, pin: ep.pin, source: true}
			cn.sources = append(cn.sources, cep)
			cg.outputs[ep.pin] = cep
		}
		for _, ep := range n.destinations {
			cg := c.gates[ep.gate.id]
			cep := &Endpoint{net: cn, gate: cg, pin: ep.pin}
			cn.destinations = append(cn.destinations, cep)
			cg.inputs[ep.pin] = cep
		}
		c.nets[id] = cn
		c.netNames[cn.name] = cn
	}
	for id, gr := range nl.groupings {
		for nid := range gr.nets {
			c.groupings[id].nets[nid] = c.nets[nid]
		}
	}

	for _, n := range nl.globalInputs {
		c.globalInputs = append(c.globalInputs, c.nets[n.id])
	}
	for _, n := range nl.globalOutputs {
		c.globalOutputs = append(c.globalOutputs, c.nets[n.id])
	}
	for _, g := range nl.gndGates {
		c.gndGates = append(c.gndGates, c.gates[g.id])
	}
	for _, g := range nl.vccGates {
		c.vccGates = append(c.vccGates, c.gates[g.id])
	}
	return c
}

// Restore replaces the contents of nl with a deep copy of snapshot. Gate,
// net and module values obtained from nl before the call are stale
// afterwards; look objects up again by ID.
func (nl *Netlist) Restore(snapshot *Netlist) {
	c := snapshot.Clone()
	*nl = *c
	for _, g := range nl.gates {
		g.netlist = nl
	}
	for _, n := range nl.nets {
		n.netlist = nl
	}
	for _, m := range nl.modules {
		m.netlist = nl
	}
	for _, gr := range nl.groupings {
		gr.netlist = nl
	}
}
