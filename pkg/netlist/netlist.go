package netlist

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/gatelib"
)

// TopModuleName is the name given to the implicit top module.
const TopModuleName = "top_module"

// Netlist owns all gates, nets, modules and groupings of a design.
type Netlist struct {
	DataContainer

	name       string
	designName string
	lib        *gatelib.Library

	gates     map[int]*Gate
	nets      map[int]*Net
	modules   map[int]*Module
	groupings map[int]*Grouping
	gateNames map[string]*Gate
	netNames  map[string]*Net
	top       *Module

	nextGateID     int
	nextNetID      int
	nextModuleID   int
	nextGroupingID int

	globalInputs  []*Net
	globalOutputs []*Net
	gndGates      []*Gate
	vccGates      []*Gate
}

// New returns an empty netlist over lib with a top module.
func New(lib *gatelib.Library) *Netlist {
	nl := &Netlist{
		lib:            lib,
		gates:          make(map[int]*Gate),
		nets:           make(map[int]*Net),
		modules:        make(map[int]*Module),
		groupings:      make(map[int]*Grouping),
		gateNames:      make(map[string]*Gate),
		netNames:       make(map[string]*Net),
		nextGateID:     1,
		nextNetID:      1,
		nextModuleID:   1,
		nextGroupingID: 1,
	}
	nl.top = nl.newModule(nl.nextModuleID, TopModuleName, nil)
	return nl
}

// Library returns the gate library of the netlist.
func (nl *Netlist) Library() *gatelib.Library { return nl.lib }

// Name returns the netlist name.
func (nl *Netlist) Name() string { return nl.name }

// SetName sets the netlist name.
func (nl *Netlist) SetName(name string) { nl.name = name }

// DesignName returns the name of the design, usually the HDL top module.
func (nl *Netlist) DesignName() string { return nl.designName }

// SetDesignName sets the design name.
func (nl *Netlist) SetDesignName(name string) { nl.designName = name }

// TopModule returns the root of the module tree.
func (nl *Netlist) TopModule() *Module { return nl.top }

// UniqueGateID returns an unused gate ID.
func (nl *Netlist) UniqueGateID() int { return nl.nextGateID }

// UniqueNetID returns an unused net ID.
func (nl *Netlist) UniqueNetID() int { return nl.nextNetID }

// UniqueModuleID returns an unused module ID.
func (nl *Netlist) UniqueModuleID() int { return nl.nextModuleID }

// UniqueGateName returns base when unused, otherwise base with a numeric
// suffix.
func (nl *Netlist) UniqueGateName(base string) string {
	return uniqueName(base, func(s string) bool { _, ok := nl.gateNames[s]; return ok })
}

// UniqueNetName is UniqueGateName for nets.
func (nl *Netlist) UniqueNetName(base string) string {
	return uniqueName(base, func(s string) bool { _, ok := nl.netNames[s]; return ok })
}

func uniqueName(base string, taken func(string) bool) string {
	if !taken(base) {
		return base
	}
	for i := 1; ; i++ {
		name := base + "_" + strconv.Itoa(i)
		if !taken(name) {
			return name
		}
	}
}

// CreateGate instantiates typ in the top module with an automatic ID. An
// empty name becomes "gate_<id>".
func (nl *Netlist) CreateGate(typ *gatelib.GateType, name string) (*Gate, error) {
	return nl.CreateGateWithID(nl.nextGateID, typ, name)
}

// CreateGateWithID is CreateGate with a caller-chosen ID.
func (nl *Netlist) CreateGateWithID(id int, typ *gatelib.GateType, name string) (*Gate, error) {
	if typ == nil {
		return nil, fmt.Errorf("netlist: %w: nil gate type", ErrInvalidArgument)
	}
	if id <= 0 {
		return nil, fmt.Errorf("netlist: %w: gate ID %d must be positive", ErrInvalidArgument, id)
	}
	if _, dup := nl.gates[id]; dup {
		return nil, fmt.Errorf("netlist: %w: gate ID %d already in use", ErrStructural, id)
	}
	if name == "" {
		name = nl.UniqueGateName("gate_" + strconv.Itoa(id))
	}
	if _, dup := nl.gateNames[name]; dup {
		return nil, fmt.Errorf("netlist: %w: gate name %q already in use", ErrStructural, name)
	}

	g := &Gate{
		id:      id,
		name:    name,
		typ:     typ,
		netlist: nl,
		x:       -1,
		y:       -1,
		inputs:  make(map[string]*Endpoint),
		outputs: make(map[string]*Endpoint),
	}
	nl.gates[id] = g
	nl.gateNames[name] = g
	nl.top.gates[id] = g
	g.module = nl.top
	if id >= nl.nextGateID {
		nl.nextGateID = id + 1
	}
	return g, nil
}

// DeleteGate disconnects g from all nets and removes it.
func (nl *Netlist) DeleteGate(g *Gate) error {
	if g == nil || nl.gates[g.id] != g {
		return fmt.Errorf("netlist: %w: gate is not part of this netlist", ErrInvalidArgument)
	}
	for _, ep := range g.FaninEndpoints() {
		if err := ep.net.RemoveEndpoint(ep); err != nil {
			return err
		}
	}
	for _, ep := range g.FanoutEndpoints() {
		if err := ep.net.RemoveEndpoint(ep); err != nil {
			return err
		}
	}
	if g.grouping != nil {
		delete(g.grouping.gates, g.id)
	}
	delete(g.module.gates, g.id)
	nl.gndGates = removeGate(nl.gndGates, g)
	nl.vccGates = removeGate(nl.vccGates, g)
	delete(nl.gates, g.id)
	delete(nl.gateNames, g.name)
	return nil
}

// Gate returns the gate with the given ID, or nil.
func (nl *Netlist) Gate(id int) *Gate { return nl.gates[id] }

// GateByName returns the gate called name, or nil.
func (nl *Netlist) GateByName(name string) *Gate { return nl.gateNames[name] }

// ContainsGate reports whether g belongs to the netlist.
func (nl *Netlist) ContainsGate(g *Gate) bool { return g != nil && nl.gates[g.id] == g }

// Gates returns the gates accepted by filter ordered by ID. A nil filter
// accepts all.
func (nl *Netlist) Gates(filter func(*Gate) bool) []*Gate {
	out := make([]*Gate, 0, len(nl.gates))
	for _, g := range nl.gates {
		if filter == nil || filter(g) {
			out = append(out, g)
		}
	}
	sortGates(out)
	return out
}

// NumGates returns the number of gates.
func (nl *Netlist) NumGates() int { return len(nl.gates) }

// CreateNet creates an unconnected net with an automatic ID. An empty name
// becomes "net_<id>".
func (nl *Netlist) CreateNet(name string) (*Net, error) {
	return nl.CreateNetWithID(nl.nextNetID, name)
}

// CreateNetWithID is CreateNet with a caller-chosen ID.
func (nl *Netlist) CreateNetWithID(id int, name string) (*Net, error) {
	if id <= 0 {
		return nil, fmt.Errorf("netlist: %w: net ID %d must be positive", ErrInvalidArgument, id)
	}
	if _, dup := nl.nets[id]; dup {
		return nil, fmt.Errorf("netlist: %w: net ID %d already in use", ErrStructural, id)
	}
	if name == "" {
		name = nl.UniqueNetName("net_" + strconv.Itoa(id))
	}
	if _, dup := nl.netNames[name]; dup {
		return nil, fmt.Errorf("netlist: %w: net name %q already in use", ErrStructural, name)
	}
	n := &Net{id: id, name: name, netlist: nl}
	nl.nets[id] = n
	nl.netNames[name] = n
	if id >= nl.nextNetID {
		nl.nextNetID = id + 1
	}
	return n, nil
}

// DeleteNet detaches every endpoint of n and removes it.
func (nl *Netlist) DeleteNet(n *Net) error {
	if n == nil || nl.nets[n.id] != n {
		return fmt.Errorf("netlist: %w: net is not part of this netlist", ErrInvalidArgument)
	}
	for _, ep := range n.Sources() {
		if err := n.RemoveEndpoint(ep); err != nil {
			return err
		}
	}
	for _, ep := range n.Destinations() {
		if err := n.RemoveEndpoint(ep); err != nil {
			return err
		}
	}
	for _, gr := range nl.groupings {
		delete(gr.nets, n.id)
	}
	nl.globalInputs = removeNet(nl.globalInputs, n)
	nl.globalOutputs = removeNet(nl.globalOutputs, n)
	delete(nl.nets, n.id)
	delete(nl.netNames, n.name)
	return nil
}

// Net returns the net with the given ID, or nil.
func (nl *Netlist) Net(id int) *Net { return nl.nets[id] }

// NetByName returns the net called name, or nil.
func (nl *Netlist) NetByName(name string) *Net { return nl.netNames[name] }

// ContainsNet reports whether n belongs to the netlist.
func (nl *Netlist) ContainsNet(n *Net) bool { return n != nil && nl.nets[n.id] == n }

// Nets returns the nets accepted by filter ordered by ID. A nil filter
// accepts all.
func (nl *Netlist) Nets(filter func(*Net) bool) []*Net {
	out := make([]*Net, 0, len(nl.nets))
	for _, n := range nl.nets {
		if filter == nil || filter(n) {
			out = append(out, n)
		}
	}
	sortNets(out)
	return out
}

// NumNets returns the number of nets.
func (nl *Netlist) NumNets() int { return len(nl.nets) }

// CreateModule creates a module below parent and moves gates into it. A nil
// parent means the top module.
func (nl *Netlist) CreateModule(name string, parent *Module, gates []*Gate) (*Module, error) {
	if parent == nil {
		parent = nl.top
	}
	if parent.netlist != nl || nl.modules[parent.id] != parent {
		return nil, fmt.Errorf("netlist: %w: parent module is not part of this netlist",
			ErrInvalidArgument)
	}
	for _, g := range gates {
		if !nl.ContainsGate(g) {
			return nil, fmt.Errorf("netlist: %w: gate is not part of this netlist", ErrInvalidArgument)
		}
	}
	m := nl.newModule(nl.nextModuleID, name, parent)
	for _, g := range gates {
		if err := m.AssignGate(g); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (nl *Netlist) newModule(id int, name string, parent *Module) *Module {
	m := &Module{id: id, name: name, netlist: nl, parent: parent, gates: make(map[int]*Gate)}
	nl.modules[id] = m
	if parent != nil {
		parent.children = append(parent.children, m)
	}
	if id >= nl.nextModuleID {
		nl.nextModuleID = id + 1
	}
	return m
}

// DeleteModule removes a non-top module. Its gates and submodules move to
// its parent.
func (nl *Netlist) DeleteModule(m *Module) error {
	if m == nil || nl.modules[m.id] != m {
		return fmt.Errorf("netlist: %w: module is not part of this netlist", ErrInvalidArgument)
	}
	if m == nl.top {
		return fmt.Errorf("netlist: %w: cannot delete the top module", ErrStructural)
	}
	parent := m.parent
	for _, g := range m.Gates(false) {
		if err := parent.AssignGate(g); err != nil {
			return err
		}
	}
	for _, c := range append([]*Module(nil), m.children...) {
		c.parent = parent
		parent.children = append(parent.children, c)
	}
	m.children = nil
	parent.children = removeModule(parent.children, m)
	delete(nl.modules, m.id)
	return nil
}

// Module returns the module with the given ID, or nil.
func (nl *Netlist) Module(id int) *Module { return nl.modules[id] }

// Modules returns the modules accepted by filter ordered by ID. A nil
// filter accepts all.
func (nl *Netlist) Modules(filter func(*Module) bool) []*Module {
	out := make([]*Module, 0, len(nl.modules))
	for _, m := range nl.modules {
		if filter == nil || filter(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// CreateGrouping creates an empty grouping.
func (nl *Netlist) CreateGrouping(name string) *Grouping {
	gr := &Grouping{
		id:      nl.nextGroupingID,
		name:    name,
		netlist: nl,
		gates:   make(map[int]*Gate),
		nets:    make(map[int]*Net),
	}
	nl.groupings[gr.id] = gr
	nl.nextGroupingID++
	return gr
}

// DeleteGrouping removes gr; its members stay in the netlist.
func (nl *Netlist) DeleteGrouping(gr *Grouping) error {
	if gr == nil || nl.groupings[gr.id] != gr {
		return fmt.Errorf("netlist: %w: grouping is not part of this netlist", ErrInvalidArgument)
	}
	for _, g := range gr.gates {
		g.grouping = nil
	}
	delete(nl.groupings, gr.id)
	return nil
}

// Groupings returns all groupings ordered by ID.
func (nl *Netlist) Groupings() []*Grouping {
	out := make([]*Grouping, 0, len(nl.groupings))
	for _, gr := range nl.groupings {
		out = append(out, gr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// MarkGlobalInputNet flags n as a global input.
func (nl *Netlist) MarkGlobalInputNet(n *Net) error {
	if !nl.ContainsNet(n) {
		return fmt.Errorf("netlist: %w: net is not part of this netlist", ErrInvalidArgument)
	}
	if !containsNet(nl.globalInputs, n) {
		nl.globalInputs = append(nl.globalInputs, n)
	}
	return nil
}

// UnmarkGlobalInputNet clears the global input flag of n.
func (nl *Netlist) UnmarkGlobalInputNet(n *Net) error {
	if !nl.ContainsNet(n) {
		return fmt.Errorf("netlist: %w: net is not part of this netlist", ErrInvalidArgument)
	}
	nl.globalInputs = removeNet(nl.globalInputs, n)
	return nil
}

// MarkGlobalOutputNet flags n as a global output.
func (nl *Netlist) MarkGlobalOutputNet(n *Net) error {
	if !nl.ContainsNet(n) {
		return fmt.Errorf("netlist: %w: net is not part of this netlist", ErrInvalidArgument)
	}
	if !containsNet(nl.globalOutputs, n) {
		nl.globalOutputs = append(nl.globalOutputs, n)
	}
	return nil
}

// UnmarkGlobalOutputNet clears the global output flag of n.
func (nl *Netlist) UnmarkGlobalOutputNet(n *Net) error {
	if !nl.ContainsNet(n) {
		return fmt.Errorf("netlist: %w: net is not part of this netlist", ErrInvalidArgument)
	}
	nl.globalOutputs = removeNet(nl.globalOutputs, n)
	return nil
}

// IsGlobalInputNet reports whether n is flagged as a global input.
func (nl *Netlist) IsGlobalInputNet(n *Net) bool { return containsNet(nl.globalInputs, n) }

// IsGlobalOutputNet reports whether n is flagged as a global output.
func (nl *Netlist) IsGlobalOutputNet(n *Net) bool { return containsNet(nl.globalOutputs, n) }

// GlobalInputNets returns the global inputs in marking order.
func (nl *Netlist) GlobalInputNets() []*Net {
	return append([]*Net(nil), nl.globalInputs...)
}

// GlobalOutputNets returns the global outputs in marking order.
func (nl *Netlist) GlobalOutputNets() []*Net {
	return append([]*Net(nil), nl.globalOutputs...)
}

// MarkGndGate flags g as a global ground gate. The gate type must have no
// inputs and a single output driving constant 0.
func (nl *Netlist) MarkGndGate(g *Gate) error {
	if err := nl.checkConstantGate(g, false); err != nil {
		return err
	}
	if !containsGate(nl.gndGates, g) {
		nl.gndGates = append(nl.gndGates, g)
	}
	return nil
}

// MarkVccGate flags g as a global power gate. The gate type must have no
// inputs and a single output driving constant 1.
func (nl *Netlist) MarkVccGate(g *Gate) error {
	if err := nl.checkConstantGate(g, true); err != nil {
		return err
	}
	if !containsGate(nl.vccGates, g) {
		nl.vccGates = append(nl.vccGates, g)
	}
	return nil
}

// UnmarkGndGate clears the ground flag of g.
func (nl *Netlist) UnmarkGndGate(g *Gate) { nl.gndGates = removeGate(nl.gndGates, g) }

// UnmarkVccGate clears the power flag of g.
func (nl *Netlist) UnmarkVccGate(g *Gate) { nl.vccGates = removeGate(nl.vccGates, g) }

// IsGndGate reports whether g is a global ground gate.
func (nl *Netlist) IsGndGate(g *Gate) bool { return containsGate(nl.gndGates, g) }

// IsVccGate reports whether g is a global power gate.
func (nl *Netlist) IsVccGate(g *Gate) bool { return containsGate(nl.vccGates, g) }

// GndGates returns the global ground gates.
func (nl *Netlist) GndGates() []*Gate { return append([]*Gate(nil), nl.gndGates...) }

// VccGates returns the global power gates.
func (nl *Netlist) VccGates() []*Gate { return append([]*Gate(nil), nl.vccGates...) }

func (nl *Netlist) checkConstantGate(g *Gate, value bool) error {
	if !nl.ContainsGate(g) {
		return fmt.Errorf("netlist: %w: gate is not part of this netlist", ErrInvalidArgument)
	}
	outs := g.typ.OutputPins()
	if len(g.typ.InputPins()) != 0 || len(outs) != 1 {
		return fmt.Errorf("netlist: %w: constant gate %s must have no inputs and one output",
			ErrStructural, g)
	}
	f, err := g.BooleanFunction(outs[0].Name)
	if err != nil || !f.IsConstantValue(value) {
		return fmt.Errorf("netlist: %w: %s does not drive constant %v", ErrStructural, g, value)
	}
	return nil
}

// ConstantNet returns the output net of the first ground (value false) or
// power (value true) gate that drives one, or nil.
func (nl *Netlist) ConstantNet(value bool) *Net {
	gates := nl.gndGates
	if value {
		gates = nl.vccGates
	}
	for _, g := range gates {
		if nets := g.FanoutNets(); len(nets) > 0 {
			return nets[0]
		}
	}
	return nil
}

// CreateConstantDriver adds a flagged ground (value false) or power (value
// true) gate of the first matching library type, by name, and a net named
// after netName that it drives.
func (nl *Netlist) CreateConstantDriver(value bool, netName string) (*Net, error) {
	if nl.lib == nil {
		return nil, fmt.Errorf("netlist: %w: netlist has no library", ErrLookup)
	}
	types, kind := nl.lib.GndTypes(), "gnd"
	if value {
		types, kind = nl.lib.VccTypes(), "vcc"
	}
	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("netlist: %w: library %s has no %s gate type", ErrLookup, nl.lib.Name, kind)
	}
	sort.Strings(names)
	typ := types[names[0]]

	g, err := nl.CreateGate(typ, nl.UniqueGateName(kind+"_gate"))
	if err != nil {
		return nil, err
	}
	if value {
		err = nl.MarkVccGate(g)
	} else {
		err = nl.MarkGndGate(g)
	}
	if err != nil {
		_ = nl.DeleteGate(g)
		return nil, err
	}
	if netName == "" {
		netName = kind
	}
	n, err := nl.CreateNet(nl.UniqueNetName(netName))
	if err != nil {
		return nil, err
	}
	if _, err := n.AddSource(g, typ.OutputPins()[0].Name); err != nil {
		return nil, err
	}
	return n, nil
}

func containsNet(list []*Net, n *Net) bool {
	for _, x := range list {
		if x == n {
			return true
		}
	}
	return false
}

func removeNet(list []*Net, n *Net) []*Net {
	for i, x := range list {
		if x == n {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func containsGate(list []*Gate, g *Gate) bool {
	for _, x := range list {
		if x == g {
			return true
		}
	}
	return false
}

func removeGate(list []*Gate, g *Gate) []*Gate {
	for i, x := range list {
		if x == g {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func sortNets(nets []*Net) {
	sort.Slice(nets, func(i, j int) bool { return nets[i].id < nets[j].id })
}
