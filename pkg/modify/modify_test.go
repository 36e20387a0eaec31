package modify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/gatelib"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/netlist"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/netlist/netlisttest"
)

func TestConnectGatesCreatesNet(t *testing.T) {
	b := netlisttest.New(t, nil)
	g1 := b.Gate(gatelib.TypeBUF, "g1")
	g2 := b.Gate(gatelib.TypeBUF, "g2")

	n, err := ConnectGates(g1, "O", g2, "I")
	require.NoError(t, err)
	require.NotNil(t, n)

	assert.Equal(t, 1, b.NL.NumNets())
	require.Len(t, n.Sources(), 1)
	require.Len(t, n.Destinations(), 1)
	assert.Same(t, g1, n.Sources()[0].Gate())
	assert.Equal(t, "O", n.Sources()[0].Pin())
	assert.Same(t, g2, n.Destinations()[0].Gate())
	assert.Equal(t, "I", n.Destinations()[0].Pin())
	require.NoError(t, b.NL.Validate())
}

func TestConnectGatesBothConnected(t *testing.T) {
	b := netlisttest.New(t, nil)
	g1 := b.Gate(gatelib.TypeBUF, "g1")
	g2 := b.Gate(gatelib.TypeBUF, "g2")
	n1 := b.Net("n1")
	n2 := b.Net("n2")
	b.Drive(n1, g1, "O")
	b.Read(n2, g2, "I")

	_, err := ConnectGates(g1, "O", g2, "I")
	assert.ErrorIs(t, err, netlist.ErrStructural)
	assert.Equal(t, 2, b.NL.NumNets(), "no new net")
	assert.Equal(t, 0, n1.NumDestinations())
	assert.Equal(t, 0, n2.NumSources())
}

func TestConnectGatesReusesNet(t *testing.T) {
	b := netlisttest.New(t, nil)
	g1 := b.Gate(gatelib.TypeBUF, "g1")
	g2 := b.Gate(gatelib.TypeBUF, "g2")
	g3 := b.Gate(gatelib.TypeBUF, "g3")
	existing := b.Wire("w", g1, "O", g2, "I")

	n, err := ConnectGates(g1, "O", g3, "I")
	require.NoError(t, err)
	assert.Same(t, existing, n)
	assert.Equal(t, 2, existing.NumDestinations())

	in := b.Net("in")
	b.Read(in, g1, "I")
	n, err = ConnectGates(g3, "O", g1, "I")
	require.NoError(t, err)
	assert.Same(t, in, n)
	assert.Same(t, g3, in.Sources()[0].Gate())

	again, err := ConnectGates(g1, "O", g2, "I")
	require.NoError(t, err)
	assert.Same(t, existing, again)
}

func TestConnectGatesInvalidArguments(t *testing.T) {
	b := netlisttest.New(t, nil)
	g := b.Gate(gatelib.TypeBUF, "g")

	_, err := ConnectGates(nil, "O", g, "I")
	assert.ErrorIs(t, err, netlist.ErrInvalidArgument)
	_, err = ConnectGates(g, "", g, "I")
	assert.ErrorIs(t, err, netlist.ErrInvalidArgument)
	_, err = ConnectGates(g, "I", g, "O")
	assert.ErrorIs(t, err, netlist.ErrLookup)
	assert.Equal(t, 0, b.NL.NumNets())
}

func TestConnectNetsMerges(t *testing.T) {
	b := netlisttest.New(t, nil)
	drv := b.Gate(gatelib.TypeBUF, "drv")
	r1 := b.Gate(gatelib.TypeBUF, "r1")
	r2 := b.Gate(gatelib.TypeBUF, "r2")
	r3 := b.Gate(gatelib.TypeBUF, "r3")

	master := b.Wire("master", drv, "O", r1, "I")
	slave := b.Net("slave")
	b.Read(slave, r2, "I")
	b.Read(slave, r3, "I")
	require.NoError(t, b.NL.MarkGlobalOutputNet(slave))
	slave.SetData("attr", "keep", "bool", "true")
	master.SetData("attr", "keep", "bool", "false")

	merged, err := ConnectNets(master, slave)
	require.NoError(t, err)
	assert.Same(t, master, merged)

	assert.False(t, b.NL.ContainsNet(slave))
	assert.ElementsMatch(t, []*netlist.Gate{r1, r2, r3}, master.DestinationGates())
	assert.Equal(t, []*netlist.Gate{drv}, master.SourceGates())
	assert.True(t, master.IsGlobalOutput())
	assert.False(t, master.IsGlobalInput())
	v, _ := master.Data("attr", "keep")
	assert.Equal(t, "true", v.Value)
	assert.Same(t, master, r2.FaninNet("I"))
	require.NoError(t, b.NL.Validate())
}

func TestConnectNetsInvalidArguments(t *testing.T) {
	b := netlisttest.New(t, nil)
	d1 := b.Gate(gatelib.TypeBUF, "d1")
	r := b.Gate(gatelib.TypeBUF, "r")
	master := b.Net("master")
	slave := b.Net("slave")
	b.Drive(master, d1, "O")
	b.Read(slave, r, "I")

	_, err := ConnectNets(nil, slave)
	assert.ErrorIs(t, err, netlist.ErrInvalidArgument)
	_, err = ConnectNets(master, master)
	assert.ErrorIs(t, err, netlist.ErrInvalidArgument)

	other := netlisttest.New(t, nil).Net("foreign")
	_, err = ConnectNets(master, other)
	assert.ErrorIs(t, err, netlist.ErrInvalidArgument)
	assert.Equal(t, 1, slave.NumDestinations(), "nothing moved")
}

func TestReplaceGatePreservesBoundary(t *testing.T) {
	b := netlisttest.New(t, nil)
	a := b.Input("a")
	c := b.Input("c")
	and := b.Gate(gatelib.TypeAND2, "u1")
	b.Read(a, and, "I0")
	b.Read(c, and, "I1")
	y := b.Output("y", and, "O")
	and.SetLocation(10, 20)
	and.SetData("attr", "src", "string", "top.v:7")
	m, err := b.NL.CreateModule("m", nil, []*netlist.Gate{and})
	require.NoError(t, err)
	gr := b.NL.CreateGrouping("grp")
	require.NoError(t, gr.AssignGate(and))

	or := b.NL.Library().GateTypeByName(gatelib.TypeOR2)
	repl, err := ReplaceGate(and, or, map[string]string{"I0": "I1", "O": "O"})
	require.NoError(t, err)

	assert.False(t, b.NL.ContainsGate(and))
	assert.Equal(t, "u1", repl.Name())
	assert.Same(t, or, repl.Type())
	x, yy := repl.Location()
	assert.Equal(t, 10, x)
	assert.Equal(t, 20, yy)
	assert.Same(t, m, repl.Module())
	assert.Same(t, gr, repl.Grouping())
	v, ok := repl.Data("attr", "src")
	assert.True(t, ok)
	assert.Equal(t, "top.v:7", v.Value)

	assert.Same(t, a, repl.FaninNet("I1"))
	assert.Nil(t, repl.FaninNet("I0"))
	assert.Equal(t, 0, c.NumDestinations(), "unmapped pin disconnected")
	assert.Same(t, y, repl.FanoutNet("O"))
	require.NoError(t, b.NL.Validate())
}

func TestReplaceGateErrors(t *testing.T) {
	b := netlisttest.New(t, nil)
	and := b.Gate(gatelib.TypeAND2, "u1")
	inv := b.NL.Library().GateTypeByName(gatelib.TypeINV)

	_, err := ReplaceGate(nil, inv, nil)
	assert.ErrorIs(t, err, netlist.ErrInvalidArgument)
	_, err = ReplaceGate(and, nil, nil)
	assert.ErrorIs(t, err, netlist.ErrInvalidArgument)
	_, err = ReplaceGate(and, gatelib.Primitives().GateTypeByName(gatelib.TypeINV), nil)
	assert.ErrorIs(t, err, netlist.ErrLookup, "type from another library")
	_, err = ReplaceGate(and, inv, map[string]string{"I0": "X"})
	assert.ErrorIs(t, err, netlist.ErrLookup)
	assert.Equal(t, 1, b.NL.NumGates(), "no gate created")
}

func TestReplaceGatePartialWiring(t *testing.T) {
	b := netlisttest.New(t, nil)
	a := b.Input("a")
	c := b.Input("c")
	and := b.Gate(gatelib.TypeAND2, "u1")
	b.Read(a, and, "I0")
	b.Read(c, and, "I1")

	inv := b.NL.Library().GateTypeByName(gatelib.TypeINV)
	repl, err := ReplaceGate(and, inv, map[string]string{"I0": "I", "I1": "I"})
	require.Error(t, err)

	var pe *netlist.PartialError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "wiring", pe.Stage)
	assert.ErrorIs(t, err, netlist.ErrStructural)
	assert.True(t, b.NL.ContainsGate(and), "old gate kept")
	assert.True(t, b.NL.ContainsGate(repl), "new gate kept")
	assert.Equal(t, 2, b.NL.NumGates())
}

func TestDeleteModules(t *testing.T) {
	b := netlisttest.New(t, nil)
	g1 := b.Gate(gatelib.TypeBUF, "g1")
	g2 := b.Gate(gatelib.TypeBUF, "g2")
	m1, err := b.NL.CreateModule("keep", nil, []*netlist.Gate{g1})
	require.NoError(t, err)
	_, err = b.NL.CreateModule("drop", m1, []*netlist.Gate{g2})
	require.NoError(t, err)

	require.NoError(t, DeleteModules(b.NL, func(m *netlist.Module) bool {
		return m.Name() == "drop" || m.IsTopModule()
	}))
	assert.Len(t, b.NL.Modules(nil), 2)
	assert.Same(t, m1, g2.Module())

	require.NoError(t, DeleteModules(b.NL, nil))
	assert.Len(t, b.NL.Modules(nil), 1)
	assert.True(t, g1.Module().IsTopModule())
	require.NoError(t, b.NL.Validate())
}

func TestAtomicRestoresOnFailure(t *testing.T) {
	b := netlisttest.New(t, nil)
	a := b.Input("a")
	c := b.Input("c")
	and := b.Gate(gatelib.TypeAND2, "u1")
	b.Read(a, and, "I0")
	b.Read(c, and, "I1")
	inv := b.NL.Library().GateTypeByName(gatelib.TypeINV)

	err := Atomic(b.NL, func() error {
		_, err := ReplaceGate(and, inv, map[string]string{"I0": "I", "I1": "I"})
		return err
	})
	require.Error(t, err)
	assert.Equal(t, 1, b.NL.NumGates())
	restored := b.NL.GateByName("u1")
	require.NotNil(t, restored)
	assert.Equal(t, gatelib.TypeAND2, restored.Type().Name)
	require.NoError(t, b.NL.Validate())

	err = Atomic(b.NL, func() error {
		_, err := ReplaceGate(restored, inv, map[string]string{"I0": "I"})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, gatelib.TypeINV, b.NL.GateByName("u1").Type().Name)
}
