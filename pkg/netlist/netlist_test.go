package netlist_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/gatelib"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/netlist"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/netlist/netlisttest"
)

func TestCreateGateAndNet(t *testing.T) {
	b := netlisttest.New(t, nil)
	nl := b.NL

	g := b.Gate(gatelib.TypeAND2, "u1")
	assert.Equal(t, 1, g.ID())
	assert.Equal(t, nl.TopModule(), g.Module())
	x, y := g.Location()
	assert.Equal(t, -1, x)
	assert.Equal(t, -1, y)
	assert.False(t, g.HasLocation())

	_, err := nl.CreateGate(g.Type(), "u1")
	assert.ErrorIs(t, err, netlist.ErrStructural, "duplicate gate name")

	_, err = nl.CreateGateWithID(1, g.Type(), "u2")
	assert.ErrorIs(t, err, netlist.ErrStructural, "duplicate gate ID")

	_, err = nl.CreateGate(nil, "u3")
	assert.ErrorIs(t, err, netlist.ErrInvalidArgument)

	auto, err := nl.CreateGate(g.Type(), "")
	require.NoError(t, err)
	assert.Equal(t, "gate_2", auto.Name())

	n := b.Net("y")
	_, err = nl.CreateNet("y")
	assert.ErrorIs(t, err, netlist.ErrStructural)
	assert.Same(t, n, nl.NetByName("y"))
	assert.Same(t, g, nl.GateByName("u1"))
	assert.Equal(t, "net_1", netlist.NetVariableName(n))

	require.NoError(t, n.SetName("z"))
	assert.Nil(t, nl.NetByName("y"))
	assert.Same(t, n, nl.NetByName("z"))

	require.NoError(t, nl.Validate())
}

func TestEndpointUniqueness(t *testing.T) {
	b := netlisttest.New(t, nil)
	inv := b.Gate(gatelib.TypeINV, "inv")
	n1 := b.Net("n1")
	n2 := b.Net("n2")

	b.Drive(n1, inv, "O")
	_, err := n2.AddSource(inv, "O")
	assert.ErrorIs(t, err, netlist.ErrStructural, "a pin drives at most one net")

	b.Read(n2, inv, "I")
	_, err = n1.AddDestination(inv, "I")
	assert.ErrorIs(t, err, netlist.ErrStructural, "a pin reads at most one net")

	_, err = n1.AddDestination(inv, "O")
	assert.ErrorIs(t, err, netlist.ErrStructural, "output pin cannot be a destination")

	_, err = n1.AddDestination(inv, "Q")
	assert.ErrorIs(t, err, netlist.ErrLookup)

	assert.Same(t, n1, inv.FanoutNet("O"))
	assert.Same(t, n2, inv.FaninNet("I"))

	require.NoError(t, n1.RemoveSource(inv, "O"))
	assert.Nil(t, inv.FanoutNet("O"))
	assert.Error(t, n1.RemoveSource(inv, "O"))

	require.NoError(t, b.NL.Validate())
}

func TestCrossNetlistConnectionRejected(t *testing.T) {
	a := netlisttest.New(t, nil)
	b := netlisttest.New(t, nil)
	g := a.Gate(gatelib.TypeINV, "inv")
	n := b.Net("n")

	_, err := n.AddSource(g, "O")
	assert.ErrorIs(t, err, netlist.ErrInvalidArgument)
}

func TestDeleteGateAndNet(t *testing.T) {
	b := netlisttest.New(t, nil)
	a := b.Input("a")
	inv := b.Gate(gatelib.TypeINV, "inv")
	b.Read(a, inv, "I")
	y := b.Output("y", inv, "O")
	gr := b.NL.CreateGrouping("grp")
	require.NoError(t, gr.AssignGate(inv))
	require.NoError(t, gr.AssignNet(y))

	require.NoError(t, b.NL.DeleteGate(inv))
	assert.Equal(t, 0, a.NumDestinations())
	assert.Equal(t, 0, y.NumSources())
	assert.Empty(t, gr.Gates())
	assert.False(t, b.NL.ContainsGate(inv))
	assert.Empty(t, b.NL.TopModule().Gates(false))
	assert.Error(t, b.NL.DeleteGate(inv))

	require.NoError(t, b.NL.DeleteNet(y))
	assert.Empty(t, b.NL.GlobalOutputNets())
	assert.Empty(t, gr.Nets())
	require.NoError(t, b.NL.Validate())
}

func TestModuleTree(t *testing.T) {
	b := netlisttest.New(t, nil)
	nl := b.NL
	g1 := b.Gate(gatelib.TypeINV, "g1")
	g2 := b.Gate(gatelib.TypeINV, "g2")
	g3 := b.Gate(gatelib.TypeINV, "g3")

	m1, err := nl.CreateModule("m1", nil, []*netlist.Gate{g1, g2})
	require.NoError(t, err)
	m2, err := nl.CreateModule("m2", m1, []*netlist.Gate{g2})
	require.NoError(t, err)

	assert.Same(t, m1, g1.Module())
	assert.Same(t, m2, g2.Module())
	assert.Same(t, nl.TopModule(), g3.Module())
	assert.True(t, m1.ContainsGate(g2, true))
	assert.False(t, m1.ContainsGate(g2, false))
	assert.Len(t, m1.Gates(true), 2)
	assert.Len(t, nl.TopModule().Gates(true), 3)

	assert.ErrorIs(t, m1.SetParent(m2), netlist.ErrStructural, "cycle")
	assert.ErrorIs(t, nl.DeleteModule(nl.TopModule()), netlist.ErrStructural)

	require.NoError(t, nl.DeleteModule(m1))
	assert.Same(t, nl.TopModule(), g1.Module())
	assert.Same(t, nl.TopModule(), m2.Parent())
	assert.Same(t, m2, g2.Module())
	require.NoError(t, nl.Validate())
}

func TestModuleDerivedNets(t *testing.T) {
	b := netlisttest.New(t, nil)
	a := b.Input("a")
	g1 := b.Gate(gatelib.TypeINV, "g1")
	g2 := b.Gate(gatelib.TypeINV, "g2")
	g3 := b.Gate(gatelib.TypeINV, "g3")
	b.Read(a, g1, "I")
	mid := b.Wire("mid", g1, "O", g2, "I")
	out := b.Wire("out", g2, "O", g3, "I")
	b.Output("y", g3, "O")

	m, err := b.NL.CreateModule("m", nil, []*netlist.Gate{g1, g2})
	require.NoError(t, err)

	assert.Equal(t, []*netlist.Net{a}, m.InputNets())
	assert.Equal(t, []*netlist.Net{out}, m.OutputNets())
	assert.Equal(t, []*netlist.Net{mid}, m.InternalNets())
}

func TestConstantGates(t *testing.T) {
	b := netlisttest.New(t, nil)
	gnd, vcc := b.Constants()
	assert.True(t, gnd.IsGndNet())
	assert.True(t, vcc.IsVccNet())
	assert.False(t, gnd.IsVccNet())
	assert.Same(t, gnd, b.NL.ConstantNet(false))
	assert.Same(t, vcc, b.NL.ConstantNet(true))

	inv := b.Gate(gatelib.TypeINV, "inv")
	assert.ErrorIs(t, b.NL.MarkGndGate(inv), netlist.ErrStructural)

	vccGate := b.NL.VccGates()[0]
	assert.ErrorIs(t, b.NL.MarkGndGate(vccGate), netlist.ErrStructural, "VCC drives 1")
}

func TestBooleanFunctionResolution(t *testing.T) {
	b := netlisttest.New(t, nil)
	and := b.Gate(gatelib.TypeAND2, "and")
	f, err := and.BooleanFunction("")
	require.NoError(t, err)
	assert.Equal(t, "I0 & I1", f.String())

	lut := b.Gate(gatelib.TypeLUT4, "lut")
	_, err = lut.BooleanFunction("O")
	assert.ErrorIs(t, err, netlist.ErrLookup, "missing configuration")

	lut.SetData("generic", "INIT", "bit_vector", "8000")
	f, err = lut.BooleanFunction("O")
	require.NoError(t, err)
	eq, err := f.Equivalent(mustParse(t, "I0 & I1 & I2 & I3"))
	require.NoError(t, err)
	assert.True(t, eq)

	require.NoError(t, and.AddBooleanFunction("O", mustParse(t, "I0 | I1")))
	f, err = and.BooleanFunction("O")
	require.NoError(t, err)
	assert.Equal(t, "I0 | I1", f.String())

	dff := b.Gate(gatelib.TypeDFF, "ff")
	_, err = dff.BooleanFunction("Q")
	assert.ErrorIs(t, err, netlist.ErrLookup)
}

func TestCloneAndRestore(t *testing.T) {
	b := netlisttest.New(t, nil)
	b.Constants()
	a := b.Input("a")
	inv := b.Gate(gatelib.TypeINV, "inv")
	b.Read(a, inv, "I")
	b.Output("y", inv, "O")
	inv.SetData("attr", "src", "string", "top.v:3")
	_, err := b.NL.CreateModule("m", nil, []*netlist.Gate{inv})
	require.NoError(t, err)

	snap := b.NL.Clone()
	require.NoError(t, snap.Validate())
	assert.Equal(t, b.NL.NumGates(), snap.NumGates())
	assert.Equal(t, b.NL.NumNets(), snap.NumNets())

	cinv := snap.GateByName("inv")
	require.NotNil(t, cinv)
	assert.NotSame(t, inv, cinv)
	assert.Equal(t, "m", cinv.Module().Name())
	v, ok := cinv.Data("attr", "src")
	assert.True(t, ok)
	assert.Equal(t, "top.v:3", v.Value)
	assert.True(t, snap.NetByName("a").IsGlobalInput())
	assert.True(t, snap.NetByName("gnd").IsGndNet())

	require.NoError(t, b.NL.DeleteGate(inv))
	assert.Nil(t, b.NL.GateByName("inv"))

	b.NL.Restore(snap)
	require.NoError(t, b.NL.Validate())
	restored := b.NL.GateByName("inv")
	require.NotNil(t, restored)
	assert.Same(t, b.NL, restored.Netlist())
	assert.Equal(t, "a", restored.FaninNet("I").Name())
}

func TestRenameKeepsIndices(t *testing.T) {
	b := netlisttest.New(t, nil)
	inv := b.Gate(gatelib.TypeINV, "inv")
	b.Gate(gatelib.TypeINV, "other")
	require.NoError(t, b.NL.Validate())

	require.NoError(t, inv.SetName("inv2"))
	assert.Same(t, inv, b.NL.GateByName("inv2"))
	assert.Nil(t, b.NL.GateByName("inv"))
	assert.ErrorIs(t, inv.SetName("other"), netlist.ErrStructural)
	require.NoError(t, b.NL.Validate())
	assert.ErrorIs(t, inv.SetName(""), netlist.ErrInvalidArgument)
}

func TestPartialError(t *testing.T) {
	err := &netlist.PartialError{Op: "replace", Stage: "wiring", Err: netlist.ErrLookup}
	assert.True(t, netlist.IsPartial(err))
	assert.True(t, errors.Is(err, netlist.ErrLookup))
	assert.Contains(t, err.Error(), "failed at wiring")
}
