// Package netlisttest provides helpers for building netlists in tests.
package netlisttest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/gatelib"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/netlist"
)

// Builder creates netlist objects and fails the test on any error.
type Builder struct {
	t  testing.TB
	NL *netlist.Netlist
}

// New returns a builder over a fresh netlist. A nil lib selects
// gatelib.Primitives.
func New(t testing.TB, lib *gatelib.Library) *Builder {
	t.Helper()
	if lib == nil {
		lib = gatelib.Primitives()
	}
	return &Builder{t: t, NL: netlist.New(lib)}
}

// Gate instantiates the named gate type.
func (b *Builder) Gate(typeName, name string) *netlist.Gate {
	b.t.Helper()
	typ := b.NL.Library().GateTypeByName(typeName)
	require.NotNil(b.t, typ, "gate type %s", typeName)
	g, err := b.NL.CreateGate(typ, name)
	require.NoError(b.t, err)
	return g
}

// Net creates an unconnected net.
func (b *Builder) Net(name string) *netlist.Net {
	b.t.Helper()
	n, err := b.NL.CreateNet(name)
	require.NoError(b.t, err)
	return n
}

// Input creates a global input net.
func (b *Builder) Input(name string) *netlist.Net {
	b.t.Helper()
	n := b.Net(name)
	require.NoError(b.t, b.NL.MarkGlobalInputNet(n))
	return n
}

// Output creates a global output net driven by g.pin.
func (b *Builder) Output(name string, g *netlist.Gate, pin string) *netlist.Net {
	b.t.Helper()
	n := b.Net(name)
	b.Drive(n, g, pin)
	require.NoError(b.t, b.NL.MarkGlobalOutputNet(n))
	return n
}

// Drive adds g.pin as a source of n.
func (b *Builder) Drive(n *netlist.Net, g *netlist.Gate, pin string) {
	b.t.Helper()
	_, err := n.AddSource(g, pin)
	require.NoError(b.t, err)
}

// Read adds g.pin as a destination of n.
func (b *Builder) Read(n *netlist.Net, g *netlist.Gate, pins ...string) {
	b.t.Helper()
	for _, pin := range pins {
		_, err := n.AddDestination(g, pin)
		require.NoError(b.t, err)
	}
}

// Wire creates a net driven by src.srcPin and read by dst.dstPin.
func (b *Builder) Wire(name string, src *netlist.Gate, srcPin string, dst *netlist.Gate, dstPin string) *netlist.Net {
	b.t.Helper()
	n := b.Net(name)
	b.Drive(n, src, srcPin)
	b.Read(n, dst, dstPin)
	return n
}

// Constants adds flagged GND and VCC gates with their output nets "gnd" and
// "vcc".
func (b *Builder) Constants() (gnd, vcc *netlist.Net) {
	b.t.Helper()
	gg := b.Gate(gatelib.TypeGND, "gnd_gate")
	vg := b.Gate(gatelib.TypeVCC, "vcc_gate")
	require.NoError(b.t, b.NL.MarkGndGate(gg))
	require.NoError(b.t, b.NL.MarkVccGate(vg))
	gnd = b.Net("gnd")
	vcc = b.Net("vcc")
	b.Drive(gnd, gg, "O")
	b.Drive(vcc, vg, "O")
	return gnd, vcc
}
