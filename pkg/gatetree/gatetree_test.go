package gatetree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/boolfunc"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/gatelib"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/netlist"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/netlist/netlisttest"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/subgraph"
)

func typeCounts(nl *netlist.Netlist) map[string]int {
	out := make(map[string]int)
	for _, g := range nl.Gates(nil) {
		out[g.Type().Name]++
	}
	return out
}

func TestSynthesizeSingleGate(t *testing.T) {
	nl, err := Synthesize(map[string]boolfunc.Function{
		"y": boolfunc.MustParse("a & b"),
	}, gatelib.Primitives())
	require.NoError(t, err)
	require.NoError(t, nl.Validate())

	assert.Equal(t, map[string]int{gatelib.TypeAND2: 1}, typeCounts(nl))
	y := nl.NetByName("y")
	require.NotNil(t, y)
	assert.True(t, y.IsGlobalOutput())
	assert.Same(t, y, nl.PortNet("y"))
	_, outs := y.Ports()
	assert.Equal(t, []string{"y"}, outs)

	and := y.SourceGates()[0]
	assert.Equal(t, "a", and.FaninNet("I0").Name())
	assert.Equal(t, "b", and.FaninNet("I1").Name())
	assert.Len(t, nl.GlobalInputNets(), 2)
}

func TestSynthesizeFoldsNaryOperators(t *testing.T) {
	nl, err := Synthesize(map[string]boolfunc.Function{
		"y": boolfunc.And(boolfunc.Var("a"), boolfunc.Var("b"), boolfunc.Var("c")),
		"z": boolfunc.Xor(boolfunc.Var("a"), boolfunc.Var("b"), boolfunc.Var("c"), boolfunc.Var("d")),
		"n": boolfunc.MustParse("!(a | d)"),
	}, gatelib.Primitives())
	require.NoError(t, err)
	require.NoError(t, nl.Validate())

	assert.Equal(t, map[string]int{
		gatelib.TypeAND2: 2,
		gatelib.TypeXOR2: 3,
		gatelib.TypeOR2:  1,
		gatelib.TypeINV:  1,
	}, typeCounts(nl))
	assert.Len(t, nl.GlobalOutputNets(), 3)
	assert.Len(t, nl.GlobalInputNets(), 4)
}

func TestSynthesizeSharedOutputNets(t *testing.T) {
	nl, err := Synthesize(map[string]boolfunc.Function{
		"hi":   boolfunc.Const(true),
		"lo":   boolfunc.Const(false),
		"copy": boolfunc.Var("a"),
	}, gatelib.Primitives())
	require.NoError(t, err)
	require.NoError(t, nl.Validate())

	require.Len(t, nl.VccGates(), 1)
	require.Len(t, nl.GndGates(), 1)
	hi := nl.PortNet("hi")
	require.NotNil(t, hi)
	assert.True(t, hi.IsVccNet())
	assert.True(t, hi.IsGlobalOutput())
	assert.True(t, nl.PortNet("lo").IsGndNet())

	a := nl.NetByName("a")
	require.NotNil(t, a)
	assert.Same(t, a, nl.PortNet("copy"))
	assert.True(t, a.IsGlobalInput())
	assert.True(t, a.IsGlobalOutput())
	ins, outs := a.Ports()
	assert.Equal(t, []string{"a"}, ins)
	assert.Equal(t, []string{"copy"}, outs)
}

func TestSynthesizeRejectsUnsupportedShapes(t *testing.T) {
	lib := gatelib.Primitives()
	tests := []struct {
		name string
		f    boolfunc.Function
		want error
	}{
		{"empty", boolfunc.Function{}, netlist.ErrInvalidArgument},
		{"index", boolfunc.Slice("bus", 1), netlist.ErrStructural},
		{"vector", boolfunc.Vector("bus", 4), netlist.ErrStructural},
		{"index operand", boolfunc.And(boolfunc.Var("a"), boolfunc.Slice("bus", 0)), netlist.ErrStructural},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Synthesize(map[string]boolfunc.Function{"y": tt.f}, lib)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := Synthesize(nil, lib)
	assert.ErrorIs(t, err, netlist.ErrInvalidArgument)
	_, err = Synthesize(map[string]boolfunc.Function{"y": boolfunc.Var("a")}, nil)
	assert.ErrorIs(t, err, netlist.ErrInvalidArgument)
}

func TestSynthesizeMissingPrimitive(t *testing.T) {
	lib := gatelib.NewLibrary("no_xor")
	for _, gt := range gatelib.Primitives().All() {
		if gt.HasProperty(gatelib.CXor) {
			continue
		}
		require.NoError(t, lib.AddGateType(gt))
	}

	_, err := Synthesize(map[string]boolfunc.Function{"y": boolfunc.MustParse("a & b")}, lib)
	require.NoError(t, err)
	_, err = Synthesize(map[string]boolfunc.Function{"y": boolfunc.MustParse("a ^ b")}, lib)
	assert.ErrorIs(t, err, netlist.ErrLookup)
}

func TestBuildIntoExistingNetlist(t *testing.T) {
	b := netlisttest.New(t, nil)
	a := b.Input("a")
	c := b.Input("c")

	outs, err := Build(b.NL, map[string]boolfunc.Function{
		"y": boolfunc.MustParse("x | !z"),
	}, map[string]*netlist.Net{"x": a, "z": c})
	require.NoError(t, err)
	require.NoError(t, b.NL.Validate())

	y := outs["y"]
	require.NotNil(t, y)
	assert.Equal(t, "y", y.Name())
	assert.Equal(t, 1, a.NumDestinations())
	assert.Equal(t, 1, c.NumDestinations())
	assert.False(t, y.IsGlobalOutput(), "Build leaves flags alone")

	_, err = Build(b.NL, map[string]boolfunc.Function{"y2": boolfunc.MustParse("x & w")},
		map[string]*netlist.Net{"x": a})
	assert.ErrorIs(t, err, netlist.ErrLookup, "unbound variable")

	_, err = Build(b.NL, map[string]boolfunc.Function{"k": boolfunc.Const(false)}, nil)
	assert.ErrorIs(t, err, netlist.ErrLookup, "no ground net")

	gnd, _ := b.Constants()
	outs, err = Build(b.NL, map[string]boolfunc.Function{"k": boolfunc.Const(false)}, nil)
	require.NoError(t, err)
	assert.Same(t, gnd, outs["k"])

	foreign := netlisttest.New(t, nil).Net("f")
	_, err = Build(b.NL, map[string]boolfunc.Function{"y3": boolfunc.Var("x")},
		map[string]*netlist.Net{"x": foreign})
	assert.ErrorIs(t, err, netlist.ErrInvalidArgument)
}

// TestSubgraphRoundTrip derives the function of a subgraph, realizes it as a
// gate tree and derives the function of the realization again.
func TestSubgraphRoundTrip(t *testing.T) {
	b := netlisttest.New(t, nil)
	a := b.Input("a")
	c := b.Input("c")
	s := b.Input("s")
	mux := b.Gate(gatelib.TypeMUX2, "mux")
	nand := b.Gate(gatelib.TypeNAND2, "nand")
	xnor := b.Gate(gatelib.TypeXNOR2, "xnor")
	b.Read(a, mux, "I0")
	b.Read(c, mux, "I1")
	b.Read(s, mux, "S")
	b.Read(a, nand, "I0")
	b.Wire("m", mux, "O", nand, "I1")
	b.Read(s, xnor, "I0")
	b.Wire("n", nand, "O", xnor, "I1")
	y := b.Output("y", xnor, "O")

	orig, err := subgraph.GetSubgraphFunction([]*netlist.Gate{mux, nand, xnor}, y)
	require.NoError(t, err)

	r, err := Synthesize(map[string]boolfunc.Function{"y": orig}, gatelib.Primitives())
	require.NoError(t, err)
	require.NoError(t, r.Validate())

	again, err := subgraph.GetSubgraphFunction(r.Gates(nil), r.PortNet("y"))
	require.NoError(t, err)

	rename := make(map[string]string)
	for _, n := range r.GlobalInputNets() {
		rename[netlist.NetVariableName(n)] = n.Name()
	}
	again, err = again.RenameVariables(rename)
	require.NoError(t, err)

	eq, err := again.Equivalent(orig)
	require.NoError(t, err)
	assert.True(t, eq, "original %s, realization %s", orig, again)
}
