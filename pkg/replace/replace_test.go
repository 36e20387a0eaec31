package replace

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/boolfunc"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/gatelib"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/netlist"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/netlist/netlisttest"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/subgraph"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/synth"
)

type countingSynth struct {
	calls int
	inner synth.Synthesizer
}

func (c *countingSynth) Synthesize(ctx context.Context, functions map[string]boolfunc.Function, lib *gatelib.Library) (*netlist.Netlist, error) {
	c.calls++
	return c.inner.Synthesize(ctx, functions, lib)
}

type failingSynth struct{}

func (failingSynth) Synthesize(context.Context, map[string]boolfunc.Function, *gatelib.Library) (*netlist.Netlist, error) {
	return nil, fmt.Errorf("synth: %w: tool crashed", netlist.ErrExternalTool)
}

func outputFunction(t *testing.T, nl *netlist.Netlist, n *netlist.Net) boolfunc.Function {
	t.Helper()
	f, err := subgraph.GetSubgraphFunction(nl.Gates(nil), n)
	require.NoError(t, err)
	return f
}

func assertEquivalent(t *testing.T, want, got boolfunc.Function) {
	t.Helper()
	eq, err := got.Equivalent(want)
	require.NoError(t, err)
	assert.True(t, eq, "want %s, got %s", want, got)
}

func typeCounts(nl *netlist.Netlist) map[string]int {
	out := make(map[string]int)
	for _, g := range nl.Gates(nil) {
		out[g.Type().Name]++
	}
	return out
}

// nandXnor builds y = XNOR(NAND(a, c), NAND(c, s)).
func nandXnor(t *testing.T) (*netlisttest.Builder, *netlist.Net) {
	b := netlisttest.New(t, nil)
	a := b.Input("a")
	c := b.Input("c")
	s := b.Input("s")
	n1 := b.Gate(gatelib.TypeNAND2, "n1")
	n2 := b.Gate(gatelib.TypeNAND2, "n2")
	x := b.Gate(gatelib.TypeXNOR2, "x")
	b.Read(a, n1, "I0")
	b.Read(c, n1, "I1")
	b.Read(c, n2, "I0")
	b.Read(s, n2, "I1")
	b.Wire("m1", n1, "O", x, "I0")
	b.Wire("m2", n2, "O", x, "I1")
	return b, b.Output("y", x, "O")
}

func TestDecomposeSingleAndGate(t *testing.T) {
	b := netlisttest.New(t, nil)
	a := b.Input("a")
	c := b.Input("b")
	g0 := b.Gate(gatelib.TypeAND2, "G0")
	b.Read(a, g0, "I0")
	b.Read(c, g0, "I1")
	y := b.Output("y", g0, "O")

	res, err := DecomposeGate(g0, DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, b.NL.Validate())

	assert.False(t, b.NL.ContainsGate(g0))
	require.Equal(t, 1, b.NL.NumGates())
	require.Len(t, res.Gates, 1)
	g := res.Gates[0]
	assert.Equal(t, gatelib.TypeAND2, g.Type().Name)
	assert.Contains(t, g.Name(), "_NEW_GATE")
	assert.Same(t, a, g.FaninNet("I0"))
	assert.Same(t, c, g.FaninNet("I1"))
	assert.Same(t, y, g.FanoutNet("O"))
	assert.True(t, y.IsGlobalOutput())
	assert.Equal(t, 1, res.Deleted)
	assert.Equal(t, 3, b.NL.NumNets())
}

func TestDecomposeGatesPreservesFunction(t *testing.T) {
	b, y := nandXnor(t)
	want := outputFunction(t, b.NL, y)

	count, err := DecomposeGates(b.NL, nil, DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, b.NL.Validate())
	assert.Equal(t, 3, count)

	for _, g := range b.NL.Gates(nil) {
		assert.True(t, isTreePrimitive(g.Type()), "%s left undecomposed", g)
	}
	assertEquivalent(t, want, outputFunction(t, b.NL, y))
	assert.NotNil(t, b.NL.NetByName("m1"), "internal boundary nets survive")

	count, err = DecomposeGates(b.NL, nil, DefaultOptions())
	require.NoError(t, err)
	assert.Zero(t, count, "nothing left to decompose")
}

func TestDecomposeLUTAndMux(t *testing.T) {
	b := netlisttest.New(t, nil)
	ins := []*netlist.Net{b.Input("i0"), b.Input("i1"), b.Input("i2"), b.Input("i3")}
	lut := b.Gate(gatelib.TypeLUT4, "lut")
	lut.SetData("generic", "INIT", "bit_vector", "6996")
	for i, n := range ins {
		b.Read(n, lut, fmt.Sprintf("I%d", i))
	}
	mux := b.Gate(gatelib.TypeMUX2, "mux")
	b.Wire("l", lut, "O", mux, "I0")
	b.Read(ins[0], mux, "I1")
	b.Read(ins[3], mux, "S")
	y := b.Output("y", mux, "O")
	want := outputFunction(t, b.NL, y)

	count, err := DecomposeGatesOfType(b.NL, b.NL.Library().GateTypeByName(gatelib.TypeLUT4), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Zero(t, typeCounts(b.NL)[gatelib.TypeLUT4])
	assert.Equal(t, 1, typeCounts(b.NL)[gatelib.TypeMUX2], "other types untouched")
	assertEquivalent(t, want, outputFunction(t, b.NL, y))
	require.NoError(t, b.NL.Validate())
}

func TestDecomposeConstantGate(t *testing.T) {
	b := netlisttest.New(t, nil)
	gnd, vcc := b.Constants()
	a := b.Input("a")
	g := b.Gate(gatelib.TypeBUF, "tie")
	b.Read(a, g, "I")
	require.NoError(t, g.AddBooleanFunction("O", boolfunc.Const(true)))
	y := b.Output("y", g, "O")
	sink := b.Gate(gatelib.TypeINV, "sink")
	b.Read(y, sink, "I")
	b.Output("z", sink, "O")

	res, err := DecomposeGate(g, DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, b.NL.Validate())

	assert.Empty(t, res.Gates)
	assert.Equal(t, 1, res.Merged)
	assert.False(t, b.NL.ContainsNet(y), "output merged into the power net")
	assert.Same(t, vcc, sink.FaninNet("I"))
	assert.True(t, vcc.IsGlobalOutput())
	assert.Equal(t, 0, gnd.NumDestinations())
	assert.Equal(t, 0, a.NumDestinations())
	assert.True(t, b.NL.ContainsNet(a), "global inputs are never removed")
}

func TestDecomposeErrors(t *testing.T) {
	b := netlisttest.New(t, nil)
	_, err := DecomposeGate(nil, DefaultOptions())
	assert.ErrorIs(t, err, netlist.ErrInvalidArgument)

	idle := b.Gate(gatelib.TypeAND2, "idle")
	_, err = DecomposeGate(idle, DefaultOptions())
	assert.ErrorIs(t, err, netlist.ErrInvalidArgument, "no connected output")

	ff := b.Gate(gatelib.TypeDFF, "ff")
	b.Output("q", ff, "Q")
	_, err = DecomposeGate(ff, DefaultOptions())
	assert.ErrorIs(t, err, netlist.ErrLookup)
	assert.False(t, DecomposableGate(ff))

	_, err = DecomposeGatesOfType(b.NL, nil, DefaultOptions())
	assert.ErrorIs(t, err, netlist.ErrInvalidArgument)
	_, err = DecomposeGates(nil, nil, DefaultOptions())
	assert.ErrorIs(t, err, netlist.ErrInvalidArgument)
}

// mergeScenario builds a destination where INV g drives output y1 while y2
// is an undriven net read by h, and a replacement buffer i -> o.
func mergeScenario(t *testing.T) (dst *netlisttest.Builder, r *netlisttest.Builder, g, h *netlist.Gate, a, y1, y2 *netlist.Net) {
	dst = netlisttest.New(t, nil)
	a = dst.Input("a")
	g = dst.Gate(gatelib.TypeINV, "g")
	dst.Read(a, g, "I")
	y1 = dst.Output("y1", g, "O")
	y2 = dst.Net("y2")
	h = dst.Gate(gatelib.TypeBUF, "h")
	dst.Read(y2, h, "I")
	dst.Output("z", h, "O")

	r = netlisttest.New(t, nil)
	i := r.Input("i")
	buf := r.Gate(gatelib.TypeBUF, "buf")
	r.Read(i, buf, "I")
	r.Output("o", buf, "O")
	return dst, r, g, h, a, y1, y2
}

func TestReplaceSubgraphMergesOutputs(t *testing.T) {
	dst, r, g, h, a, y1, y2 := mergeScenario(t)
	mapping := Mapping{
		r.NL.NetByName("i"): {a},
		r.NL.NetByName("o"): {y1, y2},
	}

	res, err := ReplaceSubgraph(dst.NL, []*netlist.Gate{g}, r.NL, mapping, true, DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, dst.NL.Validate())

	require.Len(t, res.Gates, 1)
	assert.Equal(t, 1, res.Merged)
	assert.Equal(t, 1, res.Deleted)
	assert.Same(t, y1, h.FaninNet("I"))
	assert.False(t, dst.NL.ContainsNet(y2))
	assert.Same(t, res.Gates[0], y1.SourceGates()[0])
	assert.Same(t, a, res.Gates[0].FaninNet("I"))
	assert.Equal(t, 1, r.NL.NumGates(), "replacement netlist untouched")
}

func TestReplaceSubgraphStrictOutputMerge(t *testing.T) {
	dst, r, g, _, a, y1, y2 := mergeScenario(t)
	mapping := Mapping{
		r.NL.NetByName("i"): {a},
		r.NL.NetByName("o"): {y1, y2},
	}

	opts := DefaultOptions()
	opts.StrictOutputMerge = true
	_, err := ReplaceSubgraph(dst.NL, []*netlist.Gate{g}, r.NL, mapping, true, opts)
	assert.ErrorIs(t, err, netlist.ErrStructural)
	assert.Equal(t, 2, dst.NL.NumGates(), "nothing changed")
	assert.True(t, dst.NL.ContainsNet(y2))
}

func TestReplaceSubgraphKeepOriginal(t *testing.T) {
	dst, r, g, _, a, y1, _ := mergeScenario(t)
	mapping := Mapping{
		r.NL.NetByName("i"): {a},
		r.NL.NetByName("o"): {y1},
	}
	res, err := ReplaceSubgraph(dst.NL, []*netlist.Gate{g}, r.NL, mapping, false, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, dst.NL.ContainsGate(g))
	assert.Zero(t, res.Deleted)
	assert.Equal(t, 2, y1.NumSources())
}

func TestReplaceSubgraphRejectsBadInput(t *testing.T) {
	foreign := netlisttest.New(t, nil)
	foreignNet := foreign.Net("f")
	foreignGate := foreign.Gate(gatelib.TypeBUF, "fg")

	tests := []struct {
		name    string
		mapping func(r *netlist.Netlist, a, y1, y2 *netlist.Net) Mapping
		gates   func(g *netlist.Gate) []*netlist.Gate
		self    bool
		want    error
	}{
		{
			name: "key outside replacement",
			mapping: func(r *netlist.Netlist, a, y1, _ *netlist.Net) Mapping {
				return Mapping{r.NetByName("i"): {a}, r.NetByName("o"): {y1}, foreignNet: {a}}
			},
			want: netlist.ErrInvalidArgument,
		},
		{
			name: "target outside destination",
			mapping: func(r *netlist.Netlist, _, y1, _ *netlist.Net) Mapping {
				return Mapping{r.NetByName("i"): {foreignNet}, r.NetByName("o"): {y1}}
			},
			want: netlist.ErrInvalidArgument,
		},
		{
			name: "input maps to two nets",
			mapping: func(r *netlist.Netlist, a, y1, y2 *netlist.Net) Mapping {
				return Mapping{r.NetByName("i"): {a, y2}, r.NetByName("o"): {y1}}
			},
			want: netlist.ErrStructural,
		},
		{
			name: "input bound to a merged output target",
			mapping: func(r *netlist.Netlist, _, y1, y2 *netlist.Net) Mapping {
				return Mapping{r.NetByName("i"): {y2}, r.NetByName("o"): {y1, y2}}
			},
			want: netlist.ErrStructural,
		},
		{
			name: "unmapped input",
			mapping: func(r *netlist.Netlist, _, y1, _ *netlist.Net) Mapping {
				return Mapping{r.NetByName("o"): {y1}}
			},
			want: netlist.ErrLookup,
		},
		{
			name: "foreign subgraph gate",
			mapping: func(r *netlist.Netlist, a, y1, _ *netlist.Net) Mapping {
				return Mapping{r.NetByName("i"): {a}, r.NetByName("o"): {y1}}
			},
			gates: func(*netlist.Gate) []*netlist.Gate { return []*netlist.Gate{foreignGate} },
			want:  netlist.ErrInvalidArgument,
		},
		{
			name: "duplicate subgraph gate",
			mapping: func(r *netlist.Netlist, a, y1, _ *netlist.Net) Mapping {
				return Mapping{r.NetByName("i"): {a}, r.NetByName("o"): {y1}}
			},
			gates: func(g *netlist.Gate) []*netlist.Gate { return []*netlist.Gate{g, g} },
			want:  netlist.ErrInvalidArgument,
		},
		{
			name: "replacement is destination",
			mapping: func(*netlist.Netlist, *netlist.Net, *netlist.Net, *netlist.Net) Mapping {
				return nil
			},
			self: true,
			want: netlist.ErrInvalidArgument,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst, r, g, _, a, y1, y2 := mergeScenario(t)
			gates := []*netlist.Gate{g}
			if tt.gates != nil {
				gates = tt.gates(g)
			}
			rnl := r.NL
			if tt.self {
				rnl = dst.NL
			}
			_, err := ReplaceSubgraph(dst.NL, gates, rnl, tt.mapping(r.NL, a, y1, y2), true, DefaultOptions())
			assert.ErrorIs(t, err, tt.want)
			assert.False(t, netlist.IsPartial(err))
			assert.Equal(t, 2, dst.NL.NumGates())
			assert.Equal(t, 4, dst.NL.NumNets())
		})
	}
}

func TestReplaceSubgraphRejectsOverlappingMerge(t *testing.T) {
	dst, _, g, _, a, y1, y2 := mergeScenario(t)

	// The output net gets the lower ID so it is bound before the input.
	r := netlisttest.New(t, nil)
	o := r.Net("o")
	i := r.Input("i")
	and := r.Gate(gatelib.TypeAND2, "and")
	r.Read(i, and, "I0")
	c := r.Input("c")
	r.Read(c, and, "I1")
	r.Drive(o, and, "O")
	require.NoError(t, r.NL.MarkGlobalOutputNet(o))

	mapping := Mapping{o: {y1, y2}, i: {y2}, c: {a}}
	_, err := ReplaceSubgraph(dst.NL, []*netlist.Gate{g}, r.NL, mapping, true, DefaultOptions())
	require.ErrorIs(t, err, netlist.ErrStructural)
	assert.False(t, netlist.IsPartial(err))

	assert.True(t, dst.NL.ContainsGate(g))
	assert.True(t, dst.NL.ContainsNet(y2))
	assert.Equal(t, 2, dst.NL.NumGates())
	assert.Equal(t, 4, dst.NL.NumNets())
	require.NoError(t, dst.NL.Validate())

	mapping[i] = []*netlist.Net{a}
	res, err := ReplaceSubgraph(dst.NL, []*netlist.Gate{g}, r.NL, mapping, true, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Merged)
	require.NoError(t, dst.NL.Validate())
}

func TestReplaceSubgraphUnknownGateType(t *testing.T) {
	dst, _, g, _, a, y1, _ := mergeScenario(t)

	lib := gatelib.NewLibrary("other")
	bufx := gatelib.NewGateType("BUFX", gatelib.Combinational, gatelib.CBuffer).
		AddPin("I", gatelib.DirectionInput, gatelib.PinData).
		AddPin("O", gatelib.DirectionOutput, gatelib.PinData)
	require.NoError(t, bufx.SetFunction("O", "I"))
	require.NoError(t, lib.AddGateType(bufx))
	r := netlisttest.New(t, lib)
	i := r.Input("i")
	bx := r.Gate("BUFX", "bx")
	r.Read(i, bx, "I")
	o := r.Output("o", bx, "O")

	_, err := ReplaceSubgraph(dst.NL, []*netlist.Gate{g}, r.NL, Mapping{i: {a}, o: {y1}}, true, DefaultOptions())
	assert.ErrorIs(t, err, netlist.ErrLookup)
	assert.Contains(t, err.Error(), "BUFX")
	assert.True(t, dst.NL.ContainsGate(g))
}

func TestReplaceSubgraphNeedsConstantNets(t *testing.T) {
	b := netlisttest.New(t, nil)
	a := b.Input("a")
	g := b.Gate(gatelib.TypeBUF, "tie")
	b.Read(a, g, "I")
	require.NoError(t, g.AddBooleanFunction("O", boolfunc.Const(false)))
	b.Output("y", g, "O")

	_, err := DecomposeGate(g, DefaultOptions())
	assert.ErrorIs(t, err, netlist.ErrLookup)
	assert.True(t, b.NL.ContainsGate(g))
}

func TestResynthesizeGatesCachesPerFunction(t *testing.T) {
	b, y := nandXnor(t)
	want := outputFunction(t, b.NL, y)
	s := &countingSynth{inner: synth.GateTree{}}

	count, err := ResynthesizeGates(context.Background(), b.NL, nil, s, gatelib.Primitives(), DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, b.NL.Validate())
	assert.Equal(t, 3, count)
	assert.Equal(t, 2, s.calls, "both NAND2 gates share one synthesis run")

	counts := typeCounts(b.NL)
	assert.Zero(t, counts[gatelib.TypeNAND2])
	assert.Zero(t, counts[gatelib.TypeXNOR2])
	assertEquivalent(t, want, outputFunction(t, b.NL, y))
}

func TestResynthesizeGatesOfType(t *testing.T) {
	b, y := nandXnor(t)
	want := outputFunction(t, b.NL, y)

	nand := b.NL.Library().GateTypeByName(gatelib.TypeNAND2)
	count, err := ResynthesizeGatesOfType(context.Background(), b.NL, nand, synth.GateTree{}, gatelib.Primitives(), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 1, typeCounts(b.NL)[gatelib.TypeXNOR2])
	assertEquivalent(t, want, outputFunction(t, b.NL, y))
}

func TestResynthesizeFailures(t *testing.T) {
	b, _ := nandXnor(t)
	n1 := b.NL.GateByName("n1")

	_, err := ResynthesizeGate(context.Background(), n1, failingSynth{}, gatelib.Primitives(), DefaultOptions())
	assert.ErrorIs(t, err, netlist.ErrExternalTool)

	count, err := ResynthesizeGates(context.Background(), b.NL, nil, failingSynth{}, gatelib.Primitives(), DefaultOptions())
	assert.ErrorIs(t, err, netlist.ErrExternalTool)
	assert.Contains(t, err.Error(), "failed at n1")
	assert.Zero(t, count)
	assert.Equal(t, 3, b.NL.NumGates())

	_, err = ResynthesizeGate(context.Background(), n1, nil, gatelib.Primitives(), DefaultOptions())
	assert.ErrorIs(t, err, netlist.ErrInvalidArgument)
}

func TestResynthesizeIntoForeignLibrary(t *testing.T) {
	b, _ := nandXnor(t)

	cells := gatelib.NewLibrary("cells")
	myInv := gatelib.NewGateType("MYINV", gatelib.Combinational, gatelib.CInverter).
		AddPin("A", gatelib.DirectionInput, gatelib.PinData).
		AddPin("Y", gatelib.DirectionOutput, gatelib.PinData)
	require.NoError(t, myInv.SetFunction("Y", "!A"))
	myAnd := gatelib.NewGateType("MYAND", gatelib.Combinational, gatelib.CAnd).
		AddPin("A", gatelib.DirectionInput, gatelib.PinData).
		AddPin("B", gatelib.DirectionInput, gatelib.PinData).
		AddPin("Y", gatelib.DirectionOutput, gatelib.PinData)
	require.NoError(t, myAnd.SetFunction("Y", "A & B"))
	require.NoError(t, cells.AddGateType(myInv))
	require.NoError(t, cells.AddGateType(myAnd))

	nand := b.NL.Library().GateTypeByName(gatelib.TypeNAND2)
	count, err := ResynthesizeGatesOfType(context.Background(), b.NL, nand, synth.GateTree{}, cells, DefaultOptions())
	assert.ErrorIs(t, err, netlist.ErrLookup, "MYAND is not in the design library")
	assert.Zero(t, count)
	assert.Equal(t, 3, b.NL.NumGates())
}

func TestResynthesizeSubgraph(t *testing.T) {
	b, y := nandXnor(t)
	want := outputFunction(t, b.NL, y)
	gates := b.NL.Gates(nil)

	res, err := ResynthesizeSubgraph(context.Background(), b.NL, gates, synth.GateTree{}, gatelib.Primitives(), DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, b.NL.Validate())

	assert.Equal(t, 3, res.Deleted)
	assert.Equal(t, 2, res.Removed, "m1 and m2 lost all endpoints")
	assert.Nil(t, b.NL.NetByName("m1"))
	assert.True(t, b.NL.ContainsNet(y))
	assertEquivalent(t, want, outputFunction(t, b.NL, y))

	_, err = ResynthesizeSubgraph(context.Background(), b.NL, nil, synth.GateTree{}, gatelib.Primitives(), DefaultOptions())
	assert.ErrorIs(t, err, netlist.ErrInvalidArgument)
}

// muxDesign builds y1 = MUX(a, c, !s) and optionally y2 = MUX(c, a, !s)
// sharing the inverter.
func muxDesign(t *testing.T, shared bool) (*netlisttest.Builder, []*netlist.Net) {
	b := netlisttest.New(t, nil)
	a := b.Input("a")
	c := b.Input("c")
	s := b.Input("s")
	inv := b.Gate(gatelib.TypeINV, "inv")
	b.Read(s, inv, "I")
	ns := b.Net("ns")
	b.Drive(ns, inv, "O")

	m1 := b.Gate(gatelib.TypeMUX2, "m1")
	b.Read(a, m1, "I0")
	b.Read(c, m1, "I1")
	b.Read(ns, m1, "S")
	outs := []*netlist.Net{b.Output("y1", m1, "O")}
	if shared {
		m2 := b.Gate(gatelib.TypeMUX2, "m2")
		b.Read(c, m2, "I0")
		b.Read(a, m2, "I1")
		b.Read(ns, m2, "S")
		outs = append(outs, b.Output("y2", m2, "O"))
	}
	return b, outs
}

func TestManualMuxOptimizations(t *testing.T) {
	b, outs := muxDesign(t, false)
	want := outputFunction(t, b.NL, outs[0])

	count, err := ManualMuxOptimizations(context.Background(), b.NL, synth.GateTree{}, DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, b.NL.Validate())

	assert.Equal(t, 1, count)
	assert.Nil(t, b.NL.GateByName("inv"), "exclusive inverter folded away")
	assert.Nil(t, b.NL.GateByName("m1"))
	assert.Nil(t, b.NL.NetByName("ns"))
	assertEquivalent(t, want, outputFunction(t, b.NL, outs[0]))
}

func TestManualMuxOptimizationsSkipsSharedInverter(t *testing.T) {
	b, _ := muxDesign(t, true)
	count, err := ManualMuxOptimizations(context.Background(), b.NL, synth.GateTree{}, DefaultOptions())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Equal(t, 3, b.NL.NumGates())
}

func TestUnifySelectSignals(t *testing.T) {
	b, outs := muxDesign(t, true)
	want1 := outputFunction(t, b.NL, outs[0])
	want2 := outputFunction(t, b.NL, outs[1])
	ns := b.NL.NetByName("ns")
	s := &countingSynth{inner: synth.GateTree{}}

	count, err := UnifySelectSignals(context.Background(), b.NL, s, DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, b.NL.Validate())

	assert.Equal(t, 2, count)
	assert.Equal(t, 1, s.calls, "same type and inverted pins share one result")
	assert.NotNil(t, b.NL.GateByName("inv"), "shared inverter kept")
	assert.Equal(t, 0, ns.NumDestinations())
	assertEquivalent(t, want1, outputFunction(t, b.NL, outs[0]))
	assertEquivalent(t, want2, outputFunction(t, b.NL, outs[1]))
}

func TestMuxOptimizationsWithoutInverters(t *testing.T) {
	b := netlisttest.New(t, nil)
	m := b.Gate(gatelib.TypeMUX2, "m")
	b.Read(b.Input("a"), m, "I0")
	b.Read(b.Input("c"), m, "I1")
	b.Read(b.Input("s"), m, "S")
	b.Output("y", m, "O")

	count, err := UnifySelectSignals(context.Background(), b.NL, failingSynth{}, DefaultOptions())
	require.NoError(t, err, "nothing to synthesize")
	assert.Zero(t, count)

	_, err = ManualMuxOptimizations(context.Background(), nil, synth.GateTree{}, DefaultOptions())
	assert.ErrorIs(t, err, netlist.ErrInvalidArgument)
}
