package replace

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/boolfunc"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/gatelib"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/netlist"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/subgraph"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/synth"
)

// ManualMuxOptimizations folds inverters that only drive select pins of a
// single multiplexer into that multiplexer. Each multiplexer and its
// inverters are replaced by a circuit that s synthesizes over the library
// of nl, so the inverters disappear when the library lets the synthesizer
// swap the data inputs instead. It returns the number of rewritten
// multiplexers.
func ManualMuxOptimizations(ctx context.Context, nl *netlist.Netlist, s synth.Synthesizer, opts Options) (int, error) {
	return optimizeMuxes(ctx, nl, s, true, opts)
}

// UnifySelectSignals rewrites every multiplexer whose select pins read
// inverted signals, shared or not, to read the uninverted signals instead.
// The inverters stay in place for their other readers. It returns the
// number of rewritten multiplexers.
func UnifySelectSignals(ctx context.Context, nl *netlist.Netlist, s synth.Synthesizer, opts Options) (int, error) {
	return optimizeMuxes(ctx, nl, s, false, opts)
}

// muxRewrite is one multiplexer with the inverters feeding its select pins.
type muxRewrite struct {
	mux       *netlist.Gate
	inverters map[string]*netlist.Gate // select pin -> inverter
	sources   map[string]*netlist.Net  // port name -> net read by the rewrite
	functions map[string]boolfunc.Function
}

func optimizeMuxes(ctx context.Context, nl *netlist.Netlist, s synth.Synthesizer, exclusive bool, opts Options) (int, error) {
	if nl == nil || s == nil {
		return 0, fmt.Errorf("replace: %w: netlist and synthesizer are required", netlist.ErrInvalidArgument)
	}
	op := "unify select signals"
	if exclusive {
		op = "mux optimization"
	}
	log := opts.logger()
	cache := make(map[string]*netlist.Netlist)
	count := 0
	for _, m := range nl.Gates(isMux) {
		if !nl.ContainsGate(m) {
			continue
		}
		rw, err := planMux(m, exclusive)
		if err != nil {
			return count, fmt.Errorf("replace: %s: %d rewritten, failed at %s: %w", op, count, m.Name(), err)
		}
		if rw == nil {
			continue
		}
		key := rw.fingerprint()
		r, ok := cache[key]
		if !ok {
			if r, err = s.Synthesize(ctx, rw.functions, nl.Library()); err != nil {
				return count, fmt.Errorf("replace: %s: %d rewritten, failed at %s: %w", op, count, m.Name(), err)
			}
			cache[key] = r
		}
		if err := rw.apply(r, exclusive, opts); err != nil {
			return count, fmt.Errorf("replace: %s: %d rewritten, failed at %s: %w", op, count, m.Name(), err)
		}
		count++
	}
	log.Info(op, "netlist", nl.Name(), "count", count, "synthesized", len(cache))
	return count, nil
}

func isMux(g *netlist.Gate) bool {
	t := g.Type()
	return t.HasProperty(gatelib.Combinational) && (t.HasProperty(gatelib.Mux) || t.HasProperty(gatelib.CMux))
}

func isInverter(g *netlist.Gate) bool {
	t := g.Type()
	return t.HasProperty(gatelib.CInverter) && len(t.InputPins()) == 1 && len(t.OutputPins()) == 1
}

// planMux collects the inverted select pins of m and the functions of its
// outputs over pin names. It returns nil when m has nothing to rewrite.
func planMux(m *netlist.Gate, exclusive bool) (*muxRewrite, error) {
	t := m.Type()
	for _, p := range t.InputPins() {
		if m.FaninNet(p.Name) == nil {
			return nil, nil
		}
	}
	rw := &muxRewrite{
		mux:       m,
		inverters: make(map[string]*netlist.Gate),
		sources:   make(map[string]*netlist.Net),
		functions: make(map[string]boolfunc.Function),
	}
	for _, p := range t.PinsOf(gatelib.DirectionInput, gatelib.PinSelect) {
		if inv := selectInverter(m, p.Name, exclusive); inv != nil {
			rw.inverters[p.Name] = inv
		}
	}
	if len(rw.inverters) == 0 {
		return nil, nil
	}

	gates := append([]*netlist.Gate{m}, rw.inverterGates()...)

	rename := make(map[string]string)
	for _, p := range t.InputPins() {
		src := m.FaninNet(p.Name)
		if inv, ok := rw.inverters[p.Name]; ok {
			src = inv.FaninNets()[0]
		}
		name := netlist.NetVariableName(src)
		if _, done := rename[name]; done {
			continue
		}
		rename[name] = p.Name
		rw.sources[p.Name] = src
	}
	for _, p := range t.OutputPins() {
		out := m.FanoutNet(p.Name)
		if out == nil {
			continue
		}
		f, err := subgraph.GetSubgraphFunction(gates, out)
		if err != nil {
			return nil, fmt.Errorf("replace: %w", err)
		}
		if f, err = f.RenameVariables(rename); err != nil {
			return nil, fmt.Errorf("replace: %w: %w", netlist.ErrStructural, err)
		}
		rw.functions[p.Name] = f.Simplify()
		rw.sources[p.Name] = out
	}
	if len(rw.functions) == 0 {
		return nil, nil
	}
	return rw, nil
}

// selectInverter returns the inverter driving select pin of m, or nil. With
// exclusive set the inverter output must be read by select pins of m only.
func selectInverter(m *netlist.Gate, pin string, exclusive bool) *netlist.Gate {
	n := m.FaninNet(pin)
	if n == nil || n.NumSources() != 1 {
		return nil
	}
	inv := n.SourceGates()[0]
	if !isInverter(inv) || len(inv.FaninNets()) != 1 {
		return nil
	}
	if !exclusive {
		return inv
	}
	if n.IsGlobalOutput() {
		return nil
	}
	for _, ep := range n.Destinations() {
		if ep.Gate() != m || ep.PinInfo().Type != gatelib.PinSelect {
			return nil
		}
	}
	return inv
}

// inverterGates returns the distinct inverters ordered by ID.
func (rw *muxRewrite) inverterGates() []*netlist.Gate {
	seen := make(map[*netlist.Gate]bool)
	var out []*netlist.Gate
	for _, inv := range rw.inverters {
		if !seen[inv] {
			seen[inv] = true
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// fingerprint keys the synthesis cache: gate type, inverted select pins and
// the resulting functions over pin names.
func (rw *muxRewrite) fingerprint() string {
	pins := make([]string, 0, len(rw.inverters))
	for p := range rw.inverters {
		pins = append(pins, p)
	}
	sort.Strings(pins)
	return gateKey(rw.mux.Type(), rw.functions) + "|inv=" + strings.Join(pins, ",")
}

// apply replaces the multiplexer, together with its inverters when they
// are exclusive, by r.
func (rw *muxRewrite) apply(r *netlist.Netlist, exclusive bool, opts Options) error {
	mapping, err := portMapping(r, func(port string, _ bool) (*netlist.Net, error) {
		if n, ok := rw.sources[port]; ok {
			return n, nil
		}
		return nil, fmt.Errorf("replace: %w: %s has no pin %s", netlist.ErrLookup, rw.mux, port)
	})
	if err != nil {
		return err
	}
	gates := []*netlist.Gate{rw.mux}
	if exclusive {
		gates = append(gates, rw.inverterGates()...)
	}
	_, err = ReplaceSubgraph(rw.mux.Netlist(), gates, r, mapping, true, opts)
	return err
}
