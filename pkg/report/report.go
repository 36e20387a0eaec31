// Package report renders netlist and gate library statistics as text
// tables.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/markkurossi/tabulate"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/gatelib"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/netlist"
)

// TypeCount is the number of gates of one type.
type TypeCount struct {
	Type  string
	Count int
}

// Stats summarizes a netlist.
type Stats struct {
	Name          string
	Gates         int
	Nets          int
	Modules       int
	GlobalInputs  int
	GlobalOutputs int
	GndGates      int
	VccGates      int

	// Types is ordered by descending count, then by name.
	Types []TypeCount

	Unrouted    int // nets without sources that are not global inputs
	Dangling    int // nets without destinations that are not global outputs
	MultiDriven int // nets with more than one source
	MaxFanout   int
	MaxFanoutAt string
}

// Collect computes the statistics of nl.
func Collect(nl *netlist.Netlist) Stats {
	st := Stats{
		Name:          nl.DesignName(),
		Gates:         nl.NumGates(),
		Nets:          nl.NumNets(),
		Modules:       len(nl.Modules(nil)),
		GlobalInputs:  len(nl.GlobalInputNets()),
		GlobalOutputs: len(nl.GlobalOutputNets()),
		GndGates:      len(nl.GndGates()),
		VccGates:      len(nl.VccGates()),
	}
	if st.Name == "" {
		st.Name = nl.Name()
	}

	counts := make(map[string]int)
	for _, g := range nl.Gates(nil) {
		counts[g.Type().Name]++
	}
	for name, n := range counts {
		st.Types = append(st.Types, TypeCount{Type: name, Count: n})
	}
	sort.Slice(st.Types, func(i, j int) bool {
		if st.Types[i].Count != st.Types[j].Count {
			return st.Types[i].Count > st.Types[j].Count
		}
		return st.Types[i].Type < st.Types[j].Type
	})

	for _, n := range nl.Nets(nil) {
		if n.NumSources() == 0 && !n.IsGlobalInput() {
			st.Unrouted++
		}
		if n.NumDestinations() == 0 && !n.IsGlobalOutput() {
			st.Dangling++
		}
		if n.NumSources() > 1 {
			st.MultiDriven++
		}
		if n.NumDestinations() > st.MaxFanout {
			st.MaxFanout = n.NumDestinations()
			st.MaxFanoutAt = n.Name()
		}
	}
	return st
}

// Summary writes the overview, gate type and net tables of nl to w.
func Summary(nl *netlist.Netlist, w io.Writer) error {
	if nl == nil {
		return fmt.Errorf("report: %w: nil netlist", netlist.ErrInvalidArgument)
	}
	return Write(Collect(nl), w)
}

// Write renders st to w.
func Write(st Stats, w io.Writer) error {
	ew := &errWriter{w: w}

	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Design").SetAlign(tabulate.ML)
	tab.Header(st.Name).SetAlign(tabulate.MR)
	for _, kv := range []struct {
		k string
		v int
	}{
		{"Gates", st.Gates},
		{"Nets", st.Nets},
		{"Modules", st.Modules},
		{"Global inputs", st.GlobalInputs},
		{"Global outputs", st.GlobalOutputs},
		{"Ground gates", st.GndGates},
		{"Power gates", st.VccGates},
	} {
		row := tab.Row()
		row.Column(kv.k)
		row.Column(fmt.Sprint(kv.v))
	}
	tab.Print(ew)

	if len(st.Types) > 0 {
		tab = tabulate.New(tabulate.UnicodeLight)
		tab.Header("Gate type").SetAlign(tabulate.ML)
		tab.Header("Count").SetAlign(tabulate.MR)
		tab.Header("%").SetAlign(tabulate.MR)
		for _, tc := range st.Types {
			row := tab.Row()
			row.Column(tc.Type)
			row.Column(fmt.Sprint(tc.Count))
			row.Column(fmt.Sprintf("%.2f%%", float64(tc.Count)/float64(st.Gates)*100))
		}
		tab.Print(ew)
	}

	tab = tabulate.New(tabulate.UnicodeLight)
	tab.Header("Nets").SetAlign(tabulate.ML)
	tab.Header("Count").SetAlign(tabulate.MR)
	for _, kv := range []struct {
		k string
		v string
	}{
		{"Unrouted", fmt.Sprint(st.Unrouted)},
		{"Dangling", fmt.Sprint(st.Dangling)},
		{"Multi-driven", fmt.Sprint(st.MultiDriven)},
		{"Max fanout", maxFanout(st)},
	} {
		row := tab.Row()
		row.Column(kv.k)
		row.Column(kv.v)
	}
	tab.Print(ew)

	if ew.err != nil {
		return fmt.Errorf("report: %w: %w", netlist.ErrIO, ew.err)
	}
	return nil
}

// Library writes one row per gate type of lib in library order.
func Library(lib *gatelib.Library, w io.Writer) error {
	if lib == nil {
		return fmt.Errorf("report: %w: nil library", netlist.ErrInvalidArgument)
	}
	ew := &errWriter{w: w}
	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Gate type").SetAlign(tabulate.ML)
	tab.Header("Inputs").SetAlign(tabulate.ML)
	tab.Header("Outputs").SetAlign(tabulate.ML)
	tab.Header("Properties").SetAlign(tabulate.ML)
	for _, gt := range lib.All() {
		row := tab.Row()
		row.Column(gt.Name)
		row.Column(strings.Join(gt.InputPinNames(), " "))
		row.Column(strings.Join(gt.OutputPinNames(), " "))
		row.Column(gt.Properties.String())
	}
	tab.Print(ew)
	if ew.err != nil {
		return fmt.Errorf("report: %w: %w", netlist.ErrIO, ew.err)
	}
	return nil
}

func maxFanout(st Stats) string {
	if st.MaxFanoutAt == "" {
		return "0"
	}
	return fmt.Sprintf("%d (%s)", st.MaxFanout, st.MaxFanoutAt)
}

// errWriter keeps the first write error; tabulate does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}
