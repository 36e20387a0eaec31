package synth

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/gatelib"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/netlist"
)

var genlibName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Mappable reports whether gt can be described to ABC: a combinational,
// non-LUT gate type with one output that has a function, inputs and outputs
// only, and plain identifier names.
func Mappable(gt *gatelib.GateType) bool {
	if !gt.HasProperty(gatelib.Combinational) || gt.HasProperty(gatelib.Sequential) {
		return false
	}
	if _, ok := gt.Behavior.(gatelib.CombinationalBehavior); !ok {
		return false
	}
	outs := gt.OutputPins()
	if len(outs) != 1 || gt.Function(outs[0].Name).IsEmpty() {
		return false
	}
	if !genlibName.MatchString(gt.Name) {
		return false
	}
	for _, p := range gt.Pins {
		if p.Direction != gatelib.DirectionInput && p.Direction != gatelib.DirectionOutput {
			return false
		}
		if !genlibName.MatchString(p.Name) {
			return false
		}
	}
	return true
}

// WriteGenlib writes the mappable gate types of lib in SIS genlib format
// and returns how many were written. Cell area is the input count.
func WriteGenlib(w io.Writer, lib *gatelib.Library) (int, error) {
	if lib == nil {
		return 0, fmt.Errorf("synth: %w: nil library", netlist.ErrInvalidArgument)
	}
	var sb strings.Builder
	count := 0
	for _, gt := range lib.All() {
		if !Mappable(gt) {
			continue
		}
		out := gt.OutputPins()[0].Name
		fmt.Fprintf(&sb, "GATE %s %d %s=%s;\n", gt.Name, len(gt.InputPins()), out, gt.Function(out).Genlib())
		if len(gt.InputPins()) > 0 {
			sb.WriteString("  PIN * UNKNOWN 1 999 1 0 1 0\n")
		}
		count++
	}
	if count == 0 {
		return 0, fmt.Errorf("synth: %w: library %s has no mappable gate types", netlist.ErrLookup, lib.Name)
	}
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return 0, fmt.Errorf("synth: %w: %w", netlist.ErrIO, err)
	}
	return count, nil
}
