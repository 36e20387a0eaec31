// Package synth realizes Boolean functions as netlists over a cell library.
//
// A Synthesizer returns a fresh netlist whose global input nets record the
// variable names of the functions as input ports and whose global output
// nets record the function names as output ports (see
// netlist.Net.AddInputPort). The replacement engine maps these ports back
// onto the nets of the design being rewritten.
//
// GateTree works in process and only uses inverters and two-input AND, OR
// and XOR gates. Yosys hands the functions to the Yosys/ABC tool chain and
// maps them onto every combinational cell of the target library.
package synth

import (
	"context"
	"fmt"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/boolfunc"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/gatelib"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/gatetree"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/netlist"
)

// Synthesizer realizes single-bit functions over lib. Keys of functions
// name the outputs.
type Synthesizer interface {
	Synthesize(ctx context.Context, functions map[string]boolfunc.Function, lib *gatelib.Library) (*netlist.Netlist, error)
}

// GateTree synthesizes with the in-process gate tree compiler.
type GateTree struct{}

// Synthesize implements Synthesizer.
func (GateTree) Synthesize(ctx context.Context, functions map[string]boolfunc.Function, lib *gatelib.Library) (*netlist.Netlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("synth: %w", err)
	}
	nl, err := gatetree.Synthesize(functions, lib)
	if err != nil {
		return nil, fmt.Errorf("synth: %w", err)
	}
	return nl, nil
}
