package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/gatelib"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/hdl"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/logging"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/netlist"
)

var (
	// Global flags
	verbose     bool
	libraryPath string
)

var rootCmd = &cobra.Command{
	Use:   "otn",
	Short: "OpenTraceNetlist - gate-level netlist rewriting",
	Long: `OpenTraceNetlist (otn) reads structural Verilog netlists over a gate
library and rewrites them: decomposing complex gates into inverter, AND, OR
and XOR trees, resynthesizing gates through Yosys/ABC, folding inverters into
multiplexers and removing redundant logic.

The gate library defaults to the built-in primitives (GND, VCC, BUF, INV,
two-input logic, MUX2, LUT4, DFF). Use --library to load an s-expression
library file instead.

Examples:
  otn info design.v                                   # Gate and net statistics
  otn check design.v                                  # Validate netlist invariants
  otn decompose design.v flat.v --type LUT4           # Decompose all LUT4 gates
  otn resynth design.v out.v --target cells.lib       # Resynthesize with Yosys
  otn muxopt design.v out.v --synthesizer gatetree    # Fold select inverters
  otn clean design.v out.v                            # Remove buffers and dead logic`,
	Version:      "0.1.0",
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&libraryPath, "library", "l", "",
		"gate library file (default: built-in primitives)")
}

// newLogger logs warnings to stderr, or everything with --verbose.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := logging.LevelWarn
	if verbose {
		level = logging.LevelDebug
	}
	return logging.New(logging.Config{Level: level, Output: cmd.ErrOrStderr()})
}

// loadLibrary resolves a library argument: empty or "primitives" selects
// the built-in primitives, anything else is a library file.
func loadLibrary(path string) (*gatelib.Library, error) {
	if path == "" || path == "primitives" {
		return gatelib.Primitives(), nil
	}
	lib, err := gatelib.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load gate library: %w", err)
	}
	return lib, nil
}

// loadNetlist reads a Verilog netlist over the --library gate library.
func loadNetlist(path string) (*netlist.Netlist, error) {
	lib, err := loadLibrary(libraryPath)
	if err != nil {
		return nil, err
	}
	nl, err := hdl.LoadNetlist(path, lib)
	if err != nil {
		return nil, fmt.Errorf("failed to load netlist: %w", err)
	}
	return nl, nil
}

// gateTypeFilter returns the gate type named by a --type flag, or nil when
// the flag is empty.
func gateTypeFilter(nl *netlist.Netlist, name string) (*gatelib.GateType, error) {
	if name == "" {
		return nil, nil
	}
	typ := nl.Library().GateTypeByName(name)
	if typ == nil {
		return nil, fmt.Errorf("gate type %s not found in library %s", name, nl.Library().Name)
	}
	return typ, nil
}
