package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/hdl"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/netlist"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/preprocess"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/replace"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/synth"
)

var (
	// Flags shared by the rewriting commands
	gateType    string
	synthesizer string
	synthConfig string

	// Flags for resynth command
	targetLibrary string
	asSubgraph    bool

	// Flags for muxopt command
	unifySelects bool
)

var decomposeCmd = &cobra.Command{
	Use:   "decompose <in.v> <out.v>",
	Short: "Decompose gates into inverter, AND, OR and XOR trees",
	Long: `Decompose replaces every combinational gate, or every gate of --type, by a
tree of the inverter and two-input AND, OR and XOR gates of the library
computing the same functions. Gates that already are such primitives are
left alone unless selected with --type.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		nl, err := loadNetlist(args[0])
		if err != nil {
			return err
		}
		typ, err := gateTypeFilter(nl, gateType)
		if err != nil {
			return err
		}
		opts := replace.Options{Logger: newLogger(cmd)}
		var count int
		if typ != nil {
			count, err = replace.DecomposeGatesOfType(nl, typ, opts)
		} else {
			count, err = replace.DecomposeGates(nl, nil, opts)
		}
		if err != nil {
			return err
		}
		return finish(cmd, nl, args, fmt.Sprintf("decomposed %d gates", count))
	},
}

var resynthCmd = &cobra.Command{
	Use:   "resynth <in.v> <out.v>",
	Short: "Resynthesize gates against a target library",
	Long: `Resynth replaces combinational gates by circuits synthesized over the
--target library. Every gate type the synthesizer uses must also exist in the
design library. Gates computing the same functions share one synthesis run.

With --subgraph all selected gates are resynthesized together as one circuit.

The yosys synthesizer runs the Yosys/ABC tool chain, configured by --config
(YAML with binary, search_paths, keep_temp, temp_root and script keys). The
gatetree synthesizer builds inverter, AND, OR and XOR trees in process.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		nl, err := loadNetlist(args[0])
		if err != nil {
			return err
		}
		typ, err := gateTypeFilter(nl, gateType)
		if err != nil {
			return err
		}
		target, err := loadLibrary(targetLibrary)
		if err != nil {
			return err
		}
		log := newLogger(cmd)
		s, err := newSynthesizer(synthesizer, synthConfig, log)
		if err != nil {
			return err
		}
		filter := replace.ResynthesizableGate
		if typ != nil {
			filter = func(g *netlist.Gate) bool { return g.Type() == typ }
		}
		opts := replace.Options{Logger: log}

		if asSubgraph {
			gates := nl.Gates(filter)
			if len(gates) == 0 {
				return fmt.Errorf("no gates to resynthesize")
			}
			res, err := replace.ResynthesizeSubgraph(cmd.Context(), nl, gates, s, target, opts)
			if err != nil {
				return err
			}
			return finish(cmd, nl, args, fmt.Sprintf("resynthesized %d gates into %d", res.Deleted, len(res.Gates)))
		}
		count, err := replace.ResynthesizeGates(cmd.Context(), nl, filter, s, target, opts)
		if err != nil {
			return err
		}
		return finish(cmd, nl, args, fmt.Sprintf("resynthesized %d gates", count))
	},
}

var muxoptCmd = &cobra.Command{
	Use:   "muxopt <in.v> <out.v>",
	Short: "Fold select-line inverters into multiplexers",
	Long: `Muxopt rewrites multiplexers whose select pins are driven by inverters.
By default only inverters that feed nothing but the select pins of one
multiplexer are folded and removed. With --unify every inverted select is
rewritten and shared inverters stay for their other readers.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		nl, err := loadNetlist(args[0])
		if err != nil {
			return err
		}
		log := newLogger(cmd)
		s, err := newSynthesizer(synthesizer, synthConfig, log)
		if err != nil {
			return err
		}
		opts := replace.Options{Logger: log}
		var count int
		if unifySelects {
			count, err = replace.UnifySelectSignals(cmd.Context(), nl, s, opts)
		} else {
			count, err = replace.ManualMuxOptimizations(cmd.Context(), nl, s, opts)
		}
		if err != nil {
			return err
		}
		return finish(cmd, nl, args, fmt.Sprintf("rewrote %d multiplexers", count))
	},
}

var cleanCmd = &cobra.Command{
	Use:   "clean <in.v> <out.v>",
	Short: "Remove buffers, inverter pairs and unconnected logic",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		nl, err := loadNetlist(args[0])
		if err != nil {
			return err
		}
		st, err := preprocess.Clean(nl, preprocess.Options{Logger: newLogger(cmd)})
		if err != nil {
			return err
		}
		return finish(cmd, nl, args, fmt.Sprintf("removed %d buffers, %d inverters, %d gates, %d nets",
			st.Buffers, st.Inverters, st.Gates, st.Nets))
	},
}

func init() {
	rootCmd.AddCommand(decomposeCmd)
	rootCmd.AddCommand(resynthCmd)
	rootCmd.AddCommand(muxoptCmd)
	rootCmd.AddCommand(cleanCmd)

	decomposeCmd.Flags().StringVarP(&gateType, "type", "t", "",
		"only decompose gates of this type")

	resynthCmd.Flags().StringVarP(&gateType, "type", "t", "",
		"only resynthesize gates of this type")
	resynthCmd.Flags().StringVar(&targetLibrary, "target", "",
		"target gate library file, or \"primitives\"")
	resynthCmd.Flags().BoolVar(&asSubgraph, "subgraph", false,
		"resynthesize the selected gates as one circuit")
	resynthCmd.MarkFlagRequired("target")

	for _, c := range []*cobra.Command{resynthCmd, muxoptCmd} {
		c.Flags().StringVarP(&synthesizer, "synthesizer", "s", "yosys",
			"synthesizer (yosys, gatetree)")
		c.Flags().StringVarP(&synthConfig, "config", "c", "",
			"synthesis configuration file (YAML)")
	}

	muxoptCmd.Flags().BoolVar(&unifySelects, "unify", false,
		"also rewrite multiplexers whose select inverters are shared")
}

func newSynthesizer(kind, configPath string, log *slog.Logger) (synth.Synthesizer, error) {
	switch kind {
	case "gatetree":
		return synth.GateTree{}, nil
	case "yosys":
		cfg := synth.DefaultConfig()
		if configPath != "" {
			var err error
			if cfg, err = synth.LoadConfig(configPath); err != nil {
				return nil, err
			}
		}
		return synth.NewYosys(cfg, log), nil
	default:
		return nil, fmt.Errorf("unknown synthesizer %q (want yosys or gatetree)", kind)
	}
}

// finish writes nl to the output path and reports what was done.
func finish(cmd *cobra.Command, nl *netlist.Netlist, args []string, summary string) error {
	if err := hdl.WriteFile(nl, args[1]); err != nil {
		return fmt.Errorf("failed to write netlist: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s (%d gates, %d nets)\n",
		summary, args[0], args[1], nl.NumGates(), nl.NumNets())
	return nil
}
