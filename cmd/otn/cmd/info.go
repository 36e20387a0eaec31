package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/report"
)

var infoCmd = &cobra.Command{
	Use:   "info <netlist.v>",
	Short: "Show gate and net statistics of a netlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		nl, err := loadNetlist(args[0])
		if err != nil {
			return err
		}
		return report.Summary(nl, cmd.OutOrStdout())
	},
}

var checkCmd = &cobra.Command{
	Use:   "check <netlist.v>",
	Short: "Validate the structural invariants of a netlist",
	Long: `Check loads a netlist and verifies that endpoints are registered on both
their gate and their net, that every gate belongs to one module, that name
indices are consistent and that ground and power gates are well formed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		nl, err := loadNetlist(args[0])
		if err != nil {
			return err
		}
		if err := nl.Validate(); err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: OK (%d gates, %d nets)\n", args[0], nl.NumGates(), nl.NumNets())
		return nil
	},
}

var libraryCmd = &cobra.Command{
	Use:   "library [library-file]",
	Short: "List the gate types of a library",
	Long: `Library lists the gate types of the given library file, of the --library
file, or of the built-in primitives.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := libraryPath
		if len(args) == 1 {
			path = args[0]
		}
		lib, err := loadLibrary(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Library %s: %d gate types\n", lib.Name, lib.Len())
		return report.Library(lib, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(libraryCmd)
}
