// evalrepl is a small driver over the evaluator core's host surface
// (host.DoArrayAt, host.ApplyOnly): it builds a handful of demo
// programs directly out of cell/array/fn constructors — there is no
// text reader in this module — and runs them through an Interpreter,
// printing the result. Grounded on the teacher's cmd/hivectl: a cobra
// root command with persistent output flags and small per-command
// files, rather than a hand-rolled flag.FlagSet dispatcher.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose bool
	jsonOut bool
)

var rootCmd = &cobra.Command{
	Use:   "evalrepl",
	Short: "Run demo programs through the evaluator core",
	Long: `evalrepl drives the evaluator core's external API (host.DoArrayAt,
host.ApplyOnly) against a small set of hand-built demo programs. There is
no text reader in this module, so programs are assembled directly from
cell/array constructors rather than parsed from source.`,
	Version: "0.1.0",
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print the scenario description before running it")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output the result as JSON instead of a cell dump")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
