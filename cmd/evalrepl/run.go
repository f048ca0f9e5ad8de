package main

import (
	"fmt"
	"os"

	"github.com/renfield/evalcore/cell"
	"github.com/renfield/evalcore/diag"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newRunCmd())
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <scenario>",
		Short: "Run one demo scenario and print its result",
		Long: `Run builds the named demo program, drives it through an Interpreter via
host.DoArrayAt (or host.ApplyOnly for apply-fully), and prints the
resulting cell.

Example:
  evalrepl run prefix-call
  evalrepl run catch-throw --verbose`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(args[0])
		},
	}
}

func runScenario(name string) error {
	sc, ok := findScenario(name)
	if !ok {
		return fmt.Errorf("evalrepl: unknown scenario %q (see `evalrepl list`)", name)
	}
	printVerbose("%s: %s\n", sc.name, sc.desc)

	out, err := sc.run()
	if err != nil {
		return fmt.Errorf("evalrepl: %s: %w", sc.name, err)
	}

	if jsonOut {
		return printJSON(resultToJSON(sc.name, out))
	}
	diag.DumpCell(os.Stdout, sc.name, out)
	return nil
}

func resultToJSON(name string, out cell.Cell) map[string]interface{} {
	result := map[string]interface{}{
		"scenario": name,
		"kind":     int(cell.KindOf(out)),
	}
	if cell.KindOf(out) == cell.KindInteger {
		result["value"] = cell.Integer(out)
	}
	return result
}
