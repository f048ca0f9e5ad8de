package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newListCmd())
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available demo scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, sc := range scenarios {
				fmt.Printf("%-16s %s\n", sc.name, sc.desc)
			}
			return nil
		},
	}
}
