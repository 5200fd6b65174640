package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var symbolsCmd = &cobra.Command{
	Use:   "symbols FILE",
	Short: "assemble a source file, and print its symbol table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return symbols(cmd, args[0])
	},
}

func symbols(cmd *cobra.Command, path string) (err error) {
	assembler, _, _, err := assemble(path)
	if err != nil {
		return
	}

	out := cmd.OutOrStdout()
	for name, value := range assembler.Symbols() {
		fmt.Fprintf(out, "%-24s $%04X\n", name, value)
	}

	return
}
