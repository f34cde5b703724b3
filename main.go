//go:build !(js || wasm)

package main

import (
	"os"

	"github.com/cottand/adt/cmd"
	"github.com/spf13/cobra"
)

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "adt [subcommand]",
	Short:        "adt\n declare algebraic data types and pattern match on them from YAML scripts",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(cmd.CheckCmd)
	rootCmd.AddCommand(cmd.RunCmd)
}
