package cmd

import (
	"github.com/cottand/adt/script"
	"github.com/spf13/cobra"
)

var RunCmd = &cobra.Command{
	Use:          "run file.yaml",
	Short:        "Run every match of a script, printing the result of each",
	RunE:         runRun,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
}

var runLogLevel *int

func init() {
	runLogLevel = logLevelFlag(RunCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	setLogLevel(*runLogLevel)

	s, err := script.LoadFile(args[0])
	if err != nil {
		return err
	}
	if err := s.Run(cmd.Context(), cmd.OutOrStdout()); err != nil {
		return describe(err)
	}
	return nil
}
