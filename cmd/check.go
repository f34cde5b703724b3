package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cottand/adt/adterr"
	"github.com/cottand/adt/script"
	"github.com/spf13/cobra"
)

var CheckCmd = &cobra.Command{
	Use:          "check file.yaml",
	Short:        "Declare the types and values of a script, and validate its matches without running them",
	RunE:         runCheck,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
}

var checkLogLevel *int

func init() {
	checkLogLevel = logLevelFlag(CheckCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	setLogLevel(*checkLogLevel)

	s, err := script.LoadFile(args[0])
	if err != nil {
		return err
	}
	program, err := s.Compile(cmd.Context(), io.Discard)
	if err != nil {
		return describe(err)
	}
	if err := program.Validate(); err != nil {
		return describe(err)
	}
	return program.WriteDeclarations(cmd.OutOrStdout())
}

// describe lists every error collected in err with its code, if err holds any
func describe(err error) error {
	var errs *adterr.Errors
	if !errors.As(err, &errs) {
		var single adterr.Error
		if !errors.As(err, &single) {
			return err
		}
		errs = errs.With(single)
	}
	sb := &strings.Builder{}
	for _, e := range errs.Errors() {
		sb.WriteString("\n")
		sb.WriteString(adterr.FormatWithCode(e))
	}
	return fmt.Errorf("errors found in script: %w\n%s", err, sb.String())
}
