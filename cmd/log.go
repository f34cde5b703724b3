package cmd

import (
	"log/slog"

	"github.com/cottand/adt/internal/log"
	"github.com/spf13/cobra"
)

func logLevelFlag(c *cobra.Command) *int {
	return c.Flags().IntP("log-level", "l", int(slog.LevelWarn), "log level (-4 debug, 0 info, 4 warn, 8 error)")
}

func setLogLevel(level int) {
	log.SetLevel(slog.Level(level))
}
