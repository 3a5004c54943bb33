package cmd

import (
	"fmt"
	"os"

	"query-sync/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "query-sync",
	Short: "Query Sync Service",
	Long: `Query Sync serves filterable resource listings whose entire state lives
in the request query string. It coordinates concurrent fetches through a
TTL cache with in-flight deduplication and can mirror its state to passive
peers through shared snapshots.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format and debug level give readable, timestamped CLI
		// error output.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
