package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"query-sync/core/config"
	"query-sync/core/database"
	"query-sync/core/logger"
	"query-sync/feature/listing"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var queryTimeout time.Duration

// queryCmd resolves one listing query from the command line and prints the
// settled state as JSON. Useful for smoke-testing filters without a server.
var queryCmd = &cobra.Command{
	Use:   "query [query-string]",
	Short: "Resolve a listing query and print the settled state",
	Long: `Resolves a single listing query against the configured database and
prints the settled state as JSON. The argument is a raw query string, e.g.
"manufacturer=audi&sort=price&order=desc&hl_body_style=suv".`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()

		db, err := database.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		svc, err := listing.NewService(db, cfg.Engine.Policy(), nil, logg)
		if err != nil {
			return err
		}
		defer svc.Close()

		rawQuery := ""
		if len(args) > 0 {
			rawQuery = args[0]
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), queryTimeout)
		defer cancel()

		state, err := svc.Query(ctx, rawQuery)
		if err != nil {
			return fmt.Errorf("query did not settle: %w", err)
		}
		logg.Debug("Query settled",
			zap.Uint64("generation", state.Generation),
			zap.Int64("total", state.TotalCount),
		)

		out, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	queryCmd.Flags().DurationVar(&queryTimeout, "timeout", 30*time.Second, "how long to wait for the query to settle")
	RootCmd.AddCommand(queryCmd)
}
