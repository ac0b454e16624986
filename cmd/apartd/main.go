/*
main.go - Application entry point

PURPOSE:
  Command-line front end for the tenancy engine. Opens the SQLite store,
  wires the components and runs one command.

COMMANDS:
  serve            Start the HTTP API (graceful shutdown on SIGINT/SIGTERM)
  migrate          Apply pending schema migrations and print the version
  moveouts         Move out tenants whose move-out date was reached
  export-payments  Write every payment row as CSV and log the report
  income-report    Print income over the last N days
  passwd           Set the operator password

CONFIGURATION:
  .env and APART_* environment variables (see config/config.go);
  --db and --port override them.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  ./apartd serve --db=./data/apartment.db
  ./apartd serve --db=":memory:" --port=3000
  ./apartd export-payments -o payments.csv
  ./apartd income-report --days 30

SEE ALSO:
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/warp/tenancy-engine/config"
	"github.com/warp/tenancy-engine/store/sqlite"
)

var (
	cfg    config.Config
	dbPath string
	port   int
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "apartd",
		Short:         "Apartment tenancy and billing engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			cfg = loaded
			if cmd.Flags().Changed("db") {
				cfg.DBPath = dbPath
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (default from APART_DB or apartment.db)")

	root.AddCommand(
		serveCmd(),
		migrateCmd(),
		moveoutsCmd(),
		exportPaymentsCmd(),
		incomeReportCmd(),
		passwdCmd(),
	)
	return root
}

// openStore opens the configured database. Migrations run on open.
func openStore() (*sqlite.Store, error) {
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return store, nil
}
