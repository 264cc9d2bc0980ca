package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"trafficledger/internal/ingest"
	"trafficledger/internal/logging"
	"trafficledger/internal/storage"
)

// LoadCmd returns the load command
func LoadCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "load FILE.csv",
		Short: "Import a CSV export of traffic stops",
		Long: `Create the police table if it does not exist and append every record of
the CSV file. The header must name the columns; a timestamp column or
stop_date and stop_time columns are required.

Run this while the dashboard is stopped; serve only reads the database.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(dbPath)
			if err != nil {
				return err
			}

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open csv: %w", err)
			}
			defer file.Close()

			store, err := storage.Open(cfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer store.Close()

			loader := &ingest.Loader{
				Store:  store,
				Logger: logging.NewWithWriter(cmd.ErrOrStderr(), cfg.LogLevel),
			}
			n, err := loader.LoadCSV(cmd.Context(), file)
			if err != nil {
				return fmt.Errorf("load %s after %d stops: %w", args[0], n, err)
			}

			total, err := store.CountStops(cmd.Context())
			if err != nil {
				return err
			}
			successColor.Fprintf(cmd.OutOrStdout(), "Loaded %d stops into %s (%d total)\n", n, cfg.DatabasePath, total)
			return nil
		},
	}

	addDatabaseFlag(cmd, &dbPath)
	return cmd
}
