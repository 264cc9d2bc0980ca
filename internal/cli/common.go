package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"trafficledger/internal/config"
	"trafficledger/internal/storage"
	"trafficledger/internal/web"
)

// EnvFile is the optional dotenv file every command reads before the
// process environment.
var EnvFile = ".env"

var (
	successColor = color.New(color.FgGreen)
	infoColor    = color.New(color.FgCyan)
	warnColor    = color.New(color.FgYellow)
	headerColor  = color.New(color.Bold)
)

func addDatabaseFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVar(target, "db", "", "SQLite database path (overrides DATABASE_PATH)")
}

func loadConfig(dbPath string) (config.Config, error) {
	cfg, err := config.Load(EnvFile)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if dbPath != "" {
		cfg.DatabasePath = dbPath
	}
	return cfg, nil
}

// openReadOnly opens the configured database for the reporting commands,
// which never write.
func openReadOnly(dbPath string) (config.Config, *storage.Store, error) {
	cfg, err := loadConfig(dbPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	store, err := storage.OpenReadOnly(cfg.DatabasePath)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("open db: %w", err)
	}
	return cfg, store, nil
}

func printTable(out io.Writer, table *storage.Table) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for i, column := range table.Columns {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		headerColor.Fprint(tw, column)
	}
	fmt.Fprintln(tw)
	for _, row := range table.Rows {
		for i, value := range row {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, web.FormatValue(value))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
