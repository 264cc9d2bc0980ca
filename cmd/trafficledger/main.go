package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"trafficledger/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "trafficledger",
		Short: "Digital ledger for police post logs",
		Long: `trafficledger serves a dashboard over a SQLite table of traffic stops:
headline metrics, a stop summary lookup and a catalog of analytical queries.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.MetricsCmd())
	rootCmd.AddCommand(cli.SummaryCmd())
	rootCmd.AddCommand(cli.QuestionsCmd())
	rootCmd.AddCommand(cli.QueryCmd())

	// Offline tools
	rootCmd.AddCommand(cli.LoadCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
