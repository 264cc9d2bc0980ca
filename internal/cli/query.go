package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"trafficledger/internal/catalog"
	"trafficledger/internal/logging"
)

// QuestionsCmd returns the questions command
func QuestionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "questions",
		Short: "List the analytical questions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for i, q := range catalog.Questions() {
				fmt.Fprintf(out, "%2d. %s\n", i+1, q.Label)
			}
			return nil
		},
	}
}

// QueryCmd returns the query command
func QueryCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "query NUMBER",
		Short: "Run one of the analytical questions",
		Long:  "Run question NUMBER, as listed by the questions command, and print the result table.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("question number must be an integer: %q", args[0])
			}
			question, ok := catalog.Lookup(number - 1)
			if !ok {
				return fmt.Errorf("%w: %d (1-%d)", catalog.ErrUnknownQuestion, number, catalog.Len())
			}

			cfg, store, err := openReadOnly(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			runner, err := catalog.NewRunner(store, catalog.WithLogger(logging.NewWithWriter(cmd.ErrOrStderr(), cfg.LogLevel)))
			if err != nil {
				return err
			}

			table, err := runner.Run(cmd.Context(), number-1)
			if err != nil {
				return fmt.Errorf("error running query: %w", err)
			}

			out := cmd.OutOrStdout()
			headerColor.Fprintf(out, "%d. %s\n\n", number, question.Label)
			if table.Empty() {
				infoColor.Fprintln(out, "No results found for the selected query.")
				return nil
			}
			return printTable(out, table)
		},
	}

	addDatabaseFlag(cmd, &dbPath)
	return cmd
}
