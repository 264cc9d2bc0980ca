package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"trafficledger/internal/report"
)

// MetricsCmd returns the metrics command
func MetricsCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Print total stops, arrests and warnings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := openReadOnly(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			stops, err := store.LoadStops(cmd.Context())
			if err != nil {
				return fmt.Errorf("load stops: %w", err)
			}

			out := cmd.OutOrStdout()
			metrics := report.ComputeMetrics(stops)
			if metrics.Empty() {
				infoColor.Fprintln(out, "No traffic stops recorded.")
				return nil
			}
			fmt.Fprintf(out, "Total Police Stops: %d\n", metrics.Stops)
			fmt.Fprintf(out, "Total Arrests:      %d\n", metrics.Arrests)
			fmt.Fprintf(out, "Total Warnings:     %d\n", metrics.Warnings)
			return nil
		},
	}

	addDatabaseFlag(cmd, &dbPath)
	return cmd
}

// SummaryCmd returns the summary command
func SummaryCmd() *cobra.Command {
	var (
		dbPath string
		input  report.LocateInput
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Describe the stop matching a driver and timestamp",
		Long: `Find the first stop that matches country, gender, age, date and time
exactly and print it as a sentence.`,
		Example: "  trafficledger summary --country IN --gender M --age 30 --date 2020-01-01 --time 00:01:00",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := openReadOnly(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			stops, err := store.LoadStops(cmd.Context())
			if err != nil {
				return fmt.Errorf("load stops: %w", err)
			}

			out := cmd.OutOrStdout()
			result, err := report.Locate(stops, input)
			var missing *report.MissingInputError
			switch {
			case errors.As(err, &missing):
				warnColor.Fprintln(out, "Please fill in all fields before submitting.")
				return err
			case err != nil:
				return fmt.Errorf("invalid input format: %w", err)
			case !result.Found:
				infoColor.Fprintln(out, report.NoMatchMessage)
				return nil
			}
			successColor.Fprintln(out, result.Summary)
			return nil
		},
	}

	addDatabaseFlag(cmd, &dbPath)
	cmd.Flags().StringVar(&input.Country, "country", "", "country name")
	cmd.Flags().StringVar(&input.Gender, "gender", "", "driver gender (M or F)")
	cmd.Flags().StringVar(&input.Age, "age", "", "driver age")
	cmd.Flags().StringVar(&input.Date, "date", "", "stop date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&input.Time, "time", "", "stop time (HH:MM:SS)")
	return cmd
}
