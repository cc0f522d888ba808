// Package cmd provides the command-line interface for the worklens CLI tool.
package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/tmazur/worklens/internal/config"
	"github.com/tmazur/worklens/internal/export"
	"github.com/tmazur/worklens/internal/logging"
	"github.com/tmazur/worklens/internal/metrics"
)

// ErrPartialFailure marks a run where at least one repository or project
// failed but a report was still produced.
var ErrPartialFailure = fmt.Errorf("one or more sources failed")

var rootCmd = &cobra.Command{
	Use:   "worklens",
	Short: "Worklens reports development activity from GitHub and Jira",
	Long: `Worklens is a CLI tool that pulls activity data (commits, pull requests,
issues, comments) from GitHub and Jira, computes per-user metrics over a
time window, and exports CSV or HTML reports.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			logging.SetupLogger(os.Stderr, logging.LevelDebug)
		}
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("format", "csv", "Report format: csv or html")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Report file path (stdout when empty)")
	rootCmd.PersistentFlags().String("since", "", "Window start date (2006-01-02)")
	rootCmd.PersistentFlags().String("until", "", "Window end date (2006-01-02)")
}

// dateLayout is the accepted format of the --since and --until flags.
const dateLayout = "2006-01-02"

// parseWindow reads the reporting window flags. Zero time values mean the
// corresponding side is unbounded. Malformed dates wrap config.ErrInvalid so
// main maps them to the configuration exit code.
func parseWindow(cmd *cobra.Command) (time.Time, time.Time, error) {
	var since, until time.Time

	if s, _ := cmd.Flags().GetString("since"); s != "" {
		parsed, err := time.Parse(dateLayout, s)
		if err != nil {
			return since, until, fmt.Errorf("%w: --since must be a date like 2006-01-02, got %q", config.ErrInvalid, s)
		}
		since = parsed
	}
	if u, _ := cmd.Flags().GetString("until"); u != "" {
		parsed, err := time.Parse(dateLayout, u)
		if err != nil {
			return since, until, fmt.Errorf("%w: --until must be a date like 2006-01-02, got %q", config.ErrInvalid, u)
		}
		// Include the whole end day
		until = parsed.Add(24*time.Hour - time.Second)
	}
	if !since.IsZero() && !until.IsZero() && until.Before(since) {
		return since, until, fmt.Errorf("%w: --until is before --since", config.ErrInvalid)
	}

	return since, until, nil
}

// writeReport renders the report in the requested format to the requested
// destination.
func writeReport(cmd *cobra.Command, report *metrics.Report) error {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	var render func(io.Writer, *metrics.Report) error
	switch format {
	case "csv":
		render = export.WriteCSV
	case "html":
		render = export.WriteHTML
	default:
		return fmt.Errorf("%w: --format must be csv or html, got %q", config.ErrInvalid, format)
	}

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating report file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := render(w, report); err != nil {
		return err
	}
	if output != "" {
		logging.Info("report written", "path", output, "format", format, "users", len(report.Rows))
	}
	return nil
}

// finishRun writes the report and converts accumulated failures into the
// run's final error. Partial success still produces a report.
func finishRun(cmd *cobra.Command, report *metrics.Report) error {
	if err := writeReport(cmd, report); err != nil {
		return err
	}

	if len(report.Failures) > 0 {
		for _, f := range report.Failures {
			logging.Error("source failed", "source", f.Source, "reason", f.Reason)
		}
		return fmt.Errorf("%w: %d of %d sources failed",
			ErrPartialFailure, len(report.Failures), len(report.Sources))
	}
	return nil
}
