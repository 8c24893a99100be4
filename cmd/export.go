package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/labelsheet/internal/config"
	"github.com/teemow/labelsheet/internal/export"
	"github.com/teemow/labelsheet/internal/gmail"
	"github.com/teemow/labelsheet/internal/google"
	"github.com/teemow/labelsheet/internal/instrumentation"
	"github.com/teemow/labelsheet/internal/logging"
	"github.com/teemow/labelsheet/internal/sheets"
)

type exportFlags struct {
	label         string
	spreadsheetID string
	rangeA1       string
	dryRun        bool
	reportPath    string
}

// exportEnv is what the export command takes from outside the process.
type exportEnv struct {
	auth       func(*config.Config, *slog.Logger) (google.HTTPClientProvider, error)
	gmailOpts  []gmail.Option
	sheetsOpts []sheets.Option
}

func defaultExportEnv() exportEnv {
	return exportEnv{
		auth: func(cfg *config.Config, logger *slog.Logger) (google.HTTPClientProvider, error) {
			return newAuthProvider(cfg, logger)
		},
	}
}

func newExportCmd() *cobra.Command {
	return newExportCmdWithEnv(defaultExportEnv())
}

func newExportCmdWithEnv(env exportEnv) *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Append every message under a Gmail label to a Google Sheet",
		Long: `Export every message under a Gmail label to a Google Sheet.

For each message the Subject and From headers and a plain-text body are
extracted. The body prefers a text/plain part, then a text/html part with the
markup stripped, then the snippet Gmail provides. Messages that cannot be
fetched are logged and skipped. All rows are appended with a single request
after every message has been processed, so a failed run writes nothing.

Running export twice appends the same messages twice.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			applyExportFlags(cmd, cfg, flags)
			if err := cfg.Validate(!flags.dryRun); err != nil {
				return err
			}
			logger, err := setupLogging(cfg, "export")
			if err != nil {
				return err
			}
			return runExport(cmd, cfg, flags, logger, env)
		},
	}

	cmd.Flags().StringVar(&flags.label, "label", config.DefaultLabel, "Exact, case-sensitive Gmail label name")
	cmd.Flags().StringVar(&flags.spreadsheetID, "spreadsheet-id", "", "Destination spreadsheet id")
	cmd.Flags().StringVar(&flags.rangeA1, "range", config.DefaultRange, "Destination range in A1 notation")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Extract messages without writing to the sheet")
	cmd.Flags().StringVar(&flags.reportPath, "report", "", "Write a JSON run report to this file, or '-' for stdout")

	return cmd
}

// applyExportFlags overrides cfg with the export flags the user set explicitly.
func applyExportFlags(cmd *cobra.Command, cfg *config.Config, flags exportFlags) {
	if cmd.Flags().Changed("label") {
		cfg.LabelName = flags.label
	}
	if cmd.Flags().Changed("spreadsheet-id") {
		cfg.SpreadsheetID = flags.spreadsheetID
	}
	if cmd.Flags().Changed("range") {
		cfg.Range = flags.rangeA1
	}
}

func runExport(cmd *cobra.Command, cfg *config.Config, flags exportFlags, logger *slog.Logger, env exportEnv) error {
	ctx := context.Background()

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	instr, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := instr.Shutdown(shutdownCtx); err != nil {
			logger.Warn("failed to shutdown instrumentation", logging.Err(err))
		}
	}()
	metrics := instr.Metrics()

	auth, err := env.auth(cfg, logger)
	if err != nil {
		return err
	}

	gmailOpts := append([]gmail.Option{gmail.WithMetrics(metrics)}, env.gmailOpts...)
	mail, err := gmail.NewClient(ctx, auth, gmailOpts...)
	if err != nil {
		return fmt.Errorf("failed to create Gmail client for account %s: %w", cfg.Account, err)
	}

	var appender export.RowAppender
	if !flags.dryRun {
		sheetsOpts := append([]sheets.Option{sheets.WithMetrics(metrics)}, env.sheetsOpts...)
		sheet, err := sheets.NewClient(ctx, auth, cfg.SpreadsheetID, cfg.Range, sheetsOpts...)
		if err != nil {
			return fmt.Errorf("failed to create Sheets client for account %s: %w", cfg.Account, err)
		}
		appender = sheet
	}

	exporter := export.New(mail, appender, cfg.LabelName,
		export.WithLogger(logging.NewSlogAdapter(logger)),
		export.WithMetrics(metrics),
		export.WithSpreadsheetID(cfg.SpreadsheetID),
		export.WithDryRun(flags.dryRun),
	)
	report, runErr := exporter.Run(ctx)

	if err := instr.Push(ctx); err != nil {
		logger.Warn("failed to push metrics", logging.Err(err))
	}

	if report != nil && flags.reportPath != "" {
		if err := writeReport(cmd.OutOrStdout(), flags.reportPath, report); err != nil {
			logger.Warn("failed to write report", logging.Err(err))
		}
	}

	if runErr != nil {
		return runErr
	}

	if report.DryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "Dry run: %d of %d messages under label %q extracted, nothing written.\n",
			report.Extracted, report.Listed, report.Label)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Appended %d rows from label %q (%d skipped).\n",
		report.Appended, report.Label, report.Skipped)
	return nil
}

// writeReport writes the JSON report to path, or to stdout when path is "-".
func writeReport(stdout io.Writer, path string, report *export.Report) error {
	data, err := report.JSON()
	if err != nil {
		return err
	}
	if path == "-" {
		_, err = fmt.Fprintln(stdout, data)
		return err
	}
	return os.WriteFile(path, []byte(data+"\n"), 0o644)
}
