package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/googleapi"

	"github.com/teemow/labelsheet/internal/gmail"
	"github.com/teemow/labelsheet/internal/instrumentation"
	"github.com/teemow/labelsheet/internal/logging"
)

// MailSource is the read side of a run.
type MailSource interface {
	ResolveLabel(ctx context.Context, name string) (string, error)
	ListMessageIDs(ctx context.Context, labelID string) ([]string, error)
	FetchFields(ctx context.Context, id string) (gmail.Fields, error)
}

// RowAppender is the write side of a run.
type RowAppender interface {
	AppendRows(ctx context.Context, rows [][]string) error
}

// Row is one output row: subject, sender, body.
type Row struct {
	Subject string
	From    string
	Body    string
}

// Cells returns the row as spreadsheet cells in column order.
func (r Row) Cells() []string {
	return []string{r.Subject, r.From, r.Body}
}

// Exporter copies the messages of one label into a spreadsheet.
type Exporter struct {
	source        MailSource
	appender      RowAppender
	label         string
	spreadsheetID string
	logger        logging.Logger
	metrics       *instrumentation.Metrics
	dryRun        bool
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logging.Logger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics records run metrics on m.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(e *Exporter) { e.metrics = m }
}

// WithSpreadsheetID names the destination spreadsheet in log lines.
func WithSpreadsheetID(id string) Option {
	return func(e *Exporter) { e.spreadsheetID = id }
}

// WithDryRun skips the final append.
func WithDryRun(dryRun bool) Option {
	return func(e *Exporter) { e.dryRun = dryRun }
}

// New creates an Exporter for label. appender may be nil for a dry run.
func New(source MailSource, appender RowAppender, label string, opts ...Option) *Exporter {
	e := &Exporter{
		source:   source,
		appender: appender,
		label:    label,
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run performs one pass. The returned report is non-nil whenever listing
// succeeded, even if the append then fails.
func (e *Exporter) Run(ctx context.Context) (report *Report, err error) {
	start := time.Now()
	ctx, span := instrumentation.StartSpan(ctx, "export.run", attribute.String(instrumentation.SpanAttrLabel, e.label))
	defer func() {
		status := instrumentation.StatusSuccess
		if err != nil {
			status = instrumentation.StatusError
		}
		e.metrics.RecordExportRun(ctx, status, time.Since(start))
		instrumentation.EndSpan(span, err)
	}()

	if !e.dryRun && e.appender == nil {
		return nil, errors.New("no row appender configured")
	}

	labelID, err := e.source.ResolveLabel(ctx, e.label)
	if err != nil {
		return nil, err
	}

	ids, err := e.source.ListMessageIDs(ctx, labelID)
	if err != nil {
		return nil, err
	}
	e.logger.Info("found messages under label", logging.Label(e.label), logging.Count(len(ids)))

	rows := make([]Row, 0, len(ids))
	results := processEach(ids, func(id string) error {
		fields, err := e.source.FetchFields(ctx, id)
		if err != nil {
			e.metrics.RecordMessageProcessed(ctx, instrumentation.StatusSkipped)
			e.logger.Warn("skipping message",
				logging.MessageID(id),
				logging.Status(logging.StatusSkipped),
				logging.Err(err),
				apiStatus(err),
			)
			return err
		}
		e.metrics.RecordMessageProcessed(ctx, instrumentation.StatusSuccess)
		e.logger.Debug("extracted message", logging.MessageID(id), logging.UserHash(fields.From))
		rows = append(rows, Row{Subject: fields.Subject, From: fields.From, Body: fields.Body})
		return nil
	})

	report = &Report{
		Label:     e.label,
		LabelID:   labelID,
		Listed:    len(ids),
		Extracted: len(rows),
		Skipped:   len(ids) - len(rows),
		DryRun:    e.dryRun,
		Results:   results,
	}

	if e.dryRun {
		e.logger.Info("dry run, not appending rows", logging.Count(len(rows)))
		return report, nil
	}

	if err := e.appender.AppendRows(ctx, toCells(rows)); err != nil {
		e.logger.Error("append failed",
			logging.Spreadsheet(e.spreadsheetID),
			logging.Count(len(rows)),
			logging.Status(logging.StatusError),
			logging.Err(err),
			apiStatus(err),
		)
		return report, fmt.Errorf("append failed: %w", err)
	}
	report.Appended = len(rows)

	e.logger.Info("export finished",
		logging.Label(e.label),
		logging.Spreadsheet(e.spreadsheetID),
		logging.Status(logging.StatusSuccess),
		slog.Duration(logging.KeyDuration, time.Since(start)),
		slog.Int("listed", report.Listed),
		slog.Int("appended", report.Appended),
		slog.Int("skipped", report.Skipped),
		slog.String("trace_id", instrumentation.GetTraceID(ctx)),
	)
	return report, nil
}

func toCells(rows []Row) [][]string {
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = r.Cells()
	}
	return cells
}

// apiStatus adds the HTTP status of a Google API error to a log line.
func apiStatus(err error) slog.Attr {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return slog.Int("http_status", apiErr.Code)
	}
	return slog.Group("")
}
