package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	attrStatus    = "status"
	attrOperation = "operation"
	attrService   = "service"
)

// Metrics records the counters and histograms of an export run. The zero
// value is a valid no-op recorder.
type Metrics struct {
	googleAPIOperationsTotal   metric.Int64Counter
	googleAPIOperationDuration metric.Float64Histogram

	messagesProcessedTotal metric.Int64Counter
	rowsAppendedTotal      metric.Int64Counter

	exportRunsTotal   metric.Int64Counter
	exportRunDuration metric.Float64Histogram
}

// NewMetrics creates all instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.googleAPIOperationsTotal, err = meter.Int64Counter(
		"google_api_operations_total",
		metric.WithDescription("Total number of Google API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create google_api_operations_total counter: %w", err)
	}

	m.googleAPIOperationDuration, err = meter.Float64Histogram(
		"google_api_operation_duration_seconds",
		metric.WithDescription("Google API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create google_api_operation_duration_seconds histogram: %w", err)
	}

	m.messagesProcessedTotal, err = meter.Int64Counter(
		"messages_processed_total",
		metric.WithDescription("Messages handled by the export run, by outcome"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create messages_processed_total counter: %w", err)
	}

	m.rowsAppendedTotal, err = meter.Int64Counter(
		"rows_appended_total",
		metric.WithDescription("Rows appended to the destination spreadsheet"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rows_appended_total counter: %w", err)
	}

	m.exportRunsTotal, err = meter.Int64Counter(
		"export_runs_total",
		metric.WithDescription("Completed export runs, by status"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create export_runs_total counter: %w", err)
	}

	m.exportRunDuration, err = meter.Float64Histogram(
		"export_run_duration_seconds",
		metric.WithDescription("Wall time of an export run in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(1, 5, 15, 30, 60, 120, 300, 600, 1800),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create export_run_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordGoogleAPIOperation records one Google API call.
func (m *Metrics) RecordGoogleAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m == nil || m.googleAPIOperationsTotal == nil || m.googleAPIOperationDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	)
	m.googleAPIOperationsTotal.Add(ctx, 1, attrs)
	m.googleAPIOperationDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordMessageProcessed counts one message with status success or skipped.
func (m *Metrics) RecordMessageProcessed(ctx context.Context, status string) {
	if m == nil || m.messagesProcessedTotal == nil {
		return
	}
	m.messagesProcessedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrStatus, status)))
}

// RecordRowsAppended adds n appended rows.
func (m *Metrics) RecordRowsAppended(ctx context.Context, n int) {
	if m == nil || m.rowsAppendedTotal == nil || n <= 0 {
		return
	}
	m.rowsAppendedTotal.Add(ctx, int64(n))
}

// RecordExportRun records the outcome and duration of a whole run.
func (m *Metrics) RecordExportRun(ctx context.Context, status string, duration time.Duration) {
	if m == nil || m.exportRunsTotal == nil || m.exportRunDuration == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String(attrStatus, status))
	m.exportRunsTotal.Add(ctx, 1, attrs)
	m.exportRunDuration.Record(ctx, duration.Seconds(), attrs)
}
