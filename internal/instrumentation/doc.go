// Package instrumentation wires OpenTelemetry metrics and tracing into an
// export run.
//
// Metrics:
//   - google_api_operations_total and google_api_operation_duration_seconds,
//     by service (gmail, sheets), operation and status
//   - messages_processed_total, by status (success, skipped)
//   - rows_appended_total
//   - export_runs_total and export_run_duration_seconds, by status
//
// The default prometheus exporter collects into a private registry. Since an
// export is a short-lived batch job, the series are pushed to a Prometheus
// Pushgateway at the end of the run instead of being scraped:
//
//	PROMETHEUS_PUSHGATEWAY_URL=http://pushgateway:9091 labelsheet export
//
// Tracing is off by default. Set TRACING_EXPORTER=otlp together with
// OTEL_EXPORTER_OTLP_ENDPOINT, or TRACING_EXPORTER=stdout while debugging.
// Every Gmail and Sheets call gets a client span named
// google.<service>.<operation>.
package instrumentation
