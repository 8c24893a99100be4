package instrumentation

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	for _, key := range []string{
		"OTEL_SERVICE_NAME", "INSTRUMENTATION_ENABLED", "METRICS_EXPORTER",
		"TRACING_EXPORTER", "OTEL_TRACES_SAMPLER_ARG", "PROMETHEUS_PUSHGATEWAY_URL",
		"PROMETHEUS_PUSH_JOB", "PROMETHEUS_PUSH_TIMEOUT",
	} {
		t.Setenv(key, "")
	}

	config := DefaultConfig()

	if config.ServiceName != "labelsheet" {
		t.Errorf("expected ServiceName 'labelsheet', got %q", config.ServiceName)
	}
	if !config.Enabled {
		t.Error("expected Enabled to be true by default")
	}
	if config.MetricsExporter != ExporterPrometheus {
		t.Errorf("expected MetricsExporter 'prometheus', got %q", config.MetricsExporter)
	}
	if config.TracingExporter != ExporterNone {
		t.Errorf("expected TracingExporter 'none', got %q", config.TracingExporter)
	}
	if config.PushgatewayURL != "" {
		t.Errorf("expected no pushgateway, got %q", config.PushgatewayURL)
	}
	if config.PushJob != "labelsheet" {
		t.Errorf("expected PushJob 'labelsheet', got %q", config.PushJob)
	}
	if config.PushTimeout != DefaultPushTimeout {
		t.Errorf("expected PushTimeout %s, got %s", DefaultPushTimeout, config.PushTimeout)
	}
}

func TestDefaultConfig_FromEnv(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "test-service")
	t.Setenv("INSTRUMENTATION_ENABLED", "false")
	t.Setenv("METRICS_EXPORTER", "stdout")
	t.Setenv("TRACING_EXPORTER", "stdout")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.5")
	t.Setenv("PROMETHEUS_PUSHGATEWAY_URL", "http://pushgateway:9091")
	t.Setenv("PROMETHEUS_PUSH_JOB", "internships")
	t.Setenv("PROMETHEUS_PUSH_TIMEOUT", "3s")

	config := DefaultConfig()

	if config.ServiceName != "test-service" {
		t.Errorf("expected ServiceName 'test-service', got %q", config.ServiceName)
	}
	if config.Enabled {
		t.Error("expected Enabled to be false")
	}
	if config.MetricsExporter != "stdout" {
		t.Errorf("expected MetricsExporter 'stdout', got %q", config.MetricsExporter)
	}
	if config.TraceSamplingRate != 0.5 {
		t.Errorf("expected TraceSamplingRate 0.5, got %f", config.TraceSamplingRate)
	}
	if config.PushgatewayURL != "http://pushgateway:9091" {
		t.Errorf("unexpected PushgatewayURL %q", config.PushgatewayURL)
	}
	if config.PushJob != "internships" {
		t.Errorf("unexpected PushJob %q", config.PushJob)
	}
	if config.PushTimeout != 3*time.Second {
		t.Errorf("unexpected PushTimeout %s", config.PushTimeout)
	}
}

func TestDefaultConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("INSTRUMENTATION_ENABLED", "maybe")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "lots")
	t.Setenv("PROMETHEUS_PUSH_TIMEOUT", "soon")

	config := DefaultConfig()

	if !config.Enabled {
		t.Error("expected invalid bool to fall back to true")
	}
	if config.TraceSamplingRate != 1.0 {
		t.Errorf("expected invalid float to fall back to 1.0, got %f", config.TraceSamplingRate)
	}
	if config.PushTimeout != DefaultPushTimeout {
		t.Errorf("expected invalid duration to fall back, got %s", config.PushTimeout)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:   "defaults",
			config: Config{MetricsExporter: ExporterPrometheus, TracingExporter: ExporterNone, TraceSamplingRate: 1},
		},
		{
			name:    "sampling rate above one",
			config:  Config{TraceSamplingRate: 1.5},
			wantErr: true,
		},
		{
			name:    "sampling rate negative",
			config:  Config{TraceSamplingRate: -0.1},
			wantErr: true,
		},
		{
			name:    "unknown metrics exporter",
			config:  Config{MetricsExporter: "statsd"},
			wantErr: true,
		},
		{
			name:    "unknown tracing exporter",
			config:  Config{TracingExporter: "jaeger"},
			wantErr: true,
		},
		{
			name:    "otlp tracing without endpoint",
			config:  Config{TracingExporter: ExporterOTLP},
			wantErr: true,
		},
		{
			name:    "otlp metrics without endpoint",
			config:  Config{MetricsExporter: ExporterOTLP},
			wantErr: true,
		},
		{
			name:   "otlp with endpoint",
			config: Config{MetricsExporter: ExporterOTLP, TracingExporter: ExporterOTLP, OTLPEndpoint: "localhost:4318"},
		},
		{
			name:    "pushgateway with stdout metrics",
			config:  Config{MetricsExporter: ExporterStdout, PushgatewayURL: "http://pg:9091"},
			wantErr: true,
		},
		{
			name:   "pushgateway with prometheus",
			config: Config{MetricsExporter: ExporterPrometheus, PushgatewayURL: "http://pg:9091"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
