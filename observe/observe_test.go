package observe

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func TestConfig_Validate(t *testing.T) {
	valid := Config{ServiceName: "todogate"}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "minimal", mutate: func(*Config) {}},
		{name: "missing service", mutate: func(c *Config) { c.ServiceName = "" }, wantErr: ErrMissingServiceName},
		{name: "bad tracing exporter", mutate: func(c *Config) { c.Tracing.Exporter = "zipkin" }, wantErr: ErrInvalidTracingExporter},
		{name: "sample too high", mutate: func(c *Config) { c.Tracing.SamplePct = 1.5 }, wantErr: ErrInvalidSamplePct},
		{name: "sample negative", mutate: func(c *Config) { c.Tracing.SamplePct = -0.1 }, wantErr: ErrInvalidSamplePct},
		{name: "bad metrics exporter", mutate: func(c *Config) { c.Metrics.Exporter = "statsd" }, wantErr: ErrInvalidMetricsExporter},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "trace" }, wantErr: ErrInvalidLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewObserver_Disabled(t *testing.T) {
	var logs bytes.Buffer
	obs, err := NewObserver(context.Background(), Config{
		ServiceName: "todogate-test",
		Logging:     LoggingConfig{Level: "info", Writer: &logs},
	})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	defer obs.Shutdown(context.Background())

	if obs.Tracer() == nil || obs.Meter() == nil || obs.Logger() == nil {
		t.Fatal("nil telemetry primitive")
	}
	if obs.Registry() != nil {
		t.Error("Registry() non-nil with metrics disabled")
	}

	obs.Logger().Info(context.Background(), "hello")
	if !strings.Contains(logs.String(), `"msg":"hello"`) {
		t.Errorf("log output = %q", logs.String())
	}
}

func TestNewObserver_InvalidConfig(t *testing.T) {
	if _, err := NewObserver(context.Background(), Config{}); !errors.Is(err, ErrMissingServiceName) {
		t.Errorf("NewObserver() error = %v, want ErrMissingServiceName", err)
	}
}

func TestNewObserver_Prometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := NewObserver(context.Background(), Config{
		ServiceName: "todogate-test",
		Metrics:     MetricsConfig{Exporter: "prometheus", Registry: reg},
		Logging:     LoggingConfig{Writer: &bytes.Buffer{}},
	})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	defer obs.Shutdown(context.Background())

	if obs.Registry() != reg {
		t.Fatal("Registry() did not return the configured registry")
	}

	mw, err := MiddlewareFromObserver(obs, nil)
	if err != nil {
		t.Fatalf("MiddlewareFromObserver() error = %v", err)
	}
	_ = mw.Run(context.Background(), OpMeta{Name: "login", Component: "auth"}, func(context.Context) error { return nil })

	rec := httptest.NewRecorder()
	promhttp.HandlerFor(reg, promhttp.HandlerOpts{}).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if !strings.Contains(rec.Body.String(), "todogate_op_total") {
		t.Errorf("scrape output missing todogate_op_total:\n%s", rec.Body.String())
	}
}

func TestNewObserver_StdoutTracing(t *testing.T) {
	obs, err := NewObserver(context.Background(), Config{
		ServiceName: "todogate-test",
		Tracing:     TracingConfig{Exporter: "stdout", SamplePct: 1.0},
		Logging:     LoggingConfig{Writer: &bytes.Buffer{}},
	})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}

	_, span := obs.Tracer().Start(context.Background(), "probe")
	if !span.SpanContext().IsValid() {
		t.Error("sampled span has invalid context")
	}
	span.End()

	if err := obs.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}
