package telemetry

import (
	"context"
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:   "valid config passes",
			mutate: func(*Config) {},
		},
		{
			name:    "missing service name",
			mutate:  func(c *Config) { c.ServiceName = "" },
			wantErr: ErrMissingServiceName,
		},
		{
			name:    "missing service version",
			mutate:  func(c *Config) { c.ServiceVersion = "" },
			wantErr: ErrMissingServiceVersion,
		},
		{
			name:    "negative sample rate",
			mutate:  func(c *Config) { c.SampleRate = -0.1 },
			wantErr: ErrInvalidSampleRate,
		},
		{
			name:    "sample rate above one",
			mutate:  func(c *Config) { c.SampleRate = 1.5 },
			wantErr: ErrInvalidSampleRate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()

			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected no error, got: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got: %v", tt.wantErr, err)
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected error to wrap ErrInvalidConfig, got: %v", err)
			}
		})
	}
}

func TestInitialize(t *testing.T) {
	t.Run("rejects invalid config", func(t *testing.T) {
		cfg := testConfig()
		cfg.ServiceName = ""

		_, err := Initialize(context.Background(), cfg)

		if !errors.Is(err, ErrMissingServiceName) {
			t.Errorf("expected ErrMissingServiceName, got: %v", err)
		}
	})

	t.Run("nothing enabled leaves both providers unset", func(t *testing.T) {
		tel := initTelemetry(t, false, false)

		if tel.TracerProvider() != nil {
			t.Error("expected nil tracer provider")
		}
		if tel.MeterProvider() != nil {
			t.Error("expected nil meter provider")
		}
	})

	t.Run("tracing enabled builds a tracer provider", func(t *testing.T) {
		tel := initTelemetry(t, true, false)

		if tel.TracerProvider() == nil {
			t.Error("expected tracer provider")
		}
		if tel.MeterProvider() != nil {
			t.Error("expected nil meter provider")
		}
	})

	t.Run("metrics enabled builds a meter provider", func(t *testing.T) {
		tel := initTelemetry(t, false, true)

		if tel.MeterProvider() == nil {
			t.Error("expected meter provider")
		}
	})

	t.Run("both signals can be enabled together", func(t *testing.T) {
		tel := initTelemetry(t, true, true)

		if tel.TracerProvider() == nil || tel.MeterProvider() == nil {
			t.Error("expected both providers")
		}
	})
}

func TestShutdown(t *testing.T) {
	t.Run("shutdown with nothing enabled succeeds", func(t *testing.T) {
		tel, err := Initialize(context.Background(), testConfig())
		if err != nil {
			t.Fatalf("initialize telemetry: %v", err)
		}

		if err := tel.Shutdown(context.Background()); err != nil {
			t.Errorf("expected no error, got: %v", err)
		}
	})

	t.Run("shutdown is safe to call twice", func(t *testing.T) {
		cfg := testConfig()
		cfg.EnableTracing = true

		tel, err := Initialize(context.Background(), cfg, WithTraceExporter(NewNoopTraceExporter()))
		if err != nil {
			t.Fatalf("initialize telemetry: %v", err)
		}

		if err := tel.Shutdown(context.Background()); err != nil {
			t.Errorf("expected no error, got: %v", err)
		}
		if err := tel.Shutdown(context.Background()); err != nil {
			t.Errorf("expected no error on second shutdown, got: %v", err)
		}
	})
}

func TestCreateSampler(t *testing.T) {
	t.Run("zero rate never samples", func(t *testing.T) {
		if got := createSampler(0).Description(); got != "AlwaysOffSampler" {
			t.Errorf("expected AlwaysOffSampler, got %s", got)
		}
	})

	t.Run("full rate always samples", func(t *testing.T) {
		if got := createSampler(1).Description(); got != "AlwaysOnSampler" {
			t.Errorf("expected AlwaysOnSampler, got %s", got)
		}
	})

	t.Run("fractional rate is parent-based", func(t *testing.T) {
		got := createSampler(0.25).Description()
		if len(got) == 0 || got == "AlwaysOnSampler" || got == "AlwaysOffSampler" {
			t.Errorf("expected a parent-based ratio sampler, got %s", got)
		}
	})
}
