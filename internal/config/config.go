package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config captures runtime configuration for the dashboard core.
type Config struct {
	Store     StoreConfig
	Cache     CacheConfig
	Telemetry TelemetryConfig
	Service   ServiceConfig
}

type StoreConfig struct {
	Path       string
	SimLatency time.Duration
}

type CacheConfig struct {
	StaleAfter time.Duration
	MaxEntries int
}

type TelemetryConfig struct {
	LogLevel      string
	OTelEndpoint  string
	EnableTracing bool
	EnableMetrics bool
	SampleRate    float64
}

type ServiceConfig struct {
	Name        string
	Version     string
	Environment string
}

const (
	defaultStorePath      = "shopdash.db"
	defaultStaleAfter     = 5 * time.Minute
	defaultMaxEntries     = 256
	defaultServiceName    = "shopdash"
	defaultServiceVersion = "0.1.0"
	defaultEnvironment    = "development"
	defaultLogLevel       = "info"
	defaultOTelSampleRate = 1.0
)

// Load reads configuration from environment variables, applying defaults when
// needed.
func Load() (*Config, error) {
	storeCfg, err := loadStoreConfig()
	if err != nil {
		return nil, fmt.Errorf("loading store config: %w", err)
	}

	cacheCfg, err := loadCacheConfig()
	if err != nil {
		return nil, fmt.Errorf("loading cache config: %w", err)
	}

	telCfg, err := loadTelemetryConfig()
	if err != nil {
		return nil, fmt.Errorf("loading telemetry config: %w", err)
	}

	return &Config{
		Store:     storeCfg,
		Cache:     cacheCfg,
		Telemetry: telCfg,
		Service:   loadServiceConfig(),
	}, nil
}

func loadStoreConfig() (StoreConfig, error) {
	latency := time.Duration(0)
	if value, ok := os.LookupEnv("DASH_STORE_SIM_LATENCY"); ok {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return StoreConfig{}, fmt.Errorf("invalid DASH_STORE_SIM_LATENCY: %w", err)
		}
		latency = parsed
	}

	return StoreConfig{
		Path:       getEnvOrDefault("DASH_STORE_PATH", defaultStorePath),
		SimLatency: latency,
	}, nil
}

func loadCacheConfig() (CacheConfig, error) {
	staleAfter := defaultStaleAfter
	if value, ok := os.LookupEnv("DASH_CACHE_STALE_AFTER"); ok {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return CacheConfig{}, fmt.Errorf("invalid DASH_CACHE_STALE_AFTER: %w", err)
		}
		staleAfter = parsed
	}

	maxEntries := defaultMaxEntries
	if value, ok := os.LookupEnv("DASH_CACHE_MAX_ENTRIES"); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return CacheConfig{}, fmt.Errorf("invalid DASH_CACHE_MAX_ENTRIES: %w", err)
		}
		maxEntries = parsed
	}

	return CacheConfig{StaleAfter: staleAfter, MaxEntries: maxEntries}, nil
}

func loadTelemetryConfig() (TelemetryConfig, error) {
	sampleRate := defaultOTelSampleRate
	if value, ok := os.LookupEnv("OTEL_SAMPLE_RATE"); ok {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return TelemetryConfig{}, fmt.Errorf("invalid OTEL_SAMPLE_RATE: %w", err)
		}
		sampleRate = parsed
	}

	return TelemetryConfig{
		LogLevel:      getEnvOrDefault("LOG_LEVEL", defaultLogLevel),
		OTelEndpoint:  getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		EnableTracing: getBoolEnv("OTEL_ENABLE_TRACING", false),
		EnableMetrics: getBoolEnv("OTEL_ENABLE_METRICS", false),
		SampleRate:    sampleRate,
	}, nil
}

func loadServiceConfig() ServiceConfig {
	return ServiceConfig{
		Name:        getEnvOrDefault("DASH_SERVICE_NAME", defaultServiceName),
		Version:     getEnvOrDefault("SERVICE_VERSION", defaultServiceVersion),
		Environment: getEnvOrDefault("ENVIRONMENT", defaultEnvironment),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		return value == "true"
	}
	return defaultValue
}
