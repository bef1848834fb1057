package config

import "time"

const (
	DefaultMetricsInterval = 10 * time.Second
	DefaultSampleRatio     = 1.0
	DefaultShutdownTimeout = 5 * time.Second

	// DefaultRuntimeStatsInterval bounds how often runtime metrics read MemStats.
	DefaultRuntimeStatsInterval = time.Second

	TracingComponentName = "tracing"
	MetricsComponentName = "metrics"
)

// Config is the "observability" section.
type Config struct {
	OtelCollectorEndpoint string        `mapstructure:"otel-collector-endpoint"`
	Tracing               TracingConfig `mapstructure:"tracing"`
	Metrics               MetricsConfig `mapstructure:"metrics"`
}

type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// SampleRatio is the share of root spans kept, between 0 and 1.
	SampleRatio float64 `mapstructure:"sample-ratio"`
}

type MetricsConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}
