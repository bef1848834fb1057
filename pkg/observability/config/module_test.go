package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestProvideConfig(t *testing.T) {
	t.Run("missing section leaves everything disabled", func(t *testing.T) {
		// Arrange
		v := viper.New()

		// Act
		cfg, err := provideConfig(&configOptions{}, v, zap.NewNop())

		// Assert
		require.NoError(t, err)
		assert.False(t, cfg.Tracing.Enabled)
		assert.False(t, cfg.Metrics.Enabled)
		assert.Equal(t, DefaultMetricsInterval, cfg.Metrics.Interval)
		assert.Equal(t, DefaultSampleRatio, cfg.Tracing.SampleRatio)
	})

	t.Run("loads yaml section", func(t *testing.T) {
		// Arrange
		v := viper.New()
		v.SetConfigType("yaml")
		yaml := `
observability:
  otel-collector-endpoint: collector:4317
  tracing:
    enabled: true
    sample-ratio: 0.25
  metrics:
    enabled: true
    interval: 30s
`
		require.NoError(t, v.ReadConfig(strings.NewReader(yaml)))

		// Act
		cfg, err := provideConfig(&configOptions{}, v, zap.NewNop())

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "collector:4317", cfg.OtelCollectorEndpoint)
		assert.True(t, cfg.Tracing.Enabled)
		assert.InDelta(t, 0.25, cfg.Tracing.SampleRatio, 1e-9)
		assert.Equal(t, 30*time.Second, cfg.Metrics.Interval)
	})

	t.Run("disable options win over static config", func(t *testing.T) {
		// Arrange
		opts := &configOptions{
			config: &Config{
				OtelCollectorEndpoint: "collector:4317",
				Tracing:               TracingConfig{Enabled: true},
				Metrics:               MetricsConfig{Enabled: true},
			},
			disableTracing: true,
			disableMetrics: true,
		}

		// Act
		cfg, err := provideConfig(opts, viper.New(), zap.NewNop())

		// Assert
		require.NoError(t, err)
		assert.False(t, cfg.Tracing.Enabled)
		assert.False(t, cfg.Metrics.Enabled)
	})

	t.Run("metrics without endpoint", func(t *testing.T) {
		// Arrange
		opts := &configOptions{config: &Config{Metrics: MetricsConfig{Enabled: true}}}

		// Act
		_, err := provideConfig(opts, viper.New(), zap.NewNop())

		// Assert
		require.Error(t, err)
		assert.Contains(t, err.Error(), "otel-collector-endpoint")
	})

	t.Run("sample ratio out of range", func(t *testing.T) {
		// Arrange
		opts := &configOptions{config: &Config{Tracing: TracingConfig{Enabled: true, SampleRatio: 1.5}}}

		// Act
		_, err := provideConfig(opts, viper.New(), zap.NewNop())

		// Assert
		require.Error(t, err)
	})
}
