package logger

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func viperFromYAML(t *testing.T, doc string) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(doc)))
	return v
}

func TestNewConfig(t *testing.T) {
	t.Run("defaults without section", func(t *testing.T) {
		cfg, err := newConfig(viper.New())

		require.NoError(t, err)
		assert.Equal(t, zapcore.InfoLevel, cfg.Level)
		assert.Equal(t, zapcore.ErrorLevel, cfg.StacktraceLevel)
		assert.False(t, cfg.Development)
	})

	t.Run("parses levels and paths", func(t *testing.T) {
		v := viperFromYAML(t, `
logger:
  level: debug
  development: true
  stacktrace-level: warn
  output-paths: [stdout]
`)
		cfg, err := newConfig(v)

		require.NoError(t, err)
		assert.Equal(t, zapcore.DebugLevel, cfg.Level)
		assert.Equal(t, zapcore.WarnLevel, cfg.StacktraceLevel)
		assert.True(t, cfg.Development)
		assert.Equal(t, []string{"stdout"}, cfg.OutputPaths)
	})

	t.Run("invalid level", func(t *testing.T) {
		v := viperFromYAML(t, "logger:\n  level: loud\n")

		_, err := newConfig(v)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestNewLogger(t *testing.T) {
	t.Run("rejects blank output path", func(t *testing.T) {
		_, err := newLogger(Config{OutputPaths: []string{"  "}})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "output-paths[0]")
	})

	t.Run("builds and replaces global", func(t *testing.T) {
		log, err := newLogger(Config{Level: zapcore.WarnLevel, StacktraceLevel: zapcore.ErrorLevel, OutputPaths: []string{"stderr"}})

		require.NoError(t, err)
		assert.Same(t, log, zap.L())
		assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
	})
}

func TestContext(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		l := zap.NewNop().Named("request")
		ctx := With(context.Background(), l)

		assert.Same(t, l, Get(ctx))
	})

	t.Run("falls back to global", func(t *testing.T) {
		assert.Same(t, zap.L(), Get(context.Background()))
		//nolint:staticcheck // nil context is part of the contract
		assert.Same(t, zap.L(), Get(nil))
	})
}

func TestLogThrottler(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	throttler := NewLogThrottler(zap.New(core), time.Hour)

	throttler.Warn("broker", "broker down")
	throttler.Warn("broker", "broker down")
	throttler.Warn("storage", "storage down")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
}

func TestNewLogThrottler_DefaultInterval(t *testing.T) {
	throttler := NewLogThrottler(zap.NewNop(), 0)

	assert.Equal(t, 5*time.Minute, throttler.interval)
}
