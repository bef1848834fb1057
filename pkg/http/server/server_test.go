package server

import (
	"context"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestNewServer_AppliesConnectionLimits(t *testing.T) {
	conf := Config{Port: 8080}
	conf.applyDefaults()

	srv := newServer(zap.NewNop(), conf, okHandler())

	s, ok := srv.(*server)
	require.True(t, ok)
	assert.Equal(t, ":8080", s.httpSrv.Addr)
	assert.Equal(t, 10*time.Second, s.httpSrv.ReadHeaderTimeout)
	assert.Equal(t, 40*time.Second, s.httpSrv.WriteTimeout)
	assert.Equal(t, 1<<20, s.httpSrv.MaxHeaderBytes)
}

func TestServer_ServeAndShutdown(t *testing.T) {
	srv := newServer(zap.NewNop(), Config{}, okHandler()).(*server)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ready := make(chan struct{})
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.serve(ln, func() { close(ready) })
	}()

	select {
	case <-ready:
	case <-time.After(2 * time.Second):
		t.Fatal("onReady was not called")
	}

	resp, err := http.Get("http://" + ln.Addr().String() + "/anything")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_ListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	port := ln.Addr().(*net.TCPAddr).Port
	srv := newServer(zap.NewNop(), Config{Port: port}, okHandler())

	called := false
	err = srv.ServeWithReadyCallback(func() { called = true })

	assert.Error(t, err)
	assert.False(t, called)
}

func TestNewConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		// Arrange
		v := viper.New()
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(strings.NewReader("server:\n  port: 9090\n")))

		// Act
		cfg, err := newConfig(v)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 9090, cfg.Port)
		assert.True(t, cfg.Timeout.IsEnabled())
		assert.Equal(t, 30*time.Second, cfg.Timeout.RequestTimeout)
		assert.Equal(t, 40*time.Second, cfg.Connection.WriteTimeout)
		assert.Equal(t, 1000, cfg.RateLimit.RequestsPerSecond)
		assert.Equal(t, 500, cfg.Bulkhead.MaxConcurrent)
	})

	t.Run("disabled features keep zero values", func(t *testing.T) {
		// Arrange
		v := viper.New()
		v.SetConfigType("yaml")
		yaml := "server:\n  timeout:\n    enabled: false\n  rate-limit:\n    enabled: false\n  bulkhead:\n    enabled: false\n"
		require.NoError(t, v.ReadConfig(strings.NewReader(yaml)))

		// Act
		cfg, err := newConfig(v)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 8080, cfg.Port)
		assert.Zero(t, cfg.Timeout.RequestTimeout)
		assert.Zero(t, cfg.RateLimit.RequestsPerSecond)
		assert.Zero(t, cfg.Bulkhead.MaxConcurrent)
		assert.Equal(t, 40*time.Second, cfg.Connection.WriteTimeout)
	})

	t.Run("missing section", func(t *testing.T) {
		_, err := newConfig(viper.New())

		assert.Error(t, err)
	})

	t.Run("port out of range", func(t *testing.T) {
		v := viper.New()
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(strings.NewReader("server:\n  port: 70000\n")))

		_, err := newConfig(v)

		assert.Error(t, err)
	})
}
