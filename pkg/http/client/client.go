// Package client builds outbound HTTP clients for service-to-service calls.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/viper"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const maxErrorBody = 4 << 10

// StatusError is returned for any non-2xx answer.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
}

func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

type Client struct {
	http    *http.Client
	baseURL string
}

func newHTTPClient(cfg Config, tp trace.TracerProvider) *http.Client {
	transport := newTransport(cfg)
	retry := &retryTransport{
		base:       transport,
		idle:       transport,
		maxRetries: min(*cfg.MaxIdleConnsPerHost, MaxRetriesCap),
	}
	return &http.Client{
		Timeout: *cfg.Timeout,
		Transport: otelhttp.NewTransport(retry,
			otelhttp.WithTracerProvider(tp),
			otelhttp.WithPropagators(otel.GetTextMapPropagator()),
		),
	}
}

func New(cfg Config, tp trace.TracerProvider) *Client {
	return &Client{
		http:    newHTTPClient(cfg, tp),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// Provide returns an fx constructor for the client configured under
// clients.<name>:
//
//	fx.Provide(fx.Private, client.Provide("catalog"))
func Provide(name string) func(*viper.Viper, trace.TracerProvider) (*Client, error) {
	return func(v *viper.Viper, tp trace.TracerProvider) (*Client, error) {
		cfg, err := loadConfig(v, name)
		if err != nil {
			return nil, err
		}
		return New(cfg, tp), nil
	}
}

// GetJSON decodes the body of GET baseURL+path into out.
func (c *Client) GetJSON(ctx context.Context, path string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", req.URL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Method: req.Method, URL: req.URL.String(), StatusCode: resp.StatusCode, Body: string(body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response of GET %s: %w", req.URL, err)
	}
	return nil
}
