package client

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/samber/lo"
)

// ErrConnExpired is returned by a connection past its max lifetime. The retry
// transport redials on it without counting an attempt.
var ErrConnExpired = errors.New("connection expired")

type timedConn struct {
	net.Conn
	createdAt   time.Time
	maxLifetime time.Duration
}

func (c *timedConn) isExpired() bool {
	return time.Since(c.createdAt) > c.maxLifetime
}

func (c *timedConn) Read(b []byte) (int, error) {
	if c.isExpired() {
		_ = c.Close()
		return 0, ErrConnExpired
	}
	return c.Conn.Read(b)
}

func (c *timedConn) Write(b []byte) (int, error) {
	if c.isExpired() {
		_ = c.Close()
		return 0, ErrConnExpired
	}
	return c.Conn.Write(b)
}

func newTransport(cfg Config) *http.Transport {
	dialer := &net.Dialer{Timeout: 5 * time.Second}
	transport := &http.Transport{
		MaxIdleConnsPerHost: *cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     *cfg.IdleConnTimeout,
	}
	if lifetime := *cfg.MaxConnLifetime; lifetime > 0 {
		transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			return &timedConn{Conn: conn, createdAt: time.Now(), maxLifetime: lifetime}, nil
		}
	}
	return transport
}

// retryTransport retries transient connection failures immediately, for the
// case where pooled connections point at a pod that went away. When retries
// run out it drops idle connections and makes one last attempt.
type retryTransport struct {
	base       http.RoundTripper
	idle       interface{ CloseIdleConnections() }
	maxRetries int
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	for attempt := 0; attempt <= t.maxRetries; {
		resp, err := t.doRequest(req, attempt)
		if err == nil {
			return resp, nil
		}
		if errors.Is(err, ErrConnExpired) {
			continue
		}
		if !isRetryableError(err) {
			return nil, err
		}
		attempt++
	}

	if t.idle != nil {
		t.idle.CloseIdleConnections()
	}
	return t.doRequest(req, t.maxRetries+1)
}

func (t *retryTransport) doRequest(req *http.Request, attempt int) (*http.Response, error) {
	if attempt == 0 {
		return t.base.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		clone.Body = body
	}
	return t.base.RoundTrip(clone)
}

var retryableErrors = []error{
	syscall.ECONNREFUSED,
	syscall.ECONNRESET,
	syscall.ENETUNREACH,
	syscall.EPIPE,
	io.EOF,
	io.ErrUnexpectedEOF,
	net.ErrClosed,
}

func isRetryableError(err error) bool {
	return lo.SomeBy(retryableErrors, func(target error) bool { return errors.Is(err, target) })
}
