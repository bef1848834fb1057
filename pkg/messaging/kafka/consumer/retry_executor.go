package consumer

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

type retryExecutor struct {
	maxAttempts       int
	initialBackoff    time.Duration
	maxBackoff        time.Duration
	processingTimeout time.Duration
	log               *zap.Logger
}

func newRetryExecutor(maxAttempts int, initialBackoff, maxBackoff, processingTimeout time.Duration, log *zap.Logger) *retryExecutor {
	return &retryExecutor{
		maxAttempts:       maxAttempts,
		initialBackoff:    initialBackoff,
		maxBackoff:        maxBackoff,
		processingTimeout: processingTimeout,
		log:               log,
	}
}

// Execute runs fn until it succeeds, returns a skip or permanent error, or
// the attempts are used up. Each attempt gets its own processing timeout.
func (r *retryExecutor) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.initialBackoff
	policy.MaxInterval = r.maxBackoff
	policy.MaxElapsedTime = 0

	attempt := 0
	operation := func() error {
		attempt++
		err := r.attempt(ctx, fn)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrSkipMessage) || errors.Is(err, ErrPermanent) {
			return backoff.Permanent(err)
		}
		r.logError(err, attempt)
		return err
	}

	retries := uint64(max(r.maxAttempts-1, 0))
	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, retries), ctx))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrSkipMessage), errors.Is(err, ErrPermanent):
		return err
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		return fmt.Errorf("max retry attempts reached: %w", err)
	}
}

func (r *retryExecutor) attempt(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if r.processingTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.processingTimeout)
		defer cancel()
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %w", ErrPermanent, &PanicError{Panic: rec, Stack: debug.Stack()})
		}
	}()

	return fn(ctx)
}

func (r *retryExecutor) logError(err error, attempt int) {
	r.log.Warn("failed to process message",
		zap.Int("attempt", attempt),
		zap.Int("max_attempts", r.maxAttempts),
		zap.Error(err))
}
