package consumer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
)

func newTestResultHandler(t *testing.T) (*resultHandler, *mockDLQHandler, *mockOffsetStorer) {
	t.Helper()
	dlq := &mockDLQHandler{}
	storer := &mockOffsetStorer{}
	h, err := newResultHandler("cart-cleanup", zapNop, dlq, storer, noop.NewMeterProvider())
	require.NoError(t, err)
	h.parkBackOff = func() backoff.BackOff { return backoff.NewConstantBackOff(time.Millisecond) }
	return h, dlq, storer
}

func TestResultHandler_Handle(t *testing.T) {
	t.Run("success stores offset", func(t *testing.T) {
		h, dlq, storer := newTestResultHandler(t)
		span := newMockSpan()

		h.handle(context.Background(), nil, newTestMessage("evt-1"), span)

		assert.Equal(t, codes.Ok, span.statusCode)
		assert.Equal(t, 1, storer.count())
		assert.Empty(t, dlq.messages)
	})

	t.Run("skip stores offset without DLQ", func(t *testing.T) {
		h, dlq, storer := newTestResultHandler(t)
		span := newMockSpan()

		h.handle(context.Background(), fmt.Errorf("%w: duplicate", ErrSkipMessage), newTestMessage("evt-1"), span)

		assert.Equal(t, codes.Ok, span.statusCode)
		assert.Equal(t, 1, storer.count())
		assert.Empty(t, dlq.messages)
	})

	t.Run("permanent error goes to DLQ", func(t *testing.T) {
		h, dlq, storer := newTestResultHandler(t)
		span := newMockSpan()
		procErr := fmt.Errorf("%w: bad json", ErrPermanent)

		h.handle(context.Background(), procErr, newTestMessage("evt-1"), span)

		assert.Equal(t, codes.Error, span.statusCode)
		require.Len(t, dlq.messages, 1)
		assert.ErrorIs(t, dlq.errs[0], ErrPermanent)
		assert.Equal(t, 1, storer.count())
	})

	t.Run("exhausted retries go to DLQ", func(t *testing.T) {
		h, dlq, storer := newTestResultHandler(t)
		span := newMockSpan()
		procErr := errors.New("max retry attempts reached: db down")

		h.handle(context.Background(), procErr, newTestMessage("evt-1"), span)

		assert.Equal(t, procErr, span.recordedError)
		require.Len(t, dlq.messages, 1)
		assert.Equal(t, 1, storer.count())
	})

	t.Run("shutdown leaves offset unstored", func(t *testing.T) {
		h, dlq, storer := newTestResultHandler(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		h.handle(ctx, context.Canceled, newTestMessage("evt-1"), newMockSpan())

		assert.Zero(t, storer.count())
		assert.Empty(t, dlq.messages)
	})

	t.Run("DLQ failure leaves offset unstored", func(t *testing.T) {
		h, _, storer := newTestResultHandler(t)
		h.dlqHandler = newDLQHandler(&mockProducer{err: errors.New("broker down")}, "cart-cleanup.dlq", passThroughTracer{}, zapNop)
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		span := newMockSpan()

		h.handle(ctx, errors.New("db down after retries"), newTestMessage("evt-1"), span)

		assert.Zero(t, storer.count())
		assert.Equal(t, codes.Error, span.statusCode)
	})

	t.Run("DLQ is retried until it accepts", func(t *testing.T) {
		h, dlq, storer := newTestResultHandler(t)
		dlq.failures = 2
		dlq.sendErr = errors.New("broker down")

		h.handle(context.Background(), fmt.Errorf("%w: bad json", ErrPermanent), newTestMessage("evt-1"), newMockSpan())

		assert.Equal(t, 3, dlq.attempts)
		require.Len(t, dlq.messages, 1)
		assert.Equal(t, 1, storer.count())
	})

	t.Run("missing DLQ never acknowledges a failed message", func(t *testing.T) {
		h, _, storer := newTestResultHandler(t)
		h.dlqHandler = &noopDLQHandler{log: zapNop}
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		h.handle(ctx, errors.New("db down after retries"), newTestMessage("evt-1"), newMockSpan())

		assert.Zero(t, storer.count())
	})

	t.Run("store failure is only logged", func(t *testing.T) {
		h, _, storer := newTestResultHandler(t)
		storer.err = errors.New("local: erroneous state")

		assert.NotPanics(t, func() {
			h.handle(context.Background(), nil, newTestMessage(""), newMockSpan())
		})
	})
}
