package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/persistence"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
)

const maxTxAttempts = 3

type session interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) (any, error), opts ...options.Lister[options.TransactionOptions]) (any, error)
	EndSession(ctx context.Context)
}

type sessionStarter interface {
	startSession() (session, error)
}

type txManager struct {
	sessions sessionStarter
	conf     Config
	log      *zap.Logger
}

func newTxManager(m *mongo, conf Config, log *zap.Logger) persistence.TxManager {
	return &txManager{sessions: m, conf: conf, log: log}
}

func isTransientError(err error) bool {
	var serverErr mongodriver.ServerError
	if errors.As(err, &serverErr) {
		return serverErr.HasErrorLabel("TransientTransactionError")
	}
	return false
}

func (t *txManager) WithTransaction(ctx context.Context, fn func(txCtx context.Context) (any, error)) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, t.conf.TransactionTimeout)
	defer cancel()

	var lastErr error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		if attempt > 1 {
			t.log.Warn("retrying transaction", zap.Int("attempt", attempt), zap.Error(lastErr))
		}

		result, err := t.runOnce(ctx, fn)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !isTransientError(err) || ctx.Err() != nil {
			break
		}
	}

	return nil, fmt.Errorf("transaction failed: %w", lastErr)
}

func (t *txManager) runOnce(ctx context.Context, fn func(txCtx context.Context) (any, error)) (any, error) {
	sess, err := t.sessions.startSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	defer sess.EndSession(context.WithoutCancel(ctx))

	return sess.WithTransaction(ctx, fn)
}
