package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func open(conf Config) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", conf.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	db.SetMaxOpenConns(conf.MaxOpenConns)
	db.SetMaxIdleConns(conf.MaxIdleConns)
	db.SetConnMaxLifetime(conf.ConnMaxLifetime)
	return db, nil
}

// ping retries until the database answers or ConnectTimeout elapses, which
// covers a database container that is still booting.
func ping(ctx context.Context, db *sqlx.DB, conf Config, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, conf.ConnectTimeout)
	defer cancel()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxInterval = 5 * time.Second

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		defer pingCancel()
		if err := db.PingContext(pingCtx); err != nil {
			log.Warn("postgres not reachable yet", zap.Int("attempt", attempt), zap.Error(err))
			return err
		}
		return nil
	}, backoff.WithContext(policy, ctx))
	if err != nil {
		return fmt.Errorf("failed to connect to postgres after %d attempts: %w", attempt, err)
	}

	log.Info("connected to postgres",
		zap.String("host", conf.Host),
		zap.String("database", conf.Database),
		zap.Int("max-open-conns", conf.MaxOpenConns),
	)
	return nil
}
