// Package inbox remembers which events a consumer has already handled so that
// redelivered messages can be skipped.
package inbox

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Inbox interface {
	// Seen reports whether consumer already handled eventID.
	Seen(ctx context.Context, consumer, eventID string) (bool, error)
	// Mark records eventID as handled by consumer.
	Mark(ctx context.Context, consumer, eventID string) error
}

type store interface {
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

type redisInbox struct {
	store store
	ttl   time.Duration
	log   *zap.Logger
}

func newRedisInbox(s store, ttl time.Duration, log *zap.Logger) *redisInbox {
	return &redisInbox{store: s, ttl: ttl, log: log}
}

func key(consumer, eventID string) string {
	return "inbox:" + consumer + ":" + eventID
}

func (i *redisInbox) Seen(ctx context.Context, consumer, eventID string) (bool, error) {
	n, err := i.store.Exists(ctx, key(consumer, eventID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check inbox: %w", err)
	}
	return n > 0, nil
}

func (i *redisInbox) Mark(ctx context.Context, consumer, eventID string) error {
	if err := i.store.Set(ctx, key(consumer, eventID), time.Now().UTC().Unix(), i.ttl).Err(); err != nil {
		return fmt.Errorf("failed to mark event in inbox: %w", err)
	}
	i.log.Debug("event marked as handled", zap.String("consumer", consumer), zap.String("event_id", eventID))
	return nil
}

type noopInbox struct{}

func (noopInbox) Seen(context.Context, string, string) (bool, error) { return false, nil }

func (noopInbox) Mark(context.Context, string, string) error { return nil }
