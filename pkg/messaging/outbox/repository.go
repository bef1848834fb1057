package outbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/persistence/mongo"
	"go.mongodb.org/mongo-driver/v2/bson"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	collectionName = "outbox"

	idxCreatedAtTTL          = "outbox_createdAt_ttl"
	idxStatusNextAttemptLock = "outbox_status_nextAttemptAfter_lockExpiresAt"

	ttlSeconds   = 5 * 24 * 60 * 60
	lockDuration = 30 * time.Second
	firstAttempt = 10 * time.Second
	baseDelayMs  = 30000
)

var errEntityNotFound = errors.New("entity not found in database")

type repository interface {
	// FetchAndLock returns errEntityNotFound when nothing is due.
	FetchAndLock(ctx context.Context) (*outboxEntity, error)
	// Create inserts a record. Called with a transaction context it commits
	// or rolls back together with the caller's writes.
	Create(ctx context.Context, entity *outboxEntity) error
	UpdateAsSentByIds(ctx context.Context, ids []string) error
}

type outboxRepository struct {
	coll             *mongodriver.Collection
	maxBackoffMillis int64
}

func newOutboxRepository(m mongo.Mongo, conf Config) *outboxRepository {
	return &outboxRepository{
		coll:             m.GetCollection(collectionName),
		maxBackoffMillis: conf.MaxBackoff.Milliseconds(),
	}
}

func (r *outboxRepository) FetchAndLock(ctx context.Context) (*outboxEntity, error) {
	now := time.Now().UTC()

	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "nextAttemptAfter", Value: 1}, {Key: "createdAt", Value: 1}}).
		SetReturnDocument(options.After)

	filter := bson.D{
		{Key: "status", Value: StatusProcessing},
		{Key: "nextAttemptAfter", Value: bson.D{{Key: "$lt", Value: now}}},
		{Key: "lockExpiresAt", Value: bson.D{{Key: "$lt", Value: now}}},
	}

	// nextAttemptAfter = now + min(30s * 2^attempts, maxBackoff)
	update := mongodriver.Pipeline{
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "lockExpiresAt", Value: now.Add(lockDuration)},
			{Key: "attemptsToSend", Value: bson.D{{Key: "$add", Value: bson.A{"$attemptsToSend", 1}}}},
			{Key: "nextAttemptAfter", Value: bson.D{{Key: "$add", Value: bson.A{
				now,
				bson.D{{Key: "$min", Value: bson.A{
					bson.D{{Key: "$multiply", Value: bson.A{
						baseDelayMs,
						bson.D{{Key: "$pow", Value: bson.A{2, "$attemptsToSend"}}},
					}}},
					r.maxBackoffMillis,
				}}},
			}}}},
		}}},
	}

	var entity outboxEntity
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&entity)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("failed to fetch outbox entity: %w", errEntityNotFound)
		}
		return nil, fmt.Errorf("failed to fetch outbox entity: %w", err)
	}
	return &entity, nil
}

func (r *outboxRepository) Create(ctx context.Context, entity *outboxEntity) error {
	if _, err := r.coll.InsertOne(ctx, entity); err != nil {
		return fmt.Errorf("failed to insert outbox entity: %w", err)
	}
	return nil
}

func (r *outboxRepository) UpdateAsSentByIds(ctx context.Context, ids []string) error {
	_, err := r.coll.UpdateMany(ctx,
		bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}},
		bson.D{
			{Key: "$set", Value: bson.D{{Key: "status", Value: StatusSent}, {Key: "sentAt", Value: time.Now().UTC()}}},
			{Key: "$unset", Value: bson.D{{Key: "lockExpiresAt", Value: ""}, {Key: "nextAttemptAfter", Value: ""}}},
			{Key: "$inc", Value: bson.D{{Key: "confirmations", Value: 1}}},
		})
	if err != nil {
		return fmt.Errorf("failed to update outbox messages: %w", err)
	}
	return nil
}

// ensureIndexes is idempotent.
func ensureIndexes(ctx context.Context, m mongo.Mongo) error {
	indexes := []mongodriver.IndexModel{
		{
			Keys:    bson.D{{Key: "createdAt", Value: 1}},
			Options: options.Index().SetName(idxCreatedAtTTL).SetExpireAfterSeconds(ttlSeconds),
		},
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "nextAttemptAfter", Value: 1},
				{Key: "lockExpiresAt", Value: 1},
			},
			Options: options.Index().SetName(idxStatusNextAttemptLock),
		},
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := m.GetCollection(collectionName).Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create outbox indexes: %w", err)
	}
	return nil
}
