package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const countersCollection = "counters"

// Sequence hands out monotonically increasing int64 ids per name.
// Called with a transaction context the increment is rolled back together
// with the rest of the transaction.
type Sequence interface {
	Next(ctx context.Context, name string) (int64, error)
}

type sequence struct {
	coll *mongodriver.Collection
}

// NewSequence stores counters in the "counters" collection of m.
func NewSequence(m Mongo) Sequence {
	return &sequence{coll: m.GetCollection(countersCollection)}
}

func (s *sequence) Next(ctx context.Context, name string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		Value int64 `bson:"value"`
	}
	err := s.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: name}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "value", Value: int64(1)}}}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate next %s id: %w", name, err)
	}
	return counter.Value, nil
}
