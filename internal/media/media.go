// Package media garbage-collects media the catalog no longer references:
// the stored object first, then its record.
package media

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/persistence"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/persistence/mongo"
	"go.mongodb.org/mongo-driver/v2/bson"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
)

const collectionName = "media"

type Record struct {
	PublicID     string    `bson:"_id"`
	OriginalName string    `bson:"originalName"`
	MimeType     string    `bson:"mimeType"`
	URL          string    `bson:"url"`
	CreatedAt    time.Time `bson:"createdAt"`
}

type Repository interface {
	// Find returns persistence.ErrEntityNotFound for an unknown id.
	Find(ctx context.Context, publicID string) (Record, error)
	Delete(ctx context.Context, publicID string) error
}

type repository struct {
	coll *mongodriver.Collection
}

func newRepository(m mongo.Mongo) Repository {
	return &repository{coll: m.GetCollection(collectionName)}
}

func (r *repository) Find(ctx context.Context, publicID string) (Record, error) {
	var rec Record
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: publicID}}).Decode(&rec)
	if errors.Is(err, mongodriver.ErrNoDocuments) {
		return Record{}, fmt.Errorf("media %s: %w", publicID, persistence.ErrEntityNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to find media %s: %w", publicID, err)
	}
	return rec, nil
}

func (r *repository) Delete(ctx context.Context, publicID string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: publicID}}); err != nil {
		return fmt.Errorf("failed to delete media %s: %w", publicID, err)
	}
	return nil
}
