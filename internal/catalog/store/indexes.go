package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/persistence/mongo"
	"go.mongodb.org/mongo-driver/v2/bson"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ensureIndexes is idempotent.
func ensureIndexes(ctx context.Context, m mongo.Mongo) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	byCollection := map[string][]mongodriver.IndexModel{
		productsCollection: {
			{Keys: bson.D{{Key: "mainImageId", Value: 1}}, Options: options.Index().SetName("products_mainImageId")},
		},
		propertiesCollection: {
			{Keys: bson.D{{Key: "productId", Value: 1}, {Key: "position", Value: 1}}, Options: options.Index().SetName("properties_productId_position")},
		},
		variantsCollection: {
			{Keys: bson.D{{Key: "productId", Value: 1}}, Options: options.Index().SetName("variants_productId")},
			{Keys: bson.D{{Key: "imageId", Value: 1}}, Options: options.Index().SetName("variants_imageId").SetSparse(true)},
		},
	}

	for coll, indexes := range byCollection {
		if _, err := m.GetCollection(coll).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", coll, err)
		}
	}
	return nil
}
