// Package store keeps product aggregates in MongoDB, one collection per row
// kind. Writes are meant to run inside a persistence.TxManager transaction.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sokol111/ecommerce-catalog-sync/internal/catalog"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/persistence"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/persistence/mongo"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/v2/bson"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"golang.org/x/sync/errgroup"
)

type store struct {
	products   *mongodriver.Collection
	discounts  *mongodriver.Collection
	properties *mongodriver.Collection
	variants   *mongodriver.Collection
	sequence   mongo.Sequence
}

func newStore(m mongo.Mongo, seq mongo.Sequence) *store {
	return &store{
		products:   m.GetCollection(productsCollection),
		discounts:  m.GetCollection(discountsCollection),
		properties: m.GetCollection(propertiesCollection),
		variants:   m.GetCollection(variantsCollection),
		sequence:   seq,
	}
}

func (s *store) Load(ctx context.Context, id int64) (catalog.Aggregate, error) {
	var doc productDoc
	err := s.products.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return catalog.Aggregate{}, fmt.Errorf("product %d: %w", id, persistence.ErrEntityNotFound)
		}
		return catalog.Aggregate{}, persistenceError("load product", err)
	}

	agg := catalog.Aggregate{Product: doc.toDomain()}
	if err := s.loadChildren(ctx, &agg); err != nil {
		return catalog.Aggregate{}, err
	}
	return agg, nil
}

// loadChildren reads the child collections concurrently, except inside a
// transaction where a session allows one operation at a time.
func (s *store) loadChildren(ctx context.Context, agg *catalog.Aggregate) error {
	g, gctx := errgroup.WithContext(ctx)
	if mongodriver.SessionFromContext(ctx) != nil {
		g.SetLimit(1)
	}
	filter := bson.D{{Key: "productId", Value: agg.ID}}

	g.Go(func() error {
		var doc discountDoc
		err := s.discounts.FindOne(gctx, bson.D{{Key: "_id", Value: agg.ID}}).Decode(&doc)
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil
		}
		if err != nil {
			return persistenceError("load discount", err)
		}
		agg.Discount = &catalog.Discount{Percentage: doc.Percentage, DiscountPrice: doc.DiscountPrice}
		return nil
	})

	g.Go(func() error {
		var docs []propertyDoc
		if err := findAll(gctx, s.properties, filter, "position", &docs); err != nil {
			return persistenceError("load properties", err)
		}
		agg.Properties = lo.Map(docs, func(d propertyDoc, _ int) catalog.Property {
			return catalog.Property{PropertyName: d.PropertyName, PropertyValues: d.PropertyValues}
		})
		return nil
	})

	g.Go(func() error {
		var docs []variantDoc
		if err := findAll(gctx, s.variants, filter, "_id", &docs); err != nil {
			return persistenceError("load variants", err)
		}
		agg.Variants = lo.Map(docs, func(d variantDoc, _ int) catalog.Variant { return d.toDomain() })
		return nil
	})

	return g.Wait()
}

func (s *store) List(ctx context.Context) ([]catalog.Summary, error) {
	var docs []productDoc
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetProjection(bson.D{
			{Key: "name", Value: 1},
			{Key: "shortDesc", Value: 1},
			{Key: "originalPrice", Value: 1},
			{Key: "mainImageId", Value: 1},
		})
	cursor, err := s.products.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, persistenceError("list products", err)
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, persistenceError("list products", err)
	}
	if len(docs) == 0 {
		return []catalog.Summary{}, nil
	}

	ids := lo.Map(docs, func(d productDoc, _ int) int64 { return d.ID })
	var discounts []discountDoc
	err = findAll(ctx, s.discounts, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}}, "_id", &discounts)
	if err != nil {
		return nil, persistenceError("list discounts", err)
	}
	byProduct := lo.KeyBy(discounts, func(d discountDoc) int64 { return d.ProductID })

	return lo.Map(docs, func(d productDoc, _ int) catalog.Summary {
		summary := catalog.Summary{
			ID:            d.ID,
			Name:          d.Name,
			ShortDesc:     d.ShortDesc,
			OriginalPrice: d.OriginalPrice,
			MainImageID:   d.MainImageID,
		}
		if disc, ok := byProduct[d.ID]; ok {
			summary.Discount = &catalog.Discount{Percentage: disc.Percentage, DiscountPrice: disc.DiscountPrice}
		}
		return summary
	}), nil
}

func findAll(ctx context.Context, coll *mongodriver.Collection, filter bson.D, sortKey string, out any) error {
	cursor, err := coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: sortKey, Value: 1}}))
	if err != nil {
		return err
	}
	return cursor.All(ctx, out)
}

func (s *store) Create(ctx context.Context, agg catalog.Aggregate) (catalog.Aggregate, error) {
	id, err := s.sequence.Next(ctx, productsSequence)
	if err != nil {
		return catalog.Aggregate{}, persistenceError("allocate product id", err)
	}
	agg.ID = id

	if _, err := s.products.InsertOne(ctx, toProductDoc(agg.Product)); err != nil {
		return catalog.Aggregate{}, persistenceError("insert product", err)
	}
	if agg.Discount != nil {
		if err := s.upsertDiscount(ctx, id, *agg.Discount); err != nil {
			return catalog.Aggregate{}, err
		}
	}
	if err := s.insertProperties(ctx, id, agg.Properties); err != nil {
		return catalog.Aggregate{}, err
	}
	if err := s.insertVariants(ctx, id, agg.Variants); err != nil {
		return catalog.Aggregate{}, err
	}
	return s.Load(ctx, id)
}

func (s *store) Commit(ctx context.Context, id int64, ws catalog.WriteSet) (catalog.Aggregate, error) {
	ws.Product.ID = id
	res, err := s.products.ReplaceOne(ctx, bson.D{{Key: "_id", Value: id}}, toProductDoc(ws.Product))
	if err != nil {
		return catalog.Aggregate{}, persistenceError("update product", err)
	}
	if res.MatchedCount == 0 {
		return catalog.Aggregate{}, fmt.Errorf("product %d: %w", id, persistence.ErrEntityNotFound)
	}

	switch ws.DiscountOp {
	case catalog.DiscountUpsert:
		if err := s.upsertDiscount(ctx, id, ws.Discount); err != nil {
			return catalog.Aggregate{}, err
		}
	case catalog.DiscountDelete:
		if _, err := s.discounts.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}}); err != nil {
			return catalog.Aggregate{}, persistenceError("delete discount", err)
		}
	}

	if ws.ReplaceProperties {
		if _, err := s.properties.DeleteMany(ctx, bson.D{{Key: "productId", Value: id}}); err != nil {
			return catalog.Aggregate{}, persistenceError("delete properties", err)
		}
		if err := s.insertProperties(ctx, id, ws.Properties); err != nil {
			return catalog.Aggregate{}, err
		}
	}

	if len(ws.VariantDeletes) > 0 {
		_, err := s.variants.DeleteMany(ctx, bson.D{
			{Key: "_id", Value: bson.D{{Key: "$in", Value: ws.VariantDeletes}}},
			{Key: "productId", Value: id},
		})
		if err != nil {
			return catalog.Aggregate{}, persistenceError("delete variants", err)
		}
	}
	for _, v := range ws.VariantUpdates {
		filter := bson.D{{Key: "_id", Value: v.ID}, {Key: "productId", Value: id}}
		if _, err := s.variants.ReplaceOne(ctx, filter, toVariantDoc(id, v)); err != nil {
			return catalog.Aggregate{}, persistenceError("update variant", err)
		}
	}
	if err := s.insertVariants(ctx, id, ws.VariantCreates); err != nil {
		return catalog.Aggregate{}, err
	}

	return s.Load(ctx, id)
}

func (s *store) Delete(ctx context.Context, id int64) (catalog.Aggregate, error) {
	agg, err := s.Load(ctx, id)
	if err != nil {
		return catalog.Aggregate{}, err
	}

	byProduct := bson.D{{Key: "productId", Value: id}}
	if _, err := s.variants.DeleteMany(ctx, byProduct); err != nil {
		return catalog.Aggregate{}, persistenceError("delete variants", err)
	}
	if _, err := s.properties.DeleteMany(ctx, byProduct); err != nil {
		return catalog.Aggregate{}, persistenceError("delete properties", err)
	}
	if _, err := s.discounts.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}}); err != nil {
		return catalog.Aggregate{}, persistenceError("delete discount", err)
	}
	if _, err := s.products.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}}); err != nil {
		return catalog.Aggregate{}, persistenceError("delete product", err)
	}
	return agg, nil
}

func (s *store) ReferencedMediaIDs(ctx context.Context, ids []string, excludeProductID int64) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	in := bson.D{{Key: "$in", Value: ids}}
	notExcluded := bson.D{{Key: "$ne", Value: excludeProductID}}

	var fromProducts, fromVariants []string
	err := s.products.Distinct(ctx, "mainImageId",
		bson.D{{Key: "mainImageId", Value: in}, {Key: "_id", Value: notExcluded}},
	).Decode(&fromProducts)
	if err != nil {
		return nil, persistenceError("find referenced main images", err)
	}
	err = s.variants.Distinct(ctx, "imageId",
		bson.D{{Key: "imageId", Value: in}, {Key: "productId", Value: notExcluded}},
	).Decode(&fromVariants)
	if err != nil {
		return nil, persistenceError("find referenced variant images", err)
	}
	return lo.Uniq(append(fromProducts, fromVariants...)), nil
}

func (s *store) upsertDiscount(ctx context.Context, id int64, d catalog.Discount) error {
	doc := discountDoc{ProductID: id, Percentage: d.Percentage, DiscountPrice: d.DiscountPrice}
	_, err := s.discounts.ReplaceOne(ctx, bson.D{{Key: "_id", Value: id}}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return persistenceError("upsert discount", err)
	}
	return nil
}

func (s *store) insertProperties(ctx context.Context, id int64, props []catalog.Property) error {
	if len(props) == 0 {
		return nil
	}
	if _, err := s.properties.InsertMany(ctx, toPropertyDocs(id, props)); err != nil {
		return persistenceError("insert properties", err)
	}
	return nil
}

func (s *store) insertVariants(ctx context.Context, id int64, variants []catalog.Variant) error {
	if len(variants) == 0 {
		return nil
	}
	docs := make([]variantDoc, 0, len(variants))
	for _, v := range variants {
		variantID, err := s.sequence.Next(ctx, variantsSequence)
		if err != nil {
			return persistenceError("allocate variant id", err)
		}
		v.ID = variantID
		docs = append(docs, toVariantDoc(id, v))
	}
	if _, err := s.variants.InsertMany(ctx, docs); err != nil {
		return persistenceError("insert variants", err)
	}
	return nil
}

func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: failed to %s: %w", catalog.ErrPersistence, op, err)
}
