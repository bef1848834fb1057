// Package container starts throwaway infrastructure for integration tests.
package container

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/persistence/mongo"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const defaultMongoImage = "mongo:7"

type MongoDBContainer struct {
	Container        *mongodb.MongoDBContainer
	Client           *mongodriver.Client
	ConnectionString string
}

type MongoDBOption func(*mongoDBOptions)

type mongoDBOptions struct {
	image      string
	replicaSet string
}

func WithImage(image string) MongoDBOption {
	return func(o *mongoDBOptions) { o.image = image }
}

// WithReplicaSet is required for anything that opens a transaction.
func WithReplicaSet(name string) MongoDBOption {
	return func(o *mongoDBOptions) { o.replicaSet = name }
}

func StartMongoDB(ctx context.Context, opts ...MongoDBOption) (*MongoDBContainer, error) {
	o := &mongoDBOptions{image: defaultMongoImage}
	for _, opt := range opts {
		opt(o)
	}

	var customizers []testcontainers.ContainerCustomizer
	if o.replicaSet != "" {
		customizers = append(customizers, mongodb.WithReplicaSet(o.replicaSet))
	}

	c, err := mongodb.Run(ctx, o.image, customizers...)
	if err != nil {
		return nil, fmt.Errorf("failed to start mongodb container: %w", err)
	}

	uri, err := c.ConnectionString(ctx)
	if err != nil {
		_ = testcontainers.TerminateContainer(c)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	client, err := mongodriver.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		_ = testcontainers.TerminateContainer(c)
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		_ = testcontainers.TerminateContainer(c)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBContainer{Container: c, Client: client, ConnectionString: uri}, nil
}

// Mongo exposes database name through the same interface stores receive in production.
func (m *MongoDBContainer) Mongo(name string) mongo.Mongo {
	return &database{db: m.Client.Database(name)}
}

// WithTransaction runs fn in a transaction on a fresh session, which makes
// the container usable as a persistence.TxManager.
func (m *MongoDBContainer) WithTransaction(ctx context.Context, fn func(txCtx context.Context) (any, error)) (any, error) {
	sess, err := m.Client.StartSession()
	if err != nil {
		return nil, err
	}
	defer sess.EndSession(ctx)
	return sess.WithTransaction(ctx, fn)
}

func (m *MongoDBContainer) Terminate(ctx context.Context) error {
	var errs []error
	if m.Client != nil {
		if err := m.Client.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to disconnect from mongodb: %w", err))
		}
	}
	if m.Container != nil {
		if err := testcontainers.TerminateContainer(m.Container); err != nil {
			errs = append(errs, fmt.Errorf("failed to terminate mongodb container: %w", err))
		}
	}
	return errors.Join(errs...)
}

type database struct {
	db *mongodriver.Database
}

func (d *database) GetCollection(name string) *mongodriver.Collection { return d.db.Collection(name) }

func (d *database) GetDatabase() *mongodriver.Database { return d.db }
