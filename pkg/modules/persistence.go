package modules

import (
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/persistence/elasticsearch"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/persistence/minio"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/persistence/mongo"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/persistence/postgres"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/persistence/redis"
	"go.uber.org/fx"
)

type persistenceOptions struct {
	modules []fx.Option
}

type PersistenceOption func(*persistenceOptions)

func WithMongo(opts ...mongo.Option) PersistenceOption {
	return func(o *persistenceOptions) {
		o.modules = append(o.modules, mongo.NewMongoModule(opts...))
	}
}

func WithPostgres(opts ...postgres.Option) PersistenceOption {
	return func(o *persistenceOptions) {
		o.modules = append(o.modules, postgres.NewPostgresModule(opts...))
	}
}

func WithRedis(opts ...redis.Option) PersistenceOption {
	return func(o *persistenceOptions) {
		o.modules = append(o.modules, redis.NewRedisModule(opts...))
	}
}

func WithElasticsearch(opts ...elasticsearch.Option) PersistenceOption {
	return func(o *persistenceOptions) {
		o.modules = append(o.modules, elasticsearch.NewElasticsearchModule(opts...))
	}
}

func WithMinio(opts ...minio.Option) PersistenceOption {
	return func(o *persistenceOptions) {
		o.modules = append(o.modules, minio.NewMinioModule(opts...))
	}
}

// NewPersistenceModule provides the stores a service asks for.
//
//	modules.NewPersistenceModule(modules.WithMongo(), modules.WithMinio())
func NewPersistenceModule(opts ...PersistenceOption) fx.Option {
	o := &persistenceOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return fx.Options(o.modules...)
}
