package main

import (
	"errors"
	"fmt"

	"github.com/Sokol111/ecommerce-catalog-sync/internal/cart"
	"github.com/Sokol111/ecommerce-catalog-sync/internal/catalog"
	"github.com/Sokol111/ecommerce-catalog-sync/internal/catalog/api"
	"github.com/Sokol111/ecommerce-catalog-sync/internal/catalog/store"
	"github.com/Sokol111/ecommerce-catalog-sync/internal/events"
	"github.com/Sokol111/ecommerce-catalog-sync/internal/media"
	"github.com/Sokol111/ecommerce-catalog-sync/internal/search"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/messaging"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/modules"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/persistence/postgres"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/swaggerui"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func catalogApp(flags *rootFlags) fx.Option {
	return fx.Options(
		modules.NewCoreModule(flags.coreOptions()...),
		modules.NewObservabilityModule(),
		modules.NewHTTPModule(),
		modules.NewPersistenceModule(modules.WithMongo()),
		modules.NewMessagingModule(messaging.WithOutbox()),
		store.NewStoreModule(),
		catalog.NewCatalogModule(),
		swaggerui.NewSwaggerModule(swaggerui.SwaggerConfig{OpenAPIContent: api.OpenAPI}),
	)
}

func cartApp(flags *rootFlags) fx.Option {
	return fx.Options(
		modules.NewCoreModule(flags.coreOptions()...),
		modules.NewObservabilityModule(),
		modules.NewHTTPModule(),
		modules.NewPersistenceModule(modules.WithPostgres(), modules.WithRedis()),
		modules.NewMessagingModule(messaging.WithRedisInbox()),
		fx.Provide(events.NewDeserializer),
		cart.NewCartModule(),
	)
}

func mediaApp(flags *rootFlags) fx.Option {
	return fx.Options(
		modules.NewCoreModule(flags.coreOptions()...),
		modules.NewObservabilityModule(),
		modules.NewPersistenceModule(modules.WithMongo(), modules.WithMinio()),
		modules.NewMessagingModule(),
		fx.Provide(events.NewDeserializer),
		media.NewMediaModule(),
	)
}

func searchApp(flags *rootFlags) fx.Option {
	return fx.Options(
		modules.NewCoreModule(flags.coreOptions()...),
		modules.NewObservabilityModule(),
		modules.NewPersistenceModule(modules.WithElasticsearch()),
		modules.NewMessagingModule(),
		fx.Provide(events.NewDeserializer),
		search.NewSearchModule(),
	)
}

func run(opts fx.Option) error {
	app := fx.New(opts)
	if err := app.Err(); err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}
	app.Run()
	return nil
}

// migrateCart only resolves config and logger, so no connection is opened
// outside the migrator.
func migrateCart(flags *rootFlags) error {
	var migrateErr error
	app := fx.New(
		modules.NewCoreModule(flags.coreOptions()...),
		modules.NewPersistenceModule(modules.WithPostgres()),
		fx.Invoke(func(conf postgres.Config, log *zap.Logger) {
			m, err := cart.NewMigrator(conf.URL(), log)
			if err != nil {
				migrateErr = err
				return
			}
			migrateErr = m.Up()
		}),
	)
	return errors.Join(app.Err(), migrateErr)
}
