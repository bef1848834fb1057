package cart

import (
	"embed"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/persistence/migrations"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// NewMigrator migrates the cart schema at databaseURL.
func NewMigrator(databaseURL string, log *zap.Logger) (migrations.Migrator, error) {
	return migrations.NewMigrator(migrationFiles, "migrations", databaseURL, log)
}
