package migrations

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mongodb"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

// Migrator applies versioned schema changes embedded in the binary.
// The database driver is chosen by the URL scheme: mongodb:// runs JSON
// command files, postgres:// runs SQL files.
type Migrator interface {
	Up() error
	Version() (version uint, dirty bool, err error)
}

type migrator struct {
	fsys        fs.FS
	dir         string
	databaseURL string
	log         *zap.Logger
}

func NewMigrator(fsys fs.FS, dir, databaseURL string, log *zap.Logger) (Migrator, error) {
	if fsys == nil {
		return nil, errors.New("migrations filesystem is required")
	}
	if databaseURL == "" {
		return nil, errors.New("database url is required")
	}
	return &migrator{fsys: fsys, dir: dir, databaseURL: databaseURL, log: log}, nil
}

func (m *migrator) open() (*migrate.Migrate, error) {
	source, err := iofs.New(m.fsys, m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to create iofs source: %w", err)
	}
	mi, err := migrate.NewWithSourceInstance("iofs", source, m.databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return mi, nil
}

func (m *migrator) closeInstance(mi *migrate.Migrate) {
	sourceErr, dbErr := mi.Close()
	if sourceErr != nil {
		m.log.Warn("failed to close migration source", zap.Error(sourceErr))
	}
	if dbErr != nil {
		m.log.Warn("failed to close migration database", zap.Error(dbErr))
	}
}

func (m *migrator) Up() error {
	mi, err := m.open()
	if err != nil {
		return err
	}
	defer m.closeInstance(mi)

	err = mi.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		m.log.Info("no migrations to apply", zap.String("dir", m.dir))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to run migrations up: %w", err)
	}

	version, dirty, err := mi.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	m.log.Info("migrations applied",
		zap.String("dir", m.dir),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}

func (m *migrator) Version() (uint, bool, error) {
	mi, err := m.open()
	if err != nil {
		return 0, false, err
	}
	defer m.closeInstance(mi)

	version, dirty, err := mi.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, fmt.Errorf("failed to get version: %w", err)
	}
	return version, dirty, nil
}
