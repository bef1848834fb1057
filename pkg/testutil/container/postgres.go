package container

import (
	"context"
	"fmt"
	"time"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/persistence/postgres"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const defaultPostgresImage = "postgres:16-alpine"

type PostgresContainer struct {
	Container testcontainers.Container
	Config    postgres.Config
}

// StartPostgres runs a disposable database and returns a config pointing at it.
func StartPostgres(ctx context.Context) (*PostgresContainer, error) {
	const (
		user     = "test"
		password = "test"
		database = "test"
	)

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        defaultPostgresImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     user,
				"POSTGRES_PASSWORD": password,
				"POSTGRES_DB":       database,
			},
			// The server restarts once after initdb.
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = testcontainers.TerminateContainer(c)
		return nil, fmt.Errorf("failed to get postgres host: %w", err)
	}
	port, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = testcontainers.TerminateContainer(c)
		return nil, fmt.Errorf("failed to get postgres port: %w", err)
	}

	return &PostgresContainer{
		Container: c,
		Config: postgres.Config{
			Host:     host,
			Port:     port.Int(),
			User:     user,
			Password: password,
			Database: database,
			SSLMode:  "disable",
		},
	}, nil
}

func (p *PostgresContainer) Terminate() error {
	return testcontainers.TerminateContainer(p.Container)
}
