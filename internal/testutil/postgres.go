// AngelaMos | 2026
// postgres.go

// Package testutil starts throwaway infrastructure for integration tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/carterperez-dev/bakery-orders/internal/core"
)

// Postgres is a migrated database running in a container.
type Postgres struct {
	Container *postgres.PostgresContainer
	DB        *sqlx.DB
}

// StartPostgres runs postgres in a container and applies the embedded
// migrations. Integration tests are skipped under -short.
func StartPostgres(t testing.TB) *Postgres {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("bakery"),
		postgres.WithUsername("bakery"),
		postgres.WithPassword("bakery"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	require.NoError(t, err)

	_, err = core.Migrate(ctx, db)
	require.NoError(t, err)

	return &Postgres{Container: container, DB: db}
}

// Reset empties every domain table between tests.
func (p *Postgres) Reset(t testing.TB) {
	t.Helper()

	_, err := p.DB.ExecContext(context.Background(),
		`TRUNCATE TABLE orders, clients, refresh_tokens, accounts RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
}

func (p *Postgres) Close(t testing.TB) {
	t.Helper()

	if p.DB != nil {
		_ = p.DB.Close() //nolint:errcheck // test cleanup
	}
	if p.Container != nil {
		require.NoError(t, p.Container.Terminate(context.Background()))
	}
}
