//go:build integration

package containers

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

// PostgresContainer wraps a testcontainers PostgreSQL instance shared across
// a test binary. Suites truncate their own tables between tests instead of
// paying container startup per suite.
type PostgresContainer struct {
	Container *tcpostgres.PostgresContainer
	DB        *sql.DB
	URL       string
}

var (
	pgOnce   sync.Once
	pgShared *PostgresContainer
	pgErr    error
)

// GetPostgres returns the shared PostgreSQL container, starting it on first use.
func GetPostgres(t *testing.T) *PostgresContainer {
	t.Helper()

	pgOnce.Do(func() {
		ctx := context.Background()

		container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
			tcpostgres.WithDatabase("peakform_test"),
			tcpostgres.WithUsername("peakform"),
			tcpostgres.WithPassword("peakform"),
			tcpostgres.BasicWaitStrategies(),
		)
		if err != nil {
			pgErr = err
			return
		}

		url, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			_ = container.Terminate(ctx)
			pgErr = err
			return
		}

		db, err := sql.Open("pgx", url)
		if err != nil {
			_ = container.Terminate(ctx)
			pgErr = err
			return
		}
		db.SetMaxOpenConns(10)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			_ = container.Terminate(ctx)
			pgErr = err
			return
		}

		pgShared = &PostgresContainer{Container: container, DB: db, URL: url}
	})

	if pgErr != nil {
		t.Fatalf("failed to start postgres container: %v", pgErr)
	}
	return pgShared
}

// TruncateTables empties the given tables, ignoring ones that don't exist yet.
func (c *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	for _, table := range tables {
		if _, err := c.DB.ExecContext(ctx, `TRUNCATE TABLE `+table+` CASCADE`); err != nil {
			return err
		}
	}
	return nil
}
