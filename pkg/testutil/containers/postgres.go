//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresContainer wraps a testcontainers Postgres instance with an open
// database handle and the registry schema applied.
type PostgresContainer struct {
	Container testcontainers.Container
	DB        *sql.DB
}

const registrySchema = `
CREATE TABLE IF NOT EXISTS caregiver_profiles (
    identity         TEXT PRIMARY KEY,
    name             TEXT NOT NULL,
    bio              BYTEA NOT NULL DEFAULT ''::bytea,
    experience_years INTEGER NOT NULL DEFAULT 0 CHECK (experience_years >= 0),
    certifications   JSONB NOT NULL DEFAULT '[]'::jsonb,
    is_available     BOOLEAN NOT NULL DEFAULT FALSE,
    reputation_score BIGINT NOT NULL DEFAULT 0 CHECK (reputation_score >= 0),
    review_count     BIGINT NOT NULL DEFAULT 0 CHECK (review_count >= 0),
    is_verified      BOOLEAN NOT NULL DEFAULT FALSE,
    last_updated     BIGINT NOT NULL DEFAULT 0
);`

// NewPostgresContainer starts a Postgres container and applies the schema.
// The container is terminated via t.Cleanup.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("carehub_test"),
		tcpostgres.WithUsername("carehub"),
		tcpostgres.WithPassword("carehub"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("pgx", url)
	if err != nil {
		t.Fatalf("failed to open postgres: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	if _, err := db.ExecContext(ctx, registrySchema); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	return &PostgresContainer{Container: container, DB: db}
}

// TruncateTables clears the given tables between tests.
func (c *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	_, err := c.DB.ExecContext(ctx, fmt.Sprintf("TRUNCATE TABLE %s", strings.Join(tables, ", ")))
	return err
}
