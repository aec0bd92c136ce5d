//go:build integration

// Package testdb connects integration tests to a PostgreSQL database with the
// task schema applied, isolating each test in a rolled-back transaction.
package testdb

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/taskflow-api/internal/platform/postgres/migrations"
	"github.com/phrazzld/taskflow-api/internal/redact"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
)

// EnvDatabaseURL names the variable holding the test database URL.
const EnvDatabaseURL = "TASKFLOW_TEST_DATABASE_URL"

// TestTimeout bounds connection checks and migrations.
const TestTimeout = 30 * time.Second

var (
	migrateOnce sync.Once
	migrateErr  error
)

// DatabaseURL returns the configured test database URL, or "".
func DatabaseURL() string {
	return os.Getenv(EnvDatabaseURL)
}

// IsCI reports whether the tests run under a CI system, where a missing
// database is a failure rather than a skip.
func IsCI() bool {
	return os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != ""
}

// Open connects to the test database and applies migrations once per test
// binary. Without a configured URL the test is skipped, or failed in CI.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	dsn := DatabaseURL()
	if dsn == "" {
		if IsCI() {
			t.Fatalf("%s must be set in CI", EnvDatabaseURL)
		}
		t.Skipf("%s not set", EnvDatabaseURL)
	}

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("database connection failed: %s", redact.Error(err))
	}

	migrateOnce.Do(func() {
		goose.SetBaseFS(migrations.FS)
		if migrateErr = goose.SetDialect("postgres"); migrateErr != nil {
			return
		}
		migrateErr = goose.UpContext(ctx, db, ".")
	})
	require.NoError(t, migrateErr, "failed to apply migrations")

	return db
}

// Tx begins a transaction on db that is rolled back when the test ends.
func Tx(t *testing.T, db *sql.DB) *sql.Tx {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err, "failed to begin transaction")
	t.Cleanup(func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("failed to roll back transaction: %v", err)
		}
	})
	return tx
}
