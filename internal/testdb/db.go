package testdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/taskdeck-api/internal/platform/postgres"
	"github.com/stretchr/testify/require"
)

// Environment variables consulted for the test database, in order.
const (
	EnvTestDatabaseURL = "TASKDECK_TEST_DATABASE_URL"
	EnvDatabaseURL     = "DATABASE_URL"
)

// TestTimeout bounds setup queries.
const TestTimeout = 10 * time.Second

var migrateOnce sync.Once
var migrateErr error

// GetTestDatabaseURL returns the first configured database URL.
func GetTestDatabaseURL() string {
	for _, name := range []string{EnvTestDatabaseURL, EnvDatabaseURL} {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// IsIntegrationTestEnvironment reports whether a database URL is set.
func IsIntegrationTestEnvironment() bool {
	return GetTestDatabaseURL() != ""
}

// SkipIfNoDatabase skips t when no test database is configured.
func SkipIfNoDatabase(t *testing.T) {
	t.Helper()
	if !IsIntegrationTestEnvironment() {
		t.Skipf("skipping: set %s or %s to run database tests", EnvTestDatabaseURL, EnvDatabaseURL)
	}
}

// GetTestDB connects to the test database and applies migrations once per
// test binary. The connection is closed when t finishes.
func GetTestDB(t *testing.T) *sql.DB {
	t.Helper()
	SkipIfNoDatabase(t)

	db, err := sql.Open("pgx", GetTestDatabaseURL())
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "failed to ping test database")

	migrateOnce.Do(func() {
		migrateErr = postgres.Migrate(context.Background(), db, "up", nil)
	})
	require.NoError(t, migrateErr, "failed to migrate test database")

	return db
}

// WithTx runs fn inside a transaction that is always rolled back.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err, "failed to begin test transaction")

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("failed to roll back test transaction: %v", err)
		}
	}()

	fn(t, tx)
}

// CreateTestUser inserts a task owner and returns its ID.
func CreateTestUser(t *testing.T, tx *sql.Tx) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := tx.ExecContext(context.Background(),
		`INSERT INTO users (id, email) VALUES ($1, $2)`,
		id, fmt.Sprintf("owner-%s@example.com", id))
	require.NoError(t, err, "failed to insert test user")
	return id
}

// CreateTestProject inserts a project owned by userID.
func CreateTestProject(t *testing.T, tx *sql.Tx, userID uuid.UUID, name string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := tx.ExecContext(context.Background(),
		`INSERT INTO projects (id, user_id, name) VALUES ($1, $2, $3)`,
		id, userID, name)
	require.NoError(t, err, "failed to insert test project")
	return id
}

// CreateTestTag inserts a tag owned by userID.
func CreateTestTag(t *testing.T, tx *sql.Tx, userID uuid.UUID, name string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := tx.ExecContext(context.Background(),
		`INSERT INTO tags (id, user_id, name) VALUES ($1, $2, $3)`,
		id, userID, name)
	require.NoError(t, err, "failed to insert test tag")
	return id
}
