// Package testdb provides helpers for tests that run against a real
// PostgreSQL database.
//
// Tests call GetTestDB once, which connects using TASKDECK_TEST_DATABASE_URL
// (or DATABASE_URL) and migrates the schema, then wrap each test body in
// WithTx so that all writes are rolled back:
//
//	db := testdb.GetTestDB(t)
//	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//		ownerID := testdb.CreateTestUser(t, tx)
//		taskStore := postgres.NewPostgresTaskStore(tx, slog.Default())
//		...
//	})
//
// Tests are skipped when no database URL is configured.
package testdb
