package testutil

import (
	"testing"

	"photocat/internal/catalog"
	"photocat/internal/database"
	"photocat/internal/database/migrations"
)

// NewTestDatabase creates a new in-memory SQLite catalog with migrations applied.
// The database is automatically closed when the test completes.
func NewTestDatabase(t *testing.T) catalog.Database {
	t.Helper()

	sqlDB, err := database.OpenConnection(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if err := migrations.MigrateUp(sqlDB); err != nil {
		sqlDB.Close()
		t.Fatalf("failed to apply migrations: %v", err)
	}

	db := database.NewSQLiteDatabaseFromDB(sqlDB, FixedClock(), nil)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}
