package db

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
)

// NewTestDB returns an in-memory database with the inventory table in place.
// It is closed when the test ends.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema := AdditiveSchema{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	if err := schema.EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("creating inventory table: %v", err)
	}
	return db
}
