package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// schema creates the inventory table in its current shape.
const schema = `
CREATE TABLE IF NOT EXISTS inventory (
    id                 INTEGER PRIMARY KEY AUTOINCREMENT,
    name               TEXT NOT NULL,
    image_path         TEXT,
    required_quantity  INTEGER NOT NULL DEFAULT 0,
    available_quantity INTEGER NOT NULL DEFAULT 0,
    created_at         DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// SchemaManager brings a database up to the schema the store expects.
type SchemaManager interface {
	EnsureSchema(ctx context.Context, db *sql.DB) error
}

// AdditiveSchema creates the table if missing and then adds columns that
// older databases lack. There is no version ledger: every column statement
// runs on every start and its failure (usually "duplicate column") is ignored.
type AdditiveSchema struct {
	Logger *slog.Logger
}

// EnsureSchema implements SchemaManager. Only a failure to create the table
// is returned.
func (s AdditiveSchema) EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	for _, stmt := range additiveColumns {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			logger.Debug("additive column skipped", "statement", stmt, "error", err)
		}
	}
	return nil
}

// EnsureSchema applies AdditiveSchema with a background context.
func EnsureSchema(db *sql.DB) error {
	return AdditiveSchema{}.EnsureSchema(context.Background(), db)
}
