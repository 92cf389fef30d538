// Package app owns the process-wide state: the database handle and the
// components built on it.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/erazemk/inventario/internal/blob"
	"github.com/erazemk/inventario/internal/commands"
	"github.com/erazemk/inventario/internal/config"
	"github.com/erazemk/inventario/internal/db"
	"github.com/erazemk/inventario/internal/export"
	"github.com/erazemk/inventario/internal/store"
)

// App is the explicit application state passed to every transport.
type App struct {
	Config   *config.Config
	DB       *sql.DB
	Blobs    *blob.Store
	Repo     *store.Repository
	Exporter *export.Writer
	Commands *commands.Commands
}

// Open creates the data directory, opens the database, applies the schema and
// wires the components. Any error here is an initialization failure.
func Open(ctx context.Context, cfg *config.Config, schema db.SchemaManager) (*App, error) {
	logger := slog.Default()
	if schema == nil {
		schema = db.AdditiveSchema{Logger: logger}
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	database, err := db.Open(cfg.DatabasePath())
	if err != nil {
		return nil, err
	}
	if err := schema.EnsureSchema(ctx, database); err != nil {
		database.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}

	blobs, err := blob.New(filepath.Join(cfg.DataDir, blob.DirName), blob.WithLogger(logger))
	if err != nil {
		database.Close()
		return nil, err
	}
	exporter, err := export.New(cfg.ExportDir)
	if err != nil {
		database.Close()
		return nil, err
	}

	repo := store.NewRepository(database, blobs)
	logger.Debug("database ready", "path", cfg.DatabasePath(), "images", blobs.Dir())

	return &App{
		Config:   cfg,
		DB:       database,
		Blobs:    blobs,
		Repo:     repo,
		Exporter: exporter,
		Commands: commands.New(repo, exporter, logger),
	}, nil
}

// Close releases the database handle.
func (a *App) Close() error {
	return a.DB.Close()
}
