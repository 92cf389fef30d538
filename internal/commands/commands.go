// Package commands is the boundary the UI talks to. Each exported method is one
// externally callable command, and every failure leaves it as a plain *Error.
package commands

import (
	"context"
	"io/fs"
	"log/slog"

	"github.com/erazemk/inventario/internal/export"
	"github.com/erazemk/inventario/internal/model"
	"github.com/erazemk/inventario/internal/store"
)

// Error is the only error type returned by Commands. It carries a message and
// nothing else.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func fail(err error) error {
	return &Error{Message: err.Error()}
}

// Commands maps the UI command surface onto the repository and exporter.
type Commands struct {
	repo     *store.Repository
	exporter *export.Writer
	logger   *slog.Logger
}

// New returns the command facade. A nil logger uses slog.Default.
func New(repo *store.Repository, exporter *export.Writer, logger *slog.Logger) *Commands {
	if logger == nil {
		logger = slog.Default()
	}
	return &Commands{repo: repo, exporter: exporter, logger: logger}
}

// GetAllItems returns every item, newest first.
func (c *Commands) GetAllItems(ctx context.Context) ([]model.Item, error) {
	items, err := c.repo.List(ctx)
	if err != nil {
		c.logger.Error("failed to list items", "error", err)
		return nil, fail(err)
	}
	return items, nil
}

// AddItem creates an item. image may be empty, bare base64, or a data URL.
func (c *Commands) AddItem(ctx context.Context, name, image string, required, available int) (*model.Item, error) {
	item, err := c.repo.Add(ctx, model.ItemInput{
		Name:              name,
		Image:             image,
		RequiredQuantity:  required,
		AvailableQuantity: available,
	})
	if err != nil {
		c.logger.Error("failed to add item", "name", name, "error", err)
		return nil, fail(err)
	}
	c.logger.Info("item added", "id", item.ID, "name", item.Name, "image", item.HasImage())
	return item, nil
}

// UpdateItem changes an item. An empty image keeps the current one.
func (c *Commands) UpdateItem(ctx context.Context, id int64, name, image string, required, available int) (*model.Item, error) {
	item, err := c.repo.Update(ctx, id, model.ItemInput{
		Name:              name,
		Image:             image,
		RequiredQuantity:  required,
		AvailableQuantity: available,
	})
	if err != nil {
		c.logger.Error("failed to update item", "id", id, "error", err)
		return nil, fail(err)
	}
	c.logger.Info("item updated", "id", item.ID, "name", item.Name, "new_image", image != "")
	return item, nil
}

// DeleteItem removes an item and its image. Unknown ids succeed.
func (c *Commands) DeleteItem(ctx context.Context, id int64) error {
	if err := c.repo.Delete(ctx, id); err != nil {
		c.logger.Error("failed to delete item", "id", id, "error", err)
		return fail(err)
	}
	c.logger.Info("item deleted", "id", id)
	return nil
}

// ExportToCSV writes the whole table to the export file and returns its path.
func (c *Commands) ExportToCSV(ctx context.Context) (string, error) {
	items, err := c.repo.List(ctx)
	if err != nil {
		c.logger.Error("failed to list items for export", "error", err)
		return "", fail(err)
	}
	path, err := c.exporter.Write(items)
	if err != nil {
		c.logger.Error("failed to export inventory", "error", err)
		return "", fail(err)
	}
	c.logger.Info("inventory exported", "path", path, "items", len(items))
	return path, nil
}

// SweepOrphanedImages deletes image files no item references.
func (c *Commands) SweepOrphanedImages(ctx context.Context) ([]string, error) {
	removed, err := c.repo.SweepOrphans(ctx)
	if err != nil {
		c.logger.Error("failed to sweep images", "error", err)
		return nil, fail(err)
	}
	c.logger.Info("orphaned images swept", "removed", len(removed))
	return removed, nil
}

// OpenItemImage opens the stored image of an item for reading.
func (c *Commands) OpenItemImage(ctx context.Context, id int64) (fs.File, error) {
	f, err := c.repo.OpenImage(ctx, id)
	if err != nil {
		c.logger.Debug("item image unavailable", "id", id, "error", err)
		return nil, fail(err)
	}
	return f, nil
}
