package store

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"sync"

	"github.com/erazemk/inventario/internal/blob"
	"github.com/erazemk/inventario/internal/model"
)

// Repository serializes every item operation through one lock held for the
// whole call. Blob writes and deletes are ordered around the row change but
// are not transactional with it.
type Repository struct {
	mu    sync.Mutex
	db    *sql.DB
	blobs *blob.Store
}

// NewRepository wraps db and blobs. The caller keeps ownership of db.
func NewRepository(db *sql.DB, blobs *blob.Store) *Repository {
	return &Repository{db: db, blobs: blobs}
}

// List returns every item, newest first. An empty store yields an empty slice.
func (r *Repository) List(ctx context.Context) ([]model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return listItems(ctx, r.db)
}

// Get returns a single item or ErrNotFound.
func (r *Repository) Get(ctx context.Context, id int64) (*model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, err := getItem(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return item, nil
}

// Add saves the image (if any) and inserts a row pointing at it. The blob is
// written before the lock is taken since no row references it yet.
func (r *Repository) Add(ctx context.Context, in model.ItemInput) (*model.Item, error) {
	var imagePath string
	if in.Image != "" {
		path, err := r.blobs.Save(in.Image)
		if err != nil {
			return nil, fmt.Errorf("saving image: %w", err)
		}
		imagePath = path
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	item, err := insertItem(ctx, r.db, in, imagePath)
	if err != nil {
		r.blobs.Delete(imagePath)
		return nil, err
	}
	return item, nil
}

// Update changes name and quantities. With a new image, the previous blob is
// deleted first, then the new one is saved and referenced. Without one, the
// existing image_path is left untouched.
func (r *Repository) Update(ctx context.Context, id int64, in model.ItemInput) (*model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var newPath string
	if in.Image == "" {
		if err := updateItemFields(ctx, r.db, id, in); err != nil {
			return nil, err
		}
	} else {
		oldPath, err := imagePathOf(ctx, r.db, id)
		if err != nil {
			return nil, err
		}
		r.blobs.Delete(oldPath)

		newPath, err = r.blobs.Save(in.Image)
		if err != nil {
			return nil, fmt.Errorf("saving image: %w", err)
		}
		if err := updateItemWithImage(ctx, r.db, id, in, newPath); err != nil {
			r.blobs.Delete(newPath)
			return nil, err
		}
	}

	item, err := getItem(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		r.blobs.Delete(newPath)
		return nil, fmt.Errorf("updating item %d: %w", id, ErrNotFound)
	}
	return item, nil
}

// Delete removes the item's blob and then its row. A missing id is not an error.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	path, err := imagePathOf(ctx, r.db, id)
	if err != nil {
		return err
	}
	r.blobs.Delete(path)

	return deleteItem(ctx, r.db, id)
}

// SweepOrphans removes image files that no row references and returns their
// paths. The lock only orders the sweep against this repository's own calls;
// blobs younger than blob.SweepGrace are kept so a file saved for a row not
// yet inserted, by this or another process, survives.
func (r *Repository) SweepOrphans(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	referenced, err := imagePaths(ctx, r.db)
	if err != nil {
		return nil, err
	}
	return r.blobs.Sweep(referenced)
}

// OpenImage opens the blob referenced by an item.
func (r *Repository) OpenImage(ctx context.Context, id int64) (fs.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, err := getItem(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	if !item.HasImage() {
		return nil, ErrNoImage
	}
	return r.blobs.Open(item.ImagePath)
}
