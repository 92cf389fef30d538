package store

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/erazemk/inventario/internal/blob"
	"github.com/erazemk/inventario/internal/db"
	"github.com/erazemk/inventario/internal/model"
)

// denyRemoveFS behaves like the host filesystem except that Remove always fails.
type denyRemoveFS struct {
	blob.OSFS
}

func (denyRemoveFS) Remove(name string) error {
	return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrPermission}
}

// tickingClock returns a clock that advances one millisecond per call so
// consecutive blobs get distinct names.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	ms := time.Now().UnixMilli()
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		ms++
		return time.UnixMilli(ms)
	}
}

func newTestRepository(t *testing.T, opts ...blob.Option) (*Repository, *blob.Store) {
	t.Helper()
	opts = append([]blob.Option{blob.WithClock(tickingClock())}, opts...)
	blobs, err := blob.New(filepath.Join(t.TempDir(), blob.DirName), opts...)
	if err != nil {
		t.Fatalf("blob.New: %v", err)
	}
	return NewRepository(db.NewTestDB(t), blobs), blobs
}

func encodedImage(s string) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(s))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestWidgetLifecycle(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	item, err := repo.Add(ctx, model.ItemInput{Name: "Widget", RequiredQuantity: 10, AvailableQuantity: 3})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if item.ID != 1 {
		t.Errorf("expected id 1, got %d", item.ID)
	}
	if item.RequiredQuantity != 10 || item.AvailableQuantity != 3 {
		t.Errorf("expected quantities 10/3, got %d/%d", item.RequiredQuantity, item.AvailableQuantity)
	}
	if item.ImagePath != "" {
		t.Errorf("expected no image, got %q", item.ImagePath)
	}
	if item.CreatedAt.IsZero() {
		t.Error("expected a creation timestamp")
	}

	updated, err := repo.Update(ctx, 1, model.ItemInput{Name: "Widget", RequiredQuantity: 10, AvailableQuantity: 7})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.AvailableQuantity != 7 {
		t.Errorf("expected available 7, got %d", updated.AvailableQuantity)
	}
	if updated.ImagePath != "" {
		t.Errorf("expected image path to stay empty, got %q", updated.ImagePath)
	}
	if !updated.CreatedAt.Equal(item.CreatedAt) {
		t.Errorf("created_at changed on update: %v -> %v", item.CreatedAt, updated.CreatedAt)
	}

	if err := repo.Delete(ctx, 1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	items, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("expected empty non-nil list, got %v", items)
	}
}

func TestAddThenListContainsItem(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	added, err := repo.Add(ctx, model.ItemInput{Name: "Bolt", RequiredQuantity: 4, AvailableQuantity: 1})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	items, _ := repo.List(ctx)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	got := items[0]
	if got.ID != added.ID || got.Name != "Bolt" || got.RequiredQuantity != 4 || got.AvailableQuantity != 1 {
		t.Errorf("listed item %+v does not match added %+v", got, added)
	}
}

func TestListNewestFirst(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	names := []string{"first", "second", "third", "fourth"}
	for _, n := range names {
		if _, err := repo.Add(ctx, model.ItemInput{Name: n}); err != nil {
			t.Fatalf("Add(%s): %v", n, err)
		}
	}

	items, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != len(names) {
		t.Fatalf("expected %d items, got %d", len(names), len(items))
	}
	for i, item := range items {
		want := names[len(names)-1-i]
		if item.Name != want {
			t.Errorf("position %d: expected %q, got %q", i, want, item.Name)
		}
	}
}

func TestAddWithImage(t *testing.T) {
	repo, blobs := newTestRepository(t)
	ctx := context.Background()

	item, err := repo.Add(ctx, model.ItemInput{Name: "Photo", Image: encodedImage("pixels")})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if filepath.Dir(item.ImagePath) != blobs.Dir() {
		t.Errorf("expected image in %q, got %q", blobs.Dir(), item.ImagePath)
	}
	data, err := os.ReadFile(item.ImagePath)
	if err != nil {
		t.Fatalf("reading blob: %v", err)
	}
	if string(data) != "pixels" {
		t.Errorf("unexpected blob contents %q", data)
	}
}

func TestAddWithInvalidImageCreatesNoRow(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.Add(ctx, model.ItemInput{Name: "Broken", Image: "data:image/png;base64,@@@"})
	if !errors.Is(err, blob.ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}

	items, _ := repo.List(ctx)
	if len(items) != 0 {
		t.Errorf("expected no rows, got %d", len(items))
	}
}

func TestUpdateWithoutImageKeepsPath(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	item, _ := repo.Add(ctx, model.ItemInput{Name: "Lamp", Image: encodedImage("lamp")})

	updated, err := repo.Update(ctx, item.ID, model.ItemInput{Name: "Desk Lamp", RequiredQuantity: 2})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ImagePath != item.ImagePath {
		t.Errorf("expected image path %q, got %q", item.ImagePath, updated.ImagePath)
	}
	if updated.Name != "Desk Lamp" {
		t.Errorf("expected name 'Desk Lamp', got %q", updated.Name)
	}
	if !fileExists(item.ImagePath) {
		t.Error("expected blob to survive an update without image")
	}
}

func TestUpdateWithImageReplacesBlob(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	item, _ := repo.Add(ctx, model.ItemInput{Name: "Chair", Image: encodedImage("old")})

	updated, err := repo.Update(ctx, item.ID, model.ItemInput{Name: "Chair", Image: encodedImage("new")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ImagePath == item.ImagePath {
		t.Fatalf("expected a new image path, still %q", updated.ImagePath)
	}
	if fileExists(item.ImagePath) {
		t.Error("expected old blob to be deleted")
	}
	data, err := os.ReadFile(updated.ImagePath)
	if err != nil {
		t.Fatalf("reading new blob: %v", err)
	}
	if string(data) != "new" {
		t.Errorf("unexpected new blob contents %q", data)
	}
}

func TestUpdateMissingItem(t *testing.T) {
	repo, blobs := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.Update(ctx, 42, model.ItemInput{Name: "Ghost"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	_, err = repo.Update(ctx, 42, model.ItemInput{Name: "Ghost", Image: encodedImage("ghost")})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound with image, got %v", err)
	}
	entries, _ := os.ReadDir(blobs.Dir())
	if len(entries) != 0 {
		t.Errorf("expected the new blob to be cleaned up, found %d files", len(entries))
	}
}

func TestDeleteRemovesRowAndBlob(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	keep, _ := repo.Add(ctx, model.ItemInput{Name: "Keep"})
	gone, _ := repo.Add(ctx, model.ItemInput{Name: "Gone", Image: encodedImage("gone")})

	if err := repo.Delete(ctx, gone.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	items, _ := repo.List(ctx)
	if len(items) != 1 || items[0].ID != keep.ID {
		t.Errorf("expected only %d to remain, got %v", keep.ID, items)
	}
	if fileExists(gone.ImagePath) {
		t.Error("expected blob to be deleted with its row")
	}
}

func TestDeleteMissingItem(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	repo.Add(ctx, model.ItemInput{Name: "Stays"})

	if err := repo.Delete(ctx, 999); err != nil {
		t.Fatalf("Delete of missing id: %v", err)
	}
	items, _ := repo.List(ctx)
	if len(items) != 1 {
		t.Errorf("expected table unchanged, got %d items", len(items))
	}
}

func TestBlobRemovalFailureDoesNotBlockRows(t *testing.T) {
	repo, _ := newTestRepository(t, blob.WithFS(denyRemoveFS{}))
	ctx := context.Background()

	item, err := repo.Add(ctx, model.ItemInput{Name: "Sticky", Image: encodedImage("v1")})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	updated, err := repo.Update(ctx, item.ID, model.ItemInput{Name: "Sticky", Image: encodedImage("v2")})
	if err != nil {
		t.Fatalf("Update with failing remove: %v", err)
	}
	if updated.ImagePath == item.ImagePath {
		t.Error("expected image path to change even though the old blob could not be removed")
	}

	if err := repo.Delete(ctx, item.ID); err != nil {
		t.Fatalf("Delete with failing remove: %v", err)
	}
	if _, err := repo.Get(ctx, item.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected row to be gone, got %v", err)
	}
}

func backdate(t *testing.T, path string) {
	t.Helper()
	old := time.Now().Add(-2 * blob.SweepGrace)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("backdating %q: %v", path, err)
	}
}

func TestSweepOrphans(t *testing.T) {
	repo, blobs := newTestRepository(t)
	ctx := context.Background()

	item, _ := repo.Add(ctx, model.ItemInput{Name: "Referenced", Image: encodedImage("ref")})
	orphan, err := blobs.Save(encodedImage("orphan"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	backdate(t, item.ImagePath)
	backdate(t, orphan)

	removed, err := repo.SweepOrphans(ctx)
	if err != nil {
		t.Fatalf("SweepOrphans: %v", err)
	}
	if len(removed) != 1 || removed[0] != orphan {
		t.Errorf("expected only %q removed, got %v", orphan, removed)
	}
	if !fileExists(item.ImagePath) {
		t.Error("referenced blob was swept")
	}
}

func TestSweepSparesBlobOfPendingAdd(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "inventario.db")

	// Two repositories on one data directory, as with a running server and a
	// separate sweep command.
	open := func() (*Repository, *sql.DB) {
		database, err := db.Open(dbPath)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		t.Cleanup(func() { database.Close() })
		if err := db.EnsureSchema(database); err != nil {
			t.Fatalf("EnsureSchema: %v", err)
		}
		blobs, err := blob.New(filepath.Join(dir, blob.DirName), blob.WithClock(tickingClock()))
		if err != nil {
			t.Fatalf("blob.New: %v", err)
		}
		return NewRepository(database, blobs), database
	}
	server, serverDB := open()
	sweeper, _ := open()

	// The first half of an Add: blob written, row not yet inserted.
	path, err := server.blobs.Save(encodedImage("pending"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	removed, err := sweeper.SweepOrphans(ctx)
	if err != nil {
		t.Fatalf("SweepOrphans: %v", err)
	}
	if len(removed) != 0 {
		t.Errorf("expected nothing swept, got %v", removed)
	}

	item, err := insertItem(ctx, serverDB, model.ItemInput{Name: "Pending"}, path)
	if err != nil {
		t.Fatalf("insertItem: %v", err)
	}
	if !fileExists(item.ImagePath) {
		t.Fatalf("row references %q, which the sweep removed", item.ImagePath)
	}
}

func TestConcurrentAdds(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Add(ctx, model.ItemInput{Name: "Parallel", Image: encodedImage("p")}); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Add: %v", err)
	}
	items, _ := repo.List(ctx)
	if len(items) != n {
		t.Errorf("expected %d items, got %d", n, len(items))
	}
}
