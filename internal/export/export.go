// Package export writes the inventory table to a CSV file.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/erazemk/inventario/internal/model"
)

// FileName is the fixed name of the export file.
const FileName = "inventario_export.csv"

// TimeFormat matches SQLite's CURRENT_TIMESTAMP text format.
const TimeFormat = "2006-01-02 15:04:05"

// Header is the first row of every export.
var Header = []string{"ID", "Name", "Required Quantity", "Available Quantity", "Image Path", "Creation Timestamp"}

// Writer writes exports into a fixed directory.
type Writer struct {
	Dir string
}

// New returns a Writer for dir. An empty dir means the directory holding the
// running executable.
func New(dir string) (*Writer, error) {
	if dir == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("locating executable: %w", err)
		}
		dir = filepath.Dir(exe)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving export directory: %w", err)
	}
	return &Writer{Dir: abs}, nil
}

// Path returns the absolute path exports are written to.
func (w *Writer) Path() string {
	return filepath.Join(w.Dir, FileName)
}

// Write overwrites the export file with a header and one row per item and
// returns its absolute path. The file is written in place, not renamed.
func (w *Writer) Write(items []model.Item) (string, error) {
	path := w.Path()
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(Header); err != nil {
		return "", fmt.Errorf("writing export header: %w", err)
	}
	for _, item := range items {
		if err := cw.Write(record(item)); err != nil {
			return "", fmt.Errorf("writing export row %d: %w", item.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("flushing export: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing export file: %w", err)
	}
	return path, nil
}

func record(item model.Item) []string {
	created := ""
	if !item.CreatedAt.IsZero() {
		created = item.CreatedAt.Format(TimeFormat)
	}
	return []string{
		strconv.FormatInt(item.ID, 10),
		item.Name,
		strconv.Itoa(item.RequiredQuantity),
		strconv.Itoa(item.AvailableQuantity),
		item.ImagePath,
		created,
	}
}
