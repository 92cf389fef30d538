package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/erazemk/inventario/internal/model"
)

// ErrNotFound is returned when an item does not exist.
var ErrNotFound = errors.New("item not found")

// ErrNoImage is returned when an item has no image.
var ErrNoImage = errors.New("item has no image")

const itemColumns = `id, name, image_path, required_quantity, available_quantity, created_at`

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*model.Item, error) {
	item := &model.Item{}
	var imagePath sql.NullString
	var createdAt sql.NullTime
	if err := s.Scan(&item.ID, &item.Name, &imagePath, &item.RequiredQuantity, &item.AvailableQuantity, &createdAt); err != nil {
		return nil, err
	}
	item.ImagePath = imagePath.String
	if createdAt.Valid {
		item.CreatedAt = createdAt.Time
	}
	return item, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// getItem returns an item by ID, or nil if there is none.
func getItem(ctx context.Context, q querier, id int64) (*model.Item, error) {
	item, err := scanItem(q.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM inventory WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// listItems returns all items, newest first. The id breaks ties between rows
// created within the same second.
func listItems(ctx context.Context, q querier) ([]model.Item, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM inventory ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return items, nil
}

// insertItem inserts a row and returns it as stored.
func insertItem(ctx context.Context, q querier, in model.ItemInput, imagePath string) (*model.Item, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO inventory (name, image_path, required_quantity, available_quantity) VALUES (?, ?, ?, ?)`,
		in.Name, nullable(imagePath), in.RequiredQuantity, in.AvailableQuantity,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	item, err := getItem(ctx, q, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("reading created item %d: %w", id, ErrNotFound)
	}
	return item, nil
}

// updateItemFields updates name and quantities, leaving image_path alone.
func updateItemFields(ctx context.Context, q querier, id int64, in model.ItemInput) error {
	_, err := q.ExecContext(ctx,
		`UPDATE inventory SET name = ?, required_quantity = ?, available_quantity = ? WHERE id = ?`,
		in.Name, in.RequiredQuantity, in.AvailableQuantity, id,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return nil
}

// updateItemWithImage updates every mutable column including image_path.
func updateItemWithImage(ctx context.Context, q querier, id int64, in model.ItemInput, imagePath string) error {
	_, err := q.ExecContext(ctx,
		`UPDATE inventory SET name = ?, image_path = ?, required_quantity = ?, available_quantity = ? WHERE id = ?`,
		in.Name, nullable(imagePath), in.RequiredQuantity, in.AvailableQuantity, id,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return nil
}

// imagePathOf returns the image path of an item. A missing row or a row
// without an image both yield "".
func imagePathOf(ctx context.Context, q querier, id int64) (string, error) {
	var path sql.NullString
	err := q.QueryRowContext(ctx, `SELECT image_path FROM inventory WHERE id = ?`, id).Scan(&path)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting item image path: %w", err)
	}
	return path.String, nil
}

// deleteItem hard-deletes a row. Deleting a missing id affects nothing.
func deleteItem(ctx context.Context, q querier, id int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM inventory WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

// imagePaths returns the set of image paths referenced by any row.
func imagePaths(ctx context.Context, q querier) (map[string]bool, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT image_path FROM inventory WHERE image_path IS NOT NULL AND image_path != ''`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing image paths: %w", err)
	}
	defer rows.Close()

	paths := make(map[string]bool)
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scanning image path: %w", err)
		}
		paths[p] = true
	}
	return paths, rows.Err()
}
