package mcp

import (
	"context"
	"fmt"
	"math"

	"github.com/erazemk/inventario/internal/export"
	"github.com/erazemk/inventario/internal/model"
)

func itemMap(item *model.Item) map[string]any {
	m := map[string]any{
		"id":                 item.ID,
		"name":               item.Name,
		"required_quantity":  item.RequiredQuantity,
		"available_quantity": item.AvailableQuantity,
	}
	if item.ImagePath != "" {
		m["image_path"] = item.ImagePath
	}
	if !item.CreatedAt.IsZero() {
		m["created_at"] = item.CreatedAt.Format(export.TimeFormat)
	}
	return m
}

// intArg reads an integer argument. JSON numbers arrive as float64; values
// with a fractional part are rejected rather than truncated.
func intArg(params map[string]any, key string) (v int64, ok bool, err error) {
	switch n := params[key].(type) {
	case nil:
		return 0, false, nil
	case float64:
		if n != math.Trunc(n) {
			return 0, false, fmt.Errorf("%s must be an integer", key)
		}
		return int64(n), true, nil
	case int:
		return int64(n), true, nil
	case int64:
		return n, true, nil
	}
	return 0, false, fmt.Errorf("%s must be an integer", key)
}

func requiredID(params map[string]any) (int64, error) {
	id, ok, err := intArg(params, "id")
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("id is required")
	}
	return id, nil
}

func itemArgs(params map[string]any) (name, image string, required, available int, err error) {
	name, ok := params["name"].(string)
	if !ok {
		return "", "", 0, 0, fmt.Errorf("name is required")
	}
	image, _ = params["image_base64"].(string)
	r, _, err := intArg(params, "required_quantity")
	if err != nil {
		return "", "", 0, 0, err
	}
	a, _, err := intArg(params, "available_quantity")
	if err != nil {
		return "", "", 0, 0, err
	}
	return name, image, int(r), int(a), nil
}

// HandleGetAllItems handles the get_all_items tool call.
func HandleGetAllItems(ctx context.Context, inv Inventory, _ map[string]any) (map[string]any, error) {
	items, err := inv.GetAllItems(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(items))
	for i := range items {
		out = append(out, itemMap(&items[i]))
	}
	return map[string]any{"items": out}, nil
}

// HandleAddItem handles the add_item tool call.
func HandleAddItem(ctx context.Context, inv Inventory, params map[string]any) (map[string]any, error) {
	name, image, required, available, err := itemArgs(params)
	if err != nil {
		return nil, err
	}
	item, err := inv.AddItem(ctx, name, image, required, available)
	if err != nil {
		return nil, err
	}
	return itemMap(item), nil
}

// HandleUpdateItem handles the update_item tool call.
func HandleUpdateItem(ctx context.Context, inv Inventory, params map[string]any) (map[string]any, error) {
	id, err := requiredID(params)
	if err != nil {
		return nil, err
	}
	name, image, required, available, err := itemArgs(params)
	if err != nil {
		return nil, err
	}
	item, err := inv.UpdateItem(ctx, id, name, image, required, available)
	if err != nil {
		return nil, err
	}
	return itemMap(item), nil
}

// HandleDeleteItem handles the delete_item tool call.
func HandleDeleteItem(ctx context.Context, inv Inventory, params map[string]any) (map[string]any, error) {
	id, err := requiredID(params)
	if err != nil {
		return nil, err
	}
	if err := inv.DeleteItem(ctx, id); err != nil {
		return nil, err
	}
	return map[string]any{"deleted": id}, nil
}

// HandleExportToCSV handles the export_to_csv tool call.
func HandleExportToCSV(ctx context.Context, inv Inventory, _ map[string]any) (map[string]any, error) {
	path, err := inv.ExportToCSV(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{"path": path}, nil
}
