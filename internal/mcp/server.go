// Package mcp exposes the inventory commands as MCP tools over stdio.
package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erazemk/inventario/internal/model"
)

// Inventory is the command surface the tools call. *commands.Commands implements it.
type Inventory interface {
	GetAllItems(ctx context.Context) ([]model.Item, error)
	AddItem(ctx context.Context, name, image string, required, available int) (*model.Item, error)
	UpdateItem(ctx context.Context, id int64, name, image string, required, available int) (*model.Item, error)
	DeleteItem(ctx context.Context, id int64) error
	ExportToCSV(ctx context.Context) (string, error)
}

type handlerFunc func(ctx context.Context, inv Inventory, params map[string]any) (map[string]any, error)

// NewServer builds an MCP server with every inventory tool registered.
func NewServer(inv Inventory, version string) *mcpsdk.Server {
	s := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    "inventario",
		Version: version,
	}, nil)

	for _, t := range tools {
		addTool(s, inv, t.tool, t.handle)
	}
	return s
}

// Run serves the tools on stdin/stdout until ctx is done or the client disconnects.
func Run(ctx context.Context, inv Inventory, version string) error {
	return NewServer(inv, version).Run(ctx, &mcpsdk.StdioTransport{})
}

func addTool(s *mcpsdk.Server, inv Inventory, tool *mcpsdk.Tool, handle handlerFunc) {
	mcpsdk.AddTool(s, tool, func(ctx context.Context, req *mcpsdk.CallToolRequest, input map[string]any) (*mcpsdk.CallToolResult, map[string]any, error) {
		result, err := handle(ctx, inv, input)
		if err != nil {
			return &mcpsdk.CallToolResult{
				Content: []mcpsdk.Content{
					&mcpsdk.TextContent{Text: fmt.Sprintf("Error: %v", err)},
				},
				IsError: true,
			}, nil, nil
		}
		return nil, result, nil
	})
}

var itemProperties = map[string]any{
	"name":               map[string]any{"type": "string", "description": "Item name"},
	"image_base64":       map[string]any{"type": "string", "description": "Optional image as base64 or a data URL"},
	"required_quantity":  map[string]any{"type": "integer", "description": "Quantity needed"},
	"available_quantity": map[string]any{"type": "integer", "description": "Quantity on hand"},
}

func withID(props map[string]any) map[string]any {
	out := map[string]any{"id": map[string]any{"type": "integer", "description": "Item id"}}
	for k, v := range props {
		out[k] = v
	}
	return out
}

var tools = []struct {
	tool   *mcpsdk.Tool
	handle handlerFunc
}{
	{
		tool: &mcpsdk.Tool{
			Name:        "get_all_items",
			Description: "List every inventory item, newest first.",
			InputSchema: map[string]any{"type": "object", "properties": map[string]any{}},
		},
		handle: HandleGetAllItems,
	},
	{
		tool: &mcpsdk.Tool{
			Name:        "add_item",
			Description: "Add an inventory item, optionally with an image.",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": itemProperties,
				"required":   []string{"name"},
			},
		},
		handle: HandleAddItem,
	},
	{
		tool: &mcpsdk.Tool{
			Name:        "update_item",
			Description: "Update an item's name and quantities. Supplying an image replaces the current one.",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": withID(itemProperties),
				"required":   []string{"id", "name"},
			},
		},
		handle: HandleUpdateItem,
	},
	{
		tool: &mcpsdk.Tool{
			Name:        "delete_item",
			Description: "Delete an item and its image.",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{"id": map[string]any{"type": "integer", "description": "Item id"}},
				"required":   []string{"id"},
			},
		},
		handle: HandleDeleteItem,
	},
	{
		tool: &mcpsdk.Tool{
			Name:        "export_to_csv",
			Description: "Export the inventory to inventario_export.csv next to the executable and return its path.",
			InputSchema: map[string]any{"type": "object", "properties": map[string]any{}},
		},
		handle: HandleExportToCSV,
	},
}
