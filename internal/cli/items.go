package cli

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/erazemk/inventario/internal/export"
	"github.com/erazemk/inventario/internal/model"
)

var (
	listJSON bool

	itemName      string
	itemRequired  int
	itemAvailable int
	itemImageFile string
	itemImageData string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all items, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, done, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer done()

		items, err := a.Commands.GetAllItems(cmd.Context())
		if err != nil {
			return err
		}
		if listJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(items)
		}
		printItems(cmd.OutOrStdout(), items)
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an item",
	RunE: func(cmd *cobra.Command, args []string) error {
		image, err := imagePayload()
		if err != nil {
			return err
		}
		a, done, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer done()

		item, err := a.Commands.AddItem(cmd.Context(), itemName, image, itemRequired, itemAvailable)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added item %d (%s)\n", item.ID, item.Name)
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update an item; a new image replaces the current one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		image, err := imagePayload()
		if err != nil {
			return err
		}
		a, done, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer done()

		item, err := a.Commands.UpdateItem(cmd.Context(), id, itemName, image, itemRequired, itemAvailable)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated item %d (%s)\n", item.ID, item.Name)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an item and its image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		a, done, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer done()

		if err := a.Commands.DeleteItem(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted item %d\n", id)
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print items as JSON")

	for _, c := range []*cobra.Command{addCmd, updateCmd} {
		c.Flags().StringVar(&itemName, "name", "", "Item name")
		c.Flags().IntVar(&itemRequired, "required", 0, "Required quantity")
		c.Flags().IntVar(&itemAvailable, "available", 0, "Available quantity")
		c.Flags().StringVar(&itemImageFile, "image", "", "Image file to attach")
		c.Flags().StringVar(&itemImageData, "image-data", "", "Image as base64 or a data URL")
		c.MarkFlagsMutuallyExclusive("image", "image-data")
		c.MarkFlagRequired("name")
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid item id %q", s)
	}
	return id, nil
}

// imagePayload returns the image flag as a base64 payload, or "" for none.
func imagePayload() (string, error) {
	if itemImageData != "" {
		return itemImageData, nil
	}
	if itemImageFile == "" {
		return "", nil
	}
	data, err := os.ReadFile(itemImageFile)
	if err != nil {
		return "", fmt.Errorf("reading image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func printItems(w io.Writer, items []model.Item) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No items found.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tREQUIRED\tAVAILABLE\tIMAGE\tCREATED")
	for _, it := range items {
		created := ""
		if !it.CreatedAt.IsZero() {
			created = it.CreatedAt.Format(export.TimeFormat)
		}
		image := "-"
		if it.HasImage() {
			image = "yes"
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\t%s\n", it.ID, it.Name, it.RequiredQuantity, it.AvailableQuantity, image, created)
	}
	tw.Flush()
}
