package cli

import (
	"github.com/spf13/cobra"

	"github.com/erazemk/inventario/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the inventario MCP server (stdio transport)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, done, err := openApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer done()

		return mcp.Run(cmd.Context(), a.Commands, Version)
	},
}
