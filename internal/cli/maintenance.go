package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the inventory to inventario_export.csv",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, done, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer done()

		path, err := a.Commands.ExportToCSV(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove image files no item references",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, done, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer done()

		removed, err := a.Commands.SweepOrphanedImages(cmd.Context())
		if err != nil {
			return err
		}
		for _, p := range removed {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d orphaned image(s)\n", len(removed))
		return nil
	},
}
