package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kylejryan/momo-invoice-backend/internal/models"
	"github.com/kylejryan/momo-invoice-backend/internal/sheet"

	"github.com/spf13/cobra"
)

func newRenderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "render <invoice.json> <out.xlsx>",
		Short: "Render an invoice JSON file into a workbook, as the transform function does",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(filepath.Clean(args[0]))
			if err != nil {
				return fmt.Errorf("read invoice: %w", err)
			}
			var inv models.Invoice
			if err := json.Unmarshal(data, &inv); err != nil {
				return fmt.Errorf("decode invoice: %w", err)
			}
			inv.Normalize()

			book, err := sheet.RenderWorkbook(inv)
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[1], book, 0o644); err != nil {
				return fmt.Errorf("write workbook: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d detail rows)\n", args[1], len(inv.Details))
			return nil
		},
	}
}
