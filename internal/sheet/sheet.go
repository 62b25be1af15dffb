// Package sheet renders invoices into spreadsheet workbooks.
//
// Layout of the "Invoice" sheet:
//
//	A1  bill-to name
//	A2  bill-to zip code
//	A3… one row per detail line: description, unit cost, quantity
//
// The line amount is not written; it is kept on the record only.
package sheet

import (
	"fmt"

	"github.com/kylejryan/momo-invoice-backend/internal/models"

	"github.com/xuri/excelize/v2"
)

// SheetName is the name of the only worksheet in a rendered workbook.
const SheetName = "Invoice"

// FirstDetailRow is the 1-based row of the first detail line.
const FirstDetailRow = 3

// Grid is a row-major cell grid; Grid[0] is spreadsheet row 1.
type Grid [][]any

// Cell returns the value at the 1-based row and column, or nil when out of range.
func (g Grid) Cell(row, col int) any {
	if row < 1 || row > len(g) || col < 1 || col > len(g[row-1]) {
		return nil
	}
	return g[row-1][col-1]
}

// DetailRows returns the detail-line rows.
func (g Grid) DetailRows() [][]any {
	if len(g) < FirstDetailRow {
		return nil
	}
	return g[FirstDetailRow-1:]
}

// Render lays inv out as a cell grid.
func Render(inv models.Invoice) Grid {
	g := make(Grid, 0, FirstDetailRow-1+len(inv.Details))
	g = append(g,
		[]any{inv.BillToName()},
		[]any{inv.BillToZip()},
	)
	for _, d := range inv.Details {
		g = append(g, []any{d.Description, d.UnitCost, d.Quantity})
	}
	return g
}

// Workbook encodes g as an .xlsx workbook.
func Workbook(g Grid) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for i, row := range g {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = cellValue(v)
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderWorkbook renders inv and encodes the result in one step.
func RenderWorkbook(inv models.Invoice) ([]byte, error) {
	return Workbook(Render(inv))
}

// cellValue converts money to a float so the cell is numeric in Excel.
func cellValue(v any) any {
	if m, ok := v.(models.Money); ok {
		return m.InexactFloat64()
	}
	return v
}
