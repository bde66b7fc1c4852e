// Package report renders stock data as spreadsheets.
package report

import (
	"fmt"
	"io"
	"iter"

	"github.com/xuri/excelize/v2"
	"github.com/your-org/inventory-backend/internal/domain/inventory"
)

// ContentTypeXLSX is the media type of the workbooks written here
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var ledgerHeader = []any{"ID", "Timestamp (UTC)", "SKU", "Change", "Balance", "Reason Code", "Reason", "Reference"}

// WriteLedger writes one sheet named after the SKU with a row per ledger
// entry, in the order the sequence yields them. It stops at the first
// error from the sequence and returns the number of rows written.
func WriteLedger(w io.Writer, sku string, entries iter.Seq2[inventory.LedgerEntry, error]) (int, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := sheetName(sku)
	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), sheet); err != nil {
		return 0, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetSheetRow(sheet, "A1", &ledgerHeader); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return 0, fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return 0, fmt.Errorf("failed to style header: %w", err)
	}
	_ = f.SetColWidth(sheet, "B", "B", 22)
	_ = f.SetColWidth(sheet, "G", "G", 40)

	written := 0
	for e, err := range entries {
		if err != nil {
			return written, err
		}
		row := []any{
			e.ID,
			e.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			e.SKU,
			e.ChangeQty,
			e.BalanceQty,
			string(e.ReasonCode),
			e.Reason,
			e.ReferenceID,
		}
		cell, err := excelize.CoordinatesToCellName(1, written+2)
		if err != nil {
			return written, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return written, fmt.Errorf("failed to write row %d: %w", written+2, err)
		}
		written++
	}

	if err := f.Write(w); err != nil {
		return written, fmt.Errorf("failed to write workbook: %w", err)
	}
	return written, nil
}

// sheetName keeps the SKU within Excel's 31 character limit and drops
// characters sheet names cannot hold.
func sheetName(sku string) string {
	out := make([]rune, 0, len(sku))
	for _, r := range sku {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			continue
		}
		out = append(out, r)
		if len(out) == 31 {
			break
		}
	}
	if len(out) == 0 {
		return "Ledger"
	}
	return string(out)
}
