package writer

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/go-scripts/boardcrawl/internal/types"
)

// XLSX writes a spreadsheet with a header row and one row per record.
type XLSX struct {
	path  string
	sheet string
}

// Path returns the output file.
func (w *XLSX) Path() string { return w.path }

// Write replaces the file at w.path.
func (w *XLSX) Write(ctx context.Context, result types.CrawlResult) error {
	if len(result) == 0 {
		return ErrNoRecords
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := setRow(f, w.sheet, 1, Columns); err != nil {
		return err
	}
	for i, rec := range result {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := setRow(f, w.sheet, i+2, Row(rec)); err != nil {
			return err
		}
	}

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("failed to save %s: %w", w.path, err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}

	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}
