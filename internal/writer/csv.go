package writer

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/go-scripts/boardcrawl/internal/types"
)

// utf8BOM makes spreadsheet tools detect UTF-8 for Korean text.
const utf8BOM = "\ufeff"

// CSV writes a UTF-8 CSV file with a header row.
type CSV struct {
	path string
}

// Path returns the output file.
func (w *CSV) Path() string { return w.path }

// Write replaces the file at w.path.
func (w *CSV) Write(ctx context.Context, result types.CrawlResult) (err error) {
	if len(result) == 0 {
		return ErrNoRecords
	}

	file, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if _, err := file.WriteString(utf8BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(file)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, rec := range result {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := cw.Write(Row(rec)); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
