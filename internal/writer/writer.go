// Package writer persists a finished crawl result as a table.
package writer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-scripts/boardcrawl/internal/types"
)

// TimeLayout formats crawled_at.
const TimeLayout = "2006-01-02 15:04:05"

// Columns is the header of every tabular output.
var Columns = []string{"external_url", "full_text", "price_raw", "image_files", "crawled_at"}

var (
	// ErrNoRecords is returned when asked to write an empty result.
	ErrNoRecords = errors.New("no records to write")
	// ErrUnknownFormat is returned for an unsupported output format.
	ErrUnknownFormat = errors.New("unknown output format")
)

// Format names an output encoding.
type Format string

const (
	FormatXLSX   Format = "xlsx"
	FormatCSV    Format = "csv"
	FormatSQLite Format = "sqlite"
)

// Sink receives the whole crawl result once.
type Sink interface {
	Write(ctx context.Context, result types.CrawlResult) error
	Path() string
}

// New returns the sink for format writing to path. An empty format is
// inferred from the file extension. The parent directory is created.
func New(path string, format Format) (Sink, error) {
	if format == "" {
		format = FormatFromPath(path)
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	switch format {
	case FormatXLSX:
		return &XLSX{path: path, sheet: "Sheet1"}, nil
	case FormatCSV:
		return &CSV{path: path}, nil
	case FormatSQLite:
		return &SQLite{path: path}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// FormatFromPath infers the format from the extension of path.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	default:
		return FormatXLSX
	}
}

// Row renders a record in Columns order.
func Row(rec types.ExtractionRecord) []string {
	return []string{
		rec.SourceURL,
		rec.BodyText,
		rec.PriceRaw,
		strings.Join(rec.ImageURLs, ","),
		rec.CapturedAt.Local().Format(TimeLayout),
	}
}
