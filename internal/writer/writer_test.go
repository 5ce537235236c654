package writer

import (
	"context"
	"database/sql"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/go-scripts/boardcrawl/internal/types"
)

func sampleResult() types.CrawlResult {
	at := time.Date(2025, 3, 1, 9, 30, 5, 0, time.Local)
	return types.CrawlResult{
		{
			SourceURL:  "https://cafe.daum.net/WHCRP/VmtR/1",
			BodyText:   "분류 1\n가격 15000원",
			PriceRaw:   "1",
			ImageURLs:  []string{"https://t1.daumcdn.net/a.jpg", "https://t1.daumcdn.net/b.jpg"},
			CapturedAt: at,
		},
		{
			SourceURL:  "https://cafe.daum.net/WHCRP/VmtR/2",
			BodyText:   "문의",
			PriceRaw:   "0",
			CapturedAt: at.Add(time.Second),
		},
	}
}

func TestRow(t *testing.T) {
	row := Row(sampleResult()[0])

	assert.Equal(t, []string{
		"https://cafe.daum.net/WHCRP/VmtR/1",
		"분류 1\n가격 15000원",
		"1",
		"https://t1.daumcdn.net/a.jpg,https://t1.daumcdn.net/b.jpg",
		"2025-03-01 09:30:05",
	}, row)
	assert.Len(t, row, len(Columns))
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"crawled_products.xlsx": FormatXLSX,
		"out/posts.CSV":         FormatCSV,
		"posts.db":              FormatSQLite,
		"posts.sqlite3":         FormatSQLite,
		"no-extension":          FormatXLSX,
	}
	for path, want := range tests {
		assert.Equal(t, want, FormatFromPath(path), path)
	}
}

func TestNew_UnknownFormat(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "x.bin"), Format("parquet"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestNew_CreatesParentDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")

	sink, err := New(filepath.Join(dir, "posts.csv"), "")
	require.NoError(t, err)

	assert.DirExists(t, dir)
	assert.IsType(t, &CSV{}, sink)
	assert.Equal(t, filepath.Join(dir, "posts.csv"), sink.Path())
}

func TestSinks_RejectEmptyResult(t *testing.T) {
	dir := t.TempDir()
	for _, sink := range []Sink{
		&XLSX{path: filepath.Join(dir, "a.xlsx"), sheet: "Sheet1"},
		&CSV{path: filepath.Join(dir, "a.csv")},
		&SQLite{path: filepath.Join(dir, "a.db")},
	} {
		assert.ErrorIs(t, sink.Write(context.Background(), nil), ErrNoRecords)
		assert.NoFileExists(t, sink.Path())
	}
}

func TestCSV_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.csv")
	sink, err := New(path, FormatCSV)
	require.NoError(t, err)

	require.NoError(t, sink.Write(context.Background(), sampleResult()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), utf8BOM))

	rows, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(data), utf8BOM))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Columns, rows[0])
	assert.Equal(t, "분류 1\n가격 15000원", rows[1][1])
	assert.Equal(t, "", rows[2][3])
}

func TestXLSX_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crawled_products.xlsx")
	sink, err := New(path, "")
	require.NoError(t, err)

	require.NoError(t, sink.Write(context.Background(), sampleResult()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Columns, rows[0])
	assert.Equal(t, "https://cafe.daum.net/WHCRP/VmtR/2", rows[2][0])
	assert.Equal(t, "2025-03-01 09:30:06", rows[2][4])
}

func TestSQLite_WriteAppendsBatches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.db")
	sink, err := New(path, "")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, sink.Write(ctx, sampleResult()))
	require.NoError(t, sink.Write(ctx, sampleResult()[:1]))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var rows, batches int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*), COUNT(DISTINCT batch_id) FROM crawled_posts`).Scan(&rows, &batches))
	assert.Equal(t, 3, rows)
	assert.Equal(t, 2, batches)

	var url string
	require.NoError(t, db.QueryRow(`SELECT external_url FROM crawled_posts WHERE position = 1`).Scan(&url))
	assert.Equal(t, "https://cafe.daum.net/WHCRP/VmtR/2", url)
}
