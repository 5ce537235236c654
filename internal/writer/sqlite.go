package writer

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/go-scripts/boardcrawl/internal/types"
)

const createPostsTable = `
CREATE TABLE IF NOT EXISTS crawled_posts (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	batch_id     TEXT NOT NULL,
	position     INTEGER NOT NULL,
	external_url TEXT NOT NULL,
	full_text    TEXT NOT NULL,
	price_raw    TEXT NOT NULL,
	image_files  TEXT NOT NULL,
	crawled_at   TEXT NOT NULL
)`

const createBatchIndex = `CREATE INDEX IF NOT EXISTS idx_crawled_posts_batch ON crawled_posts(batch_id)`

// SQLite appends each result to the crawled_posts table as one batch.
type SQLite struct {
	path string
}

// Path returns the database file.
func (w *SQLite) Path() string { return w.path }

// Write inserts result in a single transaction under a new batch id.
func (w *SQLite) Write(ctx context.Context, result types.CrawlResult) error {
	if len(result) == 0 {
		return ErrNoRecords
	}

	db, err := sql.Open("sqlite", w.path+"?mode=rwc")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	for _, ddl := range []string{createPostsTable, createBatchIndex} {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("failed to create tables: %w", err)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO crawled_posts
			(batch_id, position, external_url, full_text, price_raw, image_files, crawled_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	batch := uuid.NewString()
	for i, rec := range result {
		row := Row(rec)
		if _, err := stmt.ExecContext(ctx, batch, i, row[0], row[1], row[2], row[3], row[4]); err != nil {
			return fmt.Errorf("failed to insert %s: %w", rec.SourceURL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
