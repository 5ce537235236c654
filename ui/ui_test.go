package ui

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/boardcrawl/internal/crawler"
	"github.com/go-scripts/boardcrawl/internal/types"
)

func TestPrompt_ConfirmsOnEnter(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompt(strings.NewReader("\n"), &out)

	require.NoError(t, p.Confirm(context.Background()))
	assert.Contains(t, out.String(), "Login required")
	assert.Contains(t, out.String(), "Press Enter")
}

func TestPrompt_LineWithoutNewline(t *testing.T) {
	p := NewPrompt(strings.NewReader("ok"), io.Discard)
	assert.NoError(t, p.Confirm(context.Background()))
}

func TestPrompt_ClosedInput(t *testing.T) {
	p := NewPrompt(strings.NewReader(""), io.Discard)
	assert.ErrorIs(t, p.Confirm(context.Background()), ErrInputClosed)
}

func TestPrompt_HonoursContext(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := NewPrompt(r, io.Discard).Confirm(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRenderSummary(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	report := &crawler.Report{
		RunID: "run-1",
		Candidates: []types.CandidateLink{
			{URL: "https://cafe.daum.net/WHCRP/VmtR/1"},
			{URL: "https://cafe.daum.net/WHCRP/VmtR/2"},
		},
		Records: types.CrawlResult{{
			SourceURL: "https://cafe.daum.net/WHCRP/VmtR/1",
			PriceRaw:  "15000",
			ImageURLs: []string{"a.jpg", "b.jpg"},
		}},
		Failures: []types.ItemFailure{{
			URL:   "https://cafe.daum.net/WHCRP/VmtR/2",
			Index: 1,
			Err:   errors.New("timeout"),
		}},
		Output:     "crawled_products.xlsx",
		Written:    true,
		StartedAt:  start,
		FinishedAt: start.Add(3 * time.Second),
	}

	var out bytes.Buffer
	RenderSummary(&out, report)
	got := out.String()

	assert.Contains(t, got, "https://cafe.daum.net/WHCRP/VmtR/1")
	assert.Contains(t, got, "15000")
	assert.Contains(t, got, "Failed posts")
	assert.Contains(t, got, "timeout")
	assert.Contains(t, got, "2 found, 1 collected, 1 failed")
	assert.Contains(t, got, "Saved 1 posts to crawled_products.xlsx")
}

func TestRenderSummary_NothingCollected(t *testing.T) {
	var out bytes.Buffer
	RenderSummary(&out, &crawler.Report{RunID: "run-2", LoggedInAt: time.Now()})

	assert.Contains(t, out.String(), "No data collected, nothing was written.")
	assert.Contains(t, out.String(), "logged in at")
	assert.NotContains(t, out.String(), "URL")
}

func TestRenderSummary_FailedRuns(t *testing.T) {
	var out bytes.Buffer
	RenderSummary(&out, &crawler.Report{RunID: "run-3"})
	assert.Contains(t, out.String(), "Login was not completed, nothing was written.")

	out.Reset()
	RenderSummary(&out, &crawler.Report{
		RunID:      "run-4",
		LoggedInAt: time.Now(),
		Records:    types.CrawlResult{{SourceURL: "https://cafe.daum.net/WHCRP/VmtR/1", PriceRaw: "0"}},
		Output:     "crawled_products.xlsx",
	})
	assert.Contains(t, out.String(), "https://cafe.daum.net/WHCRP/VmtR/1")
	assert.Contains(t, out.String(), "Run stopped, 1 collected posts were not written.")
}

func TestRenderSummary_NilReport(t *testing.T) {
	var out bytes.Buffer
	RenderSummary(&out, nil)
	assert.Empty(t, out.String())
}
