// Package crawler runs one crawl of the board: login handoff, listing,
// per-post extraction and a single write of the collected result.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/go-scripts/boardcrawl/internal/browser"
	"github.com/go-scripts/boardcrawl/internal/config"
	"github.com/go-scripts/boardcrawl/internal/extract"
	"github.com/go-scripts/boardcrawl/internal/lister"
	"github.com/go-scripts/boardcrawl/internal/navigator"
	"github.com/go-scripts/boardcrawl/internal/progress"
	"github.com/go-scripts/boardcrawl/internal/session"
	"github.com/go-scripts/boardcrawl/internal/types"
	"github.com/go-scripts/boardcrawl/internal/writer"
)

// Configuration holds what a Crawler needs. Driver, Confirmer and Sink are
// required.
type Configuration struct {
	Config    *config.Config
	Driver    browser.Driver
	Confirmer session.Confirmer
	Sink      writer.Sink
	Progress  *progress.Tracker
	Logger    *log.Logger
}

// Report describes a finished run.
type Report struct {
	RunID      string
	Candidates []types.CandidateLink
	Records    types.CrawlResult
	Failures   []types.ItemFailure
	Output     string
	Written    bool
	StartedAt  time.Time
	LoggedInAt time.Time
	FinishedAt time.Time
}

// Crawler owns the browser driver for the duration of one run.
type Crawler struct {
	cfg       *config.Config
	driver    browser.Driver
	gate      *session.Gate
	nav       *navigator.Navigator
	lister    *lister.Lister
	extractor *extract.Extractor
	sink      writer.Sink
	progress  *progress.Tracker
	logger    *log.Logger
	now       func() time.Time

	releaseOnce sync.Once
}

// New creates a Crawler instance
func New(c Configuration) (*Crawler, error) {
	switch {
	case c.Config == nil:
		return nil, errors.New("crawler: config is required")
	case c.Driver == nil:
		return nil, errors.New("crawler: driver is required")
	case c.Confirmer == nil:
		return nil, errors.New("crawler: confirmer is required")
	case c.Sink == nil:
		return nil, errors.New("crawler: sink is required")
	}

	logger := c.Logger
	if logger == nil {
		logger = log.Default()
	}
	tracker := c.Progress
	if tracker == nil {
		tracker = progress.New(io.Discard, false)
	}

	cfg := c.Config
	nav := navigator.New(c.Driver, cfg.FrameName, navigator.Timing{
		ClickTimeout:   cfg.Timing.ClickTimeout,
		MenuSettle:     cfg.Timing.MenuSettle,
		FallbackSettle: cfg.Timing.FallbackSettle,
		DetailSettle:   cfg.Timing.DetailSettle,
		FrameTimeout:   cfg.Timing.FrameTimeout,
	}, logger)

	gate := session.NewGate(nav, c.Confirmer, session.Config{
		LoginURL:       cfg.LoginURL,
		WarmupURLs:     cfg.WarmupURLs,
		LoginSettle:    cfg.Timing.LoginSettle,
		ConfirmSettle:  cfg.Timing.ConfirmSettle,
		WarmupSettle:   cfg.Timing.WarmupSettle,
		ConfirmTimeout: cfg.Timing.ConfirmTimeout,
	}, logger)

	l := lister.New(nav, lister.Config{
		Container:    cfg.Selectors.ListContainer,
		Item:         cfg.Selectors.ListItem,
		Link:         cfg.Selectors.ListLink,
		DomainMarker: cfg.DomainMarker,
		Timeout:      cfg.Timing.ListTimeout,
	}, logger)

	x := extract.New(nav, extract.Config{
		TextSelector:  cfg.Selectors.DetailText,
		ImageSelector: cfg.Selectors.DetailImages,
	}, logger)

	return &Crawler{
		cfg:       cfg,
		driver:    c.Driver,
		gate:      gate,
		nav:       nav,
		lister:    l,
		extractor: x,
		sink:      c.Sink,
		progress:  tracker,
		logger:    logger.With("component", "crawler"),
		now:       time.Now,
	}, nil
}

// Run performs the crawl. Session, board and listing failures abort the
// run and nothing is written. A failed post is logged and skipped. The
// result is written once, and only when at least one post was extracted.
// The driver is released on every path, including cancellation.
//
// The returned Report is never nil, so partial progress can be shown even
// when err is set.
func (c *Crawler) Run(ctx context.Context) (*Report, error) {
	defer c.Release()

	report := &Report{
		RunID:     uuid.NewString(),
		Output:    c.sink.Path(),
		StartedAt: c.now(),
	}
	defer func() { report.FinishedAt = c.now() }()

	logger := c.logger.With("run", report.RunID)

	sess, err := c.gate.Establish(ctx)
	if err != nil {
		return report, fmt.Errorf("session: %w", err)
	}
	report.LoggedInAt = sess.EstablishedAt()
	logger.Info("session established")

	if err := c.nav.EnterBoard(ctx, c.cfg.MenuSelector, c.cfg.BoardURL); err != nil {
		return report, fmt.Errorf("board: %w", err)
	}

	candidates, err := c.lister.ListCandidates(ctx)
	if err != nil {
		return report, fmt.Errorf("listing: %w", err)
	}
	report.Candidates = candidates
	logger.Info("found posts", "count", len(candidates))

	records, failures, err := c.extractAll(ctx, logger, candidates)
	report.Records = records
	report.Failures = failures
	if err != nil {
		return report, err
	}

	if len(records) == 0 {
		logger.Warn("no data collected, nothing written")
		return report, nil
	}

	if err := c.sink.Write(ctx, records); err != nil {
		return report, fmt.Errorf("write %s: %w", c.sink.Path(), err)
	}
	report.Written = true
	logger.Info("crawl finished", "saved", len(records), "failed", len(failures), "file", c.sink.Path())
	return report, nil
}

// extractAll visits every candidate in order. Only cancellation of ctx
// stops the loop early.
func (c *Crawler) extractAll(ctx context.Context, logger *log.Logger, candidates []types.CandidateLink) (types.CrawlResult, []types.ItemFailure, error) {
	var (
		records  types.CrawlResult
		failures []types.ItemFailure
		total    = len(candidates)
	)

	// The spinner already shows the current post and shares the terminal.
	logPost := logger.Info
	if c.progress.Enabled() {
		logPost = logger.Debug
	}

	c.progress.Start(total)
	defer c.progress.Stop()

	for i, link := range candidates {
		if err := ctx.Err(); err != nil {
			return records, failures, err
		}

		logPost("processing post", "index", fmt.Sprintf("%d/%d", i+1, total), "url", link.URL)
		c.progress.Step(i, link.URL)

		rec, err := c.extractor.Extract(ctx, link)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				c.progress.Finish(false)
				return records, failures, ctxErr
			}
			logger.Error("failed to extract post", "index", i+1, "url", link.URL, "err", err)
			failures = append(failures, types.ItemFailure{URL: link.URL, Index: i, Err: err})
			c.progress.Finish(false)
			continue
		}

		records = append(records, rec)
		c.progress.Finish(true)
	}
	return records, failures, nil
}

// Release closes the browser driver. Only the first call has any effect.
func (c *Crawler) Release() {
	c.releaseOnce.Do(func() {
		if err := c.driver.Close(); err != nil {
			c.logger.Warn("failed to close browser", "err", err)
			return
		}
		c.logger.Debug("browser closed")
	})
}
