// Package lister collects the detail links of a board listing page.
package lister

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"

	"github.com/go-scripts/boardcrawl/internal/browser"
	"github.com/go-scripts/boardcrawl/internal/queue"
	"github.com/go-scripts/boardcrawl/internal/types"
)

// Page is the part of the navigator the lister reads from.
type Page interface {
	WaitPresent(ctx context.Context, selector string, timeout time.Duration) error
	Snapshot(ctx context.Context) (browser.Snapshot, error)
}

// Config holds the listing selectors and the domain filter.
type Config struct {
	Container    string
	Item         string
	Link         string
	DomainMarker string
	Timeout      time.Duration
}

// Lister enumerates candidate links on the page it is positioned on.
type Lister struct {
	page   Page
	cfg    Config
	logger *log.Logger
}

// New creates a Lister reading from page.
func New(page Page, cfg Config, logger *log.Logger) *Lister {
	if logger == nil {
		logger = log.Default()
	}
	return &Lister{page: page, cfg: cfg, logger: logger.With("component", "lister")}
}

// ListCandidates waits for the listing container and returns the unique
// detail links of its rows in page order. A container that never appears
// is an error; rows without a usable link are skipped.
func (l *Lister) ListCandidates(ctx context.Context) ([]types.CandidateLink, error) {
	if err := l.page.WaitPresent(ctx, l.cfg.Container, l.cfg.Timeout); err != nil {
		return nil, &ListingError{Selector: l.cfg.Container, Cause: err}
	}

	snap, err := l.page.Snapshot(ctx)
	if err != nil {
		return nil, &ListingError{Selector: l.cfg.Container, Cause: err}
	}

	links, err := l.Parse(snap)
	if err != nil {
		return nil, &ListingError{Selector: l.cfg.Item, Cause: err}
	}
	return links, nil
}

// Parse extracts candidate links from a listing snapshot.
func (l *Lister) Parse(snap browser.Snapshot) ([]types.CandidateLink, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snap.HTML))
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	var base *url.URL
	if snap.URL != "" {
		base, _ = url.Parse(snap.URL)
	}

	rows := doc.Find(l.cfg.Item)
	l.logger.Info("found listing rows", "count", rows.Length())

	seen := queue.New()
	rows.Each(func(i int, row *goquery.Selection) {
		href, err := rowLink(row, l.cfg.Link, base)
		if err != nil {
			l.logger.Debug("skipping row", "index", i, "err", err)
			return
		}
		if !strings.Contains(href, l.cfg.DomainMarker) {
			l.logger.Debug("skipping off-site link", "index", i, "url", href)
			return
		}
		seen.Add(href)
	})

	items := seen.Items()
	links := make([]types.CandidateLink, 0, len(items))
	for _, u := range items {
		links = append(links, types.CandidateLink{URL: u})
	}

	l.logger.Info("collected candidate links", "count", len(links))
	return links, nil
}

// rowLink reads the anchor target of one row, resolved against base.
func rowLink(row *goquery.Selection, selector string, base *url.URL) (string, error) {
	anchor := row.Find(selector).First()
	if anchor.Length() == 0 {
		return "", fmt.Errorf("no element matches %q", selector)
	}

	href, ok := anchor.Attr("href")
	href = strings.TrimSpace(href)
	if !ok || href == "" {
		return "", fmt.Errorf("%q has no href", selector)
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("invalid href %q: %w", href, err)
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	return ref.String(), nil
}
