// Package extract turns a detail page into an ExtractionRecord.
package extract

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"golang.org/x/net/html"

	"github.com/go-scripts/boardcrawl/internal/browser"
	"github.com/go-scripts/boardcrawl/internal/types"
)

// DefaultPrice is used when the body text contains no digits.
const DefaultPrice = "0"

// excludedImageMarkers drop decorative images. Matching is a case-sensitive
// substring test on the whole URL.
var excludedImageMarkers = []string{"emoticon", "icon"}

// digitRun is greedy, so a match always spans a whole run of digits.
var digitRun = regexp.MustCompile(`[0-9]+`)

// Page is the part of the navigator the extractor drives.
type Page interface {
	GotoDetail(ctx context.Context, url string) error
	Snapshot(ctx context.Context) (browser.Snapshot, error)
}

// Config holds the detail page selectors.
type Config struct {
	TextSelector  string
	ImageSelector string
}

// Extractor visits detail pages and reads their content.
type Extractor struct {
	page   Page
	cfg    Config
	logger *log.Logger
	now    func() time.Time
}

// New creates an Extractor driving page.
func New(page Page, cfg Config, logger *log.Logger) *Extractor {
	if logger == nil {
		logger = log.Default()
	}
	return &Extractor{
		page:   page,
		cfg:    cfg,
		logger: logger.With("component", "extract"),
		now:    time.Now,
	}
}

// Extract opens link and builds its record. Any error means the link
// produced no record; the caller decides whether to continue.
func (e *Extractor) Extract(ctx context.Context, link types.CandidateLink) (types.ExtractionRecord, error) {
	if err := e.page.GotoDetail(ctx, link.URL); err != nil {
		return types.ExtractionRecord{}, &ItemError{URL: link.URL, Stage: "navigate", Cause: err}
	}

	snap, err := e.page.Snapshot(ctx)
	if err != nil {
		return types.ExtractionRecord{}, &ItemError{URL: link.URL, Stage: "snapshot", Cause: err}
	}

	rec, err := e.Parse(link.URL, snap)
	if err != nil {
		return types.ExtractionRecord{}, &ItemError{URL: link.URL, Stage: "parse", Cause: err}
	}
	return rec, nil
}

// Parse builds a record for sourceURL from a detail page snapshot.
func (e *Extractor) Parse(sourceURL string, snap browser.Snapshot) (types.ExtractionRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snap.HTML))
	if err != nil {
		return types.ExtractionRecord{}, fmt.Errorf("parse detail page: %w", err)
	}

	textNodes := doc.Find(e.cfg.TextSelector)
	textNodes.Find("br").ReplaceWithNodes(&html.Node{Type: html.TextNode, Data: "\n"})
	body := JoinText(textNodes)
	images := FilterImages(imageSources(doc.Find(e.cfg.ImageSelector), snap.URL))

	return types.ExtractionRecord{
		SourceURL:  sourceURL,
		BodyText:   body,
		PriceRaw:   BestEffortPrice(body),
		ImageURLs:  images,
		CapturedAt: e.now(),
	}, nil
}

// JoinText joins the trimmed text of every node with newlines. No nodes
// yield an empty string. Line breaks must already be text; Parse turns
// <br> into "\n" first.
func JoinText(nodes *goquery.Selection) string {
	parts := make([]string, 0, nodes.Length())
	nodes.Each(func(_ int, s *goquery.Selection) {
		parts = append(parts, strings.TrimSpace(s.Text()))
	})
	return strings.Join(parts, "\n")
}

// BestEffortPrice returns the first run of decimal digits in text, or
// DefaultPrice. It does not look for currency markers, so a
// category code or view count that precedes the price wins.
func BestEffortPrice(text string) string {
	if m := digitRun.FindString(text); m != "" {
		return m
	}
	return DefaultPrice
}

// FilterImages drops empty sources and any URL containing an excluded
// marker, preserving order.
func FilterImages(srcs []string) []string {
	out := make([]string, 0, len(srcs))
	for _, src := range srcs {
		if src == "" || isDecorative(src) {
			continue
		}
		out = append(out, src)
	}
	return out
}

func isDecorative(src string) bool {
	for _, marker := range excludedImageMarkers {
		if strings.Contains(src, marker) {
			return true
		}
	}
	return false
}

// imageSources reads the src of every node, resolving relative sources
// against pageURL. Nodes without a src are skipped.
func imageSources(nodes *goquery.Selection, pageURL string) []string {
	base, err := url.Parse(pageURL)
	if err != nil || pageURL == "" {
		base = nil
	}

	srcs := make([]string, 0, nodes.Length())
	nodes.Each(func(_ int, s *goquery.Selection) {
		src := strings.TrimSpace(s.AttrOr("src", ""))
		if src == "" {
			return
		}
		if base != nil {
			if ref, err := url.Parse(src); err == nil {
				src = base.ResolveReference(ref).String()
			}
		}
		srcs = append(srcs, src)
	})
	return srcs
}
