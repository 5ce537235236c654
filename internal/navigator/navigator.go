// Package navigator tracks which document of the browser session the
// crawler is addressing and re-establishes it after every navigation.
package navigator

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/go-scripts/boardcrawl/internal/browser"
)

// State is the document the Navigator currently addresses.
type State int

const (
	TopLevel State = iota
	InNestedContent
)

func (s State) String() string {
	switch s {
	case TopLevel:
		return "top-level"
	case InNestedContent:
		return "nested-content"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Timing holds the waits applied around navigations.
type Timing struct {
	ClickTimeout   time.Duration
	MenuSettle     time.Duration
	FallbackSettle time.Duration
	DetailSettle   time.Duration
	FrameTimeout   time.Duration
}

// Navigator owns the browser driver's notion of the current document.
type Navigator struct {
	driver    browser.Driver
	frameName string
	timing    Timing
	logger    *log.Logger

	state State
	frame browser.Frame
}

// New creates a Navigator at TopLevel. frameName is the nested content
// frame re-entered after every navigation.
func New(driver browser.Driver, frameName string, timing Timing, logger *log.Logger) *Navigator {
	if logger == nil {
		logger = log.Default()
	}
	return &Navigator{
		driver:    driver,
		frameName: frameName,
		timing:    timing,
		logger:    logger.With("component", "navigator"),
		state:     TopLevel,
		frame:     browser.TopLevel,
	}
}

// State returns the current document state.
func (n *Navigator) State() State {
	return n.state
}

// Frame returns the document later queries should run against.
func (n *Navigator) Frame() browser.Frame {
	return n.frame
}

// Navigate performs a full navigation and leaves the Navigator at TopLevel.
func (n *Navigator) Navigate(ctx context.Context, url string) error {
	n.reset()
	return n.driver.Navigate(ctx, url)
}

// EnterBoard opens the board by clicking menuSelector, falling back to a
// direct navigation to fallbackURL when the menu never becomes clickable.
// Only a failed fallback navigation is returned as an error; a missing
// nested content frame leaves the Navigator at TopLevel.
func (n *Navigator) EnterBoard(ctx context.Context, menuSelector, fallbackURL string) error {
	n.logger.Info("opening board via menu", "selector", menuSelector)

	n.reset()
	if err := n.driver.ClickWhenReady(ctx, menuSelector, n.timing.ClickTimeout); err != nil {
		n.logger.Warn("menu click failed, navigating directly", "url", fallbackURL, "err", err)

		if err := n.Navigate(ctx, fallbackURL); err != nil {
			return fmt.Errorf("open board %s: %w", fallbackURL, err)
		}
		if err := Settle(ctx, n.timing.FallbackSettle); err != nil {
			return err
		}
	} else {
		n.logger.Info("menu click succeeded")
		if err := Settle(ctx, n.timing.MenuSettle); err != nil {
			return err
		}
	}

	n.EnterNestedContent(ctx, n.frameName)
	return nil
}

// EnterNestedContent switches into the frame called name. It never fails;
// the result reports whether the switch happened.
func (n *Navigator) EnterNestedContent(ctx context.Context, name string) bool {
	if name == "" {
		return false
	}

	frame, err := n.driver.EnterFrame(ctx, name, n.timing.FrameTimeout)
	if err != nil {
		n.logger.Warn("nested content not found, staying on top-level document", "frame", name, "err", err)
		n.reset()
		return false
	}

	n.frame = frame
	n.state = InNestedContent
	n.logger.Debug("entered nested content", "frame", name)
	return true
}

// GotoDetail navigates to url, waits for the page to settle and re-enters
// the nested content frame when it exists.
func (n *Navigator) GotoDetail(ctx context.Context, url string) error {
	if err := n.Navigate(ctx, url); err != nil {
		return err
	}
	if err := Settle(ctx, n.timing.DetailSettle); err != nil {
		return err
	}
	n.EnterNestedContent(ctx, n.frameName)
	return nil
}

// WaitPresent waits for selector in the current document.
func (n *Navigator) WaitPresent(ctx context.Context, selector string, timeout time.Duration) error {
	return n.driver.WaitPresent(ctx, n.frame, selector, timeout)
}

// Snapshot captures the current document.
func (n *Navigator) Snapshot(ctx context.Context) (browser.Snapshot, error) {
	return n.driver.Snapshot(ctx, n.frame)
}

func (n *Navigator) reset() {
	n.state = TopLevel
	n.frame = browser.TopLevel
}

// Settle waits for d or until ctx is done. A non-positive d returns at once.
func Settle(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
