// Package browsertest provides an in-memory browser.Driver that serves HTML
// fixtures, for testing code that drives a browser.
package browsertest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/go-scripts/boardcrawl/internal/browser"
)

// Page is a fixture served for one URL.
type Page struct {
	HTML string
	// Frames maps a frame name to the HTML of its document.
	Frames map[string]string
}

// Driver is a scripted browser.Driver. Fields may be set before use; the
// driver is not safe for concurrent use.
type Driver struct {
	Pages map[string]Page

	// Links maps a clickable selector to the URL the click navigates to.
	Links map[string]string

	// NavigateErrors fails navigation to the given URLs.
	NavigateErrors map[string]error

	// SnapshotErrors fails snapshots taken while the given URL is loaded.
	SnapshotErrors map[string]error

	mu         sync.Mutex
	current    string
	history    []string
	closeCalls int
}

var _ browser.Driver = (*Driver)(nil)

// New returns a driver serving pages.
func New(pages map[string]Page) *Driver {
	return &Driver{
		Pages:          pages,
		Links:          map[string]string{},
		NavigateErrors: map[string]error{},
		SnapshotErrors: map[string]error{},
	}
}

// Navigate loads url. Unknown URLs load an empty document.
func (d *Driver) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.history = append(d.history, url)
	if err := d.NavigateErrors[url]; err != nil {
		return err
	}
	d.current = url
	return nil
}

// ClickWhenReady follows the link registered for selector.
func (d *Driver) ClickWhenReady(ctx context.Context, selector string, _ time.Duration) error {
	d.mu.Lock()
	target, ok := d.Links[selector]
	d.mu.Unlock()

	if !ok {
		return fmt.Errorf("click %s: %w", selector, context.DeadlineExceeded)
	}
	return d.Navigate(ctx, target)
}

// EnterFrame resolves a frame of the current page.
func (d *Driver) EnterFrame(_ context.Context, name string, _ time.Duration) (browser.Frame, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.Pages[d.current].Frames[name]; !ok {
		return browser.TopLevel, fmt.Errorf("%w: %s", browser.ErrFrameNotFound, name)
	}
	return browser.Frame{Name: name}, nil
}

// WaitPresent fails immediately when selector matches nothing.
func (d *Driver) WaitPresent(_ context.Context, frame browser.Frame, selector string, _ time.Duration) error {
	d.mu.Lock()
	html := d.document(frame)
	d.mu.Unlock()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return err
	}
	if doc.Find(selector).Length() == 0 {
		return fmt.Errorf("wait for %s: %w", selector, context.DeadlineExceeded)
	}
	return nil
}

// Snapshot returns the fixture for the current page or one of its frames.
func (d *Driver) Snapshot(_ context.Context, frame browser.Frame) (browser.Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.SnapshotErrors[d.current]; err != nil {
		return browser.Snapshot{}, err
	}
	return browser.Snapshot{URL: d.current, HTML: d.document(frame)}, nil
}

// Close counts calls.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closeCalls++
	return nil
}

// Current returns the loaded URL.
func (d *Driver) Current() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// History returns every URL navigation was attempted for, in order.
func (d *Driver) History() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.history...)
}

// CloseCalls returns how many times Close was called.
func (d *Driver) CloseCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closeCalls
}

// ErrInjected is a convenience error for failure fixtures.
var ErrInjected = errors.New("injected failure")

func (d *Driver) document(frame browser.Frame) string {
	page := d.Pages[d.current]
	if frame.IsTopLevel() {
		return page.HTML
	}
	return page.Frames[frame.Name]
}
