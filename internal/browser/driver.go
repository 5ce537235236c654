// Package browser defines the browser automation seam used by the crawler
// and its chromedp implementation.
package browser

import (
	"context"
	"errors"
	"time"

	"github.com/chromedp/cdproto/cdp"
)

// ErrFrameNotFound is returned by EnterFrame when no frame with the
// requested name exists in the current document.
var ErrFrameNotFound = errors.New("frame not found")

// Frame addresses the document that queries run against. The zero value is
// the top-level document.
type Frame struct {
	Name string
	node *cdp.Node
}

// TopLevel is the top-level document of the current page.
var TopLevel = Frame{}

// IsTopLevel reports whether f addresses the top-level document.
func (f Frame) IsTopLevel() bool {
	return f.Name == ""
}

// Snapshot is the serialized state of one document.
type Snapshot struct {
	URL  string
	HTML string
}

// Driver is a single browser session. It is owned by one flow of control;
// implementations need not be safe for concurrent use.
type Driver interface {
	// Navigate performs a full navigation of the top-level document.
	// Frames obtained before the call are no longer valid.
	Navigate(ctx context.Context, url string) error

	// ClickWhenReady waits up to timeout for selector to become visible
	// and enabled in the top-level document, then clicks it.
	ClickWhenReady(ctx context.Context, selector string, timeout time.Duration) error

	// EnterFrame looks up the frame named name in the top-level document.
	EnterFrame(ctx context.Context, name string, timeout time.Duration) (Frame, error)

	// WaitPresent waits up to timeout for selector to exist in frame.
	WaitPresent(ctx context.Context, frame Frame, selector string, timeout time.Duration) error

	// Snapshot returns the URL and HTML of the document addressed by frame.
	Snapshot(ctx context.Context, frame Frame) (Snapshot, error)

	// Close releases the browser. Calling it more than once is a no-op.
	Close() error
}
