package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
)

// Options configures the Chrome process.
type Options struct {
	ExecPath   string
	ProfileDir string
	UserAgent  string
	Headless   bool
}

// Chrome is a Driver backed by a single chromedp tab.
type Chrome struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	logger      *log.Logger

	closeOnce sync.Once
	closeErr  error
}

var _ Driver = (*Chrome)(nil)

// NewChrome starts a browser process and opens the tab every later call
// drives. The caller must call Close.
func NewChrome(ctx context.Context, opts Options, logger *log.Logger) (*Chrome, error) {
	if logger == nil {
		logger = log.Default()
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("headless", opts.Headless),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.ProfileDir != "" {
		allocOpts = append(allocOpts, chromedp.UserDataDir(opts.ProfileDir))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, cancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(logger.Debugf),
		chromedp.WithErrorf(logger.Errorf),
	)

	// An empty Run starts the browser so startup failures surface here.
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return &Chrome{
		ctx:         browserCtx,
		cancel:      cancel,
		allocCancel: allocCancel,
		logger:      logger,
	}, nil
}

// Navigate loads url in the tab.
func (c *Chrome) Navigate(ctx context.Context, url string) error {
	runCtx, cancel := c.bind(ctx, 0)
	defer cancel()

	if err := chromedp.Run(runCtx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

// ClickWhenReady waits for selector to be visible and enabled, then clicks it.
func (c *Chrome) ClickWhenReady(ctx context.Context, selector string, timeout time.Duration) error {
	runCtx, cancel := c.bind(ctx, timeout)
	defer cancel()

	err := chromedp.Run(runCtx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.WaitEnabled(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("click %s: %w", selector, err)
	}
	return nil
}

// EnterFrame resolves the iframe or frame whose name or id is name.
func (c *Chrome) EnterFrame(ctx context.Context, name string, timeout time.Duration) (Frame, error) {
	runCtx, cancel := c.bind(ctx, timeout)
	defer cancel()

	var nodes []*cdp.Node
	err := chromedp.Run(runCtx, chromedp.Nodes(frameSelector(name), &nodes, chromedp.ByQuery))
	if err != nil || len(nodes) == 0 {
		return TopLevel, fmt.Errorf("%w: %s: %v", ErrFrameNotFound, name, err)
	}

	return Frame{Name: name, node: nodes[0]}, nil
}

// WaitPresent waits for selector to be present in frame.
func (c *Chrome) WaitPresent(ctx context.Context, frame Frame, selector string, timeout time.Duration) error {
	runCtx, cancel := c.bind(ctx, timeout)
	defer cancel()

	if err := chromedp.Run(runCtx, chromedp.WaitReady(selector, frame.queryOptions()...)); err != nil {
		return fmt.Errorf("wait for %s: %w", selector, err)
	}
	return nil
}

// Snapshot serializes the document addressed by frame.
func (c *Chrome) Snapshot(ctx context.Context, frame Frame) (Snapshot, error) {
	runCtx, cancel := c.bind(ctx, 0)
	defer cancel()

	var snap Snapshot
	err := chromedp.Run(runCtx,
		chromedp.Location(&snap.URL),
		chromedp.OuterHTML("html", &snap.HTML, frame.queryOptions()...),
	)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot: %w", err)
	}

	if doc := frame.contentDocument(); doc != nil && doc.DocumentURL != "" {
		snap.URL = doc.DocumentURL
	}

	return snap, nil
}

// Close shuts down the tab and the browser process.
func (c *Chrome) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = chromedp.Cancel(c.ctx)
		c.cancel()
		c.allocCancel()
	})
	return c.closeErr
}

// bind derives a context that carries the tab from c and the deadline and
// cancellation from ctx.
func (c *Chrome) bind(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithCancel(c.ctx)
	stop := context.AfterFunc(ctx, cancel)

	if timeout > 0 {
		var timeoutCancel context.CancelFunc
		runCtx, timeoutCancel = context.WithTimeout(runCtx, timeout)
		return runCtx, func() {
			timeoutCancel()
			stop()
			cancel()
		}
	}

	return runCtx, func() {
		stop()
		cancel()
	}
}

// frameSelector matches a frame element by name or id, the first match in
// document order wins.
func frameSelector(name string) string {
	var parts []string
	for _, tag := range []string{"iframe", "frame"} {
		parts = append(parts,
			fmt.Sprintf("%s[name=%q]", tag, name),
			fmt.Sprintf("%s[id=%q]", tag, name),
		)
	}
	return strings.Join(parts, ", ")
}

func (f Frame) queryOptions() []chromedp.QueryOption {
	opts := []chromedp.QueryOption{chromedp.ByQuery}
	if f.node != nil {
		opts = append(opts, chromedp.FromNode(f.node))
	}
	return opts
}

func (f Frame) contentDocument() *cdp.Node {
	if f.node == nil {
		return nil
	}
	return f.node.ContentDocument
}
