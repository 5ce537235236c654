package progress

import (
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/briandowns/spinner"
)

// maxURLWidth bounds the URL shown next to the spinner.
const maxURLWidth = 60

// Tracker shows which detail page is being processed. A disabled Tracker
// does nothing.
type Tracker struct {
	spinner *spinner.Spinner
	total   int
	current int
	url     string
	failed  int
}

// New creates a tracker writing to w. When enabled is false the tracker
// is a no-op.
func New(w io.Writer, enabled bool) *Tracker {
	if !enabled {
		return &Tracker{}
	}
	return &Tracker{
		spinner: spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(w)),
	}
}

// Enabled reports whether the tracker draws anything.
func (p *Tracker) Enabled() bool {
	return p.spinner != nil
}

// Start begins tracking total items.
func (p *Tracker) Start(total int) {
	p.total = total
	p.current = 0
	p.url = ""
	p.failed = 0
	if p.spinner == nil {
		return
	}
	p.setSuffix()
	p.spinner.Start()
}

// Step marks item index (zero-based) as being processed.
func (p *Tracker) Step(index int, rawURL string) {
	p.current = index + 1
	p.url = rawURL
	p.setSuffix()
}

// Finish records the outcome of the current item. Failures are shown next
// to the spinner until the run ends.
func (p *Tracker) Finish(ok bool) {
	if ok {
		return
	}
	p.failed++
	p.setSuffix()
}

// Stop ends tracking.
func (p *Tracker) Stop() {
	if p.spinner == nil {
		return
	}
	p.spinner.Stop()
}

// setSuffix updates the spinner text under the spinner's lock, since the
// spinner repaints from its own goroutine.
func (p *Tracker) setSuffix() {
	if p.spinner == nil {
		return
	}
	p.spinner.Lock()
	p.spinner.Suffix = p.suffix()
	p.spinner.Unlock()
}

func (p *Tracker) suffix() string {
	s := fmt.Sprintf(" [%d/%d]", p.current, p.total)
	if p.url != "" {
		s += " " + shortURL(p.url)
	}
	if p.failed > 0 {
		s += fmt.Sprintf(" (%d failed)", p.failed)
	}
	return s
}

// shortURL keeps the host and the tail of the path.
func shortURL(rawURL string) string {
	if len(rawURL) <= maxURLWidth {
		return rawURL
	}

	u, err := url.Parse(rawURL)
	if err == nil && u.Host != "" {
		rest := u.RequestURI()
		keep := maxURLWidth - len(u.Host) - 3
		if keep > 0 && len(rest) > keep {
			return u.Host + "..." + rest[len(rest)-keep:]
		}
		return u.Host + rest
	}
	return "..." + rawURL[len(rawURL)-maxURLWidth:]
}
