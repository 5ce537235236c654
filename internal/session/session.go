// Package session hands the browser to a human for login and resumes
// automated control once the login is confirmed.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/go-scripts/boardcrawl/internal/navigator"
)

// State is the authentication state of a Session.
type State int

const (
	LoggedOut State = iota
	AwaitingConfirmation
	Active
)

func (s State) String() string {
	switch s {
	case LoggedOut:
		return "logged-out"
	case AwaitingConfirmation:
		return "awaiting-confirmation"
	case Active:
		return "active"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session is the authenticated browser session. Only a Gate moves it
// between states, and an Active session stays Active.
type Session struct {
	state       State
	establishAt time.Time
}

// State returns the session state.
func (s *Session) State() State {
	return s.state
}

// EstablishedAt returns when the session became Active.
func (s *Session) EstablishedAt() time.Time {
	return s.establishAt
}

// Confirmer blocks until an operator signals that login has completed.
type Confirmer interface {
	Confirm(ctx context.Context) error
}

// Signal is a Confirmer fed by a channel; one receive confirms.
type Signal <-chan struct{}

// Confirm waits for a value on the channel or for ctx to end.
func (s Signal) Confirm(ctx context.Context) error {
	select {
	case <-s:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Config describes the login handoff.
type Config struct {
	LoginURL   string
	WarmupURLs []string

	LoginSettle   time.Duration
	ConfirmSettle time.Duration
	WarmupSettle  time.Duration

	// ConfirmTimeout bounds the wait for the operator. Zero waits forever.
	ConfirmTimeout time.Duration
}

// Gate drives the login handoff.
type Gate struct {
	nav       *navigator.Navigator
	confirmer Confirmer
	cfg       Config
	logger    *log.Logger
	now       func() time.Time
}

// NewGate creates a Gate that navigates with nav and waits on confirmer.
func NewGate(nav *navigator.Navigator, confirmer Confirmer, cfg Config, logger *log.Logger) *Gate {
	if logger == nil {
		logger = log.Default()
	}
	return &Gate{
		nav:       nav,
		confirmer: confirmer,
		cfg:       cfg,
		logger:    logger.With("component", "session"),
		now:       time.Now,
	}
}

// Establish opens the login page, waits for the operator and then visits
// the warm-up pages so the login applies to later requests. Any failure is
// fatal and no Session is returned. On success the navigator is left at
// the top-level document of the last warm-up page.
func (g *Gate) Establish(ctx context.Context) (*Session, error) {
	s := &Session{state: LoggedOut}

	g.logger.Info("opening login page", "url", g.cfg.LoginURL)
	if err := g.nav.Navigate(ctx, g.cfg.LoginURL); err != nil {
		return nil, fmt.Errorf("open login page: %w", err)
	}
	if err := navigator.Settle(ctx, g.cfg.LoginSettle); err != nil {
		return nil, err
	}

	s.state = AwaitingConfirmation
	g.logger.Info("waiting for login confirmation")
	if err := g.confirm(ctx); err != nil {
		return nil, err
	}

	g.logger.Info("login confirmed", "settle", g.cfg.ConfirmSettle)
	if err := navigator.Settle(ctx, g.cfg.ConfirmSettle); err != nil {
		return nil, err
	}

	for i, url := range g.cfg.WarmupURLs {
		g.logger.Info("visiting warm-up page", "step", i+1, "url", url)
		if err := g.nav.Navigate(ctx, url); err != nil {
			return nil, &WarmupError{URL: url, Cause: err}
		}
		if err := navigator.Settle(ctx, g.cfg.WarmupSettle); err != nil {
			return nil, &WarmupError{URL: url, Cause: err}
		}
	}

	s.state = Active
	s.establishAt = g.now()
	return s, nil
}

func (g *Gate) confirm(ctx context.Context) error {
	waitCtx := ctx
	if g.cfg.ConfirmTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, g.cfg.ConfirmTimeout)
		defer cancel()
	}

	if err := g.confirmer.Confirm(waitCtx); err != nil {
		return fmt.Errorf("%w: %w", ErrNotConfirmed, err)
	}
	return nil
}
