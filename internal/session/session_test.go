package session

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/boardcrawl/internal/browser/browsertest"
	"github.com/go-scripts/boardcrawl/internal/navigator"
)

const loginURL = "https://accounts.kakao.com/login?continue=https://cafe.daum.net/"

var warmups = []string{"https://top.cafe.daum.net/", "https://cafe.daum.net/WHCRP"}

func confirmed() Signal {
	ch := make(chan struct{}, 1)
	ch <- struct{}{}
	return ch
}

func newGate(d *browsertest.Driver, c Confirmer, cfg Config) (*Gate, *navigator.Navigator) {
	logger := log.New(io.Discard)
	nav := navigator.New(d, "down", navigator.Timing{}, logger)
	return NewGate(nav, c, cfg, logger), nav
}

func TestGate_Establish(t *testing.T) {
	d := browsertest.New(nil)
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	g, nav := newGate(d, confirmed(), Config{LoginURL: loginURL, WarmupURLs: warmups})
	g.now = func() time.Time { return fixed }

	s, err := g.Establish(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Active, s.State())
	assert.Equal(t, fixed, s.EstablishedAt())
	assert.Equal(t, append([]string{loginURL}, warmups...), d.History())
	assert.Equal(t, navigator.TopLevel, nav.State())
}

func TestGate_WaitsForConfirmationBeforeWarmup(t *testing.T) {
	d := browsertest.New(nil)
	ch := make(chan struct{})
	g, _ := newGate(d, Signal(ch), Config{LoginURL: loginURL, WarmupURLs: warmups})

	done := make(chan error, 1)
	go func() {
		_, err := g.Establish(context.Background())
		done <- err
	}()

	select {
	case err := <-done:
		t.Fatalf("Establish returned before confirmation: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	ch <- struct{}{}
	require.NoError(t, <-done)
	assert.Equal(t, "https://cafe.daum.net/WHCRP", d.Current())
}

func TestGate_WarmupFailureIsFatal(t *testing.T) {
	d := browsertest.New(nil)
	d.NavigateErrors[warmups[0]] = browsertest.ErrInjected
	g, _ := newGate(d, confirmed(), Config{LoginURL: loginURL, WarmupURLs: warmups})

	s, err := g.Establish(context.Background())

	assert.Nil(t, s)
	var warmErr *WarmupError
	require.ErrorAs(t, err, &warmErr)
	assert.Equal(t, warmups[0], warmErr.URL)
	assert.ErrorIs(t, err, browsertest.ErrInjected)
	assert.NotContains(t, d.History(), warmups[1], "no further warm-up after a failure")
}

func TestGate_LoginPageFailure(t *testing.T) {
	d := browsertest.New(nil)
	d.NavigateErrors[loginURL] = browsertest.ErrInjected
	g, _ := newGate(d, confirmed(), Config{LoginURL: loginURL})

	_, err := g.Establish(context.Background())
	assert.ErrorIs(t, err, browsertest.ErrInjected)
}

func TestGate_ConfirmTimeout(t *testing.T) {
	d := browsertest.New(nil)
	g, _ := newGate(d, Signal(make(chan struct{})), Config{
		LoginURL:       loginURL,
		WarmupURLs:     warmups,
		ConfirmTimeout: 20 * time.Millisecond,
	})

	_, err := g.Establish(context.Background())

	assert.ErrorIs(t, err, ErrNotConfirmed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, []string{loginURL}, d.History())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "logged-out", LoggedOut.String())
	assert.Equal(t, "awaiting-confirmation", AwaitingConfirmation.String())
	assert.Equal(t, "active", Active.String())
}
