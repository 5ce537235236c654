package session

import (
	"errors"
	"fmt"
)

// ErrNotConfirmed is returned when the operator never confirmed the login
// before the confirmation wait ended.
var ErrNotConfirmed = errors.New("login was not confirmed")

// WarmupError represents a failed warm-up navigation. It is fatal for the
// session; no partial session is kept.
type WarmupError struct {
	URL   string
	Cause error
}

func (e *WarmupError) Error() string {
	return fmt.Sprintf("warm-up navigation to %s failed: %v", e.URL, e.Cause)
}

func (e *WarmupError) Unwrap() error {
	return e.Cause
}
