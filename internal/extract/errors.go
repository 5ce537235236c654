package extract

import "fmt"

// ItemError is a failure to extract one detail page. Stage names the step
// that failed: navigate, snapshot or parse.
type ItemError struct {
	URL   string
	Stage string
	Cause error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("extract %s: %s: %v", e.URL, e.Stage, e.Cause)
}

func (e *ItemError) Unwrap() error {
	return e.Cause
}
