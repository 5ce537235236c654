package lister

import "fmt"

// ListingError means the listing could not be read at all. It is fatal for
// the crawl since there is nothing to visit.
type ListingError struct {
	Selector string
	Cause    error
}

func (e *ListingError) Error() string {
	return fmt.Sprintf("listing %s unavailable: %v", e.Selector, e.Cause)
}

func (e *ListingError) Unwrap() error {
	return e.Cause
}
