package types

import "time"

// CandidateLink is a unique, domain-filtered detail URL discovered on a listing page
type CandidateLink struct {
	URL string
}

// ExtractionRecord is the result of successfully processing one detail page
type ExtractionRecord struct {
	SourceURL  string
	BodyText   string
	PriceRaw   string
	ImageURLs  []string
	CapturedAt time.Time
}

// CrawlResult holds the records of a crawl in candidate order
type CrawlResult []ExtractionRecord

// ItemFailure records a candidate that produced no record
type ItemFailure struct {
	URL   string
	Index int
	Err   error
}
