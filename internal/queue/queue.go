package queue

// Queue is an insertion-ordered set of URLs. A URL is accepted once;
// later additions of the same URL are ignored. It is owned by a single
// flow of control.
type Queue struct {
	urls []string
	seen map[string]bool
}

// New creates a new Queue instance
func New() *Queue {
	return &Queue{
		urls: make([]string, 0),
		seen: make(map[string]bool),
	}
}

// Add appends the URL unless it was added before. It reports whether the
// URL was accepted.
func (q *Queue) Add(url string) bool {
	if q.seen[url] {
		return false
	}

	q.seen[url] = true
	q.urls = append(q.urls, url)
	return true
}

// Items returns a copy of the URLs in insertion order
func (q *Queue) Items() []string {
	out := make([]string, len(q.urls))
	copy(out, q.urls)
	return out
}
