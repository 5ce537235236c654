// Command boardcrawl logs into a community board through a real browser,
// visits every post on the board's first page and saves the posts to a
// spreadsheet, CSV file or SQLite database.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
