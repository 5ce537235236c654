package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/go-scripts/boardcrawl/internal/crawler"
)

const urlColumnWidth = 60

// RenderSummary prints the collected posts, the failed ones and the run
// totals.
func RenderSummary(w io.Writer, r *crawler.Report) {
	if r == nil {
		return
	}

	if len(r.Records) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.AppendHeader(table.Row{"#", "URL", "Price", "Images"})
		for i, rec := range r.Records {
			t.AppendRow(table.Row{i + 1, rec.SourceURL, rec.PriceRaw, len(rec.ImageURLs)})
		}
		t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: urlColumnWidth}})
		t.SetStyle(table.StyleRounded)
		t.Render()
	}

	if len(r.Failures) > 0 {
		fmt.Fprintln(w, errorStyle.Render("Failed posts"))
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.AppendHeader(table.Row{"#", "URL", "Error"})
		for _, f := range r.Failures {
			t.AppendRow(table.Row{f.Index + 1, f.URL, f.Err})
		}
		t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: urlColumnWidth}})
		t.SetStyle(table.StyleRounded)
		t.Render()
	}

	totals := fmt.Sprintf("run %s: %d found, %d collected, %d failed in %s",
		r.RunID, len(r.Candidates), len(r.Records), len(r.Failures),
		r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
	fmt.Fprintln(w, infoStyle.Render(totals))

	if !r.LoggedInAt.IsZero() {
		fmt.Fprintln(w, infoStyle.Render("logged in at "+r.LoggedInAt.Local().Format(time.DateTime)))
	}

	switch {
	case r.Written:
		fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Saved %d posts to %s", len(r.Records), r.Output)))
	case r.LoggedInAt.IsZero():
		fmt.Fprintln(w, errorStyle.Render("Login was not completed, nothing was written."))
	case len(r.Records) == 0:
		fmt.Fprintln(w, warningStyle.Render("No data collected, nothing was written."))
	default:
		fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("Run stopped, %d collected posts were not written.", len(r.Records))))
	}
}
