package render

import (
	"fmt"
	"io"

	"github.com/eualt/trustscore/internal/model"
)

// RenderSummary writes a short run summary, typically to stderr
func RenderSummary(w io.Writer, report *model.Report) {
	ready, pending := countStatus(report.Entries)

	cached := 0
	for _, e := range report.Entries {
		if e.Cached {
			cached++
		}
	}

	fmt.Fprintf(w, "\n✓ Scored %d entries (%d ready, %d pending", len(report.Entries), ready, pending)
	if cached > 0 {
		fmt.Fprintf(w, ", %d from cache", cached)
	}
	fmt.Fprintln(w, ")")

	if len(report.Entries) > 0 {
		lo, hi := report.Entries[0], report.Entries[0]
		total := 0.0
		for _, e := range report.Entries {
			s := e.Result.TrustScore
			total += s
			if s < lo.Result.TrustScore {
				lo = e
			}
			if s > hi.Result.TrustScore {
				hi = e
			}
		}
		fmt.Fprintf(w, "  Mean score: %.1f\n", total/float64(len(report.Entries)))
		fmt.Fprintf(w, "  Highest:    %.1f  %s\n", hi.Result.TrustScore, hi.ID)
		fmt.Fprintf(w, "  Lowest:     %.1f  %s\n", lo.Result.TrustScore, lo.ID)
	}

	if len(report.Failures) > 0 {
		fmt.Fprintf(w, "✗ %d entries failed:\n", len(report.Failures))
		for _, f := range report.Failures {
			fmt.Fprintf(w, "  - %s: %s\n", f.ID, f.Error)
		}
	}
}
