package render

import (
	"fmt"
	"strings"

	"github.com/eualt/trustscore/internal/model"
)

const footer = "_Ready scores carry a full, reproducible breakdown. Pending scores are heuristic " +
	"estimates for entries without curated evidence; their breakdown is withheld. " +
	"Dimensions show effective/max points._\n"

// Markdown renders a report as a Markdown document
func Markdown(report *model.Report, includeFooter bool) string {
	var b strings.Builder

	b.WriteString("# Trust Score Report\n\n")
	if !report.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "**Generated:** %s\n", report.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
	}
	if report.ConfigFingerprint != "" {
		fmt.Fprintf(&b, "**Config:** `%s`\n", shortFingerprint(report.ConfigFingerprint))
	}
	ready, pending := countStatus(report.Entries)
	fmt.Fprintf(&b, "**Entries:** %d (%d ready, %d pending, %d failed)\n\n", len(report.Entries), ready, pending, len(report.Failures))

	if len(report.Entries) > 0 {
		b.WriteString("## Scores\n\n")
		b.WriteString("| Entry | Score | Status | Base | Security | Governance | Reliability | Contract | Penalties | Signals | Ceiling |\n")
		b.WriteString("|---|---:|---|---|---:|---:|---:|---:|---:|---:|---|\n")
		for _, e := range report.Entries {
			renderRow(&b, e)
		}
		b.WriteString("\n")
	}

	renderExplanations(&b, report.Entries)
	renderLinks(&b, report.Entries)

	if len(report.Failures) > 0 {
		b.WriteString("## Failures\n\n")
		for _, f := range report.Failures {
			fmt.Fprintf(&b, "- `%s`: %s\n", f.ID, f.Error)
		}
		b.WriteString("\n")
	}

	if includeFooter {
		b.WriteString("---\n\n")
		b.WriteString(footer)
	}

	return b.String()
}

func renderRow(b *strings.Builder, e model.ScoredEntry) {
	res := e.Result
	fmt.Fprintf(b, "| %s | %.1f | %s |", cell(displayName(e)), res.TrustScore, res.TrustScoreStatus)

	bd := res.TrustScoreBreakdown
	if bd == nil {
		b.WriteString(" - | - | - | - | - | - | - | - |\n")
		return
	}

	fmt.Fprintf(b, " %s |", bd.BaseClass)
	for _, tier := range model.Tiers {
		d, ok := bd.Dimensions[tier]
		if !ok {
			b.WriteString(" - |")
			continue
		}
		fmt.Fprintf(b, " %g/%g |", d.Effective, d.Max)
	}
	fmt.Fprintf(b, " %g | %g | %s |\n", bd.PenaltyTotal, bd.SignalTotal, ceilingNote(bd))
}

func ceilingNote(bd *model.TrustScoreBreakdown) string {
	var notes []string
	if bd.CeilingApplied != nil {
		note := fmt.Sprintf("%g", *bd.CeilingApplied)
		if bd.AdSurveillance {
			note += " (ad)"
		}
		notes = append(notes, note)
	}
	if bd.CapApplied != nil {
		notes = append(notes, fmt.Sprintf("cap ×%.2f", *bd.CapApplied))
	}
	if len(notes) == 0 {
		return "-"
	}
	return strings.Join(notes, ", ")
}

func renderExplanations(b *strings.Builder, entries []model.ScoredEntry) {
	header := false
	for _, e := range entries {
		if e.Explanation == nil {
			continue
		}
		if !header {
			b.WriteString("## Explanations\n\n")
			header = true
		}
		fmt.Fprintf(b, "### %s\n\n", displayName(e))
		fmt.Fprintf(b, "%s\n\n", e.Explanation.Summary)
		fmt.Fprintf(b, "_Generated by %s", e.Explanation.Provider)
		if e.Explanation.Model != "" {
			fmt.Fprintf(b, " (%s)", e.Explanation.Model)
		}
		b.WriteString("; informational only, not part of the score._\n\n")
		for _, w := range e.Explanation.Warnings {
			fmt.Fprintf(b, "> Warning: %s\n", w)
		}
		if len(e.Explanation.Warnings) > 0 {
			b.WriteString("\n")
		}
	}
}

func renderLinks(b *strings.Builder, entries []model.ScoredEntry) {
	header := false
	for _, e := range entries {
		var broken []model.LinkStatus
		for _, l := range e.Links {
			if l.IsDead || (!l.IsAccessible && !l.Disallowed) {
				broken = append(broken, l)
			}
		}
		if len(broken) == 0 {
			continue
		}
		if !header {
			b.WriteString("## Unreachable Sources\n\n")
			header = true
		}
		fmt.Fprintf(b, "### %s\n\n", displayName(e))
		for _, l := range broken {
			fmt.Fprintf(b, "- %s: %s\n", l.URL, linkState(l))
		}
		b.WriteString("\n")
	}
}

func linkState(l model.LinkStatus) string {
	switch {
	case l.StatusCode != 0:
		return fmt.Sprintf("HTTP %d", l.StatusCode)
	case l.Error != "":
		return l.Error
	default:
		return "unreachable"
	}
}

func displayName(e model.ScoredEntry) string {
	if e.Name == "" || e.Name == e.ID {
		return e.ID
	}
	return fmt.Sprintf("%s (%s)", e.Name, e.ID)
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}

func countStatus(entries []model.ScoredEntry) (ready, pending int) {
	for _, e := range entries {
		switch e.Result.TrustScoreStatus {
		case model.StatusReady:
			ready++
		case model.StatusPending:
			pending++
		}
	}
	return ready, pending
}
