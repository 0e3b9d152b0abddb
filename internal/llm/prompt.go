package llm

import (
	"fmt"
	"strings"

	"github.com/eualt/trustscore/internal/model"
)

const systemPrompt = "You explain trust score breakdowns for a catalog of digital services. " +
	"You describe how the evidence moved the score and never re-score or judge the service yourself."

// maxPromptURLs bounds the allowlist sent to the model
const maxPromptURLs = 20

// BuildPrompt narrates one ready breakdown with a strict URL allowlist
func BuildPrompt(entry model.Entry, result model.TrustResult, allowedURLs []string) string {
	var b strings.Builder

	name := entry.Name
	if name == "" {
		name = entry.ID
	}

	fmt.Fprintf(&b, `Explain the trust score of %q in 3-4 sentences.

RULES:
1. You MUST ONLY cite URLs from this allowed list:%s

2. Do not cite, infer or speculate about any other source.
3. Explain which dimensions and evidence moved the score. Do not propose a different score.
4. If a ceiling or the cumulative penalty cap applied, say so plainly.

Score: %.1f/10 (status %s)
`, name, joinURLs(allowedURLs), result.TrustScore, result.TrustScoreStatus)

	bd := result.TrustScoreBreakdown
	if bd == nil {
		return b.String()
	}

	fmt.Fprintf(&b, "Base class: %s (base score %g)\n", bd.BaseClass, bd.BaseScore)
	b.WriteString("\nDimensions:\n")
	for _, tier := range model.Tiers {
		d, ok := bd.Dimensions[tier]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "- %s: %g/%g (penalties %g, signals %g)\n", tier, d.Effective, d.Max, d.Penalties, d.Signals)
	}

	fmt.Fprintf(&b, "\nOperational total: %g\nPenalty total: %g\nSignal total: %g\n", bd.OperationalTotal, bd.PenaltyTotal, bd.SignalTotal)
	if bd.CapApplied != nil {
		fmt.Fprintf(&b, "Cumulative penalty cap scaled capped penalties by %.2f\n", *bd.CapApplied)
	}
	if bd.CeilingApplied != nil {
		fmt.Fprintf(&b, "Score ceiling applied: %g/100\n", *bd.CeilingApplied)
	}
	if bd.AdSurveillance {
		b.WriteString("The service is classified as ad-surveillance.\n")
	}

	if len(entry.Reservations) > 0 {
		b.WriteString("\nReservations:\n")
		for _, r := range entry.Reservations {
			fmt.Fprintf(&b, "- [%s] %s%s\n", r.Severity, r.Text, penaltyNote(r.Penalty))
		}
	}
	if len(entry.PositiveSignals) > 0 {
		b.WriteString("\nPositive signals:\n")
		for _, s := range entry.PositiveSignals {
			fmt.Fprintf(&b, "- %s (%s +%g)\n", s.Text, s.Dimension, s.Amount)
		}
	}

	return b.String()
}

func penaltyNote(p *model.Penalty) string {
	if p == nil {
		return " (informational)"
	}
	return fmt.Sprintf(" (%s -%g)", p.Tier, p.Amount)
}

func joinURLs(urls []string) string {
	if len(urls) == 0 {
		return "\n(No source URLs available; cite nothing)"
	}

	var b strings.Builder
	for i, u := range urls {
		if i >= maxPromptURLs {
			fmt.Fprintf(&b, "\n... and %d more URLs", len(urls)-maxPromptURLs)
			break
		}
		b.WriteString("\n- ")
		b.WriteString(u)
	}
	return b.String()
}
