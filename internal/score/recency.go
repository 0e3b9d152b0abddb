package score

import (
	"time"

	"github.com/eualt/trustscore/internal/model"
)

const yearDuration = 365.25 * 24 * time.Hour

// RecencyMultiplier returns the decay factor for a penalty dated date, as seen at asOf.
// Undated penalties and a zero asOf get full weight.
func (e *Engine) RecencyMultiplier(date string, asOf time.Time) (float64, error) {
	if date == "" || asOf.IsZero() {
		return 1.0, nil
	}

	then, err := parseDate(date)
	if err != nil {
		return 0, err
	}

	age := asOf.Sub(then).Hours() / yearDuration.Hours()
	if age < 0 {
		age = 0
	}

	for _, b := range e.cfg.Recency.Brackets {
		if age < b.MaxYears {
			return b.Multiplier, nil
		}
	}
	return e.cfg.Recency.FloorMultiplier, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, &model.InvalidEvidenceError{Field: "date", Reason: "not an ISO date: " + s}
	}
	return t, nil
}
