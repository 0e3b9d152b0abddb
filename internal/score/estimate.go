package score

import (
	"strings"

	"github.com/eualt/trustscore/internal/model"
)

// EstimatePenalties returns a copy of reservations in which every reservation without a
// penalty gains one inferred from its text and severity. Existing penalties are kept.
func (e *Engine) EstimatePenalties(reservations []model.Reservation) []model.Reservation {
	if reservations == nil {
		return nil
	}

	out := make([]model.Reservation, len(reservations))
	for i, r := range reservations {
		if r.Penalty == nil {
			r.Penalty = &model.Penalty{
				Tier:   e.classifyTier(r.Text),
				Amount: e.severityAmount(r.Severity),
			}
		} else {
			p := *r.Penalty
			r.Penalty = &p
		}
		out[i] = r
	}
	return out
}

func (e *Engine) classifyTier(text string) model.Tier {
	for _, p := range e.tierPatterns {
		if p.re.MatchString(text) {
			return p.tier
		}
	}
	return e.cfg.PenaltyEstimation.DefaultTier
}

func (e *Engine) severityAmount(s model.Severity) float64 {
	amounts := e.cfg.PenaltyEstimation.SeverityAmounts
	switch model.Severity(strings.ToLower(string(s))) {
	case model.SeverityMajor:
		return amounts.Major
	case model.SeverityModerate:
		return amounts.Moderate
	default:
		return amounts.Minor
	}
}
