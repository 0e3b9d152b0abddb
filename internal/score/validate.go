package score

import (
	"fmt"

	"github.com/eualt/trustscore/internal/model"
)

// ValidateReservation rejects penalties the engine would otherwise undercount.
// Dates are checked whether or not recency decay is enabled.
func ValidateReservation(r model.Reservation) error {
	if r.Penalty == nil {
		return nil
	}
	if !r.Penalty.Tier.Valid() {
		return &model.InvalidEvidenceError{
			ItemID: r.ID,
			Field:  "penalty.tier",
			Reason: fmt.Sprintf("unknown tier %q", r.Penalty.Tier),
		}
	}
	if !isFinite(r.Penalty.Amount) || r.Penalty.Amount < 0 {
		return &model.InvalidEvidenceError{
			ItemID: r.ID,
			Field:  "penalty.amount",
			Reason: fmt.Sprintf("must be a non-negative number, got %g (model reductions as positive signals)", r.Penalty.Amount),
		}
	}
	if r.Date != "" {
		if _, err := parseDate(r.Date); err != nil {
			return &model.InvalidEvidenceError{ItemID: r.ID, Field: "date", Reason: "not an ISO date: " + r.Date}
		}
	}
	return nil
}

// ValidateSignal rejects signals with an unknown dimension or a negative amount
func ValidateSignal(s model.PositiveSignal) error {
	if !s.Dimension.Valid() {
		return &model.InvalidEvidenceError{
			ItemID: s.ID,
			Field:  "dimension",
			Reason: fmt.Sprintf("unknown dimension %q", s.Dimension),
		}
	}
	if !isFinite(s.Amount) || s.Amount < 0 {
		return &model.InvalidEvidenceError{
			ItemID: s.ID,
			Field:  "amount",
			Reason: fmt.Sprintf("must be a non-negative number, got %g", s.Amount),
		}
	}
	return nil
}
