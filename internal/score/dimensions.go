package score

import (
	"errors"
	"math"

	"github.com/eualt/trustscore/internal/model"
)

// Dimensions is the aggregated per-tier result plus the cap audit data
type Dimensions struct {
	ByTier       map[model.Tier]model.DimensionBreakdown
	PenaltyScale float64 // 1 unless the cumulative cap fired
	CapFired     bool
}

// Totals sums effective, penalty and signal points across all tiers in canonical order
func (d Dimensions) Totals() (operational, penalties, signals float64) {
	for _, t := range model.Tiers {
		b := d.ByTier[t]
		operational += b.Effective
		penalties += b.Penalties
		signals += b.Signals
	}
	return operational, penalties, signals
}

// ComputeDimensions aggregates reservations and signals into the four dimension breakdowns.
//
// Each dimension starts at max*baselineFraction. Non-exempt penalties across all tiers
// share one cumulative cap: when their grand total exceeds it, every tier's non-exempt
// sum is scaled by cap/total. Exempt penalties are added back unscaled. Effective values
// are clamped to [0, max].
func (e *Engine) ComputeDimensions(reservations []model.Reservation, signals []model.PositiveSignal, opts ...Option) (Dimensions, error) {
	o := buildOptions(opts)

	capped := make(map[model.Tier]float64, len(model.Tiers))
	exempt := make(map[model.Tier]float64, len(model.Tiers))

	for _, r := range reservations {
		if err := ValidateReservation(r); err != nil {
			return Dimensions{}, err
		}
		if r.Penalty == nil {
			continue
		}

		mult, err := e.RecencyMultiplier(r.Date, o.asOf)
		if err != nil {
			var ie *model.InvalidEvidenceError
			if errors.As(err, &ie) {
				ie.ItemID = r.ID
			}
			return Dimensions{}, err
		}

		amount := r.Penalty.Amount * mult
		if o.isExempt(r) {
			exempt[r.Penalty.Tier] += amount
		} else {
			capped[r.Penalty.Tier] += amount
		}
	}

	signalSums := make(map[model.Tier]float64, len(model.Tiers))
	for _, s := range signals {
		if err := ValidateSignal(s); err != nil {
			return Dimensions{}, err
		}
		signalSums[s.Dimension] += s.Amount
	}

	if err := checkSums(capped, exempt, signalSums); err != nil {
		return Dimensions{}, err
	}

	total := 0.0
	for _, t := range model.Tiers {
		total += capped[t]
	}

	scale := 1.0
	fired := false
	if limit := e.cfg.CumulativePenaltyCap; total > limit {
		scale = limit / total
		fired = true
	}

	dims := Dimensions{
		ByTier:       make(map[model.Tier]model.DimensionBreakdown, len(model.Tiers)),
		PenaltyScale: scale,
		CapFired:     fired,
	}

	for _, t := range model.Tiers {
		dimMax, _ := e.cfg.DimensionMaxes.Get(t)
		baseline := dimMax * e.cfg.DimensionBaselineFraction
		penalties := capped[t]*scale + exempt[t]
		effective := math.Max(0, math.Min(dimMax, baseline-penalties+signalSums[t]))

		dims.ByTier[t] = model.DimensionBreakdown{
			Max:       dimMax,
			Penalties: penalties,
			Signals:   signalSums[t],
			Effective: effective,
		}
	}

	return dims, nil
}

// checkSums rejects evidence whose point totals overflow float64.
// Post-cap values never exceed the raw sums, so finite raw sums keep every total finite.
func checkSums(capped, exempt, signals map[model.Tier]float64) error {
	penalties, gains := 0.0, 0.0
	for _, t := range model.Tiers {
		penalties += capped[t] + exempt[t]
		gains += signals[t]
	}
	if !isFinite(penalties) {
		return &model.InvalidEvidenceError{Field: "penalty.amount", Reason: "sum overflows"}
	}
	if !isFinite(gains) {
		return &model.InvalidEvidenceError{Field: "amount", Reason: "sum overflows"}
	}
	return nil
}
