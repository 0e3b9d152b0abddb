package score

import (
	"strings"

	"github.com/eualt/trustscore/internal/model"
)

// DiscountIDPrefix prefixes the synthetic reservations of the non-vetted path
const DiscountIDPrefix = "_non-vetted-discount-"

// CalculateSimpleTrustScore scores an entry without curated evidence.
//
// Every tier gets an exempt discount of max*baselineFraction*nonVettedFraction on top of its
// baseline. Real reservations count against the cumulative cap, whatever their ExemptFromCap flag
// or WithCapExemptIDs say. Without a penalty they contribute nothing unless WithEstimatedPenalties
// is set.
func (e *Engine) CalculateSimpleTrustScore(ev model.HeuristicEvidence, opts ...Option) (model.ScoreResult, error) {
	o := buildOptions(opts)
	baseClass := e.AssignBaseClass(ev.Country, ev.OpenSourceLevel)

	own := ev.Reservations
	if o.estimatePenalties {
		own = e.EstimatePenalties(own)
	}

	reservations := make([]model.Reservation, 0, len(model.Tiers)+len(own))
	reservations = append(reservations, e.discountReservations()...)
	for _, r := range own {
		r.ExemptFromCap = false
		reservations = append(reservations, r)
	}

	// The ad ceiling is reserved for vetted entries
	opts = append(append([]Option(nil), opts...), WithAdSurveillance(false), withoutCapExemptIDs())
	return e.CalculateTrustScore(baseClass, reservations, e.DeriveSignals(ev), opts...)
}

func (e *Engine) discountReservations() []model.Reservation {
	out := make([]model.Reservation, 0, len(model.Tiers))
	for _, t := range model.Tiers {
		dimMax, _ := e.cfg.DimensionMaxes.Get(t)
		out = append(out, model.Reservation{
			ID:       DiscountIDPrefix + string(t),
			Text:     "Not yet vetted: " + string(t) + " baseline discounted",
			Severity: model.SeverityMinor,
			Penalty: &model.Penalty{
				Tier:   t,
				Amount: dimMax * e.cfg.DimensionBaselineFraction * e.cfg.NonVettedDimensionFraction,
			},
			ExemptFromCap: true,
		})
	}
	return out
}

// DeriveSignals returns the synthetic positive signals the configured rules grant ev,
// in rule order. Each rule fires at most once.
func (e *Engine) DeriveSignals(ev model.HeuristicEvidence) []model.PositiveSignal {
	tags := toSet(ev.Tags)

	var out []model.PositiveSignal
	for _, rule := range e.signalRules {
		if !rule.matches(ev, tags) {
			continue
		}
		out = append(out, model.PositiveSignal{
			ID:        rule.ID,
			Text:      rule.Text,
			Dimension: rule.Dimension,
			Amount:    rule.Amount,
		})
	}
	return out
}

func (r signalRule) matches(ev model.HeuristicEvidence, tags map[string]bool) bool {
	for tag := range r.tags {
		if tags[tag] {
			return true
		}
	}
	if r.OpenSourceLevel != "" && strings.EqualFold(string(r.OpenSourceLevel), string(ev.OpenSourceLevel)) {
		return true
	}
	return r.SelfHostable && ev.SelfHostable
}
