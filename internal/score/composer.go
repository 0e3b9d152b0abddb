package score

import (
	"fmt"
	"math"

	"github.com/eualt/trustscore/internal/model"
)

// CalculateTrustScore is the full v2 computation for vetted entries.
//
// finalScore100 = clamp(min(baseScore + operationalTotal, ceiling), 0, 100), where the
// ceiling is the class ceiling, lowered to the ad-surveillance ceiling when flagged.
// The public score is finalScore100 rounded, on the 0-10 scale.
func (e *Engine) CalculateTrustScore(baseClass model.BaseClass, reservations []model.Reservation, signals []model.PositiveSignal, opts ...Option) (model.ScoreResult, error) {
	if !baseClass.Valid() {
		return model.ScoreResult{}, &model.InvalidConfigurationError{
			Key:    "baseClass",
			Reason: fmt.Sprintf("unknown base class %q", baseClass),
		}
	}

	dims, err := e.ComputeDimensions(reservations, signals, opts...)
	if err != nil {
		return model.ScoreResult{}, err
	}

	return e.compose(baseClass, dims, buildOptions(opts).adSurveillance), nil
}

func (e *Engine) compose(baseClass model.BaseClass, dims Dimensions, adSurveillance bool) model.ScoreResult {
	baseScore, _ := e.cfg.BaseScores.Get(baseClass)
	operational, penalties, signals := dims.Totals()

	raw := baseScore + operational

	// Lowest ceiling wins
	ceiling, _ := e.cfg.ClassCeilings.Get(baseClass)
	if adSurveillance {
		ceiling = math.Min(ceiling, e.cfg.AdSurveillanceCeiling)
	}
	capped := math.Min(raw, ceiling)
	final := math.Max(0, math.Min(100, capped))

	breakdown := model.TrustScoreBreakdown{
		BaseClass:        baseClass,
		BaseScore:        baseScore,
		Dimensions:       dims.ByTier,
		OperationalTotal: operational,
		PenaltyTotal:     penalties,
		SignalTotal:      signals,
		AdSurveillance:   adSurveillance,
		FinalScore100:    final,
	}
	if dims.CapFired {
		scale := dims.PenaltyScale
		breakdown.CapApplied = &scale
	}
	if capped < raw {
		breakdown.CeilingApplied = &ceiling
	}

	return model.ScoreResult{
		Score:     roundScore(final),
		Breakdown: breakdown,
	}
}

// roundScore maps a 0-100 score to the public 0-10 scale with one decimal
func roundScore(score100 float64) float64 {
	return math.Round(score100) / 10
}
