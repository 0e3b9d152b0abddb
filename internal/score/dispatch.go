package score

import (
	"fmt"

	"github.com/eualt/trustscore/internal/model"
)

// ComputeEntryTrustScore is the single entry point for scoring a catalog entry.
// Vetted entries come back ready with their breakdown; the rest come back pending without one.
func (e *Engine) ComputeEntryTrustScore(entry model.Entry, opts ...Option) (model.TrustResult, error) {
	ev, err := entry.Evidence()
	if err != nil {
		return model.TrustResult{}, fmt.Errorf("entry %s: %w", entry.ID, err)
	}

	res, status, err := e.ScoreEvidence(ev, opts...)
	if err != nil {
		return model.TrustResult{}, fmt.Errorf("entry %s: %w", entry.ID, err)
	}

	out := model.TrustResult{
		TrustScore:       res.Score,
		TrustScoreStatus: status,
	}
	if status == model.StatusReady {
		breakdown := res.Breakdown
		out.TrustScoreBreakdown = &breakdown
	}
	return out, nil
}

// ScoreEvidence runs the composer matching ev and returns the full result, including the
// breakdown the dispatcher withholds for pending entries.
func (e *Engine) ScoreEvidence(ev model.Evidence, opts ...Option) (model.ScoreResult, model.Status, error) {
	switch ev := ev.(type) {
	case model.VettedEvidence:
		baseClass := ev.BaseClassOverride
		if baseClass == "" {
			baseClass = e.AssignBaseClass(ev.Country, ev.OpenSourceLevel)
		}
		opts = append(append([]Option(nil), opts...), WithAdSurveillance(ev.IsAdSurveillance))
		res, err := e.CalculateTrustScore(baseClass, ev.Reservations, ev.Signals, opts...)
		return res, model.StatusReady, err

	case model.HeuristicEvidence:
		res, err := e.CalculateSimpleTrustScore(ev, opts...)
		return res, model.StatusPending, err

	default:
		return model.ScoreResult{}, "", &model.InvalidEvidenceError{
			Field:  "evidence",
			Reason: fmt.Sprintf("unsupported evidence type %T", ev),
		}
	}
}
