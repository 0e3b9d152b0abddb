package score

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/eualt/trustscore/internal/model"
)

func penalty(id string, tier model.Tier, amount float64) model.Reservation {
	return model.Reservation{
		ID:       id,
		Text:     id,
		Severity: model.SeverityModerate,
		Penalty:  &model.Penalty{Tier: tier, Amount: amount},
	}
}

func signal(id string, tier model.Tier, amount float64) model.PositiveSignal {
	return model.PositiveSignal{ID: id, Text: id, Dimension: tier, Amount: amount}
}

func TestCalculateTrustScore_Baselines(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		class model.BaseClass
		want  float64
	}{
		{model.BaseClassFOSS, 9.6},
		{model.BaseClassEU, 8.6},
		{model.BaseClassNonEU, 8.1},
		{model.BaseClassRest, 5.6},
		{model.BaseClassUS, 3.6},
		{model.BaseClassAutocracy, 2.6},
	}

	for _, tt := range tests {
		res, err := e.CalculateTrustScore(tt.class, nil, nil)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.class, err)
		}
		if !approx(res.Score, tt.want) {
			t.Errorf("%s: score = %v, want %v", tt.class, res.Score, tt.want)
		}
		if res.Breakdown.CapApplied != nil {
			t.Errorf("%s: expected no cap", tt.class)
		}
	}
}

func TestCalculateTrustScore_NoEvidenceUsesBaselines(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.CalculateTrustScore(model.BaseClassEU, nil, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := map[model.Tier]float64{
		model.TierSecurity:    6,
		model.TierGovernance:  4,
		model.TierReliability: 3,
		model.TierContract:    3,
	}
	for tier, w := range want {
		if got := res.Breakdown.Dimensions[tier].Effective; !approx(got, w) {
			t.Errorf("%s effective = %v, want %v", tier, got, w)
		}
	}
	if !approx(res.Breakdown.OperationalTotal, 16) {
		t.Errorf("Expected operational total 16, got %v", res.Breakdown.OperationalTotal)
	}
	if !approx(res.Breakdown.FinalScore100, 86) {
		t.Errorf("Expected final score 86, got %v", res.Breakdown.FinalScore100)
	}
}

func TestCalculateTrustScore_ClassCeiling(t *testing.T) {
	e := newTestEngine(t)

	signals := []model.PositiveSignal{
		signal("s1", model.TierSecurity, 6),
		signal("s2", model.TierGovernance, 4),
		signal("s3", model.TierReliability, 3),
		signal("s4", model.TierContract, 3),
	}

	res, err := e.CalculateTrustScore(model.BaseClassRest, nil, signals)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !approx(res.Score, 7.0) {
		t.Errorf("Expected score 7.0, got %v", res.Score)
	}
	if res.Breakdown.CeilingApplied == nil || *res.Breakdown.CeilingApplied != 70 {
		t.Errorf("Expected ceiling 70 to be recorded, got %v", res.Breakdown.CeilingApplied)
	}
	if !approx(res.Breakdown.OperationalTotal, 32) {
		t.Errorf("Expected operational total 32, got %v", res.Breakdown.OperationalTotal)
	}
}

func TestCalculateTrustScore_SignalsClampAtDimensionMax(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.CalculateTrustScore(model.BaseClassEU, nil, []model.PositiveSignal{
		signal("huge", model.TierSecurity, 50),
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := res.Breakdown.Dimensions[model.TierSecurity].Effective; got != 12 {
		t.Errorf("Expected security effective clamped to 12, got %v", got)
	}
	if !approx(res.Breakdown.SignalTotal, 50) {
		t.Errorf("Expected signal total 50, got %v", res.Breakdown.SignalTotal)
	}
}

func TestCalculateTrustScore_AdSurveillance(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.CalculateTrustScore(model.BaseClassEU, nil, nil, WithAdSurveillance(true))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !approx(res.Score, 4.5) {
		t.Errorf("Expected score 4.5, got %v", res.Score)
	}
	if res.Breakdown.CeilingApplied == nil || *res.Breakdown.CeilingApplied != 45 {
		t.Errorf("Expected ceiling 45 to be recorded, got %v", res.Breakdown.CeilingApplied)
	}
	if !res.Breakdown.AdSurveillance {
		t.Error("Expected AdSurveillance to be recorded")
	}

	// Already below the ad ceiling: flagged but nothing lowered
	res, err = e.CalculateTrustScore(model.BaseClassUS, nil, nil, WithAdSurveillance(true))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !approx(res.Score, 3.6) {
		t.Errorf("Expected score 3.6, got %v", res.Score)
	}
	if res.Breakdown.CeilingApplied != nil {
		t.Errorf("Expected no ceiling, got %v", *res.Breakdown.CeilingApplied)
	}
	if !res.Breakdown.AdSurveillance {
		t.Error("Expected AdSurveillance to be recorded")
	}
}

func TestCalculateTrustScore_CumulativeCap(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.CalculateTrustScore(model.BaseClassEU, []model.Reservation{
		penalty("r1", model.TierSecurity, 10),
		penalty("r2", model.TierGovernance, 10),
	}, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	b := res.Breakdown
	if b.CapApplied == nil || !approx(*b.CapApplied, 0.75) {
		t.Fatalf("Expected cap scale 0.75, got %v", b.CapApplied)
	}
	if !approx(b.PenaltyTotal, 15) {
		t.Errorf("Expected penalty total 15 after the cap, got %v", b.PenaltyTotal)
	}
	if !approx(b.Dimensions[model.TierSecurity].Penalties, 7.5) {
		t.Errorf("Expected security penalties 7.5, got %v", b.Dimensions[model.TierSecurity].Penalties)
	}
	if b.Dimensions[model.TierSecurity].Effective != 0 || b.Dimensions[model.TierGovernance].Effective != 0 {
		t.Errorf("Expected overloaded dimensions to floor at 0, got %+v", b.Dimensions)
	}
	if !approx(res.Score, 7.6) {
		t.Errorf("Expected score 7.6, got %v", res.Score)
	}
}

func TestCalculateTrustScore_CapAtThresholdDoesNotFire(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.CalculateTrustScore(model.BaseClassEU, []model.Reservation{
		penalty("r1", model.TierSecurity, 7.5),
		penalty("r2", model.TierContract, 7.5),
	}, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if res.Breakdown.CapApplied != nil {
		t.Errorf("Expected no cap at exactly the limit, got %v", *res.Breakdown.CapApplied)
	}
}

func TestCalculateTrustScore_ExemptPenaltiesBypassCap(t *testing.T) {
	e := newTestEngine(t)

	exempt := penalty("exempt", model.TierGovernance, 2)
	exempt.ExemptFromCap = true

	res, err := e.CalculateTrustScore(model.BaseClassEU, []model.Reservation{
		penalty("big", model.TierSecurity, 20),
		exempt,
	}, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	b := res.Breakdown
	if b.CapApplied == nil || !approx(*b.CapApplied, 0.75) {
		t.Fatalf("Expected cap scale 0.75, got %v", b.CapApplied)
	}
	if !approx(b.Dimensions[model.TierGovernance].Penalties, 2) {
		t.Errorf("Expected exempt penalty unscaled at 2, got %v", b.Dimensions[model.TierGovernance].Penalties)
	}
	if !approx(b.PenaltyTotal, 17) {
		t.Errorf("Expected penalty total 17, got %v", b.PenaltyTotal)
	}
	if !approx(res.Score, 7.8) {
		t.Errorf("Expected score 7.8, got %v", res.Score)
	}
}

func TestCalculateTrustScore_CapExemptIDs(t *testing.T) {
	e := newTestEngine(t)

	reservations := []model.Reservation{
		penalty("big", model.TierSecurity, 20),
		penalty("named", model.TierGovernance, 2),
	}

	res, err := e.CalculateTrustScore(model.BaseClassEU, reservations, nil, WithCapExemptIDs("named"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !approx(res.Breakdown.Dimensions[model.TierGovernance].Penalties, 2) {
		t.Errorf("Expected named reservation to bypass the cap, got %v", res.Breakdown.Dimensions[model.TierGovernance].Penalties)
	}
	if !approx(*res.Breakdown.CapApplied, 0.75) {
		t.Errorf("Expected cap scale 0.75, got %v", *res.Breakdown.CapApplied)
	}
}

func TestCalculateTrustScore_ReservationWithoutPenalty(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.CalculateTrustScore(model.BaseClassEU, []model.Reservation{
		{ID: "note", Text: "Informational only", Severity: model.SeverityMajor},
	}, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !approx(res.Score, 8.6) {
		t.Errorf("Expected score 8.6, got %v", res.Score)
	}
	if res.Breakdown.PenaltyTotal != 0 {
		t.Errorf("Expected no penalty points, got %v", res.Breakdown.PenaltyTotal)
	}
}

func TestCalculateTrustScore_Recency(t *testing.T) {
	e := newTestEngine(t)

	old := penalty("old", model.TierSecurity, 4)
	old.Date = "2022-01-01"
	asOf := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	res, err := e.CalculateTrustScore(model.BaseClassEU, []model.Reservation{old}, nil, WithAsOf(asOf))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !approx(res.Breakdown.Dimensions[model.TierSecurity].Penalties, 1) {
		t.Errorf("Expected decayed penalty 1, got %v", res.Breakdown.Dimensions[model.TierSecurity].Penalties)
	}
	if !approx(res.Score, 8.5) {
		t.Errorf("Expected score 8.5, got %v", res.Score)
	}

	// Without a reference date the full amount applies
	res, err = e.CalculateTrustScore(model.BaseClassEU, []model.Reservation{old}, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !approx(res.Score, 8.2) {
		t.Errorf("Expected score 8.2, got %v", res.Score)
	}
}

func TestCalculateTrustScore_InvalidDateNamesItem(t *testing.T) {
	e := newTestEngine(t)

	r := penalty("undated", model.TierSecurity, 1)
	r.Date = "soon"

	_, err := e.CalculateTrustScore(model.BaseClassEU, []model.Reservation{r}, nil, WithAsOf(time.Now()))
	var ie *model.InvalidEvidenceError
	if !errors.As(err, &ie) {
		t.Fatalf("Expected InvalidEvidenceError, got %v", err)
	}
	if ie.ItemID != "undated" {
		t.Errorf("Expected item id undated, got %q", ie.ItemID)
	}
}

func TestCalculateTrustScore_InvalidEvidence(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		desc         string
		reservations []model.Reservation
		signals      []model.PositiveSignal
	}{
		{"unknown tier", []model.Reservation{penalty("r", "speed", 1)}, nil},
		{"empty tier", []model.Reservation{penalty("r", "", 1)}, nil},
		{"negative penalty", []model.Reservation{penalty("r", model.TierSecurity, -2)}, nil},
		{"unknown signal dimension", nil, []model.PositiveSignal{signal("s", "speed", 1)}},
		{"negative signal", nil, []model.PositiveSignal{signal("s", model.TierContract, -1)}},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			_, err := e.CalculateTrustScore(model.BaseClassEU, tt.reservations, tt.signals)
			if !errors.Is(err, model.ErrInvalidEvidence) {
				t.Errorf("Expected ErrInvalidEvidence, got %v", err)
			}
		})
	}
}

func TestCalculateTrustScore_UnknownBaseClass(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.CalculateTrustScore("martian", nil, nil)
	if !errors.Is(err, model.ErrInvalidConfiguration) {
		t.Errorf("Expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestCalculateTrustScore_Deterministic(t *testing.T) {
	e := newTestEngine(t)

	reservations := []model.Reservation{
		penalty("r1", model.TierSecurity, 3.3),
		penalty("r2", model.TierReliability, 1.7),
	}
	signals := []model.PositiveSignal{signal("s1", model.TierContract, 0.9)}

	first, err := e.CalculateTrustScore(model.BaseClassNonEU, reservations, signals)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	second, err := e.CalculateTrustScore(model.BaseClassNonEU, reservations, signals)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical results, got %+v and %+v", first, second)
	}
}

// Below the cumulative cap every added penalty lowers or keeps the score
func TestCalculateTrustScore_PenaltiesNeverRaiseScore(t *testing.T) {
	e := newTestEngine(t)

	var reservations []model.Reservation
	prev, err := e.CalculateTrustScore(model.BaseClassFOSS, nil, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for i, tier := range []model.Tier{
		model.TierSecurity, model.TierGovernance, model.TierContract,
		model.TierSecurity, model.TierReliability, model.TierSecurity,
		model.TierGovernance, model.TierContract,
	} {
		reservations = append(reservations, penalty(string(rune('a'+i)), tier, 1.5))

		res, err := e.CalculateTrustScore(model.BaseClassFOSS, reservations, nil)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if res.Breakdown.FinalScore100 > prev.Breakdown.FinalScore100 {
			t.Errorf("Score rose from %v to %v after adding a penalty", prev.Breakdown.FinalScore100, res.Breakdown.FinalScore100)
		}
		prev = res
	}
}

func TestCalculateTrustScore_PenaltyTotalBoundedByCap(t *testing.T) {
	e := newTestEngine(t)
	limit := e.Config().CumulativePenaltyCap

	var reservations []model.Reservation
	for i := 0; i < 12; i++ {
		reservations = append(reservations, penalty(string(rune('a'+i)), model.Tiers[i%len(model.Tiers)], 4))

		res, err := e.CalculateTrustScore(model.BaseClassEU, reservations, nil)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if res.Breakdown.PenaltyTotal > limit+1e-9 {
			t.Errorf("Penalty total %v exceeds the cap %v", res.Breakdown.PenaltyTotal, limit)
		}
		for tier, d := range res.Breakdown.Dimensions {
			if d.Effective < 0 || d.Effective > d.Max {
				t.Errorf("%s effective %v outside [0, %v]", tier, d.Effective, d.Max)
			}
		}
		if res.Score < 0 || res.Score > 10 {
			t.Errorf("Score %v outside [0, 10]", res.Score)
		}
	}
}

func TestCalculateTrustScore_TwoModeratePenalties(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.CalculateTrustScore(model.BaseClassEU, []model.Reservation{
		penalty("sec", model.TierSecurity, 2),
		penalty("gov", model.TierGovernance, 2),
	}, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	bd := res.Breakdown
	if !approx(bd.PenaltyTotal, 4) {
		t.Errorf("Expected penalty total 4, got %v", bd.PenaltyTotal)
	}
	if !approx(bd.OperationalTotal, 12) {
		t.Errorf("Expected operational total 12, got %v", bd.OperationalTotal)
	}
	if !approx(bd.FinalScore100, 82) {
		t.Errorf("Expected final score 82, got %v", bd.FinalScore100)
	}
	if bd.CapApplied != nil || bd.CeilingApplied != nil {
		t.Errorf("Expected neither cap nor ceiling, got %+v", bd)
	}
}

func TestCalculateTrustScore_CapHalvesEveryTier(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.CalculateTrustScore(model.BaseClassEU, []model.Reservation{
		penalty("sec", model.TierSecurity, 10),
		penalty("gov", model.TierGovernance, 10),
		penalty("rel", model.TierReliability, 5),
		penalty("con", model.TierContract, 5),
	}, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := map[model.Tier]float64{
		model.TierSecurity:    5,
		model.TierGovernance:  5,
		model.TierReliability: 2.5,
		model.TierContract:    2.5,
	}
	for tier, w := range want {
		if got := res.Breakdown.Dimensions[tier].Penalties; !approx(got, w) {
			t.Errorf("%s penalties = %v, want %v", tier, got, w)
		}
	}
	if !approx(res.Breakdown.PenaltyTotal, 15) {
		t.Errorf("Expected penalty total 15, got %v", res.Breakdown.PenaltyTotal)
	}
	if res.Breakdown.CapApplied == nil || !approx(*res.Breakdown.CapApplied, 0.5) {
		t.Errorf("Expected cap scale 0.5, got %v", res.Breakdown.CapApplied)
	}
}

func TestCalculateTrustScore_ExemptLoadDoesNotTriggerCap(t *testing.T) {
	e := newTestEngine(t)

	exempt := penalty("sanction", model.TierSecurity, 20)
	exempt.ExemptFromCap = true

	res, err := e.CalculateTrustScore(model.BaseClassEU, []model.Reservation{
		exempt,
		penalty("gov", model.TierGovernance, 10),
	}, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	bd := res.Breakdown
	if !approx(bd.Dimensions[model.TierSecurity].Penalties, 20) {
		t.Errorf("Expected security penalties 20, got %v", bd.Dimensions[model.TierSecurity].Penalties)
	}
	if !approx(bd.Dimensions[model.TierGovernance].Penalties, 10) {
		t.Errorf("Expected governance penalties 10, got %v", bd.Dimensions[model.TierGovernance].Penalties)
	}
	if !approx(bd.PenaltyTotal, 30) {
		t.Errorf("Expected penalty total 30, got %v", bd.PenaltyTotal)
	}
	if bd.CapApplied != nil {
		t.Errorf("Expected no cap, got %v", *bd.CapApplied)
	}
}

func TestCalculateTrustScore_SignalsNeverLowerEffective(t *testing.T) {
	e := newTestEngine(t)

	reservations := []model.Reservation{
		penalty("sec", model.TierSecurity, 9),
		penalty("gov", model.TierGovernance, 12),
	}
	var signals []model.PositiveSignal

	prev, err := e.CalculateTrustScore(model.BaseClassUS, reservations, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for i, tier := range []model.Tier{
		model.TierSecurity, model.TierSecurity, model.TierGovernance,
		model.TierContract, model.TierContract, model.TierReliability,
		model.TierSecurity, model.TierContract,
	} {
		signals = append(signals, signal(string(rune('a'+i)), tier, 1.5))

		res, err := e.CalculateTrustScore(model.BaseClassUS, reservations, signals)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		for _, dim := range model.Tiers {
			before, after := prev.Breakdown.Dimensions[dim].Effective, res.Breakdown.Dimensions[dim].Effective
			if after < before {
				t.Errorf("step %d: %s effective dropped from %v to %v after adding a signal", i, dim, before, after)
			}
		}
		if res.Breakdown.FinalScore100 < prev.Breakdown.FinalScore100 {
			t.Errorf("step %d: score dropped from %v to %v", i, prev.Breakdown.FinalScore100, res.Breakdown.FinalScore100)
		}
		prev = res
	}
}

// Holds above the cap as well: the penalized dimension never gains, even when others do
func TestCalculateTrustScore_PenaltyNeverRaisesItsDimension(t *testing.T) {
	e := newTestEngine(t)

	reservations := []model.Reservation{penalty("base", model.TierSecurity, 30)}
	prev, err := e.CalculateTrustScore(model.BaseClassEU, reservations, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for i, tier := range []model.Tier{
		model.TierGovernance, model.TierGovernance, model.TierSecurity,
		model.TierContract, model.TierReliability, model.TierReliability,
		model.TierGovernance, model.TierContract,
	} {
		reservations = append(reservations, penalty(string(rune('a'+i)), tier, 5))

		res, err := e.CalculateTrustScore(model.BaseClassEU, reservations, nil)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if res.Breakdown.CapApplied == nil {
			t.Fatalf("step %d: expected the cap to be in effect", i)
		}

		before, after := prev.Breakdown.Dimensions[tier], res.Breakdown.Dimensions[tier]
		if after.Effective > before.Effective+1e-9 {
			t.Errorf("step %d: %s effective rose from %v to %v after adding a penalty to it", i, tier, before.Effective, after.Effective)
		}
		if after.Penalties < before.Penalties-1e-9 {
			t.Errorf("step %d: %s penalties fell from %v to %v", i, tier, before.Penalties, after.Penalties)
		}
		prev = res
	}
}

func TestCalculateTrustScore_OverflowingSums(t *testing.T) {
	e := newTestEngine(t)

	huge := math.MaxFloat64
	exemptSec := penalty("x1", model.TierSecurity, huge)
	exemptSec.ExemptFromCap = true
	exemptGov := penalty("x2", model.TierGovernance, huge)
	exemptGov.ExemptFromCap = true

	tests := []struct {
		desc         string
		reservations []model.Reservation
		signals      []model.PositiveSignal
		field        string
	}{
		{"one tier", []model.Reservation{penalty("a", model.TierSecurity, huge), penalty("b", model.TierSecurity, huge)}, nil, "penalty.amount"},
		{"across tiers", []model.Reservation{penalty("a", model.TierSecurity, huge), penalty("b", model.TierContract, huge)}, nil, "penalty.amount"},
		{"exempt across tiers", []model.Reservation{exemptSec, exemptGov}, nil, "penalty.amount"},
		{"signals", nil, []model.PositiveSignal{signal("a", model.TierContract, huge), signal("b", model.TierContract, huge)}, "amount"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			res, err := e.CalculateTrustScore(model.BaseClassEU, tt.reservations, tt.signals)
			var ie *model.InvalidEvidenceError
			if !errors.As(err, &ie) {
				t.Fatalf("Expected InvalidEvidenceError, got err=%v score=%v", err, res.Score)
			}
			if ie.Field != tt.field {
				t.Errorf("Expected field %s, got %s", tt.field, ie.Field)
			}
		})
	}
}

func TestCalculateTrustScore_HugeFiniteLoadStaysFinite(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.CalculateTrustScore(model.BaseClassEU, []model.Reservation{
		penalty("a", model.TierSecurity, math.MaxFloat64/4),
		penalty("b", model.TierGovernance, math.MaxFloat64/4),
	}, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if math.IsNaN(res.Score) || math.IsNaN(res.Breakdown.FinalScore100) {
		t.Fatalf("Expected a finite score, got %v", res.Score)
	}
	if !approx(res.Breakdown.PenaltyTotal, 15) {
		t.Errorf("Expected capped penalty total 15, got %v", res.Breakdown.PenaltyTotal)
	}
}

func TestCalculateTrustScore_InvalidDateWithoutRecency(t *testing.T) {
	e := newTestEngine(t)

	r := penalty("undated", model.TierSecurity, 1)
	r.Date = "last spring"

	_, err := e.CalculateTrustScore(model.BaseClassEU, []model.Reservation{r}, nil)
	var ie *model.InvalidEvidenceError
	if !errors.As(err, &ie) {
		t.Fatalf("Expected InvalidEvidenceError, got %v", err)
	}
	if ie.ItemID != "undated" || ie.Field != "date" {
		t.Errorf("Expected date error for undated, got %+v", ie)
	}

	r.Date = "2024-03-01T10:00:00Z"
	if _, err := e.CalculateTrustScore(model.BaseClassEU, []model.Reservation{r}, nil); err != nil {
		t.Errorf("Expected RFC 3339 date to be accepted, got %v", err)
	}
}
