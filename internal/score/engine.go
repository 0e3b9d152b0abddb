package score

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/eualt/trustscore/internal/model"
)

// Engine computes trust scores from an immutable scoring configuration.
// An Engine holds no mutable state and is safe for concurrent use.
type Engine struct {
	cfg           model.ScoringConfig
	euMembers     map[string]bool
	europeanNonEU map[string]bool
	metaCodes     map[string]model.BaseClass
	signalRules   []signalRule
	tierPatterns  []tierPattern
}

type signalRule struct {
	model.SignalRule
	tags map[string]bool
}

type tierPattern struct {
	tier model.Tier
	re   *regexp.Regexp
}

// NewEngine validates cfg and builds an engine from it
func NewEngine(cfg model.ScoringConfig) (*Engine, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:           cfg,
		euMembers:     toSet(cfg.Jurisdiction.EUMemberStates),
		europeanNonEU: toSet(cfg.Jurisdiction.EuropeanNonEU),
		metaCodes:     make(map[string]model.BaseClass, len(cfg.Jurisdiction.MetaCodes)),
	}

	// Own copies, so later changes to the caller's slices cannot reach the engine
	e.cfg.Recency.Brackets = append([]model.RecencyBracket(nil), cfg.Recency.Brackets...)
	e.cfg.SignalRules = nil
	e.cfg.PenaltyEstimation.Patterns = append([]model.TierPattern(nil), cfg.PenaltyEstimation.Patterns...)

	for code, class := range cfg.Jurisdiction.MetaCodes {
		e.metaCodes[normalizeCountry(code)] = class
	}

	for _, r := range cfg.SignalRules {
		rule := r
		rule.AnyTags = append([]string(nil), r.AnyTags...)
		e.cfg.SignalRules = append(e.cfg.SignalRules, rule)
		e.signalRules = append(e.signalRules, signalRule{SignalRule: rule, tags: toSet(rule.AnyTags)})
	}

	for _, p := range cfg.PenaltyEstimation.Patterns {
		// Validated above, MustCompile cannot panic here
		e.tierPatterns = append(e.tierPatterns, tierPattern{
			tier: p.Tier,
			re:   regexp.MustCompile("(?i)" + p.Pattern),
		})
	}

	return e, nil
}

// Config returns a copy of the engine's scoring configuration
func (e *Engine) Config() model.ScoringConfig {
	cfg := e.cfg
	cfg.Recency.Brackets = append([]model.RecencyBracket(nil), e.cfg.Recency.Brackets...)
	cfg.SignalRules = append([]model.SignalRule(nil), e.cfg.SignalRules...)
	cfg.PenaltyEstimation.Patterns = append([]model.TierPattern(nil), e.cfg.PenaltyEstimation.Patterns...)
	return cfg
}

// Option tunes a single scoring call
type Option func(*options)

type options struct {
	adSurveillance    bool
	exemptIDs         map[string]bool
	asOf              time.Time
	estimatePenalties bool
}

// WithAdSurveillance applies the ad-surveillance ceiling on the vetted path
func WithAdSurveillance(on bool) Option {
	return func(o *options) {
		o.adSurveillance = on
	}
}

// WithCapExemptIDs exempts the named reservations from the cumulative penalty cap,
// in addition to reservations flagged ExemptFromCap
func WithCapExemptIDs(ids ...string) Option {
	return func(o *options) {
		if o.exemptIDs == nil {
			o.exemptIDs = make(map[string]bool, len(ids))
		}
		for _, id := range ids {
			o.exemptIDs[id] = true
		}
	}
}

func withoutCapExemptIDs() Option {
	return func(o *options) {
		o.exemptIDs = nil
	}
}

// WithAsOf enables recency decay relative to t. The zero time disables it.
func WithAsOf(t time.Time) Option {
	return func(o *options) {
		o.asOf = t
	}
}

// WithEstimatedPenalties fills in missing penalties on the non-vetted path
func WithEstimatedPenalties(on bool) Option {
	return func(o *options) {
		o.estimatePenalties = on
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) isExempt(r model.Reservation) bool {
	return r.ExemptFromCap || o.exemptIDs[r.ID]
}

func validateConfig(cfg model.ScoringConfig) error {
	for _, b := range model.BaseClasses {
		score, _ := cfg.BaseScores.Get(b)
		if err := checkRange("base_scores."+string(b), score, 0, 100); err != nil {
			return err
		}
		ceiling, _ := cfg.ClassCeilings.Get(b)
		if err := checkRange("class_ceilings."+string(b), ceiling, 0, 100); err != nil {
			return err
		}
	}
	if err := checkRange("ad_surveillance_ceiling", cfg.AdSurveillanceCeiling, 0, 100); err != nil {
		return err
	}
	if !isFinite(cfg.CumulativePenaltyCap) || cfg.CumulativePenaltyCap <= 0 {
		return &model.InvalidConfigurationError{Key: "cumulative_penalty_cap", Reason: "must be a positive number"}
	}

	for _, t := range model.Tiers {
		dimMax, _ := cfg.DimensionMaxes.Get(t)
		if !isFinite(dimMax) || dimMax < 0 {
			return &model.InvalidConfigurationError{Key: "dimension_maxes." + string(t), Reason: "must be a non-negative number"}
		}
	}
	if err := checkRange("dimension_baseline_fraction", cfg.DimensionBaselineFraction, 0, 1); err != nil {
		return err
	}
	if err := checkRange("non_vetted_dimension_fraction", cfg.NonVettedDimensionFraction, 0, 1); err != nil {
		return err
	}

	prev := 0.0
	for i, b := range cfg.Recency.Brackets {
		key := fmt.Sprintf("recency.brackets[%d]", i)
		if !isFinite(b.MaxYears) || b.MaxYears <= prev {
			return &model.InvalidConfigurationError{Key: key + ".max_years", Reason: "brackets must have strictly ascending positive bounds"}
		}
		if err := checkRange(key+".multiplier", b.Multiplier, 0, 1); err != nil {
			return err
		}
		prev = b.MaxYears
	}
	if err := checkRange("recency.floor_multiplier", cfg.Recency.FloorMultiplier, 0, 1); err != nil {
		return err
	}

	for code, class := range cfg.Jurisdiction.MetaCodes {
		if !class.Valid() {
			return &model.InvalidConfigurationError{Key: "jurisdiction.meta_codes." + code, Reason: fmt.Sprintf("unknown base class %q", class)}
		}
	}

	for i, r := range cfg.SignalRules {
		key := fmt.Sprintf("signal_rules[%d]", i)
		if r.ID == "" {
			return &model.InvalidConfigurationError{Key: key + ".id", Reason: "is required"}
		}
		if !r.Dimension.Valid() {
			return &model.InvalidConfigurationError{Key: key + ".dimension", Reason: fmt.Sprintf("unknown dimension %q", r.Dimension)}
		}
		if !isFinite(r.Amount) || r.Amount < 0 {
			return &model.InvalidConfigurationError{Key: key + ".amount", Reason: "must be a non-negative number"}
		}
	}

	pe := cfg.PenaltyEstimation
	for i, p := range pe.Patterns {
		key := fmt.Sprintf("penalty_estimation.patterns[%d]", i)
		if !p.Tier.Valid() {
			return &model.InvalidConfigurationError{Key: key + ".tier", Reason: fmt.Sprintf("unknown tier %q", p.Tier)}
		}
		if _, err := regexp.Compile("(?i)" + p.Pattern); err != nil {
			return &model.InvalidConfigurationError{Key: key + ".pattern", Reason: err.Error()}
		}
	}
	if !pe.DefaultTier.Valid() {
		return &model.InvalidConfigurationError{Key: "penalty_estimation.default_tier", Reason: fmt.Sprintf("unknown tier %q", pe.DefaultTier)}
	}
	amounts := []struct {
		name string
		v    float64
	}{
		{"major", pe.SeverityAmounts.Major},
		{"moderate", pe.SeverityAmounts.Moderate},
		{"minor", pe.SeverityAmounts.Minor},
	}
	for _, a := range amounts {
		if !isFinite(a.v) || a.v < 0 {
			return &model.InvalidConfigurationError{Key: "penalty_estimation.severity_amounts." + a.name, Reason: "must be a non-negative number"}
		}
	}

	return nil
}

func checkRange(key string, v, lo, hi float64) error {
	if !isFinite(v) || v < lo || v > hi {
		return &model.InvalidConfigurationError{Key: key, Reason: fmt.Sprintf("must be within [%g, %g], got %g", lo, hi, v)}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[strings.ToLower(strings.TrimSpace(v))] = true
	}
	return set
}
