package model

import "strings"

// BaseClass is the coarse trust category an entry starts from
type BaseClass string

const (
	BaseClassFOSS      BaseClass = "foss"
	BaseClassEU        BaseClass = "eu"
	BaseClassNonEU     BaseClass = "nonEU"
	BaseClassRest      BaseClass = "rest"
	BaseClassUS        BaseClass = "us"
	BaseClassAutocracy BaseClass = "autocracy"
)

// BaseClasses lists every base class, highest starting score first
var BaseClasses = []BaseClass{
	BaseClassFOSS,
	BaseClassEU,
	BaseClassNonEU,
	BaseClassRest,
	BaseClassUS,
	BaseClassAutocracy,
}

// Valid reports whether b is a known base class
func (b BaseClass) Valid() bool {
	switch b {
	case BaseClassFOSS, BaseClassEU, BaseClassNonEU, BaseClassRest, BaseClassUS, BaseClassAutocracy:
		return true
	}
	return false
}

// ParseBaseClass converts an override string into a BaseClass.
// Unknown values are rejected; there is no fallback class.
func ParseBaseClass(s string) (BaseClass, error) {
	b := BaseClass(strings.TrimSpace(s))
	if !b.Valid() {
		return "", &InvalidConfigurationError{Key: "baseClassOverride", Reason: "unknown base class " + quote(s)}
	}
	return b, nil
}

// OpenSourceLevel describes how much of a product's code is published
type OpenSourceLevel string

const (
	OpenSourceFull    OpenSourceLevel = "full"
	OpenSourcePartial OpenSourceLevel = "partial"
	OpenSourceNone    OpenSourceLevel = "none"
)

// ScoringMetadata is the curated per-entry scoring override.
// Its presence marks an entry as vetted.
type ScoringMetadata struct {
	BaseClassOverride string `json:"baseClassOverride,omitempty" yaml:"baseClassOverride,omitempty"`
	IsAdSurveillance  bool   `json:"isAdSurveillance,omitempty" yaml:"isAdSurveillance,omitempty"`
}

// Entry is one catalog row together with its evidence, as supplied by the evidence store
type Entry struct {
	ID              string           `json:"id" yaml:"id"`
	Name            string           `json:"name,omitempty" yaml:"name,omitempty"`
	Country         string           `json:"country,omitempty" yaml:"country,omitempty"`
	OpenSourceLevel OpenSourceLevel  `json:"openSourceLevel,omitempty" yaml:"openSourceLevel,omitempty"`
	SelfHostable    bool             `json:"selfHostable,omitempty" yaml:"selfHostable,omitempty"`
	Tags            []string         `json:"tags,omitempty" yaml:"tags,omitempty"`
	Reservations    []Reservation    `json:"reservations,omitempty" yaml:"reservations,omitempty"`
	PositiveSignals []PositiveSignal `json:"positiveSignals,omitempty" yaml:"positiveSignals,omitempty"`
	ScoringMetadata *ScoringMetadata `json:"scoringMetadata,omitempty" yaml:"scoringMetadata,omitempty"`
}

// IsVetted reports whether the entry carries curated scoring evidence
func (e Entry) IsVetted() bool {
	return e.ScoringMetadata != nil || len(e.PositiveSignals) > 0
}

// Evidence resolves the entry into the evidence variant its scoring path needs
func (e Entry) Evidence() (Evidence, error) {
	if !e.IsVetted() {
		return HeuristicEvidence{
			Country:         e.Country,
			OpenSourceLevel: e.OpenSourceLevel,
			Tags:            e.Tags,
			SelfHostable:    e.SelfHostable,
			Reservations:    e.Reservations,
		}, nil
	}

	ev := VettedEvidence{
		Country:         e.Country,
		OpenSourceLevel: e.OpenSourceLevel,
		Reservations:    e.Reservations,
		Signals:         e.PositiveSignals,
	}
	if e.ScoringMetadata != nil {
		ev.IsAdSurveillance = e.ScoringMetadata.IsAdSurveillance
		if e.ScoringMetadata.BaseClassOverride != "" {
			b, err := ParseBaseClass(e.ScoringMetadata.BaseClassOverride)
			if err != nil {
				return nil, err
			}
			ev.BaseClassOverride = b
		}
	}
	return ev, nil
}

// Evidence is either VettedEvidence or HeuristicEvidence
type Evidence interface {
	evidenceKind() string
}

// VettedEvidence feeds the full v2 computation
type VettedEvidence struct {
	BaseClassOverride BaseClass // Empty means assign from jurisdiction
	Country           string
	OpenSourceLevel   OpenSourceLevel
	Reservations      []Reservation
	Signals           []PositiveSignal
	IsAdSurveillance  bool
}

func (VettedEvidence) evidenceKind() string { return "vetted" }

// HeuristicEvidence feeds the simple computation for entries without curated evidence
type HeuristicEvidence struct {
	Country         string
	OpenSourceLevel OpenSourceLevel
	Tags            []string
	SelfHostable    bool
	Reservations    []Reservation
}

func (HeuristicEvidence) evidenceKind() string { return "heuristic" }
