package model

// Tier is one of the four independent trust dimensions
type Tier string

const (
	TierSecurity    Tier = "security"
	TierGovernance  Tier = "governance"
	TierReliability Tier = "reliability"
	TierContract    Tier = "contract"
)

// Tiers is the canonical iteration order for dimensions
var Tiers = []Tier{TierSecurity, TierGovernance, TierReliability, TierContract}

// Valid reports whether t is one of the four known tiers
func (t Tier) Valid() bool {
	switch t {
	case TierSecurity, TierGovernance, TierReliability, TierContract:
		return true
	}
	return false
}

func (t Tier) String() string {
	return string(t)
}

// Severity is display-only metadata on a reservation
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeverityMajor    Severity = "major"
)

// Penalty is the scoring payload carried by a reservation
type Penalty struct {
	Tier   Tier    `json:"tier" yaml:"tier"`
	Amount float64 `json:"amount" yaml:"amount"` // Positive points, subtracted from the dimension
}

// Reservation is a negative evidentiary item attached to an entry
type Reservation struct {
	ID        string   `json:"id" yaml:"id"`
	Text      string   `json:"text" yaml:"text"`
	TextDe    string   `json:"textDe,omitempty" yaml:"textDe,omitempty"`
	Severity  Severity `json:"severity" yaml:"severity"`
	Date      string   `json:"date,omitempty" yaml:"date,omitempty"`           // ISO date, drives recency decay when enabled
	SourceURL string   `json:"sourceUrl,omitempty" yaml:"sourceUrl,omitempty"` // Display only
	Penalty   *Penalty `json:"penalty,omitempty" yaml:"penalty,omitempty"`     // nil = informational only, 0 points

	// ExemptFromCap marks penalties that bypass the cumulative penalty cap
	ExemptFromCap bool `json:"exemptFromCap,omitempty" yaml:"exemptFromCap,omitempty"`
}

// PositiveSignal is a positive evidentiary item attached to an entry
type PositiveSignal struct {
	ID        string  `json:"id" yaml:"id"`
	Text      string  `json:"text" yaml:"text"`
	TextDe    string  `json:"textDe,omitempty" yaml:"textDe,omitempty"`
	Dimension Tier    `json:"dimension" yaml:"dimension"`
	Amount    float64 `json:"amount" yaml:"amount"`
	SourceURL string  `json:"sourceUrl,omitempty" yaml:"sourceUrl,omitempty"`
}
