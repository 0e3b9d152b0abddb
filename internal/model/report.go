package model

import "time"

// Status tells consumers whether a score was fully audited
type Status string

const (
	StatusReady   Status = "ready"   // Vetted evidence, full breakdown
	StatusPending Status = "pending" // Heuristic estimate, breakdown withheld
)

// DimensionBreakdown is the audit line for one dimension
type DimensionBreakdown struct {
	Max       float64 `json:"max"`
	Penalties float64 `json:"penalties"` // After cumulative cap scaling, not raw
	Signals   float64 `json:"signals"`
	Effective float64 `json:"effective"` // clamp(baseline - penalties + signals, 0, max)
}

// TrustScoreBreakdown is the complete, reproducible audit trail of one score
type TrustScoreBreakdown struct {
	BaseClass        BaseClass                   `json:"baseClass"`
	BaseScore        float64                     `json:"baseScore"`
	Dimensions       map[Tier]DimensionBreakdown `json:"dimensions"`
	OperationalTotal float64                     `json:"operationalTotal"`
	PenaltyTotal     float64                     `json:"penaltyTotal"`
	SignalTotal      float64                     `json:"signalTotal"`
	CapApplied       *float64                    `json:"capApplied"`     // Cumulative penalty scale factor, nil when the cap did not fire
	CeilingApplied   *float64                    `json:"ceilingApplied"` // Score ceiling that lowered the raw score, nil otherwise
	AdSurveillance   bool                        `json:"adSurveillance,omitempty"`
	FinalScore100    float64                     `json:"finalScore100"`
}

// ScoreResult is what each composer returns
type ScoreResult struct {
	Score     float64             `json:"score"` // 0-10, one decimal
	Breakdown TrustScoreBreakdown `json:"breakdown"`
}

// TrustResult is the outward-facing result handed to the serving layer
type TrustResult struct {
	TrustScore          float64              `json:"trustScore"`
	TrustScoreStatus    Status               `json:"trustScoreStatus"`
	TrustScoreBreakdown *TrustScoreBreakdown `json:"trustScoreBreakdown,omitempty"`
}

// Report is the output of a batch scoring run
type Report struct {
	GeneratedAt       time.Time     `json:"generatedAt"`
	ConfigFingerprint string        `json:"configFingerprint"`
	Entries           []ScoredEntry `json:"entries"`
	Failures          []Failure     `json:"failures,omitempty"`
}

// ScoredEntry pairs an entry with its result and optional diagnostics
type ScoredEntry struct {
	ID          string       `json:"id"`
	Name        string       `json:"name,omitempty"`
	Result      TrustResult  `json:"result"`
	Explanation *Explanation `json:"explanation,omitempty"` // Optional LLM narration, never affects the score
	Links       []LinkStatus `json:"links,omitempty"`       // Optional source link checks, never affect the score
	Cached      bool         `json:"-"`
}

// Failure records an entry that could not be scored
type Failure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// Explanation is an optional LLM narration of a ready breakdown
type Explanation struct {
	Provider  string   `json:"provider"`
	Model     string   `json:"model,omitempty"`
	Summary   string   `json:"summary"`
	CitedURLs []string `json:"citedUrls,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// LinkStatus is the result of checking one evidence source URL
type LinkStatus struct {
	URL          string   `json:"url"`
	ItemIDs      []string `json:"itemIds,omitempty"` // Reservations/signals citing this URL
	IsAccessible bool     `json:"isAccessible"`
	StatusCode   int      `json:"statusCode,omitempty"`
	IsDead       bool     `json:"isDead"`
	RedirectURL  string   `json:"redirectUrl,omitempty"`
	Disallowed   bool     `json:"disallowed,omitempty"` // robots.txt forbids checking
	Error        string   `json:"error,omitempty"`
}
