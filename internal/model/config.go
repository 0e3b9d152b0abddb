package model

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the complete trustscore configuration
type Config struct {
	Scoring      ScoringConfig      `yaml:"scoring" mapstructure:"scoring"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
}

// ScoringConfig holds every static table the engine reads.
// It is loaded once and never mutated after the engine is built.
type ScoringConfig struct {
	BaseScores                 ClassTable              `yaml:"base_scores" mapstructure:"base_scores"`
	ClassCeilings              ClassTable              `yaml:"class_ceilings" mapstructure:"class_ceilings"`
	AdSurveillanceCeiling      float64                 `yaml:"ad_surveillance_ceiling" mapstructure:"ad_surveillance_ceiling"`
	CumulativePenaltyCap       float64                 `yaml:"cumulative_penalty_cap" mapstructure:"cumulative_penalty_cap"`
	DimensionMaxes             DimensionTable          `yaml:"dimension_maxes" mapstructure:"dimension_maxes"`
	DimensionBaselineFraction  float64                 `yaml:"dimension_baseline_fraction" mapstructure:"dimension_baseline_fraction"`
	NonVettedDimensionFraction float64                 `yaml:"non_vetted_dimension_fraction" mapstructure:"non_vetted_dimension_fraction"`
	Recency                    RecencyConfig           `yaml:"recency" mapstructure:"recency"`
	Jurisdiction               JurisdictionConfig      `yaml:"jurisdiction" mapstructure:"jurisdiction"`
	SignalRules                []SignalRule            `yaml:"signal_rules" mapstructure:"signal_rules"`
	PenaltyEstimation          PenaltyEstimationConfig `yaml:"penalty_estimation" mapstructure:"penalty_estimation"`
	EstimatePenalties          bool                    `yaml:"estimate_penalties" mapstructure:"estimate_penalties"` // Apply penalty estimation on the non-vetted path
}

// ClassTable holds one value per base class
type ClassTable struct {
	FOSS      float64 `yaml:"foss" mapstructure:"foss"`
	EU        float64 `yaml:"eu" mapstructure:"eu"`
	NonEU     float64 `yaml:"non_eu" mapstructure:"non_eu"`
	Rest      float64 `yaml:"rest" mapstructure:"rest"`
	US        float64 `yaml:"us" mapstructure:"us"`
	Autocracy float64 `yaml:"autocracy" mapstructure:"autocracy"`
}

// Get returns the value for b; unknown classes return false
func (t ClassTable) Get(b BaseClass) (float64, bool) {
	switch b {
	case BaseClassFOSS:
		return t.FOSS, true
	case BaseClassEU:
		return t.EU, true
	case BaseClassNonEU:
		return t.NonEU, true
	case BaseClassRest:
		return t.Rest, true
	case BaseClassUS:
		return t.US, true
	case BaseClassAutocracy:
		return t.Autocracy, true
	}
	return 0, false
}

// DimensionTable holds one value per tier
type DimensionTable struct {
	Security    float64 `yaml:"security" mapstructure:"security"`
	Governance  float64 `yaml:"governance" mapstructure:"governance"`
	Reliability float64 `yaml:"reliability" mapstructure:"reliability"`
	Contract    float64 `yaml:"contract" mapstructure:"contract"`
}

// Get returns the value for tier; unknown tiers return false
func (t DimensionTable) Get(tier Tier) (float64, bool) {
	switch tier {
	case TierSecurity:
		return t.Security, true
	case TierGovernance:
		return t.Governance, true
	case TierReliability:
		return t.Reliability, true
	case TierContract:
		return t.Contract, true
	}
	return 0, false
}

// RecencyConfig controls age-based penalty decay
type RecencyConfig struct {
	Enabled         bool             `yaml:"enabled" mapstructure:"enabled"` // CLI passes the run start time as the reference date
	Brackets        []RecencyBracket `yaml:"brackets" mapstructure:"brackets"`
	FloorMultiplier float64          `yaml:"floor_multiplier" mapstructure:"floor_multiplier"` // Applies past the last bracket
}

// RecencyBracket applies Multiplier to penalties younger than MaxYears
type RecencyBracket struct {
	MaxYears   float64 `yaml:"max_years" mapstructure:"max_years"`
	Multiplier float64 `yaml:"multiplier" mapstructure:"multiplier"`
}

// JurisdictionConfig maps country codes to base classes
type JurisdictionConfig struct {
	EUMemberStates []string             `yaml:"eu_member_states" mapstructure:"eu_member_states"`
	EuropeanNonEU  []string             `yaml:"european_non_eu" mapstructure:"european_non_eu"`
	MetaCodes      map[string]BaseClass `yaml:"meta_codes" mapstructure:"meta_codes"`
}

// SignalRule derives a synthetic positive signal for non-vetted entries.
// The rule fires once when any of its conditions match.
type SignalRule struct {
	ID              string          `yaml:"id" mapstructure:"id"`
	Text            string          `yaml:"text" mapstructure:"text"`
	Dimension       Tier            `yaml:"dimension" mapstructure:"dimension"`
	Amount          float64         `yaml:"amount" mapstructure:"amount"`
	AnyTags         []string        `yaml:"any_tags,omitempty" mapstructure:"any_tags"`
	OpenSourceLevel OpenSourceLevel `yaml:"open_source_level,omitempty" mapstructure:"open_source_level"`
	SelfHostable    bool            `yaml:"self_hostable,omitempty" mapstructure:"self_hostable"`
}

// PenaltyEstimationConfig drives EstimatePenalties for reservations without a penalty
type PenaltyEstimationConfig struct {
	Patterns        []TierPattern   `yaml:"patterns" mapstructure:"patterns"` // First match wins
	DefaultTier     Tier            `yaml:"default_tier" mapstructure:"default_tier"`
	SeverityAmounts SeverityAmounts `yaml:"severity_amounts" mapstructure:"severity_amounts"`
}

// TierPattern classifies reservation text into a tier
type TierPattern struct {
	Tier    Tier   `yaml:"tier" mapstructure:"tier"`
	Pattern string `yaml:"pattern" mapstructure:"pattern"` // Go regexp, matched case-insensitively
}

// SeverityAmounts maps severities to estimated penalty points
type SeverityAmounts struct {
	Major    float64 `yaml:"major" mapstructure:"major"`
	Moderate float64 `yaml:"moderate" mapstructure:"moderate"`
	Minor    float64 `yaml:"minor" mapstructure:"minor"` // Also used for unknown severities
}

// CacheConfig controls the batch result cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig controls worker counts
type ConcurrencyConfig struct {
	Workers      int `yaml:"workers" mapstructure:"workers"`             // Entry scoring workers
	CheckWorkers int `yaml:"check_workers" mapstructure:"check_workers"` // Concurrent source link checks
}

// HTTPConfig is used by the source link checker
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// RateLimitingConfig limits requests per site
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// LLMConfig configures the optional breakdown narration
type LLMConfig struct {
	Provider       string `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama, "" (disabled)
	Model          string `yaml:"model" mapstructure:"model"`
	APIKey         string `yaml:"-" mapstructure:"api_key"` // Never written to disk
	BaseURL        string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout        int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	StrictEvidence bool   `yaml:"strict_evidence" mapstructure:"strict_evidence"`
	MaxTokens      int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// OutputConfig controls rendering and logging
type OutputConfig struct {
	Verbose       bool   `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool   `yaml:"include_footer" mapstructure:"include_footer"`
	LogLevel      string `yaml:"log_level" mapstructure:"log_level"`
	LogPretty     bool   `yaml:"log_pretty" mapstructure:"log_pretty"`
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		Scoring: DefaultScoringConfig(),
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       defaultCacheDir(),
			MemoryTTL: 10 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers:      4,
			CheckWorkers: 10,
		},
		HTTP: HTTPConfig{
			Timeout:       10 * time.Second,
			UserAgent:     "trustscore/0.3 (+https://github.com/eualt/trustscore)",
			RespectRobots: true,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         4,
		},
		LLM: LLMConfig{
			Timeout:        30,
			StrictEvidence: true,
			MaxTokens:      600,
		},
		Output: OutputConfig{
			IncludeFooter: true,
			LogLevel:      "info",
			LogPretty:     true,
		},
	}
}

// DefaultScoringConfig returns the production scoring tables
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		BaseScores: ClassTable{
			FOSS:      80,
			EU:        70,
			NonEU:     65,
			Rest:      40,
			US:        20,
			Autocracy: 10,
		},
		ClassCeilings: ClassTable{
			FOSS:      100,
			EU:        97,
			NonEU:     95,
			Rest:      70,
			US:        50,
			Autocracy: 30,
		},
		AdSurveillanceCeiling: 45,
		CumulativePenaltyCap:  15,
		DimensionMaxes: DimensionTable{
			Security:    12,
			Governance:  8,
			Reliability: 6,
			Contract:    6,
		},
		DimensionBaselineFraction:  0.5,
		NonVettedDimensionFraction: 0.5,
		Recency: RecencyConfig{
			Brackets: []RecencyBracket{
				{MaxYears: 1, Multiplier: 1.0},
				{MaxYears: 3, Multiplier: 0.5},
				{MaxYears: 5, Multiplier: 0.25},
			},
			FloorMultiplier: 0.1,
		},
		Jurisdiction: JurisdictionConfig{
			EUMemberStates: []string{
				"at", "be", "bg", "hr", "cy", "cz", "dk", "ee",
				"fi", "fr", "de", "gr", "hu", "ie", "it", "lv",
				"lt", "lu", "mt", "nl", "pl", "pt", "ro", "sk",
				"si", "es", "se",
			},
			EuropeanNonEU: []string{"ch", "no", "gb", "is"},
			MetaCodes: map[string]BaseClass{
				"eu":  BaseClassEU,
				"oss": BaseClassFOSS,
				"us":  BaseClassUS,
			},
		},
		SignalRules: []SignalRule{
			{ID: "e2e-encryption-default", Text: "End-to-end encryption", Dimension: TierSecurity, Amount: 2, AnyTags: []string{"encryption", "zero-knowledge"}},
			{ID: "data-minimization-verified", Text: "Privacy / no-logs practices", Dimension: TierSecurity, Amount: 1, AnyTags: []string{"privacy", "no-logs"}},
			{ID: "full-open-source", Text: "Fully open-source", Dimension: TierGovernance, Amount: 2, OpenSourceLevel: OpenSourceFull},
			{ID: "partial-open-source", Text: "Partially open-source", Dimension: TierGovernance, Amount: 1, OpenSourceLevel: OpenSourcePartial},
			{ID: "gdpr-dpa-documented", Text: "GDPR compliance documented", Dimension: TierGovernance, Amount: 1, AnyTags: []string{"gdpr"}},
			{ID: "multi-region-infrastructure", Text: "Federated/local resilience", Dimension: TierReliability, Amount: 1, AnyTags: []string{"federated", "local", "offline"}},
			{ID: "self-hostable", Text: "Self-hostable", Dimension: TierContract, Amount: 2, SelfHostable: true},
			{ID: "open-standards-no-lock-in", Text: "Open-source prevents lock-in", Dimension: TierContract, Amount: 1, OpenSourceLevel: OpenSourceFull},
		},
		PenaltyEstimation: PenaltyEstimationConfig{
			Patterns: []TierPattern{
				{Tier: TierSecurity, Pattern: `breach|vulnerab|cve|exploit|encrypt|tracker|unauthorized|injection|bypass|attack|malicious|phishing|2fa|mfa|credential|leak|compromise|security|audit|pentest|ddos|intercept`},
				{Tier: TierReliability, Pattern: `outage|incident|downtime|availab|status|deprecat|degrad|disrupt|suspend|latency|maintenance|uptime|infra`},
				{Tier: TierContract, Pattern: `lock-in|portab|cancel|terminat|pricing|renewal|arbitrat|subscript|fee|charge|billing|invoice|refund|unilateral|reserve|withhold|waiver|class-action|non-commercial|liability|indemnif|license|restriction|restrict|sublicens`},
			},
			DefaultTier: TierGovernance,
			SeverityAmounts: SeverityAmounts{
				Major:    4,
				Moderate: 2,
				Minor:    1,
			},
		},
	}
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".trustscore-cache"
	}
	return filepath.Join(dir, "trustscore")
}
