package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/eualt/trustscore/internal/model"
	"github.com/eualt/trustscore/internal/score"
)

// Shared by score and batch
var (
	asOf              string
	estimatePenalties bool
)

// Shared by batch and sources
var (
	idsFile string
	noCache bool
)

var (
	llmEnabled  bool
	llmProvider string
	llmModel    string
)

func addScoringFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&asOf, "as-of", "", "reference date for recency decay (YYYY-MM-DD or \"now\"); default from scoring.recency.enabled")
	cmd.Flags().BoolVar(&estimatePenalties, "estimate-penalties", false, "estimate missing penalties for entries without curated evidence")
}

// referenceDate resolves --as-of. Without the flag, recency runs relative to now
// only when the config enables it.
func referenceDate(cfg *model.Config, flag string, now time.Time) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(flag)) {
	case "":
		if cfg.Scoring.Recency.Enabled {
			return now.UTC(), nil
		}
		return time.Time{}, nil
	case "now":
		return now.UTC(), nil
	}

	t, err := time.Parse("2006-01-02", strings.TrimSpace(flag))
	if err != nil {
		return time.Time{}, &ExitError{Code: exitInput, Err: fmt.Errorf("invalid --as-of %q: want YYYY-MM-DD", flag)}
	}
	return t, nil
}

func estimateEnabled(cmd *cobra.Command, cfg *model.Config) bool {
	if cmd.Flags().Changed("estimate-penalties") {
		return estimatePenalties
	}
	return cfg.Scoring.EstimatePenalties
}

func scoreOptions(ref time.Time, estimate bool) []score.Option {
	var opts []score.Option
	if !ref.IsZero() {
		opts = append(opts, score.WithAsOf(ref))
	}
	if estimate {
		opts = append(opts, score.WithEstimatedPenalties(true))
	}
	return opts
}

// applyLLMFlags merges the --llm-* flags into cfg and resolves the API key
func applyLLMFlags(cfg *model.Config) error {
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "openai"
	}

	switch strings.ToLower(cfg.LLM.Provider) {
	case "openai":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
		if cfg.LLM.APIKey == "" {
			return &ExitError{Code: exitInput, Err: fmt.Errorf("OPENAI_API_KEY environment variable not set")}
		}
	case "anthropic", "claude":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if cfg.LLM.APIKey == "" {
			return &ExitError{Code: exitInput, Err: fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")}
		}
	case "ollama":
		if base := os.Getenv("OLLAMA_BASE_URL"); base != "" && cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = base
		}
	}

	return nil
}
