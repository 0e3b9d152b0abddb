package llm

import (
	"context"
	"fmt"

	"github.com/eualt/trustscore/internal/model"
	"github.com/eualt/trustscore/internal/sources"
	"github.com/rs/zerolog"
)

// Explainer narrates ready breakdowns. The narration never feeds back into a score.
type Explainer struct {
	provider Provider
	config   Config
	logger   zerolog.Logger
}

// NewExplainer builds the configured provider. With no provider the explainer is disabled.
func NewExplainer(config Config, logger zerolog.Logger) (*Explainer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return NewExplainerWithProvider(provider, config, logger), nil
}

// NewExplainerWithProvider wraps an already constructed provider
func NewExplainerWithProvider(provider Provider, config Config, logger zerolog.Logger) *Explainer {
	return &Explainer{
		provider: provider,
		config:   config,
		logger:   logger.With().Str("component", "llm").Logger(),
	}
}

// IsEnabled reports whether a provider is configured
func (e *Explainer) IsEnabled() bool {
	return e != nil && e.provider != nil
}

// ProviderName returns the provider name, or "" when disabled
func (e *Explainer) ProviderName() string {
	if !e.IsEnabled() {
		return ""
	}
	return e.provider.Name()
}

// Available pings the provider and logs the reason when it is unreachable
func (e *Explainer) Available(ctx context.Context) bool {
	if !e.IsEnabled() {
		return false
	}
	if err := e.provider.Ping(ctx); err != nil {
		e.logger.Warn().Err(err).Str("provider", e.provider.Name()).Msg("LLM provider unavailable")
		return false
	}
	return true
}

// Explain narrates result for entry. It returns nil, nil when disabled or when
// the result is pending, since pending results have no audited breakdown.
func (e *Explainer) Explain(ctx context.Context, entry model.Entry, result model.TrustResult) (*model.Explanation, error) {
	if !e.IsEnabled() {
		return nil, nil
	}
	if result.TrustScoreStatus != model.StatusReady || result.TrustScoreBreakdown == nil {
		e.logger.Debug().Str("entry", entry.ID).Msg("skipping explanation of pending result")
		return nil, nil
	}

	allowed := sources.EntryURLs(entry)
	resp, err := e.provider.Complete(ctx, CompletionRequest{
		System:    systemPrompt,
		Prompt:    BuildPrompt(entry, result, allowed),
		Model:     e.config.Model,
		MaxTokens: e.config.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e.provider.Name(), err)
	}
	if resp.Text == "" {
		return nil, fmt.Errorf("%s: empty response", e.provider.Name())
	}

	explanation := &model.Explanation{
		Provider:  e.provider.Name(),
		Model:     resp.Model,
		Summary:   resp.Text,
		CitedURLs: extractURLs(resp.Text),
	}

	if leaked := disallowed(explanation.CitedURLs, allowed); len(leaked) > 0 {
		if e.config.StrictEvidence {
			return nil, &CitationLeakError{URLs: leaked}
		}
		for _, u := range leaked {
			explanation.Warnings = append(explanation.Warnings, "cites URL outside the entry's sources: "+u)
		}
		e.logger.Warn().Str("entry", entry.ID).Strs("urls", leaked).Msg("explanation cites unlisted URLs")
	}

	e.logger.Debug().
		Str("entry", entry.ID).
		Str("model", resp.Model).
		Int("tokens", resp.TokensUsed).
		Msg("explained breakdown")

	return explanation, nil
}
