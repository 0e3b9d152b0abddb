package llm

import (
	"fmt"
	"strings"

	"github.com/eualt/trustscore/internal/model"
)

// NewProvider creates a new LLM provider based on configuration.
// An empty provider name disables narration and returns nil, nil.
func NewProvider(config Config) (Provider, error) {
	var (
		provider Provider
		err      error
	)

	switch strings.ToLower(strings.TrimSpace(config.Provider)) {
	case "openai":
		provider, err = NewOpenAIProvider(config)

	case "anthropic", "claude":
		provider, err = NewAnthropicProvider(config)

	case "ollama":
		provider, err = NewOllamaProvider(config)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, ollama)", config.Provider)
	}

	if err != nil {
		return nil, err
	}
	return provider, nil
}

// ConfigFromModel builds a provider config from the LLM and HTTP sections
func ConfigFromModel(llmConfig model.LLMConfig, httpConfig model.HTTPConfig) Config {
	return Config{
		Provider:       llmConfig.Provider,
		Model:          llmConfig.Model,
		APIKey:         llmConfig.APIKey,
		BaseURL:        llmConfig.BaseURL,
		Timeout:        llmConfig.Timeout,
		StrictEvidence: llmConfig.StrictEvidence,
		MaxTokens:      llmConfig.MaxTokens,
		HTTPProxy:      httpConfig.HTTPProxy,
		HTTPSProxy:     httpConfig.HTTPSProxy,
		NoProxy:        httpConfig.NoProxy,
	}
}
