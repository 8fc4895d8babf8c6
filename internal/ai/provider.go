package ai

import (
	"fmt"

	"github.com/nhle/safesignal/internal/model"
)

// NewService builds the TextService selected by cfg. It returns nil when
// apiKey is empty so callers can run in fallback-only mode.
func NewService(cfg model.AIConfig, apiKey string) (TextService, error) {
	if apiKey == "" {
		return nil, nil
	}

	timeout := cfg.Timeout()

	switch cfg.Provider {
	case "", "gemini":
		return NewGeminiService(apiKey, cfg.Model, cfg.MaxTokens, timeout), nil
	case "anthropic":
		return NewAnthropicService(apiKey, cfg.Model, cfg.MaxTokens, timeout), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}
