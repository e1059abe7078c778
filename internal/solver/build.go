package solver

import (
	"go.uber.org/zap"

	"go-chi-calculator/internal/config"
)

// FromConfig builds the rate-limited OpenAI solver described by cfg. It
// returns ErrNotConfigured when cfg carries no API key. Timeouts are left to
// the caller.
func FromConfig(cfg config.AI, logger *zap.Logger) (Solver, error) {
	ai, err := NewOpenAI(OpenAIConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}
	return WithRateLimit(ai, PerMinute(cfg.RatePerMinute)), nil
}
