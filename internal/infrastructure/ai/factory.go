package ai

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fintrack/fintrack_service/internal/infrastructure/config"
	"github.com/fintrack/fintrack_service/pkg/retry"
)

// NewFromConfig builds the configured primary provider wrapped for resilience.
// It returns nil when AI is disabled or the primary provider has no API key.
func NewFromConfig(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) (AIProvider, error) {
	var provider AIProvider

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	switch cfg.Primary {
	case "none", "":
		return nil, nil
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			return nil, nil
		}
		provider = NewOpenAIProvider(OpenAIConfig{
			APIKey:      cfg.OpenAI.APIKey,
			BaseURL:     cfg.OpenAI.BaseURL,
			Model:       cfg.OpenAI.Model,
			MaxTokens:   cfg.OpenAI.MaxTokens,
			Temperature: cfg.OpenAI.Temperature,
			Timeout:     timeout,
		}, logger)
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, nil
		}
		provider = NewGeminiProvider(OpenAIConfig{
			APIKey:      cfg.Gemini.APIKey,
			BaseURL:     cfg.Gemini.BaseURL,
			Model:       cfg.Gemini.Model,
			MaxTokens:   cfg.Gemini.MaxTokens,
			Temperature: cfg.Gemini.Temperature,
			Timeout:     timeout,
		}, logger)
	case "anthropic":
		if cfg.Anthropic.APIKey == "" {
			return nil, nil
		}
		provider = NewAnthropicProvider(cfg.Anthropic.APIKey, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens, cfg.Anthropic.Temperature, logger)
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Primary)
	}

	policy := retry.DefaultPolicy()
	if cfg.MaxRetries >= 0 {
		policy.MaxRetries = cfg.MaxRetries
	}

	logger.Info("AI provider configured", zap.String("provider", provider.Name()))
	return NewResilientProvider(provider, BreakerConfig{
		MaxFailures: cfg.Breaker.MaxFailures,
		OpenTimeout: time.Duration(cfg.Breaker.OpenTimeoutSecs) * time.Second,
	}, policy, logger), nil
}
