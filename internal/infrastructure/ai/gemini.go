package ai

import (
	"strings"
	"time"

	"go.uber.org/zap"
)

// GeminiBaseURL is Google's OpenAI-compatible Generative Language endpoint
const GeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"

// NewGeminiProvider returns a chat client for Gemini models. The API key is sent
// as a bearer token to the OpenAI-compatible endpoint.
func NewGeminiProvider(cfg OpenAIConfig, logger *zap.Logger) *OpenAIProvider {
	cfg.Name = "gemini"
	if cfg.BaseURL == "" {
		cfg.BaseURL = GeminiBaseURL
	}
	cfg.Model = strings.TrimPrefix(cfg.Model, "models/")
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return NewOpenAIProvider(cfg, logger)
}
