// Package ai turns analytics reports into AI narrative insights and recommendations.
package ai

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/fintrack/fintrack_service/internal/domain/entities"
	"github.com/fintrack/fintrack_service/internal/infrastructure/ai"
	"github.com/fintrack/fintrack_service/pkg/metrics"
)

// UnavailableMessage accompanies the narrative whenever the provider cannot be used
const UnavailableMessage = "AI analysis unavailable, falling back to traditional analysis"

const (
	defaultTimeout     = 30 * time.Second
	narrativeMaxTokens = 2048
)

// Generator produces the narrative part of an analysis
type Generator struct {
	provider ai.AIProvider
	timeout  time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewGenerator creates a generator. A nil provider makes every narrative unavailable.
func NewGenerator(provider ai.AIProvider, timeout time.Duration, logger *zap.Logger) *Generator {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Generator{provider: provider, timeout: timeout, logger: logger, now: time.Now}
}

// Generate asks the provider for a narrative about report. It never fails:
// provider errors yield an unavailable result and unparsable replies the
// parse fallback.
func (g *Generator) Generate(ctx context.Context, report *entities.Report) *entities.AIInsights {
	ctx, span := otel.Tracer("ai.service").Start(ctx, "GenerateNarrative")
	defer span.End()

	if g.provider == nil {
		return g.unavailable()
	}
	span.SetAttributes(attribute.String("ai.provider", g.provider.Name()))

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.provider.ChatCompletion(ctx, &ai.ChatRequest{
		Messages: []ai.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildAnalysisPrompt(report)},
		},
		MaxTokens: narrativeMaxTokens,
	})
	if err != nil {
		span.RecordError(err)
		g.logger.Warn("AI narrative generation failed",
			zap.String("user_id", report.UserID.String()),
			zap.String("provider", g.provider.Name()),
			zap.Error(err))
		return g.unavailable()
	}

	narrative, err := ParseNarrative(resp.Content)
	if err != nil {
		metrics.AINormalizationFallbacks.Inc()
		g.logger.Warn("AI reply could not be parsed",
			zap.String("user_id", report.UserID.String()),
			zap.String("provider", resp.Provider),
			zap.Error(err))
	}

	return &entities.AIInsights{
		Available:   true,
		Provider:    resp.Provider,
		Narrative:   narrative,
		GeneratedAt: g.now().UTC(),
	}
}

func (g *Generator) unavailable() *entities.AIInsights {
	return &entities.AIInsights{
		Available:   false,
		Message:     UnavailableMessage,
		Narrative:   ParseFallback(),
		GeneratedAt: g.now().UTC(),
	}
}
