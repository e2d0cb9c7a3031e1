package ai

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/fintrack/fintrack_service/internal/domain/entities"
	domainerrors "github.com/fintrack/fintrack_service/internal/domain/errors"
	"github.com/fintrack/fintrack_service/internal/domain/services/analytics"
	"github.com/fintrack/fintrack_service/internal/infrastructure/ai"
	"github.com/fintrack/fintrack_service/pkg/metrics"
)

const (
	recommendationHorizon   = 7
	recommendationWindow    = analytics.DefaultAnalysisWindow
	recommendationMaxTokens = 2048
)

// TransactionLister returns all of a user's transactions with categories resolved
type TransactionLister interface {
	ListTransactions(ctx context.Context, userID uuid.UUID) ([]*entities.Transaction, error)
}

// BudgetReader returns the user's budget
type BudgetReader interface {
	GetBudget(ctx context.Context, userID uuid.UUID) (*entities.Budget, error)
}

// Recommender predicts the coming week's transactions and suggests improvements
type Recommender struct {
	provider     ai.AIProvider
	transactions TransactionLister
	budgets      BudgetReader
	timeout      time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

// NewRecommender creates a recommender. A nil provider always yields the fallback.
func NewRecommender(
	provider ai.AIProvider,
	transactions TransactionLister,
	budgets BudgetReader,
	timeout time.Duration,
	logger *zap.Logger,
) *Recommender {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Recommender{
		provider:     provider,
		transactions: transactions,
		budgets:      budgets,
		timeout:      timeout,
		logger:       logger,
		now:          time.Now,
	}
}

// Recommend returns AI predictions and suggestions, or the seasonal forecast
// when the provider fails. Only loading the user's data can fail.
func (r *Recommender) Recommend(ctx context.Context, userID uuid.UUID) (*entities.Recommendations, error) {
	ctx, span := otel.Tracer("ai.service").Start(ctx, "Recommend")
	defer span.End()

	txs, err := r.transactions.ListTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}
	budget, err := r.budgets.GetBudget(ctx, userID)
	if err != nil && !domainerrors.IsNotFound(err) {
		return nil, err
	}

	now := r.now().UTC()
	if r.provider == nil {
		return r.fallback(txs, now), nil
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.provider.ChatCompletion(callCtx, &ai.ChatRequest{
		Messages: []ai.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildRecommendationPrompt(txs, budget)},
		},
		MaxTokens: recommendationMaxTokens,
	})
	if err != nil {
		span.RecordError(err)
		r.logger.Warn("AI recommendations failed",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return r.fallback(txs, now), nil
	}

	predictions, suggestions, err := ParseRecommendations(resp.Content)
	if err != nil {
		metrics.AINormalizationFallbacks.Inc()
		r.logger.Warn("AI recommendations could not be parsed",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return r.fallback(txs, now), nil
	}

	return &entities.Recommendations{
		Source:      entities.RecommendationSourceAI,
		Provider:    resp.Provider,
		Predictions: predictions,
		Suggestions: suggestions,
		GeneratedAt: now,
	}, nil
}

// fallback forecasts the coming week from the weekday pattern of the last window
func (r *Recommender) fallback(txs []*entities.Transaction, now time.Time) *entities.Recommendations {
	since := entities.Day(now).AddDate(0, 0, -recommendationWindow)
	recent := make([]*entities.Transaction, 0, len(txs))
	for _, tx := range txs {
		if !tx.Date.Before(since) {
			recent = append(recent, tx)
		}
	}

	return &entities.Recommendations{
		Source:      entities.RecommendationSourceFallback,
		Predictions: []entities.PredictedTransaction{},
		Forecast:    analytics.Forecast(recent, recommendationWindow, recommendationHorizon, now),
		Suggestions: emptySuggestions(),
		GeneratedAt: now,
	}
}
