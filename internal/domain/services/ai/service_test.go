package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fintrack/fintrack_service/internal/domain/entities"
	domainerrors "github.com/fintrack/fintrack_service/internal/domain/errors"
	"github.com/fintrack/fintrack_service/internal/infrastructure/ai"
)

type fakeProvider struct {
	reply    string
	err      error
	requests []*ai.ChatRequest
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) ChatCompletion(ctx context.Context, req *ai.ChatRequest) (*ai.ChatResponse, error) {
	p.requests = append(p.requests, req)
	if p.err != nil {
		return nil, p.err
	}
	return &ai.ChatResponse{Content: p.reply, Provider: p.Name()}, nil
}

func sampleReport() *entities.Report {
	food := &entities.Category{ID: uuid.New(), Name: "Groceries", Type: entities.TransactionTypeExpense}
	return &entities.Report{
		UserID: uuid.New(),
		Historical: entities.HistoricalData{
			CategoryAnalysis: []entities.CategoryRollup{{Category: "Groceries", Type: entities.TransactionTypeExpense, TotalSpent: decimal.NewFromInt(80)}},
		},
		Transactions: []*entities.Transaction{{
			Type:     entities.TransactionTypeExpense,
			Amount:   decimal.NewFromInt(80),
			Category: food,
			Date:     time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC),
		}},
	}
}

func TestGenerator_Success(t *testing.T) {
	p := &fakeProvider{reply: `{"spendingPatterns":[{"pattern":"Groceries dominate"}],"confidenceScore":0.6}`}
	g := NewGenerator(p, time.Second, zap.NewNop())

	out := g.Generate(context.Background(), sampleReport())

	assert.True(t, out.Available)
	assert.Equal(t, "fake", out.Provider)
	assert.Equal(t, "Groceries dominate", out.Narrative.SpendingPatterns[0].Pattern)
	assert.Equal(t, 0.6, out.Narrative.ConfidenceScore)

	require.Len(t, p.requests, 1)
	prompt := p.requests[0].Messages[1].Content
	assert.Contains(t, prompt, `"category":"Groceries"`)
	assert.Contains(t, prompt, `"date":"2026-03-18"`)
	assert.Contains(t, prompt, "confidenceScore")
}

func TestGenerator_ProviderFailure(t *testing.T) {
	g := NewGenerator(&fakeProvider{err: errors.New("quota exceeded")}, time.Second, zap.NewNop())

	out := g.Generate(context.Background(), sampleReport())

	assert.False(t, out.Available)
	assert.Equal(t, UnavailableMessage, out.Message)
	require.NotNil(t, out.Narrative)
	assert.Zero(t, out.Narrative.ConfidenceScore)
}

func TestGenerator_NoProvider(t *testing.T) {
	out := NewGenerator(nil, 0, zap.NewNop()).Generate(context.Background(), sampleReport())
	assert.False(t, out.Available)
	assert.Equal(t, UnavailableMessage, out.Message)
}

func TestGenerator_UnparsableReply(t *testing.T) {
	g := NewGenerator(&fakeProvider{reply: "Sorry, I can't help with that."}, time.Second, zap.NewNop())

	out := g.Generate(context.Background(), sampleReport())

	assert.True(t, out.Available)
	assert.Equal(t, parseFallbackPattern, out.Narrative.SpendingPatterns[0].Pattern)
	assert.Zero(t, out.Narrative.ConfidenceScore)
}

type stubLedger struct {
	txs []*entities.Transaction
	err error
}

func (s stubLedger) ListTransactions(ctx context.Context, userID uuid.UUID) ([]*entities.Transaction, error) {
	return s.txs, s.err
}

type stubBudgets struct{}

func (stubBudgets) GetBudget(ctx context.Context, userID uuid.UUID) (*entities.Budget, error) {
	return nil, domainerrors.NotFoundError("budget")
}

func newRecommender(p ai.AIProvider, ledger stubLedger) *Recommender {
	r := NewRecommender(p, ledger, stubBudgets{}, time.Second, zap.NewNop())
	r.now = func() time.Time { return time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC) }
	return r
}

func TestRecommender_AI(t *testing.T) {
	p := &fakeProvider{reply: `{"predictions":[{"date":"2026-03-21","amount":20,"category":"Food","type":"expense"}],"suggestions":{"Increase Income":["Freelance"]}}`}
	r := newRecommender(p, stubLedger{})

	out, err := r.Recommend(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, entities.RecommendationSourceAI, out.Source)
	assert.Len(t, out.Predictions, 1)
	assert.Equal(t, []string{"Freelance"}, out.Suggestions.IncreaseIncome)
	assert.Empty(t, out.Suggestions.IncreaseSavings)
}

func TestRecommender_FallbackUsesForecast(t *testing.T) {
	friday := time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC)
	ledger := stubLedger{txs: []*entities.Transaction{
		{Type: entities.TransactionTypeExpense, Amount: decimal.NewFromInt(130), Date: friday},
		{Type: entities.TransactionTypeExpense, Amount: decimal.NewFromInt(999), Date: friday.AddDate(-1, 0, 0)},
	}}
	r := newRecommender(&fakeProvider{err: errors.New("down")}, ledger)

	out, err := r.Recommend(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, entities.RecommendationSourceFallback, out.Source)
	assert.Empty(t, out.Predictions)
	assert.Empty(t, out.Suggestions.IncreaseIncome)
	require.Len(t, out.Forecast, 7)
	// 2026-03-20 is a Friday: 130 over 12 weeks rounds to 11
	assert.Equal(t, "11", out.Forecast[0].PredictedExpenses.String())
	assert.Equal(t, "0", out.Forecast[1].PredictedExpenses.String())
}

func TestRecommender_UnparsableFallsBack(t *testing.T) {
	r := newRecommender(&fakeProvider{reply: "no json"}, stubLedger{})
	out, err := r.Recommend(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, entities.RecommendationSourceFallback, out.Source)
}

func TestRecommender_PropagatesLoadErrors(t *testing.T) {
	r := newRecommender(nil, stubLedger{err: domainerrors.NotFoundError("user")})
	_, err := r.Recommend(context.Background(), uuid.New())
	assert.True(t, domainerrors.IsNotFound(err))
}
