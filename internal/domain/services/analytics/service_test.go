package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fintrack/fintrack_service/internal/domain/entities"
	domainerrors "github.com/fintrack/fintrack_service/internal/domain/errors"
	"github.com/fintrack/fintrack_service/internal/domain/services/category"
	"github.com/fintrack/fintrack_service/internal/infrastructure/repositories/memory"
)

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMapCache() *mapCache { return &mapCache{data: map[string][]byte{}} }

func (c *mapCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return errors.New("miss")
	}
	return json.Unmarshal(b, dest)
}

func (c *mapCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
	c.sets++
	return nil
}

func (c *mapCache) Del(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

type countingNarrator struct{ calls int }

func (n *countingNarrator) Generate(_ context.Context, report *entities.Report) *entities.AIInsights {
	n.calls++
	return &entities.AIInsights{Available: true, Provider: "stub"}
}

type fixture struct {
	svc    *Service
	store  *memory.Store
	userID uuid.UUID
	food   *entities.Category
	salary *entities.Category
}

func newFixture(t *testing.T, withBudget bool) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	food := &entities.Category{Name: "Food", Type: entities.TransactionTypeExpense}
	salary := &entities.Category{Name: "Salary", Type: entities.TransactionTypeIncome}
	require.NoError(t, store.Categories().Upsert(ctx, food))
	require.NoError(t, store.Categories().Upsert(ctx, salary))

	userID := uuid.New()
	require.NoError(t, store.Wallets().Create(ctx, &entities.Wallet{ID: uuid.New(), UserID: userID, Balance: decimal.NewFromInt(1500)}))
	if withBudget {
		require.NoError(t, store.Budgets().Create(ctx, &entities.Budget{
			ID:     uuid.New(),
			UserID: userID,
			Entries: []entities.BudgetEntry{{
				ID: uuid.New(), Name: "Food", CategoryID: food.ID,
				Limit: decimal.NewFromInt(100), Spent: decimal.NewFromInt(120),
				StartDate: day("2026-03-01"), EndDate: day("2026-03-31"),
			}},
		}))
	}

	svc := NewService(store.Transactions(), store.Budgets(), store.Wallets(),
		category.NewService(store.Categories(), nil, zap.NewNop()), DefaultConfig(), zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC) }

	return &fixture{svc: svc, store: store, userID: userID, food: food, salary: salary}
}

func (f *fixture) add(t *testing.T, cat *entities.Category, kind entities.TransactionType, amount int64, date string) {
	t.Helper()
	require.NoError(t, f.store.Transactions().Create(context.Background(), &entities.Transaction{
		ID: uuid.New(), UserID: f.userID, Type: kind, Amount: decimal.NewFromInt(amount),
		CategoryID: cat.ID, Date: day(date), CreatedAt: time.Now(),
	}))
}

func TestBuildReport_NoBudget(t *testing.T) {
	f := newFixture(t, false)
	_, err := f.svc.BuildReport(context.Background(), f.userID, 7)
	assert.True(t, domainerrors.IsNotFound(err))
}

func TestBuildReport_InvalidWindow(t *testing.T) {
	f := newFixture(t, true)
	_, err := f.svc.BuildReport(context.Background(), f.userID, 0)
	assert.True(t, domainerrors.IsValidation(err))
}

func TestBuildReport(t *testing.T) {
	f := newFixture(t, true)
	f.add(t, f.food, entities.TransactionTypeExpense, 60, "2026-03-16")
	f.add(t, f.food, entities.TransactionTypeExpense, 60, "2026-03-18")
	f.add(t, f.salary, entities.TransactionTypeIncome, 1000, "2026-03-17")
	f.add(t, f.food, entities.TransactionTypeExpense, 999, "2026-01-01")

	report, err := f.svc.BuildReport(context.Background(), f.userID, 7)
	require.NoError(t, err)

	assert.Equal(t, "2026-03-13", report.Historical.From.Format("2006-01-02"))
	require.Len(t, report.Historical.CategoryAnalysis, 2)
	assert.Equal(t, "Food", report.Historical.CategoryAnalysis[0].Category)
	assert.Equal(t, "120", report.Historical.CategoryAnalysis[0].TotalSpent.String())
	assert.Equal(t, "620", report.Historical.StartingBalance.String())
	assert.Len(t, report.Historical.BalanceTrend, 4)
	assert.Len(t, report.Predictions, 7)
	assert.Len(t, report.Transactions, 3)

	require.Len(t, report.Historical.BudgetStatus, 1)
	assert.Equal(t, "-20", report.Historical.BudgetStatus[0].Remaining.String())

	require.Len(t, report.Insights.Overspending, 1)
	assert.True(t, report.Insights.Overspending[0].Exceeded)
	require.Len(t, report.Insights.Risks, 2)
}

func TestBuildReport_ForecastCapped(t *testing.T) {
	f := newFixture(t, true)
	report, err := f.svc.BuildReport(context.Background(), f.userID, 90)
	require.NoError(t, err)
	assert.Len(t, report.Predictions, 30)
	assert.Empty(t, report.Historical.BalanceTrend)
}

func TestAnalyze_CachesAndInvalidates(t *testing.T) {
	f := newFixture(t, true)
	cache := newMapCache()
	narrator := &countingNarrator{}
	f.svc.WithCache(cache).WithNarrator(narrator)
	f.add(t, f.food, entities.TransactionTypeExpense, 40, "2026-03-18")
	ctx := context.Background()

	first, err := f.svc.Analyze(ctx, f.userID, 90)
	require.NoError(t, err)
	require.NotNil(t, first.AIInsights)
	assert.True(t, first.AIInsights.Available)

	second, err := f.svc.Analyze(ctx, f.userID, 90)
	require.NoError(t, err)
	assert.Equal(t, 1, narrator.calls)
	assert.Equal(t, first.Historical.CurrentBalance.String(), second.Historical.CurrentBalance.String())

	f.svc.Invalidate(ctx, f.userID)
	_, err = f.svc.Analyze(ctx, f.userID, 90)
	require.NoError(t, err)
	assert.Equal(t, 2, narrator.calls)
}

func TestAnalyze_UncacheableWindowSkipsCache(t *testing.T) {
	f := newFixture(t, true)
	cache := newMapCache()
	f.svc.WithCache(cache)

	_, err := f.svc.Analyze(context.Background(), f.userID, 14)
	require.NoError(t, err)
	assert.Zero(t, cache.sets)
}

func TestDashboard_WorksWithoutBudget(t *testing.T) {
	f := newFixture(t, false)
	f.add(t, f.salary, entities.TransactionTypeIncome, 500, "2026-03-19")

	d, err := f.svc.Dashboard(context.Background(), f.userID, 7)
	require.NoError(t, err)
	assert.Equal(t, "500", d.Summary.TotalIncome.String())
	assert.Equal(t, "1000", d.Summary.StartingBalance.String())
	assert.Equal(t, "1500", d.Summary.EndingBalance.String())
	require.Len(t, d.WeeklyData, 1)
	assert.Equal(t, "Thu", d.WeeklyData[0].Day)
}
