package reconciliation

import (
	"context"
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
	"github.com/fintrack/fintrack_service/internal/domain/services/ledger"
	"github.com/fintrack/fintrack_service/internal/infrastructure/repositories/memory"
	"github.com/fintrack/fintrack_service/pkg/keylock"
)

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate(ctx context.Context, userID uuid.UUID) { c.calls++ }

type fixture struct {
	svc         *Service
	store       *memory.Store
	user        *entities.User
	entryID     uuid.UUID
	invalidator *countingInvalidator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	locks := keylock.New()

	food := &entities.Category{Name: "Food", Type: entities.TransactionTypeExpense}
	salary := &entities.Category{Name: "Salary", Type: entities.TransactionTypeIncome}
	require.NoError(t, store.Categories().Upsert(ctx, food))
	require.NoError(t, store.Categories().Upsert(ctx, salary))

	user := &entities.User{ID: uuid.New(), Name: "Grace", Email: "grace@example.com"}
	require.NoError(t, store.Users().Create(ctx, user))
	require.NoError(t, store.Wallets().Create(ctx, &entities.Wallet{ID: uuid.New(), UserID: user.ID}))

	entryID := uuid.New()
	require.NoError(t, store.Budgets().Create(ctx, &entities.Budget{
		ID:     uuid.New(),
		UserID: user.ID,
		Entries: []entities.BudgetEntry{{
			ID:         entryID,
			Name:       "Food",
			CategoryID: food.ID,
			Limit:      decimal.NewFromInt(300),
			StartDate:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:    time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		}},
	}))

	ledgerSvc := ledger.NewService(
		store.Users(), store.Transactions(), store.Budgets(), store.Wallets(), store,
		category.NewService(store.Categories(), nil, zap.NewNop()),
		locks, zap.NewNop(),
	)
	for _, req := range []*entities.CreateTransactionRequest{
		{Type: "income", Amount: decimal.NewFromInt(1000), Category: salary.ID.String(), Date: "2026-01-02"},
		{Type: "expense", Amount: decimal.NewFromInt(120), Category: food.ID.String(), Date: "2026-01-10"},
		{Type: "expense", Amount: decimal.NewFromInt(40), Category: food.ID.String(), Date: "2026-02-05"},
	} {
		_, err := ledgerSvc.CreateTransaction(ctx, user.ID, req)
		require.NoError(t, err)
	}

	inv := &countingInvalidator{}
	svc := NewService(store.Users(), store.Transactions(), store.Budgets(), store.Wallets(), store, locks, zap.NewNop()).
		WithCacheInvalidator(inv)
	return &fixture{svc: svc, store: store, user: user, entryID: entryID, invalidator: inv}
}

func TestReconcile_ConsistentLedgerHasNoDrift(t *testing.T) {
	f := newFixture(t)

	report, err := f.svc.Reconcile(context.Background(), f.user.ID, false)
	require.NoError(t, err)

	assert.False(t, report.HasDrift())
	assert.Equal(t, "840", report.ComputedBalance.String())
	assert.Empty(t, report.BudgetDrift)
}

func TestReconcile_ReportsWithoutCorrecting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.store.Wallets().SetBalance(ctx, f.user.ID, decimal.NewFromInt(900))
	require.NoError(t, err)
	require.NoError(t, f.store.Budgets().SetSpent(ctx, f.entryID, decimal.NewFromInt(5)))

	report, err := f.svc.Reconcile(ctx, f.user.ID, false)
	require.NoError(t, err)

	assert.Equal(t, "60", report.BalanceDrift.String())
	require.Len(t, report.BudgetDrift, 1)
	assert.Equal(t, "120", report.BudgetDrift[0].ComputedSpent.String())
	assert.False(t, report.Corrected)

	w, err := f.store.Wallets().GetByUserID(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, "900", w.Balance.String())
	assert.Zero(t, f.invalidator.calls)
}

func TestReconcile_Corrects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.store.Wallets().SetBalance(ctx, f.user.ID, decimal.NewFromInt(900))
	require.NoError(t, err)
	require.NoError(t, f.store.Budgets().SetSpent(ctx, f.entryID, decimal.NewFromInt(5)))

	report, err := f.svc.Reconcile(ctx, f.user.ID, true)
	require.NoError(t, err)
	assert.True(t, report.Corrected)
	assert.Equal(t, 1, f.invalidator.calls)

	again, err := f.svc.Reconcile(ctx, f.user.ID, false)
	require.NoError(t, err)
	assert.False(t, again.HasDrift())
}

func TestReconcile_UnknownUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Reconcile(context.Background(), uuid.New(), false)
	assert.True(t, domainerrors.IsNotFound(err))
}

func TestReconcileAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.store.Wallets().SetBalance(ctx, f.user.ID, decimal.Zero)
	require.NoError(t, err)

	// a user without a wallet fails but does not stop the run
	require.NoError(t, f.store.Users().Create(ctx, &entities.User{ID: uuid.New(), Email: "nowallet@example.com"}))

	summary, err := f.svc.ReconcileAll(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, &RunSummary{Checked: 1, Drifted: 1, Corrected: 1, Failed: 1}, summary)
}
