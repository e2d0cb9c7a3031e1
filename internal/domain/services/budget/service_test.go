package budget

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fintrack/fintrack_service/internal/domain/entities"
	domainerrors "github.com/fintrack/fintrack_service/internal/domain/errors"
	"github.com/fintrack/fintrack_service/internal/domain/services/category"
	"github.com/fintrack/fintrack_service/internal/infrastructure/repositories/memory"
	"github.com/fintrack/fintrack_service/pkg/keylock"
)

func setup(t *testing.T) (*Service, *memory.Store, uuid.UUID, *entities.Category) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	food := &entities.Category{Name: "Food", Type: entities.TransactionTypeExpense}
	require.NoError(t, store.Categories().Upsert(ctx, food))

	userID := uuid.New()
	require.NoError(t, store.Users().Create(ctx, &entities.User{ID: userID, Email: "b@example.com"}))

	svc := NewService(store.Budgets(), store.Users(), category.NewService(store.Categories(), nil, zap.NewNop()), keylock.New(), zap.NewNop())
	return svc, store, userID, food
}

func entryReq(name string, cat *entities.Category, limit int64) *entities.BudgetEntryRequest {
	return &entities.BudgetEntryRequest{
		Name:      name,
		Category:  cat.ID.String(),
		Limit:     decimal.NewFromInt(limit),
		StartDate: "2026-01-01",
		EndDate:   "2026-01-31",
	}
}

func TestCreateBudget_ConflictWhenExists(t *testing.T) {
	svc, _, userID, food := setup(t)
	ctx := context.Background()

	b, err := svc.CreateBudget(ctx, userID, &entities.CreateBudgetRequest{
		Categories: []entities.BudgetEntryRequest{*entryReq("Food", food, 300)},
	})
	require.NoError(t, err)
	assert.Len(t, b.Entries, 1)
	assert.True(t, b.Entries[0].Spent.IsZero())

	_, err = svc.CreateBudget(ctx, userID, &entities.CreateBudgetRequest{})
	assert.True(t, domainerrors.IsConflict(err))
}

func TestEnsureBudget_Idempotent(t *testing.T) {
	svc, _, userID, _ := setup(t)
	ctx := context.Background()

	first, err := svc.EnsureBudget(ctx, userID)
	require.NoError(t, err)
	second, err := svc.EnsureBudget(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestUpsertEntry_CreatesThenUpdatesByName(t *testing.T) {
	svc, store, userID, food := setup(t)
	ctx := context.Background()
	_, err := svc.EnsureBudget(ctx, userID)
	require.NoError(t, err)

	resp, err := svc.UpsertEntry(ctx, userID, entryReq("Food", food, 300))
	require.NoError(t, err)
	assert.True(t, resp.Created)

	b, err := store.Budgets().GetByUserID(ctx, userID)
	require.NoError(t, err)
	require.NoError(t, store.Budgets().SetSpent(ctx, b.Entries[0].ID, decimal.NewFromInt(42)))

	resp, err = svc.UpsertEntry(ctx, userID, entryReq("Food", food, 500))
	require.NoError(t, err)
	assert.False(t, resp.Created)
	require.Len(t, resp.Budget.Entries, 1)
	assert.Equal(t, "500", resp.Budget.Entries[0].Limit.String())
	assert.Equal(t, "42", resp.Budget.Entries[0].Spent.String())
}

func TestUpsertEntry_MissingBudget(t *testing.T) {
	svc, _, userID, food := setup(t)
	_, err := svc.UpsertEntry(context.Background(), userID, entryReq("Food", food, 300))
	assert.True(t, domainerrors.IsNotFound(err))
}

func TestUpsertEntry_Validation(t *testing.T) {
	svc, _, userID, food := setup(t)
	ctx := context.Background()
	_, err := svc.EnsureBudget(ctx, userID)
	require.NoError(t, err)

	missingName := entryReq("", food, 10)
	zeroLimit := entryReq("Food", food, 0)
	reversed := entryReq("Food", food, 10)
	reversed.StartDate, reversed.EndDate = "2026-02-01", "2026-01-01"
	noDates := entryReq("Food", food, 10)
	noDates.EndDate = ""

	for _, req := range []*entities.BudgetEntryRequest{missingName, zeroLimit, reversed, noDates} {
		_, err := svc.UpsertEntry(ctx, userID, req)
		assert.True(t, domainerrors.IsValidation(err), "got %v", err)
	}
}

func TestDeleteBudget(t *testing.T) {
	svc, _, userID, _ := setup(t)
	ctx := context.Background()

	assert.True(t, domainerrors.IsNotFound(svc.DeleteBudget(ctx, userID)))

	_, err := svc.EnsureBudget(ctx, userID)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteBudget(ctx, userID))

	_, err = svc.GetBudget(ctx, userID)
	assert.True(t, domainerrors.IsNotFound(err))
}

type invalidations struct{ users []uuid.UUID }

func (i *invalidations) Invalidate(_ context.Context, userID uuid.UUID) {
	i.users = append(i.users, userID)
}

func TestBudgetWrites_InvalidateAnalytics(t *testing.T) {
	svc, _, userID, food := setup(t)
	inv := &invalidations{}
	svc.WithCacheInvalidator(inv)
	ctx := context.Background()

	_, err := svc.CreateBudget(ctx, userID, &entities.CreateBudgetRequest{})
	require.NoError(t, err)
	_, err = svc.UpsertEntry(ctx, userID, entryReq("Food", food, 300))
	require.NoError(t, err)
	require.NoError(t, svc.DeleteBudget(ctx, userID))
	assert.Equal(t, []uuid.UUID{userID, userID, userID}, inv.users)

	_, err = svc.UpsertEntry(ctx, userID, entryReq("Food", food, 300))
	assert.True(t, domainerrors.IsNotFound(err))
	assert.Len(t, inv.users, 3)
}
