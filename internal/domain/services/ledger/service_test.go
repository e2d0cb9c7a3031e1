package ledger

import (
	"context"
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
	"github.com/fintrack/fintrack_service/pkg/keylock"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*entities.TransactionEvent
}

func (p *recordingPublisher) PublishTransactionEvent(ctx context.Context, event *entities.TransactionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

type recordingAlerts struct {
	entries []string
}

func (a *recordingAlerts) NotifyBudgetExceeded(ctx context.Context, user *entities.User, entry *entities.BudgetEntry) error {
	a.entries = append(a.entries, entry.Name)
	return nil
}

type fixture struct {
	svc       *Service
	store     *memory.Store
	user      *entities.User
	food      *entities.Category
	salary    *entities.Category
	foodEntry uuid.UUID
	publisher *recordingPublisher
	alerts    *recordingAlerts
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	food := &entities.Category{Name: "Food", Type: entities.TransactionTypeExpense}
	salary := &entities.Category{Name: "Salary", Type: entities.TransactionTypeIncome}
	require.NoError(t, store.Categories().Upsert(ctx, food))
	require.NoError(t, store.Categories().Upsert(ctx, salary))

	user := &entities.User{ID: uuid.New(), Name: "Ada", Email: "ada@example.com"}
	require.NoError(t, store.Users().Create(ctx, user))
	require.NoError(t, store.Wallets().Create(ctx, &entities.Wallet{ID: uuid.New(), UserID: user.ID, Balance: decimal.NewFromInt(1000)}))

	entryID := uuid.New()
	require.NoError(t, store.Budgets().Create(ctx, &entities.Budget{
		ID:     uuid.New(),
		UserID: user.ID,
		Entries: []entities.BudgetEntry{{
			ID:         entryID,
			Name:       "Food",
			CategoryID: food.ID,
			Limit:      decimal.NewFromInt(100),
			StartDate:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:    time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		}},
	}))

	publisher := &recordingPublisher{}
	alerts := &recordingAlerts{}
	svc := NewService(
		store.Users(), store.Transactions(), store.Budgets(), store.Wallets(), store,
		category.NewService(store.Categories(), nil, zap.NewNop()),
		keylock.New(), zap.NewNop(),
	).WithEventPublisher(publisher).WithBudgetAlerts(alerts)

	return &fixture{svc: svc, store: store, user: user, food: food, salary: salary, foodEntry: entryID, publisher: publisher, alerts: alerts}
}

func (f *fixture) balance(t *testing.T) decimal.Decimal {
	w, err := f.store.Wallets().GetByUserID(context.Background(), f.user.ID)
	require.NoError(t, err)
	return w.Balance
}

func (f *fixture) spent(t *testing.T) decimal.Decimal {
	b, err := f.store.Budgets().GetByUserID(context.Background(), f.user.ID)
	require.NoError(t, err)
	return b.EntryForCategory(f.food.ID).Spent
}

func expense(cat *entities.Category, amount int64, date string) *entities.CreateTransactionRequest {
	return &entities.CreateTransactionRequest{Type: "expense", Amount: decimal.NewFromInt(amount), Category: cat.ID.String(), Date: date}
}

func TestCreateTransaction_IncomeIncrementsWallet(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.CreateTransaction(context.Background(), f.user.ID, &entities.CreateTransactionRequest{
		Type: "income", Amount: decimal.NewFromInt(250), Category: f.salary.ID.String(), Date: "2026-03-01",
	})
	require.NoError(t, err)

	assert.Equal(t, "1250", f.balance(t).String())
	assert.Equal(t, "Salary", resp.Transaction.Category.Name)
	require.NotNil(t, resp.Budget)
	assert.True(t, f.spent(t).IsZero())
}

func TestCreateTransaction_ExpenseUpdatesWalletAndBudget(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.CreateTransaction(context.Background(), f.user.ID, expense(f.food, 40, "2026-03-01"))
	require.NoError(t, err)

	assert.Equal(t, "960", f.balance(t).String())
	assert.Equal(t, "40", f.spent(t).String())
	assert.Equal(t, "40", resp.Budget.EntryForCategory(f.food.ID).Spent.String())
}

func TestCreateTransaction_ExpenseAfterEndDateSkipsBudget(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateTransaction(context.Background(), f.user.ID, expense(f.food, 40, "2027-01-01"))
	require.NoError(t, err)

	assert.Equal(t, "960", f.balance(t).String())
	assert.True(t, f.spent(t).IsZero())
}

func TestCreateTransaction_ExpenseOnEndDayCounts(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateTransaction(context.Background(), f.user.ID, expense(f.food, 15, "2026-12-31T18:30:00Z"))
	require.NoError(t, err)
	assert.Equal(t, "15", f.spent(t).String())
}

func TestCreateTransaction_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := map[string]*entities.CreateTransactionRequest{
		"missing type":     {Amount: decimal.NewFromInt(1), Category: f.food.ID.String(), Date: "2026-01-01"},
		"bad type":         {Type: "transfer", Amount: decimal.NewFromInt(1), Category: f.food.ID.String(), Date: "2026-01-01"},
		"zero amount":      {Type: "expense", Amount: decimal.Zero, Category: f.food.ID.String(), Date: "2026-01-01"},
		"negative amount":  {Type: "expense", Amount: decimal.NewFromInt(-5), Category: f.food.ID.String(), Date: "2026-01-01"},
		"missing category": {Type: "expense", Amount: decimal.NewFromInt(1), Date: "2026-01-01"},
		"bad category":     {Type: "expense", Amount: decimal.NewFromInt(1), Category: "food", Date: "2026-01-01"},
		"unknown category": {Type: "expense", Amount: decimal.NewFromInt(1), Category: uuid.NewString(), Date: "2026-01-01"},
		"missing date":     {Type: "expense", Amount: decimal.NewFromInt(1), Category: f.food.ID.String()},
		"bad date":         {Type: "expense", Amount: decimal.NewFromInt(1), Category: f.food.ID.String(), Date: "01/02/2026"},
	}

	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.CreateTransaction(ctx, f.user.ID, req)
			assert.True(t, domainerrors.IsValidation(err), "got %v", err)
		})
	}
	assert.Equal(t, "1000", f.balance(t).String())
}

func TestCreateTransaction_UnknownUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateTransaction(context.Background(), uuid.New(), expense(f.food, 1, "2026-01-01"))
	assert.True(t, domainerrors.IsNotFound(err))
}

func TestCreateTransaction_MissingWalletInsertsNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Wallets().Delete(ctx, f.user.ID))

	_, err := f.svc.CreateTransaction(ctx, f.user.ID, expense(f.food, 1, "2026-01-01"))
	assert.True(t, domainerrors.IsNotFound(err))

	txs, err := f.store.Transactions().ListByUser(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestCreateTransaction_ConcurrentWritersKeepBalanceExact(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.CreateTransaction(ctx, f.user.ID, expense(f.food, 10, "2026-06-01"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, "500", f.balance(t).String())
	assert.Equal(t, "500", f.spent(t).String())
}

func TestCreateTransaction_PublishesEventAndAlertsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateTransaction(ctx, f.user.ID, expense(f.food, 90, "2026-06-01"))
	require.NoError(t, err)
	_, err = f.svc.CreateTransaction(ctx, f.user.ID, expense(f.food, 20, "2026-06-02"))
	require.NoError(t, err)
	_, err = f.svc.CreateTransaction(ctx, f.user.ID, expense(f.food, 20, "2026-06-03"))
	require.NoError(t, err)

	require.Len(t, f.publisher.events, 3)
	assert.Equal(t, entities.TransactionEventCreated, f.publisher.events[0].Kind)
	assert.Equal(t, []string{"Food"}, f.alerts.entries)
}

func TestUpdateTransaction_AppliesDifference(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.CreateTransaction(ctx, f.user.ID, expense(f.food, 40, "2026-03-01"))
	require.NoError(t, err)

	amount := decimal.NewFromInt(70)
	updated, err := f.svc.UpdateTransaction(ctx, f.user.ID, resp.Transaction.ID, &entities.UpdateTransactionRequest{Amount: &amount})
	require.NoError(t, err)

	assert.Equal(t, "70", updated.Amount.String())
	assert.Equal(t, "930", f.balance(t).String())
	assert.Equal(t, "70", f.spent(t).String())
}

func TestUpdateTransaction_ExpenseToIncome(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.CreateTransaction(ctx, f.user.ID, expense(f.food, 40, "2026-03-01"))
	require.NoError(t, err)

	kind := "income"
	cat := f.salary.ID.String()
	_, err = f.svc.UpdateTransaction(ctx, f.user.ID, resp.Transaction.ID, &entities.UpdateTransactionRequest{Type: &kind, Category: &cat})
	require.NoError(t, err)

	assert.Equal(t, "1040", f.balance(t).String())
	assert.True(t, f.spent(t).IsZero())
}

func TestDeleteTransaction_ReversesEffects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.CreateTransaction(ctx, f.user.ID, expense(f.food, 40, "2026-03-01"))
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteTransaction(ctx, f.user.ID, resp.Transaction.ID))
	assert.Equal(t, "1000", f.balance(t).String())
	assert.True(t, f.spent(t).IsZero())

	_, err = f.svc.GetTransaction(ctx, f.user.ID, resp.Transaction.ID)
	assert.True(t, domainerrors.IsNotFound(err))
}

func TestDeleteTransaction_SpentFloorsAtZero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.CreateTransaction(ctx, f.user.ID, expense(f.food, 40, "2026-03-01"))
	require.NoError(t, err)
	require.NoError(t, f.store.Budgets().SetSpent(ctx, f.foodEntry, decimal.NewFromInt(10)))

	require.NoError(t, f.svc.DeleteTransaction(ctx, f.user.ID, resp.Transaction.ID))
	assert.True(t, f.spent(t).IsZero())
}

func TestTransactions_OtherUsersCannotTouch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.CreateTransaction(ctx, f.user.ID, expense(f.food, 40, "2026-03-01"))
	require.NoError(t, err)

	other := &entities.User{ID: uuid.New(), Email: "other@example.com"}
	require.NoError(t, f.store.Users().Create(ctx, other))

	_, err = f.svc.GetTransaction(ctx, other.ID, resp.Transaction.ID)
	assert.True(t, domainerrors.IsNotFound(err))
	assert.True(t, domainerrors.IsNotFound(f.svc.DeleteTransaction(ctx, other.ID, resp.Transaction.ID)))
}

func TestListTransactions_NewestFirstWithCategories(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateTransaction(ctx, f.user.ID, expense(f.food, 1, "2026-03-01"))
	require.NoError(t, err)
	_, err = f.svc.CreateTransaction(ctx, f.user.ID, expense(f.food, 2, "2026-03-05"))
	require.NoError(t, err)

	txs, err := f.svc.ListTransactions(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "2", txs[0].Amount.String())
	assert.Equal(t, "Food", txs[1].Category.Name)
}
