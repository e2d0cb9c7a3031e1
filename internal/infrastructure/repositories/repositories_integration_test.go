package repositories

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintrack/fintrack_service/internal/domain/entities"
	"github.com/fintrack/fintrack_service/internal/domain/repositories"
	"github.com/fintrack/fintrack_service/internal/infrastructure/config"
	"github.com/fintrack/fintrack_service/internal/infrastructure/database"
)

// Runs against a real Postgres when TEST_DATABASE_URL is set.
func testDB(t *testing.T) *sqlx.DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewConnection(config.DatabaseConfig{URL: url})
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedUser(t *testing.T, ctx context.Context, users *UserRepository) *entities.User {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	user := &entities.User{
		ID:           uuid.New(),
		Name:         "Ada Lovelace",
		Email:        uuid.NewString() + "@example.com",
		Phone:        "+15550100",
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, users.Create(ctx, user))
	return user
}

func TestPostgres_UserRepository(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)

	user := seedUser(t, ctx, users)

	got, err := users.GetByEmail(ctx, user.Email)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)

	missing, err := users.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	dup := *user
	dup.ID = uuid.New()
	assert.ErrorIs(t, users.Create(ctx, &dup), repositories.ErrDuplicate)
}

func TestPostgres_LedgerRollsBackTogether(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	wallets := NewWalletRepository(db)
	categories := NewCategoryRepository(db)
	transactions := NewTransactionRepository(db)
	txm := database.NewTxManager(db)

	user := seedUser(t, ctx, users)
	now := time.Now().UTC()
	require.NoError(t, wallets.Create(ctx, &entities.Wallet{
		ID: uuid.New(), UserID: user.ID, Balance: decimal.Zero, CreatedAt: now, UpdatedAt: now,
	}))

	groceries := &entities.Category{Name: "Groceries", Type: entities.TransactionTypeExpense}
	require.NoError(t, categories.Upsert(ctx, groceries))
	require.NotEqual(t, uuid.Nil, groceries.ID)

	tx := &entities.Transaction{
		ID:         uuid.New(),
		UserID:     user.ID,
		Type:       entities.TransactionTypeExpense,
		Amount:     decimal.NewFromInt(40),
		CategoryID: groceries.ID,
		Date:       now.Truncate(24 * time.Hour),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	boom := errors.New("boom")
	err := txm.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := transactions.Create(ctx, tx); err != nil {
			return err
		}
		if _, err := wallets.AdjustBalance(ctx, user.ID, tx.SignedAmount()); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	wallet, err := wallets.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, wallet.Balance.IsZero(), wallet.Balance.String())

	stored, err := transactions.GetByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)

	err = txm.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := transactions.Create(ctx, tx); err != nil {
			return err
		}
		_, err := wallets.AdjustBalance(ctx, user.ID, tx.SignedAmount())
		return err
	})
	require.NoError(t, err)

	wallet, err = wallets.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(-40).Equal(wallet.Balance), wallet.Balance.String())

	listed, err := transactions.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.True(t, tx.Amount.Equal(listed[0].Amount))
}

func TestPostgres_BudgetEntries(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	categories := NewCategoryRepository(db)
	budgets := NewBudgetRepository(db)

	user := seedUser(t, ctx, users)
	food := &entities.Category{Name: "Food", Type: entities.TransactionTypeExpense}
	require.NoError(t, categories.Upsert(ctx, food))

	now := time.Now().UTC()
	budget := &entities.Budget{
		ID:     uuid.New(),
		UserID: user.ID,
		Entries: []entities.BudgetEntry{{
			ID:         uuid.New(),
			Name:       "Food",
			CategoryID: food.ID,
			Limit:      decimal.NewFromInt(300),
			Spent:      decimal.Zero,
			StartDate:  now.AddDate(0, 0, -1).Truncate(24 * time.Hour),
			EndDate:    now.AddDate(0, 0, 30).Truncate(24 * time.Hour),
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, budgets.Create(ctx, budget))
	assert.ErrorIs(t, budgets.Create(ctx, &entities.Budget{ID: uuid.New(), UserID: user.ID, CreatedAt: now, UpdatedAt: now}), repositories.ErrDuplicate)

	entryID := budget.Entries[0].ID
	require.NoError(t, budgets.AddSpent(ctx, entryID, decimal.NewFromInt(25)))
	require.NoError(t, budgets.AddSpent(ctx, entryID, decimal.NewFromInt(-5)))

	got, err := budgets.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Entries, 1)
	assert.True(t, decimal.NewFromInt(20).Equal(got.Entries[0].Spent), got.Entries[0].Spent.String())
	assert.NotNil(t, got.EntryForCategory(food.ID))

	require.NoError(t, budgets.Delete(ctx, user.ID))
	got, err = budgets.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
