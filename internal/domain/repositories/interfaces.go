package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack_service/internal/domain/entities"
)

// ErrDuplicate is returned when a unique constraint is violated.
// Getters return (nil, nil) when the row does not exist.
var ErrDuplicate = errors.New("duplicate key")

// UserRepository defines user persistence
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}

// CategoryRepository defines category catalog persistence
type CategoryRepository interface {
	List(ctx context.Context) ([]*entities.Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Category, error)
	// Upsert inserts the category or updates the one with the same name, setting category.ID
	Upsert(ctx context.Context, category *entities.Category) error
}

// TransactionRepository defines ledger persistence. Returned transactions have Category unset.
type TransactionRepository interface {
	Create(ctx context.Context, tx *entities.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error)
	Update(ctx context.Context, tx *entities.Transaction) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByUser returns all of a user's transactions, newest first
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Transaction, error)
	// ListByUserSince returns transactions dated at or after since, oldest first
	ListByUserSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]*entities.Transaction, error)
}

// BudgetRepository defines budget document persistence
type BudgetRepository interface {
	Create(ctx context.Context, budget *entities.Budget) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.Budget, error)
	// SaveEntries replaces the budget's entries with budget.Entries
	SaveEntries(ctx context.Context, budget *entities.Budget) error
	// AddSpent increments an entry's spent by delta, which may be negative
	AddSpent(ctx context.Context, entryID uuid.UUID, delta decimal.Decimal) error
	SetSpent(ctx context.Context, entryID uuid.UUID, spent decimal.Decimal) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

// WalletRepository defines wallet persistence
type WalletRepository interface {
	Create(ctx context.Context, wallet *entities.Wallet) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error)
	// AdjustBalance adds delta to the balance and returns the updated wallet, nil if absent
	AdjustBalance(ctx context.Context, userID uuid.UUID, delta decimal.Decimal) (*entities.Wallet, error)
	SetBalance(ctx context.Context, userID uuid.UUID, balance decimal.Decimal) (*entities.Wallet, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}

// TxManager runs a function inside a storage transaction.
// Repositories called with the provided context join that transaction.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
