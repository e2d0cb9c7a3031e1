// Package memory provides map-backed repositories for development and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack_service/internal/domain/entities"
	"github.com/fintrack/fintrack_service/internal/domain/repositories"
)

// Store holds all entities behind a single lock. Values are copied in and out
// so callers never share memory with the store.
type Store struct {
	mu           sync.RWMutex
	users        map[uuid.UUID]*entities.User
	categories   map[uuid.UUID]*entities.Category
	transactions map[uuid.UUID]*entities.Transaction
	budgets      map[uuid.UUID]*entities.Budget // by user id
	wallets      map[uuid.UUID]*entities.Wallet // by user id
}

func NewStore() *Store {
	return &Store{
		users:        make(map[uuid.UUID]*entities.User),
		categories:   make(map[uuid.UUID]*entities.Category),
		transactions: make(map[uuid.UUID]*entities.Transaction),
		budgets:      make(map[uuid.UUID]*entities.Budget),
		wallets:      make(map[uuid.UUID]*entities.Wallet),
	}
}

func (s *Store) Users() *UserRepository {
	return &UserRepository{s}
}

func (s *Store) Categories() *CategoryRepository {
	return &CategoryRepository{s}
}

func (s *Store) Transactions() *TransactionRepository {
	return &TransactionRepository{s}
}

func (s *Store) Budgets() *BudgetRepository {
	return &BudgetRepository{s}
}

func (s *Store) Wallets() *WalletRepository {
	return &WalletRepository{s}
}

// WithinTransaction runs fn directly; the in-memory store has no rollback
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var _ repositories.TxManager = (*Store)(nil)

// UserRepository is the in-memory user repository
type UserRepository struct{ s *Store }

func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repositories.ErrDuplicate
		}
	}
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *UserRepository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(r.s.users))
	for id := range r.s.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}

// CategoryRepository is the in-memory category repository
type CategoryRepository struct{ s *Store }

func (r *CategoryRepository) List(ctx context.Context) ([]*entities.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entities.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *CategoryRepository) Upsert(ctx context.Context, category *entities.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, c := range r.s.categories {
		if c.Name == category.Name {
			category.ID = id
			category.CreatedAt = c.CreatedAt
			cp := *category
			r.s.categories[id] = &cp
			return nil
		}
	}
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now().UTC()
	}
	cp := *category
	r.s.categories[category.ID] = &cp
	return nil
}

// TransactionRepository is the in-memory ledger
type TransactionRepository struct{ s *Store }

func copyTx(t *entities.Transaction) *entities.Transaction {
	cp := *t
	cp.Category = nil
	return &cp
}

func (r *TransactionRepository) Create(ctx context.Context, tx *entities.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.transactions[tx.ID]; exists {
		return repositories.ErrDuplicate
	}
	r.s.transactions[tx.ID] = copyTx(tx)
	return nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.transactions[id]
	if !ok {
		return nil, nil
	}
	return copyTx(t), nil
}

func (r *TransactionRepository) Update(ctx context.Context, tx *entities.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.transactions[tx.ID]; !ok {
		return nil
	}
	r.s.transactions[tx.ID] = copyTx(tx)
	return nil
}

func (r *TransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.transactions, id)
	return nil
}

func (r *TransactionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Transaction, error) {
	out := r.filter(userID, time.Time{})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r *TransactionRepository) ListByUserSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]*entities.Transaction, error) {
	out := r.filter(userID, since)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *TransactionRepository) filter(userID uuid.UUID, since time.Time) []*entities.Transaction {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entities.Transaction, 0)
	for _, t := range r.s.transactions {
		if t.UserID != userID || t.Date.Before(since) {
			continue
		}
		out = append(out, copyTx(t))
	}
	// map order is random; fix ties by creation time before the caller's stable sort
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// BudgetRepository is the in-memory budget repository
type BudgetRepository struct{ s *Store }

func copyBudget(b *entities.Budget) *entities.Budget {
	cp := *b
	cp.Entries = append([]entities.BudgetEntry(nil), b.Entries...)
	return &cp
}

func (r *BudgetRepository) Create(ctx context.Context, budget *entities.Budget) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.budgets[budget.UserID]; exists {
		return repositories.ErrDuplicate
	}
	r.s.budgets[budget.UserID] = copyBudget(budget)
	return nil
}

func (r *BudgetRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.Budget, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.budgets[userID]
	if !ok {
		return nil, nil
	}
	return copyBudget(b), nil
}

func (r *BudgetRepository) SaveEntries(ctx context.Context, budget *entities.Budget) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.budgets[budget.UserID]
	if !ok {
		return nil
	}
	b.Entries = append([]entities.BudgetEntry(nil), budget.Entries...)
	b.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *BudgetRepository) AddSpent(ctx context.Context, entryID uuid.UUID, delta decimal.Decimal) error {
	return r.updateEntry(entryID, func(e *entities.BudgetEntry) { e.Spent = e.Spent.Add(delta) })
}

func (r *BudgetRepository) SetSpent(ctx context.Context, entryID uuid.UUID, spent decimal.Decimal) error {
	return r.updateEntry(entryID, func(e *entities.BudgetEntry) { e.Spent = spent })
}

func (r *BudgetRepository) updateEntry(entryID uuid.UUID, fn func(*entities.BudgetEntry)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.budgets {
		for i := range b.Entries {
			if b.Entries[i].ID == entryID {
				fn(&b.Entries[i])
				b.UpdatedAt = time.Now().UTC()
				return nil
			}
		}
	}
	return nil
}

func (r *BudgetRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.budgets, userID)
	return nil
}

// WalletRepository is the in-memory wallet repository
type WalletRepository struct{ s *Store }

func (r *WalletRepository) Create(ctx context.Context, wallet *entities.Wallet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.wallets[wallet.UserID]; exists {
		return repositories.ErrDuplicate
	}
	cp := *wallet
	r.s.wallets[wallet.UserID] = &cp
	return nil
}

func (r *WalletRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	w, ok := r.s.wallets[userID]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *WalletRepository) AdjustBalance(ctx context.Context, userID uuid.UUID, delta decimal.Decimal) (*entities.Wallet, error) {
	return r.update(userID, func(w *entities.Wallet) { w.Balance = w.Balance.Add(delta) })
}

func (r *WalletRepository) SetBalance(ctx context.Context, userID uuid.UUID, balance decimal.Decimal) (*entities.Wallet, error) {
	return r.update(userID, func(w *entities.Wallet) { w.Balance = balance })
}

func (r *WalletRepository) update(userID uuid.UUID, fn func(*entities.Wallet)) (*entities.Wallet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.wallets[userID]
	if !ok {
		return nil, nil
	}
	fn(w)
	w.UpdatedAt = time.Now().UTC()
	cp := *w
	return &cp, nil
}

func (r *WalletRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.wallets, userID)
	return nil
}

var (
	_ repositories.UserRepository        = (*UserRepository)(nil)
	_ repositories.CategoryRepository    = (*CategoryRepository)(nil)
	_ repositories.TransactionRepository = (*TransactionRepository)(nil)
	_ repositories.BudgetRepository      = (*BudgetRepository)(nil)
	_ repositories.WalletRepository      = (*WalletRepository)(nil)
)
