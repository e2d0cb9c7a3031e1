package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/fintrack/fintrack_service/internal/domain/entities"
	domainerrors "github.com/fintrack/fintrack_service/internal/domain/errors"
	"github.com/fintrack/fintrack_service/internal/domain/repositories"
	"github.com/fintrack/fintrack_service/pkg/keylock"
	"github.com/fintrack/fintrack_service/pkg/metrics"
)

const sideEffectTimeout = 5 * time.Second

// CategoryResolver looks up catalog entries
type CategoryResolver interface {
	Get(ctx context.Context, id uuid.UUID) (*entities.Category, error)
	Resolve(ctx context.Context, txs []*entities.Transaction) error
}

// EventPublisher receives ledger events after a successful write
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, event *entities.TransactionEvent) error
}

// BudgetAlertNotifier is told when an expense pushes a budget entry over its limit
type BudgetAlertNotifier interface {
	NotifyBudgetExceeded(ctx context.Context, user *entities.User, entry *entities.BudgetEntry) error
}

// CacheInvalidator drops cached analytics for a user
type CacheInvalidator interface {
	Invalidate(ctx context.Context, userID uuid.UUID)
}

// Service owns every mutation of transactions and the balances derived from them.
// Writes for one user are serialized; different users proceed in parallel.
type Service struct {
	users        repositories.UserRepository
	transactions repositories.TransactionRepository
	budgets      repositories.BudgetRepository
	wallets      repositories.WalletRepository
	txManager    repositories.TxManager
	categories   CategoryResolver
	locks        *keylock.KeyedMutex

	publisher   EventPublisher
	alerts      BudgetAlertNotifier
	invalidator CacheInvalidator

	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new ledger service
func NewService(
	users repositories.UserRepository,
	transactions repositories.TransactionRepository,
	budgets repositories.BudgetRepository,
	wallets repositories.WalletRepository,
	txManager repositories.TxManager,
	categories CategoryResolver,
	locks *keylock.KeyedMutex,
	logger *zap.Logger,
) *Service {
	return &Service{
		users:        users,
		transactions: transactions,
		budgets:      budgets,
		wallets:      wallets,
		txManager:    txManager,
		categories:   categories,
		locks:        locks,
		logger:       logger,
		now:          time.Now,
	}
}

// WithEventPublisher sets the publisher for transaction events
func (s *Service) WithEventPublisher(p EventPublisher) *Service {
	s.publisher = p
	return s
}

// WithBudgetAlerts sets the notifier for exceeded budgets
func (s *Service) WithBudgetAlerts(n BudgetAlertNotifier) *Service {
	s.alerts = n
	return s
}

// WithCacheInvalidator sets the analytics cache to invalidate on writes
func (s *Service) WithCacheInvalidator(c CacheInvalidator) *Service {
	s.invalidator = c
	return s
}

type validatedTransaction struct {
	kind       entities.TransactionType
	amount     decimal.Decimal
	categoryID uuid.UUID
	date       time.Time
	note       string
}

func validateCreate(req *entities.CreateTransactionRequest) (*validatedTransaction, error) {
	kind := entities.TransactionType(strings.ToLower(strings.TrimSpace(req.Type)))
	if req.Type == "" {
		return nil, domainerrors.ValidationError("type", "type is required")
	}
	if !kind.IsValid() {
		return nil, domainerrors.ValidationError("type", "type must be income or expense")
	}
	if !req.Amount.IsPositive() {
		return nil, domainerrors.ValidationError("amount", "amount must be greater than zero")
	}
	if req.Category == "" {
		return nil, domainerrors.ValidationError("category", "category is required")
	}
	categoryID, err := uuid.Parse(req.Category)
	if err != nil {
		return nil, domainerrors.ValidationError("category", "category must be a valid id")
	}
	if req.Date == "" {
		return nil, domainerrors.ValidationError("date", "date is required")
	}
	date, err := entities.ParseDate(req.Date)
	if err != nil {
		return nil, domainerrors.ValidationError("date", "date must be YYYY-MM-DD or RFC 3339")
	}

	return &validatedTransaction{
		kind:       kind,
		amount:     req.Amount,
		categoryID: categoryID,
		date:       date,
		note:       strings.TrimSpace(req.Note),
	}, nil
}

// CreateTransaction records a transaction, moves the wallet balance and, for
// expenses, increments the matching budget entry's spent.
func (s *Service) CreateTransaction(ctx context.Context, userID uuid.UUID, req *entities.CreateTransactionRequest) (*entities.CreateTransactionResponse, error) {
	ctx, span := otel.Tracer("ledger.service").Start(ctx, "CreateTransaction")
	defer span.End()

	v, err := validateCreate(req)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("transaction.type", string(v.kind)))

	unlock := s.locks.Lock(userID.String())
	defer unlock()

	user, err := s.requireUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	category, err := s.requireCategory(ctx, v.categoryID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	tx := &entities.Transaction{
		ID:         uuid.New(),
		UserID:     userID,
		Type:       v.kind,
		Amount:     v.amount,
		CategoryID: v.categoryID,
		Date:       v.date,
		Note:       v.note,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	var (
		wallet   *entities.Wallet
		budget   *entities.Budget
		exceeded *entities.BudgetEntry
	)
	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.requireWallet(ctx, userID); err != nil {
			return err
		}
		if err := s.transactions.Create(ctx, tx); err != nil {
			return domainerrors.PersistenceError("insert transaction", err)
		}

		wallet, err = s.wallets.AdjustBalance(ctx, userID, tx.SignedAmount())
		if err != nil {
			return domainerrors.PersistenceError("update wallet", err)
		}
		if wallet == nil {
			return domainerrors.NotFoundError("wallet")
		}

		budget, err = s.budgets.GetByUserID(ctx, userID)
		if err != nil {
			return domainerrors.PersistenceError("load budget", err)
		}
		if budget == nil || tx.Type != entities.TransactionTypeExpense {
			return nil
		}

		entry := budget.EntryForCategory(tx.CategoryID)
		if entry == nil || !entry.CountsExpenseOn(tx.Date) {
			return nil
		}
		before := entry.Spent
		if err := s.budgets.AddSpent(ctx, entry.ID, tx.Amount); err != nil {
			return domainerrors.PersistenceError("update budget", err)
		}
		entry.Spent = entry.Spent.Add(tx.Amount)
		if !before.GreaterThan(entry.Limit) && entry.Spent.GreaterThan(entry.Limit) {
			e := *entry
			exceeded = &e
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("Transaction write failed",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return nil, err
	}

	tx.Category = category
	metrics.TransactionsCreated.WithLabelValues(string(tx.Type)).Inc()
	s.logger.Info("Transaction recorded",
		zap.String("user_id", userID.String()),
		zap.String("transaction_id", tx.ID.String()),
		zap.String("type", string(tx.Type)),
		zap.String("amount", tx.Amount.String()),
		zap.String("balance", wallet.Balance.String()))

	s.afterWrite(ctx, entities.TransactionEventCreated, user, tx, wallet.Balance, exceeded)

	return &entities.CreateTransactionResponse{Transaction: tx, Budget: budget}, nil
}

// ListTransactions returns all of a user's transactions with categories resolved, newest first
func (s *Service) ListTransactions(ctx context.Context, userID uuid.UUID) ([]*entities.Transaction, error) {
	if _, err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	txs, err := s.transactions.ListByUser(ctx, userID)
	if err != nil {
		return nil, domainerrors.PersistenceError("list transactions", err)
	}
	if err := s.categories.Resolve(ctx, txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// GetTransaction returns one of the user's transactions
func (s *Service) GetTransaction(ctx context.Context, userID, txID uuid.UUID) (*entities.Transaction, error) {
	tx, err := s.ownedTransaction(ctx, userID, txID)
	if err != nil {
		return nil, err
	}
	if err := s.categories.Resolve(ctx, []*entities.Transaction{tx}); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *Service) requireUser(ctx context.Context, userID uuid.UUID) (*entities.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, domainerrors.PersistenceError("load user", err)
	}
	if user == nil {
		return nil, domainerrors.NotFoundError("user")
	}
	return user, nil
}

func (s *Service) requireWallet(ctx context.Context, userID uuid.UUID) error {
	wallet, err := s.wallets.GetByUserID(ctx, userID)
	if err != nil {
		return domainerrors.PersistenceError("load wallet", err)
	}
	if wallet == nil {
		return domainerrors.NotFoundError("wallet")
	}
	return nil
}

func (s *Service) requireCategory(ctx context.Context, id uuid.UUID) (*entities.Category, error) {
	category, err := s.categories.Get(ctx, id)
	if domainerrors.IsNotFound(err) {
		return nil, domainerrors.ValidationError("category", "category does not exist")
	}
	return category, err
}

func (s *Service) ownedTransaction(ctx context.Context, userID, txID uuid.UUID) (*entities.Transaction, error) {
	tx, err := s.transactions.GetByID(ctx, txID)
	if err != nil {
		return nil, domainerrors.PersistenceError("load transaction", err)
	}
	if tx == nil || tx.UserID != userID {
		return nil, domainerrors.NotFoundError("transaction")
	}
	return tx, nil
}

// afterWrite runs the best-effort side effects of a committed write.
// Failures are logged and never returned.
func (s *Service) afterWrite(ctx context.Context, kind string, user *entities.User, tx *entities.Transaction, balance decimal.Decimal, exceeded *entities.BudgetEntry) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, user.ID)
	}

	if s.publisher != nil {
		event := &entities.TransactionEvent{
			Kind:        kind,
			UserID:      user.ID,
			Transaction: tx,
			Balance:     balance,
			OccurredAt:  s.now().UTC(),
		}
		if err := s.publisher.PublishTransactionEvent(ctx, event); err != nil {
			s.logger.Warn("Failed to publish transaction event",
				zap.String("kind", kind),
				zap.String("transaction_id", tx.ID.String()),
				zap.Error(err))
		}
	}

	if exceeded != nil && s.alerts != nil {
		if err := s.alerts.NotifyBudgetExceeded(ctx, user, exceeded); err != nil {
			s.logger.Warn("Failed to send budget alert",
				zap.String("user_id", user.ID.String()),
				zap.String("budget_entry", exceeded.Name),
				zap.Error(fmt.Errorf("notify: %w", err)))
		}
	}
}
