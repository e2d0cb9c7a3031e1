// Package reconciliation compares stored balances and budget spent with the ledger.
package reconciliation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/fintrack/fintrack_service/internal/domain/entities"
	domainerrors "github.com/fintrack/fintrack_service/internal/domain/errors"
	"github.com/fintrack/fintrack_service/internal/domain/repositories"
	"github.com/fintrack/fintrack_service/pkg/keylock"
	"github.com/fintrack/fintrack_service/pkg/metrics"
)

// CacheInvalidator drops derived results after a correction
type CacheInvalidator interface {
	Invalidate(ctx context.Context, userID uuid.UUID)
}

// Service recomputes wallet balances and budget spent from transactions
type Service struct {
	users        repositories.UserRepository
	transactions repositories.TransactionRepository
	budgets      repositories.BudgetRepository
	wallets      repositories.WalletRepository
	txManager    repositories.TxManager
	locks        *keylock.KeyedMutex
	invalidator  CacheInvalidator
	logger       *zap.Logger
	now          func() time.Time
}

func NewService(
	users repositories.UserRepository,
	transactions repositories.TransactionRepository,
	budgets repositories.BudgetRepository,
	wallets repositories.WalletRepository,
	txManager repositories.TxManager,
	locks *keylock.KeyedMutex,
	logger *zap.Logger,
) *Service {
	return &Service{
		users:        users,
		transactions: transactions,
		budgets:      budgets,
		wallets:      wallets,
		txManager:    txManager,
		locks:        locks,
		logger:       logger,
		now:          time.Now,
	}
}

// WithCacheInvalidator sets the cache dropped after corrections
func (s *Service) WithCacheInvalidator(c CacheInvalidator) *Service {
	s.invalidator = c
	return s
}

// RunSummary totals a reconciliation pass over all users
type RunSummary struct {
	Checked   int `json:"checked"`
	Drifted   int `json:"drifted"`
	Corrected int `json:"corrected"`
	Failed    int `json:"failed"`
}

// Reconcile compares the user's wallet and budget with the ledger. When
// correct is set, drifted values are overwritten with the recomputed ones.
func (s *Service) Reconcile(ctx context.Context, userID uuid.UUID, correct bool) (*entities.DriftReport, error) {
	ctx, span := otel.Tracer("reconciliation.service").Start(ctx, "Reconcile")
	defer span.End()
	span.SetAttributes(attribute.Bool("reconciliation.correct", correct))

	unlock := s.locks.Lock(userID.String())
	defer unlock()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, domainerrors.PersistenceError("load user", err)
	}
	if user == nil {
		return nil, domainerrors.NotFoundError("user")
	}

	wallet, err := s.wallets.GetByUserID(ctx, userID)
	if err != nil {
		return nil, domainerrors.PersistenceError("load wallet", err)
	}
	if wallet == nil {
		return nil, domainerrors.NotFoundError("wallet")
	}
	budget, err := s.budgets.GetByUserID(ctx, userID)
	if err != nil {
		return nil, domainerrors.PersistenceError("load budget", err)
	}
	txs, err := s.transactions.ListByUser(ctx, userID)
	if err != nil {
		return nil, domainerrors.PersistenceError("list transactions", err)
	}

	computed := ComputeBalance(txs)
	report := &entities.DriftReport{
		UserID:          userID,
		StoredBalance:   wallet.Balance,
		ComputedBalance: computed,
		BalanceDrift:    wallet.Balance.Sub(computed),
		BudgetDrift:     budgetDrift(budget, txs),
		CheckedAt:       s.now().UTC(),
	}

	if !report.HasDrift() {
		return report, nil
	}

	if !report.BalanceDrift.IsZero() {
		metrics.ReconciliationDrift.WithLabelValues("wallet").Inc()
	}
	if len(report.BudgetDrift) > 0 {
		metrics.ReconciliationDrift.WithLabelValues("budget").Add(float64(len(report.BudgetDrift)))
	}
	s.logger.Warn("Ledger drift detected",
		zap.String("user_id", userID.String()),
		zap.String("stored_balance", report.StoredBalance.String()),
		zap.String("computed_balance", report.ComputedBalance.String()),
		zap.Int("budget_entries", len(report.BudgetDrift)),
		zap.Bool("correct", correct))

	if !correct {
		return report, nil
	}

	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		if !report.BalanceDrift.IsZero() {
			if _, err := s.wallets.SetBalance(ctx, userID, computed); err != nil {
				return domainerrors.PersistenceError("correct wallet", err)
			}
		}
		for _, item := range report.BudgetDrift {
			if err := s.budgets.SetSpent(ctx, item.EntryID, item.ComputedSpent); err != nil {
				return domainerrors.PersistenceError("correct budget", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	report.Corrected = true
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, userID)
	}
	s.logger.Info("Ledger drift corrected", zap.String("user_id", userID.String()))
	return report, nil
}

// ReconcileAll reconciles every user. Per-user failures are logged and counted.
func (s *Service) ReconcileAll(ctx context.Context, correct bool) (*RunSummary, error) {
	ctx, span := otel.Tracer("reconciliation.service").Start(ctx, "ReconcileAll")
	defer span.End()

	ids, err := s.users.ListIDs(ctx)
	if err != nil {
		return nil, domainerrors.PersistenceError("list users", err)
	}

	summary := &RunSummary{}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		report, err := s.Reconcile(ctx, id, correct)
		if err != nil {
			summary.Failed++
			s.logger.Error("Reconciliation failed", zap.String("user_id", id.String()), zap.Error(err))
			continue
		}
		summary.Checked++
		if report.HasDrift() {
			summary.Drifted++
		}
		if report.Corrected {
			summary.Corrected++
		}
	}

	s.logger.Info("Reconciliation run completed",
		zap.Int("checked", summary.Checked),
		zap.Int("drifted", summary.Drifted),
		zap.Int("corrected", summary.Corrected),
		zap.Int("failed", summary.Failed))
	return summary, nil
}
