package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fintrack/fintrack_service/internal/domain/entities"
	domainerrors "github.com/fintrack/fintrack_service/internal/domain/errors"
	"github.com/fintrack/fintrack_service/internal/domain/repositories"
	"github.com/fintrack/fintrack_service/pkg/keylock"
)

// CacheInvalidator drops cached analytics for a user
type CacheInvalidator interface {
	Invalidate(ctx context.Context, userID uuid.UUID)
}

// Service handles wallet operations outside the transaction write path
type Service struct {
	wallets     repositories.WalletRepository
	locks       *keylock.KeyedMutex
	invalidator CacheInvalidator
	logger      *zap.Logger
}

func NewService(wallets repositories.WalletRepository, locks *keylock.KeyedMutex, logger *zap.Logger) *Service {
	return &Service{wallets: wallets, locks: locks, logger: logger}
}

// WithCacheInvalidator sets the analytics cache to invalidate on balance overrides and deletes
func (s *Service) WithCacheInvalidator(c CacheInvalidator) *Service {
	s.invalidator = c
	return s
}

// EnsureWallet creates a zero-balance wallet for the user unless one exists
func (s *Service) EnsureWallet(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error) {
	existing, err := s.wallets.GetByUserID(ctx, userID)
	if err != nil {
		return nil, domainerrors.PersistenceError("load wallet", err)
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now().UTC()
	w := &entities.Wallet{ID: uuid.New(), UserID: userID, Balance: decimal.Zero, CreatedAt: now, UpdatedAt: now}
	if err := s.wallets.Create(ctx, w); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return s.wallets.GetByUserID(ctx, userID)
		}
		return nil, domainerrors.PersistenceError("create wallet", err)
	}

	s.logger.Info("Wallet created", zap.String("user_id", userID.String()))
	return w, nil
}

// GetWallet returns the user's wallet
func (s *Service) GetWallet(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error) {
	w, err := s.wallets.GetByUserID(ctx, userID)
	if err != nil {
		return nil, domainerrors.PersistenceError("load wallet", err)
	}
	if w == nil {
		return nil, domainerrors.NotFoundError("wallet")
	}
	return w, nil
}

// SetBalance overrides the stored balance. The ledger is not touched, so the
// difference shows up as drift in the next reconciliation.
func (s *Service) SetBalance(ctx context.Context, userID uuid.UUID, balance decimal.Decimal) (*entities.Wallet, error) {
	unlock := s.locks.Lock(userID.String())
	defer unlock()

	w, err := s.wallets.SetBalance(ctx, userID, balance)
	if err != nil {
		return nil, domainerrors.PersistenceError("update wallet", err)
	}
	if w == nil {
		return nil, domainerrors.NotFoundError("wallet")
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, userID)
	}
	s.logger.Warn("Wallet balance overridden",
		zap.String("user_id", userID.String()),
		zap.String("balance", balance.String()))
	return w, nil
}

// DeleteWallet removes the user's wallet
func (s *Service) DeleteWallet(ctx context.Context, userID uuid.UUID) error {
	unlock := s.locks.Lock(userID.String())
	defer unlock()

	if _, err := s.GetWallet(ctx, userID); err != nil {
		return err
	}
	if err := s.wallets.Delete(ctx, userID); err != nil {
		return domainerrors.PersistenceError("delete wallet", err)
	}
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, userID)
	}
	return nil
}
