package ledger

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fintrack/fintrack_service/internal/domain/entities"
	domainerrors "github.com/fintrack/fintrack_service/internal/domain/errors"
)

// UpdateTransaction patches a transaction and moves the wallet and budget by
// the difference between the old and new effect.
func (s *Service) UpdateTransaction(ctx context.Context, userID, txID uuid.UUID, req *entities.UpdateTransactionRequest) (*entities.Transaction, error) {
	unlock := s.locks.Lock(userID.String())
	defer unlock()

	user, err := s.requireUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	old, err := s.ownedTransaction(ctx, userID, txID)
	if err != nil {
		return nil, err
	}

	updated, err := s.applyPatch(ctx, old, req)
	if err != nil {
		return nil, err
	}

	var wallet *entities.Wallet
	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.transactions.Update(ctx, updated); err != nil {
			return domainerrors.PersistenceError("update transaction", err)
		}
		wallet, err = s.moveWallet(ctx, userID, updated.SignedAmount().Sub(old.SignedAmount()))
		if err != nil {
			return err
		}
		return s.rebalanceBudget(ctx, userID, old, updated)
	})
	if err != nil {
		return nil, err
	}

	if err := s.categories.Resolve(ctx, []*entities.Transaction{updated}); err != nil {
		return nil, err
	}

	s.logger.Info("Transaction updated",
		zap.String("user_id", userID.String()),
		zap.String("transaction_id", txID.String()))
	s.afterWrite(ctx, entities.TransactionEventUpdated, user, updated, wallet.Balance, nil)
	return updated, nil
}

// DeleteTransaction removes a transaction and reverses its wallet and budget effect
func (s *Service) DeleteTransaction(ctx context.Context, userID, txID uuid.UUID) error {
	unlock := s.locks.Lock(userID.String())
	defer unlock()

	user, err := s.requireUser(ctx, userID)
	if err != nil {
		return err
	}
	old, err := s.ownedTransaction(ctx, userID, txID)
	if err != nil {
		return err
	}

	var wallet *entities.Wallet
	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.transactions.Delete(ctx, txID); err != nil {
			return domainerrors.PersistenceError("delete transaction", err)
		}
		wallet, err = s.moveWallet(ctx, userID, old.SignedAmount().Neg())
		if err != nil {
			return err
		}
		return s.rebalanceBudget(ctx, userID, old, nil)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Transaction deleted",
		zap.String("user_id", userID.String()),
		zap.String("transaction_id", txID.String()))
	s.afterWrite(ctx, entities.TransactionEventDeleted, user, old, wallet.Balance, nil)
	return nil
}

func (s *Service) applyPatch(ctx context.Context, old *entities.Transaction, req *entities.UpdateTransactionRequest) (*entities.Transaction, error) {
	updated := *old
	updated.Category = nil

	if req.Type != nil {
		kind := entities.TransactionType(strings.ToLower(strings.TrimSpace(*req.Type)))
		if !kind.IsValid() {
			return nil, domainerrors.ValidationError("type", "type must be income or expense")
		}
		updated.Type = kind
	}
	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			return nil, domainerrors.ValidationError("amount", "amount must be greater than zero")
		}
		updated.Amount = *req.Amount
	}
	if req.Category != nil {
		id, err := uuid.Parse(*req.Category)
		if err != nil {
			return nil, domainerrors.ValidationError("category", "category must be a valid id")
		}
		if _, err := s.requireCategory(ctx, id); err != nil {
			return nil, err
		}
		updated.CategoryID = id
	}
	if req.Date != nil {
		date, err := entities.ParseDate(*req.Date)
		if err != nil {
			return nil, domainerrors.ValidationError("date", "date must be YYYY-MM-DD or RFC 3339")
		}
		updated.Date = date
	}
	if req.Note != nil {
		updated.Note = strings.TrimSpace(*req.Note)
	}

	updated.UpdatedAt = s.now().UTC()
	return &updated, nil
}

func (s *Service) moveWallet(ctx context.Context, userID uuid.UUID, delta decimal.Decimal) (*entities.Wallet, error) {
	wallet, err := s.wallets.AdjustBalance(ctx, userID, delta)
	if err != nil {
		return nil, domainerrors.PersistenceError("update wallet", err)
	}
	if wallet == nil {
		return nil, domainerrors.NotFoundError("wallet")
	}
	return wallet, nil
}

// rebalanceBudget removes the old transaction's contribution to spent (floored
// at zero) and adds the new one's, using the same rule as the create path.
// A nil updated means the transaction was deleted.
func (s *Service) rebalanceBudget(ctx context.Context, userID uuid.UUID, old, updated *entities.Transaction) error {
	budget, err := s.budgets.GetByUserID(ctx, userID)
	if err != nil {
		return domainerrors.PersistenceError("load budget", err)
	}
	if budget == nil {
		return nil
	}

	touched := make(map[uuid.UUID]*entities.BudgetEntry)
	if entry := countedEntry(budget, old); entry != nil {
		entry.Spent = decimal.Max(entry.Spent.Sub(old.Amount), decimal.Zero)
		touched[entry.ID] = entry
	}
	if entry := countedEntry(budget, updated); entry != nil {
		entry.Spent = entry.Spent.Add(updated.Amount)
		touched[entry.ID] = entry
	}

	for id, entry := range touched {
		if err := s.budgets.SetSpent(ctx, id, entry.Spent); err != nil {
			return domainerrors.PersistenceError("update budget", err)
		}
	}
	return nil
}

// countedEntry returns the budget entry an expense counts toward, or nil
func countedEntry(budget *entities.Budget, tx *entities.Transaction) *entities.BudgetEntry {
	if tx == nil || tx.Type != entities.TransactionTypeExpense {
		return nil
	}
	entry := budget.EntryForCategory(tx.CategoryID)
	if entry == nil || !entry.CountsExpenseOn(tx.Date) {
		return nil
	}
	return entry
}
