package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet holds a user's running balance
type Wallet struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	UserID    uuid.UUID       `json:"user" db:"user_id"`
	Balance   decimal.Decimal `json:"balance" db:"balance"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
}

// SetBalanceRequest overrides the wallet balance
type SetBalanceRequest struct {
	Balance decimal.Decimal `json:"balance"`
}

// DriftReport compares stored balances with values recomputed from the ledger
type DriftReport struct {
	UserID          uuid.UUID         `json:"userId"`
	StoredBalance   decimal.Decimal   `json:"storedBalance"`
	ComputedBalance decimal.Decimal   `json:"computedBalance"`
	BalanceDrift    decimal.Decimal   `json:"balanceDrift"`
	BudgetDrift     []BudgetDriftItem `json:"budgetDrift"`
	Corrected       bool              `json:"corrected"`
	CheckedAt       time.Time         `json:"checkedAt"`
}

// BudgetDriftItem is one budget entry whose spent differs from the ledger
type BudgetDriftItem struct {
	EntryID       uuid.UUID       `json:"entryId"`
	Name          string          `json:"name"`
	StoredSpent   decimal.Decimal `json:"storedSpent"`
	ComputedSpent decimal.Decimal `json:"computedSpent"`
}

// HasDrift reports whether anything is out of sync
func (r *DriftReport) HasDrift() bool {
	return !r.BalanceDrift.IsZero() || len(r.BudgetDrift) > 0
}
