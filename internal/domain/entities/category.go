package entities

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType distinguishes money coming in from money going out
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

func (t TransactionType) IsValid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// Category is reference data attached to every transaction
type Category struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	Type      TransactionType `json:"type" db:"type"`
	Icon      string          `json:"icon" db:"icon"`
	Color     string          `json:"color" db:"color"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
}

// IncomeCategoryNames is the allow-list used by the income opportunity and diversification rules
var IncomeCategoryNames = []string{
	"Freelancing",
	"Business",
	"Rental Income",
	"Investment",
	"Salary",
	"Pension",
	"Gifts",
	"Other Income",
}

// IsIncomeCategoryName reports whether name is on the income allow-list (exact match)
func IsIncomeCategoryName(name string) bool {
	for _, n := range IncomeCategoryNames {
		if n == name {
			return true
		}
	}
	return false
}
