package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is a single dated income or expense record
type Transaction struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	UserID     uuid.UUID       `json:"user" db:"user_id"`
	Type       TransactionType `json:"type" db:"type"`
	Amount     decimal.Decimal `json:"amount" db:"amount"`
	CategoryID uuid.UUID       `json:"categoryId" db:"category_id"`
	Category   *Category       `json:"category,omitempty" db:"-"`
	Date       time.Time       `json:"date" db:"date"`
	Note       string          `json:"note,omitempty" db:"note"`
	CreatedAt  time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time       `json:"updatedAt" db:"updated_at"`
}

// SignedAmount is the effect of the transaction on a wallet balance
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionTypeExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// CategoryName returns the resolved category name, or empty when unresolved
func (t *Transaction) CategoryName() string {
	if t.Category == nil {
		return ""
	}
	return t.Category.Name
}

// CreateTransactionRequest is the input of the ledger write path.
// Dates accept RFC 3339 timestamps or plain YYYY-MM-DD.
type CreateTransactionRequest struct {
	Type     string          `json:"type" binding:"omitempty,txtype"`
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
	Date     string          `json:"date"`
	Note     string          `json:"note"`
}

// UpdateTransactionRequest patches an existing transaction; nil fields are left unchanged
type UpdateTransactionRequest struct {
	Type     *string          `json:"type" binding:"omitempty,txtype"`
	Amount   *decimal.Decimal `json:"amount"`
	Category *string          `json:"category"`
	Date     *string          `json:"date"`
	Note     *string          `json:"note"`
}

// CreateTransactionResponse returns the stored transaction and the budget after the write
type CreateTransactionResponse struct {
	Transaction *Transaction `json:"transaction"`
	Budget      *Budget      `json:"budget"`
}

// TransactionEvent is published after every ledger mutation
type TransactionEvent struct {
	Kind        string          `json:"kind"`
	UserID      uuid.UUID       `json:"userId"`
	Transaction *Transaction    `json:"transaction"`
	Balance     decimal.Decimal `json:"balance"`
	OccurredAt  time.Time       `json:"occurredAt"`
}

const (
	TransactionEventCreated = "transaction.created"
	TransactionEventUpdated = "transaction.updated"
	TransactionEventDeleted = "transaction.deleted"
)

// ParseDate accepts the date formats clients send
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
