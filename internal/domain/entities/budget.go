package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetEntry is a per-category spending limit over a date range.
// Spent is maintained incrementally by the ledger write path.
type BudgetEntry struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	BudgetID   uuid.UUID       `json:"-" db:"budget_id"`
	Position   int             `json:"-" db:"position"`
	Name       string          `json:"name" db:"name"`
	CategoryID uuid.UUID       `json:"category" db:"category_id"`
	Limit      decimal.Decimal `json:"limit" db:"limit_amount"`
	Spent      decimal.Decimal `json:"spent" db:"spent"`
	StartDate  time.Time       `json:"startDate" db:"start_date"`
	EndDate    time.Time       `json:"endDate" db:"end_date"`
}

// Remaining is limit minus spent, negative when overspent
func (e *BudgetEntry) Remaining() decimal.Decimal {
	return e.Limit.Sub(e.Spent)
}

// Utilization returns spent/limit. ok is false when the limit is not positive.
func (e *BudgetEntry) Utilization() (ratio float64, ok bool) {
	if !e.Limit.IsPositive() {
		return 0, false
	}
	r, _ := e.Spent.Div(e.Limit).Float64()
	return r, true
}

// CountsExpenseOn reports whether an expense dated on the given day counts toward Spent.
// Only the end of the range is checked, by calendar day.
func (e *BudgetEntry) CountsExpenseOn(date time.Time) bool {
	return !Day(date).After(Day(e.EndDate))
}

// Budget is a user's single budget document
type Budget struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	UserID    uuid.UUID     `json:"user" db:"user_id"`
	Entries   []BudgetEntry `json:"categories" db:"-"`
	CreatedAt time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time     `json:"updatedAt" db:"updated_at"`
}

// EntryForCategory returns the first entry tracking the category, or nil
func (b *Budget) EntryForCategory(categoryID uuid.UUID) *BudgetEntry {
	for i := range b.Entries {
		if b.Entries[i].CategoryID == categoryID {
			return &b.Entries[i]
		}
	}
	return nil
}

// EntryByName returns the entry with the given display name, or nil
func (b *Budget) EntryByName(name string) *BudgetEntry {
	for i := range b.Entries {
		if b.Entries[i].Name == name {
			return &b.Entries[i]
		}
	}
	return nil
}

// BudgetEntryRequest creates or updates one budget entry
type BudgetEntryRequest struct {
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Limit     decimal.Decimal `json:"limit"`
	StartDate string          `json:"startDate"`
	EndDate   string          `json:"endDate"`
}

// CreateBudgetRequest creates the budget document, optionally with initial entries
type CreateBudgetRequest struct {
	Categories []BudgetEntryRequest `json:"categories"`
}

// UpsertBudgetEntryResponse reports whether the entry was added or replaced
type UpsertBudgetEntryResponse struct {
	Created bool    `json:"created"`
	Budget  *Budget `json:"budget"`
}

// Day truncates a timestamp to its UTC calendar day
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
