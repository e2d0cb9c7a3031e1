package reconciliation

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack_service/internal/domain/entities"
)

// ComputeBalance is the wallet balance implied by the ledger
func ComputeBalance(txs []*entities.Transaction) decimal.Decimal {
	balance := decimal.Zero
	for _, tx := range txs {
		balance = balance.Add(tx.SignedAmount())
	}
	return balance
}

// ComputeSpent recomputes every entry's spent the way the write path
// accumulates it: each expense counts toward the first entry tracking its
// category when dated on or before that entry's end date.
func ComputeSpent(budget *entities.Budget, txs []*entities.Transaction) map[uuid.UUID]decimal.Decimal {
	spent := make(map[uuid.UUID]decimal.Decimal, len(budget.Entries))
	for i := range budget.Entries {
		spent[budget.Entries[i].ID] = decimal.Zero
	}
	for _, tx := range txs {
		if tx.Type != entities.TransactionTypeExpense {
			continue
		}
		entry := budget.EntryForCategory(tx.CategoryID)
		if entry == nil || !entry.CountsExpenseOn(tx.Date) {
			continue
		}
		spent[entry.ID] = spent[entry.ID].Add(tx.Amount)
	}
	return spent
}

// budgetDrift lists the entries whose stored spent disagrees with the ledger
func budgetDrift(budget *entities.Budget, txs []*entities.Transaction) []entities.BudgetDriftItem {
	if budget == nil {
		return []entities.BudgetDriftItem{}
	}
	computed := ComputeSpent(budget, txs)
	drift := []entities.BudgetDriftItem{}
	for _, e := range budget.Entries {
		want := computed[e.ID]
		if e.Spent.Equal(want) {
			continue
		}
		drift = append(drift, entities.BudgetDriftItem{
			EntryID:       e.ID,
			Name:          e.Name,
			StoredSpent:   e.Spent,
			ComputedSpent: want,
		})
	}
	return drift
}
