package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack_service/internal/domain/entities"
)

// GroupBy selects the key transactions are rolled up by
type GroupBy string

const (
	// GroupByName merges categories that share a display name
	GroupByName GroupBy = "name"
	GroupByID   GroupBy = "id"
)

func (g GroupBy) IsValid() bool {
	return g == GroupByName || g == GroupByID
}

// RollupCategories groups transactions and sums each group. Groups keep the
// order in which they are first seen; the group type is that of its first transaction.
func RollupCategories(txs []*entities.Transaction, groupBy GroupBy) []entities.CategoryRollup {
	index := make(map[string]int)
	rollups := make([]entities.CategoryRollup, 0)

	for _, tx := range txs {
		key := tx.CategoryName()
		if groupBy == GroupByID {
			key = tx.CategoryID.String()
		}

		i, ok := index[key]
		if !ok {
			r := entities.CategoryRollup{
				Category:   tx.CategoryName(),
				Type:       tx.Type,
				TotalSpent: decimal.Zero,
			}
			if groupBy == GroupByID {
				id := tx.CategoryID
				r.CategoryID = &id
			}
			rollups = append(rollups, r)
			i = len(rollups) - 1
			index[key] = i
		}

		rollups[i].TotalSpent = rollups[i].TotalSpent.Add(tx.Amount)
		rollups[i].TransactionCount++
	}

	for i := range rollups {
		rollups[i].AveragePerTransaction = rollups[i].TotalSpent.
			Div(decimal.NewFromInt(int64(rollups[i].TransactionCount))).
			Round(2)
	}
	return rollups
}

// BudgetStatuses reports the remaining allowance of every budget entry
func BudgetStatuses(budget *entities.Budget) []entities.BudgetStatus {
	statuses := make([]entities.BudgetStatus, 0, len(budget.Entries))
	for i := range budget.Entries {
		e := &budget.Entries[i]
		statuses = append(statuses, entities.BudgetStatus{
			Name:       e.Name,
			CategoryID: e.CategoryID,
			Limit:      e.Limit,
			Spent:      e.Spent,
			Remaining:  e.Remaining(),
			StartDate:  e.StartDate,
			EndDate:    e.EndDate,
		})
	}
	return statuses
}

// chronological returns a copy of txs sorted oldest first
func chronological(txs []*entities.Transaction) []*entities.Transaction {
	sorted := append([]*entities.Transaction(nil), txs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}
