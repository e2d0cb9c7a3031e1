package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack_service/internal/domain/entities"
)

// BuildDashboard groups the window's transactions by day and type and totals them
func BuildDashboard(txs []*entities.Transaction, windowDays int, windowStart time.Time, currentBalance decimal.Decimal) *entities.Dashboard {
	sorted := chronological(txs)
	starting, trend := ReconstructTrend(currentBalance, sorted, windowStart)

	d := &entities.Dashboard{
		WindowDays:        windowDays,
		ExpenseCategories: make([]*entities.Transaction, 0),
		IncomeCategories:  make([]*entities.Transaction, 0),
		WeeklyData:        make([]entities.DailyGroup, 0),
		BalanceTrend:      trend,
		Summary: entities.DashboardSummary{
			TotalIncome:     decimal.Zero,
			TotalExpense:    decimal.Zero,
			StartingBalance: starting,
			EndingBalance:   currentBalance,
		},
	}

	for _, tx := range sorted {
		if tx.Type == entities.TransactionTypeIncome {
			d.IncomeCategories = append(d.IncomeCategories, tx)
			d.Summary.TotalIncome = d.Summary.TotalIncome.Add(tx.Amount)
		} else {
			d.ExpenseCategories = append(d.ExpenseCategories, tx)
			d.Summary.TotalExpense = d.Summary.TotalExpense.Add(tx.Amount)
		}

		day := entities.NewDate(tx.Date)
		if n := len(d.WeeklyData); n > 0 && d.WeeklyData[n-1].Date.Equal(day.Time) {
			d.WeeklyData[n-1].Transactions = append(d.WeeklyData[n-1].Transactions, tx)
			continue
		}
		d.WeeklyData = append(d.WeeklyData, entities.DailyGroup{
			Date:         day,
			Day:          day.Weekday().String()[:3],
			Transactions: []*entities.Transaction{tx},
		})
	}

	d.Summary.NetBalance = d.Summary.TotalIncome.Sub(d.Summary.TotalExpense)
	return d
}
