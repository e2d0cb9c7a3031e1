package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack_service/internal/domain/entities"
)

// Forecast projects daily income and expenses for the next horizon days,
// starting today, from per-weekday sums over the window. Sums are divided by
// the number of weeks in the window (at least 1) and rounded to whole units.
func Forecast(txs []*entities.Transaction, windowDays, horizon int, today time.Time) []entities.ForecastPoint {
	var income, expenses [7]decimal.Decimal
	for _, tx := range txs {
		wd := tx.Date.UTC().Weekday()
		if tx.Type == entities.TransactionTypeIncome {
			income[wd] = income[wd].Add(tx.Amount)
		} else {
			expenses[wd] = expenses[wd].Add(tx.Amount)
		}
	}

	weeks := windowDays / 7
	if weeks < 1 {
		weeks = 1
	}
	divisor := decimal.NewFromInt(int64(weeks))

	start := entities.Day(today)
	points := make([]entities.ForecastPoint, 0, horizon)
	for i := 0; i < horizon; i++ {
		date := start.AddDate(0, 0, i)
		wd := date.Weekday()
		points = append(points, entities.ForecastPoint{
			Date:              entities.NewDate(date),
			PredictedIncome:   income[wd].Div(divisor).Round(0),
			PredictedExpenses: expenses[wd].Div(divisor).Round(0),
		})
	}
	return points
}
