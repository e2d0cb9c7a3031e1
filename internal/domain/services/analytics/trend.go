package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack_service/internal/domain/entities"
)

// ReconstructTrend walks the window forward from the balance it must have
// started at. The first point carries the starting balance, dated at the
// window start (or the day before when transactions fall on that day); then
// one point per UTC day with transactions. No transactions gives an empty trend.
func ReconstructTrend(currentBalance decimal.Decimal, txs []*entities.Transaction, windowStart time.Time) (decimal.Decimal, []entities.BalancePoint) {
	starting := currentBalance
	for _, tx := range txs {
		starting = starting.Sub(tx.SignedAmount())
	}

	points := make([]entities.BalancePoint, 0)
	if len(txs) == 0 {
		return starting, points
	}

	sorted := chronological(txs)
	startDay := entities.Day(windowStart)
	if !entities.Day(sorted[0].Date).After(startDay) {
		startDay = entities.Day(sorted[0].Date).AddDate(0, 0, -1)
	}
	points = append(points, entities.BalancePoint{Date: entities.NewDate(startDay), Balance: starting})

	balance := starting
	for i, tx := range sorted {
		balance = balance.Add(tx.SignedAmount())
		day := entities.Day(tx.Date)
		if i+1 < len(sorted) && entities.Day(sorted[i+1].Date).Equal(day) {
			continue
		}
		points = append(points, entities.BalancePoint{Date: entities.NewDate(day), Balance: balance})
	}
	return starting, points
}
