package analytics

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack_service/internal/domain/entities"
)

var (
	overspendThreshold   = decimal.RequireFromString("0.8")
	highAverageThreshold = decimal.NewFromInt(500)
	reduceRate           = decimal.RequireFromString("0.2")
	consolidateRate      = decimal.RequireFromString("0.1")
	incomeGrowthRate     = decimal.RequireFromString("0.25")
)

const (
	frequentTransactionCount = 3
	highUtilization          = 0.9
	minIncomeSources         = 2
)

// DeriveInsights applies the rule set to a rollup and budget status. It never fails.
func DeriveInsights(rollups []entities.CategoryRollup, statuses []entities.BudgetStatus) entities.Insights {
	return entities.Insights{
		Overspending: overspending(rollups, statuses),
		Savings:      savings(rollups),
		Income:       incomeOpportunities(rollups),
		Risks:        risks(rollups, statuses),
	}
}

func overspending(rollups []entities.CategoryRollup, statuses []entities.BudgetStatus) []entities.OverspendingInsight {
	out := make([]entities.OverspendingInsight, 0)
	for _, r := range rollups {
		status := statusByName(statuses, r.Category)
		if status == nil || !r.TotalSpent.GreaterThan(status.Limit.Mul(overspendThreshold)) {
			continue
		}

		exceeded := r.TotalSpent.GreaterThan(status.Limit)
		msg := fmt.Sprintf("You are close to your budget limit for %s. Monitor spending carefully.", r.Category)
		if exceeded {
			msg = fmt.Sprintf("You have exceeded your budget for %s. Consider reducing expenses in this category.", r.Category)
		}
		out = append(out, entities.OverspendingInsight{
			Category:       r.Category,
			Amount:         r.TotalSpent,
			Limit:          status.Limit,
			Exceeded:       exceeded,
			Recommendation: msg,
		})
	}
	return out
}

// exactAverage is the unrounded mean; AveragePerTransaction is rounded for display
func exactAverage(r entities.CategoryRollup) decimal.Decimal {
	if r.TransactionCount == 0 {
		return r.AveragePerTransaction
	}
	return r.TotalSpent.Div(decimal.NewFromInt(int64(r.TransactionCount)))
}

func savings(rollups []entities.CategoryRollup) []entities.SavingsInsight {
	out := make([]entities.SavingsInsight, 0)
	for _, r := range rollups {
		if r.Type != entities.TransactionTypeExpense {
			continue
		}
		if avg := exactAverage(r); avg.GreaterThan(highAverageThreshold) {
			display, _ := avg.Float64()
			out = append(out, entities.SavingsInsight{
				Category:         r.Category,
				Kind:             entities.SavingsKindReduce,
				Suggestion:       fmt.Sprintf("Consider reducing %s expenses. Your average transaction is $%.2f.", r.Category, display),
				PotentialSavings: avg.Mul(reduceRate).Round(0),
			})
		}
		if r.TransactionCount > frequentTransactionCount {
			out = append(out, entities.SavingsInsight{
				Category:         r.Category,
				Kind:             entities.SavingsKindConsolidate,
				Suggestion:       fmt.Sprintf("You have frequent %s transactions. Consider consolidating to reduce overall spending.", r.Category),
				PotentialSavings: r.TotalSpent.Mul(consolidateRate).Round(0),
			})
		}
	}
	return out
}

func incomeOpportunities(rollups []entities.CategoryRollup) []entities.IncomeInsight {
	out := make([]entities.IncomeInsight, 0)
	for _, r := range rollups {
		if !entities.IsIncomeCategoryName(r.Category) {
			continue
		}
		out = append(out, entities.IncomeInsight{
			Category:          r.Category,
			Opportunity:       fmt.Sprintf("Increase %s revenue by seeking more clients or optimizing pricing", r.Category),
			PotentialIncrease: r.TotalSpent.Mul(incomeGrowthRate).Round(0),
		})
	}
	return out
}

func risks(rollups []entities.CategoryRollup, statuses []entities.BudgetStatus) []entities.RiskInsight {
	out := make([]entities.RiskInsight, 0)
	for _, s := range statuses {
		if !s.Limit.IsPositive() {
			continue
		}
		utilization, _ := s.Spent.Div(s.Limit).Float64()
		if utilization > highUtilization {
			out = append(out, entities.RiskInsight{
				Risk:       fmt.Sprintf("High budget utilization in %s", s.Name),
				Severity:   "high",
				Mitigation: "Review and adjust budget allocation or reduce spending",
			})
		}
	}

	sources := 0
	for _, r := range rollups {
		if entities.IsIncomeCategoryName(r.Category) {
			sources++
		}
	}
	if sources < minIncomeSources {
		out = append(out, entities.RiskInsight{
			Risk:       "Limited income diversification",
			Severity:   "medium",
			Mitigation: "Consider developing additional income streams",
		})
	}
	return out
}

func statusByName(statuses []entities.BudgetStatus, name string) *entities.BudgetStatus {
	for i := range statuses {
		if statuses[i].Name == name {
			return &statuses[i]
		}
	}
	return nil
}
