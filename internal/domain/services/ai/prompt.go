package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fintrack/fintrack_service/internal/domain/entities"
	"github.com/fintrack/fintrack_service/internal/domain/services/analytics"
)

const systemPrompt = `You are a financial advisor for a personal finance tracker.
Answer with a single JSON object only. Do not use markdown or code blocks.`

type promptTransaction struct {
	Amount   string `json:"amount"`
	Type     string `json:"type"`
	Category string `json:"category"`
	Date     string `json:"date"`
}

func promptTransactions(txs []*entities.Transaction) []promptTransaction {
	out := make([]promptTransaction, 0, len(txs))
	for _, tx := range txs {
		out = append(out, promptTransaction{
			Amount:   tx.Amount.String(),
			Type:     string(tx.Type),
			Category: tx.CategoryName(),
			Date:     entities.NewDate(tx.Date).String(),
		})
	}
	return out
}

func mustJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// buildAnalysisPrompt embeds the report's rollup, budget status and
// transaction history and asks for the narrative fields.
func buildAnalysisPrompt(report *entities.Report) string {
	var b strings.Builder
	b.WriteString("Analyze this financial data and provide insights.\n\n")
	fmt.Fprintf(&b, "Transaction History: %s\n", mustJSON(promptTransactions(report.Transactions)))
	fmt.Fprintf(&b, "Category Performance: %s\n", mustJSON(report.Historical.CategoryAnalysis))
	fmt.Fprintf(&b, "Budget Status: %s\n\n", mustJSON(report.Historical.BudgetStatus))
	b.WriteString(`Respond with a JSON object containing:
- spendingPatterns: array of {"pattern": string}
- budgetRecommendations: array of {"recommendation": string}
- savingsOpportunities: array of {"opportunity": string, "potentialSavings": number}
- incomeGrowth: array of {"suggestion": string, "potentialIncrease": number}
- riskAssessment: array of {"risk": string, "severity": "low"|"medium"|"high", "mitigation": string}
- confidenceScore: number between 0 and 1`)
	return b.String()
}

// buildRecommendationPrompt asks for a 7-day transaction prediction and
// grouped suggestions.
func buildRecommendationPrompt(txs []*entities.Transaction, budget *entities.Budget) string {
	statuses := []entities.BudgetStatus{}
	if budget != nil {
		statuses = analytics.BudgetStatuses(budget)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Transaction data: %s\n", mustJSON(promptTransactions(txs)))
	fmt.Fprintf(&b, "Budget data: %s\n\n", mustJSON(statuses))
	fmt.Fprintf(&b, "Generate a %d-day prediction of transactions and at least three suggestions in each group.\n", recommendationHorizon)
	b.WriteString(`Example response:
{
  "predictions": [
    {"date": "YYYY-MM-DD", "amount": 100, "category": "Food", "type": "expense"},
    {"date": "YYYY-MM-DD", "amount": 100, "category": "Freelance", "type": "income"}
  ],
  "suggestions": {
    "Increase Income": ["..."],
    "Increase Savings": ["..."],
    "Spend Money Wisely": ["..."]
  }
}`)
	return b.String()
}
