package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintrack/fintrack_service/internal/domain/entities"
)

func TestParseNarrative_StringElementsBecomeObjects(t *testing.T) {
	n, err := ParseNarrative(`{"spendingPatterns": ["Spend less on coffee"], "confidenceScore": 0.7}`)
	require.NoError(t, err)

	assert.Equal(t, []entities.SpendingPattern{{Pattern: "Spend less on coffee"}}, n.SpendingPatterns)
	assert.Equal(t, 0.7, n.ConfidenceScore)
}

func TestParseNarrative_Unparsable(t *testing.T) {
	for _, reply := range []string{"not json at all", "{broken", ""} {
		n, err := ParseNarrative(reply)
		assert.Error(t, err)
		assert.Equal(t, []entities.SpendingPattern{{Pattern: "Analysis unavailable due to parsing error"}}, n.SpendingPatterns)
		assert.Empty(t, n.BudgetRecommendations)
		assert.Empty(t, n.SavingsOpportunities)
		assert.Empty(t, n.IncomeGrowth)
		assert.Empty(t, n.RiskAssessment)
		assert.Zero(t, n.ConfidenceScore)
	}
}

func TestParseNarrative_CodeFencesAndProse(t *testing.T) {
	replies := []string{
		"```json\n{\"confidenceScore\": 0.9}\n```",
		"```\n{\"confidenceScore\": 0.9}\n```",
		"Here is the analysis:\n{\"confidenceScore\": 0.9}\nHope it helps.",
	}
	for _, reply := range replies {
		n, err := ParseNarrative(reply)
		require.NoError(t, err, reply)
		assert.Equal(t, 0.9, n.ConfidenceScore)
	}
}

func TestParseNarrative_Aliases(t *testing.T) {
	n, err := ParseNarrative(`{
		"spendingPatterns": [{"observation": "Weekend spikes"}],
		"budgetRecommendations": [{"advice": "Cap dining at 200"}],
		"savingsOpportunities": [{"description": "Cancel streaming", "estimatedSavings": "15.50"}],
		"incomeGrowth": [{"strategy": "Raise rates", "increase": 300}],
		"riskAssessment": [{"issue": "No emergency fund", "level": "HIGH", "action": "Save 3 months"}],
		"confidenceScore": "0.8"
	}`)
	require.NoError(t, err)

	assert.Equal(t, "Weekend spikes", n.SpendingPatterns[0].Pattern)
	assert.Equal(t, "Cap dining at 200", n.BudgetRecommendations[0].Recommendation)
	assert.Equal(t, entities.SavingsOpportunity{Opportunity: "Cancel streaming", PotentialSavings: 15.5}, n.SavingsOpportunities[0])
	assert.Equal(t, entities.IncomeGrowth{Suggestion: "Raise rates", PotentialIncrease: 300}, n.IncomeGrowth[0])
	assert.Equal(t, entities.RiskAssessment{Risk: "No emergency fund", Severity: "high", Mitigation: "Save 3 months"}, n.RiskAssessment[0])
	assert.Equal(t, 0.8, n.ConfidenceScore)
}

func TestParseNarrative_AliasPriority(t *testing.T) {
	n, err := ParseNarrative(`{"budgetRecommendations": [{"text": "generic", "suggestion": "specific"}]}`)
	require.NoError(t, err)
	assert.Equal(t, "specific", n.BudgetRecommendations[0].Recommendation)
}

func TestParseNarrative_MissingFieldsGetPlaceholders(t *testing.T) {
	n, err := ParseNarrative(`{"spendingPatterns": "oops", "riskAssessment": [{"risk": "Debt"}]}`)
	require.NoError(t, err)

	require.Len(t, n.SpendingPatterns, 1)
	assert.Equal(t, missingPattern, n.SpendingPatterns[0].Pattern)
	require.Len(t, n.BudgetRecommendations, 1)
	require.Len(t, n.SavingsOpportunities, 1)
	assert.Zero(t, n.SavingsOpportunities[0].PotentialSavings)
	require.Len(t, n.IncomeGrowth, 1)
	assert.Equal(t, entities.RiskAssessment{Risk: "Debt", Severity: "medium", Mitigation: missingMitigation}, n.RiskAssessment[0])
	assert.Equal(t, defaultConfidence, n.ConfidenceScore)
	assert.Equal(t, 0.8, n.ConfidenceScore)
}

func TestParseNarrative_ConfidenceClamped(t *testing.T) {
	n, err := ParseNarrative(`{"confidenceScore": 7}`)
	require.NoError(t, err)
	assert.Equal(t, 1.0, n.ConfidenceScore)

	n, err = ParseNarrative(`{"confidenceScore": -2}`)
	require.NoError(t, err)
	assert.Equal(t, 0.0, n.ConfidenceScore)

	n, err = ParseNarrative(`{"confidenceScore": "high"}`)
	require.NoError(t, err)
	assert.Equal(t, 0.8, n.ConfidenceScore)

	n, err = ParseNarrative(`{"confidenceScore": null}`)
	require.NoError(t, err)
	assert.Equal(t, 0.8, n.ConfidenceScore)

	n, err = ParseNarrative(`{"confidenceScore": "0.65"}`)
	require.NoError(t, err)
	assert.Equal(t, 0.65, n.ConfidenceScore)
}

func TestParseNarrative_NumericStringAmounts(t *testing.T) {
	n, err := ParseNarrative(`{"savingsOpportunities": [{"opportunity": "x", "potentialSavings": "$1,200"}, {"opportunity": "y", "savings": "lots"}]}`)
	require.NoError(t, err)
	assert.Equal(t, 1200.0, n.SavingsOpportunities[0].PotentialSavings)
	assert.Zero(t, n.SavingsOpportunities[1].PotentialSavings)
}

func TestParseRecommendations(t *testing.T) {
	predictions, suggestions, err := ParseRecommendations("```json\n" + `{
		"predictions": [
			{"date": "2026-03-21", "amount": "45", "category": "Food", "type": "expense"},
			{"date": "2026-03-22", "amount": 1000, "category": "Freelance", "type": "Income"},
			{"amount": 5}
		],
		"suggestions": {
			"Increase Income": ["Freelancing"],
			"Increase Savings": [{"suggestion": "Cook at home"}],
			"Spend Money Wisely": []
		}
	}` + "\n```")
	require.NoError(t, err)

	require.Len(t, predictions, 2)
	assert.Equal(t, entities.PredictedTransaction{Date: "2026-03-21", Amount: 45, Category: "Food", Type: entities.TransactionTypeExpense}, predictions[0])
	assert.Equal(t, entities.TransactionTypeIncome, predictions[1].Type)
	assert.Equal(t, []string{"Freelancing"}, suggestions.IncreaseIncome)
	assert.Equal(t, []string{"Cook at home"}, suggestions.IncreaseSavings)
	assert.Empty(t, suggestions.SpendMoneyWisely)
}
