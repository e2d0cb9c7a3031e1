package entities

import "time"

// SpendingPattern is an observation about how money is spent
type SpendingPattern struct {
	Pattern string `json:"pattern"`
}

type BudgetRecommendation struct {
	Recommendation string `json:"recommendation"`
}

type SavingsOpportunity struct {
	Opportunity      string  `json:"opportunity"`
	PotentialSavings float64 `json:"potentialSavings"`
}

type IncomeGrowth struct {
	Suggestion        string  `json:"suggestion"`
	PotentialIncrease float64 `json:"potentialIncrease"`
}

type RiskAssessment struct {
	Risk       string `json:"risk"`
	Severity   string `json:"severity"`
	Mitigation string `json:"mitigation"`
}

// NarrativeInsights is the normalized shape of an AI analysis reply.
// Every list is always present.
type NarrativeInsights struct {
	SpendingPatterns      []SpendingPattern      `json:"spendingPatterns"`
	BudgetRecommendations []BudgetRecommendation `json:"budgetRecommendations"`
	SavingsOpportunities  []SavingsOpportunity   `json:"savingsOpportunities"`
	IncomeGrowth          []IncomeGrowth         `json:"incomeGrowth"`
	RiskAssessment        []RiskAssessment       `json:"riskAssessment"`
	ConfidenceScore       float64                `json:"confidenceScore"`
}

// AIInsights wraps the narrative with provenance
type AIInsights struct {
	Available   bool               `json:"available"`
	Provider    string             `json:"provider,omitempty"`
	Message     string             `json:"message,omitempty"`
	Narrative   *NarrativeInsights `json:"aiPredictions,omitempty"`
	GeneratedAt time.Time          `json:"generatedAt"`
}

// PredictedTransaction is one AI-predicted upcoming transaction
type PredictedTransaction struct {
	Date     string          `json:"date"`
	Amount   float64         `json:"amount"`
	Category string          `json:"category"`
	Type     TransactionType `json:"type"`
}

// SuggestionSet groups free-text suggestions by goal
type SuggestionSet struct {
	IncreaseIncome   []string `json:"Increase Income"`
	IncreaseSavings  []string `json:"Increase Savings"`
	SpendMoneyWisely []string `json:"Spend Money Wisely"`
}

// Recommendations is the short-horizon prediction and advice response
type Recommendations struct {
	Source      string                 `json:"source"`
	Provider    string                 `json:"provider,omitempty"`
	Predictions []PredictedTransaction `json:"predictions"`
	Forecast    []ForecastPoint        `json:"forecast,omitempty"`
	Suggestions SuggestionSet          `json:"suggestions"`
	GeneratedAt time.Time              `json:"generatedAt"`
}

const (
	RecommendationSourceAI       = "ai"
	RecommendationSourceFallback = "fallback"
)
