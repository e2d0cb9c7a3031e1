package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryRollup aggregates the in-window transactions of one category group
type CategoryRollup struct {
	Category              string          `json:"category"`
	CategoryID            *uuid.UUID      `json:"categoryId,omitempty"`
	Type                  TransactionType `json:"type"`
	TotalSpent            decimal.Decimal `json:"totalSpent"`
	TransactionCount      int             `json:"transactionCount"`
	AveragePerTransaction decimal.Decimal `json:"averagePerTransaction"`
}

// BudgetStatus is a budget entry with its remaining allowance
type BudgetStatus struct {
	Name       string          `json:"name"`
	CategoryID uuid.UUID       `json:"category"`
	Limit      decimal.Decimal `json:"limit"`
	Spent      decimal.Decimal `json:"spent"`
	Remaining  decimal.Decimal `json:"remaining"`
	StartDate  time.Time       `json:"startDate"`
	EndDate    time.Time       `json:"endDate"`
}

// BalancePoint is one step of a reconstructed balance trend
type BalancePoint struct {
	Date    Date            `json:"date"`
	Balance decimal.Decimal `json:"balance"`
}

// ForecastPoint is the predicted daily flow for one upcoming date
type ForecastPoint struct {
	Date              Date            `json:"date"`
	PredictedIncome   decimal.Decimal `json:"predictedIncome"`
	PredictedExpenses decimal.Decimal `json:"predictedExpenses"`
}

type OverspendingInsight struct {
	Category       string          `json:"category"`
	Amount         decimal.Decimal `json:"amount"`
	Limit          decimal.Decimal `json:"limit"`
	Exceeded       bool            `json:"exceeded"`
	Recommendation string          `json:"recommendation"`
}

type SavingsInsight struct {
	Category         string          `json:"category"`
	Kind             string          `json:"kind"`
	Suggestion       string          `json:"suggestion"`
	PotentialSavings decimal.Decimal `json:"potentialSavings"`
}

const (
	SavingsKindReduce      = "reduce"
	SavingsKindConsolidate = "consolidate"
)

type IncomeInsight struct {
	Category          string          `json:"category"`
	Opportunity       string          `json:"opportunity"`
	PotentialIncrease decimal.Decimal `json:"potentialIncrease"`
}

type RiskInsight struct {
	Risk       string `json:"risk"`
	Severity   string `json:"severity"`
	Mitigation string `json:"mitigation"`
}

// Insights holds the rule-based findings
type Insights struct {
	Overspending []OverspendingInsight `json:"overspending"`
	Savings      []SavingsInsight      `json:"savings"`
	Income       []IncomeInsight       `json:"income"`
	Risks        []RiskInsight         `json:"risks"`
}

// HistoricalData is the aggregated view of the lookback window
type HistoricalData struct {
	WindowDays       int              `json:"windowDays"`
	From             time.Time        `json:"from"`
	To               time.Time        `json:"to"`
	CategoryAnalysis []CategoryRollup `json:"categoryAnalysis"`
	BudgetStatus     []BudgetStatus   `json:"budgetStatus"`
	BalanceTrend     []BalancePoint   `json:"balanceTrend"`
	StartingBalance  decimal.Decimal  `json:"startingBalance"`
	CurrentBalance   decimal.Decimal  `json:"currentBalance"`
}

// Report is the aggregator output before any narrative is attached
type Report struct {
	UserID       uuid.UUID       `json:"userId"`
	Historical   HistoricalData  `json:"historicalData"`
	Predictions  []ForecastPoint `json:"predictions"`
	Insights     Insights        `json:"insights"`
	Transactions []*Transaction  `json:"-"`
	GeneratedAt  time.Time       `json:"generatedAt"`
}

// Analysis is the full financial analysis response
type Analysis struct {
	*Report
	AIInsights *AIInsights `json:"aiInsights"`
}

// DailyGroup buckets a day's transactions for the dashboard
type DailyGroup struct {
	Date         Date           `json:"date"`
	Day          string         `json:"day"`
	Transactions []*Transaction `json:"transactions"`
}

// DashboardSummary totals the dashboard window
type DashboardSummary struct {
	TotalIncome     decimal.Decimal `json:"totalIncome"`
	TotalExpense    decimal.Decimal `json:"totalExpense"`
	NetBalance      decimal.Decimal `json:"netBalance"`
	StartingBalance decimal.Decimal `json:"startingBalance"`
	EndingBalance   decimal.Decimal `json:"endingBalance"`
}

// Dashboard is the short-window overview of a user's activity
type Dashboard struct {
	WindowDays        int              `json:"windowDays"`
	ExpenseCategories []*Transaction   `json:"expenseCategories"`
	IncomeCategories  []*Transaction   `json:"incomeCategories"`
	WeeklyData        []DailyGroup     `json:"weeklyData"`
	BalanceTrend      []BalancePoint   `json:"balanceTrend"`
	Summary           DashboardSummary `json:"summary"`
}

// Date is a calendar day serialized as YYYY-MM-DD
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	return Date{Day(t)}
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' {
		s = s[1 : len(s)-1]
	}
	t, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = Day(t)
	return nil
}
