package ai

import (
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/fintrack/fintrack_service/internal/domain/entities"
)

const (
	parseFallbackPattern = "Analysis unavailable due to parsing error"
	defaultSeverity      = "medium"
	defaultConfidence    = 0.8
)

// Placeholders substituted for lists or text the model left out
const (
	missingPattern        = "No spending patterns identified"
	missingRecommendation = "No budget recommendations provided"
	missingSavings        = "No savings opportunities identified"
	missingIncome         = "No income growth suggestions provided"
	missingRisk           = "No risks identified"
	missingMitigation     = "No mitigation provided"
	missingText           = "No details provided"
)

var (
	patternKeys          = []string{"pattern", "description", "observation", "insight", "text"}
	recommendationKeys   = []string{"recommendation", "suggestion", "advice", "text"}
	savingsTextKeys      = []string{"opportunity", "suggestion", "description", "text"}
	savingsAmountKeys    = []string{"potentialSavings", "savings", "amount", "estimatedSavings"}
	incomeTextKeys       = []string{"suggestion", "opportunity", "strategy", "description", "text"}
	incomeAmountKeys     = []string{"potentialIncrease", "increase", "amount", "estimatedIncrease"}
	riskTextKeys         = []string{"risk", "description", "issue", "text"}
	riskSeverityKeys     = []string{"severity", "level", "priority"}
	riskMitigationKeys   = []string{"mitigation", "recommendation", "action", "solution"}
	suggestionTextKeys   = []string{"suggestion", "text", "description"}
	predictionDateKeys   = []string{"date", "day"}
	predictionAmountKeys = []string{"amount", "value"}
)

var codeFence = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")

var errNoJSONObject = errors.New("no JSON object in reply")

// extractJSON strips code fences and any prose around the outermost object
func extractJSON(reply string) (string, error) {
	text := strings.TrimSpace(reply)
	if m := codeFence.FindStringSubmatch(text); m != nil {
		text = m[1]
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", errNoJSONObject
	}
	return text[start : end+1], nil
}

func decodeObject(reply string) (map[string]interface{}, error) {
	raw, err := extractJSON(reply)
	if err != nil {
		return nil, err
	}
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// ParseFallback is the narrative used when a reply cannot be parsed at all
func ParseFallback() *entities.NarrativeInsights {
	return &entities.NarrativeInsights{
		SpendingPatterns:      []entities.SpendingPattern{{Pattern: parseFallbackPattern}},
		BudgetRecommendations: []entities.BudgetRecommendation{},
		SavingsOpportunities:  []entities.SavingsOpportunity{},
		IncomeGrowth:          []entities.IncomeGrowth{},
		RiskAssessment:        []entities.RiskAssessment{},
		ConfidenceScore:       0,
	}
}

// ParseNarrative normalizes a model reply into the narrative shape. Each field
// is normalized independently; the error is non-nil only when no JSON object
// could be decoded, in which case the parse fallback is returned.
func ParseNarrative(reply string) (*entities.NarrativeInsights, error) {
	obj, err := decodeObject(reply)
	if err != nil {
		return ParseFallback(), err
	}

	out := &entities.NarrativeInsights{ConfidenceScore: confidence(obj["confidenceScore"])}

	for _, el := range list(obj["spendingPatterns"]) {
		out.SpendingPatterns = append(out.SpendingPatterns, entities.SpendingPattern{
			Pattern: text(el, patternKeys),
		})
	}
	if len(out.SpendingPatterns) == 0 {
		out.SpendingPatterns = []entities.SpendingPattern{{Pattern: missingPattern}}
	}

	for _, el := range list(obj["budgetRecommendations"]) {
		out.BudgetRecommendations = append(out.BudgetRecommendations, entities.BudgetRecommendation{
			Recommendation: text(el, recommendationKeys),
		})
	}
	if len(out.BudgetRecommendations) == 0 {
		out.BudgetRecommendations = []entities.BudgetRecommendation{{Recommendation: missingRecommendation}}
	}

	for _, el := range list(obj["savingsOpportunities"]) {
		out.SavingsOpportunities = append(out.SavingsOpportunities, entities.SavingsOpportunity{
			Opportunity:      text(el, savingsTextKeys),
			PotentialSavings: number(el, savingsAmountKeys),
		})
	}
	if len(out.SavingsOpportunities) == 0 {
		out.SavingsOpportunities = []entities.SavingsOpportunity{{Opportunity: missingSavings}}
	}

	for _, el := range list(obj["incomeGrowth"]) {
		out.IncomeGrowth = append(out.IncomeGrowth, entities.IncomeGrowth{
			Suggestion:        text(el, incomeTextKeys),
			PotentialIncrease: number(el, incomeAmountKeys),
		})
	}
	if len(out.IncomeGrowth) == 0 {
		out.IncomeGrowth = []entities.IncomeGrowth{{Suggestion: missingIncome}}
	}

	for _, el := range list(obj["riskAssessment"]) {
		risk := entities.RiskAssessment{
			Risk:       text(el, riskTextKeys),
			Severity:   defaultSeverity,
			Mitigation: missingMitigation,
		}
		if m, ok := el.(map[string]interface{}); ok {
			if s := firstString(m, riskSeverityKeys); s != "" {
				risk.Severity = strings.ToLower(s)
			}
			if s := firstString(m, riskMitigationKeys); s != "" {
				risk.Mitigation = s
			}
		}
		out.RiskAssessment = append(out.RiskAssessment, risk)
	}
	if len(out.RiskAssessment) == 0 {
		out.RiskAssessment = []entities.RiskAssessment{{Risk: missingRisk, Severity: defaultSeverity, Mitigation: missingMitigation}}
	}

	return out, nil
}

// ParseRecommendations normalizes a recommendations reply
func ParseRecommendations(reply string) ([]entities.PredictedTransaction, entities.SuggestionSet, error) {
	obj, err := decodeObject(reply)
	if err != nil {
		return nil, emptySuggestions(), err
	}

	predictions := []entities.PredictedTransaction{}
	for _, el := range list(obj["predictions"]) {
		m, ok := el.(map[string]interface{})
		if !ok {
			continue
		}
		date := firstString(m, predictionDateKeys)
		if date == "" {
			continue
		}
		txType := entities.TransactionTypeExpense
		if strings.EqualFold(firstString(m, []string{"type"}), string(entities.TransactionTypeIncome)) {
			txType = entities.TransactionTypeIncome
		}
		predictions = append(predictions, entities.PredictedTransaction{
			Date:     date,
			Amount:   number(m, predictionAmountKeys),
			Category: firstString(m, []string{"category", "name"}),
			Type:     txType,
		})
	}

	suggestions := emptySuggestions()
	if groups, ok := obj["suggestions"].(map[string]interface{}); ok {
		suggestions.IncreaseIncome = stringList(groups["Increase Income"])
		suggestions.IncreaseSavings = stringList(groups["Increase Savings"])
		suggestions.SpendMoneyWisely = stringList(groups["Spend Money Wisely"])
	}
	return predictions, suggestions, nil
}

func emptySuggestions() entities.SuggestionSet {
	return entities.SuggestionSet{
		IncreaseIncome:   []string{},
		IncreaseSavings:  []string{},
		SpendMoneyWisely: []string{},
	}
}

func stringList(v interface{}) []string {
	out := []string{}
	for _, el := range list(v) {
		if s := text(el, suggestionTextKeys); s != missingText {
			out = append(out, s)
		}
	}
	return out
}

func list(v interface{}) []interface{} {
	items, _ := v.([]interface{})
	return items
}

// text returns a string element as-is, or the first non-empty alias of an object element
func text(el interface{}, keys []string) string {
	switch v := el.(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	case map[string]interface{}:
		if s := firstString(v, keys); s != "" {
			return s
		}
	}
	return missingText
}

func firstString(m map[string]interface{}, keys []string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}

// number returns the first alias that holds a number or numeric string, else 0
func number(el interface{}, keys []string) float64 {
	m, ok := el.(map[string]interface{})
	if !ok {
		return 0
	}
	for _, k := range keys {
		if f, ok := toFloat(m[k]); ok {
			return f
		}
	}
	return 0
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(n), "$"))
		s = strings.ReplaceAll(s, ",", "")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func confidence(v interface{}) float64 {
	f, ok := toFloat(v)
	if !ok {
		return defaultConfidence
	}
	return math.Max(0, math.Min(1, f))
}
