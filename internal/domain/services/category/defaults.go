package category

import "github.com/fintrack/fintrack_service/internal/domain/entities"

var palette = []string{
	"#FF8A65", "#FFB74D", "#4DD0E1", "#81C784",
	"#64B5F6", "#BA68C8", "#A1887F", "#90A4AE",
}

func defaultColor(i int) string {
	return palette[i%len(palette)]
}

// DefaultCategories is the catalog installed by the seed command
func DefaultCategories() []entities.Category {
	expense := []struct{ name, icon string }{
		{"Food", "utensils"},
		{"Groceries", "shopping-basket"},
		{"Rent", "home"},
		{"Utilities", "bolt"},
		{"Transportation", "car"},
		{"Entertainment", "film"},
		{"Shopping", "shopping-bag"},
		{"Healthcare", "heartbeat"},
		{"Education", "graduation-cap"},
		{"Travel", "plane"},
		{"Subscriptions", "repeat"},
		{"Other Expense", "ellipsis-h"},
	}

	out := make([]entities.Category, 0, len(expense)+len(entities.IncomeCategoryNames))
	for i, e := range expense {
		out = append(out, entities.Category{
			Name:  e.name,
			Type:  entities.TransactionTypeExpense,
			Icon:  e.icon,
			Color: defaultColor(i),
		})
	}

	incomeIcons := map[string]string{
		"Freelancing":   "laptop",
		"Business":      "briefcase",
		"Rental Income": "building",
		"Investment":    "chart-line",
		"Salary":        "money-bill",
		"Pension":       "piggy-bank",
		"Gifts":         "gift",
		"Other Income":  "plus-circle",
	}
	for i, name := range entities.IncomeCategoryNames {
		out = append(out, entities.Category{
			Name:  name,
			Type:  entities.TransactionTypeIncome,
			Icon:  incomeIcons[name],
			Color: defaultColor(len(expense) + i),
		})
	}
	return out
}
