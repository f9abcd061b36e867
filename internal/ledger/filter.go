// Package ledger contains the side-effect-free functions that slice, filter,
// group and summarize an expense collection.
package ledger

import (
	"strings"

	"expense-tracker-go/internal/model"
)

// FilterOptions is a conjunctive query; nil or empty fields always pass.
type FilterOptions struct {
	Search     string
	Categories []string
	DateRange  *DateRange
	MinAmount  *float64
	MaxAmount  *float64
}

// InDateRange reports whether the expense date lies within r, bounds included.
func InDateRange(expense model.Expense, r DateRange) bool {
	if !r.Start.IsZero() && expense.Date.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && expense.Date.After(r.End) {
		return false
	}
	return true
}

func ExpensesInDateRange(expenses []model.Expense, r DateRange) []model.Expense {
	result := make([]model.Expense, 0, len(expenses))
	for _, expense := range expenses {
		if InDateRange(expense, r) {
			result = append(result, expense)
		}
	}
	return result
}

func Filter(expenses []model.Expense, options FilterOptions) []model.Expense {
	var allowed map[string]struct{}
	if len(options.Categories) > 0 {
		allowed = make(map[string]struct{}, len(options.Categories))
		for _, category := range options.Categories {
			allowed[category] = struct{}{}
		}
	}
	search := strings.ToLower(strings.TrimSpace(options.Search))

	result := make([]model.Expense, 0, len(expenses))
	for _, expense := range expenses {
		if allowed != nil {
			if _, ok := allowed[expense.Category]; !ok {
				continue
			}
		}
		if options.DateRange != nil && !InDateRange(expense, *options.DateRange) {
			continue
		}
		if options.MinAmount != nil && expense.Amount < *options.MinAmount {
			continue
		}
		if options.MaxAmount != nil && expense.Amount > *options.MaxAmount {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(expense.Description), search) &&
			!strings.Contains(strings.ToLower(expense.Category), search) {
			continue
		}
		result = append(result, expense)
	}
	return result
}
