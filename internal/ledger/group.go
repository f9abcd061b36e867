package ledger

import (
	"sort"

	"expense-tracker-go/internal/model"
)

const (
	dayKeyLayout   = "2006-01-02"
	monthKeyLayout = "2006-01"
)

func GroupByDay(expenses []model.Expense) map[string][]model.Expense {
	return groupBy(expenses, func(expense model.Expense) string {
		return expense.Date.Format(dayKeyLayout)
	})
}

func GroupByMonth(expenses []model.Expense) map[string][]model.Expense {
	return groupBy(expenses, func(expense model.Expense) string {
		return expense.Date.Format(monthKeyLayout)
	})
}

func GroupByCategory(expenses []model.Expense) map[string][]model.Expense {
	return groupBy(expenses, func(expense model.Expense) string {
		return expense.Category
	})
}

// SortedKeys returns the group keys in ascending order.
func SortedKeys(groups map[string][]model.Expense) []string {
	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func groupBy(expenses []model.Expense, key func(model.Expense) string) map[string][]model.Expense {
	groups := make(map[string][]model.Expense)
	for _, expense := range expenses {
		k := key(expense)
		groups[k] = append(groups[k], expense)
	}
	return groups
}
