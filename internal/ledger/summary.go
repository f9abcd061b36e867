package ledger

import (
	"time"

	"expense-tracker-go/internal/model"
	"github.com/shopspring/decimal"
)

type Summary struct {
	TotalAmount       float64            `json:"totalAmount"`
	CategoryBreakdown map[string]float64 `json:"categoryBreakdown"`
	TimeFrame         TimeFrame          `json:"timeFrame"`
}

// Summarize totals the expenses falling into tf's bucket relative to now.
func Summarize(expenses []model.Expense, tf TimeFrame, now time.Time) Summary {
	bucket := expenses
	if tf != TimeFrameAll {
		bucket = ExpensesInDateRange(expenses, PeriodRange(tf, now))
	}
	return Totals(bucket, tf)
}

// Totals sums an already bucketed collection. Each amount is counted in
// whole cents, so the breakdown adds up exactly to the total.
func Totals(expenses []model.Expense, tf TimeFrame) Summary {
	total := decimal.Zero
	byCategory := make(map[string]decimal.Decimal)
	for _, expense := range expenses {
		amount := cents(expense.Amount)
		total = total.Add(amount)
		byCategory[expense.Category] = byCategory[expense.Category].Add(amount)
	}

	breakdown := make(map[string]float64, len(byCategory))
	for category, amount := range byCategory {
		breakdown[category] = amount.InexactFloat64()
	}

	return Summary{
		TotalAmount:       total.InexactFloat64(),
		CategoryBreakdown: breakdown,
		TimeFrame:         tf,
	}
}

// MonthlyTotals returns the per-month sums for the given calendar year.
func MonthlyTotals(expenses []model.Expense, year int) [12]float64 {
	var months [12]decimal.Decimal
	for _, expense := range expenses {
		if expense.Date.Year() != year {
			continue
		}
		idx := int(expense.Date.Month()) - 1
		months[idx] = months[idx].Add(cents(expense.Amount))
	}

	var totals [12]float64
	for i, amount := range months {
		totals[i] = amount.InexactFloat64()
	}
	return totals
}

func cents(amount float64) decimal.Decimal {
	return decimal.NewFromFloat(amount).Round(2)
}
