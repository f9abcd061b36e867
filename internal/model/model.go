// Package model holds the records shared by the client packages, the
// Filter/Summary engine and the wire format of the REST API.
package model

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// LocalIDPrefix marks identifiers generated on the device before the server
// has confirmed the record.
const LocalIDPrefix = "local-"

// Amounts are stored as numeric(12,2) on the server.
const (
	MinAmount = 0.01
	MaxAmount = 9999999999.99
)

type Expense struct {
	ID          string    `json:"id"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	IsSynced    bool      `json:"isSynced"`
	UserID      string    `json:"userId,omitempty"`
}

// IsLocal reports whether the expense still carries a device-generated id.
func (e Expense) IsLocal() bool {
	return strings.HasPrefix(e.ID, LocalIDPrefix)
}

type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type AuthSession struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// ExpenseInput is the user-supplied part of a new expense.
type ExpenseInput struct {
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
}

var (
	ErrInvalidAmount    = errors.New("amount must be between 0.01 and 9999999999.99")
	ErrCategoryRequired = errors.New("category is required")
	ErrDateRequired     = errors.New("date is required")
)

// RoundAmount rounds to whole cents, half away from zero.
func RoundAmount(amount float64) float64 {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return amount
	}
	return decimal.NewFromFloat(amount).Round(2).InexactFloat64()
}

// Normalize returns the input with the amount rounded to cents, the value
// the server will store.
func (in ExpenseInput) Normalize() ExpenseInput {
	in.Amount = RoundAmount(in.Amount)
	return in
}

// Validate applies the rules shared by the client and the server. The
// amount is checked after rounding to cents.
func (in ExpenseInput) Validate() error {
	amount := RoundAmount(in.Amount)
	if math.IsNaN(amount) || amount < MinAmount || amount > MaxAmount {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(in.Category) == "" {
		return ErrCategoryRequired
	}
	if in.Date.IsZero() {
		return ErrDateRequired
	}
	return nil
}

// CloneExpenses returns a copy that does not share the backing array.
func CloneExpenses(items []Expense) []Expense {
	if items == nil {
		return nil
	}
	out := make([]Expense, len(items))
	copy(out, items)
	return out
}
