package expenses

import "context"

type Repository interface {
	ListExpenses(ctx context.Context, userID string, filter ListFilter) ([]Expense, error)
	GetExpenseByID(ctx context.Context, userID, expenseID string) (*Expense, error)
	CreateExpense(ctx context.Context, expense *Expense) error
	UpdateExpense(ctx context.Context, expense *Expense) error
	DeleteExpense(ctx context.Context, userID, expenseID string) (bool, error)
}
