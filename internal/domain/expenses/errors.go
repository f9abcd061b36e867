package expenses

import "errors"

var (
	ErrExpenseNotFound = errors.New("expense not found")
	ErrUserRequired    = errors.New("user id is required")
)
