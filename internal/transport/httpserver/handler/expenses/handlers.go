package expenses

import (
	expensesdomain "expense-tracker-go/internal/domain/expenses"
	"expense-tracker-go/pkg/logger"
)

type Handlers struct {
	Expenses *expensesdomain.Service
	log      logger.Logger
}

func New(expenses *expensesdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Expenses: expenses,
		log:      log,
	}
}
