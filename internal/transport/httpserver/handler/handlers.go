package handler

import (
	authhandler "expense-tracker-go/internal/transport/httpserver/handler/auth"
	commonhandler "expense-tracker-go/internal/transport/httpserver/handler/common"
	expenseshandler "expense-tracker-go/internal/transport/httpserver/handler/expenses"
)

type Handlers struct {
	Common   *commonhandler.Handlers
	Auth     *authhandler.Handlers
	Expenses *expenseshandler.Handlers
}

func New(common *commonhandler.Handlers, auth *authhandler.Handlers, expenses *expenseshandler.Handlers) *Handlers {
	return &Handlers{
		Common:   common,
		Auth:     auth,
		Expenses: expenses,
	}
}
