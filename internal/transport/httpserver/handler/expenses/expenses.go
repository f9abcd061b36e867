package expenses

import (
	"errors"
	"net/http"
	"strings"

	expensesdomain "expense-tracker-go/internal/domain/expenses"
	"expense-tracker-go/internal/ledger"
	"expense-tracker-go/internal/model"
	"expense-tracker-go/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
)

type createExpenseRequest struct {
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
}

type updateExpenseRequest struct {
	Amount      *float64 `json:"amount"`
	Category    *string  `json:"category"`
	Description *string  `json:"description"`
	Date        *string  `json:"date"`
}

type deleteExpenseResponse struct {
	Message string `json:"message"`
}

func (h *Handlers) ListExpenses(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "expenses.list", expensesdomain.ListFilter{})
}

func (h *Handlers) ListExpensesInRange(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	start, err := parseTime(query.Get("startDate"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid startDate")
		return
	}
	end, err := parseRangeEnd(query.Get("endDate"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid endDate")
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "invalid_request", "endDate is before startDate")
		return
	}

	h.list(w, r, "expenses.range", expensesdomain.ListFilter{From: &start, To: &end})
}

func (h *Handlers) ListExpensesByCategory(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(chi.URLParam(r, "category"))
	if category == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "category is required")
		return
	}

	h.list(w, r, "expenses.by_category", expensesdomain.ListFilter{Category: category})
}

func (h *Handlers) list(w http.ResponseWriter, r *http.Request, op string, filter expensesdomain.ListFilter) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	items, err := h.Expenses.ListExpenses(r.Context(), userID, filter)
	if err != nil {
		h.log.InternalError(op+": list expenses failed", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toExpenseResponses(items))
}

func (h *Handlers) Summary(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	tf, err := ledger.ParseTimeFrame(r.URL.Query().Get("timeFrame"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "timeFrame must be one of day, week, month, year, all")
		return
	}

	summary, err := h.Expenses.Summary(r.Context(), userID, tf)
	if err != nil {
		h.log.InternalError("expenses.summary: summary failed", err, "user_id", userID, "time_frame", tf)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func (h *Handlers) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	date, err := parseTime(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid date")
		return
	}

	created, err := h.Expenses.CreateExpense(r.Context(), expensesdomain.CreateExpenseInput{
		UserID:      userID,
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Date:        date,
	})
	if err != nil {
		if writeValidationError(w, err) {
			return
		}
		h.log.InternalError("expenses.create: create expense failed", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, created.ToModel())
}

func (h *Handlers) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req updateExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	expenseID := strings.TrimSpace(chi.URLParam(r, "id"))
	if expenseID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "id is required")
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	input := expensesdomain.UpdateExpenseInput{
		ID:          expenseID,
		UserID:      userID,
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
	}
	if req.Date != nil {
		date, err := parseTime(*req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid date")
			return
		}
		input.Date = &date
	}

	updated, err := h.Expenses.UpdateExpense(r.Context(), input)
	if err != nil {
		if errors.Is(err, expensesdomain.ErrExpenseNotFound) {
			h.log.BusinessError("expenses.update: expense not found", err, "user_id", userID, "expense_id", expenseID)
			writeError(w, http.StatusNotFound, "expense_not_found", "expense not found")
			return
		}
		if writeValidationError(w, err) {
			return
		}
		h.log.InternalError("expenses.update: update expense failed", err, "user_id", userID, "expense_id", expenseID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, updated.ToModel())
}

func (h *Handlers) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	expenseID := strings.TrimSpace(chi.URLParam(r, "id"))
	if expenseID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "id is required")
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	if err := h.Expenses.DeleteExpense(r.Context(), userID, expenseID); err != nil {
		if errors.Is(err, expensesdomain.ErrExpenseNotFound) {
			h.log.BusinessError("expenses.delete: expense not found", err, "user_id", userID, "expense_id", expenseID)
			writeError(w, http.StatusNotFound, "expense_not_found", "expense not found")
			return
		}
		h.log.InternalError("expenses.delete: delete expense failed", err, "user_id", userID, "expense_id", expenseID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, deleteExpenseResponse{Message: "Expense deleted"})
}

func writeValidationError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, model.ErrInvalidAmount),
		errors.Is(err, model.ErrCategoryRequired),
		errors.Is(err, model.ErrDateRequired):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return true
	}
	return false
}

func toExpenseResponses(items []expensesdomain.Expense) []model.Expense {
	response := make([]model.Expense, 0, len(items))
	for _, item := range items {
		response = append(response, item.ToModel())
	}
	return response
}
