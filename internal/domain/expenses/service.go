package expenses

import (
	"context"
	"strings"
	"time"

	"expense-tracker-go/internal/ledger"
	"expense-tracker-go/internal/model"
	"github.com/google/uuid"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// ListExpenses returns the user's expenses ordered by date, newest first.
func (s *Service) ListExpenses(ctx context.Context, userID string, filter ListFilter) ([]Expense, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	filter.Category = strings.TrimSpace(filter.Category)
	items, err := s.repo.ListExpenses(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		return []Expense{}, nil
	}
	return items, nil
}

func (s *Service) CreateExpense(ctx context.Context, input CreateExpenseInput) (*Expense, error) {
	if input.UserID == "" {
		return nil, ErrUserRequired
	}

	in := model.ExpenseInput{
		Amount:      input.Amount,
		Category:    strings.TrimSpace(input.Category),
		Description: strings.TrimSpace(input.Description),
		Date:        input.Date,
	}.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	expense := Expense{
		ID:          uuid.NewString(),
		UserID:      input.UserID,
		Amount:      in.Amount,
		Category:    in.Category,
		Description: in.Description,
		Date:        in.Date.UTC(),
	}

	if err := s.repo.CreateExpense(ctx, &expense); err != nil {
		return nil, err
	}
	return &expense, nil
}

func (s *Service) UpdateExpense(ctx context.Context, input UpdateExpenseInput) (*Expense, error) {
	if !validID(input.ID) {
		return nil, ErrExpenseNotFound
	}
	expense, err := s.repo.GetExpenseByID(ctx, input.UserID, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Amount != nil {
		expense.Amount = *input.Amount
	}
	if input.Category != nil {
		expense.Category = strings.TrimSpace(*input.Category)
	}
	if input.Description != nil {
		expense.Description = strings.TrimSpace(*input.Description)
	}
	if input.Date != nil {
		expense.Date = input.Date.UTC()
	}

	merged := model.ExpenseInput{
		Amount:      expense.Amount,
		Category:    expense.Category,
		Description: expense.Description,
		Date:        expense.Date,
	}.Normalize()
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	expense.Amount = merged.Amount

	expense.UpdatedAt = s.now().UTC()
	if err := s.repo.UpdateExpense(ctx, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

func (s *Service) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	if !validID(expenseID) {
		return ErrExpenseNotFound
	}
	deleted, err := s.repo.DeleteExpense(ctx, userID, expenseID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrExpenseNotFound
	}
	return nil
}

// Summary totals the user's expenses inside the period the time frame
// resolves to at the current instant.
func (s *Service) Summary(ctx context.Context, userID string, tf ledger.TimeFrame) (ledger.Summary, error) {
	period := ledger.PeriodRange(tf, s.now())

	filter := ListFilter{}
	if !period.Start.IsZero() {
		start := period.Start
		filter.From = &start
	}
	if !period.End.IsZero() {
		end := period.End
		filter.To = &end
	}

	items, err := s.ListExpenses(ctx, userID, filter)
	if err != nil {
		return ledger.Summary{}, err
	}

	records := make([]model.Expense, 0, len(items))
	for _, item := range items {
		records = append(records, item.ToModel())
	}
	return ledger.Totals(records, tf), nil
}

// validID reports whether id can name a stored expense. Ids are UUIDs, so
// anything else cannot exist and must not reach the uuid column.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
