package expenses

import (
	"time"

	"expense-tracker-go/internal/model"
)

type Expense struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	UserID      string    `gorm:"type:uuid;index;not null"`
	Amount      float64   `gorm:"type:numeric(12,2);not null"`
	Category    string    `gorm:"not null"`
	Description string    `gorm:"type:text;not null;default:''"`
	Date        time.Time `gorm:"type:timestamptz;not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

// ToModel converts the row into the wire record; server rows are always synced.
func (e Expense) ToModel() model.Expense {
	return model.Expense{
		ID:          e.ID,
		Amount:      e.Amount,
		Category:    e.Category,
		Description: e.Description,
		Date:        e.Date,
		IsSynced:    true,
		UserID:      e.UserID,
	}
}

type ListFilter struct {
	From     *time.Time
	To       *time.Time
	Category string
}

type CreateExpenseInput struct {
	UserID      string
	Amount      float64
	Category    string
	Description string
	Date        time.Time
}

// UpdateExpenseInput carries a partial update; nil fields keep their value.
type UpdateExpenseInput struct {
	ID          string
	UserID      string
	Amount      *float64
	Category    *string
	Description *string
	Date        *time.Time
}
