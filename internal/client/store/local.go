package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"expense-tracker-go/internal/model"
)

const (
	KeyExpenses   = "expenses"
	KeyCategories = "categories"
	KeyUser       = "user"
	KeyToken      = "token"
)

// Local maps the client's collections onto fixed keys of a KV store.
type Local struct {
	kv KV
}

func NewLocal(kv KV) *Local {
	return &Local{kv: kv}
}

// Expenses returns the persisted collection, empty when nothing was saved yet.
func (l *Local) Expenses(ctx context.Context) ([]model.Expense, error) {
	var expenses []model.Expense
	found, err := l.getJSON(ctx, KeyExpenses, &expenses)
	if err != nil {
		return nil, err
	}
	if !found || expenses == nil {
		return []model.Expense{}, nil
	}
	return expenses, nil
}

func (l *Local) SaveExpenses(ctx context.Context, expenses []model.Expense) error {
	if expenses == nil {
		expenses = []model.Expense{}
	}
	return l.setJSON(ctx, KeyExpenses, expenses)
}

// Categories returns the persisted categories; found is false on first run.
func (l *Local) Categories(ctx context.Context) ([]model.Category, bool, error) {
	var categories []model.Category
	found, err := l.getJSON(ctx, KeyCategories, &categories)
	if err != nil {
		return nil, false, err
	}
	return categories, found, nil
}

func (l *Local) SaveCategories(ctx context.Context, categories []model.Category) error {
	if categories == nil {
		categories = []model.Category{}
	}
	return l.setJSON(ctx, KeyCategories, categories)
}

// ReplaceAll overwrites both collections, as a restore does.
func (l *Local) ReplaceAll(ctx context.Context, expenses []model.Expense, categories []model.Category) error {
	if err := l.SaveExpenses(ctx, expenses); err != nil {
		return err
	}
	return l.SaveCategories(ctx, categories)
}

// Session returns the stored session or nil when logged out.
func (l *Local) Session(ctx context.Context) (*model.AuthSession, error) {
	token, err := l.kv.Get(ctx, KeyToken)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var user model.User
	found, err := l.getJSON(ctx, KeyUser, &user)
	if err != nil {
		return nil, err
	}
	if !found || len(token) == 0 {
		return nil, nil
	}

	return &model.AuthSession{User: user, Token: string(token)}, nil
}

func (l *Local) SaveSession(ctx context.Context, session model.AuthSession) error {
	if err := l.setJSON(ctx, KeyUser, session.User); err != nil {
		return err
	}
	return l.kv.Set(ctx, KeyToken, []byte(session.Token))
}

func (l *Local) ClearSession(ctx context.Context) error {
	if err := l.kv.Remove(ctx, KeyToken); err != nil {
		return err
	}
	return l.kv.Remove(ctx, KeyUser)
}

func (l *Local) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := l.kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (l *Local) setJSON(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return l.kv.Set(ctx, key, raw)
}
