// Package categories manages the user's expense categories on the device.
package categories

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"expense-tracker-go/internal/model"
	"expense-tracker-go/pkg/logger"
	"github.com/google/uuid"
)

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Icons lists the icon tags a category may use.
var Icons = []string{
	"utensils", "car", "home", "tv", "shopping-bag", "heart", "zap", "more-horizontal", "tag",
}

const DefaultIcon = "tag"

var defaults = []model.Category{
	{ID: "1", Name: "Food", Color: "#F97316", Icon: "utensils"},
	{ID: "2", Name: "Transportation", Color: "#3B82F6", Icon: "car"},
	{ID: "3", Name: "Housing", Color: "#10B981", Icon: "home"},
	{ID: "4", Name: "Entertainment", Color: "#8B5CF6", Icon: "tv"},
	{ID: "5", Name: "Shopping", Color: "#EC4899", Icon: "shopping-bag"},
	{ID: "6", Name: "Health", Color: "#06B6D4", Icon: "heart"},
	{ID: "7", Name: "Utilities", Color: "#EAB308", Icon: "zap"},
	{ID: "8", Name: "Other", Color: "#6B7280", Icon: "more-horizontal"},
}

// Defaults returns the first-run category set.
func Defaults() []model.Category {
	return append([]model.Category(nil), defaults...)
}

type Store interface {
	Categories(ctx context.Context) ([]model.Category, bool, error)
	SaveCategories(ctx context.Context, categories []model.Category) error
}

type Service struct {
	store Store
	log   logger.Logger
	newID func() string
}

func NewService(store Store, log logger.Logger) *Service {
	return &Service{store: store, log: log, newID: uuid.NewString}
}

// List returns the stored categories, seeding the defaults on first run.
// Entries repeating an earlier id or name are dropped.
func (s *Service) List(ctx context.Context) ([]model.Category, error) {
	stored, found, err := s.store.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}

	if !found {
		seeded := Defaults()
		if err := s.store.SaveCategories(ctx, seeded); err != nil {
			return nil, fmt.Errorf("seed categories: %w", err)
		}
		s.log.Info("categories.list: default categories seeded", "count", len(seeded))
		return seeded, nil
	}

	unique := dedupe(stored)
	if dropped := len(stored) - len(unique); dropped > 0 {
		s.log.Warn("categories.list: duplicate categories ignored", "dropped", dropped)
	}
	return unique, nil
}

// Add creates a category. Names are unique regardless of case; an empty icon
// falls back to DefaultIcon.
func (s *Service) Add(ctx context.Context, name, color, icon string) (model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Category{}, ErrNameRequired
	}
	if !colorPattern.MatchString(color) {
		return model.Category{}, ErrInvalidColor
	}
	if icon == "" {
		icon = DefaultIcon
	}
	if !validIcon(icon) {
		return model.Category{}, ErrInvalidIcon
	}

	current, err := s.List(ctx)
	if err != nil {
		return model.Category{}, err
	}
	for _, existing := range current {
		if strings.EqualFold(existing.Name, name) {
			return model.Category{}, ErrDuplicateName
		}
	}

	category := model.Category{ID: s.newID(), Name: name, Color: strings.ToUpper(color), Icon: icon}
	if err := s.store.SaveCategories(ctx, append(current, category)); err != nil {
		return model.Category{}, fmt.Errorf("save categories: %w", err)
	}

	s.log.Info("categories.add: category created", "category_id", category.ID, "name", category.Name)
	return category, nil
}

// Names returns the category names in display order.
func Names(categories []model.Category) []string {
	names := make([]string, 0, len(categories))
	for _, category := range categories {
		names = append(names, category.Name)
	}
	return names
}

func validIcon(icon string) bool {
	for _, allowed := range Icons {
		if icon == allowed {
			return true
		}
	}
	return false
}

func dedupe(categories []model.Category) []model.Category {
	out := make([]model.Category, 0, len(categories))
	ids := make(map[string]struct{}, len(categories))
	names := make(map[string]struct{}, len(categories))
	for _, category := range categories {
		key := strings.ToLower(strings.TrimSpace(category.Name))
		if _, ok := ids[category.ID]; ok {
			continue
		}
		if _, ok := names[key]; ok {
			continue
		}
		ids[category.ID] = struct{}{}
		names[key] = struct{}{}
		out = append(out, category)
	}
	return out
}
