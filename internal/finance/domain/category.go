package domain

import (
	"context"
	"strings"
	"time"

	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
)

type Category struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return financeErrors.NewValidationError("Category name must not be empty")
	}
	if len(c.Name) > 100 {
		return financeErrors.NewValidationError("Category name must be at most 100 characters")
	}
	return nil
}

type CategoryRepository interface {
	Save(ctx context.Context, category *Category) error
	FindByID(ctx context.Context, categoryID int64, userID string) (*Category, error)
	FindByUser(ctx context.Context, userID string) ([]Category, error)
	Update(ctx context.Context, category *Category) error
	Delete(ctx context.Context, categoryID int64, userID string) error
	DoesUserCategoryExistByID(ctx context.Context, categoryID int64, userID string) (bool, error)
}
