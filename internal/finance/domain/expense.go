package domain

import (
	"context"
	"database/sql"
	"time"

	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
	"github.com/shopspring/decimal"
)

const maxDescriptionLength = 255

type Expense struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	AccountID   int64           `json:"account"`
	CategoryID  int64           `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (e *Expense) Validate() error {
	if err := validateAmount(e.Amount); err != nil {
		return err
	}
	if e.AccountID <= 0 {
		return financeErrors.NewValidationError("Account is required")
	}
	if e.CategoryID <= 0 {
		return financeErrors.NewValidationError("Category is required")
	}
	if len(e.Description) > maxDescriptionLength {
		return financeErrors.NewValidationError("Description must be at most 255 characters")
	}
	return nil
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return financeErrors.NewValidationError("Amount must be greater than zero")
	}
	if amount.Exponent() < -2 {
		return financeErrors.NewValidationError("Amount must have at most two decimal places")
	}
	return nil
}

type ExpenseRepository interface {
	BeginTransaction(ctx context.Context) (*sql.Tx, error)
	SaveWithTransaction(ctx context.Context, tx *sql.Tx, expense *Expense) error
	UpdateWithTransaction(ctx context.Context, tx *sql.Tx, expense *Expense) error
	DeleteWithTransaction(ctx context.Context, tx *sql.Tx, expenseID, userID string) error
	FindByID(ctx context.Context, expenseID, userID string) (*Expense, error)
	FindByUser(ctx context.Context, userID string) ([]Expense, error)
}
