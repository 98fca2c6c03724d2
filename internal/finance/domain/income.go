package domain

import (
	"context"
	"database/sql"
	"time"

	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
	"github.com/shopspring/decimal"
)

type Income struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	AccountID   int64           `json:"account"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (i *Income) Validate() error {
	if err := validateAmount(i.Amount); err != nil {
		return err
	}
	if i.AccountID <= 0 {
		return financeErrors.NewValidationError("Account is required")
	}
	if len(i.Description) > maxDescriptionLength {
		return financeErrors.NewValidationError("Description must be at most 255 characters")
	}
	return nil
}

type IncomeRepository interface {
	BeginTransaction(ctx context.Context) (*sql.Tx, error)
	SaveWithTransaction(ctx context.Context, tx *sql.Tx, income *Income) error
	UpdateWithTransaction(ctx context.Context, tx *sql.Tx, income *Income) error
	DeleteWithTransaction(ctx context.Context, tx *sql.Tx, incomeID, userID string) error
	FindByID(ctx context.Context, incomeID, userID string) (*Income, error)
	FindByUser(ctx context.Context, userID string) ([]Income, error)
}
