package domain

import (
	"context"
	"database/sql"
	"time"

	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
	"github.com/shopspring/decimal"
)

type Transfer struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	FromAccountID int64           `json:"from_account"`
	ToAccountID   int64           `json:"to_account"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (t *Transfer) Validate() error {
	if err := validateAmount(t.Amount); err != nil {
		return err
	}
	if t.FromAccountID <= 0 || t.ToAccountID <= 0 {
		return financeErrors.NewValidationError("Both accounts are required")
	}
	if t.FromAccountID == t.ToAccountID {
		return financeErrors.NewValidationError("Cannot transfer to the same account")
	}
	if len(t.Description) > maxDescriptionLength {
		return financeErrors.NewValidationError("Description must be at most 255 characters")
	}
	return nil
}

type TransferRepository interface {
	BeginTransaction(ctx context.Context) (*sql.Tx, error)
	SaveWithTransaction(ctx context.Context, tx *sql.Tx, transfer *Transfer) error
	UpdateWithTransaction(ctx context.Context, tx *sql.Tx, transfer *Transfer) error
	DeleteWithTransaction(ctx context.Context, tx *sql.Tx, transferID, userID string) error
	FindByID(ctx context.Context, transferID, userID string) (*Transfer, error)
	FindByUser(ctx context.Context, userID string) ([]Transfer, error)
}
