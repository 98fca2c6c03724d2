package domain

import (
	"context"
	"database/sql"
	"strings"
	"time"

	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
	"github.com/shopspring/decimal"
)

// SystemAccountName is the fixed display name of the hidden per-user account
// that models money entering or leaving the tracked system.
const SystemAccountName = "External (System)"

const maxAccountNameLength = 100

type Account struct {
	ID        int64           `json:"id"`
	UserID    string          `json:"user_id"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	IsSystem  bool            `json:"is_system"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (a *Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return financeErrors.NewValidationError("Account name must not be empty")
	}
	if len(a.Name) > maxAccountNameLength {
		return financeErrors.NewValidationError("Account name must be at most 100 characters")
	}
	return nil
}

// BalanceDrift reports an account whose cached balance no longer matches the
// sum of its persisted ledger entries.
type BalanceDrift struct {
	AccountID int64
	UserID    string
	Name      string
	Balance   decimal.Decimal
	EntrySum  decimal.Decimal
}

type AccountRepository interface {
	Save(ctx context.Context, account *Account) error
	FindByID(ctx context.Context, accountID int64, userID string) (*Account, error)
	FindByUser(ctx context.Context, userID string) ([]Account, error)
	FindSystemAccount(ctx context.Context, userID string) (*Account, error)
	Update(ctx context.Context, account *Account) error
	Delete(ctx context.Context, accountID int64, userID string) error

	// AdjustBalance applies a signed delta to one account inside the caller's
	// transaction. Balances are never overwritten, only adjusted.
	AdjustBalance(ctx context.Context, tx *sql.Tx, accountID int64, delta decimal.Decimal) error

	// LockAccounts acquires exclusive row locks on the distinct account ids in
	// ascending id order and returns the locked rows. The locks are held until
	// the enclosing transaction ends.
	LockAccounts(ctx context.Context, tx *sql.Tx, accountIDs ...int64) ([]Account, error)

	FindBalanceDrift(ctx context.Context) ([]BalanceDrift, error)
}
