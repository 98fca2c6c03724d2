package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ReportFilter narrows report queries by owner, inclusive date bounds and an
// optional account. A zero AccountID means all accounts.
type ReportFilter struct {
	UserID    string
	Start     *time.Time
	End       *time.Time
	AccountID int64
}

type CategoryTotal struct {
	CategoryID int64           `json:"category_id"`
	Category   string          `json:"category"`
	Total      decimal.Decimal `json:"total"`
}

type MonthBucket struct {
	Month string
	Total decimal.Decimal
}

type MonthAccountBucket struct {
	Month     string
	AccountID int64
	Account   string
	Total     decimal.Decimal
}

type MonthCategoryBucket struct {
	Month      string
	CategoryID int64
	Category   string
	Total      decimal.Decimal
}

type MonthAccountCategoryBucket struct {
	Month      string
	AccountID  int64
	Account    string
	CategoryID int64
	Category   string
	Total      decimal.Decimal
}

type AccountBalance struct {
	AccountID int64           `json:"account_id"`
	Account   string          `json:"account"`
	Balance   decimal.Decimal `json:"balance"`
}

// TransferFilter is the report filter for transfer totals, where either side
// of the transfer may be constrained separately.
type TransferFilter struct {
	UserID        string
	Start         *time.Time
	End           *time.Time
	FromAccountID int64
	ToAccountID   int64
}

// ReportingRepository reads committed ledger data only. "Transfers in" are
// transfers whose from-account is the user's hidden system account; they count
// as income in cashflow aggregation.
type ReportingRepository interface {
	ExpenseTotalsByCategory(ctx context.Context, filter ReportFilter) ([]CategoryTotal, error)
	MonthlyExpenses(ctx context.Context, filter ReportFilter) ([]MonthBucket, error)
	MonthlyIncomes(ctx context.Context, filter ReportFilter) ([]MonthBucket, error)
	MonthlyTransfersIn(ctx context.Context, filter ReportFilter) ([]MonthBucket, error)
	MonthlyExpensesByAccount(ctx context.Context, filter ReportFilter) ([]MonthAccountBucket, error)
	MonthlyIncomesByAccount(ctx context.Context, filter ReportFilter) ([]MonthAccountBucket, error)
	MonthlyTransfersInByAccount(ctx context.Context, filter ReportFilter) ([]MonthAccountBucket, error)
	MonthlyExpensesByCategory(ctx context.Context, filter ReportFilter) ([]MonthCategoryBucket, error)
	MonthlyExpensesByAccountCategory(ctx context.Context, filter ReportFilter) ([]MonthAccountCategoryBucket, error)
	ExpenseTotal(ctx context.Context, filter ReportFilter) (decimal.Decimal, error)
	IncomeTotal(ctx context.Context, filter ReportFilter) (decimal.Decimal, error)
	TransferInTotal(ctx context.Context, filter ReportFilter) (decimal.Decimal, error)
	TransferTotal(ctx context.Context, filter TransferFilter) (decimal.Decimal, error)
	AccountBalances(ctx context.Context, userID string) ([]AccountBalance, error)
}
