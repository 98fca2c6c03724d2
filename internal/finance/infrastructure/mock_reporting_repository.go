package infrastructure

import (
	"context"

	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
	"github.com/shopspring/decimal"
)

// MockReportingRepository returns canned report rows.
type MockReportingRepository struct {
	CategoryTotals            []domain.CategoryTotal
	Expenses                  []domain.MonthBucket
	Incomes                   []domain.MonthBucket
	TransfersIn               []domain.MonthBucket
	ExpensesByAccount         []domain.MonthAccountBucket
	IncomesByAccount          []domain.MonthAccountBucket
	TransfersInByAccount      []domain.MonthAccountBucket
	ExpensesByCategory        []domain.MonthCategoryBucket
	ExpensesByAccountCategory []domain.MonthAccountCategoryBucket
	ExpenseSum                decimal.Decimal
	IncomeSum                 decimal.Decimal
	TransferInSum             decimal.Decimal
	TransferSum               decimal.Decimal
	Balances                  []domain.AccountBalance

	LastFilter         domain.ReportFilter
	LastTransferFilter domain.TransferFilter
}

func (m *MockReportingRepository) ExpenseTotalsByCategory(ctx context.Context, filter domain.ReportFilter) ([]domain.CategoryTotal, error) {
	m.LastFilter = filter
	return m.CategoryTotals, nil
}

func (m *MockReportingRepository) MonthlyExpenses(ctx context.Context, filter domain.ReportFilter) ([]domain.MonthBucket, error) {
	m.LastFilter = filter
	return m.Expenses, nil
}

func (m *MockReportingRepository) MonthlyIncomes(ctx context.Context, filter domain.ReportFilter) ([]domain.MonthBucket, error) {
	return m.Incomes, nil
}

func (m *MockReportingRepository) MonthlyTransfersIn(ctx context.Context, filter domain.ReportFilter) ([]domain.MonthBucket, error) {
	return m.TransfersIn, nil
}

func (m *MockReportingRepository) MonthlyExpensesByAccount(ctx context.Context, filter domain.ReportFilter) ([]domain.MonthAccountBucket, error) {
	return m.ExpensesByAccount, nil
}

func (m *MockReportingRepository) MonthlyIncomesByAccount(ctx context.Context, filter domain.ReportFilter) ([]domain.MonthAccountBucket, error) {
	return m.IncomesByAccount, nil
}

func (m *MockReportingRepository) MonthlyTransfersInByAccount(ctx context.Context, filter domain.ReportFilter) ([]domain.MonthAccountBucket, error) {
	return m.TransfersInByAccount, nil
}

func (m *MockReportingRepository) MonthlyExpensesByCategory(ctx context.Context, filter domain.ReportFilter) ([]domain.MonthCategoryBucket, error) {
	return m.ExpensesByCategory, nil
}

func (m *MockReportingRepository) MonthlyExpensesByAccountCategory(ctx context.Context, filter domain.ReportFilter) ([]domain.MonthAccountCategoryBucket, error) {
	return m.ExpensesByAccountCategory, nil
}

func (m *MockReportingRepository) ExpenseTotal(ctx context.Context, filter domain.ReportFilter) (decimal.Decimal, error) {
	m.LastFilter = filter
	return m.ExpenseSum, nil
}

func (m *MockReportingRepository) IncomeTotal(ctx context.Context, filter domain.ReportFilter) (decimal.Decimal, error) {
	m.LastFilter = filter
	return m.IncomeSum, nil
}

func (m *MockReportingRepository) TransferInTotal(ctx context.Context, filter domain.ReportFilter) (decimal.Decimal, error) {
	return m.TransferInSum, nil
}

func (m *MockReportingRepository) TransferTotal(ctx context.Context, filter domain.TransferFilter) (decimal.Decimal, error) {
	m.LastTransferFilter = filter
	return m.TransferSum, nil
}

func (m *MockReportingRepository) AccountBalances(ctx context.Context, userID string) ([]domain.AccountBalance, error) {
	return m.Balances, nil
}
