package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
	"github.com/sebuszqo/ExpenseTracker/internal/finance/infrastructure"
)

func TestGetMonthlyCashflow_MergesSources(t *testing.T) {
	repo := &infrastructure.MockReportingRepository{
		Incomes: []domain.MonthBucket{
			{Month: "2025-01", Total: dec("100")},
		},
		TransfersIn: []domain.MonthBucket{
			{Month: "2025-01", Total: dec("50")},
		},
		Expenses: []domain.MonthBucket{
			{Month: "2025-01", Total: dec("30")},
			{Month: "2025-02", Total: dec("80")},
		},
	}
	service := NewReportingService(repo)

	months, err := service.GetMonthlyCashflow(context.Background(), domain.ReportFilter{UserID: "user-1"}, "")

	assert.NoError(t, err)
	assert.Len(t, months, 2)

	january := months[0]
	assert.Equal(t, "2025-01", january.Month)
	assert.True(t, january.Income.Equal(dec("150")), "transfers in count as income, got %s", january.Income)
	assert.True(t, january.Expense.Equal(dec("30")))
	assert.True(t, january.Net.Equal(dec("120")))

	february := months[1]
	assert.Equal(t, "2025-02", february.Month)
	assert.True(t, february.Income.IsZero())
	assert.True(t, february.Net.Equal(dec("-80")))
}

func TestGetMonthlyCashflow_InvalidBy(t *testing.T) {
	service := NewReportingService(&infrastructure.MockReportingRepository{})

	_, err := service.GetMonthlyCashflow(context.Background(), domain.ReportFilter{UserID: "user-1"}, "week")

	assert.True(t, financeErrors.IsValidationError(err))
}

func TestGetMonthlyCashflow_ByAccount(t *testing.T) {
	repo := &infrastructure.MockReportingRepository{
		Incomes: []domain.MonthBucket{{Month: "2025-03", Total: dec("900")}},
		IncomesByAccount: []domain.MonthAccountBucket{
			{Month: "2025-03", AccountID: 1, Account: "Checking", Total: dec("600")},
			{Month: "2025-03", AccountID: 2, Account: "Savings", Total: dec("300")},
		},
		ExpensesByAccount: []domain.MonthAccountBucket{
			{Month: "2025-03", AccountID: 1, Account: "Checking", Total: dec("200")},
		},
	}
	service := NewReportingService(repo)

	months, err := service.GetMonthlyCashflow(context.Background(), domain.ReportFilter{UserID: "user-1"}, CashflowByAccount)

	assert.NoError(t, err)
	assert.Len(t, months, 1)
	assert.Len(t, months[0].ByAccount, 2)

	checking := months[0].ByAccount[0]
	assert.Equal(t, "Checking", checking.Account)
	assert.True(t, checking.Net.Equal(dec("400")))

	savings := months[0].ByAccount[1]
	assert.Equal(t, "Savings", savings.Account)
	assert.True(t, savings.Net.Equal(dec("300")))
}

func TestGetSummary_Totals(t *testing.T) {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.January, 31, 23, 59, 59, 0, time.UTC)
	repo := &infrastructure.MockReportingRepository{
		IncomeSum:     dec("100"),
		TransferInSum: dec("40"),
		ExpenseSum:    dec("60"),
		Balances: []domain.AccountBalance{
			{AccountID: 1, Account: "Checking", Balance: dec("750")},
			{AccountID: 2, Account: "Savings", Balance: dec("250")},
		},
	}
	service := NewReportingService(repo)

	summary, err := service.GetSummary(context.Background(), domain.ReportFilter{
		UserID: "user-1", Start: &start, End: &end,
	})

	assert.NoError(t, err)
	assert.Equal(t, "2025-01-01", summary.Period.Start)
	assert.Equal(t, "2025-01-31", summary.Period.End)
	assert.Nil(t, summary.Period.Account)
	assert.True(t, summary.Totals.IncomeIncludingTransfers.Equal(dec("140")))
	assert.True(t, summary.Totals.Net.Equal(dec("80")))
	assert.True(t, summary.Balances.TotalBalance.Equal(dec("1000")))
	assert.Len(t, summary.Balances.ByAccount, 2)
}

func TestGetSummary_DefaultsToCurrentMonth(t *testing.T) {
	repo := &infrastructure.MockReportingRepository{}
	service := NewReportingService(repo)

	summary, err := service.GetSummary(context.Background(), domain.ReportFilter{UserID: "user-1"})

	assert.NoError(t, err)
	now := time.Now().UTC()
	expectedStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, expectedStart.Format("2006-01-02"), summary.Period.Start)
	assert.NotNil(t, repo.LastFilter.Start)
	assert.NotNil(t, repo.LastFilter.End)
	assert.NotNil(t, summary.Balances.ByAccount)
}

func TestGetExpenseTotalsByCategory_NeverNil(t *testing.T) {
	service := NewReportingService(&infrastructure.MockReportingRepository{})

	totals, err := service.GetExpenseTotalsByCategory(context.Background(), domain.ReportFilter{UserID: "user-1"})

	assert.NoError(t, err)
	assert.NotNil(t, totals)
	assert.Empty(t, totals)
}
