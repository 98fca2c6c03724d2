package application

import (
	"context"
	"sort"
	"time"

	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
	"github.com/shopspring/decimal"
)

const (
	CashflowByAccount         = "account"
	CashflowByCategory        = "category"
	CashflowByAccountCategory = "account_category"
)

type MonthlyCashflow struct {
	Month      string                 `json:"month"`
	Income     decimal.Decimal        `json:"income"`
	Expense    decimal.Decimal        `json:"expense"`
	Net        decimal.Decimal        `json:"net"`
	ByAccount  []AccountCashflow      `json:"by_account,omitempty"`
	ByCategory []domain.CategoryTotal `json:"by_category,omitempty"`
}

type AccountCashflow struct {
	AccountID  int64                  `json:"account_id"`
	Account    string                 `json:"account"`
	Income     decimal.Decimal        `json:"income"`
	Expense    decimal.Decimal        `json:"expense"`
	Net        decimal.Decimal        `json:"net"`
	ByCategory []domain.CategoryTotal `json:"by_category,omitempty"`
}

type SummaryPeriod struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	Account *int64 `json:"account"`
}

type SummaryTotals struct {
	Income                   decimal.Decimal `json:"income"`
	TransfersIn              decimal.Decimal `json:"transfers_in"`
	IncomeIncludingTransfers decimal.Decimal `json:"income_including_transfers"`
	Expense                  decimal.Decimal `json:"expense"`
	Net                      decimal.Decimal `json:"net"`
}

type SummaryBalances struct {
	TotalBalance decimal.Decimal         `json:"total_balance"`
	ByAccount    []domain.AccountBalance `json:"by_account"`
}

type SummaryReport struct {
	Period   SummaryPeriod   `json:"period"`
	Totals   SummaryTotals   `json:"totals"`
	Balances SummaryBalances `json:"balances"`
}

// ReportingService reads committed ledger data only; it never mutates state.
type ReportingService struct {
	repo domain.ReportingRepository
}

func NewReportingService(repo domain.ReportingRepository) *ReportingService {
	return &ReportingService{repo: repo}
}

func (s *ReportingService) GetExpenseTotalsByCategory(ctx context.Context, filter domain.ReportFilter) ([]domain.CategoryTotal, error) {
	totals, err := s.repo.ExpenseTotalsByCategory(ctx, filter)
	if err != nil {
		return nil, err
	}
	if totals == nil {
		return []domain.CategoryTotal{}, nil
	}
	return totals, nil
}

// GetMonthlyCashflow buckets the user's activity by calendar month. Income
// always includes transfers-in (money arriving from the system account); the
// "by" breakdowns add per-account and per-category views of the same months.
func (s *ReportingService) GetMonthlyCashflow(ctx context.Context, filter domain.ReportFilter, by string) ([]MonthlyCashflow, error) {
	switch by {
	case "", CashflowByAccount, CashflowByCategory, CashflowByAccountCategory:
	default:
		return nil, financeErrors.NewValidationError("Invalid by parameter, expected account, category or account_category")
	}

	expenses, err := s.repo.MonthlyExpenses(ctx, filter)
	if err != nil {
		return nil, err
	}
	incomes, err := s.repo.MonthlyIncomes(ctx, filter)
	if err != nil {
		return nil, err
	}
	transfersIn, err := s.repo.MonthlyTransfersIn(ctx, filter)
	if err != nil {
		return nil, err
	}

	months := make(map[string]*MonthlyCashflow)
	ensureMonth := func(month string) *MonthlyCashflow {
		if m, ok := months[month]; ok {
			return m
		}
		m := &MonthlyCashflow{
			Month:   month,
			Income:  decimal.Zero,
			Expense: decimal.Zero,
			Net:     decimal.Zero,
		}
		months[month] = m
		return m
	}

	for _, bucket := range incomes {
		m := ensureMonth(bucket.Month)
		m.Income = m.Income.Add(bucket.Total)
	}
	for _, bucket := range transfersIn {
		m := ensureMonth(bucket.Month)
		m.Income = m.Income.Add(bucket.Total)
	}
	for _, bucket := range expenses {
		m := ensureMonth(bucket.Month)
		m.Expense = m.Expense.Add(bucket.Total)
	}

	switch by {
	case CashflowByAccount:
		if err := s.attachAccountFlows(ctx, filter, months, ensureMonth, false); err != nil {
			return nil, err
		}
	case CashflowByCategory:
		buckets, err := s.repo.MonthlyExpensesByCategory(ctx, filter)
		if err != nil {
			return nil, err
		}
		for _, bucket := range buckets {
			m := ensureMonth(bucket.Month)
			m.ByCategory = append(m.ByCategory, domain.CategoryTotal{
				CategoryID: bucket.CategoryID,
				Category:   bucket.Category,
				Total:      bucket.Total,
			})
		}
	case CashflowByAccountCategory:
		if err := s.attachAccountFlows(ctx, filter, months, ensureMonth, true); err != nil {
			return nil, err
		}
	}

	result := make([]MonthlyCashflow, 0, len(months))
	for _, m := range months {
		m.Net = m.Income.Sub(m.Expense)
		result = append(result, *m)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Month < result[j].Month })
	return result, nil
}

func (s *ReportingService) attachAccountFlows(
	ctx context.Context,
	filter domain.ReportFilter,
	months map[string]*MonthlyCashflow,
	ensureMonth func(string) *MonthlyCashflow,
	withCategories bool,
) error {
	type accountKey struct {
		month     string
		accountID int64
	}
	flows := make(map[accountKey]*AccountCashflow)
	ensureFlow := func(month string, accountID int64, account string) *AccountCashflow {
		key := accountKey{month: month, accountID: accountID}
		if f, ok := flows[key]; ok {
			return f
		}
		f := &AccountCashflow{
			AccountID: accountID,
			Account:   account,
			Income:    decimal.Zero,
			Expense:   decimal.Zero,
		}
		flows[key] = f
		ensureMonth(month)
		return f
	}

	expenseBuckets, err := s.repo.MonthlyExpensesByAccount(ctx, filter)
	if err != nil {
		return err
	}
	for _, bucket := range expenseBuckets {
		f := ensureFlow(bucket.Month, bucket.AccountID, bucket.Account)
		f.Expense = f.Expense.Add(bucket.Total)
	}

	incomeBuckets, err := s.repo.MonthlyIncomesByAccount(ctx, filter)
	if err != nil {
		return err
	}
	for _, bucket := range incomeBuckets {
		f := ensureFlow(bucket.Month, bucket.AccountID, bucket.Account)
		f.Income = f.Income.Add(bucket.Total)
	}

	transferBuckets, err := s.repo.MonthlyTransfersInByAccount(ctx, filter)
	if err != nil {
		return err
	}
	for _, bucket := range transferBuckets {
		f := ensureFlow(bucket.Month, bucket.AccountID, bucket.Account)
		f.Income = f.Income.Add(bucket.Total)
	}

	if withCategories {
		categoryBuckets, err := s.repo.MonthlyExpensesByAccountCategory(ctx, filter)
		if err != nil {
			return err
		}
		for _, bucket := range categoryBuckets {
			f := ensureFlow(bucket.Month, bucket.AccountID, bucket.Account)
			f.ByCategory = append(f.ByCategory, domain.CategoryTotal{
				CategoryID: bucket.CategoryID,
				Category:   bucket.Category,
				Total:      bucket.Total,
			})
		}
	}

	for key, f := range flows {
		f.Net = f.Income.Sub(f.Expense)
		m := months[key.month]
		m.ByAccount = append(m.ByAccount, *f)
	}
	for _, m := range months {
		sort.Slice(m.ByAccount, func(i, j int) bool { return m.ByAccount[i].Account < m.ByAccount[j].Account })
	}
	return nil
}

func (s *ReportingService) GetIncomeTotal(ctx context.Context, filter domain.ReportFilter) (decimal.Decimal, error) {
	return s.repo.IncomeTotal(ctx, filter)
}

func (s *ReportingService) GetTransferTotal(ctx context.Context, filter domain.TransferFilter) (decimal.Decimal, error) {
	return s.repo.TransferTotal(ctx, filter)
}

// GetSummary reports totals and current balances for the filtered period,
// defaulting to the current calendar month when no dates are given.
func (s *ReportingService) GetSummary(ctx context.Context, filter domain.ReportFilter) (*SummaryReport, error) {
	if filter.Start == nil && filter.End == nil {
		now := time.Now().UTC()
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(now.Year(), now.Month()+1, 0, 23, 59, 59, 999999999, time.UTC)
		filter.Start = &start
		filter.End = &end
	}

	income, err := s.repo.IncomeTotal(ctx, filter)
	if err != nil {
		return nil, err
	}
	transfersIn, err := s.repo.TransferInTotal(ctx, filter)
	if err != nil {
		return nil, err
	}
	expense, err := s.repo.ExpenseTotal(ctx, filter)
	if err != nil {
		return nil, err
	}
	balances, err := s.repo.AccountBalances(ctx, filter.UserID)
	if err != nil {
		return nil, err
	}
	if balances == nil {
		balances = []domain.AccountBalance{}
	}

	total := decimal.Zero
	for _, balance := range balances {
		total = total.Add(balance.Balance)
	}

	period := SummaryPeriod{}
	if filter.Start != nil {
		period.Start = filter.Start.Format("2006-01-02")
	}
	if filter.End != nil {
		period.End = filter.End.Format("2006-01-02")
	}
	if filter.AccountID != 0 {
		accountID := filter.AccountID
		period.Account = &accountID
	}

	incomeIncludingTransfers := income.Add(transfersIn)
	return &SummaryReport{
		Period: period,
		Totals: SummaryTotals{
			Income:                   income,
			TransfersIn:              transfersIn,
			IncomeIncludingTransfers: incomeIncludingTransfers,
			Expense:                  expense,
			Net:                      incomeIncludingTransfers.Sub(expense),
		},
		Balances: SummaryBalances{
			TotalBalance: total,
			ByAccount:    balances,
		},
	}, nil
}
