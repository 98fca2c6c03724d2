package infrastructure

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
	"github.com/shopspring/decimal"
)

const monthExpr = "to_char(date_trunc('month', %s), 'YYYY-MM')"

type ReportingRepository struct {
	db *sql.DB
}

func NewReportingRepository(db *sql.DB) *ReportingRepository {
	return &ReportingRepository{db: db}
}

// appendFilter extends query with the optional date and account conditions of
// filter, numbering placeholders after the already collected args.
func appendFilter(query string, args []interface{}, filter domain.ReportFilter, dateCol, accountCol string) (string, []interface{}) {
	if filter.Start != nil {
		args = append(args, *filter.Start)
		query += fmt.Sprintf(" AND %s >= $%d", dateCol, len(args))
	}
	if filter.End != nil {
		args = append(args, *filter.End)
		query += fmt.Sprintf(" AND %s <= $%d", dateCol, len(args))
	}
	if filter.AccountID != 0 {
		args = append(args, filter.AccountID)
		query += fmt.Sprintf(" AND %s = $%d", accountCol, len(args))
	}
	return query, args
}

func (r *ReportingRepository) ExpenseTotalsByCategory(ctx context.Context, filter domain.ReportFilter) ([]domain.CategoryTotal, error) {
	query := `
		SELECT c.id, c.name, SUM(e.amount) AS total
		FROM expenses e
		JOIN categories c ON c.id = e.category_id
		WHERE e.user_id = $1`
	args := []interface{}{filter.UserID}
	query, args = appendFilter(query, args, filter, "e.created_at", "e.account_id")
	query += " GROUP BY c.id, c.name ORDER BY c.name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []domain.CategoryTotal
	for rows.Next() {
		var total domain.CategoryTotal
		if err := rows.Scan(&total.CategoryID, &total.Category, &total.Total); err != nil {
			return nil, err
		}
		totals = append(totals, total)
	}
	return totals, rows.Err()
}

func (r *ReportingRepository) MonthlyExpenses(ctx context.Context, filter domain.ReportFilter) ([]domain.MonthBucket, error) {
	query := fmt.Sprintf(`
		SELECT %s AS month, SUM(amount) AS total
		FROM expenses WHERE user_id = $1`, fmt.Sprintf(monthExpr, "created_at"))
	args := []interface{}{filter.UserID}
	query, args = appendFilter(query, args, filter, "created_at", "account_id")
	query += " GROUP BY 1 ORDER BY 1"
	return r.queryMonthBuckets(ctx, query, args)
}

func (r *ReportingRepository) MonthlyIncomes(ctx context.Context, filter domain.ReportFilter) ([]domain.MonthBucket, error) {
	query := fmt.Sprintf(`
		SELECT %s AS month, SUM(amount) AS total
		FROM incomes WHERE user_id = $1`, fmt.Sprintf(monthExpr, "created_at"))
	args := []interface{}{filter.UserID}
	query, args = appendFilter(query, args, filter, "created_at", "account_id")
	query += " GROUP BY 1 ORDER BY 1"
	return r.queryMonthBuckets(ctx, query, args)
}

func (r *ReportingRepository) MonthlyTransfersIn(ctx context.Context, filter domain.ReportFilter) ([]domain.MonthBucket, error) {
	query := fmt.Sprintf(`
		SELECT %s AS month, SUM(t.amount) AS total
		FROM transfers t
		JOIN accounts f ON f.id = t.from_account_id
		WHERE t.user_id = $1 AND f.is_system`, fmt.Sprintf(monthExpr, "t.created_at"))
	args := []interface{}{filter.UserID}
	query, args = appendFilter(query, args, filter, "t.created_at", "t.to_account_id")
	query += " GROUP BY 1 ORDER BY 1"
	return r.queryMonthBuckets(ctx, query, args)
}

func (r *ReportingRepository) queryMonthBuckets(ctx context.Context, query string, args []interface{}) ([]domain.MonthBucket, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buckets []domain.MonthBucket
	for rows.Next() {
		var bucket domain.MonthBucket
		if err := rows.Scan(&bucket.Month, &bucket.Total); err != nil {
			return nil, err
		}
		buckets = append(buckets, bucket)
	}
	return buckets, rows.Err()
}

func (r *ReportingRepository) MonthlyExpensesByAccount(ctx context.Context, filter domain.ReportFilter) ([]domain.MonthAccountBucket, error) {
	query := fmt.Sprintf(`
		SELECT %s AS month, a.id, a.name, SUM(e.amount) AS total
		FROM expenses e
		JOIN accounts a ON a.id = e.account_id
		WHERE e.user_id = $1`, fmt.Sprintf(monthExpr, "e.created_at"))
	args := []interface{}{filter.UserID}
	query, args = appendFilter(query, args, filter, "e.created_at", "e.account_id")
	query += " GROUP BY 1, a.id, a.name ORDER BY 1, a.name"
	return r.queryMonthAccountBuckets(ctx, query, args)
}

func (r *ReportingRepository) MonthlyIncomesByAccount(ctx context.Context, filter domain.ReportFilter) ([]domain.MonthAccountBucket, error) {
	query := fmt.Sprintf(`
		SELECT %s AS month, a.id, a.name, SUM(i.amount) AS total
		FROM incomes i
		JOIN accounts a ON a.id = i.account_id
		WHERE i.user_id = $1`, fmt.Sprintf(monthExpr, "i.created_at"))
	args := []interface{}{filter.UserID}
	query, args = appendFilter(query, args, filter, "i.created_at", "i.account_id")
	query += " GROUP BY 1, a.id, a.name ORDER BY 1, a.name"
	return r.queryMonthAccountBuckets(ctx, query, args)
}

func (r *ReportingRepository) MonthlyTransfersInByAccount(ctx context.Context, filter domain.ReportFilter) ([]domain.MonthAccountBucket, error) {
	query := fmt.Sprintf(`
		SELECT %s AS month, a.id, a.name, SUM(t.amount) AS total
		FROM transfers t
		JOIN accounts f ON f.id = t.from_account_id
		JOIN accounts a ON a.id = t.to_account_id
		WHERE t.user_id = $1 AND f.is_system`, fmt.Sprintf(monthExpr, "t.created_at"))
	args := []interface{}{filter.UserID}
	query, args = appendFilter(query, args, filter, "t.created_at", "t.to_account_id")
	query += " GROUP BY 1, a.id, a.name ORDER BY 1, a.name"
	return r.queryMonthAccountBuckets(ctx, query, args)
}

func (r *ReportingRepository) queryMonthAccountBuckets(ctx context.Context, query string, args []interface{}) ([]domain.MonthAccountBucket, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buckets []domain.MonthAccountBucket
	for rows.Next() {
		var bucket domain.MonthAccountBucket
		if err := rows.Scan(&bucket.Month, &bucket.AccountID, &bucket.Account, &bucket.Total); err != nil {
			return nil, err
		}
		buckets = append(buckets, bucket)
	}
	return buckets, rows.Err()
}

func (r *ReportingRepository) MonthlyExpensesByCategory(ctx context.Context, filter domain.ReportFilter) ([]domain.MonthCategoryBucket, error) {
	query := fmt.Sprintf(`
		SELECT %s AS month, c.id, c.name, SUM(e.amount) AS total
		FROM expenses e
		JOIN categories c ON c.id = e.category_id
		WHERE e.user_id = $1`, fmt.Sprintf(monthExpr, "e.created_at"))
	args := []interface{}{filter.UserID}
	query, args = appendFilter(query, args, filter, "e.created_at", "e.account_id")
	query += " GROUP BY 1, c.id, c.name ORDER BY 1, c.name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buckets []domain.MonthCategoryBucket
	for rows.Next() {
		var bucket domain.MonthCategoryBucket
		if err := rows.Scan(&bucket.Month, &bucket.CategoryID, &bucket.Category, &bucket.Total); err != nil {
			return nil, err
		}
		buckets = append(buckets, bucket)
	}
	return buckets, rows.Err()
}

func (r *ReportingRepository) MonthlyExpensesByAccountCategory(ctx context.Context, filter domain.ReportFilter) ([]domain.MonthAccountCategoryBucket, error) {
	query := fmt.Sprintf(`
		SELECT %s AS month, a.id, a.name, c.id, c.name, SUM(e.amount) AS total
		FROM expenses e
		JOIN accounts a ON a.id = e.account_id
		JOIN categories c ON c.id = e.category_id
		WHERE e.user_id = $1`, fmt.Sprintf(monthExpr, "e.created_at"))
	args := []interface{}{filter.UserID}
	query, args = appendFilter(query, args, filter, "e.created_at", "e.account_id")
	query += " GROUP BY 1, a.id, a.name, c.id, c.name ORDER BY 1, a.name, c.name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buckets []domain.MonthAccountCategoryBucket
	for rows.Next() {
		var bucket domain.MonthAccountCategoryBucket
		if err := rows.Scan(&bucket.Month, &bucket.AccountID, &bucket.Account,
			&bucket.CategoryID, &bucket.Category, &bucket.Total); err != nil {
			return nil, err
		}
		buckets = append(buckets, bucket)
	}
	return buckets, rows.Err()
}

func (r *ReportingRepository) ExpenseTotal(ctx context.Context, filter domain.ReportFilter) (decimal.Decimal, error) {
	query := "SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE user_id = $1"
	args := []interface{}{filter.UserID}
	query, args = appendFilter(query, args, filter, "created_at", "account_id")
	return r.queryTotal(ctx, query, args)
}

func (r *ReportingRepository) IncomeTotal(ctx context.Context, filter domain.ReportFilter) (decimal.Decimal, error) {
	query := "SELECT COALESCE(SUM(amount), 0) FROM incomes WHERE user_id = $1"
	args := []interface{}{filter.UserID}
	query, args = appendFilter(query, args, filter, "created_at", "account_id")
	return r.queryTotal(ctx, query, args)
}

func (r *ReportingRepository) TransferInTotal(ctx context.Context, filter domain.ReportFilter) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(t.amount), 0)
		FROM transfers t
		JOIN accounts f ON f.id = t.from_account_id
		WHERE t.user_id = $1 AND f.is_system`
	args := []interface{}{filter.UserID}
	query, args = appendFilter(query, args, filter, "t.created_at", "t.to_account_id")
	return r.queryTotal(ctx, query, args)
}

func (r *ReportingRepository) TransferTotal(ctx context.Context, filter domain.TransferFilter) (decimal.Decimal, error) {
	query := "SELECT COALESCE(SUM(amount), 0) FROM transfers WHERE user_id = $1"
	args := []interface{}{filter.UserID}
	if filter.Start != nil {
		args = append(args, *filter.Start)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if filter.End != nil {
		args = append(args, *filter.End)
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}
	if filter.FromAccountID != 0 {
		args = append(args, filter.FromAccountID)
		query += fmt.Sprintf(" AND from_account_id = $%d", len(args))
	}
	if filter.ToAccountID != 0 {
		args = append(args, filter.ToAccountID)
		query += fmt.Sprintf(" AND to_account_id = $%d", len(args))
	}
	return r.queryTotal(ctx, query, args)
}

func (r *ReportingRepository) queryTotal(ctx context.Context, query string, args []interface{}) (decimal.Decimal, error) {
	var total decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func (r *ReportingRepository) AccountBalances(ctx context.Context, userID string) ([]domain.AccountBalance, error) {
	query := "SELECT id, name, balance FROM accounts WHERE user_id = $1 AND is_system = FALSE ORDER BY name"
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var balances []domain.AccountBalance
	for rows.Next() {
		var balance domain.AccountBalance
		if err := rows.Scan(&balance.AccountID, &balance.Account, &balance.Balance); err != nil {
			return nil, err
		}
		balances = append(balances, balance)
	}
	return balances, rows.Err()
}
