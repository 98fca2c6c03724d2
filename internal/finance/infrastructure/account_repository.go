package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
	"github.com/shopspring/decimal"
)

const accountColumns = "id, user_id, name, balance, is_system, created_at, updated_at"

type AccountRepository struct {
	db          *sql.DB
	lockTimeout time.Duration
}

func NewAccountRepository(db *sql.DB, lockTimeout time.Duration) *AccountRepository {
	return &AccountRepository{db: db, lockTimeout: lockTimeout}
}

func (r *AccountRepository) Save(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (user_id, name, balance, is_system)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, account.UserID, account.Name, account.Balance, account.IsSystem).
		Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		// covers both the per-user name constraint and the one-system-per-user
		// partial index; the provisioner re-fetches on this class of failure
		if isUniqueViolation(err, "") {
			return financeErrors.NewValidationError("Account with this name already exists")
		}
		return err
	}
	return nil
}

func (r *AccountRepository) FindByID(ctx context.Context, accountID int64, userID string) (*domain.Account, error) {
	query := fmt.Sprintf("SELECT %s FROM accounts WHERE id = $1 AND user_id = $2", accountColumns)
	account, err := scanAccount(r.db.QueryRowContext(ctx, query, accountID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, financeErrors.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

func (r *AccountRepository) FindByUser(ctx context.Context, userID string) ([]domain.Account, error) {
	query := fmt.Sprintf("SELECT %s FROM accounts WHERE user_id = $1 AND is_system = FALSE ORDER BY id", accountColumns)
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var account domain.Account
		if err := rows.Scan(&account.ID, &account.UserID, &account.Name, &account.Balance,
			&account.IsSystem, &account.CreatedAt, &account.UpdatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (r *AccountRepository) FindSystemAccount(ctx context.Context, userID string) (*domain.Account, error) {
	query := fmt.Sprintf("SELECT %s FROM accounts WHERE user_id = $1 AND is_system = TRUE", accountColumns)
	account, err := scanAccount(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, financeErrors.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

func (r *AccountRepository) Update(ctx context.Context, account *domain.Account) error {
	query := `
		UPDATE accounts SET name = $1, updated_at = now()
		WHERE id = $2 AND user_id = $3 AND is_system = FALSE`
	result, err := r.db.ExecContext(ctx, query, account.Name, account.ID, account.UserID)
	if err != nil {
		if isUniqueViolation(err, "accounts_user_name_unique") {
			return financeErrors.NewValidationError("Account with this name already exists")
		}
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return financeErrors.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) Delete(ctx context.Context, accountID int64, userID string) error {
	query := "DELETE FROM accounts WHERE id = $1 AND user_id = $2 AND is_system = FALSE"
	result, err := r.db.ExecContext(ctx, query, accountID, userID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return financeErrors.NewValidationError("Account still has ledger entries and cannot be deleted")
		}
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return financeErrors.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) AdjustBalance(ctx context.Context, tx *sql.Tx, accountID int64, delta decimal.Decimal) error {
	query := "UPDATE accounts SET balance = balance + $1, updated_at = now() WHERE id = $2"
	result, err := tx.ExecContext(ctx, query, delta, accountID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return financeErrors.ErrAccountNotFound
	}
	return nil
}

// LockAccounts locks the distinct account rows in ascending id order so two
// transfers touching the same pair in swapped roles cannot deadlock. Lock
// acquisition is bounded by lock_timeout; hitting it surfaces as a
// ConcurrencyTimeoutError.
func (r *AccountRepository) LockAccounts(ctx context.Context, tx *sql.Tx, accountIDs ...int64) ([]domain.Account, error) {
	ids := dedupeIDs(accountIDs)
	if len(ids) == 0 {
		return nil, nil
	}

	timeout := fmt.Sprintf("SET LOCAL lock_timeout = %d", r.lockTimeout.Milliseconds())
	if _, err := tx.ExecContext(ctx, timeout); err != nil {
		return nil, err
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := fmt.Sprintf(
		"SELECT %s FROM accounts WHERE id IN (%s) ORDER BY id FOR UPDATE",
		accountColumns, strings.Join(placeholders, ", "),
	)

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		if isLockNotAvailable(err) {
			return nil, financeErrors.NewConcurrencyTimeoutError("Could not lock accounts in time, please retry")
		}
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var account domain.Account
		if err := rows.Scan(&account.ID, &account.UserID, &account.Name, &account.Balance,
			&account.IsSystem, &account.CreatedAt, &account.UpdatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		if isLockNotAvailable(err) {
			return nil, financeErrors.NewConcurrencyTimeoutError("Could not lock accounts in time, please retry")
		}
		return nil, err
	}
	return accounts, nil
}

func (r *AccountRepository) FindBalanceDrift(ctx context.Context) ([]domain.BalanceDrift, error) {
	query := `
		SELECT a.id, a.user_id, a.name, a.balance,
		       COALESCE(i.total, 0) + COALESCE(tin.total, 0) - COALESCE(e.total, 0) - COALESCE(tout.total, 0) AS entry_sum
		FROM accounts a
		LEFT JOIN (SELECT account_id, SUM(amount) AS total FROM incomes GROUP BY account_id) i ON i.account_id = a.id
		LEFT JOIN (SELECT account_id, SUM(amount) AS total FROM expenses GROUP BY account_id) e ON e.account_id = a.id
		LEFT JOIN (SELECT to_account_id AS account_id, SUM(amount) AS total FROM transfers GROUP BY to_account_id) tin ON tin.account_id = a.id
		LEFT JOIN (SELECT from_account_id AS account_id, SUM(amount) AS total FROM transfers GROUP BY from_account_id) tout ON tout.account_id = a.id
		WHERE a.balance <> COALESCE(i.total, 0) + COALESCE(tin.total, 0) - COALESCE(e.total, 0) - COALESCE(tout.total, 0)`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drifts []domain.BalanceDrift
	for rows.Next() {
		var drift domain.BalanceDrift
		if err := rows.Scan(&drift.AccountID, &drift.UserID, &drift.Name, &drift.Balance, &drift.EntrySum); err != nil {
			return nil, err
		}
		drifts = append(drifts, drift)
	}
	return drifts, rows.Err()
}

func scanAccount(row *sql.Row) (*domain.Account, error) {
	var account domain.Account
	err := row.Scan(&account.ID, &account.UserID, &account.Name, &account.Balance,
		&account.IsSystem, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	var out []int64
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
