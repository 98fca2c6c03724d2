package infrastructure

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
)

type ExpenseRepository struct {
	db *sql.DB
}

func NewExpenseRepository(db *sql.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) BeginTransaction(ctx context.Context) (*sql.Tx, error) {
	return r.db.BeginTx(ctx, nil)
}

func (r *ExpenseRepository) SaveWithTransaction(ctx context.Context, tx *sql.Tx, expense *domain.Expense) error {
	query := `
		INSERT INTO expenses (id, user_id, account_id, category_id, amount, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := tx.ExecContext(ctx, query,
		expense.ID, expense.UserID, expense.AccountID, expense.CategoryID,
		expense.Amount, expense.Description, expense.CreatedAt, expense.UpdatedAt)
	if isForeignKeyViolation(err) {
		return financeErrors.ErrCategoryNotFound
	}
	return err
}

func (r *ExpenseRepository) UpdateWithTransaction(ctx context.Context, tx *sql.Tx, expense *domain.Expense) error {
	query := `
		UPDATE expenses SET account_id = $1, category_id = $2, amount = $3, description = $4, updated_at = $5
		WHERE id = $6 AND user_id = $7`
	result, err := tx.ExecContext(ctx, query,
		expense.AccountID, expense.CategoryID, expense.Amount, expense.Description,
		expense.UpdatedAt, expense.ID, expense.UserID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return financeErrors.ErrCategoryNotFound
		}
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return financeErrors.ErrEntryNotFound
	}
	return nil
}

func (r *ExpenseRepository) DeleteWithTransaction(ctx context.Context, tx *sql.Tx, expenseID, userID string) error {
	result, err := tx.ExecContext(ctx, "DELETE FROM expenses WHERE id = $1 AND user_id = $2", expenseID, userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return financeErrors.ErrEntryNotFound
	}
	return nil
}

func (r *ExpenseRepository) FindByID(ctx context.Context, expenseID, userID string) (*domain.Expense, error) {
	query := `
		SELECT id, user_id, account_id, category_id, amount, description, created_at, updated_at
		FROM expenses WHERE id = $1 AND user_id = $2`
	var expense domain.Expense
	err := r.db.QueryRowContext(ctx, query, expenseID, userID).Scan(
		&expense.ID, &expense.UserID, &expense.AccountID, &expense.CategoryID,
		&expense.Amount, &expense.Description, &expense.CreatedAt, &expense.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, financeErrors.ErrEntryNotFound
		}
		return nil, err
	}
	return &expense, nil
}

func (r *ExpenseRepository) FindByUser(ctx context.Context, userID string) ([]domain.Expense, error) {
	query := `
		SELECT id, user_id, account_id, category_id, amount, description, created_at, updated_at
		FROM expenses WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []domain.Expense
	for rows.Next() {
		var expense domain.Expense
		if err := rows.Scan(&expense.ID, &expense.UserID, &expense.AccountID, &expense.CategoryID,
			&expense.Amount, &expense.Description, &expense.CreatedAt, &expense.UpdatedAt); err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}
	return expenses, rows.Err()
}
