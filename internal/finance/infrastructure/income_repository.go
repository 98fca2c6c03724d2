package infrastructure

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
)

type IncomeRepository struct {
	db *sql.DB
}

func NewIncomeRepository(db *sql.DB) *IncomeRepository {
	return &IncomeRepository{db: db}
}

func (r *IncomeRepository) BeginTransaction(ctx context.Context) (*sql.Tx, error) {
	return r.db.BeginTx(ctx, nil)
}

func (r *IncomeRepository) SaveWithTransaction(ctx context.Context, tx *sql.Tx, income *domain.Income) error {
	query := `
		INSERT INTO incomes (id, user_id, account_id, amount, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := tx.ExecContext(ctx, query,
		income.ID, income.UserID, income.AccountID, income.Amount,
		income.Description, income.CreatedAt, income.UpdatedAt)
	return err
}

func (r *IncomeRepository) UpdateWithTransaction(ctx context.Context, tx *sql.Tx, income *domain.Income) error {
	query := `
		UPDATE incomes SET account_id = $1, amount = $2, description = $3, updated_at = $4
		WHERE id = $5 AND user_id = $6`
	result, err := tx.ExecContext(ctx, query,
		income.AccountID, income.Amount, income.Description, income.UpdatedAt, income.ID, income.UserID)
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

func (r *IncomeRepository) DeleteWithTransaction(ctx context.Context, tx *sql.Tx, incomeID, userID string) error {
	result, err := tx.ExecContext(ctx, "DELETE FROM incomes WHERE id = $1 AND user_id = $2", incomeID, userID)
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

func (r *IncomeRepository) FindByID(ctx context.Context, incomeID, userID string) (*domain.Income, error) {
	query := `
		SELECT id, user_id, account_id, amount, description, created_at, updated_at
		FROM incomes WHERE id = $1 AND user_id = $2`
	var income domain.Income
	err := r.db.QueryRowContext(ctx, query, incomeID, userID).Scan(
		&income.ID, &income.UserID, &income.AccountID, &income.Amount,
		&income.Description, &income.CreatedAt, &income.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, financeErrors.ErrEntryNotFound
		}
		return nil, err
	}
	return &income, nil
}

func (r *IncomeRepository) FindByUser(ctx context.Context, userID string) ([]domain.Income, error) {
	query := `
		SELECT id, user_id, account_id, amount, description, created_at, updated_at
		FROM incomes WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var incomes []domain.Income
	for rows.Next() {
		var income domain.Income
		if err := rows.Scan(&income.ID, &income.UserID, &income.AccountID, &income.Amount,
			&income.Description, &income.CreatedAt, &income.UpdatedAt); err != nil {
			return nil, err
		}
		incomes = append(incomes, income)
	}
	return incomes, rows.Err()
}
