package infrastructure

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
)

type TransferRepository struct {
	db *sql.DB
}

func NewTransferRepository(db *sql.DB) *TransferRepository {
	return &TransferRepository{db: db}
}

func (r *TransferRepository) BeginTransaction(ctx context.Context) (*sql.Tx, error) {
	return r.db.BeginTx(ctx, nil)
}

func (r *TransferRepository) SaveWithTransaction(ctx context.Context, tx *sql.Tx, transfer *domain.Transfer) error {
	query := `
		INSERT INTO transfers (id, user_id, from_account_id, to_account_id, amount, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := tx.ExecContext(ctx, query,
		transfer.ID, transfer.UserID, transfer.FromAccountID, transfer.ToAccountID,
		transfer.Amount, transfer.Description, transfer.CreatedAt)
	return err
}

func (r *TransferRepository) UpdateWithTransaction(ctx context.Context, tx *sql.Tx, transfer *domain.Transfer) error {
	query := `
		UPDATE transfers SET from_account_id = $1, to_account_id = $2, amount = $3, description = $4
		WHERE id = $5 AND user_id = $6`
	result, err := tx.ExecContext(ctx, query,
		transfer.FromAccountID, transfer.ToAccountID, transfer.Amount, transfer.Description,
		transfer.ID, transfer.UserID)
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

func (r *TransferRepository) DeleteWithTransaction(ctx context.Context, tx *sql.Tx, transferID, userID string) error {
	result, err := tx.ExecContext(ctx, "DELETE FROM transfers WHERE id = $1 AND user_id = $2", transferID, userID)
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

func (r *TransferRepository) FindByID(ctx context.Context, transferID, userID string) (*domain.Transfer, error) {
	query := `
		SELECT id, user_id, from_account_id, to_account_id, amount, description, created_at
		FROM transfers WHERE id = $1 AND user_id = $2`
	var transfer domain.Transfer
	err := r.db.QueryRowContext(ctx, query, transferID, userID).Scan(
		&transfer.ID, &transfer.UserID, &transfer.FromAccountID, &transfer.ToAccountID,
		&transfer.Amount, &transfer.Description, &transfer.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, financeErrors.ErrEntryNotFound
		}
		return nil, err
	}
	return &transfer, nil
}

func (r *TransferRepository) FindByUser(ctx context.Context, userID string) ([]domain.Transfer, error) {
	query := `
		SELECT id, user_id, from_account_id, to_account_id, amount, description, created_at
		FROM transfers WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transfers []domain.Transfer
	for rows.Next() {
		var transfer domain.Transfer
		if err := rows.Scan(&transfer.ID, &transfer.UserID, &transfer.FromAccountID, &transfer.ToAccountID,
			&transfer.Amount, &transfer.Description, &transfer.CreatedAt); err != nil {
			return nil, err
		}
		transfers = append(transfers, transfer)
	}
	return transfers, rows.Err()
}
