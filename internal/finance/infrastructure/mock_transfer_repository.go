package infrastructure

import (
	"context"
	"database/sql"
	"sort"

	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
)

type MockTransferRepository struct {
	DB        *sql.DB
	Transfers map[string]*domain.Transfer
}

func NewMockTransferRepository(db *sql.DB) *MockTransferRepository {
	return &MockTransferRepository{DB: db, Transfers: map[string]*domain.Transfer{}}
}

func (m *MockTransferRepository) BeginTransaction(ctx context.Context) (*sql.Tx, error) {
	return m.DB.BeginTx(ctx, nil)
}

func (m *MockTransferRepository) SaveWithTransaction(ctx context.Context, tx *sql.Tx, transfer *domain.Transfer) error {
	stored := *transfer
	m.Transfers[stored.ID] = &stored
	return nil
}

func (m *MockTransferRepository) UpdateWithTransaction(ctx context.Context, tx *sql.Tx, transfer *domain.Transfer) error {
	if _, ok := m.Transfers[transfer.ID]; !ok {
		return financeErrors.ErrEntryNotFound
	}
	stored := *transfer
	m.Transfers[stored.ID] = &stored
	return nil
}

func (m *MockTransferRepository) DeleteWithTransaction(ctx context.Context, tx *sql.Tx, transferID, userID string) error {
	existing, ok := m.Transfers[transferID]
	if !ok || existing.UserID != userID {
		return financeErrors.ErrEntryNotFound
	}
	delete(m.Transfers, transferID)
	return nil
}

func (m *MockTransferRepository) FindByID(ctx context.Context, transferID, userID string) (*domain.Transfer, error) {
	existing, ok := m.Transfers[transferID]
	if !ok || existing.UserID != userID {
		return nil, financeErrors.ErrEntryNotFound
	}
	copied := *existing
	return &copied, nil
}

func (m *MockTransferRepository) FindByUser(ctx context.Context, userID string) ([]domain.Transfer, error) {
	var transfers []domain.Transfer
	for _, transfer := range m.Transfers {
		if transfer.UserID == userID {
			transfers = append(transfers, *transfer)
		}
	}
	sort.Slice(transfers, func(i, j int) bool { return transfers[i].CreatedAt.After(transfers[j].CreatedAt) })
	return transfers, nil
}
