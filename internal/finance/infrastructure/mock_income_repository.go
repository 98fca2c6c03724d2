package infrastructure

import (
	"context"
	"database/sql"
	"sort"

	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
)

type MockIncomeRepository struct {
	DB      *sql.DB
	Incomes map[string]*domain.Income
}

func NewMockIncomeRepository(db *sql.DB) *MockIncomeRepository {
	return &MockIncomeRepository{DB: db, Incomes: map[string]*domain.Income{}}
}

func (m *MockIncomeRepository) BeginTransaction(ctx context.Context) (*sql.Tx, error) {
	return m.DB.BeginTx(ctx, nil)
}

func (m *MockIncomeRepository) SaveWithTransaction(ctx context.Context, tx *sql.Tx, income *domain.Income) error {
	stored := *income
	m.Incomes[stored.ID] = &stored
	return nil
}

func (m *MockIncomeRepository) UpdateWithTransaction(ctx context.Context, tx *sql.Tx, income *domain.Income) error {
	if _, ok := m.Incomes[income.ID]; !ok {
		return financeErrors.ErrEntryNotFound
	}
	stored := *income
	m.Incomes[stored.ID] = &stored
	return nil
}

func (m *MockIncomeRepository) DeleteWithTransaction(ctx context.Context, tx *sql.Tx, incomeID, userID string) error {
	existing, ok := m.Incomes[incomeID]
	if !ok || existing.UserID != userID {
		return financeErrors.ErrEntryNotFound
	}
	delete(m.Incomes, incomeID)
	return nil
}

func (m *MockIncomeRepository) FindByID(ctx context.Context, incomeID, userID string) (*domain.Income, error) {
	existing, ok := m.Incomes[incomeID]
	if !ok || existing.UserID != userID {
		return nil, financeErrors.ErrEntryNotFound
	}
	copied := *existing
	return &copied, nil
}

func (m *MockIncomeRepository) FindByUser(ctx context.Context, userID string) ([]domain.Income, error) {
	var incomes []domain.Income
	for _, income := range m.Incomes {
		if income.UserID == userID {
			incomes = append(incomes, *income)
		}
	}
	sort.Slice(incomes, func(i, j int) bool { return incomes[i].CreatedAt.After(incomes[j].CreatedAt) })
	return incomes, nil
}
