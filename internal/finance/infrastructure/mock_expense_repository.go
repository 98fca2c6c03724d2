package infrastructure

import (
	"context"
	"database/sql"
	"sort"

	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
)

// MockExpenseRepository keeps expenses in memory. DB only serves
// BeginTransaction, so tests can hand the services real transactions.
type MockExpenseRepository struct {
	DB       *sql.DB
	Expenses map[string]*domain.Expense
	SaveErr  error
}

func NewMockExpenseRepository(db *sql.DB) *MockExpenseRepository {
	return &MockExpenseRepository{DB: db, Expenses: map[string]*domain.Expense{}}
}

func (m *MockExpenseRepository) BeginTransaction(ctx context.Context) (*sql.Tx, error) {
	return m.DB.BeginTx(ctx, nil)
}

func (m *MockExpenseRepository) SaveWithTransaction(ctx context.Context, tx *sql.Tx, expense *domain.Expense) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	stored := *expense
	m.Expenses[stored.ID] = &stored
	return nil
}

func (m *MockExpenseRepository) UpdateWithTransaction(ctx context.Context, tx *sql.Tx, expense *domain.Expense) error {
	if _, ok := m.Expenses[expense.ID]; !ok {
		return financeErrors.ErrEntryNotFound
	}
	stored := *expense
	m.Expenses[stored.ID] = &stored
	return nil
}

func (m *MockExpenseRepository) DeleteWithTransaction(ctx context.Context, tx *sql.Tx, expenseID, userID string) error {
	existing, ok := m.Expenses[expenseID]
	if !ok || existing.UserID != userID {
		return financeErrors.ErrEntryNotFound
	}
	delete(m.Expenses, expenseID)
	return nil
}

func (m *MockExpenseRepository) FindByID(ctx context.Context, expenseID, userID string) (*domain.Expense, error) {
	existing, ok := m.Expenses[expenseID]
	if !ok || existing.UserID != userID {
		return nil, financeErrors.ErrEntryNotFound
	}
	copied := *existing
	return &copied, nil
}

func (m *MockExpenseRepository) FindByUser(ctx context.Context, userID string) ([]domain.Expense, error) {
	var expenses []domain.Expense
	for _, expense := range m.Expenses {
		if expense.UserID == userID {
			expenses = append(expenses, *expense)
		}
	}
	sort.Slice(expenses, func(i, j int) bool { return expenses[i].CreatedAt.After(expenses[j].CreatedAt) })
	return expenses, nil
}
