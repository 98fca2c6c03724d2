package interfaces

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
)

type MockTransferService struct {
	transfers []domain.Transfer
	failWith  error

	// LastAllowSystem records the override flag of the most recent
	// Create/Update call.
	LastAllowSystem bool
}

func (m *MockTransferService) Create(ctx context.Context, transfer *domain.Transfer, allowSystem bool) error {
	m.LastAllowSystem = allowSystem
	if m.failWith != nil {
		return m.failWith
	}
	transfer.ID = "transfer-1"
	m.transfers = append(m.transfers, *transfer)
	return nil
}

func (m *MockTransferService) Update(ctx context.Context, transfer *domain.Transfer, allowSystem bool) error {
	m.LastAllowSystem = allowSystem
	return m.failWith
}

func (m *MockTransferService) Delete(ctx context.Context, transferID, userID string) error {
	return m.failWith
}

func (m *MockTransferService) Get(ctx context.Context, transferID, userID string) (*domain.Transfer, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	for i := range m.transfers {
		if m.transfers[i].ID == transferID && m.transfers[i].UserID == userID {
			return &m.transfers[i], nil
		}
	}
	return nil, financeErrors.ErrEntryNotFound
}

func (m *MockTransferService) List(ctx context.Context, userID string) ([]domain.Transfer, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return m.transfers, nil
}

func (m *MockTransferService) CreateSalary(ctx context.Context, userID string, accountID int64, amount decimal.Decimal, note string) (*domain.Transfer, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	transfer := domain.Transfer{ID: "salary-1", UserID: userID, ToAccountID: accountID, Amount: amount, Description: note}
	m.transfers = append(m.transfers, transfer)
	return &transfer, nil
}

func (m *MockTransferService) CreateRandomSalary(ctx context.Context, userID string, accountID int64, minAmount, maxAmount decimal.Decimal) (*domain.Transfer, error) {
	if maxAmount.LessThan(minAmount) {
		return nil, financeErrors.NewValidationError("max must be greater than or equal to min")
	}
	return m.CreateSalary(ctx, userID, accountID, minAmount, "Salary")
}
