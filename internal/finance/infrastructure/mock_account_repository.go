package infrastructure

import (
	"context"
	"database/sql"
	"sort"

	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
	"github.com/shopspring/decimal"
)

// BalanceAdjustment records one AdjustBalance call for assertions.
type BalanceAdjustment struct {
	AccountID int64
	Delta     decimal.Decimal
}

type MockAccountRepository struct {
	Accounts    map[int64]*domain.Account
	NextID      int64
	AdjustCalls []BalanceAdjustment
	LockCalls   [][]int64
	LockErr     error

	// ConflictOnSystemSave simulates losing the insert race for the hidden
	// system account: the winner's row appears and the save fails on the
	// uniqueness constraint.
	ConflictOnSystemSave bool
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{Accounts: map[int64]*domain.Account{}, NextID: 1}
}

func (m *MockAccountRepository) AddAccount(account domain.Account) *domain.Account {
	if account.ID == 0 {
		account.ID = m.NextID
	}
	if account.ID >= m.NextID {
		m.NextID = account.ID + 1
	}
	stored := account
	m.Accounts[stored.ID] = &stored
	return &stored
}

func (m *MockAccountRepository) Save(ctx context.Context, account *domain.Account) error {
	for _, existing := range m.Accounts {
		if existing.UserID != account.UserID {
			continue
		}
		if existing.Name == account.Name {
			return financeErrors.NewValidationError("Account with this name already exists")
		}
		if account.IsSystem && existing.IsSystem {
			return financeErrors.NewValidationError("Account with this name already exists")
		}
	}
	if account.IsSystem && m.ConflictOnSystemSave {
		m.AddAccount(domain.Account{
			UserID:   account.UserID,
			Name:     domain.SystemAccountName,
			Balance:  decimal.Zero,
			IsSystem: true,
		})
		return financeErrors.NewValidationError("Account with this name already exists")
	}
	account.ID = m.NextID
	m.NextID++
	stored := *account
	m.Accounts[stored.ID] = &stored
	return nil
}

func (m *MockAccountRepository) FindByID(ctx context.Context, accountID int64, userID string) (*domain.Account, error) {
	account, ok := m.Accounts[accountID]
	if !ok || account.UserID != userID {
		return nil, financeErrors.ErrAccountNotFound
	}
	copied := *account
	return &copied, nil
}

func (m *MockAccountRepository) FindByUser(ctx context.Context, userID string) ([]domain.Account, error) {
	var accounts []domain.Account
	for _, account := range m.Accounts {
		if account.UserID == userID && !account.IsSystem {
			accounts = append(accounts, *account)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

func (m *MockAccountRepository) FindSystemAccount(ctx context.Context, userID string) (*domain.Account, error) {
	for _, account := range m.Accounts {
		if account.UserID == userID && account.IsSystem {
			copied := *account
			return &copied, nil
		}
	}
	return nil, financeErrors.ErrAccountNotFound
}

func (m *MockAccountRepository) Update(ctx context.Context, account *domain.Account) error {
	existing, ok := m.Accounts[account.ID]
	if !ok || existing.UserID != account.UserID || existing.IsSystem {
		return financeErrors.ErrAccountNotFound
	}
	for _, other := range m.Accounts {
		if other.ID != account.ID && other.UserID == account.UserID && other.Name == account.Name {
			return financeErrors.NewValidationError("Account with this name already exists")
		}
	}
	existing.Name = account.Name
	return nil
}

func (m *MockAccountRepository) Delete(ctx context.Context, accountID int64, userID string) error {
	existing, ok := m.Accounts[accountID]
	if !ok || existing.UserID != userID || existing.IsSystem {
		return financeErrors.ErrAccountNotFound
	}
	delete(m.Accounts, accountID)
	return nil
}

func (m *MockAccountRepository) AdjustBalance(ctx context.Context, tx *sql.Tx, accountID int64, delta decimal.Decimal) error {
	account, ok := m.Accounts[accountID]
	if !ok {
		return financeErrors.ErrAccountNotFound
	}
	account.Balance = account.Balance.Add(delta)
	m.AdjustCalls = append(m.AdjustCalls, BalanceAdjustment{AccountID: accountID, Delta: delta})
	return nil
}

func (m *MockAccountRepository) LockAccounts(ctx context.Context, tx *sql.Tx, accountIDs ...int64) ([]domain.Account, error) {
	m.LockCalls = append(m.LockCalls, append([]int64(nil), accountIDs...))
	if m.LockErr != nil {
		return nil, m.LockErr
	}

	seen := map[int64]struct{}{}
	var ids []int64
	for _, id := range accountIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var accounts []domain.Account
	for _, id := range ids {
		if account, ok := m.Accounts[id]; ok {
			accounts = append(accounts, *account)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) FindBalanceDrift(ctx context.Context) ([]domain.BalanceDrift, error) {
	return nil, nil
}

func (m *MockAccountRepository) Balance(accountID int64) decimal.Decimal {
	if account, ok := m.Accounts[accountID]; ok {
		return account.Balance
	}
	return decimal.Zero
}
