package application

import (
	"context"
	"strings"

	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
	"github.com/shopspring/decimal"
)

type AccountService struct {
	repo domain.AccountRepository
}

func NewAccountService(repo domain.AccountRepository) *AccountService {
	return &AccountService{repo: repo}
}

func (s *AccountService) CreateAccount(ctx context.Context, userID, name string) (*domain.Account, error) {
	account := &domain.Account{
		UserID:  userID,
		Name:    strings.TrimSpace(name),
		Balance: decimal.Zero,
	}
	if err := account.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *AccountService) GetAccount(ctx context.Context, accountID int64, userID string) (*domain.Account, error) {
	account, err := s.repo.FindByID(ctx, accountID, userID)
	if err != nil {
		return nil, err
	}
	// system accounts stay hidden from the API surface
	if account.IsSystem {
		return nil, financeErrors.ErrAccountNotFound
	}
	return account, nil
}

func (s *AccountService) ListAccounts(ctx context.Context, userID string) ([]domain.Account, error) {
	accounts, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if accounts == nil {
		return []domain.Account{}, nil
	}
	return accounts, nil
}

// RenameAccount changes the display name only. Balances are never writable
// through the API, they move exclusively via ledger mutations.
func (s *AccountService) RenameAccount(ctx context.Context, accountID int64, userID, name string) (*domain.Account, error) {
	account := &domain.Account{
		ID:     accountID,
		UserID: userID,
		Name:   strings.TrimSpace(name),
	}
	if err := account.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, account); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, accountID, userID)
}

func (s *AccountService) DeleteAccount(ctx context.Context, accountID int64, userID string) error {
	return s.repo.Delete(ctx, accountID, userID)
}

// GetOrCreateSystemAccount returns the user's single hidden external account,
// creating it with balance 0 on first use. Concurrent first calls are resolved
// by the storage uniqueness constraint: the loser of the insert race re-fetches
// the winner's row.
func (s *AccountService) GetOrCreateSystemAccount(ctx context.Context, userID string) (*domain.Account, error) {
	account, err := s.repo.FindSystemAccount(ctx, userID)
	if err == nil {
		return account, nil
	}
	if !financeErrors.IsNotFoundError(err) {
		return nil, err
	}

	account = &domain.Account{
		UserID:   userID,
		Name:     domain.SystemAccountName,
		Balance:  decimal.Zero,
		IsSystem: true,
	}
	if err := s.repo.Save(ctx, account); err != nil {
		if financeErrors.IsValidationError(err) {
			if existing, findErr := s.repo.FindSystemAccount(ctx, userID); findErr == nil {
				return existing, nil
			}
		}
		return nil, err
	}
	return account, nil
}
