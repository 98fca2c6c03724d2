package application

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
	"github.com/sebuszqo/ExpenseTracker/internal/finance/infrastructure"
)

func TestCreateAccount_TrimsNameAndStartsAtZero(t *testing.T) {
	accounts := infrastructure.NewMockAccountRepository()
	service := NewAccountService(accounts)

	account, err := service.CreateAccount(context.Background(), "user-1", "  Checking  ")

	assert.NoError(t, err)
	assert.Equal(t, "Checking", account.Name)
	assert.True(t, account.Balance.IsZero())
	assert.False(t, account.IsSystem)
}

func TestCreateAccount_RejectsBadNames(t *testing.T) {
	accounts := infrastructure.NewMockAccountRepository()
	service := NewAccountService(accounts)

	_, err := service.CreateAccount(context.Background(), "user-1", "   ")
	assert.True(t, financeErrors.IsValidationError(err))

	_, err = service.CreateAccount(context.Background(), "user-1", strings.Repeat("a", 101))
	assert.True(t, financeErrors.IsValidationError(err))
}

func TestCreateAccount_DuplicateName(t *testing.T) {
	accounts := infrastructure.NewMockAccountRepository()
	service := NewAccountService(accounts)

	_, err := service.CreateAccount(context.Background(), "user-1", "Checking")
	assert.NoError(t, err)

	_, err = service.CreateAccount(context.Background(), "user-1", "Checking")
	assert.True(t, financeErrors.IsValidationError(err))

	// the same name is fine for a different user
	_, err = service.CreateAccount(context.Background(), "user-2", "Checking")
	assert.NoError(t, err)
}

func TestGetAccount_HidesSystemAccount(t *testing.T) {
	accounts := infrastructure.NewMockAccountRepository()
	service := NewAccountService(accounts)

	system := accounts.AddAccount(domain.Account{UserID: "user-1", Name: domain.SystemAccountName, IsSystem: true})

	_, err := service.GetAccount(context.Background(), system.ID, "user-1")
	assert.True(t, financeErrors.IsNotFoundError(err))
}

func TestListAccounts_ExcludesSystemAndNeverNil(t *testing.T) {
	accounts := infrastructure.NewMockAccountRepository()
	service := NewAccountService(accounts)

	listed, err := service.ListAccounts(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.NotNil(t, listed)
	assert.Empty(t, listed)

	accounts.AddAccount(domain.Account{UserID: "user-1", Name: "Checking"})
	accounts.AddAccount(domain.Account{UserID: "user-1", Name: domain.SystemAccountName, IsSystem: true})

	listed, err = service.ListAccounts(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Len(t, listed, 1)
	assert.Equal(t, "Checking", listed[0].Name)
}

func TestRenameAccount(t *testing.T) {
	accounts := infrastructure.NewMockAccountRepository()
	service := NewAccountService(accounts)

	account, err := service.CreateAccount(context.Background(), "user-1", "Checking")
	assert.NoError(t, err)

	renamed, err := service.RenameAccount(context.Background(), account.ID, "user-1", "Everyday")
	assert.NoError(t, err)
	assert.Equal(t, "Everyday", renamed.Name)

	_, err = service.RenameAccount(context.Background(), 9999, "user-1", "Ghost")
	assert.True(t, financeErrors.IsNotFoundError(err))
}

func TestGetOrCreateSystemAccount_CreatesOnce(t *testing.T) {
	accounts := infrastructure.NewMockAccountRepository()
	service := NewAccountService(accounts)

	first, err := service.GetOrCreateSystemAccount(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.True(t, first.IsSystem)
	assert.Equal(t, domain.SystemAccountName, first.Name)
	assert.True(t, first.Balance.IsZero())

	second, err := service.GetOrCreateSystemAccount(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	systemCount := 0
	for _, account := range accounts.Accounts {
		if account.IsSystem {
			systemCount++
		}
	}
	assert.Equal(t, 1, systemCount)
}

func TestGetOrCreateSystemAccount_LosingRaceReturnsWinner(t *testing.T) {
	accounts := infrastructure.NewMockAccountRepository()
	accounts.ConflictOnSystemSave = true
	service := NewAccountService(accounts)

	account, err := service.GetOrCreateSystemAccount(context.Background(), "user-1")

	assert.NoError(t, err)
	assert.True(t, account.IsSystem)

	systemCount := 0
	for _, stored := range accounts.Accounts {
		if stored.IsSystem {
			systemCount++
			assert.Equal(t, account.ID, stored.ID)
		}
	}
	assert.Equal(t, 1, systemCount, "losing the insert race must not duplicate the system account")
}
