package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
	"github.com/sebuszqo/ExpenseTracker/internal/finance/infrastructure"
)

func TestCreateIncome_CreditsAccount(t *testing.T) {
	accounts := infrastructure.NewMockAccountRepository()
	incomes := infrastructure.NewMockIncomeRepository(newTxDB(t))
	service := NewIncomeService(incomes, accounts)

	account := accounts.AddAccount(domain.Account{UserID: "user-1", Name: "Checking", Balance: dec("100")})

	income := &domain.Income{UserID: "user-1", AccountID: account.ID, Amount: dec("400"), Description: "Salary"}
	err := service.Create(context.Background(), income)

	assert.NoError(t, err)
	assert.True(t, accounts.Balance(account.ID).Equal(dec("500")),
		"expected balance 500, got %s", accounts.Balance(account.ID))
	assert.Len(t, incomes.Incomes, 1)
}

func TestCreateIncome_RejectsSystemAccount(t *testing.T) {
	accounts := infrastructure.NewMockAccountRepository()
	incomes := infrastructure.NewMockIncomeRepository(newTxDB(t))
	service := NewIncomeService(incomes, accounts)

	system := accounts.AddAccount(domain.Account{UserID: "user-1", Name: domain.SystemAccountName, IsSystem: true})

	err := service.Create(context.Background(), &domain.Income{
		UserID: "user-1", AccountID: system.ID, Amount: dec("10"),
	})
	assert.True(t, financeErrors.IsValidationError(err))
	assert.Empty(t, incomes.Incomes)
}

func TestUpdateIncome_SameAccountAdjustsByDifference(t *testing.T) {
	accounts := infrastructure.NewMockAccountRepository()
	incomes := infrastructure.NewMockIncomeRepository(newTxDB(t))
	service := NewIncomeService(incomes, accounts)

	account := accounts.AddAccount(domain.Account{UserID: "user-1", Name: "Checking", Balance: dec("100")})

	income := &domain.Income{UserID: "user-1", AccountID: account.ID, Amount: dec("400")}
	assert.NoError(t, service.Create(context.Background(), income))
	accounts.AdjustCalls = nil

	err := service.Update(context.Background(), &domain.Income{
		ID: income.ID, UserID: "user-1", AccountID: account.ID, Amount: dec("250"),
	})

	assert.NoError(t, err)
	assert.True(t, accounts.Balance(account.ID).Equal(dec("350")),
		"expected balance 350, got %s", accounts.Balance(account.ID))
	assert.Len(t, accounts.AdjustCalls, 1)
	assert.True(t, accounts.AdjustCalls[0].Delta.Equal(dec("-150")))
}

func TestUpdateIncome_AccountChangeReversesAndReapplies(t *testing.T) {
	accounts := infrastructure.NewMockAccountRepository()
	incomes := infrastructure.NewMockIncomeRepository(newTxDB(t))
	service := NewIncomeService(incomes, accounts)

	first := accounts.AddAccount(domain.Account{UserID: "user-1", Name: "Checking", Balance: dec("0")})
	second := accounts.AddAccount(domain.Account{UserID: "user-1", Name: "Savings", Balance: dec("0")})

	income := &domain.Income{UserID: "user-1", AccountID: first.ID, Amount: dec("400")}
	assert.NoError(t, service.Create(context.Background(), income))

	err := service.Update(context.Background(), &domain.Income{
		ID: income.ID, UserID: "user-1", AccountID: second.ID, Amount: dec("400"),
	})

	assert.NoError(t, err)
	assert.True(t, accounts.Balance(first.ID).Equal(dec("0")))
	assert.True(t, accounts.Balance(second.ID).Equal(dec("400")))
}

func TestDeleteIncome_DebitsBackAndMayOverdraw(t *testing.T) {
	accounts := infrastructure.NewMockAccountRepository()
	incomes := infrastructure.NewMockIncomeRepository(newTxDB(t))
	service := NewIncomeService(incomes, accounts)

	account := accounts.AddAccount(domain.Account{UserID: "user-1", Name: "Checking", Balance: dec("0")})

	income := &domain.Income{UserID: "user-1", AccountID: account.ID, Amount: dec("400")}
	assert.NoError(t, service.Create(context.Background(), income))

	// most of the income was spent elsewhere in the meantime
	accounts.Accounts[account.ID].Balance = dec("100")

	err := service.Delete(context.Background(), income.ID, "user-1")

	assert.NoError(t, err)
	assert.True(t, accounts.Balance(account.ID).Equal(dec("-300")),
		"income removal carries no funds check, got %s", accounts.Balance(account.ID))
	assert.Empty(t, incomes.Incomes)
}
