package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
	"github.com/sebuszqo/ExpenseTracker/internal/finance/infrastructure"
)

func newTransferService(t *testing.T) (*TransferService, *infrastructure.MockAccountRepository, *infrastructure.MockTransferRepository) {
	t.Helper()
	accounts := infrastructure.NewMockAccountRepository()
	transfers := infrastructure.NewMockTransferRepository(newTxDB(t))
	service := NewTransferService(transfers, accounts, NewAccountService(accounts))
	return service, accounts, transfers
}

func TestCreateTransfer_MovesFunds(t *testing.T) {
	service, accounts, transfers := newTransferService(t)
	from := accounts.AddAccount(domain.Account{UserID: "user-1", Name: "Checking", Balance: dec("1000")})
	to := accounts.AddAccount(domain.Account{UserID: "user-1", Name: "Savings", Balance: dec("200")})

	transfer := &domain.Transfer{UserID: "user-1", FromAccountID: from.ID, ToAccountID: to.ID, Amount: dec("300")}
	err := service.Create(context.Background(), transfer, false)

	assert.NoError(t, err)
	assert.True(t, accounts.Balance(from.ID).Equal(dec("700")),
		"expected balance 700, got %s", accounts.Balance(from.ID))
	assert.True(t, accounts.Balance(to.ID).Equal(dec("500")),
		"expected balance 500, got %s", accounts.Balance(to.ID))
	assert.Len(t, transfers.Transfers, 1)
}

func TestCreateTransfer_InsufficientFunds(t *testing.T) {
	service, accounts, transfers := newTransferService(t)
	from := accounts.AddAccount(domain.Account{UserID: "user-1", Name: "Checking", Balance: dec("1000")})
	to := accounts.AddAccount(domain.Account{UserID: "user-1", Name: "Savings", Balance: dec("200")})

	err := service.Create(context.Background(), &domain.Transfer{
		UserID: "user-1", FromAccountID: from.ID, ToAccountID: to.ID, Amount: dec("1500"),
	}, false)

	assert.True(t, financeErrors.IsInsufficientFundsError(err))
	var fundsErr *financeErrors.InsufficientFundsError
	assert.True(t, errors.As(err, &fundsErr))
	assert.Equal(t, "Checking", fundsErr.AccountName)
	assert.Equal(t, "1000", fundsErr.Balance)
	assert.Equal(t, "1500", fundsErr.Required)

	assert.True(t, accounts.Balance(from.ID).Equal(dec("1000")))
	assert.True(t, accounts.Balance(to.ID).Equal(dec("200")))
	assert.Empty(t, transfers.Transfers)
}

func TestCreateTransfer_ExactBalanceDrainsAccount(t *testing.T) {
	service, accounts, _ := newTransferService(t)
	from := accounts.AddAccount(domain.Account{UserID: "user-1", Name: "Checking", Balance: dec("1000")})
	to := accounts.AddAccount(domain.Account{UserID: "user-1", Name: "Savings", Balance: dec("0")})

	err := service.Create(context.Background(), &domain.Transfer{
		UserID: "user-1", FromAccountID: from.ID, ToAccountID: to.ID, Amount: dec("1000"),
	}, false)

	assert.NoError(t, err)
	assert.True(t, accounts.Balance(from.ID).Equal(dec("0")))
	assert.True(t, accounts.Balance(to.ID).Equal(dec("1000")))
}

func TestCreateTransfer_RejectsSystemAccountWithoutOverride(t *testing.T) {
	service, accounts, transfers := newTransferService(t)
	system := accounts.AddAccount(domain.Account{UserID: "user-1", Name: domain.SystemAccountName, IsSystem: true})
	to := accounts.AddAccount(domain.Account{UserID: "user-1", Name: "Savings", Balance: dec("0")})

	err := service.Create(context.Background(), &domain.Transfer{
		UserID: "user-1", FromAccountID: system.ID, ToAccountID: to.ID, Amount: dec("100"),
	}, false)

	assert.True(t, financeErrors.IsValidationError(err))
	assert.Empty(t, transfers.Transfers)
}

func TestCreateTransfer_SameAccountRejected(t *testing.T) {
	service, accounts, _ := newTransferService(t)
	account := accounts.AddAccount(domain.Account{UserID: "user-1", Name: "Checking", Balance: dec("1000")})

	err := service.Create(context.Background(), &domain.Transfer{
		UserID: "user-1", FromAccountID: account.ID, ToAccountID: account.ID, Amount: dec("100"),
	}, false)

	assert.True(t, financeErrors.IsValidationError(err))
	// rejected before any locking happens
	assert.Empty(t, accounts.LockCalls)
}

func TestCreateTransfer_OtherUsersAccount(t *testing.T) {
	service, accounts, transfers := newTransferService(t)
	from := accounts.AddAccount(domain.Account{UserID: "user-1", Name: "Checking", Balance: dec("1000")})
	foreign := accounts.AddAccount(domain.Account{UserID: "user-2", Name: "Savings", Balance: dec("0")})

	err := service.Create(context.Background(), &domain.Transfer{
		UserID: "user-1", FromAccountID: from.ID, ToAccountID: foreign.ID, Amount: dec("100"),
	}, false)

	assert.True(t, financeErrors.IsNotFoundError(err))
	assert.True(t, accounts.Balance(from.ID).Equal(dec("1000")))
	assert.Empty(t, transfers.Transfers)
}

func TestCreateTransfer_LockTimeout(t *testing.T) {
	service, accounts, _ := newTransferService(t)
	from := accounts.AddAccount(domain.Account{UserID: "user-1", Name: "Checking", Balance: dec("1000")})
	to := accounts.AddAccount(domain.Account{UserID: "user-1", Name: "Savings", Balance: dec("0")})
	accounts.LockErr = financeErrors.NewConcurrencyTimeoutError("Could not lock accounts in time, please retry")

	err := service.Create(context.Background(), &domain.Transfer{
		UserID: "user-1", FromAccountID: from.ID, ToAccountID: to.ID, Amount: dec("100"),
	}, false)

	assert.True(t, financeErrors.IsConcurrencyTimeoutError(err))
	assert.True(t, accounts.Balance(from.ID).Equal(dec("1000")))
}

func TestCreateTransfer_LocksBothAccountsTogether(t *testing.T) {
	service, accounts, _ := newTransferService(t)
	from := accounts.AddAccount(domain.Account{UserID: "user-1", Name: "Checking", Balance: dec("1000")})
	to := accounts.AddAccount(domain.Account{UserID: "user-1", Name: "Savings", Balance: dec("0")})

	err := service.Create(context.Background(), &domain.Transfer{
		UserID: "user-1", FromAccountID: from.ID, ToAccountID: to.ID, Amount: dec("100"),
	}, false)

	assert.NoError(t, err)
	assert.Len(t, accounts.LockCalls, 1)
	assert.ElementsMatch(t, []int64{from.ID, to.ID}, accounts.LockCalls[0])
}

func TestUpdateTransfer_AmountChange(t *testing.T) {
	service, accounts, transfers := newTransferService(t)
	from := accounts.AddAccount(domain.Account{UserID: "user-1", Name: "Checking", Balance: dec("1000")})
	to := accounts.AddAccount(domain.Account{UserID: "user-1", Name: "Savings", Balance: dec("0")})

	transfer := &domain.Transfer{UserID: "user-1", FromAccountID: from.ID, ToAccountID: to.ID, Amount: dec("800")}
	assert.NoError(t, service.Create(context.Background(), transfer, false))

	err := service.Update(context.Background(), &domain.Transfer{
		ID: transfer.ID, UserID: "user-1", Amount: dec("500"),
	}, false)

	assert.NoError(t, err)
	assert.True(t, accounts.Balance(from.ID).Equal(dec("500")),
		"expected balance 500, got %s", accounts.Balance(from.ID))
	assert.True(t, accounts.Balance(to.ID).Equal(dec("500")))
	assert.True(t, transfers.Transfers[transfer.ID].Amount.Equal(dec("500")))
}

func TestUpdateTransfer_FundsCheckedAgainstReversedBalance(t *testing.T) {
	service, accounts, transfers := newTransferService(t)
	from := accounts.AddAccount(domain.Account{UserID: "user-1", Name: "Checking", Balance: dec("1000")})
	to := accounts.AddAccount(domain.Account{UserID: "user-1", Name: "Savings", Balance: dec("0")})

	transfer := &domain.Transfer{UserID: "user-1", FromAccountID: from.ID, ToAccountID: to.ID, Amount: dec("800")}
	assert.NoError(t, service.Create(context.Background(), transfer, false))
	assert.True(t, accounts.Balance(from.ID).Equal(dec("200")))

	// 900 exceeds the current balance of 200 but not the reversed balance of
	// 1000, so the raise must be accepted
	err := service.Update(context.Background(), &domain.Transfer{
		ID: transfer.ID, UserID: "user-1", Amount: dec("900"),
	}, false)

	assert.NoError(t, err)
	assert.True(t, accounts.Balance(from.ID).Equal(dec("100")),
		"expected balance 100, got %s", accounts.Balance(from.ID))
	assert.True(t, accounts.Balance(to.ID).Equal(dec("900")))
	assert.True(t, transfers.Transfers[transfer.ID].Amount.Equal(dec("900")))
}

func TestUpdateTransfer_RejectedEditRestoresState(t *testing.T) {
	service, accounts, transfers := newTransferService(t)
	from := accounts.AddAccount(domain.Account{UserID: "user-1", Name: "Checking", Balance: dec("1000")})
	to := accounts.AddAccount(domain.Account{UserID: "user-1", Name: "Savings", Balance: dec("0")})

	transfer := &domain.Transfer{UserID: "user-1", FromAccountID: from.ID, ToAccountID: to.ID, Amount: dec("800")}
	assert.NoError(t, service.Create(context.Background(), transfer, false))

	err := service.Update(context.Background(), &domain.Transfer{
		ID: transfer.ID, UserID: "user-1", Amount: dec("1500"),
	}, false)

	assert.True(t, financeErrors.IsInsufficientFundsError(err))
	var fundsErr *financeErrors.InsufficientFundsError
	assert.True(t, errors.As(err, &fundsErr))
	assert.Equal(t, "1000", fundsErr.Balance, "the reported balance is the reversed one")

	assert.True(t, accounts.Balance(from.ID).Equal(dec("200")),
		"rejected edit must leave balances untouched, got %s", accounts.Balance(from.ID))
	assert.True(t, accounts.Balance(to.ID).Equal(dec("800")))
	assert.True(t, transfers.Transfers[transfer.ID].Amount.Equal(dec("800")))
}

func TestDeleteTransfer_ReversesBothSides(t *testing.T) {
	service, accounts, transfers := newTransferService(t)
	from := accounts.AddAccount(domain.Account{UserID: "user-1", Name: "Checking", Balance: dec("1000")})
	to := accounts.AddAccount(domain.Account{UserID: "user-1", Name: "Savings", Balance: dec("0")})

	transfer := &domain.Transfer{UserID: "user-1", FromAccountID: from.ID, ToAccountID: to.ID, Amount: dec("800")}
	assert.NoError(t, service.Create(context.Background(), transfer, false))

	// the receiving side already spent most of the money
	accounts.Accounts[to.ID].Balance = dec("100")

	err := service.Delete(context.Background(), transfer.ID, "user-1")

	assert.NoError(t, err)
	assert.True(t, accounts.Balance(from.ID).Equal(dec("1000")))
	assert.True(t, accounts.Balance(to.ID).Equal(dec("-700")),
		"removal carries no funds check, got %s", accounts.Balance(to.ID))
	assert.Empty(t, transfers.Transfers)
}

func TestCreateSalary_ProvisionsSystemAccount(t *testing.T) {
	service, accounts, transfers := newTransferService(t)
	target := accounts.AddAccount(domain.Account{UserID: "user-1", Name: "Checking", Balance: dec("0")})

	transfer, err := service.CreateSalary(context.Background(), "user-1", target.ID, dec("5000"), "June payroll")

	assert.NoError(t, err)
	system, findErr := accounts.FindSystemAccount(context.Background(), "user-1")
	assert.NoError(t, findErr)
	assert.Equal(t, system.ID, transfer.FromAccountID)
	assert.Equal(t, target.ID, transfer.ToAccountID)
	assert.Equal(t, "June payroll", transfer.Description)
	assert.True(t, accounts.Balance(target.ID).Equal(dec("5000")))
	assert.True(t, accounts.Balance(system.ID).Equal(dec("-5000")),
		"the system account absorbs the debit and may go negative")
	assert.Len(t, transfers.Transfers, 1)
}

func TestCreateSalary_DefaultNote(t *testing.T) {
	service, accounts, _ := newTransferService(t)
	target := accounts.AddAccount(domain.Account{UserID: "user-1", Name: "Checking", Balance: dec("0")})

	transfer, err := service.CreateSalary(context.Background(), "user-1", target.ID, dec("1000"), "")

	assert.NoError(t, err)
	assert.Equal(t, "Salary", transfer.Description)
}

func TestCreateSalary_RejectsSystemTarget(t *testing.T) {
	service, accounts, _ := newTransferService(t)
	system := accounts.AddAccount(domain.Account{UserID: "user-1", Name: domain.SystemAccountName, IsSystem: true})

	_, err := service.CreateSalary(context.Background(), "user-1", system.ID, dec("1000"), "")

	assert.True(t, financeErrors.IsNotFoundError(err))
}

func TestCreateRandomSalary_BoundsAndScale(t *testing.T) {
	service, accounts, _ := newTransferService(t)
	target := accounts.AddAccount(domain.Account{UserID: "user-1", Name: "Checking", Balance: dec("0")})

	transfer, err := service.CreateRandomSalary(context.Background(), "user-1", target.ID, dec("100"), dec("200"))

	assert.NoError(t, err)
	assert.True(t, transfer.Amount.GreaterThanOrEqual(dec("100")))
	assert.True(t, transfer.Amount.LessThanOrEqual(dec("200")))
	assert.True(t, transfer.Amount.Exponent() >= -2, "amount must have at most two decimals, got %s", transfer.Amount)
}

func TestCreateRandomSalary_InvalidBounds(t *testing.T) {
	service, accounts, _ := newTransferService(t)
	target := accounts.AddAccount(domain.Account{UserID: "user-1", Name: "Checking", Balance: dec("0")})

	_, err := service.CreateRandomSalary(context.Background(), "user-1", target.ID, dec("200"), dec("100"))
	assert.True(t, financeErrors.IsValidationError(err))

	_, err = service.CreateRandomSalary(context.Background(), "user-1", target.ID, dec("0"), dec("100"))
	assert.True(t, financeErrors.IsValidationError(err))
}
