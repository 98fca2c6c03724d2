//go:build integration

package application

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
	"github.com/sebuszqo/ExpenseTracker/internal/finance/infrastructure"
)

var integrationDB *sql.DB

func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("expense_tracker_test"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		panic("could not start postgres container: " + err.Error())
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		panic("could not build connection string: " + err.Error())
	}
	integrationDB, err = sql.Open("pgx", connStr)
	if err != nil {
		panic("could not open database: " + err.Error())
	}

	schema, err := os.ReadFile("../../../db/schema.sql")
	if err != nil {
		panic("could not read schema: " + err.Error())
	}
	if _, err := integrationDB.ExecContext(ctx, string(schema)); err != nil {
		panic("could not apply schema: " + err.Error())
	}

	code := m.Run()

	_ = integrationDB.Close()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

type engine struct {
	accounts  *AccountService
	expenses  *ExpenseService
	incomes   *IncomeService
	transfers *TransferService

	accountRepo *infrastructure.AccountRepository
}

func setupEngine(t *testing.T) *engine {
	t.Helper()
	_, err := integrationDB.Exec(
		"TRUNCATE transfers, incomes, expenses, categories, accounts, auth_sessions, verification_codes, users CASCADE")
	require.NoError(t, err)

	accountRepo := infrastructure.NewAccountRepository(integrationDB, 5*time.Second)
	categoryRepo := infrastructure.NewCategoryRepository(integrationDB)
	expenseRepo := infrastructure.NewExpenseRepository(integrationDB)
	incomeRepo := infrastructure.NewIncomeRepository(integrationDB)
	transferRepo := infrastructure.NewTransferRepository(integrationDB)

	accountService := NewAccountService(accountRepo)
	categoryService := NewCategoryService(categoryRepo)
	return &engine{
		accounts:    accountService,
		expenses:    NewExpenseService(expenseRepo, accountRepo, categoryService),
		incomes:     NewIncomeService(incomeRepo, accountRepo),
		transfers:   NewTransferService(transferRepo, accountRepo, accountService),
		accountRepo: accountRepo,
	}
}

func createUser(t *testing.T) string {
	t.Helper()
	userID := uuid.NewString()
	_, err := integrationDB.Exec(`
		INSERT INTO users (id, username, email, password_hash, is_verified)
		VALUES ($1, $2, $3, 'hash', TRUE)`,
		userID, "user-"+userID[:8], userID[:8]+"@example.com")
	require.NoError(t, err)
	return userID
}

func createAccount(t *testing.T, userID, name, balance string) int64 {
	t.Helper()
	var accountID int64
	err := integrationDB.QueryRow(`
		INSERT INTO accounts (user_id, name, balance) VALUES ($1, $2, $3) RETURNING id`,
		userID, name, balance).Scan(&accountID)
	require.NoError(t, err)
	return accountID
}

func createCategory(t *testing.T, userID, name string) int64 {
	t.Helper()
	var categoryID int64
	err := integrationDB.QueryRow(`
		INSERT INTO categories (user_id, name) VALUES ($1, $2) RETURNING id`,
		userID, name).Scan(&categoryID)
	require.NoError(t, err)
	return categoryID
}

func accountBalance(t *testing.T, accountID int64) decimal.Decimal {
	t.Helper()
	var raw string
	err := integrationDB.QueryRow("SELECT balance FROM accounts WHERE id = $1", accountID).Scan(&raw)
	require.NoError(t, err)
	balance, err := decimal.NewFromString(raw)
	require.NoError(t, err)
	return balance
}

func requireBalance(t *testing.T, accountID int64, want string) {
	t.Helper()
	balance := accountBalance(t, accountID)
	require.True(t, balance.Equal(dec(want)), "account %d: want balance %s, got %s", accountID, want, balance)
}

func TestIntegration_ExpenseEditAppliesDifference(t *testing.T) {
	e := setupEngine(t)
	ctx := context.Background()
	userID := createUser(t)
	accountID := createAccount(t, userID, "Checking", "500.00")
	categoryID := createCategory(t, userID, "Food")

	expense := &domain.Expense{UserID: userID, AccountID: accountID, CategoryID: categoryID, Amount: dec("100")}
	require.NoError(t, e.expenses.Create(ctx, expense))
	requireBalance(t, accountID, "400.00")

	edited := &domain.Expense{ID: expense.ID, UserID: userID, AccountID: accountID, CategoryID: categoryID, Amount: dec("150")}
	require.NoError(t, e.expenses.Update(ctx, edited))
	requireBalance(t, accountID, "350.00")
}

func TestIntegration_IncomeReassignmentMovesEffect(t *testing.T) {
	e := setupEngine(t)
	ctx := context.Background()
	userID := createUser(t)
	accountA := createAccount(t, userID, "Checking", "1000.00")
	accountB := createAccount(t, userID, "Savings", "50.00")

	income := &domain.Income{UserID: userID, AccountID: accountA, Amount: dec("200")}
	require.NoError(t, e.incomes.Create(ctx, income))
	requireBalance(t, accountA, "1200.00")

	edited := &domain.Income{ID: income.ID, UserID: userID, AccountID: accountB, Amount: dec("200")}
	require.NoError(t, e.incomes.Update(ctx, edited))
	requireBalance(t, accountA, "1000.00")
	requireBalance(t, accountB, "250.00")
}

func TestIntegration_TransferDeleteRestoresBothAccounts(t *testing.T) {
	e := setupEngine(t)
	ctx := context.Background()
	userID := createUser(t)
	accountA := createAccount(t, userID, "Checking", "1000.00")
	accountB := createAccount(t, userID, "Savings", "200.00")

	transfer := &domain.Transfer{UserID: userID, FromAccountID: accountA, ToAccountID: accountB, Amount: dec("300")}
	require.NoError(t, e.transfers.Create(ctx, transfer, false))
	requireBalance(t, accountA, "700.00")
	requireBalance(t, accountB, "500.00")

	require.NoError(t, e.transfers.Delete(ctx, transfer.ID, userID))
	requireBalance(t, accountA, "1000.00")
	requireBalance(t, accountB, "200.00")
}

func TestIntegration_RejectedTransferUpdateChangesNothing(t *testing.T) {
	e := setupEngine(t)
	ctx := context.Background()
	userID := createUser(t)
	accountA := createAccount(t, userID, "Checking", "1000.00")
	accountB := createAccount(t, userID, "Savings", "200.00")

	transfer := &domain.Transfer{UserID: userID, FromAccountID: accountA, ToAccountID: accountB, Amount: dec("300")}
	require.NoError(t, e.transfers.Create(ctx, transfer, false))

	// 700 available plus the reversed 300 = 1000, so 1000.01 must be rejected
	edited := &domain.Transfer{ID: transfer.ID, UserID: userID, FromAccountID: accountA, ToAccountID: accountB, Amount: dec("1000.01")}
	err := e.transfers.Update(ctx, edited, false)
	require.True(t, financeErrors.IsInsufficientFundsError(err), "expected insufficient funds, got %v", err)

	requireBalance(t, accountA, "700.00")
	requireBalance(t, accountB, "500.00")

	stored, err := e.transfers.Get(ctx, transfer.ID, userID)
	require.NoError(t, err)
	assert.True(t, stored.Amount.Equal(dec("300")))
}

func TestIntegration_SystemAccountMayGoArbitrarilyNegative(t *testing.T) {
	e := setupEngine(t)
	ctx := context.Background()
	userID := createUser(t)
	accountID := createAccount(t, userID, "Checking", "0.00")

	salary, err := e.transfers.CreateSalary(ctx, userID, accountID, dec("1000000"), "Salary")
	require.NoError(t, err)
	require.NotEmpty(t, salary.ID)
	requireBalance(t, accountID, "1000000.00")

	system, err := e.accounts.GetOrCreateSystemAccount(ctx, userID)
	require.NoError(t, err)
	requireBalance(t, system.ID, "-1000000.00")
}

func TestIntegration_SystemAccountProvisionerIsIdempotentUnderConcurrency(t *testing.T) {
	e := setupEngine(t)
	ctx := context.Background()
	userID := createUser(t)

	const callers = 8
	ids := make(chan int64, callers)
	errs := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			account, err := e.accounts.GetOrCreateSystemAccount(ctx, userID)
			if err != nil {
				errs <- err
				return
			}
			ids <- account.ID
		}()
	}
	wg.Wait()
	close(ids)
	close(errs)

	for err := range errs {
		t.Fatalf("provisioner call failed: %v", err)
	}
	seen := map[int64]bool{}
	for id := range ids {
		seen[id] = true
	}
	require.Len(t, seen, 1, "concurrent first calls must converge on one system account")

	var count int
	require.NoError(t, integrationDB.QueryRow(
		"SELECT count(*) FROM accounts WHERE user_id = $1 AND is_system", userID).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestIntegration_ConcurrentTransfersSerialize(t *testing.T) {
	e := setupEngine(t)
	ctx := context.Background()
	userID := createUser(t)
	accountA := createAccount(t, userID, "Checking", "10000.00")
	accountB := createAccount(t, userID, "Savings", "10000.00")

	// Half the workers move A→B, half B→A, all over the same locked pair.
	// Any lost update leaves the total or the per-account sums off.
	const workers = 10
	amount := dec("7")
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		from, to := accountA, accountB
		if i%2 == 1 {
			from, to = accountB, accountA
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			transfer := &domain.Transfer{UserID: userID, FromAccountID: from, ToAccountID: to, Amount: amount}
			if err := e.transfers.Create(ctx, transfer, false); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent transfer failed: %v", err)
	}

	// 5 each way at the same amount nets to zero
	requireBalance(t, accountA, "10000.00")
	requireBalance(t, accountB, "10000.00")
	assertNoBalanceDrift(t, e)
}

func TestIntegration_ConcurrentTransferUpdatesSerialize(t *testing.T) {
	e := setupEngine(t)
	ctx := context.Background()
	userID := createUser(t)
	accountA := createAccount(t, userID, "Checking", "10000.00")
	accountB := createAccount(t, userID, "Savings", "10000.00")

	// Two transfers over the same pair in opposite roles, each about to be
	// edited concurrently. Every update reverses its stored effect and
	// re-reads under lock, so a lost update would leave one edit's deltas
	// missing from the final balances.
	forward := &domain.Transfer{UserID: userID, FromAccountID: accountA, ToAccountID: accountB, Amount: dec("100")}
	require.NoError(t, e.transfers.Create(ctx, forward, false))
	backward := &domain.Transfer{UserID: userID, FromAccountID: accountB, ToAccountID: accountA, Amount: dec("100")}
	require.NoError(t, e.transfers.Create(ctx, backward, false))

	edits := []*domain.Transfer{
		{ID: forward.ID, UserID: userID, FromAccountID: accountA, ToAccountID: accountB, Amount: dec("250")},
		{ID: backward.ID, UserID: userID, FromAccountID: accountB, ToAccountID: accountA, Amount: dec("400")},
	}
	var wg sync.WaitGroup
	errs := make(chan error, len(edits))
	for _, edit := range edits {
		edit := edit
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := e.transfers.Update(ctx, edit, false); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent transfer update failed: %v", err)
	}

	// Both sequential orders end with A−250+400 and B+250−400 applied.
	requireBalance(t, accountA, "10150.00")
	requireBalance(t, accountB, "9850.00")

	storedForward, err := e.transfers.Get(ctx, forward.ID, userID)
	require.NoError(t, err)
	assert.True(t, storedForward.Amount.Equal(dec("250")))
	storedBackward, err := e.transfers.Get(ctx, backward.ID, userID)
	require.NoError(t, err)
	assert.True(t, storedBackward.Amount.Equal(dec("400")))
	assertNoBalanceDrift(t, e)
}

func TestIntegration_BalancesMatchEntrySums(t *testing.T) {
	e := setupEngine(t)
	ctx := context.Background()
	userID := createUser(t)
	accountA := createAccount(t, userID, "Checking", "0.00")
	accountB := createAccount(t, userID, "Savings", "0.00")
	categoryID := createCategory(t, userID, "Food")

	require.NoError(t, e.incomes.Create(ctx, &domain.Income{UserID: userID, AccountID: accountA, Amount: dec("900")}))
	require.NoError(t, e.expenses.Create(ctx, &domain.Expense{UserID: userID, AccountID: accountA, CategoryID: categoryID, Amount: dec("120.50")}))
	require.NoError(t, e.transfers.Create(ctx, &domain.Transfer{UserID: userID, FromAccountID: accountA, ToAccountID: accountB, Amount: dec("300")}, false))
	_, err := e.transfers.CreateSalary(ctx, userID, accountB, dec("55.25"), "Salary")
	require.NoError(t, err)

	requireBalance(t, accountA, "479.50")
	requireBalance(t, accountB, "355.25")
	assertNoBalanceDrift(t, e)
}

func assertNoBalanceDrift(t *testing.T, e *engine) {
	t.Helper()
	drifts, err := e.accountRepo.FindBalanceDrift(context.Background())
	require.NoError(t, err)
	for _, drift := range drifts {
		t.Errorf("account %d (%s): balance %s but entry sum %s",
			drift.AccountID, drift.Name, drift.Balance, drift.EntrySum)
	}
}

func TestIntegration_AccountDeleteRejectedWhileReferenced(t *testing.T) {
	e := setupEngine(t)
	ctx := context.Background()
	userID := createUser(t)
	accountID := createAccount(t, userID, "Checking", "100.00")

	require.NoError(t, e.incomes.Create(ctx, &domain.Income{UserID: userID, AccountID: accountID, Amount: dec("10")}))

	err := e.accounts.DeleteAccount(ctx, accountID, userID)
	require.True(t, financeErrors.IsValidationError(err), "expected validation error, got %v", err)
	requireBalance(t, accountID, "110.00")
}

func TestIntegration_DuplicateAccountNameRejected(t *testing.T) {
	e := setupEngine(t)
	ctx := context.Background()
	userID := createUser(t)
	createAccount(t, userID, "Checking", "0.00")

	_, err := e.accounts.CreateAccount(ctx, userID, "Checking")
	require.True(t, financeErrors.IsValidationError(err), "expected validation error, got %v", err)
}

func TestIntegration_ForeignAccountInvisible(t *testing.T) {
	e := setupEngine(t)
	ctx := context.Background()
	owner := createUser(t)
	intruder := createUser(t)
	accountID := createAccount(t, owner, "Checking", "100.00")

	_, err := e.accounts.GetAccount(ctx, accountID, intruder)
	require.True(t, financeErrors.IsNotFoundError(err), "expected not found, got %v", err)

	err = e.expenses.Create(ctx, &domain.Expense{
		UserID: intruder, AccountID: accountID, CategoryID: createCategory(t, intruder, "Food"), Amount: dec("10"),
	})
	require.True(t, financeErrors.IsNotFoundError(err), "expected not found, got %v", err)
	requireBalance(t, accountID, "100.00")
}
