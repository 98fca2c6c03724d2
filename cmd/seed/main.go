// Command seed fills the configured database with a verified demo user and a
// spread of entries for manual testing. Entries go through the engine services
// so every cached balance matches its ledger.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	database "github.com/sebuszqo/ExpenseTracker/db"
	"github.com/sebuszqo/ExpenseTracker/internal/finance/application"
	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
	"github.com/sebuszqo/ExpenseTracker/internal/finance/infrastructure"
)

const (
	seedUsername = "test"
	seedEmail    = "test@example.com"
	seedPassword = "test123"

	incomeCount   = 10
	expenseCount  = 30
	transferCount = 5
	historyDays   = 180
)

var categoryNames = []string{"Food", "Travel", "Rent", "Shopping", "Utilities", "Entertainment", "Health"}

var incomeSources = []string{"Salary", "Freelance Project", "Bonus", "Stock Dividend", "Gift from Family"}

var expenseDescriptions = map[string][]string{
	"Food":          {"Groceries", "Dinner out", "Coffee"},
	"Travel":        {"Train ticket", "Fuel", "Cab ride"},
	"Rent":          {"Monthly rent"},
	"Shopping":      {"Clothes", "Electronics", "Household items"},
	"Utilities":     {"Electricity bill", "Internet bill", "Water bill"},
	"Entertainment": {"Movie tickets", "Streaming subscription", "Concert"},
	"Health":        {"Pharmacy", "Doctor visit", "Gym membership"},
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbService, err := database.NewDBService()
	if err != nil {
		log.Fatalf("Could not initialize database connection: %v", err)
	}
	defer dbService.Close()

	ctx := context.Background()

	userID, err := ensureUser(ctx, dbService.DB)
	if err != nil {
		log.Fatalf("Could not ensure seed user: %v", err)
	}

	accountRepo := infrastructure.NewAccountRepository(dbService.DB, 5*time.Second)
	categoryRepo := infrastructure.NewCategoryRepository(dbService.DB)
	expenseRepo := infrastructure.NewExpenseRepository(dbService.DB)
	incomeRepo := infrastructure.NewIncomeRepository(dbService.DB)
	transferRepo := infrastructure.NewTransferRepository(dbService.DB)

	accountService := application.NewAccountService(accountRepo)
	categoryService := application.NewCategoryService(categoryRepo)
	expenseService := application.NewExpenseService(expenseRepo, accountRepo, categoryService)
	incomeService := application.NewIncomeService(incomeRepo, accountRepo)
	transferService := application.NewTransferService(transferRepo, accountRepo, accountService)

	categories, err := ensureCategories(ctx, categoryService, userID)
	if err != nil {
		log.Fatalf("Could not ensure categories: %v", err)
	}

	savings, err := ensureAccount(ctx, accountService, transferService, userID, "SBI Savings", decimal.NewFromInt(15000))
	if err != nil {
		log.Fatalf("Could not ensure savings account: %v", err)
	}
	checking, err := ensureAccount(ctx, accountService, transferService, userID, "HDFC Checking", decimal.NewFromInt(8000))
	if err != nil {
		log.Fatalf("Could not ensure checking account: %v", err)
	}

	existing, err := expenseService.List(ctx, userID)
	if err != nil {
		log.Fatalf("Could not list expenses: %v", err)
	}
	if len(existing) > 0 {
		log.Printf("User %q already has %d expenses, skipping entry seeding", seedUsername, len(existing))
		return
	}

	accountIDs := []int64{savings.ID, checking.ID}

	for i := 0; i < incomeCount; i++ {
		income := &domain.Income{
			UserID:      userID,
			AccountID:   accountIDs[rand.Intn(len(accountIDs))],
			Amount:      randomAmount(10000, 50000),
			Description: incomeSources[rand.Intn(len(incomeSources))],
			CreatedAt:   randomPastTime(),
		}
		if err := incomeService.Create(ctx, income); err != nil {
			log.Fatalf("Could not create income: %v", err)
		}
	}

	for i := 0; i < transferCount; i++ {
		transfer := &domain.Transfer{
			UserID:        userID,
			FromAccountID: savings.ID,
			ToAccountID:   checking.ID,
			Amount:        randomAmount(500, 3000),
			Description:   "Monthly savings move",
			CreatedAt:     randomPastTime(),
		}
		if err := transferService.Create(ctx, transfer, false); err != nil {
			log.Fatalf("Could not create transfer: %v", err)
		}
	}

	for i := 0; i < expenseCount; i++ {
		category := categories[rand.Intn(len(categories))]
		descriptions := expenseDescriptions[category.Name]
		expense := &domain.Expense{
			UserID:      userID,
			AccountID:   accountIDs[rand.Intn(len(accountIDs))],
			CategoryID:  category.ID,
			Amount:      randomAmount(100, 5000),
			Description: descriptions[rand.Intn(len(descriptions))],
			CreatedAt:   randomPastTime(),
		}
		if err := expenseService.Create(ctx, expense); err != nil {
			log.Fatalf("Could not create expense: %v", err)
		}
	}

	log.Printf("Seeded user %q with %d incomes, %d expenses and %d transfers", seedUsername, incomeCount, expenseCount, transferCount)
}

// ensureUser inserts the demo user directly. The registration service would
// refuse the short fixture password and send a verification email, neither of
// which is wanted here.
func ensureUser(ctx context.Context, db *sql.DB) (string, error) {
	var id string
	err := db.QueryRowContext(ctx, `SELECT id FROM users WHERE username = $1`, seedUsername).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), 12)
	if err != nil {
		return "", err
	}
	id = uuid.NewString()
	_, err = db.ExecContext(ctx, `
		INSERT INTO users (id, email, username, password_hash, is_verified)
		VALUES ($1, $2, $3, $4, TRUE)`,
		id, seedEmail, seedUsername, string(hash))
	if err != nil {
		return "", err
	}
	log.Printf("Created user %q", seedUsername)
	return id, nil
}

func ensureCategories(ctx context.Context, service *application.CategoryService, userID string) ([]domain.Category, error) {
	existing, err := service.ListCategories(ctx, userID)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]domain.Category, len(existing))
	for _, category := range existing {
		byName[category.Name] = category
	}

	categories := make([]domain.Category, 0, len(categoryNames))
	for _, name := range categoryNames {
		if category, ok := byName[name]; ok {
			categories = append(categories, category)
			continue
		}
		created, err := service.CreateCategory(ctx, userID, name)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *created)
	}
	return categories, nil
}

// ensureAccount creates the account if missing and funds it with an opening
// salary so the balance matches the transfer row backing it.
func ensureAccount(
	ctx context.Context,
	accountService *application.AccountService,
	transferService *application.TransferService,
	userID, name string,
	openingBalance decimal.Decimal,
) (*domain.Account, error) {
	existing, err := accountService.ListAccounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		if existing[i].Name == name {
			return &existing[i], nil
		}
	}

	account, err := accountService.CreateAccount(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	if _, err := transferService.CreateSalary(ctx, userID, account.ID, openingBalance, "Opening balance"); err != nil {
		return nil, err
	}
	account.Balance = openingBalance
	log.Printf("Created account %q with opening balance %s", name, openingBalance.StringFixed(2))
	return account, nil
}

func randomAmount(min, max float64) decimal.Decimal {
	return decimal.NewFromFloat(min + rand.Float64()*(max-min)).Round(2)
}

func randomPastTime() time.Time {
	now := time.Now().UTC()
	offset := time.Duration(rand.Int63n(int64(historyDays) * int64(24*time.Hour)))
	return now.Add(-offset)
}
