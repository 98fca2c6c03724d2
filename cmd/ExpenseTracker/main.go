package main

import (
	"context"
	"encoding/json"
	"net/http"
	_ "net/http/pprof"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	database "github.com/sebuszqo/ExpenseTracker/db"
	"github.com/sebuszqo/ExpenseTracker/internal/auth"
	emailService "github.com/sebuszqo/ExpenseTracker/internal/email"
	"github.com/sebuszqo/ExpenseTracker/internal/finance/application"
	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
	"github.com/sebuszqo/ExpenseTracker/internal/finance/infrastructure"
	"github.com/sebuszqo/ExpenseTracker/internal/finance/interfaces"
	"github.com/sebuszqo/ExpenseTracker/internal/user"
)

const defaultLockTimeoutMS = 5000

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, `{"status":"error","message":"Internal Server Error"}`, http.StatusInternalServerError)
	}
}

func respondError(w http.ResponseWriter, status int, message string, errors ...[]string) {
	payload := map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	}
	if len(errors) > 0 && len(errors[0]) > 0 {
		payload["errors"] = errors[0]
	}
	respondJSON(w, status, payload)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.WithFields(log.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Info("request started")
		next.ServeHTTP(w, r)
		log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		}).Info("request completed")
	})
}

type Server struct {
	router          *http.ServeMux
	dbService       *database.DBService
	authHandler     *auth.Handler
	userHandler     *user.Handler
	authService     auth.Service
	accountHandler  *interfaces.AccountHandler
	categoryHandler *interfaces.CategoryHandler
	expenseHandler  *interfaces.ExpenseHandler
	incomeHandler   *interfaces.IncomeHandler
	transferHandler *interfaces.TransferHandler
	reportHandler   *interfaces.ReportHandler
}

func NewServer(
	dbService *database.DBService,
	authHandler *auth.Handler,
	userHandler *user.Handler,
	authService auth.Service,
	accountHandler *interfaces.AccountHandler,
	categoryHandler *interfaces.CategoryHandler,
	expenseHandler *interfaces.ExpenseHandler,
	incomeHandler *interfaces.IncomeHandler,
	transferHandler *interfaces.TransferHandler,
	reportHandler *interfaces.ReportHandler,
) *Server {
	return &Server{
		router:          http.NewServeMux(),
		dbService:       dbService,
		authHandler:     authHandler,
		userHandler:     userHandler,
		authService:     authService,
		accountHandler:  accountHandler,
		categoryHandler: categoryHandler,
		expenseHandler:  expenseHandler,
		incomeHandler:   incomeHandler,
		transferHandler: transferHandler,
		reportHandler:   reportHandler,
	}
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	respondError(w, http.StatusNotFound, "Not Found")
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.dbService.Health())
}

func checkConfiguration() {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, relying on environment variables")
	}
	if os.Getenv("JWT_SECRET") == "" {
		log.Fatal("JWT_SECRET environment variable is required")
	}
}

func configureLogging() {
	log.SetFormatter(&log.JSONFormatter{})
	if level, err := log.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}
}

func lockTimeoutFromEnv() time.Duration {
	ms := defaultLockTimeoutMS
	if raw := os.Getenv("LOCK_TIMEOUT_MS"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			log.Warnf("Invalid LOCK_TIMEOUT_MS %q, using default %d", raw, defaultLockTimeoutMS)
		} else {
			ms = parsed
		}
	}
	return time.Duration(ms) * time.Millisecond
}

func (s *Server) RegisterRoutes() {
	mainRouter := http.NewServeMux()
	authRoutes := http.NewServeMux()
	protectedRoutes := http.NewServeMux()

	authMiddleware := s.authService.JWTAccessTokenMiddleware()
	refreshMiddleware := s.authService.JWTRefreshTokenMiddleware()

	authRoutes.HandleFunc("POST /api/auth/register", s.userHandler.HandleRegister)
	authRoutes.HandleFunc("POST /api/auth/login", s.authHandler.HandleLogin)
	authRoutes.HandleFunc("POST /api/auth/verify-email", s.userHandler.HandleVerifyEmail)
	authRoutes.HandleFunc("POST /api/auth/resend-code", s.userHandler.HandleResendVerificationCode)
	authRoutes.Handle("POST /api/auth/refresh", refreshMiddleware(http.HandlerFunc(s.authHandler.HandleRefresh)))
	authRoutes.HandleFunc("POST /api/auth/logout", s.authHandler.HandleLogout)

	protectedRoutes.Handle("POST /api/2fa/enable", authMiddleware(http.HandlerFunc(s.authHandler.HandleEnableTwoFactor)))
	protectedRoutes.Handle("POST /api/2fa/confirm", authMiddleware(http.HandlerFunc(s.authHandler.HandleConfirmTwoFactor)))
	protectedRoutes.Handle("DELETE /api/2fa/disable", authMiddleware(http.HandlerFunc(s.authHandler.HandleDisableTwoFactor)))

	protectedRoutes.Handle("GET /api/profile", authMiddleware(http.HandlerFunc(s.userHandler.HandleGetUserProfile)))
	protectedRoutes.Handle("POST /api/change-password", authMiddleware(http.HandlerFunc(s.userHandler.HandleChangePassword)))

	protectedRoutes.Handle("POST /api/accounts", authMiddleware(http.HandlerFunc(s.accountHandler.CreateAccount)))
	protectedRoutes.Handle("GET /api/accounts", authMiddleware(http.HandlerFunc(s.accountHandler.ListAccounts)))
	protectedRoutes.Handle("GET /api/accounts/{id}", authMiddleware(http.HandlerFunc(s.accountHandler.GetAccount)))
	protectedRoutes.Handle("PUT /api/accounts/{id}", authMiddleware(http.HandlerFunc(s.accountHandler.UpdateAccount)))
	protectedRoutes.Handle("DELETE /api/accounts/{id}", authMiddleware(http.HandlerFunc(s.accountHandler.DeleteAccount)))

	protectedRoutes.Handle("POST /api/categories", authMiddleware(http.HandlerFunc(s.categoryHandler.CreateCategory)))
	protectedRoutes.Handle("GET /api/categories", authMiddleware(http.HandlerFunc(s.categoryHandler.ListCategories)))
	protectedRoutes.Handle("GET /api/categories/{id}", authMiddleware(http.HandlerFunc(s.categoryHandler.GetCategory)))
	protectedRoutes.Handle("PUT /api/categories/{id}", authMiddleware(http.HandlerFunc(s.categoryHandler.UpdateCategory)))
	protectedRoutes.Handle("DELETE /api/categories/{id}", authMiddleware(http.HandlerFunc(s.categoryHandler.DeleteCategory)))

	protectedRoutes.Handle("POST /api/expenses", authMiddleware(http.HandlerFunc(s.expenseHandler.CreateExpense)))
	protectedRoutes.Handle("GET /api/expenses", authMiddleware(http.HandlerFunc(s.expenseHandler.ListExpenses)))
	protectedRoutes.Handle("GET /api/expenses/totals_by_category", authMiddleware(http.HandlerFunc(s.reportHandler.GetExpenseTotalsByCategory)))
	protectedRoutes.Handle("GET /api/expenses/monthly-cashflow", authMiddleware(http.HandlerFunc(s.reportHandler.GetMonthlyCashflow)))
	protectedRoutes.Handle("GET /api/expenses/{id}", authMiddleware(http.HandlerFunc(s.expenseHandler.GetExpense)))
	protectedRoutes.Handle("PUT /api/expenses/{id}", authMiddleware(http.HandlerFunc(s.expenseHandler.UpdateExpense)))
	protectedRoutes.Handle("DELETE /api/expenses/{id}", authMiddleware(http.HandlerFunc(s.expenseHandler.DeleteExpense)))

	protectedRoutes.Handle("POST /api/incomes", authMiddleware(http.HandlerFunc(s.incomeHandler.CreateIncome)))
	protectedRoutes.Handle("GET /api/incomes", authMiddleware(http.HandlerFunc(s.incomeHandler.ListIncomes)))
	protectedRoutes.Handle("GET /api/incomes/total", authMiddleware(http.HandlerFunc(s.reportHandler.GetIncomeTotal)))
	protectedRoutes.Handle("GET /api/incomes/{id}", authMiddleware(http.HandlerFunc(s.incomeHandler.GetIncome)))
	protectedRoutes.Handle("PUT /api/incomes/{id}", authMiddleware(http.HandlerFunc(s.incomeHandler.UpdateIncome)))
	protectedRoutes.Handle("DELETE /api/incomes/{id}", authMiddleware(http.HandlerFunc(s.incomeHandler.DeleteIncome)))

	protectedRoutes.Handle("POST /api/transfers", authMiddleware(http.HandlerFunc(s.transferHandler.CreateTransfer)))
	protectedRoutes.Handle("GET /api/transfers", authMiddleware(http.HandlerFunc(s.transferHandler.ListTransfers)))
	protectedRoutes.Handle("GET /api/transfers/total", authMiddleware(http.HandlerFunc(s.reportHandler.GetTransferTotal)))
	protectedRoutes.Handle("POST /api/transfers/salary", authMiddleware(http.HandlerFunc(s.transferHandler.CreateSalary)))
	protectedRoutes.Handle("POST /api/transfers/salary/random", authMiddleware(http.HandlerFunc(s.transferHandler.CreateRandomSalary)))
	protectedRoutes.Handle("GET /api/transfers/{id}", authMiddleware(http.HandlerFunc(s.transferHandler.GetTransfer)))
	protectedRoutes.Handle("PUT /api/transfers/{id}", authMiddleware(http.HandlerFunc(s.transferHandler.UpdateTransfer)))
	protectedRoutes.Handle("DELETE /api/transfers/{id}", authMiddleware(http.HandlerFunc(s.transferHandler.DeleteTransfer)))

	protectedRoutes.Handle("GET /api/summary", authMiddleware(http.HandlerFunc(s.reportHandler.GetSummary)))

	mainRouter.Handle("/api/auth/", authRoutes)
	mainRouter.Handle("/api/", protectedRoutes)
	mainRouter.HandleFunc("GET /health", s.handleHealth)
	mainRouter.HandleFunc("/", notFoundHandler)

	s.router = mainRouter
}

// StartSessionCleanupScheduler prunes expired refresh sessions so the table
// does not accumulate rows for users who never log out.
func StartSessionCleanupScheduler(authService auth.Service) error {
	c := cron.New()
	_, err := c.AddFunc("@every 15m", func() {
		deleted, err := authService.DeleteExpiredSessions()
		if err != nil {
			log.Errorf("Error deleting expired sessions: %v", err)
			return
		}
		if deleted > 0 {
			log.Infof("Deleted %d expired sessions", deleted)
		}
	})
	if err != nil {
		return err
	}
	c.Start()
	return nil
}

// StartUnverifiedUsersScheduler removes accounts that never confirmed their
// email within a day of registering.
func StartUnverifiedUsersScheduler(userService user.Service) error {
	c := cron.New()
	_, err := c.AddFunc("@every 6h", func() {
		deleted, err := userService.DeleteUnverifiedUsers(24 * time.Hour)
		if err != nil {
			log.Errorf("Error deleting unverified users: %v", err)
			return
		}
		if deleted > 0 {
			log.Infof("Deleted %d unverified users", deleted)
		}
	})
	if err != nil {
		return err
	}
	c.Start()
	return nil
}

// StartBalanceAuditScheduler cross-checks cached balances against the entry
// tables. Any drift means a mutation bypassed the engine and needs a look.
func StartBalanceAuditScheduler(accountRepo domain.AccountRepository) error {
	c := cron.New()
	_, err := c.AddFunc("@every 24h", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		drifts, err := accountRepo.FindBalanceDrift(ctx)
		if err != nil {
			log.Errorf("Error auditing account balances: %v", err)
			return
		}
		for _, drift := range drifts {
			log.WithFields(log.Fields{
				"account_id": drift.AccountID,
				"user_id":    drift.UserID,
				"name":       drift.Name,
				"balance":    drift.Balance.String(),
				"entry_sum":  drift.EntrySum.String(),
			}).Error("account balance drift detected")
		}
	})
	if err != nil {
		return err
	}
	c.Start()
	return nil
}

func main() {
	checkConfiguration()
	configureLogging()

	dbService, err := database.NewDBService()
	if err != nil {
		log.Fatalf("Could not initialize database connection: %v", err)
	}
	defer func() {
		if err := dbService.Close(); err != nil {
			log.Errorf("Error closing database connection: %v", err)
		}
	}()

	authUserRepo := auth.NewUserRepository(dbService.DB)
	userRepo := user.NewUserRepository(dbService.DB)
	sessionStore := auth.NewSessionStore(dbService.DB)
	jwtManager := auth.NewJWTManager()
	emailSvc := emailService.NewEmailService()
	authenticator := &auth.Authenticator{}

	userService := user.NewUserService(userRepo, emailSvc)
	authService := auth.NewAuthService(authUserRepo, userService, sessionStore, jwtManager, authenticator)
	authHandler := auth.NewHandler(authService)
	userHandler := user.NewHandler(userService)

	accountRepo := infrastructure.NewAccountRepository(dbService.DB, lockTimeoutFromEnv())
	categoryRepo := infrastructure.NewCategoryRepository(dbService.DB)
	expenseRepo := infrastructure.NewExpenseRepository(dbService.DB)
	incomeRepo := infrastructure.NewIncomeRepository(dbService.DB)
	transferRepo := infrastructure.NewTransferRepository(dbService.DB)
	reportingRepo := infrastructure.NewReportingRepository(dbService.DB)

	accountService := application.NewAccountService(accountRepo)
	categoryService := application.NewCategoryService(categoryRepo)
	expenseService := application.NewExpenseService(expenseRepo, accountRepo, categoryService)
	incomeService := application.NewIncomeService(incomeRepo, accountRepo)
	transferService := application.NewTransferService(transferRepo, accountRepo, accountService)
	reportingService := application.NewReportingService(reportingRepo)

	accountHandler := interfaces.NewAccountHandler(accountService, respondJSON, respondError)
	categoryHandler := interfaces.NewCategoryHandler(categoryService, respondJSON, respondError)
	expenseHandler := interfaces.NewExpenseHandler(expenseService, respondJSON, respondError)
	incomeHandler := interfaces.NewIncomeHandler(incomeService, respondJSON, respondError)
	transferHandler := interfaces.NewTransferHandler(transferService, respondJSON, respondError)
	reportHandler := interfaces.NewReportHandler(reportingService, respondJSON, respondError)

	server := NewServer(
		dbService,
		authHandler,
		userHandler,
		authService,
		accountHandler,
		categoryHandler,
		expenseHandler,
		incomeHandler,
		transferHandler,
		reportHandler,
	)
	server.RegisterRoutes()

	if err := StartSessionCleanupScheduler(authService); err != nil {
		log.Fatalf("Could not start session cleanup scheduler: %v", err)
	}
	if err := StartUnverifiedUsersScheduler(userService); err != nil {
		log.Fatalf("Could not start unverified users scheduler: %v", err)
	}
	if err := StartBalanceAuditScheduler(accountRepo); err != nil {
		log.Fatalf("Could not start balance audit scheduler: %v", err)
	}

	go func() {
		log.Println(http.ListenAndServe("localhost:6060", nil))
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Infof("Starting server on port %s", port)
	if err := http.ListenAndServe(":"+port, loggingMiddleware(server.router)); err != nil {
		log.Fatalf("Could not start server: %v", err)
	}
}
