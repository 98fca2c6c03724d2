package application

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
	log "github.com/sirupsen/logrus"
)

type CategoryServiceInterface interface {
	DoesUserCategoryExist(ctx context.Context, categoryID int64, userID string) (bool, error)
}

type ExpenseService struct {
	repo            domain.ExpenseRepository
	accountRepo     domain.AccountRepository
	categoryService CategoryServiceInterface
}

func NewExpenseService(repo domain.ExpenseRepository, accountRepo domain.AccountRepository, categoryService CategoryServiceInterface) *ExpenseService {
	return &ExpenseService{repo: repo, accountRepo: accountRepo, categoryService: categoryService}
}

func safeRollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil {
		log.Errorf("Error during transaction rollback: %v", err)
	}
}

// Create validates the expense, then debits its account and persists the row
// in one transaction. Validation failures happen before any balance is touched.
func (s *ExpenseService) Create(ctx context.Context, expense *domain.Expense) (err error) {
	expense.ID = uuid.NewString()
	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = time.Now().UTC()
	}
	expense.UpdatedAt = expense.CreatedAt
	if err := expense.Validate(); err != nil {
		return err
	}
	if err := s.validateReferences(ctx, expense.UserID, expense.AccountID, expense.CategoryID); err != nil {
		return err
	}

	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			safeRollback(tx)
			panic(p)
		} else if err != nil {
			safeRollback(tx)
		} else {
			err = tx.Commit()
		}
	}()

	if err = s.accountRepo.AdjustBalance(ctx, tx, expense.AccountID, expense.Amount.Neg()); err != nil {
		return err
	}
	return s.repo.SaveWithTransaction(ctx, tx, expense)
}

// Update applies reverse-then-reapply semantics: when the account changed the
// old amount is credited back to the old account and the new amount debited
// from the new one; when it is unchanged only the difference is applied. Both
// paths end with the same balances.
func (s *ExpenseService) Update(ctx context.Context, expense *domain.Expense) (err error) {
	existing, err := s.repo.FindByID(ctx, expense.ID, expense.UserID)
	if err != nil {
		return err
	}
	applyExpenseFallbacks(expense, existing)
	if err := expense.Validate(); err != nil {
		return err
	}
	if err := s.validateReferences(ctx, expense.UserID, expense.AccountID, expense.CategoryID); err != nil {
		return err
	}
	expense.CreatedAt = existing.CreatedAt
	expense.UpdatedAt = time.Now().UTC()

	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			safeRollback(tx)
			panic(p)
		} else if err != nil {
			safeRollback(tx)
		} else {
			err = tx.Commit()
		}
	}()

	if expense.AccountID != existing.AccountID {
		if err = s.accountRepo.AdjustBalance(ctx, tx, existing.AccountID, existing.Amount); err != nil {
			return err
		}
		if err = s.accountRepo.AdjustBalance(ctx, tx, expense.AccountID, expense.Amount.Neg()); err != nil {
			return err
		}
	} else if !expense.Amount.Equal(existing.Amount) {
		if err = s.accountRepo.AdjustBalance(ctx, tx, expense.AccountID, existing.Amount.Sub(expense.Amount)); err != nil {
			return err
		}
	}
	return s.repo.UpdateWithTransaction(ctx, tx, expense)
}

func (s *ExpenseService) Delete(ctx context.Context, expenseID, userID string) (err error) {
	existing, err := s.repo.FindByID(ctx, expenseID, userID)
	if err != nil {
		return err
	}

	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			safeRollback(tx)
			panic(p)
		} else if err != nil {
			safeRollback(tx)
		} else {
			err = tx.Commit()
		}
	}()

	if err = s.accountRepo.AdjustBalance(ctx, tx, existing.AccountID, existing.Amount); err != nil {
		return err
	}
	return s.repo.DeleteWithTransaction(ctx, tx, expenseID, userID)
}

func (s *ExpenseService) Get(ctx context.Context, expenseID, userID string) (*domain.Expense, error) {
	return s.repo.FindByID(ctx, expenseID, userID)
}

func (s *ExpenseService) List(ctx context.Context, userID string) ([]domain.Expense, error) {
	expenses, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if expenses == nil {
		return []domain.Expense{}, nil
	}
	return expenses, nil
}

func (s *ExpenseService) validateReferences(ctx context.Context, userID string, accountID, categoryID int64) error {
	account, err := s.accountRepo.FindByID(ctx, accountID, userID)
	if err != nil {
		return err
	}
	if account.IsSystem {
		return financeErrors.NewValidationError("Cannot record an expense against the system account")
	}
	exists, err := s.categoryService.DoesUserCategoryExist(ctx, categoryID, userID)
	if err != nil {
		return err
	}
	if !exists {
		return financeErrors.ErrCategoryNotFound
	}
	return nil
}

// applyExpenseFallbacks keeps unset update fields at their stored values.
func applyExpenseFallbacks(expense, existing *domain.Expense) {
	if expense.AccountID == 0 {
		expense.AccountID = existing.AccountID
	}
	if expense.CategoryID == 0 {
		expense.CategoryID = existing.CategoryID
	}
	if expense.Amount.IsZero() {
		expense.Amount = existing.Amount
	}
}
