package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
)

type IncomeService struct {
	repo        domain.IncomeRepository
	accountRepo domain.AccountRepository
}

func NewIncomeService(repo domain.IncomeRepository, accountRepo domain.AccountRepository) *IncomeService {
	return &IncomeService{repo: repo, accountRepo: accountRepo}
}

// Create mirrors the expense path with the opposite delta sign: the income's
// account is credited and the row persisted in one transaction.
func (s *IncomeService) Create(ctx context.Context, income *domain.Income) (err error) {
	income.ID = uuid.NewString()
	if income.CreatedAt.IsZero() {
		income.CreatedAt = time.Now().UTC()
	}
	income.UpdatedAt = income.CreatedAt
	if err := income.Validate(); err != nil {
		return err
	}
	if err := s.validateAccount(ctx, income.UserID, income.AccountID); err != nil {
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

	if err = s.accountRepo.AdjustBalance(ctx, tx, income.AccountID, income.Amount); err != nil {
		return err
	}
	return s.repo.SaveWithTransaction(ctx, tx, income)
}

func (s *IncomeService) Update(ctx context.Context, income *domain.Income) (err error) {
	existing, err := s.repo.FindByID(ctx, income.ID, income.UserID)
	if err != nil {
		return err
	}
	if income.AccountID == 0 {
		income.AccountID = existing.AccountID
	}
	if income.Amount.IsZero() {
		income.Amount = existing.Amount
	}
	if err := income.Validate(); err != nil {
		return err
	}
	if err := s.validateAccount(ctx, income.UserID, income.AccountID); err != nil {
		return err
	}
	income.CreatedAt = existing.CreatedAt
	income.UpdatedAt = time.Now().UTC()

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

	if income.AccountID != existing.AccountID {
		if err = s.accountRepo.AdjustBalance(ctx, tx, existing.AccountID, existing.Amount.Neg()); err != nil {
			return err
		}
		if err = s.accountRepo.AdjustBalance(ctx, tx, income.AccountID, income.Amount); err != nil {
			return err
		}
	} else if !income.Amount.Equal(existing.Amount) {
		if err = s.accountRepo.AdjustBalance(ctx, tx, income.AccountID, income.Amount.Sub(existing.Amount)); err != nil {
			return err
		}
	}
	return s.repo.UpdateWithTransaction(ctx, tx, income)
}

func (s *IncomeService) Delete(ctx context.Context, incomeID, userID string) (err error) {
	existing, err := s.repo.FindByID(ctx, incomeID, userID)
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

	if err = s.accountRepo.AdjustBalance(ctx, tx, existing.AccountID, existing.Amount.Neg()); err != nil {
		return err
	}
	return s.repo.DeleteWithTransaction(ctx, tx, incomeID, userID)
}

func (s *IncomeService) Get(ctx context.Context, incomeID, userID string) (*domain.Income, error) {
	return s.repo.FindByID(ctx, incomeID, userID)
}

func (s *IncomeService) List(ctx context.Context, userID string) ([]domain.Income, error) {
	incomes, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if incomes == nil {
		return []domain.Income{}, nil
	}
	return incomes, nil
}

func (s *IncomeService) validateAccount(ctx context.Context, userID string, accountID int64) error {
	account, err := s.accountRepo.FindByID(ctx, accountID, userID)
	if err != nil {
		return err
	}
	if account.IsSystem {
		return financeErrors.NewValidationError("Cannot record an income against the system account")
	}
	return nil
}
