package application

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
	"github.com/shopspring/decimal"
)

type AccountServiceInterface interface {
	GetOrCreateSystemAccount(ctx context.Context, userID string) (*domain.Account, error)
}

type TransferService struct {
	repo           domain.TransferRepository
	accountRepo    domain.AccountRepository
	accountService AccountServiceInterface
}

func NewTransferService(repo domain.TransferRepository, accountRepo domain.AccountRepository, accountService AccountServiceInterface) *TransferService {
	return &TransferService{repo: repo, accountRepo: accountRepo, accountService: accountService}
}

// Create moves funds between two of the user's accounts. Both rows are locked
// in ascending id order before the balance read that backs the funds check,
// so concurrent transfers over the same pair serialize instead of racing.
// allowSystem is the salary-flow override permitting a system account as one
// side of the transfer.
func (s *TransferService) Create(ctx context.Context, transfer *domain.Transfer, allowSystem bool) (err error) {
	transfer.ID = uuid.NewString()
	if transfer.CreatedAt.IsZero() {
		transfer.CreatedAt = time.Now().UTC()
	}
	if err := transfer.Validate(); err != nil {
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

	locked, err := s.accountRepo.LockAccounts(ctx, tx, transfer.FromAccountID, transfer.ToAccountID)
	if err != nil {
		return err
	}
	from, to, err := resolveTransferAccounts(locked, transfer)
	if err != nil {
		return err
	}
	if !allowSystem && (from.IsSystem || to.IsSystem) {
		return financeErrors.NewValidationError("Transfers cannot involve the system account")
	}
	if !from.IsSystem && from.Balance.LessThan(transfer.Amount) {
		return financeErrors.NewInsufficientFundsError(from.Name, from.Balance.String(), transfer.Amount.String())
	}

	if err = s.accountRepo.AdjustBalance(ctx, tx, from.ID, transfer.Amount.Neg()); err != nil {
		return err
	}
	if err = s.accountRepo.AdjustBalance(ctx, tx, to.ID, transfer.Amount); err != nil {
		return err
	}
	return s.repo.SaveWithTransaction(ctx, tx, transfer)
}

// Update edits a transfer by first locking every involved account (old and new
// sides together, deduplicated, ascending), reversing the stored effect, and
// evaluating the new amount against the reversed state. An insufficient-funds
// failure restores the prior effect exactly, so a rejected edit changes
// nothing.
func (s *TransferService) Update(ctx context.Context, transfer *domain.Transfer, allowSystem bool) (err error) {
	existing, err := s.repo.FindByID(ctx, transfer.ID, transfer.UserID)
	if err != nil {
		return err
	}
	if transfer.FromAccountID == 0 {
		transfer.FromAccountID = existing.FromAccountID
	}
	if transfer.ToAccountID == 0 {
		transfer.ToAccountID = existing.ToAccountID
	}
	if transfer.Amount.IsZero() {
		transfer.Amount = existing.Amount
	}
	if err := transfer.Validate(); err != nil {
		return err
	}
	transfer.CreatedAt = existing.CreatedAt

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

	locked, err := s.accountRepo.LockAccounts(ctx, tx,
		existing.FromAccountID, existing.ToAccountID, transfer.FromAccountID, transfer.ToAccountID)
	if err != nil {
		return err
	}
	from, to, err := resolveTransferAccounts(locked, transfer)
	if err != nil {
		return err
	}
	if !allowSystem && (from.IsSystem || to.IsSystem) {
		return financeErrors.NewValidationError("Transfers cannot involve the system account")
	}

	// reverse the stored effect so the new amount is judged against the
	// state as if this transfer never existed
	if err = s.accountRepo.AdjustBalance(ctx, tx, existing.FromAccountID, existing.Amount); err != nil {
		return err
	}
	if err = s.accountRepo.AdjustBalance(ctx, tx, existing.ToAccountID, existing.Amount.Neg()); err != nil {
		return err
	}

	if !from.IsSystem {
		reread, lockErr := s.accountRepo.LockAccounts(ctx, tx, from.ID)
		if lockErr != nil {
			err = lockErr
			return err
		}
		if len(reread) != 1 {
			err = financeErrors.ErrAccountNotFound
			return err
		}
		if reread[0].Balance.LessThan(transfer.Amount) {
			if err = s.accountRepo.AdjustBalance(ctx, tx, existing.FromAccountID, existing.Amount.Neg()); err != nil {
				return err
			}
			if err = s.accountRepo.AdjustBalance(ctx, tx, existing.ToAccountID, existing.Amount); err != nil {
				return err
			}
			return financeErrors.NewInsufficientFundsError(from.Name, reread[0].Balance.String(), transfer.Amount.String())
		}
	}

	if err = s.accountRepo.AdjustBalance(ctx, tx, from.ID, transfer.Amount.Neg()); err != nil {
		return err
	}
	if err = s.accountRepo.AdjustBalance(ctx, tx, to.ID, transfer.Amount); err != nil {
		return err
	}
	return s.repo.UpdateWithTransaction(ctx, tx, transfer)
}

func (s *TransferService) Delete(ctx context.Context, transferID, userID string) (err error) {
	existing, err := s.repo.FindByID(ctx, transferID, userID)
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

	if _, err = s.accountRepo.LockAccounts(ctx, tx, existing.FromAccountID, existing.ToAccountID); err != nil {
		return err
	}
	if err = s.accountRepo.AdjustBalance(ctx, tx, existing.FromAccountID, existing.Amount); err != nil {
		return err
	}
	if err = s.accountRepo.AdjustBalance(ctx, tx, existing.ToAccountID, existing.Amount.Neg()); err != nil {
		return err
	}
	return s.repo.DeleteWithTransaction(ctx, tx, transferID, userID)
}

func (s *TransferService) Get(ctx context.Context, transferID, userID string) (*domain.Transfer, error) {
	return s.repo.FindByID(ctx, transferID, userID)
}

func (s *TransferService) List(ctx context.Context, userID string) ([]domain.Transfer, error) {
	transfers, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if transfers == nil {
		return []domain.Transfer{}, nil
	}
	return transfers, nil
}

// CreateSalary deposits external money into one of the user's real accounts by
// synthesizing a transfer from the hidden system account, which may go
// arbitrarily negative.
func (s *TransferService) CreateSalary(ctx context.Context, userID string, accountID int64, amount decimal.Decimal, note string) (*domain.Transfer, error) {
	account, err := s.accountRepo.FindByID(ctx, accountID, userID)
	if err != nil {
		return nil, err
	}
	if account.IsSystem {
		return nil, financeErrors.ErrAccountNotFound
	}

	system, err := s.accountService.GetOrCreateSystemAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	if note == "" {
		note = "Salary"
	}
	transfer := &domain.Transfer{
		UserID:        userID,
		FromAccountID: system.ID,
		ToAccountID:   account.ID,
		Amount:        amount,
		Description:   note,
	}
	if err := s.Create(ctx, transfer, true); err != nil {
		return nil, err
	}
	return transfer, nil
}

// CreateRandomSalary draws a uniform amount from [minAmount, maxAmount],
// rounded half-up to two decimals, and deposits it like CreateSalary.
func (s *TransferService) CreateRandomSalary(ctx context.Context, userID string, accountID int64, minAmount, maxAmount decimal.Decimal) (*domain.Transfer, error) {
	if !minAmount.IsPositive() {
		return nil, financeErrors.NewValidationError("min must be greater than zero")
	}
	if maxAmount.LessThan(minAmount) {
		return nil, financeErrors.NewValidationError("max must be greater than or equal to min")
	}

	span := maxAmount.Sub(minAmount)
	amount := minAmount.Add(span.Mul(decimal.NewFromFloat(rand.Float64()))).Round(2)
	return s.CreateSalary(ctx, userID, accountID, amount, "Salary")
}

func resolveTransferAccounts(locked []domain.Account, transfer *domain.Transfer) (*domain.Account, *domain.Account, error) {
	byID := make(map[int64]*domain.Account, len(locked))
	for i := range locked {
		byID[locked[i].ID] = &locked[i]
	}

	from, ok := byID[transfer.FromAccountID]
	if !ok || from.UserID != transfer.UserID {
		return nil, nil, financeErrors.ErrAccountNotFound
	}
	to, ok := byID[transfer.ToAccountID]
	if !ok || to.UserID != transfer.UserID {
		return nil, nil, financeErrors.ErrAccountNotFound
	}
	return from, to, nil
}
