package interfaces

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
)

type TransferServiceInterface interface {
	Create(ctx context.Context, transfer *domain.Transfer, allowSystem bool) error
	Update(ctx context.Context, transfer *domain.Transfer, allowSystem bool) error
	Delete(ctx context.Context, transferID, userID string) error
	Get(ctx context.Context, transferID, userID string) (*domain.Transfer, error)
	List(ctx context.Context, userID string) ([]domain.Transfer, error)
	CreateSalary(ctx context.Context, userID string, accountID int64, amount decimal.Decimal, note string) (*domain.Transfer, error)
	CreateRandomSalary(ctx context.Context, userID string, accountID int64, minAmount, maxAmount decimal.Decimal) (*domain.Transfer, error)
}

type TransferHandler struct {
	service      TransferServiceInterface
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string)
}

func NewTransferHandler(
	service TransferServiceInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *TransferHandler {
	if service == nil || respondJSON == nil || respondError == nil {
		panic("Service and response functions must not be nil")
	}
	return &TransferHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

func (h *TransferHandler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var transfer domain.Transfer
	if err := json.NewDecoder(r.Body).Decode(&transfer); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	transfer.UserID = userID

	if err := h.service.Create(r.Context(), &transfer, false); err != nil {
		respondFinanceError(h.respondError, w, err, "Failed to create transfer")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Transfer successfully created.",
		"data":    transfer,
	})
}

func (h *TransferHandler) GetTransfer(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	transfer, err := h.service.Get(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		respondFinanceError(h.respondError, w, err, "Failed to get transfer")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   transfer,
	})
}

func (h *TransferHandler) ListTransfers(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	transfers, err := h.service.List(r.Context(), userID)
	if err != nil {
		respondFinanceError(h.respondError, w, err, "Failed to list transfers")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   transfers,
	})
}

func (h *TransferHandler) UpdateTransfer(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var transfer domain.Transfer
	if err := json.NewDecoder(r.Body).Decode(&transfer); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	transfer.ID = r.PathValue("id")
	transfer.UserID = userID

	if err := h.service.Update(r.Context(), &transfer, false); err != nil {
		respondFinanceError(h.respondError, w, err, "Failed to update transfer")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Transfer successfully updated.",
		"data":    transfer,
	})
}

func (h *TransferHandler) DeleteTransfer(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.service.Delete(r.Context(), r.PathValue("id"), userID); err != nil {
		respondFinanceError(h.respondError, w, err, "Failed to delete transfer")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Transfer successfully deleted.",
	})
}

type salaryRequest struct {
	AccountID int64           `json:"account"`
	Amount    decimal.Decimal `json:"amount"`
	Note      string          `json:"note"`
}

func (h *TransferHandler) CreateSalary(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req salaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	transfer, err := h.service.CreateSalary(r.Context(), userID, req.AccountID, req.Amount, req.Note)
	if err != nil {
		respondFinanceError(h.respondError, w, err, "Failed to record salary")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Salary successfully recorded.",
		"data":    transfer,
	})
}

type randomSalaryRequest struct {
	AccountID int64           `json:"account"`
	Min       decimal.Decimal `json:"min"`
	Max       decimal.Decimal `json:"max"`
}

func (h *TransferHandler) CreateRandomSalary(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req randomSalaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	transfer, err := h.service.CreateRandomSalary(r.Context(), userID, req.AccountID, req.Min, req.Max)
	if err != nil {
		respondFinanceError(h.respondError, w, err, "Failed to record salary")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Salary successfully recorded.",
		"data":    transfer,
	})
}
