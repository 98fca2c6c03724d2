package interfaces

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
)

type IncomeServiceInterface interface {
	Create(ctx context.Context, income *domain.Income) error
	Update(ctx context.Context, income *domain.Income) error
	Delete(ctx context.Context, incomeID, userID string) error
	Get(ctx context.Context, incomeID, userID string) (*domain.Income, error)
	List(ctx context.Context, userID string) ([]domain.Income, error)
}

type IncomeHandler struct {
	service      IncomeServiceInterface
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string)
}

func NewIncomeHandler(
	service IncomeServiceInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *IncomeHandler {
	if service == nil || respondJSON == nil || respondError == nil {
		panic("Service and response functions must not be nil")
	}
	return &IncomeHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

func (h *IncomeHandler) CreateIncome(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var income domain.Income
	if err := json.NewDecoder(r.Body).Decode(&income); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	income.UserID = userID

	if err := h.service.Create(r.Context(), &income); err != nil {
		respondFinanceError(h.respondError, w, err, "Failed to create income")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Income successfully created.",
		"data":    income,
	})
}

func (h *IncomeHandler) GetIncome(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	income, err := h.service.Get(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		respondFinanceError(h.respondError, w, err, "Failed to get income")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   income,
	})
}

func (h *IncomeHandler) ListIncomes(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	incomes, err := h.service.List(r.Context(), userID)
	if err != nil {
		respondFinanceError(h.respondError, w, err, "Failed to list incomes")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   incomes,
	})
}

func (h *IncomeHandler) UpdateIncome(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var income domain.Income
	if err := json.NewDecoder(r.Body).Decode(&income); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	income.ID = r.PathValue("id")
	income.UserID = userID

	if err := h.service.Update(r.Context(), &income); err != nil {
		respondFinanceError(h.respondError, w, err, "Failed to update income")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Income successfully updated.",
		"data":    income,
	})
}

func (h *IncomeHandler) DeleteIncome(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.service.Delete(r.Context(), r.PathValue("id"), userID); err != nil {
		respondFinanceError(h.respondError, w, err, "Failed to delete income")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Income successfully deleted.",
	})
}
