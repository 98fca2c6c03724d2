package interfaces

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
)

func TestCreateTransfer_Success(t *testing.T) {
	mockService := &MockTransferService{}
	handler := NewTransferHandler(mockService, respondJSON, respondError)

	body, err := json.Marshal(map[string]interface{}{
		"from_account": 1,
		"to_account":   2,
		"amount":       "300.00",
	})
	assert.NoError(t, err)

	req := authorizedRequest(http.MethodPost, "/api/transfers", body)
	w := httptest.NewRecorder()

	handler.CreateTransfer(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusCreated, res.StatusCode)

	var response struct {
		Status string          `json:"status"`
		Data   domain.Transfer `json:"data"`
	}
	assert.NoError(t, json.NewDecoder(res.Body).Decode(&response))
	assert.Equal(t, "success", response.Status)
	assert.Equal(t, "user-1", response.Data.UserID)
	assert.Equal(t, "300", response.Data.Amount.String())

	// the regular endpoint never grants the system-account override
	assert.False(t, mockService.LastAllowSystem)
}

func TestCreateTransfer_InsufficientFunds(t *testing.T) {
	mockService := &MockTransferService{
		failWith: financeErrors.NewInsufficientFundsError("Checking", "100", "300"),
	}
	handler := NewTransferHandler(mockService, respondJSON, respondError)

	body, _ := json.Marshal(map[string]interface{}{
		"from_account": 1,
		"to_account":   2,
		"amount":       "300.00",
	})
	req := authorizedRequest(http.MethodPost, "/api/transfers", body)
	w := httptest.NewRecorder()

	handler.CreateTransfer(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusConflict, res.StatusCode)
}

func TestCreateTransfer_ConcurrencyTimeout(t *testing.T) {
	mockService := &MockTransferService{
		failWith: financeErrors.NewConcurrencyTimeoutError("Could not lock accounts in time, please retry"),
	}
	handler := NewTransferHandler(mockService, respondJSON, respondError)

	body, _ := json.Marshal(map[string]interface{}{
		"from_account": 1,
		"to_account":   2,
		"amount":       "300.00",
	})
	req := authorizedRequest(http.MethodPost, "/api/transfers", body)
	w := httptest.NewRecorder()

	handler.CreateTransfer(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
}

func TestCreateTransfer_InvalidBody(t *testing.T) {
	handler := NewTransferHandler(&MockTransferService{}, respondJSON, respondError)

	req := authorizedRequest(http.MethodPost, "/api/transfers", []byte("not json"))
	w := httptest.NewRecorder()

	handler.CreateTransfer(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestCreateSalary_Success(t *testing.T) {
	mockService := &MockTransferService{}
	handler := NewTransferHandler(mockService, respondJSON, respondError)

	body, _ := json.Marshal(map[string]interface{}{
		"account": 3,
		"amount":  "5000.00",
		"note":    "August salary",
	})
	req := authorizedRequest(http.MethodPost, "/api/transfers/salary", body)
	w := httptest.NewRecorder()

	handler.CreateSalary(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusCreated, res.StatusCode)

	var response struct {
		Data domain.Transfer `json:"data"`
	}
	assert.NoError(t, json.NewDecoder(res.Body).Decode(&response))
	assert.Equal(t, int64(3), response.Data.ToAccountID)
	assert.Equal(t, "August salary", response.Data.Description)
}

func TestCreateRandomSalary_MaxBelowMin(t *testing.T) {
	handler := NewTransferHandler(&MockTransferService{}, respondJSON, respondError)

	body, _ := json.Marshal(map[string]interface{}{
		"account": 3,
		"min":     "2000.00",
		"max":     "1000.00",
	})
	req := authorizedRequest(http.MethodPost, "/api/transfers/salary/random", body)
	w := httptest.NewRecorder()

	handler.CreateRandomSalary(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestDeleteTransfer_NotFound(t *testing.T) {
	mockService := &MockTransferService{failWith: financeErrors.ErrEntryNotFound}
	handler := NewTransferHandler(mockService, respondJSON, respondError)

	req := authorizedRequest(http.MethodDelete, "/api/transfers/missing", nil)
	req.SetPathValue("id", "missing")
	w := httptest.NewRecorder()

	handler.DeleteTransfer(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}
