package interfaces

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
)

func authorizedRequest(method, target string, body []byte) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	return req.WithContext(context.WithValue(req.Context(), "userID", "user-1"))
}

func TestCreateCategory_Success(t *testing.T) {
	mockService := &MockCategoryService{}
	handler := NewCategoryHandler(mockService, respondJSON, respondError)

	body, err := json.Marshal(map[string]string{"name": "Food"})
	assert.NoError(t, err)

	req := authorizedRequest(http.MethodPost, "/api/categories", body)
	w := httptest.NewRecorder()

	handler.CreateCategory(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusCreated, res.StatusCode)

	var response struct {
		Status string          `json:"status"`
		Data   domain.Category `json:"data"`
	}
	assert.NoError(t, json.NewDecoder(res.Body).Decode(&response))
	assert.Equal(t, "success", response.Status)
	assert.Equal(t, "Food", response.Data.Name)
	assert.Equal(t, "user-1", response.Data.UserID)
}

func TestCreateCategory_Unauthorized(t *testing.T) {
	handler := NewCategoryHandler(&MockCategoryService{}, respondJSON, respondError)

	body, _ := json.Marshal(map[string]string{"name": "Food"})
	req := httptest.NewRequest(http.MethodPost, "/api/categories", bytes.NewBuffer(body))
	w := httptest.NewRecorder()

	handler.CreateCategory(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestListCategories_Success(t *testing.T) {
	mockService := &MockCategoryService{
		categories: []domain.Category{
			{ID: 1, UserID: "user-1", Name: "Food"},
			{ID: 2, UserID: "user-1", Name: "Travel"},
		},
	}
	handler := NewCategoryHandler(mockService, respondJSON, respondError)

	req := authorizedRequest(http.MethodGet, "/api/categories", nil)
	w := httptest.NewRecorder()

	handler.ListCategories(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var response struct {
		Data []domain.Category `json:"data"`
	}
	assert.NoError(t, json.NewDecoder(res.Body).Decode(&response))
	assert.Len(t, response.Data, 2)
}

func TestGetCategory_InvalidID(t *testing.T) {
	handler := NewCategoryHandler(&MockCategoryService{}, respondJSON, respondError)

	req := authorizedRequest(http.MethodGet, "/api/categories/abc", nil)
	req.SetPathValue("id", "abc")
	w := httptest.NewRecorder()

	handler.GetCategory(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	var response map[string]interface{}
	assert.NoError(t, json.NewDecoder(res.Body).Decode(&response))
	assert.Equal(t, "Invalid category ID", response["message"])
}

func TestGetCategory_NotFound(t *testing.T) {
	handler := NewCategoryHandler(&MockCategoryService{}, respondJSON, respondError)

	req := authorizedRequest(http.MethodGet, "/api/categories/42", nil)
	req.SetPathValue("id", "42")
	w := httptest.NewRecorder()

	handler.GetCategory(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestListCategories_ErrorFromService(t *testing.T) {
	mockService := &MockCategoryService{failWith: errors.New("service error")}
	handler := NewCategoryHandler(mockService, respondJSON, respondError)

	req := authorizedRequest(http.MethodGet, "/api/categories", nil)
	w := httptest.NewRecorder()

	handler.ListCategories(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)

	var response map[string]interface{}
	assert.NoError(t, json.NewDecoder(res.Body).Decode(&response))
	assert.Equal(t, "Failed to list categories", response["message"])
}
