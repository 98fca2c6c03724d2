package interfaces

import (
	"context"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/sebuszqo/ExpenseTracker/internal/finance/application"
	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
)

type ReportServiceInterface interface {
	GetExpenseTotalsByCategory(ctx context.Context, filter domain.ReportFilter) ([]domain.CategoryTotal, error)
	GetMonthlyCashflow(ctx context.Context, filter domain.ReportFilter, by string) ([]application.MonthlyCashflow, error)
	GetIncomeTotal(ctx context.Context, filter domain.ReportFilter) (decimal.Decimal, error)
	GetTransferTotal(ctx context.Context, filter domain.TransferFilter) (decimal.Decimal, error)
	GetSummary(ctx context.Context, filter domain.ReportFilter) (*application.SummaryReport, error)
}

type ReportHandler struct {
	service      ReportServiceInterface
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string)
}

func NewReportHandler(
	service ReportServiceInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *ReportHandler {
	if service == nil || respondJSON == nil || respondError == nil {
		panic("Service and response functions must not be nil")
	}
	return &ReportHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

func (h *ReportHandler) GetExpenseTotalsByCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	filter, err := parseReportFilter(r, userID)
	if err != nil {
		respondFinanceError(h.respondError, w, err, "Failed to build report")
		return
	}

	totals, err := h.service.GetExpenseTotalsByCategory(r.Context(), filter)
	if err != nil {
		respondFinanceError(h.respondError, w, err, "Failed to build report")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   totals,
	})
}

func (h *ReportHandler) GetMonthlyCashflow(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	filter, err := parseReportFilter(r, userID)
	if err != nil {
		respondFinanceError(h.respondError, w, err, "Failed to build report")
		return
	}

	months, err := h.service.GetMonthlyCashflow(r.Context(), filter, r.URL.Query().Get("by"))
	if err != nil {
		respondFinanceError(h.respondError, w, err, "Failed to build report")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   months,
	})
}

func (h *ReportHandler) GetIncomeTotal(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	filter, err := parseReportFilter(r, userID)
	if err != nil {
		respondFinanceError(h.respondError, w, err, "Failed to build report")
		return
	}

	total, err := h.service.GetIncomeTotal(r.Context(), filter)
	if err != nil {
		respondFinanceError(h.respondError, w, err, "Failed to build report")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   map[string]interface{}{"total": total},
	})
}

func (h *ReportHandler) GetTransferTotal(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	filter, err := parseTransferFilter(r, userID)
	if err != nil {
		respondFinanceError(h.respondError, w, err, "Failed to build report")
		return
	}

	total, err := h.service.GetTransferTotal(r.Context(), filter)
	if err != nil {
		respondFinanceError(h.respondError, w, err, "Failed to build report")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   map[string]interface{}{"total": total},
	})
}

func (h *ReportHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	filter, err := parseReportFilter(r, userID)
	if err != nil {
		respondFinanceError(h.respondError, w, err, "Failed to build report")
		return
	}

	summary, err := h.service.GetSummary(r.Context(), filter)
	if err != nil {
		respondFinanceError(h.respondError, w, err, "Failed to build report")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   summary,
	})
}

func parseTransferFilter(r *http.Request, userID string) (domain.TransferFilter, error) {
	filter := domain.TransferFilter{UserID: userID}
	if value := r.URL.Query().Get("start"); value != "" {
		start, err := parseReportDate(value, false)
		if err != nil {
			return filter, financeErrors.NewValidationError("Invalid start date, expected YYYY-MM or YYYY-MM-DD")
		}
		filter.Start = &start
	}
	if value := r.URL.Query().Get("end"); value != "" {
		end, err := parseReportDate(value, true)
		if err != nil {
			return filter, financeErrors.NewValidationError("Invalid end date, expected YYYY-MM or YYYY-MM-DD")
		}
		filter.End = &end
	}
	if filter.Start != nil && filter.End != nil && filter.Start.After(*filter.End) {
		return filter, financeErrors.NewValidationError("Start date cannot be after end date")
	}
	if value := r.URL.Query().Get("from_account"); value != "" {
		accountID, err := strconv.ParseInt(value, 10, 64)
		if err != nil || accountID <= 0 {
			return filter, financeErrors.NewValidationError("Invalid from_account parameter")
		}
		filter.FromAccountID = accountID
	}
	if value := r.URL.Query().Get("to_account"); value != "" {
		accountID, err := strconv.ParseInt(value, 10, 64)
		if err != nil || accountID <= 0 {
			return filter, financeErrors.NewValidationError("Invalid to_account parameter")
		}
		filter.ToAccountID = accountID
	}
	return filter, nil
}
