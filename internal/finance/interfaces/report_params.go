package interfaces

import (
	"net/http"
	"strconv"
	"time"

	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
)

// Report endpoints accept start/end as either a month ("2006-01") or a
// day ("2006-01-02"). A month start means the first day at midnight, a
// month end means the last day at 23:59:59.999999999, both UTC.
func parseReportDate(value string, isEnd bool) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		if isEnd {
			return endOfDay(t), nil
		}
		return t, nil
	}
	t, err := time.Parse("2006-01", value)
	if err != nil {
		return time.Time{}, err
	}
	if isEnd {
		lastDay := time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC)
		return endOfDay(lastDay), nil
	}
	return t, nil
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, t.Location())
}

func parseReportFilter(r *http.Request, userID string) (domain.ReportFilter, error) {
	filter := domain.ReportFilter{UserID: userID}
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
	if value := r.URL.Query().Get("account"); value != "" {
		accountID, err := strconv.ParseInt(value, 10, 64)
		if err != nil || accountID <= 0 {
			return filter, financeErrors.NewValidationError("Invalid account parameter")
		}
		filter.AccountID = accountID
	}
	return filter, nil
}
