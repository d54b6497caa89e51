package dto

import (
	"fmt"
	"time"

	app "github.com/dms/backend/internal/application/reconcile"
)

// RunReconciliationRequest is the display layer's request for a report.
// Dates are inclusive calendar dates in YYYY-MM-DD form.
type RunReconciliationRequest struct {
	StartDate   string `json:"start_date" binding:"required"`
	EndDate     string `json:"end_date" binding:"required"`
	ClientToken string `json:"client_token"`
	Async       bool   `json:"async"`
}

// Dates parses the request's date range.
func (r RunReconciliationRequest) Dates() (start, end time.Time, err error) {
	start, err = time.Parse("2006-01-02", r.StartDate)
	if err != nil {
		return start, end, fmt.Errorf("invalid start_date %q: %w", r.StartDate, err)
	}
	end, err = time.Parse("2006-01-02", r.EndDate)
	if err != nil {
		return start, end, fmt.Errorf("invalid end_date %q: %w", r.EndDate, err)
	}
	return start, end, nil
}

// RunStartedResponse is returned for async runs.
type RunStartedResponse struct {
	RunID string `json:"run_id"`
}

// ReportResponse wraps a finished report.
type ReportResponse struct {
	Report *app.Report `json:"report"`
}
