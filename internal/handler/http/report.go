package http

import (
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/handler/http/response"
)

type ReportHandler interface {
	// Period summary with status breakdown and monthly series
	GetSummary(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

// optionalInt parses an optional integer query parameter; absent means 0.
func optionalInt(r *http.Request, key string) (int, bool) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return 0, true
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return n, true
}

// GetSummary handles GET /reports/summary?period=&month=&year=
func (h *reportHandlerImpl) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	month, ok := optionalInt(r, "month")
	if !ok {
		response.BadRequest(w, "invalid month parameter", nil)
		return
	}

	year, ok := optionalInt(r, "year")
	if !ok {
		response.BadRequest(w, "invalid year parameter", nil)
		return
	}

	req := report.PeriodSummaryRequest{
		UserID: middleware.UserIDFromContext(ctx),
		Period: report.Period(r.URL.Query().Get("period")),
		Month:  month,
		Year:   year,
	}

	result, err := h.reportService.PeriodSummary(ctx, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
