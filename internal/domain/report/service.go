package report

import "context"

// ReportService aggregates stored attendance records into summaries.
type ReportService interface {
	// PeriodSummary totals one period and charts the request year month by month.
	PeriodSummary(ctx context.Context, req PeriodSummaryRequest) (PeriodSummary, error)
}
