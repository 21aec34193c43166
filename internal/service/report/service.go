package report

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/clock"
	"github.com/shopspring/decimal"
)

var breakdownOrder = []attendance.Status{
	attendance.StatusPresent,
	attendance.StatusLate,
	attendance.StatusAbsent,
	attendance.StatusEarlyLeave,
}

type ReportServiceImpl struct {
	store attendance.RecordStore
	clock clock.Clock
}

// periodRange resolves the inclusive date window of req.
func (r *ReportServiceImpl) periodRange(req report.PeriodSummaryRequest) (string, string) {
	switch req.Period {
	case report.PeriodWeekly:
		return clock.WeekRange(r.clock.Now())
	case report.PeriodQuarterly:
		firstMonth := time.Month((req.Month-1)/3*3 + 1)
		start, _ := clock.MonthRange(req.Year, firstMonth)
		_, end := clock.MonthRange(req.Year, firstMonth+2)
		return start, end
	case report.PeriodYearly:
		return fmt.Sprintf("%04d-01-01", req.Year), fmt.Sprintf("%04d-12-31", req.Year)
	default:
		return clock.MonthRange(req.Year, time.Month(req.Month))
	}
}

func worked(rec attendance.AttendanceRecord) decimal.Decimal {
	return decimal.NewFromFloat(rec.WorkedHours())
}

// percent rounds half up to a whole number.
func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Floor(float64(part)/float64(total)*100 + 0.5))
}

// PeriodSummary implements report.ReportService.
func (r *ReportServiceImpl) PeriodSummary(ctx context.Context, req report.PeriodSummaryRequest) (report.PeriodSummary, error) {
	now := r.clock.Now()
	if req.Period == "" {
		req.Period = report.PeriodMonthly
	}
	if req.Month == 0 {
		req.Month = int(now.Month())
	}
	if req.Year == 0 {
		req.Year = now.Year()
	}
	if err := req.Validate(); err != nil {
		return report.PeriodSummary{}, err
	}

	from, to := r.periodRange(req)
	records, err := r.store.QueryByUserAndDateRange(ctx, req.UserID, from, to)
	if err != nil {
		return report.PeriodSummary{}, fmt.Errorf("failed to load records for %s..%s: %w", from, to, err)
	}

	total := decimal.Zero
	counts := make(map[attendance.Status]int, len(breakdownOrder))
	for _, rec := range records {
		total = total.Add(worked(rec))
		counts[rec.Status]++
	}

	summary := report.PeriodSummary{
		Period:       req.Period,
		StartDate:    from,
		EndDate:      to,
		TotalRecords: len(records),
		TotalHours:   total.Round(2).InexactFloat64(),
		PresentDays:  counts[attendance.StatusPresent],
	}
	if n := len(records); n > 0 {
		summary.AverageHours = total.Div(decimal.NewFromInt(int64(n))).Round(2).InexactFloat64()
		summary.AttendanceRate = attendance.Round2(float64(summary.PresentDays) / float64(n) * 100)
	}

	breakdownTotal := 0
	for _, status := range breakdownOrder {
		breakdownTotal += counts[status]
	}
	summary.StatusBreakdown = make([]report.StatusBreakdownItem, 0, len(breakdownOrder))
	for _, status := range breakdownOrder {
		summary.StatusBreakdown = append(summary.StatusBreakdown, report.StatusBreakdownItem{
			Status:     status,
			Count:      counts[status],
			Percentage: percent(counts[status], breakdownTotal),
		})
	}

	summary.MonthlySeries, err = r.monthlySeries(ctx, req.UserID, req.Year)
	if err != nil {
		return report.PeriodSummary{}, err
	}
	return summary, nil
}

func (r *ReportServiceImpl) monthlySeries(ctx context.Context, userID string, year int) ([]report.MonthlyHours, error) {
	from, to := fmt.Sprintf("%04d-01-01", year), fmt.Sprintf("%04d-12-31", year)
	records, err := r.store.QueryByUserAndDateRange(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load records for %d: %w", year, err)
	}

	buckets := make([]decimal.Decimal, 12)
	for _, rec := range records {
		if len(rec.Date) < 7 {
			continue
		}
		month, err := strconv.Atoi(rec.Date[5:7])
		if err != nil || month < 1 || month > 12 {
			continue
		}
		buckets[month-1] = buckets[month-1].Add(worked(rec))
	}

	series := make([]report.MonthlyHours, 12)
	for i := range series {
		series[i] = report.MonthlyHours{
			Month:  time.Month(i + 1).String()[:3],
			Hours:  buckets[i].Round(2).InexactFloat64(),
			Target: report.MonthlyTargetHours,
		}
	}
	return series, nil
}

func NewReportService(store attendance.RecordStore, clk clock.Clock) report.ReportService {
	return &ReportServiceImpl{
		store: store,
		clock: clk,
	}
}
