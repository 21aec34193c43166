package report

import (
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/validator"
)

type Period string

const (
	PeriodWeekly    Period = "weekly"
	PeriodMonthly   Period = "monthly"
	PeriodQuarterly Period = "quarterly"
	PeriodYearly    Period = "yearly"
)

var validPeriods = []string{
	string(PeriodWeekly),
	string(PeriodMonthly),
	string(PeriodQuarterly),
	string(PeriodYearly),
}

// MonthlyTargetHours is the reference bar for the monthly series: 8h x 20 days.
const MonthlyTargetHours = 160

// ========================================
// PERIOD SUMMARY
// ========================================

// PeriodSummaryRequest selects the records a summary covers. Month and Year
// default to the current ones; Month also picks the quarter. Weekly always
// means the current week.
type PeriodSummaryRequest struct {
	UserID string `json:"-"`
	Period Period `json:"period"`
	Month  int    `json:"month"`
	Year   int    `json:"year"`
}

func (r *PeriodSummaryRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsInSlice(string(r.Period), validPeriods) {
		errs = append(errs, validator.ValidationError{
			Field:   "period",
			Message: ErrInvalidPeriod.Error(),
		})
	}

	if r.Month < 1 || r.Month > 12 {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: ErrInvalidMonth.Error(),
		})
	}

	if r.Year < 2000 || r.Year > 2100 {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be between 2000 and 2100",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PeriodSummary struct {
	Period    Period `json:"period"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`

	TotalRecords   int     `json:"total_records"`
	TotalHours     float64 `json:"total_hours"`
	AverageHours   float64 `json:"average_hours"`
	PresentDays    int     `json:"present_days"`
	AttendanceRate float64 `json:"attendance_rate"`

	StatusBreakdown []StatusBreakdownItem `json:"status_breakdown"`
	MonthlySeries   []MonthlyHours        `json:"monthly_series"`
}

// StatusBreakdownItem counts records with one status; Percentage is a whole number.
type StatusBreakdownItem struct {
	Status     attendance.Status `json:"status"`
	Count      int               `json:"count"`
	Percentage int               `json:"percentage"`
}

// MonthlyHours is one bar of the year chart.
type MonthlyHours struct {
	Month  string  `json:"month"`
	Hours  float64 `json:"hours"`
	Target float64 `json:"target"`
}
