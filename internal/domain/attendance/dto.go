package attendance

import (
	"unicode/utf8"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/validator"
)

// ========================================
// SESSION OPERATION DTOs
// ========================================

// SessionRequest identifies whose session a clock or break operation targets.
// UserID may be empty in single-user deployments.
type SessionRequest struct {
	UserID string `json:"user_id"`
}

type Operation string

const (
	OperationClockIn    Operation = "clock_in"
	OperationClockOut   Operation = "clock_out"
	OperationStartBreak Operation = "start_break"
	OperationEndBreak   Operation = "end_break"
	OperationAutoClose  Operation = "auto_close"

	OperationUpdateNotes Operation = "update_notes"
)

// Stream event names published to subscribers.
const (
	EventAttendanceChanged = "attendance.changed"
	EventWorkingHours      = "working_hours"
)

type Outcome string

const (
	OutcomeApplied  Outcome = "applied"
	OutcomeRejected Outcome = "rejected"
)

type RejectReason string

const ReasonInvalidStateForOperation RejectReason = "invalid_state_for_operation"

// Result reports whether a session operation changed anything. A rejection
// is a normal outcome, not an error: the record is left exactly as it was.
type Result struct {
	Operation Operation         `json:"operation"`
	Outcome   Outcome           `json:"outcome"`
	Reason    RejectReason      `json:"reason,omitempty"`
	Phase     Phase             `json:"phase"`
	Record    *AttendanceRecord `json:"record,omitempty"`
}

func (r Result) IsApplied() bool {
	return r.Outcome == OutcomeApplied
}

// Applied builds the result of a successful transition.
func Applied(op Operation, rec AttendanceRecord) Result {
	return Result{
		Operation: op,
		Outcome:   OutcomeApplied,
		Phase:     rec.Phase(),
		Record:    &rec,
	}
}

// Rejected builds the result of an operation refused in the current phase. rec may be nil.
func Rejected(op Operation, rec *AttendanceRecord) Result {
	res := Result{
		Operation: op,
		Outcome:   OutcomeRejected,
		Reason:    ReasonInvalidStateForOperation,
		Phase:     rec.Phase(),
	}
	if rec != nil {
		c := rec.Clone()
		res.Record = &c
	}
	return res
}

// ========================================
// STATUS DTOs
// ========================================

type AttendanceStatusResponse struct {
	Date                string            `json:"date"`
	Phase               Phase             `json:"phase"`
	TodayRecord         *AttendanceRecord `json:"today_record,omitempty"`
	CurrentWorkingHours float64           `json:"current_working_hours"`
	WeeklyHours         float64           `json:"weekly_hours"`
	MonthlyHours        float64           `json:"monthly_hours"`
	LiveBreakMinutes    int               `json:"live_break_minutes"`
	CanClockIn          bool              `json:"can_clock_in"`
	CanClockOut         bool              `json:"can_clock_out"`
	CanStartBreak       bool              `json:"can_start_break"`
	CanEndBreak         bool              `json:"can_end_break"`
	Message             string            `json:"message"`
}

// LiveHoursEvent is pushed to stream subscribers every tick.
type LiveHoursEvent struct {
	Date                string  `json:"date"`
	Time                string  `json:"time"`
	Phase               Phase   `json:"phase"`
	CurrentWorkingHours float64 `json:"current_working_hours"`
	LiveBreakMinutes    int     `json:"live_break_minutes"`
}

// AutoCloseSummary reports one auto-closure pass.
type AutoCloseSummary struct {
	Trigger string   `json:"trigger"`
	Date    string   `json:"date"`
	Closed  int      `json:"closed"`
	Failed  int      `json:"failed"`
	IDs     []string `json:"ids"`
}

// ========================================
// HISTORY DTOs
// ========================================

type HistoryFilter struct {
	UserID    string `json:"user_id"`
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
}

func (f *HistoryFilter) Validate() error {
	var errs validator.ValidationErrors

	start, startOK := validator.IsValidDate(f.StartDate)
	if f.StartDate != "" && !startOK {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}

	end, endOK := validator.IsValidDate(f.EndDate)
	if f.EndDate != "" && !endOK {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}

	if startOK && endOK && end.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type HistoryResponse struct {
	StartDate  string             `json:"start_date"`
	EndDate    string             `json:"end_date"`
	TotalCount int                `json:"total_count"`
	TotalHours float64            `json:"total_hours"`
	Records    []AttendanceRecord `json:"records"`
}

// ========================================
// NOTES DTOs
// ========================================

const maxNotesLength = 1000

type UpdateNotesRequest struct {
	UserID string `json:"-"`
	ID     string `json:"-"`
	Notes  string `json:"notes"`
}

func (r *UpdateNotesRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "attendance id is required",
		})
	}

	if utf8.RuneCountInString(r.Notes) > maxNotesLength {
		errs = append(errs, validator.ValidationError{
			Field:   "notes",
			Message: "notes must not exceed 1000 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
