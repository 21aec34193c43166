package attendance

import (
	"context"
)

// AttendanceService is the attendance session engine.
type AttendanceService interface {
	// ClockIn opens today's session. Rejected unless the day is not started.
	ClockIn(ctx context.Context, req SessionRequest) (Result, error)

	// ClockOut closes today's session, ending any active break first.
	ClockOut(ctx context.Context, req SessionRequest) (Result, error)

	// StartBreak begins a break. Rejected unless working.
	StartBreak(ctx context.Context, req SessionRequest) (Result, error)

	// EndBreak ends the active break. Rejected unless on break.
	EndBreak(ctx context.Context, req SessionRequest) (Result, error)

	// AutoCloseAtDayEnd closes the user's open session for today at 23:59.
	AutoCloseAtDayEnd(ctx context.Context, req SessionRequest) (Result, error)

	// AutoCloseRecord closes one open record at 23:59 and flags it early_leave.
	// Already closed records are left untouched.
	AutoCloseRecord(ctx context.Context, id string) (Result, error)

	// AutoCloseDueSessions closes today's open sessions once the clock reads 23:59.
	AutoCloseDueSessions(ctx context.Context) (AutoCloseSummary, error)

	// SweepStaleSessions closes every open session dated before today.
	SweepStaleSessions(ctx context.Context) (AutoCloseSummary, error)

	// GetStatus returns the phase, today's record and the derived statistics.
	GetStatus(ctx context.Context, req SessionRequest) (AttendanceStatusResponse, error)

	// CurrentPhase returns today's phase.
	CurrentPhase(ctx context.Context, req SessionRequest) (Phase, error)

	// CurrentWorkingHours returns live net hours for today.
	CurrentWorkingHours(ctx context.Context, req SessionRequest) (float64, error)

	// WeeklyHours sums worked hours since the most recent Sunday.
	WeeklyHours(ctx context.Context, req SessionRequest) (float64, error)

	// MonthlyHours sums worked hours in the current calendar month.
	MonthlyHours(ctx context.Context, req SessionRequest) (float64, error)

	// LiveHours builds the per-second stream payload.
	LiveHours(ctx context.Context, req SessionRequest) (LiveHoursEvent, error)

	// GetHistory lists records in a date range, defaulting to the current month.
	GetHistory(ctx context.Context, filter HistoryFilter) (HistoryResponse, error)

	// UpdateNotes sets the free-text notes on one of the user's records.
	UpdateNotes(ctx context.Context, req UpdateNotesRequest) (AttendanceRecord, error)
}
