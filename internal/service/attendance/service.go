package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/sse"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TriggerDayEnd     = "day_end"
	TriggerStaleSweep = "stale_sweep"
)

type AttendanceServiceImpl struct {
	store attendance.RecordStore
	clock clock.Clock
	hub   *sse.Hub
}

// newRecordID prefers time-ordered ids so store scans come back in insert order.
func newRecordID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (a *AttendanceServiceImpl) now() (time.Time, string, string) {
	now := a.clock.Now()
	return now, clock.DateString(now), clock.TimeOfDay(now)
}

// todayRecord returns the user's record for date, or nil when there is none.
// An open record wins over a closed one, and any clocked-in record wins over
// a placeholder for the same day.
func (a *AttendanceServiceImpl) todayRecord(ctx context.Context, userID, date string) (*attendance.AttendanceRecord, error) {
	records, err := a.store.QueryByUserAndDateRange(ctx, userID, date, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load record for %s: %w", date, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	for i := range records {
		if records[i].IsOpen() {
			return &records[i], nil
		}
	}
	for i := range records {
		if records[i].Phase() != attendance.PhaseNotStarted {
			return &records[i], nil
		}
	}
	return &records[0], nil
}

func (a *AttendanceServiceImpl) publish(userID string, res attendance.Result) {
	if a.hub == nil {
		return
	}
	a.hub.Publish(userID, sse.Event{
		UserID: userID,
		Event:  attendance.EventAttendanceChanged,
		Data:   res,
	})
}

func closeUpdate(rec attendance.AttendanceRecord) attendance.RecordUpdate {
	return attendance.RecordUpdate{
		ClockOut:       rec.ClockOut,
		Breaks:         &rec.Breaks,
		TotalHours:     &rec.TotalHours,
		TotalBreakTime: &rec.TotalBreakTime,
		NetWorkHours:   rec.NetWorkHours,
		RequireOpen:    true,
	}
}

// rejectClosed answers a write that lost to a concurrent close with the stored record.
func (a *AttendanceServiceImpl) rejectClosed(ctx context.Context, op attendance.Operation, id string) (attendance.Result, error) {
	rec, err := a.store.GetByID(ctx, id)
	if err != nil {
		return attendance.Result{}, fmt.Errorf("failed to reload record %s: %w", id, err)
	}
	return attendance.Rejected(op, &rec), nil
}

// ClockIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockIn(ctx context.Context, req attendance.SessionRequest) (attendance.Result, error) {
	_, today, hhmm := a.now()

	existing, err := a.todayRecord(ctx, req.UserID, today)
	if err != nil {
		return attendance.Result{}, err
	}
	if existing.Phase() != attendance.PhaseNotStarted {
		return attendance.Rejected(attendance.OperationClockIn, existing), nil
	}

	zero := 0.0
	newRecord := attendance.AttendanceRecord{
		UserID:         req.UserID,
		Date:           today,
		ClockIn:        &hhmm,
		Breaks:         []attendance.BreakRecord{},
		TotalHours:     0,
		TotalBreakTime: 0,
		NetWorkHours:   &zero,
		Status:         attendance.StatusPresent,
	}

	var saved attendance.AttendanceRecord
	if existing != nil {
		newRecord.Notes = existing.Notes
		saved, err = a.store.Replace(ctx, attendance.RecordMatch{
			UserID:         req.UserID,
			Date:           today,
			ClockInMissing: true,
		}, newRecord)
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			existing = nil
		} else if err != nil {
			return attendance.Result{}, fmt.Errorf("failed to replace placeholder record: %w", err)
		}
	}
	if existing == nil {
		newRecord.ID = newRecordID()
		saved, err = a.store.Append(ctx, newRecord)
		if err != nil {
			return attendance.Result{}, fmt.Errorf("failed to create attendance record: %w", err)
		}
	}

	slog.Info("Clocked in", "user_id", req.UserID, "date", today, "clock_in", hhmm, "record_id", saved.ID)

	res := attendance.Applied(attendance.OperationClockIn, saved)
	a.publish(req.UserID, res)
	return res, nil
}

// ClockOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockOut(ctx context.Context, req attendance.SessionRequest) (attendance.Result, error) {
	now, today, hhmm := a.now()

	existing, err := a.todayRecord(ctx, req.UserID, today)
	if err != nil {
		return attendance.Result{}, err
	}
	if !existing.IsOpen() {
		return attendance.Rejected(attendance.OperationClockOut, existing), nil
	}

	closed := existing.Clone()
	if err := closed.Close(hhmm, now.Location()); err != nil {
		return attendance.Result{}, fmt.Errorf("failed to close record %s: %w", existing.ID, err)
	}

	saved, err := a.store.Update(ctx, existing.ID, closeUpdate(closed))
	if errors.Is(err, attendance.ErrRecordClosed) {
		return a.rejectClosed(ctx, attendance.OperationClockOut, existing.ID)
	}
	if err != nil {
		return attendance.Result{}, fmt.Errorf("failed to save clock-out: %w", err)
	}

	slog.Info("Clocked out", "user_id", req.UserID, "date", today, "clock_out", hhmm,
		"total_hours", saved.TotalHours, "net_work_hours", saved.WorkedHours())

	res := attendance.Applied(attendance.OperationClockOut, saved)
	a.publish(req.UserID, res)
	return res, nil
}

// StartBreak implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) StartBreak(ctx context.Context, req attendance.SessionRequest) (attendance.Result, error) {
	_, today, hhmm := a.now()

	existing, err := a.todayRecord(ctx, req.UserID, today)
	if err != nil {
		return attendance.Result{}, err
	}
	if existing.Phase() != attendance.PhaseWorking {
		return attendance.Rejected(attendance.OperationStartBreak, existing), nil
	}

	updated := existing.Clone()
	updated.StartBreak(uuid.NewString(), hhmm)

	saved, err := a.store.Update(ctx, existing.ID, attendance.RecordUpdate{Breaks: &updated.Breaks, RequireOpen: true})
	if errors.Is(err, attendance.ErrRecordClosed) {
		return a.rejectClosed(ctx, attendance.OperationStartBreak, existing.ID)
	}
	if err != nil {
		return attendance.Result{}, fmt.Errorf("failed to save break start: %w", err)
	}

	res := attendance.Applied(attendance.OperationStartBreak, saved)
	a.publish(req.UserID, res)
	return res, nil
}

// EndBreak implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) EndBreak(ctx context.Context, req attendance.SessionRequest) (attendance.Result, error) {
	now, today, hhmm := a.now()

	existing, err := a.todayRecord(ctx, req.UserID, today)
	if err != nil {
		return attendance.Result{}, err
	}
	if existing.Phase() != attendance.PhaseOnBreak {
		return attendance.Rejected(attendance.OperationEndBreak, existing), nil
	}

	updated := existing.Clone()
	if err := updated.EndActiveBreak(hhmm, now.Location()); err != nil {
		return attendance.Result{}, fmt.Errorf("failed to end break: %w", err)
	}

	saved, err := a.store.Update(ctx, existing.ID, attendance.RecordUpdate{Breaks: &updated.Breaks, RequireOpen: true})
	if errors.Is(err, attendance.ErrRecordClosed) {
		return a.rejectClosed(ctx, attendance.OperationEndBreak, existing.ID)
	}
	if err != nil {
		return attendance.Result{}, fmt.Errorf("failed to save break end: %w", err)
	}

	res := attendance.Applied(attendance.OperationEndBreak, saved)
	a.publish(req.UserID, res)
	return res, nil
}

// autoClose freezes an open record at 23:59 of its own date. A record closed
// concurrently since it was read is left as stored.
func (a *AttendanceServiceImpl) autoClose(ctx context.Context, rec attendance.AttendanceRecord) (attendance.Result, error) {
	if !rec.IsOpen() {
		return attendance.Rejected(attendance.OperationAutoClose, &rec), nil
	}

	closed := rec.Clone()
	if err := closed.CloseAtDayEnd(a.clock.Now().Location()); err != nil {
		return attendance.Result{}, fmt.Errorf("failed to close record %s: %w", rec.ID, err)
	}
	status := attendance.StatusEarlyLeave
	fields := closeUpdate(closed)
	fields.Status = &status

	saved, err := a.store.Update(ctx, rec.ID, fields)
	if errors.Is(err, attendance.ErrRecordClosed) {
		return a.rejectClosed(ctx, attendance.OperationAutoClose, rec.ID)
	}
	if err != nil {
		return attendance.Result{}, fmt.Errorf("failed to save auto-close of %s: %w", rec.ID, err)
	}

	res := attendance.Applied(attendance.OperationAutoClose, saved)
	a.publish(saved.UserID, res)
	return res, nil
}

// AutoCloseAtDayEnd implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) AutoCloseAtDayEnd(ctx context.Context, req attendance.SessionRequest) (attendance.Result, error) {
	_, today, _ := a.now()

	existing, err := a.todayRecord(ctx, req.UserID, today)
	if err != nil {
		return attendance.Result{}, err
	}
	if existing == nil {
		return attendance.Rejected(attendance.OperationAutoClose, nil), nil
	}
	return a.autoClose(ctx, *existing)
}

// AutoCloseRecord implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) AutoCloseRecord(ctx context.Context, id string) (attendance.Result, error) {
	rec, err := a.store.GetByID(ctx, id)
	if err != nil {
		return attendance.Result{}, fmt.Errorf("failed to get record %s: %w", id, err)
	}
	return a.autoClose(ctx, rec)
}

func (a *AttendanceServiceImpl) closeAll(ctx context.Context, summary *attendance.AutoCloseSummary, records []attendance.AttendanceRecord) {
	for _, rec := range records {
		res, err := a.autoClose(ctx, rec)
		if err != nil {
			slog.Error("Cron: Failed to auto-close attendance",
				"trigger", summary.Trigger,
				"record_id", rec.ID,
				"user_id", rec.UserID,
				"date", rec.Date,
				"error", err)
			summary.Failed++
			continue
		}
		if res.IsApplied() {
			summary.Closed++
			summary.IDs = append(summary.IDs, rec.ID)
		}
	}
}

// AutoCloseDueSessions implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) AutoCloseDueSessions(ctx context.Context) (attendance.AutoCloseSummary, error) {
	_, today, hhmm := a.now()
	summary := attendance.AutoCloseSummary{Trigger: TriggerDayEnd, Date: today, IDs: []string{}}

	if hhmm != attendance.DayEndClockOut {
		return summary, nil
	}

	open, err := a.store.ListOpen(ctx, today)
	if err != nil {
		return summary, fmt.Errorf("failed to list open sessions: %w", err)
	}

	due := make([]attendance.AttendanceRecord, 0, len(open))
	for _, rec := range open {
		if rec.Date == today {
			due = append(due, rec)
		}
	}
	a.closeAll(ctx, &summary, due)

	if summary.Closed > 0 || summary.Failed > 0 {
		slog.Info("Cron: Auto-closed sessions at day end", "date", today, "closed", summary.Closed, "failed", summary.Failed)
	}
	return summary, nil
}

// SweepStaleSessions implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) SweepStaleSessions(ctx context.Context) (attendance.AutoCloseSummary, error) {
	now, today, _ := a.now()
	yesterday := clock.DateString(now.AddDate(0, 0, -1))
	summary := attendance.AutoCloseSummary{Trigger: TriggerStaleSweep, Date: today, IDs: []string{}}

	stale, err := a.store.ListOpen(ctx, yesterday)
	if err != nil {
		return summary, fmt.Errorf("failed to list stale sessions: %w", err)
	}
	if len(stale) == 0 {
		return summary, nil
	}

	a.closeAll(ctx, &summary, stale)
	slog.Info("Cron: Swept stale sessions", "on_or_before", yesterday, "closed", summary.Closed, "failed", summary.Failed)
	return summary, nil
}

func monthOf(t time.Time) (string, string) {
	return clock.MonthRange(t.Year(), t.Month())
}

// SumWorkedHours adds net hours, total hours for legacy records, at two decimals.
func SumWorkedHours(records []attendance.AttendanceRecord) float64 {
	sum := decimal.Zero
	for _, rec := range records {
		sum = sum.Add(decimal.NewFromFloat(rec.WorkedHours()))
	}
	return sum.Round(2).InexactFloat64()
}

func (a *AttendanceServiceImpl) hoursInRange(ctx context.Context, userID, from, to string) (float64, error) {
	records, err := a.store.QueryByUserAndDateRange(ctx, userID, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to load records %s..%s: %w", from, to, err)
	}
	return SumWorkedHours(records), nil
}

// CurrentPhase implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CurrentPhase(ctx context.Context, req attendance.SessionRequest) (attendance.Phase, error) {
	_, today, _ := a.now()
	rec, err := a.todayRecord(ctx, req.UserID, today)
	if err != nil {
		return "", err
	}
	return rec.Phase(), nil
}

// CurrentWorkingHours implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CurrentWorkingHours(ctx context.Context, req attendance.SessionRequest) (float64, error) {
	now, today, _ := a.now()
	rec, err := a.todayRecord(ctx, req.UserID, today)
	if err != nil {
		return 0, err
	}
	if rec == nil {
		return 0, nil
	}
	return rec.LiveWorkingHours(now)
}

// WeeklyHours implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) WeeklyHours(ctx context.Context, req attendance.SessionRequest) (float64, error) {
	from, to := clock.WeekRange(a.clock.Now())
	return a.hoursInRange(ctx, req.UserID, from, to)
}

// MonthlyHours implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) MonthlyHours(ctx context.Context, req attendance.SessionRequest) (float64, error) {
	from, to := monthOf(a.clock.Now())
	return a.hoursInRange(ctx, req.UserID, from, to)
}

func statusMessage(p attendance.Phase) string {
	switch p {
	case attendance.PhaseWorking:
		return "Currently working"
	case attendance.PhaseOnBreak:
		return "On break"
	case attendance.PhaseClosed:
		return "Clocked out for today"
	default:
		return "Not clocked in yet"
	}
}

// GetStatus implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetStatus(ctx context.Context, req attendance.SessionRequest) (attendance.AttendanceStatusResponse, error) {
	now, today, _ := a.now()

	rec, err := a.todayRecord(ctx, req.UserID, today)
	if err != nil {
		return attendance.AttendanceStatusResponse{}, err
	}

	live := 0.0
	if rec != nil {
		live, err = rec.LiveWorkingHours(now)
		if err != nil {
			return attendance.AttendanceStatusResponse{}, fmt.Errorf("failed to compute live hours: %w", err)
		}
	}

	weekFrom, weekTo := clock.WeekRange(now)
	weekly, err := a.hoursInRange(ctx, req.UserID, weekFrom, weekTo)
	if err != nil {
		return attendance.AttendanceStatusResponse{}, err
	}
	monthFrom, monthTo := monthOf(now)
	monthly, err := a.hoursInRange(ctx, req.UserID, monthFrom, monthTo)
	if err != nil {
		return attendance.AttendanceStatusResponse{}, err
	}

	phase := rec.Phase()
	resp := attendance.AttendanceStatusResponse{
		Date:                today,
		Phase:               phase,
		CurrentWorkingHours: live,
		WeeklyHours:         weekly,
		MonthlyHours:        monthly,
		CanClockIn:          phase == attendance.PhaseNotStarted,
		CanClockOut:         phase == attendance.PhaseWorking || phase == attendance.PhaseOnBreak,
		CanStartBreak:       phase == attendance.PhaseWorking,
		CanEndBreak:         phase == attendance.PhaseOnBreak,
		Message:             statusMessage(phase),
	}
	if rec != nil {
		c := rec.Clone()
		resp.TodayRecord = &c
		resp.LiveBreakMinutes = rec.LiveBreakMinutes(now)
	}
	return resp, nil
}

// LiveHours implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) LiveHours(ctx context.Context, req attendance.SessionRequest) (attendance.LiveHoursEvent, error) {
	now, today, hhmm := a.now()

	rec, err := a.todayRecord(ctx, req.UserID, today)
	if err != nil {
		return attendance.LiveHoursEvent{}, err
	}

	ev := attendance.LiveHoursEvent{
		Date:  today,
		Time:  hhmm,
		Phase: rec.Phase(),
	}
	if rec != nil {
		ev.CurrentWorkingHours, err = rec.LiveWorkingHours(now)
		if err != nil {
			return attendance.LiveHoursEvent{}, fmt.Errorf("failed to compute live hours: %w", err)
		}
		ev.LiveBreakMinutes = rec.LiveBreakMinutes(now)
	}
	return ev, nil
}

// GetHistory implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetHistory(ctx context.Context, filter attendance.HistoryFilter) (attendance.HistoryResponse, error) {
	from, to := monthOf(a.clock.Now())
	if filter.StartDate == "" {
		filter.StartDate = from
	}
	if filter.EndDate == "" {
		filter.EndDate = to
	}
	if err := filter.Validate(); err != nil {
		return attendance.HistoryResponse{}, err
	}

	records, err := a.store.QueryByUserAndDateRange(ctx, filter.UserID, filter.StartDate, filter.EndDate)
	if err != nil {
		return attendance.HistoryResponse{}, fmt.Errorf("failed to load history: %w", err)
	}

	return attendance.HistoryResponse{
		StartDate:  filter.StartDate,
		EndDate:    filter.EndDate,
		TotalCount: len(records),
		TotalHours: SumWorkedHours(records),
		Records:    records,
	}, nil
}

// UpdateNotes implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) UpdateNotes(ctx context.Context, req attendance.UpdateNotesRequest) (attendance.AttendanceRecord, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceRecord{}, err
	}

	rec, err := a.store.GetByID(ctx, req.ID)
	if err != nil {
		return attendance.AttendanceRecord{}, fmt.Errorf("failed to get record %s: %w", req.ID, err)
	}
	if rec.UserID != req.UserID {
		return attendance.AttendanceRecord{}, attendance.ErrAttendanceNotFound
	}

	notes := req.Notes
	saved, err := a.store.Update(ctx, req.ID, attendance.RecordUpdate{Notes: &notes})
	if err != nil {
		return attendance.AttendanceRecord{}, fmt.Errorf("failed to update notes: %w", err)
	}

	a.publish(req.UserID, attendance.Applied(attendance.OperationUpdateNotes, saved))
	return saved, nil
}

// NewAttendanceService wires the engine. hub may be nil.
func NewAttendanceService(store attendance.RecordStore, clk clock.Clock, hub *sse.Hub) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		store: store,
		clock: clk,
		hub:   hub,
	}
}
