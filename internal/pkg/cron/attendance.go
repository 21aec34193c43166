package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/attendance"
)

const (
	JobAutoCloseDayEnd    = "auto_close_day_end"
	JobSweepStaleSessions = "sweep_stale_sessions"
)

type AttendanceJobs struct {
	attendanceService attendance.AttendanceService
	autoCloseInterval time.Duration
	sweepInterval     time.Duration
}

func NewAttendanceJobs(
	attendanceService attendance.AttendanceService,
	autoCloseInterval time.Duration,
	sweepInterval time.Duration,
) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceService: attendanceService,
		autoCloseInterval: autoCloseInterval,
		sweepInterval:     sweepInterval,
	}
}

// RegisterJobs adds the day-end tick and the stale sweep. The sweep also
// catches any session the tick missed because the process was down at 23:59.
func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob(JobAutoCloseDayEnd, j.autoCloseInterval, j.AutoCloseDayEnd, Quiet())
	scheduler.AddJob(JobSweepStaleSessions, j.sweepInterval, j.SweepStaleSessions)
}

// AutoCloseDayEnd closes today's open sessions; a no-op outside 23:59.
func (j *AttendanceJobs) AutoCloseDayEnd(ctx context.Context) error {
	summary, err := j.attendanceService.AutoCloseDueSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to auto-close day-end sessions: %w", err)
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d day-end sessions failed to close", summary.Failed, summary.Failed+summary.Closed)
	}
	return nil
}

// SweepStaleSessions closes open sessions left over from previous days.
func (j *AttendanceJobs) SweepStaleSessions(ctx context.Context) error {
	summary, err := j.attendanceService.SweepStaleSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to sweep stale sessions: %w", err)
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d stale sessions failed to close", summary.Failed, summary.Failed+summary.Closed)
	}
	return nil
}
