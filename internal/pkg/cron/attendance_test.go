package cron

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/repository/memory"
	attendanceService "github.com/cmlabs-hris/timeclock-backend-go/internal/service/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestAttendanceJobs(t *testing.T) {
	ctx := context.Background()
	store := memory.NewAttendanceRepository(
		attendance.AttendanceRecord{ID: "yesterday", UserID: "u1", Date: "2026-03-01", ClockIn: strPtr("09:00"), Breaks: []attendance.BreakRecord{}, Status: attendance.StatusPresent},
		attendance.AttendanceRecord{ID: "today", UserID: "u2", Date: "2026-03-02", ClockIn: strPtr("09:00"), Breaks: []attendance.BreakRecord{}, Status: attendance.StatusPresent},
	)
	clk := clock.NewFixed(time.Date(2026, time.March, 2, 12, 0, 0, 0, time.UTC))
	svc := attendanceService.NewAttendanceService(store, clk, nil)

	scheduler := NewScheduler()
	NewAttendanceJobs(svc, time.Minute, time.Hour).RegisterJobs(scheduler)
	assert.Equal(t, []string{JobAutoCloseDayEnd, JobSweepStaleSessions}, scheduler.Jobs())

	require.NoError(t, scheduler.RunOnce(ctx))

	stale, err := store.GetByID(ctx, "yesterday")
	require.NoError(t, err)
	assert.Equal(t, "23:59", *stale.ClockOut)
	assert.Equal(t, attendance.StatusEarlyLeave, stale.Status)

	current, err := store.GetByID(ctx, "today")
	require.NoError(t, err)
	assert.True(t, current.IsOpen())

	clk.Set(time.Date(2026, time.March, 2, 23, 59, 30, 0, time.UTC))
	require.NoError(t, scheduler.RunOnce(ctx))

	current, err = store.GetByID(ctx, "today")
	require.NoError(t, err)
	assert.Equal(t, "23:59", *current.ClockOut)
	assert.Equal(t, 15.0, current.TotalHours)
}

func TestLiveJobs(t *testing.T) {
	ctx := context.Background()
	store := memory.NewAttendanceRepository(
		attendance.AttendanceRecord{ID: "r1", UserID: "u1", Date: "2026-03-02", ClockIn: strPtr("09:00"), Breaks: []attendance.BreakRecord{}, Status: attendance.StatusPresent},
	)
	clk := clock.NewFixed(time.Date(2026, time.March, 2, 10, 15, 0, 0, time.UTC))
	svc := attendanceService.NewAttendanceService(store, clk, nil)
	hub := sse.NewHub()

	events, cleanup := hub.Subscribe("u1")
	defer cleanup()

	jobs := NewLiveJobs(svc, hub, time.Second)
	require.NoError(t, jobs.PushLiveHours(ctx))

	require.Len(t, events, 1)
	ev := <-events
	assert.Equal(t, attendance.EventWorkingHours, ev.Event)
	live, ok := ev.Data.(attendance.LiveHoursEvent)
	require.True(t, ok)
	assert.Equal(t, 1.25, live.CurrentWorkingHours)
	assert.Equal(t, attendance.PhaseWorking, live.Phase)
}
