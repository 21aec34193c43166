package cron

import (
	"context"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/sse"
)

const JobLiveHours = "live_hours"

// LiveJobs pushes running working-hours figures to stream subscribers.
type LiveJobs struct {
	broadcaster *sse.Broadcaster
	interval    time.Duration
}

func NewLiveJobs(attendanceService attendance.AttendanceService, hub *sse.Hub, interval time.Duration) *LiveJobs {
	source := func(ctx context.Context, userID string) (interface{}, error) {
		return attendanceService.LiveHours(ctx, attendance.SessionRequest{UserID: userID})
	}
	return &LiveJobs{
		broadcaster: sse.NewBroadcaster(hub, attendance.EventWorkingHours, source),
		interval:    interval,
	}
}

// RegisterJobs registers the per-tick live hours push
func (j *LiveJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob(JobLiveHours, j.interval, j.PushLiveHours, Quiet(), SkipInitialRun())
}

// PushLiveHours publishes one working_hours event per subscribed user.
func (j *LiveJobs) PushLiveHours(ctx context.Context) error {
	return j.broadcaster.Broadcast(ctx)
}
