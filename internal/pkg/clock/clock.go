package clock

import (
	"sync"
	"time"
)

const (
	DateLayout      = "2006-01-02"
	TimeOfDayLayout = "15:04"
)

// Clock supplies the current instant. Every "today" comparison in the
// attendance engine goes through it.
type Clock interface {
	Now() time.Time
}

type systemClock struct {
	loc *time.Location
}

// NewSystemClock returns a wall clock reporting time in loc. A nil loc means time.Local.
func NewSystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return &systemClock{loc: loc}
}

func (c *systemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// Fixed is a settable clock for tests and replays.
type Fixed struct {
	mu  sync.RWMutex
	now time.Time
}

func NewFixed(now time.Time) *Fixed {
	return &Fixed{now: now}
}

func (f *Fixed) Now() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.now
}

// Set moves the clock to t.
func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}

// Advance moves the clock forward by d.
func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// DateString formats t as YYYY-MM-DD.
func DateString(t time.Time) string {
	return t.Format(DateLayout)
}

// TimeOfDay formats t as 24h HH:MM, dropping seconds.
func TimeOfDay(t time.Time) string {
	return t.Format(TimeOfDayLayout)
}

// WeekRange returns the Sunday and Saturday dates of the week containing t.
func WeekRange(t time.Time) (string, string) {
	start := t.AddDate(0, 0, -int(t.Weekday()))
	return DateString(start), DateString(start.AddDate(0, 0, 6))
}

// MonthRange returns the first and last dates of month in year.
func MonthRange(year int, month time.Month) (string, string) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return DateString(first), DateString(first.AddDate(0, 1, -1))
}
