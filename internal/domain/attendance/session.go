package attendance

import (
	"fmt"
	"math"
	"time"
)

const (
	dateTimeLayout = "2006-01-02 15:04"

	// DayEndClockOut is the clock-out written by auto-closure.
	DayEndClockOut = "23:59"

	// dayEndSeconds extends DayEndClockOut to 23:59:59 for the hours figure.
	dayEndSeconds = 59 * time.Second
)

// Round2 rounds half up to two decimals, the way the web client always has.
func Round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// ParseClockTime combines a YYYY-MM-DD date and an HH:MM time-of-day in loc.
func ParseClockTime(date, hhmm string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(dateTimeLayout, date+" "+hhmm, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q %q", ErrInvalidTimeValue, date, hhmm)
	}
	return t, nil
}

// BreakMinutes returns whole minutes between two HH:MM values on date, clamped at zero.
func BreakMinutes(date, from, to string, loc *time.Location) (int, error) {
	start, err := ParseClockTime(date, from, loc)
	if err != nil {
		return 0, err
	}
	end, err := ParseClockTime(date, to, loc)
	if err != nil {
		return 0, err
	}
	mins := int(math.Round(end.Sub(start).Minutes()))
	if mins < 0 {
		return 0, nil
	}
	return mins, nil
}

// StartBreak appends an active break beginning at hhmm.
func (r *AttendanceRecord) StartBreak(id, hhmm string) {
	r.Breaks = append(r.Breaks, BreakRecord{
		ID:        id,
		StartTime: hhmm,
		Duration:  0,
	})
}

// EndActiveBreak stamps the active break with hhmm and its duration.
// It is a no-op when no break is active.
func (r *AttendanceRecord) EndActiveBreak(hhmm string, loc *time.Location) error {
	idx := r.ActiveBreakIndex()
	if idx < 0 {
		return nil
	}
	mins, err := BreakMinutes(r.Date, r.Breaks[idx].StartTime, hhmm, loc)
	if err != nil {
		return err
	}
	end := hhmm
	r.Breaks[idx].EndTime = &end
	r.Breaks[idx].Duration = mins
	return nil
}

// TotalBreakMinutes sums the stored break durations.
func (r *AttendanceRecord) TotalBreakMinutes() int {
	total := 0
	for _, b := range r.Breaks {
		total += b.Duration
	}
	return total
}

// Close ends any active break at hhmm, freezes the hour fields and sets ClockOut.
// totalHours and netWorkHours are unclamped.
func (r *AttendanceRecord) Close(hhmm string, loc *time.Location) error {
	end, err := ParseClockTime(r.Date, hhmm, loc)
	if err != nil {
		return err
	}
	return r.CloseAt(hhmm, end, loc)
}

// CloseAtDayEnd stamps ClockOut 23:59 but measures hours to 23:59:59 of the record's date.
func (r *AttendanceRecord) CloseAtDayEnd(loc *time.Location) error {
	end, err := ParseClockTime(r.Date, DayEndClockOut, loc)
	if err != nil {
		return err
	}
	return r.CloseAt(DayEndClockOut, end.Add(dayEndSeconds), loc)
}

// CloseAt stores hhmm as ClockOut and as the end of any active break, and
// takes the hour fields from clock-in up to end.
func (r *AttendanceRecord) CloseAt(hhmm string, end time.Time, loc *time.Location) error {
	if r.ClockIn == nil {
		return fmt.Errorf("close record %s: %w", r.ID, ErrInvalidTimeValue)
	}
	start, err := ParseClockTime(r.Date, *r.ClockIn, loc)
	if err != nil {
		return err
	}
	if err := r.EndActiveBreak(hhmm, loc); err != nil {
		return err
	}
	hours := end.Sub(start).Hours()

	total := Round2(hours)
	breakHours := Round2(float64(r.TotalBreakMinutes()) / 60)
	net := Round2(total - breakHours)
	out := hhmm

	r.ClockOut = &out
	r.TotalHours = total
	r.TotalBreakTime = breakHours
	r.NetWorkHours = &net
	return nil
}

// LiveWorkingHours computes hours worked so far against now, excluding
// completed breaks and the running part of an active one. Closed records
// report their stored figure.
func (r *AttendanceRecord) LiveWorkingHours(now time.Time) (float64, error) {
	switch r.Phase() {
	case PhaseNotStarted:
		return 0, nil
	case PhaseClosed:
		return r.WorkedHours(), nil
	}

	clockIn, err := ParseClockTime(r.Date, *r.ClockIn, now.Location())
	if err != nil {
		return 0, err
	}
	elapsed := now.Sub(clockIn).Hours()

	breakHours := float64(r.TotalBreakMinutes()) / 60
	if idx := r.ActiveBreakIndex(); idx >= 0 {
		start, err := ParseClockTime(r.Date, r.Breaks[idx].StartTime, now.Location())
		if err != nil {
			return 0, err
		}
		if running := now.Sub(start).Hours(); running > 0 {
			breakHours += running
		}
	}

	live := Round2(elapsed - breakHours)
	if live < 0 {
		return 0, nil
	}
	return live, nil
}

// LiveBreakMinutes is the display estimate for the active break, 0 when none.
func (r *AttendanceRecord) LiveBreakMinutes(now time.Time) int {
	idx := r.ActiveBreakIndex()
	if idx < 0 {
		return 0
	}
	start, err := ParseClockTime(r.Date, r.Breaks[idx].StartTime, now.Location())
	if err != nil {
		return 0
	}
	mins := int(now.Sub(start).Minutes())
	if mins < 0 {
		return 0
	}
	return mins
}
