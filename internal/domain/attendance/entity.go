package attendance

type Status string

const (
	StatusPresent    Status = "present"
	StatusAbsent     Status = "absent"
	StatusLate       Status = "late"
	StatusEarlyLeave Status = "early_leave"
)

// Phase is the per-day session state derived from a record.
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseWorking    Phase = "working"
	PhaseOnBreak    Phase = "on_break"
	PhaseClosed     Phase = "closed"
)

// AttendanceRecord is one user's attendance for one calendar date.
// Date is YYYY-MM-DD, ClockIn/ClockOut are 24h HH:MM.
type AttendanceRecord struct {
	ID             string        `json:"id"`
	UserID         string        `json:"userId,omitempty"`
	Date           string        `json:"date"`
	ClockIn        *string       `json:"clockIn,omitempty"`
	ClockOut       *string       `json:"clockOut,omitempty"`
	Breaks         []BreakRecord `json:"breaks"`
	TotalHours     float64       `json:"totalHours"`
	TotalBreakTime float64       `json:"totalBreakTime"`
	// NetWorkHours is nil only on records written before break tracking.
	NetWorkHours *float64 `json:"netWorkHours,omitempty"`
	Status       Status   `json:"status"`
	Notes        *string  `json:"notes,omitempty"`
}

// BreakRecord is one break inside an open session. Duration is in whole
// minutes and only authoritative once EndTime is set.
type BreakRecord struct {
	ID        string  `json:"id"`
	StartTime string  `json:"startTime"`
	EndTime   *string `json:"endTime,omitempty"`
	Duration  int     `json:"duration"`
}

// Clone returns a deep copy so callers can mutate without touching the original.
func (r AttendanceRecord) Clone() AttendanceRecord {
	out := r
	out.ClockIn = cloneString(r.ClockIn)
	out.ClockOut = cloneString(r.ClockOut)
	out.Notes = cloneString(r.Notes)
	if r.NetWorkHours != nil {
		v := *r.NetWorkHours
		out.NetWorkHours = &v
	}
	out.Breaks = make([]BreakRecord, len(r.Breaks))
	for i, b := range r.Breaks {
		b.EndTime = cloneString(b.EndTime)
		out.Breaks[i] = b
	}
	return out
}

// Phase derives the session state from the stored fields.
func (r *AttendanceRecord) Phase() Phase {
	if r == nil || r.ClockIn == nil || *r.ClockIn == "" {
		return PhaseNotStarted
	}
	if r.ClockOut != nil && *r.ClockOut != "" {
		return PhaseClosed
	}
	if r.ActiveBreakIndex() >= 0 {
		return PhaseOnBreak
	}
	return PhaseWorking
}

// IsOpen reports whether the record has a clock-in and no clock-out.
func (r *AttendanceRecord) IsOpen() bool {
	p := r.Phase()
	return p == PhaseWorking || p == PhaseOnBreak
}

// ActiveBreakIndex returns the index of the break with no end time, or -1.
func (r *AttendanceRecord) ActiveBreakIndex() int {
	for i := range r.Breaks {
		if r.Breaks[i].EndTime == nil || *r.Breaks[i].EndTime == "" {
			return i
		}
	}
	return -1
}

// WorkedHours is the aggregation figure: net hours, or total hours for legacy records.
func (r AttendanceRecord) WorkedHours() float64 {
	if r.NetWorkHours != nil {
		return *r.NetWorkHours
	}
	return r.TotalHours
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
