package attendance

import (
	"context"
)

// RecordMatch selects the record Replace overwrites.
type RecordMatch struct {
	UserID string
	Date   string
	// ClockInMissing restricts the match to records that were never clocked in.
	ClockInMissing bool
}

// Matches reports whether rec satisfies m.
func (m RecordMatch) Matches(rec AttendanceRecord) bool {
	if rec.UserID != m.UserID || rec.Date != m.Date {
		return false
	}
	if m.ClockInMissing && rec.ClockIn != nil && *rec.ClockIn != "" {
		return false
	}
	return true
}

// RecordUpdate carries the fields Update writes; nil fields are left untouched.
// Breaks, when set, replaces the whole break list.
type RecordUpdate struct {
	ClockIn        *string
	ClockOut       *string
	Breaks         *[]BreakRecord
	TotalHours     *float64
	TotalBreakTime *float64
	NetWorkHours   *float64
	Status         *Status
	Notes          *string

	// RequireOpen makes the write conditional on the stored record still
	// being open; otherwise Update fails with ErrRecordClosed.
	RequireOpen bool
}

// IsEmpty reports whether no field is set. RequireOpen is a condition, not a field.
func (u RecordUpdate) IsEmpty() bool {
	return u.ClockIn == nil && u.ClockOut == nil && u.Breaks == nil &&
		u.TotalHours == nil && u.TotalBreakTime == nil && u.NetWorkHours == nil &&
		u.Status == nil && u.Notes == nil
}

// Apply writes the set fields onto rec.
func (u RecordUpdate) Apply(rec *AttendanceRecord) {
	if u.ClockIn != nil {
		rec.ClockIn = cloneString(u.ClockIn)
	}
	if u.ClockOut != nil {
		rec.ClockOut = cloneString(u.ClockOut)
	}
	if u.Breaks != nil {
		tmp := AttendanceRecord{Breaks: *u.Breaks}
		rec.Breaks = tmp.Clone().Breaks
	}
	if u.TotalHours != nil {
		rec.TotalHours = *u.TotalHours
	}
	if u.TotalBreakTime != nil {
		rec.TotalBreakTime = *u.TotalBreakTime
	}
	if u.NetWorkHours != nil {
		v := *u.NetWorkHours
		rec.NetWorkHours = &v
	}
	if u.Status != nil {
		rec.Status = *u.Status
	}
	if u.Notes != nil {
		rec.Notes = cloneString(u.Notes)
	}
}

// RecordStore is the persistence the engine needs. Implementations must
// preserve every AttendanceRecord field round-trip.
type RecordStore interface {
	// Append stores a new record, assigning an ID when empty.
	Append(ctx context.Context, record AttendanceRecord) (AttendanceRecord, error)

	// Replace overwrites the first record satisfying match, keeping its ID.
	// Returns ErrAttendanceNotFound when nothing matches.
	Replace(ctx context.Context, match RecordMatch, record AttendanceRecord) (AttendanceRecord, error)

	// Update writes the non-nil fields of the update onto record id, checking
	// RequireOpen against the stored record in the same write.
	Update(ctx context.Context, id string, fields RecordUpdate) (AttendanceRecord, error)

	// GetByID retrieves one record.
	GetByID(ctx context.Context, id string) (AttendanceRecord, error)

	// QueryByUserAndDateRange returns the user's records with from <= date <= to, ordered by date.
	QueryByUserAndDateRange(ctx context.Context, userID string, from, to string) ([]AttendanceRecord, error)

	// ListOpen returns records of every user that have a clock-in, no clock-out
	// and a date on or before the given date.
	ListOpen(ctx context.Context, onOrBefore string) ([]AttendanceRecord, error)
}
