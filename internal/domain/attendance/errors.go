package attendance

import "errors"

// Attendance domain errors
var (
	// Store errors
	ErrStoreUnavailable   = errors.New("attendance store unavailable")
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrRecordClosed       = errors.New("attendance record already closed")

	// Data errors
	ErrInvalidTimeValue = errors.New("invalid date or time-of-day value")
	ErrNoFieldsToUpdate = errors.New("no updatable fields provided for attendance update")
)
