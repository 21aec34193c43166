package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/attendance"
	"github.com/google/uuid"
)

type attendanceRepository struct {
	mu      sync.RWMutex
	records []attendance.AttendanceRecord
}

// Append implements attendance.RecordStore.
func (a *attendanceRepository) Append(ctx context.Context, record attendance.AttendanceRecord) (attendance.AttendanceRecord, error) {
	if err := ctx.Err(); err != nil {
		return attendance.AttendanceRecord{}, fmt.Errorf("%w: %w", attendance.ErrStoreUnavailable, err)
	}

	rec := record.Clone()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, rec)
	return rec.Clone(), nil
}

// Replace implements attendance.RecordStore.
func (a *attendanceRepository) Replace(ctx context.Context, match attendance.RecordMatch, record attendance.AttendanceRecord) (attendance.AttendanceRecord, error) {
	if err := ctx.Err(); err != nil {
		return attendance.AttendanceRecord{}, fmt.Errorf("%w: %w", attendance.ErrStoreUnavailable, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.records {
		if !match.Matches(a.records[i]) {
			continue
		}
		rec := record.Clone()
		rec.ID = a.records[i].ID
		a.records[i] = rec
		return rec.Clone(), nil
	}
	return attendance.AttendanceRecord{}, attendance.ErrAttendanceNotFound
}

// Update implements attendance.RecordStore.
func (a *attendanceRepository) Update(ctx context.Context, id string, fields attendance.RecordUpdate) (attendance.AttendanceRecord, error) {
	if fields.IsEmpty() {
		return attendance.AttendanceRecord{}, attendance.ErrNoFieldsToUpdate
	}
	if err := ctx.Err(); err != nil {
		return attendance.AttendanceRecord{}, fmt.Errorf("%w: %w", attendance.ErrStoreUnavailable, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.records {
		if a.records[i].ID != id {
			continue
		}
		if fields.RequireOpen && !a.records[i].IsOpen() {
			return attendance.AttendanceRecord{}, attendance.ErrRecordClosed
		}
		fields.Apply(&a.records[i])
		return a.records[i].Clone(), nil
	}
	return attendance.AttendanceRecord{}, attendance.ErrAttendanceNotFound
}

// GetByID implements attendance.RecordStore.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.AttendanceRecord, error) {
	if err := ctx.Err(); err != nil {
		return attendance.AttendanceRecord{}, fmt.Errorf("%w: %w", attendance.ErrStoreUnavailable, err)
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, rec := range a.records {
		if rec.ID == id {
			return rec.Clone(), nil
		}
	}
	return attendance.AttendanceRecord{}, attendance.ErrAttendanceNotFound
}

// QueryByUserAndDateRange implements attendance.RecordStore.
func (a *attendanceRepository) QueryByUserAndDateRange(ctx context.Context, userID string, from, to string) ([]attendance.AttendanceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", attendance.ErrStoreUnavailable, err)
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]attendance.AttendanceRecord, 0)
	for _, rec := range a.records {
		if rec.UserID != userID {
			continue
		}
		// YYYY-MM-DD compares correctly as a string
		if rec.Date < from || rec.Date > to {
			continue
		}
		out = append(out, rec.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// ListOpen implements attendance.RecordStore.
func (a *attendanceRepository) ListOpen(ctx context.Context, onOrBefore string) ([]attendance.AttendanceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", attendance.ErrStoreUnavailable, err)
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]attendance.AttendanceRecord, 0)
	for _, rec := range a.records {
		if rec.IsOpen() && rec.Date <= onOrBefore {
			out = append(out, rec.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// NewAttendanceRepository returns a process-local store. Records are lost on restart.
func NewAttendanceRepository(seed ...attendance.AttendanceRecord) attendance.RecordStore {
	repo := &attendanceRepository{records: make([]attendance.AttendanceRecord, 0, len(seed))}
	for _, rec := range seed {
		repo.records = append(repo.records, rec.Clone())
	}
	return repo
}
