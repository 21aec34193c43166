package memory

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/repository/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestAppendAssignsIDAndCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendanceRepository()

	in := attendance.AttendanceRecord{
		UserID:  "u1",
		Date:    "2026-03-02",
		ClockIn: strPtr("09:00"),
		Breaks:  []attendance.BreakRecord{},
		Status:  attendance.StatusPresent,
	}
	saved, err := repo.Append(ctx, in)
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	*in.ClockIn = "10:00"
	got, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "09:00", *got.ClockIn)
}

func TestReplaceKeepsIDAndRespectsMatch(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendanceRepository(attendance.AttendanceRecord{
		ID:     "absent-1",
		UserID: "u1",
		Date:   "2026-03-02",
		Status: attendance.StatusAbsent,
	})

	match := attendance.RecordMatch{UserID: "u1", Date: "2026-03-02", ClockInMissing: true}
	rec, err := repo.Replace(ctx, match, attendance.AttendanceRecord{
		UserID:  "u1",
		Date:    "2026-03-02",
		ClockIn: strPtr("09:00"),
		Status:  attendance.StatusPresent,
	})
	require.NoError(t, err)
	assert.Equal(t, "absent-1", rec.ID)
	assert.Equal(t, attendance.StatusPresent, rec.Status)

	_, err = repo.Replace(ctx, match, attendance.AttendanceRecord{UserID: "u1", Date: "2026-03-02"})
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendanceRepository(attendance.AttendanceRecord{ID: "r1", UserID: "u1", Date: "2026-03-02", ClockIn: strPtr("09:00")})

	out := "17:00"
	total := 8.0
	rec, err := repo.Update(ctx, "r1", attendance.RecordUpdate{ClockOut: &out, TotalHours: &total})
	require.NoError(t, err)
	assert.Equal(t, "17:00", *rec.ClockOut)
	assert.Equal(t, 8.0, rec.TotalHours)
	assert.Equal(t, "09:00", *rec.ClockIn)

	_, err = repo.Update(ctx, "missing", attendance.RecordUpdate{ClockOut: &out})
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)

	_, err = repo.Update(ctx, "r1", attendance.RecordUpdate{})
	assert.ErrorIs(t, err, attendance.ErrNoFieldsToUpdate)
}

func TestQueryByUserAndDateRange(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendanceRepository(
		attendance.AttendanceRecord{ID: "c", UserID: "u1", Date: "2026-03-05"},
		attendance.AttendanceRecord{ID: "a", UserID: "u1", Date: "2026-03-01"},
		attendance.AttendanceRecord{ID: "x", UserID: "u2", Date: "2026-03-03"},
		attendance.AttendanceRecord{ID: "b", UserID: "u1", Date: "2026-03-03"},
		attendance.AttendanceRecord{ID: "z", UserID: "u1", Date: "2026-04-01"},
	)

	got, err := repo.QueryByUserAndDateRange(ctx, "u1", "2026-03-01", "2026-03-31")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestListOpen(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendanceRepository(
		attendance.AttendanceRecord{ID: "open-old", UserID: "u1", Date: "2026-03-01", ClockIn: strPtr("09:00")},
		attendance.AttendanceRecord{ID: "closed", UserID: "u1", Date: "2026-03-02", ClockIn: strPtr("09:00"), ClockOut: strPtr("17:00")},
		attendance.AttendanceRecord{ID: "never", UserID: "u2", Date: "2026-03-02"},
		attendance.AttendanceRecord{ID: "open-today", UserID: "u2", Date: "2026-03-03", ClockIn: strPtr("09:00")},
	)

	got, err := repo.ListOpen(ctx, "2026-03-02")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "open-old", got[0].ID)

	got, err = repo.ListOpen(ctx, "2026-03-03")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestCancelledContextIsStoreUnavailable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := NewAttendanceRepository()
	_, err := repo.Append(ctx, attendance.AttendanceRecord{UserID: "u1", Date: "2026-03-02"})
	assert.ErrorIs(t, err, attendance.ErrStoreUnavailable)
}

func TestRecordStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) attendance.RecordStore {
		return NewAttendanceRepository()
	})
}
