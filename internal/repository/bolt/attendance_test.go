package bolt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/repository/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, path string) attendance.RecordStore {
	t.Helper()
	db, err := database.NewBoltDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store, err := NewAttendanceRepository(db)
	require.NoError(t, err)
	return store
}

func TestRecordStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) attendance.RecordStore {
		return newTestStore(t, filepath.Join(t.TempDir(), "timeclock.db"))
	})
}

func TestRecordsSurviveReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "timeclock.db")

	db, err := database.NewBoltDB(path)
	require.NoError(t, err)
	store, err := NewAttendanceRepository(db)
	require.NoError(t, err)

	in := "09:00"
	saved, err := store.Append(ctx, attendance.AttendanceRecord{
		UserID: "u1", Date: "2026-03-02", ClockIn: &in,
		Breaks: []attendance.BreakRecord{}, Status: attendance.StatusPresent,
	})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	reopened := newTestStore(t, path)
	got, err := reopened.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved, got)

	open, err := reopened.ListOpen(ctx, "2026-03-02")
	require.NoError(t, err)
	assert.Len(t, open, 1)
}

func TestClosingRemovesOpenIndex(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, filepath.Join(t.TempDir(), "timeclock.db"))

	in := "09:00"
	saved, err := store.Append(ctx, attendance.AttendanceRecord{
		UserID: "u1", Date: "2026-03-02", ClockIn: &in,
		Breaks: []attendance.BreakRecord{}, Status: attendance.StatusPresent,
	})
	require.NoError(t, err)

	out := "17:00"
	_, err = store.Update(ctx, saved.ID, attendance.RecordUpdate{ClockOut: &out})
	require.NoError(t, err)

	open, err := store.ListOpen(ctx, "2026-12-31")
	require.NoError(t, err)
	assert.Empty(t, open)
}
