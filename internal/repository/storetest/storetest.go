// Package storetest holds the behaviour every attendance.RecordStore must share.
package storetest

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

// fullRecord sets every field so round-trips can be compared whole.
func fullRecord(id, userID, date string) attendance.AttendanceRecord {
	return attendance.AttendanceRecord{
		ID:       id,
		UserID:   userID,
		Date:     date,
		ClockIn:  strPtr("09:00"),
		ClockOut: strPtr("17:30"),
		Breaks: []attendance.BreakRecord{
			{ID: id + "-b1", StartTime: "12:00", EndTime: strPtr("12:30"), Duration: 30},
			{ID: id + "-b2", StartTime: "15:00", EndTime: strPtr("15:10"), Duration: 10},
		},
		TotalHours:     8.5,
		TotalBreakTime: 0.67,
		NetWorkHours:   floatPtr(7.83),
		Status:         attendance.StatusLate,
		Notes:          strPtr("train delay"),
	}
}

// Run exercises store through the RecordStore contract. newStore must return
// an empty store on every call.
func Run(t *testing.T, newStore func(t *testing.T) attendance.RecordStore) {
	t.Run("append round-trips every field", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		want := fullRecord("r-full", "u1", "2026-03-02")
		saved, err := store.Append(ctx, want)
		require.NoError(t, err)
		assert.Equal(t, want, saved)

		got, err := store.GetByID(ctx, "r-full")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("legacy record keeps nil net hours", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		legacy := attendance.AttendanceRecord{
			ID: "legacy", UserID: "u1", Date: "2026-01-05",
			ClockIn: strPtr("08:00"), ClockOut: strPtr("16:00"),
			Breaks: []attendance.BreakRecord{}, TotalHours: 8, Status: attendance.StatusPresent,
		}
		_, err := store.Append(ctx, legacy)
		require.NoError(t, err)

		got, err := store.GetByID(ctx, "legacy")
		require.NoError(t, err)
		assert.Nil(t, got.NetWorkHours)
		assert.Equal(t, 8.0, got.WorkedHours())
	})

	t.Run("append assigns id", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		saved, err := store.Append(ctx, attendance.AttendanceRecord{
			UserID: "u1", Date: "2026-03-02", Breaks: []attendance.BreakRecord{}, Status: attendance.StatusAbsent,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, saved.ID)
	})

	t.Run("replace keeps id and honours clock-in-missing", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		_, err := store.Append(ctx, attendance.AttendanceRecord{
			ID: "placeholder", UserID: "u1", Date: "2026-03-02",
			Breaks: []attendance.BreakRecord{}, Status: attendance.StatusAbsent,
		})
		require.NoError(t, err)

		match := attendance.RecordMatch{UserID: "u1", Date: "2026-03-02", ClockInMissing: true}
		next := fullRecord("", "u1", "2026-03-02")
		next.ClockOut = nil
		next.Breaks = []attendance.BreakRecord{}

		saved, err := store.Replace(ctx, match, next)
		require.NoError(t, err)
		assert.Equal(t, "placeholder", saved.ID)
		assert.Equal(t, "09:00", *saved.ClockIn)

		recs, err := store.QueryByUserAndDateRange(ctx, "u1", "2026-03-02", "2026-03-02")
		require.NoError(t, err)
		assert.Len(t, recs, 1)

		_, err = store.Replace(ctx, match, next)
		assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
	})

	t.Run("update writes only set fields", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		_, err := store.Append(ctx, attendance.AttendanceRecord{
			ID: "open", UserID: "u1", Date: "2026-03-02", ClockIn: strPtr("09:00"),
			Breaks: []attendance.BreakRecord{}, Status: attendance.StatusPresent, NetWorkHours: floatPtr(0),
		})
		require.NoError(t, err)

		breaks := []attendance.BreakRecord{{ID: "b1", StartTime: "12:00"}}
		saved, err := store.Update(ctx, "open", attendance.RecordUpdate{Breaks: &breaks})
		require.NoError(t, err)
		require.Len(t, saved.Breaks, 1)
		assert.Nil(t, saved.Breaks[0].EndTime)
		assert.Equal(t, "09:00", *saved.ClockIn)

		out := "17:00"
		total, brk, net := 8.0, 0.0, 8.0
		status := attendance.StatusEarlyLeave
		breaks = []attendance.BreakRecord{{ID: "b1", StartTime: "12:00", EndTime: strPtr("12:00"), Duration: 0}}
		saved, err = store.Update(ctx, "open", attendance.RecordUpdate{
			ClockOut: &out, Breaks: &breaks, TotalHours: &total, TotalBreakTime: &brk,
			NetWorkHours: &net, Status: &status,
		})
		require.NoError(t, err)
		assert.Equal(t, "17:00", *saved.ClockOut)
		assert.Equal(t, attendance.StatusEarlyLeave, saved.Status)
		assert.Equal(t, "12:00", *saved.Breaks[0].EndTime)

		got, err := store.GetByID(ctx, "open")
		require.NoError(t, err)
		assert.Equal(t, saved, got)

		_, err = store.Update(ctx, "missing", attendance.RecordUpdate{ClockOut: &out})
		assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)

		_, err = store.Update(ctx, "open", attendance.RecordUpdate{})
		assert.ErrorIs(t, err, attendance.ErrNoFieldsToUpdate)
	})

	t.Run("update requiring open refuses a closed record", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		closed := fullRecord("closed", "u1", "2026-03-02")
		_, err := store.Append(ctx, closed)
		require.NoError(t, err)
		_, err = store.Append(ctx, attendance.AttendanceRecord{
			ID: "open", UserID: "u2", Date: "2026-03-02", ClockIn: strPtr("09:00"),
			Breaks: []attendance.BreakRecord{}, Status: attendance.StatusPresent,
		})
		require.NoError(t, err)

		out := "23:59"
		status := attendance.StatusEarlyLeave
		fields := attendance.RecordUpdate{ClockOut: &out, Status: &status, RequireOpen: true}

		_, err = store.Update(ctx, "closed", fields)
		assert.ErrorIs(t, err, attendance.ErrRecordClosed)
		got, err := store.GetByID(ctx, "closed")
		require.NoError(t, err)
		assert.Equal(t, closed, got)

		saved, err := store.Update(ctx, "open", fields)
		require.NoError(t, err)
		assert.Equal(t, "23:59", *saved.ClockOut)

		_, err = store.Update(ctx, "open", fields)
		assert.ErrorIs(t, err, attendance.ErrRecordClosed)

		_, err = store.Update(ctx, "missing", fields)
		assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := newStore(t).GetByID(context.Background(), "nope")
		assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
	})

	t.Run("query is per user, inclusive and ordered", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		for _, rec := range []attendance.AttendanceRecord{
			fullRecord("c", "u1", "2026-03-31"),
			fullRecord("a", "u1", "2026-03-01"),
			fullRecord("feb", "u1", "2026-02-28"),
			fullRecord("other", "u2", "2026-03-10"),
			fullRecord("b", "u1", "2026-03-10"),
			fullRecord("apr", "u1", "2026-04-01"),
		} {
			_, err := store.Append(ctx, rec)
			require.NoError(t, err)
		}

		recs, err := store.QueryByUserAndDateRange(ctx, "u1", "2026-03-01", "2026-03-31")
		require.NoError(t, err)
		ids := make([]string, 0, len(recs))
		for _, r := range recs {
			ids = append(ids, r.ID)
		}
		assert.Equal(t, []string{"a", "b", "c"}, ids)
		assert.Len(t, recs[0].Breaks, 2)

		recs, err = store.QueryByUserAndDateRange(ctx, "nobody", "2026-01-01", "2026-12-31")
		require.NoError(t, err)
		assert.Empty(t, recs)
	})

	t.Run("list open", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		open := func(id, user, date string) attendance.AttendanceRecord {
			return attendance.AttendanceRecord{
				ID: id, UserID: user, Date: date, ClockIn: strPtr("09:00"),
				Breaks: []attendance.BreakRecord{}, Status: attendance.StatusPresent,
			}
		}
		for _, rec := range []attendance.AttendanceRecord{
			open("old", "u1", "2026-03-01"),
			open("today", "u2", "2026-03-03"),
			fullRecord("closed", "u1", "2026-03-02"),
			{ID: "absent", UserID: "u3", Date: "2026-03-02", Breaks: []attendance.BreakRecord{}, Status: attendance.StatusAbsent},
		} {
			_, err := store.Append(ctx, rec)
			require.NoError(t, err)
		}

		recs, err := store.ListOpen(ctx, "2026-03-02")
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "old", recs[0].ID)

		recs, err = store.ListOpen(ctx, "2026-03-03")
		require.NoError(t, err)
		assert.Len(t, recs, 2)
	})
}
