package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func openRecord(clockIn string) AttendanceRecord {
	return AttendanceRecord{
		ID:      "rec-1",
		UserID:  "user-1",
		Date:    "2026-03-02",
		ClockIn: strPtr(clockIn),
		Breaks:  []BreakRecord{},
		Status:  StatusPresent,
	}
}

func TestRound2(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{8.5, 8.5},
		{14.983333, 14.98},
		{0.005, 0.01},
		{-0.5, -0.5},
		{-0.125, -0.12},
		{2.0 / 3.0, 0.67},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Round2(c.in), "Round2(%v)", c.in)
	}
}

func TestPhase(t *testing.T) {
	var nilRec *AttendanceRecord
	assert.Equal(t, PhaseNotStarted, nilRec.Phase())

	rec := AttendanceRecord{Date: "2026-03-02"}
	assert.Equal(t, PhaseNotStarted, rec.Phase())

	rec = openRecord("09:00")
	assert.Equal(t, PhaseWorking, rec.Phase())
	assert.True(t, rec.IsOpen())

	rec.StartBreak("b1", "12:00")
	assert.Equal(t, PhaseOnBreak, rec.Phase())

	require.NoError(t, rec.EndActiveBreak("12:30", time.UTC))
	assert.Equal(t, PhaseWorking, rec.Phase())

	require.NoError(t, rec.Close("17:30", time.UTC))
	assert.Equal(t, PhaseClosed, rec.Phase())
	assert.False(t, rec.IsOpen())
}

func TestClose_FullDayScenario(t *testing.T) {
	rec := openRecord("09:00")
	rec.StartBreak("b1", "12:00")
	require.NoError(t, rec.EndActiveBreak("12:30", time.UTC))
	require.NoError(t, rec.Close("17:30", time.UTC))

	assert.Equal(t, "17:30", *rec.ClockOut)
	assert.Equal(t, 30, rec.Breaks[0].Duration)
	assert.Equal(t, 8.5, rec.TotalHours)
	assert.Equal(t, 0.5, rec.TotalBreakTime)
	require.NotNil(t, rec.NetWorkHours)
	assert.Equal(t, 8.0, *rec.NetWorkHours)
	assert.Equal(t, Round2(rec.TotalHours-rec.TotalBreakTime), *rec.NetWorkHours)
}

func TestClose_EndsActiveBreak(t *testing.T) {
	rec := openRecord("09:00")
	rec.StartBreak("b1", "16:45")
	require.NoError(t, rec.Close("17:00", time.UTC))

	require.NotNil(t, rec.Breaks[0].EndTime)
	assert.Equal(t, "17:00", *rec.Breaks[0].EndTime)
	assert.Equal(t, 15, rec.Breaks[0].Duration)
	assert.Equal(t, 8.0, rec.TotalHours)
	assert.Equal(t, 0.25, rec.TotalBreakTime)
	assert.Equal(t, 7.75, *rec.NetWorkHours)
}

func TestClose_ClockOutBeforeClockInIsNegative(t *testing.T) {
	rec := openRecord("22:00")
	require.NoError(t, rec.Close("01:30", time.UTC))

	assert.Equal(t, -20.5, rec.TotalHours)
	assert.Equal(t, -20.5, *rec.NetWorkHours)
}

func TestClose_BreaksLongerThanSessionGoNegative(t *testing.T) {
	rec := openRecord("09:00")
	rec.Breaks = []BreakRecord{
		{ID: "b1", StartTime: "06:00", EndTime: strPtr("09:30"), Duration: 210},
	}
	require.NoError(t, rec.Close("10:00", time.UTC))

	assert.Equal(t, 1.0, rec.TotalHours)
	assert.Equal(t, 3.5, rec.TotalBreakTime)
	assert.Equal(t, -2.5, *rec.NetWorkHours)
}

func TestCloseAtDayEnd_FromNineAM(t *testing.T) {
	rec := openRecord("09:00")
	require.NoError(t, rec.CloseAtDayEnd(time.UTC))

	// 14h59m59s rounds up to 15.00 while the stored clock-out stays 23:59
	assert.Equal(t, "23:59", *rec.ClockOut)
	assert.Equal(t, 15.0, rec.TotalHours)
	assert.Equal(t, 15.0, *rec.NetWorkHours)
}

func TestCloseAtDayEnd_EndsActiveBreakAtDisplayTime(t *testing.T) {
	rec := openRecord("09:00")
	rec.StartBreak("b1", "23:00")
	require.NoError(t, rec.CloseAtDayEnd(time.UTC))

	assert.Equal(t, "23:59", *rec.Breaks[0].EndTime)
	assert.Equal(t, 59, rec.Breaks[0].Duration)
	assert.Equal(t, 15.0, rec.TotalHours)
	assert.Equal(t, 0.98, rec.TotalBreakTime)
	assert.Equal(t, 14.02, *rec.NetWorkHours)
}

func TestClose_AtDayEndDisplayTime(t *testing.T) {
	rec := openRecord("09:00")
	require.NoError(t, rec.Close(DayEndClockOut, time.UTC))

	assert.Equal(t, "23:59", *rec.ClockOut)
	assert.InDelta(t, 14.98, rec.TotalHours, 0.001)
}

func TestEndActiveBreak_ClampsNegativeDuration(t *testing.T) {
	rec := openRecord("09:00")
	rec.StartBreak("b1", "12:00")
	require.NoError(t, rec.EndActiveBreak("11:50", time.UTC))

	assert.Equal(t, 0, rec.Breaks[0].Duration)
	assert.Equal(t, "11:50", *rec.Breaks[0].EndTime)
}

func TestEndActiveBreak_NoActiveBreakIsNoop(t *testing.T) {
	rec := openRecord("09:00")
	require.NoError(t, rec.EndActiveBreak("12:00", time.UTC))
	assert.Empty(t, rec.Breaks)
}

func TestClose_InvalidClockIn(t *testing.T) {
	rec := openRecord("9am")
	err := rec.Close("17:00", time.UTC)
	assert.ErrorIs(t, err, ErrInvalidTimeValue)
}

func TestLiveWorkingHours(t *testing.T) {
	at := func(hhmm string) time.Time {
		ts, err := ParseClockTime("2026-03-02", hhmm, time.UTC)
		require.NoError(t, err)
		return ts
	}

	t.Run("working", func(t *testing.T) {
		rec := openRecord("09:00")
		got, err := rec.LiveWorkingHours(at("11:15"))
		require.NoError(t, err)
		assert.Equal(t, 2.25, got)
	})

	t.Run("on break excludes running break", func(t *testing.T) {
		rec := openRecord("09:00")
		rec.Breaks = []BreakRecord{{ID: "b1", StartTime: "10:00", EndTime: strPtr("10:30"), Duration: 30}}
		rec.StartBreak("b2", "12:00")

		got, err := rec.LiveWorkingHours(at("12:45"))
		require.NoError(t, err)
		// 3.75 elapsed - 0.5 done - 0.75 running
		assert.Equal(t, 2.5, got)
		assert.Equal(t, 45, rec.LiveBreakMinutes(at("12:45")))
	})

	t.Run("never negative", func(t *testing.T) {
		rec := openRecord("09:00")
		rec.Breaks = []BreakRecord{{ID: "b1", StartTime: "05:00", EndTime: strPtr("08:00"), Duration: 180}}
		rec.StartBreak("b2", "09:05")

		got, err := rec.LiveWorkingHours(at("09:30"))
		require.NoError(t, err)
		assert.Equal(t, 0.0, got)
	})

	t.Run("closed reports stored net", func(t *testing.T) {
		rec := openRecord("09:00")
		require.NoError(t, rec.Close("17:00", time.UTC))
		got, err := rec.LiveWorkingHours(at("20:00"))
		require.NoError(t, err)
		assert.Equal(t, 8.0, got)
	})

	t.Run("not started", func(t *testing.T) {
		rec := AttendanceRecord{Date: "2026-03-02"}
		got, err := rec.LiveWorkingHours(at("12:00"))
		require.NoError(t, err)
		assert.Equal(t, 0.0, got)
	})
}

func TestWorkedHours_FallsBackToTotal(t *testing.T) {
	legacy := AttendanceRecord{TotalHours: 7.25}
	assert.Equal(t, 7.25, legacy.WorkedHours())

	net := 6.5
	current := AttendanceRecord{TotalHours: 7.0, NetWorkHours: &net}
	assert.Equal(t, 6.5, current.WorkedHours())
}

func TestClone_IsDeep(t *testing.T) {
	rec := openRecord("09:00")
	rec.StartBreak("b1", "12:00")
	c := rec.Clone()

	*c.ClockIn = "10:00"
	c.Breaks[0].StartTime = "13:00"

	assert.Equal(t, "09:00", *rec.ClockIn)
	assert.Equal(t, "12:00", rec.Breaks[0].StartTime)
}

func TestRecordMatch(t *testing.T) {
	rec := AttendanceRecord{UserID: "u", Date: "2026-03-02"}
	m := RecordMatch{UserID: "u", Date: "2026-03-02", ClockInMissing: true}
	assert.True(t, m.Matches(rec))

	rec.ClockIn = strPtr("09:00")
	assert.False(t, m.Matches(rec))

	m.ClockInMissing = false
	assert.True(t, m.Matches(rec))

	m.Date = "2026-03-03"
	assert.False(t, m.Matches(rec))
}
