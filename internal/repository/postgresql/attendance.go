package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const recordColumns = `id, user_id, date, clock_in, clock_out, total_hours, total_break_time, net_work_hours, status, notes`

// openCondition matches records with a clock-in and no clock-out.
const openCondition = ` AND clock_in IS NOT NULL AND clock_in <> '' AND (clock_out IS NULL OR clock_out = '')`

type attendanceRepository struct {
	db *database.DB
}

// storeError marks driver failures as ErrStoreUnavailable and passes domain errors through.
func storeError(op string, err error) error {
	if errors.Is(err, attendance.ErrAttendanceNotFound) ||
		errors.Is(err, attendance.ErrRecordClosed) ||
		errors.Is(err, attendance.ErrNoFieldsToUpdate) ||
		errors.Is(err, attendance.ErrInvalidTimeValue) ||
		errors.Is(err, attendance.ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: failed to %s: %w", attendance.ErrStoreUnavailable, op, err)
}

func parseDate(date string) (time.Time, error) {
	t, err := time.Parse(clock.DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", attendance.ErrInvalidTimeValue, date)
	}
	return t, nil
}

func scanRecord(row pgx.Row) (attendance.AttendanceRecord, error) {
	var (
		rec    attendance.AttendanceRecord
		date   time.Time
		status string
	)
	err := row.Scan(
		&rec.ID, &rec.UserID, &date, &rec.ClockIn, &rec.ClockOut,
		&rec.TotalHours, &rec.TotalBreakTime, &rec.NetWorkHours, &status, &rec.Notes,
	)
	if err != nil {
		return attendance.AttendanceRecord{}, err
	}
	rec.Date = date.Format(clock.DateLayout)
	rec.Status = attendance.Status(status)
	rec.Breaks = []attendance.BreakRecord{}
	return rec, nil
}

// attachBreaks loads the break lists of recs in one query.
func (a *attendanceRepository) attachBreaks(ctx context.Context, recs []attendance.AttendanceRecord) error {
	if len(recs) == 0 {
		return nil
	}
	q := GetQuerier(ctx, a.db)

	ids := make([]string, len(recs))
	index := make(map[string]int, len(recs))
	for i, rec := range recs {
		ids[i] = rec.ID
		index[rec.ID] = i
	}

	rows, err := q.Query(ctx, `
		SELECT record_id, id, start_time, end_time, duration
		FROM attendance_breaks
		WHERE record_id = ANY($1)
		ORDER BY record_id, position
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			recordID string
			b        attendance.BreakRecord
		)
		if err := rows.Scan(&recordID, &b.ID, &b.StartTime, &b.EndTime, &b.Duration); err != nil {
			return err
		}
		i := index[recordID]
		recs[i].Breaks = append(recs[i].Breaks, b)
	}
	return rows.Err()
}

// replaceBreaks rewrites the whole break list of a record.
func (a *attendanceRepository) replaceBreaks(ctx context.Context, recordID string, breaks []attendance.BreakRecord) error {
	q := GetQuerier(ctx, a.db)

	if _, err := q.Exec(ctx, `DELETE FROM attendance_breaks WHERE record_id = $1`, recordID); err != nil {
		return err
	}
	for pos, b := range breaks {
		id := b.ID
		if id == "" {
			id = uuid.NewString()
		}
		_, err := q.Exec(ctx, `
			INSERT INTO attendance_breaks (id, record_id, position, start_time, end_time, duration)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, id, recordID, pos, b.StartTime, b.EndTime, b.Duration)
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *attendanceRepository) getByID(ctx context.Context, id string) (attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, a.db)

	rec, err := scanRecord(q.QueryRow(ctx, `SELECT `+recordColumns+` FROM attendance_records WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.AttendanceRecord{}, attendance.ErrAttendanceNotFound
		}
		return attendance.AttendanceRecord{}, err
	}

	recs := []attendance.AttendanceRecord{rec}
	if err := a.attachBreaks(ctx, recs); err != nil {
		return attendance.AttendanceRecord{}, err
	}
	return recs[0], nil
}

func (a *attendanceRepository) queryRecords(ctx context.Context, query string, args ...interface{}) ([]attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, a.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recs := make([]attendance.AttendanceRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := a.attachBreaks(ctx, recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// Append implements attendance.RecordStore.
func (a *attendanceRepository) Append(ctx context.Context, record attendance.AttendanceRecord) (attendance.AttendanceRecord, error) {
	date, err := parseDate(record.Date)
	if err != nil {
		return attendance.AttendanceRecord{}, err
	}
	rec := record.Clone()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	err = WithTransaction(ctx, a.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, a.db)
		_, err := q.Exec(ctx, `
			INSERT INTO attendance_records (`+recordColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`,
			rec.ID, rec.UserID, date, rec.ClockIn, rec.ClockOut,
			rec.TotalHours, rec.TotalBreakTime, rec.NetWorkHours, string(rec.Status), rec.Notes,
		)
		if err != nil {
			return err
		}
		return a.replaceBreaks(ctx, rec.ID, rec.Breaks)
	})
	if err != nil {
		return attendance.AttendanceRecord{}, storeError("create attendance record", err)
	}
	if rec.Breaks == nil {
		rec.Breaks = []attendance.BreakRecord{}
	}
	return rec, nil
}

// Replace implements attendance.RecordStore.
func (a *attendanceRepository) Replace(ctx context.Context, match attendance.RecordMatch, record attendance.AttendanceRecord) (attendance.AttendanceRecord, error) {
	date, err := parseDate(match.Date)
	if err != nil {
		return attendance.AttendanceRecord{}, err
	}
	recDate, err := parseDate(record.Date)
	if err != nil {
		return attendance.AttendanceRecord{}, err
	}

	var saved attendance.AttendanceRecord
	err = WithTransaction(ctx, a.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, a.db)

		query := `
			SELECT id FROM attendance_records
			WHERE user_id = $1 AND date = $2
		`
		if match.ClockInMissing {
			query += ` AND (clock_in IS NULL OR clock_in = '')`
		}
		query += ` ORDER BY created_at, id LIMIT 1 FOR UPDATE`

		var id string
		if err := q.QueryRow(ctx, query, match.UserID, date).Scan(&id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return attendance.ErrAttendanceNotFound
			}
			return err
		}

		rec := record.Clone()
		rec.ID = id
		_, err := q.Exec(ctx, `
			UPDATE attendance_records
			SET user_id = $2, date = $3, clock_in = $4, clock_out = $5,
				total_hours = $6, total_break_time = $7, net_work_hours = $8,
				status = $9, notes = $10, updated_at = NOW()
			WHERE id = $1
		`,
			rec.ID, rec.UserID, recDate, rec.ClockIn, rec.ClockOut,
			rec.TotalHours, rec.TotalBreakTime, rec.NetWorkHours, string(rec.Status), rec.Notes,
		)
		if err != nil {
			return err
		}
		if err := a.replaceBreaks(ctx, rec.ID, rec.Breaks); err != nil {
			return err
		}

		saved, err = a.getByID(ctx, rec.ID)
		return err
	})
	if err != nil {
		return attendance.AttendanceRecord{}, storeError("replace attendance record", err)
	}
	return saved, nil
}

// Update implements attendance.RecordStore.
func (a *attendanceRepository) Update(ctx context.Context, id string, fields attendance.RecordUpdate) (attendance.AttendanceRecord, error) {
	if fields.IsEmpty() {
		return attendance.AttendanceRecord{}, attendance.ErrNoFieldsToUpdate
	}

	updates := make([]string, 0)
	args := make([]interface{}, 0)
	argIdx := 1

	if fields.ClockIn != nil {
		updates = append(updates, fmt.Sprintf("clock_in = $%d", argIdx))
		args = append(args, *fields.ClockIn)
		argIdx++
	}
	if fields.ClockOut != nil {
		updates = append(updates, fmt.Sprintf("clock_out = $%d", argIdx))
		args = append(args, *fields.ClockOut)
		argIdx++
	}
	if fields.TotalHours != nil {
		updates = append(updates, fmt.Sprintf("total_hours = $%d", argIdx))
		args = append(args, *fields.TotalHours)
		argIdx++
	}
	if fields.TotalBreakTime != nil {
		updates = append(updates, fmt.Sprintf("total_break_time = $%d", argIdx))
		args = append(args, *fields.TotalBreakTime)
		argIdx++
	}
	if fields.NetWorkHours != nil {
		updates = append(updates, fmt.Sprintf("net_work_hours = $%d", argIdx))
		args = append(args, *fields.NetWorkHours)
		argIdx++
	}
	if fields.Status != nil {
		updates = append(updates, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, string(*fields.Status))
		argIdx++
	}
	if fields.Notes != nil {
		updates = append(updates, fmt.Sprintf("notes = $%d", argIdx))
		args = append(args, *fields.Notes)
		argIdx++
	}

	updates = append(updates, "updated_at = NOW()")
	args = append(args, id)
	query := fmt.Sprintf("UPDATE attendance_records SET %s WHERE id = $%d", strings.Join(updates, ", "), argIdx)
	if fields.RequireOpen {
		query += openCondition
	}

	var saved attendance.AttendanceRecord
	err := WithTransaction(ctx, a.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, a.db)

		tag, err := q.Exec(ctx, query, args...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			if !fields.RequireOpen {
				return attendance.ErrAttendanceNotFound
			}
			var exists bool
			if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM attendance_records WHERE id = $1)`, id).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return attendance.ErrAttendanceNotFound
			}
			return attendance.ErrRecordClosed
		}

		if fields.Breaks != nil {
			if err := a.replaceBreaks(ctx, id, *fields.Breaks); err != nil {
				return err
			}
		}

		saved, err = a.getByID(ctx, id)
		return err
	})
	if err != nil {
		return attendance.AttendanceRecord{}, storeError("update attendance record", err)
	}
	return saved, nil
}

// GetByID implements attendance.RecordStore.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.AttendanceRecord, error) {
	rec, err := a.getByID(ctx, id)
	if err != nil {
		return attendance.AttendanceRecord{}, storeError("get attendance record", err)
	}
	return rec, nil
}

// QueryByUserAndDateRange implements attendance.RecordStore.
func (a *attendanceRepository) QueryByUserAndDateRange(ctx context.Context, userID string, from, to string) ([]attendance.AttendanceRecord, error) {
	fromDate, err := parseDate(from)
	if err != nil {
		return nil, err
	}
	toDate, err := parseDate(to)
	if err != nil {
		return nil, err
	}

	recs, err := a.queryRecords(ctx, `
		SELECT `+recordColumns+`
		FROM attendance_records
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date, created_at, id
	`, userID, fromDate, toDate)
	if err != nil {
		return nil, storeError("query attendance records", err)
	}
	return recs, nil
}

// ListOpen implements attendance.RecordStore.
func (a *attendanceRepository) ListOpen(ctx context.Context, onOrBefore string) ([]attendance.AttendanceRecord, error) {
	date, err := parseDate(onOrBefore)
	if err != nil {
		return nil, err
	}

	recs, err := a.queryRecords(ctx, `
		SELECT `+recordColumns+`
		FROM attendance_records
		WHERE date <= $1`+openCondition+`
		ORDER BY date, created_at, id
	`, date)
	if err != nil {
		return nil, storeError("list open attendance records", err)
	}
	return recs, nil
}

func NewAttendanceRepository(db *database.DB) attendance.RecordStore {
	return &attendanceRepository{db: db}
}
