package bolt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/attendance"
	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

var (
	// user \x00 date \x00 id -> record JSON
	recordsBucket = []byte("attendance_records")
	// id -> records key
	idsBucket = []byte("attendance_ids")
	// date \x00 id -> records key, for clocked-in records without a clock-out
	openBucket = []byte("attendance_open")
)

const sep = "\x00"

type attendanceRepository struct {
	db *bolt.DB
}

func recordKey(rec attendance.AttendanceRecord) []byte {
	return []byte(rec.UserID + sep + rec.Date + sep + rec.ID)
}

func openKey(rec attendance.AttendanceRecord) []byte {
	return []byte(rec.Date + sep + rec.ID)
}

func unavailable(op string, err error) error {
	if errors.Is(err, attendance.ErrAttendanceNotFound) ||
		errors.Is(err, attendance.ErrRecordClosed) ||
		errors.Is(err, attendance.ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: failed to %s: %w", attendance.ErrStoreUnavailable, op, err)
}

// put writes rec and its index entries, dropping the entries of prev when given.
func put(tx *bolt.Tx, rec attendance.AttendanceRecord, prev *attendance.AttendanceRecord) error {
	records := tx.Bucket(recordsBucket)
	open := tx.Bucket(openBucket)

	if prev != nil {
		if err := records.Delete(recordKey(*prev)); err != nil {
			return err
		}
		if err := open.Delete(openKey(*prev)); err != nil {
			return err
		}
	}

	if rec.Breaks == nil {
		rec.Breaks = []attendance.BreakRecord{}
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	key := recordKey(rec)
	if err := records.Put(key, body); err != nil {
		return err
	}
	if err := tx.Bucket(idsBucket).Put([]byte(rec.ID), key); err != nil {
		return err
	}
	if rec.IsOpen() {
		return open.Put(openKey(rec), key)
	}
	return nil
}

func decode(body []byte) (attendance.AttendanceRecord, error) {
	var rec attendance.AttendanceRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return attendance.AttendanceRecord{}, err
	}
	if rec.Breaks == nil {
		rec.Breaks = []attendance.BreakRecord{}
	}
	return rec, nil
}

func get(tx *bolt.Tx, id string) (attendance.AttendanceRecord, error) {
	key := tx.Bucket(idsBucket).Get([]byte(id))
	if key == nil {
		return attendance.AttendanceRecord{}, attendance.ErrAttendanceNotFound
	}
	body := tx.Bucket(recordsBucket).Get(key)
	if body == nil {
		return attendance.AttendanceRecord{}, attendance.ErrAttendanceNotFound
	}
	return decode(body)
}

// Append implements attendance.RecordStore.
func (a *attendanceRepository) Append(ctx context.Context, record attendance.AttendanceRecord) (attendance.AttendanceRecord, error) {
	if err := ctx.Err(); err != nil {
		return attendance.AttendanceRecord{}, unavailable("create attendance record", err)
	}

	rec := record.Clone()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	err := a.db.Update(func(tx *bolt.Tx) error {
		return put(tx, rec, nil)
	})
	if err != nil {
		return attendance.AttendanceRecord{}, unavailable("create attendance record", err)
	}
	return rec, nil
}

// Replace implements attendance.RecordStore.
func (a *attendanceRepository) Replace(ctx context.Context, match attendance.RecordMatch, record attendance.AttendanceRecord) (attendance.AttendanceRecord, error) {
	if err := ctx.Err(); err != nil {
		return attendance.AttendanceRecord{}, unavailable("replace attendance record", err)
	}

	var saved attendance.AttendanceRecord
	err := a.db.Update(func(tx *bolt.Tx) error {
		prefix := []byte(match.UserID + sep + match.Date + sep)
		c := tx.Bucket(recordsBucket).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			existing, err := decode(v)
			if err != nil {
				return err
			}
			if !match.Matches(existing) {
				continue
			}
			rec := record.Clone()
			rec.ID = existing.ID
			if err := put(tx, rec, &existing); err != nil {
				return err
			}
			saved = rec
			return nil
		}
		return attendance.ErrAttendanceNotFound
	})
	if err != nil {
		return attendance.AttendanceRecord{}, unavailable("replace attendance record", err)
	}
	if saved.Breaks == nil {
		saved.Breaks = []attendance.BreakRecord{}
	}
	return saved, nil
}

// Update implements attendance.RecordStore.
func (a *attendanceRepository) Update(ctx context.Context, id string, fields attendance.RecordUpdate) (attendance.AttendanceRecord, error) {
	if fields.IsEmpty() {
		return attendance.AttendanceRecord{}, attendance.ErrNoFieldsToUpdate
	}
	if err := ctx.Err(); err != nil {
		return attendance.AttendanceRecord{}, unavailable("update attendance record", err)
	}

	var saved attendance.AttendanceRecord
	err := a.db.Update(func(tx *bolt.Tx) error {
		existing, err := get(tx, id)
		if err != nil {
			return err
		}
		if fields.RequireOpen && !existing.IsOpen() {
			return attendance.ErrRecordClosed
		}
		rec := existing.Clone()
		fields.Apply(&rec)
		if err := put(tx, rec, &existing); err != nil {
			return err
		}
		saved = rec
		return nil
	})
	if err != nil {
		return attendance.AttendanceRecord{}, unavailable("update attendance record", err)
	}
	return saved, nil
}

// GetByID implements attendance.RecordStore.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.AttendanceRecord, error) {
	if err := ctx.Err(); err != nil {
		return attendance.AttendanceRecord{}, unavailable("get attendance record", err)
	}

	var rec attendance.AttendanceRecord
	err := a.db.View(func(tx *bolt.Tx) error {
		var err error
		rec, err = get(tx, id)
		return err
	})
	if err != nil {
		return attendance.AttendanceRecord{}, unavailable("get attendance record", err)
	}
	return rec, nil
}

// QueryByUserAndDateRange implements attendance.RecordStore.
func (a *attendanceRepository) QueryByUserAndDateRange(ctx context.Context, userID string, from, to string) ([]attendance.AttendanceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("query attendance records", err)
	}

	out := make([]attendance.AttendanceRecord, 0)
	err := a.db.View(func(tx *bolt.Tx) error {
		userPrefix := []byte(userID + sep)
		// "\x01" sorts after the separator, so every id on the "to" date is included
		end := []byte(userID + sep + to + "\x01")

		c := tx.Bucket(recordsBucket).Cursor()
		for k, v := c.Seek([]byte(userID + sep + from)); k != nil && bytes.HasPrefix(k, userPrefix) && bytes.Compare(k, end) < 0; k, v = c.Next() {
			rec, err := decode(v)
			if err != nil {
				return err
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, unavailable("query attendance records", err)
	}
	return out, nil
}

// ListOpen implements attendance.RecordStore.
func (a *attendanceRepository) ListOpen(ctx context.Context, onOrBefore string) ([]attendance.AttendanceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("list open attendance records", err)
	}

	out := make([]attendance.AttendanceRecord, 0)
	err := a.db.View(func(tx *bolt.Tx) error {
		end := []byte(onOrBefore + "\x01")
		records := tx.Bucket(recordsBucket)

		c := tx.Bucket(openBucket).Cursor()
		for k, key := c.First(); k != nil && bytes.Compare(k, end) < 0; k, key = c.Next() {
			body := records.Get(key)
			if body == nil {
				continue
			}
			rec, err := decode(body)
			if err != nil {
				return err
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, unavailable("list open attendance records", err)
	}
	return out, nil
}

// NewAttendanceRepository creates the buckets if needed. The caller owns db.
func NewAttendanceRepository(db *bolt.DB) (attendance.RecordStore, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{recordsBucket, idsBucket, openBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &attendanceRepository{db: db}, nil
}
