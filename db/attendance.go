package db

import (
	"context"

	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"classroom-server-go/models"
)

// ErrMissingDate is returned when saving a record without a day
var ErrMissingDate = errors.New("attendance record has no date")

// GetAttendance returns every attendance record in insertion order
func (s *ClassroomStore) GetAttendance(ctx context.Context) ([]models.AttendanceRecord, error) {
	return loadCollection[models.AttendanceRecord](ctx, s.kv, s.key(attendanceKey))
}

// GetAttendanceByDate returns the record of the given day, or nil
func (s *ClassroomStore) GetAttendanceByDate(ctx context.Context, date models.Date) (*models.AttendanceRecord, error) {
	records, err := s.GetAttendance(ctx)
	if err != nil {
		return nil, err
	}
	if i := indexOfDay(records, date); i >= 0 {
		return &records[i], nil
	}
	return nil, nil // Not found
}

// SaveAttendance stores rec as the record of its day, replacing whatever was
// recorded for that day before. Entries are not merged with the old record.
func (s *ClassroomStore) SaveAttendance(ctx context.Context, rec models.AttendanceRecord) (models.AttendanceRecord, error) {
	if rec.Date.IsZero() {
		return models.AttendanceRecord{}, ErrMissingDate
	}
	if rec.Students == nil {
		rec.Students = []models.AttendanceEntry{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.GetAttendance(ctx)
	if err != nil {
		return models.AttendanceRecord{}, err
	}
	if i := indexOfDay(records, rec.Date); i >= 0 {
		records[i] = rec
	} else {
		records = append(records, rec)
	}

	if err := s.persist(ctx, map[string]any{attendanceKey: records}); err != nil {
		return models.AttendanceRecord{}, err
	}
	level.Debug(s.logger).Log("msg", "saved attendance", "date", rec.Date, "entries", len(rec.Students))
	return rec, nil
}

func indexOfDay(records []models.AttendanceRecord, date models.Date) int {
	for i, rec := range records {
		if rec.Date == date {
			return i
		}
	}
	return -1
}
