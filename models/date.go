package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const dateLayout = "2006-01-02"

// Date is a calendar day with no time-of-day or zone. Two timestamps taken on
// the same calendar day map to equal Dates, which is what keys attendance.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar day of t in t's own location
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate accepts "2006-01-02" or any timestamp whose part before "T" is
// such a date, e.g. "2024-05-01T00:00:00.000Z".
func ParseDate(s string) (Date, error) {
	day, _, _ := strings.Cut(strings.TrimSpace(s), "T")
	t, err := time.Parse(dateLayout, day)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// Time returns midnight UTC of d
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

func (d Date) String() string {
	return d.Time().Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
