package models

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateIgnoresTimeOfDay(t *testing.T) {
	morning, err := ParseDate("2024-05-01T08:15:00.000Z")
	require.NoError(t, err)
	night, err := ParseDate("2024-05-01T23:59:59Z")
	require.NoError(t, err)
	plain, err := ParseDate("2024-05-01")
	require.NoError(t, err)

	assert.Equal(t, morning, night)
	assert.Equal(t, morning, plain)
	assert.Equal(t, Date{Year: 2024, Month: time.May, Day: 1}, plain)

	next, err := ParseDate("2024-05-02")
	require.NoError(t, err)
	assert.NotEqual(t, plain, next)
	assert.True(t, plain.Before(next))
}

func TestParseDateRejectsGarbage(t *testing.T) {
	_, err := ParseDate("yesterday")
	assert.Error(t, err)
	_, err = ParseDate("")
	assert.Error(t, err)
}

func TestDateJSON(t *testing.T) {
	var rec AttendanceRecord
	err := json.Unmarshal([]byte(`{"date":"2024-03-10T00:00:00.000Z","students":[{"id":"a","present":true}]}`), &rec)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10", rec.Date.String())

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-03-10","students":[{"id":"a","present":true}]}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"date":42}`), &rec))
}

func TestDateOf(t *testing.T) {
	ts := time.Date(2023, time.December, 31, 22, 0, 0, 0, time.UTC)
	assert.Equal(t, "2023-12-31", DateOf(ts).String())
	assert.True(t, Date{}.IsZero())
	assert.False(t, DateOf(ts).IsZero())
}
