package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"classroom-server-go/models"
)

func TestComputeClassStats(t *testing.T) {
	students := []models.Student{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	grades := []models.Grade{
		{StudentID: "a", Portfolio: f(8), Activities: f(7), Exam: f(6), FinalGrade: f(6.7)},
		{StudentID: "b", Portfolio: f(5)},
		{StudentID: "c", Portfolio: f(5), Activities: f(5), Exam: f(5), FinalGrade: f(5)},
	}
	stats := ComputeClassStats(students, grades, attendanceFixture(t))

	assert.Equal(t, 3, stats.TotalStudents)
	// a: 2 of 3, b: 1 of 2, c never listed
	assert.InDelta(t, (200.0/3+50)/2, stats.AverageAttendance, 1e-9)
	assert.InDelta(t, 50.0, stats.PassRate, 1e-9)
	assert.Equal(t, ComputeClassAverages(grades), stats.ClassAverages)
}

func TestComputeClassStatsEmpty(t *testing.T) {
	stats := ComputeClassStats(nil, nil, nil)
	assert.Equal(t, ClassStats{}, stats)
}

func TestComputeDayStats(t *testing.T) {
	records := attendanceFixture(t)
	assert.Equal(t, DayStats{Present: 1, Absent: 1, Percentage: 50}, ComputeDayStats(records[0]))
	assert.Equal(t, DayStats{Present: 0, Absent: 1, Percentage: 0}, ComputeDayStats(records[1]))
	assert.Equal(t, DayStats{}, ComputeDayStats(models.AttendanceRecord{}))
}

func TestNewestFirst(t *testing.T) {
	records := attendanceFixture(t)
	sorted := NewestFirst(records)

	assert.Equal(t, "2024-05-03", sorted[0].Date.String())
	assert.Equal(t, "2024-05-02", sorted[1].Date.String())
	assert.Equal(t, "2024-05-01", sorted[2].Date.String())
	// input untouched
	assert.Equal(t, "2024-05-01", records[0].Date.String())
}
