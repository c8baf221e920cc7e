package calc

import (
	"sort"

	"classroom-server-go/models"
)

// ClassStats is the dashboard summary of the class
type ClassStats struct {
	TotalStudents     int           `json:"totalStudents"`
	AverageAttendance float64       `json:"averageAttendance"`
	ClassAverages     ClassAverages `json:"classAverages"`
	PassRate          float64       `json:"passRate"`
}

// DayStats summarizes one attendance record
type DayStats struct {
	Present    int     `json:"present"`
	Absent     int     `json:"absent"`
	Percentage float64 `json:"percentage"`
}

// ComputeClassStats builds the dashboard summary. Average attendance only
// counts students that appear in at least one record; pass rate only counts
// students whose grade has a final grade.
func ComputeClassStats(students []models.Student, grades []models.Grade, records []models.AttendanceRecord) ClassStats {
	gradeByStudent := make(map[string]models.Grade, len(grades))
	for _, g := range grades {
		if _, seen := gradeByStudent[g.StudentID]; !seen {
			gradeByStudent[g.StudentID] = g
		}
	}

	var rateSum float64
	attending := 0
	graded, passed := 0, 0
	for _, s := range students {
		present, total := attendanceCounts(s.ID, records)
		if total > 0 {
			rateSum += float64(present) / float64(total) * 100
			attending++
		}
		if g, ok := gradeByStudent[s.ID]; ok && g.FinalGrade != nil {
			graded++
			if IsPassing(*g.FinalGrade) {
				passed++
			}
		}
	}

	stats := ClassStats{
		TotalStudents: len(students),
		ClassAverages: ComputeClassAverages(grades),
	}
	if attending > 0 {
		stats.AverageAttendance = rateSum / float64(attending)
	}
	if graded > 0 {
		stats.PassRate = float64(passed) / float64(graded) * 100
	}
	return stats
}

// ComputeDayStats counts who was present on a day. An empty roll is all zero.
func ComputeDayStats(rec models.AttendanceRecord) DayStats {
	total := len(rec.Students)
	if total == 0 {
		return DayStats{}
	}
	present := 0
	for _, entry := range rec.Students {
		if entry.Present {
			present++
		}
	}
	return DayStats{
		Present:    present,
		Absent:     total - present,
		Percentage: float64(present) / float64(total) * 100,
	}
}

// NewestFirst returns a copy of records ordered from the latest day back
func NewestFirst(records []models.AttendanceRecord) []models.AttendanceRecord {
	sorted := make([]models.AttendanceRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[j].Date.Before(sorted[i].Date)
	})
	return sorted
}
