// Package calc holds the grade and attendance arithmetic. Everything here is
// pure: callers read the collections from the store and pass them in.
package calc

import (
	"math"
	"strconv"
	"strings"

	"classroom-server-go/models"
)

// Component weights of the final grade. They sum to 1.0.
const (
	PortfolioWeight  = 0.2
	ActivitiesWeight = 0.3
	ExamWeight       = 0.5

	PassingGrade = 6.0

	MinScore = 0.0
	MaxScore = 10.0
)

// ClassAverages are the per-component averages of a class
type ClassAverages struct {
	Portfolio  float64 `json:"portfolio"`
	Activities float64 `json:"activities"`
	Exam       float64 `json:"exam"`
	Final      float64 `json:"final"`
}

// Round1 rounds v to one decimal place, halves away from zero.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// ComputeFinalGrade returns the weighted final grade, or nil while any
// component is still missing.
func ComputeFinalGrade(portfolio, activities, exam *float64) *float64 {
	if portfolio == nil || activities == nil || exam == nil {
		return nil
	}
	final := finite(*portfolio)*PortfolioWeight +
		finite(*activities)*ActivitiesWeight +
		finite(*exam)*ExamWeight
	final = Round1(final)
	return &final
}

// ComputeClassAverages averages each component over the grades that have all
// three components set. Partial grades are skipped entirely.
func ComputeClassAverages(grades []models.Grade) ClassAverages {
	var sum ClassAverages
	count := 0
	for _, g := range grades {
		if g.Portfolio == nil || g.Activities == nil || g.Exam == nil {
			continue
		}
		sum.Portfolio += finite(*g.Portfolio)
		sum.Activities += finite(*g.Activities)
		sum.Exam += finite(*g.Exam)
		if g.FinalGrade != nil {
			sum.Final += finite(*g.FinalGrade)
		}
		count++
	}
	if count == 0 {
		return ClassAverages{}
	}
	n := float64(count)
	return ClassAverages{
		Portfolio:  Round1(sum.Portfolio / n),
		Activities: Round1(sum.Activities / n),
		Exam:       Round1(sum.Exam / n),
		Final:      Round1(sum.Final / n),
	}
}

// ComputeAttendancePercentage is the share of days the student was present,
// counting only the records that list the student. With no such record the
// student reads as fully present.
func ComputeAttendancePercentage(studentID string, records []models.AttendanceRecord) float64 {
	present, total := attendanceCounts(studentID, records)
	if total == 0 {
		return 100
	}
	return float64(present) / float64(total) * 100
}

// IsPassing reports whether a final grade passes. 6.0 itself passes.
func IsPassing(grade float64) bool {
	return grade >= PassingGrade
}

// ParseScore reads a grade component typed by a user or found in a
// spreadsheet cell. Blank means not graded (nil); anything that is not a
// number counts as 0; numbers are clamped to [0, 10].
func ParseScore(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		v = 0
	}
	v = math.Max(MinScore, math.Min(MaxScore, finite(v)))
	return &v
}

func attendanceCounts(studentID string, records []models.AttendanceRecord) (present, total int) {
	for _, rec := range records {
		for _, entry := range rec.Students {
			if entry.ID != studentID {
				continue
			}
			total++
			if entry.Present {
				present++
			}
			break
		}
	}
	return present, total
}

// finite maps NaN and infinities to 0, the same as any other non-number.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
