package models

import "time"

// Student represents a student enrolled in the class
type Student struct {
	ID           string    `json:"id"`           // Assigned by the store, never changes
	Name         string    `json:"name"`         // Full name
	Registration string    `json:"registration"` // Enrollment number
	Email        string    `json:"email"`
	CreatedAt    time.Time `json:"createdAt"`
}

// StudentInput is the payload for adding a student
type StudentInput struct {
	Name         string `json:"name" binding:"required"`
	Registration string `json:"registration" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
}

// StudentUpdate carries the fields to merge into an existing student.
// Nil fields are left untouched.
type StudentUpdate struct {
	ID           string  `json:"id"`
	Name         *string `json:"name" binding:"omitempty,min=1"`
	Registration *string `json:"registration" binding:"omitempty,min=1"`
	Email        *string `json:"email" binding:"omitempty,email"`
}

// AttendanceEntry is one student's presence on a given day
type AttendanceEntry struct {
	ID      string `json:"id" binding:"required"` // Student ID
	Present bool   `json:"present"`
}

// AttendanceRecord holds the roll call of a single calendar day
type AttendanceRecord struct {
	Date     Date              `json:"date"`
	Students []AttendanceEntry `json:"students" binding:"dive"`
}

// Grade holds the weighted components of a student's grade.
// A nil component has not been graded yet.
type Grade struct {
	StudentID  string    `json:"studentId"`
	Portfolio  *float64  `json:"portfolio"`
	Activities *float64  `json:"activities"`
	Exam       *float64  `json:"exam"`
	FinalGrade *float64  `json:"finalGrade"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// GradeInput is the payload for saving a grade. FinalGrade is computed by the
// caller and stored as given.
type GradeInput struct {
	StudentID  string   `json:"studentId"`
	Portfolio  *float64 `json:"portfolio"`
	Activities *float64 `json:"activities"`
	Exam       *float64 `json:"exam"`
	FinalGrade *float64 `json:"finalGrade"`
}

// Float returns a pointer to v, handy for building grades
func Float(v float64) *float64 {
	return &v
}
