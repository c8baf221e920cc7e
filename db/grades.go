package db

import (
	"context"

	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"classroom-server-go/models"
)

// ErrMissingStudentID is returned when saving a grade that names no student
var ErrMissingStudentID = errors.New("grade has no student id")

// GetGrades returns every stored grade
func (s *ClassroomStore) GetGrades(ctx context.Context) ([]models.Grade, error) {
	return loadCollection[models.Grade](ctx, s.kv, s.key(gradesKey))
}

// GetStudentGrade returns the grade of the student, or nil
func (s *ClassroomStore) GetStudentGrade(ctx context.Context, studentID string) (*models.Grade, error) {
	grades, err := s.GetGrades(ctx)
	if err != nil {
		return nil, err
	}
	if i := indexOfGrade(grades, studentID); i >= 0 {
		return &grades[i], nil
	}
	return nil, nil // Not found
}

// SaveGrade upserts the student's grade and stamps UpdatedAt. FinalGrade is
// stored exactly as given.
func (s *ClassroomStore) SaveGrade(ctx context.Context, in models.GradeInput) (models.Grade, error) {
	if in.StudentID == "" {
		return models.Grade{}, ErrMissingStudentID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	grades, err := s.GetGrades(ctx)
	if err != nil {
		return models.Grade{}, err
	}

	grade := models.Grade{StudentID: in.StudentID}
	i := indexOfGrade(grades, in.StudentID)
	if i >= 0 {
		grade = grades[i]
	}
	grade.Portfolio = in.Portfolio
	grade.Activities = in.Activities
	grade.Exam = in.Exam
	grade.FinalGrade = in.FinalGrade
	grade.UpdatedAt = s.now()

	if i >= 0 {
		grades[i] = grade
	} else {
		grades = append(grades, grade)
	}

	if err := s.persist(ctx, map[string]any{gradesKey: grades}); err != nil {
		return models.Grade{}, err
	}
	level.Debug(s.logger).Log("msg", "saved grade", "studentId", grade.StudentID)
	return grade, nil
}

func indexOfGrade(grades []models.Grade, studentID string) int {
	for i, g := range grades {
		if g.StudentID == studentID {
			return i
		}
	}
	return -1
}
