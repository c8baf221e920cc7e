package db

import (
	"context"
	"io"
	"strings"

	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"classroom-server-go/calc"
	"classroom-server-go/models"
)

// Sheet names of the exported report
const (
	StudentsSheet   = "Students"
	GradesSheet     = "Grades"
	AttendanceSheet = "Attendance"
)

// --- Excel Import ---

// readFirstSheet returns the rows of the first sheet without the header row
func readFirstSheet(file io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open excel file")
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, errors.New("excel file does not contain any sheets")
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get rows from sheet %s", sheetName)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[1:], nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

// ImportStudentsFromExcel adds one student per row of the first sheet.
// Columns: A name, B registration, C email. Row 1 is a header. Rows without a
// name or registration are skipped.
func (s *ClassroomStore) ImportStudentsFromExcel(ctx context.Context, file io.Reader) (int, error) {
	rows, err := readFirstSheet(file)
	if err != nil {
		return 0, err
	}

	imported := 0
	for i, row := range rows {
		in := models.StudentInput{
			Name:         cell(row, 0),
			Registration: cell(row, 1),
			Email:        cell(row, 2),
		}
		if in.Name == "" || in.Registration == "" {
			level.Warn(s.logger).Log("msg", "skipping row without name or registration", "row", i+2)
			continue
		}
		if _, err := s.AddStudent(ctx, in); err != nil {
			return imported, errors.Wrapf(err, "row %d", i+2)
		}
		imported++
	}
	level.Info(s.logger).Log("msg", "imported students", "count", imported)
	return imported, nil
}

// ImportGradesFromExcel saves grades for the students listed in the first
// sheet. Columns: A registration, B portfolio, C activities, D exam. Blank
// cells are ungraded components. Unknown registrations are skipped.
func (s *ClassroomStore) ImportGradesFromExcel(ctx context.Context, file io.Reader) (int, error) {
	rows, err := readFirstSheet(file)
	if err != nil {
		return 0, err
	}
	students, err := s.GetStudents(ctx)
	if err != nil {
		return 0, err
	}
	byRegistration := make(map[string]string, len(students))
	for _, st := range students {
		byRegistration[st.Registration] = st.ID
	}

	imported := 0
	for i, row := range rows {
		id, ok := byRegistration[cell(row, 0)]
		if !ok {
			level.Warn(s.logger).Log("msg", "skipping grade row for unknown registration", "row", i+2, "registration", cell(row, 0))
			continue
		}
		in := models.GradeInput{
			StudentID:  id,
			Portfolio:  calc.ParseScore(cell(row, 1)),
			Activities: calc.ParseScore(cell(row, 2)),
			Exam:       calc.ParseScore(cell(row, 3)),
		}
		in.FinalGrade = calc.ComputeFinalGrade(in.Portfolio, in.Activities, in.Exam)
		if _, err := s.SaveGrade(ctx, in); err != nil {
			return imported, errors.Wrapf(err, "row %d", i+2)
		}
		imported++
	}
	level.Info(s.logger).Log("msg", "imported grades", "count", imported)
	return imported, nil
}

// --- Excel Export ---

// ExportReport writes a workbook with the students (and their attendance
// rate), the grades and the attendance history.
func (s *ClassroomStore) ExportReport(ctx context.Context, w io.Writer) error {
	students, err := s.GetStudents(ctx)
	if err != nil {
		return err
	}
	records, err := s.GetAttendance(ctx)
	if err != nil {
		return err
	}
	grades, err := s.GetGrades(ctx)
	if err != nil {
		return err
	}
	gradeByStudent := make(map[string]models.Grade, len(grades))
	for _, g := range grades {
		gradeByStudent[g.StudentID] = g
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), StudentsSheet); err != nil {
		return errors.Wrap(err, "failed to name students sheet")
	}
	for _, name := range []string{GradesSheet, AttendanceSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return errors.Wrapf(err, "failed to create sheet %s", name)
		}
	}

	studentRows := [][]any{{"Name", "Registration", "Email", "Attendance"}}
	gradeRows := [][]any{{"Name", "Registration", "Portfolio", "Activities", "Exam", "Final", "Status"}}
	for _, st := range students {
		pct := calc.ComputeAttendancePercentage(st.ID, records)
		studentRows = append(studentRows, []any{st.Name, st.Registration, st.Email, calc.FormatPercentage(&pct)})

		g := gradeByStudent[st.ID]
		status := ""
		if g.FinalGrade != nil {
			status = "Failing"
			if calc.IsPassing(*g.FinalGrade) {
				status = "Passing"
			}
		}
		gradeRows = append(gradeRows, []any{
			st.Name, st.Registration,
			scoreCell(g.Portfolio), scoreCell(g.Activities), scoreCell(g.Exam), scoreCell(g.FinalGrade),
			status,
		})
	}

	attendanceRows := [][]any{{"Date", "Present", "Absent", "Percentage"}}
	for _, rec := range calc.NewestFirst(records) {
		stats := calc.ComputeDayStats(rec)
		attendanceRows = append(attendanceRows, []any{
			calc.FormatDateForInput(rec.Date), stats.Present, stats.Absent, calc.FormatPercentage(&stats.Percentage),
		})
	}

	for sheet, rows := range map[string][][]any{
		StudentsSheet:   studentRows,
		GradesSheet:     gradeRows,
		AttendanceSheet: attendanceRows,
	} {
		if err := writeRows(f, sheet, rows); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "failed to write report")
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		addr, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return errors.Wrap(err, "bad cell coordinates")
		}
		if err := f.SetSheetRow(sheet, addr, &row); err != nil {
			return errors.Wrapf(err, "failed to write %s row %d", sheet, i+1)
		}
	}
	return nil
}

// scoreCell leaves ungraded components as empty cells
func scoreCell(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
