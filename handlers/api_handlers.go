package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	gokitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"classroom-server-go/calc"
	"classroom-server-go/db"
	"classroom-server-go/models"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// APIHandler holds the dependencies for API handlers, like the classroom store
type APIHandler struct {
	Store  *db.ClassroomStore
	Logger gokitlog.Logger
}

// NewAPIHandler creates a new APIHandler
func NewAPIHandler(store *db.ClassroomStore, logger gokitlog.Logger) *APIHandler {
	registerValidator()
	if logger == nil {
		logger = gokitlog.NewNopLogger()
	}
	return &APIHandler{
		Store:  store,
		Logger: logger,
	}
}

// internalError logs err and answers 500 with a generic message
func (h *APIHandler) internalError(c *gin.Context, op string, err error, message string) {
	level.Error(h.Logger).Log("handler", op, "path", c.Request.URL.Path, "err", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}

// --- Student Handlers ---

// GetStudents handles GET /api/students?q=
func (h *APIHandler) GetStudents(c *gin.Context) {
	students, err := h.Store.GetStudents(c.Request.Context())
	if err != nil {
		h.internalError(c, "GetStudents", err, "Failed to retrieve students")
		return
	}

	if q := strings.ToLower(strings.TrimSpace(c.Query("q"))); q != "" {
		filtered := make([]models.Student, 0, len(students))
		for _, st := range students {
			if strings.Contains(strings.ToLower(st.Name), q) || strings.Contains(strings.ToLower(st.Registration), q) {
				filtered = append(filtered, st)
			}
		}
		students = filtered
	}
	c.JSON(http.StatusOK, students)
}

// GetStudent handles GET /api/students/:studentId
func (h *APIHandler) GetStudent(c *gin.Context) {
	student, err := h.Store.GetStudent(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		h.internalError(c, "GetStudent", err, "Failed to retrieve student")
		return
	}
	if student == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}
	c.JSON(http.StatusOK, student)
}

// AddStudent handles POST /api/students
func (h *APIHandler) AddStudent(c *gin.Context) {
	var in models.StudentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Registration = strings.TrimSpace(in.Registration)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" || in.Registration == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name and registration are required"})
		return
	}

	student, err := h.Store.AddStudent(c.Request.Context(), in)
	if err != nil {
		h.internalError(c, "AddStudent", err, "Failed to add student")
		return
	}
	c.JSON(http.StatusCreated, student)
}

// UpdateStudent handles PUT /api/students/:studentId
func (h *APIHandler) UpdateStudent(c *gin.Context) {
	var upd models.StudentUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		respondBindError(c, err)
		return
	}
	// the path decides which student, ids never change
	upd.ID = c.Param("studentId")

	student, err := h.Store.UpdateStudent(c.Request.Context(), upd)
	if err != nil {
		h.internalError(c, "UpdateStudent", err, "Failed to update student")
		return
	}
	if student == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}
	c.JSON(http.StatusOK, student)
}

// RemoveStudent handles DELETE /api/students/:studentId. Removing an unknown
// student succeeds.
func (h *APIHandler) RemoveStudent(c *gin.Context) {
	removed, err := h.Store.RemoveStudent(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		h.internalError(c, "RemoveStudent", err, "Failed to remove student")
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// GetRandomStudent handles GET /api/students/random
func (h *APIHandler) GetRandomStudent(c *gin.Context) {
	student, err := h.Store.RandomStudent(c.Request.Context())
	if err != nil {
		h.internalError(c, "GetRandomStudent", err, "Failed to get random student")
		return
	}
	if student == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No students registered"})
		return
	}
	c.JSON(http.StatusOK, student)
}

// GetStudentAttendance handles GET /api/students/:studentId/attendance
func (h *APIHandler) GetStudentAttendance(c *gin.Context) {
	ctx := c.Request.Context()
	studentID := c.Param("studentId")

	student, err := h.Store.GetStudent(ctx, studentID)
	if err != nil {
		h.internalError(c, "GetStudentAttendance", err, "Failed to retrieve student")
		return
	}
	if student == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}

	pct, err := h.Store.CalculateStudentAttendance(ctx, studentID)
	if err != nil {
		h.internalError(c, "GetStudentAttendance", err, "Failed to calculate attendance")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"studentId":  studentID,
		"percentage": pct,
		"formatted":  calc.FormatPercentage(&pct),
	})
}

// --- Attendance Handlers ---

type attendanceDay struct {
	models.AttendanceRecord
	FormattedDate string `json:"formattedDate"`
	calc.DayStats
}

// GetAttendanceHistory handles GET /api/attendance, newest day first
func (h *APIHandler) GetAttendanceHistory(c *gin.Context) {
	records, err := h.Store.GetAttendance(c.Request.Context())
	if err != nil {
		h.internalError(c, "GetAttendanceHistory", err, "Failed to retrieve attendance")
		return
	}

	history := make([]attendanceDay, 0, len(records))
	for _, rec := range calc.NewestFirst(records) {
		history = append(history, attendanceDay{
			AttendanceRecord: rec,
			FormattedDate:    calc.FormatDate(rec.Date),
			DayStats:         calc.ComputeDayStats(rec),
		})
	}
	c.JSON(http.StatusOK, history)
}

// GetAttendanceByDate handles GET /api/attendance/:date
func (h *APIHandler) GetAttendanceByDate(c *gin.Context) {
	date, err := models.ParseDate(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.Store.GetAttendanceByDate(c.Request.Context(), date)
	if err != nil {
		h.internalError(c, "GetAttendanceByDate", err, "Failed to retrieve attendance")
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No attendance recorded for " + date.String()})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// SaveAttendance handles POST /api/attendance. The body replaces whatever
// was recorded for that day.
func (h *APIHandler) SaveAttendance(c *gin.Context) {
	var rec models.AttendanceRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		respondBindError(c, err)
		return
	}
	if rec.Date.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Date is required"})
		return
	}

	saved, err := h.Store.SaveAttendance(c.Request.Context(), rec)
	if err != nil {
		h.internalError(c, "SaveAttendance", err, "Failed to save attendance")
		return
	}
	c.JSON(http.StatusOK, saved)
}

// --- Grade Handlers ---

type gradeRow struct {
	models.Student
	Portfolio  *float64 `json:"portfolio"`
	Activities *float64 `json:"activities"`
	Exam       *float64 `json:"exam"`
	FinalGrade *float64 `json:"finalGrade"`
	Passing    *bool    `json:"passing"`
}

type gradeRequest struct {
	Portfolio  *float64 `json:"portfolio" binding:"omitempty,gte=0,lte=10"`
	Activities *float64 `json:"activities" binding:"omitempty,gte=0,lte=10"`
	Exam       *float64 `json:"exam" binding:"omitempty,gte=0,lte=10"`
}

// GetGrades handles GET /api/grades: every student with their grade (nulls
// when ungraded) and the class averages.
func (h *APIHandler) GetGrades(c *gin.Context) {
	ctx := c.Request.Context()
	students, err := h.Store.GetStudents(ctx)
	if err != nil {
		h.internalError(c, "GetGrades", err, "Failed to retrieve students")
		return
	}
	grades, err := h.Store.GetGrades(ctx)
	if err != nil {
		h.internalError(c, "GetGrades", err, "Failed to retrieve grades")
		return
	}

	byStudent := make(map[string]models.Grade, len(grades))
	for _, g := range grades {
		byStudent[g.StudentID] = g
	}
	rows := make([]gradeRow, 0, len(students))
	for _, st := range students {
		row := gradeRow{Student: st}
		if g, ok := byStudent[st.ID]; ok {
			row.Portfolio, row.Activities, row.Exam, row.FinalGrade = g.Portfolio, g.Activities, g.Exam, g.FinalGrade
			if g.FinalGrade != nil {
				passing := calc.IsPassing(*g.FinalGrade)
				row.Passing = &passing
			}
		}
		rows = append(rows, row)
	}

	c.JSON(http.StatusOK, gin.H{
		"students":      rows,
		"classAverages": calc.ComputeClassAverages(grades),
	})
}

// GetStudentGrade handles GET /api/grades/:studentId
func (h *APIHandler) GetStudentGrade(c *gin.Context) {
	grade, err := h.Store.GetStudentGrade(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		h.internalError(c, "GetStudentGrade", err, "Failed to retrieve grade")
		return
	}
	if grade == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Grade not found"})
		return
	}
	c.JSON(http.StatusOK, grade)
}

// SaveGrade handles PUT /api/grades/:studentId. The final grade is computed
// here from the submitted components.
func (h *APIHandler) SaveGrade(c *gin.Context) {
	ctx := c.Request.Context()
	studentID := c.Param("studentId")

	var req gradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	student, err := h.Store.GetStudent(ctx, studentID)
	if err != nil {
		h.internalError(c, "SaveGrade", err, "Failed to retrieve student")
		return
	}
	if student == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}

	grade, err := h.Store.SaveGrade(ctx, models.GradeInput{
		StudentID:  studentID,
		Portfolio:  req.Portfolio,
		Activities: req.Activities,
		Exam:       req.Exam,
		FinalGrade: calc.ComputeFinalGrade(req.Portfolio, req.Activities, req.Exam),
	})
	if err != nil {
		h.internalError(c, "SaveGrade", err, "Failed to save grade")
		return
	}
	c.JSON(http.StatusOK, grade)
}

// --- Dashboard ---

// GetDashboard handles GET /api/dashboard
func (h *APIHandler) GetDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	students, err := h.Store.GetStudents(ctx)
	if err != nil {
		h.internalError(c, "GetDashboard", err, "Failed to retrieve students")
		return
	}
	grades, err := h.Store.GetGrades(ctx)
	if err != nil {
		h.internalError(c, "GetDashboard", err, "Failed to retrieve grades")
		return
	}
	records, err := h.Store.GetAttendance(ctx)
	if err != nil {
		h.internalError(c, "GetDashboard", err, "Failed to retrieve attendance")
		return
	}
	c.JSON(http.StatusOK, calc.ComputeClassStats(students, grades, records))
}

// --- Import / Export Handlers ---

// ImportStudents handles POST /api/import/students
func (h *APIHandler) ImportStudents(c *gin.Context) {
	h.importWorkbook(c, "students", h.Store.ImportStudentsFromExcel)
}

// ImportGrades handles POST /api/import/grades
func (h *APIHandler) ImportGrades(c *gin.Context) {
	h.importWorkbook(c, "grades", h.Store.ImportGradesFromExcel)
}

func (h *APIHandler) importWorkbook(c *gin.Context, what string, importFn func(context.Context, io.Reader) (int, error)) {
	// Get file from form data
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error retrieving uploaded file: " + err.Error()})
		return
	}
	defer file.Close()

	level.Info(h.Logger).Log("msg", "received upload", "file", header.Filename, "import", what)

	count, err := importFn(c.Request.Context(), file)
	if err != nil {
		level.Error(h.Logger).Log("msg", "import failed", "file", header.Filename, "import", what, "err", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fmt.Sprintf("Failed to import %s: %v", what, err), "importedCount": count})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Import successful",
		"importedCount": count,
	})
}

// ExportReport handles GET /api/export/report
func (h *APIHandler) ExportReport(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.Store.ExportReport(c.Request.Context(), &buf); err != nil {
		h.internalError(c, "ExportReport", err, "Failed to export report")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="classroom-report.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// --- Ping Handler ---

// Ping handles GET /api/ping and checks the store is reachable
func (h *APIHandler) Ping(c *gin.Context) {
	if err := h.Store.Ping(c.Request.Context()); err != nil {
		level.Error(h.Logger).Log("msg", "store unreachable", "err", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Store unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Pong!"})
}
