package handlers

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the API under /api
func RegisterRoutes(router gin.IRouter, h *APIHandler) {
	api := router.Group("/api")
	{
		api.GET("/ping", h.Ping)

		// Student routes
		api.GET("/students", h.GetStudents)
		api.POST("/students", h.AddStudent)
		api.GET("/students/random", h.GetRandomStudent)
		api.GET("/students/:studentId", h.GetStudent)
		api.PUT("/students/:studentId", h.UpdateStudent)
		api.DELETE("/students/:studentId", h.RemoveStudent)
		api.GET("/students/:studentId/attendance", h.GetStudentAttendance)

		// Attendance routes
		api.GET("/attendance", h.GetAttendanceHistory)
		api.POST("/attendance", h.SaveAttendance)
		api.GET("/attendance/:date", h.GetAttendanceByDate)

		// Grade routes
		api.GET("/grades", h.GetGrades)
		api.GET("/grades/:studentId", h.GetStudentGrade)
		api.PUT("/grades/:studentId", h.SaveGrade)

		api.GET("/dashboard", h.GetDashboard)

		// Spreadsheet routes
		api.POST("/import/students", h.ImportStudents)
		api.POST("/import/grades", h.ImportGrades)
		api.GET("/export/report", h.ExportReport)
	}
}
