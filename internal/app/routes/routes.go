package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/controllers"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models/dto"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/middleware"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/websocket"
)

// Controllers bundles the HTTP handlers mounted under /api/v1
type Controllers struct {
	Auth      *controllers.AuthController
	Profile   *controllers.ProfileController
	Course    *controllers.CourseController
	Result    *controllers.ResultController
	Record    *controllers.RecordController
	Feedback  *controllers.FeedbackController
	Gallery   *controllers.GalleryController
	Selection *controllers.SelectionController
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	ctrl Controllers,
	authMiddleware *middleware.AuthMiddleware,
	wsHandler *websocket.Handler,
	authLimiter gin.HandlerFunc,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	if authLimiter != nil {
		auth.Use(authLimiter)
	}
	{
		auth.POST("/register", ctrl.Auth.Register)
		auth.POST("/login", ctrl.Auth.Login)
		auth.POST("/refresh-token", ctrl.Auth.RefreshToken)
		auth.POST("/forgot-password", ctrl.Auth.ForgotPassword)
		auth.POST("/reset-password", ctrl.Auth.ResetPassword)
	}

	// Stateless grade calculators
	grades := v1.Group("/grades")
	{
		grades.POST("/gpa", ctrl.Result.CalculateGPA)
		grades.POST("/cgpa", ctrl.Result.CalculateCGPA)
	}

	// News and perks are shown before login
	v1.GET("/news", ctrl.Gallery.ListNews)
	v1.GET("/perks", ctrl.Gallery.ListPerks)

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	students := authenticated.Group("")
	students.Use(authMiddleware.RoleRequired(string(models.RoleStudent)))
	{
		authenticated.GET("/auth/me", ctrl.Auth.Me)
		authenticated.POST("/auth/logout", ctrl.Auth.Logout)

		profile := students.Group("/profile")
		{
			profile.GET("", ctrl.Profile.GetProfile)
			profile.PUT("", ctrl.Profile.UpdateProfile)
			profile.POST("/avatar", ctrl.Profile.UploadAvatar)
		}

		courses := students.Group("/courses")
		{
			courses.GET("", ctrl.Course.ListCourses)
			courses.GET("/:courseId/semesters/:semester/subjects", ctrl.Course.ListSubjects)
		}

		results := students.Group("/results")
		{
			results.GET("", ctrl.Result.GetResults)
			results.GET("/cgpa", ctrl.Result.GetCGPA)
			results.GET("/transcript", ctrl.Result.ExportTranscript)
		}

		students.GET("/attendance", ctrl.Record.GetAttendance)
		students.GET("/exams", ctrl.Record.GetExams)
		students.GET("/exams/calendar", ctrl.Record.ExamCalendar)
		students.GET("/timetable", ctrl.Record.GetTimetable)

		students.POST("/feedbacks", middleware.ValidateRequest[dto.FeedbackRequest](), ctrl.Feedback.SubmitFeedback)

		// Selection drill-down; the socket pushes every settled snapshot
		sel := students.Group("/selection")
		{
			sel.GET("", ctrl.Selection.GetSelection)
			sel.PUT("/course", ctrl.Selection.SelectCourse)
			sel.DELETE("/course", ctrl.Selection.DeselectCourse)
			sel.PUT("/semester", ctrl.Selection.SelectSemester)
			sel.GET("/ws", wsHandler.HandleConnection)
		}
	}
}
