package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models/dto"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/services"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/middleware"
)

// RecordController serves attendance, exam and class timetables
type RecordController struct {
	attendanceService services.AttendanceService
	scheduleService   services.ScheduleService
	logger            zerolog.Logger
}

// NewRecordController creates a new RecordController
func NewRecordController(attendanceService services.AttendanceService, scheduleService services.ScheduleService, logger zerolog.Logger) *RecordController {
	return &RecordController{
		attendanceService: attendanceService,
		scheduleService:   scheduleService,
		logger:            logger,
	}
}

type recordLoader func(ctx *gin.Context, userID int64, q dto.RecordQuery) (interface{}, error)

// serveRecord binds the course/semester query and writes what load returns
func (c *RecordController) serveRecord(ctx *gin.Context, load recordLoader) {
	userID, err := middleware.CurrentUserID(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var query dto.RecordQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	data, err := load(ctx, userID, query)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(data))
}

// GetAttendance lists the caller's absences
// @Summary Attendance
// @Description Returns the sessions of a semester the student was recorded absent from
// @Tags records
// @Produce json
// @Security BearerAuth
// @Param courseId query string true "Course ID"
// @Param semester query int true "Semester number"
// @Success 200 {object} dto.APIResponse{data=dto.AttendanceResponse} "Absences"
// @Failure 400 {object} dto.ErrorResponse "Invalid selection"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "Not enrolled in this course"
// @Failure 502 {object} dto.ErrorResponse "Record store unavailable"
// @Router /attendance [get]
func (c *RecordController) GetAttendance(ctx *gin.Context) {
	c.serveRecord(ctx, func(ctx *gin.Context, userID int64, q dto.RecordQuery) (interface{}, error) {
		return c.attendanceService.GetAttendance(ctx.Request.Context(), userID, q.CourseID, q.Semester)
	})
}

// GetExams lists a semester's exam slots
// @Summary Exam timetable
// @Description Returns the exam slots of a semester ordered by date and time
// @Tags records
// @Produce json
// @Security BearerAuth
// @Param courseId query string true "Course ID"
// @Param semester query int true "Semester number"
// @Success 200 {object} dto.APIResponse{data=dto.ScheduleResponse} "Exam slots"
// @Failure 400 {object} dto.ErrorResponse "Invalid selection"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "Not enrolled in this course"
// @Failure 502 {object} dto.ErrorResponse "Record store unavailable"
// @Router /exams [get]
func (c *RecordController) GetExams(ctx *gin.Context) {
	c.serveRecord(ctx, func(ctx *gin.Context, userID int64, q dto.RecordQuery) (interface{}, error) {
		return c.scheduleService.GetExams(ctx.Request.Context(), userID, q.CourseID, q.Semester)
	})
}

// GetTimetable lists a semester's classes
// @Summary Class timetable
// @Description Returns the class slots of a semester ordered by date and time
// @Tags records
// @Produce json
// @Security BearerAuth
// @Param courseId query string true "Course ID"
// @Param semester query int true "Semester number"
// @Success 200 {object} dto.APIResponse{data=dto.ScheduleResponse} "Class slots"
// @Failure 400 {object} dto.ErrorResponse "Invalid selection"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "Not enrolled in this course"
// @Failure 502 {object} dto.ErrorResponse "Record store unavailable"
// @Router /timetable [get]
func (c *RecordController) GetTimetable(ctx *gin.Context) {
	c.serveRecord(ctx, func(ctx *gin.Context, userID int64, q dto.RecordQuery) (interface{}, error) {
		return c.scheduleService.GetTimetable(ctx.Request.Context(), userID, q.CourseID, q.Semester)
	})
}

// ExamCalendar exports exam slots as iCalendar
// @Summary Exam calendar
// @Description Returns the exam slots of every enrolled course as an .ics file. Passing courseId and semester limits it to that semester.
// @Tags records
// @Produce text/calendar
// @Security BearerAuth
// @Param courseId query string false "Course ID"
// @Param semester query int false "Semester number"
// @Success 200 {string} string "iCalendar document"
// @Failure 400 {object} dto.ErrorResponse "Invalid selection"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 502 {object} dto.ErrorResponse "Record store unavailable"
// @Router /exams/calendar [get]
func (c *RecordController) ExamCalendar(ctx *gin.Context) {
	userID, err := middleware.CurrentUserID(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	semester := 0
	if raw := ctx.Query("semester"); raw != "" {
		if semester, err = semesterParam(raw); err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
	}

	calendar, err := c.scheduleService.ExamCalendar(ctx.Request.Context(), userID, ctx.Query("courseId"), semester)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "exams_"+strconv.FormatInt(userID, 10)+".ics"))
	ctx.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(calendar))
}
