package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models/dto"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/services"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/middleware"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/apperrors"
)

// CourseController lists the caller's courses and their subjects
type CourseController struct {
	courseService services.CourseService
	logger        zerolog.Logger
}

// NewCourseController creates a new CourseController
func NewCourseController(courseService services.CourseService, logger zerolog.Logger) *CourseController {
	return &CourseController{
		courseService: courseService,
		logger:        logger,
	}
}

// ListCourses returns the enrolled courses
// @Summary List enrolled courses
// @Description Returns the courses the student is enrolled in with their semester numbers
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.CourseSummary} "Courses"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 404 {object} dto.ErrorResponse "Student record not found"
// @Failure 502 {object} dto.ErrorResponse "Record store unavailable"
// @Router /courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	userID, err := middleware.CurrentUserID(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	courses, err := c.courseService.ListCourses(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(courses))
}

// ListSubjects returns a semester's subjects
// @Summary List semester subjects
// @Description Returns the subjects of a course semester with the student's status for each
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "Course ID"
// @Param semester path int true "Semester number"
// @Success 200 {object} dto.APIResponse{data=dto.SubjectListResponse} "Subjects"
// @Failure 400 {object} dto.ErrorResponse "Unknown course or semester"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "Not enrolled in this course"
// @Router /courses/{courseId}/semesters/{semester}/subjects [get]
func (c *CourseController) ListSubjects(ctx *gin.Context) {
	userID, err := middleware.CurrentUserID(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	courseID := ctx.Param("courseId")
	semester, err := semesterParam(ctx.Param("semester"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	subjects, err := c.courseService.ListSubjects(ctx.Request.Context(), userID, courseID, semester)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(subjects))
}

func semesterParam(raw string) (int, error) {
	semester, err := strconv.Atoi(raw)
	if err != nil || semester <= 0 {
		return 0, apperrors.NewInvalidSelectionError("Semester must be a positive number",
			map[string]interface{}{"semester": raw})
	}
	return semester, nil
}
