package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models/dto"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/services"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/middleware"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ResultController serves exam results and grade averages
type ResultController struct {
	resultService services.ResultService
	logger        zerolog.Logger
}

// NewResultController creates a new ResultController
func NewResultController(resultService services.ResultService, logger zerolog.Logger) *ResultController {
	return &ResultController{
		resultService: resultService,
		logger:        logger,
	}
}

// GetResults returns a semester's results with GPA and CGPA
// @Summary Semester results
// @Description Returns the graded subjects of a semester with its GPA and the CGPA up to it. noResultsFound is set when the semester has no recorded results.
// @Tags results
// @Produce json
// @Security BearerAuth
// @Param courseId query string true "Course ID"
// @Param semester query int true "Semester number"
// @Success 200 {object} dto.APIResponse{data=dto.ResultsResponse} "Results"
// @Failure 400 {object} dto.ErrorResponse "Invalid selection"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "Not enrolled in this course"
// @Failure 502 {object} dto.ErrorResponse "Record store unavailable"
// @Router /results [get]
func (c *ResultController) GetResults(ctx *gin.Context) {
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

	results, err := c.resultService.GetResults(ctx.Request.Context(), userID, query.CourseID, query.Semester)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(results))
}

// GetCGPA returns the cumulative GPA
// @Summary Cumulative GPA
// @Description Returns the CGPA over every recorded semester, or over one course's semesters when courseId is given
// @Tags results
// @Produce json
// @Security BearerAuth
// @Param courseId query string false "Course ID"
// @Success 200 {object} dto.APIResponse{data=dto.CGPAResponse} "CGPA"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "Not enrolled in this course"
// @Failure 502 {object} dto.ErrorResponse "Record store unavailable"
// @Router /results/cgpa [get]
func (c *ResultController) GetCGPA(ctx *gin.Context) {
	userID, err := middleware.CurrentUserID(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	cgpa, err := c.resultService.GetCGPA(ctx.Request.Context(), userID, ctx.Query("courseId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(cgpa))
}

// ExportTranscript downloads the transcript workbook
// @Summary Download transcript
// @Description Returns every recorded semester with per-semester GPA and the CGPA as an Excel workbook
// @Tags results
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} file "Transcript workbook"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 502 {object} dto.ErrorResponse "Record store unavailable"
// @Router /results/transcript [get]
func (c *ResultController) ExportTranscript(ctx *gin.Context) {
	userID, err := middleware.CurrentUserID(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	buf, filename, err := c.resultService.ExportTranscript(ctx.Request.Context(), userID)
	if err != nil {
		c.logger.Error().Err(err).Int64("userID", userID).Msg("Transcript export failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// CalculateGPA computes a GPA over the given subjects
// @Summary Calculate GPA
// @Description Computes a credit-weighted GPA over an ad-hoc list of graded subjects. Unknown grades count as 0 points.
// @Tags grades
// @Accept json
// @Produce json
// @Param request body dto.GPARequest true "Graded subjects"
// @Success 200 {object} dto.APIResponse{data=models.GPAResult} "GPA"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format or non-positive credit hours"
// @Router /grades/gpa [post]
func (c *ResultController) CalculateGPA(ctx *gin.Context) {
	var req dto.GPARequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	result, err := c.resultService.CalculateGPA(dto.ToRecords(req.Subjects))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(result))
}

// CalculateCGPA computes a CGPA over the given semesters
// @Summary Calculate CGPA
// @Description Computes a credit-weighted CGPA over ad-hoc semesters
// @Tags grades
// @Accept json
// @Produce json
// @Param request body dto.CGPARequest true "Graded semesters"
// @Success 200 {object} dto.APIResponse{data=models.CGPAResult} "CGPA"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 422 {object} dto.ErrorResponse "Total credit hours is zero"
// @Router /grades/cgpa [post]
func (c *ResultController) CalculateCGPA(ctx *gin.Context) {
	var req dto.CGPARequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	result, err := c.resultService.CalculateCGPA(req.ToSemesters())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(result))
}
