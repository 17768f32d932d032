package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models/dto"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/services"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/middleware"
)

// SelectionController drives the caller's course and semester selection
type SelectionController struct {
	selectionService services.SelectionService
	logger           zerolog.Logger
}

// NewSelectionController creates a new SelectionController
func NewSelectionController(selectionService services.SelectionService, logger zerolog.Logger) *SelectionController {
	return &SelectionController{
		selectionService: selectionService,
		logger:           logger,
	}
}

// GetSelection returns the current selection
// @Summary Current selection
// @Description Returns the caller's selection state with whatever records have been fetched for it
// @Tags selection
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=selection.Snapshot} "Selection"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Router /selection [get]
func (c *SelectionController) GetSelection(ctx *gin.Context) {
	userID, err := middleware.CurrentUserID(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	snap, err := c.selectionService.Current(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(snap))
}

// SelectCourse selects a course and clears any semester
// @Summary Select course
// @Description Selects one of the enrolled courses. Any selected semester and its records are cleared.
// @Tags selection
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SelectCourseRequest true "Course to select"
// @Success 200 {object} dto.APIResponse{data=selection.Snapshot} "Selection"
// @Failure 400 {object} dto.ErrorResponse "Unknown course"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Router /selection/course [put]
func (c *SelectionController) SelectCourse(ctx *gin.Context) {
	userID, err := middleware.CurrentUserID(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.SelectCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	snap, err := c.selectionService.SelectCourse(ctx.Request.Context(), userID, req.CourseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(snap))
}

// DeselectCourse clears the selection
// @Summary Deselect course
// @Description Clears the selected course and everything below it
// @Tags selection
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=selection.Snapshot} "Selection"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Router /selection/course [delete]
func (c *SelectionController) DeselectCourse(ctx *gin.Context) {
	userID, err := middleware.CurrentUserID(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	snap, err := c.selectionService.DeselectCourse(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(snap))
}

// SelectSemester selects a semester and fetches its records
// @Summary Select semester
// @Description Selects a semester of the selected course and fetches its records. By default the call waits for the fetch; with wait=false it returns the loading state and the result is pushed over the websocket. Semester 0 clears the semester.
// @Tags selection
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SelectSemesterRequest true "Semester to select"
// @Param wait query bool false "Wait for the fetch to settle (default true)"
// @Success 200 {object} dto.APIResponse{data=selection.Snapshot} "Selection"
// @Failure 400 {object} dto.ErrorResponse "No course selected or unknown semester"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Router /selection/semester [put]
func (c *SelectionController) SelectSemester(ctx *gin.Context) {
	userID, err := middleware.CurrentUserID(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.SelectSemesterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	wait, err := strconv.ParseBool(ctx.DefaultQuery("wait", "true"))
	if err != nil {
		wait = true
	}

	snap, err := c.selectionService.SelectSemester(ctx.Request.Context(), userID, req.Semester, wait)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(snap))
}
