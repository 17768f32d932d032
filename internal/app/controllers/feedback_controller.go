package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models/dto"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/services"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/middleware"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/apperrors"
)

// FeedbackController accepts feedback form submissions
type FeedbackController struct {
	feedbackService services.FeedbackService
	logger          zerolog.Logger
}

// NewFeedbackController creates a new FeedbackController
func NewFeedbackController(feedbackService services.FeedbackService, logger zerolog.Logger) *FeedbackController {
	return &FeedbackController{
		feedbackService: feedbackService,
		logger:          logger,
	}
}

// SubmitFeedback stores a feedback message. The body is bound by
// middleware.ValidateRequest[dto.FeedbackRequest].
// @Summary Submit feedback
// @Description Stores a feedback message keyed by the sender's name. A later message from the same name replaces the earlier one.
// @Tags feedback
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.FeedbackRequest true "Feedback message"
// @Success 201 {object} dto.APIResponse{data=dto.FeedbackResponse} "Stored feedback"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 502 {object} dto.ErrorResponse "Record store unavailable"
// @Router /feedbacks [post]
func (c *FeedbackController) SubmitFeedback(ctx *gin.Context) {
	req, ok := middleware.ValidatedBody[dto.FeedbackRequest](ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("Feedback body is missing"))
		return
	}

	resp, err := c.feedbackService.SubmitFeedback(ctx.Request.Context(), req)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Feedback submission failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(resp))
}
