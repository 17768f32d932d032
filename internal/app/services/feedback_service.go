package services

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models/dto"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/repositories"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/apperrors"
)

// FeedbackService stores messages from the feedback form
type FeedbackService interface {
	SubmitFeedback(ctx context.Context, req *dto.FeedbackRequest) (*dto.FeedbackResponse, error)
}

type feedbackServiceImpl struct {
	feedbacks repositories.IFeedbackRepository
	now       func() time.Time
	logger    zerolog.Logger
}

// NewFeedbackService creates a new FeedbackService
func NewFeedbackService(feedbacks repositories.IFeedbackRepository, logger zerolog.Logger) FeedbackService {
	return &feedbackServiceImpl{
		feedbacks: feedbacks,
		now:       time.Now,
		logger:    logger,
	}
}

// SubmitFeedback saves the message under a slug of the sender's name. A later
// message from the same name replaces the earlier one.
func (s *feedbackServiceImpl) SubmitFeedback(ctx context.Context, req *dto.FeedbackRequest) (*dto.FeedbackResponse, error) {
	id := FeedbackID(req.Name)
	if id == "" {
		return nil, apperrors.NewCustomError(apperrors.ErrValidationFailed, "name must not be blank").
			WithDetails(map[string]interface{}{"name": "must not be blank"})
	}

	feedback := models.Feedback{
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Title:     strings.TrimSpace(req.Title),
		Message:   strings.TrimSpace(req.Message),
		Timestamp: s.now().UTC().Format(time.RFC3339),
	}
	if err := s.feedbacks.SaveFeedback(ctx, id, &feedback); err != nil {
		return nil, err
	}

	s.logger.Info().Str("feedbackId", id).Msg("Feedback received")
	return &dto.FeedbackResponse{ID: id, Feedback: feedback}, nil
}

// FeedbackID lower-cases the trimmed name and joins its words with "-"
func FeedbackID(name string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(name), unicode.IsSpace), "-")
}
