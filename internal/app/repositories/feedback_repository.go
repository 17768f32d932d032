package repositories

import (
	"context"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/docstore"
)

// IFeedbackRepository writes feedbacks documents
type IFeedbackRepository interface {
	SaveFeedback(ctx context.Context, id string, feedback *models.Feedback) error
}

// FeedbackRepository writes the feedbacks collection
type FeedbackRepository struct {
	store docstore.Store
}

// NewFeedbackRepository creates a new FeedbackRepository
func NewFeedbackRepository(store docstore.Store) *FeedbackRepository {
	return &FeedbackRepository{store: store}
}

// SaveFeedback stores feedback under id, replacing an earlier one with the same id
func (r *FeedbackRepository) SaveFeedback(ctx context.Context, id string, feedback *models.Feedback) error {
	return putDocument(ctx, r.store, models.CollectionFeedbacks, id, feedback)
}
