package repositories

import (
	"context"
	"fmt"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/apperrors"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/docstore"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/logger"
)

// IStudentRepository reads and writes students documents
type IStudentRepository interface {
	GetProfile(ctx context.Context, userID int64) (*models.StudentProfile, error)
	CreateProfile(ctx context.Context, userID int64, profile *models.StudentProfile) error
	UpdateProfile(ctx context.Context, userID int64, fields map[string]interface{}) error
	SetAvatar(ctx context.Context, userID int64, avatarURL string) error
}

// StudentRepository keeps student profiles in the students collection
type StudentRepository struct {
	store docstore.Store
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(store docstore.Store) *StudentRepository {
	return &StudentRepository{store: store}
}

// GetProfile returns ErrStudentNotFound when the student has no document
func (r *StudentRepository) GetProfile(ctx context.Context, userID int64) (*models.StudentProfile, error) {
	doc, err := r.store.GetDocument(ctx, models.CollectionStudents, models.DocumentID(userID))
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fetchFailed("loading student profile", err)
	}

	profile := &models.StudentProfile{}
	if err := doc.Decode(profile); err != nil {
		return nil, fetchFailed("decoding student profile", err)
	}
	return profile, nil
}

// CreateProfile writes the initial profile of a newly registered student
func (r *StudentRepository) CreateProfile(ctx context.Context, userID int64, profile *models.StudentProfile) error {
	return putDocument(ctx, r.store, models.CollectionStudents, models.DocumentID(userID), profile)
}

// UpdateProfile merges fields into the student's document
func (r *StudentRepository) UpdateProfile(ctx context.Context, userID int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	if _, err := r.GetProfile(ctx, userID); err != nil {
		return err
	}

	if err := r.store.SetDocument(ctx, models.CollectionStudents, models.DocumentID(userID), fields, true); err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error updating student profile")
		return fmt.Errorf("error updating student profile: %w", err)
	}
	return nil
}

// SetAvatar records the URL of the student's profile picture
func (r *StudentRepository) SetAvatar(ctx context.Context, userID int64, avatarURL string) error {
	return r.UpdateProfile(ctx, userID, map[string]interface{}{"avatarUrl": avatarURL})
}
