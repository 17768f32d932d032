package repositories

import (
	"context"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/docstore"
)

// IResultRepository reads results documents
type IResultRepository interface {
	GetResultSheet(ctx context.Context, userID int64) (*models.ResultSheet, error)
	SaveResultSheet(ctx context.Context, userID int64, sheet *models.ResultSheet) error
}

// ResultRepository reads the results collection
type ResultRepository struct {
	store docstore.Store
}

// NewResultRepository creates a new ResultRepository
func NewResultRepository(store docstore.Store) *ResultRepository {
	return &ResultRepository{store: store}
}

// GetResultSheet returns an empty sheet when the student has no results yet
func (r *ResultRepository) GetResultSheet(ctx context.Context, userID int64) (*models.ResultSheet, error) {
	doc, err := r.store.GetDocument(ctx, models.CollectionResults, models.DocumentID(userID))
	if err != nil {
		if isNotFound(err) {
			return &models.ResultSheet{}, nil
		}
		return nil, fetchFailed("loading results", err)
	}

	sheet := &models.ResultSheet{}
	if err := doc.Decode(sheet); err != nil {
		return nil, fetchFailed("decoding results", err)
	}
	return sheet, nil
}

// SaveResultSheet replaces the student's results document
func (r *ResultRepository) SaveResultSheet(ctx context.Context, userID int64, sheet *models.ResultSheet) error {
	return putDocument(ctx, r.store, models.CollectionResults, models.DocumentID(userID), sheet)
}
