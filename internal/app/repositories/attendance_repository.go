package repositories

import (
	"context"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/docstore"
)

// IAttendanceRepository reads attendance documents
type IAttendanceRepository interface {
	ListSessions(ctx context.Context, courseID string, semester int) ([]models.AttendanceSession, error)
	SaveSession(ctx context.Context, id string, session *models.AttendanceSession) error
}

// AttendanceRepository reads the attendance collection
type AttendanceRepository struct {
	store docstore.Store
}

// NewAttendanceRepository creates a new AttendanceRepository
func NewAttendanceRepository(store docstore.Store) *AttendanceRepository {
	return &AttendanceRepository{store: store}
}

// ListSessions returns the class sessions of one course semester
func (r *AttendanceRepository) ListSessions(ctx context.Context, courseID string, semester int) ([]models.AttendanceSession, error) {
	docs, err := r.store.QueryDocuments(ctx, models.CollectionAttendance,
		docstore.Where("courseId", docstore.OpEqual, courseID),
		docstore.Where("semesterNumber", docstore.OpEqual, semester),
	)
	if err != nil {
		return nil, fetchFailed("querying attendance", err)
	}
	return decodeAll[models.AttendanceSession](docs), nil
}

// SaveSession writes one class session
func (r *AttendanceRepository) SaveSession(ctx context.Context, id string, session *models.AttendanceSession) error {
	return putDocument(ctx, r.store, models.CollectionAttendance, id, session)
}
