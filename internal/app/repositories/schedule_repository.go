package repositories

import (
	"context"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/docstore"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/logger"
)

// IScheduleRepository reads slot documents of one collection (exams or timetable)
type IScheduleRepository interface {
	ListSlots(ctx context.Context, courseID string, semester int) ([]models.ScheduleSlot, error)
	SaveSlot(ctx context.Context, slot *models.ScheduleSlot) error
}

// ScheduleRepository reads exams or timetable slots
type ScheduleRepository struct {
	store      docstore.Store
	collection string
}

// NewExamRepository reads the exams collection
func NewExamRepository(store docstore.Store) *ScheduleRepository {
	return &ScheduleRepository{store: store, collection: models.CollectionExams}
}

// NewTimetableRepository reads the timetable collection
func NewTimetableRepository(store docstore.Store) *ScheduleRepository {
	return &ScheduleRepository{store: store, collection: models.CollectionTimetable}
}

// ListSlots returns the slots of one course semester ordered by document id
func (r *ScheduleRepository) ListSlots(ctx context.Context, courseID string, semester int) ([]models.ScheduleSlot, error) {
	docs, err := r.store.QueryDocuments(ctx, r.collection,
		docstore.Where("courseId", docstore.OpEqual, courseID),
		docstore.Where("semester", docstore.OpEqual, semester),
	)
	if err != nil {
		return nil, fetchFailed("querying "+r.collection, err)
	}

	slots := make([]models.ScheduleSlot, 0, len(docs))
	for _, doc := range docs {
		var slot models.ScheduleSlot
		if err := doc.Decode(&slot); err != nil {
			logger.Warn().Err(err).Str("collection", r.collection).Str("id", doc.ID).Msg("Skipping malformed slot")
			continue
		}
		if slot.ID == "" {
			slot.ID = doc.ID
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

// SaveSlot writes a slot under its id
func (r *ScheduleRepository) SaveSlot(ctx context.Context, slot *models.ScheduleSlot) error {
	return putDocument(ctx, r.store, r.collection, slot.ID, slot)
}
