package repositories

import (
	"context"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/apperrors"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/docstore"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/logger"
)

// ICourseRepository reads courses documents
type ICourseRepository interface {
	GetCourse(ctx context.Context, courseID string) (*models.Course, error)
	GetCourses(ctx context.Context, courseIDs []string) ([]models.Course, error)
	SaveCourse(ctx context.Context, course *models.Course) error
	CountCourses(ctx context.Context) (int64, error)
}

// CourseRepository reads the courses collection
type CourseRepository struct {
	store docstore.Store
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(store docstore.Store) *CourseRepository {
	return &CourseRepository{store: store}
}

// GetCourse returns ErrCourseNotFound when the course has no document
func (r *CourseRepository) GetCourse(ctx context.Context, courseID string) (*models.Course, error) {
	doc, err := r.store.GetDocument(ctx, models.CollectionCourses, courseID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, fetchFailed("loading course", err)
	}

	course := &models.Course{}
	if err := doc.Decode(course); err != nil {
		return nil, fetchFailed("decoding course", err)
	}
	if course.ID == "" {
		course.ID = doc.ID
	}
	return course, nil
}

// GetCourses resolves ids in order. Ids without a document are skipped.
func (r *CourseRepository) GetCourses(ctx context.Context, courseIDs []string) ([]models.Course, error) {
	courses := make([]models.Course, 0, len(courseIDs))
	for _, id := range courseIDs {
		course, err := r.GetCourse(ctx, id)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrCourseNotFound) {
				logger.Warn().Str("courseID", id).Msg("Enrolled course has no course document")
				continue
			}
			return nil, err
		}
		courses = append(courses, *course)
	}
	return courses, nil
}

// SaveCourse writes a course document
func (r *CourseRepository) SaveCourse(ctx context.Context, course *models.Course) error {
	return putDocument(ctx, r.store, models.CollectionCourses, course.ID, course)
}

// CountCourses returns how many courses are stored
func (r *CourseRepository) CountCourses(ctx context.Context) (int64, error) {
	n, err := r.store.CountDocuments(ctx, models.CollectionCourses)
	if err != nil {
		return 0, fetchFailed("counting courses", err)
	}
	return n, nil
}
