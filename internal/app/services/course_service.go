package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models/dto"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/repositories"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/apperrors"
)

// CourseService resolves a student's courses and subjects
type CourseService interface {
	// EnrolledCourses loads the course documents of the student's enrolments
	EnrolledCourses(ctx context.Context, userID int64) ([]models.Course, error)
	ListCourses(ctx context.Context, userID int64) ([]dto.CourseSummary, error)
	ListSubjects(ctx context.Context, userID int64, courseID string, semester int) (*dto.SubjectListResponse, error)
}

type courseServiceImpl struct {
	students repositories.IStudentRepository
	courses  repositories.ICourseRepository
	logger   zerolog.Logger
}

// NewCourseService creates a new CourseService
func NewCourseService(students repositories.IStudentRepository, courses repositories.ICourseRepository, logger zerolog.Logger) CourseService {
	return &courseServiceImpl{
		students: students,
		courses:  courses,
		logger:   logger,
	}
}

func (s *courseServiceImpl) EnrolledCourses(ctx context.Context, userID int64) ([]models.Course, error) {
	if userID <= 0 {
		return nil, apperrors.ErrAuthRequired
	}
	profile, err := s.students.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.courses.GetCourses(ctx, profile.EnrolledCourseIDs())
}

func (s *courseServiceImpl) ListCourses(ctx context.Context, userID int64) ([]dto.CourseSummary, error) {
	courses, err := s.EnrolledCourses(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CourseSummary, 0, len(courses))
	for i := range courses {
		out = append(out, dto.NewCourseSummary(&courses[i]))
	}
	return out, nil
}

// ListSubjects returns the semester's subjects, each with the student's
// status (default "not enrolled")
func (s *courseServiceImpl) ListSubjects(ctx context.Context, userID int64, courseID string, semester int) (*dto.SubjectListResponse, error) {
	profile, course, err := resolveCourseSemester(ctx, s.students, s.courses, userID, courseID, semester)
	if err != nil {
		return nil, err
	}

	sem, _ := course.SemesterByNumber(semester)
	subjects := make([]models.SubjectRef, 0, len(sem.Subjects))
	for _, subj := range sem.Subjects {
		subj.Status = profile.SubjectStatus(courseID, sem.ID, subj.Code)
		subjects = append(subjects, subj)
	}

	return &dto.SubjectListResponse{CourseID: courseID, Semester: semester, Subjects: subjects}, nil
}

func requireProfile(ctx context.Context, students repositories.IStudentRepository, userID int64) (*models.StudentProfile, error) {
	if userID <= 0 {
		return nil, apperrors.ErrAuthRequired
	}
	return students.GetProfile(ctx, userID)
}

// requireEnrollment loads the profile and checks the student takes courseID
func requireEnrollment(ctx context.Context, students repositories.IStudentRepository, userID int64, courseID string) (*models.StudentProfile, error) {
	profile, err := requireProfile(ctx, students, userID)
	if err != nil {
		return nil, err
	}
	if !profile.IsEnrolled(courseID) {
		return nil, apperrors.NewCustomError(apperrors.ErrNotEnrolled, fmt.Sprintf("student is not enrolled in course %s", courseID)).
			WithDetails(map[string]interface{}{"courseId": courseID})
	}
	return profile, nil
}

// resolveCourseSemester checks enrolment and that semester belongs to the course
func resolveCourseSemester(
	ctx context.Context,
	students repositories.IStudentRepository,
	courses repositories.ICourseRepository,
	userID int64,
	courseID string,
	semester int,
) (*models.StudentProfile, *models.Course, error) {
	profile, err := requireEnrollment(ctx, students, userID, courseID)
	if err != nil {
		return nil, nil, err
	}
	course, err := courses.GetCourse(ctx, courseID)
	if err != nil {
		return nil, nil, err
	}
	if _, ok := course.SemesterByNumber(semester); !ok {
		return nil, nil, apperrors.NewInvalidSelectionError(
			"semester does not belong to the course",
			map[string]interface{}{"courseId": courseID, "semester": semester, "validSemesters": course.SemesterNumbers()},
		)
	}
	return profile, course, nil
}
