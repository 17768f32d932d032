package services

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models/dto"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/repositories"
)

// AttendanceService reports a student's absences
type AttendanceService interface {
	GetAttendance(ctx context.Context, userID int64, courseID string, semester int) (*dto.AttendanceResponse, error)
	// Records reduces a semester's sessions to the student's absences without checking enrolment
	Records(ctx context.Context, userID int64, courseID string, semester int) ([]models.AttendanceRecord, error)
}

type attendanceServiceImpl struct {
	students   repositories.IStudentRepository
	courses    repositories.ICourseRepository
	attendance repositories.IAttendanceRepository
	logger     zerolog.Logger
}

// NewAttendanceService creates a new AttendanceService
func NewAttendanceService(
	students repositories.IStudentRepository,
	courses repositories.ICourseRepository,
	attendance repositories.IAttendanceRepository,
	logger zerolog.Logger,
) AttendanceService {
	return &attendanceServiceImpl{
		students:   students,
		courses:    courses,
		attendance: attendance,
		logger:     logger,
	}
}

func (s *attendanceServiceImpl) GetAttendance(ctx context.Context, userID int64, courseID string, semester int) (*dto.AttendanceResponse, error) {
	if _, _, err := resolveCourseSemester(ctx, s.students, s.courses, userID, courseID, semester); err != nil {
		return nil, err
	}
	records, err := s.Records(ctx, userID, courseID, semester)
	if err != nil {
		return nil, err
	}
	return &dto.AttendanceResponse{CourseID: courseID, Semester: semester, Records: records}, nil
}

func (s *attendanceServiceImpl) Records(ctx context.Context, userID int64, courseID string, semester int) ([]models.AttendanceRecord, error) {
	sessions, err := s.attendance.ListSessions(ctx, courseID, semester)
	if err != nil {
		return nil, err
	}
	return absencesOf(sessions, models.DocumentID(userID)), nil
}

// absencesOf keeps the sessions where docID was absent, ordered by date
func absencesOf(sessions []models.AttendanceSession, docID string) []models.AttendanceRecord {
	records := make([]models.AttendanceRecord, 0)
	for _, session := range sessions {
		entry, absent := session.AbsentStudents[docID]
		if !absent {
			continue
		}
		records = append(records, models.AttendanceRecord{
			SubjectName:   session.Name,
			ProgrammeCode: session.ProgrammeCode,
			Time:          session.Time,
			Location:      session.Location,
			Reason:        entry.Reason,
			Date:          entry.Date,
		})
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date < records[j].Date
	})
	return records
}
