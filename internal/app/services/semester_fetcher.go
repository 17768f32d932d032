package services

import (
	"context"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/repositories"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/selection"
)

// SemesterFetcher loads everything a selected semester shows. It backs the
// selection sessions.
type SemesterFetcher struct {
	results    repositories.IResultRepository
	attendance AttendanceService
	exams      repositories.IScheduleRepository
	timetable  repositories.IScheduleRepository
}

// NewSemesterFetcher creates a new SemesterFetcher
func NewSemesterFetcher(
	results repositories.IResultRepository,
	attendance AttendanceService,
	exams repositories.IScheduleRepository,
	timetable repositories.IScheduleRepository,
) *SemesterFetcher {
	return &SemesterFetcher{
		results:    results,
		attendance: attendance,
		exams:      exams,
		timetable:  timetable,
	}
}

// FetchSemester reads the records in turn and stops at the first failure or
// when ctx is done.
func (f *SemesterFetcher) FetchSemester(ctx context.Context, userID int64, courseID string, semester int) (*selection.SemesterData, error) {
	sheet, err := f.results.GetResultSheet(ctx, userID)
	if err != nil {
		return nil, err
	}
	subjects, _ := sheet.Semester(courseID, semester)

	data := &selection.SemesterData{
		Subjects: subjects,
		History:  sheet.ForCourse(courseID),
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if data.Attendance, err = f.attendance.Records(ctx, userID, courseID, semester); err != nil {
		return nil, err
	}

	if data.Exams, err = f.exams.ListSlots(ctx, courseID, semester); err != nil {
		return nil, err
	}
	sortSlots(data.Exams)

	if data.Timetable, err = f.timetable.ListSlots(ctx, courseID, semester); err != nil {
		return nil, err
	}
	sortSlots(data.Timetable)

	return data, ctx.Err()
}
