package services

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/rs/zerolog"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models/dto"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/repositories"
)

const (
	calendarProductID = "-//CampuSphere//Exam Timetable//EN"
	// defaultExamLength is used when a slot only carries a start time
	defaultExamLength = 2 * time.Hour
)

var slotTimePattern = regexp.MustCompile(`^\s*(\d{1,2}[:.]\d{2})\s*(?:(?:-|–|to)\s*(\d{1,2}[:.]\d{2}))?\s*$`)

// ScheduleService lists exam and class slots
type ScheduleService interface {
	GetExams(ctx context.Context, userID int64, courseID string, semester int) (*dto.ScheduleResponse, error)
	GetTimetable(ctx context.Context, userID int64, courseID string, semester int) (*dto.ScheduleResponse, error)
	// ExamCalendar renders the exam slots of every enrolled course, or only
	// courseID's semester when both are set, as an iCalendar document.
	ExamCalendar(ctx context.Context, userID int64, courseID string, semester int) (string, error)
}

type scheduleServiceImpl struct {
	students  repositories.IStudentRepository
	courses   repositories.ICourseRepository
	exams     repositories.IScheduleRepository
	timetable repositories.IScheduleRepository
	location  *time.Location
	logger    zerolog.Logger
}

// NewScheduleService creates a new ScheduleService. Slot times are read in
// loc (local time when nil).
func NewScheduleService(
	students repositories.IStudentRepository,
	courses repositories.ICourseRepository,
	exams repositories.IScheduleRepository,
	timetable repositories.IScheduleRepository,
	loc *time.Location,
	logger zerolog.Logger,
) ScheduleService {
	if loc == nil {
		loc = time.Local
	}
	return &scheduleServiceImpl{
		students:  students,
		courses:   courses,
		exams:     exams,
		timetable: timetable,
		location:  loc,
		logger:    logger,
	}
}

func (s *scheduleServiceImpl) GetExams(ctx context.Context, userID int64, courseID string, semester int) (*dto.ScheduleResponse, error) {
	return s.list(ctx, s.exams, userID, courseID, semester)
}

func (s *scheduleServiceImpl) GetTimetable(ctx context.Context, userID int64, courseID string, semester int) (*dto.ScheduleResponse, error) {
	return s.list(ctx, s.timetable, userID, courseID, semester)
}

func (s *scheduleServiceImpl) list(ctx context.Context, repo repositories.IScheduleRepository, userID int64, courseID string, semester int) (*dto.ScheduleResponse, error) {
	if _, _, err := resolveCourseSemester(ctx, s.students, s.courses, userID, courseID, semester); err != nil {
		return nil, err
	}
	slots, err := repo.ListSlots(ctx, courseID, semester)
	if err != nil {
		return nil, err
	}
	sortSlots(slots)
	return &dto.ScheduleResponse{CourseID: courseID, Semester: semester, Slots: slots}, nil
}

func (s *scheduleServiceImpl) ExamCalendar(ctx context.Context, userID int64, courseID string, semester int) (string, error) {
	var slots []models.ScheduleSlot

	if courseID != "" && semester > 0 {
		resp, err := s.GetExams(ctx, userID, courseID, semester)
		if err != nil {
			return "", err
		}
		slots = resp.Slots
	} else {
		profile, err := requireProfile(ctx, s.students, userID)
		if err != nil {
			return "", err
		}
		for _, id := range profile.EnrolledCourseIDs() {
			if courseID != "" && id != courseID {
				continue
			}
			course, err := s.courses.GetCourse(ctx, id)
			if err != nil {
				s.logger.Warn().Err(err).Str("courseId", id).Msg("Skipping course in exam calendar")
				continue
			}
			for _, n := range course.SemesterNumbers() {
				found, err := s.exams.ListSlots(ctx, id, n)
				if err != nil {
					return "", err
				}
				slots = append(slots, found...)
			}
		}
		sortSlots(slots)
	}

	return s.buildCalendar(slots, time.Now()), nil
}

func (s *scheduleServiceImpl) buildCalendar(slots []models.ScheduleSlot, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetName("Exam Timetable")

	for i, slot := range slots {
		start, end, allDay, err := slotTimes(slot, s.location)
		if err != nil {
			s.logger.Warn().Err(err).Str("slot", slot.ID).Msg("Skipping exam slot with unreadable date")
			continue
		}

		uid := slot.ID
		if uid == "" {
			uid = fmt.Sprintf("%s-%d-%d", slot.CourseID, slot.Semester, i)
		}
		event := cal.AddEvent(uid + "@campusphere")
		event.SetDtStampTime(stamp)
		event.SetSummary(strings.TrimSpace(slot.ProgrammeCode + " " + slot.Name))
		if slot.Location != "" {
			event.SetLocation(slot.Location)
		}
		if allDay {
			event.SetAllDayStartAt(start)
			event.SetAllDayEndAt(end)
		} else {
			event.SetStartAt(start)
			event.SetEndAt(end)
		}
	}
	return cal.Serialize()
}

// slotTimes reads a slot's date ("2006-01-02") and time ("09:00 - 11:00" or
// "09:00"). A slot without a readable time becomes an all-day event.
func slotTimes(slot models.ScheduleSlot, loc *time.Location) (start, end time.Time, allDay bool, err error) {
	day, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(slot.Date), loc)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("invalid date %q: %w", slot.Date, err)
	}

	m := slotTimePattern.FindStringSubmatch(slot.Time)
	if m == nil {
		return day, day.AddDate(0, 0, 1), true, nil
	}

	start, err = atClock(day, m[1])
	if err != nil {
		return day, day.AddDate(0, 0, 1), true, nil
	}
	end = start.Add(defaultExamLength)
	if m[2] != "" {
		if e, err := atClock(day, m[2]); err == nil && e.After(start) {
			end = e
		}
	}
	return start, end, false, nil
}

func atClock(day time.Time, clock string) (time.Time, error) {
	t, err := time.Parse("15:04", strings.Replace(clock, ".", ":", 1))
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}

func sortSlots(slots []models.ScheduleSlot) {
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].Date != slots[j].Date {
			return slots[i].Date < slots[j].Date
		}
		return slots[i].Time < slots[j].Time
	})
}
