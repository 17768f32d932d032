// Package selection tracks a student's course → semester drill-down and the
// records fetched for it. Each authenticated user owns one Session; moving up
// the path clears everything below it, and only the latest selection's fetch
// is ever applied.
package selection

import (
	"context"
	"fmt"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models"
)

// State is the position in the drill-down.
type State int

const (
	NoCourseSelected State = iota
	CourseSelected
	CourseAndSemesterSelected
)

var stateNames = map[State]string{
	NoCourseSelected:          "NoCourseSelected",
	CourseSelected:            "CourseSelected",
	CourseAndSemesterSelected: "CourseAndSemesterSelected",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// MarshalText renders the state by name in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name.
func (s *State) UnmarshalText(text []byte) error {
	for state, name := range stateNames {
		if name == string(text) {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown selection state %q", text)
}

// SemesterData is everything one fetch yields for a course semester.
type SemesterData struct {
	Subjects []models.SubjectRecord
	// History holds every recorded semester of the course, the selected one
	// included. CGPA is computed over it.
	History    []models.SemesterResult
	Attendance []models.AttendanceRecord
	Exams      []models.ScheduleSlot
	Timetable  []models.ScheduleSlot
}

// Fetcher retrieves semester records for a student.
type Fetcher interface {
	FetchSemester(ctx context.Context, userID int64, courseID string, semester int) (*SemesterData, error)
}

// CourseLoader resolves the courses a student is enrolled in.
type CourseLoader interface {
	EnrolledCourses(ctx context.Context, userID int64) ([]models.Course, error)
}

// Publisher is told about every settled snapshot.
type Publisher interface {
	Publish(userID int64, snapshot Snapshot)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(userID int64, snapshot Snapshot)

// Publish implements Publisher.
func (f PublisherFunc) Publish(userID int64, snapshot Snapshot) {
	f(userID, snapshot)
}

// Snapshot is a consistent copy of a session.
type Snapshot struct {
	State      State                     `json:"state"`
	Generation uint64                    `json:"generation"`
	Course     *models.Course            `json:"course,omitempty"`
	Semester   int                       `json:"semester,omitempty"`
	Loading    bool                      `json:"loading"`
	Subjects   []models.SubjectRecord    `json:"subjects"`
	GPA        *models.GPAResult         `json:"gpa,omitempty"`
	CGPA       *models.CGPAResult        `json:"cgpa,omitempty"`
	Attendance []models.AttendanceRecord `json:"attendance"`
	Exams      []models.ScheduleSlot     `json:"exams"`
	Timetable  []models.ScheduleSlot     `json:"timetable"`

	// NoResultsFound is set when the fetch succeeded with zero subject records.
	NoResultsFound bool `json:"noResultsFound"`
	// GPAUndefined / CGPAUndefined are set when records exist but carry no credit hours.
	GPAUndefined  bool `json:"gpaUndefined,omitempty"`
	CGPAUndefined bool `json:"cgpaUndefined,omitempty"`
	// Error is set when the fetch failed or timed out. Never set together with NoResultsFound.
	Error string `json:"error,omitempty"`

	err error
}

// Err returns the fetch failure behind Error, wrapping apperrors.ErrFetchFailed.
func (s Snapshot) Err() error {
	return s.err
}

// CourseID is the selected course id, or "".
func (s Snapshot) CourseID() string {
	if s.Course == nil {
		return ""
	}
	return s.Course.ID
}
