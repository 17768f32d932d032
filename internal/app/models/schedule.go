package models

// AttendanceSession is an attendance document: one class session with the
// students marked absent, keyed by their document id.
type AttendanceSession struct {
	Name           string                  `json:"name"`
	ProgrammeCode  string                  `json:"programmeCode"`
	Time           string                  `json:"time"`
	Location       string                  `json:"location"`
	CourseID       string                  `json:"courseId"`
	SemesterNumber int                     `json:"semesterNumber"`
	AbsentStudents map[string]AbsenceEntry `json:"absent_students"`
}

// AbsenceEntry explains one absence.
type AbsenceEntry struct {
	Reason string `json:"reason"`
	Date   string `json:"date"`
}

// AttendanceRecord is the per-student view of an absence.
type AttendanceRecord struct {
	SubjectName   string `json:"subjectName"`
	ProgrammeCode string `json:"programmeCode"`
	Time          string `json:"time"`
	Location      string `json:"location"`
	Reason        string `json:"reason"`
	Date          string `json:"date"`
}

// ScheduleSlot is an exams or timetable document.
type ScheduleSlot struct {
	ID            string `json:"id,omitempty"`
	ProgrammeCode string `json:"programmeCode"`
	Name          string `json:"name"`
	Time          string `json:"time"`
	Location      string `json:"location"`
	Date          string `json:"date"`
	Semester      int    `json:"semester"`
	CourseID      string `json:"courseId"`
}

// Feedback is a feedbacks document.
type Feedback struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// MediaItem is a news or perks document.
type MediaItem struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}
