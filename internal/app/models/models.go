package models

// RoleType defines the user role type
type RoleType string

// RoleStudent is the only role the portal issues
const RoleStudent RoleType = "STUDENT"

// Document store collections.
const (
	CollectionStudents   = "students"
	CollectionCourses    = "courses"
	CollectionResults    = "results"
	CollectionExams      = "exams"
	CollectionTimetable  = "timetable"
	CollectionAttendance = "attendance"
	CollectionFeedbacks  = "feedbacks"
	CollectionNews       = "news"
	CollectionPerks      = "perks"
)
