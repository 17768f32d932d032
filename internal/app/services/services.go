// Package services holds the portal's business logic. Controllers talk to
// the interfaces declared here:
//   - AuthService: registration, login, token rotation and password reset
//   - CourseService: enrolled courses and per-semester subjects
//   - ResultService: results, GPA/CGPA and the transcript workbook
//   - AttendanceService, ScheduleService: absences, exams and timetable
//   - ProfileService, FeedbackService, GalleryService
//   - SelectionService: the live course and semester selection
package services
