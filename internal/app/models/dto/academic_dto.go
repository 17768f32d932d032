package dto

import "github.com/Cookie-Knight/student-information-system-fyp/internal/app/models"

// RecordQuery selects one course semester
type RecordQuery struct {
	CourseID string `form:"courseId" binding:"required"`
	Semester int    `form:"semester" binding:"required,gt=0"`
}

// ResultsResponse holds a semester's graded subjects and the averages
// computed from them. GPA and CGPA are omitted when undefined.
type ResultsResponse struct {
	CourseID       string                 `json:"courseId" example:"CS"`
	Semester       int                    `json:"semester" example:"1"`
	Subjects       []models.SubjectRecord `json:"subjects"`
	GPA            *models.GPAResult      `json:"gpa,omitempty"`
	CGPA           *models.CGPAResult     `json:"cgpa,omitempty"`
	NoResultsFound bool                   `json:"noResultsFound"`
	GPAUndefined   bool                   `json:"gpaUndefined,omitempty"`
	CGPAUndefined  bool                   `json:"cgpaUndefined,omitempty"`
}

// CGPAResponse is the cumulative average over the student's history
type CGPAResponse struct {
	CourseID  string `json:"courseId,omitempty" example:"CS"`
	Semesters int    `json:"semesters" example:"3"`
	models.CGPAResult
	// CGPAUndefined is set when there are no credit hours to average over
	CGPAUndefined bool `json:"cgpaUndefined,omitempty"`
}

// GPARequest asks for a GPA over an ad-hoc list of subjects
type GPARequest struct {
	Subjects []SubjectInput `json:"subjects" binding:"required,min=1,dive"`
}

// CGPARequest asks for a CGPA over ad-hoc semesters
type CGPARequest struct {
	Semesters []SemesterInput `json:"semesters" binding:"required,min=1,dive"`
}

// SemesterInput is one semester of a CGPARequest
type SemesterInput struct {
	SemesterNumber int            `json:"semesterNumber" binding:"gte=0"`
	Subjects       []SubjectInput `json:"subjects" binding:"dive"`
}

// SubjectInput is a graded subject supplied by the client
type SubjectInput struct {
	Code        string  `json:"code" example:"CS101"`
	CreditHours float64 `json:"creditHours" binding:"gt=0" example:"3"`
	Grade       string  `json:"grade" example:"A"`
}

// ToRecords converts inputs to subject records.
func ToRecords(in []SubjectInput) []models.SubjectRecord {
	out := make([]models.SubjectRecord, 0, len(in))
	for _, s := range in {
		out = append(out, models.SubjectRecord{Code: s.Code, CreditHours: s.CreditHours, Grade: s.Grade})
	}
	return out
}

// ToSemesters converts inputs to semester results.
func (r *CGPARequest) ToSemesters() []models.SemesterResult {
	out := make([]models.SemesterResult, 0, len(r.Semesters))
	for _, s := range r.Semesters {
		out = append(out, models.SemesterResult{SemesterNumber: s.SemesterNumber, Subjects: ToRecords(s.Subjects)})
	}
	return out
}

// AttendanceResponse lists the caller's absences for a semester
type AttendanceResponse struct {
	CourseID string                    `json:"courseId" example:"CS"`
	Semester int                       `json:"semester" example:"1"`
	Records  []models.AttendanceRecord `json:"records"`
}

// ScheduleResponse lists exam or timetable slots for a semester
type ScheduleResponse struct {
	CourseID string                `json:"courseId" example:"CS"`
	Semester int                   `json:"semester" example:"1"`
	Slots    []models.ScheduleSlot `json:"slots"`
}

// FeedbackRequest is a message sent from the feedback form
type FeedbackRequest struct {
	Name    string `json:"name" binding:"required,notblank,max=100" example:"Aina Rahman"`
	Email   string `json:"email" binding:"required,email" example:"student@campus.edu.my"`
	Title   string `json:"title" binding:"required,notblank,max=200" example:"Library hours"`
	Message string `json:"message" binding:"required,notblank,max=5000"`
}

// FeedbackResponse echoes the stored feedback
type FeedbackResponse struct {
	ID string `json:"id" example:"aina-rahman"`
	models.Feedback
}
