package models

// ResultSheet is the results/<uid> document.
type ResultSheet struct {
	ExamResults []SemesterResult `json:"examResults"`
}

// SemesterResult holds the graded subjects of one semester of one course.
type SemesterResult struct {
	CourseID       string          `json:"courseId"`
	SemesterNumber int             `json:"semesterNumber"`
	Subjects       []SubjectRecord `json:"subjects"`
}

// SubjectRecord is one graded subject. The json names follow the stored
// documents ("name", "grades").
type SubjectRecord struct {
	Code        string  `json:"code"`
	Title       string  `json:"name"`
	CreditHours float64 `json:"creditHours"`
	Marks       float64 `json:"marks"`
	Grade       string  `json:"grades"`
}

// GPAResult is the outcome of a semester GPA calculation.
type GPAResult struct {
	SemesterCredits float64 `json:"semesterCredits" example:"7"`
	GPA             float64 `json:"gpa" example:"3.43"`
}

// CGPAResult is the outcome of a cumulative calculation.
type CGPAResult struct {
	TotalCreditHoursEarned float64 `json:"totalCreditHoursEarned" example:"21"`
	CGPA                   float64 `json:"cgpa" example:"3.25"`
}

// ForCourse keeps the semesters belonging to courseID. An empty id keeps all.
func (r *ResultSheet) ForCourse(courseID string) []SemesterResult {
	if courseID == "" {
		return r.ExamResults
	}
	out := make([]SemesterResult, 0, len(r.ExamResults))
	for _, s := range r.ExamResults {
		if s.CourseID == courseID {
			out = append(out, s)
		}
	}
	return out
}

// Semester returns the subjects recorded for one course semester.
func (r *ResultSheet) Semester(courseID string, n int) ([]SubjectRecord, bool) {
	for _, s := range r.ExamResults {
		if s.CourseID == courseID && s.SemesterNumber == n {
			return s.Subjects, true
		}
	}
	return nil, false
}
