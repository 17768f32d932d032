package models

// SubjectStatusNotEnrolled is reported for subjects missing from the student's enrolment.
const SubjectStatusNotEnrolled = "not enrolled"

// StudentProfile is the students/<uid> document.
type StudentProfile struct {
	Name                 string             `json:"name"`
	StudentID            string             `json:"studentId"`
	Courses              []CourseEnrollment `json:"courses"`
	CurrentSemester      int                `json:"currentSemester,omitempty"`
	PersonalEmail        string             `json:"personalEmail,omitempty"`
	PermanentAddress     string             `json:"permanentAddress,omitempty"`
	IdentificationNumber string             `json:"identificationNumber,omitempty"`
	Gender               string             `json:"gender,omitempty"`
	Race                 string             `json:"race,omitempty"`
	DOB                  string             `json:"dob,omitempty"`
	AvatarURL            string             `json:"avatarUrl,omitempty"`
	// CGPA is a denormalized copy kept for old clients. It goes stale and is
	// never used as input to a calculation.
	CGPA *float64 `json:"cgpa,omitempty"`
}

// CourseEnrollment links a student to a course and carries per-subject status.
type CourseEnrollment struct {
	CourseID  string               `json:"courseId"`
	Semesters []SemesterEnrollment `json:"semesters,omitempty"`
}

// SemesterEnrollment is keyed by the course semester id.
type SemesterEnrollment struct {
	ID       string              `json:"id"`
	Subjects []SubjectEnrollment `json:"subjects,omitempty"`
}

// SubjectEnrollment records the status of one subject for the student.
type SubjectEnrollment struct {
	Code   string `json:"code"`
	Status string `json:"status"`
}

// EnrolledCourseIDs returns course ids in enrolment order, without duplicates.
func (p *StudentProfile) EnrolledCourseIDs() []string {
	seen := make(map[string]bool, len(p.Courses))
	ids := make([]string, 0, len(p.Courses))
	for _, c := range p.Courses {
		if c.CourseID == "" || seen[c.CourseID] {
			continue
		}
		seen[c.CourseID] = true
		ids = append(ids, c.CourseID)
	}
	return ids
}

// IsEnrolled reports whether courseID is one of the student's courses.
func (p *StudentProfile) IsEnrolled(courseID string) bool {
	for _, c := range p.Courses {
		if c.CourseID == courseID {
			return true
		}
	}
	return false
}

// SubjectStatus looks up the student's status for a subject, defaulting to
// SubjectStatusNotEnrolled.
func (p *StudentProfile) SubjectStatus(courseID, semesterID, code string) string {
	for _, c := range p.Courses {
		if c.CourseID != courseID {
			continue
		}
		for _, s := range c.Semesters {
			if s.ID != semesterID {
				continue
			}
			for _, subj := range s.Subjects {
				if subj.Code == code && subj.Status != "" {
					return subj.Status
				}
			}
		}
	}
	return SubjectStatusNotEnrolled
}
