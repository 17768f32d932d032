package dto

import "github.com/Cookie-Knight/student-information-system-fyp/internal/app/models"

// ProfileResponse is the student's profile as shown in the portal
type ProfileResponse struct {
	UserID               int64    `json:"userId" example:"1"`
	Email                string   `json:"email" example:"student@campus.edu.my"`
	Name                 string   `json:"name" example:"Aina Rahman"`
	StudentID            string   `json:"studentId" example:"TP061234"`
	CourseIDs            []string `json:"courseIds"`
	CurrentSemester      int      `json:"currentSemester,omitempty" example:"3"`
	PersonalEmail        string   `json:"personalEmail,omitempty"`
	PermanentAddress     string   `json:"permanentAddress,omitempty"`
	IdentificationNumber string   `json:"identificationNumber,omitempty"`
	Gender               string   `json:"gender,omitempty"`
	Race                 string   `json:"race,omitempty"`
	DOB                  string   `json:"dob,omitempty" example:"2002-05-14"`
	AvatarURL            string   `json:"avatarUrl,omitempty"`
}

// UpdateProfileRequest lists the editable profile fields. Omitted fields are left as they are.
type UpdateProfileRequest struct {
	Name                 *string `json:"name" binding:"omitempty,min=1,max=100"`
	PersonalEmail        *string `json:"personalEmail" binding:"omitempty,email"`
	PermanentAddress     *string `json:"permanentAddress" binding:"omitempty,max=255"`
	IdentificationNumber *string `json:"identificationNumber" binding:"omitempty,max=32"`
	Gender               *string `json:"gender" binding:"omitempty,max=20"`
	Race                 *string `json:"race" binding:"omitempty,max=40"`
	DOB                  *string `json:"dob" binding:"omitempty,datetime=2006-01-02"`
}

// Fields returns the set fields keyed by their document names.
func (r *UpdateProfileRequest) Fields() map[string]interface{} {
	out := make(map[string]interface{})
	set := func(key string, v *string) {
		if v != nil {
			out[key] = *v
		}
	}
	set("name", r.Name)
	set("personalEmail", r.PersonalEmail)
	set("permanentAddress", r.PermanentAddress)
	set("identificationNumber", r.IdentificationNumber)
	set("gender", r.Gender)
	set("race", r.Race)
	set("dob", r.DOB)
	return out
}

// AvatarResponse is returned after an avatar upload
type AvatarResponse struct {
	AvatarURL string `json:"avatarUrl" example:"http://localhost:8080/uploads/avatars/1/6f1c.png"`
}

// NewProfileResponse merges the account row and the student document.
func NewProfileResponse(u *models.User, p *models.StudentProfile) ProfileResponse {
	resp := ProfileResponse{
		UserID:    u.ID,
		Email:     u.Email,
		Name:      u.FullName(),
		StudentID: u.StudentID,
		CourseIDs: []string{},
	}
	if p == nil {
		return resp
	}
	if p.Name != "" {
		resp.Name = p.Name
	}
	if p.StudentID != "" {
		resp.StudentID = p.StudentID
	}
	resp.CourseIDs = p.EnrolledCourseIDs()
	resp.CurrentSemester = p.CurrentSemester
	resp.PersonalEmail = p.PersonalEmail
	resp.PermanentAddress = p.PermanentAddress
	resp.IdentificationNumber = p.IdentificationNumber
	resp.Gender = p.Gender
	resp.Race = p.Race
	resp.DOB = p.DOB
	resp.AvatarURL = p.AvatarURL
	return resp
}

// CourseSummary is a course with its semester numbers
type CourseSummary struct {
	ID        string `json:"id" example:"CS"`
	Name      string `json:"name" example:"Computer Science"`
	Semesters []int  `json:"semesters" example:"1,2,3"`
}

// NewCourseSummary maps a course document
func NewCourseSummary(c *models.Course) CourseSummary {
	return CourseSummary{ID: c.ID, Name: c.Name, Semesters: c.SemesterNumbers()}
}

// SubjectListResponse lists a semester's subjects with the student's status
type SubjectListResponse struct {
	CourseID string              `json:"courseId" example:"CS"`
	Semester int                 `json:"semester" example:"1"`
	Subjects []models.SubjectRef `json:"subjects"`
}
