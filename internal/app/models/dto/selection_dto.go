package dto

// SelectCourseRequest picks one of the student's enrolled courses
type SelectCourseRequest struct {
	CourseID string `json:"courseId" binding:"required,courseid" example:"CS"`
}

// SelectSemesterRequest picks a semester of the selected course. Zero clears it.
type SelectSemesterRequest struct {
	Semester int `json:"semester" binding:"gte=0" example:"1"`
}
