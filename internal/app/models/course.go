package models

// Course is the courses/<id> document.
type Course struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Semesters []Semester `json:"semesters"`
}

// Semester is one term of a course.
type Semester struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	SemesterNumber int          `json:"semesterNumber"`
	Subjects       []SubjectRef `json:"subjects"`
}

// SubjectRef is a subject offered in a semester. Status is filled in per
// student when listing.
type SubjectRef struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	CreditHours float64 `json:"creditHours,omitempty"`
	Status      string  `json:"status,omitempty"`
}

// SemesterByNumber finds a semester by its number.
func (c *Course) SemesterByNumber(n int) (*Semester, bool) {
	for i := range c.Semesters {
		if c.Semesters[i].SemesterNumber == n {
			return &c.Semesters[i], true
		}
	}
	return nil, false
}

// SemesterNumbers lists the course's semester numbers in document order.
func (c *Course) SemesterNumbers() []int {
	out := make([]int, 0, len(c.Semesters))
	for _, s := range c.Semesters {
		out = append(out, s.SemesterNumber)
	}
	return out
}
