package models

import (
	"strconv"
	"time"
)

// User is an account row from the users table. The student's portal
// documents are keyed by DocumentID.
type User struct {
	ID          int64      `json:"id" db:"id" example:"1"`
	Email       string     `json:"email" db:"email" example:"student@campus.edu.my"`
	Password    string     `json:"-" db:"password"`
	FirstName   string     `json:"firstName" db:"first_name" example:"Aina"`
	LastName    string     `json:"lastName" db:"last_name" example:"Rahman"`
	StudentID   string     `json:"studentId" db:"student_id" example:"TP061234"`
	RoleType    RoleType   `json:"roleType" db:"role_type" example:"STUDENT"`
	IsActive    bool       `json:"isActive" db:"is_active" example:"true"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

// FullName joins first and last name.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// DocumentID is the id of the student's documents in the students and results collections.
func DocumentID(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
