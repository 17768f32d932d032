package dto

import (
	"time"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models"
)

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"student@campus.edu.my"`
	Password string `json:"password" binding:"required" example:"Passw0rd!"`
}

// RegisterRequest represents student registration data
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email" example:"student@campus.edu.my"`
	Password  string `json:"password" binding:"required,min=8" example:"Passw0rd!"`
	FirstName string `json:"firstName" binding:"required" example:"Aina"`
	LastName  string `json:"lastName" binding:"required" example:"Rahman"`
	StudentID string `json:"studentId" binding:"required,studentid" example:"TP061234"`
}

// RegisterResponse is returned after a successful registration
type RegisterResponse struct {
	UserID  int64  `json:"userId" example:"1"`
	Message string `json:"message" example:"Registration successful"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken           string `json:"accessToken"`
	TokenType             string `json:"tokenType" example:"Bearer"`
	ExpiresIn             int64  `json:"expiresIn" example:"900"`
	RefreshToken          string `json:"refreshToken,omitempty"`
	RefreshTokenExpiresIn int64  `json:"refreshTokenExpiresIn,omitempty" example:"604800"`
}

// RefreshTokenRequest represents refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// LogoutRequest carries the refresh token to revoke alongside the access token
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ForgotPasswordRequest starts a password reset
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest completes a password reset
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

// UserResponse represents basic account information
type UserResponse struct {
	ID          int64      `json:"id" example:"1"`
	Email       string     `json:"email" example:"student@campus.edu.my"`
	FirstName   string     `json:"firstName" example:"Aina"`
	LastName    string     `json:"lastName" example:"Rahman"`
	StudentID   string     `json:"studentId" example:"TP061234"`
	Role        string     `json:"role" example:"STUDENT"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token TokenResponse `json:"token"`
	User  UserResponse  `json:"user"`
}

// NewUserResponse maps an account row to its public view
func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		StudentID:   u.StudentID,
		Role:        string(u.RoleType),
		LastLoginAt: u.LastLoginAt,
	}
}
