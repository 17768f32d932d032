package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models/dto"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/repositories"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/apperrors"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/auth"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/email"
)

// DefaultResetTokenTTL is how long a password reset link stays valid
const DefaultResetTokenTTL = time.Hour

// TokenRevoker blacklists access tokens by JWT id until they expire
type TokenRevoker interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// SessionEnder drops in-memory per-student state on logout
type SessionEnder interface {
	End(userID int64)
}

// AuthService handles authentication operations
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, claims *auth.Claims, refreshToken string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	GetCurrentUser(ctx context.Context, userID int64) (*dto.UserResponse, error)
}

// AuthDependencies groups what the auth service talks to. Revoker, Sessions
// and Email may be nil.
type AuthDependencies struct {
	Users         repositories.IUserRepository
	Tokens        repositories.ITokenRepository
	ResetTokens   repositories.IPasswordResetTokenRepository
	Students      repositories.IStudentRepository
	JWT           *auth.JWTService
	Email         email.EmailService
	Revoker       TokenRevoker
	Sessions      SessionEnder
	ResetTokenTTL time.Duration
}

type authServiceImpl struct {
	deps   AuthDependencies
	now    func() time.Time
	logger zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(deps AuthDependencies, logger zerolog.Logger) AuthService {
	if deps.ResetTokenTTL <= 0 {
		deps.ResetTokenTTL = DefaultResetTokenTTL
	}
	return &authServiceImpl{
		deps:   deps,
		now:    time.Now,
		logger: logger,
	}
}

// Register creates the account and the student's profile document
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))
	studentID := strings.ToUpper(strings.TrimSpace(req.StudentID))

	if err := auth.ValidatePasswordStrength(req.Password); err != nil {
		return nil, err
	}

	exists, err := s.deps.Users.EmailExists(ctx, emailAddr)
	if err != nil {
		return nil, fmt.Errorf("error checking if email exists: %w", err)
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	exists, err = s.deps.Users.StudentIDExists(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("error checking if student ID exists: %w", err)
	}
	if exists {
		return nil, apperrors.ErrIdentifierExists
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Email:     emailAddr,
		Password:  hashedPassword,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		StudentID: studentID,
		RoleType:  models.RoleStudent,
		IsActive:  true,
	}
	userID, err := s.deps.Users.CreateUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("user creation error: %w", err)
	}
	user.ID = userID

	profile := &models.StudentProfile{
		Name:      user.FullName(),
		StudentID: studentID,
		Courses:   []models.CourseEnrollment{},
	}
	if err := s.deps.Students.CreateProfile(ctx, userID, profile); err != nil {
		return nil, fmt.Errorf("student profile creation error: %w", err)
	}

	if s.deps.Email != nil {
		if err := s.deps.Email.SendWelcomeEmail(user.Email, user.FirstName); err != nil {
			s.logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to send welcome email")
		}
	}

	s.logger.Info().Int64("userID", userID).Str("studentId", studentID).Msg("Student registered")
	return s.authResponse(ctx, user)
}

// Login authenticates a student by email and password
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.deps.Users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	if err := s.deps.Users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to update last login")
	} else {
		now := s.now()
		user.LastLoginAt = &now
	}

	return s.authResponse(ctx, user)
}

// RefreshToken rotates a refresh token into a new token pair
func (s *authServiceImpl) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, apperrors.ErrTokenInvalid
	}

	userID, _, err := s.deps.Tokens.GetTokenByValue(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.deps.Users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	// The old token must not be usable again
	if err := s.deps.Tokens.RevokeToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to revoke old token: %w", err)
	}

	return s.issueTokens(ctx, user)
}

// Logout revokes the refresh token, blacklists the access token and ends
// the student's selection session
func (s *authServiceImpl) Logout(ctx context.Context, claims *auth.Claims, refreshToken string) error {
	if claims == nil {
		return apperrors.ErrAuthRequired
	}

	if refreshToken != "" {
		if err := s.deps.Tokens.RevokeToken(ctx, refreshToken); err != nil && !errors.Is(err, apperrors.ErrTokenNotFound) {
			return fmt.Errorf("failed to revoke refresh token: %w", err)
		}
	}

	if s.deps.Revoker != nil {
		ttl := s.deps.JWT.RemainingLifetime(claims)
		if err := s.deps.Revoker.BlacklistToken(ctx, claims.ID, ttl); err != nil {
			s.logger.Warn().Err(err).Int64("userID", claims.UserID).Msg("Failed to blacklist access token")
		}
	}

	if s.deps.Sessions != nil {
		s.deps.Sessions.End(claims.UserID)
	}

	s.logger.Info().Int64("userID", claims.UserID).Msg("Student logged out")
	return nil
}

// ForgotPassword emails a reset link. Unknown addresses succeed silently.
func (s *authServiceImpl) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := s.deps.Users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(emailAddr)))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			s.logger.Debug().Msg("Password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("error loading user: %w", err)
	}

	if err := s.deps.ResetTokens.DeleteTokensByUserID(ctx, user.ID); err != nil {
		return err
	}

	token := auth.GenerateOpaqueToken()
	if err := s.deps.ResetTokens.CreateToken(ctx, user.ID, token, s.now().Add(s.deps.ResetTokenTTL)); err != nil {
		return err
	}

	if s.deps.Email == nil {
		s.logger.Warn().Int64("userID", user.ID).Msg("No email service configured, reset token not delivered")
		return nil
	}
	if err := s.deps.Email.SendPasswordResetEmail(user.Email, user.FirstName, token); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	return nil
}

// ResetPassword sets a new password with a single-use reset token and
// signs the student out everywhere
func (s *authServiceImpl) ResetPassword(ctx context.Context, token, newPassword string) error {
	userID, expiry, used, err := s.deps.ResetTokens.GetTokenInfo(ctx, token)
	if err != nil {
		if errors.Is(err, apperrors.ErrTokenNotFound) {
			return apperrors.ErrInvalidPasswordResetToken
		}
		return err
	}
	if used {
		return apperrors.ErrPasswordResetTokenUsed
	}
	if expiry.Before(s.now()) {
		return apperrors.ErrInvalidPasswordResetToken
	}

	if err := auth.ValidatePasswordStrength(newPassword); err != nil {
		return err
	}
	hashed, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	if err := s.deps.Users.UpdatePassword(ctx, userID, hashed); err != nil {
		return err
	}
	if err := s.deps.ResetTokens.MarkTokenAsUsed(ctx, token); err != nil {
		return err
	}
	if err := s.deps.Tokens.RevokeAllUserTokens(ctx, userID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to revoke refresh tokens after password reset")
	}
	if s.deps.Sessions != nil {
		s.deps.Sessions.End(userID)
	}

	s.logger.Info().Int64("userID", userID).Msg("Password reset")
	return nil
}

// GetCurrentUser returns the account of the authenticated student
func (s *authServiceImpl) GetCurrentUser(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	if userID <= 0 {
		return nil, apperrors.ErrAuthRequired
	}
	user, err := s.deps.Users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (s *authServiceImpl) authResponse(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	token, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{Token: *token, User: dto.NewUserResponse(user)}, nil
}

// issueTokens signs a new pair and stores the refresh token
func (s *authServiceImpl) issueTokens(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	pair, err := s.deps.JWT.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("token generation error: %w", err)
	}

	if err := s.deps.Tokens.CreateToken(ctx, pair.RefreshToken, user.ID, pair.RefreshExpiry); err != nil {
		return nil, fmt.Errorf("token saving error: %w", err)
	}

	return &dto.TokenResponse{
		AccessToken:           pair.AccessToken,
		TokenType:             "Bearer",
		ExpiresIn:             pair.ExpiresIn,
		RefreshToken:          pair.RefreshToken,
		RefreshTokenExpiresIn: pair.RefreshExpiresIn,
	}, nil
}
