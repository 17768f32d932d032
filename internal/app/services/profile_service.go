package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models/dto"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/repositories"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/apperrors"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/filestorage"
)

// ProfileService reads and edits the student's profile
type ProfileService interface {
	GetProfile(ctx context.Context, userID int64) (*dto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
	UploadAvatar(ctx context.Context, userID int64, r io.Reader) (*dto.AvatarResponse, error)
}

type profileServiceImpl struct {
	users    repositories.IUserRepository
	students repositories.IStudentRepository
	storage  filestorage.FileStorage
	logger   zerolog.Logger
}

// NewProfileService creates a new ProfileService
func NewProfileService(
	users repositories.IUserRepository,
	students repositories.IStudentRepository,
	storage filestorage.FileStorage,
	logger zerolog.Logger,
) ProfileService {
	return &profileServiceImpl{
		users:    users,
		students: students,
		storage:  storage,
		logger:   logger,
	}
}

func (s *profileServiceImpl) GetProfile(ctx context.Context, userID int64) (*dto.ProfileResponse, error) {
	if userID <= 0 {
		return nil, apperrors.ErrAuthRequired
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.students.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewProfileResponse(user, profile)
	return &resp, nil
}

// UpdateProfile merges the set fields into the student document. A new name
// is copied to the account row as well.
func (s *profileServiceImpl) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	if userID <= 0 {
		return nil, apperrors.ErrAuthRequired
	}

	fields := req.Fields()
	if name, ok := fields["name"].(string); ok {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, apperrors.NewCustomError(apperrors.ErrValidationFailed, "name must not be blank").
				WithDetails(map[string]interface{}{"name": "must not be blank"})
		}
		fields["name"] = name
	}

	if err := s.students.UpdateProfile(ctx, userID, fields); err != nil {
		return nil, err
	}

	if name, ok := fields["name"].(string); ok {
		first, last := splitName(name)
		if err := s.users.UpdateName(ctx, userID, first, last); err != nil {
			s.logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to sync account name")
		}
	}

	s.logger.Info().Int64("userID", userID).Int("fields", len(fields)).Msg("Profile updated")
	return s.GetProfile(ctx, userID)
}

// UploadAvatar stores a 400×400 crop of the image and points the profile at
// it. The previous avatar file is removed.
func (s *profileServiceImpl) UploadAvatar(ctx context.Context, userID int64, r io.Reader) (*dto.AvatarResponse, error) {
	if userID <= 0 {
		return nil, apperrors.ErrAuthRequired
	}
	profile, err := s.students.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	data, ext, err := filestorage.SquareImage(r, filestorage.AvatarSize)
	if err != nil {
		return nil, err
	}

	url, err := s.storage.Save(bytes.NewReader(data), path.Join("avatars", models.DocumentID(userID)), ext)
	if err != nil {
		return nil, fmt.Errorf("failed to store avatar: %w", err)
	}

	if err := s.students.SetAvatar(ctx, userID, url); err != nil {
		_ = s.storage.DeleteFile(url)
		return nil, err
	}

	if profile.AvatarURL != "" && profile.AvatarURL != url {
		if err := s.storage.DeleteFile(profile.AvatarURL); err != nil {
			s.logger.Warn().Err(err).Str("url", profile.AvatarURL).Msg("Failed to delete previous avatar")
		}
	}

	return &dto.AvatarResponse{AvatarURL: url}, nil
}

// splitName puts the last word in the last name
func splitName(name string) (first, last string) {
	parts := strings.Fields(name)
	if len(parts) <= 1 {
		return name, ""
	}
	return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
}
