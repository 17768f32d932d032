package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models/dto"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/apperrors"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/auth"
)

type errorMapping struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

// Checked in order; the first match wins.
var errorMappings = []errorMapping{
	{apperrors.ErrAuthRequired, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required"},
	{apperrors.ErrInvalidSelection, http.StatusBadRequest, dto.ErrorCodeInvalidSelection, "Invalid selection"},
	{apperrors.ErrFetchFailed, http.StatusBadGateway, dto.ErrorCodeExternalServiceError, "Failed to fetch records"},
	{apperrors.ErrDivisionUndefined, http.StatusUnprocessableEntity, dto.ErrorCodeDivisionUndefined, "Total credit hours is zero, average is undefined"},

	{apperrors.ErrNotEnrolled, http.StatusForbidden, dto.ErrorCodeNotEnrolled, "Not enrolled in this course"},
	{apperrors.ErrStudentNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Student record not found"},
	{apperrors.ErrCourseNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Course not found"},
	{apperrors.ErrUserNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "User not found"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},

	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"},
	{apperrors.ErrAccountDisabled, http.StatusForbidden, dto.ErrorCodeAccountDisabled, "Account is disabled"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{apperrors.ErrTokenNotFound, http.StatusUnauthorized, dto.ErrorCodeTokenNotFound, "Token not found"},
	{apperrors.ErrTokenRevoked, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Token revoked"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrInvalidPasswordResetToken, http.StatusBadRequest, dto.ErrorCodeInvalidToken, "Invalid or expired password reset token"},
	{apperrors.ErrPasswordResetTokenUsed, http.StatusBadRequest, dto.ErrorCodeInvalidToken, "Password reset token has already been used"},
	{auth.ErrWeakPassword, http.StatusBadRequest, dto.ErrorCodeInvalidPassword, "Password does not meet requirements"},

	{apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Email already exists"},
	{apperrors.ErrIdentifierExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Student ID already exists"},
	{apperrors.ErrResourceAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"},

	{apperrors.ErrUnsupportedImage, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Unsupported image format"},
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Bad request"},
}

// HandleAPIError handles common API errors and returns appropriate responses.
// A CustomError contributes its message and details to the response.
func HandleAPIError(c *gin.Context, err error) {
	status, detail := ErrorDetailFor(err)
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

// ErrorDetailFor maps err to an HTTP status and error body.
func ErrorDetailFor(err error) (int, *dto.ErrorDetail) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		detail := dto.NewErrorDetail(m.code, m.message)

		var custom *apperrors.CustomError
		if errors.As(err, &custom) {
			if custom.Message != "" {
				detail.Message = custom.Message
			}
			if custom.Code != "" {
				detail.Code = dto.ErrorCode(custom.Code)
			}
			if len(custom.Details) > 0 {
				detail.Details = custom.Details
			}
		}
		return m.status, detail
	}

	return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error").
		WithSeverity(dto.ErrorSeverityCritical)
}
