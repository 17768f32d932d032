package apperrors

import "errors"

// Portal taxonomy. These four are the only errors the selection and grading
// layers produce; everything else below belongs to the HTTP surface.
var (
	// ErrAuthRequired is returned when no authenticated student is attached to the call.
	ErrAuthRequired = errors.New("authentication required")
	// ErrFetchFailed is returned when the document store fails or times out.
	ErrFetchFailed = errors.New("fetch failed")
	// ErrDivisionUndefined is returned when GPA/CGPA is asked for over zero credit hours.
	ErrDivisionUndefined = errors.New("total credit hours is zero, average is undefined")
	// ErrInvalidSelection is returned for an unknown course or semester.
	ErrInvalidSelection = errors.New("invalid selection")
)

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrAccountDisabled    = errors.New("account is disabled")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrIdentifierExists   = errors.New("student ID already exists")
)

// Student record errors
var (
	ErrStudentNotFound = errors.New("student record not found")
	ErrCourseNotFound  = errors.New("course not found")
	ErrNotEnrolled     = errors.New("student is not enrolled in this course")
)

// Password reset errors
var (
	ErrInvalidPasswordResetToken = errors.New("invalid or expired password reset token")
	ErrPasswordResetTokenUsed    = errors.New("password reset token has already been used")
)

// Upload errors
var (
	ErrUnsupportedImage = errors.New("unsupported image format")
)

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewInvalidSelectionError wraps ErrInvalidSelection with the offending value.
func NewInvalidSelectionError(message string, details map[string]interface{}) error {
	return NewCustomError(ErrInvalidSelection, message).WithDetails(details)
}

// Is returns whether err matches target or any of errList.
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}
