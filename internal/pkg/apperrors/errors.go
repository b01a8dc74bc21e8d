package apperrors

import "errors"

// Common errors
var (
	ErrConflict = errors.New("conflict")

	// Authentication errors
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
)

// Student errors
var (
	ErrStudentNotFound   = errors.New("student not found")
	ErrRollNumberTaken   = errors.New("roll number already assigned in this section")
	ErrSectionNotInClass = errors.New("section does not belong to the selected class")
)

// Class and section errors
var (
	ErrClassNotFound   = errors.New("class not found")
	ErrSectionNotFound = errors.New("section not found")
)

// Routine errors
var (
	ErrTeacherDoubleBooked = errors.New("teacher already assigned to another class in this slot")
	ErrSlotOutsideSchedule = errors.New("time slot is outside the weekly schedule")
)

// Session errors
var (
	ErrSessionNotFound = errors.New("admission session not found or expired")
)

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
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

// WithCode overrides the error code reported to clients
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}
