package errors

import (
	stderrors "errors"
	"fmt"

	"geoverify/domain/core"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeConfiguration     = "CONFIGURATION_ERROR"
	CodeShapeMismatch     = "SHAPE_MISMATCH"
	CodeUnknownMethod     = "UNKNOWN_METHOD"
	CodeSessionNotFound   = "SESSION_NOT_FOUND"
	CodeIterationNotFound = "ITERATION_NOT_FOUND"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeConflict          = "CONFLICT"
	CodeDatabaseError     = "DATABASE_ERROR"
	CodeInternalError     = "INTERNAL_ERROR"
	CodeExternalService   = "EXTERNAL_SERVICE_ERROR"
)

// Common error constructors. Each carries the matching domain sentinel as its
// cause so callers can use errors.Is against domain/core.

func ConfigurationError(message string) *AppError {
	return &AppError{Code: CodeConfiguration, Message: message, Cause: core.ErrConfiguration}
}

func ShapeMismatch(signalLen, noiseLen int) *AppError {
	return &AppError{
		Code:    CodeShapeMismatch,
		Message: "signal and noise sequences must be non-empty",
		Cause:   core.NewShapeMismatchError(signalLen, noiseLen),
	}
}

func UnknownMethod(kind, name string) *AppError {
	return &AppError{
		Code:    CodeUnknownMethod,
		Message: fmt.Sprintf("unsupported %s %q", kind, name),
		Cause:   core.ErrUnknownMethod,
	}
}

func SessionNotFound(sessionID string) *AppError {
	return &AppError{
		Code:    CodeSessionNotFound,
		Message: fmt.Sprintf("critique session %s", sessionID),
		Cause:   core.ErrSessionNotFound,
	}
}

func IterationNotFound(sessionID string, number int) *AppError {
	return &AppError{
		Code:    CodeIterationNotFound,
		Message: fmt.Sprintf("iteration %d of critique session %s", number, sessionID),
		Cause:   core.ErrIterationNotFound,
	}
}

func MissingEvidence(key string) *AppError {
	return &AppError{
		Code:    CodeConfiguration,
		Message: "incomplete evidence bundle",
		Cause:   core.NewMissingEvidenceError(key),
	}
}

func InvalidInput(message string) *AppError {
	return &AppError{Code: CodeInvalidInput, Message: message, Cause: core.ErrInvalidInput}
}

func Conflict(message string, cause error) *AppError {
	return &AppError{Code: CodeConflict, Message: message, Cause: cause}
}

func DatabaseError(message string, cause error) *AppError {
	return &AppError{Code: CodeDatabaseError, Message: message, Cause: cause}
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func ExternalServiceError(service string, cause error) *AppError {
	return &AppError{
		Code:    CodeExternalService,
		Message: fmt.Sprintf("%s service error", service),
		Cause:   cause,
	}
}
