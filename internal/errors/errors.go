package errors

import (
	stderrors "errors"
	"fmt"

	"statbench/domain/core"
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

// Wrap wraps an error with additional context, keeping the code of an
// AppError or domain error found in the chain.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    GetCode(err),
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

// GetCode returns the code of the outermost AppError, the code matching a
// domain sentinel, or "UNKNOWN".
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	if code, ok := domainCode(err); ok {
		return code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeConfigInvalid        = "CONFIG_INVALID"
	CodeDatabaseError        = "DATABASE_ERROR"
	CodeValidationError      = "VALIDATION_ERROR"
	CodeNotFound             = "NOT_FOUND"
	CodeInternalError        = "INTERNAL_ERROR"
	CodeExternalService      = "EXTERNAL_SERVICE_ERROR"
	CodeInvalidInput         = "INVALID_INPUT"
	CodeInsufficientData     = "INSUFFICIENT_DATA"
	CodeInvalidConfiguration = "INVALID_CONFIGURATION"
	CodeNumericDegeneracy    = "NUMERIC_DEGENERACY"
)

func domainCode(err error) (string, bool) {
	switch {
	case stderrors.Is(err, core.ErrInsufficientData):
		return CodeInsufficientData, true
	case stderrors.Is(err, core.ErrInvalidConfiguration):
		return CodeInvalidConfiguration, true
	case stderrors.Is(err, core.ErrNumericDegeneracy):
		return CodeNumericDegeneracy, true
	case stderrors.Is(err, core.ErrNotFound):
		return CodeNotFound, true
	}
	return "", false
}

// FromDomain converts an engine or repository error into an AppError whose
// Message is the user-facing text for that precondition.
func FromDomain(err error) error {
	if err == nil {
		return nil
	}
	if IsAppError(err) {
		return err
	}
	code, ok := domainCode(err)
	if !ok {
		code = CodeInternalError
	}
	return &AppError{Code: code, Message: UserMessage(err), Cause: err}
}

// UserMessage returns a short explanation of why an analysis produced no result.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case stderrors.Is(err, core.ErrInsufficientData):
		return "Not enough valid observations for this analysis"
	case stderrors.Is(err, core.ErrInvalidConfiguration):
		return "The analysis settings are not valid for the selected columns"
	case stderrors.Is(err, core.ErrNumericDegeneracy):
		return "The data has no variation for this analysis to measure"
	case stderrors.Is(err, core.ErrNotFound):
		return "The requested item was not found"
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	return "The analysis failed unexpectedly"
}

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func DatabaseError(message string) *AppError {
	return New(CodeDatabaseError, message)
}

func ValidationError(message string) *AppError {
	return New(CodeValidationError, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
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

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}
