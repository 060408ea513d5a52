package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
)

// AppError represents an application-specific error
type AppError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
	Cause     error  `json:"-"`
	File      string `json:"file,omitempty"`
	Line      int    `json:"line,omitempty"`
	Operation string `json:"operation,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// PublicMessage is the text reported to API callers: the message, followed
// by the cause when there is one.
func (e *AppError) PublicMessage() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// NewAppError creates a new application error
func NewAppError(code, message string, cause error) *AppError {
	return newAppError(2, code, message, cause)
}

func newAppError(skip int, code, message string, cause error) *AppError {
	_, file, line, _ := runtime.Caller(skip)
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
		File:    file,
		Line:    line,
	}
}

// WithOperation adds operation context to the error
func (e *AppError) WithOperation(operation string) *AppError {
	e.Operation = operation
	return e
}

// WithDetails adds additional details to the error
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// Common error codes
const (
	ErrCodeValidationError = "VALIDATION_ERROR"
	ErrCodeProcessingError = "PROCESSING_ERROR"
	ErrCodeArtifactError   = "ARTIFACT_ERROR"
	ErrCodeInternalError   = "INTERNAL_ERROR"
)

func ValidationError(message string, cause error) *AppError {
	return newAppError(2, ErrCodeValidationError, message, cause)
}

func ProcessingError(message string, cause error) *AppError {
	return newAppError(2, ErrCodeProcessingError, message, cause)
}

func ArtifactError(message string, cause error) *AppError {
	return newAppError(2, ErrCodeArtifactError, message, cause)
}

func InternalError(message string, cause error) *AppError {
	return newAppError(2, ErrCodeInternalError, message, cause)
}

// MissingFeaturesError is returned when a request lacks one or more required features
type MissingFeaturesError struct {
	Required []string
	Missing  []string
}

func (e *MissingFeaturesError) Error() string {
	return fmt.Sprintf("missing %d of %d required features: %v", len(e.Missing), len(e.Required), e.Missing)
}

// IsCode reports whether any AppError in err's chain has the given code
func IsCode(err error, code string) bool {
	var appErr *AppError
	for err != nil {
		if !stderrors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// AsMissingFeatures extracts a MissingFeaturesError from err's chain
func AsMissingFeatures(err error) (*MissingFeaturesError, bool) {
	var missing *MissingFeaturesError
	if stderrors.As(err, &missing) {
		return missing, true
	}
	return nil, false
}

// AsAppError extracts the outermost AppError from err's chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
