// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies application errors
type ErrorType string

const (
	// ErrorTypeValidation covers bad or missing user identifiers and
	// malformed requests, rejected before the state machine runs
	ErrorTypeValidation ErrorType = "validation_error"
	ErrorTypeNotFound   ErrorType = "not_found"

	// ErrorTypeExtraction marks ambiguous input the extractor could not
	// parse; non-fatal, the conversation re-prompts
	ErrorTypeExtraction ErrorType = "extraction_ambiguous"

	// ErrorTypeEnrichment marks an unavailable web-search upstream;
	// non-fatal, generation proceeds without enrichment
	ErrorTypeEnrichment ErrorType = "enrichment_unavailable"

	// ErrorTypeGeneration is fatal to the current generation attempt and
	// is surfaced to the caller with retry guidance
	ErrorTypeGeneration ErrorType = "generation_error"

	// ErrorTypeAsset marks a failed banner generation; non-fatal, the
	// text campaign is delivered without the asset
	ErrorTypeAsset ErrorType = "asset_error"

	ErrorTypeTimeout    ErrorType = "timeout"
	ErrorTypeProcessing ErrorType = "processing_error"
)

// AppError is the application error carrying a type, a user-facing
// message and the wrapped cause
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
	Code    string
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the wrapped cause for errors.Is/As
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError of the given type
func New(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     cause,
		Code:    codeFor(errType),
	}
}

// NewValidationError creates a request validation error
func NewValidationError(message string, cause error) *AppError {
	return New(ErrorTypeValidation, message, cause)
}

// NewNotFoundError creates a missing resource error
func NewNotFoundError(message string, cause error) *AppError {
	return New(ErrorTypeNotFound, message, cause)
}

// NewGenerationError creates a campaign generation failure
func NewGenerationError(message string, cause error) *AppError {
	return New(ErrorTypeGeneration, message, cause)
}

// NewAssetError creates a banner generation failure
func NewAssetError(message string, cause error) *AppError {
	return New(ErrorTypeAsset, message, cause)
}

// NewEnrichmentError creates a web-search unavailability marker
func NewEnrichmentError(message string, cause error) *AppError {
	return New(ErrorTypeEnrichment, message, cause)
}

// NewProcessingError creates a generic internal error
func NewProcessingError(message string, cause error) *AppError {
	return New(ErrorTypeProcessing, message, cause)
}

// TypeOf returns the ErrorType of err, or ErrorTypeProcessing when err
// is not an AppError
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeProcessing
}

// IsValidationError reports whether err is a validation error
func IsValidationError(err error) bool {
	return TypeOf(err) == ErrorTypeValidation
}

// IsNotFoundError reports whether err is a not-found error
func IsNotFoundError(err error) bool {
	return TypeOf(err) == ErrorTypeNotFound
}

// IsGenerationError reports whether err is a generation failure
func IsGenerationError(err error) bool {
	return TypeOf(err) == ErrorTypeGeneration
}

// IsAssetError reports whether err is an asset failure
func IsAssetError(err error) bool {
	return TypeOf(err) == ErrorTypeAsset
}

func codeFor(errType ErrorType) string {
	switch errType {
	case ErrorTypeValidation:
		return "VALIDATION_ERROR"
	case ErrorTypeNotFound:
		return "NOT_FOUND"
	case ErrorTypeExtraction:
		return "EXTRACTION_AMBIGUOUS"
	case ErrorTypeEnrichment:
		return "ENRICHMENT_UNAVAILABLE"
	case ErrorTypeGeneration:
		return "GENERATION_ERROR"
	case ErrorTypeAsset:
		return "ASSET_ERROR"
	case ErrorTypeTimeout:
		return "TIMEOUT"
	case ErrorTypeProcessing:
		return "PROCESSING_ERROR"
	default:
		return "UNKNOWN_ERROR"
	}
}

// Wrap annotates err with a message, preserving the AppError type when
// err already carries one
func Wrap(err error, message string, errType ErrorType) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Type:    appErr.Type,
			Message: fmt.Sprintf("%s: %s", message, appErr.Message),
			Err:     appErr,
			Code:    appErr.Code,
		}
	}

	return New(errType, message, err)
}
