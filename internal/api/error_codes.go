// internal/api/error_codes.go
package api

import (
	"net/http"

	apperrors "github.com/Promethia/CampaignForge/internal/errors"
)

// API error code constants
const (
	// generic
	ErrorValidation = "VALIDATION_ERROR"
	ErrorNotFound   = "NOT_FOUND"
	ErrorInternal   = "INTERNAL_ERROR"

	// conversation
	ErrorConversationNotFound = "CONVERSATION_NOT_FOUND"

	// generation
	ErrorGenerationFailed = "GENERATION_FAILED"
	ErrorLLMConfigInvalid = "LLM_CONFIG_INVALID"

	// enrichment
	ErrorEnrichmentUnavailable = "ENRICHMENT_UNAVAILABLE"

	// assets
	ErrorBannerFailed = "BANNER_GENERATION_FAILED"

	// export
	ErrorExportFailed        = "EXPORT_FAILED"
	ErrorExportFormatInvalid = "EXPORT_FORMAT_INVALID"
	ErrorExportNotFound      = "EXPORT_NOT_FOUND"
)

// statusFor maps application error types to HTTP status and API code
func statusFor(err error) (int, string) {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeValidation:
		return http.StatusBadRequest, ErrorValidation
	case apperrors.ErrorTypeNotFound:
		return http.StatusNotFound, ErrorNotFound
	case apperrors.ErrorTypeGeneration:
		return http.StatusBadGateway, ErrorGenerationFailed
	case apperrors.ErrorTypeEnrichment:
		return http.StatusServiceUnavailable, ErrorEnrichmentUnavailable
	default:
		return http.StatusInternalServerError, ErrorInternal
	}
}
