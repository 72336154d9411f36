package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION> for transport level errors; designer
// errors keep the code raised by the domain.

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
	// ErrCodeValidationRange is used when a value is out of range
	ErrCodeValidationRange = "ERR_VALIDATION_RANGE"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodePayloadTooLarge is used when the request body exceeds the limit
	ErrCodePayloadTooLarge = "ERR_PAYLOAD_TOO_LARGE"
)

// Rate limiting error codes
const (
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
	// ErrCodeTimeout is used when the request deadline passes
	ErrCodeTimeout = "ERR_TIMEOUT"
)

// Designer error codes, as raised by the designer domain, session layer,
// asset fetcher and renderers
const (
	ErrCodeSessionNotFound       = "SESSION_NOT_FOUND"
	ErrCodeElementNotFound       = "ELEMENT_NOT_FOUND"
	ErrCodePropertyNotApplicable = "PROPERTY_NOT_APPLICABLE"
	ErrCodeInvalidPropertyValue  = "INVALID_PROPERTY_VALUE"
	ErrCodeNothingSelected       = "NOTHING_SELECTED"
	ErrCodeUnknownDimension      = "UNKNOWN_DIMENSION"
	ErrCodeInvalidDimension      = "INVALID_DIMENSION"
	ErrCodeImageDecodeFailed     = "IMAGE_DECODE_FAILED"
	ErrCodeImageFetchFailed      = "IMAGE_FETCH_FAILED"
	ErrCodeImageTooLarge         = "IMAGE_TOO_LARGE"
	ErrCodeImageSourceForbidden  = "IMAGE_SOURCE_FORBIDDEN"
	ErrCodeImageUnavailable      = "IMAGE_UNAVAILABLE"
	ErrCodeExportBlocked         = "EXPORT_BLOCKED"
	ErrCodeInvalidSnapshot       = "INVALID_SNAPSHOT"
	ErrCodeInvalidScene          = "INVALID_SCENE"
	ErrCodeDocumentUninitialized = "DOCUMENT_UNINITIALIZED"
	ErrCodeInvalidName           = "INVALID_NAME"
	ErrCodeInvalidMultiplier     = "INVALID_MULTIPLIER"
	ErrCodePDFDisabled           = "PDF_DISABLED"
	ErrCodeRenderTimeout         = "RENDER_TIMEOUT"
	ErrCodeRenderFailed          = "RENDER_FAILED"
	ErrCodeEncodeFailed          = "ENCODE_FAILED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationRange:    http.StatusBadRequest,

	// Resource errors
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeConflict:        http.StatusConflict,
	ErrCodeSessionNotFound: http.StatusNotFound,
	ErrCodeElementNotFound: http.StatusNotFound,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:          http.StatusUnprocessableEntity,
	ErrCodePropertyNotApplicable: http.StatusUnprocessableEntity,
	ErrCodeImageDecodeFailed:     http.StatusUnprocessableEntity,
	ErrCodeImageFetchFailed:      http.StatusUnprocessableEntity,
	ErrCodeImageSourceForbidden:  http.StatusUnprocessableEntity,
	ErrCodeImageUnavailable:      http.StatusUnprocessableEntity,
	ErrCodeExportBlocked:         http.StatusUnprocessableEntity,

	// Session state conflicts -> 409 Conflict
	ErrCodeNothingSelected:       http.StatusConflict,
	ErrCodeDocumentUninitialized: http.StatusConflict,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:           http.StatusBadRequest,
	ErrCodeInvalidInput:         http.StatusBadRequest,
	ErrCodeInvalidJSON:          http.StatusBadRequest,
	ErrCodeInvalidPropertyValue: http.StatusBadRequest,
	ErrCodeUnknownDimension:     http.StatusBadRequest,
	ErrCodeInvalidDimension:     http.StatusBadRequest,
	ErrCodeInvalidSnapshot:      http.StatusBadRequest,
	ErrCodeInvalidScene:         http.StatusBadRequest,
	ErrCodeInvalidName:          http.StatusBadRequest,
	ErrCodeInvalidMultiplier:    http.StatusBadRequest,

	// Size limits -> 413 Payload Too Large
	ErrCodePayloadTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeImageTooLarge:   http.StatusRequestEntityTooLarge,

	// Disabled features -> 501 Not Implemented
	ErrCodePDFDisabled: http.StatusNotImplemented,

	// Rendering
	ErrCodeRenderTimeout: http.StatusGatewayTimeout,
	ErrCodeRenderFailed:  http.StatusInternalServerError,
	ErrCodeEncodeFailed:  http.StatusInternalServerError,
	ErrCodeTimeout:       http.StatusGatewayTimeout,

	// Rate limiting -> 429 Too Many Requests
	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps the generic shared domain codes to the
// standardized transport codes
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":        ErrCodeNotFound,
	"INVALID_INPUT":    ErrCodeInvalidInput,
	"INVALID_STATE":    ErrCodeInvalidState,
	"VALIDATION_ERROR": ErrCodeValidation,
	"BAD_REQUEST":      ErrCodeBadRequest,
	"INTERNAL_ERROR":   ErrCodeInternal,
}

// NormalizeErrorCode converts a legacy error code to the standardized format
// If the code is already in the new format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
