package dto

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeUnknown, http.StatusInternalServerError},
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeValidationRequired, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeConflict, http.StatusConflict},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{ErrCodeSessionNotFound, http.StatusNotFound},
		{ErrCodeElementNotFound, http.StatusNotFound},
		{ErrCodePropertyNotApplicable, http.StatusUnprocessableEntity},
		{ErrCodeInvalidPropertyValue, http.StatusBadRequest},
		{ErrCodeNothingSelected, http.StatusConflict},
		{ErrCodeUnknownDimension, http.StatusBadRequest},
		{ErrCodeImageDecodeFailed, http.StatusUnprocessableEntity},
		{ErrCodeImageTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeImageSourceForbidden, http.StatusUnprocessableEntity},
		{ErrCodeExportBlocked, http.StatusUnprocessableEntity},
		{ErrCodePDFDisabled, http.StatusNotImplemented},
		{ErrCodeRenderTimeout, http.StatusGatewayTimeout},
		{ErrCodeInvalidMultiplier, http.StatusBadRequest},
		// Unknown code should return 500
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// Shared domain codes are normalized
		{"NOT_FOUND", ErrCodeNotFound},
		{"INVALID_INPUT", ErrCodeInvalidInput},
		{"INVALID_STATE", ErrCodeInvalidState},
		{"VALIDATION_ERROR", ErrCodeValidation},
		{"BAD_REQUEST", ErrCodeBadRequest},
		{"INTERNAL_ERROR", ErrCodeInternal},
		// New codes should pass through unchanged
		{ErrCodeNotFound, ErrCodeNotFound},
		{ErrCodeValidation, ErrCodeValidation},
		// Designer codes keep their domain spelling
		{"ELEMENT_NOT_FOUND", ErrCodeElementNotFound},
		{"EXPORT_BLOCKED", ErrCodeExportBlocked},
		{"CUSTOM_ERROR", "CUSTOM_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestErrorCodeConstants(t *testing.T) {
	// Ensure all error codes are in the HTTP status map
	allCodes := []string{
		ErrCodeUnknown,
		ErrCodeInternal,
		ErrCodeValidation,
		ErrCodeValidationRequired,
		ErrCodeValidationFormat,
		ErrCodeValidationRange,
		ErrCodeNotFound,
		ErrCodeConflict,
		ErrCodeInvalidState,
		ErrCodeBadRequest,
		ErrCodeInvalidInput,
		ErrCodeInvalidJSON,
		ErrCodePayloadTooLarge,
		ErrCodeRateLimited,
		ErrCodeTimeout,
		ErrCodeSessionNotFound,
		ErrCodeElementNotFound,
		ErrCodePropertyNotApplicable,
		ErrCodeInvalidPropertyValue,
		ErrCodeNothingSelected,
		ErrCodeUnknownDimension,
		ErrCodeInvalidDimension,
		ErrCodeImageDecodeFailed,
		ErrCodeImageFetchFailed,
		ErrCodeImageTooLarge,
		ErrCodeImageSourceForbidden,
		ErrCodeImageUnavailable,
		ErrCodeExportBlocked,
		ErrCodeInvalidSnapshot,
		ErrCodeInvalidScene,
		ErrCodeDocumentUninitialized,
		ErrCodeInvalidName,
		ErrCodeInvalidMultiplier,
		ErrCodePDFDisabled,
		ErrCodeRenderTimeout,
		ErrCodeRenderFailed,
		ErrCodeEncodeFailed,
	}

	for _, code := range allCodes {
		t.Run(code, func(t *testing.T) {
			status, ok := ErrorCodeHTTPStatus[code]
			assert.True(t, ok, "Error code %s should be in ErrorCodeHTTPStatus map", code)
			assert.Greater(t, status, 0, "Status code should be positive")
		})
	}
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse("NOT_FOUND", "Resource not found")

	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	assert.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code) // Should be normalized
	assert.Equal(t, "Resource not found", resp.Error.Message)
	assert.NotZero(t, resp.Error.Timestamp)
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	requestID := "req-123-456"
	resp := NewErrorResponseWithRequestID(ErrCodeSessionNotFound, "session not found", requestID)

	assert.False(t, resp.Success)
	assert.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeSessionNotFound, resp.Error.Code)
	assert.Equal(t, "session not found", resp.Error.Message)
	assert.Equal(t, requestID, resp.Error.RequestID)
	assert.NotZero(t, resp.Error.Timestamp)
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "dimension", Message: "dimension must be a known card size"},
		{Field: "kind", Message: "kind must be one of: TEXT TEXTBOX"},
	}
	requestID := "req-789"

	resp := NewValidationErrorResponse("Validation failed", requestID, details)

	assert.False(t, resp.Success)
	assert.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "Validation failed", resp.Error.Message)
	assert.Equal(t, requestID, resp.Error.RequestID)
	assert.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "dimension", resp.Error.Details[0].Field)
}

func TestNewErrorResponseWithHelp(t *testing.T) {
	help := "trusted hosts are configured under designer.trusted_image_hosts"
	resp := NewErrorResponseWithHelp(ErrCodeExportBlocked, "export blocked", "req-001", help)

	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeExportBlocked, resp.Error.Code)
	assert.Equal(t, help, resp.Error.Help)
}

func TestErrorResponseJSON(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeElementNotFound, "element not found", "req-test-123")

	data, err := json.Marshal(resp)
	assert.NoError(t, err)

	var decoded Response
	err = json.Unmarshal(data, &decoded)
	assert.NoError(t, err)

	assert.False(t, decoded.Success)
	assert.NotNil(t, decoded.Error)
	assert.Equal(t, ErrCodeElementNotFound, decoded.Error.Code)
	assert.Equal(t, "req-test-123", decoded.Error.RequestID)
}

func TestErrorResponseTimestamp(t *testing.T) {
	before := time.Now()
	resp := NewErrorResponse(ErrCodeInternal, "Server error")
	after := time.Now()

	assert.True(t, !resp.Error.Timestamp.Before(before), "Timestamp should not be before call")
	assert.True(t, !resp.Error.Timestamp.After(after), "Timestamp should not be after call")
}

func TestNewSuccessResponseWithMetaPagination(t *testing.T) {
	tests := []struct {
		total         int64
		page          int
		pageSize      int
		expectedPages int
		expectedSize  int
	}{
		{100, 1, 10, 10, 10},
		{101, 1, 10, 11, 10},
		{0, 1, 10, 0, 10},
		{9, 1, 10, 1, 10},
		{11, 1, 10, 2, 10},
		// Zero pageSize defaults to 20
		{100, 1, 0, 5, 20},
		{100, 1, -1, 5, 20},
	}

	for _, tt := range tests {
		resp := NewSuccessResponseWithMeta(nil, tt.total, tt.page, tt.pageSize)
		assert.Equal(t, tt.expectedPages, resp.Meta.TotalPages)
		assert.Equal(t, tt.expectedSize, resp.Meta.PageSize)
	}
}
