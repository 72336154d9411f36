package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fulluproar/backoffice/internal/domain/designer"
	"github.com/fulluproar/backoffice/internal/domain/shared"
	"github.com/fulluproar/backoffice/internal/infrastructure/render"
	"github.com/fulluproar/backoffice/internal/interfaces/http/dto"
	"github.com/fulluproar/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetRequestID(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*gin.Context)
		expectedID string
	}{
		{
			name:       "from context",
			setup:      func(c *gin.Context) { c.Set(middleware.RequestIDKey, "ctx-request-id") },
			expectedID: "ctx-request-id",
		},
		{
			name:       "from header when context empty",
			setup:      func(c *gin.Context) { c.Request.Header.Set(middleware.RequestIDHeader, "header-request-id") },
			expectedID: "header-request-id",
		},
		{
			name:       "empty when not set",
			setup:      func(c *gin.Context) {},
			expectedID: "",
		},
		{
			name: "context takes precedence over header",
			setup: func(c *gin.Context) {
				c.Set(middleware.RequestIDKey, "ctx-id")
				c.Request.Header.Set(middleware.RequestIDHeader, "header-id")
			},
			expectedID: "ctx-id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext()
			tt.setup(c)
			assert.Equal(t, tt.expectedID, getRequestID(c))
		})
	}
}

func TestBaseHandlerSuccessResponses(t *testing.T) {
	h := &BaseHandler{}

	c, w := newTestContext()
	h.Success(c, gin.H{"name": "card"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeResponse(t, w).Success)

	c, w = newTestContext()
	h.Created(c, gin.H{"id": "1"})
	assert.Equal(t, http.StatusCreated, w.Code)

	c, w = newTestContext()
	h.NoContent(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	c, w = newTestContext()
	h.SuccessWithMeta(c, []string{"a"}, 41, 2, 20)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}

func TestBaseHandlerErrorMethods(t *testing.T) {
	tests := []struct {
		name         string
		method       func(*BaseHandler, *gin.Context)
		expectedCode int
		expectedErr  string
	}{
		{"BadRequest", func(h *BaseHandler, c *gin.Context) { h.BadRequest(c, "bad") }, http.StatusBadRequest, dto.ErrCodeBadRequest},
		{"NotFound", func(h *BaseHandler, c *gin.Context) { h.NotFound(c, "missing") }, http.StatusNotFound, dto.ErrCodeNotFound},
		{"UnprocessableEntity", func(h *BaseHandler, c *gin.Context) {
			h.UnprocessableEntity(c, dto.ErrCodeExportBlocked, "blocked")
		}, http.StatusUnprocessableEntity, dto.ErrCodeExportBlocked},
		{"InternalError", func(h *BaseHandler, c *gin.Context) { h.InternalError(c, "boom") }, http.StatusInternalServerError, dto.ErrCodeInternal},
		{"ErrorWithCode", func(h *BaseHandler, c *gin.Context) {
			h.ErrorWithCode(c, dto.ErrCodeNothingSelected, "no selection")
		}, http.StatusConflict, dto.ErrCodeNothingSelected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext()
			c.Set(middleware.RequestIDKey, "req-42")

			tt.method(&BaseHandler{}, c)

			assert.Equal(t, tt.expectedCode, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.expectedErr, resp.Error.Code)
			assert.Equal(t, "req-42", resp.Error.RequestID)
		})
	}
}

func TestBaseHandlerValidationError(t *testing.T) {
	c, w := newTestContext()
	(&BaseHandler{}).ValidationError(c, []dto.ValidationDetail{{Field: "property", Message: "This field is required"}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Len(t, resp.Error.Details, 1)
}

func TestBaseHandlerHandleError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedErr  string
	}{
		{"shared not found", shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"shared invalid input", shared.ErrInvalidInput, http.StatusBadRequest, dto.ErrCodeInvalidInput},
		{"element not found", designer.ErrElementNotFound, http.StatusNotFound, dto.ErrCodeElementNotFound},
		{"property not applicable", designer.ErrPropertyNotApplicable, http.StatusUnprocessableEntity, dto.ErrCodePropertyNotApplicable},
		{"invalid property value", designer.ErrInvalidPropertyValue, http.StatusBadRequest, dto.ErrCodeInvalidPropertyValue},
		{"nothing selected", designer.ErrNothingSelected, http.StatusConflict, dto.ErrCodeNothingSelected},
		{"unknown dimension", designer.ErrUnknownDimension, http.StatusBadRequest, dto.ErrCodeUnknownDimension},
		{"image decode", designer.ErrImageDecode, http.StatusUnprocessableEntity, dto.ErrCodeImageDecodeFailed},
		{"export blocked", designer.ErrExportBlocked, http.StatusUnprocessableEntity, dto.ErrCodeExportBlocked},
		{"wrapped domain error", fmt.Errorf("failed to export: %w", designer.ErrExportBlocked), http.StatusUnprocessableEntity, dto.ErrCodeExportBlocked},
		{"render timeout", render.NewRenderError(render.ErrCodeRenderTimeout, "render timed out", context.DeadlineExceeded), http.StatusGatewayTimeout, dto.ErrCodeRenderTimeout},
		{"invalid multiplier", render.NewRenderError(render.ErrCodeInvalidMultiplier, "multiplier out of range", nil), http.StatusBadRequest, dto.ErrCodeInvalidMultiplier},
		{"render failed", render.NewRenderError(render.ErrCodeRenderFailed, "render failed", errors.New("raster")), http.StatusInternalServerError, dto.ErrCodeRenderFailed},
		{"body too large", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge, dto.ErrCodePayloadTooLarge},
		{"deadline", fmt.Errorf("fetch: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, dto.ErrCodeTimeout},
		{"unknown error", errors.New("disk on fire"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext()
			(&BaseHandler{}).HandleError(c, tt.err)

			assert.Equal(t, tt.expectedCode, w.Code)
			resp := decodeResponse(t, w)
			assert.Equal(t, tt.expectedErr, resp.Error.Code)
		})
	}
}

func TestBaseHandlerHandleError_HidesInternalDetails(t *testing.T) {
	c, w := newTestContext()
	(&BaseHandler{}).HandleError(c, errors.New("dial tcp 10.0.0.3:5432: connection refused"))

	resp := decodeResponse(t, w)
	assert.Equal(t, "An unexpected error occurred", resp.Error.Message)
	assert.NotContains(t, w.Body.String(), "10.0.0.3")
}

func TestBaseHandlerHandleError_Nil(t *testing.T) {
	c, w := newTestContext()
	(&BaseHandler{}).HandleError(c, nil)
	assert.Empty(t, w.Body.String())
}
