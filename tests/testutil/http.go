package testutil

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// Envelope is the standard API response body
type Envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
	Meta *struct {
		Total    int64 `json:"total"`
		Page     int   `json:"page"`
		PageSize int   `json:"page_size"`
	} `json:"meta,omitempty"`
}

// APIClient sends requests straight into a gin engine
type APIClient struct {
	t      *testing.T
	engine *gin.Engine
	base   string
}

// NewAPIClient creates a client whose paths are relative to base
func NewAPIClient(t *testing.T, engine *gin.Engine, base string) *APIClient {
	return &APIClient{t: t, engine: engine, base: base}
}

// JSON sends body encoded as JSON; a nil body sends no content
func (c *APIClient) JSON(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(c.t, err, "Failed to marshal request body")
	}
	req := httptest.NewRequest(method, c.base+path, bytes.NewReader(raw))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.serve(req)
}

// Upload sends data as the multipart form file "file"
func (c *APIClient) Upload(method, path, fileName string, data []byte) *httptest.ResponseRecorder {
	c.t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", fileName)
	require.NoError(c.t, err)
	_, err = part.Write(data)
	require.NoError(c.t, err)
	require.NoError(c.t, mw.Close())

	req := httptest.NewRequest(method, c.base+path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.serve(req)
}

func (c *APIClient) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c.engine.ServeHTTP(w, req)
	return w
}

// DecodeData asserts a successful envelope and returns its data
func DecodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var env Envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "Failed to parse JSON response")
	require.True(t, env.Success, w.Body.String())
	return env.Data
}

// ErrorCode asserts a failed envelope and returns its error code
func ErrorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var env Envelope[json.RawMessage]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "Failed to parse JSON response")
	require.False(t, env.Success, w.Body.String())
	require.NotNil(t, env.Error, "Expected error object in response")
	return env.Error.Code
}

// SolidPNG encodes a w x h image of one colour
func SolidPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
