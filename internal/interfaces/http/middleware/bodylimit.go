package middleware

import (
	"net/http"
	"strings"

	"github.com/fulluproar/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// BodyLimit returns a middleware that limits request body size. Uploaded
// images are read through the limited reader, so chunked bodies are bounded too.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return BodyLimitFunc(func(*gin.Context) int64 { return maxBytes })
}

// UploadBodyLimit applies uploadBytes to multipart requests and jsonBytes to
// everything else
func UploadBodyLimit(jsonBytes, uploadBytes int64) gin.HandlerFunc {
	return BodyLimitFunc(func(c *gin.Context) int64 {
		if strings.HasPrefix(c.ContentType(), "multipart/") {
			return uploadBytes
		}
		return jsonBytes
	})
}

// BodyLimitFunc limits each request to the size returned by limit
func BodyLimitFunc(limit func(c *gin.Context) int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		maxBytes := limit(c)
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				dto.ErrCodePayloadTooLarge,
				"Request body exceeds maximum allowed size",
				GetRequestID(c),
			))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
