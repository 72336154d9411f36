package render

// RenderError represents an error while producing an export artifact
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout     = "RENDER_TIMEOUT"
	ErrCodeRenderFailed      = "RENDER_FAILED"
	ErrCodeImageUnavailable  = "IMAGE_UNAVAILABLE"
	ErrCodeInvalidMultiplier = "INVALID_MULTIPLIER"
	ErrCodeInvalidScene      = "INVALID_SCENE"
	ErrCodePDFDisabled       = "PDF_DISABLED"
	ErrCodeEncodeFailed      = "ENCODE_FAILED"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
