package designer

import "github.com/fulluproar/backoffice/internal/domain/shared"

// Application error codes
const (
	CodeSessionNotFound = "SESSION_NOT_FOUND"
	CodePDFDisabled     = "PDF_DISABLED"
)

var (
	// ErrSessionNotFound is returned for unknown or reaped sessions
	ErrSessionNotFound = shared.NewDomainError(CodeSessionNotFound, "session not found")
	// ErrPDFDisabled is returned when no PDF renderer is configured
	ErrPDFDisabled = shared.NewDomainError(CodePDFDisabled, "PDF export is not enabled")
	// ErrTemplateNotFound is returned for unknown template ids
	ErrTemplateNotFound = shared.ErrNotFound.WithMessage("template not found")
)
