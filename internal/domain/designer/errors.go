package designer

import "github.com/fulluproar/backoffice/internal/domain/shared"

// Designer error codes
const (
	CodeElementNotFound       = "ELEMENT_NOT_FOUND"
	CodePropertyNotApplicable = "PROPERTY_NOT_APPLICABLE"
	CodeInvalidPropertyValue  = "INVALID_PROPERTY_VALUE"
	CodeNothingSelected       = "NOTHING_SELECTED"
	CodeUnknownDimension      = "UNKNOWN_DIMENSION"
	CodeInvalidDimension      = "INVALID_DIMENSION"
	CodeImageDecodeFailed     = "IMAGE_DECODE_FAILED"
	CodeExportBlocked         = "EXPORT_BLOCKED"
	CodeInvalidSnapshot       = "INVALID_SNAPSHOT"
	CodeDocumentUninitialized = "DOCUMENT_UNINITIALIZED"
)

var (
	ErrElementNotFound       = shared.NewDomainError(CodeElementNotFound, "element not found")
	ErrPropertyNotApplicable = shared.NewDomainError(CodePropertyNotApplicable, "property not applicable")
	ErrInvalidPropertyValue  = shared.NewDomainError(CodeInvalidPropertyValue, "invalid property value")
	ErrNothingSelected       = shared.NewDomainError(CodeNothingSelected, "no element is selected")
	ErrUnknownDimension      = shared.NewDomainError(CodeUnknownDimension, "unknown dimension preset")
	ErrInvalidDimension      = shared.NewDomainError(CodeInvalidDimension, "dimension width and height must be positive")
	ErrImageDecode           = shared.NewDomainError(CodeImageDecodeFailed, "image could not be decoded")
	ErrExportBlocked         = shared.NewDomainError(CodeExportBlocked, "export blocked: untrusted image source")
	ErrInvalidSnapshot       = shared.NewDomainError(CodeInvalidSnapshot, "scene snapshot is invalid")
	ErrDocumentUninitialized = shared.NewDomainError(CodeDocumentUninitialized, "document has not been initialized")
)
