package designer

import (
	"github.com/fulluproar/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constants
const (
	AggregateTypeTemplate      = "CardTemplate"
	AggregateTypeCanvasSession = "CanvasSession"
)

// Event type constants
const (
	EventTypeTemplateSaved = "CardTemplateSaved"
	EventTypeCardExported  = "CardExported"
)

// ExportFormat is the kind of artifact an export produced
type ExportFormat string

const (
	ExportFormatPNG       ExportFormat = "PNG"
	ExportFormatPDF       ExportFormat = "PDF"
	ExportFormatSceneJSON ExportFormat = "SCENE_JSON"
	ExportFormatSceneYAML ExportFormat = "SCENE_YAML"
)

// IsValid checks if the ExportFormat is a valid value
func (f ExportFormat) IsValid() bool {
	switch f {
	case ExportFormatPNG, ExportFormatPDF, ExportFormatSceneJSON, ExportFormatSceneYAML:
		return true
	}
	return false
}

// ContentType returns the MIME type of the artifact
func (f ExportFormat) ContentType() string {
	switch f {
	case ExportFormatPNG:
		return "image/png"
	case ExportFormatPDF:
		return "application/pdf"
	case ExportFormatSceneYAML:
		return "application/yaml"
	default:
		return "application/json"
	}
}

// Extension returns the file extension of the artifact, without the dot
func (f ExportFormat) Extension() string {
	switch f {
	case ExportFormatPNG:
		return "png"
	case ExportFormatPDF:
		return "pdf"
	case ExportFormatSceneYAML:
		return "yaml"
	default:
		return "json"
	}
}

// TemplateSavedEvent is published when a template is appended to the store.
// The card catalog consumes it to pick up new designs.
type TemplateSavedEvent struct {
	shared.BaseDomainEvent
	TemplateID   uuid.UUID       `json:"template_id"`
	Name         string          `json:"name"`
	Dimension    DimensionPreset `json:"dimension"`
	ElementCount int             `json:"element_count"`
}

// NewTemplateSavedEvent creates a new TemplateSavedEvent
func NewTemplateSavedEvent(t *Template) *TemplateSavedEvent {
	return &TemplateSavedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeTemplateSaved,
			AggregateTypeTemplate,
			t.ID,
		),
		TemplateID:   t.ID,
		Name:         t.Name,
		Dimension:    t.Snapshot.Dimension.Name,
		ElementCount: len(t.Snapshot.Elements),
	}
}

// CardExportedEvent is published when a session produces an export artifact.
// AssetKey locates the stored bytes.
type CardExportedEvent struct {
	shared.BaseDomainEvent
	SessionID  uuid.UUID    `json:"session_id"`
	Format     ExportFormat `json:"format"`
	AssetKey   string       `json:"asset_key"`
	Width      int          `json:"width,omitempty"`
	Height     int          `json:"height,omitempty"`
	Multiplier float64      `json:"multiplier,omitempty"`
	Size       int          `json:"size"`
}

// NewCardExportedEvent creates a new CardExportedEvent
func NewCardExportedEvent(sessionID uuid.UUID, format ExportFormat, assetKey string, size int) *CardExportedEvent {
	return &CardExportedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeCardExported,
			AggregateTypeCanvasSession,
			sessionID,
		),
		SessionID: sessionID,
		Format:    format,
		AssetKey:  assetKey,
		Size:      size,
	}
}
