package designer

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestExportFormat(t *testing.T) {
	tests := []struct {
		format      ExportFormat
		contentType string
		ext         string
	}{
		{ExportFormatPNG, "image/png", "png"},
		{ExportFormatPDF, "application/pdf", "pdf"},
		{ExportFormatSceneJSON, "application/json", "json"},
		{ExportFormatSceneYAML, "application/yaml", "yaml"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			assert.True(t, tt.format.IsValid())
			assert.Equal(t, tt.contentType, tt.format.ContentType())
			assert.Equal(t, tt.ext, tt.format.Extension())
		})
	}
	assert.False(t, ExportFormat("GIF").IsValid())
}

func TestNewCardExportedEvent(t *testing.T) {
	sessionID := uuid.New()
	event := NewCardExportedEvent(sessionID, ExportFormatPNG, "exports/abc", 2048)

	assert.Equal(t, ExportFormatPNG, event.Format)
	assert.Equal(t, "exports/abc", event.AssetKey)
	assert.Equal(t, 2048, event.Size)
	assert.Equal(t, sessionID, event.AggregateID())
}
