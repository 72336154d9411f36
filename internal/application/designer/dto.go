package designer

import (
	"time"

	"github.com/fulluproar/backoffice/internal/domain/designer"
	"github.com/fulluproar/backoffice/internal/infrastructure/fonts"
	"github.com/google/uuid"
)

// =============================================================================
// Request DTOs
// =============================================================================

// CreateSessionRequest opens a session. An empty dimension uses the default.
type CreateSessionRequest struct {
	Dimension string `json:"dimension"`
}

// ChangeDimensionRequest switches the canvas to another preset
type ChangeDimensionRequest struct {
	Dimension string `json:"dimension" binding:"required"`
}

// AddTextRequest inserts a text element or text box
type AddTextRequest struct {
	Kind    string  `json:"kind" binding:"required,oneof=TEXT TEXTBOX"`
	Content *string `json:"content"`
}

// ImageInput is an image given either as uploaded bytes or as a URL
type ImageInput struct {
	Data     []byte
	URL      string
	FileName string
}

// StyleRequest sets one property through the generic setter
type StyleRequest struct {
	Property string `json:"property" binding:"required"`
	Value    any    `json:"value"`
}

// ReorderRequest moves an element one step in the paint order
type ReorderRequest struct {
	Direction string `json:"direction" binding:"required,oneof=FORWARD BACKWARD"`
}

// SelectRequest selects an element
type SelectRequest struct {
	ElementID string `json:"element_id" binding:"required"`
}

// LoadFontRequest starts loading a font family
type LoadFontRequest struct {
	Family string `json:"family" binding:"required,min=1,max=100"`
	Wait   bool   `json:"wait"`
}

// SaveTemplateRequest saves the session as a named template
type SaveTemplateRequest struct {
	Name string `json:"name" binding:"max=200"`
}

// =============================================================================
// Response DTOs
// =============================================================================

// DimensionResponse is a catalog entry
type DimensionResponse struct {
	Name         string  `json:"name"`
	DisplayName  string  `json:"display_name"`
	WidthInches  float64 `json:"width_inches"`
	HeightInches float64 `json:"height_inches"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	IsDefault    bool    `json:"is_default"`
}

// FontFamilyResponse describes one font family
type FontFamilyResponse struct {
	Name     string   `json:"name"`
	Source   string   `json:"source"`
	Status   string   `json:"status"`
	Variants []string `json:"variants,omitempty"`
}

// SessionResponse is the full state of a session
type SessionResponse struct {
	ID         uuid.UUID            `json:"id"`
	State      string               `json:"state"`
	Dimension  designer.Dimension   `json:"dimension"`
	Guides     []designer.Guide     `json:"guides"`
	Background *designer.ImageStyle `json:"background,omitempty"`
	Elements   []designer.Element   `json:"elements"`
	SelectedID string               `json:"selected_id,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
	LastActive time.Time            `json:"last_active"`
}

// DimensionChangeResponse reports a dimension change. Discarded counts the
// elements and background that were dropped by the reset.
type DimensionChangeResponse struct {
	Session   SessionResponse `json:"session"`
	Discarded int             `json:"discarded"`
}

// ElementResponse wraps one element
type ElementResponse struct {
	Element designer.Element `json:"element"`
}

// ReorderResponse reports whether the element moved and the resulting order
type ReorderResponse struct {
	Moved bool     `json:"moved"`
	Order []string `json:"order"`
}

// SelectionResponse reports the current selection
type SelectionResponse struct {
	Selected *designer.Element `json:"selected,omitempty"`
}

// BackgroundResponse wraps the background image
type BackgroundResponse struct {
	Background designer.ImageStyle `json:"background"`
}

// LayersResponse is the paint list, bottom first
type LayersResponse struct {
	Layers []designer.Layer `json:"layers"`
}

// ExportResult is an export artifact
type ExportResult struct {
	Format      designer.ExportFormat `json:"format"`
	ContentType string                `json:"content_type"`
	Data        []byte                `json:"-"`
	AssetKey    string                `json:"asset_key,omitempty"`
	DownloadURL string                `json:"download_url,omitempty"`
	Width       int                   `json:"width,omitempty"`
	Height      int                   `json:"height,omitempty"`
	Multiplier  float64               `json:"multiplier,omitempty"`
}

// TemplateSummary is a template list entry
type TemplateSummary struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Dimension    string    `json:"dimension"`
	ElementCount int       `json:"element_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// TemplateListFilter narrows and pages a template listing. A zero
// PageSize returns every match.
type TemplateListFilter struct {
	Dimension string
	Page      int
	PageSize  int
}

// bounds returns the half-open range of the requested page within total
func (f TemplateListFilter) bounds(total int) (start, end int) {
	if f.PageSize < 1 {
		return 0, total
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	start = min((page-1)*f.PageSize, total)
	end = min(start+f.PageSize, total)
	return start, end
}

// TemplateResponse is a template with its snapshot
type TemplateResponse struct {
	TemplateSummary
	Snapshot designer.SceneSnapshot `json:"snapshot"`
}

// =============================================================================
// Converters
// =============================================================================

func toDimensionResponse(d designer.Dimension, defaultPreset designer.DimensionPreset) DimensionResponse {
	w, h := d.Name.Inches()
	return DimensionResponse{
		Name:         string(d.Name),
		DisplayName:  d.Name.DisplayName(),
		WidthInches:  w,
		HeightInches: h,
		Width:        d.Width,
		Height:       d.Height,
		IsDefault:    d.Name == defaultPreset,
	}
}

func toFontFamilyResponse(f fonts.FamilyInfo) FontFamilyResponse {
	return FontFamilyResponse{
		Name:     f.Name,
		Source:   string(f.Source),
		Status:   string(f.Status),
		Variants: f.Variants,
	}
}

// toSessionResponse reads the session; the caller holds its lock
func toSessionResponse(s *Session) SessionResponse {
	resp := SessionResponse{
		ID:         s.ID,
		State:      s.doc.State().String(),
		Dimension:  s.doc.Dimension(),
		Guides:     s.doc.Guides(),
		Elements:   s.doc.Elements(),
		SelectedID: s.selection.SelectedID(),
		CreatedAt:  s.CreatedAt,
		LastActive: s.lastActive,
	}
	if bg, ok := s.doc.Background(); ok {
		resp.Background = &bg
	}
	return resp
}

func toTemplateSummary(t *designer.Template) TemplateSummary {
	return TemplateSummary{
		ID:           t.ID,
		Name:         t.Name,
		Dimension:    string(t.Snapshot.Dimension.Name),
		ElementCount: t.ElementCount(),
		CreatedAt:    t.CreatedAt,
	}
}

func toTemplateResponse(t *designer.Template) TemplateResponse {
	return TemplateResponse{
		TemplateSummary: toTemplateSummary(t),
		Snapshot:        t.Snapshot.Clone(),
	}
}
