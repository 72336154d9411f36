package designer

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/fulluproar/backoffice/internal/domain/designer"
	"github.com/fulluproar/backoffice/internal/domain/shared"
	"github.com/fulluproar/backoffice/internal/infrastructure/fonts"
	"github.com/fulluproar/backoffice/internal/infrastructure/logger"
	"github.com/fulluproar/backoffice/internal/infrastructure/render"
	"github.com/fulluproar/backoffice/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ServiceConfig holds configuration for the designer service
type ServiceConfig struct {
	// DefaultDimension is used when a session is opened without one
	DefaultDimension designer.DimensionPreset
	// ExportMultiplier is used when an export request does not name one
	ExportMultiplier float64
	// MaxImagePixels bounds decoded image size
	MaxImagePixels int
	// DownloadURLExpiry is the lifetime of export download links
	DownloadURLExpiry time.Duration
}

// DefaultServiceConfig returns the default configuration
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		DefaultDimension:  designer.DimensionStandard,
		ExportMultiplier:  designer.DefaultExportMultiplier,
		MaxImagePixels:    render.DefaultMaxImagePixels,
		DownloadURLExpiry: time.Hour,
	}
}

// Dependencies are the collaborators of DesignerService. PDF, Remote,
// Events, Trust, AssetKey, Metrics and Logger are optional.
type Dependencies struct {
	Sessions  *SessionManager
	Templates designer.TemplateRepository
	Assets    AssetStore
	Fonts     FontRegistry
	Raster    RasterRenderer
	PDF       PDFRenderer
	Remote    RemoteImageFetcher
	Events    shared.EventPublisher
	Trust     *render.HostPolicy
	AssetKey  func(prefix string, data []byte) string
	Metrics   *telemetry.DesignerMetrics
	Logger    *zap.Logger
}

// DesignerService runs the card designer use cases over editing sessions
type DesignerService struct {
	config    ServiceConfig
	sessions  *SessionManager
	templates designer.TemplateRepository
	assets    AssetStore
	fonts     FontRegistry
	raster    RasterRenderer
	pdf       PDFRenderer
	remote    RemoteImageFetcher
	events    shared.EventPublisher
	trust     *render.HostPolicy
	assetKey  func(prefix string, data []byte) string
	metrics   *telemetry.DesignerMetrics
	logger    *zap.Logger
}

// NewDesignerService creates a new DesignerService
func NewDesignerService(cfg ServiceConfig, deps Dependencies) *DesignerService {
	defaults := DefaultServiceConfig()
	if !cfg.DefaultDimension.IsValid() {
		cfg.DefaultDimension = defaults.DefaultDimension
	}
	if cfg.ExportMultiplier <= 0 {
		cfg.ExportMultiplier = defaults.ExportMultiplier
	}
	if cfg.MaxImagePixels <= 0 {
		cfg.MaxImagePixels = defaults.MaxImagePixels
	}
	if cfg.DownloadURLExpiry <= 0 {
		cfg.DownloadURLExpiry = defaults.DownloadURLExpiry
	}

	s := &DesignerService{
		config:    cfg,
		sessions:  deps.Sessions,
		templates: deps.Templates,
		assets:    deps.Assets,
		fonts:     deps.Fonts,
		raster:    deps.Raster,
		pdf:       deps.PDF,
		remote:    deps.Remote,
		events:    deps.Events,
		trust:     deps.Trust,
		assetKey:  deps.AssetKey,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.trust == nil {
		s.trust = render.NewHostPolicy(nil)
	}
	if s.assetKey == nil {
		s.assetKey = func(prefix string, _ []byte) string {
			return path.Join(prefix, uuid.NewString())
		}
	}
	if s.sessions == nil {
		s.sessions = NewSessionManager(deps.Fonts, WithSessionMetrics(deps.Metrics))
	}
	return s
}

// Sessions returns the session manager, which the reaper sweeps
func (s *DesignerService) Sessions() *SessionManager {
	return s.sessions
}

// =============================================================================
// Catalog and fonts
// =============================================================================

// Dimensions lists the card size catalog
func (s *DesignerService) Dimensions() []DimensionResponse {
	dims := designer.AllDimensions()
	out := make([]DimensionResponse, len(dims))
	for i, d := range dims {
		out[i] = toDimensionResponse(d, s.config.DefaultDimension)
	}
	return out
}

// Fonts lists the known font families and their load status
func (s *DesignerService) Fonts() []FontFamilyResponse {
	if s.fonts == nil {
		return []FontFamilyResponse{}
	}
	families := s.fonts.Families()
	out := make([]FontFamilyResponse, len(families))
	for i, f := range families {
		out[i] = toFontFamilyResponse(f)
	}
	return out
}

// LoadFont starts loading a family. With Wait set it blocks until the
// attempt finishes or ctx is done. The family status is returned either way;
// a failed load is not an error since rendering falls back silently.
func (s *DesignerService) LoadFont(ctx context.Context, req LoadFontRequest) (*FontFamilyResponse, error) {
	if s.fonts == nil {
		return nil, shared.ErrInvalidState.WithMessage("font registry is not configured")
	}
	ctx, span := telemetry.StartSpan(ctx, "designer.load_font",
		telemetry.WithAttribute(telemetry.SpanAttrFontFamily, req.Family))
	defer span.End()

	done := s.fonts.EnsureLoaded(req.Family)
	if req.Wait {
		select {
		case <-done:
		case <-ctx.Done():
			telemetry.RecordError(span, ctx.Err())
			return nil, ctx.Err()
		}
	}

	for _, f := range s.fonts.Families() {
		if normalizedEqual(f.Name, req.Family) {
			resp := toFontFamilyResponse(f)
			telemetry.SetOK(span)
			return &resp, nil
		}
	}
	telemetry.SetOK(span)
	return &FontFamilyResponse{Name: req.Family, Status: string(fonts.StatusLoading)}, nil
}

// =============================================================================
// Sessions
// =============================================================================

// CreateSession opens a session initialized with the default title and body
func (s *DesignerService) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionResponse, error) {
	preset := s.config.DefaultDimension
	if req.Dimension != "" {
		preset = designer.DimensionPreset(req.Dimension)
	}
	dim, err := designer.DimensionByPreset(preset)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "designer.create_session",
		telemetry.WithAttribute(telemetry.SpanAttrDimension, string(preset)))
	defer span.End()

	session, err := s.sessions.Create(ctx, dim)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	var resp SessionResponse
	_ = s.sessions.With(session.ID, func(sess *Session) error {
		resp = toSessionResponse(sess)
		return nil
	})

	_, log := logger.WithSessionID(ctx, s.logger, session.ID.String())
	log.Info("designer session opened", zap.String("dimension", string(preset)))
	telemetry.SetAttributes(span, telemetry.SpanAttrSessionID, session.ID.String())
	telemetry.SetOK(span)
	return &resp, nil
}

// GetSession returns the full state of a session
func (s *DesignerService) GetSession(ctx context.Context, id uuid.UUID) (*SessionResponse, error) {
	var resp SessionResponse
	err := s.sessions.With(id, func(sess *Session) error {
		resp = toSessionResponse(sess)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// CloseSession discards a session
func (s *DesignerService) CloseSession(ctx context.Context, id uuid.UUID) error {
	if !s.sessions.Delete(ctx, id) {
		return ErrSessionNotFound
	}
	s.logger.Info("designer session closed", zap.String("session_id", id.String()))
	return nil
}

// ChangeDimension switches the canvas size. The document is reinitialized:
// every element and the background are discarded and the default title and
// body are installed for the new size.
func (s *DesignerService) ChangeDimension(ctx context.Context, id uuid.UUID, req ChangeDimensionRequest) (*DimensionChangeResponse, error) {
	dim, err := designer.DimensionByPreset(designer.DimensionPreset(req.Dimension))
	if err != nil {
		return nil, err
	}

	ctx, span := s.sessionSpan(ctx, "designer.change_dimension", id,
		telemetry.WithAttribute(telemetry.SpanAttrDimension, req.Dimension))
	defer span.End()

	var resp DimensionChangeResponse
	err = s.sessions.With(id, func(sess *Session) error {
		discarded := sess.doc.Len()
		if _, ok := sess.doc.Background(); ok {
			discarded++
		}
		done, err := sess.doc.Init(dim)
		if err != nil {
			return err
		}
		<-done
		sess.selection.Deselect()
		resp = DimensionChangeResponse{Session: toSessionResponse(sess), Discarded: discarded}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("canvas dimension changed",
		zap.String("session_id", id.String()),
		zap.String("dimension", req.Dimension),
		zap.Int("discarded", resp.Discarded))
	telemetry.SetOK(span)
	return &resp, nil
}

// =============================================================================
// Elements
// =============================================================================

// AddText inserts a TEXT or TEXTBOX element centered on the canvas. A nil
// content uses the default title or body text.
func (s *DesignerService) AddText(ctx context.Context, id uuid.UUID, req AddTextRequest) (*ElementResponse, error) {
	kind := designer.ElementKind(req.Kind)
	if !kind.IsText() {
		return nil, shared.ErrInvalidInput.WithMessage("kind must be TEXT or TEXTBOX")
	}

	ctx, span := s.sessionSpan(ctx, "designer.add_text", id,
		telemetry.WithAttribute(telemetry.SpanAttrElementKind, req.Kind))
	defer span.End()

	var resp ElementResponse
	err := s.sessions.With(id, func(sess *Session) error {
		dim := sess.doc.Dimension()
		var e designer.Element
		if kind == designer.ElementKindText {
			e = s.sessions.factory.Text(dim, contentOr(req.Content, designer.DefaultTitleContent))
		} else {
			e = s.sessions.factory.TextBox(dim, contentOr(req.Content, designer.DefaultBodyContent))
		}
		elementID, err := sess.doc.AddElement(e)
		if err != nil {
			return err
		}
		resp.Element, _ = sess.doc.Element(elementID)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.ElementAdded(ctx, req.Kind)
	telemetry.SetAttributes(span, telemetry.SpanAttrElementID, resp.Element.ID)
	telemetry.SetOK(span)
	return &resp, nil
}

// AddImage inserts a foreground image centered on the canvas at half of the
// largest scale that fits. The image is decoded and stored before the
// session is touched, so a bad image leaves the document unchanged.
func (s *DesignerService) AddImage(ctx context.Context, id uuid.UUID, in ImageInput) (*ElementResponse, error) {
	ctx, span := s.sessionSpan(ctx, "designer.add_image", id,
		telemetry.WithAttribute(telemetry.SpanAttrElementKind, string(designer.ElementKindImage)))
	defer span.End()

	img, err := s.ingestImage(ctx, in)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var resp ElementResponse
	err = s.sessions.With(id, func(sess *Session) error {
		e, err := s.sessions.factory.Image(sess.doc.Dimension(), img.ref, img.width, img.height)
		if err != nil {
			return err
		}
		elementID, err := sess.doc.AddElement(e)
		if err != nil {
			return err
		}
		resp.Element, _ = sess.doc.Element(elementID)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.ElementAdded(ctx, string(designer.ElementKindImage))
	telemetry.SetAttributes(span,
		telemetry.SpanAttrElementID, resp.Element.ID,
		telemetry.SpanAttrAssetKey, img.ref.AssetKey)
	telemetry.SetOK(span)
	return &resp, nil
}

// RemoveElement deletes an element
func (s *DesignerService) RemoveElement(ctx context.Context, id uuid.UUID, elementID string) error {
	return s.sessions.With(id, func(sess *Session) error {
		if !sess.doc.RemoveElement(elementID) {
			return designer.ErrElementNotFound.WithMessage("element not found: " + elementID)
		}
		return nil
	})
}

// UpdateElementStyle sets one property on one element. Setting fontFamily
// starts loading the family in the background.
func (s *DesignerService) UpdateElementStyle(ctx context.Context, id uuid.UUID, elementID string, req StyleRequest) (*ElementResponse, error) {
	prop := designer.Property(req.Property)
	ctx, span := s.sessionSpan(ctx, "designer.update_style", id,
		telemetry.WithAttribute(telemetry.SpanAttrElementID, elementID),
		telemetry.WithAttribute(telemetry.SpanAttrProperty, req.Property))
	defer span.End()

	var resp ElementResponse
	err := s.sessions.With(id, func(sess *Session) error {
		if err := sess.doc.UpdateElementStyle(elementID, prop, req.Value); err != nil {
			return err
		}
		resp.Element, _ = sess.doc.Element(elementID)
		return nil
	})
	s.metrics.StyleChanged(ctx, req.Property, err)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if prop == designer.PropertyFontFamily && s.fonts != nil {
		if family, ok := req.Value.(string); ok {
			s.fonts.EnsureLoaded(family)
		}
	}
	telemetry.SetOK(span)
	return &resp, nil
}

// Reorder moves an element one step in the paint order. At either end it is
// a no-op reported as Moved=false.
func (s *DesignerService) Reorder(ctx context.Context, id uuid.UUID, elementID string, req ReorderRequest) (*ReorderResponse, error) {
	var resp ReorderResponse
	err := s.sessions.With(id, func(sess *Session) error {
		moved, err := sess.layers.Reorder(elementID, designer.Direction(req.Direction))
		if err != nil {
			return err
		}
		resp = ReorderResponse{Moved: moved, Order: sess.doc.ElementIDs()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// =============================================================================
// Background
// =============================================================================

// SetBackground installs a cover-scaled background beneath every element,
// replacing any previous one
func (s *DesignerService) SetBackground(ctx context.Context, id uuid.UUID, in ImageInput) (*BackgroundResponse, error) {
	ctx, span := s.sessionSpan(ctx, "designer.set_background", id)
	defer span.End()

	img, err := s.ingestImage(ctx, in)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var resp BackgroundResponse
	err = s.sessions.With(id, func(sess *Session) error {
		bg, err := s.sessions.factory.Background(sess.doc.Dimension(), img.ref, img.width, img.height)
		if err != nil {
			return err
		}
		if err := sess.doc.SetBackground(bg); err != nil {
			return err
		}
		resp.Background = bg
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrAssetKey, img.ref.AssetKey)
	telemetry.SetOK(span)
	return &resp, nil
}

// ClearBackground removes the background image
func (s *DesignerService) ClearBackground(ctx context.Context, id uuid.UUID) error {
	return s.sessions.With(id, func(sess *Session) error {
		if !sess.doc.ClearBackground() {
			return shared.ErrNotFound.WithMessage("session has no background")
		}
		return nil
	})
}

// =============================================================================
// Selection and layers
// =============================================================================

// Select makes an element the current selection
func (s *DesignerService) Select(ctx context.Context, id uuid.UUID, req SelectRequest) (*SelectionResponse, error) {
	var resp SelectionResponse
	err := s.sessions.With(id, func(sess *Session) error {
		if err := sess.selection.Select(req.ElementID); err != nil {
			return err
		}
		resp = selectionResponse(sess)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Deselect clears the selection
func (s *DesignerService) Deselect(ctx context.Context, id uuid.UUID) error {
	return s.sessions.With(id, func(sess *Session) error {
		sess.selection.Deselect()
		return nil
	})
}

// ApplySelectionStyle sets a property on the selected element
func (s *DesignerService) ApplySelectionStyle(ctx context.Context, id uuid.UUID, req StyleRequest) (*SelectionResponse, error) {
	ctx, span := s.sessionSpan(ctx, "designer.apply_selection_style", id,
		telemetry.WithAttribute(telemetry.SpanAttrProperty, req.Property))
	defer span.End()

	var resp SelectionResponse
	err := s.sessions.With(id, func(sess *Session) error {
		if err := sess.selection.Apply(designer.Property(req.Property), req.Value); err != nil {
			return err
		}
		resp = selectionResponse(sess)
		return nil
	})
	s.metrics.StyleChanged(ctx, req.Property, err)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetOK(span)
	return &resp, nil
}

// Layers returns the paint list, background first
func (s *DesignerService) Layers(ctx context.Context, id uuid.UUID) (*LayersResponse, error) {
	var resp LayersResponse
	err := s.sessions.With(id, func(sess *Session) error {
		resp.Layers = sess.layers.PaintOrder()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Reap closes sessions idle since before cutoff
func (s *DesignerService) Reap(ctx context.Context, cutoff time.Time) int {
	return s.sessions.Reap(ctx, cutoff)
}

// =============================================================================
// Helpers
// =============================================================================

func (s *DesignerService) sessionSpan(ctx context.Context, name string, id uuid.UUID, opts ...telemetry.SpanOption) (context.Context, trace.Span) {
	opts = append(opts, telemetry.WithAttribute(telemetry.SpanAttrSessionID, id.String()))
	return telemetry.StartSpan(ctx, name, opts...)
}

func (s *DesignerService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish designer events", zap.Error(err))
	}
}

func selectionResponse(sess *Session) SelectionResponse {
	if e, ok := sess.selection.Selected(); ok {
		return SelectionResponse{Selected: &e}
	}
	return SelectionResponse{}
}

func contentOr(content *string, fallback string) string {
	if content == nil {
		return fallback
	}
	return *content
}

// normalizedEqual compares family names ignoring case and extra whitespace
func normalizedEqual(a, b string) bool {
	return strings.EqualFold(strings.Join(strings.Fields(a), " "), strings.Join(strings.Fields(b), " "))
}

// isNotFound reports whether err is a repository miss
func isNotFound(err error) bool {
	return errors.Is(err, shared.ErrNotFound)
}
