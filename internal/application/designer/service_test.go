package designer_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	designerapp "github.com/fulluproar/backoffice/internal/application/designer"
	"github.com/fulluproar/backoffice/internal/domain/designer"
	"github.com/fulluproar/backoffice/internal/domain/shared"
	"github.com/fulluproar/backoffice/internal/infrastructure/fonts"
	"github.com/fulluproar/backoffice/internal/infrastructure/persistence"
	"github.com/fulluproar/backoffice/internal/infrastructure/render"
	"github.com/fulluproar/backoffice/internal/infrastructure/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// =============================================================================
// Test doubles
// =============================================================================

type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) ofType(eventType string) []shared.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []shared.DomainEvent
	for _, e := range p.events {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

type MockPDFRenderer struct {
	mock.Mock
}

func (m *MockPDFRenderer) Render(ctx context.Context, req render.PDFRequest) (*render.PDF, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*render.PDF), args.Error(1)
}

type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) List(ctx context.Context) ([]designer.Template, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]designer.Template), args.Error(1)
}

func (m *MockTemplateRepository) Append(ctx context.Context, t *designer.Template) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockTemplateRepository) FindByID(ctx context.Context, id uuid.UUID) (*designer.Template, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*designer.Template), args.Error(1)
}

// =============================================================================
// Fixtures
// =============================================================================

type fixture struct {
	svc       *designerapp.DesignerService
	assets    *storage.MemoryAssetStore
	templates *persistence.MemoryTemplateRepository
	events    *recordingPublisher
}

type fixtureOption func(*designerapp.Dependencies)

func withTrustedHosts(hosts ...string) fixtureOption {
	return func(d *designerapp.Dependencies) {
		d.Trust = render.NewHostPolicy(hosts)
	}
}

func withPDF(r designerapp.PDFRenderer) fixtureOption {
	return func(d *designerapp.Dependencies) {
		d.PDF = r
	}
}

func withTemplates(repo designer.TemplateRepository) fixtureOption {
	return func(d *designerapp.Dependencies) {
		d.Templates = repo
	}
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	registry, err := fonts.NewRegistry()
	require.NoError(t, err)
	t.Cleanup(registry.Close)

	f := &fixture{
		assets:    storage.NewMemoryAssetStore(),
		templates: persistence.NewMemoryTemplateRepository(),
		events:    &recordingPublisher{},
	}
	deps := designerapp.Dependencies{
		Sessions:  designerapp.NewSessionManager(registry),
		Templates: f.templates,
		Assets:    f.assets,
		Fonts:     registry,
		Raster:    render.NewRasterRenderer(f.assets, registry),
		Remote:    storage.NewRemoteFetcher(5*time.Second, 1<<20, storage.AllowPrivateNetworks()),
		Events:    f.events,
		AssetKey:  storage.AssetKey,
		Logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&deps)
	}
	f.svc = designerapp.NewDesignerService(designerapp.DefaultServiceConfig(), deps)
	return f
}

func (f *fixture) session(t *testing.T, preset designer.DimensionPreset) *designerapp.SessionResponse {
	t.Helper()
	s, err := f.svc.CreateSession(context.Background(), designerapp.CreateSessionRequest{Dimension: string(preset)})
	require.NoError(t, err)
	return s
}

func solidPNG(t *testing.T, w, h int, c color.Color) []byte {
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

// noisyPNG compresses poorly, so truncating it cuts into the pixel data
// while leaving the header intact
func noisyPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	rng := rand.New(rand.NewSource(7))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	_, _ = rng.Read(img.Pix)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func imageServer(t *testing.T, data []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func strPtr(s string) *string { return &s }

// =============================================================================
// Catalog and sessions
// =============================================================================

func TestDimensions_MarksDefault(t *testing.T) {
	f := newFixture(t)
	dims := f.svc.Dimensions()
	require.Len(t, dims, len(designer.AllDimensionPresets()))

	defaults := 0
	for _, d := range dims {
		if d.IsDefault {
			defaults++
			assert.Equal(t, string(designer.DimensionStandard), d.Name)
			assert.Equal(t, 198.0, d.Width)
			assert.Equal(t, 270.0, d.Height)
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestCreateSession(t *testing.T) {
	f := newFixture(t)

	t.Run("default dimension and content", func(t *testing.T) {
		s, err := f.svc.CreateSession(context.Background(), designerapp.CreateSessionRequest{})
		require.NoError(t, err)
		assert.Equal(t, designer.DimensionStandard, s.Dimension.Name)
		assert.Equal(t, string(designer.DocumentStateInitialized), s.State)
		require.Len(t, s.Elements, 2)
		assert.Equal(t, designer.DefaultTitleContent, s.Elements[0].Text.Content)
		assert.Equal(t, designer.DefaultBodyContent, s.Elements[1].Text.Content)
		assert.Len(t, s.Guides, 2)
		assert.Nil(t, s.Background)
	})

	t.Run("unknown dimension", func(t *testing.T) {
		_, err := f.svc.CreateSession(context.Background(), designerapp.CreateSessionRequest{Dimension: "BUSINESS"})
		assert.ErrorIs(t, err, designer.ErrUnknownDimension)
	})
}

func TestSessionNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	missing := uuid.New()

	_, err := f.svc.GetSession(ctx, missing)
	assert.ErrorIs(t, err, designerapp.ErrSessionNotFound)
	_, err = f.svc.AddText(ctx, missing, designerapp.AddTextRequest{Kind: "TEXT"})
	assert.ErrorIs(t, err, designerapp.ErrSessionNotFound)
	_, err = f.svc.ExportRaster(ctx, missing, 0)
	assert.ErrorIs(t, err, designerapp.ErrSessionNotFound)
	assert.ErrorIs(t, f.svc.CloseSession(ctx, missing), designerapp.ErrSessionNotFound)
}

func TestCloseSession(t *testing.T) {
	f := newFixture(t)
	s := f.session(t, designer.DimensionPoker)

	require.NoError(t, f.svc.CloseSession(context.Background(), s.ID))
	_, err := f.svc.GetSession(context.Background(), s.ID)
	assert.ErrorIs(t, err, designerapp.ErrSessionNotFound)
}

func TestChangeDimension_ResetsContent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.session(t, designer.DimensionStandard)

	_, err := f.svc.AddText(ctx, s.ID, designerapp.AddTextRequest{Kind: "TEXT", Content: strPtr("extra")})
	require.NoError(t, err)
	_, err = f.svc.SetBackground(ctx, s.ID, designerapp.ImageInput{Data: solidPNG(t, 10, 10, color.White)})
	require.NoError(t, err)

	resp, err := f.svc.ChangeDimension(ctx, s.ID, designerapp.ChangeDimensionRequest{Dimension: "SQUARE"})
	require.NoError(t, err)

	assert.Equal(t, 4, resp.Discarded)
	assert.Equal(t, designer.DimensionSquare, resp.Session.Dimension.Name)
	assert.Nil(t, resp.Session.Background)
	require.Len(t, resp.Session.Elements, 2)
	assert.Equal(t, designer.Point{X: 126, Y: 126}, resp.Session.Elements[1].Position)
	assert.Equal(t, string(designer.DocumentStateInitialized), resp.Session.State)
}

// =============================================================================
// Elements
// =============================================================================

func TestAddText(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.session(t, designer.DimensionStandard)

	tests := []struct {
		name    string
		req     designerapp.AddTextRequest
		kind    designer.ElementKind
		content string
	}{
		{"text with default content", designerapp.AddTextRequest{Kind: "TEXT"}, designer.ElementKindText, designer.DefaultTitleContent},
		{"textbox with default content", designerapp.AddTextRequest{Kind: "TEXTBOX"}, designer.ElementKindTextBox, designer.DefaultBodyContent},
		{"explicit empty content", designerapp.AddTextRequest{Kind: "TEXT", Content: strPtr("")}, designer.ElementKindText, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := f.svc.AddText(ctx, s.ID, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, resp.Element.Kind)
			assert.Equal(t, tt.content, resp.Element.Text.Content)
			assert.Equal(t, designer.Point{X: 99, Y: 135}, resp.Element.Position)
			assert.NotEmpty(t, resp.Element.ID)
		})
	}

	t.Run("textbox wraps inside margin", func(t *testing.T) {
		resp, err := f.svc.AddText(ctx, s.ID, designerapp.AddTextRequest{Kind: "TEXTBOX"})
		require.NoError(t, err)
		assert.Equal(t, 198.0-designer.TextBoxMargin, resp.Element.Text.WrapWidth)
	})

	t.Run("image kind rejected", func(t *testing.T) {
		_, err := f.svc.AddText(ctx, s.ID, designerapp.AddTextRequest{Kind: "IMAGE"})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestAddImage_ForegroundPlacement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.session(t, designer.DimensionStandard)

	resp, err := f.svc.AddImage(ctx, s.ID, designerapp.ImageInput{Data: solidPNG(t, 400, 300, color.Black), FileName: "logo.png"})
	require.NoError(t, err)

	e := resp.Element
	require.NotNil(t, e.Image)
	assert.InDelta(t, 0.2475, e.Image.Scale, 1e-9)
	w, h := e.Image.RenderedSize()
	assert.InDelta(t, 99.0, w, 1e-9)
	assert.InDelta(t, 74.25, h, 1e-9)
	assert.Equal(t, designer.Point{X: 99, Y: 135}, e.Position)
	assert.Equal(t, designer.CenterAnchor(), e.Anchor)
	assert.Equal(t, designer.ImageOriginUpload, e.Image.Source.Origin)
	assert.Equal(t, "image/png", e.Image.Source.ContentType)

	ok, err := f.assets.Exists(ctx, e.Image.Source.AssetKey)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAddImage_DecodeFailureLeavesDocumentUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.session(t, designer.DimensionStandard)

	_, err := f.svc.AddImage(ctx, s.ID, designerapp.ImageInput{Data: []byte("not an image at all")})
	assert.ErrorIs(t, err, designer.ErrImageDecode)

	_, err = f.svc.AddImage(ctx, s.ID, designerapp.ImageInput{})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	got, err := f.svc.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Len(t, got.Elements, 2)
	assert.Equal(t, 0, f.assets.Len())
}

func TestIngest_CorruptPixelDataLeavesDocumentUnchanged(t *testing.T) {
	data := noisyPNG(t, 64, 64)
	truncated := data[:len(data)/2]
	_, err := png.DecodeConfig(bytes.NewReader(truncated))
	require.NoError(t, err, "header must survive truncation")

	tests := []struct {
		name   string
		ingest func(*designerapp.DesignerService, context.Context, uuid.UUID) error
	}{
		{name: "add image", ingest: func(svc *designerapp.DesignerService, ctx context.Context, id uuid.UUID) error {
			_, err := svc.AddImage(ctx, id, designerapp.ImageInput{Data: truncated, FileName: "broken.png"})
			return err
		}},
		{name: "set background", ingest: func(svc *designerapp.DesignerService, ctx context.Context, id uuid.UUID) error {
			_, err := svc.SetBackground(ctx, id, designerapp.ImageInput{Data: truncated})
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			s := f.session(t, designer.DimensionStandard)

			assert.ErrorIs(t, tt.ingest(f.svc, ctx, s.ID), designer.ErrImageDecode)

			got, err := f.svc.GetSession(ctx, s.ID)
			require.NoError(t, err)
			assert.Len(t, got.Elements, 2)
			assert.Nil(t, got.Background)
			assert.Equal(t, 0, f.assets.Len())
		})
	}
}

func TestAddImage_PrivateRemoteAddressRejected(t *testing.T) {
	f := newFixture(t, func(d *designerapp.Dependencies) {
		d.Remote = storage.NewRemoteFetcher(time.Second, 1<<20)
	})
	ctx := context.Background()
	s := f.session(t, designer.DimensionStandard)
	srv := imageServer(t, solidPNG(t, 10, 10, color.Black))

	for _, u := range []string{srv.URL + "/logo.png", "http://169.254.169.254/latest/meta-data/"} {
		_, err := f.svc.AddImage(ctx, s.ID, designerapp.ImageInput{URL: u})
		assert.ErrorIs(t, err, storage.ErrRemoteForbidden, u)
	}

	got, err := f.svc.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Len(t, got.Elements, 2)
	assert.Equal(t, 0, f.assets.Len())
}

func TestSetBackground_Cover(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.session(t, designer.DimensionStandard)

	resp, err := f.svc.SetBackground(ctx, s.ID, designerapp.ImageInput{Data: solidPNG(t, 100, 50, color.White)})
	require.NoError(t, err)

	w, h := resp.Background.RenderedSize()
	assert.True(t, w >= 198 && h >= 270)
	assert.InDelta(t, 270.0, h, 1e-9)

	layers, err := f.svc.Layers(ctx, s.ID)
	require.NoError(t, err)
	require.NotEmpty(t, layers.Layers)
	assert.Equal(t, designer.LayerKindBackground, layers.Layers[0].Kind)

	require.NoError(t, f.svc.ClearBackground(ctx, s.ID))
	assert.ErrorIs(t, f.svc.ClearBackground(ctx, s.ID), shared.ErrNotFound)
}

func TestRemoveElement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.session(t, designer.DimensionStandard)

	require.NoError(t, f.svc.RemoveElement(ctx, s.ID, s.Elements[0].ID))
	assert.ErrorIs(t, f.svc.RemoveElement(ctx, s.ID, s.Elements[0].ID), designer.ErrElementNotFound)

	got, err := f.svc.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Len(t, got.Elements, 1)
	assert.Equal(t, string(designer.DocumentStateEdited), got.State)
}

func TestUpdateElementStyle_Isolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.session(t, designer.DimensionStandard)
	title, body := s.Elements[0], s.Elements[1]

	resp, err := f.svc.UpdateElementStyle(ctx, s.ID, title.ID, designerapp.StyleRequest{Property: "fontSize", Value: float64(40)})
	require.NoError(t, err)
	assert.Equal(t, 40, resp.Element.Text.FontSize)

	_, err = f.svc.UpdateElementStyle(ctx, s.ID, title.ID, designerapp.StyleRequest{
		Property: "position",
		Value:    map[string]any{"x": 10.0, "y": 20.0},
	})
	require.NoError(t, err)

	got, err := f.svc.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, body, got.Elements[1])
	assert.Equal(t, title.Text.Content, got.Elements[0].Text.Content)
	assert.Equal(t, designer.Point{X: 10, Y: 20}, got.Elements[0].Position)

	t.Run("malformed value leaves element unchanged", func(t *testing.T) {
		_, err := f.svc.UpdateElementStyle(ctx, s.ID, title.ID, designerapp.StyleRequest{Property: "fontSize", Value: "huge"})
		assert.ErrorIs(t, err, designer.ErrInvalidPropertyValue)
		after, err := f.svc.GetSession(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, 40, after.Elements[0].Text.FontSize)
	})

	t.Run("property not applicable to image", func(t *testing.T) {
		img, err := f.svc.AddImage(ctx, s.ID, designerapp.ImageInput{Data: solidPNG(t, 4, 4, color.Black)})
		require.NoError(t, err)
		_, err = f.svc.UpdateElementStyle(ctx, s.ID, img.Element.ID, designerapp.StyleRequest{Property: "fontSize", Value: 12})
		assert.ErrorIs(t, err, designer.ErrPropertyNotApplicable)
	})

	t.Run("unknown element", func(t *testing.T) {
		_, err := f.svc.UpdateElementStyle(ctx, s.ID, "nope", designerapp.StyleRequest{Property: "fill", Value: "#ff0000"})
		assert.ErrorIs(t, err, designer.ErrElementNotFound)
	})
}

func TestReorder_Boundaries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.session(t, designer.DimensionStandard)
	title, body := s.Elements[0].ID, s.Elements[1].ID

	resp, err := f.svc.Reorder(ctx, s.ID, body, designerapp.ReorderRequest{Direction: "FORWARD"})
	require.NoError(t, err)
	assert.False(t, resp.Moved)
	assert.Equal(t, []string{title, body}, resp.Order)

	resp, err = f.svc.Reorder(ctx, s.ID, title, designerapp.ReorderRequest{Direction: "BACKWARD"})
	require.NoError(t, err)
	assert.False(t, resp.Moved)

	resp, err = f.svc.Reorder(ctx, s.ID, title, designerapp.ReorderRequest{Direction: "FORWARD"})
	require.NoError(t, err)
	assert.True(t, resp.Moved)
	assert.Equal(t, []string{body, title}, resp.Order)

	_, err = f.svc.Reorder(ctx, s.ID, title, designerapp.ReorderRequest{Direction: "UP"})
	assert.ErrorIs(t, err, designer.ErrInvalidPropertyValue)
}

// =============================================================================
// Selection
// =============================================================================

func TestSelection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.session(t, designer.DimensionStandard)

	_, err := f.svc.ApplySelectionStyle(ctx, s.ID, designerapp.StyleRequest{Property: "fill", Value: "#336699"})
	assert.ErrorIs(t, err, designer.ErrNothingSelected)

	sel, err := f.svc.Select(ctx, s.ID, designerapp.SelectRequest{ElementID: s.Elements[1].ID})
	require.NoError(t, err)
	require.NotNil(t, sel.Selected)
	assert.Equal(t, s.Elements[1].ID, sel.Selected.ID)

	sel, err = f.svc.ApplySelectionStyle(ctx, s.ID, designerapp.StyleRequest{Property: "fill", Value: "#336699"})
	require.NoError(t, err)
	assert.Equal(t, "#336699", sel.Selected.Text.Fill)

	got, err := f.svc.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.Elements[1].ID, got.SelectedID)
	assert.Equal(t, designer.DefaultFill, got.Elements[0].Text.Fill)

	require.NoError(t, f.svc.Deselect(ctx, s.ID))
	_, err = f.svc.ApplySelectionStyle(ctx, s.ID, designerapp.StyleRequest{Property: "fill", Value: "#000000"})
	assert.ErrorIs(t, err, designer.ErrNothingSelected)

	_, err = f.svc.Select(ctx, s.ID, designerapp.SelectRequest{ElementID: "missing"})
	assert.ErrorIs(t, err, designer.ErrElementNotFound)
}

// =============================================================================
// Exports
// =============================================================================

func TestExportRaster_Resolution(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.session(t, designer.DimensionSquare)

	result, err := f.svc.ExportRaster(ctx, s.ID, 0)
	require.NoError(t, err)

	assert.Equal(t, 1050, result.Width)
	assert.Equal(t, 1050, result.Height)
	assert.Equal(t, "image/png", result.ContentType)
	cfg, err := png.DecodeConfig(bytes.NewReader(result.Data))
	require.NoError(t, err)
	assert.Equal(t, 1050, cfg.Width)
	assert.Equal(t, 1050, cfg.Height)

	stored, _, err := f.assets.Get(ctx, result.AssetKey)
	require.NoError(t, err)
	assert.Equal(t, result.Data, stored)

	exported := f.events.ofType(designer.EventTypeCardExported)
	require.Len(t, exported, 1)
	event := exported[0].(*designer.CardExportedEvent)
	assert.Equal(t, s.ID, event.SessionID)
	assert.Equal(t, result.AssetKey, event.AssetKey)
	assert.Equal(t, 1050, event.Width)

	got, err := f.svc.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, string(designer.DocumentStateExported), got.State)
}

func TestExportRaster_InvalidMultiplier(t *testing.T) {
	f := newFixture(t)
	s := f.session(t, designer.DimensionSquare)

	_, err := f.svc.ExportRaster(context.Background(), s.ID, 1000)
	var re *render.RenderError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, render.ErrCodeInvalidMultiplier, re.Code)
}

func TestExportRaster_UntrustedRemoteImage(t *testing.T) {
	srv := imageServer(t, solidPNG(t, 20, 20, color.Black))

	t.Run("blocked and session stays usable", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		s := f.session(t, designer.DimensionPoker)

		img, err := f.svc.AddImage(ctx, s.ID, designerapp.ImageInput{URL: srv.URL + "/art.png"})
		require.NoError(t, err)
		assert.Equal(t, designer.ImageOriginRemote, img.Element.Image.Source.Origin)
		assert.Equal(t, srv.URL+"/art.png", img.Element.Image.Source.URL)

		_, err = f.svc.ExportRaster(ctx, s.ID, 1)
		assert.ErrorIs(t, err, designer.ErrExportBlocked)
		assert.Empty(t, f.events.ofType(designer.EventTypeCardExported))

		_, err = f.svc.AddText(ctx, s.ID, designerapp.AddTextRequest{Kind: "TEXT"})
		require.NoError(t, err)
		require.NoError(t, f.svc.RemoveElement(ctx, s.ID, img.Element.ID))
		_, err = f.svc.ExportRaster(ctx, s.ID, 1)
		require.NoError(t, err)
	})

	t.Run("trusted host exports", func(t *testing.T) {
		f := newFixture(t, withTrustedHosts("127.0.0.1"))
		ctx := context.Background()
		s := f.session(t, designer.DimensionPoker)

		_, err := f.svc.AddImage(ctx, s.ID, designerapp.ImageInput{URL: srv.URL + "/art.png"})
		require.NoError(t, err)
		result, err := f.svc.ExportRaster(ctx, s.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, 180, result.Width)
		assert.Equal(t, 252, result.Height)
	})
}

func TestExportPDF(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		f := newFixture(t)
		s := f.session(t, designer.DimensionPoker)
		_, err := f.svc.ExportPDF(context.Background(), s.ID, 0)
		assert.ErrorIs(t, err, designerapp.ErrPDFDisabled)
	})

	t.Run("wraps raster", func(t *testing.T) {
		pdf := new(MockPDFRenderer)
		f := newFixture(t, withPDF(pdf))
		s := f.session(t, designer.DimensionPoker)

		pdf.On("Render", mock.Anything, mock.MatchedBy(func(req render.PDFRequest) bool {
			return req.Dimension.Name == designer.DimensionPoker && len(req.PNG) > 0
		})).Return(&render.PDF{Data: []byte("%PDF-1.4 fake"), PageCount: 1}, nil)

		result, err := f.svc.ExportPDF(context.Background(), s.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, "application/pdf", result.ContentType)
		assert.Equal(t, []byte("%PDF-1.4 fake"), result.Data)
		assert.NotEmpty(t, result.AssetKey)
		pdf.AssertExpectations(t)
	})
}

func TestExportScene(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.session(t, designer.DimensionTarot)

	for _, format := range []designer.ExportFormat{designer.ExportFormatSceneJSON, designer.ExportFormatSceneYAML} {
		t.Run(string(format), func(t *testing.T) {
			result, err := f.svc.ExportScene(ctx, s.ID, format)
			require.NoError(t, err)
			assert.Equal(t, format.ContentType(), result.ContentType)

			snap, err := render.ParseScene(result.Data, format)
			require.NoError(t, err)
			assert.Equal(t, designer.DimensionTarot, snap.Dimension.Name)
			assert.Len(t, snap.Elements, 2)
		})
	}

	got, err := f.svc.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, string(designer.DocumentStateInitialized), got.State)
}

func TestPreview_IncludesGuides(t *testing.T) {
	f := newFixture(t, withTrustedHosts())
	ctx := context.Background()
	s := f.session(t, designer.DimensionSquare)
	require.NoError(t, f.svc.RemoveElement(ctx, s.ID, s.Elements[0].ID))
	require.NoError(t, f.svc.RemoveElement(ctx, s.ID, s.Elements[1].ID))

	result, err := f.svc.Preview(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 252, result.Width)
	assert.Empty(t, result.AssetKey)

	img, err := png.Decode(bytes.NewReader(result.Data))
	require.NoError(t, err)
	inked := 0
	for y := 0; y < 40; y++ {
		for x := 124; x <= 127; x++ {
			if r, g, b, _ := img.At(x, y).RGBA(); r != 0xffff || g != 0xffff || b != 0xffff {
				inked++
			}
		}
	}
	assert.Positive(t, inked, "vertical guide should be drawn at the center")

	got, err := f.svc.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, string(designer.DocumentStateEdited), got.State)
}

// =============================================================================
// Templates
// =============================================================================

func TestTemplates_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	src := f.session(t, designer.DimensionStandard)

	_, err := f.svc.SetBackground(ctx, src.ID, designerapp.ImageInput{Data: solidPNG(t, 30, 60, color.White)})
	require.NoError(t, err)
	_, err = f.svc.AddImage(ctx, src.ID, designerapp.ImageInput{Data: solidPNG(t, 400, 300, color.Black)})
	require.NoError(t, err)
	_, err = f.svc.UpdateElementStyle(ctx, src.ID, src.Elements[0].ID, designerapp.StyleRequest{Property: "fontWeight", Value: "bold"})
	require.NoError(t, err)

	summary, err := f.svc.SaveTemplate(ctx, src.ID, designerapp.SaveTemplateRequest{Name: "Summer promo"})
	require.NoError(t, err)
	assert.Equal(t, "Summer promo", summary.Name)
	assert.Equal(t, 3, summary.ElementCount)
	assert.Len(t, f.events.ofType(designer.EventTypeTemplateSaved), 1)

	before, err := f.svc.GetSession(ctx, src.ID)
	require.NoError(t, err)
	assert.Equal(t, string(designer.DocumentStateSaved), before.State)

	dst := f.session(t, designer.DimensionMini)
	loaded, err := f.svc.LoadTemplate(ctx, dst.ID, summary.ID)
	require.NoError(t, err)

	assert.Equal(t, string(designer.DocumentStateRestored), loaded.State)
	assert.Equal(t, before.Dimension, loaded.Dimension)
	assert.Equal(t, before.Background, loaded.Background)
	assert.Equal(t, before.Elements, loaded.Elements)
	assert.Equal(t, before.Guides, loaded.Guides)

	_, err = f.svc.ExportRaster(ctx, dst.ID, 1)
	require.NoError(t, err)
}

func TestTemplates_ListAndGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.session(t, designer.DimensionPoker)

	first, err := f.svc.SaveTemplate(ctx, s.ID, designerapp.SaveTemplateRequest{Name: "Deck"})
	require.NoError(t, err)
	second, err := f.svc.SaveTemplate(ctx, s.ID, designerapp.SaveTemplateRequest{Name: "Deck"})
	require.NoError(t, err)
	untitled, err := f.svc.SaveTemplate(ctx, s.ID, designerapp.SaveTemplateRequest{Name: "  "})
	require.NoError(t, err)
	assert.Equal(t, designer.UntitledTemplateName, untitled.Name)

	list, total, err := f.svc.ListTemplates(ctx, designerapp.TemplateListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)
	assert.NotEqual(t, first.ID, second.ID)

	got, err := f.svc.GetTemplate(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "Deck", got.Name)
	assert.Equal(t, designer.DimensionPoker, got.Snapshot.Dimension.Name)

	_, err = f.svc.GetTemplate(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = f.svc.LoadTemplate(ctx, s.ID, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListTemplates_Filter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	poker := f.session(t, designer.DimensionPoker)
	mini := f.session(t, designer.DimensionMini)

	var pokerIDs []uuid.UUID
	for i := 0; i < 3; i++ {
		saved, err := f.svc.SaveTemplate(ctx, poker.ID, designerapp.SaveTemplateRequest{Name: "Poker"})
		require.NoError(t, err)
		pokerIDs = append(pokerIDs, saved.ID)
	}
	_, err := f.svc.SaveTemplate(ctx, mini.ID, designerapp.SaveTemplateRequest{Name: "Mini"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter designerapp.TemplateListFilter
		total  int64
		want   []uuid.UUID
	}{
		{name: "dimension is case insensitive", filter: designerapp.TemplateListFilter{Dimension: "poker"}, total: 3, want: pokerIDs},
		{name: "first page", filter: designerapp.TemplateListFilter{Dimension: "POKER", Page: 1, PageSize: 2}, total: 3, want: pokerIDs[:2]},
		{name: "last partial page", filter: designerapp.TemplateListFilter{Dimension: "POKER", Page: 2, PageSize: 2}, total: 3, want: pokerIDs[2:]},
		{name: "past the end", filter: designerapp.TemplateListFilter{Dimension: "POKER", Page: 5, PageSize: 2}, total: 3, want: []uuid.UUID{}},
		{name: "page zero is the first page", filter: designerapp.TemplateListFilter{PageSize: 1}, total: 4, want: pokerIDs[:1]},
		{name: "no matches", filter: designerapp.TemplateListFilter{Dimension: "TAROT"}, total: 0, want: []uuid.UUID{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, total, err := f.svc.ListTemplates(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.total, total)
			got := make([]uuid.UUID, len(list))
			for i, s := range list {
				got[i] = s.ID
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSaveTemplate_StoreFailure(t *testing.T) {
	repo := new(MockTemplateRepository)
	repo.On("Append", mock.Anything, mock.Anything).Return(errors.New("connection refused"))
	f := newFixture(t, withTemplates(repo))
	ctx := context.Background()
	s := f.session(t, designer.DimensionPoker)

	_, err := f.svc.SaveTemplate(ctx, s.ID, designerapp.SaveTemplateRequest{Name: "Deck"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save template")
	assert.Empty(t, f.events.ofType(designer.EventTypeTemplateSaved))

	got, err := f.svc.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, string(designer.DocumentStateInitialized), got.State)
	repo.AssertExpectations(t)
}

// =============================================================================
// Fonts
// =============================================================================

func TestFonts(t *testing.T) {
	f := newFixture(t)

	families := f.svc.Fonts()
	require.NotEmpty(t, families)

	resp, err := f.svc.LoadFont(context.Background(), designerapp.LoadFontRequest{Family: "go", Wait: true})
	require.NoError(t, err)
	assert.Equal(t, string(fonts.StatusReady), resp.Status)
}
