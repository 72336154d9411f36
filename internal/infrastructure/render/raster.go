package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/anthonynsimon/bild/transform"
	"github.com/fogleman/gg"
	"github.com/fulluproar/backoffice/internal/domain/designer"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/sync/errgroup"
)

// Rendering defaults
const (
	DefaultMaxMultiplier = 12.0
	DefaultLineSpacing   = 1.16
	DefaultCardColor     = "#ffffff"
	GuideColor           = "#00bcd4"

	imageLoadConcurrency = 4
	// source pixels kept on each side of the visible region
	resampleMargin = 2
)

// AssetSource reads stored image bytes by asset key
type AssetSource interface {
	Get(ctx context.Context, key string) ([]byte, string, error)
}

// FaceSource resolves a renderable face. It never fails for unknown
// families; those fall back to a built-in family.
type FaceSource interface {
	Face(name string, weight designer.FontWeight, style designer.FontStyle, size float64) (font.Face, error)
}

// RasterRequest describes one raster render
type RasterRequest struct {
	Snapshot designer.SceneSnapshot
	// Guides are drawn above the background and beneath every element.
	// Exports pass none.
	Guides []designer.Guide
	// Multiplier scales reference units to pixels
	Multiplier float64
}

// Raster is an encoded PNG render
type Raster struct {
	PNG        []byte
	Width      int
	Height     int
	Multiplier float64
	Duration   time.Duration
}

// RasterRenderer paints scene snapshots to PNG. It holds no per-document
// state and is safe for concurrent use.
type RasterRenderer struct {
	assets        AssetSource
	faces         FaceSource
	logger        *zap.Logger
	maxMultiplier float64
	maxPixels     int
	lineSpacing   float64
	cardColor     string
}

// RasterOption configures a RasterRenderer
type RasterOption func(*RasterRenderer)

// WithRasterLogger sets the logger
func WithRasterLogger(l *zap.Logger) RasterOption {
	return func(r *RasterRenderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMaxMultiplier caps the export multiplier
func WithMaxMultiplier(m float64) RasterOption {
	return func(r *RasterRenderer) {
		if m > 0 {
			r.maxMultiplier = m
		}
	}
}

// WithMaxImagePixels caps decoded image size
func WithMaxImagePixels(n int) RasterOption {
	return func(r *RasterRenderer) {
		if n > 0 {
			r.maxPixels = n
		}
	}
}

// WithCardColor sets the color painted beneath the background
func WithCardColor(hex string) RasterOption {
	return func(r *RasterRenderer) {
		r.cardColor = hex
	}
}

// NewRasterRenderer creates a renderer reading images from assets and faces
// from faces
func NewRasterRenderer(assets AssetSource, faces FaceSource, opts ...RasterOption) *RasterRenderer {
	r := &RasterRenderer{
		assets:        assets,
		faces:         faces,
		logger:        zap.NewNop(),
		maxMultiplier: DefaultMaxMultiplier,
		maxPixels:     DefaultMaxImagePixels,
		lineSpacing:   DefaultLineSpacing,
		cardColor:     DefaultCardColor,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MaxMultiplier returns the largest accepted multiplier
func (r *RasterRenderer) MaxMultiplier() float64 {
	return r.maxMultiplier
}

// Render paints req.Snapshot at req.Multiplier and encodes it as PNG. The
// output is exactly round(W*m) x round(H*m) pixels.
func (r *RasterRenderer) Render(ctx context.Context, req RasterRequest) (*Raster, error) {
	start := time.Now()
	m := req.Multiplier
	if m <= 0 || m > r.maxMultiplier || math.IsNaN(m) {
		return nil, NewRenderError(ErrCodeInvalidMultiplier,
			fmt.Sprintf("multiplier must be in (0, %g]", r.maxMultiplier), nil)
	}
	if err := req.Snapshot.Validate(); err != nil {
		return nil, NewRenderError(ErrCodeInvalidScene, "scene cannot be rendered", err)
	}

	images, err := r.loadImages(ctx, req.Snapshot)
	if err != nil {
		return nil, err
	}

	w, h := req.Snapshot.Dimension.PixelSize(m)
	dc := gg.NewContext(w, h)
	dc.SetHexColor(r.cardColor)
	dc.Clear()

	if bg := req.Snapshot.Background; bg != nil {
		r.drawBackground(dc, *bg, images[bg.Source.AssetKey], req.Snapshot.Dimension, m)
	}
	if len(req.Guides) > 0 {
		drawGuides(dc, req.Guides, req.Snapshot.Dimension, m)
	}
	for _, e := range req.Snapshot.Elements {
		if err := ctx.Err(); err != nil {
			return nil, timeoutError(err)
		}
		switch {
		case e.Kind == designer.ElementKindImage:
			drawImage(dc, e, images[e.Image.Source.AssetKey], m)
		case e.Kind.IsText():
			if err := r.drawText(dc, e, m); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, NewRenderError(ErrCodeEncodeFailed, "failed to encode PNG", err)
	}

	raster := &Raster{
		PNG:        buf.Bytes(),
		Width:      w,
		Height:     h,
		Multiplier: m,
		Duration:   time.Since(start),
	}
	r.logger.Debug("raster rendered",
		zap.Int("width", w),
		zap.Int("height", h),
		zap.Int("elements", len(req.Snapshot.Elements)),
		zap.Int("bytes", len(raster.PNG)),
		zap.Duration("duration", raster.Duration),
	)
	return raster, nil
}

// loadImages fetches and decodes every distinct image of the snapshot
func (r *RasterRenderer) loadImages(ctx context.Context, s designer.SceneSnapshot) (map[string]image.Image, error) {
	refs := s.ImageRefs()
	images := make(map[string]image.Image, len(refs))
	if len(refs) == 0 {
		return images, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(imageLoadConcurrency)

	seen := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		if _, dup := seen[ref.AssetKey]; dup {
			continue
		}
		seen[ref.AssetKey] = struct{}{}
		key := ref.AssetKey

		g.Go(func() error {
			data, _, err := r.assets.Get(gctx, key)
			if err != nil {
				return NewRenderError(ErrCodeImageUnavailable, "failed to read image "+key, err)
			}
			img, _, err := DecodeImage(data, r.maxPixels)
			if err != nil {
				return NewRenderError(ErrCodeImageUnavailable, "failed to decode image "+key, err)
			}
			mu.Lock()
			images[key] = img
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, timeoutError(ctx.Err())
		}
		return nil, err
	}
	return images, nil
}

// drawBackground draws the background centered on the canvas; the context
// bounds clip whatever overflows
func (r *RasterRenderer) drawBackground(dc *gg.Context, bg designer.ImageStyle, img image.Image, dim designer.Dimension, m float64) {
	if img == nil {
		return
	}
	bw, bh := bg.RenderedSize()
	topLeft := designer.CenterAnchor().TopLeft(dim.Center(), bw, bh)
	drawScaled(dc, img, topLeft.X*m, topLeft.Y*m, bw*m, bh*m)
}

func drawGuides(dc *gg.Context, guides []designer.Guide, dim designer.Dimension, m float64) {
	dc.Push()
	defer dc.Pop()

	dc.SetHexColor(GuideColor)
	dc.SetLineWidth(math.Max(1, m/2))
	dc.SetDash(4*m, 4*m)
	for _, g := range guides {
		p := g.Position * m
		switch g.Orientation {
		case designer.GuideVertical:
			dc.DrawLine(p, 0, p, dim.Height*m)
		case designer.GuideHorizontal:
			dc.DrawLine(0, p, dim.Width*m, p)
		}
		dc.Stroke()
	}
}

func drawImage(dc *gg.Context, e designer.Element, img image.Image, m float64) {
	if img == nil {
		return
	}
	w, h := e.Image.RenderedSize()
	topLeft := e.Anchor.TopLeft(e.Position, w, h)
	drawScaled(dc, img, topLeft.X*m, topLeft.Y*m, w*m, h*m)
}

// drawScaled draws img stretched over the w x h pixel rectangle at (x, y).
// Only the source pixels that can reach the canvas are cropped out and
// sampled. Shrunk images are resampled with Lanczos; enlarged ones go
// through the context transform so nothing larger than the canvas is
// allocated.
func drawScaled(dc *gg.Context, img image.Image, x, y, w, h float64) {
	b := img.Bounds()
	if b.Empty() || math.Round(w) < 1 || math.Round(h) < 1 {
		return
	}
	sx0, sx1, ok := sourceSpan(x, w, b.Dx(), dc.Width())
	if !ok {
		return
	}
	sy0, sy1, ok := sourceSpan(y, h, b.Dy(), dc.Height())
	if !ok {
		return
	}

	src := img
	if sx0 > 0 || sy0 > 0 || sx1 < b.Dx() || sy1 < b.Dy() {
		src = transform.Crop(img, image.Rect(b.Min.X+sx0, b.Min.Y+sy0, b.Min.X+sx1, b.Min.Y+sy1))
	}

	kx, ky := w/float64(b.Dx()), h/float64(b.Dy())
	if kx >= 1 || ky >= 1 {
		dc.Push()
		dc.Translate(x, y)
		dc.Scale(kx, ky)
		dc.DrawImage(src, -b.Min.X, -b.Min.Y)
		dc.Pop()
		return
	}

	left := int(math.Round(x + float64(sx0)*kx))
	top := int(math.Round(y + float64(sy0)*ky))
	pw := int(math.Round(x+float64(sx1)*kx)) - left
	ph := int(math.Round(y+float64(sy1)*ky)) - top
	if pw < 1 || ph < 1 {
		return
	}
	if src.Bounds().Dx() != pw || src.Bounds().Dy() != ph {
		src = transform.Resize(src, pw, ph, transform.Lanczos)
	}
	// a crop kept at its own size still has its absolute origin
	sb := src.Bounds()
	dc.DrawImage(src, left-sb.Min.X, top-sb.Min.Y)
}

// sourceSpan maps the part of [pos, pos+size) inside [0, limit) back to the
// source pixel range [s0, s1) of an axis n pixels long, widened by
// resampleMargin. ok is false when nothing is visible.
func sourceSpan(pos, size float64, n, limit int) (s0, s1 int, ok bool) {
	lo := math.Max(pos, 0)
	hi := math.Min(pos+size, float64(limit))
	if hi <= lo {
		return 0, 0, false
	}
	k := float64(n) / size
	s0 = max(int(math.Floor((lo-pos)*k))-resampleMargin, 0)
	s1 = min(int(math.Ceil((hi-pos)*k))+resampleMargin, n)
	return s0, s1, s1 > s0
}

type textLine struct {
	text    string
	justify bool
}

// drawText lays out a TEXT or TEXTBOX element and draws each line
func (r *RasterRenderer) drawText(dc *gg.Context, e designer.Element, m float64) error {
	t := e.Text
	face, err := r.faces.Face(t.FontFamily, t.Weight, t.Style, float64(t.FontSize)*m)
	if err != nil {
		return NewRenderError(ErrCodeRenderFailed, "failed to create font face", err)
	}
	dc.SetFontFace(face)
	dc.SetHexColor(t.Fill)

	lines, boxW := r.layoutText(dc, e, m)
	if len(lines) == 0 {
		return nil
	}

	fontH := dc.FontHeight()
	lineH := fontH * r.lineSpacing
	boxH := fontH + lineH*float64(len(lines)-1)
	ascent := float64(face.Metrics().Ascent) / 64

	origin := e.Anchor.TopLeft(designer.Point{X: e.Position.X * m, Y: e.Position.Y * m}, boxW, boxH)
	for i, line := range lines {
		baseline := origin.Y + float64(i)*lineH + ascent
		if line.justify && t.Align == designer.TextAlignJustify {
			drawJustified(dc, line.text, origin.X, baseline, boxW)
			continue
		}
		lw, _ := dc.MeasureString(line.text)
		x := origin.X
		switch t.Align {
		case designer.TextAlignCenter:
			x += (boxW - lw) / 2
		case designer.TextAlignRight:
			x += boxW - lw
		}
		dc.DrawString(line.text, x, baseline)
	}
	return nil
}

// layoutText splits content into lines. Text boxes wrap at their wrap width
// and every wrapped line but a paragraph's last may be justified. Plain text
// only breaks at newlines and its box is as wide as its longest line.
func (r *RasterRenderer) layoutText(dc *gg.Context, e designer.Element, m float64) ([]textLine, float64) {
	paragraphs := strings.Split(e.Text.Content, "\n")
	var lines []textLine

	if e.Kind == designer.ElementKindTextBox {
		wrap := e.Text.WrapWidth * m
		for _, p := range paragraphs {
			wrapped := dc.WordWrap(p, wrap)
			if len(wrapped) == 0 {
				wrapped = []string{""}
			}
			for i, l := range wrapped {
				lines = append(lines, textLine{text: l, justify: i < len(wrapped)-1})
			}
		}
		return lines, wrap
	}

	var widest float64
	for _, p := range paragraphs {
		w, _ := dc.MeasureString(p)
		widest = math.Max(widest, w)
		lines = append(lines, textLine{text: p})
	}
	return lines, widest
}

// drawJustified spreads the words of line across width
func drawJustified(dc *gg.Context, line string, x, baseline, width float64) {
	words := strings.Fields(line)
	if len(words) < 2 {
		dc.DrawString(line, x, baseline)
		return
	}
	var used float64
	for _, w := range words {
		ww, _ := dc.MeasureString(w)
		used += ww
	}
	gap := (width - used) / float64(len(words)-1)
	for _, w := range words {
		dc.DrawString(w, x, baseline)
		ww, _ := dc.MeasureString(w)
		x += ww + gap
	}
}

func timeoutError(err error) *RenderError {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewRenderError(ErrCodeRenderTimeout, "render timed out", err)
	}
	return NewRenderError(ErrCodeRenderTimeout, "render was cancelled", err)
}
