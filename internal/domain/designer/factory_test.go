package designer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadRef(key string) ImageRef {
	return ImageRef{AssetKey: key, ContentType: "image/png", Origin: ImageOriginUpload}
}

func TestElementFactory_Image_ForegroundPlacement(t *testing.T) {
	dim, err := DimensionByPreset(DimensionStandard)
	require.NoError(t, err)

	e, err := DefaultElementFactory().Image(dim, uploadRef("a"), 400, 300)
	require.NoError(t, err)

	assert.Equal(t, ElementKindImage, e.Kind)
	assert.InDelta(t, 0.2475, e.Image.Scale, 1e-9)
	w, h := e.Image.RenderedSize()
	assert.InDelta(t, 99.0, w, 1e-9)
	assert.InDelta(t, 74.25, h, 1e-9)
	assert.Equal(t, Point{X: 99, Y: 135}, e.Position)
	assert.Equal(t, CenterAnchor(), e.Anchor)
}

func TestElementFactory_Image_RejectsEmptyRaster(t *testing.T) {
	dim, _ := DimensionByPreset(DimensionStandard)
	_, err := DefaultElementFactory().Image(dim, uploadRef("a"), 0, 300)
	assert.ErrorIs(t, err, ErrImageDecode)
}

func TestElementFactory_Background_Cover(t *testing.T) {
	sizes := [][2]int{{400, 300}, {300, 400}, {1, 1}, {5000, 20}, {20, 5000}, {198, 270}, {1024, 1024}}

	for _, dim := range AllDimensions() {
		for _, s := range sizes {
			bg, err := DefaultElementFactory().Background(dim, uploadRef("bg"), s[0], s[1])
			require.NoError(t, err)

			w, h := bg.RenderedSize()
			// covers both axes
			assert.GreaterOrEqual(t, w+1e-9, dim.Width)
			assert.GreaterOrEqual(t, h+1e-9, dim.Height)
			// and matches at least one exactly
			matchesW := abs(w-dim.Width) < 1e-9
			matchesH := abs(h-dim.Height) < 1e-9
			assert.True(t, matchesW || matchesH, "dim %v image %v", dim, s)
		}
	}
}

func TestElementFactory_TextAndTextBox(t *testing.T) {
	dim, _ := DimensionByPreset(DimensionPoker)
	f := DefaultElementFactory()

	text := f.Text(dim, "Hello")
	assert.Equal(t, ElementKindText, text.Kind)
	assert.Equal(t, dim.Center(), text.Position)
	assert.Equal(t, CenterAnchor(), text.Anchor)
	assert.Equal(t, DefaultTextFontSize, text.Text.FontSize)
	assert.Zero(t, text.Text.WrapWidth)
	assert.NoError(t, text.Validate())

	box := f.TextBox(dim, "Body")
	assert.Equal(t, ElementKindTextBox, box.Kind)
	assert.InDelta(t, dim.Width-TextBoxMargin, box.Text.WrapWidth, 1e-9)
	assert.NoError(t, box.Validate())
}

func TestElementFactory_Defaults(t *testing.T) {
	dim, _ := DimensionByPreset(DimensionTarot)
	defaults := DefaultElementFactory().Defaults(dim)

	require.Len(t, defaults, 2)
	assert.Equal(t, ElementKindText, defaults[0].Kind)
	assert.Equal(t, DefaultTitleContent, defaults[0].Text.Content)
	assert.InDelta(t, dim.Width/2, defaults[0].Position.X, 1e-9)
	assert.Equal(t, ElementKindTextBox, defaults[1].Kind)
	assert.Equal(t, dim.Center(), defaults[1].Position)
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
