package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/fulluproar/backoffice/internal/domain/designer"
	"github.com/fulluproar/backoffice/internal/domain/shared"
	"github.com/stretchr/testify/require"
)

type mapAssets map[string][]byte

func (m mapAssets) Get(ctx context.Context, key string) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	data, ok := m[key]
	if !ok {
		return nil, "", shared.ErrNotFound
	}
	return data, "image/png", nil
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

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func emptySnapshot(t *testing.T, preset designer.DimensionPreset) designer.SceneSnapshot {
	t.Helper()
	dim, err := designer.DimensionByPreset(preset)
	require.NoError(t, err)
	return designer.SceneSnapshot{Version: designer.SnapshotVersion, Dimension: dim, Elements: []designer.Element{}}
}

func initializedSnapshot(t *testing.T, preset designer.DimensionPreset) designer.SceneSnapshot {
	t.Helper()
	dim, err := designer.DimensionByPreset(preset)
	require.NoError(t, err)
	doc := designer.NewCanvasDocument()
	_, err = doc.Init(dim)
	require.NoError(t, err)
	return doc.Snapshot()
}

func rgbaAt(img image.Image, x, y int) color.RGBA {
	r, g, b, a := img.At(x, y).RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}

var (
	white = color.RGBA{255, 255, 255, 255}
	red   = color.RGBA{255, 0, 0, 255}
	blue  = color.RGBA{0, 0, 255, 255}
)

func colorRGBA(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
