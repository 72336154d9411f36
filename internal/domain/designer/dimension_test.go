package designer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDimensionByPreset(t *testing.T) {
	tests := []struct {
		preset DimensionPreset
		width  float64
		height float64
	}{
		{DimensionStandard, 198, 270},
		{DimensionPoker, 180, 252},
		{DimensionTarot, 198, 342},
		{DimensionSquare, 252, 252},
		{DimensionMini, 126, 180},
		{DimensionJumbo, 252, 396},
	}

	for _, tt := range tests {
		t.Run(string(tt.preset), func(t *testing.T) {
			dim, err := DimensionByPreset(tt.preset)
			require.NoError(t, err)
			assert.Equal(t, tt.preset, dim.Name)
			assert.InDelta(t, tt.width, dim.Width, 1e-9)
			assert.InDelta(t, tt.height, dim.Height, 1e-9)
		})
	}
}

func TestDimensionByPreset_Unknown(t *testing.T) {
	_, err := DimensionByPreset("BUSINESS_CARD")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownDimension)
	assert.Contains(t, err.Error(), "BUSINESS_CARD")
}

func TestAllDimensions(t *testing.T) {
	dims := AllDimensions()
	assert.Len(t, dims, len(AllDimensionPresets()))
	for _, d := range dims {
		assert.True(t, d.IsValid(), d.Name)
	}
}

func TestNewDimension(t *testing.T) {
	_, err := NewDimension("CUSTOM", 0, 10)
	assert.ErrorIs(t, err, ErrInvalidDimension)

	_, err = NewDimension("CUSTOM", 10, -1)
	assert.ErrorIs(t, err, ErrInvalidDimension)

	d, err := NewDimension("CUSTOM", 100, 200)
	require.NoError(t, err)
	assert.Equal(t, Point{X: 50, Y: 100}, d.Center())
}

func TestDimension_PixelSize(t *testing.T) {
	square, err := DimensionByPreset(DimensionSquare)
	require.NoError(t, err)

	w, h := square.PixelSize(DefaultExportMultiplier)
	assert.Equal(t, 1050, w)
	assert.Equal(t, 1050, h)

	standard, err := DimensionByPreset(DimensionStandard)
	require.NoError(t, err)
	w, h = standard.PixelSize(DefaultExportMultiplier)
	assert.Equal(t, 825, w)
	assert.Equal(t, 1125, h)
}

func TestDimensionPreset_DisplayName(t *testing.T) {
	assert.Equal(t, "Poker (2.5\" x 3.5\")", DimensionPoker.DisplayName())
}
