package fonts

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fulluproar/backoffice/internal/domain/designer"
)

func TestNormalizeFamily(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Go", "go"},
		{"  Open   Sans ", "open sans"},
		{"IBM Plex Sans", "ibm plex sans"},
		{"Straße", "strasse"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeFamily(tt.in))
		})
	}
	assert.Equal(t, "Open Sans", displayFamily("  Open   Sans "))
}

func TestVariant(t *testing.T) {
	assert.Equal(t, "BOLD-ITALIC", BoldItalic.String())

	v, ok := ParseVariant("BOLD-NORMAL")
	assert.True(t, ok)
	assert.Equal(t, Bold, v)

	_, ok = ParseVariant("HEAVY-NORMAL")
	assert.False(t, ok)
	_, ok = ParseVariant("BOLD")
	assert.False(t, ok)

	assert.Equal(t, []Variant{BoldItalic, Italic, Bold, Regular}, BoldItalic.fallbacks())
}

func TestVariantFromSubfamily(t *testing.T) {
	tests := []struct {
		sub  string
		want Variant
	}{
		{"Regular", Regular},
		{"Bold", Bold},
		{"Italic", Italic},
		{"Bold Italic", BoldItalic},
		{"Oblique", Italic},
		{"Black", Variant{Weight: designer.FontWeightBold, Style: designer.FontStyleNormal}},
		{"", Regular},
	}
	for _, tt := range tests {
		t.Run(tt.sub, func(t *testing.T) {
			assert.Equal(t, tt.want, variantFromSubfamily(tt.sub))
		})
	}
}
