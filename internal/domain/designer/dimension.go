package designer

import (
	"fmt"
	"strings"
)

// Reference and print resolutions
const (
	// ReferenceDPI is the authoring resolution: one unit is 1/72 inch
	ReferenceDPI = 72.0
	// PrintDPI is the default export resolution
	PrintDPI = 300.0
	// DefaultExportMultiplier scales reference units to print pixels
	DefaultExportMultiplier = PrintDPI / ReferenceDPI
)

// DimensionPreset identifies a card size in the catalog
type DimensionPreset string

const (
	DimensionStandard DimensionPreset = "STANDARD" // 2.75in x 3.75in
	DimensionPoker    DimensionPreset = "POKER"    // 2.5in x 3.5in
	DimensionTarot    DimensionPreset = "TAROT"    // 2.75in x 4.75in
	DimensionSquare   DimensionPreset = "SQUARE"   // 3.5in x 3.5in
	DimensionMini     DimensionPreset = "MINI"     // 1.75in x 2.5in
	DimensionJumbo    DimensionPreset = "JUMBO"    // 3.5in x 5.5in
)

// IsValid checks if the DimensionPreset is a valid value
func (p DimensionPreset) IsValid() bool {
	switch p {
	case DimensionStandard, DimensionPoker, DimensionTarot,
		DimensionSquare, DimensionMini, DimensionJumbo:
		return true
	}
	return false
}

// String returns the string representation of DimensionPreset
func (p DimensionPreset) String() string {
	return string(p)
}

// Inches returns the physical card size in inches (width, height)
func (p DimensionPreset) Inches() (width, height float64) {
	switch p {
	case DimensionStandard:
		return 2.75, 3.75
	case DimensionPoker:
		return 2.5, 3.5
	case DimensionTarot:
		return 2.75, 4.75
	case DimensionSquare:
		return 3.5, 3.5
	case DimensionMini:
		return 1.75, 2.5
	case DimensionJumbo:
		return 3.5, 5.5
	default:
		return 0, 0
	}
}

// DisplayName returns a human readable label for the preset
func (p DimensionPreset) DisplayName() string {
	w, h := p.Inches()
	name := strings.ToUpper(string(p[:1])) + strings.ToLower(string(p[1:]))
	return fmt.Sprintf("%s (%g\" x %g\")", name, w, h)
}

// AllDimensionPresets returns all valid DimensionPreset values
func AllDimensionPresets() []DimensionPreset {
	return []DimensionPreset{
		DimensionStandard, DimensionPoker, DimensionTarot,
		DimensionSquare, DimensionMini, DimensionJumbo,
	}
}

// Dimension is a canvas size in reference units
type Dimension struct {
	Name   DimensionPreset `json:"name" yaml:"name"`
	Width  float64         `json:"width" yaml:"width"`
	Height float64         `json:"height" yaml:"height"`
}

// NewDimension creates a Dimension, rejecting non-positive sizes
func NewDimension(name DimensionPreset, width, height float64) (Dimension, error) {
	if width <= 0 || height <= 0 {
		return Dimension{}, ErrInvalidDimension
	}
	return Dimension{Name: name, Width: width, Height: height}, nil
}

// DimensionByPreset resolves a catalog preset to reference units
func DimensionByPreset(preset DimensionPreset) (Dimension, error) {
	if !preset.IsValid() {
		return Dimension{}, ErrUnknownDimension.WithMessage("unknown dimension preset: " + string(preset))
	}
	w, h := preset.Inches()
	return Dimension{
		Name:   preset,
		Width:  w * ReferenceDPI,
		Height: h * ReferenceDPI,
	}, nil
}

// AllDimensions returns every preset resolved to reference units
func AllDimensions() []Dimension {
	presets := AllDimensionPresets()
	dims := make([]Dimension, 0, len(presets))
	for _, p := range presets {
		d, _ := DimensionByPreset(p)
		dims = append(dims, d)
	}
	return dims
}

// IsValid reports whether the dimension has a positive area
func (d Dimension) IsValid() bool {
	return d.Width > 0 && d.Height > 0
}

// Center returns the canvas center point
func (d Dimension) Center() Point {
	return Point{X: d.Width / 2, Y: d.Height / 2}
}

// PixelSize returns the raster size for a DPI multiplier, rounded to whole pixels
func (d Dimension) PixelSize(multiplier float64) (width, height int) {
	return int(d.Width*multiplier + 0.5), int(d.Height*multiplier + 0.5)
}
