package designer

import "math"

// Element defaults
const (
	DefaultFontFamily      = "Go"
	DefaultTextFontSize    = 24
	DefaultTextBoxFontSize = 14
	DefaultFill            = "#000000"
	// TextBoxMargin is subtracted from the canvas width to get a new text box's wrap width
	TextBoxMargin = 40.0
	// ForegroundImageRatio caps inserted images at half the fitting scale
	ForegroundImageRatio = 0.5

	DefaultTitleContent = "Card Title"
	DefaultBodyContent  = "Describe what this card does."
)

// ElementFactory builds elements with the designer's placement policies
type ElementFactory struct {
	FontFamily      string
	TextFontSize    int
	TextBoxFontSize int
	Fill            string
	Margin          float64
}

// DefaultElementFactory returns a factory using the package defaults
func DefaultElementFactory() ElementFactory {
	return ElementFactory{
		FontFamily:      DefaultFontFamily,
		TextFontSize:    DefaultTextFontSize,
		TextBoxFontSize: DefaultTextBoxFontSize,
		Fill:            DefaultFill,
		Margin:          TextBoxMargin,
	}
}

// Text creates a text element centered on the canvas
func (f ElementFactory) Text(dim Dimension, content string) Element {
	return Element{
		Kind:     ElementKindText,
		Position: dim.Center(),
		Anchor:   CenterAnchor(),
		Text: &TextStyle{
			Content:    content,
			FontFamily: f.FontFamily,
			FontSize:   f.TextFontSize,
			Weight:     FontWeightNormal,
			Style:      FontStyleNormal,
			Fill:       f.Fill,
			Align:      TextAlignCenter,
		},
	}
}

// TextBox creates a wrapping text box centered on the canvas, wrapping at
// canvas width minus the factory margin
func (f ElementFactory) TextBox(dim Dimension, content string) Element {
	wrap := dim.Width - f.Margin
	if wrap <= 0 {
		wrap = dim.Width
	}
	return Element{
		Kind:     ElementKindTextBox,
		Position: dim.Center(),
		Anchor:   CenterAnchor(),
		Text: &TextStyle{
			Content:    content,
			FontFamily: f.FontFamily,
			FontSize:   f.TextBoxFontSize,
			Weight:     FontWeightNormal,
			Style:      FontStyleNormal,
			Fill:       f.Fill,
			Align:      TextAlignLeft,
			WrapWidth:  wrap,
		},
	}
}

// Image creates a foreground image centered on the canvas at half of the
// largest scale that still fits it
func (f ElementFactory) Image(dim Dimension, src ImageRef, naturalWidth, naturalHeight int) (Element, error) {
	if naturalWidth <= 0 || naturalHeight <= 0 {
		return Element{}, ErrImageDecode.WithMessage("image has no pixels")
	}
	return Element{
		Kind:     ElementKindImage,
		Position: dim.Center(),
		Anchor:   CenterAnchor(),
		Image: &ImageStyle{
			Source:        src,
			Scale:         ForegroundScale(dim, naturalWidth, naturalHeight),
			NaturalWidth:  naturalWidth,
			NaturalHeight: naturalHeight,
		},
	}, nil
}

// Background creates a cover-scaled background image
func (f ElementFactory) Background(dim Dimension, src ImageRef, naturalWidth, naturalHeight int) (ImageStyle, error) {
	if naturalWidth <= 0 || naturalHeight <= 0 {
		return ImageStyle{}, ErrImageDecode.WithMessage("image has no pixels")
	}
	return ImageStyle{
		Source:        src,
		Scale:         CoverScale(dim, naturalWidth, naturalHeight),
		NaturalWidth:  naturalWidth,
		NaturalHeight: naturalHeight,
	}, nil
}

// Defaults returns the title and body installed by Init
func (f ElementFactory) Defaults(dim Dimension) []Element {
	title := f.Text(dim, DefaultTitleContent)
	title.Position.Y = dim.Height / 4
	body := f.TextBox(dim, DefaultBodyContent)
	return []Element{title, body}
}

// ForegroundScale is min(W/w, H/h) * 0.5
func ForegroundScale(dim Dimension, naturalWidth, naturalHeight int) float64 {
	return math.Min(dim.Width/float64(naturalWidth), dim.Height/float64(naturalHeight)) * ForegroundImageRatio
}

// CoverScale is max(W/w, H/h): the image covers the canvas on both axes
func CoverScale(dim Dimension, naturalWidth, naturalHeight int) float64 {
	return math.Max(dim.Width/float64(naturalWidth), dim.Height/float64(naturalHeight))
}
