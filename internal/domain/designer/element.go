package designer

import (
	"fmt"

	"github.com/jinzhu/copier"
)

// ElementKind discriminates the Element tagged union
type ElementKind string

const (
	ElementKindText    ElementKind = "TEXT"    // single line or free-flowing text
	ElementKindTextBox ElementKind = "TEXTBOX" // text reflowed within a wrap width
	ElementKindImage   ElementKind = "IMAGE"   // foreground raster
)

// IsValid checks if the ElementKind is a valid value
func (k ElementKind) IsValid() bool {
	switch k {
	case ElementKindText, ElementKindTextBox, ElementKindImage:
		return true
	}
	return false
}

// String returns the string representation of ElementKind
func (k ElementKind) String() string {
	return string(k)
}

// IsText returns true for kinds that carry text styling
func (k ElementKind) IsText() bool {
	return k == ElementKindText || k == ElementKindTextBox
}

// AllElementKinds returns all valid ElementKind values
func AllElementKinds() []ElementKind {
	return []ElementKind{ElementKindText, ElementKindTextBox, ElementKindImage}
}

// FontWeight is the weight of a text element
type FontWeight string

const (
	FontWeightNormal FontWeight = "NORMAL"
	FontWeightBold   FontWeight = "BOLD"
)

// IsValid checks if the FontWeight is a valid value
func (w FontWeight) IsValid() bool {
	return w == FontWeightNormal || w == FontWeightBold
}

// String returns the string representation of FontWeight
func (w FontWeight) String() string {
	return string(w)
}

// FontStyle is the slant of a text element
type FontStyle string

const (
	FontStyleNormal FontStyle = "NORMAL"
	FontStyleItalic FontStyle = "ITALIC"
)

// IsValid checks if the FontStyle is a valid value
func (s FontStyle) IsValid() bool {
	return s == FontStyleNormal || s == FontStyleItalic
}

// String returns the string representation of FontStyle
func (s FontStyle) String() string {
	return string(s)
}

// TextAlign is the horizontal alignment of text lines
type TextAlign string

const (
	TextAlignLeft    TextAlign = "LEFT"
	TextAlignCenter  TextAlign = "CENTER"
	TextAlignRight   TextAlign = "RIGHT"
	TextAlignJustify TextAlign = "JUSTIFY"
)

// IsValid checks if the TextAlign is a valid value
func (a TextAlign) IsValid() bool {
	switch a {
	case TextAlignLeft, TextAlignCenter, TextAlignRight, TextAlignJustify:
		return true
	}
	return false
}

// String returns the string representation of TextAlign
func (a TextAlign) String() string {
	return string(a)
}

// ImageOrigin tells where an image's bytes came from
type ImageOrigin string

const (
	ImageOriginUpload ImageOrigin = "UPLOAD" // decoded from an operator upload
	ImageOriginRemote ImageOrigin = "REMOTE" // fetched from a URL
)

// IsValid checks if the ImageOrigin is a valid value
func (o ImageOrigin) IsValid() bool {
	return o == ImageOriginUpload || o == ImageOriginRemote
}

// Point is a position in reference units
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// ImageRef points at raster bytes held by the asset store
type ImageRef struct {
	AssetKey    string      `json:"asset_key" yaml:"asset_key"`
	ContentType string      `json:"content_type" yaml:"content_type"`
	Origin      ImageOrigin `json:"origin" yaml:"origin"`
	URL         string      `json:"url,omitempty" yaml:"url,omitempty"`
}

// IsRemote returns true if the image was sourced from a URL
func (r ImageRef) IsRemote() bool {
	return r.Origin == ImageOriginRemote
}

// TextStyle holds the content and styling of TEXT and TEXTBOX elements
type TextStyle struct {
	Content    string     `json:"content" yaml:"content"`
	FontFamily string     `json:"font_family" yaml:"font_family"`
	FontSize   int        `json:"font_size" yaml:"font_size"`
	Weight     FontWeight `json:"weight" yaml:"weight"`
	Style      FontStyle  `json:"style" yaml:"style"`
	Fill       string     `json:"fill" yaml:"fill"`
	Align      TextAlign  `json:"align" yaml:"align"`
	WrapWidth  float64    `json:"wrap_width,omitempty" yaml:"wrap_width,omitempty"` // TEXTBOX only
}

// ImageStyle holds the raster reference and scale of an IMAGE element or
// of the document background
type ImageStyle struct {
	Source        ImageRef `json:"source" yaml:"source"`
	Scale         float64  `json:"scale" yaml:"scale"`
	NaturalWidth  int      `json:"natural_width" yaml:"natural_width"`
	NaturalHeight int      `json:"natural_height" yaml:"natural_height"`
}

// RenderedSize returns the drawn size in reference units
func (s ImageStyle) RenderedSize() (width, height float64) {
	return float64(s.NaturalWidth) * s.Scale, float64(s.NaturalHeight) * s.Scale
}

// Element is one drawable record of the scene graph
type Element struct {
	ID       string      `json:"id" yaml:"id"`
	Kind     ElementKind `json:"kind" yaml:"kind"`
	Position Point       `json:"position" yaml:"position"`
	Anchor   Anchor      `json:"anchor" yaml:"anchor"`
	Text     *TextStyle  `json:"text,omitempty" yaml:"text,omitempty"`
	Image    *ImageStyle `json:"image,omitempty" yaml:"image,omitempty"`
}

// Validate checks that the payload matches the kind
func (e Element) Validate() error {
	if !e.Kind.IsValid() {
		return ErrInvalidPropertyValue.WithMessage("invalid element kind: " + string(e.Kind))
	}
	if !e.Anchor.IsValid() {
		return ErrInvalidPropertyValue.WithMessage("invalid element anchor")
	}
	switch {
	case e.Kind.IsText():
		if e.Text == nil || e.Image != nil {
			return ErrInvalidPropertyValue.WithMessage("text element must carry text style only")
		}
		t := e.Text
		if t.FontSize <= 0 || !t.Weight.IsValid() || !t.Style.IsValid() || !t.Align.IsValid() {
			return ErrInvalidPropertyValue.WithMessage("text element has invalid style")
		}
		if _, err := NormalizeColor(t.Fill); err != nil {
			return err
		}
		if e.Kind == ElementKindTextBox && t.WrapWidth <= 0 {
			return ErrInvalidPropertyValue.WithMessage("text box requires a positive wrap width")
		}
		if e.Kind == ElementKindText && t.WrapWidth != 0 {
			return ErrInvalidPropertyValue.WithMessage("wrap width applies to text boxes only")
		}
	case e.Kind == ElementKindImage:
		if e.Image == nil || e.Text != nil {
			return ErrInvalidPropertyValue.WithMessage("image element must carry image style only")
		}
		return e.Image.validate()
	}
	return nil
}

func (s ImageStyle) validate() error {
	if s.NaturalWidth <= 0 || s.NaturalHeight <= 0 {
		return ErrInvalidPropertyValue.WithMessage("image has no pixels")
	}
	if s.Scale <= 0 {
		return ErrInvalidPropertyValue.WithMessage("image scale must be positive")
	}
	if s.Source.AssetKey == "" || !s.Source.Origin.IsValid() {
		return ErrInvalidPropertyValue.WithMessage("image source is incomplete")
	}
	return nil
}

// Clone returns a deep copy of the element
func (e Element) Clone() Element {
	var out Element
	deepCopy(&out, &e)
	return out
}

// deepCopy panics if copier rejects its arguments
func deepCopy(dst, src any) {
	if err := copier.CopyWithOption(dst, src, copier.Option{DeepCopy: true}); err != nil {
		panic(fmt.Sprintf("designer: deep copy %T: %v", src, err))
	}
}
