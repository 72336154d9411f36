package designer

// FontLoader starts loading a font family. The returned channel closes when
// the attempt finishes; callers may ignore it.
type FontLoader interface {
	EnsureLoaded(family string) <-chan struct{}
}

// Selection tracks at most one selected element of a document and applies
// style changes to it through the document's generic setter.
type Selection struct {
	doc   *CanvasDocument
	fonts FontLoader
	id    string
}

// NewSelection creates a selection controller over doc. fonts may be nil.
func NewSelection(doc *CanvasDocument, fonts FontLoader) *Selection {
	return &Selection{doc: doc, fonts: fonts}
}

// Select makes id the selected element
func (s *Selection) Select(id string) error {
	if _, ok := s.doc.Element(id); !ok {
		return ErrElementNotFound.WithMessage("element not found: " + id)
	}
	s.id = id
	return nil
}

// Deselect clears the selection
func (s *Selection) Deselect() {
	s.id = ""
}

// Selected returns the selected element. A selection whose element has been
// removed is cleared.
func (s *Selection) Selected() (Element, bool) {
	if s.id == "" {
		return Element{}, false
	}
	e, ok := s.doc.Element(s.id)
	if !ok {
		s.id = ""
		return Element{}, false
	}
	return e, true
}

// SelectedID returns the selected element id or ""
func (s *Selection) SelectedID() string {
	if _, ok := s.Selected(); !ok {
		return ""
	}
	return s.id
}

// Apply sets a property on the selected element
func (s *Selection) Apply(prop Property, value any) error {
	e, ok := s.Selected()
	if !ok {
		return ErrNothingSelected
	}
	if err := s.doc.UpdateElementStyle(e.ID, prop, value); err != nil {
		return err
	}
	if prop == PropertyFontFamily && s.fonts != nil {
		if family, ok := value.(string); ok {
			s.fonts.EnsureLoaded(family)
		}
	}
	return nil
}

// SetFontSize sets the font size in whole points
func (s *Selection) SetFontSize(size int) error {
	return s.Apply(PropertyFontSize, size)
}

// SetFill sets the text color
func (s *Selection) SetFill(color string) error {
	return s.Apply(PropertyFill, color)
}

// SetFontFamily sets the font family and starts loading it if needed
func (s *Selection) SetFontFamily(family string) error {
	return s.Apply(PropertyFontFamily, family)
}

// SetAlign sets the horizontal text alignment
func (s *Selection) SetAlign(align TextAlign) error {
	return s.Apply(PropertyAlign, string(align))
}

// ToggleBold flips the weight between NORMAL and BOLD
func (s *Selection) ToggleBold() error {
	e, ok := s.Selected()
	if !ok {
		return ErrNothingSelected
	}
	next := FontWeightBold
	if e.Text != nil && e.Text.Weight == FontWeightBold {
		next = FontWeightNormal
	}
	return s.Apply(PropertyFontWeight, string(next))
}

// ToggleItalic flips the style between NORMAL and ITALIC
func (s *Selection) ToggleItalic() error {
	e, ok := s.Selected()
	if !ok {
		return ErrNothingSelected
	}
	next := FontStyleItalic
	if e.Text != nil && e.Text.Style == FontStyleItalic {
		next = FontStyleNormal
	}
	return s.Apply(PropertyFontStyle, string(next))
}

// SetScale sets the render scale of the selected image
func (s *Selection) SetScale(scale float64) error {
	return s.Apply(PropertyScale, scale)
}

// SetAnchor sets the origin anchor of the selected element
func (s *Selection) SetAnchor(anchor Anchor) error {
	return s.Apply(PropertyAnchor, anchor)
}
