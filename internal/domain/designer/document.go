package designer

import (
	"github.com/google/uuid"
)

// DocumentState is the lifecycle state of a CanvasDocument
type DocumentState string

const (
	DocumentStateUninitialized DocumentState = "UNINITIALIZED"
	DocumentStateInitialized   DocumentState = "INITIALIZED" // default content after Init
	DocumentStateRestored      DocumentState = "RESTORED"    // content restored from a snapshot
	DocumentStateEdited        DocumentState = "EDITED"
	DocumentStateSaved         DocumentState = "SAVED"
	DocumentStateExported      DocumentState = "EXPORTED"
)

// String returns the string representation of DocumentState
func (s DocumentState) String() string {
	return string(s)
}

// Direction is a reorder direction in the paint order
type Direction string

const (
	DirectionForward  Direction = "FORWARD"  // towards the top of the paint order
	DirectionBackward Direction = "BACKWARD" // towards the bottom of the paint order
)

// IsValid checks if the Direction is a valid value
func (d Direction) IsValid() bool {
	return d == DirectionForward || d == DirectionBackward
}

// ReinitListener is notified after Init has finished rebuilding the document
type ReinitListener func(dim Dimension)

// CanvasDocument is the scene graph: an ordered arena of elements over an
// optional background, scoped to one Dimension. Slice order is paint order.
//
// CanvasDocument is not safe for concurrent use; its owner serializes access.
type CanvasDocument struct {
	dimension  Dimension
	background *ImageStyle
	elements   []Element
	guides     []Guide
	state      DocumentState
	factory    ElementFactory
	listeners  []ReinitListener
	newID      func() string
}

// DocumentOption configures a CanvasDocument
type DocumentOption func(*CanvasDocument)

// WithElementFactory sets the factory used for the default content
func WithElementFactory(f ElementFactory) DocumentOption {
	return func(d *CanvasDocument) {
		d.factory = f
	}
}

// WithIDGenerator overrides element id generation
func WithIDGenerator(gen func() string) DocumentOption {
	return func(d *CanvasDocument) {
		d.newID = gen
	}
}

// NewCanvasDocument creates an uninitialized document
func NewCanvasDocument(opts ...DocumentOption) *CanvasDocument {
	d := &CanvasDocument{
		state:   DocumentStateUninitialized,
		factory: DefaultElementFactory(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// OnReinitialized registers a listener called at the end of every Init
func (d *CanvasDocument) OnReinitialized(l ReinitListener) {
	d.listeners = append(d.listeners, l)
}

// Init discards all content, installs the centerline guides and the default
// title and body for dim. The returned channel is closed once
// reinitialization is complete; callers restoring a snapshot wait on it.
func (d *CanvasDocument) Init(dim Dimension) (<-chan struct{}, error) {
	if !dim.IsValid() {
		return nil, ErrInvalidDimension
	}
	done := make(chan struct{})

	d.dimension = dim
	d.background = nil
	d.guides = CenterGuides(dim)
	d.elements = d.elements[:0]
	for _, e := range d.factory.Defaults(dim) {
		e.ID = d.newID()
		d.elements = append(d.elements, e)
	}
	d.state = DocumentStateInitialized

	for _, l := range d.listeners {
		l(dim)
	}
	close(done)
	return done, nil
}

// Dimension returns the current canvas size
func (d *CanvasDocument) Dimension() Dimension {
	return d.dimension
}

// State returns the lifecycle state
func (d *CanvasDocument) State() DocumentState {
	return d.state
}

// Guides returns the current centerline guides
func (d *CanvasDocument) Guides() []Guide {
	out := make([]Guide, len(d.guides))
	copy(out, d.guides)
	return out
}

// Background returns a copy of the background image, if any
func (d *CanvasDocument) Background() (ImageStyle, bool) {
	if d.background == nil {
		return ImageStyle{}, false
	}
	return *d.background, true
}

// Elements returns deep copies of the elements in paint order
func (d *CanvasDocument) Elements() []Element {
	out := make([]Element, len(d.elements))
	for i, e := range d.elements {
		out[i] = e.Clone()
	}
	return out
}

// ElementIDs returns element ids in paint order
func (d *CanvasDocument) ElementIDs() []string {
	ids := make([]string, len(d.elements))
	for i, e := range d.elements {
		ids[i] = e.ID
	}
	return ids
}

// Len returns the number of elements
func (d *CanvasDocument) Len() int {
	return len(d.elements)
}

// Element returns a copy of the element with the given id
func (d *CanvasDocument) Element(id string) (Element, bool) {
	i := d.indexOf(id)
	if i < 0 {
		return Element{}, false
	}
	return d.elements[i].Clone(), true
}

func (d *CanvasDocument) indexOf(id string) int {
	for i := range d.elements {
		if d.elements[i].ID == id {
			return i
		}
	}
	return -1
}

// AddElement appends e at the top of the paint order under a fresh id and
// returns that id
func (d *CanvasDocument) AddElement(e Element) (string, error) {
	if d.state == DocumentStateUninitialized {
		return "", ErrDocumentUninitialized
	}
	if err := e.Validate(); err != nil {
		return "", err
	}
	e = e.Clone()
	e.ID = d.newID()
	d.elements = append(d.elements, e)
	d.touch()
	return e.ID, nil
}

// RemoveElement deletes the element with the given id. It is a no-op when
// the id is absent; the return value reports whether anything was removed.
func (d *CanvasDocument) RemoveElement(id string) bool {
	i := d.indexOf(id)
	if i < 0 {
		return false
	}
	d.elements = append(d.elements[:i], d.elements[i+1:]...)
	d.touch()
	return true
}

// UpdateElementStyle sets one property on one element. Unknown ids, properties
// that do not apply to the element's kind and malformed values are reported
// as errors and leave the document unchanged.
func (d *CanvasDocument) UpdateElementStyle(id string, prop Property, value any) error {
	i := d.indexOf(id)
	if i < 0 {
		return ErrElementNotFound.WithMessage("element not found: " + id)
	}
	updated := d.elements[i].Clone()
	if err := applyProperty(&updated, prop, value); err != nil {
		return err
	}
	d.elements[i] = updated
	d.touch()
	return nil
}

// Reorder swaps the element with its neighbour in the given direction. At
// either boundary it is a no-op and reports false.
func (d *CanvasDocument) Reorder(id string, dir Direction) (bool, error) {
	if !dir.IsValid() {
		return false, ErrInvalidPropertyValue.WithMessage("invalid direction: " + string(dir))
	}
	i := d.indexOf(id)
	if i < 0 {
		return false, ErrElementNotFound.WithMessage("element not found: " + id)
	}
	j := i + 1
	if dir == DirectionBackward {
		j = i - 1
	}
	if j < 0 || j >= len(d.elements) {
		return false, nil
	}
	d.elements[i], d.elements[j] = d.elements[j], d.elements[i]
	d.touch()
	return true, nil
}

// SetBackground installs a full-bleed background image beneath every element
func (d *CanvasDocument) SetBackground(img ImageStyle) error {
	if d.state == DocumentStateUninitialized {
		return ErrDocumentUninitialized
	}
	if err := img.validate(); err != nil {
		return err
	}
	d.background = &img
	d.touch()
	return nil
}

// ClearBackground removes the background image, reporting whether one was set
func (d *CanvasDocument) ClearBackground() bool {
	if d.background == nil {
		return false
	}
	d.background = nil
	d.touch()
	return true
}

// Snapshot returns a lossless deep copy of the content. Guides are excluded.
func (d *CanvasDocument) Snapshot() SceneSnapshot {
	s := SceneSnapshot{
		Version:   SnapshotVersion,
		Dimension: d.dimension,
		Elements:  d.Elements(),
	}
	if d.background != nil {
		bg := *d.background
		s.Background = &bg
	}
	return s
}

// Restore replaces the content with a snapshot taken at the current
// dimension. Callers reinitialize to the snapshot's dimension first.
func (d *CanvasDocument) Restore(s SceneSnapshot) error {
	if d.state == DocumentStateUninitialized {
		return ErrDocumentUninitialized
	}
	if err := s.Validate(); err != nil {
		return err
	}
	if s.Dimension != d.dimension {
		return ErrInvalidSnapshot.WithMessage("snapshot dimension does not match the document")
	}
	c := s.Clone()
	d.background = c.Background
	d.elements = c.Elements
	if d.elements == nil {
		d.elements = []Element{}
	}
	d.state = DocumentStateRestored
	return nil
}

// MarkSaved records that the content was persisted as a template
func (d *CanvasDocument) MarkSaved() {
	d.state = DocumentStateSaved
}

// MarkExported records that a raster was produced
func (d *CanvasDocument) MarkExported() {
	d.state = DocumentStateExported
}

func (d *CanvasDocument) touch() {
	d.state = DocumentStateEdited
}
