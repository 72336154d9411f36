package designer

// LayerKind distinguishes entries of the paint list
type LayerKind string

const (
	LayerKindBackground LayerKind = "BACKGROUND"
	LayerKindGuide      LayerKind = "GUIDE"
	LayerKindElement    LayerKind = "ELEMENT"
)

// Layer is one entry of the paint list, bottom first
type Layer struct {
	Kind      LayerKind    `json:"kind"`
	ElementID string       `json:"element_id,omitempty"`
	Element   *ElementKind `json:"element_kind,omitempty"`
	Guide     *Guide       `json:"guide,omitempty"`
}

// LayerService moves elements in the paint order. Guides are not elements:
// they always paint beneath every element and cannot be reordered.
type LayerService struct {
	doc *CanvasDocument
}

// NewLayerService creates a layer ordering service over doc
func NewLayerService(doc *CanvasDocument) *LayerService {
	return &LayerService{doc: doc}
}

// BringForward moves the element one step towards the top
func (l *LayerService) BringForward(id string) (bool, error) {
	return l.doc.Reorder(id, DirectionForward)
}

// SendBackward moves the element one step towards the bottom
func (l *LayerService) SendBackward(id string) (bool, error) {
	return l.doc.Reorder(id, DirectionBackward)
}

// Reorder moves the element one step in dir
func (l *LayerService) Reorder(id string, dir Direction) (bool, error) {
	return l.doc.Reorder(id, dir)
}

// PaintOrder returns the preview paint list: background, guides, then
// elements bottom to top
func (l *LayerService) PaintOrder() []Layer {
	layers := make([]Layer, 0, len(l.doc.guides)+len(l.doc.elements)+1)
	if l.doc.background != nil {
		layers = append(layers, Layer{Kind: LayerKindBackground})
	}
	for i := range l.doc.guides {
		g := l.doc.guides[i]
		layers = append(layers, Layer{Kind: LayerKindGuide, Guide: &g})
	}
	for _, e := range l.doc.elements {
		kind := e.Kind
		layers = append(layers, Layer{Kind: LayerKindElement, ElementID: e.ID, Element: &kind})
	}
	return layers
}
