package designer

import "strings"

// OriginX is the horizontal origin of an element's anchor
type OriginX string

const (
	OriginLeft    OriginX = "left"
	OriginCenterX OriginX = "center"
	OriginRight   OriginX = "right"
)

// OriginY is the vertical origin of an element's anchor
type OriginY string

const (
	OriginTop     OriginY = "top"
	OriginCenterY OriginY = "center"
	OriginBottom  OriginY = "bottom"
)

// Anchor is the point of an element's box that sits on its Position
type Anchor struct {
	X OriginX `json:"origin_x" yaml:"origin_x"`
	Y OriginY `json:"origin_y" yaml:"origin_y"`
}

// CenterAnchor anchors the element at its center
func CenterAnchor() Anchor {
	return Anchor{X: OriginCenterX, Y: OriginCenterY}
}

// TopLeftAnchor anchors the element at its top-left corner
func TopLeftAnchor() Anchor {
	return Anchor{X: OriginLeft, Y: OriginTop}
}

// IsValid checks both origins
func (a Anchor) IsValid() bool {
	switch a.X {
	case OriginLeft, OriginCenterX, OriginRight:
	default:
		return false
	}
	switch a.Y {
	case OriginTop, OriginCenterY, OriginBottom:
		return true
	}
	return false
}

// Fractions returns the anchor as fractions of the box (0, 0.5 or 1 per axis)
func (a Anchor) Fractions() (fx, fy float64) {
	switch a.X {
	case OriginCenterX:
		fx = 0.5
	case OriginRight:
		fx = 1
	}
	switch a.Y {
	case OriginCenterY:
		fy = 0.5
	case OriginBottom:
		fy = 1
	}
	return fx, fy
}

// TopLeft returns the top-left corner of a w x h box anchored at pos
func (a Anchor) TopLeft(pos Point, w, h float64) Point {
	fx, fy := a.Fractions()
	return Point{X: pos.X - fx*w, Y: pos.Y - fy*h}
}

// String renders the anchor as "top-left", "center", "bottom-right" etc.
func (a Anchor) String() string {
	if a.X == OriginCenterX && a.Y == OriginCenterY {
		return "center"
	}
	return string(a.Y) + "-" + string(a.X)
}

// ParseAnchor accepts "center", "top-left", "bottom-center", "left" and the
// like. A single horizontal or vertical word is centered on the other axis;
// two words on the same axis are rejected.
func ParseAnchor(s string) (Anchor, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "center" || s == "middle" {
		return CenterAnchor(), nil
	}
	a := CenterAnchor()
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '_' || r == ' ' })
	if len(parts) == 0 || len(parts) > 2 {
		return Anchor{}, ErrInvalidPropertyValue.WithMessage("invalid anchor: " + s)
	}
	var hasX, hasY bool
	for _, p := range parts {
		switch p {
		case "left", "right":
			if hasX {
				return Anchor{}, ErrInvalidPropertyValue.WithMessage("invalid anchor: " + s)
			}
			a.X, hasX = OriginX(p), true
		case "top", "bottom":
			if hasY {
				return Anchor{}, ErrInvalidPropertyValue.WithMessage("invalid anchor: " + s)
			}
			a.Y, hasY = OriginY(p), true
		case "center", "middle":
		default:
			return Anchor{}, ErrInvalidPropertyValue.WithMessage("invalid anchor: " + s)
		}
	}
	return a, nil
}
