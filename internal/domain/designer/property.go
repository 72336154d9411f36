package designer

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Limits on style values
const (
	MinFontSize      = 1
	MaxFontSize      = 512
	MaxScale         = 100.0
	MaxFontFamilyLen = 100
)

// Property names an element attribute accepted by the generic style setter
type Property string

const (
	PropertyContent    Property = "content"
	PropertyFontSize   Property = "fontSize"
	PropertyFill       Property = "fill"
	PropertyFontFamily Property = "fontFamily"
	PropertyFontWeight Property = "fontWeight"
	PropertyFontStyle  Property = "fontStyle"
	PropertyAlign      Property = "align"
	PropertyWrapWidth  Property = "wrapWidth"
	PropertyScale      Property = "scale"
	PropertyAnchor     Property = "anchor"
	PropertyPosition   Property = "position"
)

// IsValid checks if the Property is a known name
func (p Property) IsValid() bool {
	switch p {
	case PropertyContent, PropertyFontSize, PropertyFill, PropertyFontFamily,
		PropertyFontWeight, PropertyFontStyle, PropertyAlign, PropertyWrapWidth,
		PropertyScale, PropertyAnchor, PropertyPosition:
		return true
	}
	return false
}

// String returns the string representation of Property
func (p Property) String() string {
	return string(p)
}

// AppliesTo reports whether the property can be set on an element kind
func (p Property) AppliesTo(kind ElementKind) bool {
	switch p {
	case PropertyAnchor, PropertyPosition:
		return kind.IsValid()
	case PropertyContent, PropertyFontSize, PropertyFill, PropertyFontFamily,
		PropertyFontWeight, PropertyFontStyle, PropertyAlign:
		return kind.IsText()
	case PropertyWrapWidth:
		return kind == ElementKindTextBox
	case PropertyScale:
		return kind == ElementKindImage
	}
	return false
}

// AllProperties returns all property names
func AllProperties() []Property {
	return []Property{
		PropertyContent, PropertyFontSize, PropertyFill, PropertyFontFamily,
		PropertyFontWeight, PropertyFontStyle, PropertyAlign, PropertyWrapWidth,
		PropertyScale, PropertyAnchor, PropertyPosition,
	}
}

// applyProperty sets prop on e. The caller passes a clone and only commits
// it when no error is returned.
func applyProperty(e *Element, prop Property, value any) error {
	if !prop.IsValid() {
		return ErrPropertyNotApplicable.WithMessage("unknown property: " + string(prop))
	}
	if !prop.AppliesTo(e.Kind) {
		return ErrPropertyNotApplicable.WithMessage(
			fmt.Sprintf("property %s does not apply to %s elements", prop, e.Kind))
	}

	switch prop {
	case PropertyContent:
		s, ok := value.(string)
		if !ok {
			return invalidValue(prop, value)
		}
		e.Text.Content = s
	case PropertyFontSize:
		f, ok := toFloat(value)
		if !ok || f != math.Trunc(f) || f < MinFontSize || f > MaxFontSize {
			return invalidValue(prop, value)
		}
		e.Text.FontSize = int(f)
	case PropertyFill:
		s, ok := value.(string)
		if !ok {
			return invalidValue(prop, value)
		}
		c, err := NormalizeColor(s)
		if err != nil {
			return err
		}
		e.Text.Fill = c
	case PropertyFontFamily:
		s, ok := value.(string)
		s = strings.TrimSpace(s)
		if !ok || s == "" || len(s) > MaxFontFamilyLen {
			return invalidValue(prop, value)
		}
		e.Text.FontFamily = s
	case PropertyFontWeight:
		w := FontWeight(strings.ToUpper(toString(value)))
		if !w.IsValid() {
			return invalidValue(prop, value)
		}
		e.Text.Weight = w
	case PropertyFontStyle:
		st := FontStyle(strings.ToUpper(toString(value)))
		if !st.IsValid() {
			return invalidValue(prop, value)
		}
		e.Text.Style = st
	case PropertyAlign:
		a := TextAlign(strings.ToUpper(toString(value)))
		if !a.IsValid() {
			return invalidValue(prop, value)
		}
		e.Text.Align = a
	case PropertyWrapWidth:
		f, ok := toFloat(value)
		if !ok || f <= 0 {
			return invalidValue(prop, value)
		}
		e.Text.WrapWidth = f
	case PropertyScale:
		f, ok := toFloat(value)
		if !ok || f <= 0 || f > MaxScale {
			return invalidValue(prop, value)
		}
		e.Image.Scale = f
	case PropertyAnchor:
		a, err := toAnchor(value)
		if err != nil {
			return err
		}
		e.Anchor = a
	case PropertyPosition:
		p, ok := toPoint(value)
		if !ok {
			return invalidValue(prop, value)
		}
		e.Position = p
	}
	return nil
}

func invalidValue(prop Property, value any) error {
	return ErrInvalidPropertyValue.WithMessage(fmt.Sprintf("invalid value %v for property %s", value, prop))
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		var err error
		if f, err = n.Float64(); err != nil {
			return 0, false
		}
	case string:
		var err error
		if f, err = strconv.ParseFloat(strings.TrimSpace(n), 64); err != nil {
			return 0, false
		}
	default:
		return 0, false
	}
	return f, finite(f)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case fmt.Stringer:
		return s.String()
	}
	return ""
}

func toAnchor(v any) (Anchor, error) {
	switch a := v.(type) {
	case Anchor:
		if !a.IsValid() {
			return Anchor{}, ErrInvalidPropertyValue.WithMessage("invalid anchor")
		}
		return a, nil
	case string:
		return ParseAnchor(a)
	case map[string]any:
		anchor := Anchor{X: OriginX(toString(a["origin_x"])), Y: OriginY(toString(a["origin_y"]))}
		if !anchor.IsValid() {
			return Anchor{}, ErrInvalidPropertyValue.WithMessage("invalid anchor")
		}
		return anchor, nil
	}
	return Anchor{}, ErrInvalidPropertyValue.WithMessage(fmt.Sprintf("invalid anchor: %v", v))
}

func toPoint(v any) (Point, bool) {
	switch p := v.(type) {
	case Point:
		return p, finite(p.X) && finite(p.Y)
	case map[string]any:
		x, okX := toFloat(p["x"])
		y, okY := toFloat(p["y"])
		return Point{X: x, Y: y}, okX && okY
	}
	return Point{}, false
}
