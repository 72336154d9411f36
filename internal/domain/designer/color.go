package designer

import (
	"strings"
)

var namedColors = map[string]string{
	"black":   "#000000",
	"white":   "#ffffff",
	"red":     "#ff0000",
	"green":   "#008000",
	"blue":    "#0000ff",
	"yellow":  "#ffff00",
	"orange":  "#ffa500",
	"purple":  "#800080",
	"gray":    "#808080",
	"grey":    "#808080",
	"silver":  "#c0c0c0",
	"maroon":  "#800000",
	"navy":    "#000080",
	"teal":    "#008080",
	"gold":    "#ffd700",
	"crimson": "#dc143c",
}

// NormalizeColor accepts #rgb, #rrggbb, #rrggbbaa or a basic color name and
// returns the lower-case hex form stored on elements.
func NormalizeColor(s string) (string, error) {
	c := strings.ToLower(strings.TrimSpace(s))
	if hex, ok := namedColors[c]; ok {
		return hex, nil
	}
	if !strings.HasPrefix(c, "#") {
		return "", ErrInvalidPropertyValue.WithMessage("invalid color: " + s)
	}
	digits := c[1:]
	switch len(digits) {
	case 3:
		var b strings.Builder
		b.WriteByte('#')
		for i := 0; i < 3; i++ {
			b.WriteByte(digits[i])
			b.WriteByte(digits[i])
		}
		digits = b.String()[1:]
	case 6, 8:
	default:
		return "", ErrInvalidPropertyValue.WithMessage("invalid color: " + s)
	}
	for _, r := range digits {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return "", ErrInvalidPropertyValue.WithMessage("invalid color: " + s)
		}
	}
	return "#" + digits, nil
}

// IsNamedColor reports whether s is one of the accepted color names
func IsNamedColor(s string) bool {
	_, ok := namedColors[strings.ToLower(strings.TrimSpace(s))]
	return ok
}
