// Package fonts is the font registry of the card designer: built-in
// families embedded in the binary, families fetched on demand from a
// stylesheet endpoint, and families dropped into a watched local directory.
package fonts

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/fulluproar/backoffice/internal/domain/designer"
)

// Source tells where a family's font files came from
type Source string

const (
	SourceBuiltin Source = "builtin"
	SourceRemote  Source = "remote"
	SourceLocal   Source = "local"
)

// Status is the load state of a family
type Status string

const (
	StatusReady   Status = "ready"
	StatusLoading Status = "loading"
	StatusFailed  Status = "failed"
)

// Variant is one weight/style combination of a family
type Variant struct {
	Weight designer.FontWeight
	Style  designer.FontStyle
}

// Common variants
var (
	Regular    = Variant{Weight: designer.FontWeightNormal, Style: designer.FontStyleNormal}
	Bold       = Variant{Weight: designer.FontWeightBold, Style: designer.FontStyleNormal}
	Italic     = Variant{Weight: designer.FontWeightNormal, Style: designer.FontStyleItalic}
	BoldItalic = Variant{Weight: designer.FontWeightBold, Style: designer.FontStyleItalic}
)

// String returns a stable name such as "BOLD-ITALIC"
func (v Variant) String() string {
	return v.Weight.String() + "-" + v.Style.String()
}

// ParseVariant is the inverse of Variant.String
func ParseVariant(s string) (Variant, bool) {
	w, st, ok := strings.Cut(s, "-")
	if !ok {
		return Variant{}, false
	}
	v := Variant{Weight: designer.FontWeight(w), Style: designer.FontStyle(st)}
	if !v.Weight.IsValid() || !v.Style.IsValid() {
		return Variant{}, false
	}
	return v, true
}

// fallbacks lists the variants tried when v is missing, best first
func (v Variant) fallbacks() []Variant {
	return []Variant{
		v,
		{Weight: designer.FontWeightNormal, Style: v.Style},
		{Weight: v.Weight, Style: designer.FontStyleNormal},
		Regular,
	}
}

// FamilyInfo describes a registered family
type FamilyInfo struct {
	Name     string   `json:"name"`
	Source   Source   `json:"source"`
	Status   Status   `json:"status"`
	Variants []string `json:"variants,omitempty"`
}

var folder = cases.Fold()

// normalizeFamily builds the lookup key of a family name: trimmed,
// inner whitespace collapsed, case folded
func normalizeFamily(name string) string {
	return folder.String(strings.Join(strings.Fields(name), " "))
}

// displayFamily trims and collapses whitespace, keeping the caller's casing
func displayFamily(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
