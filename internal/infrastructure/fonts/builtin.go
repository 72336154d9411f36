package fonts

import (
	"github.com/go-fonts/latin-modern/lmmono10italic"
	"github.com/go-fonts/latin-modern/lmmono10regular"
	"github.com/go-fonts/latin-modern/lmroman10bold"
	"github.com/go-fonts/latin-modern/lmroman10bolditalic"
	"github.com/go-fonts/latin-modern/lmroman10italic"
	"github.com/go-fonts/latin-modern/lmroman10regular"
	"github.com/go-fonts/latin-modern/lmsans10bold"
	"github.com/go-fonts/latin-modern/lmsans10oblique"
	"github.com/go-fonts/latin-modern/lmsans10regular"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomediumitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
	"golang.org/x/image/font/gofont/gosmallcapsitalic"
)

// Built-in family names
const (
	FamilyGo               = "Go"
	FamilyGoMono           = "Go Mono"
	FamilyGoMedium         = "Go Medium"
	FamilyGoSmallcaps      = "Go Smallcaps"
	FamilyLatinModernRoman = "Latin Modern Roman"
	FamilyLatinModernSans  = "Latin Modern Sans"
	FamilyLatinModernMono  = "Latin Modern Mono"
)

// FallbackFamily is used whenever a requested family is not ready
const FallbackFamily = FamilyGo

// builtinFamilies returns the embedded font files in display order
func builtinFamilies() []struct {
	name     string
	variants map[Variant][]byte
} {
	return []struct {
		name     string
		variants map[Variant][]byte
	}{
		{FamilyGo, map[Variant][]byte{
			Regular: goregular.TTF, Bold: gobold.TTF, Italic: goitalic.TTF, BoldItalic: gobolditalic.TTF,
		}},
		{FamilyGoMono, map[Variant][]byte{
			Regular: gomono.TTF, Bold: gomonobold.TTF, Italic: gomonoitalic.TTF, BoldItalic: gomonobolditalic.TTF,
		}},
		{FamilyGoMedium, map[Variant][]byte{
			Regular: gomedium.TTF, Italic: gomediumitalic.TTF,
		}},
		{FamilyGoSmallcaps, map[Variant][]byte{
			Regular: gosmallcaps.TTF, Italic: gosmallcapsitalic.TTF,
		}},
		{FamilyLatinModernRoman, map[Variant][]byte{
			Regular: lmroman10regular.TTF, Bold: lmroman10bold.TTF,
			Italic: lmroman10italic.TTF, BoldItalic: lmroman10bolditalic.TTF,
		}},
		{FamilyLatinModernSans, map[Variant][]byte{
			Regular: lmsans10regular.TTF, Bold: lmsans10bold.TTF, Italic: lmsans10oblique.TTF,
		}},
		{FamilyLatinModernMono, map[Variant][]byte{
			Regular: lmmono10regular.TTF, Italic: lmmono10italic.TTF,
		}},
	}
}

// BuiltinFamilyNames returns the names of the embedded families
func BuiltinFamilyNames() []string {
	families := builtinFamilies()
	names := make([]string, len(families))
	for i, f := range families {
		names[i] = f.name
	}
	return names
}
