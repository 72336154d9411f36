package designer

import (
	"strings"
	"unicode/utf8"

	"github.com/fulluproar/backoffice/internal/domain/shared"
)

// Template name limits
const (
	MaxTemplateNameLength = 200
	UntitledTemplateName  = "Untitled"
)

// Template is a named, persisted snapshot of a card design. It is the
// aggregate root of the template store. Names are free text and are not
// unique: saving twice under one name creates two templates.
type Template struct {
	shared.BaseAggregateRoot
	Name     string
	Snapshot SceneSnapshot
}

// NewTemplate creates a template from a snapshot. Blank names become
// "Untitled".
func NewTemplate(name string, snapshot SceneSnapshot) (*Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = UntitledTemplateName
	}
	if utf8.RuneCountInString(name) > MaxTemplateNameLength {
		return nil, shared.NewDomainError("INVALID_NAME", "Template name cannot exceed 200 characters")
	}
	if err := snapshot.Validate(); err != nil {
		return nil, err
	}

	t := &Template{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Snapshot:          snapshot.Clone(),
	}
	t.AddDomainEvent(NewTemplateSavedEvent(t))
	return t, nil
}

// Dimension returns the canvas size the template was designed for
func (t *Template) Dimension() Dimension {
	return t.Snapshot.Dimension
}

// ElementCount returns the number of elements in the snapshot
func (t *Template) ElementCount() int {
	return len(t.Snapshot.Elements)
}
