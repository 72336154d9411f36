package designer

import (
	"context"

	"github.com/google/uuid"
)

// TemplateRepository is the template store. It is append-only: names are
// not unique and saving never overwrites an existing template.
type TemplateRepository interface {
	// List returns every saved template in save order
	List(ctx context.Context) ([]Template, error)

	// Append stores a new template
	Append(ctx context.Context, template *Template) error

	// FindByID finds a template by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Template, error)
}
