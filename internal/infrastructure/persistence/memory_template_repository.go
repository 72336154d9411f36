package persistence

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/fulluproar/backoffice/internal/domain/designer"
	"github.com/fulluproar/backoffice/internal/domain/shared"
)

// MemoryTemplateRepository is a process-local template store for tests and
// the "memory" driver. Templates are kept in save order.
type MemoryTemplateRepository struct {
	mu        sync.RWMutex
	templates []designer.Template
	index     map[uuid.UUID]int
}

// NewMemoryTemplateRepository creates an empty in-memory store
func NewMemoryTemplateRepository() *MemoryTemplateRepository {
	return &MemoryTemplateRepository{index: make(map[uuid.UUID]int)}
}

// List returns copies of every template in save order
func (r *MemoryTemplateRepository) List(ctx context.Context) ([]designer.Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]designer.Template, len(r.templates))
	for i, t := range r.templates {
		out[i] = detach(t)
	}
	return out, nil
}

// Append stores a copy of the template
func (r *MemoryTemplateRepository) Append(ctx context.Context, template *designer.Template) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.index[template.ID]; ok {
		return shared.NewDomainError("ALREADY_EXISTS", "template already exists")
	}
	r.index[template.ID] = len(r.templates)
	r.templates = append(r.templates, detach(*template))
	return nil
}

// FindByID returns a copy of the template with the given id
func (r *MemoryTemplateRepository) FindByID(ctx context.Context, id uuid.UUID) (*designer.Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	t := detach(r.templates[i])
	return &t, nil
}

// detach deep-copies the snapshot and drops pending events
func detach(t designer.Template) designer.Template {
	return designer.Template{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: t.BaseEntity,
			Version:    t.Version,
		},
		Name:     t.Name,
		Snapshot: t.Snapshot.Clone(),
	}
}

var _ designer.TemplateRepository = (*MemoryTemplateRepository)(nil)
