package event

import (
	"context"
	"testing"

	"github.com/fulluproar/backoffice/internal/domain/designer"
	"github.com/fulluproar/backoffice/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

type recordingHandler struct {
	name string
}

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error { return nil }
func (h *recordingHandler) EventTypes() []string                                     { return nil }

func TestHandlerRegistry_Register(t *testing.T) {
	tests := []struct {
		name      string
		types     []string
		query     string
		wantFound bool
	}{
		{"typed handler matches its type", []string{designer.EventTypeTemplateSaved}, designer.EventTypeTemplateSaved, true},
		{"typed handler ignores other types", []string{designer.EventTypeTemplateSaved}, designer.EventTypeCardExported, false},
		{"wildcard matches anything", nil, "SomethingElse", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewHandlerRegistry()
			h := &recordingHandler{name: "h"}
			registry.Register(h, tt.types...)

			handlers := registry.GetHandlers(tt.query)
			if tt.wantFound {
				assert.Equal(t, []shared.EventHandler{h}, handlers)
			} else {
				assert.Empty(t, handlers)
			}
		})
	}
}

func TestHandlerRegistry_TypedBeforeWildcard(t *testing.T) {
	registry := NewHandlerRegistry()
	wildcard := &recordingHandler{name: "wildcard"}
	typed := &recordingHandler{name: "typed"}

	registry.Register(wildcard)
	registry.Register(typed, designer.EventTypeCardExported)

	handlers := registry.GetHandlers(designer.EventTypeCardExported)
	assert.Equal(t, []shared.EventHandler{typed, wildcard}, handlers)
}

func TestHandlerRegistry_DuplicateRegistration(t *testing.T) {
	registry := NewHandlerRegistry()
	h := &recordingHandler{name: "h"}

	registry.Register(h, designer.EventTypeTemplateSaved)
	registry.Register(h, designer.EventTypeTemplateSaved, designer.EventTypeCardExported)

	assert.Len(t, registry.GetHandlers(designer.EventTypeTemplateSaved), 1)
	assert.Len(t, registry.GetHandlers(designer.EventTypeCardExported), 1)
	assert.Equal(t, 1, registry.Len())
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	registry := NewHandlerRegistry()
	keep := &recordingHandler{name: "keep"}
	drop := &recordingHandler{name: "drop"}

	registry.Register(keep, designer.EventTypeTemplateSaved)
	registry.Register(drop, designer.EventTypeTemplateSaved, designer.EventTypeCardExported)
	registry.Register(drop)

	registry.Unregister(drop)

	assert.Equal(t, []shared.EventHandler{keep}, registry.GetHandlers(designer.EventTypeTemplateSaved))
	assert.Empty(t, registry.GetHandlers(designer.EventTypeCardExported))
	assert.Equal(t, 1, registry.Len())
}

func TestHandlerRegistry_GetHandlersReturnsCopy(t *testing.T) {
	registry := NewHandlerRegistry()
	a := &recordingHandler{name: "a"}
	b := &recordingHandler{name: "b"}
	registry.Register(a, designer.EventTypeTemplateSaved)

	handlers := registry.GetHandlers(designer.EventTypeTemplateSaved)
	handlers[0] = b

	assert.Equal(t, []shared.EventHandler{a}, registry.GetHandlers(designer.EventTypeTemplateSaved))
}
