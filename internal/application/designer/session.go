package designer

import (
	"context"
	"sync"
	"time"

	"github.com/fulluproar/backoffice/internal/domain/designer"
	"github.com/fulluproar/backoffice/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// Session is one editing session: a document with its selection and layer
// controllers. Every access goes through the session mutex, so a document
// has a single writer at a time while different sessions run in parallel.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	mu         sync.Mutex
	doc        *designer.CanvasDocument
	selection  *designer.Selection
	layers     *designer.LayerService
	lastActive time.Time
}

// LastActive returns when the session was last used
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// SessionManager owns the open sessions
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	fonts    designer.FontLoader
	factory  designer.ElementFactory
	metrics  *telemetry.DesignerMetrics
	now      func() time.Time
}

// SessionManagerOption configures a SessionManager
type SessionManagerOption func(*SessionManager)

// WithSessionClock overrides the time source
func WithSessionClock(now func() time.Time) SessionManagerOption {
	return func(m *SessionManager) {
		m.now = now
	}
}

// WithSessionMetrics records the active session gauge
func WithSessionMetrics(metrics *telemetry.DesignerMetrics) SessionManagerOption {
	return func(m *SessionManager) {
		m.metrics = metrics
	}
}

// WithSessionElementFactory sets the factory for default content
func WithSessionElementFactory(f designer.ElementFactory) SessionManagerOption {
	return func(m *SessionManager) {
		m.factory = f
	}
}

// NewSessionManager creates an empty manager. fonts may be nil.
func NewSessionManager(fonts designer.FontLoader, opts ...SessionManagerOption) *SessionManager {
	m := &SessionManager{
		sessions: make(map[uuid.UUID]*Session),
		fonts:    fonts,
		factory:  designer.DefaultElementFactory(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create opens a session initialized to dim
func (m *SessionManager) Create(ctx context.Context, dim designer.Dimension) (*Session, error) {
	doc := designer.NewCanvasDocument(designer.WithElementFactory(m.factory))
	done, err := doc.Init(dim)
	if err != nil {
		return nil, err
	}
	<-done

	now := m.now()
	s := &Session{
		ID:         uuid.New(),
		CreatedAt:  now,
		doc:        doc,
		selection:  designer.NewSelection(doc, m.fonts),
		layers:     designer.NewLayerService(doc),
		lastActive: now,
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.metrics.SessionOpened(ctx)
	return s, nil
}

// With runs fn holding the session lock and refreshes its activity time
func (m *SessionManager) With(id uuid.UUID, fn func(s *Session) error) error {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = m.now()
	return fn(s)
}

// Delete closes a session, reporting whether it existed
func (m *SessionManager) Delete(ctx context.Context, id uuid.UUID) bool {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		m.metrics.SessionsClosed(ctx, 1)
	}
	return ok
}

// Reap closes every session idle since before cutoff and returns how many
// were closed. Sessions busy in With are skipped.
func (m *SessionManager) Reap(ctx context.Context, cutoff time.Time) int {
	m.mu.Lock()
	var stale []uuid.UUID
	for id, s := range m.sessions {
		if !s.mu.TryLock() {
			continue
		}
		if s.lastActive.Before(cutoff) {
			stale = append(stale, id)
		}
		s.mu.Unlock()
	}
	for _, id := range stale {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	m.metrics.SessionsClosed(ctx, len(stale))
	return len(stale)
}

// Len returns the number of open sessions
func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
