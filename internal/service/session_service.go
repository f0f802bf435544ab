package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"lessons/internal/blocktype"
	"lessons/internal/domain"
	"lessons/internal/editor"
)

// ─────────────────────────────────────────────────────────────
// Session Service — hydrates and tracks editing sessions
// ─────────────────────────────────────────────────────────────

// SessionService creates sessions and nodes in the store and owns the
// live EditingSession instances for open nodes.
type SessionService struct {
	store    domain.Store
	registry *blocktype.Registry
	emitter  editor.EventEmitter
	debounce time.Duration

	mu   sync.Mutex
	open map[string]*editor.EditingSession // key: sessionID + "/" + nodeID
}

// NewSessionService creates a SessionService.
func NewSessionService(store domain.Store, registry *blocktype.Registry, emitter editor.EventEmitter, debounce time.Duration) *SessionService {
	return &SessionService{
		store:    store,
		registry: registry,
		emitter:  emitter,
		debounce: debounce,
		open:     make(map[string]*editor.EditingSession),
	}
}

// CreateSession creates a new authoring session.
func (s *SessionService) CreateSession(ctx context.Context, name string) (*domain.Session, error) {
	return s.store.CreateSession(ctx, name)
}

// CreateNode adds a node to a session.
func (s *SessionService) CreateNode(ctx context.Context, sessionID, title string) (*domain.Node, error) {
	if _, err := s.store.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.store.CreateNode(ctx, sessionID, title)
}

// ListSessions returns all sessions.
func (s *SessionService) ListSessions(ctx context.Context) ([]domain.Session, error) {
	return s.store.ListSessions(ctx)
}

// ListNodes returns all nodes of a session.
func (s *SessionService) ListNodes(ctx context.Context, sessionID string) ([]domain.Node, error) {
	return s.store.ListNodes(ctx, sessionID)
}

// OpenNode returns the live editing session for a node, hydrating it from
// the store on first open. Hydration never triggers a save.
func (s *SessionService) OpenNode(ctx context.Context, sessionID, nodeID string) (*editor.EditingSession, error) {
	key := sessionID + "/" + nodeID

	s.mu.Lock()
	if es, ok := s.open[key]; ok {
		s.mu.Unlock()
		return es, nil
	}
	s.mu.Unlock()

	stored, err := s.store.LoadDocument(ctx, sessionID, nodeID)
	if err != nil {
		return nil, fmt.Errorf("open node %s: %w", key, err)
	}

	es := editor.NewEditingSession(ctx, editor.SessionOptions{
		SessionID: sessionID,
		NodeID:    nodeID,
		Registry:  s.registry,
		Saver:     s.store,
		Emitter:   s.emitter,
		Debounce:  s.debounce,
	})
	if err := es.LoadDocument(stored.Inputs()); err != nil {
		es.Teardown()
		return nil, fmt.Errorf("hydrate node %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.open[key]; ok {
		// Another caller opened it first; keep theirs.
		es.Teardown()
		return existing, nil
	}
	s.open[key] = es
	return es, nil
}

// CloseNode tears down the live editing session for a node, if open.
func (s *SessionService) CloseNode(sessionID, nodeID string) {
	key := sessionID + "/" + nodeID
	s.mu.Lock()
	es, ok := s.open[key]
	delete(s.open, key)
	s.mu.Unlock()
	if ok {
		es.Teardown()
	}
}

// OpenSessions returns every live editing session.
func (s *SessionService) OpenSessions() []*editor.EditingSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*editor.EditingSession, 0, len(s.open))
	for _, es := range s.open {
		out = append(out, es)
	}
	return out
}

// Shutdown tears down every open editing session.
func (s *SessionService) Shutdown() {
	s.mu.Lock()
	open := s.open
	s.open = make(map[string]*editor.EditingSession)
	s.mu.Unlock()
	for _, es := range open {
		es.Teardown()
	}
}
