package domain

import "context"

// DocumentSaver persists a serialized document for a node. The engine
// treats any returned error as a transient persistence failure: it is
// folded into the save state, never thrown at the hosting UI.
type DocumentSaver interface {
	SaveDocument(ctx context.Context, sessionID, nodeID string, doc SerializedDocument) error
}

// DocumentLoader rebuilds the hydration sequence for a node.
type DocumentLoader interface {
	LoadDocument(ctx context.Context, sessionID, nodeID string) (SerializedDocument, error)
}

// SessionStore manages sessions and their nodes.
type SessionStore interface {
	CreateSession(ctx context.Context, name string) (*Session, error)
	GetSession(ctx context.Context, id string) (*Session, error)
	ListSessions(ctx context.Context) ([]Session, error)
	CreateNode(ctx context.Context, sessionID, title string) (*Node, error)
	GetNode(ctx context.Context, sessionID, nodeID string) (*Node, error)
	ListNodes(ctx context.Context, sessionID string) ([]Node, error)
}

// Store is the full persistence surface used by the session service.
type Store interface {
	SessionStore
	DocumentSaver
	DocumentLoader
}
