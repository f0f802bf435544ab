package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"lessons/internal/domain"
)

// Store implements domain.Store over a SQL database.
type Store struct {
	db *DB
}

// NewStore creates a Store.
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

var _ domain.Store = (*Store)(nil)

// ── sessions ───────────────────────────────────────────────

func (s *Store) CreateSession(ctx context.Context, name string) (*domain.Session, error) {
	now := time.Now().UTC()
	sess := &domain.Session{ID: uuid.NewString(), Name: name, CreatedAt: now, UpdatedAt: now}
	_, err := s.db.Conn().ExecContext(ctx,
		s.db.rebind(`INSERT INTO sessions (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`),
		sess.ID, sess.Name, sess.CreatedAt, sess.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

func (s *Store) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	sess := &domain.Session{}
	err := s.db.Conn().QueryRowContext(ctx,
		s.db.rebind(`SELECT id, name, created_at, updated_at FROM sessions WHERE id = ?`), id,
	).Scan(&sess.ID, &sess.Name, &sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return sess, nil
}

func (s *Store) ListSessions(ctx context.Context) ([]domain.Session, error) {
	rows, err := s.db.Conn().QueryContext(ctx,
		`SELECT id, name, created_at, updated_at FROM sessions ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		var sess domain.Session
		if err := rows.Scan(&sess.ID, &sess.Name, &sess.CreatedAt, &sess.UpdatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// ── nodes ──────────────────────────────────────────────────

func (s *Store) CreateNode(ctx context.Context, sessionID, title string) (*domain.Node, error) {
	var position int
	err := s.db.Conn().QueryRowContext(ctx,
		s.db.rebind(`SELECT COUNT(*) FROM nodes WHERE session_id = ?`), sessionID,
	).Scan(&position)
	if err != nil {
		return nil, fmt.Errorf("count nodes: %w", err)
	}

	now := time.Now().UTC()
	node := &domain.Node{
		ID:        fmt.Sprintf("N%03d", position+1),
		SessionID: sessionID,
		Title:     title,
		Position:  position,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = s.db.Conn().ExecContext(ctx,
		s.db.rebind(`INSERT INTO nodes (id, session_id, title, position, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`),
		node.ID, node.SessionID, node.Title, node.Position, node.CreatedAt, node.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create node: %w", err)
	}
	return node, nil
}

func (s *Store) GetNode(ctx context.Context, sessionID, nodeID string) (*domain.Node, error) {
	node := &domain.Node{}
	err := s.db.Conn().QueryRowContext(ctx,
		s.db.rebind(`SELECT id, session_id, title, position, created_at, updated_at FROM nodes WHERE session_id = ? AND id = ?`),
		sessionID, nodeID,
	).Scan(&node.ID, &node.SessionID, &node.Title, &node.Position, &node.CreatedAt, &node.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get node %s/%s: %w", sessionID, nodeID, err)
	}
	return node, nil
}

func (s *Store) ListNodes(ctx context.Context, sessionID string) ([]domain.Node, error) {
	rows, err := s.db.Conn().QueryContext(ctx,
		s.db.rebind(`SELECT id, session_id, title, position, created_at, updated_at FROM nodes WHERE session_id = ? ORDER BY position ASC`),
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []domain.Node
	for rows.Next() {
		var n domain.Node
		if err := rows.Scan(&n.ID, &n.SessionID, &n.Title, &n.Position, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// ── documents ──────────────────────────────────────────────

// SaveDocument atomically replaces the stored block sequence for a node:
// delete then reinsert in one transaction, so a reader never observes a
// partial document.
func (s *Store) SaveDocument(ctx context.Context, sessionID, nodeID string, doc domain.SerializedDocument) error {
	tx, err := s.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save document: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		s.db.rebind(`DELETE FROM blocks WHERE session_id = ? AND node_id = ?`), sessionID, nodeID)
	if err != nil {
		return fmt.Errorf("save document: clear: %w", err)
	}

	for _, b := range doc.Blocks {
		data, err := json.Marshal(b.Data)
		if err != nil {
			return fmt.Errorf("save document: marshal block %d: %w", b.Order, err)
		}
		_, err = tx.ExecContext(ctx,
			s.db.rebind(`INSERT INTO blocks (session_id, node_id, ord, type, data) VALUES (?, ?, ?, ?, ?)`),
			sessionID, nodeID, b.Order, b.Type, string(data),
		)
		if err != nil {
			return fmt.Errorf("save document: insert block %d: %w", b.Order, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		s.db.rebind(`UPDATE nodes SET updated_at = ? WHERE session_id = ? AND id = ?`),
		time.Now().UTC(), sessionID, nodeID)
	if err != nil {
		return fmt.Errorf("save document: touch node: %w", err)
	}

	return tx.Commit()
}

// LoadDocument returns the stored block sequence for a node in order. A
// node with no blocks yields an empty document, not an error.
func (s *Store) LoadDocument(ctx context.Context, sessionID, nodeID string) (domain.SerializedDocument, error) {
	rows, err := s.db.Conn().QueryContext(ctx,
		s.db.rebind(`SELECT ord, type, data FROM blocks WHERE session_id = ? AND node_id = ? ORDER BY ord ASC`),
		sessionID, nodeID,
	)
	if err != nil {
		return domain.SerializedDocument{}, fmt.Errorf("load document: %w", err)
	}
	defer rows.Close()

	var doc domain.SerializedDocument
	for rows.Next() {
		var b domain.SerializedBlock
		var raw string
		if err := rows.Scan(&b.Order, &b.Type, &raw); err != nil {
			return domain.SerializedDocument{}, err
		}
		if err := json.Unmarshal([]byte(raw), &b.Data); err != nil {
			return domain.SerializedDocument{}, fmt.Errorf("load document: block %d: %w", b.Order, err)
		}
		doc.Blocks = append(doc.Blocks, b)
	}
	return doc, rows.Err()
}

// IsNotFound reports whether err is a row-missing error from this store.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
