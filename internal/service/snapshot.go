package service

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"lessons/internal/editor"
)

// ─────────────────────────────────────────────────────────────
// Snapshot Service — scheduled on-disk exports of open documents
// ─────────────────────────────────────────────────────────────

// SnapshotService periodically exports every open document to a
// timestamped JSON file. It is a backup affordance only: it reads through
// ExtractAll and never touches the autosave pipeline or its state.
type SnapshotService struct {
	sessions *SessionService
	dir      string
	cron     *cron.Cron
}

// NewSnapshotService creates a snapshot service writing under dir.
func NewSnapshotService(sessions *SessionService, dir string) *SnapshotService {
	return &SnapshotService{
		sessions: sessions,
		dir:      dir,
		cron:     cron.New(),
	}
}

// Start schedules snapshots with a cron spec (e.g. "@every 15m").
func (s *SnapshotService) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.SnapshotAll); err != nil {
		return fmt.Errorf("schedule snapshots: %w", err)
	}
	s.cron.Start()
	log.Printf("[SNAPSHOT] scheduled %q into %s", spec, s.dir)
	return nil
}

// Stop halts the schedule. Running exports finish.
func (s *SnapshotService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// SnapshotAll exports every open document once.
func (s *SnapshotService) SnapshotAll() {
	for _, es := range s.sessions.OpenSessions() {
		if err := s.snapshotOne(es); err != nil {
			log.Printf("[SNAPSHOT] %s/%s: %v", es.SessionID(), es.NodeID(), err)
		}
	}
}

func (s *SnapshotService) snapshotOne(es *editor.EditingSession) error {
	doc, err := es.ExtractAll()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	name := fmt.Sprintf("%s_%s_%s.json",
		sanitize(es.SessionID()), sanitize(es.NodeID()), time.Now().UTC().Format("20060102T150405"))
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, name), data, 0644)
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, s)
}
