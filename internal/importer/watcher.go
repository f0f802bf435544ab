package importer

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"lessons/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Drop-directory watcher — files in, block sequences out
// ─────────────────────────────────────────────────────────────

// Handler receives the parsed block sequence of a dropped file.
type Handler func(path string, inputs []domain.BlockInput)

// Watcher watches a drop directory and hands every new CSV/JSON file to
// the handler as a parsed block sequence.
type Watcher struct {
	dir     string
	handler Handler
	fs      *fsnotify.Watcher
	stopCh  chan struct{}

	// settle is how long a file must sit unchanged before it is parsed;
	// editors and downloads write in bursts, and a single drop emits both
	// Create and Write events. Events are collapsed per path over this
	// window so one file yields one ingest.
	settle time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
	stopped bool
}

// NewWatcher creates a watcher over dir.
func NewWatcher(dir string, handler Handler) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fs.Add(dir); err != nil {
		fs.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &Watcher{
		dir:     dir,
		handler: handler,
		fs:      fs,
		stopCh:  make(chan struct{}),
		settle:  200 * time.Millisecond,
		pending: make(map[string]*time.Timer),
	}, nil
}

// Start begins the watch loop. Call once.
func (w *Watcher) Start() {
	go w.loop()
	log.Printf("[IMPORT] watching %s", w.dir)
}

// Stop terminates the watch loop, drops any files still settling, and
// releases the underlying watcher. Safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	for _, t := range w.pending {
		t.Stop()
	}
	w.pending = nil
	w.mu.Unlock()

	close(w.stopCh)
	w.fs.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if !importable(ev.Name) {
				continue
			}
			w.schedule(ev.Name)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Printf("[IMPORT] watch error: %v", err)
		case <-w.stopCh:
			return
		}
	}
}

// schedule (re)starts the settle timer for path. Every further event for
// the same path within the window pushes the timer back, so a burst of
// Create/Write events produces exactly one ingest once the file is quiet.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if t, ok := w.pending[path]; ok {
		t.Reset(w.settle)
		return
	}
	w.pending[path] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		if w.stopped {
			w.mu.Unlock()
			return
		}
		delete(w.pending, path)
		w.mu.Unlock()
		w.ingest(path)
	})
}

func (w *Watcher) ingest(path string) {
	inputs, err := ParseFile(path)
	if err != nil {
		log.Printf("[IMPORT] skipping %s: %v", filepath.Base(path), err)
		return
	}
	if len(inputs) == 0 {
		return
	}
	log.Printf("[IMPORT] %s: %d blocks", filepath.Base(path), len(inputs))
	w.handler(path, inputs)
}

func importable(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".json":
		return true
	}
	return false
}
