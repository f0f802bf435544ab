package importer

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"lessons/internal/domain"
)

type countingHandler struct {
	mu    sync.Mutex
	calls map[string]int
}

func newCountingHandler() *countingHandler {
	return &countingHandler{calls: make(map[string]int)}
}

func (h *countingHandler) handle(path string, _ []domain.BlockInput) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls[filepath.Base(path)]++
}

func (h *countingHandler) count(name string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls[name]
}

func startWatcher(t *testing.T, dir string, h *countingHandler) *Watcher {
	t.Helper()
	w, err := NewWatcher(dir, h.handle)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	t.Cleanup(w.Stop)
	w.Start()
	return w
}

func waitForCount(t *testing.T, h *countingHandler, name string, want int) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if h.count(name) >= want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("%s ingested %d times, want %d", name, h.count(name), want)
}

func TestWatcherIngestsDroppedFileOnce(t *testing.T) {
	dir := t.TempDir()
	h := newCountingHandler()
	startWatcher(t, dir, h)

	// One drop fires Create and Write; both must collapse into one ingest.
	path := filepath.Join(dir, "drop.json")
	if err := os.WriteFile(path, []byte(`[{"type": "heading", "data": {"text": "hi"}}]`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	waitForCount(t, h, "drop.json", 1)
	time.Sleep(400 * time.Millisecond)
	if n := h.count("drop.json"); n != 1 {
		t.Fatalf("file ingested %d times, want exactly 1", n)
	}
}

func TestWatcherReingestsAfterQuietRewrite(t *testing.T) {
	dir := t.TempDir()
	h := newCountingHandler()
	startWatcher(t, dir, h)

	path := filepath.Join(dir, "drop.json")
	if err := os.WriteFile(path, []byte(`[{"type": "heading", "data": {"text": "one"}}]`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	waitForCount(t, h, "drop.json", 1)

	// A rewrite after the file has settled is a new drop.
	if err := os.WriteFile(path, []byte(`[{"type": "heading", "data": {"text": "two"}}]`), 0644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	waitForCount(t, h, "drop.json", 2)
}

func TestWatcherIgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	h := newCountingHandler()
	startWatcher(t, dir, h)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	time.Sleep(400 * time.Millisecond)
	if n := h.count("notes.txt"); n != 0 {
		t.Fatalf("unsupported file ingested %d times", n)
	}
}

func TestWatcherStopDropsSettlingFiles(t *testing.T) {
	dir := t.TempDir()
	h := newCountingHandler()
	w := startWatcher(t, dir, h)

	if err := os.WriteFile(filepath.Join(dir, "late.json"), []byte(`[]`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	w.Stop()
	time.Sleep(400 * time.Millisecond)
	if n := h.count("late.json"); n != 0 {
		t.Fatalf("stopped watcher ingested %d times", n)
	}
}
