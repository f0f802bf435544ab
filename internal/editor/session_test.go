package editor

import (
	"context"
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"lessons/internal/blocktype"
	"lessons/internal/domain"
)

// memorySaver records every persisted document.
type memorySaver struct {
	mu   sync.Mutex
	docs []domain.SerializedDocument
	err  error
}

func (m *memorySaver) SaveDocument(_ context.Context, _, _ string, doc domain.SerializedDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.docs = append(m.docs, doc)
	return nil
}

func (m *memorySaver) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

func (m *memorySaver) last() domain.SerializedDocument {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.docs[len(m.docs)-1]
}

func newTestSession(t *testing.T, saver domain.DocumentSaver, debounce time.Duration) *EditingSession {
	t.Helper()
	es := NewEditingSession(context.Background(), SessionOptions{
		SessionID: "S1",
		NodeID:    "N001",
		Registry:  blocktype.NewBuiltinRegistry(),
		Saver:     saver,
		Debounce:  debounce,
	})
	t.Cleanup(es.Teardown)
	return es
}

var lessonInputs = []domain.BlockInput{
	{Type: "heading", Data: domain.BlockData{"text": "Fractions"}},
	{Type: "paragraph", Data: domain.BlockData{"text": "A fraction has two parts."}},
	{Type: "step-sequence", Data: domain.BlockData{"steps": []any{"numerator", "denominator"}}},
}

func TestLoadDocumentDoesNotSave(t *testing.T) {
	saver := &memorySaver{}
	es := newTestSession(t, saver, 20*time.Millisecond)

	if err := es.LoadDocument(lessonInputs); err != nil {
		t.Fatalf("load: %v", err)
	}
	time.Sleep(80 * time.Millisecond)
	if n := saver.count(); n != 0 {
		t.Fatalf("hydration triggered %d saves", n)
	}
	if st := es.SaveState(); st.State != SaveIdle {
		t.Fatalf("state = %v, want idle", st.State)
	}
	if len(es.Blocks()) != 3 {
		t.Fatalf("got %d blocks", len(es.Blocks()))
	}
}

func TestLoadDocumentBadInputLeavesContentIntact(t *testing.T) {
	es := newTestSession(t, &memorySaver{}, time.Hour)
	if err := es.LoadDocument(lessonInputs); err != nil {
		t.Fatalf("load: %v", err)
	}

	bad := []domain.BlockInput{
		{Type: "heading", Data: domain.BlockData{"text": "ok"}},
		{Type: "hologram"},
	}
	if err := es.LoadDocument(bad); !errors.Is(err, domain.ErrUnknownBlockType) {
		t.Fatalf("want ErrUnknownBlockType, got %v", err)
	}
	if len(es.Blocks()) != 3 {
		t.Fatalf("prior content lost: %d blocks", len(es.Blocks()))
	}
}

func TestExtractRoundTrip(t *testing.T) {
	first := newTestSession(t, &memorySaver{}, time.Hour)
	if err := first.LoadDocument(lessonInputs); err != nil {
		t.Fatalf("load: %v", err)
	}
	extracted, err := first.ExtractAll()
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	second := newTestSession(t, &memorySaver{}, time.Hour)
	if err := second.LoadDocument(extracted.Inputs()); err != nil {
		t.Fatalf("rehydrate: %v", err)
	}
	again, err := second.ExtractAll()
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !reflect.DeepEqual(extracted, again) {
		t.Fatalf("round trip diverged:\n%+v\n%+v", extracted, again)
	}
}

// blockIDPattern matches the container ID attribute, which is the only
// part of the markup that changes across hydrations (IDs are regenerated).
var blockIDPattern = regexp.MustCompile(`data-block-id="[^"]*"`)

func TestRoundTripMarkupStable(t *testing.T) {
	first := newTestSession(t, &memorySaver{}, time.Hour)
	if err := first.LoadDocument(lessonInputs); err != nil {
		t.Fatalf("load: %v", err)
	}
	extracted, err := first.ExtractAll()
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	second := newTestSession(t, &memorySaver{}, time.Hour)
	if err := second.LoadDocument(extracted.Inputs()); err != nil {
		t.Fatalf("rehydrate: %v", err)
	}

	a := blockIDPattern.ReplaceAllString(first.PreviewMarkup(), "")
	b := blockIDPattern.ReplaceAllString(second.PreviewMarkup(), "")
	if a != b {
		t.Fatalf("markup diverged after round trip:\n%s\n%s", a, b)
	}
}

func TestInsertIntoEmptyDocument(t *testing.T) {
	es := newTestSession(t, &memorySaver{}, time.Hour)
	if _, err := es.InsertBlockAt("heading", 0); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if len(es.Blocks()) != 1 {
		t.Fatalf("got %d blocks", len(es.Blocks()))
	}
	if markup := es.PreviewMarkup(); !strings.Contains(markup, "New heading") {
		t.Fatalf("default rendering missing: %q", markup)
	}
}

func TestEditSchedulesDebouncedSave(t *testing.T) {
	saver := &memorySaver{}
	es := newTestSession(t, saver, 20*time.Millisecond)

	if _, err := es.InsertBlockAt("heading", 0); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := es.InsertBlockAt("paragraph", 1); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if st := es.SaveState(); st.State != SavePendingDebounce {
		t.Fatalf("state = %v, want pending", st.State)
	}

	deadline := time.Now().Add(2 * time.Second)
	for saver.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(60 * time.Millisecond)
	if n := saver.count(); n != 1 {
		t.Fatalf("persisted %d times, want the burst collapsed to 1", n)
	}
	doc := saver.last()
	if len(doc.Blocks) != 2 || doc.Blocks[0].Type != "heading" || doc.Blocks[1].Type != "paragraph" {
		t.Fatalf("persisted document: %+v", doc)
	}
}

func TestUpdateBlockKeepsPosition(t *testing.T) {
	es := newTestSession(t, &memorySaver{}, time.Hour)
	if err := es.LoadDocument(lessonInputs); err != nil {
		t.Fatalf("load: %v", err)
	}
	blocks := es.Blocks()
	mid := blocks[1]

	if err := es.UpdateBlock(mid.ID, domain.BlockData{"text": "rewritten"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	after := es.Blocks()
	if after[1].ID != mid.ID {
		t.Fatalf("block moved: %v", after)
	}
	doc, err := es.ExtractAll()
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if doc.Blocks[1].Data["text"] != "rewritten" {
		t.Fatalf("payload not applied: %+v", doc.Blocks[1])
	}
}

func TestUpdateBlockFailureLeavesDocumentUntouched(t *testing.T) {
	es := newTestSession(t, &memorySaver{}, time.Hour)
	inputs := []domain.BlockInput{
		{Type: "callout-box", Data: domain.BlockData{"text": "original", "style": "tip"}},
	}
	if err := es.LoadDocument(inputs); err != nil {
		t.Fatalf("load: %v", err)
	}
	id := es.Blocks()[0].ID

	if err := es.UpdateBlock(id, domain.BlockData{"text": "mutated", "style": "sparkly"}); err == nil {
		t.Fatal("invalid payload accepted")
	}
	doc, err := es.ExtractAll()
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if doc.Blocks[0].Data["text"] != "original" || doc.Blocks[0].Data["style"] != "tip" {
		t.Fatalf("failed update changed the document: %+v", doc.Blocks[0].Data)
	}
}

func TestDragReorderThroughSession(t *testing.T) {
	es := newTestSession(t, &memorySaver{}, time.Hour)
	if err := es.LoadDocument(lessonInputs); err != nil {
		t.Fatalf("load: %v", err)
	}
	blocks := es.Blocks()

	// Synthetic geometry: unit rows, centers at 0.5, 1.5, 2.5.
	if !es.BeginDrag(blocks[0].ID, Point{Y: 0.5}) {
		t.Fatal("gesture did not start")
	}
	if idx, ok := es.DragMove(Point{Y: 3}); !ok || idx != 2 {
		t.Fatalf("move index = %d, %v", idx, ok)
	}
	if err := es.DropDrag(); err != nil {
		t.Fatalf("drop: %v", err)
	}

	after := es.Blocks()
	if after[2].ID != blocks[0].ID {
		t.Fatalf("subject not at end: %v", after)
	}
}

func TestChangeNotificationCarriesMarkup(t *testing.T) {
	emitter := &MockEmitter{}
	es := NewEditingSession(context.Background(), SessionOptions{
		SessionID: "S1",
		NodeID:    "N001",
		Registry:  blocktype.NewBuiltinRegistry(),
		Saver:     &memorySaver{},
		Emitter:   emitter,
		Debounce:  time.Hour,
	})
	defer es.Teardown()

	if _, err := es.InsertBlockAt("heading", 0); err != nil {
		t.Fatalf("insert: %v", err)
	}

	var change *ChangeNotification
	for _, ev := range emitter.Events {
		if ev.Event == EventDocumentChanged {
			n := ev.Data.(ChangeNotification)
			change = &n
		}
	}
	if change == nil {
		t.Fatal("no document:changed event")
	}
	if change.Markup != es.PreviewMarkup() {
		t.Fatal("notification markup is stale")
	}
}

func TestTeardownCancelsPendingSave(t *testing.T) {
	saver := &memorySaver{}
	es := newTestSession(t, saver, 20*time.Millisecond)
	if _, err := es.InsertBlockAt("heading", 0); err != nil {
		t.Fatalf("insert: %v", err)
	}
	es.Teardown()
	time.Sleep(80 * time.Millisecond)
	if n := saver.count(); n != 0 {
		t.Fatalf("save ran after teardown: %d", n)
	}
}

func TestSpliceBlocksSingleNotification(t *testing.T) {
	emitter := &MockEmitter{}
	es := NewEditingSession(context.Background(), SessionOptions{
		SessionID: "S1",
		NodeID:    "N001",
		Registry:  blocktype.NewBuiltinRegistry(),
		Saver:     &memorySaver{},
		Emitter:   emitter,
		Debounce:  time.Hour,
	})
	defer es.Teardown()

	if err := es.SpliceBlocks(lessonInputs, 0); err != nil {
		t.Fatalf("splice: %v", err)
	}
	changed := 0
	for _, ev := range emitter.Events {
		if ev.Event == EventDocumentChanged {
			changed++
		}
	}
	if changed != 1 {
		t.Fatalf("%d change notifications for one splice", changed)
	}
	if len(es.Blocks()) != 3 {
		t.Fatalf("got %d blocks", len(es.Blocks()))
	}
}
