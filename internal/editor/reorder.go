package editor

import (
	"log"

	"lessons/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// ReorderEngine — existing-block drag reordering
// ─────────────────────────────────────────────────────────────

// ReorderEngine is the Idle → GestureActive → Idle state machine that
// rearranges existing blocks by direct manipulation. It borrows the
// document only inside synchronous calls; across pointer events only the
// DragContext survives.
type ReorderEngine struct {
	doc      *domain.Document
	geometry GeometryFunc
	notify   func()

	drag *DragContext
}

// NewReorderEngine creates a reorder engine over doc. notify is invoked
// after a successful drop mutation.
func NewReorderEngine(doc *domain.Document, geometry GeometryFunc, notify func()) *ReorderEngine {
	return &ReorderEngine{doc: doc, geometry: geometry, notify: notify}
}

// Active reports whether a gesture is in progress.
func (e *ReorderEngine) Active() bool {
	return e.drag != nil
}

// Context returns the live drag context, or nil when idle.
func (e *ReorderEngine) Context() *DragContext {
	return e.drag
}

// Begin starts a gesture on the block with subjectID, capturing the
// pointer origin and a one-time snapshot of all block geometry. A second
// gesture-start while one is active is ignored: first gesture wins, so a
// second pointer can never corrupt the shared context. Returns false when
// the gesture was not started.
func (e *ReorderEngine) Begin(subjectID string, pointer Point) bool {
	if e.drag != nil {
		log.Printf("[REORDER] gesture-start for %s ignored, gesture already active", subjectID)
		return false
	}
	_, idx, err := e.doc.BlockByID(subjectID)
	if err != nil {
		log.Printf("[REORDER] gesture-start: %v", err)
		return false
	}
	e.drag = &DragContext{
		SubjectID:         subjectID,
		PointerOrigin:     pointer,
		InsertionIndex:    idx,
		PlaceholderActive: true,
		rects:             e.geometry(),
	}
	return true
}

// Move updates the insertion index for the current pointer position using
// the cached geometry snapshot. Returns the placeholder index and whether
// a gesture is active.
func (e *ReorderEngine) Move(pointer Point) (int, bool) {
	if e.drag == nil {
		return 0, false
	}
	e.drag.InsertionIndex = insertionIndex(e.drag.rects, e.drag.SubjectID, pointer)
	return e.drag.InsertionIndex, true
}

// Drop ends the gesture and applies the move. The change notification
// fires even when the block lands where it started.
func (e *ReorderEngine) Drop() error {
	if e.drag == nil {
		return nil
	}
	drag := e.drag
	e.drag = nil
	if err := e.doc.MoveBlock(drag.SubjectID, drag.InsertionIndex); err != nil {
		return err
	}
	e.notify()
	return nil
}

// Cancel ends the gesture without applying any mutation or notification.
func (e *ReorderEngine) Cancel() {
	e.drag = nil
}
