package editor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"lessons/internal/blocktype"
	"lessons/internal/domain"
	"lessons/internal/preview"
)

// ─────────────────────────────────────────────────────────────
// EditingSession — composition root of the authoring engine
// ─────────────────────────────────────────────────────────────

// SessionOptions configures an EditingSession.
type SessionOptions struct {
	SessionID string
	NodeID    string
	Registry  *blocktype.Registry
	Saver     domain.DocumentSaver
	Emitter   EventEmitter
	// Geometry reports current block layout for gesture index math. When
	// nil, a synthetic unit-height layout in document order is used, which
	// is what headless hosts (MCP, CLI) want.
	Geometry GeometryFunc
	// Debounce is the autosave quiescence window; zero means
	// DefaultDebounce.
	Debounce time.Duration
}

// EditingSession owns one document and wires the model, the preview
// renderer, the drag engines, and the persistence scheduler together. All
// model access is serialized behind its mutex; the engines borrow the
// document only inside a synchronous call.
type EditingSession struct {
	mu sync.Mutex

	ctx       context.Context
	sessionID string
	nodeID    string

	registry  *blocktype.Registry
	doc       *domain.Document
	renderer  *preview.Renderer
	reorder   *ReorderEngine
	insert    *InsertionEngine
	scheduler *Scheduler
	emitter   EventEmitter
}

// NewEditingSession builds a fully wired session around an empty document.
func NewEditingSession(ctx context.Context, opts SessionOptions) *EditingSession {
	s := &EditingSession{
		ctx:       ctx,
		sessionID: opts.SessionID,
		nodeID:    opts.NodeID,
		registry:  opts.Registry,
		doc:       domain.NewDocument(),
		renderer:  preview.NewRenderer(opts.Registry),
		emitter:   opts.Emitter,
	}
	if s.emitter == nil {
		s.emitter = NopEmitter{}
	}

	geometry := opts.Geometry
	if geometry == nil {
		geometry = s.syntheticGeometry
	}

	s.reorder = NewReorderEngine(s.doc, geometry, s.notifyLocked)
	s.insert = NewInsertionEngine(opts.Registry, s.doc, geometry, s.notifyLocked)
	s.scheduler = NewScheduler(ctx, opts.Debounce,
		s.snapshot,
		func(ctx context.Context, doc domain.SerializedDocument) error {
			return opts.Saver.SaveDocument(ctx, opts.SessionID, opts.NodeID, doc)
		},
		func(st SaveStatus) {
			s.emitter.Emit(ctx, EventSaveState, st)
		},
	)
	return s
}

// ── lifecycle ──────────────────────────────────────────────

// LoadDocument hydrates the document from an ordered input sequence,
// replacing any existing content. Every block is built before the
// document is touched, so a bad input leaves the prior content intact.
// Hydration never schedules a save.
func (s *EditingSession) LoadDocument(inputs []domain.BlockInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blocks := make([]*domain.Block, 0, len(inputs))
	for i, in := range inputs {
		b, err := s.insert.build(in.Type, in.Data)
		if err != nil {
			return fmt.Errorf("hydrate block %d: %w", i, err)
		}
		blocks = append(blocks, b)
	}

	s.doc.Reset()
	for _, b := range blocks {
		if err := s.doc.InsertBlock(*b, s.doc.Len()); err != nil {
			return err
		}
	}

	s.emitter.Emit(s.ctx, EventDocumentChanged, ChangeNotification{
		Markup: s.renderer.Render(s.doc),
		Save:   s.scheduler.Status(),
	})
	return nil
}

// Teardown cancels any pending save timer and releases the scheduler.
// An in-flight persistence call is allowed to complete; its result is
// discarded.
func (s *EditingSession) Teardown() {
	s.scheduler.CancelPending()
	s.scheduler.Close()
}

// ── document operations ────────────────────────────────────

// InsertBlockAt creates a default block of the given type and inserts it
// at index (clamped).
func (s *EditingSession) InsertBlockAt(tag string, index int) (*domain.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert.Drop(tag, index)
}

// RemoveBlock excises a block.
func (s *EditingSession) RemoveBlock(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.doc.RemoveBlock(id); err != nil {
		return err
	}
	s.notifyLocked()
	return nil
}

// MoveBlock moves a block to the given index. A move to the same
// position still notifies, by design.
func (s *EditingSession) MoveBlock(id string, toIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.doc.MoveBlock(id, toIndex); err != nil {
		return err
	}
	s.notifyLocked()
	return nil
}

// UpdateBlock applies a payload to an existing block through its type's
// Populate capability.
func (s *EditingSession) UpdateBlock(id string, data domain.BlockData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, idx, err := s.doc.BlockByID(id)
	if err != nil {
		return err
	}
	d, err := s.registry.Resolve(b.Type)
	if err != nil {
		return err
	}
	state, err := d.Populate(b.State, data)
	if err != nil {
		return fmt.Errorf("update %s block: %w", b.Type, err)
	}
	b.State = state
	if err := s.doc.RemoveBlock(id); err != nil {
		return err
	}
	if err := s.doc.InsertBlock(b, idx); err != nil {
		return err
	}
	s.notifyLocked()
	return nil
}

// SpliceBlocks inserts an externally produced block sequence (e.g. an
// import) starting at index. The whole sequence is built first; one
// change notification covers the splice.
func (s *EditingSession) SpliceBlocks(inputs []domain.BlockInput, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blocks := make([]*domain.Block, 0, len(inputs))
	for i, in := range inputs {
		b, err := s.insert.build(in.Type, in.Data)
		if err != nil {
			return fmt.Errorf("splice block %d: %w", i, err)
		}
		blocks = append(blocks, b)
	}
	for i, b := range blocks {
		if err := s.doc.InsertBlock(*b, index+i); err != nil {
			return err
		}
	}
	if len(blocks) > 0 {
		s.notifyLocked()
	}
	return nil
}

// Blocks returns the current block sequence.
func (s *EditingSession) Blocks() []domain.Block {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Blocks()
}

// ── gestures ───────────────────────────────────────────────

// BeginDrag starts a reorder gesture on a block handle.
func (s *EditingSession) BeginDrag(subjectID string, pointer Point) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reorder.Begin(subjectID, pointer)
}

// DragMove advances the active reorder gesture.
func (s *EditingSession) DragMove(pointer Point) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reorder.Move(pointer)
}

// DropDrag ends the active reorder gesture, applying the move.
func (s *EditingSession) DropDrag() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reorder.Drop()
}

// CancelDrag abandons the active reorder gesture without mutation.
func (s *EditingSession) CancelDrag() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reorder.Cancel()
}

// PaletteDragOver returns the insertion index for a palette drag.
func (s *EditingSession) PaletteDragOver(pointer Point) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert.DragOver(pointer)
}

// PaletteDrop inserts a new default block from the palette.
func (s *EditingSession) PaletteDrop(tag string, index int) (*domain.Block, error) {
	return s.InsertBlockAt(tag, index)
}

// ── projections ────────────────────────────────────────────

// PreviewMarkup renders the current document.
func (s *EditingSession) PreviewMarkup() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderer.Render(s.doc)
}

// ExtractAll serializes the current document. Preview and persistence
// both go through this path.
func (s *EditingSession) ExtractAll() (domain.SerializedDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.ExtractAll(s.extract)
}

// SaveState returns the scheduler's observable state.
func (s *EditingSession) SaveState() SaveStatus {
	return s.scheduler.Status()
}

// SaveNow flushes any pending save immediately.
func (s *EditingSession) SaveNow() {
	s.scheduler.SaveNow()
}

// SessionID returns the owning session's ID.
func (s *EditingSession) SessionID() string { return s.sessionID }

// NodeID returns the edited node's ID.
func (s *EditingSession) NodeID() string { return s.nodeID }

// ── internals ──────────────────────────────────────────────

// notifyLocked fires after any successful document mutation: it renders
// the preview, notifies the host, and schedules a debounced save.
// Callers must hold s.mu.
func (s *EditingSession) notifyLocked() {
	s.emitter.Emit(s.ctx, EventDocumentChanged, ChangeNotification{
		Markup: s.renderer.Render(s.doc),
		Save:   s.scheduler.Status(),
	})
	s.scheduler.ScheduleSave()
}

// snapshot is the scheduler's SnapshotFunc. It takes the session lock,
// so the serialized form is always a consistent cut of the document.
func (s *EditingSession) snapshot() (domain.SerializedDocument, error) {
	return s.ExtractAll()
}

func (s *EditingSession) extract(b domain.Block) (domain.BlockData, error) {
	d, err := s.registry.Resolve(b.Type)
	if err != nil {
		return nil, err
	}
	return d.ExtractData(b.State), nil
}

// syntheticGeometry lays blocks out as unit-height rows in document
// order, for hosts that have no real layout to report. Callers hold s.mu
// already (geometry is only consulted inside engine calls).
func (s *EditingSession) syntheticGeometry() []BlockRect {
	blocks := s.doc.Blocks()
	rects := make([]BlockRect, len(blocks))
	for i, b := range blocks {
		rects[i] = BlockRect{ID: b.ID, Top: float64(i), Height: 1}
	}
	return rects
}
