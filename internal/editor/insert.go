package editor

import (
	"fmt"
	"log"

	"github.com/google/uuid"

	"lessons/internal/blocktype"
	"lessons/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// InsertionEngine — palette → document drop
// ─────────────────────────────────────────────────────────────

// InsertionEngine inserts new blocks from the palette. Unlike the reorder
// engine it computes indices over live geometry, since no block is
// mid-move during a palette drag.
type InsertionEngine struct {
	registry *blocktype.Registry
	doc      *domain.Document
	geometry GeometryFunc
	newID    func() string
	notify   func()
}

// NewInsertionEngine creates an insertion engine over doc.
func NewInsertionEngine(registry *blocktype.Registry, doc *domain.Document, geometry GeometryFunc, notify func()) *InsertionEngine {
	return &InsertionEngine{
		registry: registry,
		doc:      doc,
		geometry: geometry,
		newID:    uuid.NewString,
		notify:   notify,
	}
}

// DragOver returns the insertion index for the current pointer position,
// using the same first-center-below rule as block reordering.
func (e *InsertionEngine) DragOver(pointer Point) int {
	return insertionIndex(e.geometry(), "", pointer)
}

// Drop resolves tag, builds a default block with a fresh ID, and inserts
// it at index (clamped). An unregistered tag inserts nothing: the error
// wraps domain.ErrUnknownBlockType and a diagnostic is logged.
func (e *InsertionEngine) Drop(tag string, index int) (*domain.Block, error) {
	block, err := e.build(tag, nil)
	if err != nil {
		log.Printf("[INSERT] drop rejected: %v", err)
		return nil, err
	}
	if err := e.doc.InsertBlock(*block, index); err != nil {
		return nil, err
	}
	e.notify()
	return block, nil
}

// build constructs a block without touching the document, so a descriptor
// failure can never leave a partially-constructed block behind.
func (e *InsertionEngine) build(tag string, initial domain.BlockData) (*domain.Block, error) {
	d, err := e.registry.Resolve(tag)
	if err != nil {
		return nil, err
	}
	state, err := d.CreateDefault(initial)
	if err != nil {
		return nil, fmt.Errorf("create %s block: %w", tag, err)
	}
	return &domain.Block{ID: e.newID(), Type: tag, State: state}, nil
}
