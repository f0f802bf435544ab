package domain

import "fmt"

// Document is an ordered sequence of blocks. The order of the slice is the
// single source of truth for rendering and persistence. Invariants: no
// duplicate IDs, no gaps.
type Document struct {
	blocks []Block
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{}
}

// Len returns the number of blocks.
func (d *Document) Len() int {
	return len(d.blocks)
}

// Blocks returns a copy of the block sequence in document order.
func (d *Document) Blocks() []Block {
	out := make([]Block, len(d.blocks))
	copy(out, d.blocks)
	return out
}

// BlockByID returns the block with the given ID and its index.
func (d *Document) BlockByID(id string) (Block, int, error) {
	for i, b := range d.blocks {
		if b.ID == id {
			return b, i, nil
		}
	}
	return Block{}, -1, fmt.Errorf("block %q: %w", id, ErrBlockNotFound)
}

// InsertBlock inserts b at index at, clamped to [0, len]. Fails with
// ErrDuplicateBlockID if a block with the same ID is already present;
// the document is left unchanged on failure.
func (d *Document) InsertBlock(b Block, at int) error {
	for _, existing := range d.blocks {
		if existing.ID == b.ID {
			return fmt.Errorf("block %q: %w", b.ID, ErrDuplicateBlockID)
		}
	}
	at = clampIndex(at, len(d.blocks))
	d.blocks = append(d.blocks, Block{})
	copy(d.blocks[at+1:], d.blocks[at:])
	d.blocks[at] = b
	return nil
}

// RemoveBlock excises the block with the given ID, shifting every
// subsequent block down by one. Fails with ErrBlockNotFound if absent.
func (d *Document) RemoveBlock(id string) error {
	_, i, err := d.BlockByID(id)
	if err != nil {
		return err
	}
	d.blocks = append(d.blocks[:i], d.blocks[i+1:]...)
	return nil
}

// MoveBlock removes the block and reinserts it at toIndex (clamped). A
// move to the same effective position succeeds like any other move, so
// callers never have to special-case it.
func (d *Document) MoveBlock(id string, toIndex int) error {
	b, i, err := d.BlockByID(id)
	if err != nil {
		return err
	}
	d.blocks = append(d.blocks[:i], d.blocks[i+1:]...)
	toIndex = clampIndex(toIndex, len(d.blocks))
	d.blocks = append(d.blocks, Block{})
	copy(d.blocks[toIndex+1:], d.blocks[toIndex:])
	d.blocks[toIndex] = b
	return nil
}

// Reset discards all blocks, keeping the document identity (and any
// references engines hold to it) intact.
func (d *Document) Reset() {
	d.blocks = nil
}

// ExtractFunc pulls the serializable payload out of a block's state.
type ExtractFunc func(Block) (BlockData, error)

// ExtractAll applies extract to every block in document order. It is the
// single serialization path: both preview input and persisted state derive
// from it, so the two can never diverge.
func (d *Document) ExtractAll(extract ExtractFunc) (SerializedDocument, error) {
	out := SerializedDocument{Blocks: make([]SerializedBlock, 0, len(d.blocks))}
	for i, b := range d.blocks {
		data, err := extract(b)
		if err != nil {
			return SerializedDocument{}, fmt.Errorf("extract block %q: %w", b.ID, err)
		}
		out.Blocks = append(out.Blocks, SerializedBlock{Type: b.Type, Order: i, Data: data})
	}
	return out, nil
}

func clampIndex(i, max int) int {
	if i < 0 {
		return 0
	}
	if i > max {
		return max
	}
	return i
}
