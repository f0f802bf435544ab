package editor

// ─────────────────────────────────────────────────────────────
// Gesture geometry — shared by the reorder and insertion engines
// ─────────────────────────────────────────────────────────────

// Point is a pointer position in the hosting UI's coordinate space.
// Y grows downward.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BlockRect is the vertical extent of one rendered block, reported by the
// hosting UI in document order.
type BlockRect struct {
	ID     string  `json:"id"`
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

// Center returns the vertical center of the rect.
func (r BlockRect) Center() float64 {
	return r.Top + r.Height/2
}

// GeometryFunc returns the current block rects in document order. The
// hosting UI supplies it; the engines decide when to call it.
type GeometryFunc func() []BlockRect

// DragContext is the transient state of an active gesture. It is created
// on gesture start, mutated on every pointer move, and discarded on drop
// or cancel. It is never persisted.
type DragContext struct {
	SubjectID         string
	PointerOrigin     Point
	InsertionIndex    int
	PlaceholderActive bool

	// rects is the geometry snapshot captured at gesture start; move
	// events compare against this cache instead of forcing a relayout.
	rects []BlockRect
}

// insertionIndex computes the index at which a drop at pointer would land:
// the count of non-subject blocks whose cached center lies strictly above
// the pointer. A pointer exactly at a block's center therefore inserts
// before that block.
func insertionIndex(rects []BlockRect, subjectID string, pointer Point) int {
	idx := 0
	for _, r := range rects {
		if r.ID == subjectID {
			continue
		}
		if r.Center() < pointer.Y {
			idx++
		}
	}
	return idx
}
