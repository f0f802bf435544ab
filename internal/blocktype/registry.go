package blocktype

import (
	"fmt"
	"log"
	"sync"

	"lessons/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Block Type Registry — tag → capability descriptor
// ─────────────────────────────────────────────────────────────

// Descriptor holds the four capabilities registered for a block type tag.
// Block types are added by registering a descriptor, never by subclassing
// anything engine-internal.
type Descriptor struct {
	// CreateDefault builds a fresh block state. initial may be nil (palette
	// drop) or a full payload (hydration/import).
	CreateDefault func(initial domain.BlockData) (any, error)
	// Populate applies a payload to an existing state and returns the
	// updated state.
	Populate func(state any, data domain.BlockData) (any, error)
	// ExtractData pulls the serializable payload out of a state.
	ExtractData func(state any) domain.BlockData
	// RenderPreview renders a state to HTML. Must be pure.
	RenderPreview func(state any) string
}

// Registry maps block type tags to descriptors. Registration is
// last-write-wins; resolving an unregistered tag is a typed failure.
type Registry struct {
	mu          sync.RWMutex
	descriptors map[string]Descriptor
	order       []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{descriptors: make(map[string]Descriptor)}
}

// Register adds a descriptor for tag, overwriting any existing entry.
// An overwrite is logged but not fatal.
func (r *Registry) Register(tag string, d Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.descriptors[tag]; exists {
		log.Printf("[REGISTRY] overwriting descriptor for block type %q", tag)
	} else {
		r.order = append(r.order, tag)
	}
	r.descriptors[tag] = d
}

// Resolve returns the descriptor for tag. An unknown tag returns an error
// wrapping domain.ErrUnknownBlockType; callers must handle or propagate it.
func (r *Registry) Resolve(tag string) (Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.descriptors[tag]
	if !ok {
		return Descriptor{}, fmt.Errorf("block type %q: %w", tag, domain.ErrUnknownBlockType)
	}
	return d, nil
}

// Has reports whether tag is registered.
func (r *Registry) Has(tag string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.descriptors[tag]
	return ok
}

// Tags returns all registered tags in registration order.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
