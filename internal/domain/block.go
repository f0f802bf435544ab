package domain

import "time"

// BlockData is the type-tag-specific payload of a block, as it appears on
// the wire and in storage. The engine never inspects its keys.
type BlockData map[string]any

// Block is one typed unit of document content. State is the in-memory
// representation built by the block type's descriptor and is opaque to the
// engine; only the owning Document moves a block.
type Block struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	State any    `json:"-"`
}

// BlockInput is one element of a hydration or import sequence.
type BlockInput struct {
	Type string    `json:"type"`
	Data BlockData `json:"data"`
}

// SerializedBlock is the persisted form of a block.
type SerializedBlock struct {
	Type  string    `json:"type"`
	Order int       `json:"order"`
	Data  BlockData `json:"data"`
}

// SerializedDocument is the wire format accepted by every DocumentSaver.
type SerializedDocument struct {
	Blocks []SerializedBlock `json:"blocks"`
}

// Inputs converts a serialized document back into a hydration sequence.
func (d SerializedDocument) Inputs() []BlockInput {
	inputs := make([]BlockInput, len(d.Blocks))
	for i, b := range d.Blocks {
		inputs[i] = BlockInput{Type: b.Type, Data: b.Data}
	}
	return inputs
}

// Session is an authoring session: a named container of nodes.
type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Node is one editable document within a session.
type Node struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Title     string    `json:"title"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
