package editor

import "context"

// ─────────────────────────────────────────────────────────────
// EventEmitter — decouples the engine from the hosting UI
// ─────────────────────────────────────────────────────────────

// EventEmitter carries change notifications out of the engine. The hosting
// application implements this; the engine never reaches for ambient UI
// state.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// Event names emitted by the editing session.
const (
	EventDocumentChanged = "document:changed"
	EventSaveState       = "save:state"
)

// ChangeNotification is the payload of EventDocumentChanged: the freshly
// rendered markup plus the save state at emission time.
type ChangeNotification struct {
	Markup string     `json:"markup"`
	Save   SaveStatus `json:"save"`
}

// MockEmitter is a test-friendly EventEmitter that records all calls.
type MockEmitter struct {
	Events []EmittedEvent
}

// EmittedEvent holds a single recorded emission for test assertions.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.Events = append(m.Events, EmittedEvent{Event: event, Data: data})
}

// NopEmitter discards all events.
type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, string, any) {}
