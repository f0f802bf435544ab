package editor

import (
	"context"
	"log"
	"sync"
	"time"

	"lessons/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// PersistenceScheduler — debounced, status-tracked saves
// ─────────────────────────────────────────────────────────────

// DefaultDebounce is the quiescence window collapsing bursts of edits
// into a single save. Tunable per session, not an invariant.
const DefaultDebounce = 2000 * time.Millisecond

// SaveState is the scheduler's lifecycle state. Only scheduler
// transitions mutate it.
type SaveState int

const (
	SaveIdle SaveState = iota
	SavePendingDebounce
	SaveSaving
	SaveSaved
	SaveFailed
)

func (s SaveState) String() string {
	switch s {
	case SaveIdle:
		return "idle"
	case SavePendingDebounce:
		return "pending"
	case SaveSaving:
		return "saving"
	case SaveSaved:
		return "saved"
	case SaveFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SaveStatus is the observable snapshot of the scheduler state.
type SaveStatus struct {
	State   SaveState `json:"state"`
	SavedAt time.Time `json:"savedAt,omitzero"`
	Reason  string    `json:"reason,omitempty"`
}

// SnapshotFunc serializes the current document. It is called at the
// moment a save actually begins, never earlier.
type SnapshotFunc func() (domain.SerializedDocument, error)

// PersistFunc issues the external persistence call.
type PersistFunc func(context.Context, domain.SerializedDocument) error

// Scheduler debounces document saves and guarantees at most one
// persistence call in flight. Failures land in SaveFailed and are not
// retried here; the next edit's ScheduleSave re-arms the pipeline.
type Scheduler struct {
	debounce time.Duration
	snapshot SnapshotFunc
	persist  PersistFunc
	onChange func(SaveStatus)
	ctx      context.Context

	mu      sync.Mutex
	state   SaveState
	savedAt time.Time
	reason  string
	timer   *time.Timer
	gen     int  // invalidates stale timer fires
	owed    bool // a save was requested while one was in flight
	owedNow bool // the owed save was forced by SaveNow
	closed  bool
}

// NewScheduler creates a scheduler. onChange (optional) observes every
// state transition and is always invoked without internal locks held.
func NewScheduler(ctx context.Context, debounce time.Duration, snapshot SnapshotFunc, persist PersistFunc, onChange func(SaveStatus)) *Scheduler {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Scheduler{
		debounce: debounce,
		snapshot: snapshot,
		persist:  persist,
		onChange: onChange,
		ctx:      ctx,
	}
}

// Status returns the current observable state.
func (s *Scheduler) Status() SaveStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

// ScheduleSave requests a save after the quiescence window, restarting
// the window if one is already pending. While a save is in flight the
// request is recorded and honored once the in-flight call completes.
func (s *Scheduler) ScheduleSave() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.state == SaveSaving {
		// Absorbed into the in-flight save; re-emit the status so
		// observers still see the request land.
		s.owed = true
		st := s.statusLocked()
		s.mu.Unlock()
		s.emit(st)
		return
	}
	s.armLocked()
	st := s.statusLocked()
	s.mu.Unlock()
	s.emit(st)
}

// SaveNow cancels any pending timer and saves immediately. If a save is
// already in flight, the next save is owed and starts as soon as the
// current one completes; a second concurrent call is never issued.
func (s *Scheduler) SaveNow() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.state == SaveSaving {
		s.owed = true
		s.owedNow = true
		st := s.statusLocked()
		s.mu.Unlock()
		s.emit(st)
		return
	}
	s.stopTimerLocked()
	s.state = SaveSaving
	go s.runSave()
	st := s.statusLocked()
	s.mu.Unlock()
	s.emit(st)
}

// CancelPending clears a pending debounce timer. It never touches a save
// already in flight.
func (s *Scheduler) CancelPending() {
	s.mu.Lock()
	if s.state != SavePendingDebounce {
		s.mu.Unlock()
		return
	}
	s.stopTimerLocked()
	s.state = SaveIdle
	st := s.statusLocked()
	s.mu.Unlock()
	s.emit(st)
}

// Close releases the timer and detaches the scheduler. An in-flight
// persistence call may still complete but its result is discarded.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.stopTimerLocked()
	if s.state == SavePendingDebounce {
		s.state = SaveIdle
	}
}

// ── internals ──────────────────────────────────────────────

// armLocked (re)starts the debounce timer and enters PendingDebounce.
func (s *Scheduler) armLocked() {
	s.stopTimerLocked()
	s.state = SavePendingDebounce
	gen := s.gen
	s.timer = time.AfterFunc(s.debounce, func() { s.fire(gen) })
}

// stopTimerLocked stops any pending timer and invalidates fires already
// on their way.
func (s *Scheduler) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
}

// fire is the timer callback: the quiescence window elapsed.
func (s *Scheduler) fire(gen int) {
	s.mu.Lock()
	if s.closed || gen != s.gen || s.state != SavePendingDebounce {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.state = SaveSaving
	go s.runSave()
	st := s.statusLocked()
	s.mu.Unlock()
	s.emit(st)
}

// runSave snapshots the document and issues the persistence call. Runs
// without the scheduler lock so edits keep flowing during a save.
func (s *Scheduler) runSave() {
	doc, err := s.snapshot()
	if err == nil {
		err = s.persist(s.ctx, doc)
	}
	s.finish(err)
}

func (s *Scheduler) finish(err error) {
	s.mu.Lock()
	if s.closed {
		// Teardown raced the in-flight call; drop the result.
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.state = SaveFailed
		s.reason = err.Error()
		log.Printf("[AUTOSAVE] save failed: %v", err)
	} else {
		s.state = SaveSaved
		s.savedAt = time.Now()
		s.reason = ""
	}
	emits := []SaveStatus{s.statusLocked()}
	if s.owed {
		forced := s.owedNow
		s.owed = false
		s.owedNow = false
		if forced {
			s.state = SaveSaving
			go s.runSave()
		} else {
			s.armLocked()
		}
		emits = append(emits, s.statusLocked())
	}
	s.mu.Unlock()
	for _, st := range emits {
		s.emit(st)
	}
}

func (s *Scheduler) statusLocked() SaveStatus {
	return SaveStatus{State: s.state, SavedAt: s.savedAt, Reason: s.reason}
}

func (s *Scheduler) emit(st SaveStatus) {
	if s.onChange != nil {
		s.onChange(st)
	}
}
