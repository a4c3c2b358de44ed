package sktest

import (
	"sync"

	"github.com/storekit-dev/storekit/pkg/storekit"
)

// RecordingBackend captures dispatched actions in order. It optionally
// forwards each action to a next backend, so it can sit in front of a
// ReducerBackend when a test needs both recording and state application.
type RecordingBackend struct {
	mu      sync.Mutex
	actions []storekit.Action
	next    storekit.Backend
}

// NewRecordingBackend creates a backend that records and drops actions.
func NewRecordingBackend() *RecordingBackend {
	return &RecordingBackend{}
}

// NewRecordingTap creates a backend that records actions and forwards
// them to next.
func NewRecordingTap(next storekit.Backend) *RecordingBackend {
	return &RecordingBackend{next: next}
}

// Dispatch records the action and forwards it when a next backend is set.
func (b *RecordingBackend) Dispatch(act storekit.Action) {
	b.mu.Lock()
	b.actions = append(b.actions, act)
	next := b.next
	b.mu.Unlock()

	if next != nil {
		next.Dispatch(act)
	}
}

// Actions returns a copy of the recorded actions in dispatch order.
func (b *RecordingBackend) Actions() []storekit.Action {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]storekit.Action, len(b.actions))
	copy(out, b.actions)
	return out
}

// Types returns the recorded action type strings in dispatch order.
func (b *RecordingBackend) Types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.actions))
	for i, act := range b.actions {
		out[i] = act.Type
	}
	return out
}

// Len returns the number of recorded actions.
func (b *RecordingBackend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.actions)
}

// Reset discards the recorded actions.
func (b *RecordingBackend) Reset() {
	b.mu.Lock()
	b.actions = nil
	b.mu.Unlock()
}

// ReducerBackend is a reference reducer application loop for tests. Each
// dispatch runs the bound store's composite reducer over current state
// and writes the result back through SetState, which fires subscribers.
//
// Dispatches are serialized under one mutex; re-entrant dispatch from
// inside a reducer deadlocks by contract.
type ReducerBackend struct {
	mu    sync.Mutex
	store *storekit.Store
}

// NewReducerBackend creates an unbound reducer backend. Bind must be
// called before the first dispatch.
func NewReducerBackend() *ReducerBackend {
	return &ReducerBackend{}
}

// Bind attaches the store whose reducer and state this backend drives.
func (b *ReducerBackend) Bind(s *storekit.Store) {
	b.mu.Lock()
	b.store = s
	b.mu.Unlock()
}

// Dispatch applies the composite reducer and stores the result.
func (b *ReducerBackend) Dispatch(act storekit.Action) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.store == nil {
		return
	}
	next := b.store.Reduce(b.store.State(), act)
	b.store.SetState(next)
}
