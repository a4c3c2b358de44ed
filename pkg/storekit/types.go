package storekit

import "strings"

// Phase represents the lifecycle phase carried by an action type.
type Phase int

const (
	// PhaseNone is a plain action type with no lifecycle suffix.
	PhaseNone Phase = iota

	// PhaseStart marks the dispatch issued before an async payload runs.
	PhaseStart

	// PhaseSuccess marks the dispatch issued after an async payload resolves.
	PhaseSuccess

	// PhaseError marks the dispatch issued after an async payload fails.
	PhaseError
)

// String returns a human-readable name for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseNone:
		return "none"
	case PhaseStart:
		return "start"
	case PhaseSuccess:
		return "success"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// Lifecycle suffixes appended to a base action type.
const (
	suffixStart   = "_START"
	suffixSuccess = "_SUCCESS"
	suffixError   = "_ERROR"
)

// reservedPrefix marks action types emitted internally by reducer
// backends (init/replace probes). Reducers return state unchanged
// for them.
const reservedPrefix = "@@"

// TypeName derives the namespaced action type for an action declared on a
// store. The result is unique per (store, action) pair.
func TypeName(store, action string) string {
	return store + "/" + action
}

// WithPhase derives the lifecycle-suffixed variant of a base type.
// PhaseNone returns the base type unchanged.
func WithPhase(base string, p Phase) string {
	switch p {
	case PhaseStart:
		return base + suffixStart
	case PhaseSuccess:
		return base + suffixSuccess
	case PhaseError:
		return base + suffixError
	default:
		return base
	}
}

// SplitType recovers the base type and lifecycle phase from a raw action
// type string.
func SplitType(t string) (string, Phase) {
	switch {
	case strings.HasSuffix(t, suffixStart):
		return t[:len(t)-len(suffixStart)], PhaseStart
	case strings.HasSuffix(t, suffixSuccess):
		return t[:len(t)-len(suffixSuccess)], PhaseSuccess
	case strings.HasSuffix(t, suffixError):
		return t[:len(t)-len(suffixError)], PhaseError
	default:
		return t, PhaseNone
	}
}

// IsReserved reports whether a type string is internal to the backend and
// must be ignored by reducers.
func IsReserved(t string) bool {
	return strings.HasPrefix(t, reservedPrefix)
}

// Action is the unit dispatched to the backend.
type Action struct {
	Type    string
	Payload any
}

// Backend is the underlying reducer store. It owns canonical state,
// applies the composite reducer, and feeds resulting state back through
// Store.SetState.
type Backend interface {
	Dispatch(Action)
}

// BackendFunc adapts a function to the Backend interface.
type BackendFunc func(Action)

// Dispatch calls f(act).
func (f BackendFunc) Dispatch(act Action) { f(act) }

// ErrorSink receives every uncaught failure from an action's execution.
// Sink invocation never suppresses the error; it is still surfaced to
// awaiters of the failing call.
type ErrorSink interface {
	Handle(err error, actionType string)
}

// ErrorSinkFunc adapts a function to the ErrorSink interface.
type ErrorSinkFunc func(err error, actionType string)

// Handle calls f(err, actionType).
func (f ErrorSinkFunc) Handle(err error, actionType string) { f(err, actionType) }

// Handler transforms state in response to one dispatched action.
// rawType carries the full (possibly lifecycle-suffixed) type string.
type Handler func(state, payload any, rawType string) any

// Reducer is a composite state-transition function over dispatched
// actions. A store's reducer folds its own handler table and every
// attached child's reducer over the same state value.
type Reducer func(state any, act Action) any

// Selector derives a value from current state.
type Selector func(state any) any

// Projection translates between a parent store's global state shape and a
// child store's local shape.
type Projection func(state any) any
