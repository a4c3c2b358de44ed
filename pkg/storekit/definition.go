package storekit

import (
	"context"
	"fmt"
	"sync/atomic"
)

// SyncPayloadFunc produces an action's payload inline. The store gives
// payload functions access to its dependency bag and current state.
type SyncPayloadFunc func(s *Store, args ...any) (any, error)

// AsyncPayloadFunc produces an action's payload off the calling
// goroutine, bracketed by START and SUCCESS/ERROR dispatches.
type AsyncPayloadFunc func(ctx context.Context, s *Store, args ...any) (any, error)

// ActionSpec declares one action. Exactly one of Do and DoAsync must be
// set; the sync/async shape is fixed at construction time.
type ActionSpec struct {
	// Do runs the payload inline and dispatches the base type directly.
	Do SyncPayloadFunc

	// DoAsync runs the payload on its own goroutine with lifecycle
	// dispatches around it.
	DoAsync AsyncPayloadFunc

	// Cache suppresses an invocation whose arguments are identical,
	// element-wise, to the previous invocation's.
	Cache bool

	// CacheKey derives the dedup key from the arguments instead of
	// using them raw. Mutually exclusive with Cache.
	CacheKey func(args []any) any

	// Latest drops the SUCCESS dispatch (and result) of an invocation
	// that was superseded by a newer one before it settled. Only valid
	// on async actions.
	Latest bool

	// Map projects the resolved payload before it is dispatched.
	Map func(v any) any
}

// HandlerSpec declares the state transition for one action. Either Handle
// alone, or any subset of the phase sub-handlers, never both.
type HandlerSpec struct {
	// Handle receives every dispatch for the action regardless of phase.
	Handle Handler

	// Phase sub-handlers for async actions. A dispatch whose phase has
	// no sub-handler leaves state unchanged.
	Start   Handler
	Success Handler
	Error   Handler
}

// handler collapses the declaration into a single Handler. Phase sub-handlers
// are checked success first, then error, then start.
func (h HandlerSpec) handler() Handler {
	if h.Handle != nil {
		return h.Handle
	}
	start, success, fail := h.Start, h.Success, h.Error
	return func(state, payload any, rawType string) any {
		_, phase := SplitType(rawType)
		switch phase {
		case PhaseSuccess:
			if success != nil {
				return success(state, payload, rawType)
			}
		case PhaseError:
			if fail != nil {
				return fail(state, payload, rawType)
			}
		case PhaseStart:
			if start != nil {
				return start(state, payload, rawType)
			}
		}
		return state
	}
}

// Definition is the declaration surface for a store: its name, initial
// state, and the actions, handlers, and selectors it exposes. A
// Definition is plain data with no registration side effects; it is
// validated once by New.
type Definition struct {
	// Name namespaces the store's action types. Defaults to "store".
	Name string

	// InitialState seeds the store's state. Defaults to an empty
	// map[string]any.
	InitialState any

	Actions   map[string]ActionSpec
	Handlers  map[string]HandlerSpec
	Selectors map[string]Selector
}

// validate rejects malformed specs at construction time.
func (d Definition) validate() error {
	for name, spec := range d.Actions {
		hasSync := spec.Do != nil
		hasAsync := spec.DoAsync != nil
		if hasSync == hasAsync {
			return fmt.Errorf("%w: action %q must declare exactly one of Do and DoAsync", ErrInvalidDefinition, name)
		}
		if spec.Cache && spec.CacheKey != nil {
			return fmt.Errorf("%w: action %q declares both Cache and CacheKey", ErrInvalidDefinition, name)
		}
		if spec.Latest && !hasAsync {
			return fmt.Errorf("%w: action %q declares Latest without DoAsync", ErrInvalidDefinition, name)
		}
	}
	for name, spec := range d.Handlers {
		hasCombined := spec.Handle != nil
		hasPhased := spec.Start != nil || spec.Success != nil || spec.Error != nil
		if hasCombined && hasPhased {
			return fmt.Errorf("%w: handler %q mixes Handle with phase sub-handlers", ErrInvalidDefinition, name)
		}
		if !hasCombined && !hasPhased {
			return fmt.Errorf("%w: handler %q declares no handler function", ErrInvalidDefinition, name)
		}
	}
	return nil
}

// actionDecl is the immutable runtime form of one ActionSpec plus the
// per-declaration mutable bits: the running call counter used by the
// latest policy and the dedup cache.
type actionDecl struct {
	name  string
	spec  ActionSpec
	calls atomic.Uint64
	cache argCache
}

// cacheEnabled reports whether the dedup gate applies to this action.
func (d *actionDecl) cacheEnabled() bool {
	return d.spec.Cache || d.spec.CacheKey != nil
}

// cacheKeyFor computes the dedup key for one call's arguments.
func (d *actionDecl) cacheKeyFor(args []any) any {
	if d.spec.CacheKey != nil {
		return d.spec.CacheKey(args)
	}
	return args
}
