package storekit

import "errors"

// ErrNoBackend is returned when an action is invoked on a store that has
// no dispatch backend and is not attached to a parent that has one.
//
// This is a wiring mistake, not a runtime failure: it is surfaced
// directly to the caller and never routed through the error sink.
var ErrNoBackend = errors.New("storekit: store has no dispatch backend")

// ErrUnknownAction is returned when looking up an action name that was
// not declared in the store's Definition.
var ErrUnknownAction = errors.New("storekit: unknown action")

// ErrUnknownSelector is returned when evaluating a selector name that was
// not declared in the store's Definition.
var ErrUnknownSelector = errors.New("storekit: unknown selector")

// ErrAlreadyAttached is returned by AddInnerStore when the child store
// already has a parent. A store has at most one parent and there is no
// detach operation.
var ErrAlreadyAttached = errors.New("storekit: store already attached to a parent")

// ErrInvalidDefinition is wrapped by all construction-time validation
// failures: an ActionSpec with zero or two payload functions, a cache
// flag combined with a cache key function, a latest policy on a sync
// action, or a HandlerSpec mixing a combined handler with phase
// sub-handlers.
var ErrInvalidDefinition = errors.New("storekit: invalid definition")
