// Package storekit provides a state-orchestration layer on top of an
// external reducer backend.
//
// A Store is built from a Definition that declares named actions, state
// handlers, and selectors. Invoking an action produces a payload (inline
// or asynchronously), drives a START/SUCCESS/ERROR lifecycle for async
// work, and dispatches typed actions to the backend. The backend owns
// canonical state and applies the store's composite reducer; storekit
// never runs that application loop itself.
//
// # Core Types
//
// Store is the orchestration unit:
//
//	store, err := storekit.New(storekit.Definition{
//	    Name:         "counter",
//	    InitialState: map[string]any{"count": 0},
//	    Actions: map[string]storekit.ActionSpec{
//	        "increment": {Do: func(s *storekit.Store, args ...any) (any, error) {
//	            return args[0], nil
//	        }},
//	    },
//	    Handlers: map[string]storekit.HandlerSpec{
//	        "increment": {Handle: addCount},
//	    },
//	}, storekit.WithBackend(backend))
//
// Invoking an action returns a Call, a handle on that invocation's
// completion:
//
//	call := store.Action("increment").Invoke(ctx, 3)
//	result, err := call.Await(ctx)
//
// # Lifecycle
//
// Async actions dispatch a START variant before the payload runs and a
// SUCCESS or ERROR variant after it settles. Callers that never Await a
// Call do not observe its failure; the error is still routed to the
// store's error sink.
//
// # Composition
//
// Stores nest. AddInnerStore attaches a child whose state is a projection
// of the parent's, whose reducer runs as part of the parent's composite
// reducer, and whose dispatches resolve through the root backend.
//
// # Thread Safety
//
// All exported operations are safe for concurrent use. Async payloads run
// on their own goroutines; their lifecycle transitions are serialized
// through the owning store.
package storekit
