// Package sktest provides testing helpers for storekit stores.
//
// RecordingBackend captures every dispatched action for assertions:
//
//	backend := sktest.NewRecordingBackend()
//	store, _ := storekit.New(def, storekit.WithBackend(backend))
//	store.Action("increment").Invoke(ctx, 3)
//	types := backend.Types() // []string{"counter/increment"}
//
// ReducerBackend is a minimal reference application loop: it runs the
// bound store's composite reducer against current state and writes the
// result back, firing subscribers. It exists for tests and examples;
// production hosts supply their own backend.
//
//	backend := sktest.NewReducerBackend()
//	store, _ := storekit.New(def, storekit.WithBackend(backend))
//	backend.Bind(store)
package sktest
