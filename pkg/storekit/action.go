package storekit

import (
	"context"
	"sync"
)

// ActionHandle is the invokable form of one declared action on one store
// instance. It tracks the last-observed lifecycle phase and the deferred
// completion of the most recent in-flight invocation.
type ActionHandle struct {
	store *Store
	decl  *actionDecl
	typ   string

	mu       sync.Mutex
	phase    Phase
	deferred *deferred
}

// Call is one invocation's completion handle. The direct caller always
// observes the invocation's outcome through Await, independent of the
// deferred subscription rules that govern ActionHandle.Wait.
type Call struct {
	d *deferred

	mu     sync.Mutex
	result any
	err    error
}

// Await blocks until the invocation settles and returns its result.
// A suppressed invocation (dedup veto or stale under the latest policy)
// yields a nil result and no error.
func (c *Call) Await(ctx context.Context) (any, error) {
	select {
	case <-c.d.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result, c.err
}

func (c *Call) settle(result any, err error) {
	c.mu.Lock()
	c.result = result
	c.err = err
	c.mu.Unlock()
}

// Type returns the action's namespaced base type.
func (h *ActionHandle) Type() string { return h.typ }

// Phase returns the last-observed lifecycle phase. PhaseNone until the
// first async invocation.
func (h *ActionHandle) Phase() Phase {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.phase
}

// Wait blocks until the most recent in-flight invocation completes.
// It returns immediately when nothing is in flight. The invocation's
// failure is surfaced here only because Wait subscribes before
// settlement; invocations nobody waits on fail silently on this path.
func (h *ActionHandle) Wait(ctx context.Context) error {
	h.mu.Lock()
	d := h.deferred
	h.mu.Unlock()
	if d == nil {
		return nil
	}
	return d.await(ctx)
}

// Invoke runs the action with the given arguments.
//
// A sync action runs its payload inline; the returned Call is already
// settled. An async action dispatches its START variant, runs the
// payload on a new goroutine, and settles the Call when the payload
// does. Failures are routed once through the store's error sink and
// still surface through Call.Await.
func (h *ActionHandle) Invoke(ctx context.Context, args ...any) *Call {
	if h.decl.cacheEnabled() && !h.decl.cache.check(h.decl.cacheKeyFor(args)) {
		// Suppressed before any side effect: no payload run, no
		// dispatch, no lifecycle or deferred mutation.
		d := newDeferred()
		d.resolve()
		return &Call{d: d}
	}

	d := newDeferred()
	h.mu.Lock()
	h.deferred = d
	h.mu.Unlock()

	call := &Call{d: d}
	seq := h.decl.calls.Add(1)

	if h.decl.spec.Do != nil {
		h.invokeSync(call, d, args)
		return call
	}

	// START is dispatched before Invoke returns; only the payload runs
	// off this goroutine.
	if derr := h.store.Dispatch(Action{Type: WithPhase(h.typ, PhaseStart), Payload: startPayload(args)}); derr != nil {
		call.settle(nil, derr)
		d.reject(derr)
		h.clearDeferred(d)
		return call
	}
	h.setPhase(PhaseStart)

	go h.invokeAsync(ctx, call, d, seq, args)
	return call
}

func (h *ActionHandle) invokeSync(call *Call, d *deferred, args []any) {
	result, err := h.decl.spec.Do(h.store, args...)
	if err != nil {
		call.settle(nil, err)
		d.reject(err)
		h.store.sinkError(err, h.typ)
		h.clearDeferred(d)
		return
	}
	if derr := h.store.Dispatch(Action{Type: h.typ, Payload: h.project(result)}); derr != nil {
		call.settle(nil, derr)
		d.reject(derr)
		h.clearDeferred(d)
		return
	}
	call.settle(result, nil)
	d.resolve()
	h.clearDeferred(d)
}

func (h *ActionHandle) invokeAsync(ctx context.Context, call *Call, d *deferred, seq uint64, args []any) {
	result, err := h.decl.spec.DoAsync(ctx, h.store, args...)
	if err != nil {
		_ = h.store.Dispatch(Action{Type: WithPhase(h.typ, PhaseError), Payload: err})
		h.setPhase(PhaseError)
		call.settle(nil, err)
		d.reject(err)
		h.store.sinkError(err, h.typ)
		h.clearDeferred(d)
		return
	}

	if h.decl.spec.Latest && h.decl.calls.Load() != seq {
		// A newer invocation superseded this one. Drop the dispatch
		// and the result; the deferred still settles, and the newer
		// call's deferred is left alone.
		call.settle(nil, nil)
		d.resolve()
		h.clearDeferred(d)
		return
	}

	// A nil result skips the whole SUCCESS clause: no dispatch, no phase
	// transition, no lifecycle notification. The handle stays in the
	// START phase.
	if result != nil {
		if derr := h.store.Dispatch(Action{Type: WithPhase(h.typ, PhaseSuccess), Payload: h.project(result)}); derr != nil {
			call.settle(nil, derr)
			d.reject(derr)
			h.clearDeferred(d)
			return
		}
		h.setPhase(PhaseSuccess)
	}
	call.settle(result, nil)
	d.resolve()
	h.clearDeferred(d)
}

// clearDeferred drops the handle's deferred reference, but only when this
// invocation still owns it. A call racing a newer invocation must not
// destroy the newer call's completion signal.
func (h *ActionHandle) clearDeferred(d *deferred) {
	h.mu.Lock()
	if h.deferred == d {
		h.deferred = nil
	}
	h.mu.Unlock()
}

func (h *ActionHandle) setPhase(p Phase) {
	h.mu.Lock()
	h.phase = p
	h.mu.Unlock()
	h.store.notifyLifecycle(h.typ, p)
}

func (h *ActionHandle) project(v any) any {
	if h.decl.spec.Map != nil {
		return h.decl.spec.Map(v)
	}
	return v
}

// startPayload derives the START dispatch payload from the call
// arguments: the lone argument when exactly one was passed, otherwise
// the full argument list.
func startPayload(args []any) any {
	if len(args) == 1 {
		return args[0]
	}
	return args
}
