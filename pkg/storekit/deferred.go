package storekit

import (
	"context"
	"sync"
)

// deferred is a one-shot completion bound to a single action invocation.
//
// A deferred settles exactly once; later resolve/reject calls are no-ops.
// Its error is recorded only when a waiter subscribed before settlement,
// so fire-and-forget invocations never surface a failure through the wait
// path. The direct caller observes failures through Call instead.
//
// A new invocation replaces the action handle's deferred reference; the
// replaced deferred is untouched and still settles from its own in-flight
// call, so overlapping invocations do not destroy each other's completion
// signals.
type deferred struct {
	mu         sync.Mutex
	done       chan struct{}
	settled    bool
	subscribed bool
	err        error
}

func newDeferred() *deferred {
	return &deferred{done: make(chan struct{})}
}

// resolve settles successfully. No-op if already settled.
func (d *deferred) resolve() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.settled {
		return
	}
	d.settled = true
	close(d.done)
}

// reject settles with failure. The error is only retained for waiters
// that subscribed before settlement.
func (d *deferred) reject(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.settled {
		return
	}
	d.settled = true
	if d.subscribed {
		d.err = err
	}
	close(d.done)
}

// await subscribes and blocks until the deferred settles or ctx is done.
func (d *deferred) await(ctx context.Context) error {
	d.mu.Lock()
	if d.settled {
		err := d.err
		d.mu.Unlock()
		return err
	}
	d.subscribed = true
	d.mu.Unlock()

	select {
	case <-d.done:
		d.mu.Lock()
		err := d.err
		d.mu.Unlock()
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
