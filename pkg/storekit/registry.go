package storekit

import (
	"sync"

	"github.com/google/uuid"
)

// Registry tracks live stores for bulk teardown and inspection. It is an
// explicit object with an owner; there is no package-level registry.
// Intended for full reset between test runs or hot-reload cycles.
type Registry struct {
	mu     sync.Mutex
	stores map[uuid.UUID]*Store
	order  []uuid.UUID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{stores: make(map[uuid.UUID]*Store)}
}

// Register adds a store. Registering the same store twice is a no-op.
func (r *Registry) Register(s *Store) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stores[s.id]; ok {
		return
	}
	r.stores[s.id] = s
	r.order = append(r.order, s.id)
}

// Lookup returns the store with the given ID, or nil.
func (r *Registry) Lookup(id uuid.UUID) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stores[id]
}

// Stores returns the registered stores in registration order.
func (r *Registry) Stores() []*Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Store, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.stores[id])
	}
	return out
}

// Len returns the number of registered stores.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// UnsubscribeAll clears every registered store's subscriber lists,
// cascading to attached children, then drains the registry.
func (r *Registry) UnsubscribeAll() {
	r.mu.Lock()
	stores := make([]*Store, 0, len(r.order))
	for _, id := range r.order {
		stores = append(stores, r.stores[id])
	}
	r.stores = make(map[uuid.UUID]*Store)
	r.order = nil
	r.mu.Unlock()

	for _, s := range stores {
		s.Unsubscribe()
	}
}
