package storekit

// NestOption configures how a child store projects into its parent.
type NestOption func(*nestConfig)

type nestConfig struct {
	read  Projection
	write Projection
}

// WithReadProjection sets the parent-to-child state projection.
// Defaults to identity.
func WithReadProjection(p Projection) NestOption {
	return func(c *nestConfig) { c.read = p }
}

// WithWriteProjection sets the child-to-parent state projection.
// Defaults to identity.
func WithWriteProjection(p Projection) NestOption {
	return func(c *nestConfig) { c.write = p }
}

func identityProjection(v any) any { return v }

// AddInnerStore attaches child to s. The attachment is permanent:
//
//   - the child's dispatches resolve through s's backend chain,
//   - the child's reducer joins s's composite reducer,
//   - the child's state becomes a pure projection of s's state,
//   - the child joins s's notification fan-out and unsubscribe cascade.
//
// The child's own initial state and backend, if any, stop being
// meaningful once attached.
func (s *Store) AddInnerStore(child *Store, opts ...NestOption) error {
	if child.parent != nil {
		return ErrAlreadyAttached
	}

	cfg := nestConfig{read: identityProjection, write: identityProjection}
	for _, opt := range opts {
		opt(&cfg)
	}

	child.parent = s
	child.readProj = cfg.read
	child.writeProj = cfg.write

	s.subMu.Lock()
	s.reducers = append(s.reducers, child.Reduce)
	s.children = append(s.children, child)
	s.subMu.Unlock()
	return nil
}

// Parent returns the store this one is attached to, or nil.
func (s *Store) Parent() *Store { return s.parent }

// Children returns the attached child stores in registration order.
func (s *Store) Children() []*Store {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	out := make([]*Store, len(s.children))
	copy(out, s.children)
	return out
}
