package storekit

import "log/slog"

// Option configures a store at construction time.
type Option func(*storeConfig)

type storeConfig struct {
	backend  Backend
	registry *Registry
	sink     ErrorSink
	logger   *slog.Logger
	deps     any
	parent   *Store
	nestOpts []NestOption
}

// WithBackend sets the dispatch backend. A store without a backend must
// be attached to a parent before its actions are invoked.
func WithBackend(b Backend) Option {
	return func(c *storeConfig) { c.backend = b }
}

// WithRegistry registers the store with a live-store registry for bulk
// teardown.
func WithRegistry(r *Registry) Option {
	return func(c *storeConfig) { c.registry = r }
}

// WithErrorSink sets the sink invoked on every uncaught action failure.
func WithErrorSink(sink ErrorSink) Option {
	return func(c *storeConfig) { c.sink = sink }
}

// WithLogger sets the store's logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *storeConfig) { c.logger = l }
}

// WithDeps attaches an opaque dependency bag, available to payload
// functions through Store.Deps.
func WithDeps(deps any) Option {
	return func(c *storeConfig) { c.deps = deps }
}

// WithParent attaches the new store to parent immediately, as if by
// AddInnerStore.
func WithParent(parent *Store, opts ...NestOption) Option {
	return func(c *storeConfig) {
		c.parent = parent
		c.nestOpts = opts
	}
}
