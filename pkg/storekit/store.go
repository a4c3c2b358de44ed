package storekit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Store is one state-orchestration unit: a set of action handles, a
// composite reducer, subscriber lists, and either a dispatch backend of
// its own or a parent store to resolve one through.
type Store struct {
	id     uuid.UUID
	name   string
	logger *slog.Logger
	sink   ErrorSink
	deps   any

	mu    sync.Mutex
	state any

	backend   Backend
	parent    *Store
	readProj  Projection
	writeProj Projection

	handlers  map[string]Handler
	actions   map[string]*ActionHandle
	selectors map[string]Selector
	reducers  []Reducer

	subMu         sync.Mutex
	subSeq        uint64
	stateSubs     []stateSub
	lifecycleSubs []lifecycleSub
	children      []*Store
}

// Subscriptions carry a token so removal targets the exact registration,
// not whatever later landed in its slot.
type stateSub struct {
	id uint64
	fn func(newState, prevState any)
}

type lifecycleSub struct {
	id uint64
	fn func(actionType string, phase Phase)
}

// New builds a store from a validated Definition. The Definition is
// plain data: construction has no side effect beyond optional registry
// registration, and malformed action or handler shapes fail here rather
// than at dispatch time.
func New(def Definition, opts ...Option) (*Store, error) {
	if err := def.validate(); err != nil {
		return nil, err
	}

	name := def.Name
	if name == "" {
		name = "store"
	}
	initial := def.InitialState
	if initial == nil {
		initial = map[string]any{}
	}

	s := &Store{
		id:        uuid.New(),
		name:      name,
		logger:    slog.Default(),
		state:     initial,
		handlers:  make(map[string]Handler, len(def.Handlers)),
		actions:   make(map[string]*ActionHandle, len(def.Actions)),
		selectors: make(map[string]Selector, len(def.Selectors)),
	}
	s.reducers = []Reducer{s.reduceSelf}

	for hname, hspec := range def.Handlers {
		s.handlers[TypeName(name, hname)] = hspec.handler()
	}
	for aname, aspec := range def.Actions {
		s.actions[aname] = &ActionHandle{
			store: s,
			decl:  &actionDecl{name: aname, spec: aspec},
			typ:   TypeName(name, aname),
		}
	}
	for sname, sel := range def.Selectors {
		s.selectors[sname] = sel
	}

	var cfg storeConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	s.backend = cfg.backend
	s.deps = cfg.deps
	if cfg.sink != nil {
		s.sink = cfg.sink
	}
	if cfg.logger != nil {
		s.logger = cfg.logger
	}
	if cfg.registry != nil {
		cfg.registry.Register(s)
	}
	if cfg.parent != nil {
		if err := cfg.parent.AddInnerStore(s, cfg.nestOpts...); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// ID returns the store's instance identifier.
func (s *Store) ID() uuid.UUID { return s.id }

// Name returns the store's namespace name.
func (s *Store) Name() string { return s.name }

// Deps returns the opaque dependency bag handed to New.
func (s *Store) Deps() any { return s.deps }

// Action returns the handle for a declared action, or nil if the name
// was not declared.
func (s *Store) Action(name string) *ActionHandle {
	return s.actions[name]
}

// Invoke looks up a declared action and invokes it.
func (s *Store) Invoke(ctx context.Context, name string, args ...any) (*Call, error) {
	h := s.actions[name]
	if h == nil {
		return nil, fmt.Errorf("%w: %q on store %q", ErrUnknownAction, name, s.name)
	}
	return h.Invoke(ctx, args...), nil
}

// Select evaluates a declared selector against current state.
func (s *Store) Select(name string) (any, error) {
	sel, ok := s.selectors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q on store %q", ErrUnknownSelector, name, s.name)
	}
	return sel(s.State()), nil
}

// Dispatch forwards an action to the backend, resolving through the
// parent chain when the store is attached.
func (s *Store) Dispatch(act Action) error {
	b := s.root().backend
	if b == nil {
		return fmt.Errorf("%w: store %q", ErrNoBackend, s.name)
	}
	b.Dispatch(act)
	return nil
}

func (s *Store) root() *Store {
	r := s
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// State returns the store's current state. An attached store's state is
// purely a projection: it reads the parent's state through the read
// projection, and returns nil while the parent has no state yet.
func (s *Store) State() any {
	if s.parent != nil {
		ps := s.parent.State()
		if ps == nil {
			return nil
		}
		return s.readProj(ps)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetState replaces the store's state.
//
// On a root store this fires state subscribers and fans out to children.
// On an attached store the value is write-projected and merged into the
// parent's state field directly, bypassing the parent's notifier: nested
// writes update shared global state silently, and notification is driven
// top-down by the next root transition.
func (s *Store) SetState(v any) {
	if s.parent != nil {
		s.applyState(v)
		return
	}
	s.mu.Lock()
	prev := s.state
	s.state = v
	s.mu.Unlock()
	s.notify(v, prev)
}

// applyState sets state without notification, merging upward through the
// projection chain.
func (s *Store) applyState(v any) {
	if s.parent == nil {
		s.mu.Lock()
		s.state = v
		s.mu.Unlock()
		return
	}
	s.parent.applyState(mergeStates(s.parent.State(), s.writeProj(v)))
}

// mergeStates overlays src onto dst. Map states merge shallowly by key;
// anything else is replaced wholesale.
func mergeStates(dst, src any) any {
	dm, dok := dst.(map[string]any)
	sm, sok := src.(map[string]any)
	if !dok || !sok {
		return src
	}
	out := make(map[string]any, len(dm)+len(sm))
	for k, v := range dm {
		out[k] = v
	}
	for k, v := range sm {
		out[k] = v
	}
	return out
}

// Subscribe registers a state-change listener and returns its remove
// function. Remove is a no-op once the registration is gone, including
// after Unsubscribe cleared the whole list.
func (s *Store) Subscribe(fn func(newState, prevState any)) func() {
	s.subMu.Lock()
	s.subSeq++
	id := s.subSeq
	s.stateSubs = append(s.stateSubs, stateSub{id: id, fn: fn})
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		for i, sub := range s.stateSubs {
			if sub.id == id {
				s.stateSubs = append(s.stateSubs[:i], s.stateSubs[i+1:]...)
				break
			}
		}
		s.subMu.Unlock()
	}
}

// SubscribeLifecycle registers a listener for async action phase
// transitions and returns its remove function.
func (s *Store) SubscribeLifecycle(fn func(actionType string, phase Phase)) func() {
	s.subMu.Lock()
	s.subSeq++
	id := s.subSeq
	s.lifecycleSubs = append(s.lifecycleSubs, lifecycleSub{id: id, fn: fn})
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		for i, sub := range s.lifecycleSubs {
			if sub.id == id {
				s.lifecycleSubs = append(s.lifecycleSubs[:i], s.lifecycleSubs[i+1:]...)
				break
			}
		}
		s.subMu.Unlock()
	}
}

// Unsubscribe clears every subscriber list on this store and, depth
// first, on every attached child.
func (s *Store) Unsubscribe() {
	s.subMu.Lock()
	s.stateSubs = nil
	s.lifecycleSubs = nil
	children := make([]*Store, len(s.children))
	copy(children, s.children)
	s.subMu.Unlock()

	for _, child := range children {
		child.Unsubscribe()
	}
}

// notify fires state subscribers with (new, prev) and then recursively
// notifies children with their projected slices, parent before children.
// A child's previous-state argument is nil on the first transition.
func (s *Store) notify(newState, prevState any) {
	s.subMu.Lock()
	subs := make([]stateSub, len(s.stateSubs))
	copy(subs, s.stateSubs)
	children := make([]*Store, len(s.children))
	copy(children, s.children)
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.fn(newState, prevState)
	}
	for _, child := range children {
		var childPrev any
		if prevState != nil {
			childPrev = child.readProj(prevState)
		}
		child.notify(child.State(), childPrev)
	}
}

func (s *Store) notifyLifecycle(actionType string, phase Phase) {
	s.subMu.Lock()
	subs := make([]lifecycleSub, len(s.lifecycleSubs))
	copy(subs, s.lifecycleSubs)
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.fn(actionType, phase)
	}
}

// sinkError routes an action failure to the error sink, if any. Sink
// errors never replace or suppress the original failure.
func (s *Store) sinkError(err error, actionType string) {
	s.logger.Debug("action failed", "store", s.name, "type", actionType, "error", err)
	if s.sink != nil {
		s.sink.Handle(err, actionType)
	}
}
