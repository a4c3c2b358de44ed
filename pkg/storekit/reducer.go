package storekit

// Reduce applies the store's composite reducer: its own handler table
// followed by every attached child's reducer, in registration order, each
// step folding over the previous step's output. Children receive the
// global state value, not a projected slice; their own projection wiring
// decides how to interpret it.
func (s *Store) Reduce(state any, act Action) any {
	s.subMu.Lock()
	reducers := make([]Reducer, len(s.reducers))
	copy(reducers, s.reducers)
	s.subMu.Unlock()

	for _, r := range reducers {
		state = r(state, act)
	}
	return state
}

// reduceSelf is the store's own slice of the composite reducer: ignore
// backend-internal types, strip the lifecycle suffix, and route to the
// matching handler. Unmatched types leave state unchanged.
func (s *Store) reduceSelf(state any, act Action) any {
	if IsReserved(act.Type) {
		return state
	}
	base, _ := SplitType(act.Type)
	h, ok := s.handlers[base]
	if !ok {
		return state
	}
	return h(state, act.Payload, act.Type)
}
