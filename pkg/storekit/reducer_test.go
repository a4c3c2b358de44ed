package storekit

import "testing"

func TestReduceReservedTypeIgnored(t *testing.T) {
	s := newTestStore(t, counterDefinition())

	state := map[string]any{"count": 5}
	got := s.Reduce(state, Action{Type: "@@backend/INIT"})
	if got.(map[string]any)["count"] != 5 {
		t.Errorf("reserved type changed state: %v", got)
	}
}

func TestReduceUnmatchedTypeIdentity(t *testing.T) {
	s := newTestStore(t, counterDefinition())

	state := map[string]any{"count": 5}
	got := s.Reduce(state, Action{Type: "other/thing", Payload: 1})
	if got.(map[string]any)["count"] != 5 {
		t.Errorf("unmatched type changed state: %v", got)
	}
}

func TestReduceStripsLifecycleSuffix(t *testing.T) {
	s := newTestStore(t, Definition{
		Name: "profile",
		Handlers: map[string]HandlerSpec{
			"load": {Handle: func(state, payload any, rawType string) any {
				return rawType
			}},
		},
	})

	got := s.Reduce(nil, Action{Type: "profile/load_SUCCESS", Payload: 1})
	if got != "profile/load_SUCCESS" {
		t.Errorf("handler got rawType %v, want the suffixed type", got)
	}
}

func TestPhasedHandlerRouting(t *testing.T) {
	mark := func(tag string) Handler {
		return func(state, payload any, rawType string) any { return tag }
	}
	s := newTestStore(t, Definition{
		Name: "profile",
		Handlers: map[string]HandlerSpec{
			"load": {Start: mark("start"), Success: mark("success"), Error: mark("error")},
		},
	})

	tests := []struct {
		typ  string
		want any
	}{
		{"profile/load_START", "start"},
		{"profile/load_SUCCESS", "success"},
		{"profile/load_ERROR", "error"},
		{"profile/load", "unchanged"},
	}

	for _, tt := range tests {
		got := s.Reduce("unchanged", Action{Type: tt.typ})
		if got != tt.want {
			t.Errorf("Reduce(%q) = %v, want %v", tt.typ, got, tt.want)
		}
	}
}

func TestPhasedHandlerMissingPhaseIdentity(t *testing.T) {
	s := newTestStore(t, Definition{
		Name: "profile",
		Handlers: map[string]HandlerSpec{
			"load": {Success: func(state, payload any, rawType string) any { return "success" }},
		},
	})

	if got := s.Reduce("unchanged", Action{Type: "profile/load_START"}); got != "unchanged" {
		t.Errorf("missing sub-handler must leave state unchanged, got %v", got)
	}
}

func TestReduceFoldsChildrenInRegistrationOrder(t *testing.T) {
	parent := newTestStore(t, Definition{
		Name: "app",
		Handlers: map[string]HandlerSpec{
			"tag": {Handle: func(state, payload any, rawType string) any {
				return state.(string) + "p"
			}},
		},
	})
	for _, name := range []string{"one", "two"} {
		suffix := name[:1]
		child := newTestStore(t, Definition{
			Name: "app",
			Handlers: map[string]HandlerSpec{
				"tag": {Handle: func(state, payload any, rawType string) any {
					return state.(string) + suffix
				}},
			},
		})
		if err := parent.AddInnerStore(child); err != nil {
			t.Fatalf("AddInnerStore: %v", err)
		}
	}

	got := parent.Reduce("", Action{Type: "app/tag"})
	if got != "pot" {
		t.Errorf("fold produced %q, want %q (self, then children in order)", got, "pot")
	}
}
