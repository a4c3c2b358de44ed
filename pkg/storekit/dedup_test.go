package storekit

import "testing"

func TestArgCacheFirstCallRuns(t *testing.T) {
	var c argCache
	if !c.check([]any{1, 2}) {
		t.Error("first call must run")
	}
}

func TestArgCacheIdenticalArgsSuppressed(t *testing.T) {
	var c argCache
	c.check([]any{1, "a"})
	if c.check([]any{1, "a"}) {
		t.Error("identical args must be suppressed")
	}
	if !c.check([]any{1, "b"}) {
		t.Error("one differing element must run")
	}
	// The key was updated on the differing call.
	if c.check([]any{1, "b"}) {
		t.Error("repeat of the updated key must be suppressed")
	}
}

func TestArgCacheLengthMismatchRuns(t *testing.T) {
	var c argCache
	c.check([]any{1})
	if !c.check([]any{1, 2}) {
		t.Error("length change must run")
	}
}

func TestArgCacheEmptyArgsAlwaysRun(t *testing.T) {
	var c argCache
	c.check([]any{})
	if !c.check([]any{}) {
		t.Error("zero-arg calls must always run")
	}
	if !c.check([]any{}) {
		t.Error("zero-arg calls must always run on every repeat")
	}
}

func TestArgCacheScalarKey(t *testing.T) {
	var c argCache
	c.check(7)
	if c.check(7) {
		t.Error("identical scalar key must be suppressed")
	}
	if !c.check(8) {
		t.Error("changed scalar key must run")
	}
}

func TestArgCacheShallowIdentity(t *testing.T) {
	inner := []int{1, 2}
	other := []int{1, 2}

	var c argCache
	c.check([]any{inner})
	if c.check([]any{inner}) {
		t.Error("same slice identity must be suppressed")
	}
	if !c.check([]any{other}) {
		t.Error("equal-but-distinct slice must run: comparison is identity, not structure")
	}
}

func TestArgCacheShapeChangeRuns(t *testing.T) {
	var c argCache
	c.check(7)
	if !c.check([]any{7}) {
		t.Error("scalar-to-array key change must run")
	}
}

func TestIdentical(t *testing.T) {
	slice := []int{1}
	m := map[string]int{"a": 1}
	fn := func() {}

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"both nil", nil, nil, true},
		{"nil vs value", nil, 1, false},
		{"equal ints", 3, 3, true},
		{"unequal ints", 3, 4, false},
		{"type mismatch", 3, "3", false},
		{"same slice", slice, slice, true},
		{"distinct equal slices", []int{1}, []int{1}, false},
		{"same map", m, m, true},
		{"distinct maps", map[string]int{}, map[string]int{}, false},
		{"same func", fn, fn, true},
	}

	for _, tt := range tests {
		if got := identical(tt.a, tt.b); got != tt.want {
			t.Errorf("%s: identical = %v, want %v", tt.name, got, tt.want)
		}
	}
}
