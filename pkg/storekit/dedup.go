package storekit

import (
	"reflect"
	"sync"
)

// argCache remembers the last invocation's cache key for one action
// declaration. It gates payload execution: a call whose key is unchanged
// from the previous call is suppressed before any side effect runs.
type argCache struct {
	mu  sync.Mutex
	key any
	has bool
}

// check compares key against the stored key and reports whether the call
// should run. The stored key is updated on every run except the zero-arg
// case: two slice keys of length zero always allow the run without an
// update.
func (c *argCache) check(key any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.has {
		c.key, c.has = key, true
		return true
	}

	prev, prevSlice := asSlice(c.key)
	next, nextSlice := asSlice(key)

	if !prevSlice && !nextSlice {
		if identical(c.key, key) {
			return false
		}
		c.key = key
		return true
	}

	// Shape or length change always runs.
	if prevSlice != nextSlice || len(prev) != len(next) {
		c.key = key
		return true
	}

	if len(next) == 0 {
		return true
	}

	for i := range next {
		if !identical(prev[i], next[i]) {
			c.key = key
			return true
		}
	}
	return false
}

// asSlice normalizes array-shaped keys to []any.
func asSlice(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// identical is shallow identity: == for comparable values, referenced
// storage for slices and maps. It never compares deep structure.
func identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch va.Kind() {
	case reflect.Slice:
		if va.Len() != vb.Len() {
			return false
		}
		if va.Len() == 0 {
			return true
		}
		return va.Pointer() == vb.Pointer()
	case reflect.Map, reflect.Func:
		return va.Pointer() == vb.Pointer()
	default:
		return false
	}
}
