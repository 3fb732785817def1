package dispatch

import (
	"reflect"
	"sync"
)

// adapterCache publishes at most one adapter per concrete message type.
// Concurrent first callers for the same type share a single construction.
type adapterCache[A any] struct {
	entries sync.Map // reflect.Type -> *cacheEntry[A]
}

type cacheEntry[A any] struct {
	load func() (A, error)
}

func (c *adapterCache[A]) getOrBuild(t reflect.Type, build func() (A, error)) (A, error) {
	if e, ok := c.entries.Load(t); ok {
		return e.(*cacheEntry[A]).load()
	}

	fresh := &cacheEntry[A]{load: sync.OnceValues(build)}
	e, _ := c.entries.LoadOrStore(t, fresh)
	entry := e.(*cacheEntry[A])

	a, err := entry.load()
	if err != nil {
		// failed constructions are not published; a later call may succeed
		// once the missing registration exists
		c.entries.CompareAndDelete(t, entry)
	}

	return a, err
}

func (c *adapterCache[A]) len() int {
	n := 0

	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})

	return n
}
