package achievements

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Memo caches the result of an expensive load for a fixed time. Concurrent
// misses share one load.
type Memo[T any] struct {
	ttl  time.Duration
	load func(ctx context.Context) (T, error)
	now  func() time.Time

	flight singleflight.Group

	mu      sync.Mutex
	value   T
	expires time.Time
	valid   bool
}

// NewMemo creates a memo that reloads after ttl.
func NewMemo[T any](ttl time.Duration, load func(ctx context.Context) (T, error)) *Memo[T] {
	return &Memo[T]{ttl: ttl, load: load, now: time.Now}
}

// Get returns the cached value, loading it when missing or expired.
// Failed loads are not cached.
func (m *Memo[T]) Get(ctx context.Context) (T, error) {
	m.mu.Lock()
	if m.valid && m.now().Before(m.expires) {
		v := m.value
		m.mu.Unlock()
		return v, nil
	}
	m.mu.Unlock()

	// Waiters share the load, so one caller's cancellation must not fail it.
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := m.flight.Do("load", func() (any, error) {
		val, err := m.load(loadCtx)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.value, m.expires, m.valid = val, m.now().Add(m.ttl), true
		m.mu.Unlock()
		return val, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Invalidate drops the cached value.
func (m *Memo[T]) Invalidate() {
	m.mu.Lock()
	m.valid = false
	m.mu.Unlock()
}
