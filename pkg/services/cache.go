package services

import (
	"context"
	"sync"
	"time"
)

// Collection holds the authoritative fetched set of one table.
//
// Every fetch takes a ticket. A result is stored only if its ticket is
// newer than both the stored one and the last Invalidate, so a slow
// response never overwrites fresher state. With a zero TTL nothing is
// stored and every Get fetches.
type Collection[T any] struct {
	mu       sync.Mutex
	items    []T
	fetched  time.Time
	loaded   bool
	issued   uint64 // last ticket handed out
	floor    uint64 // tickets at or below this are stale
	ttl      time.Duration
	now      func() time.Time
	fetchAll func(ctx context.Context) ([]T, error)
}

func NewCollection[T any](ttl time.Duration, fetch func(ctx context.Context) ([]T, error)) *Collection[T] {
	return &Collection[T]{ttl: ttl, now: time.Now, fetchAll: fetch}
}

// Get returns the cached set while it is fresh, otherwise fetches it.
// Callers must not modify the returned slice.
func (c *Collection[T]) Get(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	if c.loaded && c.now().Sub(c.fetched) < c.ttl {
		items := c.items
		c.mu.Unlock()
		return items, nil
	}
	c.issued++
	ticket := c.issued
	c.mu.Unlock()

	items, err := c.fetchAll(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ttl > 0 && ticket > c.floor {
		c.items = items
		c.fetched = c.now()
		c.loaded = true
		c.floor = ticket
	}
	return items, nil
}

// Invalidate drops the cached set and marks every in-flight fetch stale.
func (c *Collection[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.floor = c.issued
	c.loaded = false
	c.items = nil
}
