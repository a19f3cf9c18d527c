// Package watch implements a single-value broadcast channel where readers
// always observe the most recently published value.
package watch

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Changed once the channel is closed and drained.
var ErrClosed = errors.New("watch: channel closed")

// Channel holds the latest value and wakes receivers on every Send.
type Channel[T any] struct {
	mu      sync.RWMutex
	value   T
	version uint64
	notify  chan struct{}
	closed  bool
}

// New creates a channel seeded with initial.
func New[T any](initial T) *Channel[T] {
	return &Channel[T]{
		value:  initial,
		notify: make(chan struct{}),
	}
}

// Send replaces the value. Sends after Close are dropped.
func (c *Channel[T]) Send(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.value = v
	c.version++
	close(c.notify)
	c.notify = make(chan struct{})
}

// Borrow returns the current value.
func (c *Channel[T]) Borrow() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Close wakes all receivers. Further Changed calls return ErrClosed.
func (c *Channel[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.notify)
}

// Subscribe returns a receiver that has already seen the current value.
func (c *Channel[T]) Subscribe() *Receiver[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return &Receiver[T]{ch: c, seen: c.version}
}

// Receiver tracks which version a reader has observed.
type Receiver[T any] struct {
	ch   *Channel[T]
	seen uint64
}

// Borrow returns the current value and marks it seen.
func (r *Receiver[T]) Borrow() T {
	r.ch.mu.RLock()
	defer r.ch.mu.RUnlock()
	r.seen = r.ch.version
	return r.ch.value
}

// Changed blocks until a value newer than the last one seen is published.
func (r *Receiver[T]) Changed(ctx context.Context) error {
	for {
		r.ch.mu.RLock()
		version, notify, closed := r.ch.version, r.ch.notify, r.ch.closed
		r.ch.mu.RUnlock()

		if version != r.seen {
			r.seen = version
			return nil
		}
		if closed {
			return ErrClosed
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-notify:
		}
	}
}
