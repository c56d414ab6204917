// Package stream provides the conflated (single-slot, newest-wins) stream
// primitives that back live document subscriptions and presenter state.
package stream

import "sync"

// Conflated is an asynchronous stream with a buffer depth of one and
// overwrite-on-full semantics: if the consumer has not drained the previous
// value when a new one arrives, the pending value is replaced. Send never
// blocks, so a slow consumer cannot back up the producer.
type Conflated[T any] struct {
	mu     sync.Mutex
	ch     chan T
	err    error
	closed bool
}

// NewConflated returns an open conflated stream.
func NewConflated[T any]() *Conflated[T] {
	return &Conflated[T]{ch: make(chan T, 1)}
}

// Send offers a value, replacing any value the consumer has not taken yet.
// Sending on a terminated stream is a no-op.
func (c *Conflated[T]) Send(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case <-c.ch:
	default:
	}
	c.ch <- v
}

// Fail terminates the stream abnormally. The consumer sees the channel close
// after draining any pending value, then reads the error via Err. Only the
// first termination wins.
func (c *Conflated[T]) Fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.err = err
	c.closed = true
	close(c.ch)
}

// Close terminates the stream normally.
func (c *Conflated[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.ch)
}

// C is the receive side. It is closed on termination.
func (c *Conflated[T]) C() <-chan T {
	return c.ch
}

// Err reports the terminal error, if any. Meaningful once C is closed.
func (c *Conflated[T]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}
