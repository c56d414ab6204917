package stream

import "sync"

// Value is an observable single-slot cell: the latest value wins and
// persists until explicitly replaced. Watchers receive updates through a
// conflated channel, so they only ever see the most recent state.
type Value[T any] struct {
	mu      sync.Mutex
	current T
	set     bool
	watch   *Conflated[T]
}

// NewValue returns an empty observable cell.
func NewValue[T any]() *Value[T] {
	return &Value[T]{watch: NewConflated[T]()}
}

// Set replaces the current value and notifies watchers.
func (v *Value[T]) Set(t T) {
	v.mu.Lock()
	v.current = t
	v.set = true
	v.mu.Unlock()
	v.watch.Send(t)
}

// Get returns the latest value and whether one has been set.
func (v *Value[T]) Get() (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current, v.set
}

// Watch is a conflated channel of updates.
func (v *Value[T]) Watch() <-chan T {
	return v.watch.C()
}
