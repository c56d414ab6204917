package stream

import "sync"

// Subscription couples a conflated stream with the teardown of the backend
// listener feeding it. Cancel detaches the listener so no callbacks leak
// into a consumer that has moved on; the stream closes shortly after.
type Subscription[T any] struct {
	*Conflated[T]

	once   sync.Once
	cancel func()
}

// NewSubscription wraps a stream with a cancel hook. cancel may be nil.
func NewSubscription[T any](c *Conflated[T], cancel func()) *Subscription[T] {
	return &Subscription[T]{Conflated: c, cancel: cancel}
}

// Cancel detaches the producer. Safe to call more than once.
func (s *Subscription[T]) Cancel() {
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
		s.Close()
	})
}
