package live

import "sync"

// Subscription is the handle returned by Publisher.Subscribe.
//
// Delivery and teardown share one mutex: a delivery in flight holds the
// lock for the duration of the callback, so Unsubscribe cannot return
// until it finishes, and once Unsubscribe has returned no callback can
// start. That is the "zero callbacks after unsubscribe" guarantee.
type Subscription struct {
	publisher *Publisher
	userID    string
	feed      Feed
	limit     int
	onChange  func(interface{})
	onError   func(error)

	mu     sync.Mutex
	closed bool
}

func (s *Subscription) deliver(snapshot interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.onChange(snapshot)
}

// fail ends the subscription with an error: onError fires once, then the
// subscription behaves as unsubscribed.
func (s *Subscription) fail(err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.onError != nil {
		s.onError(err)
	}
	s.mu.Unlock()

	s.publisher.remove(s)
}

// Unsubscribe is idempotent and safe to call concurrently with a pending
// delivery; the delivery is either completed before this returns or
// suppressed.
func (s *Subscription) Unsubscribe() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.publisher.remove(s)
}
