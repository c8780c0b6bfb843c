// Package observable provides a push-based value holder with synchronous
// fan-out to subscribers.
package observable

import "sync"

// Subscription is the token returned by Subscribe. Calling Unsubscribe more
// than once is harmless.
type Subscription interface {
	Unsubscribe()
}

// Subject holds the latest published value and delivers every new value to
// its subscribers, in subscription order, before Publish returns.
//
// Deliveries are serialized: each subscriber observes publishes in the order
// they happened. A callback may unsubscribe itself or others, but it must not
// call Publish or Subscribe on the same subject.
type Subject[T any] struct {
	mu      sync.Mutex
	value   T
	nextID  uint64
	subs    []subscriber[T]
	deliver sync.Mutex
}

type subscriber[T any] struct {
	id uint64
	fn func(T)
}

type subscription[T any] struct {
	once    sync.Once
	subject *Subject[T]
	id      uint64
}

// NewSubject creates a subject holding initial.
func NewSubject[T any](initial T) *Subject[T] {
	return &Subject[T]{value: initial}
}

// Value returns the most recently published value.
func (s *Subject[T]) Value() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Subscribe registers fn and immediately delivers the current value to it.
func (s *Subject[T]) Subscribe(fn func(T)) Subscription {
	s.deliver.Lock()
	defer s.deliver.Unlock()

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber[T]{id: id, fn: fn})
	current := s.value
	s.mu.Unlock()

	fn(current)
	return &subscription[T]{subject: s, id: id}
}

// Publish stores v and delivers it to the current subscribers.
func (s *Subject[T]) Publish(v T) {
	s.deliver.Lock()
	defer s.deliver.Unlock()

	s.mu.Lock()
	s.value = v
	subs := append([]subscriber[T](nil), s.subs...)
	s.mu.Unlock()

	for _, sub := range subs {
		if s.active(sub.id) {
			sub.fn(v)
		}
	}
}

// Len returns the number of active subscribers.
func (s *Subject[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *Subject[T]) active(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		if sub.id == id {
			return true
		}
	}
	return false
}

func (s *Subject[T]) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return
		}
	}
}

func (sub *subscription[T]) Unsubscribe() {
	sub.once.Do(func() { sub.subject.remove(sub.id) })
}

// Map subscribes to src and feeds fn(value) to sink. It returns the
// subscription to src.
func Map[T, U any](src *Subject[T], fn func(T) U, sink func(U)) Subscription {
	return src.Subscribe(func(v T) { sink(fn(v)) })
}
