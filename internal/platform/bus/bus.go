// Package bus is a typed, in-process publish/subscribe primitive with one
// Topic per event kind.
package bus

import "sync"

// Subscription detaches a handler from its topic. Unsubscribe is idempotent.
type Subscription struct {
	once   sync.Once
	detach func()
}

func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.detach != nil {
			s.detach()
		}
	})
}

type subscriber[T any] struct {
	id      uint64
	handler func(T)
}

// Topic fans a value out to its subscribers in subscription order. Publish
// runs handlers synchronously on the caller's goroutine, so a single
// publisher yields a strictly ordered stream for every subscriber.
type Topic[T any] struct {
	mu     sync.RWMutex
	nextID uint64
	subs   []subscriber[T]
}

func NewTopic[T any]() *Topic[T] {
	return &Topic[T]{}
}

func (t *Topic[T]) Subscribe(handler func(T)) *Subscription {
	t.mu.Lock()
	t.nextID++
	id := t.nextID
	t.subs = append(t.subs, subscriber[T]{id: id, handler: handler})
	t.mu.Unlock()
	return &Subscription{detach: func() { t.remove(id) }}
}

func (t *Topic[T]) Publish(value T) {
	t.mu.RLock()
	subs := t.subs
	t.mu.RUnlock()
	for _, sub := range subs {
		sub.handler(value)
	}
}

func (t *Topic[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.subs)
}

func (t *Topic[T]) remove(id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]subscriber[T], 0, len(t.subs))
	for _, sub := range t.subs {
		if sub.id != id {
			out = append(out, sub)
		}
	}
	t.subs = out
}
