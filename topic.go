package operand

import (
	"context"
	"iter"
	"sync"
)

// Topic is an in-process broadcast channel for event payloads. A
// runtime pairs it with a Publication declaration: owners publish into
// the topic, and the runtime drains subscriptions into DispatchEvent.
//
// Topic represents current state rather than a durable stream:
// subscribers always receive the latest published value, and
// intermediate values may be skipped if a subscriber is slow.
// Safe for concurrent use.
type Topic[T any] struct {
	mu          sync.RWMutex
	last        T
	published   bool
	subscribers map[int64]chan T
	nextSubID   int64
}

// NewTopic creates an empty topic.
func NewTopic[T any]() *Topic[T] {
	return &Topic[T]{subscribers: make(map[int64]chan T)}
}

// Publish broadcasts a value to all subscribers with latest-wins
// semantics: a slow subscriber's pending value is replaced rather than
// blocking the publisher.
func (t *Topic[T]) Publish(v T) {
	t.mu.Lock()
	t.last = v
	t.published = true
	subs := make([]chan T, 0, len(t.subscribers))
	for _, ch := range t.subscribers {
		subs = append(subs, ch)
	}
	t.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- v:
		default:
			// Channel full: drop the stale value, then try once more.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- v:
			default:
			}
		}
	}
}

// Last returns the most recently published value, if any.
func (t *Topic[T]) Last() (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last, t.published
}

// Subscribe returns an iterator that yields the last published value
// (when one exists) followed by future publishes, until ctx is
// canceled or the consumer stops.
func (t *Topic[T]) Subscribe(ctx context.Context) iter.Seq[T] {
	return func(yield func(T) bool) {
		t.mu.RLock()
		last, published := t.last, t.published
		t.mu.RUnlock()

		if published && !yield(last) {
			return
		}

		ch := make(chan T, 1)
		id := t.addSubscriber(ch)
		defer t.removeSubscriber(id)

		for {
			select {
			case <-ctx.Done():
				return
			case v := <-ch:
				if !yield(v) {
					return
				}
			}
		}
	}
}

func (t *Topic[T]) addSubscriber(ch chan T) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextSubID
	t.nextSubID++
	t.subscribers[id] = ch
	return id
}

func (t *Topic[T]) removeSubscriber(id int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.subscribers, id)
}
