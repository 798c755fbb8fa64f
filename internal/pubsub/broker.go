package pubsub

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const defaultBufferSize = 64

// Broker is a generic pub/sub event broker. Any number of subscribers may
// receive events published by any number of publishers. Delivery is
// best-effort: a subscriber that stops draining its channel loses events
// rather than blocking the publisher.
type Broker[T any] struct {
	mu         sync.RWMutex
	subs       map[uint64]chan Event[T]
	nextID     uint64
	done       chan struct{}
	bufferSize int
	dropped    atomic.Uint64
}

// NewBroker creates a broker with the default per-subscriber buffer (64).
func NewBroker[T any]() *Broker[T] {
	return NewBrokerWithBuffer[T](defaultBufferSize)
}

// NewBrokerWithBuffer creates a broker with a custom per-subscriber buffer.
func NewBrokerWithBuffer[T any](size int) *Broker[T] {
	if size < 1 {
		size = 1
	}
	return &Broker[T]{
		subs:       make(map[uint64]chan Event[T]),
		done:       make(chan struct{}),
		bufferSize: size,
	}
}

// Subscribe registers a new subscriber. The returned channel is closed when
// ctx is cancelled or the broker shuts down. Subscribing to a closed broker
// yields an already-closed channel.
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	select {
	case <-b.done:
		ch := make(chan Event[T])
		close(ch)
		return ch
	default:
	}

	id := b.nextID
	b.nextID++
	sub := make(chan Event[T], b.bufferSize)
	b.subs[id] = sub

	go func() {
		select {
		case <-ctx.Done():
		case <-b.done:
			// Close already handled the channel.
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		select {
		case <-b.done:
			return
		default:
		}
		delete(b.subs, id)
		close(sub)
	}()

	return sub
}

// Publish delivers an event to every subscriber. Non-blocking: an event is
// dropped for any subscriber whose buffer is full.
func (b *Broker[T]) Publish(eventType EventType, payload T) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	select {
	case <-b.done:
		return
	default:
	}

	event := Event[T]{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	for _, sub := range b.subs {
		select {
		case sub <- event:
		default:
			b.dropped.Add(1)
		}
	}
}

// Close shuts down the broker and closes all subscriber channels.
// Safe to call more than once.
func (b *Broker[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	select {
	case <-b.done:
		return
	default:
	}

	close(b.done)
	for _, sub := range b.subs {
		close(sub)
	}
	b.subs = nil
}

// SubscriberCount returns the number of active subscribers.
func (b *Broker[T]) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Dropped returns the number of events discarded because a subscriber
// buffer was full.
func (b *Broker[T]) Dropped() uint64 {
	return b.dropped.Load()
}
