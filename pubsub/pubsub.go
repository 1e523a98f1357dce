// Package pubsub fans messages out to any number of buffered subscribers.
// A slow subscriber loses messages instead of stalling the publisher.
package pubsub

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var plog zerolog.Logger

func init() {
	plog = log.With().Str("component", "pubsub").Logger()
}

type SubscriptionID int64

type Pubsub[T any] struct {
	nextID      SubscriptionID
	subscribers map[SubscriptionID]chan T
	dropped     uint64
	closed      bool
	mu          sync.Mutex
}

func New[T any]() *Pubsub[T] {
	return &Pubsub[T]{
		subscribers: make(map[SubscriptionID]chan T),
	}
}

// Subscribe registers a subscriber whose channel holds up to buffer pending
// messages. Subscribing to a closed Pubsub returns an already closed channel.
func (ps *Pubsub[T]) Subscribe(buffer int) (SubscriptionID, <-chan T) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ch := make(chan T, buffer)
	id := ps.nextID
	ps.nextID++

	if ps.closed {
		close(ch)
		return id, ch
	}

	ps.subscribers[id] = ch
	return id, ch
}

func (ps *Pubsub[T]) Unsubscribe(id SubscriptionID) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ch, ok := ps.subscribers[id]
	if !ok {
		return
	}

	delete(ps.subscribers, id)
	close(ch)
}

// Publish hands msg to every subscriber with room for it.
func (ps *Pubsub[T]) Publish(msg T) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	for id, ch := range ps.subscribers {
		select {
		case ch <- msg:
		default:
			ps.dropped++
			plog.Debug().
				Int64("subscription_id", int64(id)).
				Msg("Message dropped, channel full")
		}
	}
}

// Close unsubscribes everyone. Later publishes are no-ops.
func (ps *Pubsub[T]) Close() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	for id, ch := range ps.subscribers {
		delete(ps.subscribers, id)
		close(ch)
	}
	ps.closed = true
}

func (ps *Pubsub[T]) Len() int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return len(ps.subscribers)
}

// Dropped counts messages that did not fit in a subscriber's buffer.
func (ps *Pubsub[T]) Dropped() uint64 {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.dropped
}
