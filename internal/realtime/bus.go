package realtime

import (
	"context"
	"sync"
)

// Bus carries change events from the data layer to subscribers.
type Bus interface {
	Publish(ctx context.Context, event ChangeEvent) error
	Subscribe(ctx context.Context) (<-chan ChangeEvent, error)
}

// MemoryBus is an in-process Bus used in development and tests.
type MemoryBus struct {
	mu   sync.Mutex
	subs map[chan ChangeEvent]struct{}
}

// NewMemoryBus creates an in-process change bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[chan ChangeEvent]struct{})}
}

// Publish delivers the event to every live subscriber. Slow subscribers drop
// events instead of blocking the publisher; the contract is payload-less
// pings, so a dropped duplicate is recovered by the next re-fetch.
func (b *MemoryBus) Publish(ctx context.Context, event ChangeEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

// Subscribe registers a subscriber channel torn down when ctx is cancelled.
func (b *MemoryBus) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	ch := make(chan ChangeEvent, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, ch)
		b.mu.Unlock()
		close(ch)
	}()

	return ch, nil
}

// SubscriberCount reports live subscriptions (used by tests and metrics).
func (b *MemoryBus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
