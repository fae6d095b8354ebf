// Package bus fans domain events out to in-process subscribers.
//
// Delivery is best effort: a subscriber whose buffer is full misses the event
// rather than stalling the publisher.
package bus

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aiknowledgehub/hub-server/internal/domain"
	"github.com/aiknowledgehub/hub-server/internal/id"
)

// Filter selects events for a subscriber. A nil Filter accepts everything.
type Filter func(domain.Event) bool

// Names returns a Filter accepting only the given event names.
func Names(names ...string) Filter {
	return func(e domain.Event) bool {
		for _, n := range names {
			if e.EventName() == n {
				return true
			}
		}
		return false
	}
}

// Subscription receives events until it is closed.
type Subscription struct {
	ID     string
	Events <-chan domain.Event

	ch     chan domain.Event
	filter Filter
	bus    *Bus
	once   sync.Once
}

// Close unsubscribes and closes Events.
func (s *Subscription) Close() {
	s.once.Do(func() { s.bus.remove(s) })
}

// Bus is an in-process event fan-out.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string]*Subscription
	closed bool
	logger *slog.Logger

	statsMu   sync.Mutex
	delivered int
	dropped   int
}

// New creates a bus.
func New(logger *slog.Logger) *Bus {
	return &Bus{subs: make(map[string]*Subscription), logger: logger}
}

// Subscribe registers a subscriber with the given buffer size.
func (b *Bus) Subscribe(buffer int, filter Filter) *Subscription {
	ch := make(chan domain.Event, buffer)
	sub := &Subscription{
		ID:     id.MustGenerate("sub"),
		Events: ch,
		ch:     ch,
		filter: filter,
		bus:    b,
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return sub
	}
	b.subs[sub.ID] = sub
	return sub
}

// Publish delivers events to every matching subscriber without blocking.
func (b *Bus) Publish(ctx context.Context, events ...domain.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil
	}

	var delivered, dropped int
	for _, e := range events {
		for _, sub := range b.subs {
			if sub.filter != nil && !sub.filter(e) {
				continue
			}
			select {
			case sub.ch <- e:
				delivered++
			default:
				dropped++
				b.logger.Warn("dropped event for slow subscriber",
					slog.String("subscription_id", sub.ID),
					slog.String("event", e.EventName()),
					slog.String("event_id", e.EventID()))
			}
		}
	}

	b.statsMu.Lock()
	b.delivered += delivered
	b.dropped += dropped
	b.statsMu.Unlock()
	return nil
}

// Stats returns delivered and dropped totals since the bus was created.
func (b *Bus) Stats() (delivered, dropped int) {
	b.statsMu.Lock()
	defer b.statsMu.Unlock()
	return b.delivered, b.dropped
}

// Close closes every subscription. Later publishes are ignored.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for key, sub := range b.subs {
		close(sub.ch)
		delete(b.subs, key)
	}
}

func (b *Bus) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub.ID]; ok {
		delete(b.subs, sub.ID)
		close(sub.ch)
	}
}
