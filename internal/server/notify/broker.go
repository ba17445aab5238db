// Package notify fans out change notifications to in-process subscribers.
//
// A notification carries only a topic such as "plants:<uid>"; subscribers
// re-read whatever they watch. Each subscription holds at most one pending
// signal, so bursts of changes coalesce into one wake-up.
package notify

import (
	"context"
	"errors"
	"sync"
)

// ErrUnavailable is returned by Subscribe while the broker cannot deliver
// notifications.
var ErrUnavailable = errors.New("change notifications unavailable")

type Broker interface {
	// Subscribe registers interest in topic until ctx is cancelled or the
	// subscription is closed.
	Subscribe(ctx context.Context, topic string) (*Subscription, error)
}

// Subscription delivers a signal on C after each change of its topic. C is
// closed when the subscription ends, either by Close, by cancellation or
// because the broker failed.
type Subscription struct {
	C <-chan struct{}

	c     chan struct{}
	topic string
	hub   *hub
	stop  func() bool
}

// Close ends the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.hub.remove(s)
	if s.stop != nil {
		s.stop()
	}
}

// hub is the subscriber registry shared by broker implementations.
type hub struct {
	mu        sync.Mutex
	subs      map[string]map[*Subscription]struct{}
	available bool
}

func newHub(available bool) *hub {
	return &hub{subs: make(map[string]map[*Subscription]struct{}), available: available}
}

func (h *hub) subscribe(ctx context.Context, topic string) (*Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := make(chan struct{}, 1)
	s := &Subscription{C: c, c: c, topic: topic, hub: h}

	h.mu.Lock()
	if !h.available {
		h.mu.Unlock()
		return nil, ErrUnavailable
	}
	set, ok := h.subs[topic]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[topic] = set
	}
	set[s] = struct{}{}
	h.mu.Unlock()

	s.stop = context.AfterFunc(ctx, func() { h.remove(s) })
	return s, nil
}

func (h *hub) remove(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[s.topic]
	if !ok {
		return
	}
	if _, ok := set[s]; !ok {
		return
	}
	delete(set, s)
	if len(set) == 0 {
		delete(h.subs, s.topic)
	}
	close(s.c)
}

func (h *hub) publish(topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for s := range h.subs[topic] {
		select {
		case s.c <- struct{}{}:
		default:
		}
	}
}

// setAvailable toggles availability. Going unavailable ends every current
// subscription.
func (h *hub) setAvailable(available bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.available = available
	if available {
		return
	}
	for topic, set := range h.subs {
		for s := range set {
			close(s.c)
		}
		delete(h.subs, topic)
	}
}

func (h *hub) count(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[topic])
}

// MemoryBroker is an in-process broker fed by explicit Publish calls.
type MemoryBroker struct {
	h *hub
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{h: newHub(true)}
}

func (b *MemoryBroker) Subscribe(ctx context.Context, topic string) (*Subscription, error) {
	return b.h.subscribe(ctx, topic)
}

func (b *MemoryBroker) Publish(topic string) { b.h.publish(topic) }

// Fail ends all subscriptions and refuses new ones.
func (b *MemoryBroker) Fail() { b.h.setAvailable(false) }

// Subscribers returns the number of live subscriptions on topic.
func (b *MemoryBroker) Subscribers(topic string) int { return b.h.count(topic) }
