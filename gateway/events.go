package gateway

import "sync"

// eventBroker fans auth events out to subscribers. Delivery is best-effort:
// a subscriber that stopped draining its buffer misses events rather than
// blocking the emitter.
type eventBroker struct {
	mu     sync.Mutex
	subs   map[chan AuthEvent]struct{}
	closed bool
}

func newEventBroker() *eventBroker {
	return &eventBroker{subs: make(map[chan AuthEvent]struct{})}
}

func (b *eventBroker) subscribe() <-chan AuthEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan AuthEvent, 8)
	if b.closed {
		close(ch)
		return ch
	}
	b.subs[ch] = struct{}{}
	return ch
}

func (b *eventBroker) publish(ev AuthEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (b *eventBroker) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
