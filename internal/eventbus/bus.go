package eventbus

import (
	"sync"

	"github.com/rs/zerolog"
)

// Event is a published message paired with its topic.
type Event struct {
	Topic   string
	Payload interface{}
}

// Bus is an in-process publish/subscribe hub. Each subscriber owns a bounded
// buffered channel; a publisher never blocks on a slow subscriber, instead
// the subscriber's oldest pending event is dropped to make room.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]*subscription
	bufferSize  int
	closed      bool
	logger      zerolog.Logger
}

type subscription struct {
	topic string
	ch    chan Event
}

// NewBus creates a bus whose subscriber channels buffer bufferSize events.
func NewBus(bufferSize int, log zerolog.Logger) *Bus {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &Bus{
		subscribers: make(map[string][]*subscription),
		bufferSize:  bufferSize,
		logger:      log.With().Str("component", "EventBus").Logger(),
	}
}

// Subscribe registers for a topic and returns the receive channel plus an
// unsubscribe function. The channel is closed on unsubscribe or bus close.
func (b *Bus) Subscribe(topic string) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &subscription{topic: topic, ch: make(chan Event, b.bufferSize)}
	if b.closed {
		close(sub.ch)
		return sub.ch, func() {}
	}
	b.subscribers[topic] = append(b.subscribers[topic], sub)

	var once sync.Once
	cancel := func() {
		once.Do(func() { b.unsubscribe(sub) })
	}
	return sub.ch, cancel
}

// Publish delivers the payload to every subscriber of the topic without
// blocking. If a subscriber's buffer is full its oldest event is discarded.
func (b *Bus) Publish(topic string, payload interface{}) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	evt := Event{Topic: topic, Payload: payload}
	for _, sub := range b.subscribers[topic] {
		select {
		case sub.ch <- evt:
		default:
			select {
			case <-sub.ch:
				b.logger.Warn().Str("topic", topic).Msg("Subscriber buffer full, dropped oldest event")
			default:
			}
			select {
			case sub.ch <- evt:
			default:
			}
		}
	}
}

// Close shuts the bus down. Subsequent publishes are no-ops and all
// subscriber channels are closed.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for _, subs := range b.subscribers {
		for _, sub := range subs {
			close(sub.ch)
		}
	}
	b.subscribers = make(map[string][]*subscription)
}

func (b *Bus) unsubscribe(target *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	subs := b.subscribers[target.topic]
	for i, sub := range subs {
		if sub == target {
			b.subscribers[target.topic] = append(subs[:i], subs[i+1:]...)
			close(sub.ch)
			return
		}
	}
}
