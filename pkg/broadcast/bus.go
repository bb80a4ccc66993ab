package broadcast

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Mirror republishes bus messages to an external system (Redis pub/sub).
// Implementations must not block.
type Mirror interface {
	Publish(msg Message, topics []string)
}

// Bus is a topic-indexed multi-producer / multi-consumer fanout. Publishing
// never blocks: when a subscriber's outbound queue is full, the message is
// dropped for that subscriber and the drop counter is incremented.
type Bus struct {
	logger   *zap.Logger
	capacity int

	mu   sync.RWMutex
	subs map[*Subscriber]struct{}

	mirror Mirror

	published atomic.Uint64
	dropped   atomic.Uint64
}

// NewBus creates a bus whose subscribers get bounded queues of the given
// capacity.
func NewBus(logger *zap.Logger, queueCapacity int) *Bus {
	if queueCapacity <= 0 {
		queueCapacity = 256
	}
	return &Bus{
		logger:   logger,
		capacity: queueCapacity,
		subs:     make(map[*Subscriber]struct{}),
	}
}

// SetMirror attaches an external republisher. Pass nil to detach.
func (b *Bus) SetMirror(m Mirror) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mirror = m
}

// Register creates a subscriber with an empty topic set.
func (b *Bus) Register() *Subscriber {
	s := &Subscriber{
		bus:    b,
		topics: make(map[string]bool),
		ch:     make(chan Message, b.capacity),
	}
	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()
	return s
}

// Publish fans a message out to every subscriber matching one of its topics.
// Delivery is best-effort per subscriber.
func (b *Bus) Publish(msg Message) {
	topics := msg.Topics()
	if len(topics) == 0 {
		return
	}
	b.published.Add(1)

	b.mu.RLock()
	mirror := b.mirror
	for s := range b.subs {
		if !s.matchesAny(topics) {
			continue
		}
		select {
		case s.ch <- msg:
		default:
			b.dropped.Add(1)
		}
	}
	b.mu.RUnlock()

	if mirror != nil {
		mirror.Publish(msg, topics)
	}
}

// Published returns the number of published messages.
func (b *Bus) Published() uint64 { return b.published.Load() }

// Dropped returns the number of per-subscriber drops due to full queues.
func (b *Bus) Dropped() uint64 { return b.dropped.Load() }

// Subscribers returns the current subscriber count.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *Bus) unregister(s *Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, s)
}

// Subscriber is one websocket client's end of the bus. The wildcard topic
// "*" matches every message.
type Subscriber struct {
	bus *Bus

	mu     sync.RWMutex
	topics map[string]bool

	ch     chan Message
	closed sync.Once
}

// Subscribe adds topics to the subscription set.
func (s *Subscriber) Subscribe(topics ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range topics {
		if t != "" {
			s.topics[t] = true
		}
	}
}

// Unsubscribe removes one topic.
func (s *Subscriber) Unsubscribe(topic string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.topics, topic)
}

// TopicList returns the currently subscribed topics.
func (s *Subscriber) TopicList() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.topics))
	for t := range s.topics {
		out = append(out, t)
	}
	return out
}

// C is the subscriber's receive channel.
func (s *Subscriber) C() <-chan Message { return s.ch }

// Close detaches the subscriber from the bus and closes its channel.
func (s *Subscriber) Close() {
	s.closed.Do(func() {
		s.bus.unregister(s)
		close(s.ch)
	})
}

func (s *Subscriber) matchesAny(topics []string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.topics["*"] {
		return true
	}
	for _, t := range topics {
		if s.topics[t] {
			return true
		}
	}
	return false
}
