// Package redis mirrors broadcast traffic to Redis pub/sub so other
// deployments can consume the derived events without a websocket session.
package redis

import (
	"context"
	"encoding/json"

	"github.com/craftwatch/craftwatch/pkg/broadcast"
	"github.com/craftwatch/craftwatch/pkg/replication"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// mirrored is one broadcast message with its expanded topics, queued for
// asynchronous delivery.
type mirrored struct {
	msg    broadcast.Message
	topics []string
}

// Publisher is an optional broadcast.Mirror backed by Redis channels. One
// channel per topic, prefixed with "craftwatch:". Publish only enqueues;
// the supervisor runs delivery on its own goroutine, so a slow or down
// Redis never stalls the workers feeding the bus.
type Publisher struct {
	logger *zap.Logger
	client *redis.Client
	queue  *replication.Queue[mirrored]
}

// NewPublisher connects and verifies the Redis address.
func NewPublisher(ctx context.Context, logger *zap.Logger, addr string) (*Publisher, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Publisher{
		logger: logger,
		client: client,
		queue:  replication.NewQueue[mirrored](),
	}, nil
}

// Publish queues one message for its expanded topic channels without
// blocking. The mirror is best-effort by contract.
func (p *Publisher) Publish(msg broadcast.Message, topics []string) {
	if len(topics) == 0 {
		return
	}
	p.queue.Push(mirrored{msg: msg, topics: topics})
}

// Name identifies the mirror to the supervisor.
func (p *Publisher) Name() string { return "redis-mirror" }

// Run delivers queued messages until cancelled, then flushes what is left.
func (p *Publisher) Run(ctx context.Context) {
	for {
		m, ok := p.queue.Pop(ctx)
		if !ok {
			p.drainRemaining()
			return
		}
		p.deliver(ctx, m)
	}
}

func (p *Publisher) drainRemaining() {
	ctx := context.Background()
	for {
		m, ok := p.queue.TryPop()
		if !ok {
			return
		}
		p.deliver(ctx, m)
	}
}

// deliver mirrors one message to every topic channel. Errors are logged
// and swallowed.
func (p *Publisher) deliver(ctx context.Context, m mirrored) {
	payload, err := json.Marshal(m.msg)
	if err != nil {
		p.logger.Warn("mirror marshal failed", zap.String("variant", m.msg.Variant), zap.Error(err))
		return
	}
	for _, topic := range m.topics {
		if err := p.client.Publish(ctx, "craftwatch:"+topic, payload).Err(); err != nil {
			p.logger.Warn("mirror publish failed", zap.String("topic", topic), zap.Error(err))
		}
	}
}

// Close releases the Redis connection.
func (p *Publisher) Close() error { return p.client.Close() }
