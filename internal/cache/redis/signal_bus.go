package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/davidalvarezc/flipradar/internal/domain"
)

// SignalBus implements domain.SignalBus on Redis pub/sub. Payloads are
// JSON-encoded on publish and delivered raw to subscribers.
type SignalBus struct {
	rdb *redis.Client
}

// NewSignalBus creates a SignalBus backed by the given Client.
func NewSignalBus(c *Client) *SignalBus {
	return &SignalBus{rdb: c.Underlying()}
}

// Publish JSON-encodes payload and publishes it on channel.
func (sb *SignalBus) Publish(ctx context.Context, channel string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("redis: marshal signal for %s: %w", channel, err)
	}
	if err := sb.rdb.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("redis: publish signal to %s: %w", channel, err)
	}
	return nil
}

// Subscribe listens on the given channels and delivers messages until the
// context is cancelled or the returned stop function is called. The message
// channel is closed when the subscription ends.
func (sb *SignalBus) Subscribe(ctx context.Context, channels ...string) (<-chan domain.BusMessage, func(), error) {
	if len(channels) == 0 {
		return nil, nil, fmt.Errorf("redis: subscribe: no channels")
	}

	sub := sb.rdb.Subscribe(ctx, channels...)
	// Confirm the subscription before handing the channel to the caller.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("redis: subscribe %v: %w", channels, err)
	}

	out := make(chan domain.BusMessage, 128)
	done := make(chan struct{})

	go func() {
		defer close(out)
		src := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case msg, ok := <-src:
				if !ok {
					return
				}
				m := domain.BusMessage{Channel: msg.Channel, Payload: []byte(msg.Payload)}
				select {
				case out <- m:
				case <-ctx.Done():
					return
				case <-done:
					return
				}
			}
		}
	}()

	var stopped bool
	stop := func() {
		if stopped {
			return
		}
		stopped = true
		close(done)
		_ = sub.Close()
	}
	return out, stop, nil
}

// Compile-time interface check.
var _ domain.SignalBus = (*SignalBus)(nil)
