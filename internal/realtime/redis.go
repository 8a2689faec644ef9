package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/flowboard/internal/event"
	redisstore "github.com/gosuda/flowboard/internal/store/redis"
)

// Publisher publishes a payload on a channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// PatternSubscriber delivers messages from every channel matching patterns.
type PatternSubscriber interface {
	PSubscribe(ctx context.Context, patterns ...string) (<-chan redisstore.Message, func(), error)
}

// RedisBroadcaster sends room frames through Redis so that every process
// running a Bridge delivers them to its own clients.
type RedisBroadcaster struct {
	pub Publisher
}

func NewRedisBroadcaster(pub Publisher) *RedisBroadcaster {
	return &RedisBroadcaster{pub: pub}
}

func (b *RedisBroadcaster) Broadcast(ctx context.Context, room string, msg []byte) error {
	if err := b.pub.Publish(ctx, room, msg); err != nil {
		return fmt.Errorf("realtime.RedisBroadcaster.Broadcast: %w", err)
	}
	return nil
}

var errSubscriptionClosed = errors.New("realtime: subscription closed")

// Bridge feeds room frames received from Redis into a local Broadcaster,
// normally the process's Hub. Frames are decoded before delivery; unknown or
// malformed ones are logged and dropped.
type Bridge struct {
	sub   PatternSubscriber
	local Broadcaster

	initialRetry time.Duration
	maxRetry     time.Duration
}

// BridgeOption configures a Bridge.
type BridgeOption func(*Bridge)

// WithRetryInterval bounds the exponential delay between resubscribe
// attempts.
func WithRetryInterval(initial, maxInterval time.Duration) BridgeOption {
	return func(b *Bridge) {
		if initial > 0 {
			b.initialRetry = initial
		}
		if maxInterval >= b.initialRetry {
			b.maxRetry = maxInterval
		}
	}
}

func NewBridge(sub PatternSubscriber, local Broadcaster, opts ...BridgeOption) *Bridge {
	b := &Bridge{
		sub:          sub,
		local:        local,
		initialRetry: 500 * time.Millisecond,
		maxRetry:     30 * time.Second,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run forwards messages until ctx is done. A failed or dropped subscription
// is retried with exponential backoff.
func (b *Bridge) Run(ctx context.Context) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = b.initialRetry
	bo.MaxInterval = b.maxRetry
	bo.MaxElapsedTime = 0
	bo.Reset()

	for {
		err := b.forward(ctx, bo)
		if ctx.Err() != nil {
			return
		}

		wait := bo.NextBackOff()
		log.Warn().Err(err).Dur("retry_in", wait).Msg("realtime.Bridge: subscription lost")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// forward runs one subscription until it fails or ctx is done.
func (b *Bridge) forward(ctx context.Context, bo backoff.BackOff) error {
	messages, cleanup, err := b.sub.PSubscribe(ctx, redisstore.BoardPattern, redisstore.UserPattern)
	if err != nil {
		return fmt.Errorf("realtime.Bridge: subscribe: %w", err)
	}
	defer cleanup()

	bo.Reset()
	log.Info().Msg("realtime bridge subscribed")

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return errSubscriptionClosed
			}
			frame, err := decodeFrame(msg.Payload)
			if err != nil {
				log.Warn().Err(err).Str("room", msg.Channel).Msg("realtime.Bridge: dropping frame")
				continue
			}
			if err := b.local.Broadcast(ctx, msg.Channel, frame); err != nil {
				log.Warn().Err(err).Str("room", msg.Channel).Msg("realtime.Bridge: local broadcast failed")
			}
		}
	}
}

// decodeFrame validates a {event, data} frame from another process and
// re-encodes it in canonical form.
func decodeFrame(payload []byte) ([]byte, error) {
	var raw struct {
		Event event.Name      `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("realtime.decodeFrame: %w: %w", event.ErrMalformedPayload, err)
	}

	ev, err := event.Decode(raw.Event, raw.Data)
	if err != nil {
		return nil, fmt.Errorf("realtime.decodeFrame: %w", err)
	}
	return Encode(ev)
}
