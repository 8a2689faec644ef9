package redis

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// PubSub carries realtime room messages between processes. Channel names are
// room keys.
type PubSub struct {
	client *redis.Client
}

func New(ctx context.Context, addr, password string, db int) (*PubSub, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis.New: ping: %w", err)
	}

	return &PubSub{client: client}, nil
}

func (ps *PubSub) Close() error {
	if err := ps.client.Close(); err != nil {
		return fmt.Errorf("redis.PubSub.Close: %w", err)
	}
	return nil
}

func (ps *PubSub) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := ps.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("redis.PubSub.Publish: %w", err)
	}
	return nil
}

// Message is a payload received on a pattern subscription together with the
// channel it was published on.
type Message struct {
	Channel string
	Payload []byte
}

// PSubscribe subscribes to every channel matching the given glob patterns.
func (ps *PubSub) PSubscribe(ctx context.Context, patterns ...string) (<-chan Message, func(), error) {
	sub := ps.client.PSubscribe(ctx, patterns...)

	// Wait for subscription confirmation.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("redis.PubSub.PSubscribe: receive confirmation: %w", err)
	}

	out := make(chan Message, 64)
	redisCh := sub.Channel()

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-redisCh:
				if !ok {
					return
				}
				select {
				case out <- Message{Channel: msg.Channel, Payload: []byte(msg.Payload)}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	cleanup := func() {
		_ = sub.Close()
	}

	return out, cleanup, nil
}

// Channel patterns covering every board and user channel.
const (
	BoardPattern = "board:*"
	UserPattern  = "user:*"
)

// BoardChannel returns the channel name for a board's realtime room.
func BoardChannel(boardID uuid.UUID) string {
	return "board:" + boardID.String()
}

// UserChannel returns the channel name for a user's personal room.
func UserChannel(userID uuid.UUID) string {
	return "user:" + userID.String()
}
