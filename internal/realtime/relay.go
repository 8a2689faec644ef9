package realtime

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gosuda/flowboard/internal/event"
)

const SubscriberName = "realtime"

// Broadcaster pushes an encoded frame to every member of a room.
type Broadcaster interface {
	Broadcast(ctx context.Context, room string, msg []byte) error
}

// Relay forwards board events to board rooms and notifications to user
// rooms. Events without a target id are dropped.
type Relay struct {
	out Broadcaster
}

func NewRelay(out Broadcaster) *Relay {
	return &Relay{out: out}
}

// Events lists every event the relay forwards.
func Events() []event.Name {
	return []event.Name{
		event.NameItemCreated,
		event.NameColumnValueUpdated,
		event.NameItemUpdated,
		event.NameItemArchived,
		event.NameItemDeleted,
		event.NameUpdateCreated,
		event.NameNotificationCreated,
	}
}

func (r *Relay) Subscribe(bus event.Subscriber) {
	for _, name := range Events() {
		bus.Subscribe(name, SubscriberName, r.Handle)
	}
}

func (r *Relay) Handle(ctx context.Context, ev event.Event) error {
	room, ok := TargetRoom(ev)
	if !ok {
		return nil
	}

	msg, err := Encode(ev)
	if err != nil {
		return err
	}
	if err := r.out.Broadcast(ctx, room, msg); err != nil {
		return fmt.Errorf("realtime.Relay: broadcast %s to %s: %w", ev.EventName(), room, err)
	}
	return nil
}

// TargetRoom returns the room an event is forwarded to.
func TargetRoom(ev event.Event) (string, bool) {
	switch e := ev.(type) {
	case event.NotificationCreated:
		if e.UserID == uuid.Nil {
			return "", false
		}
		return UserRoom(e.UserID), true
	case event.BoardScoped:
		if e.Board() == uuid.Nil {
			return "", false
		}
		return BoardRoom(e.Board()), true
	default:
		return "", false
	}
}
