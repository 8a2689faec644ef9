package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/flowboard/internal/domain"
	"github.com/gosuda/flowboard/internal/event"
)

const (
	SubscriberName = "notify"

	MentionMessage = "mentioned you in an update"
)

// UserLister returns every user that can be mentioned.
type UserLister interface {
	List(ctx context.Context) ([]*domain.User, error)
}

// Engine turns @mentions in item updates into mention notifications.
type Engine struct {
	users UserLister
	svc   *Service
}

func NewEngine(users UserLister, svc *Service) *Engine {
	return &Engine{users: users, svc: svc}
}

func (e *Engine) Subscribe(bus event.Subscriber) {
	bus.Subscribe(event.NameUpdateCreated, SubscriberName, e.Handle)
}

// Handle notifies every distinct user mentioned in an update, except its
// author.
func (e *Engine) Handle(ctx context.Context, ev event.Event) error {
	upd, ok := ev.(event.UpdateCreated)
	if !ok || upd.Content == "" {
		return nil
	}
	tokens := ExtractMentions(upd.Content)
	if len(tokens) == 0 {
		return nil
	}

	users, err := e.users.List(ctx)
	if err != nil {
		return fmt.Errorf("notify.Engine.Handle: list users: %w", err)
	}

	var actor *uuid.UUID
	if upd.UserID != uuid.Nil {
		id := upd.UserID
		actor = &id
	}
	var entityID *uuid.UUID
	if upd.ItemID != uuid.Nil {
		id := upd.ItemID
		entityID = &id
	}

	var errs []error
	for _, u := range MentionedUsers(tokens, users) {
		if u.ID == upd.UserID {
			continue
		}
		_, err := e.svc.Create(ctx, &domain.Notification{
			UserID:     u.ID,
			ActorID:    actor,
			Type:       domain.NotificationMention,
			Message:    MentionMessage,
			EntityType: "item",
			EntityID:   entityID,
		})
		if err != nil {
			log.Error().Err(err).
				Str("user_id", u.ID.String()).
				Msg("notify.Engine: create mention failed")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
