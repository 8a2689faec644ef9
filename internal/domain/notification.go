package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationMention    NotificationType = "mention"
	NotificationReply      NotificationType = "reply"
	NotificationAssignment NotificationType = "assignment"
	NotificationSystem     NotificationType = "system"
)

type Notification struct {
	ID         uuid.UUID
	UserID     uuid.UUID  // recipient
	ActorID    *uuid.UUID // nil for system notifications
	Type       NotificationType
	Message    string
	EntityType string // "item", "update", "board"; empty when unset
	EntityID   *uuid.UUID
	IsRead     bool
	CreatedAt  time.Time
}

type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}
