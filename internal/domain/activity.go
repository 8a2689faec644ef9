package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SystemActor is recorded as the actor of activity that no user triggered.
const SystemActor = "system"

// ActivityEntry is an immutable board audit record.
type ActivityEntry struct {
	ID         uuid.UUID
	BoardID    uuid.UUID
	ItemID     *uuid.UUID
	UserID     string // actor user id, or SystemActor
	Action     string // "create_item", "update_value", "archive_item", "delete_item", "update_<field>"
	EntityType string // "item", "group", "column"
	EntityID   uuid.UUID
	Details    map[string]any
	CreatedAt  time.Time
}

type ActivityRepository interface {
	Record(ctx context.Context, entry *ActivityEntry) error
	ListByBoard(ctx context.Context, boardID uuid.UUID, limit int) ([]*ActivityEntry, error)
	ListByItem(ctx context.Context, itemID uuid.UUID, limit int) ([]*ActivityEntry, error)
}

// AccountLogEntry is an account-level audit record (workspaces, boards, users).
type AccountLogEntry struct {
	ID         uuid.UUID
	UserID     *uuid.UUID
	Action     string
	EntityType string
	EntityID   *uuid.UUID
	Details    map[string]any
	CreatedAt  time.Time
}

type AccountLogRepository interface {
	Record(ctx context.Context, entry *AccountLogEntry) error
	List(ctx context.Context, limit int) ([]*AccountLogEntry, error)
}
