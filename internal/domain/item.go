package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Item struct {
	ID           uuid.UUID
	BoardID      uuid.UUID
	GroupID      uuid.UUID
	ParentItemID *uuid.UUID
	Name         string
	Position     int
	CreatedBy    uuid.UUID
	Description  string
	TaskType     *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ArchivedAt   *time.Time
}

// Archived reports whether the item has been archived.
func (i *Item) Archived() bool {
	return i.ArchivedAt != nil
}

type ColumnValue struct {
	ID        uuid.UUID
	ItemID    uuid.UUID
	ColumnID  uuid.UUID
	Value     Value
	UpdatedAt time.Time
}

type ItemRepository interface {
	Create(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*Item, error)
	ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*Item, error)
	CountByGroup(ctx context.Context, groupID uuid.UUID) (int, error)
	Update(ctx context.Context, item *Item) error
	SetArchived(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ColumnValueRepository interface {
	// Get returns ErrNotFound when no value was ever recorded for the pair.
	Get(ctx context.Context, itemID, columnID uuid.UUID) (*ColumnValue, error)
	Upsert(ctx context.Context, cv *ColumnValue) error
	ListByItem(ctx context.Context, itemID uuid.UUID) ([]*ColumnValue, error)
}

// Update is a comment posted on an item.
type Update struct {
	ID        uuid.UUID
	ItemID    uuid.UUID
	UserID    uuid.UUID
	Content   string
	CreatedAt time.Time
}

type UpdateRepository interface {
	Create(ctx context.Context, u *Update) error
	ListByItem(ctx context.Context, itemID uuid.UUID) ([]*Update, error)
}
