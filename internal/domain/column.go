package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ColumnType string

const (
	ColumnText    ColumnType = "text"
	ColumnStatus  ColumnType = "status"
	ColumnDate    ColumnType = "date"
	ColumnPerson  ColumnType = "person"
	ColumnNumbers ColumnType = "numbers"
	ColumnFiles   ColumnType = "files"
)

// Valid reports whether t is one of the known column types.
func (t ColumnType) Valid() bool {
	switch t {
	case ColumnText, ColumnStatus, ColumnDate, ColumnPerson, ColumnNumbers, ColumnFiles:
		return true
	}
	return false
}

// Column is a typed field of a board. Column values reference it by ID.
type Column struct {
	ID        uuid.UUID
	BoardID   uuid.UUID
	Type      ColumnType
	Title     string
	Settings  map[string]any
	Position  int
	CreatedAt time.Time
}

// Group is an ordered bucket of items on a board.
type Group struct {
	ID       uuid.UUID
	BoardID  uuid.UUID
	Name     string
	Position int
}

type ColumnRepository interface {
	Create(ctx context.Context, c *Column) error
	// GetByID returns ErrNotFound when the column does not exist on boardID.
	GetByID(ctx context.Context, boardID, id uuid.UUID) (*Column, error)
	ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*Column, error)
	CountByBoard(ctx context.Context, boardID uuid.UUID) (int, error)
	// Reorder sets each listed column's position to its index. IDs that do
	// not belong to boardID are ignored.
	Reorder(ctx context.Context, boardID uuid.UUID, ids []uuid.UUID) error
	// Delete removes the column together with its values.
	Delete(ctx context.Context, boardID, id uuid.UUID) error
}

type GroupRepository interface {
	Create(ctx context.Context, g *Group) error
	// GetByID returns ErrNotFound when the group does not exist on boardID.
	GetByID(ctx context.Context, boardID, id uuid.UUID) (*Group, error)
	ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*Group, error)
	CountByBoard(ctx context.Context, boardID uuid.UUID) (int, error)
	Update(ctx context.Context, g *Group) error
	Delete(ctx context.Context, boardID, id uuid.UUID) error
}
