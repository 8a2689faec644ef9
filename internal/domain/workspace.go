package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Workspace struct {
	ID        uuid.UUID
	Name      string
	OwnerID   *uuid.UUID
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Board struct {
	ID          uuid.UUID
	WorkspaceID uuid.UUID
	Name        string
	CreatedBy   *uuid.UUID
	CreatedAt   time.Time
}

type WorkspaceRepository interface {
	Create(ctx context.Context, w *Workspace) error
	GetByID(ctx context.Context, id uuid.UUID) (*Workspace, error)
	Update(ctx context.Context, w *Workspace) error
}

type BoardRepository interface {
	Create(ctx context.Context, b *Board) error
	GetByID(ctx context.Context, id uuid.UUID) (*Board, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*Board, error)
}
