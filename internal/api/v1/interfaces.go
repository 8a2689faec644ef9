package v1

import (
	"context"

	"github.com/google/uuid"

	"github.com/gosuda/flowboard/internal/auth"
	"github.com/gosuda/flowboard/internal/automation"
	"github.com/gosuda/flowboard/internal/board"
	"github.com/gosuda/flowboard/internal/domain"
)

// AuthService abstracts authentication operations for handler testing.
// *auth.Service satisfies this interface.
type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, auth.Tokens, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
}

// BoardService is satisfied by *board.Service.
type BoardService interface {
	CreateWorkspace(ctx context.Context, name string, ownerID *uuid.UUID) (*domain.Workspace, error)
	UpdateWorkspace(ctx context.Context, id uuid.UUID, patch board.WorkspacePatch) (*domain.Workspace, error)
	CreateBoard(ctx context.Context, workspaceID uuid.UUID, name string, createdBy *uuid.UUID) (*domain.Board, error)
	ListBoards(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Board, error)
	GetBoard(ctx context.Context, id uuid.UUID) (*board.Detail, error)

	CreateColumn(ctx context.Context, boardID uuid.UUID, in board.ColumnInput) (*domain.Column, error)
	DeleteColumn(ctx context.Context, boardID, columnID uuid.UUID) error
	ReorderColumns(ctx context.Context, boardID uuid.UUID, columnIDs []uuid.UUID) ([]*domain.Column, error)
	CreateGroup(ctx context.Context, boardID uuid.UUID, name string, position *int) (*domain.Group, error)
	UpdateGroup(ctx context.Context, boardID, groupID uuid.UUID, patch board.GroupPatch) (*domain.Group, error)
	DeleteGroup(ctx context.Context, boardID, groupID uuid.UUID) error

	CreateItem(ctx context.Context, in board.CreateItemInput, userID uuid.UUID) (*domain.Item, error)
	GetItem(ctx context.Context, id uuid.UUID) (*domain.Item, error)
	ListItems(ctx context.Context, boardID uuid.UUID) ([]*domain.Item, error)
	ListColumnValues(ctx context.Context, itemID uuid.UUID) ([]*domain.ColumnValue, error)
	UpdateColumnValue(ctx context.Context, itemID, columnID uuid.UUID, value domain.Value, userID *uuid.UUID) (*domain.ColumnValue, error)
	UpdateItem(ctx context.Context, itemID uuid.UUID, patch board.ItemPatch, userID *uuid.UUID) (*domain.Item, error)
	ArchiveItem(ctx context.Context, itemID uuid.UUID, userID *uuid.UUID) (*domain.Item, error)
	DeleteItem(ctx context.Context, itemID uuid.UUID, userID *uuid.UUID) error

	CreateUpdate(ctx context.Context, itemID uuid.UUID, content string, userID uuid.UUID) (*domain.Update, error)
	ListUpdates(ctx context.Context, itemID uuid.UUID) ([]*domain.Update, error)
}

// AutomationService is satisfied by *automation.Service.
type AutomationService interface {
	Create(ctx context.Context, in automation.CreateInput) (*domain.Automation, error)
	ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.Automation, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*domain.Automation, error)
}

// ActivityService is satisfied by *activity.Logger.
type ActivityService interface {
	Logs(ctx context.Context, boardID uuid.UUID, limit int) ([]*domain.ActivityEntry, error)
	ItemLogs(ctx context.Context, itemID uuid.UUID, limit int) ([]*domain.ActivityEntry, error)
}

// AccountLogService is satisfied by *activity.AccountLogger.
type AccountLogService interface {
	Logs(ctx context.Context, limit int) ([]*domain.AccountLogEntry, error)
}

// NotificationService is satisfied by *notify.Service.
type NotificationService interface {
	Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error)
	List(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) (*domain.Notification, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}
