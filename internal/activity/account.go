package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/flowboard/internal/domain"
	"github.com/gosuda/flowboard/internal/event"
)

const (
	DefaultAccountLimit = 100

	AccountSubscriberName = "account_log"
)

// Account activity actions.
const (
	ActionWorkspaceCreated = "workspace_created"
	ActionWorkspaceUpdated = "workspace_updated"
	ActionBoardCreated     = "board_created"
	ActionUserRegistered   = "user_registered"
	ActionUserLoggedIn     = "user_logged_in"
)

// AccountLogger keeps the account-level audit log of workspace, board and
// user lifecycle events.
type AccountLogger struct {
	repo domain.AccountLogRepository
	now  func() time.Time
}

func NewAccountLogger(repo domain.AccountLogRepository) *AccountLogger {
	return &AccountLogger{repo: repo, now: time.Now}
}

func (l *AccountLogger) Subscribe(bus event.Subscriber) {
	for _, name := range []event.Name{
		event.NameWorkspaceCreated,
		event.NameWorkspaceUpdated,
		event.NameBoardCreated,
		event.NameUserRegistered,
		event.NameUserLoggedIn,
	} {
		bus.Subscribe(name, AccountSubscriberName, l.Handle)
	}
}

func (l *AccountLogger) Handle(ctx context.Context, ev event.Event) error {
	var entry *domain.AccountLogEntry

	switch e := ev.(type) {
	case event.WorkspaceCreated:
		entry = l.entry(e.OwnerID, ActionWorkspaceCreated, "workspace", e.ID, map[string]any{
			"name": e.Name,
		})
	case event.WorkspaceUpdated:
		entry = l.entry(e.OwnerID, ActionWorkspaceUpdated, "workspace", e.ID, map[string]any{
			"name":      e.Name,
			"is_active": e.IsActive,
		})
	case event.BoardCreated:
		entry = l.entry(e.CreatedBy, ActionBoardCreated, "board", e.ID, map[string]any{
			"name":         e.Name,
			"workspace_id": e.WorkspaceID.String(),
		})
	case event.UserRegistered:
		entry = l.entry(&e.ID, ActionUserRegistered, "user", e.ID, map[string]any{
			"email": e.Email,
		})
	case event.UserLoggedIn:
		entry = l.entry(&e.ID, ActionUserLoggedIn, "user", e.ID, map[string]any{
			"email": e.Email,
		})
	default:
		return nil
	}

	if err := l.repo.Record(ctx, entry); err != nil {
		return fmt.Errorf("activity.AccountLogger: record %s: %w", entry.Action, err)
	}
	return nil
}

// Logs returns the newest account log entries. limit <= 0 means
// DefaultAccountLimit.
func (l *AccountLogger) Logs(ctx context.Context, limit int) ([]*domain.AccountLogEntry, error) {
	entries, err := l.repo.List(ctx, normalizeLimit(limit, DefaultAccountLimit))
	if err != nil {
		return nil, fmt.Errorf("activity.AccountLogger.Logs: %w", err)
	}
	return entries, nil
}

func (l *AccountLogger) entry(user *uuid.UUID, action, entityType string, entityID uuid.UUID, details map[string]any) *domain.AccountLogEntry {
	var userID *uuid.UUID
	if user != nil && *user != uuid.Nil {
		id := *user
		userID = &id
	}
	id := entityID
	return &domain.AccountLogEntry{
		ID:         uuid.New(),
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   &id,
		Details:    details,
		CreatedAt:  l.now(),
	}
}
