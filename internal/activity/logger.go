// Package activity projects board and account events into append-only audit
// logs.
package activity

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/flowboard/internal/domain"
	"github.com/gosuda/flowboard/internal/event"
)

const (
	DefaultLimit = 50

	SubscriberName = "activity"
)

// Board activity actions.
const (
	ActionCreateItem        = "create_item"
	ActionUpdateValue       = "update_value"
	ActionArchiveItem       = "archive_item"
	ActionDeleteItem        = "delete_item"
	ActionUpdateDescription = "update_description"
	ActionUpdateTaskType    = "update_task_type"
)

const entityItem = "item"

// Logger writes one activity entry per qualifying board event.
type Logger struct {
	repo domain.ActivityRepository
	now  func() time.Time
}

func NewLogger(repo domain.ActivityRepository) *Logger {
	return &Logger{repo: repo, now: time.Now}
}

// Subscribe registers the logger for every item event it projects.
func (l *Logger) Subscribe(bus event.Subscriber) {
	for _, name := range []event.Name{
		event.NameItemCreated,
		event.NameColumnValueUpdated,
		event.NameItemArchived,
		event.NameItemDeleted,
		event.NameItemUpdated,
	} {
		bus.Subscribe(name, SubscriberName, l.Handle)
	}
}

// Handle records the entries for ev. Events the logger does not project are
// ignored.
func (l *Logger) Handle(ctx context.Context, ev event.Event) error {
	switch e := ev.(type) {
	case event.ItemCreated:
		return l.record(ctx, l.itemEntry(e.BoardID, e.ID, e.CreatedBy, ActionCreateItem, map[string]any{
			"name": e.Name,
		}))

	case event.ColumnValueUpdated:
		return l.record(ctx, l.itemEntry(e.BoardID, e.ItemID, e.UserID, ActionUpdateValue, map[string]any{
			"column_id":      e.ColumnID.String(),
			"value":          domain.ValueToAny(e.Value.Value),
			"previous_value": domain.ValueToAny(e.PreviousValue.Value),
			"is_new":         e.IsNew,
		}))

	case event.ItemArchived:
		return l.record(ctx, l.itemEntry(e.BoardID, e.ID, e.UserID, ActionArchiveItem, map[string]any{}))

	case event.ItemDeleted:
		return l.record(ctx, l.itemEntry(e.BoardID, e.ID, e.UserID, ActionDeleteItem, map[string]any{}))

	case event.ItemUpdated:
		fields := make([]string, 0, len(e.Changes))
		for field := range e.Changes {
			fields = append(fields, field)
		}
		sort.Strings(fields)

		// One row per field; a failed row does not stop the rest.
		var errs []error
		for _, field := range fields {
			change := e.Changes[field]
			entry := l.itemEntry(e.BoardID, e.ID, e.UserID, FieldAction(field), map[string]any{
				"field":    field,
				"previous": change.Previous,
				"current":  change.Current,
			})
			if err := l.record(ctx, entry); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
	return nil
}

// FieldAction names the action logged for a change to an item field.
func FieldAction(field string) string {
	switch field {
	case "description":
		return ActionUpdateDescription
	case "task_type":
		return ActionUpdateTaskType
	default:
		return "update_" + field
	}
}

// Logs returns the newest entries of a board. limit <= 0 means DefaultLimit.
func (l *Logger) Logs(ctx context.Context, boardID uuid.UUID, limit int) ([]*domain.ActivityEntry, error) {
	entries, err := l.repo.ListByBoard(ctx, boardID, normalizeLimit(limit, DefaultLimit))
	if err != nil {
		return nil, fmt.Errorf("activity.Logger.Logs: %w", err)
	}
	return entries, nil
}

// ItemLogs returns the newest entries of an item. limit <= 0 means DefaultLimit.
func (l *Logger) ItemLogs(ctx context.Context, itemID uuid.UUID, limit int) ([]*domain.ActivityEntry, error) {
	entries, err := l.repo.ListByItem(ctx, itemID, normalizeLimit(limit, DefaultLimit))
	if err != nil {
		return nil, fmt.Errorf("activity.Logger.ItemLogs: %w", err)
	}
	return entries, nil
}

func (l *Logger) itemEntry(boardID, itemID uuid.UUID, actor *uuid.UUID, action string, details map[string]any) *domain.ActivityEntry {
	id := itemID
	return &domain.ActivityEntry{
		ID:         uuid.New(),
		BoardID:    boardID,
		ItemID:     &id,
		UserID:     actorString(actor),
		Action:     action,
		EntityType: entityItem,
		EntityID:   itemID,
		Details:    details,
		CreatedAt:  l.now(),
	}
}

func (l *Logger) record(ctx context.Context, entry *domain.ActivityEntry) error {
	if err := l.repo.Record(ctx, entry); err != nil {
		return fmt.Errorf("activity.Logger: record %s for %s: %w", entry.Action, entry.EntityID, err)
	}
	return nil
}

func actorString(actor *uuid.UUID) string {
	if actor == nil || *actor == uuid.Nil {
		return domain.SystemActor
	}
	return actor.String()
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	return limit
}
