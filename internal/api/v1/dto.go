package v1

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/flowboard/internal/board"
	"github.com/gosuda/flowboard/internal/domain"
)

// Response bodies. Domain types carry no JSON tags, so handlers convert at the
// edge.

type UserBody struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserBody(u *domain.User) *UserBody {
	return &UserBody{ID: u.ID, Email: u.Email, Name: u.Name, IsAdmin: u.IsAdmin, CreatedAt: u.CreatedAt}
}

type WorkspaceBody struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	OwnerID   *uuid.UUID `json:"owner_id"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func toWorkspaceBody(w *domain.Workspace) *WorkspaceBody {
	return &WorkspaceBody{
		ID:        w.ID,
		Name:      w.Name,
		OwnerID:   w.OwnerID,
		IsActive:  w.IsActive,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

type BoardBody struct {
	ID          uuid.UUID  `json:"id"`
	WorkspaceID uuid.UUID  `json:"workspace_id"`
	Name        string     `json:"name"`
	CreatedBy   *uuid.UUID `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toBoardBody(b *domain.Board) *BoardBody {
	return &BoardBody{ID: b.ID, WorkspaceID: b.WorkspaceID, Name: b.Name, CreatedBy: b.CreatedBy, CreatedAt: b.CreatedAt}
}

type ColumnBody struct {
	ID        uuid.UUID      `json:"id"`
	BoardID   uuid.UUID      `json:"board_id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Settings  map[string]any `json:"settings"`
	Position  int            `json:"position"`
	CreatedAt time.Time      `json:"created_at"`
}

func toColumnBody(c *domain.Column) *ColumnBody {
	return &ColumnBody{
		ID:        c.ID,
		BoardID:   c.BoardID,
		Type:      string(c.Type),
		Title:     c.Title,
		Settings:  c.Settings,
		Position:  c.Position,
		CreatedAt: c.CreatedAt,
	}
}

type GroupBody struct {
	ID       uuid.UUID `json:"id"`
	BoardID  uuid.UUID `json:"board_id"`
	Name     string    `json:"name"`
	Position int       `json:"position"`
}

func toGroupBody(g *domain.Group) *GroupBody {
	return &GroupBody{ID: g.ID, BoardID: g.BoardID, Name: g.Name, Position: g.Position}
}

// BoardDetailBody is a board with its layout.
type BoardDetailBody struct {
	BoardBody
	Columns []*ColumnBody `json:"columns"`
	Groups  []*GroupBody  `json:"groups"`
}

func toBoardDetailBody(d *board.Detail) *BoardDetailBody {
	return &BoardDetailBody{
		BoardBody: *toBoardBody(d.Board),
		Columns:   mapSlice(d.Columns, toColumnBody),
		Groups:    mapSlice(d.Groups, toGroupBody),
	}
}

type ItemBody struct {
	ID           uuid.UUID          `json:"id"`
	BoardID      uuid.UUID          `json:"board_id"`
	GroupID      uuid.UUID          `json:"group_id"`
	ParentItemID *uuid.UUID         `json:"parent_item_id"`
	Name         string             `json:"name"`
	Position     int                `json:"position"`
	CreatedBy    uuid.UUID          `json:"created_by"`
	Description  string             `json:"description"`
	TaskType     *string            `json:"task_type"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
	ArchivedAt   *time.Time         `json:"archived_at"`
	Values       []*ColumnValueBody `json:"values,omitempty"`
}

func toItemBody(it *domain.Item) *ItemBody {
	return &ItemBody{
		ID:           it.ID,
		BoardID:      it.BoardID,
		GroupID:      it.GroupID,
		ParentItemID: it.ParentItemID,
		Name:         it.Name,
		Position:     it.Position,
		CreatedBy:    it.CreatedBy,
		Description:  it.Description,
		TaskType:     it.TaskType,
		CreatedAt:    it.CreatedAt,
		UpdatedAt:    it.UpdatedAt,
		ArchivedAt:   it.ArchivedAt,
	}
}

type ColumnValueBody struct {
	ID        uuid.UUID `json:"id"`
	ItemID    uuid.UUID `json:"item_id"`
	ColumnID  uuid.UUID `json:"column_id"`
	Value     any       `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toColumnValueBody(cv *domain.ColumnValue) *ColumnValueBody {
	return &ColumnValueBody{
		ID:        cv.ID,
		ItemID:    cv.ItemID,
		ColumnID:  cv.ColumnID,
		Value:     domain.ValueToAny(cv.Value),
		UpdatedAt: cv.UpdatedAt,
	}
}

type UpdateBody struct {
	ID        uuid.UUID `json:"id"`
	ItemID    uuid.UUID `json:"item_id"`
	UserID    uuid.UUID `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func toUpdateBody(u *domain.Update) *UpdateBody {
	return &UpdateBody{ID: u.ID, ItemID: u.ItemID, UserID: u.UserID, Content: u.Content, CreatedAt: u.CreatedAt}
}

type AutomationBody struct {
	ID           uuid.UUID      `json:"id"`
	BoardID      uuid.UUID      `json:"board_id"`
	Trigger      string         `json:"trigger"`
	Conditions   map[string]any `json:"conditions"`
	Action       string         `json:"action"`
	ActionParams map[string]any `json:"action_params"`
	IsActive     bool           `json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
}

func toAutomationBody(a *domain.Automation) (*AutomationBody, error) {
	raw, err := json.Marshal(a.Conditions)
	if err != nil {
		return nil, err
	}
	conditions := map[string]any{}
	if err := json.Unmarshal(raw, &conditions); err != nil {
		return nil, err
	}

	return &AutomationBody{
		ID:           a.ID,
		BoardID:      a.BoardID,
		Trigger:      string(a.Trigger),
		Conditions:   conditions,
		Action:       a.Action,
		ActionParams: a.ActionParams,
		IsActive:     a.IsActive,
		CreatedAt:    a.CreatedAt,
	}, nil
}

type ActivityBody struct {
	ID         uuid.UUID      `json:"id"`
	BoardID    uuid.UUID      `json:"board_id"`
	ItemID     *uuid.UUID     `json:"item_id"`
	UserID     string         `json:"user_id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   uuid.UUID      `json:"entity_id"`
	Details    map[string]any `json:"details"`
	CreatedAt  time.Time      `json:"created_at"`
}

func toActivityBody(e *domain.ActivityEntry) *ActivityBody {
	return &ActivityBody{
		ID:         e.ID,
		BoardID:    e.BoardID,
		ItemID:     e.ItemID,
		UserID:     e.UserID,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Details:    e.Details,
		CreatedAt:  e.CreatedAt,
	}
}

type AccountLogBody struct {
	ID         uuid.UUID      `json:"id"`
	UserID     *uuid.UUID     `json:"user_id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   *uuid.UUID     `json:"entity_id"`
	Details    map[string]any `json:"details"`
	CreatedAt  time.Time      `json:"created_at"`
}

func toAccountLogBody(e *domain.AccountLogEntry) *AccountLogBody {
	return &AccountLogBody{
		ID:         e.ID,
		UserID:     e.UserID,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Details:    e.Details,
		CreatedAt:  e.CreatedAt,
	}
}

type NotificationBody struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	ActorID    *uuid.UUID `json:"actor_id"`
	Type       string     `json:"type"`
	Message    string     `json:"message"`
	EntityType string     `json:"entity_type,omitempty"`
	EntityID   *uuid.UUID `json:"entity_id,omitempty"`
	IsRead     bool       `json:"is_read"`
	CreatedAt  time.Time  `json:"created_at"`
}

func toNotificationBody(n *domain.Notification) *NotificationBody {
	return &NotificationBody{
		ID:         n.ID,
		UserID:     n.UserID,
		ActorID:    n.ActorID,
		Type:       string(n.Type),
		Message:    n.Message,
		EntityType: n.EntityType,
		EntityID:   n.EntityID,
		IsRead:     n.IsRead,
		CreatedAt:  n.CreatedAt,
	}
}

func mapSlice[T, U any](in []T, f func(T) U) []U {
	out := make([]U, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
