// Package event defines the typed domain events of a board and the
// in-process bus that fans them out to subscribers.
package event

import (
	"github.com/google/uuid"

	"github.com/gosuda/flowboard/internal/domain"
)

// Name identifies an event kind on the bus and on the realtime wire.
type Name string

const (
	NameItemCreated         Name = "item.created"
	NameColumnValueUpdated  Name = "column_value.updated"
	NameItemUpdated         Name = "item.updated"
	NameItemArchived        Name = "item.archived"
	NameItemDeleted         Name = "item.deleted"
	NameUpdateCreated       Name = "update.created"
	NameNotificationCreated Name = "notification.created"
	NameWorkspaceCreated    Name = "workspace.created"
	NameWorkspaceUpdated    Name = "workspace.updated"
	NameBoardCreated        Name = "board.created"
	NameUserRegistered      Name = "user.registered"
	NameUserLoggedIn        Name = "user.logged_in"
)

// Event is the sealed set of payloads the bus carries. Each payload type maps
// to exactly one Name.
type Event interface {
	EventName() Name
	sealed()
}

// ItemCreated is emitted after an item is persisted.
type ItemCreated struct {
	ID        uuid.UUID  `json:"id"`
	BoardID   uuid.UUID  `json:"board_id"`
	GroupID   uuid.UUID  `json:"group_id"`
	Name      string     `json:"name,omitempty"`
	Position  int        `json:"position"`
	CreatedBy *uuid.UUID `json:"created_by"`
}

// ColumnValueUpdated is emitted after a cell value write. IsNew is true only
// when no value had ever been recorded for the (item, column) pair.
type ColumnValueUpdated struct {
	ItemID        uuid.UUID        `json:"item_id"`
	ColumnID      uuid.UUID        `json:"column_id"`
	BoardID       uuid.UUID        `json:"board_id"`
	Value         domain.JSONValue `json:"value"`
	PreviousValue domain.JSONValue `json:"previous_value"`
	IsNew         bool             `json:"is_new"`
	UserID        *uuid.UUID       `json:"user_id"`
}

// FieldChange holds the before and after value of one item field.
type FieldChange struct {
	Previous any `json:"previous"`
	Current  any `json:"current"`
}

// ItemUpdated is emitted after an item field edit. Only changed fields are
// present in Changes.
type ItemUpdated struct {
	ID      uuid.UUID              `json:"id"`
	BoardID uuid.UUID              `json:"board_id"`
	Changes map[string]FieldChange `json:"changes"`
	UserID  *uuid.UUID             `json:"user_id"`
}

// ItemArchived is emitted by every archive, manual or automated.
type ItemArchived struct {
	ID         uuid.UUID  `json:"id"`
	BoardID    uuid.UUID  `json:"board_id"`
	ArchivedAt string     `json:"archived_at,omitempty"`
	UserID     *uuid.UUID `json:"user_id"`
}

// ItemDeleted is emitted after an item row is removed.
type ItemDeleted struct {
	ID      uuid.UUID  `json:"id"`
	BoardID uuid.UUID  `json:"board_id"`
	UserID  *uuid.UUID `json:"user_id"`
}

// UpdateCreated is emitted when a comment is posted on an item.
type UpdateCreated struct {
	ID      uuid.UUID `json:"id"`
	ItemID  uuid.UUID `json:"item_id"`
	BoardID uuid.UUID `json:"board_id"`
	Content string    `json:"content"`
	UserID  uuid.UUID `json:"user_id"`
}

// NotificationCreated is emitted once a notification row is stored.
type NotificationCreated struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	ActorID    *uuid.UUID `json:"actor_id"`
	Type       string     `json:"type"`
	Message    string     `json:"message"`
	EntityType string     `json:"entity_type,omitempty"`
	EntityID   *uuid.UUID `json:"entity_id,omitempty"`
	IsRead     bool       `json:"is_read"`
	CreatedAt  string     `json:"created_at,omitempty"`
}

type WorkspaceCreated struct {
	ID      uuid.UUID  `json:"id"`
	Name    string     `json:"name"`
	OwnerID *uuid.UUID `json:"owner_id"`
}

type WorkspaceUpdated struct {
	ID       uuid.UUID  `json:"id"`
	Name     string     `json:"name"`
	OwnerID  *uuid.UUID `json:"owner_id"`
	IsActive bool       `json:"is_active"`
}

type BoardCreated struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	WorkspaceID uuid.UUID  `json:"workspace_id"`
	CreatedBy   *uuid.UUID `json:"created_by"`
}

type UserRegistered struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

type UserLoggedIn struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

func (ItemCreated) EventName() Name         { return NameItemCreated }
func (ColumnValueUpdated) EventName() Name  { return NameColumnValueUpdated }
func (ItemUpdated) EventName() Name         { return NameItemUpdated }
func (ItemArchived) EventName() Name        { return NameItemArchived }
func (ItemDeleted) EventName() Name         { return NameItemDeleted }
func (UpdateCreated) EventName() Name       { return NameUpdateCreated }
func (NotificationCreated) EventName() Name { return NameNotificationCreated }
func (WorkspaceCreated) EventName() Name    { return NameWorkspaceCreated }
func (WorkspaceUpdated) EventName() Name    { return NameWorkspaceUpdated }
func (BoardCreated) EventName() Name        { return NameBoardCreated }
func (UserRegistered) EventName() Name      { return NameUserRegistered }
func (UserLoggedIn) EventName() Name        { return NameUserLoggedIn }

func (ItemCreated) sealed()         {}
func (ColumnValueUpdated) sealed()  {}
func (ItemUpdated) sealed()         {}
func (ItemArchived) sealed()        {}
func (ItemDeleted) sealed()         {}
func (UpdateCreated) sealed()       {}
func (NotificationCreated) sealed() {}
func (WorkspaceCreated) sealed()    {}
func (WorkspaceUpdated) sealed()    {}
func (BoardCreated) sealed()        {}
func (UserRegistered) sealed()      {}
func (UserLoggedIn) sealed()        {}

// BoardScoped is implemented by events that belong to a single board.
type BoardScoped interface {
	Event
	Board() uuid.UUID
}

func (e ItemCreated) Board() uuid.UUID        { return e.BoardID }
func (e ColumnValueUpdated) Board() uuid.UUID { return e.BoardID }
func (e ItemUpdated) Board() uuid.UUID        { return e.BoardID }
func (e ItemArchived) Board() uuid.UUID       { return e.BoardID }
func (e ItemDeleted) Board() uuid.UUID        { return e.BoardID }
func (e UpdateCreated) Board() uuid.UUID      { return e.BoardID }

// ItemRef resolves the item an event refers to. Producers disagree on the
// field: some carry item_id, others only id. item_id wins when both exist.
func ItemRef(e Event) (uuid.UUID, bool) {
	switch t := e.(type) {
	case ColumnValueUpdated:
		return firstNonNil(t.ItemID)
	case UpdateCreated:
		return firstNonNil(t.ItemID, t.ID)
	case ItemCreated:
		return firstNonNil(t.ID)
	case ItemUpdated:
		return firstNonNil(t.ID)
	case ItemArchived:
		return firstNonNil(t.ID)
	case ItemDeleted:
		return firstNonNil(t.ID)
	default:
		return uuid.Nil, false
	}
}

func firstNonNil(ids ...uuid.UUID) (uuid.UUID, bool) {
	for _, id := range ids {
		if id != uuid.Nil {
			return id, true
		}
	}
	return uuid.Nil, false
}

// Actor returns the user behind an event, or nil for system-originated events.
func Actor(e Event) *uuid.UUID {
	switch t := e.(type) {
	case ItemCreated:
		return t.CreatedBy
	case ColumnValueUpdated:
		return t.UserID
	case ItemUpdated:
		return t.UserID
	case ItemArchived:
		return t.UserID
	case ItemDeleted:
		return t.UserID
	case UpdateCreated:
		if t.UserID == uuid.Nil {
			return nil
		}
		id := t.UserID
		return &id
	default:
		return nil
	}
}
