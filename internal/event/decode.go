package event

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrUnknownEvent is returned by Decode for names outside the known set.
	ErrUnknownEvent = errors.New("event: unknown event name") //nolint:gochecknoglobals // sentinel error

	// ErrMalformedPayload is returned by Decode when the payload does not fit
	// the event's shape.
	ErrMalformedPayload = errors.New("event: malformed payload") //nolint:gochecknoglobals // sentinel error
)

// Decode turns a name and raw JSON payload received at a process boundary
// into a typed Event. Unknown fields are ignored; wrong field types are not.
func Decode(name Name, raw json.RawMessage) (Event, error) {
	switch name {
	case NameItemCreated:
		return decodeAs[ItemCreated](name, raw)
	case NameColumnValueUpdated:
		return decodeAs[ColumnValueUpdated](name, raw)
	case NameItemUpdated:
		return decodeAs[ItemUpdated](name, raw)
	case NameItemArchived:
		return decodeAs[ItemArchived](name, raw)
	case NameItemDeleted:
		return decodeAs[ItemDeleted](name, raw)
	case NameUpdateCreated:
		return decodeAs[UpdateCreated](name, raw)
	case NameNotificationCreated:
		return decodeAs[NotificationCreated](name, raw)
	case NameWorkspaceCreated:
		return decodeAs[WorkspaceCreated](name, raw)
	case NameWorkspaceUpdated:
		return decodeAs[WorkspaceUpdated](name, raw)
	case NameBoardCreated:
		return decodeAs[BoardCreated](name, raw)
	case NameUserRegistered:
		return decodeAs[UserRegistered](name, raw)
	case NameUserLoggedIn:
		return decodeAs[UserLoggedIn](name, raw)
	default:
		return nil, fmt.Errorf("event.Decode(%q): %w", name, ErrUnknownEvent)
	}
}

func decodeAs[T Event](name Name, raw json.RawMessage) (Event, error) {
	var e T
	if len(bytes.TrimSpace(raw)) == 0 {
		return e, nil
	}
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("event.Decode(%q): %w: %w", name, ErrMalformedPayload, err)
	}
	return e, nil
}

// UnmarshalJSON accepts the item id under either item_id or id. Older
// producers send it as id.
func (e *ColumnValueUpdated) UnmarshalJSON(b []byte) error {
	type plain ColumnValueUpdated
	var aux struct {
		plain
		ID uuid.UUID `json:"id"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*e = ColumnValueUpdated(aux.plain)
	if e.ItemID == uuid.Nil {
		e.ItemID = aux.ID
	}
	return nil
}
