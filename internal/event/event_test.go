package event_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/flowboard/internal/domain"
	"github.com/gosuda/flowboard/internal/event"
)

func TestItemRef(t *testing.T) {
	t.Parallel()

	itemID := uuid.New()
	updateID := uuid.New()

	tests := []struct {
		name   string
		ev     event.Event
		want   uuid.UUID
		wantOK bool
	}{
		{"item_id on value update", event.ColumnValueUpdated{ItemID: itemID}, itemID, true},
		{"id on item created", event.ItemCreated{ID: itemID}, itemID, true},
		{"item_id preferred over id", event.UpdateCreated{ID: updateID, ItemID: itemID}, itemID, true},
		{"falls back to id", event.UpdateCreated{ID: updateID}, updateID, true},
		{"missing ids", event.ColumnValueUpdated{}, uuid.Nil, false},
		{"unrelated event", event.UserRegistered{ID: itemID}, uuid.Nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := event.ItemRef(tt.ev)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestActor(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	assert.Equal(t, &userID, event.Actor(event.ItemArchived{UserID: &userID}))
	assert.Nil(t, event.Actor(event.ItemArchived{}))
	assert.Equal(t, &userID, event.Actor(event.UpdateCreated{UserID: userID}))
	assert.Nil(t, event.Actor(event.UpdateCreated{}))
}

func TestDecode(t *testing.T) {
	t.Parallel()

	itemID := uuid.New()
	boardID := uuid.New()
	colID := uuid.New()

	t.Run("column value update", func(t *testing.T) {
		t.Parallel()

		raw := json.RawMessage(`{"item_id":"` + itemID.String() + `","board_id":"` + boardID.String() +
			`","column_id":"` + colID.String() + `","value":"Done","is_new":true,"extra":1}`)

		ev, err := event.Decode(event.NameColumnValueUpdated, raw)
		require.NoError(t, err)

		cv, ok := ev.(event.ColumnValueUpdated)
		require.True(t, ok)
		assert.Equal(t, itemID, cv.ItemID)
		assert.Equal(t, boardID, cv.BoardID)
		assert.Equal(t, domain.String("Done"), cv.Value.Value)
		assert.True(t, cv.IsNew)
		assert.Nil(t, cv.UserID)
	})

	t.Run("column value update with id instead of item_id", func(t *testing.T) {
		t.Parallel()

		raw := json.RawMessage(`{"id":"` + itemID.String() + `","board_id":"` + boardID.String() +
			`","column_id":"` + colID.String() + `","value":null}`)

		ev, err := event.Decode(event.NameColumnValueUpdated, raw)
		require.NoError(t, err)

		cv, ok := ev.(event.ColumnValueUpdated)
		require.True(t, ok)
		assert.Equal(t, itemID, cv.ItemID)
		assert.Equal(t, domain.Null{}, cv.Value.Value)
	})

	t.Run("round trip keeps contract field names", func(t *testing.T) {
		t.Parallel()

		in := event.ItemCreated{ID: itemID, BoardID: boardID, GroupID: colID}
		raw, err := json.Marshal(in)
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"board_id"`)
		assert.Contains(t, string(raw), `"group_id"`)

		out, err := event.Decode(event.NameItemCreated, raw)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("unknown name", func(t *testing.T) {
		t.Parallel()

		_, err := event.Decode("item.teleported", json.RawMessage(`{}`))
		assert.ErrorIs(t, err, event.ErrUnknownEvent)
	})

	t.Run("malformed payload", func(t *testing.T) {
		t.Parallel()

		_, err := event.Decode(event.NameItemDeleted, json.RawMessage(`{"id":42}`))
		assert.ErrorIs(t, err, event.ErrMalformedPayload)
	})

	t.Run("empty payload decodes to zero event", func(t *testing.T) {
		t.Parallel()

		ev, err := event.Decode(event.NameItemDeleted, nil)
		require.NoError(t, err)
		assert.Equal(t, event.ItemDeleted{}, ev)
	})
}
