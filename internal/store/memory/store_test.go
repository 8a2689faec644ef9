package memory_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/flowboard/internal/domain"
	"github.com/gosuda/flowboard/internal/store/memory"
)

var _ domain.Store = (*memory.Store)(nil)

func TestItems(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	store := memory.New()
	items := store.Items()

	boardID, groupID := uuid.New(), uuid.New()
	first := &domain.Item{ID: uuid.New(), BoardID: boardID, GroupID: groupID, Name: "a"}
	second := &domain.Item{ID: uuid.New(), BoardID: boardID, GroupID: groupID, Name: "b", Position: 1}
	require.NoError(t, items.Create(ctx, first))
	require.NoError(t, items.Create(ctx, second))
	require.ErrorIs(t, items.Create(ctx, first), domain.ErrConflict)

	n, err := items.CountByGroup(ctx, groupID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	at := time.Now()
	require.NoError(t, items.SetArchived(ctx, first.ID, at))
	require.NoError(t, items.SetArchived(ctx, first.ID, at.Add(time.Second)))

	got, err := items.GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ArchivedAt)
	assert.True(t, got.ArchivedAt.Equal(at.Add(time.Second)))

	list, err := items.ListByBoard(ctx, boardID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, second.ID, list[0].ID)

	// Returned items are copies.
	list[0].Name = "mutated"
	again, err := items.GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "b", again.Name)

	require.NoError(t, items.Delete(ctx, second.ID))
	_, err = items.GetByID(ctx, second.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.ErrorIs(t, items.SetArchived(ctx, second.ID, at), domain.ErrNotFound)
}

func TestColumnValues(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	values := memory.New().ColumnValues()
	itemID, colID := uuid.New(), uuid.New()

	_, err := values.Get(ctx, itemID, colID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	firstID := uuid.New()
	require.NoError(t, values.Upsert(ctx, &domain.ColumnValue{ID: firstID, ItemID: itemID, ColumnID: colID, Value: domain.String("Working")}))

	second := &domain.ColumnValue{ID: uuid.New(), ItemID: itemID, ColumnID: colID, Value: domain.String("Done")}
	require.NoError(t, values.Upsert(ctx, second))
	assert.Equal(t, firstID, second.ID)

	got, err := values.Get(ctx, itemID, colID)
	require.NoError(t, err)
	assert.Equal(t, domain.String("Done"), got.Value)

	list, err := values.ListByItem(ctx, itemID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestColumns(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	store := memory.New()
	columns := store.Columns()
	boardID := uuid.New()

	status := &domain.Column{ID: uuid.New(), BoardID: boardID, Type: domain.ColumnStatus, Title: "Status", Position: 0,
		Settings: map[string]any{"options": []any{"Done"}}}
	date := &domain.Column{ID: uuid.New(), BoardID: boardID, Type: domain.ColumnDate, Title: "Date", Position: 1}
	require.NoError(t, columns.Create(ctx, status))
	require.NoError(t, columns.Create(ctx, date))

	_, err := columns.GetByID(ctx, uuid.New(), status.ID)
	require.ErrorIs(t, err, domain.ErrNotFound, "lookup is scoped to the board")

	require.NoError(t, columns.Reorder(ctx, boardID, []uuid.UUID{date.ID, status.ID, uuid.New()}))
	list, err := columns.ListByBoard(ctx, boardID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, date.ID, list[0].ID)

	itemID := uuid.New()
	require.NoError(t, store.ColumnValues().Upsert(ctx, &domain.ColumnValue{ID: uuid.New(), ItemID: itemID, ColumnID: status.ID, Value: domain.String("Done")}))
	require.NoError(t, columns.Delete(ctx, boardID, status.ID))
	_, err = store.ColumnValues().Get(ctx, itemID, status.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	n, err := columns.CountByBoard(ctx, boardID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestGroups(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	store := memory.New()
	groups := store.Groups()
	boardID := uuid.New()

	g := &domain.Group{ID: uuid.New(), BoardID: boardID, Name: "Group 1"}
	require.NoError(t, groups.Create(ctx, g))
	require.NoError(t, store.Items().Create(ctx, &domain.Item{ID: uuid.New(), BoardID: boardID, GroupID: g.ID, Name: "a"}))

	require.ErrorIs(t, groups.Delete(ctx, boardID, g.ID), domain.ErrConflict)
	require.ErrorIs(t, groups.Update(ctx, &domain.Group{ID: g.ID, BoardID: uuid.New(), Name: "x"}), domain.ErrNotFound)

	g.Name = "Renamed"
	require.NoError(t, groups.Update(ctx, g))
	got, err := groups.GetByID(ctx, boardID, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
}

func TestAutomations(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	repo := memory.New().Automations()
	boardID := uuid.New()

	mk := func(trigger domain.Trigger, active bool) *domain.Automation {
		a := &domain.Automation{ID: uuid.New(), BoardID: boardID, Trigger: trigger, Action: "archive_item", IsActive: active}
		require.NoError(t, repo.Create(ctx, a))
		return a
	}
	a1 := mk(domain.TriggerColumnValueChanged, true)
	mk(domain.TriggerItemCreated, true)
	a3 := mk(domain.TriggerColumnValueChanged, false)
	a4 := mk(domain.TriggerColumnValueChanged, true)
	require.NoError(t, repo.Create(ctx, &domain.Automation{ID: uuid.New(), BoardID: uuid.New(), Trigger: domain.TriggerColumnValueChanged, IsActive: true}))

	active, err := repo.ListActive(ctx, boardID, domain.TriggerColumnValueChanged)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, a1.ID, active[0].ID)
	assert.Equal(t, a4.ID, active[1].ID)

	require.NoError(t, repo.SetActive(ctx, a3.ID, true))
	require.NoError(t, repo.SetActive(ctx, a1.ID, false))
	active, err = repo.ListActive(ctx, boardID, domain.TriggerColumnValueChanged)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, a3.ID, active[0].ID)

	all, err := repo.ListByBoard(ctx, boardID)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	require.ErrorIs(t, repo.SetActive(ctx, uuid.New(), true), domain.ErrNotFound)
}

func TestActivity(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	repo := memory.New().Activity()
	boardID, itemID := uuid.New(), uuid.New()

	for i := range 5 {
		require.NoError(t, repo.Record(ctx, &domain.ActivityEntry{
			ID: uuid.New(), BoardID: boardID, ItemID: &itemID, Action: "update_value",
			Details: map[string]any{"n": i},
		}))
	}
	require.NoError(t, repo.Record(ctx, &domain.ActivityEntry{ID: uuid.New(), BoardID: uuid.New(), Action: "create_item"}))

	latest, err := repo.ListByBoard(ctx, boardID, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, 4, latest[0].Details["n"])
	assert.Equal(t, 3, latest[1].Details["n"])

	byItem, err := repo.ListByItem(ctx, itemID, 50)
	require.NoError(t, err)
	assert.Len(t, byItem, 5)
}

func TestNotifications(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	repo := memory.New().Notifications()
	userID := uuid.New()

	for range 3 {
		require.NoError(t, repo.Create(ctx, &domain.Notification{ID: uuid.New(), UserID: userID, Type: domain.NotificationMention}))
	}
	require.NoError(t, repo.Create(ctx, &domain.Notification{ID: uuid.New(), UserID: uuid.New()}))

	list, err := repo.ListByUser(ctx, userID, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)

	count, err := repo.CountUnread(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	require.NoError(t, repo.MarkRead(ctx, list[0].ID))
	count, err = repo.CountUnread(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, repo.MarkAllRead(ctx, userID))
	count, err = repo.CountUnread(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.ErrorIs(t, repo.MarkRead(ctx, uuid.New()), domain.ErrNotFound)
}

func TestUsers(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	repo := memory.New().Users()

	alice := &domain.User{ID: uuid.New(), Email: "alice@example.com", Name: "Alice"}
	require.NoError(t, repo.Create(ctx, alice))
	require.ErrorIs(t, repo.Create(ctx, &domain.User{ID: uuid.New(), Email: "ALICE@example.com"}), domain.ErrConflict)

	got, err := repo.GetByEmail(ctx, "Alice@Example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	_, err = repo.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, domain.ErrNotFound)
}
