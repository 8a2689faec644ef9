package automation_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/flowboard/internal/automation"
	"github.com/gosuda/flowboard/internal/domain"
	"github.com/gosuda/flowboard/internal/event"
)

// ---------------------------------------------------------------------------
// Mock AutomationRepository
// ---------------------------------------------------------------------------

type mockAutomationRepo struct {
	createFunc      func(ctx context.Context, a *domain.Automation) error
	getByIDFunc     func(ctx context.Context, id uuid.UUID) (*domain.Automation, error)
	listByBoardFunc func(ctx context.Context, boardID uuid.UUID) ([]*domain.Automation, error)
	listActiveFunc  func(ctx context.Context, boardID uuid.UUID, trigger domain.Trigger) ([]*domain.Automation, error)
	setActiveFunc   func(ctx context.Context, id uuid.UUID, active bool) error
}

func (m *mockAutomationRepo) Create(ctx context.Context, a *domain.Automation) error {
	return m.createFunc(ctx, a)
}

func (m *mockAutomationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Automation, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockAutomationRepo) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.Automation, error) {
	return m.listByBoardFunc(ctx, boardID)
}

func (m *mockAutomationRepo) ListActive(ctx context.Context, boardID uuid.UUID, trigger domain.Trigger) ([]*domain.Automation, error) {
	return m.listActiveFunc(ctx, boardID, trigger)
}

func (m *mockAutomationRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return m.setActiveFunc(ctx, id, active)
}

// storedAutomations answers ListActive the way a store would: filtered by
// board, trigger and is_active, in insertion order.
func storedAutomations(all ...*domain.Automation) *mockAutomationRepo {
	return &mockAutomationRepo{
		listActiveFunc: func(_ context.Context, boardID uuid.UUID, trigger domain.Trigger) ([]*domain.Automation, error) {
			var out []*domain.Automation
			for _, a := range all {
				if a.BoardID == boardID && a.Trigger == trigger && a.IsActive {
					out = append(out, a)
				}
			}
			return out, nil
		},
	}
}

type mockArchiver struct {
	mu    sync.Mutex
	calls []uuid.UUID
	err   error
}

func (m *mockArchiver) ArchiveItem(_ context.Context, itemID uuid.UUID, userID *uuid.UUID) (*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, itemID)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Item{ID: itemID}, nil
}

func archiveWhenDone(boardID, columnID uuid.UUID) *domain.Automation {
	col := columnID
	return &domain.Automation{
		ID:      uuid.New(),
		BoardID: boardID,
		Trigger: domain.TriggerColumnValueChanged,
		Conditions: domain.Conditions{
			ColumnID: &col,
			Value:    &domain.ValueCondition{Op: domain.OpEquals, Expected: domain.String("Done")},
		},
		Action:   domain.ActionArchiveItem,
		IsActive: true,
	}
}

func valueUpdated(boardID, itemID, columnID uuid.UUID, v domain.Value) event.ColumnValueUpdated {
	return event.ColumnValueUpdated{
		ItemID:   itemID,
		BoardID:  boardID,
		ColumnID: columnID,
		Value:    domain.JSONValue{Value: v},
	}
}

func TestEngine_ArchivesOnMatchingValue(t *testing.T) {
	t.Parallel()

	boardID, itemID, colID := uuid.New(), uuid.New(), uuid.New()
	archiver := &mockArchiver{}
	engine := automation.NewEngine(storedAutomations(archiveWhenDone(boardID, colID)), archiver)

	err := engine.Handle(t.Context(), valueUpdated(boardID, itemID, colID, domain.String("Done")))
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{itemID}, archiver.calls)
}

func TestEngine_StrictValueMatch(t *testing.T) {
	t.Parallel()

	boardID, colID := uuid.New(), uuid.New()

	tests := []struct {
		name  string
		value domain.Value
	}{
		{"different case", domain.String("done")},
		{"trailing space", domain.String("Done ")},
		{"null", domain.Null{}},
		{"number", domain.Number(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			archiver := &mockArchiver{}
			engine := automation.NewEngine(storedAutomations(archiveWhenDone(boardID, colID)), archiver)

			require.NoError(t, engine.Handle(t.Context(), valueUpdated(boardID, uuid.New(), colID, tt.value)))
			assert.Empty(t, archiver.calls)
		})
	}
}

func TestEngine_ColumnMismatch(t *testing.T) {
	t.Parallel()

	boardID := uuid.New()
	archiver := &mockArchiver{}
	engine := automation.NewEngine(storedAutomations(archiveWhenDone(boardID, uuid.New())), archiver)

	require.NoError(t, engine.Handle(t.Context(), valueUpdated(boardID, uuid.New(), uuid.New(), domain.String("Done"))))
	assert.Empty(t, archiver.calls)
}

func TestEngine_ScopedToBoard(t *testing.T) {
	t.Parallel()

	boardA, boardB, colID, itemID := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	archiver := &mockArchiver{}

	var others []*domain.Automation
	for range 5 {
		others = append(others, archiveWhenDone(boardB, colID))
	}
	engine := automation.NewEngine(storedAutomations(append(others, archiveWhenDone(boardA, colID))...), archiver)

	require.NoError(t, engine.Handle(t.Context(), valueUpdated(boardA, itemID, colID, domain.String("Done"))))
	assert.Equal(t, []uuid.UUID{itemID}, archiver.calls)
}

func TestEngine_SkipsEventsWithoutBoard(t *testing.T) {
	t.Parallel()

	repo := &mockAutomationRepo{
		listActiveFunc: func(context.Context, uuid.UUID, domain.Trigger) ([]*domain.Automation, error) {
			t.Fatal("store must not be queried for an event without board")
			return nil, nil
		},
	}
	engine := automation.NewEngine(repo, &mockArchiver{})

	assert.NoError(t, engine.Handle(t.Context(), event.ColumnValueUpdated{ItemID: uuid.New()}))
}

func TestEngine_WildcardConditions(t *testing.T) {
	t.Parallel()

	boardID, itemID := uuid.New(), uuid.New()
	archiver := &mockArchiver{}
	engine := automation.NewEngine(storedAutomations(&domain.Automation{
		ID:       uuid.New(),
		BoardID:  boardID,
		Trigger:  domain.TriggerColumnValueChanged,
		Action:   domain.ActionArchiveItem,
		IsActive: true,
	}), archiver)

	require.NoError(t, engine.Handle(t.Context(), valueUpdated(boardID, itemID, uuid.New(), domain.Number(7))))
	assert.Equal(t, []uuid.UUID{itemID}, archiver.calls)
}

func TestEngine_ItemCreatedTrigger(t *testing.T) {
	t.Parallel()

	boardID, itemID := uuid.New(), uuid.New()
	col := uuid.New()
	archiver := &mockArchiver{}

	// Value conditions only apply to column_value_changed; item_created passes.
	engine := automation.NewEngine(storedAutomations(&domain.Automation{
		ID:         uuid.New(),
		BoardID:    boardID,
		Trigger:    domain.TriggerItemCreated,
		Conditions: domain.Conditions{ColumnID: &col},
		Action:     domain.ActionArchiveItem,
		IsActive:   true,
	}), archiver)

	require.NoError(t, engine.Handle(t.Context(), event.ItemCreated{ID: itemID, BoardID: boardID}))
	assert.Equal(t, []uuid.UUID{itemID}, archiver.calls)
}

func TestEngine_AllMatchingAutomationsRun(t *testing.T) {
	t.Parallel()

	boardID, itemID, colID := uuid.New(), uuid.New(), uuid.New()
	boom := errors.New("archive failed")

	var order []string
	first := archiveWhenDone(boardID, colID)
	first.Action = "first"
	second := archiveWhenDone(boardID, colID)
	second.Action = "second"
	unknown := archiveWhenDone(boardID, colID)
	unknown.Action = "send_email"
	third := archiveWhenDone(boardID, colID)
	third.Action = "third"

	engine := automation.NewEngine(storedAutomations(first, second, unknown, third), &mockArchiver{})
	engine.RegisterAction("first", func(context.Context, *domain.Automation, event.Event) error {
		order = append(order, "first")
		return boom
	})
	engine.RegisterAction("second", func(context.Context, *domain.Automation, event.Event) error {
		order = append(order, "second")
		panic("bad action")
	})
	engine.RegisterAction("third", func(context.Context, *domain.Automation, event.Event) error {
		order = append(order, "third")
		return nil
	})

	err := engine.Handle(t.Context(), valueUpdated(boardID, itemID, colID, domain.String("Done")))

	assert.Equal(t, []string{"first", "second", "third"}, order)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "panicked")
}

func TestEngine_StoreFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("pool closed")
	engine := automation.NewEngine(&mockAutomationRepo{
		listActiveFunc: func(context.Context, uuid.UUID, domain.Trigger) ([]*domain.Automation, error) {
			return nil, boom
		},
	}, &mockArchiver{})

	err := engine.Handle(t.Context(), event.ItemCreated{ID: uuid.New(), BoardID: uuid.New()})
	assert.ErrorIs(t, err, boom)
}

func TestEngine_IgnoresOtherEvents(t *testing.T) {
	t.Parallel()

	engine := automation.NewEngine(&mockAutomationRepo{}, &mockArchiver{})
	assert.NoError(t, engine.Handle(t.Context(), event.ItemArchived{ID: uuid.New(), BoardID: uuid.New()}))
}

func TestArchiveItemAction(t *testing.T) {
	t.Parallel()

	t.Run("prefers item_id", func(t *testing.T) {
		t.Parallel()

		itemID := uuid.New()
		archiver := &mockArchiver{}
		action := automation.ArchiveItemAction(archiver)

		err := action(t.Context(), &domain.Automation{}, event.UpdateCreated{ID: uuid.New(), ItemID: itemID})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{itemID}, archiver.calls)
	})

	t.Run("no item reference", func(t *testing.T) {
		t.Parallel()

		action := automation.ArchiveItemAction(&mockArchiver{})
		err := action(t.Context(), &domain.Automation{}, event.ColumnValueUpdated{})
		assert.ErrorIs(t, err, automation.ErrNoItemRef)
	})

	t.Run("archiver error", func(t *testing.T) {
		t.Parallel()

		action := automation.ArchiveItemAction(&mockArchiver{err: domain.ErrNotFound})
		err := action(t.Context(), &domain.Automation{}, event.ItemCreated{ID: uuid.New()})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestEngine_Subscribe(t *testing.T) {
	t.Parallel()

	bus := event.New(event.WithObserver(func(context.Context, event.Result) {}))
	automation.NewEngine(&mockAutomationRepo{}, &mockArchiver{}).Subscribe(bus)

	assert.Equal(t, []string{automation.SubscriberName}, bus.Subscribers(event.NameItemCreated))
	assert.Equal(t, []string{automation.SubscriberName}, bus.Subscribers(event.NameColumnValueUpdated))
	assert.Empty(t, bus.Subscribers(event.NameItemArchived))
}
