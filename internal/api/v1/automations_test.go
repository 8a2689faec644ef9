package v1_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/gosuda/flowboard/internal/api/v1"
	"github.com/gosuda/flowboard/internal/automation"
	"github.com/gosuda/flowboard/internal/domain"
)

func TestAutomationRoutes(t *testing.T) {
	t.Parallel()

	boardID := uuid.New()
	columnID := uuid.New()
	fixture := &domain.Automation{
		ID:      uuid.New(),
		BoardID: boardID,
		Trigger: domain.TriggerColumnValueChanged,
		Conditions: domain.Conditions{
			ColumnID: &columnID,
			Value:    &domain.ValueCondition{Op: domain.OpEquals, Expected: domain.String("Done")},
		},
		Action:       domain.ActionArchiveItem,
		ActionParams: map[string]any{},
		IsActive:     true,
		CreatedAt:    time.Now(),
	}

	t.Run("create", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterAutomationRoutes(api, &mockAutomationService{
			createFunc: func(_ context.Context, in automation.CreateInput) (*domain.Automation, error) {
				assert.Equal(t, boardID, in.BoardID)
				assert.Equal(t, "column_value_changed", in.Trigger)
				assert.Equal(t, "archive_item", in.Action)
				assert.JSONEq(t, fmt.Sprintf(`{"column_id":%q,"value":"Done"}`, columnID), string(in.Conditions))
				return fixture, nil
			},
		})

		resp := api.Post("/boards/"+boardID.String()+"/automations", map[string]any{
			"trigger":    "column_value_changed",
			"conditions": map[string]any{"column_id": columnID, "value": "Done"},
			"action":     "archive_item",
		})
		require.Equal(t, http.StatusCreated, resp.Code)

		var body struct {
			ID         uuid.UUID      `json:"id"`
			Conditions map[string]any `json:"conditions"`
			IsActive   bool           `json:"is_active"`
		}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, fixture.ID, body.ID)
		assert.True(t, body.IsActive)
		assert.Equal(t, columnID.String(), body.Conditions["column_id"])
		assert.Equal(t, "eq", body.Conditions["op"])
		assert.Equal(t, "Done", body.Conditions["value"])
	})

	t.Run("create_without_conditions", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterAutomationRoutes(api, &mockAutomationService{
			createFunc: func(_ context.Context, in automation.CreateInput) (*domain.Automation, error) {
				assert.Nil(t, in.Conditions)
				return &domain.Automation{ID: uuid.New(), BoardID: in.BoardID, Trigger: domain.TriggerItemCreated, Action: in.Action, IsActive: true}, nil
			},
		})

		resp := api.Post("/boards/"+boardID.String()+"/automations", map[string]any{
			"trigger": "item_created",
			"action":  "archive_item",
		})
		assert.Equal(t, http.StatusCreated, resp.Code)
	})

	t.Run("create_invalid_conditions", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterAutomationRoutes(api, &mockAutomationService{
			createFunc: func(context.Context, automation.CreateInput) (*domain.Automation, error) {
				return nil, fmt.Errorf("automation.Service.Create: %w", domain.ErrInvalidInput)
			},
		})

		resp := api.Post("/boards/"+boardID.String()+"/automations", map[string]any{
			"trigger":    "column_value_changed",
			"conditions": map[string]any{"op": "gt"},
			"action":     "archive_item",
		})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("list", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterAutomationRoutes(api, &mockAutomationService{
			listByBoardFunc: func(_ context.Context, id uuid.UUID) ([]*domain.Automation, error) {
				assert.Equal(t, boardID, id)
				return []*domain.Automation{fixture}, nil
			},
		})

		resp := api.Get("/boards/" + boardID.String() + "/automations")
		require.Equal(t, http.StatusOK, resp.Code)
		var list []map[string]any
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
		require.Len(t, list, 1)
		assert.Equal(t, "archive_item", list[0]["action"])
	})

	t.Run("set_active", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterAutomationRoutes(api, &mockAutomationService{
			setActiveFunc: func(_ context.Context, id uuid.UUID, active bool) (*domain.Automation, error) {
				assert.Equal(t, fixture.ID, id)
				assert.False(t, active)
				disabled := *fixture
				disabled.IsActive = false
				return &disabled, nil
			},
		})

		resp := api.Patch("/automations/"+fixture.ID.String(), map[string]any{"is_active": false})
		require.Equal(t, http.StatusOK, resp.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, false, body["is_active"])
	})

	t.Run("set_active_unknown", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterAutomationRoutes(api, &mockAutomationService{
			setActiveFunc: func(context.Context, uuid.UUID, bool) (*domain.Automation, error) {
				return nil, domain.ErrNotFound
			},
		})

		resp := api.Patch("/automations/"+uuid.New().String(), map[string]any{"is_active": true})
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}
