package v1

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/flowboard/internal/automation"
	"github.com/gosuda/flowboard/internal/domain"
)

type ListAutomationsOutput struct {
	Body []*AutomationBody
}

type CreateAutomationInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
	Body    struct {
		Trigger      string         `json:"trigger" minLength:"1" doc:"item_created or column_value_changed"`
		Conditions   map[string]any `json:"conditions,omitempty" doc:"Optional {column_id, op, value} filter"`
		Action       string         `json:"action" minLength:"1" doc:"Action to run, e.g. archive_item"`
		ActionParams map[string]any `json:"action_params,omitempty" doc:"Action parameters"`
	}
}

type AutomationOutput struct {
	Body *AutomationBody
}

type SetAutomationActiveInput struct {
	ID   uuid.UUID `path:"id" doc:"Automation ID"`
	Body struct {
		IsActive bool `json:"is_active" doc:"Enable or disable the automation"`
	}
}

func RegisterAutomationRoutes(api huma.API, automations AutomationService) {
	huma.Register(api, huma.Operation{
		OperationID: "list-automations",
		Method:      http.MethodGet,
		Path:        "/boards/{boardID}/automations",
		Summary:     "List the automations of a board",
		Tags:        []string{"Automations"},
	}, func(ctx context.Context, input *BoardPathInput) (*ListAutomationsOutput, error) {
		list, err := automations.ListByBoard(ctx, input.BoardID)
		if err != nil {
			return nil, serviceError(err, "list automations")
		}

		out := &ListAutomationsOutput{Body: make([]*AutomationBody, 0, len(list))}
		for _, a := range list {
			body, err := toAutomationBody(a)
			if err != nil {
				return nil, huma.Error500InternalServerError("failed to encode automation", err)
			}
			out.Body = append(out.Body, body)
		}
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-automation",
		Method:        http.MethodPost,
		Path:          "/boards/{boardID}/automations",
		Summary:       "Create an automation",
		Tags:          []string{"Automations"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateAutomationInput) (*AutomationOutput, error) {
		var conditions json.RawMessage
		if input.Body.Conditions != nil {
			raw, err := json.Marshal(input.Body.Conditions)
			if err != nil {
				return nil, huma.Error400BadRequest("invalid conditions", err)
			}
			conditions = raw
		}

		a, err := automations.Create(ctx, automation.CreateInput{
			BoardID:      input.BoardID,
			Trigger:      input.Body.Trigger,
			Conditions:   conditions,
			Action:       input.Body.Action,
			ActionParams: input.Body.ActionParams,
		})
		if err != nil {
			return nil, serviceError(err, "create automation")
		}
		return automationOutput(a)
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-automation-active",
		Method:      http.MethodPatch,
		Path:        "/automations/{id}",
		Summary:     "Enable or disable an automation",
		Tags:        []string{"Automations"},
	}, func(ctx context.Context, input *SetAutomationActiveInput) (*AutomationOutput, error) {
		a, err := automations.SetActive(ctx, input.ID, input.Body.IsActive)
		if err != nil {
			return nil, serviceError(err, "update automation")
		}
		return automationOutput(a)
	})
}

func automationOutput(a *domain.Automation) (*AutomationOutput, error) {
	body, err := toAutomationBody(a)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to encode automation", err)
	}
	return &AutomationOutput{Body: body}, nil
}
