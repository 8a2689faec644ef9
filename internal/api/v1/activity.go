package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
)

type ListActivityInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
	Limit   int       `query:"limit" minimum:"0" maximum:"500" doc:"Max entries; 0 means the default of 50"`
}

type ListItemActivityInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
	ItemID  uuid.UUID `path:"itemID" doc:"Item ID"`
	Limit   int       `query:"limit" minimum:"0" maximum:"500" doc:"Max entries; 0 means the default of 50"`
}

type ListActivityOutput struct {
	Body []*ActivityBody
}

type ListAccountLogsInput struct {
	Limit int `query:"limit" minimum:"0" maximum:"1000" doc:"Max entries; 0 means the default of 100"`
}

type ListAccountLogsOutput struct {
	Body []*AccountLogBody
}

func RegisterActivityRoutes(api huma.API, logs ActivityService) {
	huma.Register(api, huma.Operation{
		OperationID: "list-activity",
		Method:      http.MethodGet,
		Path:        "/boards/{boardID}/activity-logs",
		Summary:     "Board activity, newest first",
		Tags:        []string{"Activity"},
	}, func(ctx context.Context, input *ListActivityInput) (*ListActivityOutput, error) {
		entries, err := logs.Logs(ctx, input.BoardID, input.Limit)
		if err != nil {
			return nil, serviceError(err, "list activity")
		}
		return &ListActivityOutput{Body: mapSlice(entries, toActivityBody)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-item-activity",
		Method:      http.MethodGet,
		Path:        "/boards/{boardID}/activity-logs/items/{itemID}",
		Summary:     "Item activity, newest first",
		Tags:        []string{"Activity"},
	}, func(ctx context.Context, input *ListItemActivityInput) (*ListActivityOutput, error) {
		entries, err := logs.ItemLogs(ctx, input.ItemID, input.Limit)
		if err != nil {
			return nil, serviceError(err, "list item activity")
		}
		return &ListActivityOutput{Body: mapSlice(entries, toActivityBody)}, nil
	})
}

// RegisterAccountLogRoutes mounts the account audit trail. The caller mounts
// it behind admin-only middleware.
func RegisterAccountLogRoutes(api huma.API, logs AccountLogService) {
	huma.Register(api, huma.Operation{
		OperationID: "list-account-logs",
		Method:      http.MethodGet,
		Path:        "/account-logs",
		Summary:     "Account-level audit trail, newest first",
		Tags:        []string{"Activity"},
	}, func(ctx context.Context, input *ListAccountLogsInput) (*ListAccountLogsOutput, error) {
		entries, err := logs.Logs(ctx, input.Limit)
		if err != nil {
			return nil, serviceError(err, "list account logs")
		}
		return &ListAccountLogsOutput{Body: mapSlice(entries, toAccountLogBody)}, nil
	})
}
