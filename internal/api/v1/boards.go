package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/flowboard/internal/board"
	"github.com/gosuda/flowboard/internal/domain"
)

type BoardPathInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
}

type BoardDetailOutput struct {
	Body *BoardDetailBody
}

type CreateColumnInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
	Body    struct {
		Type     string         `json:"type" enum:"text,status,date,person,numbers,files" doc:"Column type"`
		Title    string         `json:"title" minLength:"1" maxLength:"255" doc:"Column title"`
		Settings map[string]any `json:"settings,omitempty" doc:"Type-specific settings, e.g. status options"`
		Position *int           `json:"position,omitempty" minimum:"0" doc:"Position; appended when omitted"`
	}
}

type ColumnOutput struct {
	Body *ColumnBody
}

type ColumnPathInput struct {
	BoardID  uuid.UUID `path:"boardID" doc:"Board ID"`
	ColumnID uuid.UUID `path:"columnID" doc:"Column ID"`
}

type ReorderColumnsInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
	Body    struct {
		ColumnIDs []uuid.UUID `json:"column_ids" doc:"Column IDs in their new order"`
	}
}

type ListColumnsOutput struct {
	Body []*ColumnBody
}

type CreateGroupInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
	Body    struct {
		Name     string `json:"name" minLength:"1" maxLength:"255" doc:"Group name"`
		Position *int   `json:"position,omitempty" minimum:"0" doc:"Position; appended when omitted"`
	}
}

type UpdateGroupInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
	GroupID uuid.UUID `path:"groupID" doc:"Group ID"`
	Body    struct {
		Name     *string `json:"name,omitempty" maxLength:"255" doc:"Group name"`
		Position *int    `json:"position,omitempty" minimum:"0" doc:"Group position"`
	}
}

type GroupPathInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
	GroupID uuid.UUID `path:"groupID" doc:"Group ID"`
}

type GroupOutput struct {
	Body *GroupBody
}

func RegisterBoardRoutes(api huma.API, boards BoardService) {
	huma.Register(api, huma.Operation{
		OperationID: "get-board",
		Method:      http.MethodGet,
		Path:        "/boards/{boardID}",
		Summary:     "Get a board with its columns and groups",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *BoardPathInput) (*BoardDetailOutput, error) {
		d, err := boards.GetBoard(ctx, input.BoardID)
		if err != nil {
			return nil, serviceError(err, "get board")
		}
		return &BoardDetailOutput{Body: toBoardDetailBody(d)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-column",
		Method:        http.MethodPost,
		Path:          "/boards/{boardID}/columns",
		Summary:       "Add a column to a board",
		Tags:          []string{"Boards"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateColumnInput) (*ColumnOutput, error) {
		c, err := boards.CreateColumn(ctx, input.BoardID, board.ColumnInput{
			Type:     domain.ColumnType(input.Body.Type),
			Title:    input.Body.Title,
			Settings: input.Body.Settings,
			Position: input.Body.Position,
		})
		if err != nil {
			return nil, serviceError(err, "create column")
		}
		return &ColumnOutput{Body: toColumnBody(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "reorder-columns",
		Method:      http.MethodPut,
		Path:        "/boards/{boardID}/columns/reorder",
		Summary:     "Reorder a board's columns",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *ReorderColumnsInput) (*ListColumnsOutput, error) {
		columns, err := boards.ReorderColumns(ctx, input.BoardID, input.Body.ColumnIDs)
		if err != nil {
			return nil, serviceError(err, "reorder columns")
		}
		return &ListColumnsOutput{Body: mapSlice(columns, toColumnBody)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-column",
		Method:        http.MethodDelete,
		Path:          "/boards/{boardID}/columns/{columnID}",
		Summary:       "Delete a column and its values",
		Tags:          []string{"Boards"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *ColumnPathInput) (*struct{}, error) {
		if err := boards.DeleteColumn(ctx, input.BoardID, input.ColumnID); err != nil {
			return nil, serviceError(err, "delete column")
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-group",
		Method:        http.MethodPost,
		Path:          "/boards/{boardID}/groups",
		Summary:       "Add a group to a board",
		Tags:          []string{"Boards"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateGroupInput) (*GroupOutput, error) {
		g, err := boards.CreateGroup(ctx, input.BoardID, input.Body.Name, input.Body.Position)
		if err != nil {
			return nil, serviceError(err, "create group")
		}
		return &GroupOutput{Body: toGroupBody(g)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-group",
		Method:      http.MethodPut,
		Path:        "/boards/{boardID}/groups/{groupID}",
		Summary:     "Rename or move a group",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *UpdateGroupInput) (*GroupOutput, error) {
		g, err := boards.UpdateGroup(ctx, input.BoardID, input.GroupID, board.GroupPatch{
			Name:     input.Body.Name,
			Position: input.Body.Position,
		})
		if err != nil {
			return nil, serviceError(err, "update group")
		}
		return &GroupOutput{Body: toGroupBody(g)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-group",
		Method:        http.MethodDelete,
		Path:          "/boards/{boardID}/groups/{groupID}",
		Summary:       "Delete an empty group",
		Tags:          []string{"Boards"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *GroupPathInput) (*struct{}, error) {
		if err := boards.DeleteGroup(ctx, input.BoardID, input.GroupID); err != nil {
			return nil, serviceError(err, "delete group")
		}
		return nil, nil
	})
}
