package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/flowboard/internal/board"
	"github.com/gosuda/flowboard/internal/domain"
)

type ListItemsInput struct {
	BoardID uuid.UUID `query:"board_id" required:"true" doc:"Board ID"`
}

type ListItemsOutput struct {
	Body []*ItemBody
}

type CreateItemInput struct {
	Body struct {
		BoardID      uuid.UUID  `json:"board_id" doc:"Board ID"`
		GroupID      uuid.UUID  `json:"group_id" doc:"Group ID"`
		ParentItemID *uuid.UUID `json:"parent_item_id,omitempty" doc:"Parent item for subitems"`
		Name         string     `json:"name" minLength:"1" maxLength:"500" doc:"Item name"`
		Description  string     `json:"description,omitempty" doc:"Item description"`
		TaskType     *string    `json:"task_type,omitempty" doc:"Task type"`
	}
}

type ItemOutput struct {
	Body *ItemBody
}

type ItemPathInput struct {
	ID uuid.UUID `path:"id" doc:"Item ID"`
}

type UpdateItemInput struct {
	ID   uuid.UUID `path:"id" doc:"Item ID"`
	Body struct {
		Name        *string `json:"name,omitempty" maxLength:"500" doc:"Item name"`
		Description *string `json:"description,omitempty" doc:"Item description"`
		TaskType    *string `json:"task_type,omitempty" doc:"Task type; empty string clears it"`
	}
}

type UpdateColumnValueInput struct {
	ID   uuid.UUID `path:"id" doc:"Item ID"`
	Body struct {
		ColumnID uuid.UUID `json:"column_id" doc:"Column ID"`
		Value    any       `json:"value" doc:"Any JSON value; null clears the cell"`
	}
}

type ColumnValueOutput struct {
	Body *ColumnValueBody
}

type ListUpdatesOutput struct {
	Body []*UpdateBody
}

type CreateUpdateInput struct {
	ID   uuid.UUID `path:"id" doc:"Item ID"`
	Body struct {
		Content string `json:"content" minLength:"1" doc:"Comment text; @name mentions notify users"`
	}
}

type UpdateOutput struct {
	Body *UpdateBody
}

func RegisterItemRoutes(api huma.API, boards BoardService) {
	huma.Register(api, huma.Operation{
		OperationID: "list-items",
		Method:      http.MethodGet,
		Path:        "/items",
		Summary:     "List the unarchived items of a board",
		Tags:        []string{"Items"},
	}, func(ctx context.Context, input *ListItemsInput) (*ListItemsOutput, error) {
		items, err := boards.ListItems(ctx, input.BoardID)
		if err != nil {
			return nil, serviceError(err, "list items")
		}
		return &ListItemsOutput{Body: mapSlice(items, toItemBody)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-item",
		Method:        http.MethodPost,
		Path:          "/items",
		Summary:       "Create an item at the end of its group",
		Tags:          []string{"Items"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateItemInput) (*ItemOutput, error) {
		userID, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		it, err := boards.CreateItem(ctx, board.CreateItemInput{
			BoardID:      input.Body.BoardID,
			GroupID:      input.Body.GroupID,
			ParentItemID: input.Body.ParentItemID,
			Name:         input.Body.Name,
			Description:  input.Body.Description,
			TaskType:     input.Body.TaskType,
		}, userID)
		if err != nil {
			return nil, serviceError(err, "create item")
		}
		return &ItemOutput{Body: toItemBody(it)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-item",
		Method:      http.MethodGet,
		Path:        "/items/{id}",
		Summary:     "Get an item with its column values",
		Tags:        []string{"Items"},
	}, func(ctx context.Context, input *ItemPathInput) (*ItemOutput, error) {
		it, err := boards.GetItem(ctx, input.ID)
		if err != nil {
			return nil, serviceError(err, "get item")
		}
		values, err := boards.ListColumnValues(ctx, input.ID)
		if err != nil {
			return nil, serviceError(err, "list column values")
		}

		body := toItemBody(it)
		body.Values = mapSlice(values, toColumnValueBody)
		return &ItemOutput{Body: body}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-item",
		Method:      http.MethodPatch,
		Path:        "/items/{id}",
		Summary:     "Edit item fields",
		Tags:        []string{"Items"},
	}, func(ctx context.Context, input *UpdateItemInput) (*ItemOutput, error) {
		userID, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		it, err := boards.UpdateItem(ctx, input.ID, board.ItemPatch{
			Name:        input.Body.Name,
			Description: input.Body.Description,
			TaskType:    input.Body.TaskType,
		}, &userID)
		if err != nil {
			return nil, serviceError(err, "update item")
		}
		return &ItemOutput{Body: toItemBody(it)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-column-value",
		Method:      http.MethodPatch,
		Path:        "/items/{id}/values",
		Summary:     "Set one cell of an item",
		Tags:        []string{"Items"},
	}, func(ctx context.Context, input *UpdateColumnValueInput) (*ColumnValueOutput, error) {
		userID, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		value, err := domain.FromAny(input.Body.Value)
		if err != nil {
			return nil, huma.Error400BadRequest("unsupported value", err)
		}

		cv, err := boards.UpdateColumnValue(ctx, input.ID, input.Body.ColumnID, value, &userID)
		if err != nil {
			return nil, serviceError(err, "update column value")
		}
		return &ColumnValueOutput{Body: toColumnValueBody(cv)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "archive-item",
		Method:      http.MethodPost,
		Path:        "/items/{id}/archive",
		Summary:     "Archive an item",
		Tags:        []string{"Items"},
	}, func(ctx context.Context, input *ItemPathInput) (*ItemOutput, error) {
		userID, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		it, err := boards.ArchiveItem(ctx, input.ID, &userID)
		if err != nil {
			return nil, serviceError(err, "archive item")
		}
		return &ItemOutput{Body: toItemBody(it)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-item",
		Method:        http.MethodDelete,
		Path:          "/items/{id}",
		Summary:       "Delete an item",
		Tags:          []string{"Items"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *ItemPathInput) (*struct{}, error) {
		userID, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		if err := boards.DeleteItem(ctx, input.ID, &userID); err != nil {
			return nil, serviceError(err, "delete item")
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-updates",
		Method:      http.MethodGet,
		Path:        "/items/{id}/updates",
		Summary:     "List comments on an item, newest first",
		Tags:        []string{"Updates"},
	}, func(ctx context.Context, input *ItemPathInput) (*ListUpdatesOutput, error) {
		updates, err := boards.ListUpdates(ctx, input.ID)
		if err != nil {
			return nil, serviceError(err, "list updates")
		}
		return &ListUpdatesOutput{Body: mapSlice(updates, toUpdateBody)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-update",
		Method:        http.MethodPost,
		Path:          "/items/{id}/updates",
		Summary:       "Post a comment on an item",
		Tags:          []string{"Updates"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateUpdateInput) (*UpdateOutput, error) {
		userID, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		u, err := boards.CreateUpdate(ctx, input.ID, input.Body.Content, userID)
		if err != nil {
			return nil, serviceError(err, "create update")
		}
		return &UpdateOutput{Body: toUpdateBody(u)}, nil
	})
}
