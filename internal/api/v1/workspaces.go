package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/flowboard/internal/board"
)

type CreateWorkspaceInput struct {
	Body struct {
		Name string `json:"name" minLength:"1" maxLength:"255" doc:"Workspace name"`
	}
}

type WorkspaceOutput struct {
	Body *WorkspaceBody
}

type UpdateWorkspaceInput struct {
	ID   uuid.UUID `path:"id" doc:"Workspace ID"`
	Body struct {
		Name     *string `json:"name,omitempty" maxLength:"255" doc:"Workspace name"`
		IsActive *bool   `json:"is_active,omitempty" doc:"Whether the workspace is active"`
	}
}

type CreateBoardInput struct {
	WorkspaceID uuid.UUID `path:"id" doc:"Workspace ID"`
	Body        struct {
		Name string `json:"name" minLength:"1" maxLength:"255" doc:"Board name"`
	}
}

type BoardOutput struct {
	Body *BoardBody
}

type ListBoardsInput struct {
	WorkspaceID uuid.UUID `path:"id" doc:"Workspace ID"`
}

type ListBoardsOutput struct {
	Body []*BoardBody
}

func RegisterWorkspaceRoutes(api huma.API, boards BoardService) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-workspace",
		Method:        http.MethodPost,
		Path:          "/workspaces",
		Summary:       "Create a workspace",
		Tags:          []string{"Workspaces"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateWorkspaceInput) (*WorkspaceOutput, error) {
		userID, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		w, err := boards.CreateWorkspace(ctx, input.Body.Name, &userID)
		if err != nil {
			return nil, serviceError(err, "create workspace")
		}
		return &WorkspaceOutput{Body: toWorkspaceBody(w)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-workspace",
		Method:      http.MethodPatch,
		Path:        "/workspaces/{id}",
		Summary:     "Rename or (de)activate a workspace",
		Tags:        []string{"Workspaces"},
	}, func(ctx context.Context, input *UpdateWorkspaceInput) (*WorkspaceOutput, error) {
		w, err := boards.UpdateWorkspace(ctx, input.ID, board.WorkspacePatch{
			Name:     input.Body.Name,
			IsActive: input.Body.IsActive,
		})
		if err != nil {
			return nil, serviceError(err, "update workspace")
		}
		return &WorkspaceOutput{Body: toWorkspaceBody(w)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-board",
		Method:        http.MethodPost,
		Path:          "/workspaces/{id}/boards",
		Summary:       "Create a board in a workspace",
		Tags:          []string{"Boards"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateBoardInput) (*BoardOutput, error) {
		userID, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		b, err := boards.CreateBoard(ctx, input.WorkspaceID, input.Body.Name, &userID)
		if err != nil {
			return nil, serviceError(err, "create board")
		}
		return &BoardOutput{Body: toBoardBody(b)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-boards",
		Method:      http.MethodGet,
		Path:        "/workspaces/{id}/boards",
		Summary:     "List the boards of a workspace",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *ListBoardsInput) (*ListBoardsOutput, error) {
		list, err := boards.ListBoards(ctx, input.WorkspaceID)
		if err != nil {
			return nil, serviceError(err, "list boards")
		}
		return &ListBoardsOutput{Body: mapSlice(list, toBoardBody)}, nil
	})
}
