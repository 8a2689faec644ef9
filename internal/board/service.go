// Package board performs workspace, board and item mutations and announces
// each successful one on the event bus. Column and group edits shape a board
// but are not announced.
package board

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/flowboard/internal/domain"
	"github.com/gosuda/flowboard/internal/event"
)

// Emitter publishes events to the bus.
type Emitter interface {
	Emit(ctx context.Context, ev event.Event) event.Report
}

// Service emits exactly one event after every successful workspace, board or
// item mutation and none after a failed one.
type Service struct {
	store domain.Store
	bus   Emitter
	now   func() time.Time
}

func NewService(store domain.Store, bus Emitter) *Service {
	return &Service{store: store, bus: bus, now: time.Now}
}

// --- Workspaces and boards ---

func (s *Service) CreateWorkspace(ctx context.Context, name string, ownerID *uuid.UUID) (*domain.Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("board.Service.CreateWorkspace: name required: %w", domain.ErrInvalidInput)
	}

	now := s.now()
	w := &domain.Workspace{
		ID:        uuid.New(),
		Name:      name,
		OwnerID:   ownerID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Workspaces().Create(ctx, w); err != nil {
		return nil, fmt.Errorf("board.Service.CreateWorkspace: %w", err)
	}

	s.bus.Emit(ctx, event.WorkspaceCreated{ID: w.ID, Name: w.Name, OwnerID: w.OwnerID})
	return w, nil
}

// WorkspacePatch holds the workspace fields to change. Nil fields are kept.
type WorkspacePatch struct {
	Name     *string
	IsActive *bool
}

func (s *Service) UpdateWorkspace(ctx context.Context, id uuid.UUID, patch WorkspacePatch) (*domain.Workspace, error) {
	w, err := s.store.Workspaces().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("board.Service.UpdateWorkspace: %w", err)
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("board.Service.UpdateWorkspace: name required: %w", domain.ErrInvalidInput)
		}
		w.Name = name
	}
	if patch.IsActive != nil {
		w.IsActive = *patch.IsActive
	}
	w.UpdatedAt = s.now()

	if err := s.store.Workspaces().Update(ctx, w); err != nil {
		return nil, fmt.Errorf("board.Service.UpdateWorkspace: %w", err)
	}

	s.bus.Emit(ctx, event.WorkspaceUpdated{ID: w.ID, Name: w.Name, OwnerID: w.OwnerID, IsActive: w.IsActive})
	return w, nil
}

func (s *Service) CreateBoard(ctx context.Context, workspaceID uuid.UUID, name string, createdBy *uuid.UUID) (*domain.Board, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("board.Service.CreateBoard: name required: %w", domain.ErrInvalidInput)
	}
	if _, err := s.store.Workspaces().GetByID(ctx, workspaceID); err != nil {
		return nil, fmt.Errorf("board.Service.CreateBoard: %w", err)
	}

	b := &domain.Board{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Name:        name,
		CreatedBy:   createdBy,
		CreatedAt:   s.now(),
	}
	if err := s.store.Boards().Create(ctx, b); err != nil {
		return nil, fmt.Errorf("board.Service.CreateBoard: %w", err)
	}
	if err := s.seedBoard(ctx, b.ID); err != nil {
		return nil, fmt.Errorf("board.Service.CreateBoard: %w", err)
	}

	s.bus.Emit(ctx, event.BoardCreated{ID: b.ID, Name: b.Name, WorkspaceID: b.WorkspaceID, CreatedBy: b.CreatedBy})
	return b, nil
}

func (s *Service) ListBoards(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Board, error) {
	boards, err := s.store.Boards().ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("board.Service.ListBoards: %w", err)
	}
	return boards, nil
}

// --- Items ---

// CreateItemInput describes a new item. It is appended to the end of its
// group.
type CreateItemInput struct {
	BoardID      uuid.UUID
	GroupID      uuid.UUID
	ParentItemID *uuid.UUID
	Name         string
	Description  string
	TaskType     *string
}

func (s *Service) CreateItem(ctx context.Context, in CreateItemInput, userID uuid.UUID) (*domain.Item, error) {
	if in.BoardID == uuid.Nil || in.GroupID == uuid.Nil {
		return nil, fmt.Errorf("board.Service.CreateItem: board_id and group_id required: %w", domain.ErrInvalidInput)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("board.Service.CreateItem: name required: %w", domain.ErrInvalidInput)
	}

	if _, err := s.store.Groups().GetByID(ctx, in.BoardID, in.GroupID); err != nil {
		return nil, fmt.Errorf("board.Service.CreateItem: %w", err)
	}

	position, err := s.store.Items().CountByGroup(ctx, in.GroupID)
	if err != nil {
		return nil, fmt.Errorf("board.Service.CreateItem: %w", err)
	}

	now := s.now()
	it := &domain.Item{
		ID:           uuid.New(),
		BoardID:      in.BoardID,
		GroupID:      in.GroupID,
		ParentItemID: in.ParentItemID,
		Name:         name,
		Position:     position,
		CreatedBy:    userID,
		Description:  in.Description,
		TaskType:     in.TaskType,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Items().Create(ctx, it); err != nil {
		return nil, fmt.Errorf("board.Service.CreateItem: %w", err)
	}

	s.bus.Emit(ctx, event.ItemCreated{
		ID:        it.ID,
		BoardID:   it.BoardID,
		GroupID:   it.GroupID,
		Name:      it.Name,
		Position:  it.Position,
		CreatedBy: optionalID(it.CreatedBy),
	})
	return it, nil
}

func (s *Service) GetItem(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	it, err := s.store.Items().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("board.Service.GetItem: %w", err)
	}
	return it, nil
}

// ListItems returns the board's unarchived items.
func (s *Service) ListItems(ctx context.Context, boardID uuid.UUID) ([]*domain.Item, error) {
	items, err := s.store.Items().ListByBoard(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("board.Service.ListItems: %w", err)
	}
	return items, nil
}

func (s *Service) ListColumnValues(ctx context.Context, itemID uuid.UUID) ([]*domain.ColumnValue, error) {
	values, err := s.store.ColumnValues().ListByItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("board.Service.ListColumnValues: %w", err)
	}
	return values, nil
}

// UpdateColumnValue writes one cell. The emitted event carries the previous
// value and whether this is the first value ever stored for the cell.
func (s *Service) UpdateColumnValue(ctx context.Context, itemID, columnID uuid.UUID, value domain.Value, userID *uuid.UUID) (*domain.ColumnValue, error) {
	if columnID == uuid.Nil {
		return nil, fmt.Errorf("board.Service.UpdateColumnValue: column_id required: %w", domain.ErrInvalidInput)
	}
	if value == nil {
		value = domain.Null{}
	}

	it, err := s.store.Items().GetByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("board.Service.UpdateColumnValue: %w", err)
	}
	if _, err := s.store.Columns().GetByID(ctx, it.BoardID, columnID); err != nil {
		return nil, fmt.Errorf("board.Service.UpdateColumnValue: column %s: %w", columnID, err)
	}

	var previous domain.Value = domain.Null{}
	isNew := false
	prior, err := s.store.ColumnValues().Get(ctx, itemID, columnID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		isNew = true
	case err != nil:
		return nil, fmt.Errorf("board.Service.UpdateColumnValue: %w", err)
	default:
		previous = prior.Value
	}

	cv := &domain.ColumnValue{
		ID:        uuid.New(),
		ItemID:    itemID,
		ColumnID:  columnID,
		Value:     value,
		UpdatedAt: s.now(),
	}
	if err := s.store.ColumnValues().Upsert(ctx, cv); err != nil {
		return nil, fmt.Errorf("board.Service.UpdateColumnValue: %w", err)
	}

	s.bus.Emit(ctx, event.ColumnValueUpdated{
		ItemID:        itemID,
		ColumnID:      columnID,
		BoardID:       it.BoardID,
		Value:         domain.JSONValue{Value: value},
		PreviousValue: domain.JSONValue{Value: previous},
		IsNew:         isNew,
		UserID:        userID,
	})
	return cv, nil
}

// ItemPatch holds the item fields to change. Nil fields are kept; an empty
// TaskType clears it.
type ItemPatch struct {
	Name        *string
	Description *string
	TaskType    *string
}

// UpdateItem applies patch and emits item.updated with the fields that
// actually changed. A patch that changes nothing emits nothing.
func (s *Service) UpdateItem(ctx context.Context, itemID uuid.UUID, patch ItemPatch, userID *uuid.UUID) (*domain.Item, error) {
	it, err := s.store.Items().GetByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("board.Service.UpdateItem: %w", err)
	}

	changes := make(map[string]event.FieldChange)

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("board.Service.UpdateItem: name required: %w", domain.ErrInvalidInput)
		}
		if name != it.Name {
			changes["name"] = event.FieldChange{Previous: it.Name, Current: name}
			it.Name = name
		}
	}
	if patch.Description != nil && *patch.Description != it.Description {
		changes["description"] = event.FieldChange{Previous: it.Description, Current: *patch.Description}
		it.Description = *patch.Description
	}
	if patch.TaskType != nil {
		var next *string
		if *patch.TaskType != "" {
			v := *patch.TaskType
			next = &v
		}
		if derefOrNil(it.TaskType) != derefOrNil(next) {
			changes["task_type"] = event.FieldChange{Previous: derefOrNil(it.TaskType), Current: derefOrNil(next)}
			it.TaskType = next
		}
	}

	if len(changes) == 0 {
		return it, nil
	}

	it.UpdatedAt = s.now()
	if err := s.store.Items().Update(ctx, it); err != nil {
		return nil, fmt.Errorf("board.Service.UpdateItem: %w", err)
	}

	s.bus.Emit(ctx, event.ItemUpdated{ID: it.ID, BoardID: it.BoardID, Changes: changes, UserID: userID})
	return it, nil
}

// ArchiveItem stamps archived_at with the current time. Archiving an archived
// item refreshes the stamp and still emits item.archived.
func (s *Service) ArchiveItem(ctx context.Context, itemID uuid.UUID, userID *uuid.UUID) (*domain.Item, error) {
	it, err := s.store.Items().GetByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("board.Service.ArchiveItem: %w", err)
	}

	at := s.now()
	if err := s.store.Items().SetArchived(ctx, itemID, at); err != nil {
		return nil, fmt.Errorf("board.Service.ArchiveItem: %w", err)
	}
	it.ArchivedAt = &at
	it.UpdatedAt = at

	s.bus.Emit(ctx, event.ItemArchived{
		ID:         it.ID,
		BoardID:    it.BoardID,
		ArchivedAt: at.UTC().Format(time.RFC3339Nano),
		UserID:     userID,
	})
	return it, nil
}

func (s *Service) DeleteItem(ctx context.Context, itemID uuid.UUID, userID *uuid.UUID) error {
	it, err := s.store.Items().GetByID(ctx, itemID)
	if err != nil {
		return fmt.Errorf("board.Service.DeleteItem: %w", err)
	}
	if err := s.store.Items().Delete(ctx, itemID); err != nil {
		return fmt.Errorf("board.Service.DeleteItem: %w", err)
	}

	s.bus.Emit(ctx, event.ItemDeleted{ID: it.ID, BoardID: it.BoardID, UserID: userID})
	return nil
}

// --- Updates ---

// CreateUpdate posts a comment on an item.
func (s *Service) CreateUpdate(ctx context.Context, itemID uuid.UUID, content string, userID uuid.UUID) (*domain.Update, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("board.Service.CreateUpdate: content required: %w", domain.ErrInvalidInput)
	}

	it, err := s.store.Items().GetByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("board.Service.CreateUpdate: %w", err)
	}

	u := &domain.Update{
		ID:        uuid.New(),
		ItemID:    itemID,
		UserID:    userID,
		Content:   content,
		CreatedAt: s.now(),
	}
	if err := s.store.Updates().Create(ctx, u); err != nil {
		return nil, fmt.Errorf("board.Service.CreateUpdate: %w", err)
	}

	s.bus.Emit(ctx, event.UpdateCreated{
		ID:      u.ID,
		ItemID:  u.ItemID,
		BoardID: it.BoardID,
		Content: u.Content,
		UserID:  u.UserID,
	})
	return u, nil
}

func (s *Service) ListUpdates(ctx context.Context, itemID uuid.UUID) ([]*domain.Update, error) {
	updates, err := s.store.Updates().ListByItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("board.Service.ListUpdates: %w", err)
	}
	return updates, nil
}

func optionalID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

func derefOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
