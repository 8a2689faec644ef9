package board

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/gosuda/flowboard/internal/domain"
)

// Detail is a board with its columns and groups, both ordered by position.
type Detail struct {
	Board   *domain.Board
	Columns []*domain.Column
	Groups  []*domain.Group
}

// DefaultGroupName names the group every new board starts with.
const DefaultGroupName = "Group 1"

// defaultColumns are created on every new board, in this order.
func defaultColumns() []ColumnInput {
	return []ColumnInput{
		{Type: domain.ColumnText, Title: "Item"},
		{Type: domain.ColumnStatus, Title: "Status", Settings: map[string]any{
			"options": []any{"To Do", "In Progress", "Done"},
		}},
		{Type: domain.ColumnDate, Title: "Date"},
		{Type: domain.ColumnDate, Title: "End Date"},
	}
}

func (s *Service) seedBoard(ctx context.Context, boardID uuid.UUID) error {
	for _, in := range defaultColumns() {
		if _, err := s.createColumn(ctx, boardID, in); err != nil {
			return err
		}
	}
	if _, err := s.createGroup(ctx, boardID, DefaultGroupName, nil); err != nil {
		return err
	}
	return nil
}

func (s *Service) GetBoard(ctx context.Context, id uuid.UUID) (*Detail, error) {
	b, err := s.store.Boards().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("board.Service.GetBoard: %w", err)
	}
	columns, err := s.store.Columns().ListByBoard(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("board.Service.GetBoard: %w", err)
	}
	groups, err := s.store.Groups().ListByBoard(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("board.Service.GetBoard: %w", err)
	}
	return &Detail{Board: b, Columns: columns, Groups: groups}, nil
}

// --- Columns ---

// ColumnInput describes a new column. A nil Position appends it.
type ColumnInput struct {
	Type     domain.ColumnType
	Title    string
	Settings map[string]any
	Position *int
}

func (s *Service) CreateColumn(ctx context.Context, boardID uuid.UUID, in ColumnInput) (*domain.Column, error) {
	if _, err := s.store.Boards().GetByID(ctx, boardID); err != nil {
		return nil, fmt.Errorf("board.Service.CreateColumn: %w", err)
	}
	c, err := s.createColumn(ctx, boardID, in)
	if err != nil {
		return nil, fmt.Errorf("board.Service.CreateColumn: %w", err)
	}
	return c, nil
}

func (s *Service) createColumn(ctx context.Context, boardID uuid.UUID, in ColumnInput) (*domain.Column, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("title required: %w", domain.ErrInvalidInput)
	}
	if !in.Type.Valid() {
		return nil, fmt.Errorf("unknown column type %q: %w", in.Type, domain.ErrInvalidInput)
	}

	position, err := nextPosition(in.Position, func() (int, error) {
		return s.store.Columns().CountByBoard(ctx, boardID)
	})
	if err != nil {
		return nil, err
	}

	settings := in.Settings
	if settings == nil {
		settings = map[string]any{}
	}

	c := &domain.Column{
		ID:        uuid.New(),
		BoardID:   boardID,
		Type:      in.Type,
		Title:     title,
		Settings:  settings,
		Position:  position,
		CreatedAt: s.now(),
	}
	if err := s.store.Columns().Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteColumn removes the column and every value stored under it.
func (s *Service) DeleteColumn(ctx context.Context, boardID, columnID uuid.UUID) error {
	if err := s.store.Columns().Delete(ctx, boardID, columnID); err != nil {
		return fmt.Errorf("board.Service.DeleteColumn: %w", err)
	}
	return nil
}

// ReorderColumns assigns positions by index in columnIDs.
func (s *Service) ReorderColumns(ctx context.Context, boardID uuid.UUID, columnIDs []uuid.UUID) ([]*domain.Column, error) {
	if _, err := s.store.Boards().GetByID(ctx, boardID); err != nil {
		return nil, fmt.Errorf("board.Service.ReorderColumns: %w", err)
	}
	seen := make(map[uuid.UUID]struct{}, len(columnIDs))
	for _, id := range columnIDs {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("board.Service.ReorderColumns: duplicate column %s: %w", id, domain.ErrInvalidInput)
		}
		seen[id] = struct{}{}
	}

	if err := s.store.Columns().Reorder(ctx, boardID, columnIDs); err != nil {
		return nil, fmt.Errorf("board.Service.ReorderColumns: %w", err)
	}
	columns, err := s.store.Columns().ListByBoard(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("board.Service.ReorderColumns: %w", err)
	}
	return columns, nil
}

// --- Groups ---

// CreateGroup adds a group. A nil position appends it.
func (s *Service) CreateGroup(ctx context.Context, boardID uuid.UUID, name string, position *int) (*domain.Group, error) {
	if _, err := s.store.Boards().GetByID(ctx, boardID); err != nil {
		return nil, fmt.Errorf("board.Service.CreateGroup: %w", err)
	}
	g, err := s.createGroup(ctx, boardID, name, position)
	if err != nil {
		return nil, fmt.Errorf("board.Service.CreateGroup: %w", err)
	}
	return g, nil
}

func (s *Service) createGroup(ctx context.Context, boardID uuid.UUID, name string, position *int) (*domain.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("name required: %w", domain.ErrInvalidInput)
	}

	pos, err := nextPosition(position, func() (int, error) {
		return s.store.Groups().CountByBoard(ctx, boardID)
	})
	if err != nil {
		return nil, err
	}

	g := &domain.Group{ID: uuid.New(), BoardID: boardID, Name: name, Position: pos}
	if err := s.store.Groups().Create(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// GroupPatch holds the group fields to change. Nil fields are kept.
type GroupPatch struct {
	Name     *string
	Position *int
}

func (s *Service) UpdateGroup(ctx context.Context, boardID, groupID uuid.UUID, patch GroupPatch) (*domain.Group, error) {
	g, err := s.store.Groups().GetByID(ctx, boardID, groupID)
	if err != nil {
		return nil, fmt.Errorf("board.Service.UpdateGroup: %w", err)
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("board.Service.UpdateGroup: name required: %w", domain.ErrInvalidInput)
		}
		g.Name = name
	}
	if patch.Position != nil {
		if *patch.Position < 0 {
			return nil, fmt.Errorf("board.Service.UpdateGroup: negative position: %w", domain.ErrInvalidInput)
		}
		g.Position = *patch.Position
	}

	if err := s.store.Groups().Update(ctx, g); err != nil {
		return nil, fmt.Errorf("board.Service.UpdateGroup: %w", err)
	}
	return g, nil
}

// DeleteGroup fails with ErrConflict while the group still holds items,
// archived ones included.
func (s *Service) DeleteGroup(ctx context.Context, boardID, groupID uuid.UUID) error {
	if err := s.store.Groups().Delete(ctx, boardID, groupID); err != nil {
		return fmt.Errorf("board.Service.DeleteGroup: %w", err)
	}
	return nil
}

func nextPosition(requested *int, count func() (int, error)) (int, error) {
	if requested != nil {
		if *requested < 0 {
			return 0, fmt.Errorf("negative position: %w", domain.ErrInvalidInput)
		}
		return *requested, nil
	}
	return count()
}
