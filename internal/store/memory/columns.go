package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/gosuda/flowboard/internal/domain"
)

type columnRepo struct{ s *Store }

func (r columnRepo) Create(_ context.Context, c *domain.Column) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.columns[c.ID]; ok {
		return fmt.Errorf("memory.columnRepo.Create: %w", domain.ErrConflict)
	}
	stored := *c
	stored.Settings = copyMap(c.Settings)
	r.s.columns[c.ID] = stored
	return nil
}

func (r columnRepo) GetByID(_ context.Context, boardID, id uuid.UUID) (*domain.Column, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.columns[id]
	if !ok || c.BoardID != boardID {
		return nil, fmt.Errorf("memory.columnRepo.GetByID: %w", domain.ErrNotFound)
	}
	c.Settings = copyMap(c.Settings)
	return &c, nil
}

// ListByBoard returns the board's columns ordered by position.
func (r columnRepo) ListByBoard(_ context.Context, boardID uuid.UUID) ([]*domain.Column, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*domain.Column
	for _, c := range r.s.columns {
		if c.BoardID != boardID {
			continue
		}
		c.Settings = copyMap(c.Settings)
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r columnRepo) CountByBoard(_ context.Context, boardID uuid.UUID) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, c := range r.s.columns {
		if c.BoardID == boardID {
			n++
		}
	}
	return n, nil
}

func (r columnRepo) Reorder(_ context.Context, boardID uuid.UUID, ids []uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i, id := range ids {
		c, ok := r.s.columns[id]
		if !ok || c.BoardID != boardID {
			continue
		}
		c.Position = i
		r.s.columns[id] = c
	}
	return nil
}

func (r columnRepo) Delete(_ context.Context, boardID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.columns[id]
	if !ok || c.BoardID != boardID {
		return fmt.Errorf("memory.columnRepo.Delete: %w", domain.ErrNotFound)
	}
	delete(r.s.columns, id)
	for key := range r.s.columnValues {
		if key.columnID == id {
			delete(r.s.columnValues, key)
		}
	}
	return nil
}

type groupRepo struct{ s *Store }

func (r groupRepo) Create(_ context.Context, g *domain.Group) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.groups[g.ID]; ok {
		return fmt.Errorf("memory.groupRepo.Create: %w", domain.ErrConflict)
	}
	r.s.groups[g.ID] = *g
	r.s.groupOrder = append(r.s.groupOrder, g.ID)
	return nil
}

func (r groupRepo) GetByID(_ context.Context, boardID, id uuid.UUID) (*domain.Group, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	g, ok := r.s.groups[id]
	if !ok || g.BoardID != boardID {
		return nil, fmt.Errorf("memory.groupRepo.GetByID: %w", domain.ErrNotFound)
	}
	return &g, nil
}

// ListByBoard returns the board's groups ordered by position.
func (r groupRepo) ListByBoard(_ context.Context, boardID uuid.UUID) ([]*domain.Group, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*domain.Group
	for _, id := range r.s.groupOrder {
		g, ok := r.s.groups[id]
		if !ok || g.BoardID != boardID {
			continue
		}
		out = append(out, &g)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r groupRepo) CountByBoard(_ context.Context, boardID uuid.UUID) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, g := range r.s.groups {
		if g.BoardID == boardID {
			n++
		}
	}
	return n, nil
}

func (r groupRepo) Update(_ context.Context, g *domain.Group) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.groups[g.ID]
	if !ok || existing.BoardID != g.BoardID {
		return fmt.Errorf("memory.groupRepo.Update: %w", domain.ErrNotFound)
	}
	r.s.groups[g.ID] = *g
	return nil
}

// Delete refuses with ErrConflict while items still reference the group.
func (r groupRepo) Delete(_ context.Context, boardID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	g, ok := r.s.groups[id]
	if !ok || g.BoardID != boardID {
		return fmt.Errorf("memory.groupRepo.Delete: %w", domain.ErrNotFound)
	}
	for _, it := range r.s.items {
		if it.GroupID == id {
			return fmt.Errorf("memory.groupRepo.Delete: group has items: %w", domain.ErrConflict)
		}
	}
	delete(r.s.groups, id)
	return nil
}
