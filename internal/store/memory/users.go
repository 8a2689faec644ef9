package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/gosuda/flowboard/internal/domain"
)

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[u.ID]; ok {
		return fmt.Errorf("memory.userRepo.Create: %w", domain.ErrConflict)
	}
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return fmt.Errorf("memory.userRepo.Create: email: %w", domain.ErrConflict)
		}
	}
	r.s.users[u.ID] = *u
	r.s.userOrder = append(r.s.userOrder, u.ID)
	return nil
}

func (r userRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, fmt.Errorf("memory.userRepo.GetByID: %w", domain.ErrNotFound)
	}
	return &u, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("memory.userRepo.GetByEmail: %w", domain.ErrNotFound)
}

func (r userRepo) List(_ context.Context) ([]*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.User, 0, len(r.s.userOrder))
	for _, id := range r.s.userOrder {
		u := r.s.users[id]
		out = append(out, &u)
	}
	return out, nil
}

type workspaceRepo struct{ s *Store }

func (r workspaceRepo) Create(_ context.Context, w *domain.Workspace) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.workspaces[w.ID]; ok {
		return fmt.Errorf("memory.workspaceRepo.Create: %w", domain.ErrConflict)
	}
	r.s.workspaces[w.ID] = *w
	return nil
}

func (r workspaceRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Workspace, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	w, ok := r.s.workspaces[id]
	if !ok {
		return nil, fmt.Errorf("memory.workspaceRepo.GetByID: %w", domain.ErrNotFound)
	}
	return &w, nil
}

func (r workspaceRepo) Update(_ context.Context, w *domain.Workspace) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.workspaces[w.ID]; !ok {
		return fmt.Errorf("memory.workspaceRepo.Update: %w", domain.ErrNotFound)
	}
	r.s.workspaces[w.ID] = *w
	return nil
}

type boardRepo struct{ s *Store }

func (r boardRepo) Create(_ context.Context, b *domain.Board) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.boards[b.ID]; ok {
		return fmt.Errorf("memory.boardRepo.Create: %w", domain.ErrConflict)
	}
	r.s.boards[b.ID] = *b
	r.s.boardOrder = append(r.s.boardOrder, b.ID)
	return nil
}

func (r boardRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Board, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.boards[id]
	if !ok {
		return nil, fmt.Errorf("memory.boardRepo.GetByID: %w", domain.ErrNotFound)
	}
	return &b, nil
}

func (r boardRepo) ListByWorkspace(_ context.Context, workspaceID uuid.UUID) ([]*domain.Board, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*domain.Board
	for _, id := range r.s.boardOrder {
		if b := r.s.boards[id]; b.WorkspaceID == workspaceID {
			out = append(out, &b)
		}
	}
	return out, nil
}
