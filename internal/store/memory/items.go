package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/flowboard/internal/domain"
)

type itemRepo struct{ s *Store }

func (r itemRepo) Create(_ context.Context, it *domain.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.items[it.ID]; ok {
		return fmt.Errorf("memory.itemRepo.Create: %w", domain.ErrConflict)
	}
	r.s.items[it.ID] = *it
	r.s.itemOrder = append(r.s.itemOrder, it.ID)
	return nil
}

func (r itemRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	it, ok := r.s.items[id]
	if !ok {
		return nil, fmt.Errorf("memory.itemRepo.GetByID: %w", domain.ErrNotFound)
	}
	return &it, nil
}

func (r itemRepo) ListByBoard(_ context.Context, boardID uuid.UUID) ([]*domain.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*domain.Item
	for _, id := range r.s.itemOrder {
		it, ok := r.s.items[id]
		if !ok || it.BoardID != boardID || it.Archived() {
			continue
		}
		out = append(out, &it)
	}
	return out, nil
}

func (r itemRepo) CountByGroup(_ context.Context, groupID uuid.UUID) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, it := range r.s.items {
		if it.GroupID == groupID {
			n++
		}
	}
	return n, nil
}

func (r itemRepo) Update(_ context.Context, it *domain.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.items[it.ID]
	if !ok {
		return fmt.Errorf("memory.itemRepo.Update: %w", domain.ErrNotFound)
	}
	updated := *it
	updated.ArchivedAt = existing.ArchivedAt
	updated.CreatedAt = existing.CreatedAt
	r.s.items[it.ID] = updated
	return nil
}

func (r itemRepo) SetArchived(_ context.Context, id uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	it, ok := r.s.items[id]
	if !ok {
		return fmt.Errorf("memory.itemRepo.SetArchived: %w", domain.ErrNotFound)
	}
	it.ArchivedAt = &at
	it.UpdatedAt = at
	r.s.items[id] = it
	return nil
}

func (r itemRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.items[id]; !ok {
		return fmt.Errorf("memory.itemRepo.Delete: %w", domain.ErrNotFound)
	}
	delete(r.s.items, id)
	for key := range r.s.columnValues {
		if key.itemID == id {
			delete(r.s.columnValues, key)
		}
	}
	return nil
}

type columnValueRepo struct{ s *Store }

func (r columnValueRepo) Get(_ context.Context, itemID, columnID uuid.UUID) (*domain.ColumnValue, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	cv, ok := r.s.columnValues[cellKey{itemID: itemID, columnID: columnID}]
	if !ok {
		return nil, fmt.Errorf("memory.columnValueRepo.Get: %w", domain.ErrNotFound)
	}
	return &cv, nil
}

func (r columnValueRepo) Upsert(_ context.Context, cv *domain.ColumnValue) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := cellKey{itemID: cv.ItemID, columnID: cv.ColumnID}
	if existing, ok := r.s.columnValues[key]; ok {
		cv.ID = existing.ID
	}
	r.s.columnValues[key] = *cv
	return nil
}

func (r columnValueRepo) ListByItem(_ context.Context, itemID uuid.UUID) ([]*domain.ColumnValue, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*domain.ColumnValue
	for key, cv := range r.s.columnValues {
		if key.itemID == itemID {
			out = append(out, &cv)
		}
	}
	return out, nil
}

type updateRepo struct{ s *Store }

func (r updateRepo) Create(_ context.Context, u *domain.Update) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.updates = append(r.s.updates, *u)
	return nil
}

// ListByItem returns the item's updates newest first.
func (r updateRepo) ListByItem(_ context.Context, itemID uuid.UUID) ([]*domain.Update, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*domain.Update
	for i := len(r.s.updates) - 1; i >= 0; i-- {
		if u := r.s.updates[i]; u.ItemID == itemID {
			out = append(out, &u)
		}
	}
	return out, nil
}
