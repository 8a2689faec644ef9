package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gosuda/flowboard/internal/domain"
)

type automationRepo struct{ s *Store }

func (r automationRepo) Create(_ context.Context, a *domain.Automation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.automations[a.ID]; ok {
		return fmt.Errorf("memory.automationRepo.Create: %w", domain.ErrConflict)
	}
	stored := *a
	stored.ActionParams = copyMap(a.ActionParams)
	r.s.automations[a.ID] = stored
	r.s.autoOrder = append(r.s.autoOrder, a.ID)
	return nil
}

func (r automationRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Automation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.automations[id]
	if !ok {
		return nil, fmt.Errorf("memory.automationRepo.GetByID: %w", domain.ErrNotFound)
	}
	return &a, nil
}

func (r automationRepo) ListByBoard(_ context.Context, boardID uuid.UUID) ([]*domain.Automation, error) {
	return r.list(func(a domain.Automation) bool { return a.BoardID == boardID }), nil
}

func (r automationRepo) ListActive(_ context.Context, boardID uuid.UUID, trigger domain.Trigger) ([]*domain.Automation, error) {
	return r.list(func(a domain.Automation) bool {
		return a.BoardID == boardID && a.Trigger == trigger && a.IsActive
	}), nil
}

func (r automationRepo) list(keep func(domain.Automation) bool) []*domain.Automation {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*domain.Automation
	for _, id := range r.s.autoOrder {
		if a := r.s.automations[id]; keep(a) {
			out = append(out, &a)
		}
	}
	return out
}

func (r automationRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.automations[id]
	if !ok {
		return fmt.Errorf("memory.automationRepo.SetActive: %w", domain.ErrNotFound)
	}
	a.IsActive = active
	r.s.automations[id] = a
	return nil
}

type activityRepo struct{ s *Store }

func (r activityRepo) Record(_ context.Context, entry *domain.ActivityEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored := *entry
	stored.Details = copyMap(entry.Details)
	r.s.activity = append(r.s.activity, stored)
	return nil
}

func (r activityRepo) ListByBoard(_ context.Context, boardID uuid.UUID, limit int) ([]*domain.ActivityEntry, error) {
	return r.newest(limit, func(e domain.ActivityEntry) bool { return e.BoardID == boardID }), nil
}

func (r activityRepo) ListByItem(_ context.Context, itemID uuid.UUID, limit int) ([]*domain.ActivityEntry, error) {
	return r.newest(limit, func(e domain.ActivityEntry) bool { return e.ItemID != nil && *e.ItemID == itemID }), nil
}

func (r activityRepo) newest(limit int, keep func(domain.ActivityEntry) bool) []*domain.ActivityEntry {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*domain.ActivityEntry
	for i := len(r.s.activity) - 1; i >= 0; i-- {
		if e := r.s.activity[i]; keep(e) {
			out = append(out, &e)
		}
	}
	return out[:capLimit(len(out), limit)]
}

type accountLogRepo struct{ s *Store }

func (r accountLogRepo) Record(_ context.Context, entry *domain.AccountLogEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored := *entry
	stored.Details = copyMap(entry.Details)
	r.s.accountLogs = append(r.s.accountLogs, stored)
	return nil
}

func (r accountLogRepo) List(_ context.Context, limit int) ([]*domain.AccountLogEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*domain.AccountLogEntry
	for i := len(r.s.accountLogs) - 1; i >= 0; i-- {
		e := r.s.accountLogs[i]
		out = append(out, &e)
	}
	return out[:capLimit(len(out), limit)], nil
}

type notificationRepo struct{ s *Store }

func (r notificationRepo) Create(_ context.Context, n *domain.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.notifications[n.ID]; ok {
		return fmt.Errorf("memory.notificationRepo.Create: %w", domain.ErrConflict)
	}
	r.s.notifications[n.ID] = *n
	r.s.notifOrder = append(r.s.notifOrder, n.ID)
	return nil
}

func (r notificationRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n, ok := r.s.notifications[id]
	if !ok {
		return nil, fmt.Errorf("memory.notificationRepo.GetByID: %w", domain.ErrNotFound)
	}
	return &n, nil
}

func (r notificationRepo) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]*domain.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*domain.Notification
	for i := len(r.s.notifOrder) - 1; i >= 0; i-- {
		if n := r.s.notifications[r.s.notifOrder[i]]; n.UserID == userID {
			out = append(out, &n)
		}
	}
	return out[:capLimit(len(out), limit)], nil
}

func (r notificationRepo) CountUnread(_ context.Context, userID uuid.UUID) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	count := 0
	for _, n := range r.s.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r notificationRepo) MarkRead(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n, ok := r.s.notifications[id]
	if !ok {
		return fmt.Errorf("memory.notificationRepo.MarkRead: %w", domain.ErrNotFound)
	}
	n.IsRead = true
	r.s.notifications[id] = n
	return nil
}

func (r notificationRepo) MarkAllRead(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, n := range r.s.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			r.s.notifications[id] = n
		}
	}
	return nil
}
