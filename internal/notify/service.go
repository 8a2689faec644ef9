// Package notify stores user notifications and creates them from @mentions in
// item updates.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/flowboard/internal/domain"
	"github.com/gosuda/flowboard/internal/event"
)

// ListLimit bounds the notifications returned by List.
const ListLimit = 50

// Emitter publishes events to the bus.
type Emitter interface {
	Emit(ctx context.Context, ev event.Event) event.Report
}

// Service reads and writes a user's notifications. Every created
// notification is announced as notification.created.
type Service struct {
	repo domain.NotificationRepository
	bus  Emitter
	now  func() time.Time
}

func NewService(repo domain.NotificationRepository, bus Emitter) *Service {
	return &Service{repo: repo, bus: bus, now: time.Now}
}

// Create stores n and emits notification.created. ID and CreatedAt are set
// when zero.
func (s *Service) Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	if n.UserID == uuid.Nil {
		return nil, fmt.Errorf("notify.Service.Create: recipient required: %w", domain.ErrInvalidInput)
	}
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now()
	}
	if n.Type == "" {
		n.Type = domain.NotificationSystem
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("notify.Service.Create: %w", err)
	}

	s.bus.Emit(ctx, CreatedEvent(n))
	return n, nil
}

// CreatedEvent builds the notification.created payload for n.
func CreatedEvent(n *domain.Notification) event.NotificationCreated {
	return event.NotificationCreated{
		ID:         n.ID,
		UserID:     n.UserID,
		ActorID:    n.ActorID,
		Type:       string(n.Type),
		Message:    n.Message,
		EntityType: n.EntityType,
		EntityID:   n.EntityID,
		IsRead:     n.IsRead,
		CreatedAt:  n.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// List returns the newest notifications of a user.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error) {
	list, err := s.repo.ListByUser(ctx, userID, ListLimit)
	if err != nil {
		return nil, fmt.Errorf("notify.Service.List: %w", err)
	}
	return list, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	n, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("notify.Service.UnreadCount: %w", err)
	}
	return n, nil
}

// MarkRead marks one notification read and returns it. Only the recipient
// may mark it.
func (s *Service) MarkRead(ctx context.Context, userID, id uuid.UUID) (*domain.Notification, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("notify.Service.MarkRead: %w", err)
	}
	if n.UserID != userID {
		return nil, fmt.Errorf("notify.Service.MarkRead: %w", domain.ErrNotFound)
	}
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return nil, fmt.Errorf("notify.Service.MarkRead: %w", err)
	}
	n.IsRead = true
	return n, nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return fmt.Errorf("notify.Service.MarkAllRead: %w", err)
	}
	return nil
}
