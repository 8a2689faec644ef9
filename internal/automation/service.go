package automation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/flowboard/internal/domain"
)

// CreateInput describes a new automation. Conditions are raw JSON in the
// persisted {column_id, op, value} shape.
type CreateInput struct {
	BoardID      uuid.UUID
	Trigger      string
	Conditions   json.RawMessage
	Action       string
	ActionParams map[string]any
}

// Service manages automation definitions.
type Service struct {
	repo domain.AutomationRepository
}

func NewService(repo domain.AutomationRepository) *Service {
	return &Service{repo: repo}
}

// Create validates and stores a new automation. New automations are always
// active. Unknown trigger and action names are accepted and simply never
// fire, or fire as a no-op.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Automation, error) {
	if in.BoardID == uuid.Nil {
		return nil, fmt.Errorf("automation.Service.Create: board_id required: %w", domain.ErrInvalidInput)
	}
	trigger := strings.TrimSpace(in.Trigger)
	if trigger == "" {
		return nil, fmt.Errorf("automation.Service.Create: trigger required: %w", domain.ErrInvalidInput)
	}
	action := strings.TrimSpace(in.Action)
	if action == "" {
		return nil, fmt.Errorf("automation.Service.Create: action required: %w", domain.ErrInvalidInput)
	}

	conditions, err := domain.ParseConditions(in.Conditions)
	if err != nil {
		return nil, fmt.Errorf("automation.Service.Create: %w", err)
	}

	params := in.ActionParams
	if params == nil {
		params = map[string]any{}
	}

	a := &domain.Automation{
		ID:           uuid.New(),
		BoardID:      in.BoardID,
		Trigger:      domain.Trigger(trigger),
		Conditions:   conditions,
		Action:       action,
		ActionParams: params,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("automation.Service.Create: %w", err)
	}
	return a, nil
}

func (s *Service) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.Automation, error) {
	automations, err := s.repo.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("automation.Service.ListByBoard: %w", err)
	}
	return automations, nil
}

// SetActive enables or soft-disables an automation and returns its new state.
func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) (*domain.Automation, error) {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return nil, fmt.Errorf("automation.Service.SetActive: %w", err)
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("automation.Service.SetActive: %w", err)
	}
	return a, nil
}
