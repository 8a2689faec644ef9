package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/flowboard/internal/domain"
)

type AutomationRepo struct {
	pool *pgxpool.Pool
}

func NewAutomationRepo(pool *pgxpool.Pool) *AutomationRepo {
	return &AutomationRepo{pool: pool}
}

func (r *AutomationRepo) Create(ctx context.Context, a *domain.Automation) error {
	conditions, err := json.Marshal(a.Conditions)
	if err != nil {
		return fmt.Errorf("automationRepo.Create: marshal conditions: %w", err)
	}
	params, err := json.Marshal(a.ActionParams)
	if err != nil {
		return fmt.Errorf("automationRepo.Create: marshal action params: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO automations (id, board_id, trigger, conditions, action, action_params, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.BoardID, a.Trigger, conditions, a.Action, params, a.IsActive, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("automationRepo.Create: %w", err)
	}

	return nil
}

func (r *AutomationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Automation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, board_id, trigger, conditions, action, action_params, is_active, created_at
		 FROM automations WHERE id = $1`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("automationRepo.GetByID: %w", err)
	}
	defer rows.Close()

	automations, err := scanAutomations(rows, "automationRepo.GetByID", false)
	if err != nil {
		return nil, err
	}
	if len(automations) == 0 {
		return nil, fmt.Errorf("automationRepo.GetByID: %w", domain.ErrNotFound)
	}

	return automations[0], nil
}

func (r *AutomationRepo) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.Automation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, board_id, trigger, conditions, action, action_params, is_active, created_at
		 FROM automations WHERE board_id = $1
		 ORDER BY created_at, id`,
		boardID,
	)
	if err != nil {
		return nil, fmt.Errorf("automationRepo.ListByBoard: %w", err)
	}
	defer rows.Close()

	return scanAutomations(rows, "automationRepo.ListByBoard", true)
}

func (r *AutomationRepo) ListActive(ctx context.Context, boardID uuid.UUID, trigger domain.Trigger) ([]*domain.Automation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, board_id, trigger, conditions, action, action_params, is_active, created_at
		 FROM automations WHERE board_id = $1 AND trigger = $2 AND is_active
		 ORDER BY created_at, id`,
		boardID, trigger,
	)
	if err != nil {
		return nil, fmt.Errorf("automationRepo.ListActive: %w", err)
	}
	defer rows.Close()

	return scanAutomations(rows, "automationRepo.ListActive", true)
}

func (r *AutomationRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE automations SET is_active = $1 WHERE id = $2`,
		active, id,
	)
	if err != nil {
		return fmt.Errorf("automationRepo.SetActive: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("automationRepo.SetActive: %w", domain.ErrNotFound)
	}

	return nil
}

// rowScanner is the part of pgx.Rows that scanAutomations reads.
type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// scanAutomations reads automation rows. With skipInvalid, a row whose stored
// conditions or params no longer parse is logged and left out so the rest of
// the board's automations keep firing.
func scanAutomations(rows rowScanner, caller string, skipInvalid bool) ([]*domain.Automation, error) {
	var automations []*domain.Automation
	for rows.Next() {
		var a domain.Automation
		var conditions, params []byte

		if err := rows.Scan(&a.ID, &a.BoardID, &a.Trigger, &conditions, &a.Action, &params, &a.IsActive, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}

		if err := decodeAutomation(&a, conditions, params); err != nil {
			if !skipInvalid {
				return nil, fmt.Errorf("%s: %w", caller, err)
			}
			log.Error().Err(err).Str("automation_id", a.ID.String()).Str("board_id", a.BoardID.String()).
				Msgf("%s: skipping unreadable automation", caller)
			continue
		}

		automations = append(automations, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return automations, nil
}

func decodeAutomation(a *domain.Automation, conditions, params []byte) error {
	parsed, err := domain.ParseConditions(conditions)
	if err != nil {
		return fmt.Errorf("automation %s: %w", a.ID, err)
	}
	a.Conditions = parsed

	if len(params) > 0 {
		if err := json.Unmarshal(params, &a.ActionParams); err != nil {
			return fmt.Errorf("automation %s: unmarshal action params: %w", a.ID, err)
		}
	}
	return nil
}
