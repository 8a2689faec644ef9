package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/flowboard/internal/domain"
)

type ActivityRepo struct {
	pool *pgxpool.Pool
}

func NewActivityRepo(pool *pgxpool.Pool) *ActivityRepo {
	return &ActivityRepo{pool: pool}
}

func (r *ActivityRepo) Record(ctx context.Context, entry *domain.ActivityEntry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("activityRepo.Record: marshal details: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO activity_logs (id, board_id, item_id, user_id, action, entity_type, entity_id, details, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entry.ID, entry.BoardID, entry.ItemID, entry.UserID,
		entry.Action, entry.EntityType, entry.EntityID,
		details, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("activityRepo.Record: %w", err)
	}

	return nil
}

func (r *ActivityRepo) ListByBoard(ctx context.Context, boardID uuid.UUID, limit int) ([]*domain.ActivityEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, board_id, item_id, user_id, action, entity_type, entity_id, details, created_at
		 FROM activity_logs WHERE board_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		boardID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("activityRepo.ListByBoard: %w", err)
	}
	defer rows.Close()

	return scanActivityEntries(rows, "activityRepo.ListByBoard")
}

func (r *ActivityRepo) ListByItem(ctx context.Context, itemID uuid.UUID, limit int) ([]*domain.ActivityEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, board_id, item_id, user_id, action, entity_type, entity_id, details, created_at
		 FROM activity_logs WHERE item_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		itemID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("activityRepo.ListByItem: %w", err)
	}
	defer rows.Close()

	return scanActivityEntries(rows, "activityRepo.ListByItem")
}

func scanActivityEntries(rows pgx.Rows, caller string) ([]*domain.ActivityEntry, error) {
	var entries []*domain.ActivityEntry
	for rows.Next() {
		var e domain.ActivityEntry
		var details []byte

		if err := rows.Scan(
			&e.ID, &e.BoardID, &e.ItemID, &e.UserID,
			&e.Action, &e.EntityType, &e.EntityID,
			&details, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}

		if len(details) > 0 {
			if err := json.Unmarshal(details, &e.Details); err != nil {
				return nil, fmt.Errorf("%s: unmarshal details: %w", caller, err)
			}
		}

		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return entries, nil
}

type AccountLogRepo struct {
	pool *pgxpool.Pool
}

func NewAccountLogRepo(pool *pgxpool.Pool) *AccountLogRepo {
	return &AccountLogRepo{pool: pool}
}

func (r *AccountLogRepo) Record(ctx context.Context, entry *domain.AccountLogEntry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("accountLogRepo.Record: marshal details: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO account_logs (id, user_id, action, entity_type, entity_id, details, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, entry.UserID, entry.Action, entry.EntityType, entry.EntityID,
		details, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("accountLogRepo.Record: %w", err)
	}

	return nil
}

func (r *AccountLogRepo) List(ctx context.Context, limit int) ([]*domain.AccountLogEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, action, entity_type, entity_id, details, created_at
		 FROM account_logs
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("accountLogRepo.List: %w", err)
	}
	defer rows.Close()

	var entries []*domain.AccountLogEntry
	for rows.Next() {
		var e domain.AccountLogEntry
		var details []byte

		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.EntityType, &e.EntityID, &details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("accountLogRepo.List: scan: %w", err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &e.Details); err != nil {
				return nil, fmt.Errorf("accountLogRepo.List: unmarshal details: %w", err)
			}
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("accountLogRepo.List: rows: %w", err)
	}

	return entries, nil
}
