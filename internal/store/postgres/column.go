package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/flowboard/internal/domain"
)

type ColumnRepo struct {
	pool *pgxpool.Pool
}

func NewColumnRepo(pool *pgxpool.Pool) *ColumnRepo {
	return &ColumnRepo{pool: pool}
}

func (r *ColumnRepo) Create(ctx context.Context, c *domain.Column) error {
	settings, err := json.Marshal(c.Settings)
	if err != nil {
		return fmt.Errorf("columnRepo.Create: marshal settings: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO board_columns (id, board_id, type, title, settings, position, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.BoardID, c.Type, c.Title, settings, c.Position, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("columnRepo.Create: %w", err)
	}

	return nil
}

func (r *ColumnRepo) GetByID(ctx context.Context, boardID, id uuid.UUID) (*domain.Column, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, board_id, type, title, settings, position, created_at
		 FROM board_columns WHERE board_id = $1 AND id = $2`,
		boardID, id,
	)
	if err != nil {
		return nil, fmt.Errorf("columnRepo.GetByID: %w", err)
	}
	defer rows.Close()

	columns, err := scanColumns(rows, "columnRepo.GetByID")
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("columnRepo.GetByID: %w", domain.ErrNotFound)
	}

	return columns[0], nil
}

func (r *ColumnRepo) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.Column, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, board_id, type, title, settings, position, created_at
		 FROM board_columns WHERE board_id = $1
		 ORDER BY position, created_at`,
		boardID,
	)
	if err != nil {
		return nil, fmt.Errorf("columnRepo.ListByBoard: %w", err)
	}
	defer rows.Close()

	return scanColumns(rows, "columnRepo.ListByBoard")
}

func (r *ColumnRepo) CountByBoard(ctx context.Context, boardID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM board_columns WHERE board_id = $1`,
		boardID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("columnRepo.CountByBoard: %w", err)
	}
	return n, nil
}

// Reorder writes every position in one batch.
func (r *ColumnRepo) Reorder(ctx context.Context, boardID uuid.UUID, ids []uuid.UUID) error {
	batch := &pgx.Batch{}
	for i, id := range ids {
		batch.Queue(`UPDATE board_columns SET position = $1 WHERE board_id = $2 AND id = $3`, i, boardID, id)
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("columnRepo.Reorder: %w", err)
	}
	return nil
}

func (r *ColumnRepo) Delete(ctx context.Context, boardID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM board_columns WHERE board_id = $1 AND id = $2`,
		boardID, id,
	)
	if err != nil {
		return fmt.Errorf("columnRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("columnRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func scanColumns(rows pgx.Rows, caller string) ([]*domain.Column, error) {
	var columns []*domain.Column
	for rows.Next() {
		var c domain.Column
		var settings []byte

		if err := rows.Scan(&c.ID, &c.BoardID, &c.Type, &c.Title, &settings, &c.Position, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		if len(settings) > 0 {
			if err := json.Unmarshal(settings, &c.Settings); err != nil {
				return nil, fmt.Errorf("%s: unmarshal settings: %w", caller, err)
			}
		}

		columns = append(columns, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return columns, nil
}

type GroupRepo struct {
	pool *pgxpool.Pool
}

func NewGroupRepo(pool *pgxpool.Pool) *GroupRepo {
	return &GroupRepo{pool: pool}
}

func (r *GroupRepo) Create(ctx context.Context, g *domain.Group) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO board_groups (id, board_id, name, position)
		 VALUES ($1, $2, $3, $4)`,
		g.ID, g.BoardID, g.Name, g.Position,
	)
	if err != nil {
		return fmt.Errorf("groupRepo.Create: %w", err)
	}

	return nil
}

func (r *GroupRepo) GetByID(ctx context.Context, boardID, id uuid.UUID) (*domain.Group, error) {
	var g domain.Group

	err := r.pool.QueryRow(ctx,
		`SELECT id, board_id, name, position
		 FROM board_groups WHERE board_id = $1 AND id = $2`,
		boardID, id,
	).Scan(&g.ID, &g.BoardID, &g.Name, &g.Position)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("groupRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("groupRepo.GetByID: %w", err)
	}

	return &g, nil
}

func (r *GroupRepo) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.Group, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, board_id, name, position
		 FROM board_groups WHERE board_id = $1
		 ORDER BY position, id`,
		boardID,
	)
	if err != nil {
		return nil, fmt.Errorf("groupRepo.ListByBoard: %w", err)
	}
	defer rows.Close()

	var groups []*domain.Group
	for rows.Next() {
		var g domain.Group
		if err := rows.Scan(&g.ID, &g.BoardID, &g.Name, &g.Position); err != nil {
			return nil, fmt.Errorf("groupRepo.ListByBoard: scan: %w", err)
		}
		groups = append(groups, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("groupRepo.ListByBoard: rows: %w", err)
	}

	return groups, nil
}

func (r *GroupRepo) CountByBoard(ctx context.Context, boardID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM board_groups WHERE board_id = $1`,
		boardID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("groupRepo.CountByBoard: %w", err)
	}
	return n, nil
}

func (r *GroupRepo) Update(ctx context.Context, g *domain.Group) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE board_groups SET name = $1, position = $2 WHERE board_id = $3 AND id = $4`,
		g.Name, g.Position, g.BoardID, g.ID,
	)
	if err != nil {
		return fmt.Errorf("groupRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("groupRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

// Delete maps the items foreign key violation to ErrConflict.
func (r *GroupRepo) Delete(ctx context.Context, boardID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM board_groups WHERE board_id = $1 AND id = $2`,
		boardID, id,
	)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("groupRepo.Delete: group has items: %w", domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("groupRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("groupRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}
