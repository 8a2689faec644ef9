package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/flowboard/internal/domain"
)

type ItemRepo struct {
	pool *pgxpool.Pool
}

func NewItemRepo(pool *pgxpool.Pool) *ItemRepo {
	return &ItemRepo{pool: pool}
}

const itemColumns = `id, board_id, group_id, parent_item_id, name, position, created_by,
		        description, task_type, created_at, updated_at, archived_at`

func (r *ItemRepo) Create(ctx context.Context, it *domain.Item) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO items (`+itemColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		it.ID, it.BoardID, it.GroupID, it.ParentItemID, it.Name, it.Position, it.CreatedBy,
		nilIfEmpty(it.Description), it.TaskType, it.CreatedAt, it.UpdatedAt, it.ArchivedAt,
	)
	if err != nil {
		return fmt.Errorf("itemRepo.Create: %w", err)
	}

	return nil
}

func (r *ItemRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = $1`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("itemRepo.GetByID: %w", err)
	}
	defer rows.Close()

	items, err := scanItems(rows, "itemRepo.GetByID")
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("itemRepo.GetByID: %w", domain.ErrNotFound)
	}

	return items[0], nil
}

// ListByBoard returns the board's unarchived items ordered by group and
// position.
func (r *ItemRepo) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.Item, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+itemColumns+` FROM items
		 WHERE board_id = $1 AND archived_at IS NULL
		 ORDER BY group_id, position, created_at
		 LIMIT 1000`,
		boardID,
	)
	if err != nil {
		return nil, fmt.Errorf("itemRepo.ListByBoard: %w", err)
	}
	defer rows.Close()

	return scanItems(rows, "itemRepo.ListByBoard")
}

func (r *ItemRepo) CountByGroup(ctx context.Context, groupID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM items WHERE group_id = $1`,
		groupID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("itemRepo.CountByGroup: %w", err)
	}

	return n, nil
}

func (r *ItemRepo) Update(ctx context.Context, it *domain.Item) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE items SET group_id = $1, parent_item_id = $2, name = $3, position = $4,
		        description = $5, task_type = $6, updated_at = $7
		 WHERE id = $8`,
		it.GroupID, it.ParentItemID, it.Name, it.Position,
		nilIfEmpty(it.Description), it.TaskType, it.UpdatedAt, it.ID,
	)
	if err != nil {
		return fmt.Errorf("itemRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("itemRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

// SetArchived sets archived_at unconditionally; archiving an archived item
// refreshes the timestamp.
func (r *ItemRepo) SetArchived(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE items SET archived_at = $1, updated_at = $1 WHERE id = $2`,
		at, id,
	)
	if err != nil {
		return fmt.Errorf("itemRepo.SetArchived: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("itemRepo.SetArchived: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *ItemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("itemRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("itemRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func scanItems(rows pgx.Rows, caller string) ([]*domain.Item, error) {
	var items []*domain.Item
	for rows.Next() {
		var it domain.Item
		var description *string
		if err := rows.Scan(
			&it.ID, &it.BoardID, &it.GroupID, &it.ParentItemID, &it.Name, &it.Position, &it.CreatedBy,
			&description, &it.TaskType, &it.CreatedAt, &it.UpdatedAt, &it.ArchivedAt,
		); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		it.Description = derefStr(description)
		items = append(items, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return items, nil
}

type ColumnValueRepo struct {
	pool *pgxpool.Pool
}

func NewColumnValueRepo(pool *pgxpool.Pool) *ColumnValueRepo {
	return &ColumnValueRepo{pool: pool}
}

func (r *ColumnValueRepo) Get(ctx context.Context, itemID, columnID uuid.UUID) (*domain.ColumnValue, error) {
	var cv domain.ColumnValue
	var raw []byte

	err := r.pool.QueryRow(ctx,
		`SELECT id, item_id, column_id, value, updated_at
		 FROM column_values WHERE item_id = $1 AND column_id = $2`,
		itemID, columnID,
	).Scan(&cv.ID, &cv.ItemID, &cv.ColumnID, &raw, &cv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("columnValueRepo.Get: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("columnValueRepo.Get: %w", err)
	}

	if cv.Value, err = domain.ParseValue(raw); err != nil {
		return nil, fmt.Errorf("columnValueRepo.Get: %w", err)
	}

	return &cv, nil
}

// Upsert writes the value for (item, column), replacing any previous one.
func (r *ColumnValueRepo) Upsert(ctx context.Context, cv *domain.ColumnValue) error {
	raw, err := domain.MarshalValue(cv.Value)
	if err != nil {
		return fmt.Errorf("columnValueRepo.Upsert: marshal value: %w", err)
	}

	err = r.pool.QueryRow(ctx,
		`INSERT INTO column_values (id, item_id, column_id, value, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (item_id, column_id) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
		 RETURNING id`,
		cv.ID, cv.ItemID, cv.ColumnID, raw, cv.UpdatedAt,
	).Scan(&cv.ID)
	if err != nil {
		return fmt.Errorf("columnValueRepo.Upsert: %w", err)
	}

	return nil
}

func (r *ColumnValueRepo) ListByItem(ctx context.Context, itemID uuid.UUID) ([]*domain.ColumnValue, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, item_id, column_id, value, updated_at
		 FROM column_values WHERE item_id = $1
		 ORDER BY column_id`,
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("columnValueRepo.ListByItem: %w", err)
	}
	defer rows.Close()

	var values []*domain.ColumnValue
	for rows.Next() {
		var cv domain.ColumnValue
		var raw []byte
		if err := rows.Scan(&cv.ID, &cv.ItemID, &cv.ColumnID, &raw, &cv.UpdatedAt); err != nil {
			return nil, fmt.Errorf("columnValueRepo.ListByItem: scan: %w", err)
		}
		if cv.Value, err = domain.ParseValue(raw); err != nil {
			return nil, fmt.Errorf("columnValueRepo.ListByItem: %w", err)
		}
		values = append(values, &cv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("columnValueRepo.ListByItem: rows: %w", err)
	}

	return values, nil
}

type UpdateRepo struct {
	pool *pgxpool.Pool
}

func NewUpdateRepo(pool *pgxpool.Pool) *UpdateRepo {
	return &UpdateRepo{pool: pool}
}

func (r *UpdateRepo) Create(ctx context.Context, u *domain.Update) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO updates (id, item_id, user_id, content, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.ItemID, u.UserID, u.Content, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("updateRepo.Create: %w", err)
	}

	return nil
}

func (r *UpdateRepo) ListByItem(ctx context.Context, itemID uuid.UUID) ([]*domain.Update, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, item_id, user_id, content, created_at
		 FROM updates WHERE item_id = $1
		 ORDER BY created_at DESC`,
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("updateRepo.ListByItem: %w", err)
	}
	defer rows.Close()

	var updates []*domain.Update
	for rows.Next() {
		var u domain.Update
		if err := rows.Scan(&u.ID, &u.ItemID, &u.UserID, &u.Content, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("updateRepo.ListByItem: scan: %w", err)
		}
		updates = append(updates, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("updateRepo.ListByItem: rows: %w", err)
	}

	return updates, nil
}
