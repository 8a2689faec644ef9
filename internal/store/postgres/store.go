package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/flowboard/internal/domain"
)

var _ domain.Store = (*Store)(nil)

//go:embed schema.sql
var schema string

type Store struct {
	pool          *pgxpool.Pool
	users         *UserRepo
	workspaces    *WorkspaceRepo
	boards        *BoardRepo
	columns       *ColumnRepo
	groups        *GroupRepo
	items         *ItemRepo
	columnValues  *ColumnValueRepo
	updates       *UpdateRepo
	automations   *AutomationRepo
	activity      *ActivityRepo
	accountLogs   *AccountLogRepo
	notifications *NotificationRepo
}

func New(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	return &Store{
		pool:          pool,
		users:         NewUserRepo(pool),
		workspaces:    NewWorkspaceRepo(pool),
		boards:        NewBoardRepo(pool),
		columns:       NewColumnRepo(pool),
		groups:        NewGroupRepo(pool),
		items:         NewItemRepo(pool),
		columnValues:  NewColumnValueRepo(pool),
		updates:       NewUpdateRepo(pool),
		automations:   NewAutomationRepo(pool),
		activity:      NewActivityRepo(pool),
		accountLogs:   NewAccountLogRepo(pool),
		notifications: NewNotificationRepo(pool),
	}, nil
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres.Store.Migrate: %w", err)
	}
	return nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Users() domain.UserRepository                 { return s.users }
func (s *Store) Workspaces() domain.WorkspaceRepository       { return s.workspaces }
func (s *Store) Boards() domain.BoardRepository               { return s.boards }
func (s *Store) Columns() domain.ColumnRepository             { return s.columns }
func (s *Store) Groups() domain.GroupRepository               { return s.groups }
func (s *Store) Items() domain.ItemRepository                 { return s.items }
func (s *Store) ColumnValues() domain.ColumnValueRepository   { return s.columnValues }
func (s *Store) Updates() domain.UpdateRepository             { return s.updates }
func (s *Store) Automations() domain.AutomationRepository     { return s.automations }
func (s *Store) Activity() domain.ActivityRepository          { return s.activity }
func (s *Store) AccountLogs() domain.AccountLogRepository     { return s.accountLogs }
func (s *Store) Notifications() domain.NotificationRepository { return s.notifications }
