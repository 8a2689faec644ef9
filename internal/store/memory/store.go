// Package memory is an in-process implementation of domain.Store. It backs
// FLOWBOARD_STORE=memory and the end-to-end tests.
package memory

import (
	"sync"

	"github.com/google/uuid"

	"github.com/gosuda/flowboard/internal/domain"
)

// Store keeps every table in maps guarded by one mutex. Slices record
// insertion order where listing order matters. Returned entities are copies.
type Store struct {
	mu sync.RWMutex

	users         map[uuid.UUID]domain.User
	userOrder     []uuid.UUID
	workspaces    map[uuid.UUID]domain.Workspace
	boards        map[uuid.UUID]domain.Board
	boardOrder    []uuid.UUID
	columns       map[uuid.UUID]domain.Column
	groups        map[uuid.UUID]domain.Group
	groupOrder    []uuid.UUID
	items         map[uuid.UUID]domain.Item
	itemOrder     []uuid.UUID
	columnValues  map[cellKey]domain.ColumnValue
	updates       []domain.Update
	automations   map[uuid.UUID]domain.Automation
	autoOrder     []uuid.UUID
	activity      []domain.ActivityEntry
	accountLogs   []domain.AccountLogEntry
	notifications map[uuid.UUID]domain.Notification
	notifOrder    []uuid.UUID
}

type cellKey struct {
	itemID   uuid.UUID
	columnID uuid.UUID
}

func New() *Store {
	return &Store{
		users:         make(map[uuid.UUID]domain.User),
		workspaces:    make(map[uuid.UUID]domain.Workspace),
		boards:        make(map[uuid.UUID]domain.Board),
		columns:       make(map[uuid.UUID]domain.Column),
		groups:        make(map[uuid.UUID]domain.Group),
		items:         make(map[uuid.UUID]domain.Item),
		columnValues:  make(map[cellKey]domain.ColumnValue),
		automations:   make(map[uuid.UUID]domain.Automation),
		notifications: make(map[uuid.UUID]domain.Notification),
	}
}

func (s *Store) Users() domain.UserRepository                 { return userRepo{s} }
func (s *Store) Workspaces() domain.WorkspaceRepository       { return workspaceRepo{s} }
func (s *Store) Boards() domain.BoardRepository               { return boardRepo{s} }
func (s *Store) Columns() domain.ColumnRepository             { return columnRepo{s} }
func (s *Store) Groups() domain.GroupRepository               { return groupRepo{s} }
func (s *Store) Items() domain.ItemRepository                 { return itemRepo{s} }
func (s *Store) ColumnValues() domain.ColumnValueRepository   { return columnValueRepo{s} }
func (s *Store) Updates() domain.UpdateRepository             { return updateRepo{s} }
func (s *Store) Automations() domain.AutomationRepository     { return automationRepo{s} }
func (s *Store) Activity() domain.ActivityRepository          { return activityRepo{s} }
func (s *Store) AccountLogs() domain.AccountLogRepository     { return accountLogRepo{s} }
func (s *Store) Notifications() domain.NotificationRepository { return notificationRepo{s} }

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func capLimit(n, limit int) int {
	if limit <= 0 || limit > n {
		return n
	}
	return limit
}
