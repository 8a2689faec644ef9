package domain

// Store groups the repositories of one backing database. Both the postgres
// and the in-memory stores implement it.
type Store interface {
	Users() UserRepository
	Workspaces() WorkspaceRepository
	Boards() BoardRepository
	Columns() ColumnRepository
	Groups() GroupRepository
	Items() ItemRepository
	ColumnValues() ColumnValueRepository
	Updates() UpdateRepository
	Automations() AutomationRepository
	Activity() ActivityRepository
	AccountLogs() AccountLogRepository
	Notifications() NotificationRepository
}
