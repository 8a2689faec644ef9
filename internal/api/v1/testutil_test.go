package v1_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/flowboard/internal/auth"
	"github.com/gosuda/flowboard/internal/automation"
	"github.com/gosuda/flowboard/internal/board"
	"github.com/gosuda/flowboard/internal/domain"
	"github.com/gosuda/flowboard/internal/event"
	"github.com/gosuda/flowboard/internal/server/middleware"
	"github.com/gosuda/flowboard/internal/store/memory"
)

// ---------------------------------------------------------------------------
// Context helpers: inject the authenticated user for DoCtx
// ---------------------------------------------------------------------------

func userCtx(userID uuid.UUID) context.Context {
	return middleware.WithUser(context.Background(), userID, false)
}

// ---------------------------------------------------------------------------
// Board service over the in-memory store
// ---------------------------------------------------------------------------

type recordingEmitter struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *recordingEmitter) Emit(_ context.Context, ev event.Event) event.Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return event.Report{}
}

func (r *recordingEmitter) names() []event.Name {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]event.Name, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.EventName())
	}
	return out
}

func newBoardService() (*board.Service, *memory.Store, *recordingEmitter) {
	store := memory.New()
	rec := &recordingEmitter{}
	return board.NewService(store, rec), store, rec
}

// seedBoard creates a board with its default layout through a separate
// service, so the caller's emitter sees none of the setup events.
func seedBoard(t *testing.T, store *memory.Store) *board.Detail {
	t.Helper()
	svc := board.NewService(store, &recordingEmitter{})
	w, err := svc.CreateWorkspace(t.Context(), "Seed", nil)
	require.NoError(t, err)
	b, err := svc.CreateBoard(t.Context(), w.ID, "Seed board", nil)
	require.NoError(t, err)
	d, err := svc.GetBoard(t.Context(), b.ID)
	require.NoError(t, err)
	return d
}

// ---------------------------------------------------------------------------
// Mock AuthService
// ---------------------------------------------------------------------------

type mockAuthService struct {
	registerFunc     func(ctx context.Context, email, password, name string) (*domain.User, error)
	loginFunc        func(ctx context.Context, email, password string) (*domain.User, auth.Tokens, error)
	refreshTokenFunc func(ctx context.Context, refreshToken string) (string, error)
}

func (m *mockAuthService) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	return m.registerFunc(ctx, email, password, name)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*domain.User, auth.Tokens, error) {
	return m.loginFunc(ctx, email, password)
}

func (m *mockAuthService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	return m.refreshTokenFunc(ctx, refreshToken)
}

// ---------------------------------------------------------------------------
// Mock AutomationService
// ---------------------------------------------------------------------------

type mockAutomationService struct {
	createFunc      func(ctx context.Context, in automation.CreateInput) (*domain.Automation, error)
	listByBoardFunc func(ctx context.Context, boardID uuid.UUID) ([]*domain.Automation, error)
	setActiveFunc   func(ctx context.Context, id uuid.UUID, active bool) (*domain.Automation, error)
}

func (m *mockAutomationService) Create(ctx context.Context, in automation.CreateInput) (*domain.Automation, error) {
	return m.createFunc(ctx, in)
}

func (m *mockAutomationService) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.Automation, error) {
	return m.listByBoardFunc(ctx, boardID)
}

func (m *mockAutomationService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*domain.Automation, error) {
	return m.setActiveFunc(ctx, id, active)
}

// ---------------------------------------------------------------------------
// Mock activity services
// ---------------------------------------------------------------------------

type mockActivityService struct {
	logsFunc     func(ctx context.Context, boardID uuid.UUID, limit int) ([]*domain.ActivityEntry, error)
	itemLogsFunc func(ctx context.Context, itemID uuid.UUID, limit int) ([]*domain.ActivityEntry, error)
}

func (m *mockActivityService) Logs(ctx context.Context, boardID uuid.UUID, limit int) ([]*domain.ActivityEntry, error) {
	return m.logsFunc(ctx, boardID, limit)
}

func (m *mockActivityService) ItemLogs(ctx context.Context, itemID uuid.UUID, limit int) ([]*domain.ActivityEntry, error) {
	return m.itemLogsFunc(ctx, itemID, limit)
}

type mockAccountLogService struct {
	logsFunc func(ctx context.Context, limit int) ([]*domain.AccountLogEntry, error)
}

func (m *mockAccountLogService) Logs(ctx context.Context, limit int) ([]*domain.AccountLogEntry, error) {
	return m.logsFunc(ctx, limit)
}

// ---------------------------------------------------------------------------
// Mock NotificationService
// ---------------------------------------------------------------------------

type mockNotificationService struct {
	createFunc      func(ctx context.Context, n *domain.Notification) (*domain.Notification, error)
	listFunc        func(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error)
	unreadCountFunc func(ctx context.Context, userID uuid.UUID) (int, error)
	markReadFunc    func(ctx context.Context, userID, id uuid.UUID) (*domain.Notification, error)
	markAllReadFunc func(ctx context.Context, userID uuid.UUID) error
}

func (m *mockNotificationService) Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	return m.createFunc(ctx, n)
}

func (m *mockNotificationService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error) {
	return m.listFunc(ctx, userID)
}

func (m *mockNotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return m.unreadCountFunc(ctx, userID)
}

func (m *mockNotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) (*domain.Notification, error) {
	return m.markReadFunc(ctx, userID, id)
}

func (m *mockNotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return m.markAllReadFunc(ctx, userID)
}
