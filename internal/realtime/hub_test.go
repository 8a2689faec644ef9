package realtime_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/flowboard/internal/event"
	"github.com/gosuda/flowboard/internal/realtime"
	redisstore "github.com/gosuda/flowboard/internal/store/redis"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.CloseNow() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) realtime.Message {
	t.Helper()

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	typ, data, err := conn.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, websocket.MessageText, typ)

	var msg realtime.Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func join(t *testing.T, conn *websocket.Conn, req realtime.JoinRequest) realtime.Message {
	t.Helper()

	b, err := json.Marshal(req)
	require.NoError(t, err)
	require.NoError(t, conn.Write(t.Context(), websocket.MessageText, b))
	return readMessage(t, conn)
}

func TestHub_JoinAndReceive(t *testing.T) {
	t.Parallel()

	hub := realtime.NewHub()
	srv := httptest.NewServer(httpHandler(hub))
	t.Cleanup(srv.Close)

	boardID := uuid.New()
	room := realtime.BoardRoom(boardID)

	conn := dial(t, srv)
	ack := join(t, conn, realtime.JoinRequest{Type: realtime.JoinBoard, BoardID: boardID.String()})
	assert.Equal(t, "joinedBoard", ack.Event)
	assert.Equal(t, room, ack.Data)
	assert.Equal(t, 1, hub.Members(room))

	relay := realtime.NewRelay(hub)
	itemID := uuid.New()
	require.NoError(t, relay.Handle(t.Context(), event.ItemCreated{ID: itemID, BoardID: boardID}))

	msg := readMessage(t, conn)
	assert.Equal(t, "item.created", msg.Event)
	data, ok := msg.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, itemID.String(), data["id"])
	assert.Equal(t, boardID.String(), data["board_id"])
}

func TestHub_RoomsAreIsolated(t *testing.T) {
	t.Parallel()

	boardA, boardB, userID := uuid.New(), uuid.New(), uuid.New()

	hub := realtime.NewHub()
	srv := httptest.NewServer(httpHandlerAs(hub, userID))
	t.Cleanup(srv.Close)

	connA := dial(t, srv)
	join(t, connA, realtime.JoinRequest{Type: realtime.JoinBoard, BoardID: boardA.String()})

	connB := dial(t, srv)
	join(t, connB, realtime.JoinRequest{Type: realtime.JoinBoard, BoardID: boardB.String()})
	ack := join(t, connB, realtime.JoinRequest{Type: realtime.JoinUser, UserID: userID.String()})
	assert.Equal(t, "joinedUser", ack.Event)

	relay := realtime.NewRelay(hub)
	require.NoError(t, relay.Handle(t.Context(), event.ItemArchived{ID: uuid.New(), BoardID: boardB}))
	require.NoError(t, relay.Handle(t.Context(), event.NotificationCreated{ID: uuid.New(), UserID: userID}))
	require.NoError(t, relay.Handle(t.Context(), event.ItemDeleted{ID: uuid.New(), BoardID: boardA}))

	assert.Equal(t, "item.archived", readMessage(t, connB).Event)
	assert.Equal(t, "notification.created", readMessage(t, connB).Event)

	// connA only ever sees its own board.
	assert.Equal(t, "item.deleted", readMessage(t, connA).Event)
}

func TestHub_JoinUserOnlyOwnRoom(t *testing.T) {
	t.Parallel()

	userA, userB := uuid.New(), uuid.New()
	boardID := uuid.New()

	tests := []struct {
		name    string
		handler func(hub *realtime.Hub) http.Handler
	}{
		{"other user", func(hub *realtime.Hub) http.Handler { return httpHandlerAs(hub, userA) }},
		{"anonymous", httpHandler},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hub := realtime.NewHub()
			srv := httptest.NewServer(tt.handler(hub))
			t.Cleanup(srv.Close)

			conn := dial(t, srv)
			b, err := json.Marshal(realtime.JoinRequest{Type: realtime.JoinUser, UserID: userB.String()})
			require.NoError(t, err)
			require.NoError(t, conn.Write(t.Context(), websocket.MessageText, b))

			// frames are handled in order, so this ack follows the rejected join
			ack := join(t, conn, realtime.JoinRequest{Type: realtime.JoinBoard, BoardID: boardID.String()})
			assert.Equal(t, "joinedBoard", ack.Event)
			assert.Equal(t, 0, hub.Members(realtime.UserRoom(userB)))

			relay := realtime.NewRelay(hub)
			require.NoError(t, relay.Handle(t.Context(), event.NotificationCreated{ID: uuid.New(), UserID: userB}))
			require.NoError(t, relay.Handle(t.Context(), event.ItemDeleted{ID: uuid.New(), BoardID: boardID}))
			assert.Equal(t, "item.deleted", readMessage(t, conn).Event)
		})
	}
}

func TestHub_JoinUserOwnRoom(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	hub := realtime.NewHub()
	srv := httptest.NewServer(httpHandlerAs(hub, userID))
	t.Cleanup(srv.Close)

	conn := dial(t, srv)
	ack := join(t, conn, realtime.JoinRequest{Type: realtime.JoinUser, UserID: userID.String()})
	assert.Equal(t, "joinedUser", ack.Event)
	assert.Equal(t, 1, hub.Members(realtime.UserRoom(userID)))
}

func TestHub_IgnoresBadFrames(t *testing.T) {
	t.Parallel()

	hub := realtime.NewHub()
	srv := httptest.NewServer(httpHandler(hub))
	t.Cleanup(srv.Close)

	conn := dial(t, srv)
	require.NoError(t, conn.Write(t.Context(), websocket.MessageText, []byte("not json")))
	require.NoError(t, conn.Write(t.Context(), websocket.MessageText, []byte(`{"type":"joinBoard","boardId":"nope"}`)))

	boardID := uuid.New()
	ack := join(t, conn, realtime.JoinRequest{Type: realtime.JoinBoard, BoardID: boardID.String()})
	assert.Equal(t, "joinedBoard", ack.Event)
	assert.Equal(t, 1, hub.Members(realtime.BoardRoom(boardID)))
}

func TestHub_MembershipRemovedOnClose(t *testing.T) {
	t.Parallel()

	hub := realtime.NewHub()
	srv := httptest.NewServer(httpHandler(hub))
	t.Cleanup(srv.Close)

	boardID := uuid.New()
	room := realtime.BoardRoom(boardID)

	conn := dial(t, srv)
	join(t, conn, realtime.JoinRequest{Type: realtime.JoinBoard, BoardID: boardID.String()})
	require.Equal(t, 1, hub.Members(room))

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, "bye"))

	assert.Eventually(t, func() bool {
		return hub.Members(room) == 0 && hub.Clients() == 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestHub_BroadcastToEmptyRoom(t *testing.T) {
	t.Parallel()

	hub := realtime.NewHub()
	assert.NoError(t, hub.Broadcast(t.Context(), realtime.BoardRoom(uuid.New()), []byte(`{}`)))
}

// --- redis bridge ---

type fakeSub struct {
	messages chan redisstore.Message
	err      error
}

type fakePubSub struct {
	mu        sync.Mutex
	published []sent
	subs      []fakeSub
	patterns  []string
	calls     int
	cleanups  int
}

func (f *fakePubSub) Publish(_ context.Context, channel string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, sent{room: channel, msg: payload})
	return nil
}

func (f *fakePubSub) PSubscribe(_ context.Context, patterns ...string) (<-chan redisstore.Message, func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.patterns = patterns
	if len(f.subs) == 0 {
		return nil, nil, errors.New("redis unavailable")
	}
	s := f.subs[0]
	f.subs = f.subs[1:]
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.messages, func() {
		f.mu.Lock()
		f.cleanups++
		f.mu.Unlock()
	}, nil
}

func (f *fakePubSub) snapshot() (calls, cleanups int, patterns []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls, f.cleanups, f.patterns
}

func (f *fakeBroadcaster) rooms() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, s := range f.sent {
		out = append(out, s.room)
	}
	return out
}

// runBridge starts b and returns a func that stops it and waits for Run to
// return.
func runBridge(t *testing.T, b *realtime.Bridge) func() {
	t.Helper()

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan struct{})
	go func() {
		defer close(done)
		b.Run(ctx)
	}()

	stop := func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("bridge did not stop")
		}
	}
	t.Cleanup(cancel)
	return stop
}

func TestRedisBroadcaster_PublishesToRoomChannel(t *testing.T) {
	t.Parallel()

	ps := &fakePubSub{}
	room := realtime.BoardRoom(uuid.New())
	require.NoError(t, realtime.NewRedisBroadcaster(ps).Broadcast(t.Context(), room, []byte("x")))

	require.Len(t, ps.published, 1)
	assert.Equal(t, room, ps.published[0].room)
}

func TestBridge_FeedsLocalBroadcaster(t *testing.T) {
	t.Parallel()

	messages := make(chan redisstore.Message, 1)
	ps := &fakePubSub{subs: []fakeSub{{messages: messages}}}
	local := &fakeBroadcaster{}
	room := realtime.UserRoom(uuid.New())

	stop := runBridge(t, realtime.NewBridge(ps, local))
	messages <- redisstore.Message{Channel: room, Payload: []byte(`{"event":"notification.created"}`)}

	require.Eventually(t, func() bool { return len(local.rooms()) == 1 }, 5*time.Second, 10*time.Millisecond)
	stop()

	calls, cleanups, patterns := ps.snapshot()
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, cleanups)
	assert.Equal(t, []string{redisstore.BoardPattern, redisstore.UserPattern}, patterns)
	assert.Equal(t, []string{room}, local.rooms())
}

func TestBridge_DropsUndecodableFrames(t *testing.T) {
	t.Parallel()

	boardRoom := realtime.BoardRoom(uuid.New())
	userRoom := realtime.UserRoom(uuid.New())

	messages := make(chan redisstore.Message, 4)
	messages <- redisstore.Message{Channel: boardRoom, Payload: []byte(`not json`)}
	messages <- redisstore.Message{Channel: boardRoom, Payload: []byte(`{"event":"item.exploded","data":{}}`)}
	messages <- redisstore.Message{Channel: boardRoom, Payload: []byte(`{"event":"item.created","data":{"board_id":42}}`)}
	messages <- redisstore.Message{Channel: userRoom, Payload: []byte(`{"event":"notification.created","data":{}}`)}

	ps := &fakePubSub{subs: []fakeSub{{messages: messages}}}
	local := &fakeBroadcaster{}

	stop := runBridge(t, realtime.NewBridge(ps, local))
	require.Eventually(t, func() bool { return len(local.rooms()) == 1 }, 5*time.Second, 10*time.Millisecond)
	stop()

	assert.Equal(t, []string{userRoom}, local.rooms())

	local.mu.Lock()
	defer local.mu.Unlock()
	var frame struct {
		Event string `json:"event"`
	}
	require.NoError(t, json.Unmarshal(local.sent[0].msg, &frame))
	assert.Equal(t, string(event.NameNotificationCreated), frame.Event)
}

func TestBridge_Resubscribes(t *testing.T) {
	t.Parallel()

	first := make(chan redisstore.Message)
	second := make(chan redisstore.Message, 1)
	room := realtime.BoardRoom(uuid.New())

	ps := &fakePubSub{subs: []fakeSub{
		{err: errors.New("connection refused")},
		{messages: first},
		{messages: second},
	}}
	local := &fakeBroadcaster{}

	stop := runBridge(t, realtime.NewBridge(ps, local, realtime.WithRetryInterval(time.Millisecond, time.Millisecond)))

	// the second attempt succeeds and then its channel is dropped
	require.Eventually(t, func() bool {
		calls, _, _ := ps.snapshot()
		return calls >= 2
	}, 5*time.Second, time.Millisecond)
	close(first)

	second <- redisstore.Message{Channel: room, Payload: []byte(`{"event":"item.deleted","data":{}}`)}
	require.Eventually(t, func() bool { return len(local.rooms()) == 1 }, 5*time.Second, 10*time.Millisecond)
	stop()

	calls, cleanups, _ := ps.snapshot()
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, cleanups)
	assert.Equal(t, []string{room}, local.rooms())
}
