package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/flowboard/internal/server/middleware"
)

const defaultSendBuffer = 64

type client struct {
	// userID is the authenticated caller; uuid.Nil when the request carried
	// no identity. Only that user's room may be joined.
	userID uuid.UUID

	conn  *websocket.Conn
	send  chan []byte
	rooms map[string]struct{} // guarded by Hub.mu
}

// Hub holds the websocket clients of this process and their room
// memberships. Delivery is at-most-once: a client whose send buffer is full
// misses the message.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[*client]struct{}
	clients map[*client]struct{}

	sendBuffer    int
	acceptOptions *websocket.AcceptOptions
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithSendBuffer sets the per-client send buffer size.
func WithSendBuffer(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.sendBuffer = n
		}
	}
}

// WithOriginPatterns allows cross-origin websocket handshakes from the given
// host patterns.
func WithOriginPatterns(patterns ...string) HubOption {
	return func(h *Hub) {
		h.acceptOptions = &websocket.AcceptOptions{OriginPatterns: patterns}
	}
}

func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		rooms:      make(map[string]map[*client]struct{}),
		clients:    make(map[*client]struct{}),
		sendBuffer: defaultSendBuffer,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Broadcast queues msg for every member of room. It never blocks on a slow
// client.
func (h *Hub) Broadcast(_ context.Context, room string, msg []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[room] {
		select {
		case c.send <- msg:
		default:
			log.Debug().Str("room", room).Msg("realtime.Hub: send buffer full, dropping message")
		}
	}
	return nil
}

// Members returns the number of clients in room.
func (h *Hub) Members(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the request and serves one client until it disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, h.acceptOptions)
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	userID, _ := middleware.UserIDFromContext(r.Context())
	c := &client{
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, h.sendBuffer),
		rooms:  make(map[string]struct{}),
	}
	h.register(c)
	defer h.unregister(c)

	go h.writeLoop(ctx, cancel, c)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if status := websocket.CloseStatus(err); status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && !errors.Is(err, context.Canceled) {
				log.Debug().Err(err).Msg("websocket read")
			}
			return
		}
		h.handleFrame(c, data)
	}
}

func (h *Hub) handleFrame(c *client, data []byte) {
	var req JoinRequest
	if err := json.Unmarshal(data, &req); err != nil {
		log.Debug().Err(err).Msg("realtime.Hub: malformed client frame")
		return
	}
	room, reply, err := req.Room()
	if err != nil {
		log.Debug().Err(err).Msg("realtime.Hub: rejected join")
		return
	}
	if req.Type == JoinUser && (c.userID == uuid.Nil || room != UserRoom(c.userID)) {
		log.Warn().Str("user_id", c.userID.String()).Str("room", room).Msg("realtime.Hub: join of another user's room")
		return
	}

	ack, err := json.Marshal(Message{Event: reply, Data: room})
	if err != nil {
		return
	}
	h.join(c, room, ack)
}

// join adds c to room and queues the acknowledgement under the same lock, so
// the ack precedes every room message sent after the join.
func (h *Hub) join(c *client, room string, ack []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	c.rooms[room] = struct{}{}

	select {
	case c.send <- ack:
	default:
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for room := range c.rooms {
		members := h.rooms[room]
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	c.rooms = nil
	delete(h.clients, c)
}

func (h *Hub) writeLoop(ctx context.Context, cancel context.CancelFunc, c *client) {
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-c.send:
			if err := c.conn.Write(ctx, websocket.MessageText, msg); err != nil {
				log.Debug().Err(err).Msg("websocket write")
				return
			}
		}
	}
}
