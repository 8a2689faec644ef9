// Package realtime forwards board and user events to connected websocket
// clients grouped into rooms.
package realtime

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/gosuda/flowboard/internal/event"
	redisstore "github.com/gosuda/flowboard/internal/store/redis"
)

// Message is the wire frame pushed to clients.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Encode builds the wire frame for ev.
func Encode(ev event.Event) ([]byte, error) {
	b, err := json.Marshal(Message{Event: string(ev.EventName()), Data: ev})
	if err != nil {
		return nil, fmt.Errorf("realtime.Encode(%s): %w", ev.EventName(), err)
	}
	return b, nil
}

// BoardRoom returns the room key for a board.
func BoardRoom(boardID uuid.UUID) string {
	return redisstore.BoardChannel(boardID)
}

// UserRoom returns the room key for a user.
func UserRoom(userID uuid.UUID) string {
	return redisstore.UserChannel(userID)
}

// Join request types sent by clients.
const (
	JoinBoard = "joinBoard"
	JoinUser  = "joinUser"
)

// JoinRequest is a client frame asking to enter a room.
type JoinRequest struct {
	Type    string `json:"type"`
	BoardID string `json:"boardId,omitempty"`
	UserID  string `json:"userId,omitempty"`
}

// Room resolves the requested room key and the name of the reply event.
func (j JoinRequest) Room() (string, string, error) {
	switch j.Type {
	case JoinBoard:
		id, err := uuid.Parse(strings.TrimSpace(j.BoardID))
		if err != nil {
			return "", "", fmt.Errorf("realtime.JoinRequest: boardId: %w", err)
		}
		return BoardRoom(id), "joinedBoard", nil
	case JoinUser:
		id, err := uuid.Parse(strings.TrimSpace(j.UserID))
		if err != nil {
			return "", "", fmt.Errorf("realtime.JoinRequest: userId: %w", err)
		}
		return UserRoom(id), "joinedUser", nil
	default:
		return "", "", fmt.Errorf("realtime.JoinRequest: unknown type %q", j.Type)
	}
}
