package realtime_test

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/gosuda/flowboard/internal/realtime"
	"github.com/gosuda/flowboard/internal/server/middleware"
)

func httpHandler(hub *realtime.Hub) http.Handler {
	return http.HandlerFunc(hub.ServeWS)
}

// httpHandlerAs serves hub as if the auth middleware had admitted userID.
func httpHandlerAs(hub *realtime.Hub, userID uuid.UUID) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r.WithContext(middleware.WithUser(r.Context(), userID, false)))
	})
}
