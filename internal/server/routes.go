package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/gosuda/flowboard/internal/api/v1"
	"github.com/gosuda/flowboard/internal/realtime"
)

func registerAuthRoutes(api huma.API, svc Services) {
	v1.RegisterAuthRoutes(api, svc.Auth)
}

func registerAPIRoutes(api huma.API, svc Services) {
	v1.RegisterWorkspaceRoutes(api, svc.Boards)
	v1.RegisterBoardRoutes(api, svc.Boards)
	v1.RegisterItemRoutes(api, svc.Boards)
	v1.RegisterAutomationRoutes(api, svc.Automations)
	v1.RegisterActivityRoutes(api, svc.Activity)
	v1.RegisterNotificationRoutes(api, svc.Notifications)
}

func registerAdminRoutes(api huma.API, svc Services) {
	v1.RegisterAccountLogRoutes(api, svc.AccountLogs)
}

func registerWSRoutes(r chi.Router, hub *realtime.Hub) {
	r.Get("/", hub.ServeWS)
}
