package app

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/proneo/platform/internal/auth"
	"github.com/proneo/platform/internal/handler"
	"github.com/proneo/platform/internal/service"
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Verifier    auth.TokenVerifier
	Alerts      *service.AlertService
	Users       *service.UserService
	Lists       *service.ListService
	Health      map[string]handler.HealthCheck
	CORSOrigins string
	Logger      *slog.Logger
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	logger := deps.Logger

	alertHandler := handler.NewAlertHandler(deps.Alerts)
	settingsHandler := handler.NewSettingsHandler(deps.Alerts, deps.Lists)
	userHandler := handler.NewUserHandler(deps.Users)

	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORSWithOrigins(deps.CORSOrigins))
	r.Use(handler.JSONContentType)

	// Health (no auth)
	r.Get("/health", handler.HealthHandler(deps.Health))

	r.Group(func(r chi.Router) {
		r.Use(auth.Authenticate(deps.Verifier))

		// Per-device routes
		r.Group(func(r chi.Router) {
			r.Use(handler.DeviceID)

			r.Get("/alerts", alertHandler.Feed)
			r.Post("/alerts/{id}/complete", alertHandler.Complete)
			r.Post("/alerts/{id}/snooze", alertHandler.Snooze)
			r.Delete("/alerts/dismissals", alertHandler.Reset)

			r.Get("/settings/alerts", settingsHandler.GetAlerts)
			r.Put("/settings/alerts/{kind}", settingsHandler.PutAlert)
		})

		r.Get("/settings/lists", settingsHandler.GetLists)

		// Directors and admins
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(auth.ApproverRoles()...))

			r.Post("/settings/lists/{list}", settingsHandler.AddListItem)
			r.Delete("/settings/lists/{list}/{item}", settingsHandler.RemoveListItem)

			r.Post("/users/{email}/approve", userHandler.Approve)
			r.Post("/users/{email}/reject", userHandler.Reject)
		})

		// Admins
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(auth.AdminRoles()...))

			r.Get("/users", userHandler.List)
			r.Patch("/users/{email}", userHandler.Update)
			r.Delete("/users/{email}", userHandler.Delete)
		})
	})

	return r
}
