package handler

import (
	"net/http"

	"github.com/proneo/platform/internal/auth"
	"github.com/proneo/platform/internal/service"
)

// actorFrom builds the service actor from the authenticated request.
func actorFrom(r *http.Request) service.Actor {
	a := service.Actor{RequestID: GetRequestID(r.Context())}
	if c := auth.ClaimsFromContext(r.Context()); c != nil {
		a.Email = c.Email
		a.Role = c.Role
	}
	return a
}
