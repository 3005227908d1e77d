package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/proneo/platform/internal/domain"
	"github.com/proneo/platform/internal/service"
)

// AlertHandler serves the alert feed and dismissal endpoints.
type AlertHandler struct {
	alerts *service.AlertService
}

// NewAlertHandler creates an AlertHandler.
func NewAlertHandler(alerts *service.AlertService) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

// Feed handles GET /alerts?category=.
func (h *AlertHandler) Feed(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	res, err := h.alerts.Feed(r.Context(), service.FeedQuery{
		DeviceID: GetDeviceID(r.Context()),
		Role:     actor.Role,
		Category: domain.Category(r.URL.Query().Get("category")),
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, res)
}

// Complete handles POST /alerts/{id}/complete.
func (h *AlertHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.alerts.Complete(r.Context(), GetDeviceID(r.Context()), id); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"id": id, "status": "completed"})
}

type snoozeResponse struct {
	ID           string    `json:"id"`
	Status       string    `json:"status"`
	SnoozedUntil time.Time `json:"snoozedUntil"`
}

// Snooze handles POST /alerts/{id}/snooze.
func (h *AlertHandler) Snooze(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	until, err := h.alerts.Snooze(r.Context(), GetDeviceID(r.Context()), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, snoozeResponse{ID: id, Status: "snoozed", SnoozedUntil: until})
}

// Reset handles DELETE /alerts/dismissals.
func (h *AlertHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.alerts.Reset(r.Context(), GetDeviceID(r.Context())); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}
