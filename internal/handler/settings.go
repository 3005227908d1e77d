package handler

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/proneo/platform/internal/domain"
	"github.com/proneo/platform/internal/service"
	"github.com/proneo/platform/internal/settings"
)

// SettingsHandler serves per-device alert toggles and the shared picklists.
type SettingsHandler struct {
	alerts *service.AlertService
	lists  *service.ListService
}

// NewSettingsHandler creates a SettingsHandler.
func NewSettingsHandler(alerts *service.AlertService, lists *service.ListService) *SettingsHandler {
	return &SettingsHandler{alerts: alerts, lists: lists}
}

// GetAlerts handles GET /settings/alerts.
func (h *SettingsHandler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	toggles, err := h.alerts.Settings(r.Context(), GetDeviceID(r.Context()))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, toggles)
}

type toggleRequest struct {
	Enabled *bool `json:"enabled"`
}

// PutAlert handles PUT /settings/alerts/{kind}.
func (h *SettingsHandler) PutAlert(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := DecodeJSON(r, &req); err != nil || req.Enabled == nil {
		RespondError(w, domain.ErrValidation("body must be {\"enabled\": true|false}"))
		return
	}
	kind := domain.AlertKind(chi.URLParam(r, "kind"))
	toggles, err := h.alerts.UpdateSetting(r.Context(), GetDeviceID(r.Context()), kind, *req.Enabled)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, toggles)
}

// GetLists handles GET /settings/lists.
func (h *SettingsHandler) GetLists(w http.ResponseWriter, r *http.Request) {
	lists, err := h.lists.Get(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, lists)
}

type listItemRequest struct {
	Item string `json:"item"`
}

// AddListItem handles POST /settings/lists/{list}.
func (h *SettingsHandler) AddListItem(w http.ResponseWriter, r *http.Request) {
	var req listItemRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	list := settings.ListName(chi.URLParam(r, "list"))
	items, err := h.lists.Add(r.Context(), actorFrom(r), list, req.Item)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"list": list, "items": items})
}

// RemoveListItem handles DELETE /settings/lists/{list}/{item}.
func (h *SettingsHandler) RemoveListItem(w http.ResponseWriter, r *http.Request) {
	item, err := url.PathUnescape(chi.URLParam(r, "item"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid item"))
		return
	}
	list := settings.ListName(chi.URLParam(r, "list"))
	items, err := h.lists.Remove(r.Context(), actorFrom(r), list, item)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"list": list, "items": items})
}
