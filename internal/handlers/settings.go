package handlers

import (
	"RecipeKeeper/internal/middleware"
	"RecipeKeeper/internal/service"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// SettingsHandler — чтение и запись настроек.
type SettingsHandler struct {
	Settings *service.SettingsService
	Audit    *service.AuditService
	Logger   *zap.SugaredLogger
}

func NewSettingsHandler(settings *service.SettingsService, audit *service.AuditService, logger *zap.SugaredLogger) *SettingsHandler {
	return &SettingsHandler{Settings: settings, Audit: audit, Logger: logger}
}

// Get — настройки читает любой аутентифицированный пользователь.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	values, err := h.Settings.All(r.Context())
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, values)
}

// Update — запись: роль admin либо флаг can_edit_integration.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	ac, ok := mustAuth(w, r)
	if !ok {
		return
	}
	if !ac.IsAdmin() && !ac.CanEditIntegration {
		writeError(w, http.StatusForbidden, "settings are managed by admins")
		return
	}

	var values map[string]string
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := h.Settings.Update(r.Context(), values); err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	h.Audit.Record(r.Context(), ac.UserID, "settings_update", map[string]any{"keys": keys}, middleware.ClientIP(r))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
