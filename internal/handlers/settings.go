package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/IanyTech/iany-gaming/internal/identity"
	"github.com/IanyTech/iany-gaming/internal/logger"
	"github.com/IanyTech/iany-gaming/internal/models"
)

// SettingsHandler обрабатывает настройки пользователя.
type SettingsHandler struct {
	settings SettingsManager
	log      *logger.Logger
}

// NewSettingsHandler создаёт обработчик настроек.
func NewSettingsHandler(settings SettingsManager, log *logger.Logger) *SettingsHandler {
	return &SettingsHandler{
		settings: settings,
		log:      log,
	}
}

// GetSettings возвращает настройки клиента.
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	ident := identity.FromRequest(r)
	settings, err := h.settings.Get(r.Context(), ident.StorageKey())
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get settings")
		return
	}
	writeJSONResponse(w, http.StatusOK, settings)
}

// UpdateSettings перезаписывает настройки клиента.
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings models.UserSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ident := identity.FromRequest(r)
	if err := h.settings.Update(r.Context(), ident.StorageKey(), &settings); err != nil {
		writeServiceError(w, h.log, err, "Failed to update settings")
		return
	}
	writeJSONResponse(w, http.StatusOK, settings)
}
