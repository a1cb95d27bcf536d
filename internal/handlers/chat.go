package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/IanyTech/iany-gaming/internal/identity"
	"github.com/IanyTech/iany-gaming/internal/logger"
)

// ChatHandler обрабатывает сообщения чата поддержки.
type ChatHandler struct {
	chat ChatResponder
	log  *logger.Logger
}

// NewChatHandler создаёт обработчик чата.
func NewChatHandler(chat ChatResponder, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		chat: chat,
		log:  log,
	}
}

type chatRequest struct {
	Message string `json:"message"`
}

// Message отвечает на сообщение пользователя.
func (h *ChatHandler) Message(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ident := identity.FromRequest(r)
	response, err := h.chat.Reply(r.Context(), ident.StorageKey(), req.Message)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to process chat message")
		return
	}

	writeJSONResponse(w, http.StatusOK, response)
}

// Reset очищает память диалога.
func (h *ChatHandler) Reset(w http.ResponseWriter, r *http.Request) {
	ident := identity.FromRequest(r)
	if err := h.chat.Reset(r.Context(), ident.StorageKey()); err != nil {
		writeServiceError(w, h.log, err, "Failed to reset chat")
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "Chat reset"})
}
