package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"restore/internal/assistant"
	"restore/internal/model"

	"github.com/rs/zerolog"
)

// ChatHandler serves the shopping assistant.
type ChatHandler struct {
	assistant assistant.Service
	logger    zerolog.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(assistant assistant.Service, logger zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		assistant: assistant,
		logger:    logger.With().Str("handler", "chat").Logger(),
	}
}

// Chat handles POST /api/chat.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid JSON payload", h.logger)
		return
	}

	reply, err := h.assistant.Reply(r.Context(), req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.ChatResponse{
		Response:  reply,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
