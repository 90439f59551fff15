package handler

import (
	"log/slog"
	"net/http"

	"codescrybe/internal/domain/services"
	"codescrybe/internal/httputil"
)

// ChatHandler handles chat HTTP requests
type ChatHandler struct {
	chatService services.ChatService
	logger      *slog.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService services.ChatService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

// Send handles one chat turn against an analyzed repository
// POST /api/chat
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req services.SendMessageRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.chatService.Send(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}

// History returns recent chat messages in chronological order
// GET /api/repositories/{id}/chat?limit=N
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := httputil.QueryInt(r, "limit", 0)

	history, err := h.chatService.History(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		handleError(w, err)
		return
	}
	if history == nil {
		history = []services.RenderedMessage{}
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"messages": history,
		"total":    len(history),
	})
}

// Clear deletes a repository's chat history
// DELETE /api/repositories/{id}/chat
func (h *ChatHandler) Clear(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.chatService.Clear(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"deleted": deleted,
	})
}
