package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/logbot/logbot/internal/chat"
	"github.com/logbot/logbot/internal/models"
)

// ChatHandler serves the chat session endpoints.
type ChatHandler struct {
	ctrl *chat.Controller
}

func NewChatHandler(ctrl *chat.Controller) *ChatHandler {
	return &ChatHandler{ctrl: ctrl}
}

// CreateSession handles POST /api/v1/chat/sessions
func (h *ChatHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess := h.ctrl.Store().Create()
	models.WriteJSON(w, http.StatusCreated, models.SessionResponse{
		SessionID: sess.ID,
		CreatedAt: sess.CreatedAt,
	})
}

// GetSession handles GET /api/v1/chat/sessions/{id}
func (h *ChatHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.ctrl.Store().Get(chi.URLParam(r, "id"))
	if err != nil {
		models.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	models.WriteJSON(w, http.StatusOK, models.NewTranscript(sess))
}

// DeleteSession handles DELETE /api/v1/chat/sessions/{id}
func (h *ChatHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	h.ctrl.Store().Delete(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// PostMessage handles POST /api/v1/chat/sessions/{id}/messages. Pipeline
// failures are answered with 200 and the assistant's explanation.
func (h *ChatHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := models.DecodeJSON(w, r, &req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if msg := req.Normalize(); msg != "" {
		models.WriteError(w, http.StatusBadRequest, msg)
		return
	}

	reply, err := h.ctrl.HandleTurn(r.Context(), chi.URLParam(r, "id"), req.Question)
	if err != nil {
		if errors.Is(err, chat.ErrSessionNotFound) {
			models.WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		models.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	models.WriteJSON(w, http.StatusOK, models.NewChatResponse(reply))
}
