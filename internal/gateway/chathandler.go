package gateway

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"taskwise/internal/auth"
	"taskwise/internal/chat"
)

type chatMessageRequest struct {
	Message        string     `json:"message"`
	ConversationID *uuid.UUID `json:"conversation_id"`
}

type conversationResponse struct {
	Conversation *chat.Conversation `json:"conversation"`
	Messages     []*chat.Message    `json:"messages"`
}

type historyResponse struct {
	Conversations []*chat.Conversation `json:"conversations"`
	Total         int                  `json:"total"`
}

func (s *Server) handleChatMessage(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserFromContext(r.Context())

	var req chatMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	turn, err := s.chat.ProcessTurn(r.Context(), userID, req.ConversationID, req.Message)
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, "message must not be empty")
	case errors.Is(err, chat.ErrConversationNotFound):
		writeError(w, http.StatusNotFound, "conversation not found")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "chat processing failed")
	default:
		writeJSON(w, http.StatusOK, turn)
	}
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserFromContext(r.Context())

	limit := intQuery(r.URL.Query().Get("limit"), 50)
	convs, total, err := s.chat.History(r.Context(), userID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "history lookup failed")
		return
	}
	if convs == nil {
		convs = []*chat.Conversation{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Conversations: convs, Total: total})
}

func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid conversation id")
		return
	}

	conv, msgs, err := s.chat.Conversation(r.Context(), userID, id)
	switch {
	case errors.Is(err, chat.ErrConversationNotFound):
		writeError(w, http.StatusNotFound, "conversation not found")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "conversation lookup failed")
	default:
		writeJSON(w, http.StatusOK, conversationResponse{Conversation: conv, Messages: msgs})
	}
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserFromContext(r.Context())

	if err := s.chat.Clear(r.Context(), userID); err != nil {
		writeError(w, http.StatusInternalServerError, "clear failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "chat history cleared"})
}
