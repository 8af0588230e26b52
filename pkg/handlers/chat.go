package handlers

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// QuestionAsker answers a natural-language question within a session.
type QuestionAsker interface {
	Ask(ctx context.Context, sessionID, question string) (answer string, id string, err error)
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatResponse is the reply to POST /api/chat. When the agent fails, the
// failure is carried in Error as a plain string and the HTTP status stays
// 200 so the front-end renders it inline in the conversation.
type ChatResponse struct {
	Answer    string `json:"answer"`
	SessionID string `json:"session_id"`
	Error     string `json:"error,omitempty"`
}

// ChatHandler serves the chat front-end API.
type ChatHandler struct {
	agent  QuestionAsker
	logger *zap.Logger
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(agent QuestionAsker, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{agent: agent, logger: logger.Named("chat")}
}

// RegisterRoutes registers the chat handler's routes on the given mux.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/chat", h.Chat)
}

// Chat handles POST /api/chat requests.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := ReadJSON(r, &req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "question is required")
		return
	}

	answer, sessionID, err := h.agent.Ask(r.Context(), req.SessionID, req.Question)
	if err != nil {
		h.logger.Warn("agent failed to answer",
			zap.String("session_id", sessionID),
			zap.Error(err))
		_ = WriteJSON(w, http.StatusOK, ChatResponse{
			SessionID: sessionID,
			Error:     err.Error(),
		})
		return
	}

	if err := WriteJSON(w, http.StatusOK, ChatResponse{
		Answer:    answer,
		SessionID: sessionID,
	}); err != nil {
		h.logger.Error("failed to encode chat response", zap.Error(err))
	}
}
