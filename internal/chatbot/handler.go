package chatbot

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/careloop/hospital-chatbot/internal/transcript"
	"github.com/careloop/hospital-chatbot/pkg/logging"
)

// Handler exposes the conversation engine over HTTP.
type Handler struct {
	engine      *Engine
	transcripts transcript.Store
	logger      *logging.Logger
}

func NewHandler(engine *Engine, transcripts transcript.Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		engine:      engine,
		transcripts: transcripts,
		logger:      logger.Named("chatbot_http"),
	}
}

// StartSessionResponse is the body of POST /api/chatbot/start.
type StartSessionResponse struct {
	SessionID string `json:"sessionId"`
}

// MessageRequest is the body of POST /api/chatbot/message.
type MessageRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// HistoryResponse is the body of GET /api/chatbot/history/{sessionID}.
type HistoryResponse struct {
	SessionID string             `json:"sessionId"`
	Entries   []transcript.Entry `json:"entries"`
}

// StartSession handles POST /api/chatbot/start.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := h.engine.StartSession(r.Context())
	if err != nil {
		h.logger.Error("start session failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, StartSessionResponse{SessionID: sessionID})
}

// Message handles POST /api/chatbot/message.
func (h *Handler) Message(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		http.Error(w, "missing sessionId", http.StatusBadRequest)
		return
	}

	reply := h.engine.ProcessMessage(r.Context(), req.SessionID, req.Message)
	writeJSON(w, http.StatusOK, reply)
}

// History handles GET /api/chatbot/history/{sessionID}.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "missing sessionID", http.StatusBadRequest)
		return
	}
	if h.transcripts == nil {
		http.Error(w, "history not available", http.StatusNotFound)
		return
	}

	limit := int64(50)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := h.transcripts.List(r.Context(), sessionID, limit)
	if err != nil {
		h.logger.Error("history lookup failed", "session_id", sessionID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, HistoryResponse{SessionID: sessionID, Entries: entries})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
