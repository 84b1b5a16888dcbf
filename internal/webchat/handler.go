package webchat

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/websocket"

	"github.com/careloop/hospital-chatbot/internal/chatbot"
	"github.com/careloop/hospital-chatbot/internal/transcript"
	"github.com/careloop/hospital-chatbot/pkg/logging"
)

// Conversationalist is the slice of the chatbot engine the widget needs.
type Conversationalist interface {
	StartSession(ctx context.Context) (string, error)
	ProcessMessage(ctx context.Context, sessionID, message string) *chatbot.Reply
}

// TranscriptReader loads past turns for reconnecting widgets.
type TranscriptReader interface {
	List(ctx context.Context, sessionID string, limit int64) ([]transcript.Entry, error)
}

// Handler bridges the browser widget to the conversation engine over
// WebSocket, with an HTTP fallback for environments that block
// upgrades.
type Handler struct {
	engine     Conversationalist
	transcript TranscriptReader
	logger     *logging.Logger
	widgetJS   []byte

	mu       sync.RWMutex
	sessions map[string]*wsConn // sessionID -> active connection
}

type wsConn struct {
	conn *websocket.Conn
	done chan struct{}
}

// InboundMessage is what the widget sends.
type InboundMessage struct {
	Type string `json:"type"` // "message", "ping"
	Text string `json:"text"`
}

// OutboundMessage is what we send to the widget.
type OutboundMessage struct {
	Type      string                `json:"type"` // "message", "session", "history", "pong", "error"
	Text      string                `json:"text,omitempty"`
	Options   []chatbot.ReplyOption `json:"options,omitempty"`
	State     string                `json:"state,omitempty"`
	Completed bool                  `json:"completed,omitempty"`
	SessionID string                `json:"session_id,omitempty"`
	Timestamp string                `json:"timestamp,omitempty"`
	Messages  []HistoryMessage      `json:"messages,omitempty"`
}

// HistoryMessage is a simplified turn for history responses.
type HistoryMessage struct {
	Role      string `json:"role"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// NewHandler creates a web chat handler.
func NewHandler(engine Conversationalist, transcriptReader TranscriptReader, widgetJS []byte, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		engine:     engine,
		transcript: transcriptReader,
		logger:     logger,
		widgetJS:   widgetJS,
		sessions:   make(map[string]*wsConn),
	}
}

// HandleWebSocket upgrades to WebSocket and handles real-time messaging.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	// Clear any server write deadline inherited from the upgrade so
	// long-lived connections survive past it.
	_ = conn.SetDeadline(time.Time{})

	ctx := r.Context()

	sessionID := r.URL.Query().Get("session")
	fresh := sessionID == ""
	if fresh {
		id, err := h.engine.StartSession(ctx)
		if err != nil {
			h.logger.Error("webchat: start session failed", "error", err)
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "error", Text: "Unable to start a conversation. Please try again."})
			return
		}
		sessionID = id
	}

	_ = websocket.JSON.Send(conn, OutboundMessage{
		Type:      "session",
		SessionID: sessionID,
	})

	if fresh {
		// Kick the conversation so the widget shows the greeting
		// without waiting for user input.
		h.sendReply(conn, h.engine.ProcessMessage(ctx, sessionID, ""))
	} else if h.transcript != nil {
		if entries, err := h.transcript.List(ctx, sessionID, 50); err == nil && len(entries) > 0 {
			history := make([]HistoryMessage, 0, 2*len(entries))
			for _, e := range entries {
				if e.UserMessage != "" {
					history = append(history, HistoryMessage{Role: "user", Text: e.UserMessage, Timestamp: e.Timestamp.Format(time.RFC3339)})
				}
				history = append(history, HistoryMessage{Role: "assistant", Text: e.BotReply, Timestamp: e.Timestamp.Format(time.RFC3339)})
			}
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "history", Messages: history})
		}
	}

	wsc := &wsConn{conn: conn, done: make(chan struct{})}
	h.mu.Lock()
	h.sessions[sessionID] = wsc
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		if h.sessions[sessionID] == wsc {
			delete(h.sessions, sessionID)
		}
		h.mu.Unlock()
		close(wsc.done)
	}()

	h.logger.Info("webchat: connection opened", "session_id", sessionID)

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("webchat: connection closed", "session_id", sessionID, "error", err)
			return
		}

		if msg.Type == "ping" {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "pong"})
			continue
		}

		if msg.Type != "message" || strings.TrimSpace(msg.Text) == "" {
			continue
		}

		h.sendReply(conn, h.engine.ProcessMessage(ctx, sessionID, msg.Text))
	}
}

func (h *Handler) sendReply(conn *websocket.Conn, reply *chatbot.Reply) {
	_ = websocket.JSON.Send(conn, OutboundMessage{
		Type:      "message",
		Text:      reply.Message,
		Options:   reply.Options,
		State:     string(reply.State),
		Completed: reply.Completed,
		SessionID: reply.SessionID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleMessage is the HTTP fallback for sending messages.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
		Text      string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		id, err := h.engine.StartSession(r.Context())
		if err != nil {
			h.logger.Error("webchat: start session failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		req.SessionID = id
	}

	reply := h.engine.ProcessMessage(r.Context(), req.SessionID, req.Text)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(reply)
}

// HandleHistory returns chat history for a session.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	if h.transcript == nil {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"messages": []HistoryMessage{}})
		return
	}

	entries, err := h.transcript.List(r.Context(), sessionID, 100)
	if err != nil {
		h.logger.Error("webchat: failed to load history", "error", err)
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}

	history := make([]HistoryMessage, 0, 2*len(entries))
	for _, e := range entries {
		if e.UserMessage != "" {
			history = append(history, HistoryMessage{Role: "user", Text: e.UserMessage, Timestamp: e.Timestamp.Format(time.RFC3339)})
		}
		history = append(history, HistoryMessage{Role: "assistant", Text: e.BotReply, Timestamp: e.Timestamp.Format(time.RFC3339)})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"messages": history})
}

// HandleWidgetJS serves the embeddable widget JavaScript.
func (h *Handler) HandleWidgetJS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	_, _ = w.Write(h.widgetJS)
}
