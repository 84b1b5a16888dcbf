package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/careloop/hospital-chatbot/internal/chatbot"
	httpmiddleware "github.com/careloop/hospital-chatbot/internal/http/middleware"
	"github.com/careloop/hospital-chatbot/internal/webchat"
	"github.com/careloop/hospital-chatbot/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	ChatbotHandler     *chatbot.Handler
	WebchatHandler     *webchat.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// MessageRate throttles chat turns per client IP. Zero disables
	// rate limiting.
	MessageRate  float64
	MessageBurst int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.ChatbotHandler != nil {
		r.Route("/api/chatbot", func(api chi.Router) {
			if cfg.MessageRate > 0 {
				api.Use(httpmiddleware.RateLimit(cfg.MessageRate, cfg.MessageBurst))
			}
			api.Post("/start", cfg.ChatbotHandler.StartSession)
			api.Post("/message", cfg.ChatbotHandler.Message)
			api.Get("/history/{sessionID}", cfg.ChatbotHandler.History)
		})
	}

	if cfg.WebchatHandler != nil {
		r.Route("/chat", func(chat chi.Router) {
			chat.Get("/ws", cfg.WebchatHandler.HandleWebSocket)
			chat.Post("/message", cfg.WebchatHandler.HandleMessage)
			chat.Get("/history", cfg.WebchatHandler.HandleHistory)
			chat.Get("/widget.js", cfg.WebchatHandler.HandleWidgetJS)
		})
	}

	return r
}
