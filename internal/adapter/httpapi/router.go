package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog"

	"voice-relay/internal/application/port/input"
	"voice-relay/internal/application/port/output"
)

const SpeechStatusHeader = "X-Speech-Status"

type Config struct {
	MaxBodyBytes int64
	// AccessLog enables httplog request logging.
	AccessLog  bool
	LogLevel   string
	JSONAccess bool
}

func DefaultConfig() Config {
	return Config{
		MaxBodyBytes: 8 << 20,
		AccessLog:    true,
		LogLevel:     "info",
		JSONAccess:   true,
	}
}

type Server struct {
	relay   input.Relay
	logger  output.LoggerPort
	maxBody int64
}

func NewRouter(relay input.Relay, logger output.LoggerPort, cfg Config) http.Handler {
	s := &Server{
		relay:   relay,
		logger:  logger,
		maxBody: cfg.MaxBodyBytes,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if cfg.AccessLog {
		r.Use(httplog.RequestLogger(httplog.NewLogger("voice-relay", httplog.Options{
			LogLevel: cfg.LogLevel,
			JSON:     cfg.JSONAccess,
			Concise:  true,
		})))
	}
	r.Use(middleware.Recoverer)
	// The extension calls from its own chrome-extension:// origin.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{SpeechStatusHeader},
		MaxAge:         600,
	}))

	r.Get("/", s.health)
	r.Post("/describe", handle(s, s.relay.Describe))
	r.Post("/command", handle(s, s.relay.Command))
	r.Post("/element", handle(s, s.relay.Element))

	return r
}
