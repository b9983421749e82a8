// Package http exposes the explorer over a JSON API and a websocket feed.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"rpi-index-lab/internal/explorer"
	"rpi-index-lab/internal/observability"
)

// Server bundles the handlers and the websocket hub.
type Server struct {
	explorer  *explorer.Explorer
	hub       *Hub
	validator *validator.Validate
	logger    *slog.Logger
}

// NewServer creates the API server. The hub is subscribed to base changes.
func NewServer(exp *explorer.Explorer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		explorer:  exp,
		hub:       NewHub(logger),
		validator: newValidator(),
		logger:    logger.With(slog.String("component", "http")),
	}
	exp.Subscribe(s.hub.PublishBaseChange)
	return s
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", observability.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/selectors", s.handleSelectors)
		r.Get("/base", s.handleGetBase)
		r.Put("/base", s.handlePutBase)
		r.Get("/chart", s.handleChart)
		r.Get("/price", s.handlePrice)
		r.Get("/ws", s.hub.ServeWS)
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())))
	})
}
