// Package api serves the PRISM REST API and pushes collection events over WebSocket.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/codwats/prism/internal/api/websocket"
	"github.com/codwats/prism/internal/events"
	"github.com/codwats/prism/internal/facade"
	"github.com/codwats/prism/internal/storage"
)

// Server represents the REST API server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	port       int
	origins    []string
	timeout    time.Duration
	logger     zerolog.Logger

	// WebSocket hub for real-time events
	wsHub      *websocket.Hub
	wsObserver *websocket.WebSocketObserver
	events     *events.EventDispatcher

	store            *storage.Service
	collectionFacade *facade.CollectionFacade
	cardFacade       *facade.CardFacade
}

// Config holds configuration for the API server.
type Config struct {
	Port           int
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// DefaultConfig returns the default API server configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:           8080,
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		RequestTimeout: 30 * time.Second,
	}
}

// NewServer creates a new API server over services. Collection events are
// forwarded to WebSocket clients.
func NewServer(cfg *Config, services *facade.Services) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultConfig().RequestTimeout
	}
	if services.Events == nil {
		services.Events = events.NewEventDispatcher(services.Logger)
	}

	wsHub := websocket.NewHub(exactOrigins(cfg.AllowedOrigins)...)
	wsObserver := websocket.NewWebSocketObserver(wsHub)
	services.Events.Register(wsObserver)

	s := &Server{
		router:           chi.NewRouter(),
		port:             cfg.Port,
		origins:          cfg.AllowedOrigins,
		timeout:          cfg.RequestTimeout,
		logger:           services.Logger,
		wsHub:            wsHub,
		wsObserver:       wsObserver,
		events:           services.Events,
		store:            services.Storage,
		collectionFacade: facade.NewCollectionFacade(services),
		cardFacade:       facade.NewCardFacade(services),
	}

	s.setupMiddleware()
	s.setupRoutes()
	s.logger.Debug().Int("observers", services.Events.ObserverCount()).Msg("API server configured")

	return s
}

// exactOrigins drops wildcard patterns, which the WebSocket origin check does not
// understand. No exact origin left means every origin is accepted.
func exactOrigins(origins []string) []string {
	var out []string
	for _, o := range origins {
		if !strings.Contains(o, "*") {
			out = append(out, o)
		}
	}
	return out
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.timeout))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Content-Type enforcement for POST/PUT only
	s.router.Use(s.jsonContentTypeMiddleware)
}

// requestLogger writes one zerolog event per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		event := s.logger.Info()
		if status >= http.StatusInternalServerError {
			event = s.logger.Error()
		}
		event.
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

// jsonContentTypeMiddleware enforces application/json content-type for requests with bodies.
func (s *Server) jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut {
			if r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			if contentType == "" || (contentType != "application/json" && !strings.HasPrefix(contentType, "application/json;")) {
				http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the WebSocket hub and the HTTP server in goroutines.
func (s *Server) Start() error {
	go s.wsHub.Run()

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.timeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		s.logger.Info().Int("port", s.port).Msg("API server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("API server error")
		}
	}()

	return nil
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.events.Unregister(s.wsObserver)
	s.wsHub.Stop()
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info().Msg("Shutting down API server")
	return s.httpServer.Shutdown(ctx)
}

// Port returns the port the server is configured to listen on.
func (s *Server) Port() int {
	return s.port
}
