// Package api serves the draft state over HTTP and pushes draft events to
// websocket clients.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ramonehamilton/draft-claw/internal/api/websocket"
	"github.com/ramonehamilton/draft-claw/internal/capture"
	"github.com/ramonehamilton/draft-claw/internal/commands"
	"github.com/ramonehamilton/draft-claw/internal/eternal/cards"
	"github.com/ramonehamilton/draft-claw/internal/eternal/resolver"
	"github.com/ramonehamilton/draft-claw/internal/events"
	"github.com/ramonehamilton/draft-claw/internal/metrics"
	"github.com/ramonehamilton/draft-claw/internal/storage"
)

// Server represents the REST API server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	host       string
	port       int
	origins    []string

	// WebSocket hub for real-time events
	wsHub      *websocket.Hub
	wsObserver *websocket.WebSocketObserver

	service    *storage.Service
	pipeline   *capture.Pipeline
	inboxDir   string
	processor  *commands.Processor
	catalog    *cards.Catalog
	resolver   *resolver.Resolver
	dispatcher *events.EventDispatcher
	metrics    *metrics.DraftMetrics
	logger     *slog.Logger
}

// Config holds configuration for the API server.
// Host defaults to the loopback interface.
type Config struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

// DefaultConfig returns the default API server configuration.
func DefaultConfig() *Config {
	return &Config{
		Host:           "127.0.0.1",
		Port:           8080,
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
	}
}

// Deps holds the collaborators the handlers need. Service is required.
// Pipeline, Processor, Catalog and Resolver are nil when no card data is
// loaded; the routes that need them answer 503. InboxDir anchors the
// screenshot paths of posted observations.
type Deps struct {
	Service    *storage.Service
	Pipeline   *capture.Pipeline
	InboxDir   string
	Processor  *commands.Processor
	Catalog    *cards.Catalog
	Resolver   *resolver.Resolver
	Dispatcher *events.EventDispatcher
	Metrics    *metrics.DraftMetrics
	Logger     *slog.Logger
}

// NewServer creates a new API server. The websocket hub is registered as
// an observer on the dispatcher so every draft event reaches clients.
func NewServer(cfg *Config, deps Deps) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	host := cfg.Host
	if host == "" {
		host = "127.0.0.1"
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Dispatcher == nil {
		deps.Dispatcher = events.NewEventDispatcher(deps.Logger)
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewDraftMetrics()
	}

	wsHub := websocket.NewHub(deps.Logger, nil)
	s := &Server{
		router:     chi.NewRouter(),
		host:       host,
		port:       cfg.Port,
		origins:    cfg.AllowedOrigins,
		wsHub:      wsHub,
		wsObserver: websocket.NewWebSocketObserver(wsHub),
		service:    deps.Service,
		pipeline:   deps.Pipeline,
		inboxDir:   deps.InboxDir,
		processor:  deps.Processor,
		catalog:    deps.Catalog,
		resolver:   deps.Resolver,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger.With("component", "api"),
	}
	s.dispatcher.Register(s.wsObserver)

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	// Request ID for tracing
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)

	// Access log through the structured logger
	s.router.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(s.logger.Handler(), slog.LevelDebug),
		NoColor: true,
	}))

	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	origins := s.origins
	if len(origins) == 0 {
		origins = DefaultConfig().AllowedOrigins
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s.router.Use(s.jsonContentTypeMiddleware)
}

// jsonContentTypeMiddleware enforces application/json content-type for requests with bodies.
func (s *Server) jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			if r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			if contentType != "application/json" && !strings.HasPrefix(contentType, "application/json;") {
				http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the websocket hub and the HTTP listener. Listen errors
// after startup are logged.
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	go s.wsHub.Run()

	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "addr", addr)
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.dispatcher.Unregister(s.wsObserver)
	s.wsHub.Stop()
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Shutting down API server")
	return s.httpServer.Shutdown(ctx)
}

// Host returns the interface the server listens on.
func (s *Server) Host() string {
	return s.host
}

// Port returns the port the server is configured to listen on.
func (s *Server) Port() int {
	return s.port
}

// WebSocketHub returns the WebSocket hub.
func (s *Server) WebSocketHub() *websocket.Hub {
	return s.wsHub
}
