package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/jackzampolin/shiftparse/internal/api"
	"github.com/jackzampolin/shiftparse/internal/config"
	"github.com/jackzampolin/shiftparse/internal/export"
	"github.com/jackzampolin/shiftparse/internal/extract"
	"github.com/jackzampolin/shiftparse/internal/home"
	"github.com/jackzampolin/shiftparse/internal/llmcall"
	"github.com/jackzampolin/shiftparse/internal/prompts"
	"github.com/jackzampolin/shiftparse/internal/prompts/extraction"
	"github.com/jackzampolin/shiftparse/internal/providers"
	"github.com/jackzampolin/shiftparse/internal/server/endpoints"
	"github.com/jackzampolin/shiftparse/internal/svcctx"
)

// writeMargin is added to the extraction timeout so a slow upstream call
// can still be answered with a timeout response instead of a dropped connection.
const writeMargin = time.Minute

// Server is the main shiftparse HTTP server.
// It owns the extraction session: one upload at a time, one current schedule.
type Server struct {
	httpServer *http.Server
	pipeline   *extract.Pipeline
	session    *extract.Session
	resolver   *prompts.Resolver
	configMgr  *config.Manager
	logger     *slog.Logger

	// services holds all core services for context enrichment
	services *svcctx.Services

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	mu      sync.RWMutex
	running bool
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1)
	Host string
	// Port is the port to listen on (default: 8080)
	Port string
	// ConfigManager provides configuration with hot-reload support.
	// When Pipeline is nil, the pipeline is built from it.
	ConfigManager *config.Manager
	// Pipeline overrides the pipeline built from configuration.
	Pipeline *extract.Pipeline
	// Resolver holds the prompts the pipeline renders.
	Resolver *prompts.Resolver
	// Home is the shiftparse home directory (optional).
	Home *home.Dir
	// Logger is the structured logger to use
	Logger *slog.Logger
}

// New creates a new Server with the given configuration.
// A configuration that cannot produce a service client is not fatal: the
// server starts, and endpoints that need the pipeline answer 503.
func New(cfg Config) (*Server, error) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Resolver == nil {
		cfg.Resolver = prompts.NewResolver(cfg.Logger)
		extraction.RegisterPrompts(cfg.Resolver)
	}

	timeout := providers.DefaultTimeout
	pipeline := cfg.Pipeline
	if cfg.ConfigManager != nil {
		c := cfg.ConfigManager.Get()
		timeout = c.Timeout()
		cfg.Resolver.SetOverrides(c.Prompts.Overrides)

		if pipeline == nil {
			p, err := buildPipeline(c, cfg.Resolver, cfg.Logger)
			if err != nil {
				cfg.Logger.Warn("extraction pipeline not configured", "error", err)
			} else {
				pipeline = p
			}
		}

		// Prompt overrides apply to the next extraction. Service settings
		// are bound to the client and need a restart.
		cfg.ConfigManager.OnChange(func(c *config.Config) {
			cfg.Resolver.SetOverrides(c.Prompts.Overrides)
			cfg.Logger.Info("prompt overrides reloaded from config", "overrides", len(c.Prompts.Overrides))
		})
	}

	s := &Server{
		pipeline:  pipeline,
		resolver:  cfg.Resolver,
		configMgr: cfg.ConfigManager,
		logger:    cfg.Logger,
	}
	var recorder *llmcall.Recorder
	if pipeline != nil {
		s.session = extract.NewSession(pipeline)
		recorder = pipeline.Recorder()
	}

	s.services = &svcctx.Services{
		Pipeline: s.pipeline,
		Session:  s.session,
		Resolver: s.resolver,
		Exporter: export.NewService(cfg.Logger),
		Recorder: recorder,
		Config:   cfg.ConfigManager,
		Logger:   cfg.Logger,
		Home:     cfg.Home,
	}

	// Create endpoint registry and register all endpoints
	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All(endpoints.Config{}) {
		s.endpointRegistry.Register(ep)
	}

	// Set up HTTP server
	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      s.withServices(mux),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: timeout + writeMargin,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

func buildPipeline(c *config.Config, resolver *prompts.Resolver, logger *slog.Logger) (*extract.Pipeline, error) {
	client, err := providers.New(c.ToProviderConfig(), logger)
	if err != nil {
		return nil, err
	}
	pcfg := c.ToPipelineConfig(client, logger)
	pcfg.Resolver = resolver
	pcfg.Recorder = llmcall.NewRecorder(llmcall.DefaultCapacity)
	return extract.NewPipeline(pcfg)
}

// Start starts the HTTP server.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	if s.pipeline != nil {
		s.logger.Info("extraction pipeline ready", "service", s.pipeline.Client().Name())
	}

	// Start HTTP server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			s.setNotRunning()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// shutdown performs graceful shutdown of the HTTP server. An in-flight
// extraction is given the shutdown window to finish.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler returns the fully wired HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Session returns the extraction session, or nil if the pipeline is not configured.
func (s *Server) Session() *extract.Session {
	return s.session
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if s.services != nil {
			ctx = svcctx.WithServices(ctx, s.services)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireInit is middleware that ensures the extraction pipeline is configured.
// Returns 503 Service Unavailable otherwise.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.pipeline == nil || s.session == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"extraction service not configured"}`))
			return
		}
		next(w, r)
	}
}
