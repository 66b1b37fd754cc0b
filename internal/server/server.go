package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackzampolin/promptshelf/internal/api"
	"github.com/jackzampolin/promptshelf/internal/catalog"
	"github.com/jackzampolin/promptshelf/internal/config"
	"github.com/jackzampolin/promptshelf/internal/defra"
	"github.com/jackzampolin/promptshelf/internal/home"
	"github.com/jackzampolin/promptshelf/internal/prompts"
	"github.com/jackzampolin/promptshelf/internal/schema"
	"github.com/jackzampolin/promptshelf/internal/server/endpoints"
	"github.com/jackzampolin/promptshelf/internal/svcctx"
)

// Server is the promptshelf HTTP server.
// With the defra backend and no external URL it also manages the DefraDB
// container, starting it on server start and stopping it on shutdown.
type Server struct {
	httpServer   *http.Server
	defraManager *defra.DockerManager
	defraClient  *defra.Client
	store        prompts.Store
	configMgr    *config.Manager
	home         *home.Dir
	logger       *slog.Logger

	// services is swapped whole when the catalog is reloaded
	services atomic.Pointer[svcctx.Services]

	// catalogPath is the path the current catalog was loaded from
	catalogPath string

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
	// Home is the promptshelf home directory
	Home *home.Dir
	// ConfigManager provides configuration with hot-reload support.
	// When nil, config.DefaultConfig is used and nothing reloads.
	ConfigManager *config.Manager
	// Store replaces the configured storage backend. Used by tests.
	Store prompts.Store
	// DockerConfig holds extra DefraDB container settings (labels, timeouts)
	DockerConfig defra.DockerConfig
	// Logger is the structured logger to use
	Logger *slog.Logger
}

// New creates a new Server with the given configuration.
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
	if cfg.Home == nil {
		h, err := home.New("")
		if err != nil {
			return nil, err
		}
		cfg.Home = h
	}

	s := &Server{
		store:     cfg.Store,
		configMgr: cfg.ConfigManager,
		home:      cfg.Home,
		logger:    cfg.Logger,
	}

	appCfg := s.config()
	if s.store == nil && appCfg.Storage.Backend == config.BackendDefra && appCfg.Defra.URL == "" {
		dc := cfg.DockerConfig
		dc.ContainerName = appCfg.Defra.ContainerName
		dc.Image = appCfg.Defra.Image
		dc.HostPort = appCfg.Defra.Port
		dc.DataPath = cfg.Home.DataPath()
		dc.Logger = cfg.Logger
		mgr, err := defra.NewDockerManager(dc)
		if err != nil {
			return nil, fmt.Errorf("failed to create defra manager: %w", err)
		}
		s.defraManager = mgr
	}

	// Create endpoint registry and register all endpoints
	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All(endpoints.Config{DefraManager: s.defraManager}) {
		s.endpointRegistry.Register(ep)
	}

	// Set up HTTP server
	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      s.withServices(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

func (s *Server) config() *config.Config {
	if s.configMgr != nil {
		return s.configMgr.Get()
	}
	return config.DefaultConfig()
}

// Start opens the override store, loads the catalog and serves HTTP.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	if err := s.Init(ctx); err != nil {
		_ = s.shutdown()
		return err
	}

	if s.configMgr != nil {
		s.configMgr.OnChange(s.reload)
	}

	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		_ = s.shutdown()
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}

	// Start HTTP server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
			_ = s.shutdown()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// Init opens the store and builds the engine without serving HTTP.
// Start calls it; the mcp command uses it directly.
func (s *Server) Init(ctx context.Context) error {
	if s.store == nil {
		store, err := s.openStore(ctx)
		if err != nil {
			return err
		}
		s.store = store
	}

	path := s.config().CatalogPath()
	cat, err := catalog.LoadOrDefault(path)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	s.catalogPath = path
	s.install(cat)

	stats := cat.Stats()
	s.logger.Info("catalog loaded",
		"path", displayPath(path),
		"blocks", stats.Blocks,
		"compositions", stats.Compositions,
		"libraries", stats.Libraries)
	return nil
}

// openStore opens the configured storage backend.
func (s *Server) openStore(ctx context.Context) (prompts.Store, error) {
	cfg := s.config()
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		s.logger.Warn("using in-memory override store; edits are lost on shutdown")
		return prompts.NewMemoryStore(), nil

	case config.BackendDefra:
		if err := s.startDefra(ctx, cfg.Defra.URL); err != nil {
			return nil, err
		}
		s.logger.Info("initializing schemas")
		if err := schema.Initialize(ctx, s.defraClient, s.logger); err != nil {
			return nil, fmt.Errorf("schema initialization failed: %w", err)
		}
		return prompts.NewDefraStore(s.defraClient, s.logger), nil

	default:
		path := cfg.SQLitePath(s.home.Path())
		store, err := prompts.OpenSQLiteStore(path, s.logger)
		if err != nil {
			return nil, err
		}
		s.logger.Info("opened override store", "backend", config.BackendSQLite, "path", path)
		return store, nil
	}
}

// startDefra connects to DefraDB, starting the container unless url points
// at an instance managed elsewhere.
func (s *Server) startDefra(ctx context.Context, url string) error {
	if url != "" {
		s.defraClient = defra.NewClient(url)
		if err := defra.WaitHealthy(ctx, s.defraClient, 30*time.Second, s.logger); err != nil {
			return fmt.Errorf("DefraDB at %s not ready: %w", url, err)
		}
		s.logger.Info("DefraDB is ready", "url", url)
		return nil
	}

	// Validate any existing container matches our config
	if err := s.defraManager.ValidateExisting(ctx); err != nil {
		return fmt.Errorf("existing DefraDB container incompatible: %w", err)
	}

	s.logger.Info("starting DefraDB")
	if err := s.defraManager.Start(ctx); err != nil {
		return fmt.Errorf("failed to start DefraDB: %w", err)
	}

	s.defraClient = defra.NewClient(s.defraManager.URL())
	if err := s.defraClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("DefraDB health check failed: %w", err)
	}
	s.logger.Info("DefraDB is ready", "url", s.defraManager.URL())
	return nil
}

// install builds a fresh engine around cat and publishes it to handlers.
func (s *Server) install(cat *catalog.Catalog) {
	s.services.Store(&svcctx.Services{
		Engine:         prompts.NewEngine(s.store, cat, s.logger),
		Catalog:        cat,
		Store:          s.store,
		StorageBackend: s.backendName(),
		DefraClient:    s.defraClient,
		Logger:         s.logger,
		Home:           s.home,
	})
}

func (s *Server) backendName() string {
	switch s.store.(type) {
	case *prompts.MemoryStore:
		return config.BackendMemory
	case *prompts.DefraStore:
		return config.BackendDefra
	case *prompts.SQLiteStore:
		return config.BackendSQLite
	default:
		return "custom"
	}
}

// reload swaps in a new engine when the catalog changes. Storage settings
// only take effect on restart.
func (s *Server) reload(cfg *config.Config) {
	if cfg.Storage.Backend != s.backendName() {
		s.logger.Warn("storage backend change requires a restart",
			"current", s.backendName(), "configured", cfg.Storage.Backend)
	}

	path := cfg.CatalogPath()
	cat, err := catalog.LoadOrDefault(path)
	if err != nil {
		s.logger.Error("catalog reload failed; keeping previous catalog", "path", displayPath(path), "error", err)
		return
	}

	s.mu.Lock()
	s.catalogPath = path
	s.mu.Unlock()
	s.install(cat)
	s.logger.Info("catalog reloaded", "path", displayPath(path), "blocks", cat.Stats().Blocks)
}

// shutdown performs graceful shutdown of the HTTP server, the store and DefraDB.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error("override store close error", "error", err)
		}
	}

	if s.defraManager != nil {
		s.logger.Info("stopping DefraDB")
		if err := s.defraManager.Stop(shutdownCtx); err != nil {
			s.logger.Error("DefraDB stop error", "error", err)
		}
		if err := s.defraManager.Close(); err != nil {
			s.logger.Error("DefraDB manager close error", "error", err)
		}
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

// Services returns the current services, or nil before Init.
func (s *Server) Services() *svcctx.Services {
	return s.services.Load()
}

// Close releases the store and container without an HTTP server having run.
func (s *Server) Close() error {
	return s.shutdown()
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc := s.services.Load(); svc != nil {
			ctx = svcctx.WithServices(ctx, svc)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireInit is middleware that ensures the server is fully initialized.
// Returns 503 Service Unavailable until the store is open and the engine built.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.services.Load() == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"server not fully initialized"}`))
			return
		}
		next(w, r)
	}
}

func displayPath(path string) string {
	if path == "" {
		return "(embedded)"
	}
	return path
}
