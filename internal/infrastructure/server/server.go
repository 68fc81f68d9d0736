// Package server assembles the router, the graph and the service registry.
package server

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/AFatNiBBa/config-fs/internal/api/http"
	"github.com/AFatNiBBa/config-fs/internal/api/middleware"
	"github.com/AFatNiBBa/config-fs/internal/api/ws"
	"github.com/AFatNiBBa/config-fs/internal/codec"
	"github.com/AFatNiBBa/config-fs/internal/infrastructure/config"
	"github.com/AFatNiBBa/config-fs/internal/infrastructure/logging"
	"github.com/AFatNiBBa/config-fs/internal/infrastructure/monitoring"
	"github.com/AFatNiBBa/config-fs/internal/origin"
	"github.com/AFatNiBBa/config-fs/internal/providers/graph"
	"github.com/AFatNiBBa/config-fs/internal/service"
	"github.com/AFatNiBBa/config-fs/internal/vfs"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	router   *gin.Engine
	http     *http.Server
	root     *vfs.Root
	loader   *origin.Loader
	registry *service.Registry
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
}

// New creates a server instance from configuration.
func New(cfg *config.Config) (*Server, error) {
	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		logger = logging.NewDefault()
	}

	loader := origin.NewLoader(codec.New(codec.Names{}))
	root, err := loadRoot(cfg, loader)
	if err != nil {
		return nil, err
	}

	logger.Info("initializing config-fs server",
		zap.String("port", cfg.Server.Port),
		zap.String("definition", cfg.Graph.Definition))

	metrics := monitoring.NewMetrics()
	registry := service.NewRegistry()
	provider := graph.NewProvider(root, loader, logger.Named("graph"))
	if err := registry.Register(provider); err != nil {
		return nil, err
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}
	router.Use(monitoring.Middleware(metrics))

	var graphMu sync.Mutex
	handlers := apihttp.NewHandlers(provider, registry, metrics, logger.Named("http"), &graphMu)
	handlers.Register(router)

	wsHandler := ws.NewHandler(registry, metrics, logger.Named("ws"), &graphMu)
	router.GET("/ws", wsHandler.HandleConnection)

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})))

	return &Server{
		router:   router,
		root:     root,
		loader:   loader,
		registry: registry,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
	}, nil
}

// Router exposes the router, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Root exposes the graph root.
func (s *Server) Root() *vfs.Root {
	return s.root
}

// Run serves until the listener fails or Close is called.
func (s *Server) Run() error {
	addr := fmt.Sprintf("%s:%s", s.config.Server.Host, s.config.Server.Port)
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("listening", zap.String("addr", addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts the server down gracefully.
func (s *Server) Close() error {
	defer func() {
		_ = s.logger.Sync()
	}()
	if s.http == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}

func loadRoot(cfg *config.Config, loader *origin.Loader) (*vfs.Root, error) {
	if cfg.Graph.Definition == "" {
		root := vfs.NewRoot(nil)
		root.SetSerializer(codec.New(codec.Names{}))
		return root, nil
	}
	dir := cfg.Graph.ContextDir
	if dir == "" {
		dir = filepath.Dir(cfg.Graph.Definition)
	}
	return loader.Load(cfg.Graph.Definition, dir, cfg.Graph.Reload)
}
