package server

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/api/http"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/api/middleware"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/api/ws"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/domain/desktop"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/infrastructure/config"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/infrastructure/logging"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/infrastructure/monitoring"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/infrastructure/tracing"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/providers/progress"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	desktop  *desktop.Desktop
	reporter *progress.Reporter
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	// Initialize logger
	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		logger = logging.NewDefault()
	}

	logger.Info("Initializing Phalanx Desktop Server",
		zap.String("port", cfg.Server.Port),
		zap.String("namespace", cfg.Desktop.Namespace),
		zap.String("data_dir", cfg.Desktop.DataDir),
	)

	// Initialize metrics first (needed by other components)
	metrics := monitoring.NewMetrics()
	usage := monitoring.NewUsage()
	logger.Info("Performance monitoring initialized")

	// Initialize request tracing
	tracer := tracing.New("desktop", logger.Logger)
	logger.Info("Request tracing initialized")

	// Initialize the desktop with the compiled-in catalog
	d, err := desktop.New(cfg.Desktop, desktop.Options{
		Metrics: metrics,
		Usage:   usage,
		Log:     logger,
	})
	if err != nil {
		return nil, err
	}

	// Seed catalog descriptor files
	logger.Info("Loading catalog descriptors...")
	if err := d.Seed(context.Background()); err != nil {
		logger.Warn("Failed to seed catalog descriptors", zap.Error(err))
	}

	// Initialize progression reporting (optional)
	var reporter *progress.Reporter
	if cfg.Progress.Enabled {
		client := progress.New(cfg.Progress, logger)
		reporter = progress.NewReporter(client, d.Bus(), logger)
		reporter.Start()
		logger.Info("Progression reporting enabled", zap.String("addr", cfg.Progress.Address))
	}

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(cfg.Server.AllowOrigins...))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	// Create handlers
	handlers := http.NewHandlers(d, metrics, usage, logger)
	wsHandler := ws.NewHandler(d, metrics, logger)

	// Register routes
	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	// Application catalog
	router.GET("/registry/apps", handlers.ListRegistryApps)
	router.POST("/registry/apps", handlers.RegisterApp)
	router.GET("/registry/apps/:id", handlers.GetRegistryApp)
	router.DELETE("/registry/apps/:id", handlers.DeleteRegistryApp)
	router.POST("/registry/apps/:id/reset", handlers.ResetAppOpened)
	router.POST("/registry/reset", handlers.ResetAllOpened)

	// Application launching
	router.POST("/apps/:id/open", handlers.OpenApp)
	router.POST("/apps/:id/launch-level", handlers.LaunchLevelApp)

	// Window management
	router.GET("/windows", handlers.ListWindows)
	router.GET("/windows/:id", handlers.GetWindow)
	router.POST("/windows/:id/focus", handlers.FocusWindow)
	router.DELETE("/windows/:id", handlers.CloseWindow)
	router.POST("/windows/:id/minimize", handlers.MinimizeWindow)
	router.POST("/windows/:id/toggle", handlers.ToggleWindow)
	router.POST("/windows/:id/maximize", handlers.MaximizeWindow)
	router.PUT("/windows/:id/bounds", handlers.SetWindowBounds)

	// Mission level
	router.GET("/level", handlers.GetLevel)
	router.PUT("/level", handlers.SetLevel)

	// Overlays and mission HUD
	router.GET("/overlays", handlers.ListOverlays)
	router.DELETE("/overlays", handlers.CloseOverlays)
	router.POST("/hud/damage", handlers.Damage)

	// Session endpoints
	router.POST("/sessions/save", handlers.SaveSession)
	router.POST("/sessions/save-default", handlers.SaveDefaultSession)
	router.GET("/sessions", handlers.ListSessions)
	router.GET("/sessions/:name", handlers.GetSession)
	router.POST("/sessions/:name/restore", handlers.RestoreSession)
	router.DELETE("/sessions/:name", handlers.DeleteSession)

	// Statistics and client logs
	router.GET("/stats", handlers.Stats)
	router.POST("/logs/stream", handlers.StreamClientLogs)

	// WebSocket
	router.GET("/stream", wsHandler.HandleConnection)

	// Metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	logger.Info("Server initialized successfully")

	return &Server{
		router:   router,
		desktop:  d,
		reporter: reporter,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
	}, nil
}

// Run starts the HTTP server
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.logger.Info("Starting HTTP server", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Close gracefully shuts down the server
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	if s.reporter != nil {
		s.reporter.Stop()
		s.logger.Info("Stopped progression reporting")
	}
	s.desktop.Close()

	// Sync logger before exit
	s.logger.Sync()

	return nil
}
