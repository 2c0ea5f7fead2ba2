package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/seasworth/seasworthai/internal/config"
	"github.com/seasworth/seasworthai/internal/metrics"
	"github.com/seasworth/seasworthai/internal/upstream"
)

// Server represents the HTTP server
type Server struct {
	config   *config.Config
	router   *gin.Engine
	server   *http.Server
	upstream *upstream.Client
	metrics  *metrics.Collector
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, host string, port int) *Server {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.Debug {
		// Log to file in $TMPDIR
		logPath := filepath.Join(os.TempDir(), "seasworthai.log")
		logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			slog.Warn("Could not create log file", "path", logPath, "error", err)
		} else {
			gin.DefaultWriter = io.MultiWriter(logFile, os.Stdout)
			gin.DefaultErrorWriter = io.MultiWriter(logFile, os.Stderr)
			slog.Info("Logging gin output to file", "path", logPath)
		}
	} else {
		gin.DisableConsoleColor()
	}

	collector := metrics.NewCollector()

	router := gin.New()
	router.Use(
		requestContext(),
		recordMetrics(collector),
		cors.New(corsConfig(cfg.CORSOrigins)),
		errorEnvelope(),
		limitBody(cfg.MaxBodyBytes),
	)
	if cfg.Debug {
		router.Use(gin.Logger())
	}

	srv := &http.Server{
		Addr:              getAddr(host, port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	server := &Server{
		config:   cfg,
		router:   router,
		server:   srv,
		upstream: upstream.New(cfg, collector),
		metrics:  collector,
	}

	server.setupRoutes()

	return server
}

// Handler exposes the router, mainly for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// CreateShutdownContext creates a context for graceful shutdown
func CreateShutdownContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// getAddr returns the address string from host and port
func getAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", RequestIDHeader},
		ExposeHeaders: []string{RequestIDHeader},
		MaxAge:        time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
