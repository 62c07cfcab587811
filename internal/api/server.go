package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tangpeiwen/clipsync/internal/ports"
	"github.com/tangpeiwen/clipsync/internal/usecase"
	"github.com/tangpeiwen/clipsync/pkg/logger"
)

const (
	serviceName    = "clipsync"
	serviceVersion = "1.0.0"
)

// Processor runs one publish attempt; satisfied by usecase.Pipeline.
type Processor interface {
	Process(ctx context.Context, content, databaseID string) usecase.Result
}

// HealthChecker reports the state of one dependency.
type HealthChecker func() CheckResult

// CheckResult is one named entry in the health response.
type CheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Server is the HTTP face of the pipeline.
type Server struct {
	engine          *gin.Engine
	addr            string
	processor       Processor
	history         ports.PublishLog
	defaultDatabase string
	checks          map[string]HealthChecker
	started         time.Time
	logger          *slog.Logger
}

// ServerDeps wires the server's collaborators.
type ServerDeps struct {
	Addr            string
	Processor       Processor
	History         ports.PublishLog
	DefaultDatabase string
	Checks          map[string]HealthChecker
	Logger          *slog.Logger
}

// NewServer builds the router with its middleware chain and routes.
func NewServer(deps ServerDeps) *Server {
	gin.SetMode(gin.ReleaseMode)
	gin.DefaultWriter = logger.New("gin").Writer()

	s := &Server{
		addr:            deps.Addr,
		processor:       deps.Processor,
		history:         deps.History,
		defaultDatabase: deps.DefaultDatabase,
		checks:          deps.Checks,
		started:         time.Now(),
		logger:          deps.Logger,
	}

	engine := gin.New()
	engine.Use(RequestID(), AccessLog(deps.Logger), gin.Recovery())

	engine.POST("/process", s.handleProcess)
	engine.GET("/health", s.handleHealth)
	engine.GET("/publications", s.handlePublications)

	s.engine = engine
	return s
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if s.logger != nil {
		s.logger.Info("server listening", "addr", s.addr)
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}
