// Package http provides the HTTP adapter over the application services.
// It is a thin translation layer: bind request, call service, map errors.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/docuprep/docverify/internal/application/service"
	"github.com/docuprep/docverify/internal/report"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Services bundles the application services the HTTP adapter exposes
type Services struct {
	Document   service.DocumentService
	Status     service.StatusService
	Request    service.RequestService
	Suggestion service.SuggestionService
	Provider   service.ProviderService
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	services   Services
	reporter   *report.ExcelWriter
	healthFn   HealthFunc
	logger     Logger
}

// NewServer creates a new HTTP server over the given services
func NewServer(config ServerConfig, services Services, reporter *report.ExcelWriter, healthFn HealthFunc, logger Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		config:   config,
		router:   gin.New(),
		services: services,
		reporter: reporter,
		healthFn: healthFn,
		logger:   logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		)
	}
}

func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.services, s.reporter, s.healthFn, s.logger)

	s.router.GET("/health", handlers.HealthCheck)

	api := s.router.Group("/api")
	{
		api.POST("/documents", handlers.CreateDocument)
		api.GET("/documents/:id", handlers.GetDocument)
		api.GET("/documents/:id/report", handlers.DownloadReport)

		// Verification status state machine
		api.GET("/documents/:id/verification", handlers.GetVerificationStatus)
		api.POST("/documents/:id/verification/request", handlers.RequestVerification)
		api.POST("/documents/:id/verification/cancel", handlers.CancelVerification)
		api.POST("/documents/:id/verification/outcome", handlers.ApplyOutcome)

		// Verification request steps
		api.GET("/documents/:id/verification/step", handlers.GetCurrentStep)
		api.POST("/documents/:id/verification/additional-info", handlers.SubmitAdditionalInfo)
		api.POST("/documents/:id/verification/supporting-documents", handlers.UploadSupportingDocument)

		// Optimization suggestions and improvement workflow
		api.GET("/documents/:id/suggestions", handlers.GetSuggestions)
		api.POST("/documents/:id/suggestions/generate", handlers.GenerateSuggestions)
		api.POST("/documents/:id/suggestions/:index/apply", handlers.ApplySuggestion)
		api.GET("/documents/:id/improvement", handlers.GetImprovementWorkflow)
		api.POST("/documents/:id/improvement/start", handlers.StartImprovement)
		api.POST("/documents/:id/improvement/upload", handlers.UploadImprovedDocument)
		api.POST("/documents/:id/improvement/complete", handlers.CompleteImprovement)
		api.GET("/documents/:id/comparison/:improvedId", handlers.GetComparison)

		// Third-party providers
		api.GET("/providers", handlers.ListProviders)
		api.POST("/documents/:id/provider/select", handlers.SelectProvider)
		api.POST("/documents/:id/provider/submit", handlers.SubmitToProvider)
		api.GET("/documents/:id/provider/submissions", handlers.ListSubmissions)
		api.GET("/documents/:id/provider/status/:reference", handlers.CheckProviderStatus)
	}
}

// Start starts the HTTP server and blocks until ctx is canceled or the
// server fails
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
