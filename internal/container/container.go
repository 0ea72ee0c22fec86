package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/docuprep/docverify/internal/application/dispatcher"
	"github.com/docuprep/docverify/internal/application/port"
	"github.com/docuprep/docverify/internal/application/workflow"
	"github.com/docuprep/docverify/internal/config"
	"github.com/docuprep/docverify/internal/domain/event"
	"github.com/docuprep/docverify/internal/infrastructure/analysis"
	"github.com/docuprep/docverify/internal/report"
	"github.com/docuprep/docverify/pkg/logger"
	"go.uber.org/zap"
)

// Container manages application dependencies and lifecycle. Components are
// initialized in dependency order and torn down in reverse.
type Container struct {
	config *config.Config
	logger *zap.Logger

	database     *DatabaseBundle
	repositories *RepositoryBundle
	storage      *StorageBundle

	providerClient port.ProviderClient
	analyzer       port.DocumentAnalyzer
	extractor      *analysis.PDFTextExtractor

	dispatcher dispatcher.Dispatcher
	engine     workflow.Engine
	services   *ServiceBundle
	reporter   *report.ExcelWriter

	mu     sync.Mutex
	ready  atomic.Bool
	closed atomic.Bool
}

// HealthStatus reports the health of all components
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth is the health of a single component
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a container from configuration. Call Start to
// initialize components.
func NewContainer(cfg *config.Config, log *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: log,
	}, nil
}

// Start initializes all components in dependency order
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.logger.Info("Starting container initialization")

	db, err := ProvideDatabase(&c.config.Database, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.database = db
	c.repositories = ProvideRepositories(db, c.logger)
	c.logger.Info("Database initialized")

	c.providerClient = ProvideProviderClient(&c.config.Provider, c.logger)
	c.analyzer = ProvideAnalyzer(&c.config.OpenAI, c.logger)
	c.extractor = analysis.NewPDFTextExtractor(c.logger)
	c.logger.Info("External clients initialized")

	c.storage = ProvideStorage(&c.config.Storage, c.logger)
	c.logger.Info("Storage initialized")

	svcLogger := logger.NewKV(c.logger)
	c.dispatcher = dispatcher.NewDispatcher(dispatcher.WithLogger(svcLogger))
	c.engine = workflow.NewEngine(
		c.repositories.Document,
		workflow.WithDispatcher(c.dispatcher),
		workflow.WithTransactionManager(c.database.TransactionMgr),
	)
	c.logger.Info("Dispatcher and workflow engine initialized")

	c.services = ProvideServices(
		c.repositories,
		c.storage,
		c.database.TransactionMgr,
		c.providerClient,
		c.analyzer,
		c.extractor,
		c.dispatcher,
		c.engine,
		svcLogger,
	)
	c.reporter = ProvideReportWriter(c.logger)
	c.logger.Info("Application services initialized")

	c.subscribeAuditTrail()

	c.ready.Store(true)
	c.logger.Info("Container started")
	return nil
}

// subscribeAuditTrail logs every domain event as a structured audit record
func (c *Container) subscribeAuditTrail() {
	auditLogger := c.logger.Named("audit")

	handler := func(ctx context.Context, evt *event.Event) error {
		auditLogger.Info("Domain event",
			zap.String("event_id", evt.ID),
			zap.String("event_type", evt.Type.String()),
			zap.String("document_id", evt.DocumentID),
			zap.Any("payload", evt.Payload),
		)
		return nil
	}

	for _, t := range []event.Type{
		event.TypeVerificationRequested,
		event.TypeVerificationCanceled,
		event.TypeStatusChanged,
		event.TypeOutcomeApplied,
		event.TypeProviderSubmitted,
		event.TypeSuggestionApplied,
		event.TypeSuggestionsGenerated,
		event.TypeImprovementStarted,
		event.TypeImprovementCompleted,
	} {
		c.dispatcher.SubscribeNamed(t, "audit-trail", handler)
	}
}

// Close shuts down all components in reverse order
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")

	var errs []error

	if c.dispatcher != nil {
		if err := c.dispatcher.Close(); err != nil {
			c.logger.Error("Failed to close dispatcher", zap.Error(err))
			errs = append(errs, fmt.Errorf("close dispatcher: %w", err))
		}
	}

	if c.database != nil {
		if err := c.database.DB.Close(); err != nil {
			c.logger.Error("Failed to close database", zap.Error(err))
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}

	c.closed.Store(true)
	c.ready.Store(false)

	if len(errs) > 0 {
		return fmt.Errorf("container closed with %d errors", len(errs))
	}

	c.logger.Info("Container closed")
	return nil
}

// Ready returns true when all components are initialized
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Services returns the application service bundle
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// Reporter returns the xlsx report writer
func (c *Container) Reporter() *report.ExcelWriter {
	return c.reporter
}

// Health reports the health of all components
func (c *Container) Health() *HealthStatus {
	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}

	if !c.Ready() {
		status.Overall = false
		status.Components["container"] = ComponentHealth{Healthy: false, Message: "not ready"}
	}

	if c.database != nil {
		if err := c.database.DB.Ping(); err != nil {
			status.Components["database"] = ComponentHealth{Healthy: false, Message: fmt.Sprintf("ping failed: %v", err)}
			status.Overall = false
		} else {
			status.Components["database"] = ComponentHealth{Healthy: true}
		}
	} else {
		status.Components["database"] = ComponentHealth{Healthy: false, Message: "not initialized"}
		status.Overall = false
	}

	if c.dispatcher != nil {
		status.Components["dispatcher"] = ComponentHealth{Healthy: true}
	} else {
		status.Components["dispatcher"] = ComponentHealth{Healthy: false, Message: "not initialized"}
		status.Overall = false
	}

	if c.services != nil {
		status.Components["services"] = ComponentHealth{Healthy: true}
	} else {
		status.Components["services"] = ComponentHealth{Healthy: false, Message: "not initialized"}
		status.Overall = false
	}

	return status
}
