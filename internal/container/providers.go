// Package container provides dependency injection and lifecycle management
// for the document verification engine.
package container

import (
	"fmt"

	"github.com/docuprep/docverify/internal/application/dispatcher"
	"github.com/docuprep/docverify/internal/application/port"
	"github.com/docuprep/docverify/internal/application/service"
	"github.com/docuprep/docverify/internal/application/workflow"
	"github.com/docuprep/docverify/internal/config"
	"github.com/docuprep/docverify/internal/infrastructure/analysis"
	"github.com/docuprep/docverify/internal/infrastructure/external/openai"
	"github.com/docuprep/docverify/internal/infrastructure/external/provider"
	"github.com/docuprep/docverify/internal/infrastructure/persistence/repository"
	"github.com/docuprep/docverify/internal/infrastructure/persistence/sqlite"
	"github.com/docuprep/docverify/internal/infrastructure/storage"
	"github.com/docuprep/docverify/internal/report"
	"github.com/docuprep/docverify/pkg/database"
	"go.uber.org/zap"
)

// DatabaseBundle holds database-related components
type DatabaseBundle struct {
	DB             *database.DB
	TransactionMgr *sqlite.DB
}

// RepositoryBundle groups all repositories
type RepositoryBundle struct {
	Document    port.DocumentRepository
	Suggestion  port.SuggestionRepository
	Submission  port.SubmissionRepository
	Improvement port.ImprovementRepository
}

// StorageBundle holds storage-related components
type StorageBundle struct {
	FileStorage   port.FileStorage
	FolderManager port.FolderManager
}

// ServiceBundle groups all application services
type ServiceBundle struct {
	Document   service.DocumentService
	Status     service.StatusService
	Request    service.RequestService
	Suggestion service.SuggestionService
	Provider   service.ProviderService
}

// ProvideDatabase opens the sqlite database, runs pending migrations and
// wraps the connection in a transaction manager
func ProvideDatabase(cfg *config.DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	if cfg.MigrationsDir != "" {
		migrator := database.NewMigrator(db, logger)
		if err := migrator.RunMigrations(cfg.MigrationsDir); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	return &DatabaseBundle{
		DB:             db,
		TransactionMgr: sqlite.NewDB(db.DB, logger),
	}, nil
}

// ProvideRepositories creates all repositories on a database connection
func ProvideRepositories(bundle *DatabaseBundle, logger *zap.Logger) *RepositoryBundle {
	sqlDB := bundle.DB.DB
	return &RepositoryBundle{
		Document:    repository.NewDocumentRepository(sqlDB, logger),
		Suggestion:  repository.NewSuggestionRepository(sqlDB, logger),
		Submission:  repository.NewSubmissionRepository(sqlDB, logger),
		Improvement: repository.NewImprovementRepository(sqlDB, logger),
	}
}

// ProvideStorage creates file storage and folder manager over the document
// directory
func ProvideStorage(cfg *config.StorageConfig, logger *zap.Logger) *StorageBundle {
	return &StorageBundle{
		FileStorage:   storage.NewLocalFileStorage(cfg.DocumentDir, logger),
		FolderManager: storage.NewLocalFolderManager(cfg.DocumentDir, logger),
	}
}

// ProvideProviderClient creates the third-party verification gateway client
func ProvideProviderClient(cfg *config.ProviderConfig, logger *zap.Logger) port.ProviderClient {
	return provider.NewHTTPClient(cfg.BaseURL, cfg.APIKey, cfg.APITimeout, logger)
}

// ProvideAnalyzer creates the GPT-backed document analyzer
func ProvideAnalyzer(cfg *config.OpenAIConfig, logger *zap.Logger) port.DocumentAnalyzer {
	return openai.NewAnalyzer(cfg.APIKey, cfg.BaseURL, cfg.Model, logger)
}

// ProvideServices wires the application services
func ProvideServices(
	repos *RepositoryBundle,
	store *StorageBundle,
	txManager port.TransactionManager,
	providerClient port.ProviderClient,
	analyzer port.DocumentAnalyzer,
	extractor *analysis.PDFTextExtractor,
	disp dispatcher.Dispatcher,
	engine workflow.Engine,
	svcLogger service.Logger,
) *ServiceBundle {
	statusService := service.NewStatusService(repos.Document, engine, txManager, disp, svcLogger)

	return &ServiceBundle{
		Document: service.NewDocumentService(repos.Document, store.FileStorage, store.FolderManager, svcLogger),
		Status:   statusService,
		Request:  service.NewRequestService(repos.Document, store.FileStorage, store.FolderManager, svcLogger),
		Suggestion: service.NewSuggestionService(
			repos.Document,
			repos.Suggestion,
			repos.Improvement,
			analyzer,
			extractor,
			store.FileStorage,
			store.FolderManager,
			txManager,
			disp,
			svcLogger,
		),
		Provider: service.NewProviderService(
			providerClient,
			repos.Submission,
			repos.Document,
			statusService,
			disp,
			svcLogger,
		),
	}
}

// ProvideReportWriter creates the xlsx report writer
func ProvideReportWriter(logger *zap.Logger) *report.ExcelWriter {
	return report.NewExcelWriter(logger)
}
