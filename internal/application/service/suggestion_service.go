package service

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/docuprep/docverify/internal/application/dispatcher"
	"github.com/docuprep/docverify/internal/application/port"
	"github.com/docuprep/docverify/internal/domain/entity"
	"github.com/docuprep/docverify/internal/domain/event"
)

// SuggestionList is the result of a suggestion query. An empty Suggestions
// slice signals that no optimization is needed.
type SuggestionList struct {
	DocumentID  string                           `json:"document_id"`
	Suggestions []*entity.OptimizationSuggestion `json:"suggestions"`
	Score       int                              `json:"score"`
}

// ImprovedUpload carries the file for an improved document upload
type ImprovedUpload struct {
	FileName    string
	ContentType string
	Content     []byte
}

// TextExtractor pulls analyzable text out of a stored document file
type TextExtractor interface {
	ExtractText(ctx context.Context, filePath string) (string, error)
}

// SuggestionService computes and tracks quality-improvement suggestions and
// the improve-and-reupload workflow
type SuggestionService interface {
	// GetSuggestions returns the current suggestion list and derived score
	GetSuggestions(ctx context.Context, documentID string) (*SuggestionList, error)

	// GenerateSuggestions analyzes the document content and replaces the
	// suggestion list with fresh findings
	GenerateSuggestions(ctx context.Context, documentID string) (*SuggestionList, error)

	// ApplySuggestion marks the suggestion at index as applied. Idempotent:
	// re-applying is a no-op, not an error.
	ApplySuggestion(ctx context.Context, documentID string, index int) (*SuggestionList, error)

	// StartWorkflow begins the improvement workflow for a document
	StartWorkflow(ctx context.Context, documentID string) (*entity.ImprovementWorkflow, error)

	// UploadImprovedDocument stores an improved version of the document.
	// Does not by itself alter the workflow status.
	UploadImprovedDocument(ctx context.Context, documentID string, upload ImprovedUpload) (*entity.ImprovedDocumentRecord, error)

	// CompleteWorkflow finishes the improvement workflow
	CompleteWorkflow(ctx context.Context, documentID string) (*entity.ImprovementWorkflow, error)

	// IsWorkflowActive reports whether the improvement workflow is started
	// and not yet completed
	IsWorkflowActive(ctx context.Context, documentID string) (bool, error)

	// GetComparison pairs the analysis snapshots of an original document and
	// its improved version
	GetComparison(ctx context.Context, originalID, improvedID string) (*entity.ComparisonResult, error)
}

type suggestionServiceImpl struct {
	documentRepo    port.DocumentRepository
	suggestionRepo  port.SuggestionRepository
	improvementRepo port.ImprovementRepository
	analyzer        port.DocumentAnalyzer
	extractor       TextExtractor
	fileStorage     port.FileStorage
	folderManager   port.FolderManager
	txManager       port.TransactionManager
	dispatcher      dispatcher.Dispatcher
	logger          Logger
	now             func() time.Time
}

// NewSuggestionService creates a new SuggestionService
func NewSuggestionService(
	documentRepo port.DocumentRepository,
	suggestionRepo port.SuggestionRepository,
	improvementRepo port.ImprovementRepository,
	analyzer port.DocumentAnalyzer,
	extractor TextExtractor,
	fileStorage port.FileStorage,
	folderManager port.FolderManager,
	txManager port.TransactionManager,
	disp dispatcher.Dispatcher,
	logger Logger,
) SuggestionService {
	return &suggestionServiceImpl{
		documentRepo:    documentRepo,
		suggestionRepo:  suggestionRepo,
		improvementRepo: improvementRepo,
		analyzer:        analyzer,
		extractor:       extractor,
		fileStorage:     fileStorage,
		folderManager:   folderManager,
		txManager:       txManager,
		dispatcher:      disp,
		logger:          logger,
		now:             time.Now,
	}
}

func (s *suggestionServiceImpl) GetSuggestions(ctx context.Context, documentID string) (*SuggestionList, error) {
	if _, err := s.fetch(ctx, documentID); err != nil {
		return nil, err
	}

	suggestions, err := s.suggestionRepo.GetByDocumentID(ctx, documentID)
	if err != nil {
		s.logger.Error("Failed to load suggestions", "error", err, "document_id", documentID)
		return nil, err
	}

	return &SuggestionList{
		DocumentID:  documentID,
		Suggestions: suggestions,
		Score:       entity.OptimizationScore(suggestions),
	}, nil
}

func (s *suggestionServiceImpl) GenerateSuggestions(ctx context.Context, documentID string) (*SuggestionList, error) {
	doc, err := s.fetch(ctx, documentID)
	if err != nil {
		return nil, err
	}

	text, err := s.extractor.ExtractText(ctx, doc.FilePath)
	if err != nil {
		s.logger.Error("Failed to extract document text", "error", err, "document_id", documentID)
		return nil, err
	}

	result, err := s.analyzer.Analyze(ctx, doc.DocumentType, text)
	if err != nil {
		s.logger.Error("Document analysis failed", "error", err, "document_id", documentID)
		return nil, err
	}

	suggestions := make([]*entity.OptimizationSuggestion, 0, len(result.Findings))
	for i, finding := range result.Findings {
		severity := finding.Severity
		if !entity.IsValidSeverity(severity) {
			severity = entity.SeverityMinor
		}
		suggestions = append(suggestions, &entity.OptimizationSuggestion{
			DocumentID: documentID,
			Index:      i,
			Message:    finding.Message,
			Severity:   severity,
			CreatedAt:  s.now(),
		})
	}

	// The list swap and the analysis snapshot land atomically: a partial
	// replace would inflate the derived score
	err = s.inTransaction(ctx, func(ctx context.Context) error {
		if err := s.suggestionRepo.Replace(ctx, documentID, suggestions); err != nil {
			return err
		}
		if result.RawJSON != "" {
			return s.documentRepo.UpdateAnalysis(ctx, documentID, result.RawJSON)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to store suggestions", "error", err, "document_id", documentID)
		return nil, err
	}

	s.logger.Info("Suggestions generated",
		"document_id", documentID,
		"count", len(suggestions),
	)

	if s.dispatcher != nil {
		s.dispatcher.DispatchAsync(ctx, event.NewEvent(event.TypeSuggestionsGenerated, documentID, map[string]interface{}{
			"count": len(suggestions),
		}))
	}

	return s.GetSuggestions(ctx, documentID)
}

func (s *suggestionServiceImpl) ApplySuggestion(ctx context.Context, documentID string, index int) (*SuggestionList, error) {
	if _, err := s.fetch(ctx, documentID); err != nil {
		return nil, err
	}

	suggestions, err := s.suggestionRepo.GetByDocumentID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if index < 0 || index >= len(suggestions) {
		return nil, fmt.Errorf("%w: index %d, list size %d", ErrIndexOutOfRange, index, len(suggestions))
	}

	// Already applied: no-op by contract
	if !suggestions[index].Applied {
		if err := s.suggestionRepo.MarkApplied(ctx, documentID, index); err != nil {
			s.logger.Error("Failed to mark suggestion applied", "error", err, "document_id", documentID, "index", index)
			return nil, err
		}

		s.logger.Info("Suggestion applied", "document_id", documentID, "index", index)

		if s.dispatcher != nil {
			s.dispatcher.DispatchAsync(ctx, event.NewEvent(event.TypeSuggestionApplied, documentID, map[string]interface{}{
				"index": index,
			}))
		}
	}

	return s.GetSuggestions(ctx, documentID)
}

func (s *suggestionServiceImpl) StartWorkflow(ctx context.Context, documentID string) (*entity.ImprovementWorkflow, error) {
	if _, err := s.fetch(ctx, documentID); err != nil {
		return nil, err
	}

	now := s.now()
	wf := &entity.ImprovementWorkflow{
		DocumentID: documentID,
		Status:     entity.ImprovementStatusStarted,
		StartedAt:  &now,
	}

	if err := s.improvementRepo.UpsertWorkflow(ctx, wf); err != nil {
		s.logger.Error("Failed to start improvement workflow", "error", err, "document_id", documentID)
		return nil, err
	}

	s.logger.Info("Improvement workflow started", "document_id", documentID)

	if s.dispatcher != nil {
		s.dispatcher.DispatchAsync(ctx, event.NewEvent(event.TypeImprovementStarted, documentID, nil))
	}

	return wf, nil
}

func (s *suggestionServiceImpl) UploadImprovedDocument(ctx context.Context, documentID string, upload ImprovedUpload) (*entity.ImprovedDocumentRecord, error) {
	if upload.FileName == "" || len(upload.Content) == 0 {
		return nil, fmt.Errorf("%w: file name and content are required", ErrValidation)
	}

	if _, err := s.fetch(ctx, documentID); err != nil {
		return nil, err
	}

	folder := s.folderManager.SanitizeName(documentID)
	if _, err := s.folderManager.CreateFolder(ctx, folder); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	improvedID := uuid.NewString()
	relPath := filepath.Join(folder, "improved", improvedID+filepath.Ext(upload.FileName))
	if err := s.fileStorage.Save(ctx, relPath, upload.Content); err != nil {
		s.logger.Error("Failed to store improved document", "error", err, "document_id", documentID)
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	rec := &entity.ImprovedDocumentRecord{
		ImprovedDocumentID: improvedID,
		OriginalDocumentID: documentID,
		FilePath:           relPath,
		FileURL:            s.fileStorage.GetFullPath(relPath),
		CreatedAt:          s.now(),
	}

	if err := s.improvementRepo.InsertImprovedDocument(ctx, rec); err != nil {
		s.logger.Error("Failed to record improved document", "error", err, "document_id", documentID)
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	s.logger.Info("Improved document uploaded",
		"document_id", documentID,
		"improved_document_id", improvedID,
	)

	return rec, nil
}

func (s *suggestionServiceImpl) CompleteWorkflow(ctx context.Context, documentID string) (*entity.ImprovementWorkflow, error) {
	wf, err := s.improvementRepo.GetWorkflow(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if wf == nil || wf.Status != entity.ImprovementStatusStarted {
		return nil, fmt.Errorf("%w: improvement workflow is not active for document %s", ErrInvalidState, documentID)
	}

	now := s.now()
	wf.Status = entity.ImprovementStatusCompleted
	wf.CompletedAt = &now

	if err := s.improvementRepo.UpsertWorkflow(ctx, wf); err != nil {
		s.logger.Error("Failed to complete improvement workflow", "error", err, "document_id", documentID)
		return nil, err
	}

	s.logger.Info("Improvement workflow completed", "document_id", documentID)

	if s.dispatcher != nil {
		s.dispatcher.DispatchAsync(ctx, event.NewEvent(event.TypeImprovementCompleted, documentID, nil))
	}

	return wf, nil
}

func (s *suggestionServiceImpl) IsWorkflowActive(ctx context.Context, documentID string) (bool, error) {
	wf, err := s.improvementRepo.GetWorkflow(ctx, documentID)
	if err != nil {
		return false, err
	}
	return wf.Active(), nil
}

func (s *suggestionServiceImpl) GetComparison(ctx context.Context, originalID, improvedID string) (*entity.ComparisonResult, error) {
	original, err := s.fetch(ctx, originalID)
	if err != nil {
		return nil, err
	}

	improved, err := s.documentRepo.GetByID(ctx, improvedID)
	if err != nil {
		return nil, err
	}
	if improved == nil {
		// The improved side may live as an upload record rather than a full document
		rec, recErr := s.improvementRepo.GetImprovedDocument(ctx, improvedID)
		if recErr != nil {
			return nil, recErr
		}
		if rec == nil {
			return nil, fmt.Errorf("%w: improved document %s", ErrNotFound, improvedID)
		}
		return nil, fmt.Errorf("%w: analysis missing for improved document %s", ErrNotFound, improvedID)
	}

	if original.AnalysisData == "" {
		return nil, fmt.Errorf("%w: analysis missing for document %s", ErrNotFound, originalID)
	}
	if improved.AnalysisData == "" {
		return nil, fmt.Errorf("%w: analysis missing for document %s", ErrNotFound, improvedID)
	}

	return &entity.ComparisonResult{
		OriginalDocumentID: originalID,
		ImprovedDocumentID: improvedID,
		OriginalAnalysis:   original.AnalysisData,
		ImprovedAnalysis:   improved.AnalysisData,
	}, nil
}

// inTransaction runs fn inside a store transaction when a manager is wired
func (s *suggestionServiceImpl) inTransaction(ctx context.Context, fn func(context.Context) error) error {
	if s.txManager == nil {
		return fn(ctx)
	}
	return s.txManager.WithTransaction(ctx, fn)
}

func (s *suggestionServiceImpl) fetch(ctx context.Context, documentID string) (*entity.Document, error) {
	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		s.logger.Error("Failed to fetch document", "error", err, "document_id", documentID)
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: document %s", ErrNotFound, documentID)
	}
	return doc, nil
}
