package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docuprep/docverify/internal/application/dispatcher"
	"github.com/docuprep/docverify/internal/application/port"
	"github.com/docuprep/docverify/internal/domain/entity"
	"github.com/docuprep/docverify/internal/domain/event"
)

// SubmissionResult is the outcome of delegating a document to a provider
type SubmissionResult struct {
	DocumentID  string    `json:"document_id"`
	ProviderID  string    `json:"provider_id"`
	Reference   string    `json:"reference"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// ProviderService is the gateway to third-party verification providers
type ProviderService interface {
	// ListProviders returns the provider catalog, falling back to the
	// default catalog when the external source yields nothing
	ListProviders(ctx context.Context) ([]*entity.VerificationProvider, error)

	// SelectProvider records the provider choice for a document after
	// checking the provider supports the document's type. Pure selection:
	// no side effect on the document itself.
	SelectProvider(ctx context.Context, documentID, providerID string) error

	// SelectedProvider returns the provider currently selected for a
	// document, or "" when none has been selected
	SelectedProvider(documentID string) string

	// SubmitToProvider delegates the document to its selected provider and
	// moves it into VERIFICATION_IN_PROGRESS / UNDER_REVIEW
	SubmitToProvider(ctx context.Context, documentID, providerID string) (*SubmissionResult, error)

	// CheckProviderStatus polls the provider for a submission. Side-effect
	// free: it never transitions the document; a terminal provider status
	// must be followed by a separate outcome application.
	CheckProviderStatus(ctx context.Context, documentID, reference string) (*entity.ProviderStatus, error)

	// ListSubmissions returns a document's provider submissions, newest first
	ListSubmissions(ctx context.Context, documentID string) ([]*entity.ProviderSubmission, error)
}

type providerServiceImpl struct {
	client         port.ProviderClient
	submissionRepo port.SubmissionRepository
	documentRepo   port.DocumentRepository
	statusService  StatusService
	dispatcher     dispatcher.Dispatcher
	logger         Logger
	defaultCatalog []*entity.VerificationProvider
	now            func() time.Time

	// Per-document provider selections, held in memory only: selection has
	// no side effect on the document until submission.
	mu         sync.RWMutex
	selections map[string]string
}

// NewProviderService creates a new ProviderService
func NewProviderService(
	client port.ProviderClient,
	submissionRepo port.SubmissionRepository,
	documentRepo port.DocumentRepository,
	statusService StatusService,
	disp dispatcher.Dispatcher,
	logger Logger,
) ProviderService {
	return &providerServiceImpl{
		client:         client,
		submissionRepo: submissionRepo,
		documentRepo:   documentRepo,
		statusService:  statusService,
		dispatcher:     disp,
		logger:         logger,
		defaultCatalog: DefaultProviderCatalog(),
		selections:     make(map[string]string),
		now:            time.Now,
	}
}

// DefaultProviderCatalog is the fallback catalog used when the external
// source yields no providers
func DefaultProviderCatalog() []*entity.VerificationProvider {
	return []*entity.VerificationProvider{
		{
			ID:                     "govcheck",
			Name:                   "GovCheck Identity Services",
			SupportedDocumentTypes: []string{"passport", "national_id", "birth_certificate"},
			ProcessingTime:         "2-3 business days",
		},
		{
			ID:                     "veridoc",
			Name:                   "VeriDoc Global",
			SupportedDocumentTypes: []string{"passport", "visa", "work_permit", "diploma"},
			ProcessingTime:         "1-2 business days",
		},
		{
			ID:                     "crossborder",
			Name:                   "CrossBorder Verification Network",
			SupportedDocumentTypes: nil, // accepts any document type
			ProcessingTime:         "3-5 business days",
		},
	}
}

func (s *providerServiceImpl) ListProviders(ctx context.Context) ([]*entity.VerificationProvider, error) {
	providers, err := s.client.FetchCatalog(ctx)
	if err != nil {
		s.logger.Error("Provider catalog fetch failed, using default catalog", "error", err)
		return s.defaultCatalog, nil
	}
	if len(providers) == 0 {
		return s.defaultCatalog, nil
	}
	return providers, nil
}

func (s *providerServiceImpl) SelectProvider(ctx context.Context, documentID, providerID string) error {
	if providerID == "" {
		return fmt.Errorf("%w: provider id is required", ErrValidation)
	}

	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("%w: document %s", ErrNotFound, documentID)
	}

	providers, err := s.ListProviders(ctx)
	if err != nil {
		return err
	}

	var selected *entity.VerificationProvider
	for _, p := range providers {
		if p.ID == providerID {
			selected = p
			break
		}
	}
	if selected == nil {
		return fmt.Errorf("%w: unknown provider %s", ErrValidation, providerID)
	}
	if !selected.Supports(doc.DocumentType) {
		return fmt.Errorf("%w: provider %s does not handle %s documents", ErrValidation, providerID, doc.DocumentType)
	}

	s.mu.Lock()
	s.selections[documentID] = providerID
	s.mu.Unlock()

	s.logger.Info("Provider selected", "document_id", documentID, "provider_id", providerID)
	return nil
}

func (s *providerServiceImpl) SelectedProvider(documentID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selections[documentID]
}

func (s *providerServiceImpl) SubmitToProvider(ctx context.Context, documentID, providerID string) (*SubmissionResult, error) {
	selected := s.SelectedProvider(documentID)
	if selected == "" {
		return nil, fmt.Errorf("%w: no provider selected for document %s", ErrInvalidState, documentID)
	}
	if providerID != "" && providerID != selected {
		return nil, fmt.Errorf("%w: provider %s does not match selection %s", ErrInvalidState, providerID, selected)
	}

	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: document %s", ErrNotFound, documentID)
	}

	// Reference is unique per submission and the sole correlation key for polling
	reference := uuid.NewString()

	if err := s.client.Submit(ctx, documentID, selected, reference); err != nil {
		s.logger.Error("Provider submission failed", "error", err, "document_id", documentID, "provider_id", selected)
		return nil, err
	}

	if err := s.statusService.MarkInProgress(ctx, documentID, entity.WorkflowStateUnderReview); err != nil {
		return nil, err
	}

	now := s.now()
	submission := &entity.ProviderSubmission{
		DocumentID:  documentID,
		ProviderID:  selected,
		Reference:   reference,
		SubmittedAt: now,
	}
	if err := s.submissionRepo.Create(ctx, submission); err != nil {
		s.logger.Error("Failed to record provider submission", "error", err, "document_id", documentID, "reference", reference)
		return nil, err
	}

	// Stamp provider correlation fields on the request details
	fresh, err := s.documentRepo.GetByID(ctx, documentID)
	if err == nil && fresh != nil {
		details := detailsOf(fresh)
		details.ProviderID = selected
		details.Reference = reference
		details.SubmittedToProviderAt = &now
		if err := s.documentRepo.UpdateDetails(ctx, documentID, details); err != nil {
			s.logger.Error("Failed to stamp provider details", "error", err, "document_id", documentID)
		}
	}

	s.logger.Info("Submitted to provider",
		"document_id", documentID,
		"provider_id", selected,
		"reference", reference,
	)

	if s.dispatcher != nil {
		s.dispatcher.DispatchAsync(ctx, event.NewEvent(event.TypeProviderSubmitted, documentID, map[string]interface{}{
			"provider_id": selected,
			"reference":   reference,
		}))
	}

	return &SubmissionResult{
		DocumentID:  documentID,
		ProviderID:  selected,
		Reference:   reference,
		SubmittedAt: now,
	}, nil
}

func (s *providerServiceImpl) CheckProviderStatus(ctx context.Context, documentID, reference string) (*entity.ProviderStatus, error) {
	if reference == "" {
		return nil, fmt.Errorf("%w: reference is required", ErrValidation)
	}

	submission, err := s.submissionRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if submission == nil || submission.DocumentID != documentID {
		return nil, fmt.Errorf("%w: no submission with reference %s for document %s", ErrNotFound, reference, documentID)
	}

	status, err := s.client.CheckStatus(ctx, reference)
	if err != nil {
		s.logger.Error("Provider status poll failed", "error", err, "reference", reference)
		return nil, err
	}

	// A terminal provider status is surfaced, never applied here; outcome
	// application is a separate explicit command
	if entity.IsTerminalProviderStatus(status.Status) {
		s.logger.Info("Provider reported terminal status",
			"document_id", documentID,
			"reference", reference,
			"provider_status", status.Status,
		)
	}

	return status, nil
}

func (s *providerServiceImpl) ListSubmissions(ctx context.Context, documentID string) ([]*entity.ProviderSubmission, error) {
	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: document %s", ErrNotFound, documentID)
	}
	return s.submissionRepo.GetByDocumentID(ctx, documentID)
}
