package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/docuprep/docverify/internal/application/dispatcher"
	"github.com/docuprep/docverify/internal/application/port"
	appwf "github.com/docuprep/docverify/internal/application/workflow"
	"github.com/docuprep/docverify/internal/domain/entity"
	"github.com/docuprep/docverify/internal/domain/event"
	domainwf "github.com/docuprep/docverify/internal/domain/workflow"
)

// StatusInfo is the result of a status query
type StatusInfo struct {
	VerificationStatus  string                      `json:"verification_status"`
	WorkflowState       string                      `json:"workflow_state"`
	VerificationDetails *entity.VerificationDetails `json:"verification_details"`
}

// VerificationRequest carries the options for requesting verification
type VerificationRequest struct {
	VerificationMethod string `json:"verification_method"`
	Expedited          bool   `json:"expedited"`
	AdditionalNotes    string `json:"additional_notes"`
}

// Outcome carries the result of a completed review, applied by a provider
// callback or an agent, never directly by the presentation layer
type Outcome struct {
	Status            string `json:"status"` // VERIFIED, REJECTED or UNABLE_TO_VERIFY
	VerifiedBy        string `json:"verified_by"`
	RejectionReason   string `json:"rejection_reason,omitempty"`
	VerificationNotes string `json:"verification_notes,omitempty"`
}

// StatusService owns the canonical verification state machine for documents
type StatusService interface {
	// GetStatus reads a document's verification status, workflow state and details
	GetStatus(ctx context.Context, documentID string) (*StatusInfo, error)

	// RequestVerification starts a verification request. Valid only from
	// PENDING_SUBMISSION, REJECTED or UNABLE_TO_VERIFY.
	RequestVerification(ctx context.Context, documentID string, req VerificationRequest) (*StatusInfo, error)

	// CancelVerification is a compensating transition back to
	// PENDING_SUBMISSION. It does not abort an in-flight provider
	// submission; if one is racing, the last write to the store wins.
	CancelVerification(ctx context.Context, documentID string) (*StatusInfo, error)

	// MarkInProgress moves a pending request into review with the given
	// workflow state (UNDER_REVIEW or ESCALATED)
	MarkInProgress(ctx context.Context, documentID string, workflowState string) error

	// ApplyOutcome applies a terminal review outcome to an in-progress verification
	ApplyOutcome(ctx context.Context, documentID string, outcome Outcome) (*StatusInfo, error)
}

type statusServiceImpl struct {
	documentRepo port.DocumentRepository
	engine       appwf.Engine
	txManager    port.TransactionManager
	dispatcher   dispatcher.Dispatcher
	logger       Logger
	now          func() time.Time
}

// NewStatusService creates a new StatusService
func NewStatusService(
	documentRepo port.DocumentRepository,
	engine appwf.Engine,
	txManager port.TransactionManager,
	disp dispatcher.Dispatcher,
	logger Logger,
) StatusService {
	return &statusServiceImpl{
		documentRepo: documentRepo,
		engine:       engine,
		txManager:    txManager,
		dispatcher:   disp,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *statusServiceImpl) GetStatus(ctx context.Context, documentID string) (*StatusInfo, error) {
	doc, err := s.fetch(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return statusInfoFrom(doc), nil
}

func (s *statusServiceImpl) RequestVerification(ctx context.Context, documentID string, req VerificationRequest) (*StatusInfo, error) {
	if !entity.IsValidMethod(req.VerificationMethod) {
		return nil, fmt.Errorf("%w: unknown verification method %q", ErrValidation, req.VerificationMethod)
	}

	doc, err := s.fetch(ctx, documentID)
	if err != nil {
		return nil, err
	}

	// Status and details move together or not at all
	err = s.inTransaction(ctx, func(ctx context.Context) error {
		if err := s.transition(ctx, documentID, domainwf.TriggerRequest); err != nil {
			return err
		}

		now := s.now()
		details := detailsOf(doc)
		details.WorkflowState = entity.WorkflowStatePendingReview
		details.CurrentStep = entity.StepSubmitted
		details.RequestedAt = &now
		details.VerificationMethod = req.VerificationMethod
		details.Expedited = req.Expedited
		details.AdditionalNotes = req.AdditionalNotes
		details.CanceledAt = nil

		return s.documentRepo.UpdateDetails(ctx, documentID, details)
	})
	if err != nil {
		s.logger.Error("Failed to persist verification request", "error", err, "document_id", documentID)
		return nil, err
	}

	s.logger.Info("Verification requested",
		"document_id", documentID,
		"method", req.VerificationMethod,
		"expedited", req.Expedited,
	)

	if s.dispatcher != nil {
		s.dispatcher.DispatchAsync(ctx, event.NewEvent(event.TypeVerificationRequested, documentID, map[string]interface{}{
			"method":    req.VerificationMethod,
			"expedited": req.Expedited,
		}))
	}

	return s.GetStatus(ctx, documentID)
}

func (s *statusServiceImpl) CancelVerification(ctx context.Context, documentID string) (*StatusInfo, error) {
	doc, err := s.fetch(ctx, documentID)
	if err != nil {
		return nil, err
	}

	err = s.inTransaction(ctx, func(ctx context.Context) error {
		if err := s.transition(ctx, documentID, domainwf.TriggerCancel); err != nil {
			return err
		}

		now := s.now()
		details := detailsOf(doc)
		details.WorkflowState = entity.WorkflowStateNone
		details.CurrentStep = ""
		details.VerificationMethod = ""
		details.Expedited = false
		details.AdditionalNotes = ""
		details.CanceledAt = &now

		return s.documentRepo.UpdateDetails(ctx, documentID, details)
	})
	if err != nil {
		s.logger.Error("Failed to persist cancellation", "error", err, "document_id", documentID)
		return nil, err
	}

	s.logger.Info("Verification canceled", "document_id", documentID)

	if s.dispatcher != nil {
		s.dispatcher.DispatchAsync(ctx, event.NewEvent(event.TypeVerificationCanceled, documentID, nil))
	}

	return s.GetStatus(ctx, documentID)
}

func (s *statusServiceImpl) MarkInProgress(ctx context.Context, documentID string, workflowState string) error {
	if workflowState != entity.WorkflowStateUnderReview && workflowState != entity.WorkflowStateEscalated {
		return fmt.Errorf("%w: workflow state %q is not a review state", ErrValidation, workflowState)
	}

	doc, err := s.fetch(ctx, documentID)
	if err != nil {
		return err
	}

	err = s.inTransaction(ctx, func(ctx context.Context) error {
		if err := s.transition(ctx, documentID, domainwf.TriggerBeginReview); err != nil {
			return err
		}

		details := detailsOf(doc)
		details.WorkflowState = workflowState
		details.CurrentStep = entity.StepInProgress

		return s.documentRepo.UpdateDetails(ctx, documentID, details)
	})
	if err != nil {
		s.logger.Error("Failed to persist review start", "error", err, "document_id", documentID)
		return err
	}

	s.logger.Info("Verification moved to in progress", "document_id", documentID, "workflow_state", workflowState)
	return nil
}

func (s *statusServiceImpl) ApplyOutcome(ctx context.Context, documentID string, outcome Outcome) (*StatusInfo, error) {
	trigger, err := outcomeTrigger(outcome.Status)
	if err != nil {
		return nil, err
	}
	if outcome.VerifiedBy == "" {
		return nil, fmt.Errorf("%w: verified_by is required", ErrValidation)
	}
	if outcome.Status == entity.StatusRejected && outcome.RejectionReason == "" {
		return nil, fmt.Errorf("%w: rejection_reason is required for a rejected outcome", ErrValidation)
	}

	doc, err := s.fetch(ctx, documentID)
	if err != nil {
		return nil, err
	}

	err = s.inTransaction(ctx, func(ctx context.Context) error {
		if err := s.transition(ctx, documentID, trigger); err != nil {
			return err
		}

		now := s.now()
		details := detailsOf(doc)
		details.WorkflowState = entity.WorkflowStateCompleted
		details.VerifiedBy = outcome.VerifiedBy
		details.VerifiedAt = &now
		details.VerificationNotes = outcome.VerificationNotes
		if outcome.Status == entity.StatusRejected {
			details.RejectionReason = outcome.RejectionReason
		}

		return s.documentRepo.UpdateDetails(ctx, documentID, details)
	})
	if err != nil {
		s.logger.Error("Failed to persist outcome", "error", err, "document_id", documentID)
		return nil, err
	}

	s.logger.Info("Verification outcome applied",
		"document_id", documentID,
		"outcome", outcome.Status,
		"verified_by", outcome.VerifiedBy,
	)

	if s.dispatcher != nil {
		s.dispatcher.DispatchAsync(ctx, event.NewEvent(event.TypeOutcomeApplied, documentID, map[string]interface{}{
			"outcome":     outcome.Status,
			"verified_by": outcome.VerifiedBy,
		}))
	}

	return s.GetStatus(ctx, documentID)
}

func (s *statusServiceImpl) fetch(ctx context.Context, documentID string) (*entity.Document, error) {
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

// inTransaction runs fn inside a store transaction when a manager is wired
func (s *statusServiceImpl) inTransaction(ctx context.Context, fn func(context.Context) error) error {
	if s.txManager == nil {
		return fn(ctx)
	}
	return s.txManager.WithTransaction(ctx, fn)
}

func (s *statusServiceImpl) transition(ctx context.Context, documentID string, trigger domainwf.Trigger) error {
	if err := s.engine.TransitionState(ctx, documentID, trigger); err != nil {
		if errors.Is(err, domainwf.ErrInvalidTransition) {
			return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
		}
		return err
	}
	return nil
}

func outcomeTrigger(status string) (domainwf.Trigger, error) {
	switch status {
	case entity.StatusVerified:
		return domainwf.TriggerVerify, nil
	case entity.StatusRejected:
		return domainwf.TriggerReject, nil
	case entity.StatusUnableToVerify:
		return domainwf.TriggerMarkUnverifiable, nil
	default:
		return "", fmt.Errorf("%w: %q is not a terminal outcome", ErrValidation, status)
	}
}

// detailsOf returns a copy of the document's details, or a zero value when
// verification fields have never been set
func detailsOf(doc *entity.Document) *entity.VerificationDetails {
	if doc.VerificationDetails == nil {
		return &entity.VerificationDetails{}
	}
	copied := *doc.VerificationDetails
	return &copied
}

func statusInfoFrom(doc *entity.Document) *StatusInfo {
	details := doc.VerificationDetails
	if details == nil {
		details = &entity.VerificationDetails{}
	}
	return &StatusInfo{
		VerificationStatus:  doc.StatusOrDefault(),
		WorkflowState:       doc.WorkflowStateOrDefault(),
		VerificationDetails: details,
	}
}
