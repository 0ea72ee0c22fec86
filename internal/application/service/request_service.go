package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/docuprep/docverify/internal/application/port"
	"github.com/docuprep/docverify/internal/domain/entity"
)

// StepInfo describes where a verification request currently stands in the
// submitted -> additional info -> supporting documents -> in progress sequence
type StepInfo struct {
	CurrentStep        string `json:"current_step"`
	VerificationMethod string `json:"verification_method"`
	DocumentNumberSet  bool   `json:"document_number_set"`
	SupportingDocCount int    `json:"supporting_document_count"`
}

// SupportingDocumentUpload carries one file for the supporting-documents step
type SupportingDocumentUpload struct {
	FileName    string
	ContentType string
	Content     []byte
}

// RequestService drives the linear, resumable verification request sequence.
// Each step's submit is an independent operation: on failure the step pointer
// does not advance and the error is surfaced to the caller.
type RequestService interface {
	// CurrentStep reports the step the request sits at
	CurrentStep(ctx context.Context, documentID string) (*StepInfo, error)

	// SubmitAdditionalInfo records the structured fields for the request.
	// DocumentNumber is required; validation runs before any store write.
	SubmitAdditionalInfo(ctx context.Context, documentID string, info entity.AdditionalInfo) (*StepInfo, error)

	// UploadSupportingDocument stores one uploaded file and records its
	// metadata on the request. Only meaningful for enhanced and third-party
	// verification methods.
	UploadSupportingDocument(ctx context.Context, documentID string, upload SupportingDocumentUpload) (*StepInfo, error)
}

type requestServiceImpl struct {
	documentRepo  port.DocumentRepository
	fileStorage   port.FileStorage
	folderManager port.FolderManager
	logger        Logger
	now           func() time.Time
}

// NewRequestService creates a new RequestService
func NewRequestService(
	documentRepo port.DocumentRepository,
	fileStorage port.FileStorage,
	folderManager port.FolderManager,
	logger Logger,
) RequestService {
	return &requestServiceImpl{
		documentRepo:  documentRepo,
		fileStorage:   fileStorage,
		folderManager: folderManager,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *requestServiceImpl) CurrentStep(ctx context.Context, documentID string) (*StepInfo, error) {
	_, details, err := s.fetchRequest(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return stepInfoFrom(details), nil
}

func (s *requestServiceImpl) SubmitAdditionalInfo(ctx context.Context, documentID string, info entity.AdditionalInfo) (*StepInfo, error) {
	if strings.TrimSpace(info.DocumentNumber) == "" {
		return nil, fmt.Errorf("%w: document_number is required", ErrValidation)
	}

	_, details, err := s.fetchRequest(ctx, documentID)
	if err != nil {
		return nil, err
	}

	details.AdditionalInfo = &info

	// Standard requests skip the supporting-documents step entirely
	if entity.MethodRequiresSupportingDocuments(details.VerificationMethod) {
		details.CurrentStep = entity.StepSupportingDocuments
	} else {
		details.CurrentStep = entity.StepInProgress
	}

	if err := s.documentRepo.UpdateDetails(ctx, documentID, details); err != nil {
		s.logger.Error("Failed to persist additional info", "error", err, "document_id", documentID)
		return nil, err
	}

	s.logger.Info("Additional info submitted",
		"document_id", documentID,
		"next_step", details.CurrentStep,
	)

	return stepInfoFrom(details), nil
}

func (s *requestServiceImpl) UploadSupportingDocument(ctx context.Context, documentID string, upload SupportingDocumentUpload) (*StepInfo, error) {
	if upload.FileName == "" {
		return nil, fmt.Errorf("%w: file name is required", ErrValidation)
	}
	if len(upload.Content) == 0 {
		return nil, fmt.Errorf("%w: file content is empty", ErrValidation)
	}

	_, details, err := s.fetchRequest(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if !entity.MethodRequiresSupportingDocuments(details.VerificationMethod) {
		return nil, fmt.Errorf("%w: method %s does not take supporting documents", ErrInvalidState, details.VerificationMethod)
	}

	folder := s.folderManager.SanitizeName(documentID)
	if _, err := s.folderManager.CreateFolder(ctx, folder); err != nil {
		s.logger.Error("Failed to create supporting document folder", "error", err, "document_id", documentID)
		return nil, err
	}

	relPath := filepath.Join(folder, "supporting", upload.FileName)
	if err := s.fileStorage.Save(ctx, relPath, upload.Content); err != nil {
		s.logger.Error("Failed to store supporting document", "error", err, "document_id", documentID, "file", upload.FileName)
		return nil, err
	}

	details.SupportingDocuments = append(details.SupportingDocuments, entity.SupportingDocument{
		FileName:   upload.FileName,
		Size:       int64(len(upload.Content)),
		Type:       upload.ContentType,
		UploadedAt: s.now(),
	})

	// Progression requires at least one uploaded file
	if len(details.SupportingDocuments) > 0 {
		details.CurrentStep = entity.StepInProgress
	}

	if err := s.documentRepo.UpdateDetails(ctx, documentID, details); err != nil {
		s.logger.Error("Failed to persist supporting document metadata", "error", err, "document_id", documentID)
		return nil, err
	}

	s.logger.Info("Supporting document uploaded",
		"document_id", documentID,
		"file", upload.FileName,
		"size", len(upload.Content),
	)

	return stepInfoFrom(details), nil
}

// fetchRequest loads a document and verifies it has an active verification request
func (s *requestServiceImpl) fetchRequest(ctx context.Context, documentID string) (*entity.Document, *entity.VerificationDetails, error) {
	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		s.logger.Error("Failed to fetch document", "error", err, "document_id", documentID)
		return nil, nil, err
	}
	if doc == nil {
		return nil, nil, fmt.Errorf("%w: document %s", ErrNotFound, documentID)
	}

	status := doc.StatusOrDefault()
	if status != entity.StatusPendingVerification && status != entity.StatusVerificationInProgress {
		return nil, nil, fmt.Errorf("%w: document %s has no active verification request", ErrInvalidState, documentID)
	}

	details := detailsOf(doc)
	if details.CurrentStep == "" {
		details.CurrentStep = entity.StepSubmitted
	}
	return doc, details, nil
}

func stepInfoFrom(details *entity.VerificationDetails) *StepInfo {
	return &StepInfo{
		CurrentStep:        details.CurrentStep,
		VerificationMethod: details.VerificationMethod,
		DocumentNumberSet:  details.AdditionalInfo != nil && details.AdditionalInfo.DocumentNumber != "",
		SupportingDocCount: len(details.SupportingDocuments),
	}
}
