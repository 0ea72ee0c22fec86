package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docuprep/docverify/internal/application/port"
	"github.com/docuprep/docverify/internal/domain/entity"
)

// DocumentUpload carries the file and metadata for a new document
type DocumentUpload struct {
	DocumentType string
	FileName     string
	Content      []byte
}

// DocumentService registers documents and serves their records. New documents
// always start at PENDING_SUBMISSION.
type DocumentService interface {
	// Create stores the uploaded file and registers the document record
	Create(ctx context.Context, upload DocumentUpload) (*entity.Document, error)

	// Get retrieves a document by ID
	Get(ctx context.Context, documentID string) (*entity.Document, error)
}

type documentServiceImpl struct {
	documentRepo  port.DocumentRepository
	fileStorage   port.FileStorage
	folderManager port.FolderManager
	logger        Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	documentRepo port.DocumentRepository,
	fileStorage port.FileStorage,
	folderManager port.FolderManager,
	logger Logger,
) DocumentService {
	return &documentServiceImpl{
		documentRepo:  documentRepo,
		fileStorage:   fileStorage,
		folderManager: folderManager,
		logger:        logger,
	}
}

func (s *documentServiceImpl) Create(ctx context.Context, upload DocumentUpload) (*entity.Document, error) {
	if strings.TrimSpace(upload.DocumentType) == "" {
		return nil, fmt.Errorf("%w: document type is required", ErrValidation)
	}
	if strings.TrimSpace(upload.FileName) == "" {
		return nil, fmt.Errorf("%w: file name is required", ErrValidation)
	}
	if len(upload.Content) == 0 {
		return nil, fmt.Errorf("%w: file content is empty", ErrValidation)
	}

	documentID := uuid.NewString()

	folder, err := s.folderManager.CreateFolder(ctx, documentID)
	if err != nil {
		s.logger.Error("Failed to create document folder", "error", err, "document_id", documentID)
		return nil, err
	}

	relPath := filepath.Join(folder, upload.FileName)
	if err := s.fileStorage.Save(ctx, relPath, upload.Content); err != nil {
		s.logger.Error("Failed to store document file", "error", err, "document_id", documentID)
		return nil, err
	}

	doc := &entity.Document{
		ID:                 documentID,
		DocumentType:       upload.DocumentType,
		FileName:           upload.FileName,
		FilePath:           relPath,
		VerificationStatus: entity.StatusPendingSubmission,
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}
	if err := s.documentRepo.Create(ctx, doc); err != nil {
		s.logger.Error("Failed to create document record", "error", err, "document_id", documentID)
		return nil, err
	}

	s.logger.Info("Document registered",
		"document_id", documentID,
		"document_type", upload.DocumentType,
		"file_name", upload.FileName,
	)

	return doc, nil
}

func (s *documentServiceImpl) Get(ctx context.Context, documentID string) (*entity.Document, error) {
	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: document %s", ErrNotFound, documentID)
	}
	return doc, nil
}
