package service

import (
	"context"
	"errors"
	"testing"

	"github.com/docuprep/docverify/internal/domain/entity"
)

func TestDocumentService_Create(t *testing.T) {
	repo := newMockDocumentRepo()
	storage := newMockFileStorage()
	svc := NewDocumentService(repo, storage, &mockFolderManager{}, noopLogger{})

	doc, err := svc.Create(context.Background(), DocumentUpload{
		DocumentType: "passport",
		FileName:     "passport.pdf",
		Content:      []byte("%PDF-1.4"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.ID == "" {
		t.Error("document id not assigned")
	}
	if doc.VerificationStatus != entity.StatusPendingSubmission {
		t.Errorf("new documents must start at PENDING_SUBMISSION, got %q", doc.VerificationStatus)
	}
	if !storage.Exists(context.Background(), doc.FilePath) {
		t.Errorf("file not stored at %q", doc.FilePath)
	}
	if repo.docs[doc.ID] == nil {
		t.Error("document record not persisted")
	}
}

func TestDocumentService_Create_Validation(t *testing.T) {
	svc := NewDocumentService(newMockDocumentRepo(), newMockFileStorage(), &mockFolderManager{}, noopLogger{})

	cases := []struct {
		name   string
		upload DocumentUpload
	}{
		{"missing type", DocumentUpload{FileName: "a.pdf", Content: []byte("x")}},
		{"missing file name", DocumentUpload{DocumentType: "passport", Content: []byte("x")}},
		{"empty content", DocumentUpload{DocumentType: "passport", FileName: "a.pdf"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), tc.upload); !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestDocumentService_Get_NotFound(t *testing.T) {
	svc := NewDocumentService(newMockDocumentRepo(), newMockFileStorage(), &mockFolderManager{}, noopLogger{})

	if _, err := svc.Get(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
