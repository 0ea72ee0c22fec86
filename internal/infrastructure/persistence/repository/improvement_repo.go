package repository

import (
	"context"
	"database/sql"

	"github.com/docuprep/docverify/internal/application/port"
	"github.com/docuprep/docverify/internal/domain/entity"
	"github.com/docuprep/docverify/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// ImprovementRepository implements port.ImprovementRepository on sqlite
type ImprovementRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewImprovementRepository creates a new improvement repository
func NewImprovementRepository(db *sql.DB, logger *zap.Logger) port.ImprovementRepository {
	return &ImprovementRepository{
		db:     db,
		logger: logger,
	}
}

// GetWorkflow retrieves the improvement workflow for a document
func (r *ImprovementRepository) GetWorkflow(ctx context.Context, documentID string) (*entity.ImprovementWorkflow, error) {
	query := `
		SELECT document_id, status, started_at, completed_at
		FROM improvement_workflows
		WHERE document_id = ?
	`

	var wf entity.ImprovementWorkflow
	var startedAt, completedAt sql.NullTime

	err := r.getExecutor(ctx).QueryRowContext(ctx, query, documentID).Scan(
		&wf.DocumentID,
		&wf.Status,
		&startedAt,
		&completedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get improvement workflow", zap.String("document_id", documentID), zap.Error(err))
		return nil, port.NewStoreError("get improvement workflow", err)
	}

	if startedAt.Valid {
		wf.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		wf.CompletedAt = &completedAt.Time
	}

	return &wf, nil
}

// UpsertWorkflow creates or updates the improvement workflow row
func (r *ImprovementRepository) UpsertWorkflow(ctx context.Context, wf *entity.ImprovementWorkflow) error {
	query := `
		INSERT INTO improvement_workflows (document_id, status, started_at, completed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE SET
			status = excluded.status,
			started_at = excluded.started_at,
			completed_at = excluded.completed_at
	`

	_, err := r.getExecutor(ctx).ExecContext(ctx, query,
		wf.DocumentID,
		wf.Status,
		wf.StartedAt,
		wf.CompletedAt,
	)
	if err != nil {
		r.logger.Error("Failed to upsert improvement workflow", zap.String("document_id", wf.DocumentID), zap.Error(err))
		return port.NewStoreError("upsert improvement workflow", err)
	}

	return nil
}

// InsertImprovedDocument records an improved document upload
func (r *ImprovementRepository) InsertImprovedDocument(ctx context.Context, rec *entity.ImprovedDocumentRecord) error {
	query := `
		INSERT INTO improved_documents (improved_document_id, original_document_id, file_path, file_url, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.getExecutor(ctx).ExecContext(ctx, query,
		rec.ImprovedDocumentID,
		rec.OriginalDocumentID,
		rec.FilePath,
		rec.FileURL,
		rec.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert improved document",
			zap.String("original_document_id", rec.OriginalDocumentID),
			zap.Error(err))
		return port.NewStoreError("insert improved document", err)
	}

	return nil
}

// GetImprovedDocument retrieves an improved document record by its ID
func (r *ImprovementRepository) GetImprovedDocument(ctx context.Context, improvedID string) (*entity.ImprovedDocumentRecord, error) {
	query := `
		SELECT improved_document_id, original_document_id, file_path, file_url, created_at
		FROM improved_documents
		WHERE improved_document_id = ?
	`

	var rec entity.ImprovedDocumentRecord
	err := r.getExecutor(ctx).QueryRowContext(ctx, query, improvedID).Scan(
		&rec.ImprovedDocumentID,
		&rec.OriginalDocumentID,
		&rec.FilePath,
		&rec.FileURL,
		&rec.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get improved document", zap.String("improved_document_id", improvedID), zap.Error(err))
		return nil, port.NewStoreError("get improved document", err)
	}

	return &rec, nil
}

func (r *ImprovementRepository) getExecutor(ctx context.Context) executor {
	if tx := sqlite.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// Verify interface compliance
var _ port.ImprovementRepository = (*ImprovementRepository)(nil)
