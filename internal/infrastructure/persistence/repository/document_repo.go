package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/docuprep/docverify/internal/application/port"
	"github.com/docuprep/docverify/internal/domain/entity"
	"github.com/docuprep/docverify/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// DocumentRepository implements port.DocumentRepository on sqlite.
// VerificationDetails and the analysis snapshot are stored as JSON text
// columns so nested fields survive without schema changes.
type DocumentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *sql.DB, logger *zap.Logger) port.DocumentRepository {
	return &DocumentRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new document record
func (r *DocumentRepository) Create(ctx context.Context, doc *entity.Document) error {
	detailsJSON, err := marshalDetails(doc.VerificationDetails)
	if err != nil {
		return port.NewStoreError("create document", err)
	}

	if doc.VerificationStatus == "" {
		doc.VerificationStatus = entity.StatusPendingSubmission
	}

	query := `
		INSERT INTO documents (
			id, document_type, file_name, file_path,
			verification_status, verification_details, analysis_data
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.getExecutor(ctx).ExecContext(ctx, query,
		doc.ID,
		doc.DocumentType,
		doc.FileName,
		doc.FilePath,
		doc.VerificationStatus,
		detailsJSON,
		doc.AnalysisData,
	)
	if err != nil {
		r.logger.Error("Failed to create document", zap.String("id", doc.ID), zap.Error(err))
		return port.NewStoreError("create document", err)
	}

	return nil
}

// GetByID retrieves a document by ID
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*entity.Document, error) {
	query := `
		SELECT id, document_type, file_name, file_path,
			verification_status, verification_details, analysis_data,
			created_at, updated_at
		FROM documents
		WHERE id = ?
	`

	var doc entity.Document
	var detailsJSON sql.NullString
	var analysisData sql.NullString

	err := r.getExecutor(ctx).QueryRowContext(ctx, query, id).Scan(
		&doc.ID,
		&doc.DocumentType,
		&doc.FileName,
		&doc.FilePath,
		&doc.VerificationStatus,
		&detailsJSON,
		&analysisData,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get document", zap.String("id", id), zap.Error(err))
		return nil, port.NewStoreError("get document", err)
	}

	if detailsJSON.Valid && detailsJSON.String != "" {
		var details entity.VerificationDetails
		if err := json.Unmarshal([]byte(detailsJSON.String), &details); err != nil {
			r.logger.Error("Failed to decode verification details", zap.String("id", id), zap.Error(err))
			return nil, port.NewStoreError("decode verification details", err)
		}
		doc.VerificationDetails = &details
	}
	if analysisData.Valid {
		doc.AnalysisData = analysisData.String
	}

	return &doc, nil
}

// UpdateStatus updates only the verification status column
func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	query := `UPDATE documents SET verification_status = ?, updated_at = ? WHERE id = ?`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to update status", zap.String("id", id), zap.String("status", status), zap.Error(err))
		return port.NewStoreError("update status", err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return port.NewStoreError("update status", sql.ErrNoRows)
	}

	return nil
}

// UpdateDetails replaces the verification details JSON for a document.
// This is the write half of the read-modify-write pattern; last write wins.
func (r *DocumentRepository) UpdateDetails(ctx context.Context, id string, details *entity.VerificationDetails) error {
	detailsJSON, err := marshalDetails(details)
	if err != nil {
		return port.NewStoreError("update details", err)
	}

	query := `UPDATE documents SET verification_details = ?, updated_at = ? WHERE id = ?`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query, detailsJSON, time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to update details", zap.String("id", id), zap.Error(err))
		return port.NewStoreError("update details", err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return port.NewStoreError("update details", sql.ErrNoRows)
	}

	return nil
}

// UpdateAnalysis replaces the stored analysis snapshot for a document
func (r *DocumentRepository) UpdateAnalysis(ctx context.Context, id string, analysis string) error {
	query := `UPDATE documents SET analysis_data = ?, updated_at = ? WHERE id = ?`

	_, err := r.getExecutor(ctx).ExecContext(ctx, query, analysis, time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to update analysis", zap.String("id", id), zap.Error(err))
		return port.NewStoreError("update analysis", err)
	}

	return nil
}

func marshalDetails(details *entity.VerificationDetails) (string, error) {
	if details == nil {
		return "", nil
	}
	data, err := json.Marshal(details)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// getExecutor returns appropriate executor based on context
func (r *DocumentRepository) getExecutor(ctx context.Context) executor {
	if tx := sqlite.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// executor interface covers both *sql.DB and *sql.Tx
type executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Verify interface compliance
var _ port.DocumentRepository = (*DocumentRepository)(nil)
