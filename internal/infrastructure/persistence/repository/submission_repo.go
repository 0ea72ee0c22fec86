package repository

import (
	"context"
	"database/sql"

	"github.com/docuprep/docverify/internal/application/port"
	"github.com/docuprep/docverify/internal/domain/entity"
	"github.com/docuprep/docverify/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// SubmissionRepository implements port.SubmissionRepository on sqlite
type SubmissionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db *sql.DB, logger *zap.Logger) port.SubmissionRepository {
	return &SubmissionRepository{
		db:     db,
		logger: logger,
	}
}

// Create records a provider submission. The reference column carries a
// UNIQUE constraint, so a duplicate reference surfaces as a store error.
func (r *SubmissionRepository) Create(ctx context.Context, sub *entity.ProviderSubmission) error {
	query := `
		INSERT INTO provider_submissions (document_id, provider_id, reference, submitted_at)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		sub.DocumentID,
		sub.ProviderID,
		sub.Reference,
		sub.SubmittedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create submission",
			zap.String("document_id", sub.DocumentID),
			zap.String("reference", sub.Reference),
			zap.Error(err))
		return port.NewStoreError("create submission", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		sub.ID = id
	}

	return nil
}

// GetByReference retrieves a submission by its correlation reference
func (r *SubmissionRepository) GetByReference(ctx context.Context, reference string) (*entity.ProviderSubmission, error) {
	query := `
		SELECT id, document_id, provider_id, reference, submitted_at
		FROM provider_submissions
		WHERE reference = ?
	`

	var sub entity.ProviderSubmission
	err := r.getExecutor(ctx).QueryRowContext(ctx, query, reference).Scan(
		&sub.ID,
		&sub.DocumentID,
		&sub.ProviderID,
		&sub.Reference,
		&sub.SubmittedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get submission", zap.String("reference", reference), zap.Error(err))
		return nil, port.NewStoreError("get submission", err)
	}

	return &sub, nil
}

// GetByDocumentID retrieves all submissions for a document, newest first
func (r *SubmissionRepository) GetByDocumentID(ctx context.Context, documentID string) ([]*entity.ProviderSubmission, error) {
	query := `
		SELECT id, document_id, provider_id, reference, submitted_at
		FROM provider_submissions
		WHERE document_id = ?
		ORDER BY submitted_at DESC
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, documentID)
	if err != nil {
		r.logger.Error("Failed to list submissions", zap.String("document_id", documentID), zap.Error(err))
		return nil, port.NewStoreError("list submissions", err)
	}
	defer rows.Close()

	var subs []*entity.ProviderSubmission
	for rows.Next() {
		var sub entity.ProviderSubmission
		if err := rows.Scan(
			&sub.ID,
			&sub.DocumentID,
			&sub.ProviderID,
			&sub.Reference,
			&sub.SubmittedAt,
		); err != nil {
			return nil, port.NewStoreError("scan submission", err)
		}
		subs = append(subs, &sub)
	}

	return subs, rows.Err()
}

func (r *SubmissionRepository) getExecutor(ctx context.Context) executor {
	if tx := sqlite.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// Verify interface compliance
var _ port.SubmissionRepository = (*SubmissionRepository)(nil)
