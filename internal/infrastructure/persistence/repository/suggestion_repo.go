package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/docuprep/docverify/internal/application/port"
	"github.com/docuprep/docverify/internal/domain/entity"
	"github.com/docuprep/docverify/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// SuggestionRepository implements port.SuggestionRepository on sqlite
type SuggestionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSuggestionRepository creates a new suggestion repository
func NewSuggestionRepository(db *sql.DB, logger *zap.Logger) port.SuggestionRepository {
	return &SuggestionRepository{
		db:     db,
		logger: logger,
	}
}

// GetByDocumentID retrieves the suggestion list ordered by index
func (r *SuggestionRepository) GetByDocumentID(ctx context.Context, documentID string) ([]*entity.OptimizationSuggestion, error) {
	query := `
		SELECT id, document_id, idx, message, severity, applied, created_at
		FROM optimization_suggestions
		WHERE document_id = ?
		ORDER BY idx ASC
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, documentID)
	if err != nil {
		r.logger.Error("Failed to list suggestions", zap.String("document_id", documentID), zap.Error(err))
		return nil, port.NewStoreError("list suggestions", err)
	}
	defer rows.Close()

	var suggestions []*entity.OptimizationSuggestion
	for rows.Next() {
		var s entity.OptimizationSuggestion
		if err := rows.Scan(
			&s.ID,
			&s.DocumentID,
			&s.Index,
			&s.Message,
			&s.Severity,
			&s.Applied,
			&s.CreatedAt,
		); err != nil {
			return nil, port.NewStoreError("scan suggestion", err)
		}
		suggestions = append(suggestions, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, port.NewStoreError("list suggestions", err)
	}

	return suggestions, nil
}

// Replace swaps the document's suggestion list in one transaction-shaped
// statement pair. Callers wrap this in TransactionManager when atomicity with
// other writes matters.
func (r *SuggestionRepository) Replace(ctx context.Context, documentID string, suggestions []*entity.OptimizationSuggestion) error {
	exec := r.getExecutor(ctx)

	if _, err := exec.ExecContext(ctx, `DELETE FROM optimization_suggestions WHERE document_id = ?`, documentID); err != nil {
		r.logger.Error("Failed to clear suggestions", zap.String("document_id", documentID), zap.Error(err))
		return port.NewStoreError("replace suggestions", err)
	}

	query := `
		INSERT INTO optimization_suggestions (document_id, idx, message, severity, applied, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	for _, s := range suggestions {
		result, err := exec.ExecContext(ctx, query,
			documentID,
			s.Index,
			s.Message,
			s.Severity,
			s.Applied,
			s.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to insert suggestion",
				zap.String("document_id", documentID),
				zap.Int("index", s.Index),
				zap.Error(err))
			return port.NewStoreError("replace suggestions", err)
		}
		if id, err := result.LastInsertId(); err == nil {
			s.ID = id
		}
	}

	return nil
}

// MarkApplied sets applied=true for the suggestion at the given index.
// Applied is monotonic; there is no statement that ever sets it back.
func (r *SuggestionRepository) MarkApplied(ctx context.Context, documentID string, index int) error {
	query := `UPDATE optimization_suggestions SET applied = 1 WHERE document_id = ? AND idx = ?`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query, documentID, index)
	if err != nil {
		r.logger.Error("Failed to mark suggestion applied",
			zap.String("document_id", documentID),
			zap.Int("index", index),
			zap.Error(err))
		return port.NewStoreError("mark suggestion applied", err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return port.NewStoreError("mark suggestion applied", fmt.Errorf("no suggestion at index %d", index))
	}

	return nil
}

func (r *SuggestionRepository) getExecutor(ctx context.Context) executor {
	if tx := sqlite.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// Verify interface compliance
var _ port.SuggestionRepository = (*SuggestionRepository)(nil)
