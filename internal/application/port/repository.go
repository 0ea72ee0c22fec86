package port

import (
	"context"
	"fmt"

	"github.com/docuprep/docverify/internal/domain/entity"
)

// StoreError wraps a failure from the backing store. The message is
// propagated verbatim to the caller; no retry is performed automatically.
type StoreError struct {
	Op      string
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error during %s: %s", e.Op, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a StoreError wrapping an underlying failure
func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Message: err.Error(), Err: err}
}

// DocumentRepository defines persistence operations for Document.
// The store offers no compare-and-swap; verification details follow a
// read-modify-write pattern and last write wins.
type DocumentRepository interface {
	// Create inserts a new document record
	Create(ctx context.Context, doc *entity.Document) error

	// GetByID retrieves a document by ID; returns (nil, nil) when absent
	GetByID(ctx context.Context, id string) (*entity.Document, error)

	// UpdateStatus updates only the verification status column
	UpdateStatus(ctx context.Context, id string, status string) error

	// UpdateDetails replaces the verification details JSON for a document
	UpdateDetails(ctx context.Context, id string, details *entity.VerificationDetails) error

	// UpdateAnalysis replaces the stored analysis snapshot for a document
	UpdateAnalysis(ctx context.Context, id string, analysis string) error
}

// SuggestionRepository defines persistence operations for OptimizationSuggestion
type SuggestionRepository interface {
	// GetByDocumentID retrieves the suggestion list ordered by index
	GetByDocumentID(ctx context.Context, documentID string) ([]*entity.OptimizationSuggestion, error)

	// Replace atomically swaps the document's suggestion list
	Replace(ctx context.Context, documentID string, suggestions []*entity.OptimizationSuggestion) error

	// MarkApplied sets applied=true for the suggestion at the given index.
	// Applied is monotonic; marking an applied suggestion again is a no-op.
	MarkApplied(ctx context.Context, documentID string, index int) error
}

// SubmissionRepository defines persistence operations for ProviderSubmission
type SubmissionRepository interface {
	Create(ctx context.Context, sub *entity.ProviderSubmission) error
	GetByReference(ctx context.Context, reference string) (*entity.ProviderSubmission, error)
	GetByDocumentID(ctx context.Context, documentID string) ([]*entity.ProviderSubmission, error)
}

// ImprovementRepository defines persistence operations for the improvement
// workflow and improved document records
type ImprovementRepository interface {
	// GetWorkflow retrieves the improvement workflow for a document; (nil, nil) when absent
	GetWorkflow(ctx context.Context, documentID string) (*entity.ImprovementWorkflow, error)

	// UpsertWorkflow creates or updates the improvement workflow row
	UpsertWorkflow(ctx context.Context, wf *entity.ImprovementWorkflow) error

	// InsertImprovedDocument records an improved document upload
	InsertImprovedDocument(ctx context.Context, rec *entity.ImprovedDocumentRecord) error

	// GetImprovedDocument retrieves an improved document record by its ID; (nil, nil) when absent
	GetImprovedDocument(ctx context.Context, improvedID string) (*entity.ImprovedDocumentRecord, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
