package port

import (
	"context"
	"fmt"

	"github.com/docuprep/docverify/internal/domain/entity"
)

// ProviderError wraps a failure from the third-party verification API.
// Delivery is not guaranteed; the caller must re-poll or re-submit.
type ProviderError struct {
	Op      string
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error during %s: %s", e.Op, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a ProviderError wrapping an underlying failure
func NewProviderError(op string, err error) *ProviderError {
	return &ProviderError{Op: op, Message: err.Error(), Err: err}
}

// ProviderClient defines operations against the third-party verification API
type ProviderClient interface {
	// FetchCatalog retrieves the provider catalog from the external source.
	// May return an empty list; callers fall back to a default catalog.
	FetchCatalog(ctx context.Context) ([]*entity.VerificationProvider, error)

	// Submit delegates a document to a provider under the given reference
	Submit(ctx context.Context, documentID, providerID, reference string) error

	// CheckStatus polls the provider for the submission identified by reference.
	// Side-effect free; safe to retry.
	CheckStatus(ctx context.Context, reference string) (*entity.ProviderStatus, error)
}

// SuggestionFinding is one quality finding produced by document analysis
type SuggestionFinding struct {
	Message  string
	Severity string
}

// AnalysisResult is the outcome of analyzing a document's content
type AnalysisResult struct {
	Findings []SuggestionFinding
	Summary  string
	RawJSON  string
}

// DocumentAnalyzer produces optimization findings from document text
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, documentType, text string) (*AnalysisResult, error)
}
