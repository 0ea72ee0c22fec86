package entity

import "time"

// VerificationProvider is an external service a document can be delegated to
// for third-party verification
type VerificationProvider struct {
	ID                     string   `json:"id"`
	Name                   string   `json:"name"`
	SupportedDocumentTypes []string `json:"supported_document_types"`
	ProcessingTime         string   `json:"processing_time"`
}

// Supports returns true if the provider accepts the given document type.
// An empty supported list means the provider accepts any type.
func (p *VerificationProvider) Supports(documentType string) bool {
	if len(p.SupportedDocumentTypes) == 0 {
		return true
	}
	for _, t := range p.SupportedDocumentTypes {
		if t == documentType {
			return true
		}
	}
	return false
}

// ProviderSubmission records one delegation of a document to a provider.
// Reference is unique per submission and is the sole correlation key for
// later status polling.
type ProviderSubmission struct {
	ID          int64     `json:"id"`
	DocumentID  string    `json:"document_id"`
	ProviderID  string    `json:"provider_id"`
	Reference   string    `json:"reference"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// ProviderStatus is the result of polling a provider for a submission
type ProviderStatus struct {
	Status      string    `json:"status"`
	Message     string    `json:"message"`
	LastUpdated time.Time `json:"last_updated"`
}

// Provider status values reported by CheckStatus
const (
	ProviderStatusInProgress = "in_progress"
	ProviderStatusVerified   = "verified"
	ProviderStatusRejected   = "rejected"
	ProviderStatusFailed     = "failed"
)

// IsTerminalProviderStatus reports whether a polled status means the provider
// is done and an outcome can be applied to the document
func IsTerminalProviderStatus(status string) bool {
	switch status {
	case ProviderStatusVerified, ProviderStatusRejected, ProviderStatusFailed:
		return true
	default:
		return false
	}
}
