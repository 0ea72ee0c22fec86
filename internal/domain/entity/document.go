package entity

import "time"

// Document represents an immigration document under verification
type Document struct {
	ID                  string               `json:"id"`
	DocumentType        string               `json:"document_type"`
	FileName            string               `json:"file_name"`
	FilePath            string               `json:"file_path"`
	VerificationStatus  string               `json:"verification_status"`
	VerificationDetails *VerificationDetails `json:"verification_details,omitempty"`
	AnalysisData        string               `json:"analysis_data,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

// VerificationDetails holds the mutable state of a document's verification request.
// It is persisted as a single JSON column and merged read-modify-write, so new
// fields can be added without schema changes.
type VerificationDetails struct {
	WorkflowState         string               `json:"workflow_state,omitempty"`
	CurrentStep           string               `json:"current_step,omitempty"`
	RequestedAt           *time.Time           `json:"requested_at,omitempty"`
	VerificationMethod    string               `json:"verification_method,omitempty"`
	Expedited             bool                 `json:"expedited,omitempty"`
	AdditionalNotes       string               `json:"additional_notes,omitempty"`
	CanceledAt            *time.Time           `json:"canceled_at,omitempty"`
	VerifiedBy            string               `json:"verified_by,omitempty"`
	VerifiedAt            *time.Time           `json:"verified_at,omitempty"`
	RejectionReason       string               `json:"rejection_reason,omitempty"`
	VerificationNotes     string               `json:"verification_notes,omitempty"`
	ProviderID            string               `json:"provider_id,omitempty"`
	Reference             string               `json:"reference,omitempty"`
	SubmittedToProviderAt *time.Time           `json:"submitted_to_provider_at,omitempty"`
	AdditionalInfo        *AdditionalInfo      `json:"additional_info,omitempty"`
	SupportingDocuments   []SupportingDocument `json:"supporting_documents,omitempty"`
}

// AdditionalInfo holds the structured fields collected during the
// additional-information step of a verification request
type AdditionalInfo struct {
	DocumentNumber  string `json:"document_number"`
	IssuedBy        string `json:"issued_by,omitempty"`
	IssuedDate      string `json:"issued_date,omitempty"`
	ExpiryDate      string `json:"expiry_date,omitempty"`
	DocumentPurpose string `json:"document_purpose,omitempty"`
}

// SupportingDocument records one uploaded file backing a verification request
type SupportingDocument struct {
	FileName   string    `json:"file_name"`
	Size       int64     `json:"size"`
	Type       string    `json:"type"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// WorkflowStateOrDefault returns the workflow state, defaulting to NONE when
// no verification fields have ever been set
func (d *Document) WorkflowStateOrDefault() string {
	if d.VerificationDetails == nil || d.VerificationDetails.WorkflowState == "" {
		return WorkflowStateNone
	}
	return d.VerificationDetails.WorkflowState
}

// StatusOrDefault returns the verification status, defaulting to
// PENDING_SUBMISSION for documents created before any verification activity
func (d *Document) StatusOrDefault() string {
	if d.VerificationStatus == "" {
		return StatusPendingSubmission
	}
	return d.VerificationStatus
}
