package entity

// Verification status constants for Document
const (
	StatusPendingSubmission      = "PENDING_SUBMISSION"
	StatusPendingVerification    = "PENDING_VERIFICATION"
	StatusVerificationInProgress = "VERIFICATION_IN_PROGRESS"
	StatusVerified               = "VERIFIED"
	StatusRejected               = "REJECTED"
	StatusUnableToVerify         = "UNABLE_TO_VERIFY"
	StatusNotRequired            = "NOT_REQUIRED"
)

// Workflow state constants for VerificationDetails
const (
	WorkflowStateNone          = "NONE"
	WorkflowStatePendingReview = "PENDING_REVIEW"
	WorkflowStateUnderReview   = "UNDER_REVIEW"
	WorkflowStateEscalated     = "ESCALATED"
	WorkflowStateCompleted     = "COMPLETED"
)

// Verification method constants
const (
	MethodStandard   = "STANDARD"
	MethodEnhanced   = "ENHANCED"
	MethodThirdParty = "THIRD_PARTY"
)

// Verifier identity constants
const (
	VerifiedBySystemAutomated = "SYSTEM_AUTOMATED"
	VerifiedByAgentManual     = "AGENT_MANUAL"
	VerifiedByThirdPartyAPI   = "THIRD_PARTY_API"
)

// Request step constants for the verification request sequence
const (
	StepSubmitted           = "SUBMITTED"
	StepAdditionalInfo      = "ADDITIONAL_INFO"
	StepSupportingDocuments = "SUPPORTING_DOCUMENTS"
	StepInProgress          = "IN_PROGRESS"
)

// Suggestion severity constants
const (
	SeverityCritical  = "CRITICAL"
	SeverityImportant = "IMPORTANT"
	SeverityMinor     = "MINOR"
)

// Improvement workflow status constants
const (
	ImprovementStatusStarted   = "STARTED"
	ImprovementStatusCompleted = "COMPLETED"
)

// IsValidMethod returns true if the method is one of the supported verification methods
func IsValidMethod(method string) bool {
	switch method {
	case MethodStandard, MethodEnhanced, MethodThirdParty:
		return true
	default:
		return false
	}
}

// IsValidSeverity returns true if the severity is one of the defined levels
func IsValidSeverity(severity string) bool {
	switch severity {
	case SeverityCritical, SeverityImportant, SeverityMinor:
		return true
	default:
		return false
	}
}

// MethodRequiresSupportingDocuments returns true if the verification method
// requires at least one supporting document before review can start
func MethodRequiresSupportingDocuments(method string) bool {
	return method == MethodEnhanced || method == MethodThirdParty
}
