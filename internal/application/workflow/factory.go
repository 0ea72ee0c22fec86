package workflow

import (
	domainwf "github.com/docuprep/docverify/internal/domain/workflow"
)

// BuildVerificationStateMachine creates a state machine configured for the
// document verification lifecycle
func BuildVerificationStateMachine(initialState domainwf.State) domainwf.StateMachine {
	builder := domainwf.NewBuilder()

	// PENDING_SUBMISSION state transitions
	builder.Configure(domainwf.StatePendingSubmission).
		Permit(domainwf.TriggerRequest, domainwf.StatePendingVerification)

	// PENDING_VERIFICATION state transitions
	builder.Configure(domainwf.StatePendingVerification).
		Permit(domainwf.TriggerBeginReview, domainwf.StateVerificationInProgress).
		Permit(domainwf.TriggerCancel, domainwf.StatePendingSubmission)

	// VERIFICATION_IN_PROGRESS state transitions
	builder.Configure(domainwf.StateVerificationInProgress).
		Permit(domainwf.TriggerVerify, domainwf.StateVerified).
		Permit(domainwf.TriggerReject, domainwf.StateRejected).
		Permit(domainwf.TriggerMarkUnverifiable, domainwf.StateUnableToVerify).
		Permit(domainwf.TriggerCancel, domainwf.StatePendingSubmission)

	// REJECTED and UNABLE_TO_VERIFY allow re-requesting verification
	builder.Configure(domainwf.StateRejected).
		Permit(domainwf.TriggerRequest, domainwf.StatePendingVerification)

	builder.Configure(domainwf.StateUnableToVerify).
		Permit(domainwf.TriggerRequest, domainwf.StatePendingVerification)

	// VERIFIED and NOT_REQUIRED are terminal - no outgoing transitions

	return builder.Build(initialState)
}
