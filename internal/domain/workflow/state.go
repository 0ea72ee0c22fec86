package workflow

// State represents a verification state in the document lifecycle
type State string

const (
	StatePendingSubmission      State = "PENDING_SUBMISSION"
	StatePendingVerification    State = "PENDING_VERIFICATION"
	StateVerificationInProgress State = "VERIFICATION_IN_PROGRESS"
	StateVerified               State = "VERIFIED"
	StateRejected               State = "REJECTED"
	StateUnableToVerify         State = "UNABLE_TO_VERIFY"
	StateNotRequired            State = "NOT_REQUIRED"
)

var validStates = map[State]bool{
	StatePendingSubmission:      true,
	StatePendingVerification:    true,
	StateVerificationInProgress: true,
	StateVerified:               true,
	StateRejected:               true,
	StateUnableToVerify:         true,
	StateNotRequired:            true,
}

// Terminal states: VERIFIED is final, NOT_REQUIRED is only reachable by
// external initial classification. REJECTED and UNABLE_TO_VERIFY are not
// terminal because verification can be re-requested from them.
var terminalStates = map[State]bool{
	StateVerified:    true,
	StateNotRequired: true,
}

// IsTerminal returns true if no further transitions are allowed from the state
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a valid verification state
func (s State) IsValid() bool {
	return validStates[s]
}
