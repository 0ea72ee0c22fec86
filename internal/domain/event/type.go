package event

// Type identifies the type of domain event
type Type string

const (
	TypeVerificationRequested Type = "verification.requested"
	TypeVerificationCanceled  Type = "verification.canceled"
	TypeStatusChanged         Type = "verification.status_changed"
	TypeOutcomeApplied        Type = "verification.outcome_applied"
	TypeProviderSubmitted     Type = "provider.submitted"
	TypeSuggestionApplied     Type = "suggestion.applied"
	TypeSuggestionsGenerated  Type = "suggestion.generated"
	TypeImprovementStarted    Type = "improvement.started"
	TypeImprovementCompleted  Type = "improvement.completed"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeVerificationRequested,
		TypeVerificationCanceled,
		TypeStatusChanged,
		TypeOutcomeApplied,
		TypeProviderSubmitted,
		TypeSuggestionApplied,
		TypeSuggestionsGenerated,
		TypeImprovementStarted,
		TypeImprovementCompleted:
		return true
	default:
		return false
	}
}
