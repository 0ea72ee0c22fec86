package workflow

// Trigger represents an event that can cause a state transition
type Trigger string

const (
	TriggerRequest          Trigger = "REQUEST"
	TriggerCancel           Trigger = "CANCEL"
	TriggerBeginReview      Trigger = "BEGIN_REVIEW"
	TriggerVerify           Trigger = "VERIFY"
	TriggerReject           Trigger = "REJECT"
	TriggerMarkUnverifiable Trigger = "MARK_UNVERIFIABLE"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
