package workflow

import (
	"context"
	"errors"
	"testing"

	domainwf "github.com/docuprep/docverify/internal/domain/workflow"
)

func fire(t *testing.T, m domainwf.StateMachine, trigger domainwf.Trigger) {
	t.Helper()
	if err := m.Fire(context.Background(), trigger); err != nil {
		t.Fatalf("fire %s from %s: %v", trigger, m.State(), err)
	}
}

func TestVerificationMachine_HappyPath(t *testing.T) {
	m := BuildVerificationStateMachine(domainwf.StatePendingSubmission)

	fire(t, m, domainwf.TriggerRequest)
	if m.State() != domainwf.StatePendingVerification {
		t.Errorf("expected PENDING_VERIFICATION, got %s", m.State())
	}

	fire(t, m, domainwf.TriggerBeginReview)
	if m.State() != domainwf.StateVerificationInProgress {
		t.Errorf("expected VERIFICATION_IN_PROGRESS, got %s", m.State())
	}

	fire(t, m, domainwf.TriggerVerify)
	if m.State() != domainwf.StateVerified {
		t.Errorf("expected VERIFIED, got %s", m.State())
	}
}

func TestVerificationMachine_VerifiedIsTerminal(t *testing.T) {
	m := BuildVerificationStateMachine(domainwf.StateVerified)

	for _, trigger := range []domainwf.Trigger{
		domainwf.TriggerRequest,
		domainwf.TriggerCancel,
		domainwf.TriggerBeginReview,
		domainwf.TriggerVerify,
		domainwf.TriggerReject,
		domainwf.TriggerMarkUnverifiable,
	} {
		if m.CanFire(trigger) {
			t.Errorf("trigger %s must not be permitted from VERIFIED", trigger)
		}
	}
}

func TestVerificationMachine_RejectedAllowsReRequest(t *testing.T) {
	m := BuildVerificationStateMachine(domainwf.StateRejected)

	fire(t, m, domainwf.TriggerRequest)
	if m.State() != domainwf.StatePendingVerification {
		t.Errorf("expected PENDING_VERIFICATION after re-request, got %s", m.State())
	}
}

func TestVerificationMachine_UnableToVerifyAllowsReRequest(t *testing.T) {
	m := BuildVerificationStateMachine(domainwf.StateUnableToVerify)

	if !m.CanFire(domainwf.TriggerRequest) {
		t.Fatal("REQUEST must be permitted from UNABLE_TO_VERIFY")
	}
}

func TestVerificationMachine_CancelFromPending(t *testing.T) {
	m := BuildVerificationStateMachine(domainwf.StatePendingVerification)

	fire(t, m, domainwf.TriggerCancel)
	if m.State() != domainwf.StatePendingSubmission {
		t.Errorf("expected PENDING_SUBMISSION after cancel, got %s", m.State())
	}
}

func TestVerificationMachine_CancelFromInProgress(t *testing.T) {
	m := BuildVerificationStateMachine(domainwf.StateVerificationInProgress)

	fire(t, m, domainwf.TriggerCancel)
	if m.State() != domainwf.StatePendingSubmission {
		t.Errorf("expected PENDING_SUBMISSION after cancel, got %s", m.State())
	}
}

func TestVerificationMachine_OutcomesFromInProgress(t *testing.T) {
	cases := []struct {
		trigger domainwf.Trigger
		want    domainwf.State
	}{
		{domainwf.TriggerVerify, domainwf.StateVerified},
		{domainwf.TriggerReject, domainwf.StateRejected},
		{domainwf.TriggerMarkUnverifiable, domainwf.StateUnableToVerify},
	}

	for _, tc := range cases {
		m := BuildVerificationStateMachine(domainwf.StateVerificationInProgress)
		fire(t, m, tc.trigger)
		if m.State() != tc.want {
			t.Errorf("trigger %s: expected %s, got %s", tc.trigger, tc.want, m.State())
		}
	}
}

func TestVerificationMachine_NoSkippingReview(t *testing.T) {
	m := BuildVerificationStateMachine(domainwf.StatePendingVerification)

	err := m.Fire(context.Background(), domainwf.TriggerVerify)
	if err == nil {
		t.Fatal("VERIFY from PENDING_VERIFICATION must be rejected")
	}
	if !errors.Is(err, domainwf.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
	if m.State() != domainwf.StatePendingVerification {
		t.Errorf("state must not change, got %s", m.State())
	}
}
