package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_SimpleTransition(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StatePendingSubmission).
		Permit(TriggerRequest, StatePendingVerification)

	machine := builder.Build(StatePendingSubmission)

	require.True(t, machine.CanFire(TriggerRequest))
	require.NoError(t, machine.Fire(context.Background(), TriggerRequest))
	assert.Equal(t, StatePendingVerification, machine.State())
}

func TestBuilder_InvalidTrigger(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StatePendingSubmission).
		Permit(TriggerRequest, StatePendingVerification)

	machine := builder.Build(StatePendingSubmission)

	assert.False(t, machine.CanFire(TriggerVerify))

	err := machine.Fire(context.Background(), TriggerVerify)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Equal(t, StatePendingSubmission, machine.State(), "state must not change on a rejected trigger")
}

func TestBuilder_UnconfiguredState(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StatePendingSubmission).
		Permit(TriggerRequest, StatePendingVerification)

	machine := builder.Build(StateVerified)

	err := machine.Fire(context.Background(), TriggerRequest)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Empty(t, machine.PermittedTriggers())
}

func TestBuilder_GuardBlocksTransition(t *testing.T) {
	allowed := false

	builder := NewBuilder()
	builder.Configure(StatePendingVerification).
		PermitIf(TriggerBeginReview, StateVerificationInProgress, func(ctx context.Context) bool {
			return allowed
		})

	machine := builder.Build(StatePendingVerification)

	err := machine.Fire(context.Background(), TriggerBeginReview)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGuardFailed))
	assert.Equal(t, StatePendingVerification, machine.State())

	allowed = true
	require.NoError(t, machine.Fire(context.Background(), TriggerBeginReview))
	assert.Equal(t, StateVerificationInProgress, machine.State())
}

func TestBuilder_BuildIsolatesConfiguration(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StatePendingSubmission).
		Permit(TriggerRequest, StatePendingVerification)

	machine := builder.Build(StatePendingSubmission)

	// Configuring after Build must not leak into the built machine
	builder.Configure(StatePendingSubmission).
		Permit(TriggerCancel, StateNotRequired)

	assert.False(t, machine.CanFire(TriggerCancel))
}

func TestBuilder_PermittedTriggers(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateVerificationInProgress).
		Permit(TriggerVerify, StateVerified).
		Permit(TriggerReject, StateRejected).
		Permit(TriggerCancel, StatePendingSubmission)

	machine := builder.Build(StateVerificationInProgress)

	triggers := machine.PermittedTriggers()
	assert.Len(t, triggers, 3)
	assert.Contains(t, triggers, TriggerVerify)
	assert.Contains(t, triggers, TriggerReject)
	assert.Contains(t, triggers, TriggerCancel)
}

func TestState_IsTerminal(t *testing.T) {
	assert.True(t, StateVerified.IsTerminal())
	assert.True(t, StateNotRequired.IsTerminal())

	// Rejection and unverifiability allow a re-request, so neither is terminal
	assert.False(t, StateRejected.IsTerminal())
	assert.False(t, StateUnableToVerify.IsTerminal())
	assert.False(t, StatePendingSubmission.IsTerminal())
}

func TestState_IsValid(t *testing.T) {
	assert.True(t, StatePendingVerification.IsValid())
	assert.False(t, State("SOMETHING_ELSE").IsValid())
	assert.False(t, State("").IsValid())
}
