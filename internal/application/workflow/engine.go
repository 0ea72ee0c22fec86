package workflow

import (
	"context"

	domainwf "github.com/docuprep/docverify/internal/domain/workflow"
)

// Engine drives verification state transitions for documents
type Engine interface {
	// GetStateMachine returns a state machine for a document (creates if not cached)
	GetStateMachine(ctx context.Context, documentID string) (domainwf.StateMachine, error)

	// TransitionState fires a trigger for a document and persists the new status
	TransitionState(ctx context.Context, documentID string, trigger domainwf.Trigger) error

	// CanTransition reports whether the trigger is permitted from the document's current state
	CanTransition(ctx context.Context, documentID string, trigger domainwf.Trigger) (bool, error)

	// GetCurrentState returns the current verification state of a document
	GetCurrentState(ctx context.Context, documentID string) (domainwf.State, error)
}
