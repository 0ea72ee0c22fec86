package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/docuprep/docverify/internal/application/dispatcher"
	"github.com/docuprep/docverify/internal/application/port"
	"github.com/docuprep/docverify/internal/domain/event"
	domainwf "github.com/docuprep/docverify/internal/domain/workflow"
)

// engineImpl is the concrete implementation of Engine
type engineImpl struct {
	documentRepo port.DocumentRepository
	dispatcher   dispatcher.Dispatcher
	txManager    port.TransactionManager

	// Cache state machines per document
	mu          sync.RWMutex
	machines    map[string]domainwf.StateMachine
	lastAccess  map[string]time.Time
	cacheExpiry time.Duration
}

// EngineOption configures the workflow engine
type EngineOption func(*engineImpl)

// WithDispatcher sets the event dispatcher for emitting status-change events
func WithDispatcher(d dispatcher.Dispatcher) EngineOption {
	return func(e *engineImpl) {
		e.dispatcher = d
	}
}

// WithTransactionManager makes the transition write join the transaction
// carried by the caller's context, or open its own
func WithTransactionManager(txManager port.TransactionManager) EngineOption {
	return func(e *engineImpl) {
		e.txManager = txManager
	}
}

// WithCacheExpiry sets the cache expiry duration for state machines
func WithCacheExpiry(expiry time.Duration) EngineOption {
	return func(e *engineImpl) {
		e.cacheExpiry = expiry
	}
}

// NewEngine creates a new verification workflow engine
func NewEngine(documentRepo port.DocumentRepository, opts ...EngineOption) Engine {
	e := &engineImpl{
		documentRepo: documentRepo,
		machines:     make(map[string]domainwf.StateMachine),
		lastAccess:   make(map[string]time.Time),
		cacheExpiry:  30 * time.Minute,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

func (e *engineImpl) GetStateMachine(ctx context.Context, documentID string) (domainwf.StateMachine, error) {
	e.mu.RLock()
	machine, exists := e.machines[documentID]
	lastAccess := e.lastAccess[documentID]
	e.mu.RUnlock()

	if exists && time.Since(lastAccess) < e.cacheExpiry {
		e.mu.Lock()
		e.lastAccess[documentID] = time.Now()
		e.mu.Unlock()
		return machine, nil
	}

	doc, err := e.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("document not found: %s", documentID)
	}

	currentState := domainwf.State(doc.StatusOrDefault())
	if !currentState.IsValid() {
		return nil, fmt.Errorf("%w: document %s has status %s", domainwf.ErrInvalidState, documentID, doc.VerificationStatus)
	}

	machine = BuildVerificationStateMachine(currentState)

	e.mu.Lock()
	e.machines[documentID] = machine
	e.lastAccess[documentID] = time.Now()
	e.mu.Unlock()

	return machine, nil
}

func (e *engineImpl) TransitionState(ctx context.Context, documentID string, trigger domainwf.Trigger) error {
	machine, err := e.GetStateMachine(ctx, documentID)
	if err != nil {
		return err
	}

	previousState := machine.State()

	if err := machine.Fire(ctx, trigger); err != nil {
		return err
	}

	newState := machine.State()

	persist := func(ctx context.Context) error {
		return e.documentRepo.UpdateStatus(ctx, documentID, newState.String())
	}
	if e.txManager != nil {
		err = e.txManager.WithTransaction(ctx, persist)
	} else {
		err = persist(ctx)
	}
	if err != nil {
		// Drop the cached machine so the next read reflects the store
		e.invalidate(documentID)
		return fmt.Errorf("failed to update document status: %w", err)
	}

	// Invalidate so the next operation rebuilds from persisted state
	e.invalidate(documentID)

	if e.dispatcher != nil {
		statusEvent := event.NewEvent(
			event.TypeStatusChanged,
			documentID,
			map[string]interface{}{
				"previous_status": previousState.String(),
				"new_status":      newState.String(),
				"trigger":         trigger.String(),
			},
		)
		e.dispatcher.DispatchAsync(ctx, statusEvent)
	}

	return nil
}

func (e *engineImpl) CanTransition(ctx context.Context, documentID string, trigger domainwf.Trigger) (bool, error) {
	machine, err := e.GetStateMachine(ctx, documentID)
	if err != nil {
		return false, err
	}
	return machine.CanFire(trigger), nil
}

func (e *engineImpl) GetCurrentState(ctx context.Context, documentID string) (domainwf.State, error) {
	machine, err := e.GetStateMachine(ctx, documentID)
	if err != nil {
		return "", err
	}
	return machine.State(), nil
}

func (e *engineImpl) invalidate(documentID string) {
	e.mu.Lock()
	delete(e.machines, documentID)
	delete(e.lastAccess, documentID)
	e.mu.Unlock()
}
