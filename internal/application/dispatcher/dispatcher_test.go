package dispatcher

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/docuprep/docverify/internal/domain/event"
)

func TestDispatch_RunsHandlersInOrder(t *testing.T) {
	d := NewDispatcher()
	defer d.Close()

	var order []string
	d.SubscribeNamed(event.TypeVerificationRequested, "first", func(ctx context.Context, evt *event.Event) error {
		order = append(order, "first")
		return nil
	})
	d.SubscribeNamed(event.TypeVerificationRequested, "second", func(ctx context.Context, evt *event.Event) error {
		order = append(order, "second")
		return nil
	})

	evt := event.NewEvent(event.TypeVerificationRequested, "doc-1", nil)
	if err := d.Dispatch(context.Background(), evt); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("handlers ran out of order: %v", order)
	}
}

func TestDispatch_StopsOnFirstError(t *testing.T) {
	d := NewDispatcher()
	defer d.Close()

	handlerErr := errors.New("boom")
	var secondRan bool

	d.SubscribeNamed(event.TypeVerificationCanceled, "failing", func(ctx context.Context, evt *event.Event) error {
		return handlerErr
	})
	d.SubscribeNamed(event.TypeVerificationCanceled, "after", func(ctx context.Context, evt *event.Event) error {
		secondRan = true
		return nil
	})

	err := d.Dispatch(context.Background(), event.NewEvent(event.TypeVerificationCanceled, "doc-1", nil))
	if !errors.Is(err, handlerErr) {
		t.Fatalf("expected wrapped handler error, got %v", err)
	}
	if secondRan {
		t.Error("handlers after a failure must not run")
	}
}

func TestDispatch_RecoversFromPanic(t *testing.T) {
	d := NewDispatcher()
	defer d.Close()

	d.Subscribe(event.TypeSuggestionApplied, func(ctx context.Context, evt *event.Event) error {
		panic("handler bug")
	})

	err := d.Dispatch(context.Background(), event.NewEvent(event.TypeSuggestionApplied, "doc-1", nil))
	if err == nil {
		t.Fatal("a panicking handler must surface as an error")
	}
}

func TestDispatch_IgnoresOtherEventTypes(t *testing.T) {
	d := NewDispatcher()
	defer d.Close()

	var hits int
	d.Subscribe(event.TypeProviderSubmitted, func(ctx context.Context, evt *event.Event) error {
		hits++
		return nil
	})

	if err := d.Dispatch(context.Background(), event.NewEvent(event.TypeVerificationRequested, "doc-1", nil)); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if hits != 0 {
		t.Errorf("handler for another type must not run, got %d hits", hits)
	}
}

func TestDispatchAsync_WaitsOnClose(t *testing.T) {
	d := NewDispatcher()

	var hits atomic.Int32
	var wg sync.WaitGroup
	wg.Add(1)

	d.Subscribe(event.TypeStatusChanged, func(ctx context.Context, evt *event.Event) error {
		defer wg.Done()
		time.Sleep(10 * time.Millisecond)
		hits.Add(1)
		return nil
	})

	d.DispatchAsync(context.Background(), event.NewEvent(event.TypeStatusChanged, "doc-1", nil))

	// Close blocks until in-flight async handlers finish
	if err := d.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	wg.Wait()

	if hits.Load() != 1 {
		t.Errorf("expected 1 async execution, got %d", hits.Load())
	}
}

func TestDispatch_AfterCloseFails(t *testing.T) {
	d := NewDispatcher()
	if err := d.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	if err := d.Dispatch(context.Background(), event.NewEvent(event.TypeStatusChanged, "doc-1", nil)); err == nil {
		t.Error("dispatch after close must fail")
	}
	if err := d.Close(); err == nil {
		t.Error("double close must fail")
	}
}

func TestUnsubscribe(t *testing.T) {
	d := NewDispatcher()
	defer d.Close()

	var hits int
	d.SubscribeNamed(event.TypeImprovementStarted, "audit", func(ctx context.Context, evt *event.Event) error {
		hits++
		return nil
	})

	d.Unsubscribe(event.TypeImprovementStarted, "audit")

	if err := d.Dispatch(context.Background(), event.NewEvent(event.TypeImprovementStarted, "doc-1", nil)); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if hits != 0 {
		t.Errorf("unsubscribed handler must not run, got %d hits", hits)
	}
}
