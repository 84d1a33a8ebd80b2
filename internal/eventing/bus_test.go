package eventing

import (
	"context"
	"errors"
	"testing"
)

type testEvent struct {
	Value int
}

type otherEvent struct {
	Name string
}

func TestPublishDispatchesByType(t *testing.T) {
	bus := NewInMemoryBus(nil)
	ctx := context.Background()

	var got []int
	bus.Subscribe(EventTypeOf[testEvent](), func(_ context.Context, e any) error {
		got = append(got, e.(testEvent).Value)
		return nil
	})
	bus.Subscribe(EventTypeOf[otherEvent](), func(_ context.Context, e any) error {
		t.Fatal("wrong handler invoked")
		return nil
	})

	if err := bus.Publish(ctx, testEvent{Value: 7}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(got) != 1 || got[0] != 7 {
		t.Fatalf("got %v", got)
	}
}

func TestPublishContinuesPastFailedHandler(t *testing.T) {
	bus := NewInMemoryBus(nil)
	ctx := context.Background()

	var calls int
	bus.Subscribe(EventTypeOf[testEvent](), func(context.Context, any) error {
		calls++
		return errors.New("boom")
	})
	bus.Subscribe(EventTypeOf[testEvent](), func(context.Context, any) error {
		calls++
		return nil
	})

	if err := bus.Publish(ctx, testEvent{}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestPublishNilEvent(t *testing.T) {
	bus := NewInMemoryBus(nil)
	if err := bus.Publish(context.Background(), nil); !errors.Is(err, ErrNilEvent) {
		t.Fatalf("expected ErrNilEvent, got %v", err)
	}
}

func TestEventTypeDereferencesPointers(t *testing.T) {
	if EventType(testEvent{}) != EventType(&testEvent{}) {
		t.Fatal("pointer and value must share a type name")
	}
	if EventType(testEvent{}) != EventTypeOf[testEvent]() {
		t.Fatal("EventTypeOf must agree with EventType")
	}
}
