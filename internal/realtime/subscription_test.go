package realtime

import (
	"context"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestSubscriptionEmptyFilterNeverOpens(t *testing.T) {
	bus := NewMemoryBus()
	sub := NewSubscription(bus, "appointments", "patient_id", func() {})
	defer sub.Close()

	if err := sub.SetFilterValue(""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.State() != StateUnsubscribed {
		t.Fatalf("expected unsubscribed, got %s", sub.State())
	}
	if bus.SubscriberCount() != 0 {
		t.Fatalf("expected no bus subscribers, got %d", bus.SubscriberCount())
	}
}

func TestSubscriptionNullToConcreteOpensExactlyOne(t *testing.T) {
	bus := NewMemoryBus()
	sub := NewSubscription(bus, "appointments", "patient_id", func() {})
	defer sub.Close()

	if err := sub.SetFilterValue("patient-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.State() != StateSubscribed {
		t.Fatalf("expected subscribed, got %s", sub.State())
	}
	if bus.SubscriberCount() != 1 {
		t.Fatalf("expected exactly one bus subscriber, got %d", bus.SubscriberCount())
	}

	// Repeated call with the same value must not open a second subscription.
	if err := sub.SetFilterValue("patient-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bus.SubscriberCount() != 1 {
		t.Fatalf("expected one bus subscriber after no-op, got %d", bus.SubscriberCount())
	}
}

func TestSubscriptionCallbackOnMatchingChange(t *testing.T) {
	bus := NewMemoryBus()
	called := make(chan struct{}, 4)
	sub := NewSubscription(bus, "appointments", "patient_id", func() {
		called <- struct{}{}
	})
	defer sub.Close()

	if err := sub.SetFilterValue("patient-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_ = bus.Publish(context.Background(), ChangeEvent{
		Table: "appointments", Op: OpUpdate,
		FilterColumn: "patient_id", FilterValue: "patient-1",
	})

	select {
	case <-called:
	case <-time.After(2 * time.Second):
		t.Fatal("expected callback for matching change")
	}

	// Non-matching events are filtered out.
	_ = bus.Publish(context.Background(), ChangeEvent{
		Table: "appointments", Op: OpUpdate,
		FilterColumn: "patient_id", FilterValue: "patient-2",
	})
	_ = bus.Publish(context.Background(), ChangeEvent{
		Table: "notifications", Op: OpInsert,
		FilterColumn: "patient_id", FilterValue: "patient-1",
	})

	select {
	case <-called:
		t.Fatal("callback fired for non-matching change")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSubscriptionFilterChangeResubscribes(t *testing.T) {
	bus := NewMemoryBus()
	called := make(chan struct{}, 4)
	sub := NewSubscription(bus, "appointments", "patient_id", func() {
		called <- struct{}{}
	})
	defer sub.Close()

	if err := sub.SetFilterValue("patient-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := sub.SetFilterValue("patient-2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.State() != StateSubscribed {
		t.Fatalf("expected subscribed after filter change, got %s", sub.State())
	}
	waitFor(t, func() bool { return bus.SubscriberCount() == 1 }, "old subscription not torn down")

	_ = bus.Publish(context.Background(), ChangeEvent{
		Table: "appointments", Op: OpInsert,
		FilterColumn: "patient_id", FilterValue: "patient-2",
	})
	select {
	case <-called:
	case <-time.After(2 * time.Second):
		t.Fatal("expected callback under new filter")
	}
}

func TestSubscriptionSignOutTearsDown(t *testing.T) {
	bus := NewMemoryBus()
	sub := NewSubscription(bus, "notifications", "user_id", func() {})

	if err := sub.SetFilterValue("user-9"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := sub.SetFilterValue(""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.State() != StateUnsubscribed {
		t.Fatalf("expected unsubscribed after filter cleared, got %s", sub.State())
	}
	waitFor(t, func() bool { return bus.SubscriberCount() == 0 }, "subscription not torn down on sign-out")
}

func TestParseFilter(t *testing.T) {
	column, value, ok := ParseFilter("patient_id=eq.abc-123")
	if !ok || column != "patient_id" || value != "abc-123" {
		t.Fatalf("unexpected parse result: %q %q %v", column, value, ok)
	}

	if _, _, ok := ParseFilter("patient_id=abc"); ok {
		t.Fatal("expected parse failure without eq operator")
	}
	if _, _, ok := ParseFilter("=eq.abc"); ok {
		t.Fatal("expected parse failure without column")
	}

	// The value travels verbatim; nothing is sanitized.
	_, value, _ = ParseFilter(BuildFilter("patient_id", "a=eq.b"))
	if value != "a=eq.b" {
		t.Fatalf("filter value should pass through verbatim, got %q", value)
	}
}
