package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/carebridge-health/telecare-platform/pkg/logging"
)

func newTestRedisBus(t *testing.T) *RedisBus {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisBus(client, logging.Default())
}

func TestRedisBusPublishSubscribe(t *testing.T) {
	bus := newTestRedisBus(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	want := ChangeEvent{
		Table: "appointments", Op: OpInsert,
		FilterColumn: "patient_id", FilterValue: "patient-1",
	}
	if err := bus.Publish(ctx, want); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case got := <-events:
		if got != want {
			t.Fatalf("unexpected event: %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change event")
	}
}

func TestRedisBusSubscribeStopsOnCancel(t *testing.T) {
	bus := newTestRedisBus(t)

	ctx, cancel := context.WithCancel(context.Background())
	events, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	cancel()

	select {
	case _, ok := <-events:
		if ok {
			// A buffered event may still drain; the channel must close after.
			for range events {
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected channel to close after cancel")
	}
}
