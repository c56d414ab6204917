package docstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestNotifier(t *testing.T) *RedisNotifier {
	t.Helper()
	srv := miniredis.RunT(t)
	n := NewRedisNotifier(srv.Addr(), "")
	t.Cleanup(func() { _ = n.Close() })
	return n
}

func TestRedisNotifierDeliversEvents(t *testing.T) {
	n := newTestNotifier(t)
	ctx := context.Background()

	events, stop, err := n.Subscribe(ctx, "books")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer stop()

	if err := n.Publish(ctx, Event{Collection: "books", ID: "42"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case ev := <-events:
		if ev.Collection != "books" || ev.ID != "42" {
			t.Fatalf("unexpected event: %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change event")
	}
}

func TestRedisNotifierScopesEventsToCollection(t *testing.T) {
	n := newTestNotifier(t)
	ctx := context.Background()

	events, stop, err := n.Subscribe(ctx, "books")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer stop()

	if err := n.Publish(ctx, Event{Collection: "authors", ID: "1"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := n.Publish(ctx, Event{Collection: "books", ID: "2"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case ev := <-events:
		if ev.ID != "2" {
			t.Fatalf("expected only the books event, got %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change event")
	}
}

func TestRedisNotifierStopClosesChannel(t *testing.T) {
	n := newTestNotifier(t)

	events, stop, err := n.Subscribe(context.Background(), "books")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	stop()

	select {
	case _, ok := <-events:
		if ok {
			t.Fatal("expected no event after stop")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected event channel to close after stop")
	}
}
