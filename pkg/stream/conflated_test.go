package stream

import (
	"errors"
	"testing"
	"time"
)

func TestConflatedKeepsNewestValue(t *testing.T) {
	c := NewConflated[int]()
	c.Send(1)
	c.Send(2)
	c.Send(3)

	select {
	case got := <-c.C():
		if got != 3 {
			t.Fatalf("expected newest value 3, got %d", got)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a pending value")
	}

	select {
	case got := <-c.C():
		t.Fatalf("expected at most one pending value, got %d", got)
	default:
	}
}

func TestConflatedSendNeverBlocks(t *testing.T) {
	c := NewConflated[int]()
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			c.Send(i)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("send blocked with no consumer")
	}
}

func TestConflatedFailClosesWithError(t *testing.T) {
	c := NewConflated[int]()
	c.Send(7)
	boom := errors.New("boom")
	c.Fail(boom)
	c.Fail(errors.New("second failure loses"))

	got, ok := <-c.C()
	if !ok || got != 7 {
		t.Fatalf("expected pending value before close, got %d ok=%v", got, ok)
	}
	if _, ok := <-c.C(); ok {
		t.Fatal("expected channel closed after failure")
	}
	if c.Err() != boom {
		t.Fatalf("expected first error to win, got %v", c.Err())
	}
}

func TestConflatedCloseIsClean(t *testing.T) {
	c := NewConflated[string]()
	c.Close()
	c.Send("ignored")
	if _, ok := <-c.C(); ok {
		t.Fatal("expected channel closed")
	}
	if c.Err() != nil {
		t.Fatalf("expected no error on clean close, got %v", c.Err())
	}
}

func TestSubscriptionCancelRunsOnce(t *testing.T) {
	c := NewConflated[int]()
	calls := 0
	sub := NewSubscription(c, func() { calls++ })
	sub.Cancel()
	sub.Cancel()
	if calls != 1 {
		t.Fatalf("expected cancel hook to run once, ran %d times", calls)
	}
	if _, ok := <-sub.C(); ok {
		t.Fatal("expected stream closed after cancel")
	}
}

func TestValueLatestWins(t *testing.T) {
	v := NewValue[int]()
	if _, ok := v.Get(); ok {
		t.Fatal("expected empty cell")
	}
	v.Set(1)
	v.Set(2)
	got, ok := v.Get()
	if !ok || got != 2 {
		t.Fatalf("expected latest value 2, got %d ok=%v", got, ok)
	}
	select {
	case got := <-v.Watch():
		if got != 2 {
			t.Fatalf("expected watcher to see newest value 2, got %d", got)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a watch notification")
	}
}
