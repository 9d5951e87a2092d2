package sse

import (
	"strings"
	"testing"
	"time"
)

func recv(t *testing.T, ch chan []byte) string {
	t.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		return string(msg)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event")
		return ""
	}
}

func TestBroker_PublishPostEvent(t *testing.T) {
	b := NewBroker(time.Hour) // throttle long enough that graph fires once
	defer b.Close()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishPostEvent("created", "my-post")

	msg := recv(t, ch)
	if !strings.Contains(msg, "event: post.created") {
		t.Errorf("msg = %q, want post.created", msg)
	}
	if !strings.Contains(msg, `"slug":"my-post"`) {
		t.Errorf("msg = %q, want slug payload", msg)
	}

	// First post event also triggers graph.updated.
	msg = recv(t, ch)
	if !strings.Contains(msg, "event: graph.updated") {
		t.Errorf("msg = %q, want graph.updated", msg)
	}
}

func TestBroker_SyncedEvent(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishPostEvent("synced", "")
	msg := recv(t, ch)
	if !strings.Contains(msg, "event: vault.synced") {
		t.Errorf("msg = %q, want vault.synced", msg)
	}
}

func TestBroker_GraphThrottled(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishPostEvent("updated", "a")
	recv(t, ch) // post.updated
	recv(t, ch) // graph.updated (first in window)

	b.PublishPostEvent("updated", "b")
	msg := recv(t, ch)
	if !strings.Contains(msg, "event: post.updated") {
		t.Fatalf("msg = %q", msg)
	}

	// No second graph.updated inside the throttle window.
	select {
	case extra := <-ch:
		if strings.Contains(string(extra), "graph.updated") {
			t.Errorf("graph.updated not throttled: %q", extra)
		}
	case <-time.After(200 * time.Millisecond):
	}
}

func TestBroker_ClientCount(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()

	ch1 := b.Subscribe()
	ch2 := b.Subscribe()

	waitFor(t, func() bool { return b.ClientCount() == 2 }, "count != 2")

	b.Unsubscribe(ch1)
	waitFor(t, func() bool { return b.ClientCount() == 1 }, "count != 1 after unsubscribe")
	b.Unsubscribe(ch2)
}

func TestBroker_CloseClosesClients(t *testing.T) {
	b := NewBroker(time.Second)
	ch := b.Subscribe()
	waitFor(t, func() bool { return b.ClientCount() == 1 }, "client not registered")

	b.Close()
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Error("channel not closed after broker Close")
	}

	// Publishing after close must not panic.
	b.Publish(Event{Type: "x"})
	b.PublishPostEvent("created", "y")
	b.Close() // idempotent
}

func waitFor(t *testing.T, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error(msg)
}
