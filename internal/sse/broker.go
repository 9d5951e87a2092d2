// Package sse implements a Server-Sent Events broker that streams vault
// change notifications to connected clients.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event is one SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type postEvent struct {
	kind string
	slug string
}

type subscription struct {
	ch    chan []byte
	added bool
}

// Broker fans change events out to SSE clients.
//
// Concurrency model: a single event loop goroutine owns all mutable state
// (the client set and the graph throttle timestamp). Public methods talk to
// the loop through channels only, so no mutexes are needed.
type Broker struct {
	graphMin time.Duration

	subCh   chan subscription
	eventCh chan Event
	postCh  chan postEvent

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
	clients atomic.Int64
}

// NewBroker creates a broker. graphThrottle bounds how often a
// "graph.updated" event follows post changes.
func NewBroker(graphThrottle time.Duration) *Broker {
	if graphThrottle <= 0 {
		graphThrottle = 2 * time.Second
	}
	b := &Broker{
		graphMin: graphThrottle,
		subCh:    make(chan subscription),
		eventCh:  make(chan Event, 256),
		postCh:   make(chan postEvent, 256),
		stopCh:   make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var lastGraph time.Time

	broadcast := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		raw := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload))
		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Client buffer full; skip rather than block the loop.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			b.clients.Store(0)
			return

		case sub := <-b.subCh:
			if sub.added {
				clients[sub.ch] = struct{}{}
			} else if _, ok := clients[sub.ch]; ok {
				delete(clients, sub.ch)
				close(sub.ch)
			}
			b.clients.Store(int64(len(clients)))

		case event := <-b.eventCh:
			broadcast(event)

		case pe := <-b.postCh:
			if pe.kind == "synced" {
				broadcast(Event{Type: "vault.synced", Data: map[string]string{}})
			} else {
				broadcast(Event{
					Type: "post." + pe.kind,
					Data: map[string]string{"slug": pe.slug},
				})
			}
			if now := time.Now(); now.Sub(lastGraph) >= b.graphMin {
				lastGraph = now
				broadcast(Event{Type: "graph.updated", Data: map[string]string{}})
			}
		}
	}
}

// Close stops the loop and closes all client channels. Safe to call twice.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}
	select {
	case b.subCh <- subscription{ch: ch, added: true}:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.subCh <- subscription{ch: ch}:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	return int(b.clients.Load())
}

// Publish sends an arbitrary event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.eventCh <- event:
	case <-b.stopped:
	}
}

// PublishPostEvent publishes a post change ("created", "updated",
// "deleted", or "synced") plus a throttled graph.updated event.
func (b *Broker) PublishPostEvent(kind, slug string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.postCh <- postEvent{kind: kind, slug: slug}:
	case <-b.stopped:
	}
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Periodic comment lines keep intermediaries from closing idle streams.
	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-keepalive.C:
			if _, err := w.Write([]byte(": ping\n\n")); err != nil {
				return
			}
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
