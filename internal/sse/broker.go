// Package sse implements a Server-Sent Events broker for real-time updates.
//
// Events without a session are journal notifications that carry only entry
// IDs; every subscriber receives them. Session events carry view state and
// reach only the subscribers of that session.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event types.
const (
	TypeJournalCreated    = "journal.created"
	TypeJournalSummarized = "journal.summarized"
	TypeJournalChanged    = "journal.changed"
	TypeSessionUpdated    = "session.updated"
)

// clientBuffer is the number of frames queued per subscriber before new
// frames are dropped.
const clientBuffer = 64

// Event is one message for subscribers. An empty Session broadcasts it.
type Event struct {
	Type    string
	Session string
	Data    any
}

// Subscription is one subscriber's frame stream. C is closed when the
// subscription ends or the broker closes.
type Subscription struct {
	C       <-chan []byte
	ch      chan []byte
	session string
}

// hub is the state owned by the broker loop.
type hub struct {
	subs        map[*Subscription]struct{}
	lastChanged time.Time
	throttle    time.Duration
}

func (h *hub) deliver(ev Event) {
	payload, err := json.Marshal(ev.Data)
	if err != nil {
		return
	}
	frame := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", ev.Type, payload))

	for s := range h.subs {
		if ev.Session != "" && s.session != ev.Session {
			continue
		}
		select {
		case s.ch <- frame:
		default:
			// Slow client; drop rather than block the loop.
		}
	}
}

func (h *hub) journal(kind, id string) {
	data := map[string]string{"id": id}
	switch kind {
	case "created":
		h.deliver(Event{Type: TypeJournalCreated, Data: data})
	case "summarized":
		h.deliver(Event{Type: TypeJournalSummarized, Data: data})
	}

	now := time.Now()
	if now.Sub(h.lastChanged) >= h.throttle {
		h.lastChanged = now
		h.deliver(Event{Type: TypeJournalChanged, Data: map[string]string{}})
	}
}

// Broker fans events out to SSE subscribers. A single loop goroutine owns
// the hub; public methods hand it operations over a queue.
type Broker struct {
	ops    chan func(*hub)
	stop   chan struct{}
	done   chan struct{}
	closed atomic.Bool
}

// NewBroker creates a broker that emits at most one journal.changed event
// per throttle interval.
func NewBroker(throttle time.Duration) *Broker {
	if throttle <= 0 {
		throttle = 2 * time.Second
	}

	b := &Broker{
		ops:  make(chan func(*hub), 256),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go b.loop(&hub{subs: map[*Subscription]struct{}{}, throttle: throttle})
	return b
}

func (b *Broker) loop(h *hub) {
	defer close(b.done)
	for {
		select {
		case <-b.stop:
			for s := range h.subs {
				close(s.ch)
			}
			return
		case op := <-b.ops:
			op(h)
		}
	}
}

// submit queues op for the loop. It reports false once the broker is closed.
func (b *Broker) submit(op func(*hub)) bool {
	if b.closed.Load() {
		return false
	}
	select {
	case b.ops <- op:
		return true
	case <-b.done:
		return false
	}
}

// Close stops the loop and closes every subscription.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stop)
	}
	<-b.done
}

// Subscribe registers a subscriber. An empty session receives broadcast
// events only; a session ID also receives that session's events.
func (b *Broker) Subscribe(session string) *Subscription {
	ch := make(chan []byte, clientBuffer)
	s := &Subscription{C: ch, ch: ch, session: session}
	added := make(chan struct{})
	if !b.submit(func(h *hub) {
		h.subs[s] = struct{}{}
		close(added)
	}) {
		close(ch)
		return s
	}

	select {
	case <-added:
	case <-b.done:
		// The loop closed ch only if it registered s before stopping.
		select {
		case <-added:
		default:
			close(ch)
		}
	}
	return s
}

// Unsubscribe removes s and closes its channel.
func (b *Broker) Unsubscribe(s *Subscription) {
	b.submit(func(h *hub) {
		if _, ok := h.subs[s]; ok {
			delete(h.subs, s)
			close(s.ch)
		}
	})
}

// ClientCount returns the number of subscribers.
func (b *Broker) ClientCount() int {
	resp := make(chan int, 1)
	if !b.submit(func(h *hub) { resp <- len(h.subs) }) {
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.done:
		return 0
	}
}

// Publish queues ev for delivery.
func (b *Broker) Publish(ev Event) {
	b.submit(func(h *hub) { h.deliver(ev) })
}

// PublishJournalEvent publishes a journal entry change ("created" or
// "summarized") followed by a throttled journal.changed event.
func (b *Broker) PublishJournalEvent(kind, id string) {
	b.submit(func(h *hub) { h.journal(kind, id) })
}

// ServeHTTP streams broadcast events (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.Stream(w, r, "")
}

// Stream writes the events visible to session until the client goes away or
// the broker closes. Callers check that the session exists.
func (b *Broker) Stream(w http.ResponseWriter, r *http.Request, session string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub := b.Subscribe(session)
	defer b.Unsubscribe(sub)

	for {
		select {
		case <-r.Context().Done():
			return
		case frame, ok := <-sub.C:
			if !ok {
				return
			}
			_, _ = w.Write(frame)
			flusher.Flush()
		}
	}
}
