// Package sse streams vocabulary changes to HTTP clients as Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/starford/lexicon/internal/termservice"
)

// Event types on the stream.
const (
	TypeTermCreated  = "term.created"
	TypeTermPromoted = "term.promoted"
	TypeTreeChanged  = "tree.changed"
)

const (
	clientBuffer = 64
	backlogSize  = 128
	keepAlive    = 15 * time.Second
)

// Event is one message on the stream. IDs increase by one per event so a
// reconnecting client can resume with Last-Event-ID.
type Event struct {
	ID   uint64
	Type string
	Data any
}

// TermChange is the payload of term.created and term.promoted.
type TermChange struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// TreeChange is the payload of tree.changed: every path touched during one
// batching window, sorted.
type TreeChange struct {
	Paths []string `json:"paths"`
}

func (e Event) encode() ([]byte, error) {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", e.ID, e.Type, data)), nil
}

// Broker fans term events out to stream clients.
//
// Term additions go out immediately. Every reported path, including edits
// made outside the process, is also collected into a pending set that is
// flushed as a single tree.changed event once per batching window.
type Broker struct {
	window time.Duration

	mu      sync.Mutex
	clients map[chan Event]struct{}
	seq     uint64
	backlog []Event
	pending map[string]struct{}
	flush   *time.Timer
	closed  bool
}

// NewBroker creates a broker that batches tree changes over window.
func NewBroker(window time.Duration) *Broker {
	if window <= 0 {
		window = 2 * time.Second
	}
	return &Broker{
		window:  window,
		clients: make(map[chan Event]struct{}),
		pending: make(map[string]struct{}),
	}
}

// PublishTermEvent implements termservice.EventSink.
func (b *Broker) PublishTermEvent(kind, name, path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}

	switch kind {
	case termservice.EventCreated:
		b.emitLocked(TypeTermCreated, TermChange{Name: name, Path: path})
	case termservice.EventPromoted:
		b.emitLocked(TypeTermPromoted, TermChange{Name: name, Path: path})
	}

	if path == "" {
		return
	}
	b.pending[path] = struct{}{}
	if b.flush == nil {
		b.flush = time.AfterFunc(b.window, b.flushTree)
	}
}

func (b *Broker) flushTree() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flush = nil
	if b.closed || len(b.pending) == 0 {
		return
	}
	paths := make([]string, 0, len(b.pending))
	for p := range b.pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	clear(b.pending)
	b.emitLocked(TypeTreeChanged, TreeChange{Paths: paths})
}

// emitLocked assigns the next ID, keeps the event for replay and hands it to
// every client. A client whose buffer is full misses the event.
func (b *Broker) emitLocked(typ string, data any) {
	b.seq++
	ev := Event{ID: b.seq, Type: typ, Data: data}

	b.backlog = append(b.backlog, ev)
	if len(b.backlog) > backlogSize {
		b.backlog = b.backlog[len(b.backlog)-backlogSize:]
	}
	for ch := range b.clients {
		select {
		case ch <- ev:
		default:
		}
	}
}

// subscribe registers a client and returns the retained events newer than
// after. The channel is closed when the broker closes.
func (b *Broker) subscribe(after uint64) (chan Event, []Event) {
	ch := make(chan Event, clientBuffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch, nil
	}
	var missed []Event
	for _, ev := range b.backlog {
		if ev.ID > after {
			missed = append(missed, ev)
		}
	}
	b.clients[ch] = struct{}{}
	return ch, missed
}

func (b *Broker) unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clients[ch]; ok {
		delete(b.clients, ch)
		close(ch)
	}
}

func (b *Broker) clientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

// Close ends every open stream and drops pending tree changes. It is safe to
// call more than once.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	if b.flush != nil {
		b.flush.Stop()
		b.flush = nil
	}
	for ch := range b.clients {
		close(ch)
	}
	clear(b.clients)
}

// ServeHTTP streams events to one client (GET /api/events). A Last-Event-ID
// header replays retained events the client has not seen.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	var after uint64
	if id := r.Header.Get("Last-Event-ID"); id != "" {
		n, err := strconv.ParseUint(id, 10, 64)
		if err != nil {
			http.Error(w, "invalid Last-Event-ID", http.StatusBadRequest)
			return
		}
		after = n
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)

	ch, missed := b.subscribe(after)
	defer b.unsubscribe(ch)

	write := func(ev Event) bool {
		msg, err := ev.encode()
		if err != nil {
			return true
		}
		_, err = w.Write(msg)
		return err == nil
	}
	for _, ev := range missed {
		if !write(ev) {
			return
		}
	}
	flusher.Flush()

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()
	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.Write([]byte(": keep-alive\n\n")); err != nil {
				return
			}
			flusher.Flush()
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if !write(ev) {
				return
			}
			flusher.Flush()
		}
	}
}
