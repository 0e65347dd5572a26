// Package sse streams response store changes as Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/chamai/pkg/application"
)

// Payload is the data line of one streamed event.
type Payload struct {
	Kind     application.ChangeKind `json:"kind"`
	Item     string                 `json:"item,omitempty"`
	Role     string                 `json:"role,omitempty"`
	Sections []string               `json:"sections,omitempty"`
	Rebuild  bool                   `json:"rebuild"`
}

type message struct {
	id      uint64
	kind    application.ChangeKind
	payload []byte
}

// Handler streams store changes to every connected client.
type Handler struct {
	unsubscribe func()

	mu      sync.RWMutex
	clients map[chan message]struct{}
	nextID  uint64
	done    chan struct{}
	closed  bool
}

// NewHandler creates a handler subscribed to store. Call Close to unsubscribe
// and end open streams.
func NewHandler(store *application.ResponseStore) *Handler {
	h := &Handler{
		clients: make(map[chan message]struct{}),
		done:    make(chan struct{}),
	}
	h.unsubscribe = store.Subscribe(h.publish)
	return h
}

func (h *Handler) publish(ev application.ChangeEvent) {
	data, err := json.Marshal(Payload{
		Kind:     ev.Kind,
		Item:     ev.ItemCode,
		Role:     string(ev.Role),
		Sections: ev.Sections,
		Rebuild:  ev.Rebuild,
	})
	if err != nil {
		return
	}

	h.mu.Lock()
	h.nextID++
	msg := message{id: h.nextID, kind: ev.Kind, payload: data}
	h.mu.Unlock()

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.clients {
		select {
		case ch <- msg:
		default:
			// Drop if client is slow
		}
	}
}

// Clients returns the number of open streams.
func (h *Handler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close stops listening to the store and ends all streams.
func (h *Handler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	h.unsubscribe()
	close(h.done)
}

// ServeHTTP handles SSE connections. ?types=response,role limits the kinds sent.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	typeFilter := make(map[application.ChangeKind]bool)
	if types := r.URL.Query().Get("types"); types != "" {
		for _, t := range strings.Split(types, ",") {
			typeFilter[application.ChangeKind(strings.TrimSpace(t))] = true
		}
	}

	ch := make(chan message, 64)
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		http.Error(w, "Server shutting down", http.StatusServiceUnavailable)
		return
	}
	h.clients[ch] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, ch)
		h.mu.Unlock()
	}()

	// Streams outlive the server write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.done:
			return
		case msg := <-ch:
			if len(typeFilter) > 0 && !typeFilter[msg.kind] {
				continue
			}
			_, _ = fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", msg.id, msg.kind, msg.payload)
			flusher.Flush()
		}
	}
}
