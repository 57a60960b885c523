package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/goccy/go-json"
)

// ReloadEvent is the payload of a "reload" server-sent event.
type ReloadEvent struct {
	Count int    `json:"count"`
	Hash  string `json:"hash,omitempty"`
}

// Hub fans dataset reload events out to connected SSE clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[chan []byte]struct{}

	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients: make(map[chan []byte]struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Stop disconnects every client. Later subscriptions return immediately.
func (h *Hub) Stop() {
	h.cancel()

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		close(ch)
	}
	h.clients = make(map[chan []byte]struct{})
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends ev to every client. Clients still holding an undelivered
// event are skipped; they reload to the latest dataset anyway.
func (h *Hub) Broadcast(ev ReloadEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.clients {
		select {
		case ch <- data:
		default:
		}
	}
}

func (h *Hub) subscribe() (chan []byte, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ctx.Err() != nil {
		return nil, false
	}
	ch := make(chan []byte, 1)
	h.clients[ch] = struct{}{}
	return ch, true
}

func (h *Hub) unsubscribe(ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, ch)
}

// SSEHandler returns an HTTP handler for the event stream.
func (h *Hub) SSEHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "SSE not supported", http.StatusInternalServerError)
			return
		}

		ch, ok := h.subscribe()
		if !ok {
			http.Error(w, "server shutting down", http.StatusServiceUnavailable)
			return
		}
		defer h.unsubscribe(ch)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\"}\n\n")
		flusher.Flush()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-h.ctx.Done():
				return
			case data, ok := <-ch:
				if !ok {
					return
				}
				fmt.Fprintf(w, "event: reload\ndata: %s\n\n", data)
				flusher.Flush()
			}
		}
	}
}
