package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// keepAliveInterval keeps proxies from closing idle event streams.
var keepAliveInterval = 15 * time.Second

// StreamEvents pushes store changes to the browser as Server-Sent Events.
// The client re-reads whatever the change names; events carry no records.
// GET /api/events
//
//	event: ready
//	data: {}
//
//	event: change
//	data: {"kind":"project","op":"updated","id":"..."}
func (h *Handler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	if h.Feed == nil {
		writeError(w, http.StatusNotImplemented, "Store does not publish changes", nil)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming unsupported", nil)
		return
	}

	ctx := r.Context()
	changes, err := h.Feed.Subscribe(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to subscribe", err)
		return
	}

	if h.metrics != nil {
		h.metrics.streams.Inc()
		defer h.metrics.streams.Dec()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	fmt.Fprint(w, "event: ready\ndata: {}\n\n")
	flusher.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()

		case c, ok := <-changes:
			if !ok {
				return
			}
			data, _ := json.Marshal(c)
			fmt.Fprintf(w, "event: change\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}
