package observe

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ServeHTTP streams h's events to the client as Server-Sent Events.
// Grounded on the teacher's webui.handleSSE: retry directive, one
// "event: <kind>\ndata: <json>\n\n" record per Event, subscribe/unsubscribe
// tied to the request's lifetime.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "retry: 3000\n\n")
	flusher.Flush()

	ch := h.Subscribe()
	defer h.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Kind, data)
			flusher.Flush()
		case <-ctx.Done():
			return
		}
	}
}
