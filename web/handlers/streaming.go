package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/alienxp03/warrant/internal/notify"
)

// StreamEvent represents a server-sent event.
type StreamEvent struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// handleSlotStream pushes refresh notices for one game screen, plus the
// session's announcements.
func (h *Handler) handleSlotStream(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	view, err := h.engine.SlotView(r.Context(), key)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.stream(w, r, view, notify.SlotChannel(key), notify.SessionChannel(view.Participant.SessionID))
}

// handleParticipantStream pushes navigation refreshes for a participant.
func (h *Handler) handleParticipantStream(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	view, err := h.engine.Navigation(r.Context(), key)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.stream(w, r, view, notify.ParticipantChannel(key), notify.SessionChannel(view.Participant.SessionID))
}

// stream sends the initial view as a ready event, then relays bus events
// until the client goes away.
func (h *Handler) stream(w http.ResponseWriter, r *http.Request, initial any, channels ...string) {
	slog.Debug("New stream connection", "channels", channels, "remote_addr", r.RemoteAddr)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	flusher, ok := w.(http.Flusher)
	if !ok {
		slog.Error("Streaming unsupported: ResponseWriter does not implement http.Flusher")
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	sub := h.bus.Subscribe(channels...)
	defer sub.Close()

	h.sendSSEEvent(w, flusher, "ready", initial)

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			slog.Debug("Stream closed", "channels", channels)
			return
		case evt, ok := <-sub.C():
			if !ok {
				return
			}
			h.sendSSEEvent(w, flusher, string(evt.Kind), evt)
		case <-ticker.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		}
	}
}

// sendSSEEvent sends a server-sent event.
func (h *Handler) sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, eventType string, data interface{}) {
	event := StreamEvent{
		Type: eventType,
		Data: data,
	}

	jsonData, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to marshal SSE event", "error", err)
		return
	}

	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, jsonData)
	flusher.Flush()
}
