package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/cognitokit/logger"
)

// DefaultKeepAlive is the interval between keep-alive comments.
const DefaultKeepAlive = 30 * time.Second

// Handler serves one event stream per request. The "topics" query
// parameter takes a comma-separated list of topic patterns.
type Handler struct {
	hub       *Hub
	log       *logger.Logger
	KeepAlive time.Duration
}

// NewHandler creates a Handler for hub.
func NewHandler(hub *Hub, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Handler{hub: hub, log: log.WithComponent("sse"), KeepAlive: DefaultKeepAlive}
}

// ServeHTTP streams events until the client disconnects or the hub stops.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	// Streams outlive the server's write timeout.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		h.log.Debug("could not clear the write deadline", logger.ErrorFields("stream", err))
	}

	client := NewClient(uuid.NewString(), parseTopics(r.URL.Query().Get("topics"))...)
	if !h.hub.Register(client) {
		http.Error(w, "event stream closed", http.StatusServiceUnavailable)
		return
	}
	defer h.hub.Unregister(client)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	connected, _ := json.Marshal(ConnectedEvent{ClientID: client.ID(), Topics: client.Topics()})
	_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", EventConnected, connected)
	flusher.Flush()

	keepAlive := time.NewTicker(h.keepAlive())
	defer keepAlive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-client.Events():
			if !ok {
				return
			}
			if err := writeEvent(w, ev); err != nil {
				h.log.Warn("dropping event that can't be encoded", logger.MergeWithError(
					logger.Fields("topic", ev.Topic, "client_id", client.ID()), err))
				continue
			}
			flusher.Flush()

		case <-keepAlive.C:
			_, _ = fmt.Fprintf(w, ": keepalive %d\n\n", time.Now().Unix())
			flusher.Flush()
		}
	}
}

func (h *Handler) keepAlive() time.Duration {
	if h.KeepAlive <= 0 {
		return DefaultKeepAlive
	}
	return h.KeepAlive
}

func writeEvent(w http.ResponseWriter, ev *Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", ev.ID, ev.Topic, data)
	return err
}

func parseTopics(raw string) []string {
	var topics []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, t)
		}
	}
	return topics
}
