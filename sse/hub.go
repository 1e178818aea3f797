package sse

import (
	"path"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/cognitokit/logger"
)

const (
	clientBuffer = 64
	hubBuffer    = 256
)

// Client is one connected subscriber.
type Client struct {
	id     string
	topics []string
	events chan *Event
}

// NewClient creates a client subscribed to topics. No topics means all.
func NewClient(id string, topics ...string) *Client {
	if len(topics) == 0 {
		topics = []string{"*"}
	}
	return &Client{
		id:     id,
		topics: topics,
		events: make(chan *Event, clientBuffer),
	}
}

// ID returns the client id.
func (c *Client) ID() string { return c.id }

// Topics returns the subscribed topic patterns.
func (c *Client) Topics() []string { return c.topics }

// Events returns the delivery channel. It is closed when the client is
// unregistered or the hub stops.
func (c *Client) Events() <-chan *Event { return c.events }

// Wants reports whether topic matches one of the client's patterns.
func (c *Client) Wants(topic string) bool {
	for _, p := range c.topics {
		if ok, err := path.Match(p, topic); err == nil && ok {
			return true
		}
	}
	return false
}

func (c *Client) send(ev *Event) bool {
	select {
	case c.events <- ev:
		return true
	default:
		return false
	}
}

// Hub routes published events to matching clients. All client bookkeeping
// happens on the Run goroutine.
type Hub struct {
	log *logger.Logger

	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Event
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex
}

// NewHub creates a hub. Call Run to start delivering events.
func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Hub{
		log:        log.WithComponent("sse"),
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Event, hubBuffer),
		done:       make(chan struct{}),
	}
}

// Run delivers events until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.closeAll()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.id] = c
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("client subscribed", logger.Fields("client_id", c.id, "topics", c.topics, "clients", n))

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c.id]; ok {
				delete(h.clients, c.id)
				close(c.events)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("client unsubscribed", logger.Fields("client_id", c.id, "clients", n))

		case ev := <-h.broadcast:
			h.deliver(ev)
		}
	}
}

// Stop closes every client and makes Run return. Safe to call repeatedly.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Register adds c. It returns false when the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes c and closes its channel.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Publish queues payload for every client subscribed to topic. It drops the
// event when the hub has stopped or its queue is full.
func (h *Hub) Publish(topic string, payload any) {
	ev := &Event{ID: uuid.NewString(), Topic: topic, Time: time.Now().UTC(), Data: payload}
	select {
	case <-h.done:
		return
	default:
	}
	select {
	case h.broadcast <- ev:
	default:
		h.log.Warn("event queue full, dropping event", logger.Fields("topic", topic))
	}
}

// ClientCount returns the number of subscribed clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) deliver(ev *Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	sent := 0
	for _, c := range h.clients {
		if !c.Wants(ev.Topic) {
			continue
		}
		if !c.send(ev) {
			h.log.Warn("client is too slow, dropping event", logger.Fields("client_id", c.id, "topic", ev.Topic))
			continue
		}
		sent++
	}
	h.log.Debug("event published", logger.Fields("topic", ev.Topic, "delivered", sent))
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		close(c.events)
		delete(h.clients, id)
	}
}
