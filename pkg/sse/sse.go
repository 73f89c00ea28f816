package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Hub fans report events out to connected browsers. Clients join the group
// for the city they are watching; report submissions broadcast a
// reportsUpdated event so open browsing views can refetch.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*client
	groups   map[string]map[string]bool // city -> clientID set
	interval time.Duration
	retryMs  int
}

type client struct {
	id     string
	groups map[string]bool
	ch     chan string
	done   chan struct{}
}

func NewHub(pingInterval time.Duration) *Hub {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &Hub{
		clients:  make(map[string]*client),
		groups:   make(map[string]map[string]bool),
		interval: pingInterval,
		retryMs:  5000,
	}
}

func (h *Hub) add(id string) *client {
	h.mu.Lock()
	defer h.mu.Unlock()
	c := &client{id: id, groups: make(map[string]bool), ch: make(chan string, 64), done: make(chan struct{})}
	h.clients[id] = c
	return c
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	if c, ok := h.clients[id]; ok {
		close(c.done)
		for g := range c.groups {
			delete(h.groups[g], id)
		}
		delete(h.clients, id)
	}
	h.mu.Unlock()
}

// Join subscribes a connected client to a city group.
func (h *Hub) Join(id, city string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[id]
	if !ok {
		return
	}
	c.groups[city] = true
	if h.groups[city] == nil {
		h.groups[city] = make(map[string]bool)
	}
	h.groups[city][id] = true
}

// BroadcastJSON sends an event to every connected client. Slow clients
// drop messages rather than block the sender.
func (h *Hub) BroadcastJSON(v interface{}) {
	b, _ := json.Marshal(v)
	msg := formatData(string(b))
	h.mu.RLock()
	for _, c := range h.clients {
		select {
		case c.ch <- msg:
		default:
		}
	}
	h.mu.RUnlock()
}

// SendToGroupJSON sends an event to the clients watching one city.
func (h *Hub) SendToGroupJSON(city string, v interface{}) {
	b, _ := json.Marshal(v)
	msg := formatData(string(b))
	h.mu.RLock()
	for id := range h.groups[city] {
		if c := h.clients[id]; c != nil {
			select {
			case c.ch <- msg:
			default:
			}
		}
	}
	h.mu.RUnlock()
}

// ClientCount reports connected clients. Test helper.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func formatData(s string) string { return fmt.Sprintf("data: %s\n\n", s) }

// Serve streams events to one client until it disconnects. The optional
// city query parameter joins the matching group immediately.
func (h *Hub) Serve(c *gin.Context, clientID string) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	fmt.Fprintf(c.Writer, "retry: %d\n\n", h.retryMs)

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.Status(http.StatusInternalServerError)
		return
	}

	cl := h.add(clientID)
	defer h.remove(clientID)
	if city := c.Query("city"); city != "" {
		h.Join(clientID, city)
	}
	flusher.Flush()

	ping := time.NewTicker(h.interval)
	defer ping.Stop()

	for {
		select {
		case <-cl.done:
			return
		case <-c.Request.Context().Done():
			return
		case <-ping.C:
			fmt.Fprintf(c.Writer, "event: ping\ndata: {}\n\n")
			flusher.Flush()
		case msg := <-cl.ch:
			c.Writer.WriteString(msg)
			flusher.Flush()
		}
	}
}
