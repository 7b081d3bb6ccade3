// Package sse provides Server-Sent Events support for real-time lead updates.
package sse

import (
	"encoding/json"
	"net/http"
	"sync"

	"lead_portal_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EventType represents different types of SSE events
type EventType string

const (
	EventLeadCreated EventType = "lead_created"
	EventLeadUpdated EventType = "lead_updated"
	EventLeadDeleted EventType = "lead_deleted"
	EventLeadScored  EventType = "lead_scored"
)

const clientBuffer = 32

// Event represents an SSE event payload
type Event struct {
	Type    EventType   `json:"type"`
	LeadID  uuid.UUID   `json:"lead_id"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// client represents a connected SSE client
type client struct {
	id     uuid.UUID
	events chan Event
}

// Service manages SSE connections and event broadcasting
type Service struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*client
	closed  bool
	log     *logger.Logger
}

// New creates a new SSE service
func New(log *logger.Logger) *Service {
	return &Service{
		clients: make(map[uuid.UUID]*client),
		log:     log,
	}
}

func (s *Service) addClient(c *client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	s.clients[c.id] = c
	return true
}

func (s *Service) removeClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[c.id]; !ok {
		return
	}
	delete(s.clients, c.id)
	close(c.events)
}

// Clients returns the number of connected clients.
func (s *Service) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Subscribe registers ch as a client until the returned function is called,
// which also closes ch. It returns false once the service is closed.
func (s *Service) Subscribe(ch chan Event) (func(), bool) {
	cl := &client{id: uuid.New(), events: ch}
	if !s.addClient(cl) {
		return func() {}, false
	}
	return func() { s.removeClient(cl) }, true
}

// Broadcast sends an event to every connected client. Slow clients drop events
// rather than block the publisher.
func (s *Service) Broadcast(event Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.clients {
		select {
		case c.events <- event:
		default:
			s.log.Warn("sse buffer full, event dropped", "client_id", c.id, "type", event.Type)
		}
	}
}

// Handler returns a Gin handler for SSE connections
func (s *Service) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.Header().Set("X-Accel-Buffering", "no")

		cl := &client{id: uuid.New(), events: make(chan Event, clientBuffer)}
		if !s.addClient(cl) {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "event stream is shutting down"})
			return
		}
		defer s.removeClient(cl)

		c.SSEvent("connected", gin.H{"client_id": cl.id})
		c.Writer.Flush()
		s.log.Debug("sse client connected", "client_id", cl.id)

		clientGone := c.Request.Context().Done()
		for {
			select {
			case <-clientGone:
				s.log.Debug("sse client disconnected", "client_id", cl.id)
				return
			case event, ok := <-cl.events:
				if !ok {
					return
				}
				data, _ := json.Marshal(event)
				c.SSEvent(string(event.Type), string(data))
				c.Writer.Flush()
			}
		}
	}
}

// Close disconnects every client and refuses new ones.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for id, c := range s.clients {
		close(c.events)
		delete(s.clients, id)
	}
}
