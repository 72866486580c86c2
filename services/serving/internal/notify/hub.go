package notify

import (
	"sync"
	"time"

	"github.com/appetiteclub/serving/pkg/event"
	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

const defaultClientBuffer = 16

// Client is one connected notification listener.
type Client struct {
	ID     string
	Events chan event.Notification
}

// Hub fans notifications out to every connected client. A client whose
// buffer is full misses the event.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	buffer  int
	logger  aqm.Logger
	now     func() time.Time
}

func NewHub(logger aqm.Logger) *Hub {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Hub{
		clients: make(map[string]*Client),
		buffer:  defaultClientBuffer,
		logger:  logger,
		now:     time.Now,
	}
}

// Register creates and adds a new client.
func (h *Hub) Register() *Client {
	c := &Client{
		ID:     uuid.New().String(),
		Events: make(chan event.Notification, h.buffer),
	}

	h.mu.Lock()
	h.clients[c.ID] = c
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug("notification client registered", "client_id", c.ID, "total", total)
	return c
}

func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	c, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
		close(c.Events)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if ok {
		h.logger.Debug("notification client unregistered", "client_id", id, "total", total)
	}
}

func (h *Hub) Broadcast(n event.Notification) {
	if n.OccurredAt.IsZero() {
		n.OccurredAt = h.now()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		select {
		case c.Events <- n:
		default:
			h.logger.Debug("notification client buffer full, skipping event", "client_id", c.ID, "kind", n.Kind)
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// PlaySound asks every client to play the alert sound.
func (h *Hub) PlaySound() error {
	h.Broadcast(event.Notification{Kind: event.NotificationSound})
	return nil
}

// ShowNotification asks every client to show a system notification.
func (h *Hub) ShowNotification(title, body string) error {
	h.Broadcast(event.Notification{Kind: event.NotificationShow, Title: title, Body: body})
	return nil
}

// Changed tells clients which row moved in the change feed.
func (h *Hub) Changed(evt event.ChangeEvent) {
	h.Broadcast(event.Notification{
		Kind:      event.NotificationChange,
		Table:     evt.Table,
		EventType: evt.EventType,
		RecordID:  evt.RecordID,
	})
}
