package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/lefthq/left-backend/internal/logger"
	"github.com/lefthq/left-backend/internal/metrics"
	"go.uber.org/zap"
)

// Hub maintains the set of connected clients and fans insert events
// out to them. It implements Bus.
type Hub struct {
	// Clients grouped by user ID for targeted delivery
	clients    map[string]map[*Client]struct{}
	allClients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	broadcast  chan envelope
	unicast    chan envelope

	mu sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
}

type envelope struct {
	userID string
	event  InsertEvent
}

// NewHub creates a hub. Call Run in its own goroutine.
func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		allClients: make(map[*Client]struct{}),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan envelope, 256),
		unicast:    make(chan envelope, 256),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Run is the hub's event loop.
func (h *Hub) Run() {
	logger.Log.Info("realtime hub starting")

	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case env := <-h.broadcast:
			h.deliverAll(env.event)

		case env := <-h.unicast:
			h.deliverToUser(env.userID, env.event)
		}
	}
}

// Shutdown stops the event loop and disconnects all clients.
func (h *Hub) Shutdown() {
	h.cancel()
}

// Publish delivers an event to one user's connections. Implements Bus.
func (h *Hub) Publish(userID string, event InsertEvent) {
	select {
	case h.unicast <- envelope{userID: userID, event: event}:
		recordEvent(event)
	case <-h.ctx.Done():
	default:
		logger.Log.Warn("realtime unicast queue full, dropping event",
			zap.String("table", event.Table))
	}
}

// PublishAll delivers an event to every connection. Implements Bus.
func (h *Hub) PublishAll(event InsertEvent) {
	select {
	case h.broadcast <- envelope{event: event}:
		recordEvent(event)
	case <-h.ctx.Done():
	default:
		logger.Log.Warn("realtime broadcast queue full, dropping event",
			zap.String("table", event.Table))
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.UserID] == nil {
		h.clients[client.UserID] = make(map[*Client]struct{})
	}
	h.clients[client.UserID][client] = struct{}{}
	h.allClients[client] = struct{}{}

	metrics.Get().WebsocketClientsGauge.Inc()
	logger.Log.Debug("realtime client connected", logger.WithUserID(client.UserID))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.allClients[client]; !ok {
		return
	}
	delete(h.allClients, client)

	if clients, ok := h.clients[client.UserID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.clients, client.UserID)
		}
	}

	close(client.send)
	metrics.Get().WebsocketClientsGauge.Dec()
	logger.Log.Debug("realtime client disconnected", logger.WithUserID(client.UserID))
}

func (h *Hub) deliverAll(event InsertEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("failed to marshal realtime event", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.allClients {
		h.send(client, data)
	}
}

func (h *Hub) deliverToUser(userID string, event InsertEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("failed to marshal realtime event", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[userID] {
		h.send(client, data)
	}
}

// send drops slow clients rather than blocking the hub loop.
func (h *Hub) send(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		go func(c *Client) {
			h.unregister <- c
		}(client)
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.allClients {
		close(client.send)
		delete(h.allClients, client)
	}
	h.clients = make(map[string]map[*Client]struct{})

	logger.Log.Info("realtime hub stopped")
}
