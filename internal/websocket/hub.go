package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"finops-alerting/internal/logging"

	"github.com/gorilla/websocket"
)

// Message is the envelope broadcast to every connected feed subscriber.
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

// Hub maintains the set of connected feed clients and fans broadcasts out to
// them. Slow clients are dropped rather than allowed to stall the feed.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu     sync.RWMutex
	logger *logging.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub creates a new delivery feed hub
func NewHub(logger *logging.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.WithComponent("ws-hub"),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Run drives the hub loop until Shutdown is called
func (h *Hub) Run() {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Errorf("hub panic recovered: %v", r)
		}
	}()

	for {
		select {
		case <-h.ctx.Done():
			h.closeAllClients()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.WithField("clients", count).Debug("feed client connected")

			welcome := Message{
				Type:      "connected",
				Data:      map[string]interface{}{"status": "subscribed"},
				Timestamp: time.Now().Format(time.RFC3339),
			}
			if data, err := json.Marshal(welcome); err == nil {
				select {
				case client.send <- data:
				default:
					h.unregisterClient(client)
				}
			}

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.mu.RLock()
			stalled := make([]*Client, 0)
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					stalled = append(stalled, client)
				}
			}
			h.mu.RUnlock()

			for _, client := range stalled {
				h.unregisterClient(client)
			}
		}
	}
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		h.logger.WithField("clients", len(h.clients)).Debug("feed client disconnected")
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		close(client.send)
		client.conn.Close()
	}
	h.clients = make(map[*Client]bool)
}

// Broadcast queues a typed message for every connected client. The message is
// dropped when the feed buffer is full; the delivery audit trail is the
// durable record, the feed is best-effort.
func (h *Hub) Broadcast(msgType string, data interface{}) error {
	message := Message{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now().Format(time.RFC3339),
	}

	payload, err := json.Marshal(message)
	if err != nil {
		return err
	}

	select {
	case h.broadcast <- payload:
		return nil
	case <-h.ctx.Done():
		return context.Canceled
	default:
		h.logger.Warn("feed buffer full, message dropped")
		return nil
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown stops the hub loop and closes every client connection
func (h *Hub) Shutdown() {
	h.cancel()
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict to the dashboard origin once it is deployed
		return true
	},
}

// ServeWS upgrades an HTTP request to a feed subscription
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}
