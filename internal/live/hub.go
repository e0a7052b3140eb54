// Package live pushes finished prediction runs to websocket subscribers so
// dashboards update without polling.
package live

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/dinger/internal/metrics"
	"github.com/yourusername/dinger/internal/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The hub only serves read-only picks; origin restrictions add
		// nothing here.
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Message is the envelope sent to clients.
type Message struct {
	Type      string      `json:"type"` // "connected", "predictions", "pong"
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// predictionsPayload is the body of a "predictions" message.
type predictionsPayload struct {
	Date    string                `json:"date"`
	Results []*models.ScoreResult `json:"results"`
}

// Client is one connected websocket subscriber.
type Client struct {
	conn     *websocket.Conn
	send     chan []byte
	hub      *Hub
	lastSeen time.Time
}

// Hub maintains the active subscriber set and fans out broadcasts.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	logger     *logrus.Logger
	mu         sync.RWMutex

	lastDigest []byte // replayed to newly connected clients
}

// NewHub creates a new live hub.
func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
}

// Run processes registration and broadcast events until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case data := <-h.broadcast:
			h.fanOut(data)
		case <-ticker.C:
			h.dropStale()
		}
	}
}

// BroadcastResults implements the pipeline's Broadcaster: it pushes a run's
// results to every subscriber and keeps them for replay to late joiners.
func (h *Hub) BroadcastResults(date time.Time, results []*models.ScoreResult) {
	msg := Message{
		Type: "predictions",
		Data: predictionsPayload{
			Date:    date.Format("2006-01-02"),
			Results: results,
		},
		Timestamp: time.Now().UTC(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal live broadcast")
		return
	}

	h.mu.Lock()
	h.lastDigest = data
	h.mu.Unlock()

	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("Live broadcast queue full, dropping update")
	}
}

// HandleWebSocket upgrades an HTTP request into a subscriber connection.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Error("Failed to upgrade websocket connection")
		return
	}

	client := &Client{
		conn:     conn,
		send:     make(chan []byte, 64),
		hub:      h,
		lastSeen: time.Now(),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

// Serve runs an HTTP server exposing the hub at /ws until ctx is cancelled.
func (h *Hub) Serve(ctx context.Context, port int) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.HandleWebSocket)

	server := &http.Server{
		Addr:        fmt.Sprintf(":%d", port),
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	h.logger.WithField("port", port).Info("Live update server starting")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	replay := h.lastDigest
	h.mu.Unlock()

	metrics.LiveClients.Set(float64(count))
	h.logger.WithField("clients", count).Info("Live client connected")

	welcome, _ := json.Marshal(Message{Type: "connected", Timestamp: time.Now().UTC()})
	h.sendTo(client, welcome)
	if replay != nil {
		h.sendTo(client, replay)
	}
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
		close(client.send)
	}
	count := len(h.clients)
	h.mu.Unlock()

	if ok {
		metrics.LiveClients.Set(float64(count))
		h.logger.WithField("clients", count).Info("Live client disconnected")
	}
}

func (h *Hub) fanOut(data []byte) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		h.sendTo(c, data)
	}
}

func (h *Hub) sendTo(client *Client, data []byte) {
	select {
	case client.send <- data:
		client.lastSeen = time.Now()
	default:
		// Slow consumer, drop the connection.
		go func() { h.unregister <- client }()
	}
}

func (h *Hub) dropStale() {
	h.mu.RLock()
	var stale []*Client
	now := time.Now()
	for c := range h.clients {
		if now.Sub(c.lastSeen) > 2*time.Minute {
			stale = append(stale, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range stale {
		h.unregisterClient(c)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
	metrics.LiveClients.Set(0)
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		c.lastSeen = time.Now()
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.WithError(err).Debug("Websocket read error")
			}
			return
		}
		c.handleIncoming(message)
		c.lastSeen = time.Now()
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleIncoming(message []byte) {
	var msg map[string]interface{}
	if err := json.Unmarshal(message, &msg); err != nil {
		return
	}
	if msg["type"] == "ping" {
		pong, _ := json.Marshal(Message{Type: "pong", Timestamp: time.Now().UTC()})
		c.hub.sendTo(c, pong)
	}
}
