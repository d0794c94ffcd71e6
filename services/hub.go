package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"quizpanel/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	MessageScoresSync    = "scores_sync"
	MessageScoresUpdated = "scores_updated"
	MessageFriendJoined  = "friend_joined"
	MessageFriendRemoved = "friend_removed"
	MessagePong          = "pong"
	MessageError         = "error"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// ScoreSource provides the live scoreboard pushed to watchers.
type ScoreSource interface {
	GetFriendsScores(ctx context.Context, uniqueID string) (*Scoreboard, error)
}

// Hub fans out session events to websocket watchers grouped by session unique id.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
	scores     ScoreSource
}

type Client struct {
	hub      *Hub
	id       string
	socket   *websocket.Conn
	send     chan []byte
	uniqueID string
}

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

func NewHub(scores ScoreSource) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		scores:     scores,
	}
}

// Run serves registrations until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			logger.Debug("Watcher registered", "client_id", client.id, "unique_id", client.uniqueID, "total", total)

			go h.sendScoresSync(ctx, client)

		case client := <-h.unregister:
			h.mutex.Lock()
			h.drop(client)
			h.mutex.Unlock()
			logger.Debug("Watcher unregistered", "client_id", client.id, "unique_id", client.uniqueID)

		case <-ctx.Done():
			h.mutex.Lock()
			for client := range h.clients {
				h.drop(client)
			}
			h.mutex.Unlock()
			return
		}
	}
}

// BroadcastToSession sends one message to every watcher of a session.
func (h *Hub) BroadcastToSession(uniqueID, messageType string, payload interface{}) int {
	data, err := json.Marshal(Message{Type: messageType, Payload: payload})
	if err != nil {
		logger.Error("Failed to encode hub message", "type", messageType, "error", err)
		return 0
	}

	uniqueID = NormalizeUniqueID(uniqueID)
	sent := 0

	// Slow clients are dropped, which mutates the map
	h.mutex.Lock()
	for client := range h.clients {
		if client.uniqueID != uniqueID {
			continue
		}
		if h.deliver(client, data) {
			sent++
		}
	}
	h.mutex.Unlock()

	logger.Debug("Broadcast session event", "type", messageType, "unique_id", uniqueID, "clients", sent)
	return sent
}

// PublishScores pushes the current scoreboard of a session under the given message type.
func (h *Hub) PublishScores(ctx context.Context, uniqueID, messageType string) {
	if h.scores == nil || h.ConnectedCount(uniqueID) == 0 {
		return
	}
	board, err := h.scores.GetFriendsScores(ctx, uniqueID)
	if err != nil {
		logger.Warn("Failed to load scores for broadcast", "unique_id", uniqueID, "error", err)
		return
	}
	h.BroadcastToSession(uniqueID, messageType, board)
}

func (h *Hub) NotifyFriendJoined(ctx context.Context, uniqueID, friendName string) {
	h.BroadcastToSession(uniqueID, MessageFriendJoined, map[string]string{"friend_name": friendName})
	h.PublishScores(ctx, uniqueID, MessageScoresUpdated)
}

func (h *Hub) NotifyFriendRemoved(ctx context.Context, uniqueID, friendName string) {
	h.BroadcastToSession(uniqueID, MessageFriendRemoved, map[string]string{"friend_name": friendName})
	h.PublishScores(ctx, uniqueID, MessageScoresUpdated)
}

// ConnectedCount reports how many watchers a session has.
func (h *Hub) ConnectedCount(uniqueID string) int {
	uniqueID = NormalizeUniqueID(uniqueID)

	h.mutex.RLock()
	defer h.mutex.RUnlock()

	count := 0
	for client := range h.clients {
		if client.uniqueID == uniqueID {
			count++
		}
	}
	return count
}

// RegisterClient attaches an upgraded connection to a session and starts its pumps.
func (h *Hub) RegisterClient(conn *websocket.Conn, uniqueID string) *Client {
	client := &Client{
		hub:      h,
		id:       uuid.NewString(),
		socket:   conn,
		send:     make(chan []byte, sendBuffer),
		uniqueID: NormalizeUniqueID(uniqueID),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return nil
	}

	go client.writePump()
	go client.readPump()

	return client
}

func (h *Hub) UnregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) sendScoresSync(ctx context.Context, client *Client) {
	if h.scores == nil {
		return
	}
	board, err := h.scores.GetFriendsScores(ctx, client.uniqueID)
	if err != nil {
		h.sendTo(client, MessageError, map[string]string{"message": "Session not found"})
		return
	}
	h.sendTo(client, MessageScoresSync, board)
}

func (h *Hub) sendTo(client *Client, messageType string, payload interface{}) {
	data, err := json.Marshal(Message{Type: messageType, Payload: payload})
	if err != nil {
		logger.Error("Failed to encode hub message", "type", messageType, "error", err)
		return
	}

	h.mutex.Lock()
	if h.clients[client] {
		h.deliver(client, data)
	}
	h.mutex.Unlock()
}

// deliver must be called with the write lock held.
func (h *Hub) deliver(client *Client, data []byte) bool {
	select {
	case client.send <- data:
		return true
	default:
		logger.Warn("Watcher send buffer full, dropping", "client_id", client.id, "unique_id", client.uniqueID)
		h.drop(client)
		return false
	}
}

// drop must be called with the write lock held.
func (h *Hub) drop(client *Client) {
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.UnregisterClient(c)
		c.socket.Close()
	}()

	c.socket.SetReadLimit(maxMessageSize)
	c.socket.SetReadDeadline(time.Now().Add(pongWait))
	c.socket.SetPongHandler(func(string) error {
		return c.socket.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("WebSocket read error", "client_id", c.id, "error", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			logger.Debug("Ignoring malformed watcher message", "client_id", c.id, "error", err)
			continue
		}
		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.socket.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.socket.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.socket.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(msg Message) {
	switch msg.Type {
	case "ping":
		c.hub.sendTo(c, MessagePong, "pong")

	case "request_scores":
		c.hub.sendScoresSync(context.Background(), c)

	default:
		logger.Debug("Unknown watcher message", "type", msg.Type, "client_id", c.id)
	}
}
