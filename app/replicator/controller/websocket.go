package controller

import (
	"context"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/craftwatch/craftwatch/pkg/broadcast"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: In production, restrict to specific origins
		return true
	},
}

// ClientMessage represents messages sent by WebSocket clients.
type ClientMessage struct {
	Action string   `json:"action"` // "subscribe", "unsubscribe" or "list"
	Topic  string   `json:"topic,omitempty"`
	Topics []string `json:"topics,omitempty"`
}

// ServerMessage represents messages sent to WebSocket clients.
type ServerMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// HandleWebSocket upgrades the connection and bridges the broadcast bus to
// the client.
//
// Protocol:
// Client sends: {"action": "subscribe", "topics": ["experience", "level:fishing"]}
// Client sends: {"action": "subscribe", "topics": ["*"]}   // everything
// Client sends: {"action": "unsubscribe", "topic": "experience"}
// Client sends: {"action": "list"}
//
// Server sends:
// - {"type": "<variant>", "payload": {...}} for every matching event
// - {"type": "subscribed" | "unsubscribed" | "topics" | "error", "payload": {...}}
//
// IMPORTANT: All goroutines have panic recovery to prevent crashes.
func (c *Controller) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.App.Logger.Error("Failed to upgrade WebSocket connection", zap.Error(err))
		return
	}
	defer func(conn *websocket.Conn) {
		if err := conn.Close(); err != nil {
			c.App.Logger.Error("Failed to close WebSocket connection", zap.Error(err))
		}
	}(conn)

	c.App.Logger.Info("WebSocket client connected", zap.String("remote_addr", r.RemoteAddr))

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sub := c.App.Bus.Register()
	defer sub.Close()

	// Channel for outgoing messages
	send := make(chan ServerMessage, 256)

	// Producers (forwarder, pinger) must be stopped before send is closed;
	// the writer exits on the close.
	var producers, writers sync.WaitGroup

	// Forward bus events matching the client's topics.
	producers.Add(1)
	go func() {
		defer producers.Done()
		defer func() {
			if rec := recover(); rec != nil {
				c.App.Logger.Error("Panic in bus forwarder goroutine",
					zap.Any("panic", rec),
					zap.String("stack", string(debug.Stack())),
					zap.String("remote_addr", r.RemoteAddr))
				cancel()
			}
		}()
		c.forwardEvents(ctx, sub, send)
	}()

	// Keep-alive pings.
	producers.Add(1)
	go func() {
		defer producers.Done()
		defer func() {
			if rec := recover(); rec != nil {
				c.App.Logger.Error("Panic in ping ticker goroutine",
					zap.Any("panic", rec),
					zap.String("stack", string(debug.Stack())),
					zap.String("remote_addr", r.RemoteAddr))
				cancel()
			}
		}()
		c.sendPings(ctx, conn)
	}()

	// Message writer.
	writers.Add(1)
	go func() {
		defer writers.Done()
		defer func() {
			if rec := recover(); rec != nil {
				c.App.Logger.Error("Panic in message writer goroutine",
					zap.Any("panic", rec),
					zap.String("stack", string(debug.Stack())),
					zap.String("remote_addr", r.RemoteAddr))
				cancel()
			}
		}()
		c.writeMessages(conn, send)
	}()

	// Blocks until the connection closes.
	c.readClientMessages(ctx, conn, sub, send)

	cancel()
	producers.Wait()
	close(send)
	writers.Wait()

	c.App.Logger.Info("WebSocket client disconnected", zap.String("remote_addr", r.RemoteAddr))
}

// forwardEvents drains the client's bus subscription into the send channel.
func (c *Controller) forwardEvents(ctx context.Context, sub *broadcast.Subscriber, send chan<- ServerMessage) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.C():
			if !ok {
				return
			}
			select {
			case send <- ServerMessage{Type: msg.Variant, Payload: msg.Payload}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// sendPings sends periodic WebSocket ping frames to keep the connection alive.
func (c *Controller) sendPings(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
				c.App.Logger.Error("Failed to send ping", zap.Error(err))
				return
			}
		}
	}
}

// writeMessages writes messages from the send channel to the WebSocket connection.
func (c *Controller) writeMessages(conn *websocket.Conn, send <-chan ServerMessage) {
	for msg := range send {
		if err := conn.WriteJSON(msg); err != nil {
			c.App.Logger.Error("Failed to write WebSocket message", zap.Error(err))
			return
		}
	}
}

// readClientMessages reads subscription requests and detects closure. The
// caller cancels the connection context when this returns, whichever exit
// path was taken.
func (c *Controller) readClientMessages(ctx context.Context, conn *websocket.Conn, sub *broadcast.Subscriber, send chan<- ServerMessage) {
	if err := conn.SetReadDeadline(time.Now().Add(60 * time.Second)); err != nil {
		c.App.Logger.Error("Failed to set read deadline", zap.Error(err))
		return
	}

	conn.SetPongHandler(func(string) error {
		if err := conn.SetReadDeadline(time.Now().Add(60 * time.Second)); err != nil {
			c.App.Logger.Error("Failed to reset read deadline", zap.Error(err))
			return err
		}
		return nil
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			var msg ClientMessage
			if err := conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					c.App.Logger.Error("WebSocket read error", zap.Error(err))
				}
				return
			}

			if err := conn.SetReadDeadline(time.Now().Add(60 * time.Second)); err != nil {
				c.App.Logger.Error("Failed to reset read deadline", zap.Error(err))
				return
			}

			switch msg.Action {
			case "subscribe":
				topics := msg.Topics
				if msg.Topic != "" {
					topics = append(topics, msg.Topic)
				}
				if len(topics) == 0 {
					send <- ServerMessage{Type: "error", Payload: map[string]string{"message": "topics are required"}}
					continue
				}
				sub.Subscribe(topics...)
				c.App.Logger.Debug("Client subscribed", zap.Strings("topics", topics))
				send <- ServerMessage{Type: "subscribed", Payload: map[string]any{"topics": topics}}

			case "unsubscribe":
				if msg.Topic == "" {
					send <- ServerMessage{Type: "error", Payload: map[string]string{"message": "topic is required"}}
					continue
				}
				sub.Unsubscribe(msg.Topic)
				c.App.Logger.Debug("Client unsubscribed", zap.String("topic", msg.Topic))
				send <- ServerMessage{Type: "unsubscribed", Payload: map[string]string{"topic": msg.Topic}}

			case "list":
				send <- ServerMessage{Type: "topics", Payload: map[string]any{"topics": sub.TopicList()}}

			default:
				send <- ServerMessage{Type: "error", Payload: map[string]string{"message": "unknown action: " + msg.Action}}
			}
		}
	}
}
