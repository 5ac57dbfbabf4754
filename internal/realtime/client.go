package realtime

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/lefthq/left-backend/internal/logger"
)

const (
	writeWait      = 10 * time.Second
	pingPeriod     = 30 * time.Second
	sendBufferSize = 64
)

// Client is a single websocket connection owned by one user.
type Client struct {
	UserID string

	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	ctx    context.Context
	cancel context.CancelFunc
}

// ServeWS upgrades the request and attaches the connection to the hub.
// The caller must have authenticated the user already.
func ServeWS(hub *Hub, c *gin.Context, userID string) {
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		// Browsers connect cross-origin from the web client
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		logger.Error("websocket accept failed", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	client := &Client{
		UserID: userID,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		ctx:    ctx,
		cancel: cancel,
	}

	hub.register <- client

	go client.writePump()
	go client.readPump()
}

// writePump pushes queued events and periodic pings to the peer.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case <-c.ctx.Done():
			return

		case data, ok := <-c.send:
			if !ok {
				c.conn.Close(websocket.StatusNormalClosure, "hub closed")
				return
			}
			writeCtx, cancel := context.WithTimeout(c.ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				c.disconnect()
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(c.ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				c.disconnect()
				return
			}
		}
	}
}

// readPump discards inbound frames; the stream is server-to-client
// only. Reading is still required to process control frames and notice
// closure.
func (c *Client) readPump() {
	defer c.disconnect()

	for {
		if _, _, err := c.conn.Read(c.ctx); err != nil {
			return
		}
	}
}

func (c *Client) disconnect() {
	c.cancel()
	select {
	case c.hub.unregister <- c:
	default:
	}
}

// Handler returns a gin handler that serves the realtime socket for
// the authenticated user.
func Handler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDValue, exists := c.Get("user_id")
		userID, _ := userIDValue.(string)
		if !exists || userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		ServeWS(hub, c, userID)
	}
}
