package realtime

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"neighbornet/internal/logger"
)

// SSEGateway serves the one-way broadcast channel. A periodic heartbeat
// comment keeps intermediaries from timing the stream out and surfaces dead
// connections so they get reaped.
type SSEGateway struct {
	hub       *Hub
	heartbeat time.Duration
}

func NewSSEGateway(hub *Hub, heartbeat time.Duration) *SSEGateway {
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	return &SSEGateway{
		hub:       hub,
		heartbeat: heartbeat,
	}
}

// sseConn buffers outbound events for one stream. WriteJSON never blocks a
// broadcast: a full buffer counts as a dead client and lazily removes the
// connection.
type sseConn struct {
	events    chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newSSEConn() *sseConn {
	return &sseConn{
		events: make(chan []byte, 16),
		done:   make(chan struct{}),
	}
}

func (c *sseConn) WriteJSON(v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}

	select {
	case c.events <- payload:
		return nil
	case <-c.done:
		return fmt.Errorf("sse connection closed")
	default:
		return fmt.Errorf("sse client too slow, buffer full")
	}
}

func (c *sseConn) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
	})
	return nil
}

// Handle streams events to the client until it disconnects.
func (g *SSEGateway) Handle(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	conn := newSSEConn()
	g.hub.Subscribe(userID, conn)

	logger.Info("SSE client connected",
		zap.String("user_id", userID),
	)

	defer func() {
		g.hub.Unsubscribe(userID, conn)
		_ = conn.Close()
		logger.Info("SSE client disconnected",
			zap.String("user_id", userID),
		)
	}()

	_ = conn.WriteJSON(ServerEvent{Type: TypeConnected})

	ticker := time.NewTicker(g.heartbeat)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case payload := <-conn.events:
			if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", payload); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := fmt.Fprint(c.Writer, ": heartbeat\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case <-ctx.Done():
			return

		case <-conn.done:
			return
		}
	}
}
