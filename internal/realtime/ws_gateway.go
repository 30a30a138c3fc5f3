package realtime

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"neighbornet/internal/logger"
)

// WSGateway serves the bidirectional realtime channel. Messages from one
// connection are processed in order by its read loop; there is no ordering
// guarantee across connections.
type WSGateway struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

func NewWSGateway(hub *Hub) *WSGateway {
	return &WSGateway{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin policy is enforced by the CORS middleware in front.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// wsConn serializes writes; gorilla connections allow one concurrent writer.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

// Handle upgrades the request and runs the connection's read loop. The
// identity comes from the auth middleware.
func (g *WSGateway) Handle(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	raw, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", zap.Error(err))
		return
	}

	conn := &wsConn{conn: raw}
	g.hub.Subscribe(userID, conn)

	logger.Info("WebSocket client connected",
		zap.String("user_id", userID),
	)

	defer func() {
		g.hub.Unsubscribe(userID, conn)
		_ = conn.Close()
		logger.Info("WebSocket client disconnected",
			zap.String("user_id", userID),
		)
	}()

	_ = conn.WriteJSON(ServerEvent{Type: TypeConnected})

	for {
		_, payload, err := raw.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("WebSocket read error",
					zap.String("user_id", userID),
					zap.Error(err),
				)
			}
			return
		}

		g.handleMessage(userID, conn, payload)
	}
}

func (g *WSGateway) handleMessage(userID string, conn *wsConn, payload []byte) {
	msg, err := ParseClientMessage(payload)
	if err != nil {
		_ = conn.WriteJSON(ServerEvent{Type: TypeError, Data: err.Error()})
		return
	}

	switch msg.Type {
	case TypeSubscribe:
		var sub SubscribePayload
		_ = json.Unmarshal(msg.Data, &sub)
		_ = conn.WriteJSON(ServerEvent{Type: TypeSubscribed, Data: sub})

	case TypeLocationUpdate, TypeAvailabilityUpdate:
		// Rebroadcast to every connected identity. See the package doc for
		// the scoping limitation.
		g.hub.Broadcast(ServerEvent{
			Type:   msg.Type,
			UserID: userID,
			Data:   msg.Data,
		})

	case TypePing:
		_ = conn.WriteJSON(ServerEvent{Type: TypePong})
	}
}
