// Package realtime fans state changes out to connected clients over two
// channel kinds: a bidirectional websocket and a one-way SSE stream.
//
// Known limitation, kept on purpose: location-update and availability-update
// messages are rebroadcast to every connected identity, not just nearby
// ones.
package realtime

import (
	"sync"

	"go.uber.org/zap"

	"neighbornet/internal/logger"
)

// Conn is one live client connection. Implementations must be safe for
// concurrent writes.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Hub multiplexes delivery of events to every live connection of an
// identity. An identity may hold several connections at once; the entry is
// removed the moment its last connection goes.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]map[Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{
		conns: make(map[string]map[Conn]struct{}),
	}
}

// Subscribe registers a connection under an identity.
func (h *Hub) Subscribe(identity string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, exists := h.conns[identity]
	if !exists {
		set = make(map[Conn]struct{})
		h.conns[identity] = set
	}
	set[conn] = struct{}{}

	logger.Debug("Realtime client subscribed",
		zap.String("identity", identity),
		zap.Int("connections", len(set)),
	)
}

// Unsubscribe deregisters a connection; the identity entry is dropped when
// its connection set becomes empty.
func (h *Hub) Unsubscribe(identity string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, exists := h.conns[identity]
	if !exists {
		return
	}
	delete(set, conn)
	if len(set) == 0 {
		delete(h.conns, identity)
	}

	logger.Debug("Realtime client unsubscribed",
		zap.String("identity", identity),
	)
}

// Send delivers an event to every live connection of one identity. An
// identity with no connections is a no-op. A failed write removes that
// connection; the caller never sees the error.
func (h *Hub) Send(identity string, event ServerEvent) {
	h.mu.RLock()
	set := h.conns[identity]
	targets := make([]Conn, 0, len(set))
	for conn := range set {
		targets = append(targets, conn)
	}
	h.mu.RUnlock()

	for _, conn := range targets {
		h.write(identity, conn, event)
	}
}

// Broadcast delivers an event to all connections of all identities. The
// target list is snapshotted first, so connects and disconnects during the
// iteration are safe.
func (h *Hub) Broadcast(event ServerEvent) {
	type target struct {
		identity string
		conn     Conn
	}

	h.mu.RLock()
	targets := make([]target, 0, len(h.conns))
	for identity, set := range h.conns {
		for conn := range set {
			targets = append(targets, target{identity: identity, conn: conn})
		}
	}
	h.mu.RUnlock()

	for _, t := range targets {
		h.write(t.identity, t.conn, event)
	}
}

func (h *Hub) write(identity string, conn Conn, event ServerEvent) {
	if err := conn.WriteJSON(event); err != nil {
		logger.Warn("Realtime write failed, dropping connection",
			zap.String("identity", identity),
			zap.Error(err),
		)
		h.Unsubscribe(identity, conn)
		_ = conn.Close()
	}
}

// ConnectionCount returns the number of live connections for an identity.
func (h *Hub) ConnectionCount(identity string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[identity])
}

// SendEvent adapts Send to the usecase notifier interfaces.
func (h *Hub) SendEvent(identity string, eventType string, data interface{}) {
	h.Send(identity, ServerEvent{Type: eventType, Data: data})
}

// BroadcastEvent adapts Broadcast to the usecase notifier interfaces.
func (h *Hub) BroadcastEvent(eventType string, data interface{}) {
	h.Broadcast(ServerEvent{Type: eventType, Data: data})
}
