package ws

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"messenger-service/internal/observability"
)

// Presence is the hub's view of the presence registry.
type Presence interface {
	SetOnline(ctx context.Context, platformID int64, online bool) error
}

// Hub maintains the live connection rooms, one room per identity. Rooms hold
// zero or more connections; the current client policy is one primary
// connection per identity, the set shape leaves space for more.
type Hub struct {
	rooms    map[int64]map[*websocket.Conn]bool
	connInfo map[int64]map[*websocket.Conn]ConnInfo
	// gorilla/websocket allows at most one concurrent writer per connection,
	// so every write goes through the connection's own mutex.
	writeMu  map[*websocket.Conn]*sync.Mutex
	presence Presence
	mu       sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub(presence Presence) *Hub {
	return &Hub{
		rooms:    make(map[int64]map[*websocket.Conn]bool),
		connInfo: make(map[int64]map[*websocket.Conn]ConnInfo),
		writeMu:  make(map[*websocket.Conn]*sync.Mutex),
		presence: presence,
	}
}

// Join registers a connection in the identity's room and flips the identity
// online. A presence failure is logged, never fatal.
func (h *Hub) Join(ctx context.Context, platformID int64, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	if _, ok := h.rooms[platformID]; !ok {
		h.rooms[platformID] = make(map[*websocket.Conn]bool)
	}
	h.rooms[platformID][conn] = true
	if _, ok := h.connInfo[platformID]; !ok {
		h.connInfo[platformID] = make(map[*websocket.Conn]ConnInfo)
	}
	h.connInfo[platformID][conn] = info
	h.writeMu[conn] = &sync.Mutex{}
	h.mu.Unlock()

	if err := h.presence.SetOnline(ctx, platformID, true); err != nil {
		logrus.WithError(err).WithField("platform_id", platformID).Warn("failed to set identity online")
	}
}

// Leave removes a connection from the identity's room. When the room drains
// the identity goes offline and last_seen is stamped.
func (h *Hub) Leave(ctx context.Context, platformID int64, conn *websocket.Conn) {
	h.mu.Lock()
	empty := false
	if conns, ok := h.rooms[platformID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.rooms, platformID)
			empty = true
		}
	}
	if infos, ok := h.connInfo[platformID]; ok {
		delete(infos, conn)
		if len(infos) == 0 {
			delete(h.connInfo, platformID)
		}
	}
	delete(h.writeMu, conn)
	h.mu.Unlock()

	if empty {
		if err := h.presence.SetOnline(ctx, platformID, false); err != nil {
			logrus.WithError(err).WithField("platform_id", platformID).Warn("failed to set identity offline")
		}
	}
}

// Deliver serializes the event and writes it to every connection in the
// target's room. An empty room drops the event outright: delivery is
// best-effort with no queue for offline identities. Returns how many
// connections received the event.
func (h *Hub) Deliver(targetPlatformID int64, eventType string, event any) int {
	type target struct {
		conn *websocket.Conn
		mu   *sync.Mutex
	}

	h.mu.RLock()
	targets := make([]target, 0, len(h.rooms[targetPlatformID]))
	for conn := range h.rooms[targetPlatformID] {
		targets = append(targets, target{conn: conn, mu: h.writeMu[conn]})
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		observability.IncEventDropped(eventType)
		return 0
	}

	payload, err := Encode(event)
	if err != nil {
		logrus.WithError(err).WithField("event_type", eventType).Error("failed to encode outbound event")
		return 0
	}

	delivered := 0
	for _, tg := range targets {
		conn := tg.conn
		tg.mu.Lock()
		err := conn.WriteMessage(websocket.TextMessage, payload)
		tg.mu.Unlock()
		if err != nil {
			logrus.WithError(err).WithField("platform_id", targetPlatformID).Warn("websocket write error")
			conn.Close()
			h.publishWSError(targetPlatformID, conn, err)
			h.Leave(context.Background(), targetPlatformID, conn)
			continue
		}
		delivered++
	}
	if delivered > 0 {
		observability.IncEventDelivered(eventType)
	}
	return delivered
}

// RoomSize reports how many connections the identity's room currently holds.
func (h *Hub) RoomSize(platformID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[platformID])
}

func (h *Hub) publishWSError(platformID int64, conn *websocket.Conn, err error) {
	info, ok := h.getConnInfo(platformID, conn)
	if !ok {
		return
	}

	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"platform_id": platformID,
			"event":       "ws_error",
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      err.Error(),
		},
	}

	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(context.Background(), "ws_events.chat", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_error",
		Payload:   payload,
	}, headers)
	observability.IncWSEvent("ws_error")
}

func (h *Hub) getConnInfo(platformID int64, conn *websocket.Conn) (ConnInfo, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if infos, ok := h.connInfo[platformID]; ok {
		info, exists := infos[conn]
		return info, exists
	}
	return ConnInfo{}, false
}
