package notification

import (
	"sync"

	"doorparts-be/internal/logger"
	"doorparts-be/internal/metrics"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Hub tracks live websocket connections per staff member. It is process-local
// and rebuilt empty on restart; the persisted notification record is the
// durable source of truth.
type Hub struct {
	mu    sync.Mutex
	conns map[uint]map[*websocket.Conn]bool
}

func NewHub() *Hub {
	return &Hub{
		conns: make(map[uint]map[*websocket.Conn]bool),
	}
}

func (h *Hub) Register(staffID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conns[staffID] == nil {
		h.conns[staffID] = make(map[*websocket.Conn]bool)
	}
	h.conns[staffID][conn] = true
}

func (h *Hub) Unregister(staffID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set, ok := h.conns[staffID]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(h.conns, staffID)
		}
	}
}

// ConnectionCount reports live connections for a staff member.
func (h *Hub) ConnectionCount(staffID uint) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns[staffID])
}

// Broadcast sends the notification to every open connection for the staff
// member. Fire-and-forget: a failed write drops that connection, zero
// connections is a no-op.
func (h *Hub) Broadcast(n *Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.conns[n.StaffID]
	if len(set) == 0 {
		return
	}

	metrics.NotificationBroadcasts.Inc()

	for conn := range set {
		if err := conn.WriteJSON(n); err != nil {
			logger.L().Warn("dropping dead notification connection",
				zap.Uint("staff_id", n.StaffID),
				zap.Error(err),
			)
			conn.Close()
			delete(set, conn)
		}
	}

	if len(set) == 0 {
		delete(h.conns, n.StaffID)
	}
}
