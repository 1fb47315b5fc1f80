package notification

import (
	"errors"
	"net/http"
	"time"

	"doorparts-be/internal/httpx"
	"doorparts-be/internal/logger"
	"doorparts-be/internal/middleware"
	"doorparts-be/internal/staff"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const authDeadline = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Admin UI and API share an origin in production; the JWT in the
		// auth frame is the actual gate.
		return true
	},
}

type Handler struct {
	svc Service
	hub *Hub
}

func NewHandler(svc Service, hub *Hub) *Handler {
	return &Handler{svc: svc, hub: hub}
}

func (h *Handler) RegisterRoutes(public, admin *mux.Router) {
	public.HandleFunc("/ws/notifications", h.serveWS)

	admin.HandleFunc("/notifications", h.list).Methods(http.MethodGet)
	admin.HandleFunc("/notifications/read-all", h.markAllRead).Methods(http.MethodPost)
	admin.HandleFunc("/notifications/{id}/read", h.markRead).Methods(http.MethodPost)
}

type authFrame struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// serveWS upgrades the connection, waits for an auth frame carrying a staff
// JWT, then streams notification events until the client disconnects.
func (h *Handler) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.FromCtx(r.Context()).Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	conn.SetReadDeadline(time.Now().Add(authDeadline))

	var frame authFrame
	if err := conn.ReadJSON(&frame); err != nil || frame.Type != "auth" {
		conn.WriteJSON(map[string]string{"error": "expected auth frame"})
		conn.Close()
		return
	}

	claims, err := staff.ParseJWT(frame.Token)
	if err != nil {
		conn.WriteJSON(map[string]string{"error": "invalid token"})
		conn.Close()
		return
	}

	conn.SetReadDeadline(time.Time{})

	// The ready frame must be written before the hub can see this
	// connection; the hub writes under its own lock and the websocket
	// allows only one concurrent writer.
	conn.WriteJSON(map[string]string{"type": "ready"})
	h.hub.Register(claims.StaffID, conn)

	logger.L().Info("notification stream opened", zap.Uint("staff_id", claims.StaffID))

	// Drain client frames so pings and close frames are processed; the
	// stream is server-to-client only.
	go func() {
		defer func() {
			h.hub.Unregister(claims.StaffID, conn)
			conn.Close()
			logger.L().Info("notification stream closed", zap.Uint("staff_id", claims.StaffID))
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	staffID, ok := middleware.StaffIDFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"

	items, err := h.svc.List(r.Context(), staffID, unreadOnly, 50)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}
	if items == nil {
		items = []*Notification{}
	}

	httpx.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	staffID, ok := middleware.StaffIDFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	err = h.svc.MarkRead(r.Context(), id, staffID)
	if errors.Is(err, ErrNotificationNotFound) {
		httpx.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to mark notification read")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

func (h *Handler) markAllRead(w http.ResponseWriter, r *http.Request) {
	staffID, ok := middleware.StaffIDFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.svc.MarkAllRead(r.Context(), staffID); err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to mark notifications read")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "read"})
}
