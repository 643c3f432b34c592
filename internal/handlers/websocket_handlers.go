package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/branyang02/smart-oh-ws-server/internal/auth"
	ws "github.com/branyang02/smart-oh-ws-server/internal/websocket"
	"github.com/branyang02/smart-oh-ws-server/pkg/logger"
)

type WebSocketHandlers struct {
	authService *auth.Service
	hubManager  *ws.Manager
	upgrader    websocket.Upgrader
}

func NewWebSocketHandlers(authService *auth.Service, hubManager *ws.Manager, allowedOrigins []string) *WebSocketHandlers {
	return &WebSocketHandlers{
		authService: authService,
		hubManager:  hubManager,
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(allowedOrigins),
		},
	}
}

// HandleWebSocket serves /ws/{class_id}. Identity and role are resolved
// before the upgrade; the room only ever sees authenticated connections.
func (h *WebSocketHandlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	classID := strings.TrimPrefix(r.URL.Path, "/ws/")
	if classID == "" || strings.Contains(classID, "/") {
		http.Error(w, "invalid class id", http.StatusBadRequest)
		return
	}

	identity, err := h.authService.Authenticate(r.Context(), r, classID)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrNotEnrolled):
			http.Error(w, "not enrolled in this class", http.StatusForbidden)
		case errors.Is(err, auth.ErrUnauthenticated):
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		default:
			logger.Error("auth error for class %s: %v", classID, err)
			http.Error(w, "authentication failed", http.StatusInternalServerError)
		}
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Upgrade error: %v", err)
		return
	}

	hub := h.hubManager.GetHubForClass(classID)
	client := ws.NewClient(hub, conn, identity.User, identity.Role)
	hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

func originChecker(allowed []string) func(r *http.Request) bool {
	for _, o := range allowed {
		if o == "*" {
			return func(r *http.Request) bool { return true }
		}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}
