package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/branyang02/smart-oh-ws-server/internal/auth"
	ws "github.com/branyang02/smart-oh-ws-server/internal/websocket"
)

type HTTPHandlers struct {
	authService *auth.Service
	hubManager  *ws.Manager
}

func NewHTTPHandlers(authService *auth.Service, hubManager *ws.Manager) *HTTPHandlers {
	return &HTTPHandlers{
		authService: authService,
		hubManager:  hubManager,
	}
}

// Home confirms the server is up.
func (h *HTTPHandlers) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "WebSocket server is running and ready to connect!",
	})
}

// ClassState serves GET /classes/{class_id}/state: the same board snapshot
// the websocket broadcasts, for debugging and dashboards. It requires the
// caller to be enrolled in the class and never creates a room.
func (h *HTTPHandlers) ClassState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	// classes/{class_id}/state
	if len(parts) != 3 || parts[0] != "classes" || parts[2] != "state" || parts[1] == "" {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	classID := parts[1]

	if _, err := h.authService.Authenticate(r.Context(), r, classID); err != nil {
		switch {
		case errors.Is(err, auth.ErrNotEnrolled):
			http.Error(w, "not enrolled in this class", http.StatusForbidden)
		case errors.Is(err, auth.ErrUnauthenticated):
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		default:
			http.Error(w, "authentication failed", http.StatusInternalServerError)
		}
		return
	}

	hub, ok := h.hubManager.LookupHub(classID)
	if !ok {
		http.Error(w, "no active room for class", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(hub.Snapshot())
}
